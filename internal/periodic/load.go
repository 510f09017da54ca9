package periodic

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"
)

// LoadTable reads an element table from path.
// The format is chosen by extension: .yaml/.yml or .cue.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &TableError{
			Code:    ErrCodeTableNotFound,
			Message: "cannot read element table",
			Path:    path,
			Err:     err,
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return parseYAMLTable(data, path)
	case ".cue":
		return parseCUETable(data, path)
	default:
		return nil, &TableError{
			Code:    ErrCodeTableParse,
			Message: fmt.Sprintf("unsupported table format %q (want .yaml, .yml or .cue)", filepath.Ext(path)),
			Path:    path,
		}
	}
}

func parseYAMLTable(data []byte, path string) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &TableError{
			Code:    ErrCodeTableParse,
			Message: "invalid YAML",
			Path:    path,
			Err:     err,
		}
	}
	if err := validateElements(f.Elements, path); err != nil {
		return nil, err
	}
	return buildTable(f.Elements, path)
}

func parseCUETable(data []byte, path string) (*Table, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return nil, &TableError{
			Code:    ErrCodeTableParse,
			Message: "invalid CUE",
			Path:    path,
			Err:     err,
		}
	}

	schema, err := compileSchema(ctx)
	if err != nil {
		return nil, err
	}

	unified := schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, schemaError(err, path)
	}

	var f tableFile
	if err := unified.Decode(&f); err != nil {
		return nil, &TableError{
			Code:    ErrCodeTableParse,
			Message: "cannot decode elements",
			Path:    path,
			Err:     err,
		}
	}
	return buildTable(f.Elements, path)
}
