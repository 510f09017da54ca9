package periodic

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
)

//go:embed elements.cue
var schemaCUE string

// tableFile is the on-disk shape shared by YAML and CUE tables.
type tableFile struct {
	Elements []Element `json:"elements" yaml:"elements"`
}

// compileSchema compiles the element schema in ctx.
func compileSchema(ctx *cue.Context) (cue.Value, error) {
	schema := ctx.CompileString(schemaCUE, cue.Filename("elements.cue"))
	if err := schema.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("compile element schema: %w", err)
	}
	return schema, nil
}

// validateElements checks Go-decoded elements against the CUE schema.
func validateElements(elements []Element, path string) error {
	ctx := cuecontext.New()
	schema, err := compileSchema(ctx)
	if err != nil {
		return err
	}

	data := ctx.Encode(map[string]any{"elements": elementsToCUE(elements)})
	if err := data.Err(); err != nil {
		return schemaError(err, path)
	}

	if err := schema.Unify(data).Validate(cue.Concrete(true)); err != nil {
		return schemaError(err, path)
	}
	return nil
}

// elementsToCUE converts elements to plain values so absent optional
// fields stay absent instead of encoding as null.
func elementsToCUE(elements []Element) []any {
	out := make([]any, len(elements))
	for i, e := range elements {
		m := map[string]any{
			"symbol": e.Symbol,
			"number": e.Number,
		}
		if e.Name != "" {
			m["name"] = e.Name
		}
		if e.Electronegativity != nil {
			m["electronegativity"] = *e.Electronegativity
		}
		if e.CovalentRadius != nil {
			m["covalent_radius"] = *e.CovalentRadius
		}
		out[i] = m
	}
	return out
}

// schemaError reports the first CUE error with its position, if any.
func schemaError(err error, path string) error {
	errs := cueerrors.Errors(err)
	msg := err.Error()
	if len(errs) > 0 {
		msg = errs[0].Error()
	}
	return &TableError{
		Code:    ErrCodeTableSchema,
		Message: msg,
		Path:    path,
	}
}
