package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/roach88/chemcomp/internal/catalog"
	"github.com/roach88/chemcomp/internal/composition"
	"github.com/roach88/chemcomp/internal/periodic"
)

// Error codes for CLI error output.
const (
	ErrCodeGeneric  = "E001" // Generic error
	ErrCodeConfig   = "E002" // Config file could not be read
	ErrCodeElements = "E003" // Element table could not be loaded
	ErrCodeDatabase = "E004" // Catalog database error
	ErrCodeNotFound = "E005" // Path not found

	ErrCodeUnknownSymbol = "E101"
	ErrCodeNegativeCount = "E102"
	ErrCodeNonInteger    = "E103"
	ErrCodeMalformed     = "E104"
	ErrCodeCountOverflow = "E105"

	ErrCodeInvalidPacking = "E201"
	ErrCodeInvalidOrder   = "E202"
	ErrCodeInvalidHex     = "E203"

	ErrCodeLabelConflict = "E301"
	ErrCodeEntryNotFound = "E302"
)

var validationCodes = map[composition.ValidationErrorCode]string{
	composition.ErrCodeUnknownSymbol: ErrCodeUnknownSymbol,
	composition.ErrCodeNegativeCount: ErrCodeNegativeCount,
	composition.ErrCodeNonInteger:    ErrCodeNonInteger,
	composition.ErrCodeMalformed:     ErrCodeMalformed,
	composition.ErrCodeCountOverflow: ErrCodeCountOverflow,
}

var invalidArgumentCodes = map[composition.InvalidArgumentErrorCode]string{
	composition.ErrCodeInvalidPacking: ErrCodeInvalidPacking,
	composition.ErrCodeInvalidOrder:   ErrCodeInvalidOrder,
	composition.ErrCodeInvalidHex:     ErrCodeInvalidHex,
}

// classifyError maps err to an output code and exit code.
// Rejected input exits 1; anything that stops the command from running
// (element table, database) exits 2.
func classifyError(err error) (code string, exit int) {
	var ve *composition.ValidationError
	if errors.As(err, &ve) {
		if c, ok := validationCodes[ve.Code]; ok {
			return c, ExitFailure
		}
		return ErrCodeGeneric, ExitFailure
	}

	var ie *composition.InvalidArgumentError
	if errors.As(err, &ie) {
		if c, ok := invalidArgumentCodes[ie.Code]; ok {
			return c, ExitFailure
		}
		return ErrCodeGeneric, ExitFailure
	}

	var te *periodic.TableError
	switch {
	case errors.Is(err, catalog.ErrLabelConflict):
		return ErrCodeLabelConflict, ExitFailure
	case errors.Is(err, catalog.ErrNotFound):
		return ErrCodeEntryNotFound, ExitFailure
	case errors.As(err, &te):
		return ErrCodeElements, ExitCommandError
	}
	return ErrCodeGeneric, ExitCommandError
}

// fail writes err through the formatter and returns the matching ExitError.
func fail(opts *RootOptions, cmd *cobra.Command, err error) error {
	code, exit := classifyError(err)
	if outErr := opts.formatter(cmd).Error(code, err.Error(), nil); outErr != nil {
		return outErr
	}
	return reportedExitError(exit, code, err)
}
