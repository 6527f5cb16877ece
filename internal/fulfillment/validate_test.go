package fulfillment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func fieldsOf(errs ValidationErrors) []string {
	fields := make([]string, 0, len(errs))
	for _, fe := range errs {
		fields = append(fields, fe.Field)
	}
	return fields
}

func TestValidateWorkspace(t *testing.T) {
	valid := &Workspace{PONumber: "123456", Salesman: "Juan Dela Cruz"}

	t.Run("Valid", func(t *testing.T) {
		assert.Empty(t, ValidateWorkspace(valid))
	})

	t.Run("MissingBoth", func(t *testing.T) {
		errs := ValidateWorkspace(&Workspace{})
		assert.ElementsMatch(t, []string{"po_number", "salesman"}, fieldsOf(errs))
	})

	t.Run("PONumberRules", func(t *testing.T) {
		for _, bad := range []string{"abc", "12a", "1234567", "12 34"} {
			errs := ValidateWorkspace(&Workspace{PONumber: bad, Salesman: "Juan"})
			assert.Contains(t, fieldsOf(errs), "po_number", "po %q", bad)
		}
	})

	t.Run("SalesmanRules", func(t *testing.T) {
		for _, bad := range []string{"Juan2", "J.", "0123456789012345678901234567890"} {
			errs := ValidateWorkspace(&Workspace{PONumber: "123", Salesman: bad})
			assert.Contains(t, fieldsOf(errs), "salesman", "salesman %q", bad)
		}
	})

	t.Run("ErrorMessage", func(t *testing.T) {
		errs := ValidateWorkspace(&Workspace{})
		assert.Contains(t, errs.Error(), "po_number")
		assert.Contains(t, errs.Error(), "salesman")
	})
}
