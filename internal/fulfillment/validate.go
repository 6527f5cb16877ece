package fulfillment

import "regexp"

var (
	poNumberRegex = regexp.MustCompile(`^[0-9]{1,6}$`)
	salesmanRegex = regexp.MustCompile(`^[A-Za-z ]{1,30}$`)
)

// ValidateWorkspace checks the required confirmation fields. It mutates
// nothing; the result only gates whether Complete may run.
func ValidateWorkspace(ws *Workspace) ValidationErrors {
	var errs ValidationErrors

	switch {
	case ws.PONumber == "":
		errs = append(errs, FieldError{Field: "po_number", Message: "required"})
	case !poNumberRegex.MatchString(ws.PONumber):
		errs = append(errs, FieldError{Field: "po_number", Message: "digits only, up to 6 characters"})
	}

	switch {
	case ws.Salesman == "":
		errs = append(errs, FieldError{Field: "salesman", Message: "required"})
	case !salesmanRegex.MatchString(ws.Salesman):
		errs = append(errs, FieldError{Field: "salesman", Message: "letters and spaces only, up to 30 characters"})
	}

	return errs
}
