package carrier

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateRateRequest checks the declarative field constraints declared
// on RateRequest. It runs once, synchronously, before any adapter is
// dispatched; a failure blocks dispatch entirely.
func ValidateRateRequest(req RateRequest) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return &ValidationError{Fields: []string{err.Error()}}
	}

	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		fields = append(fields, fmt.Sprintf("%s failed %q constraint", fe.Namespace(), fe.Tag()))
	}
	return &ValidationError{Fields: fields}
}
