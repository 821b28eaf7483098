package roachagram

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// MaxInputLength is the longest accepted input, in characters, after trimming.
const MaxInputLength = 50

// Request is a validated anagram request.
type Request struct {
	Input string `validate:"required,max=50"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewRequest trims raw and validates it. Blank input and input longer than
// MaxInputLength wrap ErrInvalidInput.
func NewRequest(raw string) (Request, error) {
	return NewLimitedRequest(raw, MaxInputLength)
}

// NewLimitedRequest is NewRequest with a lower character cap. A limit outside
// 1..MaxInputLength means MaxInputLength.
func NewLimitedRequest(raw string, limit int) (Request, error) {
	limit = effectiveLimit(limit)
	req := Request{Input: strings.TrimSpace(raw)}
	if err := validate.Struct(req); err != nil {
		return Request{}, fmt.Errorf("%w: %s", ErrInvalidInput, describeValidation(err))
	}
	if utf8.RuneCountInString(req.Input) > limit {
		return Request{}, fmt.Errorf("%w: input exceeds %d characters", ErrInvalidInput, limit)
	}
	return req, nil
}

func effectiveLimit(limit int) int {
	if limit <= 0 || limit > MaxInputLength {
		return MaxInputLength
	}
	return limit
}

func describeValidation(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err.Error()
	}
	switch verrs[0].Tag() {
	case "required":
		return "input is blank"
	case "max":
		return fmt.Sprintf("input exceeds %d characters", MaxInputLength)
	default:
		return verrs[0].Error()
	}
}
