// Package validation checks inbound task shapes against their struct tags and
// reports every violation as a readable message.
package validation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
)

const tagFutureOrPresent = "futureorpresent"

// Validator wraps a configured go-playground validator.
type Validator struct {
	validate *validator.Validate
	now      func() time.Time
}

// New registers the custom tags used by the domain shapes.
func New() *Validator {
	v := &Validator{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		now:      time.Now,
	}
	_ = v.validate.RegisterValidation("notblank", validators.NotBlank)
	_ = v.validate.RegisterValidation(tagFutureOrPresent, v.futureOrPresent)
	return v
}

// WithClock replaces the reference time of the futureorpresent check.
func (v *Validator) WithClock(now func() time.Time) *Validator {
	if now != nil {
		v.now = now
	}
	return v
}

// Validate returns one message per violated constraint, in field order.
// A nil or empty result means record is valid.
func (v *Validator) Validate(record interface{}) []string {
	err := v.validate.Struct(record)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return []string{err.Error()}
	}

	violations := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		violations = append(violations, message(fe))
	}
	return violations
}

func (v *Validator) futureOrPresent(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.Before(v.now())
}

func message(fe validator.FieldError) string {
	name := fe.Field()
	if strings.Contains(fe.StructNamespace(), "SubTasks[") {
		name = "SubTask " + strings.ToLower(name)
	}

	switch fe.Tag() {
	case "notblank", "required":
		return name + " is mandatory"
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", name, fe.Param())
	case tagFutureOrPresent:
		return name + " cannot be in the past"
	default:
		return fmt.Sprintf("%s failed %s check", name, fe.Tag())
	}
}
