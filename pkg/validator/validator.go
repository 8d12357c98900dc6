package validator

import (
	"context"
	"errors"
	"regexp"

	"github.com/go-playground/validator"

	"eventdesk/internal/datetoken"
	"eventdesk/internal/model"
)

var (
	global   *validator.Validate
	digitsRe = regexp.MustCompile(`\D`)
)

const (
	ErrFieldRequired      = "Field is required"
	ErrFieldExceedsMaxLen = "Field exceeds maximum length"
	ErrFieldBelowMinLen   = "Field is below minimum length"
	ErrInvalidEmail       = "Invalid email address"
	ErrUnknownValidation  = "Unknown validation error"
)

func init() {
	SetValidator(New())
}

func New() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("datetoken", validateDateToken)
	_ = v.RegisterValidation("cpf", validateCPF)
	_ = v.RegisterValidation("phone", validatePhone)
	_ = v.RegisterValidation("eventtype", validateEventType)
	_ = v.RegisterValidation("userrole", validateUserRole)
	return v
}

func SetValidator(v *validator.Validate) {
	global = v
}

func Validator() *validator.Validate {
	return global
}

// validateDateToken accepts the backend's "dd/MM/yyyy HH:mm" shape.
// Field ranges are not checked; the backend is just as permissive.
func validateDateToken(fl validator.FieldLevel) bool {
	_, err := datetoken.Parse(fl.Field().String())
	return err == nil
}

// Digits strips everything that is not a digit; the masked CPF/phone
// inputs are reduced to this form before hitting the wire.
func Digits(s string) string {
	return digitsRe.ReplaceAllString(s, "")
}

func validateCPF(fl validator.FieldLevel) bool {
	return len(Digits(fl.Field().String())) == 11
}

func validatePhone(fl validator.FieldLevel) bool {
	n := len(Digits(fl.Field().String()))
	return n == 10 || n == 11
}

func validateEventType(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, t := range model.EventTypes() {
		if value == t {
			return true
		}
	}
	return false
}

func validateUserRole(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	for _, r := range model.UserRoles() {
		if value == r {
			return true
		}
	}
	return false
}

func Validate(ctx context.Context, structure any) error {
	return parseValidationErrors(Validator().StructCtx(ctx, structure))
}

func parseValidationErrors(err error) error {
	if err == nil {
		return nil
	}
	vErrors, ok := err.(validator.ValidationErrors)
	if !ok || len(vErrors) == 0 {
		return err
	}
	ve := vErrors[0]
	var msg string
	switch ve.Tag() {
	case "required":
		msg = ErrFieldRequired
	case "max":
		msg = ErrFieldExceedsMaxLen
	case "min":
		msg = ErrFieldBelowMinLen
	case "email":
		msg = ErrInvalidEmail
	case "datetoken":
		msg = "Expected date format dd/MM/yyyy HH:mm"
	case "cpf":
		msg = "CPF must contain 11 digits"
	case "phone":
		msg = "Phone must contain 10 or 11 digits"
	case "eventtype":
		msg = "Unknown event type"
	case "userrole":
		msg = "Unknown user role"
	default:
		msg = ErrUnknownValidation
	}
	return errors.New(msg + ": " + ve.Namespace())
}
