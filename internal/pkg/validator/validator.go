package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func oneOf(values ...string) validator.Func {
	return func(fl validator.FieldLevel) bool {
		v := fl.Field().String()
		for _, allowed := range values {
			if v == allowed {
				return true
			}
		}
		return false
	}
}

func registerCustomValidations() {
	validate.RegisterValidation("role", oneOf("student", "sponsor", "admin"))
	validate.RegisterValidation("difficulty", oneOf("Beginner", "Intermediate", "Advanced", ""))
	validate.RegisterValidation("payment_method", oneOf("upi", "card", "netbanking", "wallet"))
	validate.RegisterValidation("decision", oneOf("approved", "rejected"))

	// UPI ids look like name@bank
	validate.RegisterValidation("upi_id", func(fl validator.FieldLevel) bool {
		return IsUPIID(fl.Field().String())
	})
}

// IsUPIID reports whether s looks like a UPI virtual payment address
func IsUPIID(s string) bool {
	at := strings.IndexByte(s, '@')
	return at > 0 && at < len(s)-1 && strings.Count(s, "@") == 1 && !strings.ContainsAny(s, " \t")
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"_": err.Error()}
	}

	errors := make(map[string]string)
	for _, err := range validationErrors {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "min":
			errors[field] = "Value is too short (min: " + err.Param() + ")"
		case "max":
			errors[field] = "Value is too long (max: " + err.Param() + ")"
		case "gt":
			errors[field] = "Value must be greater than " + err.Param()
		case "gte":
			errors[field] = "Value must be at least " + err.Param()
		case "lte":
			errors[field] = "Value must be at most " + err.Param()
		case "oneof":
			errors[field] = "Value must be one of: " + err.Param()
		case "role":
			errors[field] = "Invalid role. Must be: student, sponsor, or admin"
		case "difficulty":
			errors[field] = "Invalid difficulty. Must be: Beginner, Intermediate, or Advanced"
		case "payment_method":
			errors[field] = "Invalid payment method. Must be: upi, card, netbanking, or wallet"
		case "decision":
			errors[field] = "Invalid decision. Must be: approved or rejected"
		case "upi_id":
			errors[field] = "Invalid UPI ID format"
		default:
			errors[field] = "Invalid value"
		}
	}

	return errors
}

// ValidateVar validates a single variable
func ValidateVar(field interface{}, tag string) error {
	return validate.Var(field, tag)
}
