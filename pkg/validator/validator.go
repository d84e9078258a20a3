package validator

import (
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var validate = validator.New()

func init() {
	// Register custom validation for UUID
	validate.RegisterValidation("uuid_required", func(fl validator.FieldLevel) bool {
		if id, ok := fl.Field().Interface().(uuid.UUID); ok {
			return id != uuid.Nil
		}
		return false
	})
	// Strong password: >= 8 chars with upper, lower, digit and symbol
	validate.RegisterValidation("password", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
}

// StrongPassword reports whether pw satisfies the account password policy.
func StrongPassword(pw string) bool {
	if len(pw) < 8 {
		return false
	}
	var upper, lower, digit, symbol bool
	for _, r := range pw {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		default:
			symbol = true
		}
	}
	return upper && lower && digit && symbol
}

// ValidEmail reports whether s is a well-formed email address.
func ValidEmail(s string) bool {
	return validate.Var(s, "required,email") == nil
}

// ValidateStruct runs the registered rules and returns a field -> messages
// map suitable for returning straight to the caller, empty when valid.
func ValidateStruct(data interface{}) map[string][]string {
	err := validate.Struct(data)
	if err == nil {
		return nil
	}
	fields := map[string][]string{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		fields["_"] = []string{err.Error()}
		return fields
	}
	for _, fe := range verrs {
		name := strings.ToLower(fe.Field())
		fields[name] = append(fields[name], messageFor(fe))
	}
	return fields
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "uuid_required":
		return "wajib diisi"
	case "email":
		return "format email tidak valid"
	case "gt":
		return "harus lebih dari " + fe.Param()
	case "gte":
		return "tidak boleh kurang dari " + fe.Param()
	case "len":
		return "harus " + fe.Param() + " digit"
	case "numeric":
		return "harus berupa angka"
	case "password":
		return "minimal 8 karakter dengan huruf besar, huruf kecil, angka dan simbol"
	case "min":
		return "minimal " + fe.Param() + " karakter"
	case "max":
		return "maksimal " + fe.Param() + " karakter"
	default:
		return "tidak valid (" + fe.Tag() + ")"
	}
}
