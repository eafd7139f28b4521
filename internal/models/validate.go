package models

import (
	"github.com/go-playground/validator/v10"
)

// MaxContentBytes bounds journal entry and chat message bodies.
const MaxContentBytes = 32 * 1024

var validate *validator.Validate

func init() {
	validate = validator.New()
	_ = validate.RegisterValidation("maxbytes", validateMaxBytes)
}

func validateMaxBytes(fl validator.FieldLevel) bool {
	return len(fl.Field().String()) <= MaxContentBytes
}
