package utils

import (
	"limslite-service/internal/pkg/constvars"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("partial_policy", validatePartialPolicy)
	validate.RegisterValidation("ack_code", validateAckCode)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validatePartialPolicy(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == constvars.PartialSpecimenPolicyReject || value == constvars.PartialSpecimenPolicySkip
}

func validateAckCode(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case constvars.AckCodeAccept, constvars.AckCodeError, constvars.AckCodeReject:
		return true
	}
	return false
}
