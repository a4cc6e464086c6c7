package utils

import (
	"github.com/go-playground/validator/v10"

	"claimlens-service/internal/pkg/constvars"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterValidation("analysis_mode", validateAnalysisMode)
	validate.RegisterValidation("claim_status", validateClaimStatus)
}

func ValidateStruct(s interface{}) error {
	return validate.Struct(s)
}

func validateAnalysisMode(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	return value == "" || value == constvars.AnalysisModeSequential || value == constvars.AnalysisModeChunked
}

func validateClaimStatus(fl validator.FieldLevel) bool {
	value := fl.Field().String()
	switch value {
	case constvars.ClaimStatusProcessing, constvars.ClaimStatusCompleted, constvars.ClaimStatusFailed:
		return true
	}
	return false
}
