package student

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/wingscc/rollcall/core"
)

var (
	batchTag  = "batch"
	batchText = "unknown batch"

	sexTag  = "sex"
	sexText = "sex must be one of Female or Male"
)

// InitValidators registers the student validators.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(batchTag, batchValidation)
	core.RegisterCustomTranslation(validate, translator, batchTag, batchText)

	_ = validate.RegisterValidation(sexTag, sexValidation)
	core.RegisterCustomTranslation(validate, translator, sexTag, sexText)
}

func batchValidation(fl validator.FieldLevel) bool {
	return IsBatch(fl.Field().String())
}

func sexValidation(fl validator.FieldLevel) bool {
	sex := Sex(fl.Field().String())
	return sex == Female || sex == Male
}
