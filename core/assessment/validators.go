package assessment

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-courseware/core"
)

var (
	subStatusTag  = "substatus"
	subStatusText = "must be one of: submitted, graded"
)

// RegisterValidators registers the assessment validation tags & translations.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(subStatusTag, func(fl validator.FieldLevel) bool {
		return SubmissionStatus(fl.Field().String()).IsValid()
	})
	core.RegisterCustomTranslation(validate, translator, subStatusTag, subStatusText)
}
