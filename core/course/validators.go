package course

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-courseware/core"
)

var (
	contentTypeTag  = "contenttype"
	contentTypeText = "must be one of: video, document, link, quiz-ref"

	quizRequiredTag  = "quizrequired"
	quizRequiredText = "quiz_id is required for quiz-ref content"

	quizForbiddenTag  = "quizforbidden"
	quizForbiddenText = "quiz_id is only allowed for quiz-ref content"
)

// RegisterValidators registers the course validation tags & translations.
func RegisterValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(contentTypeTag, contentTypeValidation)
	core.RegisterCustomTranslation(validate, translator, contentTypeTag, contentTypeText)

	validate.RegisterStructValidation(contentItemStructValidation, NewContentItem{})
	core.RegisterCustomTranslation(validate, translator, quizRequiredTag, quizRequiredText)
	core.RegisterCustomTranslation(validate, translator, quizForbiddenTag, quizForbiddenText)
}

func contentTypeValidation(fl validator.FieldLevel) bool {
	return ContentType(fl.Field().String()).IsValid()
}

// contentItemStructValidation checks that QuizID is set iff the item is a quiz reference.
func contentItemStructValidation(sl validator.StructLevel) {
	item, ok := sl.Current().Interface().(NewContentItem)
	if !ok {
		return
	}
	switch {
	case item.Type == ContentQuizRef && item.QuizID == "":
		sl.ReportError(item.QuizID, "quiz_id", "QuizID", quizRequiredTag, "")
	case item.Type != ContentQuizRef && item.QuizID != "":
		sl.ReportError(item.QuizID, "quiz_id", "QuizID", quizForbiddenTag, "")
	}
}
