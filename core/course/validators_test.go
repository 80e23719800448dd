package course

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/masomo-courseware/core"
)

func newValidate() (*validator.Validate, func(error) map[string]string) {
	validate := validator.New()
	translator := core.NewTranslator()
	core.InitValidators(validate, translator)
	RegisterValidators(validate, translator)

	translate := func(err error) map[string]string {
		fields := make(map[string]string)
		if verrs, ok := err.(validator.ValidationErrors); ok {
			for _, fe := range verrs {
				fields[fe.Field()] = fe.Translate(translator)
			}
		}
		return fields
	}
	return validate, translate
}

func newCourse(items ...NewContentItem) NewCourse {
	return NewCourse{
		ID:            "go-101",
		InstitutionID: "inst-1",
		Title:         "  Go 101 ",
		Modules: []NewModule{{
			ID:    "m1",
			Title: "Basics",
			Order: 1,
			Sessions: []NewSession{{
				ID:       "s1",
				Title:    "Intro",
				Order:    1,
				Contents: items,
			}},
		}},
	}
}

func TestNewCourse_Validate(t *testing.T) {
	validate, translate := newValidate()

	tests := []struct {
		name       string
		item       NewContentItem
		wantFields map[string]string
	}{
		{
			name: "valid video",
			item: NewContentItem{ID: "i1", Title: "Welcome", Type: ContentVideo, URL: "https://example.com/v.mp4"},
		},
		{
			name: "valid quiz-ref",
			item: NewContentItem{ID: "i1", Title: "Check", Type: "QUIZ-REF", QuizID: "q1"},
		},
		{
			name:       "unknown type",
			item:       NewContentItem{ID: "i1", Title: "Welcome", Type: "podcast"},
			wantFields: map[string]string{"type": contentTypeText},
		},
		{
			name:       "quiz-ref without quiz",
			item:       NewContentItem{ID: "i1", Title: "Check", Type: ContentQuizRef},
			wantFields: map[string]string{"quiz_id": quizRequiredText},
		},
		{
			name:       "video with quiz",
			item:       NewContentItem{ID: "i1", Title: "Check", Type: ContentVideo, QuizID: "q1"},
			wantFields: map[string]string{"quiz_id": quizForbiddenText},
		},
		{
			name:       "missing title",
			item:       NewContentItem{ID: "i1", Type: ContentLink},
			wantFields: map[string]string{"title": "this field is required"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nc := newCourse(tt.item)
			err := nc.Validate(validate)
			if tt.wantFields == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantFields, translate(err))
		})
	}
}

func TestNewCourse_Tree(t *testing.T) {
	validate, _ := newValidate()
	nc := newCourse(
		NewContentItem{ID: "i1", Title: "Welcome", Order: 1, Type: ContentVideo},
		NewContentItem{ID: "i2", Title: "Check", Order: 2, Type: ContentQuizRef, QuizID: "q1"},
	)
	require.NoError(t, nc.Validate(validate))

	tree := nc.Tree()
	assert.Equal(t, "Go 101", tree.Course.Title)
	assert.Equal(t, []string{}, tree.Course.LearningOutcomes)
	assert.Len(t, tree.Modules, 1)
	assert.Len(t, tree.Sessions, 1)
	if assert.Len(t, tree.Contents, 2) {
		assert.Equal(t, ContentItem{
			ID: "i2", SessionID: "s1", ModuleID: "m1", CourseID: "go-101",
			Title: "Check", Order: 2, Type: ContentQuizRef, QuizID: "q1",
		}, tree.Contents[1])
	}
}
