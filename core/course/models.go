package course

import (
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-courseware/core"
)

// ContentType tags what a ContentItem points to.
type ContentType string

// Content types
const (
	ContentVideo    ContentType = "video"
	ContentDocument ContentType = "document"
	ContentLink     ContentType = "link"
	ContentQuizRef  ContentType = "quiz-ref"
)

var ContentTypes = []ContentType{ContentVideo, ContentDocument, ContentLink, ContentQuizRef}

func (t ContentType) IsValid() bool {
	for _, ct := range ContentTypes {
		if t == ct {
			return true
		}
	}
	return false
}

type Course struct {
	ID               string   `json:"id"`
	InstitutionID    string   `json:"institution_id"`
	Title            string   `json:"title"`
	LearningOutcomes []string `json:"learning_outcomes"`
	Duration         string   `json:"duration"`
	IssuerName       string   `json:"issuer_name"`
}

type Module struct {
	ID       string `json:"id"`
	CourseID string `json:"course_id"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
}

type Session struct {
	ID       string `json:"id"`
	ModuleID string `json:"module_id"`
	Title    string `json:"title"`
	Order    int    `json:"order"`
}

// ContentItem is owned by its Session.
// ModuleID & CourseID are denormalized back-references used for filtering only.
type ContentItem struct {
	ID        string      `json:"id"`
	SessionID string      `json:"session_id"`
	ModuleID  string      `json:"module_id"`
	CourseID  string      `json:"course_id"`
	Title     string      `json:"title"`
	Order     int         `json:"order"`
	Type      ContentType `json:"type"`
	URL       string      `json:"url,omitempty"`
	QuizID    string      `json:"quiz_id,omitempty"`
}

// Tree is a whole course hierarchy, as persisted by Repository.SaveTree.
type Tree struct {
	Course   Course
	Modules  []Module
	Sessions []Session
	Contents []ContentItem
}

// NewCourse contains the information needed to import a course and its hierarchy.
type NewCourse struct {
	ID               string      `json:"id" validate:"required,alphanum_"`
	InstitutionID    string      `json:"institution_id" validate:"required"`
	Title            string      `json:"title" validate:"required"`
	LearningOutcomes []string    `json:"learning_outcomes"`
	Duration         string      `json:"duration"`
	IssuerName       string      `json:"issuer_name"`
	Modules          []NewModule `json:"modules" validate:"dive"`
}

type NewModule struct {
	ID       string       `json:"id" validate:"required,alphanum_"`
	Title    string       `json:"title" validate:"required"`
	Order    int          `json:"order" validate:"gte=0"`
	Sessions []NewSession `json:"sessions" validate:"dive"`
}

type NewSession struct {
	ID       string           `json:"id" validate:"required,alphanum_"`
	Title    string           `json:"title" validate:"required"`
	Order    int              `json:"order" validate:"gte=0"`
	Contents []NewContentItem `json:"contents" validate:"dive"`
}

type NewContentItem struct {
	ID     string      `json:"id" validate:"required,alphanum_"`
	Title  string      `json:"title" validate:"required"`
	Order  int         `json:"order" validate:"gte=0"`
	Type   ContentType `json:"type" validate:"required,contenttype"`
	URL    string      `json:"url" validate:"omitempty,url"`
	QuizID string      `json:"quiz_id" validate:"omitempty,alphanum_"`
}

func (nc *NewCourse) clean() {
	nc.ID = core.CleanString(nc.ID)
	nc.Title = core.CleanString(nc.Title)
	nc.IssuerName = core.CleanString(nc.IssuerName)
	for m := range nc.Modules {
		mod := &nc.Modules[m]
		mod.ID = core.CleanString(mod.ID)
		mod.Title = core.CleanString(mod.Title)
		for s := range mod.Sessions {
			sess := &mod.Sessions[s]
			sess.ID = core.CleanString(sess.ID)
			sess.Title = core.CleanString(sess.Title)
			for c := range sess.Contents {
				item := &sess.Contents[c]
				item.ID = core.CleanString(item.ID)
				item.Title = core.CleanString(item.Title)
				item.Type = ContentType(core.CleanString(string(item.Type), true /* lower */))
				item.QuizID = core.CleanString(item.QuizID)
			}
		}
	}
}

func (nc *NewCourse) Validate(validate *validator.Validate) error {
	nc.clean()
	return validate.Struct(nc)
}

// Tree flattens the nested input into the persisted hierarchy, filling the denormalized ids.
func (nc NewCourse) Tree() Tree {
	tree := Tree{
		Course: Course{
			ID:               nc.ID,
			InstitutionID:    nc.InstitutionID,
			Title:            nc.Title,
			LearningOutcomes: nc.LearningOutcomes,
			Duration:         nc.Duration,
			IssuerName:       nc.IssuerName,
		},
	}
	if tree.Course.LearningOutcomes == nil {
		tree.Course.LearningOutcomes = []string{}
	}

	for _, nm := range nc.Modules {
		tree.Modules = append(tree.Modules, Module{ID: nm.ID, CourseID: nc.ID, Title: nm.Title, Order: nm.Order})
		for _, ns := range nm.Sessions {
			tree.Sessions = append(tree.Sessions, Session{ID: ns.ID, ModuleID: nm.ID, Title: ns.Title, Order: ns.Order})
			for _, ni := range ns.Contents {
				tree.Contents = append(tree.Contents, ContentItem{
					ID:        ni.ID,
					SessionID: ns.ID,
					ModuleID:  nm.ID,
					CourseID:  nc.ID,
					Title:     ni.Title,
					Order:     ni.Order,
					Type:      ni.Type,
					URL:       ni.URL,
					QuizID:    ni.QuizID,
				})
			}
		}
	}
	return tree
}
