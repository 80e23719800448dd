package learning

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-courseware/core"
)

var ErrLearnerNotFound = errors.New("learner not found")

type Learner struct {
	ID            string `json:"id"`
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name"`
	Email         string `json:"email"`
}

func (l Learner) Actor() core.Actor {
	return core.Actor{ID: l.ID, Name: l.Name, Email: l.Email}
}

// Roster resolves learners. Learner management itself lives outside of this service.
type Roster interface {
	GetLearner(ctx context.Context, id string) (Learner, error)
	SaveLearner(ctx context.Context, l Learner) error
}

type NewLearner struct {
	ID            string `json:"id" validate:"required,alphanum_"`
	InstitutionID string `json:"institution_id"`
	Name          string `json:"name" validate:"required"`
	Email         string `json:"email" validate:"omitempty,email"`
}

func (nl *NewLearner) Validate(validate *validator.Validate) error {
	nl.ID = core.CleanString(nl.ID)
	nl.Name = core.CleanString(nl.Name)
	nl.Email = core.CleanString(nl.Email, true /* lower */)
	return validate.Struct(nl)
}

func (nl NewLearner) Learner() Learner {
	return Learner{ID: nl.ID, InstitutionID: nl.InstitutionID, Name: nl.Name, Email: nl.Email}
}
