package learning

import (
	"context"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-courseware/core/assessment"
	"github.com/trezcool/masomo-courseware/core/course"
)

// Catalog is the seed format loaded by the admin `catalog import` command.
type Catalog struct {
	Courses     []course.NewCourse         `json:"courses" validate:"dive"`
	Assignments []assessment.NewAssignment `json:"assignments" validate:"dive"`
	Quizzes     []assessment.NewQuiz       `json:"quizzes" validate:"dive"`
	Learners    []NewLearner               `json:"learners" validate:"dive"`
}

func (cat *Catalog) Validate(validate *validator.Validate) error {
	for i := range cat.Courses {
		if err := cat.Courses[i].Validate(validate); err != nil {
			return err
		}
	}
	for i := range cat.Learners {
		if err := cat.Learners[i].Validate(validate); err != nil {
			return err
		}
	}
	return validate.Struct(cat)
}

type ImportReport struct {
	Courses     int `json:"courses"`
	Contents    int `json:"contents"`
	Assignments int `json:"assignments"`
	Quizzes     int `json:"quizzes"`
	Learners    int `json:"learners"`
}

// ImportCatalog upserts a validated Catalog.
func (svc *Service) ImportCatalog(ctx context.Context, cat Catalog) (ImportReport, error) {
	var report ImportReport
	for _, nc := range cat.Courses {
		tree := nc.Tree()
		if err := svc.catalog.SaveTree(ctx, tree); err != nil {
			return report, errors.Wrapf(err, "saving course %q", nc.ID)
		}
		report.Courses++
		report.Contents += len(tree.Contents)
	}
	for _, na := range cat.Assignments {
		if err := svc.assessments.SaveAssignment(ctx, na.Assignment()); err != nil {
			return report, errors.Wrapf(err, "saving assignment %q", na.ID)
		}
		report.Assignments++
	}
	for _, nq := range cat.Quizzes {
		if err := svc.assessments.SaveQuiz(ctx, nq.Quiz()); err != nil {
			return report, errors.Wrapf(err, "saving quiz %q", nq.ID)
		}
		report.Quizzes++
	}
	for _, nl := range cat.Learners {
		if err := svc.roster.SaveLearner(ctx, nl.Learner()); err != nil {
			return report, errors.Wrapf(err, "saving learner %q", nl.ID)
		}
		report.Learners++
	}
	return report, nil
}
