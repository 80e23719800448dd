package course

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrNotFound        = errors.New("course not found")
	ErrContentNotFound = errors.New("content item not found")
)

type Repository interface {
	GetCourse(ctx context.Context, id string) (Course, error)
	ListCourses(ctx context.Context) ([]Course, error)
	ListModules(ctx context.Context, courseID string) ([]Module, error)
	// ListSessions returns the sessions of every module of the course.
	ListSessions(ctx context.Context, courseID string) ([]Session, error)
	ListContentItems(ctx context.Context, courseID string) ([]ContentItem, error)
	// SaveTree creates or replaces the course and upserts its hierarchy.
	SaveTree(ctx context.Context, tree Tree) error
}

// Load fetches a course and builds its hierarchy index.
func Load(ctx context.Context, repo Repository, courseID string) (Course, *Index, error) {
	c, err := repo.GetCourse(ctx, courseID)
	if err != nil {
		return Course{}, nil, err
	}
	modules, err := repo.ListModules(ctx, courseID)
	if err != nil {
		return Course{}, nil, errors.Wrap(err, "listing modules")
	}
	sessions, err := repo.ListSessions(ctx, courseID)
	if err != nil {
		return Course{}, nil, errors.Wrap(err, "listing sessions")
	}
	items, err := repo.ListContentItems(ctx, courseID)
	if err != nil {
		return Course{}, nil, errors.Wrap(err, "listing content items")
	}
	return c, NewIndex(courseID, modules, sessions, items), nil
}
