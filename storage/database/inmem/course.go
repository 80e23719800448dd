package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/masomo-courseware/core/course"
)

type courseRepository struct {
	db *catalogTables
}

var _ course.Repository = (*courseRepository)(nil)

func NewCourseRepository(db *DB) course.Repository {
	return &courseRepository{db: db.catalog}
}

func (repo *courseRepository) GetCourse(_ context.Context, id string) (course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if c, ok := repo.db.courses[id]; ok {
		return c, nil
	}
	return course.Course{}, course.ErrNotFound
}

func (repo *courseRepository) ListCourses(_ context.Context) ([]course.Course, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	courses := make([]course.Course, 0, len(repo.db.courses))
	for _, c := range repo.db.courses {
		courses = append(courses, c)
	}
	sort.Slice(courses, func(i, j int) bool { return courses[i].ID < courses[j].ID })
	return courses, nil
}

func (repo *courseRepository) ListModules(_ context.Context, courseID string) ([]course.Module, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	modules := make([]course.Module, 0)
	for _, m := range repo.db.modules {
		if m.CourseID == courseID {
			modules = append(modules, m)
		}
	}
	sort.Slice(modules, func(i, j int) bool { return modules[i].ID < modules[j].ID })
	return modules, nil
}

func (repo *courseRepository) ListSessions(_ context.Context, courseID string) ([]course.Session, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	sessions := make([]course.Session, 0)
	for _, s := range repo.db.sessions {
		if m, ok := repo.db.modules[s.ModuleID]; ok && m.CourseID == courseID {
			sessions = append(sessions, s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool { return sessions[i].ID < sessions[j].ID })
	return sessions, nil
}

func (repo *courseRepository) ListContentItems(_ context.Context, courseID string) ([]course.ContentItem, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	items := make([]course.ContentItem, 0)
	for _, item := range repo.db.contents {
		if item.CourseID == courseID {
			items = append(items, item)
		}
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
	return items, nil
}

func (repo *courseRepository) SaveTree(_ context.Context, tree course.Tree) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	c := tree.Course
	c.LearningOutcomes = append([]string{}, c.LearningOutcomes...)
	repo.db.courses[c.ID] = c
	for _, m := range tree.Modules {
		repo.db.modules[m.ID] = m
	}
	for _, s := range tree.Sessions {
		repo.db.sessions[s.ID] = s
	}
	for _, item := range tree.Contents {
		repo.db.contents[item.ID] = item
	}
	return nil
}
