package inmemdb

import (
	"sync"

	"github.com/trezcool/masomo-courseware/core/assessment"
	"github.com/trezcool/masomo-courseware/core/certificate"
	"github.com/trezcool/masomo-courseware/core/course"
	"github.com/trezcool/masomo-courseware/core/learning"
	"github.com/trezcool/masomo-courseware/core/progress"
)

type (
	// DB is a process local database used in tests and by the `memory` engine.
	DB struct {
		catalog      *catalogTables
		progress     *progressTable
		assessments  *assessmentTables
		certificates *certificateTable
		learners     *learnerTable
	}

	catalogTables struct {
		sync.RWMutex
		courses  map[string]course.Course
		modules  map[string]course.Module
		sessions map[string]course.Session
		contents map[string]course.ContentItem
	}

	progressKey struct {
		kind          progress.Kind
		ownerID       string
		courseID      string
		contentItemID string
	}

	progressTable struct {
		sync.RWMutex
		table map[progressKey]progress.Record
	}

	assessmentTables struct {
		sync.RWMutex
		assignments map[string]assessment.Assignment
		quizzes     map[string]assessment.Quiz
		submissions []assessment.Submission // insertion order
		attempts    []assessment.QuizAttempt
	}

	certificateKey struct {
		studentID string
		courseID  string
	}

	certificateTable struct {
		sync.RWMutex
		table map[certificateKey]certificate.Certificate
	}

	learnerTable struct {
		sync.RWMutex
		table map[string]learning.Learner
	}
)

func Open() *DB {
	return &DB{
		catalog: &catalogTables{
			courses:  make(map[string]course.Course),
			modules:  make(map[string]course.Module),
			sessions: make(map[string]course.Session),
			contents: make(map[string]course.ContentItem),
		},
		progress: &progressTable{table: make(map[progressKey]progress.Record)},
		assessments: &assessmentTables{
			assignments: make(map[string]assessment.Assignment),
			quizzes:     make(map[string]assessment.Quiz),
		},
		certificates: &certificateTable{table: make(map[certificateKey]certificate.Certificate)},
		learners:     &learnerTable{table: make(map[string]learning.Learner)},
	}
}
