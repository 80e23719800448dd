package inmemdb

import (
	"context"

	"github.com/trezcool/masomo-courseware/core/learning"
)

type rosterRepository struct {
	db *learnerTable
}

var _ learning.Roster = (*rosterRepository)(nil)

func NewRosterRepository(db *DB) learning.Roster {
	return &rosterRepository{db: db.learners}
}

func (repo *rosterRepository) GetLearner(_ context.Context, id string) (learning.Learner, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if l, ok := repo.db.table[id]; ok {
		return l, nil
	}
	return learning.Learner{}, learning.ErrLearnerNotFound
}

func (repo *rosterRepository) SaveLearner(_ context.Context, l learning.Learner) error {
	repo.db.Lock()
	defer repo.db.Unlock()
	repo.db.table[l.ID] = l
	return nil
}
