package sqlxrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/learning"
)

type learnerRow struct {
	ID            string `db:"id"`
	InstitutionID string `db:"institution_id"`
	Name          string `db:"name"`
	Email         string `db:"email"`
}

type rosterRepository struct {
	base
}

var _ learning.Roster = (*rosterRepository)(nil)

func NewRosterRepository(db core.DB) learning.Roster {
	return &rosterRepository{base: base{db: db}}
}

func (repo rosterRepository) GetLearner(ctx context.Context, id string) (learning.Learner, error) {
	var row learnerRow
	if err := repo.get(ctx, &row, `SELECT id, institution_id, name, email FROM learners WHERE id = ?`, id); err != nil {
		if isNoRows(err) {
			return learning.Learner{}, learning.ErrLearnerNotFound
		}
		return learning.Learner{}, errors.Wrap(err, "selecting learner")
	}
	return learning.Learner{ID: row.ID, InstitutionID: row.InstitutionID, Name: row.Name, Email: row.Email}, nil
}

func (repo rosterRepository) SaveLearner(ctx context.Context, l learning.Learner) error {
	_, err := repo.exec(ctx, repo.db, `
		INSERT INTO learners (id, institution_id, name, email) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			institution_id = EXCLUDED.institution_id, name = EXCLUDED.name, email = EXCLUDED.email`,
		l.ID, l.InstitutionID, l.Name, l.Email,
	)
	return errors.Wrap(err, "upserting learner")
}
