package sqlxrepos

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-courseware/core"
	"github.com/trezcool/masomo-courseware/core/certificate"
)

type certificateRow struct {
	ID            string    `db:"id"`
	StudentID     string    `db:"student_id"`
	StudentName   string    `db:"student_name"`
	CourseID      string    `db:"course_id"`
	CourseTitle   string    `db:"course_title"`
	IssuerName    string    `db:"issuer_name"`
	InstitutionID string    `db:"institution_id"`
	IssuedAt      time.Time `db:"issued_at"`
}

func (row certificateRow) certificate() certificate.Certificate {
	return certificate.Certificate{
		ID:            row.ID,
		StudentID:     row.StudentID,
		StudentName:   row.StudentName,
		CourseID:      row.CourseID,
		CourseTitle:   row.CourseTitle,
		IssuerName:    row.IssuerName,
		InstitutionID: row.InstitutionID,
		IssuedAt:      row.IssuedAt.UTC(),
	}
}

type certificateRepository struct {
	base
}

var _ certificate.Repository = (*certificateRepository)(nil)

func NewCertificateRepository(db core.DB) certificate.Repository {
	return &certificateRepository{base: base{db: db}}
}

const selectCertificate = `
	SELECT id, student_id, student_name, course_id, course_title, issuer_name, institution_id, issued_at
	FROM certificates`

func (repo certificateRepository) GetCertificate(ctx context.Context, studentID, courseID string) (certificate.Certificate, error) {
	var row certificateRow
	if err := repo.get(ctx, &row, selectCertificate+` WHERE student_id = ? AND course_id = ?`, studentID, courseID); err != nil {
		if isNoRows(err) {
			return certificate.Certificate{}, certificate.ErrNotFound
		}
		return certificate.Certificate{}, errors.Wrap(err, "selecting certificate")
	}
	return row.certificate(), nil
}

// InsertCertificate relies on the (student_id, course_id) unique constraint: the loser of a race inserts nothing.
func (repo certificateRepository) InsertCertificate(ctx context.Context, cert certificate.Certificate) (certificate.Certificate, bool, error) {
	res, err := repo.exec(ctx, repo.db, `
		INSERT INTO certificates
			(id, student_id, student_name, course_id, course_title, issuer_name, institution_id, issued_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (student_id, course_id) DO NOTHING`,
		cert.ID, cert.StudentID, cert.StudentName, cert.CourseID, cert.CourseTitle,
		cert.IssuerName, cert.InstitutionID, cert.IssuedAt.UTC(),
	)
	if err != nil {
		return certificate.Certificate{}, false, errors.Wrap(err, "inserting certificate")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return certificate.Certificate{}, false, errors.Wrap(err, "inserting certificate")
	}

	stored, err := repo.GetCertificate(ctx, cert.StudentID, cert.CourseID)
	if err != nil {
		return certificate.Certificate{}, false, err
	}
	return stored, n == 1, nil
}

func (repo certificateRepository) ListByStudent(ctx context.Context, studentID string) ([]certificate.Certificate, error) {
	var rows []certificateRow
	if err := repo.selekt(ctx, &rows, selectCertificate+` WHERE student_id = ? ORDER BY issued_at, course_id`, studentID); err != nil {
		return nil, errors.Wrap(err, "selecting certificates")
	}
	certs := make([]certificate.Certificate, 0, len(rows))
	for _, row := range rows {
		certs = append(certs, row.certificate())
	}
	return certs, nil
}
