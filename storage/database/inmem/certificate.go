package inmemdb

import (
	"context"
	"sort"

	"github.com/trezcool/masomo-courseware/core/certificate"
)

type certificateRepository struct {
	db *certificateTable
}

var _ certificate.Repository = (*certificateRepository)(nil)

func NewCertificateRepository(db *DB) certificate.Repository {
	return &certificateRepository{db: db.certificates}
}

func (repo *certificateRepository) GetCertificate(_ context.Context, studentID, courseID string) (certificate.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if cert, ok := repo.db.table[certificateKey{studentID, courseID}]; ok {
		return cert, nil
	}
	return certificate.Certificate{}, certificate.ErrNotFound
}

func (repo *certificateRepository) InsertCertificate(_ context.Context, cert certificate.Certificate) (certificate.Certificate, bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	key := certificateKey{cert.StudentID, cert.CourseID}
	if existing, ok := repo.db.table[key]; ok {
		return existing, false, nil
	}
	repo.db.table[key] = cert
	return cert, true, nil
}

func (repo *certificateRepository) ListByStudent(_ context.Context, studentID string) ([]certificate.Certificate, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	certs := make([]certificate.Certificate, 0)
	for key, cert := range repo.db.table {
		if key.studentID == studentID {
			certs = append(certs, cert)
		}
	}
	sort.Slice(certs, func(i, j int) bool { return certs[i].CourseID < certs[j].CourseID })
	return certs, nil
}
