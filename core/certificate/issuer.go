package certificate

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-courseware/core/course"
)

var (
	// errors
	ErrNotFound = errors.New("certificate not found")

	newIDFunc = uuid.NewString // mockable
)

// Certificate is issued once per (student, course) and never updated.
type Certificate struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	StudentName   string    `json:"student_name"`
	CourseID      string    `json:"course_id"`
	CourseTitle   string    `json:"course_title"`
	IssuerName    string    `json:"issuer_name"`
	InstitutionID string    `json:"institution_id"`
	IssuedAt      time.Time `json:"issued_at"` // UTC
}

type Repository interface {
	GetCertificate(ctx context.Context, studentID, courseID string) (Certificate, error)
	// InsertCertificate stores cert unless one already exists for (student, course).
	// It returns the stored certificate and whether cert was the one inserted.
	InsertCertificate(ctx context.Context, cert Certificate) (Certificate, bool, error)
	ListByStudent(ctx context.Context, studentID string) ([]Certificate, error)
}

// Request describes the certificate to issue when none exists yet.
type Request struct {
	StudentID   string
	StudentName string
	Course      course.Course
	IssuerName  string // overrides Course.IssuerName when set
	Now         time.Time
}

type Issuer struct {
	repo          Repository
	defaultIssuer string
}

func NewIssuer(repo Repository, defaultIssuer string) *Issuer {
	return &Issuer{repo: repo, defaultIssuer: defaultIssuer}
}

func (iss *Issuer) issuerName(req Request) string {
	switch {
	case req.IssuerName != "":
		return req.IssuerName
	case req.Course.IssuerName != "":
		return req.Course.IssuerName
	default:
		return iss.defaultIssuer
	}
}

// IssueIfNeeded returns the existing certificate of (student, course), or issues it.
// created is true only for the call that actually stored the certificate.
func (iss *Issuer) IssueIfNeeded(ctx context.Context, req Request) (cert Certificate, created bool, err error) {
	cert, err = iss.repo.GetCertificate(ctx, req.StudentID, req.Course.ID)
	if err == nil {
		return cert, false, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return Certificate{}, false, errors.Wrap(err, "getting certificate")
	}

	cert = Certificate{
		ID:            newIDFunc(),
		StudentID:     req.StudentID,
		StudentName:   req.StudentName,
		CourseID:      req.Course.ID,
		CourseTitle:   req.Course.Title,
		IssuerName:    iss.issuerName(req),
		InstitutionID: req.Course.InstitutionID,
		IssuedAt:      req.Now.UTC(),
	}
	stored, created, err := iss.repo.InsertCertificate(ctx, cert)
	if err != nil {
		return Certificate{}, false, errors.Wrap(err, "inserting certificate")
	}
	return stored, created, nil
}

func (iss *Issuer) Get(ctx context.Context, studentID, courseID string) (Certificate, error) {
	return iss.repo.GetCertificate(ctx, studentID, courseID)
}

func (iss *Issuer) ListByStudent(ctx context.Context, studentID string) ([]Certificate, error) {
	certs, err := iss.repo.ListByStudent(ctx, studentID)
	if err != nil {
		return nil, errors.Wrap(err, "listing certificates")
	}
	return certs, nil
}
