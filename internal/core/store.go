package core

import (
	"context"
	"time"
)

// Store is the relational backend consumed by the service. Implementations
// return *NotFoundError for missing single rows and *ValidationError for
// dangling foreign-key references, so the service never inspects driver
// errors directly.
type Store interface {
	// Students
	Students(ctx context.Context) ([]Student, error)
	StudentByEmail(ctx context.Context, email string) (*Student, error)
	CreateStudent(ctx context.Context, fullName, email string, phone *string) (Student, error)
	UpdateStudent(ctx context.Context, id int64, fullName, email string, phone *string) (Student, error)
	DeleteStudent(ctx context.Context, id int64) error

	// Trainings
	Trainings(ctx context.Context) ([]Training, error)
	CreateTraining(ctx context.Context, title string) (Training, error)
	UpdateTraining(ctx context.Context, id int64, title string) (Training, error)
	DeleteTraining(ctx context.Context, id int64) error

	// Sessions
	SessionsByTraining(ctx context.Context, trainingID int64) ([]Session, error)
	CreateSession(ctx context.Context, trainingID int64, start, end time.Time, capacity int) (Session, error)
	DeleteSession(ctx context.Context, id int64) error

	// Enrollments
	EnrollmentByID(ctx context.Context, id int64) (Enrollment, error)
	UpdateEnrollmentDecision(ctx context.Context, id int64, status Status, message string) (Enrollment, error)
	EnrollmentsByStudent(ctx context.Context, studentID int64) ([]StatusView, error)
	ListEnrollments(ctx context.Context) ([]ApplicationView, error)

	// Decision audit trail
	InsertDecision(ctx context.Context, rec DecisionRecord) error
	Decisions(ctx context.Context) ([]DecisionRecord, error)

	// BeginApply opens the transactional boundary for a submission:
	// student resolution and enrollment creation commit or roll back
	// together.
	BeginApply(ctx context.Context) (ApplyTx, error)
}

// ApplyTx scopes the submission writes to a single transaction.
// Rollback after Commit must be a no-op so callers can defer it.
type ApplyTx interface {
	StudentByEmail(ctx context.Context, email string) (*Student, error)

	// InsertStudent inserts unless the email already exists; on conflict
	// it returns (nil, nil) and the caller re-reads the winning row.
	InsertStudent(ctx context.Context, fullName, email string, phone *string) (*Student, error)

	CreateEnrollment(ctx context.Context, e Enrollment) (Enrollment, error)

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// BlobStore is the object-storage backend holding uploaded files.
type BlobStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) error
	SignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}
