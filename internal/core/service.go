package core

import (
	"context"
	"strings"
	"time"
)

// DefaultSignedURLTTL is how long admin download links stay valid.
const DefaultSignedURLTTL = time.Hour

// Service implements the application and decision workflow on top of a
// relational Store and a BlobStore. Both collaborators are injected so
// tests can substitute in-memory implementations.
type Service struct {
	store         Store
	blobs         BlobStore
	allowRedecide bool
	signedURLTTL  time.Duration
	now           func() time.Time
}

// Options tunes service behavior. Zero values fall back to defaults.
type Options struct {
	// AllowRedecide permits overwriting an already-decided enrollment.
	AllowRedecide bool

	// SignedURLTTL is the validity window for admin download links.
	SignedURLTTL time.Duration

	// Now overrides the clock, for tests.
	Now func() time.Time
}

// NewService creates a Service.
func NewService(store Store, blobs BlobStore, opts Options) *Service {
	if opts.SignedURLTTL <= 0 {
		opts.SignedURLTTL = DefaultSignedURLTTL
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:         store,
		blobs:         blobs,
		allowRedecide: opts.AllowRedecide,
		signedURLTTL:  opts.SignedURLTTL,
		now:           opts.Now,
	}
}

// Students lists all students ordered by id.
func (s *Service) Students(ctx context.Context) ([]Student, error) {
	return s.store.Students(ctx)
}

// CreateStudent adds a student via the admin CRUD surface.
// The email is normalized the same way submissions are.
func (s *Service) CreateStudent(ctx context.Context, fullName, email string, phone *string) (Student, error) {
	if strings.TrimSpace(fullName) == "" || strings.TrimSpace(email) == "" {
		return Student{}, Validationf("full_name et email requis")
	}
	return s.store.CreateStudent(ctx, fullName, NormalizeEmail(email), phone)
}

// UpdateStudent replaces a student's identity fields.
func (s *Service) UpdateStudent(ctx context.Context, id int64, fullName, email string, phone *string) (Student, error) {
	if strings.TrimSpace(fullName) == "" || strings.TrimSpace(email) == "" {
		return Student{}, Validationf("full_name et email requis")
	}
	return s.store.UpdateStudent(ctx, id, fullName, NormalizeEmail(email), phone)
}

// DeleteStudent removes a student.
func (s *Service) DeleteStudent(ctx context.Context, id int64) error {
	return s.store.DeleteStudent(ctx, id)
}

// Trainings lists all trainings ordered by id.
func (s *Service) Trainings(ctx context.Context) ([]Training, error) {
	return s.store.Trainings(ctx)
}

// CreateTraining adds a training.
func (s *Service) CreateTraining(ctx context.Context, title string) (Training, error) {
	if strings.TrimSpace(title) == "" {
		return Training{}, Validationf("title requis")
	}
	return s.store.CreateTraining(ctx, title)
}

// UpdateTraining renames a training.
func (s *Service) UpdateTraining(ctx context.Context, id int64, title string) (Training, error) {
	if strings.TrimSpace(title) == "" {
		return Training{}, Validationf("title requis")
	}
	return s.store.UpdateTraining(ctx, id, title)
}

// DeleteTraining removes a training.
func (s *Service) DeleteTraining(ctx context.Context, id int64) error {
	return s.store.DeleteTraining(ctx, id)
}

// SessionsByTraining lists a training's sessions ordered by start date.
func (s *Service) SessionsByTraining(ctx context.Context, trainingID int64) ([]Session, error) {
	return s.store.SessionsByTraining(ctx, trainingID)
}

// CreateSession schedules a session. Capacity defaults to
// DefaultSessionCapacity when not positive.
func (s *Service) CreateSession(ctx context.Context, trainingID int64, start, end time.Time, capacity int) (Session, error) {
	if trainingID == 0 || start.IsZero() || end.IsZero() {
		return Session{}, Validationf("training_id, start_date et end_date requis")
	}
	if capacity <= 0 {
		capacity = DefaultSessionCapacity
	}
	return s.store.CreateSession(ctx, trainingID, start, end, capacity)
}

// DeleteSession removes a session.
func (s *Service) DeleteSession(ctx context.Context, id int64) error {
	return s.store.DeleteSession(ctx, id)
}

// Decisions returns the decision audit trail, newest first.
func (s *Service) Decisions(ctx context.Context) ([]DecisionRecord, error) {
	return s.store.Decisions(ctx)
}
