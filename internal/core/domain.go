// Package core provides the business logic for the training application
// workflow: candidate submissions, admission decisions, and status lookups.
// This package has no HTTP or driver dependencies and can be exercised with
// in-memory stores.
package core

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of an enrollment.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRefused  Status = "refused"
)

// Terminal reports whether the status is a decision outcome.
func (s Status) Terminal() bool {
	return s == StatusAccepted || s == StatusRefused
}

// Student is a candidate identified by email. The email is stored
// trimmed and lowercased so identity is case-insensitive.
type Student struct {
	ID        int64     `json:"id"`
	FullName  string    `json:"full_name"`
	Email     string    `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Training is a course candidates can apply to.
type Training struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// Session is a scheduled run of a training.
type Session struct {
	ID         int64     `json:"id"`
	TrainingID int64     `json:"training_id"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Capacity   int       `json:"capacity"`
}

// DefaultSessionCapacity is applied when a session is created without
// an explicit capacity.
const DefaultSessionCapacity = 20

// Enrollment is a candidate's application to a specific training session.
// The resume and cover letter paths are object-store keys set once at
// creation and never updated.
type Enrollment struct {
	ID              int64     `json:"id"`
	StudentID       int64     `json:"student_id"`
	TrainingID      int64     `json:"training_id"`
	SessionID       int64     `json:"session_id"`
	Note            *string   `json:"note"`
	ResumePath      string    `json:"resume_path"`
	CoverLetterPath string    `json:"cover_letter_path"`
	Status          Status    `json:"status"`
	DecisionMessage *string   `json:"decision_message"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

// FileUpload is an in-memory uploaded file.
type FileUpload struct {
	Name        string
	ContentType string
	Data        []byte
}

// Submission carries a candidate's application form.
type Submission struct {
	FullName    string
	Email       string
	Phone       string
	TrainingID  int64
	SessionID   int64
	Note        string
	Resume      *FileUpload
	CoverLetter *FileUpload
}

// TrainingRef is the training fields exposed on enrollment views.
type TrainingRef struct {
	Title string `json:"title"`
}

// SessionRef is the session fields exposed on enrollment views.
type SessionRef struct {
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// StudentRef is the student fields exposed on the admin view.
type StudentRef struct {
	FullName string  `json:"full_name"`
	Email    string  `json:"email"`
	Phone    *string `json:"phone"`
}

// StatusView is the candidate-facing read of an enrollment. File paths
// are deliberately absent: candidates never see storage keys.
type StatusView struct {
	ID              int64       `json:"id"`
	Status          Status      `json:"status"`
	DecisionMessage *string     `json:"decision_message"`
	SubmittedAt     time.Time   `json:"submitted_at"`
	Training        TrainingRef `json:"training"`
	Session         SessionRef  `json:"session"`
}

// ApplicationView is the admin-facing read of an enrollment, enriched
// with signed download URLs when signing succeeds.
type ApplicationView struct {
	ID              int64       `json:"id"`
	Status          Status      `json:"status"`
	Note            *string     `json:"note"`
	ResumePath      string      `json:"resume_path"`
	CoverLetterPath string      `json:"cover_letter_path"`
	SubmittedAt     time.Time   `json:"submitted_at"`
	Student         StudentRef  `json:"student"`
	Training        TrainingRef `json:"training"`
	Session         SessionRef  `json:"session"`
	ResumeURL       string      `json:"resume_url,omitempty"`
	CoverLetterURL  string      `json:"cover_letter_url,omitempty"`
}

// DecisionRecord is an audit entry written for every admission decision.
type DecisionRecord struct {
	ID           uuid.UUID `json:"id"`
	EnrollmentID int64     `json:"enrollment_id"`
	OldStatus    Status    `json:"old_status"`
	NewStatus    Status    `json:"new_status"`
	Message      string    `json:"message"`
	IPAddress    string    `json:"ip_address,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}
