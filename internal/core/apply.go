package core

import (
	"context"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/formatrack/server/internal/logging"
)

// SubmittedMessage is returned to the candidate on a successful apply.
const SubmittedMessage = "✅ Candidature envoyée !"

// Apply processes a candidate submission: it resolves the student by
// normalized email (first write wins, repeat applications never update
// name or phone), uploads both files, and creates a pending enrollment.
//
// Student resolution and enrollment creation share one transaction, so a
// failed submission leaves no orphaned rows. The blob uploads happen
// inside that window and are the only state that can leak on failure;
// leaked objects are overwritten by key on retry and are logged.
func (s *Service) Apply(ctx context.Context, sub Submission) (string, error) {
	if strings.TrimSpace(sub.FullName) == "" ||
		strings.TrimSpace(sub.Email) == "" ||
		sub.TrainingID == 0 || sub.SessionID == 0 ||
		sub.Resume == nil || sub.CoverLetter == nil {
		return "", Validationf("Champs requis manquants")
	}

	email := NormalizeEmail(sub.Email)

	tx, err := s.store.BeginApply(ctx)
	if err != nil {
		return "", err
	}
	defer tx.Rollback(ctx)

	student, err := s.resolveStudent(ctx, tx, sub, email)
	if err != nil {
		return "", err
	}

	resumeKey, err := s.uploadFile(ctx, student, sub.Resume)
	if err != nil {
		return "", err
	}
	coverKey, err := s.uploadFile(ctx, student, sub.CoverLetter)
	if err != nil {
		logging.FromContext(ctx).Warn("cover letter upload failed after resume stored",
			"student_id", student.ID, "orphaned_key", resumeKey)
		return "", err
	}

	enr := Enrollment{
		StudentID:       student.ID,
		TrainingID:      sub.TrainingID,
		SessionID:       sub.SessionID,
		ResumePath:      resumeKey,
		CoverLetterPath: coverKey,
		Status:          StatusPending,
		SubmittedAt:     s.now(),
	}
	if note := strings.TrimSpace(sub.Note); note != "" {
		enr.Note = &note
	}
	if _, err := tx.CreateEnrollment(ctx, enr); err != nil {
		return "", err
	}

	if err := tx.Commit(ctx); err != nil {
		return "", storagef("commit submission", err)
	}
	return SubmittedMessage, nil
}

// resolveStudent returns the student for the normalized email, creating
// one when absent. The insert uses conflict-free semantics: if another
// submission won the race, the existing row is re-read and reused as-is.
func (s *Service) resolveStudent(ctx context.Context, tx ApplyTx, sub Submission, email string) (*Student, error) {
	student, err := tx.StudentByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if student != nil {
		return student, nil
	}

	var phone *string
	if p := strings.TrimSpace(sub.Phone); p != "" {
		phone = &p
	}
	student, err = tx.InsertStudent(ctx, sub.FullName, email, phone)
	if err != nil {
		return nil, err
	}
	if student == nil {
		// Lost the insert race; the committed row wins.
		student, err = tx.StudentByEmail(ctx, email)
		if err != nil {
			return nil, err
		}
		if student == nil {
			return nil, storagef("resolve student", fmt.Errorf("insert conflict but no row for %s", email))
		}
	}
	return student, nil
}

// uploadFile stores one attachment and returns its object key.
func (s *Service) uploadFile(ctx context.Context, student *Student, f *FileUpload) (string, error) {
	key := objectKey(student.ID, student.FullName, s.now(), f.Name)
	if err := s.blobs.Upload(ctx, key, f.ContentType, f.Data); err != nil {
		return "", storagef("upload "+key, err)
	}
	return key, nil
}

// objectKey builds the storage key for an uploaded file:
// student-<id>/<unix-millis>-<slug of full name>.<ext>
func objectKey(studentID int64, fullName string, at time.Time, filename string) string {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(filename)), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("student-%d/%d-%s.%s", studentID, at.UnixMilli(), Slugify(fullName), ext)
}
