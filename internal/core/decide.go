package core

import (
	"context"

	"github.com/formatrack/server/internal/logging"
	"github.com/google/uuid"
)

// Canned decision messages. Setting the status and the message is the
// whole templating story; there is no customization.
const (
	AcceptedMessage = "Félicitations, vous êtes admissible 🎉"
	RefusedMessage  = "Votre candidature n'a pas été retenue."
)

// Decide transitions an enrollment to accepted or refused and attaches
// the matching canned message. Any other status is rejected. When
// re-deciding is disabled, transitions out of a terminal state fail with
// a ValidationError; otherwise the decision is silently overwritten,
// matching the historical behavior.
//
// actorIP is recorded in the decision audit trail and may be empty.
func (s *Service) Decide(ctx context.Context, enrollmentID int64, status Status, actorIP string) (Enrollment, error) {
	if status != StatusAccepted && status != StatusRefused {
		return Enrollment{}, Validationf("status invalide")
	}

	current, err := s.store.EnrollmentByID(ctx, enrollmentID)
	if err != nil {
		return Enrollment{}, err
	}
	if !s.allowRedecide && current.Status.Terminal() {
		return Enrollment{}, Validationf("candidature déjà traitée")
	}

	message := RefusedMessage
	if status == StatusAccepted {
		message = AcceptedMessage
	}

	updated, err := s.store.UpdateEnrollmentDecision(ctx, enrollmentID, status, message)
	if err != nil {
		return Enrollment{}, err
	}

	rec := DecisionRecord{
		ID:           uuid.New(),
		EnrollmentID: enrollmentID,
		OldStatus:    current.Status,
		NewStatus:    status,
		Message:      message,
		IPAddress:    actorIP,
		CreatedAt:    s.now(),
	}
	if err := s.store.InsertDecision(ctx, rec); err != nil {
		// The decision itself stands; the trail entry is best-effort.
		logging.FromContext(ctx).Warn("decision audit write failed",
			"enrollment_id", enrollmentID, "error", err)
	}
	return updated, nil
}
