package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func decideFixture(t *testing.T, allowRedecide bool) (*Service, *MemStore, Enrollment) {
	t.Helper()
	svc, store, _, sub := applyFixture(t)
	if _, err := svc.Apply(context.Background(), sub); err != nil {
		t.Fatalf("seed Apply() error = %v", err)
	}
	enr := store.EnrollmentRows[0]

	svc = NewService(store, NewMemBlobs(), Options{AllowRedecide: allowRedecide})
	return svc, store, enr
}

func TestDecideInvalidStatus(t *testing.T) {
	svc, store, enr := decideFixture(t, true)

	for _, status := range []Status{StatusPending, Status("approved"), Status("")} {
		_, err := svc.Decide(context.Background(), enr.ID, status, "")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("Decide(%q) error = %v, want ValidationError", status, err)
		}
	}
	if store.EnrollmentRows[0].Status != StatusPending {
		t.Errorf("status changed to %q", store.EnrollmentRows[0].Status)
	}
}

func TestDecideSetsCannedMessage(t *testing.T) {
	tests := []struct {
		status  Status
		message string
	}{
		{StatusAccepted, AcceptedMessage},
		{StatusRefused, "Votre candidature n'a pas été retenue."},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			svc, _, enr := decideFixture(t, true)

			updated, err := svc.Decide(context.Background(), enr.ID, tt.status, "203.0.113.9")
			if err != nil {
				t.Fatalf("Decide() error = %v", err)
			}
			if updated.Status != tt.status {
				t.Errorf("status = %q, want %q", updated.Status, tt.status)
			}
			if updated.DecisionMessage == nil || *updated.DecisionMessage != tt.message {
				t.Errorf("message = %v, want %q", updated.DecisionMessage, tt.message)
			}
		})
	}
}

func TestDecideUnknownEnrollment(t *testing.T) {
	svc, _, _ := decideFixture(t, true)

	_, err := svc.Decide(context.Background(), 4242, StatusAccepted, "")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Decide() error = %v, want NotFoundError", err)
	}
}

func TestDecideRedecide(t *testing.T) {
	t.Run("allowed overwrites", func(t *testing.T) {
		svc, _, enr := decideFixture(t, true)

		if _, err := svc.Decide(context.Background(), enr.ID, StatusRefused, ""); err != nil {
			t.Fatalf("first Decide() error = %v", err)
		}
		updated, err := svc.Decide(context.Background(), enr.ID, StatusAccepted, "")
		if err != nil {
			t.Fatalf("second Decide() error = %v", err)
		}
		if updated.Status != StatusAccepted {
			t.Errorf("status = %q, want %q", updated.Status, StatusAccepted)
		}
	})

	t.Run("disabled rejects", func(t *testing.T) {
		svc, store, enr := decideFixture(t, false)

		if _, err := svc.Decide(context.Background(), enr.ID, StatusRefused, ""); err != nil {
			t.Fatalf("first Decide() error = %v", err)
		}
		_, err := svc.Decide(context.Background(), enr.ID, StatusAccepted, "")
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("second Decide() error = %v, want ValidationError", err)
		}
		if verr.Message != "candidature déjà traitée" {
			t.Errorf("message = %q", verr.Message)
		}
		if store.EnrollmentRows[0].Status != StatusRefused {
			t.Errorf("status = %q, want unchanged %q", store.EnrollmentRows[0].Status, StatusRefused)
		}
	})
}

func TestDecideWritesAuditRecord(t *testing.T) {
	svc, store, enr := decideFixture(t, true)

	before := time.Now()
	if _, err := svc.Decide(context.Background(), enr.ID, StatusAccepted, "198.51.100.4"); err != nil {
		t.Fatalf("Decide() error = %v", err)
	}

	if len(store.DecisionRows) != 1 {
		t.Fatalf("decisions = %d, want 1", len(store.DecisionRows))
	}
	rec := store.DecisionRows[0]
	if rec.EnrollmentID != enr.ID {
		t.Errorf("enrollment_id = %d, want %d", rec.EnrollmentID, enr.ID)
	}
	if rec.OldStatus != StatusPending || rec.NewStatus != StatusAccepted {
		t.Errorf("transition = %q -> %q", rec.OldStatus, rec.NewStatus)
	}
	if rec.IPAddress != "198.51.100.4" {
		t.Errorf("ip = %q", rec.IPAddress)
	}
	if rec.CreatedAt.Before(before.Add(-time.Second)) {
		t.Errorf("created_at = %v, too old", rec.CreatedAt)
	}
}
