package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestStatusForRequiresEmail(t *testing.T) {
	svc := NewService(NewMemStore(), NewMemBlobs(), Options{})

	for _, email := range []string{"", "   "} {
		_, err := svc.StatusFor(context.Background(), email)
		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("StatusFor(%q) error = %v, want ValidationError", email, err)
		}
	}
}

func TestStatusForUnknownEmail(t *testing.T) {
	svc := NewService(NewMemStore(), NewMemBlobs(), Options{})

	views, err := svc.StatusFor(context.Background(), "nobody@example.com")
	if err != nil {
		t.Fatalf("StatusFor() error = %v", err)
	}
	if views == nil || len(views) != 0 {
		t.Errorf("views = %v, want empty non-nil list", views)
	}
}

func TestStatusForNewestFirst(t *testing.T) {
	store := NewMemStore()
	blobs := NewMemBlobs()
	training := store.SeedTraining("Go Backend")
	session := store.SeedSession(training.ID,
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 12, 18, 0, 0, 0, 0, time.UTC))

	clock := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	svc := NewService(store, blobs, Options{Now: func() time.Time {
		clock = clock.Add(time.Hour)
		return clock
	}})

	sub := Submission{
		FullName:    "Jane Doe",
		Email:       "jane@example.com",
		TrainingID:  training.ID,
		SessionID:   session.ID,
		Resume:      &FileUpload{Name: "cv.pdf", Data: []byte("r")},
		CoverLetter: &FileUpload{Name: "lm.pdf", Data: []byte("c")},
	}
	for i := 0; i < 3; i++ {
		if _, err := svc.Apply(context.Background(), sub); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}

	views, err := svc.StatusFor(context.Background(), "JANE@example.com")
	if err != nil {
		t.Fatalf("StatusFor() error = %v", err)
	}
	if len(views) != 3 {
		t.Fatalf("views = %d, want 3", len(views))
	}
	for i := 1; i < len(views); i++ {
		if views[i].SubmittedAt.After(views[i-1].SubmittedAt) {
			t.Errorf("views[%d] newer than views[%d]", i, i-1)
		}
	}
	if views[0].Training.Title != "Go Backend" {
		t.Errorf("training title = %q", views[0].Training.Title)
	}
	if !views[0].Session.StartDate.Equal(session.StartDate) {
		t.Errorf("session start = %v, want %v", views[0].Session.StartDate, session.StartDate)
	}
}
