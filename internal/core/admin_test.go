package core

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestListApplicationsSignsURLs(t *testing.T) {
	svc, _, _, sub := applyFixture(t)
	if _, err := svc.Apply(context.Background(), sub); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	apps, err := svc.ListApplications(context.Background())
	if err != nil {
		t.Fatalf("ListApplications() error = %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("apps = %d, want 1", len(apps))
	}
	app := apps[0]
	if app.Student.Email != "jane@example.com" {
		t.Errorf("student email = %q", app.Student.Email)
	}
	if !strings.Contains(app.ResumeURL, app.ResumePath) {
		t.Errorf("resume URL %q does not reference key %q", app.ResumeURL, app.ResumePath)
	}
	if !strings.Contains(app.CoverLetterURL, app.CoverLetterPath) {
		t.Errorf("cover letter URL %q does not reference key %q", app.CoverLetterURL, app.CoverLetterPath)
	}
}

func TestListApplicationsSigningIsBestEffort(t *testing.T) {
	svc, store, blobs, sub := applyFixture(t)
	if _, err := svc.Apply(context.Background(), sub); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	enr := store.EnrollmentRows[0]
	blobs.SignErr[enr.ResumePath] = errors.New("credentials expired")

	apps, err := svc.ListApplications(context.Background())
	if err != nil {
		t.Fatalf("ListApplications() error = %v", err)
	}
	if len(apps) != 1 {
		t.Fatalf("apps = %d, want 1", len(apps))
	}
	if apps[0].ResumeURL != "" {
		t.Errorf("resume URL = %q, want empty on signing failure", apps[0].ResumeURL)
	}
	if apps[0].CoverLetterURL == "" {
		t.Errorf("cover letter URL empty, want signed")
	}
}

func TestListApplicationsStoreError(t *testing.T) {
	store := NewMemStore()
	store.FailWith = errors.New("connection reset")
	svc := NewService(store, NewMemBlobs(), Options{})

	if _, err := svc.ListApplications(context.Background()); err == nil {
		t.Fatal("ListApplications() error = nil, want store failure")
	}
}
