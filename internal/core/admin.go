package core

import (
	"context"
	"sync"

	"github.com/formatrack/server/internal/logging"
)

// ListApplications returns every enrollment, newest first, with
// time-limited signed download URLs for the resume and cover letter.
//
// Signing fans out in parallel: each file is an independent read-only
// call with no shared state. It is also best-effort per file, so a
// signing failure omits that one URL instead of failing the listing.
func (s *Service) ListApplications(ctx context.Context) ([]ApplicationView, error) {
	apps, err := s.store.ListEnrollments(ctx)
	if err != nil {
		return nil, err
	}

	var wg sync.WaitGroup
	for i := range apps {
		wg.Add(1)
		go func(app *ApplicationView) {
			defer wg.Done()
			app.ResumeURL = s.signBestEffort(ctx, app.ResumePath)
			app.CoverLetterURL = s.signBestEffort(ctx, app.CoverLetterPath)
		}(&apps[i])
	}
	wg.Wait()

	return apps, nil
}

// signBestEffort returns a signed URL for key, or "" when key is empty
// or signing fails.
func (s *Service) signBestEffort(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	url, err := s.blobs.SignedURL(ctx, key, s.signedURLTTL)
	if err != nil {
		logging.FromContext(ctx).Warn("signed URL generation failed", "key", key, "error", err)
		return ""
	}
	return url
}
