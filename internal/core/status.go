package core

import "context"

// StatusFor returns the candidate's enrollments, newest submission
// first, enriched with training and session details. An email with no
// matching student yields an empty list, not an error: callers cannot
// distinguish "no applications" from "unknown email".
func (s *Service) StatusFor(ctx context.Context, email string) ([]StatusView, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return nil, Validationf("email requis")
	}

	student, err := s.store.StudentByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if student == nil {
		return []StatusView{}, nil
	}
	return s.store.EnrollmentsByStudent(ctx, student.ID)
}
