package postgres

import (
	"context"
	"errors"

	"github.com/formatrack/server/internal/core"
	"github.com/jackc/pgx/v5"
)

const enrollmentColumns = `id, student_id, training_id, session_id, note,
	resume_path, cover_letter_path, status, decision_message, submitted_at`

func scanEnrollment(row pgx.Row) (core.Enrollment, error) {
	var e core.Enrollment
	err := row.Scan(&e.ID, &e.StudentID, &e.TrainingID, &e.SessionID, &e.Note,
		&e.ResumePath, &e.CoverLetterPath, &e.Status, &e.DecisionMessage, &e.SubmittedAt)
	return e, err
}

func createEnrollment(ctx context.Context, db DBTX, e core.Enrollment) (core.Enrollment, error) {
	created, err := scanEnrollment(db.QueryRow(ctx, `
		INSERT INTO enrollment
			(student_id, training_id, session_id, note, resume_path, cover_letter_path, status, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+enrollmentColumns,
		e.StudentID, e.TrainingID, e.SessionID, e.Note,
		e.ResumePath, e.CoverLetterPath, e.Status, e.SubmittedAt))
	if err != nil {
		return core.Enrollment{}, mapErr("insert enrollment", err)
	}
	return created, nil
}

func (s *Store) EnrollmentByID(ctx context.Context, id int64) (core.Enrollment, error) {
	e, err := scanEnrollment(s.pool.QueryRow(ctx,
		"SELECT "+enrollmentColumns+" FROM enrollment WHERE id = $1", id))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Enrollment{}, &core.NotFoundError{Resource: "enrollment", ID: id}
	}
	if err != nil {
		return core.Enrollment{}, mapErr("select enrollment", err)
	}
	return e, nil
}

func (s *Store) UpdateEnrollmentDecision(ctx context.Context, id int64, status core.Status, message string) (core.Enrollment, error) {
	e, err := scanEnrollment(s.pool.QueryRow(ctx, `
		UPDATE enrollment SET status = $2, decision_message = $3
		WHERE id = $1
		RETURNING `+enrollmentColumns,
		id, status, message))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Enrollment{}, &core.NotFoundError{Resource: "enrollment", ID: id}
	}
	if err != nil {
		return core.Enrollment{}, mapErr("update enrollment decision", err)
	}
	return e, nil
}

func (s *Store) EnrollmentsByStudent(ctx context.Context, studentID int64) ([]core.StatusView, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.id, e.status, e.decision_message, e.submitted_at,
		       t.title, se.start_date, se.end_date
		FROM enrollment e
		JOIN training t ON t.id = e.training_id
		JOIN session se ON se.id = e.session_id
		WHERE e.student_id = $1
		ORDER BY e.submitted_at DESC, e.id DESC`,
		studentID)
	if err != nil {
		return nil, mapErr("list enrollments by student", err)
	}
	defer rows.Close()

	views := []core.StatusView{}
	for rows.Next() {
		var v core.StatusView
		if err := rows.Scan(&v.ID, &v.Status, &v.DecisionMessage, &v.SubmittedAt,
			&v.Training.Title, &v.Session.StartDate, &v.Session.EndDate); err != nil {
			return nil, mapErr("scan status view", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list enrollments by student", err)
	}
	return views, nil
}

func (s *Store) ListEnrollments(ctx context.Context) ([]core.ApplicationView, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT e.id, e.status, e.note, e.resume_path, e.cover_letter_path, e.submitted_at,
		       st.full_name, st.email, st.phone,
		       t.title, se.start_date, se.end_date
		FROM enrollment e
		JOIN student st ON st.id = e.student_id
		JOIN training t ON t.id = e.training_id
		JOIN session se ON se.id = e.session_id
		ORDER BY e.submitted_at DESC, e.id DESC`)
	if err != nil {
		return nil, mapErr("list enrollments", err)
	}
	defer rows.Close()

	views := []core.ApplicationView{}
	for rows.Next() {
		var v core.ApplicationView
		if err := rows.Scan(&v.ID, &v.Status, &v.Note, &v.ResumePath, &v.CoverLetterPath, &v.SubmittedAt,
			&v.Student.FullName, &v.Student.Email, &v.Student.Phone,
			&v.Training.Title, &v.Session.StartDate, &v.Session.EndDate); err != nil {
			return nil, mapErr("scan application view", err)
		}
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list enrollments", err)
	}
	return views, nil
}
