package postgres

import (
	"context"
	"errors"

	"github.com/formatrack/server/internal/core"
	"github.com/jackc/pgx/v5"
)

const studentColumns = "id, full_name, email, phone, created_at"

func scanStudent(row pgx.Row) (core.Student, error) {
	var s core.Student
	err := row.Scan(&s.ID, &s.FullName, &s.Email, &s.Phone, &s.CreatedAt)
	return s, err
}

func (s *Store) Students(ctx context.Context) ([]core.Student, error) {
	rows, err := s.pool.Query(ctx, "SELECT "+studentColumns+" FROM student ORDER BY id")
	if err != nil {
		return nil, mapErr("list students", err)
	}
	defer rows.Close()

	students := []core.Student{}
	for rows.Next() {
		st, err := scanStudent(rows)
		if err != nil {
			return nil, mapErr("scan student", err)
		}
		students = append(students, st)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list students", err)
	}
	return students, nil
}

func (s *Store) StudentByEmail(ctx context.Context, email string) (*core.Student, error) {
	return studentByEmail(ctx, s.pool, email)
}

func studentByEmail(ctx context.Context, db DBTX, email string) (*core.Student, error) {
	st, err := scanStudent(db.QueryRow(ctx,
		"SELECT "+studentColumns+" FROM student WHERE email = $1", email))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr("select student by email", err)
	}
	return &st, nil
}

func insertStudent(ctx context.Context, db DBTX, fullName, email string, phone *string) (*core.Student, error) {
	st, err := scanStudent(db.QueryRow(ctx, `
		INSERT INTO student (full_name, email, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (email) DO NOTHING
		RETURNING `+studentColumns,
		fullName, email, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		// Conflict: a concurrent submission created the student first.
		return nil, nil
	}
	if err != nil {
		return nil, mapErr("insert student", err)
	}
	return &st, nil
}

func (s *Store) CreateStudent(ctx context.Context, fullName, email string, phone *string) (core.Student, error) {
	st, err := scanStudent(s.pool.QueryRow(ctx, `
		INSERT INTO student (full_name, email, phone)
		VALUES ($1, $2, $3)
		RETURNING `+studentColumns,
		fullName, email, phone))
	if err != nil {
		return core.Student{}, mapErr("insert student", err)
	}
	return st, nil
}

func (s *Store) UpdateStudent(ctx context.Context, id int64, fullName, email string, phone *string) (core.Student, error) {
	st, err := scanStudent(s.pool.QueryRow(ctx, `
		UPDATE student SET full_name = $2, email = $3, phone = $4
		WHERE id = $1
		RETURNING `+studentColumns,
		id, fullName, email, phone))
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Student{}, &core.NotFoundError{Resource: "student", ID: id}
	}
	if err != nil {
		return core.Student{}, mapErr("update student", err)
	}
	return st, nil
}

func (s *Store) DeleteStudent(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM student WHERE id = $1", id)
	if err != nil {
		return mapErr("delete student", err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Resource: "student", ID: id}
	}
	return nil
}
