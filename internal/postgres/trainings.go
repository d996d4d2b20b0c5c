package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/formatrack/server/internal/core"
	"github.com/jackc/pgx/v5"
)

func (s *Store) Trainings(ctx context.Context) ([]core.Training, error) {
	rows, err := s.pool.Query(ctx, "SELECT id, title FROM training ORDER BY id")
	if err != nil {
		return nil, mapErr("list trainings", err)
	}
	defer rows.Close()

	trainings := []core.Training{}
	for rows.Next() {
		var t core.Training
		if err := rows.Scan(&t.ID, &t.Title); err != nil {
			return nil, mapErr("scan training", err)
		}
		trainings = append(trainings, t)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list trainings", err)
	}
	return trainings, nil
}

func (s *Store) CreateTraining(ctx context.Context, title string) (core.Training, error) {
	var t core.Training
	err := s.pool.QueryRow(ctx,
		"INSERT INTO training (title) VALUES ($1) RETURNING id, title", title).
		Scan(&t.ID, &t.Title)
	if err != nil {
		return core.Training{}, mapErr("insert training", err)
	}
	return t, nil
}

func (s *Store) UpdateTraining(ctx context.Context, id int64, title string) (core.Training, error) {
	var t core.Training
	err := s.pool.QueryRow(ctx,
		"UPDATE training SET title = $2 WHERE id = $1 RETURNING id, title", id, title).
		Scan(&t.ID, &t.Title)
	if errors.Is(err, pgx.ErrNoRows) {
		return core.Training{}, &core.NotFoundError{Resource: "training", ID: id}
	}
	if err != nil {
		return core.Training{}, mapErr("update training", err)
	}
	return t, nil
}

func (s *Store) DeleteTraining(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM training WHERE id = $1", id)
	if err != nil {
		return mapErr("delete training", err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Resource: "training", ID: id}
	}
	return nil
}

const sessionColumns = "id, training_id, start_date, end_date, capacity"

func (s *Store) SessionsByTraining(ctx context.Context, trainingID int64) ([]core.Session, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT "+sessionColumns+" FROM session WHERE training_id = $1 ORDER BY start_date",
		trainingID)
	if err != nil {
		return nil, mapErr("list sessions", err)
	}
	defer rows.Close()

	sessions := []core.Session{}
	for rows.Next() {
		var se core.Session
		if err := rows.Scan(&se.ID, &se.TrainingID, &se.StartDate, &se.EndDate, &se.Capacity); err != nil {
			return nil, mapErr("scan session", err)
		}
		sessions = append(sessions, se)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list sessions", err)
	}
	return sessions, nil
}

func (s *Store) CreateSession(ctx context.Context, trainingID int64, start, end time.Time, capacity int) (core.Session, error) {
	var se core.Session
	err := s.pool.QueryRow(ctx, `
		INSERT INTO session (training_id, start_date, end_date, capacity)
		VALUES ($1, $2, $3, $4)
		RETURNING `+sessionColumns,
		trainingID, start, end, capacity).
		Scan(&se.ID, &se.TrainingID, &se.StartDate, &se.EndDate, &se.Capacity)
	if err != nil {
		return core.Session{}, mapErr("insert session", err)
	}
	return se, nil
}

func (s *Store) DeleteSession(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM session WHERE id = $1", id)
	if err != nil {
		return mapErr("delete session", err)
	}
	if tag.RowsAffected() == 0 {
		return &core.NotFoundError{Resource: "session", ID: id}
	}
	return nil
}
