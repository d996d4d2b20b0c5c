package postgres

import (
	"context"

	"github.com/formatrack/server/internal/core"
	"github.com/google/uuid"
)

func (s *Store) InsertDecision(ctx context.Context, rec core.DecisionRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO decision_log (id, enrollment_id, old_status, new_status, message, ip_address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID.String(), rec.EnrollmentID, rec.OldStatus, rec.NewStatus, rec.Message, rec.IPAddress, rec.CreatedAt)
	if err != nil {
		return mapErr("insert decision", err)
	}
	return nil
}

func (s *Store) Decisions(ctx context.Context) ([]core.DecisionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, enrollment_id, old_status, new_status, message, ip_address, created_at
		FROM decision_log
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, mapErr("list decisions", err)
	}
	defer rows.Close()

	records := []core.DecisionRecord{}
	for rows.Next() {
		var (
			r  core.DecisionRecord
			id string
		)
		if err := rows.Scan(&id, &r.EnrollmentID, &r.OldStatus, &r.NewStatus,
			&r.Message, &r.IPAddress, &r.CreatedAt); err != nil {
			return nil, mapErr("scan decision", err)
		}
		if parsed, err := uuid.Parse(id); err == nil {
			r.ID = parsed
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr("list decisions", err)
	}
	return records, nil
}
