package postgres

import "context"

// schema is applied at startup. Statements are idempotent so restarting
// against an initialized database is safe.
const schema = `
CREATE TABLE IF NOT EXISTS student (
	id         BIGSERIAL PRIMARY KEY,
	full_name  TEXT NOT NULL,
	email      TEXT NOT NULL UNIQUE,
	phone      TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS training (
	id    BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS session (
	id          BIGSERIAL PRIMARY KEY,
	training_id BIGINT NOT NULL REFERENCES training(id) ON DELETE CASCADE,
	start_date  TIMESTAMPTZ NOT NULL,
	end_date    TIMESTAMPTZ NOT NULL,
	capacity    INT NOT NULL DEFAULT 20
);

CREATE TABLE IF NOT EXISTS enrollment (
	id                BIGSERIAL PRIMARY KEY,
	student_id        BIGINT NOT NULL REFERENCES student(id) ON DELETE CASCADE,
	training_id       BIGINT NOT NULL REFERENCES training(id) ON DELETE CASCADE,
	session_id        BIGINT NOT NULL REFERENCES session(id) ON DELETE CASCADE,
	note              TEXT,
	resume_path       TEXT NOT NULL,
	cover_letter_path TEXT NOT NULL,
	status            TEXT NOT NULL DEFAULT 'pending',
	decision_message  TEXT,
	submitted_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS enrollment_student_idx ON enrollment (student_id, submitted_at DESC);

CREATE TABLE IF NOT EXISTS decision_log (
	id            UUID PRIMARY KEY,
	enrollment_id BIGINT NOT NULL,
	old_status    TEXT NOT NULL,
	new_status    TEXT NOT NULL,
	message       TEXT NOT NULL,
	ip_address    TEXT NOT NULL DEFAULT '',
	created_at    TIMESTAMPTZ NOT NULL
);
`

// Init creates the schema if it does not exist yet.
func (s *Store) Init(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return mapErr("apply schema", err)
	}
	return nil
}
