package store

import (
	"context"
	"fmt"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS grade_settings (
		id            SMALLINT PRIMARY KEY CHECK (id = 1),
		harian_weight DOUBLE PRECISION NOT NULL,
		uts_weight    DOUBLE PRECISION NOT NULL,
		uas_weight    DOUBLE PRECISION NOT NULL,
		updated_by    TEXT NOT NULL DEFAULT '',
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS grades (
		id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
		student_id    TEXT NOT NULL,
		subject_id    TEXT NOT NULL,
		class_id      TEXT NOT NULL,
		semester      TEXT NOT NULL,
		academic_year TEXT NOT NULL,
		harian        DOUBLE PRECISION NOT NULL,
		uts           DOUBLE PRECISION NOT NULL,
		uas           DOUBLE PRECISION NOT NULL,
		harian_weight DOUBLE PRECISION NOT NULL,
		uts_weight    DOUBLE PRECISION NOT NULL,
		uas_weight    DOUBLE PRECISION NOT NULL,
		final_score   DOUBLE PRECISION NOT NULL,
		predicate     TEXT NOT NULL,
		teacher_id    TEXT NOT NULL DEFAULT '',
		created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
		UNIQUE (student_id, subject_id, class_id, semester, academic_year)
	)`,
	`CREATE INDEX IF NOT EXISTS grades_class_subject_idx
		ON grades (class_id, subject_id, semester, academic_year)`,
}

// Migrate creates the tables this service owns.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	for i, stmt := range migrations {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}
