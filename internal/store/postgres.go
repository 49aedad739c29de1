package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) GetWeightConfig(ctx context.Context) (*WeightSettings, error) {
	ws := &WeightSettings{}
	err := s.pool.QueryRow(ctx, `
		SELECT harian_weight, uts_weight, uas_weight, updated_by, updated_at
		FROM grade_settings WHERE id = 1`,
	).Scan(&ws.Weights.Harian, &ws.Weights.UTS, &ws.Weights.UAS, &ws.UpdatedBy, &ws.UpdatedAt)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return ws, nil
}

func (s *PostgresStore) SaveWeightConfig(ctx context.Context, ws *WeightSettings) error {
	return s.pool.QueryRow(ctx, `
		INSERT INTO grade_settings (id, harian_weight, uts_weight, uas_weight, updated_by, updated_at)
		VALUES (1, $1, $2, $3, $4, now())
		ON CONFLICT (id) DO UPDATE SET
			harian_weight = EXCLUDED.harian_weight,
			uts_weight = EXCLUDED.uts_weight,
			uas_weight = EXCLUDED.uas_weight,
			updated_by = EXCLUDED.updated_by,
			updated_at = EXCLUDED.updated_at
		RETURNING updated_at`,
		ws.Weights.Harian, ws.Weights.UTS, ws.Weights.UAS, ws.UpdatedBy,
	).Scan(&ws.UpdatedAt)
}

const gradeColumns = `id, student_id, subject_id, class_id, semester, academic_year,
	harian, uts, uas,
	harian_weight, uts_weight, uas_weight,
	final_score, predicate, teacher_id,
	created_at, updated_at`

func (s *PostgresStore) SaveGrades(ctx context.Context, grades []*Grade) error {
	if len(grades) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, g := range grades {
		err := tx.QueryRow(ctx, `
			INSERT INTO grades (student_id, subject_id, class_id, semester, academic_year,
				harian, uts, uas,
				harian_weight, uts_weight, uas_weight,
				final_score, predicate, teacher_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
			ON CONFLICT (student_id, subject_id, class_id, semester, academic_year) DO UPDATE SET
				harian = EXCLUDED.harian,
				uts = EXCLUDED.uts,
				uas = EXCLUDED.uas,
				harian_weight = EXCLUDED.harian_weight,
				uts_weight = EXCLUDED.uts_weight,
				uas_weight = EXCLUDED.uas_weight,
				final_score = EXCLUDED.final_score,
				predicate = EXCLUDED.predicate,
				teacher_id = EXCLUDED.teacher_id,
				updated_at = now()
			RETURNING id, created_at, updated_at`,
			g.StudentID, g.SubjectID, g.ClassID, g.Semester, g.AcademicYear,
			g.Harian, g.UTS, g.UAS,
			g.Weights.Harian, g.Weights.UTS, g.Weights.UAS,
			g.FinalScore, g.Predicate, g.TeacherID,
		).Scan(&g.ID, &g.CreatedAt, &g.UpdatedAt)
		if err != nil {
			return fmt.Errorf("save grade for student %s: %w", g.StudentID, err)
		}
	}

	return tx.Commit(ctx)
}

func (s *PostgresStore) ListGrades(ctx context.Context, filter GradeFilter) ([]*Grade, error) {
	query, args := listGradesQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanGrades(rows)
}

// listGradesQuery builds the filtered SELECT for ListGrades. A zero Limit
// returns every matching row.
func listGradesQuery(filter GradeFilter) (string, []interface{}) {
	query := `SELECT ` + gradeColumns + ` FROM grades WHERE 1=1`
	args := []interface{}{}
	n := 0

	for _, f := range []struct {
		col string
		val string
	}{
		{"class_id", filter.ClassID},
		{"subject_id", filter.SubjectID},
		{"semester", filter.Semester},
		{"academic_year", filter.AcademicYear},
		{"student_id", filter.StudentID},
	} {
		if f.val == "" {
			continue
		}
		n++
		query += fmt.Sprintf(" AND %s = $%d", f.col, n)
		args = append(args, f.val)
	}

	query += " ORDER BY final_score DESC, student_id ASC"

	if filter.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, filter.Limit)
	}
	if filter.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	return query, args
}

func scanGrades(rows pgx.Rows) ([]*Grade, error) {
	var grades []*Grade
	for rows.Next() {
		g := &Grade{}
		if err := rows.Scan(
			&g.ID, &g.StudentID, &g.SubjectID, &g.ClassID, &g.Semester, &g.AcademicYear,
			&g.Harian, &g.UTS, &g.UAS,
			&g.Weights.Harian, &g.Weights.UTS, &g.Weights.UAS,
			&g.FinalScore, &g.Predicate, &g.TeacherID,
			&g.CreatedAt, &g.UpdatedAt,
		); err != nil {
			return nil, err
		}
		grades = append(grades, g)
	}
	return grades, rows.Err()
}
