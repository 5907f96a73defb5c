package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store on top of a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore wraps an existing pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// CurrentChangeMarker returns the highest parameter-value ID recorded for the
// project, or 0 when none exist.
func (s *PostgresStore) CurrentChangeMarker(ctx context.Context, project string) (int64, error) {
	var marker int64
	err := s.pool.QueryRow(ctx,
		`SELECT COALESCE(MAX(id), 0) FROM sample_param_values WHERE project = $1`,
		project,
	).Scan(&marker)
	if err != nil {
		return 0, fmt.Errorf("query change marker: %w", err)
	}
	return marker, nil
}

// ParametersChangedSince returns the distinct parameter names with values
// recorded strictly after marker, sorted ascending for determinism.
func (s *PostgresStore) ParametersChangedSince(ctx context.Context, project string, marker int64) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT d.name
		 FROM sample_param_values v
		 JOIN param_defs d ON d.id = v.param_id
		 WHERE v.project = $1 AND v.id > $2
		 ORDER BY d.name`,
		project, marker,
	)
	if err != nil {
		return nil, fmt.Errorf("query changed parameters: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan parameter name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func (s *PostgresStore) ListSamples(ctx context.Context, project string, includeDeleted bool) ([]Sample, error) {
	query := `SELECT id, project, prepared_on, author_name, created_at, deleted_at
		  FROM samples WHERE project = $1`
	if !includeDeleted {
		query += ` AND deleted_at IS NULL`
	}
	query += ` ORDER BY id`

	rows, err := s.pool.Query(ctx, query, project)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	samples := []Sample{}
	for rows.Next() {
		var smp Sample
		if err := rows.Scan(&smp.ID, &smp.Project, &smp.PreparedOn, &smp.AuthorName, &smp.CreatedAt, &smp.DeletedAt); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, smp)
	}
	return samples, rows.Err()
}

func (s *PostgresStore) GetSample(ctx context.Context, project string, id int64) (Sample, error) {
	var smp Sample
	err := s.pool.QueryRow(ctx,
		`SELECT id, project, prepared_on, author_name, created_at, deleted_at
		 FROM samples WHERE project = $1 AND id = $2`,
		project, id,
	).Scan(&smp.ID, &smp.Project, &smp.PreparedOn, &smp.AuthorName, &smp.CreatedAt, &smp.DeletedAt)
	if err != nil {
		return Sample{}, err
	}
	return smp, nil
}

func (s *PostgresStore) CreateSample(ctx context.Context, project string, sample Sample) (Sample, error) {
	err := s.pool.QueryRow(ctx,
		`INSERT INTO samples (project, prepared_on, author_name)
		 VALUES ($1, $2, $3)
		 RETURNING id, project, prepared_on, author_name, created_at, deleted_at`,
		project, sample.PreparedOn, sample.AuthorName,
	).Scan(&sample.ID, &sample.Project, &sample.PreparedOn, &sample.AuthorName, &sample.CreatedAt, &sample.DeletedAt)
	if err != nil {
		return Sample{}, fmt.Errorf("insert sample: %w", err)
	}
	return sample, nil
}

// DeleteSample soft-deletes; the sample and its recorded values remain
// queryable with includeDeleted.
func (s *PostgresStore) DeleteSample(ctx context.Context, project string, id int64) (Sample, error) {
	var smp Sample
	err := s.pool.QueryRow(ctx,
		`UPDATE samples SET deleted_at = NOW()
		 WHERE project = $1 AND id = $2 AND deleted_at IS NULL
		 RETURNING id, project, prepared_on, author_name, created_at, deleted_at`,
		project, id,
	).Scan(&smp.ID, &smp.Project, &smp.PreparedOn, &smp.AuthorName, &smp.CreatedAt, &smp.DeletedAt)
	if err != nil {
		return Sample{}, err
	}
	return smp, nil
}

func (s *PostgresStore) ListSampleParameterValues(ctx context.Context, project string, sampleID int64) ([]ParameterValue, error) {
	if _, err := s.GetSample(ctx, project, sampleID); err != nil {
		return nil, err
	}

	rows, err := s.pool.Query(ctx,
		`SELECT v.id, v.sample_id, d.name, d.unit, v.value, v.recorded_at
		 FROM sample_param_values v
		 JOIN param_defs d ON d.id = v.param_id
		 WHERE v.project = $1 AND v.sample_id = $2
		 ORDER BY v.id`,
		project, sampleID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sample parameter values: %w", err)
	}
	defer rows.Close()

	return scanParameterValues(rows)
}

// RecordParameterValues upserts each parameter definition and inserts one
// value row per assignment in a single transaction. The inserted rows advance
// the project's change marker, which the next poll tick picks up.
func (s *PostgresStore) RecordParameterValues(ctx context.Context, project string, sampleID int64, assignments []ParameterAssignment) (int, error) {
	if _, err := s.GetSample(ctx, project, sampleID); err != nil {
		return 0, err
	}
	if len(assignments) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	recorded := 0
	for _, a := range assignments {
		var paramID int64
		err := tx.QueryRow(ctx,
			`INSERT INTO param_defs (project, name, unit)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (project, name) DO UPDATE SET unit = COALESCE(EXCLUDED.unit, param_defs.unit)
			 RETURNING id`,
			project, a.Name, a.Unit,
		).Scan(&paramID)
		if err != nil {
			return 0, fmt.Errorf("upsert parameter %q: %w", a.Name, err)
		}

		if _, err := tx.Exec(ctx,
			`INSERT INTO sample_param_values (project, sample_id, param_id, value)
			 VALUES ($1, $2, $3, $4)`,
			project, sampleID, paramID, a.Value,
		); err != nil {
			return 0, fmt.Errorf("insert value for %q: %w", a.Name, err)
		}
		recorded++
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit transaction: %w", err)
	}
	return recorded, nil
}

func (s *PostgresStore) ListParameterDefinitions(ctx context.Context, project string) ([]ParameterDefinition, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, project, name, unit FROM param_defs WHERE project = $1 ORDER BY name`,
		project,
	)
	if err != nil {
		return nil, fmt.Errorf("query parameter definitions: %w", err)
	}
	defer rows.Close()

	defs := []ParameterDefinition{}
	for rows.Next() {
		var def ParameterDefinition
		if err := rows.Scan(&def.ID, &def.Project, &def.Name, &def.Unit); err != nil {
			return nil, fmt.Errorf("scan parameter definition: %w", err)
		}
		defs = append(defs, def)
	}
	return defs, rows.Err()
}

// ParameterHistory returns the most recent values for a parameter name,
// newest first, bounded by limit.
func (s *PostgresStore) ParameterHistory(ctx context.Context, project, name string, limit int) ([]ParameterValue, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT v.id, v.sample_id, d.name, d.unit, v.value, v.recorded_at
		 FROM sample_param_values v
		 JOIN param_defs d ON d.id = v.param_id
		 WHERE v.project = $1 AND d.name = $2
		 ORDER BY v.id DESC
		 LIMIT $3`,
		project, name, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query parameter history: %w", err)
	}
	defer rows.Close()

	return scanParameterValues(rows)
}

func (s *PostgresStore) ParameterUniqueValues(ctx context.Context, project, name string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT DISTINCT v.value
		 FROM sample_param_values v
		 JOIN param_defs d ON d.id = v.param_id
		 WHERE v.project = $1 AND d.name = $2
		 ORDER BY v.value`,
		project, name,
	)
	if err != nil {
		return nil, fmt.Errorf("query unique values: %w", err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}

func (s *PostgresStore) ListProjects(ctx context.Context) ([]Project, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT name, created_at, last_opened FROM projects ORDER BY name`,
	)
	if err != nil {
		return nil, fmt.Errorf("query projects: %w", err)
	}
	defer rows.Close()

	projects := []Project{}
	for rows.Next() {
		var p Project
		if err := rows.Scan(&p.Name, &p.CreatedAt, &p.LastOpened); err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *PostgresStore) GetProject(ctx context.Context, name string) (Project, error) {
	var p Project
	err := s.pool.QueryRow(ctx,
		`SELECT name, created_at, last_opened FROM projects WHERE name = $1`,
		name,
	).Scan(&p.Name, &p.CreatedAt, &p.LastOpened)
	if err != nil {
		return Project{}, err
	}
	return p, nil
}

func (s *PostgresStore) CreateProject(ctx context.Context, name string) (Project, error) {
	var p Project
	err := s.pool.QueryRow(ctx,
		`INSERT INTO projects (name) VALUES ($1)
		 RETURNING name, created_at, last_opened`,
		name,
	).Scan(&p.Name, &p.CreatedAt, &p.LastOpened)
	if err != nil {
		return Project{}, fmt.Errorf("insert project: %w", err)
	}
	return p, nil
}

// RenameProject renames the project row and rewrites the partition key on all
// of its data in one transaction.
func (s *PostgresStore) RenameProject(ctx context.Context, oldName, newName string) (Project, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Project{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var p Project
	err = tx.QueryRow(ctx,
		`UPDATE projects SET name = $2 WHERE name = $1
		 RETURNING name, created_at, last_opened`,
		oldName, newName,
	).Scan(&p.Name, &p.CreatedAt, &p.LastOpened)
	if err != nil {
		return Project{}, err
	}

	for _, table := range []string{"samples", "param_defs", "sample_param_values"} {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`UPDATE %s SET project = $2 WHERE project = $1`, table),
			oldName, newName,
		); err != nil {
			return Project{}, fmt.Errorf("rename %s rows: %w", table, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`UPDATE app_settings SET value = $2 WHERE key = 'active_project' AND value = $1`,
		oldName, newName,
	); err != nil {
		return Project{}, fmt.Errorf("update active project: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Project{}, fmt.Errorf("commit transaction: %w", err)
	}
	return p, nil
}

// DeleteProject removes the project and all of its data. Deleting the active
// project clears the active-project setting.
func (s *PostgresStore) DeleteProject(ctx context.Context, name string) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM projects WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}

	for _, table := range []string{"sample_param_values", "param_defs", "samples"} {
		if _, err := tx.Exec(ctx,
			fmt.Sprintf(`DELETE FROM %s WHERE project = $1`, table), name,
		); err != nil {
			return fmt.Errorf("delete %s rows: %w", table, err)
		}
	}

	if _, err := tx.Exec(ctx,
		`DELETE FROM app_settings WHERE key = 'active_project' AND value = $1`, name,
	); err != nil {
		return fmt.Errorf("clear active project: %w", err)
	}

	return tx.Commit(ctx)
}

// ActiveProject returns the active project name, or the default project when
// none is set.
func (s *PostgresStore) ActiveProject(ctx context.Context) (string, error) {
	var name string
	err := s.pool.QueryRow(ctx,
		`SELECT value FROM app_settings WHERE key = 'active_project'`,
	).Scan(&name)
	if errors.Is(err, pgx.ErrNoRows) {
		return DefaultProject, nil
	}
	if err != nil {
		return "", fmt.Errorf("query active project: %w", err)
	}
	return name, nil
}

// SetActiveProject records name as the active project; the default project
// clears the setting. Named projects also get their last_opened stamp bumped.
func (s *PostgresStore) SetActiveProject(ctx context.Context, name string) error {
	if name == DefaultProject {
		_, err := s.pool.Exec(ctx, `DELETE FROM app_settings WHERE key = 'active_project'`)
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO app_settings (key, value) VALUES ('active_project', $1)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		name,
	); err != nil {
		return fmt.Errorf("set active project: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE projects SET last_opened = NOW() WHERE name = $1`, name,
	); err != nil {
		return fmt.Errorf("stamp last_opened: %w", err)
	}

	return tx.Commit(ctx)
}

func scanParameterValues(rows pgx.Rows) ([]ParameterValue, error) {
	values := []ParameterValue{}
	for rows.Next() {
		var v ParameterValue
		if err := rows.Scan(&v.ID, &v.SampleID, &v.ParameterName, &v.Unit, &v.Value, &v.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan parameter value: %w", err)
		}
		values = append(values, v)
	}
	return values, rows.Err()
}
