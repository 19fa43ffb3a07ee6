// internal/lifecycle/store_postgres.go
package lifecycle

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	gwerrors "application-gateway/internal/common/errors"
)

// PostgresStore is an ApplicationStore backed by PostgreSQL, for
// deployments that need pending applications to survive a restart.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the backing table when it does not exist yet.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	query := `
		CREATE TABLE IF NOT EXISTS pending_applications (
			identity      TEXT PRIMARY KEY,
			submission_id TEXT NOT NULL,
			display_name  TEXT NOT NULL,
			profile       JSONB NOT NULL,
			assessment    JSONB NOT NULL,
			access_token  TEXT NOT NULL,
			submitted_at  TIMESTAMPTZ NOT NULL
		)`
	if _, err := s.db.ExecContext(ctx, query); err != nil {
		return gwerrors.NewStorageError("store.ensure_schema", err)
	}
	return nil
}

func (s *PostgresStore) Put(ctx context.Context, app Application) error {
	profile, err := json.Marshal(app.Profile)
	if err != nil {
		return gwerrors.NewStorageError("store.put", err)
	}
	assessment, err := json.Marshal(app.Assessment)
	if err != nil {
		return gwerrors.NewStorageError("store.put", err)
	}

	query := `
		INSERT INTO pending_applications (identity, submission_id, display_name, profile, assessment, access_token, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (identity) DO UPDATE SET
			submission_id = EXCLUDED.submission_id,
			display_name  = EXCLUDED.display_name,
			profile       = EXCLUDED.profile,
			assessment    = EXCLUDED.assessment,
			access_token  = EXCLUDED.access_token,
			submitted_at  = EXCLUDED.submitted_at`

	_, err = s.db.ExecContext(ctx, query,
		app.Identity, app.SubmissionID, app.DisplayName, profile, assessment, app.AccessToken, app.SubmittedAt,
	)
	if err != nil {
		return gwerrors.NewStorageError("store.put", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, identity string) (Application, bool, error) {
	query := `
		SELECT submission_id, display_name, profile, assessment, access_token, submitted_at
		FROM pending_applications
		WHERE identity = $1`

	var (
		app        = Application{Identity: identity}
		profile    []byte
		assessment []byte
	)
	err := s.db.QueryRowContext(ctx, query, identity).Scan(
		&app.SubmissionID, &app.DisplayName, &profile, &assessment, &app.AccessToken, &app.SubmittedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Application{}, false, nil
	}
	if err != nil {
		return Application{}, false, gwerrors.NewStorageError("store.get", err)
	}

	if err := json.Unmarshal(profile, &app.Profile); err != nil {
		return Application{}, false, gwerrors.NewStorageError("store.get", err)
	}
	if err := json.Unmarshal(assessment, &app.Assessment); err != nil {
		return Application{}, false, gwerrors.NewStorageError("store.get", err)
	}

	return app, true, nil
}

func (s *PostgresStore) Remove(ctx context.Context, identity string) error {
	query := `DELETE FROM pending_applications WHERE identity = $1`
	if _, err := s.db.ExecContext(ctx, query, identity); err != nil {
		return gwerrors.NewStorageError("store.remove", err)
	}
	return nil
}
