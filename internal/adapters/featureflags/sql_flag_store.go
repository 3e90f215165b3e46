package featureflags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"route-optimization-service/internal/platform/obs"
)

// SQLFlagStore reads flags from Postgres.
type SQLFlagStore struct {
	DB     *sql.DB
	Logger *slog.Logger
}

func NewSQLFlagStore(db *sql.DB, logger *slog.Logger) *SQLFlagStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLFlagStore{DB: db, Logger: logger}
}

// IsFeatureEnabledForOffice prefers the office's own row over the default row.
// A flag with neither is disabled.
func (s *SQLFlagStore) IsFeatureEnabledForOffice(
	ctx context.Context,
	officeID int,
	flag string,
) (_ bool, err error) {
	defer obs.Time(ctx, s.Logger, "flags.sql.IsFeatureEnabledForOffice")(&err)

	if s.DB == nil {
		return false, errors.New("flag store: db is nil")
	}

	q := `
	SELECT enabled
	FROM feature_flags
	WHERE flag = $1
		AND office_id IN ($2, 0)
	ORDER BY office_id DESC
	LIMIT 1;
	`

	var enabled bool
	err = s.DB.QueryRowContext(ctx, q, flag, officeID).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get flag %q office_id=%d: %w", flag, officeID, err)
	}
	return enabled, nil
}

func (s *SQLFlagStore) SetFlag(ctx context.Context, officeID int, flag string, enabled bool) error {
	if s.DB == nil {
		return errors.New("flag store: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO feature_flags (office_id, flag, enabled)
	VALUES ($1, $2, $3)
	ON CONFLICT (office_id, flag) DO UPDATE
	SET enabled = EXCLUDED.enabled;
	`, officeID, flag, enabled)
	if err != nil {
		return fmt.Errorf("set flag %q office_id=%d: %w", flag, officeID, err)
	}
	return nil
}
