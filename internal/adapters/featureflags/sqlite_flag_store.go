package featureflags

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// SQLite backed flag store for local runs and tests.
type SqliteFlagStore struct {
	DB *sql.DB
}

func NewSqliteFlagStore(db *sql.DB) *SqliteFlagStore {
	return &SqliteFlagStore{DB: db}
}

func (s *SqliteFlagStore) IsFeatureEnabledForOffice(ctx context.Context, officeID int, flag string) (bool, error) {
	if s.DB == nil {
		return false, errors.New("flag store: db is nil")
	}

	q := `
	SELECT enabled
	FROM feature_flags
	WHERE flag = ?
		AND office_id IN (?, 0)
	ORDER BY office_id DESC
	LIMIT 1;
	`

	var enabled bool
	err := s.DB.QueryRowContext(ctx, q, flag, officeID).Scan(&enabled)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get flag %q office_id=%d: %w", flag, officeID, err)
	}
	return enabled, nil
}

func (s *SqliteFlagStore) SetFlag(ctx context.Context, officeID int, flag string, enabled bool) error {
	if s.DB == nil {
		return errors.New("flag store: db is nil")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT OR REPLACE INTO feature_flags (
		office_id,
		flag,
		enabled
	)
	VALUES (?, ?, ?);
	`, officeID, flag, enabled)
	if err != nil {
		return fmt.Errorf("set flag %q office_id=%d: %w", flag, officeID, err)
	}
	return nil
}
