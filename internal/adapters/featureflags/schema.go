// Package featureflags stores per-office feature toggles.
//
// A row with office_id 0 is the default for every office; a row for a
// specific office overrides it.
package featureflags

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// AllOffices is the office id of default rows.
const AllOffices = 0

// The statement is valid for both Postgres and SQLite.
const createFlagsTable = `
CREATE TABLE IF NOT EXISTS feature_flags (
	office_id INTEGER NOT NULL,
	flag TEXT NOT NULL,
	enabled BOOLEAN NOT NULL,
	PRIMARY KEY (office_id, flag)
);
`

func InitSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("init flag schema: DB is nil")
	}
	if _, err := db.ExecContext(ctx, createFlagsTable); err != nil {
		return fmt.Errorf("init flag schema: create feature_flags: %w", err)
	}
	return nil
}

type FlagSeed struct {
	OfficeID int    `json:"office_id"`
	Flag     string `json:"flag"`
	Enabled  bool   `json:"enabled"`
}

// Upserter writes one flag value.
type Upserter interface {
	SetFlag(ctx context.Context, officeID int, flag string, enabled bool) error
}

// SeedFromJSON loads a JSON array of FlagSeed into the store.
func SeedFromJSON(ctx context.Context, store Upserter, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed flags: read %q: %w", jsonPath, err)
	}

	var data []FlagSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed flags: parse json: %w", err)
	}

	for i, item := range data {
		if item.OfficeID < 0 {
			return fmt.Errorf("seed flags: invalid office_id at index %d: %d", i+1, item.OfficeID)
		}
		flag := strings.TrimSpace(item.Flag)
		if flag == "" {
			return fmt.Errorf("seed flags: item at index %d: flag cannot be empty", i+1)
		}
		if err := store.SetFlag(ctx, item.OfficeID, flag, item.Enabled); err != nil {
			return fmt.Errorf("seed flags: %w", err)
		}
	}
	return nil
}
