package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/wager-settlement-service/internal/models"
	"github.com/cypherlabdev/wager-settlement-service/internal/service"
)

// SQLStore keeps everything in a relational database
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	logger  zerolog.Logger
}

// OpenSQL connects, pings and creates the schema
func OpenSQL(ctx context.Context, driver, dsn string, logger zerolog.Logger) (*SQLStore, error) {
	d, err := lookupDialect(driver)
	if err != nil {
		return nil, err
	}
	if dsn == "" {
		return nil, fmt.Errorf("%s DSN is required", driver)
	}

	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s connection: %w", driver, err)
	}
	if d.singleConn {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(10)
		db.SetMaxIdleConns(5)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s: %w", driver, err)
	}

	s := &SQLStore{
		db:      db,
		dialect: d,
		logger:  logger.With().Str("component", "sql_store").Str("driver", driver).Logger(),
	}
	if err := s.initSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	s.logger.Info().Msg("sql store initialized")
	return s, nil
}

func (s *SQLStore) initSchema(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS ledger_state (
			id INTEGER PRIMARY KEY,
			version BIGINT NOT NULL,
			payload TEXT NOT NULL,
			updated_at TIMESTAMP NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS settlement_log (
			seq ` + s.dialect.serial + `,
			entry_id VARCHAR(36) NOT NULL,
			match_name TEXT NOT NULL,
			payload TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS team_knowledge (
			external_id VARCHAR(100) PRIMARY KEY,
			external_name TEXT NOT NULL,
			canonical_name TEXT NOT NULL
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// LoadState returns nil when no state was saved yet
func (s *SQLStore) LoadState(ctx context.Context) (*models.State, error) {
	var (
		payload string
		version int64
	)
	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT payload, version FROM ledger_state WHERE id = ?`), 1,
	).Scan(&payload, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var state models.State
	if err := json.Unmarshal([]byte(payload), &state); err != nil {
		return nil, fmt.Errorf("failed to unmarshal state: %w", err)
	}
	state.Version = version
	return &state, nil
}

// Commit writes the state and inserts the entries in one transaction. The
// state row is only written when its version still matches state.Version.
func (s *SQLStore) Commit(ctx context.Context, state *models.State, entries ...models.SettlementLog) error {
	next := *state
	next.Version = state.Version + 1
	payload, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var res sql.Result
	if state.Version == 0 {
		res, err = tx.ExecContext(ctx, s.dialect.rebind(`
		INSERT INTO ledger_state (id, version, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING
		`), 1, next.Version, string(payload), time.Now().UTC())
	} else {
		res, err = tx.ExecContext(ctx, s.dialect.rebind(`
		UPDATE ledger_state SET version = ?, payload = ?, updated_at = ?
		WHERE id = ? AND version = ?
		`), next.Version, string(payload), time.Now().UTC(), 1, state.Version)
	}
	if err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: version %d is no longer current", service.ErrStaleState, state.Version)
	}

	query := s.dialect.rebind(`INSERT INTO settlement_log (entry_id, match_name, payload) VALUES (?, ?, ?)`)
	for _, e := range entries {
		entry, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("failed to marshal log entry: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, e.ID.String(), e.Match, string(entry)); err != nil {
			return fmt.Errorf("failed to insert log entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit state: %w", err)
	}

	state.Version = next.Version
	s.logger.Debug().Int64("version", state.Version).Int("entries", len(entries)).Msg("committed state")
	return nil
}

// RecentLogs returns the last limit entries, oldest first
func (s *SQLStore) RecentLogs(ctx context.Context, limit int) ([]models.SettlementLog, error) {
	rows, err := s.db.QueryContext(ctx,
		s.dialect.rebind(`SELECT payload FROM settlement_log ORDER BY seq DESC LIMIT ?`), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query logs: %w", err)
	}
	defer rows.Close()

	var logs []models.SettlementLog
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan log entry: %w", err)
		}
		var entry models.SettlementLog
		if err := json.Unmarshal([]byte(payload), &entry); err != nil {
			return nil, fmt.Errorf("failed to unmarshal log entry: %w", err)
		}
		logs = append(logs, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(logs)-1; i < j; i, j = i+1, j-1 {
		logs[i], logs[j] = logs[j], logs[i]
	}
	return logs, nil
}

// Lookup finds the canonical name for an external team id
func (s *SQLStore) Lookup(ctx context.Context, externalID string) (models.KnowledgeEntry, bool, error) {
	var entry models.KnowledgeEntry
	err := s.db.QueryRowContext(ctx,
		s.dialect.rebind(`SELECT external_name, canonical_name FROM team_knowledge WHERE external_id = ?`),
		externalID,
	).Scan(&entry.ExternalName, &entry.CanonicalName)
	if errors.Is(err, sql.ErrNoRows) {
		return models.KnowledgeEntry{}, false, nil
	}
	if err != nil {
		return models.KnowledgeEntry{}, false, fmt.Errorf("failed to look up %s: %w", externalID, err)
	}
	return entry, true, nil
}

// Remember stores confirmed mappings in one transaction, replacing older ones
func (s *SQLStore) Remember(ctx context.Context, entries map[string]models.KnowledgeEntry) error {
	if len(entries) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := s.dialect.rebind(`
	INSERT INTO team_knowledge (external_id, external_name, canonical_name) VALUES (?, ?, ?)
	ON CONFLICT (external_id) DO UPDATE SET
		external_name = EXCLUDED.external_name,
		canonical_name = EXCLUDED.canonical_name
	`)
	for id, entry := range entries {
		if _, err := tx.ExecContext(ctx, query, id, entry.ExternalName, entry.CanonicalName); err != nil {
			return fmt.Errorf("failed to remember %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mappings: %w", err)
	}
	return nil
}

// Close closes the database
func (s *SQLStore) Close() error {
	return s.db.Close()
}
