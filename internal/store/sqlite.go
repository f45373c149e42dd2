package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"SignalScan/internal/model"
)

// SQLiteStore keeps signal records in a single SQLite table keyed by
// (symbol, date), the record itself stored as a JSON blob.
type SQLiteStore struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so API reads don't block the scheduled scan's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, path: dbPath}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite signal store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS signals (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			symbol      TEXT NOT NULL,
			date        TEXT NOT NULL,
			signal_data TEXT NOT NULL,
			created_at  TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(symbol, date)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_symbol_date ON signals(symbol, date)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// Get returns the record for (symbol, date). Any read failure is logged and
// reported as a miss so the caller falls back to recomputation.
func (s *SQLiteStore) Get(symbol, date string) (*model.SignalRecord, bool) {
	var data string
	err := s.db.QueryRow(
		`SELECT signal_data FROM signals WHERE symbol = ? AND date = ?`,
		symbol, date,
	).Scan(&data)
	if err == sql.ErrNoRows {
		return nil, false
	}
	if err != nil {
		log.Error().Err(err).Str("symbol", symbol).Str("date", date).Msg("signal read failed, treating as miss")
		return nil, false
	}

	var rec model.SignalRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		log.Error().Err(err).Str("symbol", symbol).Str("date", date).Msg("signal decode failed, treating as miss")
		return nil, false
	}
	return &rec, true
}

// Put upserts the record for (symbol, date), replacing any existing row wholesale.
func (s *SQLiteStore) Put(symbol, date string, rec *model.SignalRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO signals (symbol, date, signal_data) VALUES (?, ?, ?)`,
		symbol, date, string(data),
	)
	if err != nil {
		return fmt.Errorf("upsert signal %s@%s: %w", symbol, date, err)
	}
	return nil
}

// GetMany partitions the requested symbols into cached records and misses for
// the given date, preserving input order within each side.
func (s *SQLiteStore) GetMany(symbols []string, date string) *Partition {
	part := &Partition{}
	if len(symbols) == 0 {
		return part
	}

	found := make(map[string]*model.SignalRecord, len(symbols))
	rows, err := s.db.Query(`SELECT symbol, signal_data FROM signals WHERE date = ?`, date)
	if err != nil {
		log.Error().Err(err).Str("date", date).Msg("bulk signal read failed, treating all as misses")
		part.Missing = append(part.Missing, symbols...)
		return part
	}
	defer rows.Close()

	for rows.Next() {
		var symbol, data string
		if err := rows.Scan(&symbol, &data); err != nil {
			log.Error().Err(err).Msg("signal row scan failed, skipping")
			continue
		}
		var rec model.SignalRecord
		if err := json.Unmarshal([]byte(data), &rec); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("signal decode failed, skipping")
			continue
		}
		found[symbol] = &rec
	}
	if err := rows.Err(); err != nil {
		log.Error().Err(err).Msg("bulk signal read iteration failed")
	}

	for _, symbol := range symbols {
		if rec, ok := found[symbol]; ok {
			part.Cached = append(part.Cached, rec)
		} else {
			part.Missing = append(part.Missing, symbol)
		}
	}
	return part
}

// PurgeOlderThan deletes records dated strictly older than `days` before today
// and returns the number deleted.
func (s *SQLiteStore) PurgeOlderThan(days int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := fmt.Sprintf("-%d days", days)
	res, err := s.db.Exec(`DELETE FROM signals WHERE date < date('now', ?)`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge signals: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge rows affected: %w", err)
	}
	return int(n), nil
}

// Stats reports record counts and on-disk size.
func (s *SQLiteStore) Stats() (*Stats, error) {
	st := &Stats{}

	if err := s.db.QueryRow(`SELECT COUNT(*) FROM signals`).Scan(&st.TotalRecords); err != nil {
		return nil, fmt.Errorf("count signals: %w", err)
	}
	if err := s.db.QueryRow(`SELECT COUNT(DISTINCT symbol) FROM signals`).Scan(&st.UniqueSymbols); err != nil {
		return nil, fmt.Errorf("count symbols: %w", err)
	}
	today := time.Now().Format("2006-01-02")
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM signals WHERE date = ?`, today).Scan(&st.RecordsToday); err != nil {
		return nil, fmt.Errorf("count today: %w", err)
	}
	if fi, err := os.Stat(s.path); err == nil {
		st.StorageSizeBytes = fi.Size()
	}
	return st, nil
}

func (s *SQLiteStore) Close() error {
	log.Info().Msg("closing sqlite signal store")
	return s.db.Close()
}
