package watchlist

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"MarketOverview/internal/logger"
	"MarketOverview/internal/model"
)

// SQLiteStore persists the watchlist to a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// Option configures a SQLiteStore.
type Option func(*SQLiteStore)

// WithClock overrides the time source used for AddedAt.
func WithClock(now func() time.Time) Option {
	return func(s *SQLiteStore) { s.now = now }
}

// OpenSQLite opens (or creates) the database and runs migrations.
func OpenSQLite(dbPath string, opts ...Option) (*SQLiteStore, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create watchlist dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read while the scheduler writes snapshots.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Get().Infow("watchlist opened", "path", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS favorites (
			ticker   TEXT NOT NULL,
			category TEXT NOT NULL,
			added_at INTEGER NOT NULL,
			PRIMARY KEY (ticker, category)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_favorites_category ON favorites(category)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			ticker      TEXT NOT NULL,
			timestamp   INTEGER NOT NULL,
			last_close  REAL,
			total_score REAL,
			tier_label  TEXT,
			sentiment   REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_ticker_ts ON snapshots(ticker, timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) Add(ticker, category string) error {
	t, err := model.ParseTicker(ticker)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err = s.db.Exec(`INSERT OR IGNORE INTO favorites (ticker, category, added_at) VALUES (?,?,?)`,
		t, normalizeCategory(category), s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("add favorite %s: %w", t, err)
	}
	return nil
}

func (s *SQLiteStore) Remove(ticker, category string) error {
	t := model.CanonicalTicker(ticker)
	s.mu.Lock()
	defer s.mu.Unlock()

	var res sql.Result
	var err error
	if category == "" {
		res, err = s.db.Exec(`DELETE FROM favorites WHERE ticker = ?`, t)
	} else {
		res, err = s.db.Exec(`DELETE FROM favorites WHERE ticker = ? AND category = ?`, t, normalizeCategory(category))
	}
	if err != nil {
		return fmt.Errorf("remove favorite %s: %w", t, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%s: %w", t, ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) List(category string) ([]model.Favorite, error) {
	var rows *sql.Rows
	var err error
	if category == "" {
		rows, err = s.db.Query(`SELECT ticker, category, added_at FROM favorites ORDER BY added_at, ticker, category`)
	} else {
		rows, err = s.db.Query(`SELECT ticker, category, added_at FROM favorites WHERE category = ? ORDER BY added_at, ticker`,
			normalizeCategory(category))
	}
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	out := []model.Favorite{}
	for rows.Next() {
		var f model.Favorite
		var added int64
		if err := rows.Scan(&f.Ticker, &f.Category, &added); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		f.AddedAt = time.Unix(0, added).UTC()
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Categories() ([]string, error) {
	return s.column(`SELECT DISTINCT category FROM favorites ORDER BY category`)
}

func (s *SQLiteStore) Tickers() ([]string, error) {
	return s.column(`SELECT ticker FROM favorites GROUP BY ticker ORDER BY MIN(added_at), ticker`)
}

func (s *SQLiteStore) column(query string) ([]string, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) RecordSnapshot(snap model.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	taken := snap.TakenAt
	if taken.IsZero() {
		taken = s.now()
	}
	_, err := s.db.Exec(`INSERT INTO snapshots
		(ticker, timestamp, last_close, total_score, tier_label, sentiment)
		VALUES (?,?,?,?,?,?)`,
		snap.Ticker, taken.UnixNano(), nullable(snap.LastClose), nullable(snap.TotalScore),
		snap.Tier, nullable(snap.Sentiment),
	)
	if err != nil {
		return fmt.Errorf("record snapshot %s: %w", snap.Ticker, err)
	}
	return nil
}

// History returns up to limit snapshots for ticker, newest first.
func (s *SQLiteStore) History(ticker string, limit int) ([]model.Snapshot, error) {
	if limit <= 0 {
		limit = 30
	}
	rows, err := s.db.Query(`SELECT ticker, timestamp, last_close, total_score, tier_label, sentiment
		FROM snapshots WHERE ticker = ? ORDER BY timestamp DESC, id DESC LIMIT ?`,
		model.CanonicalTicker(ticker), limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	out := []model.Snapshot{}
	for rows.Next() {
		var (
			snap              model.Snapshot
			ts                int64
			last, total, mood sql.NullFloat64
			tier              sql.NullString
		)
		if err := rows.Scan(&snap.Ticker, &ts, &last, &total, &tier, &mood); err != nil {
			return nil, fmt.Errorf("scan snapshot: %w", err)
		}
		snap.TakenAt = time.Unix(0, ts).UTC()
		snap.LastClose = fromNull(last)
		snap.TotalScore = fromNull(total)
		snap.Sentiment = fromNull(mood)
		snap.Tier = tier.String
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	logger.Get().Infow("closing watchlist")
	return s.db.Close()
}

func nullable(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNull(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return model.Float(v.Float64)
}

var _ Store = (*SQLiteStore)(nil)
