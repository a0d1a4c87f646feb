package analytics

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides database operations for crawler analytics.
type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the analytics database at path.
func NewStore(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create analytics dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open analytics db: %w", err)
	}

	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(time.Hour)

	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
	`); err != nil {
		return nil, fmt.Errorf("configure analytics db: %w", err)
	}

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS crawler_hits (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    bot_name TEXT NOT NULL,
    path TEXT NOT NULL,
    slug TEXT NOT NULL,
    user_agent TEXT NOT NULL,
    ip_hash TEXT NOT NULL,
    timestamp TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_hits_timestamp ON crawler_hits(timestamp);
CREATE INDEX IF NOT EXISTS idx_hits_bot ON crawler_hits(bot_name);
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
`)
	return err
}

// GetSetting returns the value for key, or "" when unset.
func (s *Store) GetSetting(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return value, nil
}

// SetSetting upserts a settings value.
func (s *Store) SetSetting(key, value string) error {
	_, err := s.db.Exec(`INSERT OR REPLACE INTO settings (key, value) VALUES (?, ?)`, key, value)
	return err
}

// SaveHit inserts one crawler hit.
func (s *Store) SaveHit(h *Hit) error {
	_, err := s.db.Exec(
		`INSERT INTO crawler_hits (bot_name, path, slug, user_agent, ip_hash, timestamp) VALUES (?, ?, ?, ?, ?, ?)`,
		h.BotName, h.Path, h.Slug, h.UserAgent, h.IPHash, h.Timestamp.UTC().Format(time.RFC3339),
	)
	return err
}

// Record is the convenience write path used by the gateway: it hashes the IP
// and stamps the time before saving.
func (s *Store) Record(botName, path, slug, userAgent, ip string) error {
	if len(userAgent) > 512 {
		userAgent = userAgent[:512]
	}
	return s.SaveHit(&Hit{
		BotName:   botName,
		Path:      path,
		Slug:      slug,
		UserAgent: userAgent,
		IPHash:    HashIP(ip),
		Timestamp: time.Now(),
	})
}

// Stats aggregates hits from the last `days` days.
func (s *Store) Stats(days int) (Stats, error) {
	if days < 1 {
		days = 30
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)

	var stats Stats
	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM crawler_hits WHERE timestamp >= ?`, cutoff,
	).Scan(&stats.TotalHits); err != nil {
		return Stats{}, err
	}

	var err error
	if stats.TopBots, err = s.groupCount(`SELECT bot_name, COUNT(*) FROM crawler_hits WHERE timestamp >= ? GROUP BY bot_name ORDER BY COUNT(*) DESC LIMIT 10`, cutoff); err != nil {
		return Stats{}, err
	}
	if stats.TopPaths, err = s.groupCount(`SELECT path, COUNT(*) FROM crawler_hits WHERE timestamp >= ? GROUP BY path ORDER BY COUNT(*) DESC LIMIT 10`, cutoff); err != nil {
		return Stats{}, err
	}
	if stats.ByDay, err = s.groupCount(`SELECT substr(timestamp, 1, 10), COUNT(*) FROM crawler_hits WHERE timestamp >= ? GROUP BY substr(timestamp, 1, 10) ORDER BY substr(timestamp, 1, 10)`, cutoff); err != nil {
		return Stats{}, err
	}
	return stats, nil
}

func (s *Store) groupCount(query string, args ...any) ([]DimensionStat, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []DimensionStat
	for rows.Next() {
		var d DimensionStat
		if err := rows.Scan(&d.Name, &d.Count); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteOlderThan removes hits older than the retention window. Returns the
// number of rows deleted.
func (s *Store) DeleteOlderThan(days int) (int64, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
	res, err := s.db.Exec(`DELETE FROM crawler_hits WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartCleanupScheduler deletes expired hits every interval until the
// returned stop function is called.
func (s *Store) StartCleanupScheduler(retentionDays int, interval time.Duration) func() {
	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.DeleteOlderThan(retentionDays)
			case <-stop:
				return
			}
		}
	}()
	return func() { close(stop) }
}
