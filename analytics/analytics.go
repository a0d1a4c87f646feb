// Package analytics records crawler interceptions in a local SQLite store
// so editors can see which bots fetch which share cards.
package analytics

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"
	"time"
)

// salt holds the per-installation random salt for IP hashing, protected by sync.Once.
var salt struct {
	once  sync.Once
	value string
}

// InitSalt loads or generates a persistent salt for IP hashing.
// Must be called once at startup before any hits are recorded.
func InitSalt(store *Store) error {
	var initErr error
	salt.once.Do(func() {
		s, err := store.GetSetting("hash_salt")
		if err != nil {
			initErr = fmt.Errorf("read hash salt: %w", err)
			return
		}
		if s == "" {
			b := make([]byte, 32)
			if _, err := rand.Read(b); err != nil {
				initErr = fmt.Errorf("generate salt: %w", err)
				return
			}
			s = hex.EncodeToString(b)
			if err := store.SetSetting("hash_salt", s); err != nil {
				initErr = fmt.Errorf("store hash salt: %w", err)
				return
			}
		}
		salt.value = s
	})
	return initErr
}

// HashIP returns a salted, truncated hash of an IP address. Raw addresses
// are never stored.
func HashIP(ip string) string {
	h := sha256.New()
	h.Write([]byte(salt.value + ip))
	return hex.EncodeToString(h.Sum(nil))[:16]
}

// Hit is a single crawler interception.
type Hit struct {
	ID        int64     `json:"-"`
	BotName   string    `json:"bot_name"`
	Path      string    `json:"path"`
	Slug      string    `json:"slug"`
	UserAgent string    `json:"user_agent"`
	IPHash    string    `json:"-"`
	Timestamp time.Time `json:"timestamp"`
}

// DimensionStat is one row of a grouped count.
type DimensionStat struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Stats is the aggregated crawler report for the dashboard.
type Stats struct {
	TotalHits int             `json:"total_hits"`
	TopBots   []DimensionStat `json:"top_bots"`
	TopPaths  []DimensionStat `json:"top_paths"`
	ByDay     []DimensionStat `json:"by_day"`
}
