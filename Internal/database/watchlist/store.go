// Package watchlist persists the user's list of tickers of interest.
package watchlist

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/kaptinlin/jsonrepair"
	"go.uber.org/zap"

	datafeed "github.com/fazecat/squeezescope/Internal/database"
)

const DefaultMaxEntries = 200

// Limit bounds a configured size to (0, DefaultMaxEntries]. Zero, negative
// and oversized values all become DefaultMaxEntries.
func Limit(max int) int {
	if max <= 0 || max > DefaultMaxEntries {
		return DefaultMaxEntries
	}
	return max
}

// Store reads and writes the whole list at once.
type Store interface {
	Read(ctx context.Context) ([]string, error)
	Write(ctx context.Context, list []string) error
}

// Pinger is implemented by stores backed by a connection that can drop.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Sanitize uppercases and trims every entry, drops empties and duplicates
// (first occurrence wins) and keeps at most max entries.
func Sanitize(list []string, max int) []string {
	max = Limit(max)

	out := make([]string, 0, len(list))
	seen := make(map[string]bool, len(list))
	for _, s := range list {
		t := strings.ToUpper(strings.TrimSpace(s))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
		if len(out) == max {
			break
		}
	}
	return out
}

type MemoryStore struct {
	mu   sync.Mutex
	list []string
	max  int
}

func NewMemoryStore(max int) *MemoryStore {
	return &MemoryStore{max: Limit(max)}
}

func (s *MemoryStore) Read(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string{}, s.list...), nil
}

func (s *MemoryStore) Write(ctx context.Context, list []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = Sanitize(list, s.max)
	return nil
}

// FileStore keeps the list as a JSON array of strings. A file that cannot
// be read or parsed reads as an empty list.
type FileStore struct {
	path   string
	max    int
	logger *zap.Logger
}

func NewFileStore(path string, max int, logger *zap.Logger) *FileStore {
	return &FileStore{path: path, max: Limit(max), logger: logger.Named("watchlist")}
}

func (s *FileStore) Read(ctx context.Context) ([]string, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("watchlist unreadable, starting empty", zap.String("path", s.path), zap.Error(err))
		}
		return []string{}, nil
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []string{}, nil
	}

	list, err := decodeList(data)
	if err == nil {
		return list, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(string(data))
	if repairErr == nil {
		if list, err = decodeList([]byte(repaired)); err == nil {
			s.logger.Warn("repaired damaged watchlist file", zap.String("path", s.path))
			return list, nil
		}
	}

	s.logger.Warn("watchlist corrupt, starting empty", zap.String("path", s.path), zap.Error(err))
	return []string{}, nil
}

// decodeList accepts only a JSON array and keeps its string entries.
func decodeList(data []byte) ([]string, error) {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}

// Write replaces the file atomically via a temp file and rename.
func (s *FileStore) Write(ctx context.Context, list []string) error {
	data, err := json.Marshal(Sanitize(list, s.max))
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create watchlist dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".watchlist-*.json")
	if err != nil {
		return fmt.Errorf("create temp watchlist: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write watchlist: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write watchlist: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}

// PostgresStore keeps the list in watchlist_tickers, ordered by position.
type PostgresStore struct {
	db  *sql.DB
	max int
}

func NewPostgresStore(db *sql.DB, max int) *PostgresStore {
	return &PostgresStore{db: db, max: Limit(max)}
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return datafeed.HealthCheck(ctx, s.db)
}

func (s *PostgresStore) Read(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT symbol FROM watchlist_tickers ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query watchlist: %w", err)
	}
	defer rows.Close()

	list := []string{}
	for rows.Next() {
		var symbol string
		if err := rows.Scan(&symbol); err != nil {
			return nil, fmt.Errorf("scan watchlist: %w", err)
		}
		list = append(list, symbol)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}
	return Sanitize(list, s.max), nil
}

func (s *PostgresStore) Write(ctx context.Context, list []string) error {
	list = Sanitize(list, s.max)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin watchlist write: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM watchlist_tickers`); err != nil {
		return fmt.Errorf("clear watchlist: %w", err)
	}
	for i, symbol := range list {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO watchlist_tickers (position, symbol) VALUES ($1, $2)`, i, symbol); err != nil {
			return fmt.Errorf("insert %s: %w", symbol, err)
		}
	}
	return tx.Commit()
}
