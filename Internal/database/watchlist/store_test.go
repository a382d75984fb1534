package watchlist

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		max  int
		want []string
	}{
		{"uppercases and trims", []string{" gme", "amc "}, 10, []string{"GME", "AMC"}},
		{"dedupes keeping first", []string{"gme", "AMC", "GME"}, 10, []string{"GME", "AMC"}},
		{"drops empties", []string{"", "  ", "tsla"}, 10, []string{"TSLA"}},
		{"caps", []string{"a", "b", "c"}, 2, []string{"A", "B"}},
		{"nil", nil, 10, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in, tt.max))
		})
	}
}

func TestSanitize_DefaultCap(t *testing.T) {
	in := make([]string, 250)
	for i := range in {
		in[i] = fmt.Sprintf("T%d", i)
	}

	out := Sanitize(in, 0)

	assert.Len(t, out, DefaultMaxEntries)
	assert.Equal(t, "T0", out[0])
	assert.Equal(t, "T199", out[199])

	assert.Len(t, Sanitize(in, 500), DefaultMaxEntries)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore(3)

	list, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, s.Write(ctx, []string{"a", "b", "a", "c", "d"}))
	list, _ = s.Read(ctx)
	assert.Equal(t, []string{"A", "B", "C"}, list)

	list[0] = "Z"
	again, _ := s.Read(ctx)
	assert.Equal(t, "A", again[0])
}

func TestFileStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "watchlist.json")
	s := NewFileStore(path, 200, zap.NewNop())

	list, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, s.Write(ctx, []string{"gme", "AMC", "gme"}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `["GME","AMC"]`, string(data))

	list, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GME", "AMC"}, list)
}

func TestFileStore_Recovery(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		logMsg  string
	}{
		{"non-string entries dropped", `["GME", 42, null, "AMC", {"x":1}]`, []string{"GME", "AMC"}, ""},
		{"truncated array repaired", `["GME", "AMC"`, []string{"GME", "AMC"}, "repaired damaged watchlist file"},
		{"not an array", `{"tickers":["GME"]}`, []string{}, "watchlist corrupt, starting empty"},
		{"scalar", `42`, []string{}, "watchlist corrupt, starting empty"},
		{"empty file", ``, []string{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "watchlist.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))

			core, logs := observer.New(zap.WarnLevel)
			list, err := NewFileStore(path, 200, zap.New(core)).Read(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.want, list)
			if tt.logMsg != "" {
				assert.Equal(t, 1, logs.FilterMessage(tt.logMsg).Len())
			}
		})
	}
}

func TestFileStore_UnreadablePathIsEmpty(t *testing.T) {
	dir := t.TempDir()

	// a directory cannot be read as a file
	list, err := NewFileStore(dir, 200, zap.NewNop()).Read(context.Background())

	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPing(t *testing.T) {
	ctx := context.Background()

	assert.Error(t, NewPostgresStore(nil, 200).Ping(ctx))

	w, err := Load(ctx, NewMemoryStore(10), 10)
	require.NoError(t, err)
	assert.NoError(t, w.Ping(ctx))
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	db, err := sql.Open("postgres", dsn)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS watchlist_tickers (
		position INTEGER NOT NULL PRIMARY KEY,
		symbol TEXT NOT NULL UNIQUE,
		added_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)`)
	require.NoError(t, err)

	s := NewPostgresStore(db, 200)
	require.NoError(t, s.Ping(ctx))
	require.NoError(t, s.Write(ctx, []string{"gme", "amc", "GME"}))

	list, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"GME", "AMC"}, list)

	require.NoError(t, s.Write(ctx, nil))
	list, err = s.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}
