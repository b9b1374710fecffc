package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zenstudio/backend/internal/model"
	"github.com/zenstudio/backend/internal/storage"
)

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want storage.Config
	}{
		{"file:data/db.json", storage.Config{Driver: "file", Path: "data/db.json"}},
		{"sqlite:/tmp/studio.db", storage.Config{Driver: "sqlite", SQLitePath: "/tmp/studio.db"}},
		{"postgres://u:p@h/db", storage.Config{Driver: "postgres", PostgresURL: "postgres://u:p@h/db"}},
		{"redis://localhost:6379/0#zen", storage.Config{Driver: "redis", RedisURL: "redis://localhost:6379/0", RedisPrefix: "zen"}},
	}
	for _, tt := range tests {
		got, err := parseLocation(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []string{"database.json", "file:", "mongo:x"} {
		_, err := parseLocation(bad)
		assert.Error(t, err, bad)
	}
}

func TestRun_FileToSQLite(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "database.json")
	dbPath := filepath.Join(dir, "studio.db")

	src := storage.New(storage.NewFileBackend(jsonPath), nil)
	ds := model.NewDataset()
	ds.Leads = append(ds.Leads, model.Lead{ID: "1", Name: "Ana", Status: model.LeadNew})
	require.NoError(t, src.Save(ctx, ds))

	var stderr bytes.Buffer
	require.NoError(t, run(ctx, []string{"--from", "file:" + jsonPath, "--to", "sqlite:" + dbPath}, &stderr))

	dst, err := storage.Open(ctx, storage.Config{Driver: "sqlite", SQLitePath: dbPath}, nil)
	require.NoError(t, err)
	defer dst.Close()
	copied, err := dst.Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, copied.Leads, 1)
	assert.Equal(t, "Ana", copied.Leads[0].Name)

	err = run(ctx, []string{"--from", "file:" + jsonPath, "--to", "sqlite:" + dbPath}, &stderr)
	require.Error(t, err, "second copy must not overwrite without --force")

	require.NoError(t, run(ctx, []string{"--from", "file:" + jsonPath, "--to", "sqlite:" + dbPath, "--force"}, &stderr))
}

func TestRun_MissingSourceFails(t *testing.T) {
	dir := t.TempDir()
	var stderr bytes.Buffer
	err := run(context.Background(), []string{
		"--from", "file:" + filepath.Join(dir, "absent.json"),
		"--to", "file:" + filepath.Join(dir, "out.json"),
	}, &stderr)
	require.Error(t, err)
}

func TestRun_RequiresTarget(t *testing.T) {
	var stderr bytes.Buffer
	require.Error(t, run(context.Background(), nil, &stderr))
	assert.Contains(t, stderr.String(), "Usage: migrate")
}
