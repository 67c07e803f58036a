package backend

import (
	"context"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("nil config should fail")
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "sheets"}); err == nil {
		t.Error("unknown backend should fail")
	}
	cfg, err := FromAppConfig(&config.Config{DataBackend: "file", DataDir: "/tmp/x"})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Type != FileBackend || cfg.DataDirectory != "/tmp/x" {
		t.Errorf("got %+v", cfg)
	}
}

func TestCreateBackend(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{name: "file", config: Config{Type: FileBackend, DataDirectory: filepath.Join(dir, "docs")}},
		{name: "sqlite", config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "fintrack.db")}},
		{name: "file without directory", config: Config{Type: FileBackend}, wantErr: true},
		{name: "unknown type", config: Config{Type: "memory"}, wantErr: true},
	}

	factory := NewFactory(log.Discard())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			res, err := factory.CreateBackend(ctx, tt.config)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("CreateBackend() = %v", err)
			}
			if res.Cleanup != nil {
				defer res.Cleanup()
			}

			if err := storage.Save(ctx, res.Gateway, log.Discard(), storage.DocUsers, []string{"alice"}); err != nil {
				t.Fatalf("Save() = %v", err)
			}
			got, err := storage.Read[[]string](ctx, res.Gateway, storage.DocUsers)
			if err != nil || len(got) != 1 || got[0] != "alice" {
				t.Fatalf("Read() = %v, %v", got, err)
			}
		})
	}
}
