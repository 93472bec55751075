package archive

import (
	"context"
	"errors"
	"testing"

	"github.com/jadaunkg/horizon/internal/config"
	"github.com/jadaunkg/horizon/internal/core"
)

func TestImplementsStorage(t *testing.T) {
	var _ Storage = (*Local)(nil)
	var _ Storage = (*S3)(nil)
}

func TestOpen(t *testing.T) {
	s, err := Open(config.StorageConfig{Type: "localfs", Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open localfs: %v", err)
	}
	if _, ok := s.(*Local); !ok {
		t.Errorf("expected *Local, got %T", s)
	}

	s, err = Open(config.StorageConfig{Type: "s3", S3: config.S3Config{Bucket: "b", Region: "us-east-1"}})
	if err != nil {
		t.Fatalf("Open s3: %v", err)
	}
	if _, ok := s.(*S3); !ok {
		t.Errorf("expected *S3, got %T", s)
	}

	if _, err := Open(config.StorageConfig{Type: "ftp"}); !errors.Is(err, core.ErrConfigInvalid) {
		t.Errorf("expected ErrConfigInvalid for unknown type, got %v", err)
	}
}

func TestLocal_WriteRead(t *testing.T) {
	store, err := NewLocal(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocal: %v", err)
	}
	ctx := context.Background()

	data := []byte("symbol,close\nTSLA,412.5\n")
	if err := store.Write(ctx, "runs/TSLA/abc/merged.csv", data); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := store.Read(ctx, "runs/TSLA/abc/merged.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(data) {
		t.Errorf("got %q, want %q", got, data)
	}
}

func TestLocal_ReadMissing(t *testing.T) {
	store, _ := NewLocal(t.TempDir())
	if _, err := store.Read(context.Background(), "missing.csv"); !errors.Is(err, core.ErrStorageFailed) {
		t.Errorf("expected ErrStorageFailed, got %v", err)
	}
}

func TestLocal_Exists(t *testing.T) {
	store, _ := NewLocal(t.TempDir())
	ctx := context.Background()

	exists, err := store.Exists(ctx, "nope.csv")
	if err != nil || exists {
		t.Errorf("Exists(missing) = %v, %v; want false, nil", exists, err)
	}

	store.Write(ctx, "yes.csv", []byte("x"))
	exists, err = store.Exists(ctx, "yes.csv")
	if err != nil || !exists {
		t.Errorf("Exists(present) = %v, %v; want true, nil", exists, err)
	}
}

func TestLocal_List(t *testing.T) {
	store, _ := NewLocal(t.TempDir())
	ctx := context.Background()

	store.Write(ctx, "runs/TSLA/a/merged.csv", []byte("a"))
	store.Write(ctx, "runs/TSLA/a/forecast.csv", []byte("b"))
	store.Write(ctx, "runs/MSFT/b/merged.csv", []byte("c"))

	paths, err := store.List(ctx, "runs/TSLA")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(paths) != 2 {
		t.Errorf("expected 2 paths, got %d: %v", len(paths), paths)
	}

	paths, err = store.List(ctx, "runs/GOOG")
	if err != nil {
		t.Fatalf("List missing prefix: %v", err)
	}
	if len(paths) != 0 {
		t.Errorf("expected no paths, got %v", paths)
	}
}

func TestLocal_Delete(t *testing.T) {
	store, _ := NewLocal(t.TempDir())
	ctx := context.Background()

	store.Write(ctx, "gone.csv", []byte("x"))
	if err := store.Delete(ctx, "gone.csv"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if exists, _ := store.Exists(ctx, "gone.csv"); exists {
		t.Error("file should be deleted")
	}
}

func TestLocal_EmptyPath(t *testing.T) {
	if _, err := NewLocal(""); !errors.Is(err, core.ErrConfigMissing) {
		t.Errorf("expected ErrConfigMissing, got %v", err)
	}
}

func TestS3_Key(t *testing.T) {
	tests := []struct {
		prefix string
		path   string
		want   string
	}{
		{"", "runs/TSLA/a.csv", "runs/TSLA/a.csv"},
		{"horizon", "runs/TSLA/a.csv", "horizon/runs/TSLA/a.csv"},
	}
	for _, tt := range tests {
		s := &S3{prefix: tt.prefix}
		if got := s.key(tt.path); got != tt.want {
			t.Errorf("key(%q) with prefix %q = %q, want %q", tt.path, tt.prefix, got, tt.want)
		}
	}
}

func TestNewS3_MissingBucket(t *testing.T) {
	if _, err := NewS3(config.S3Config{}); !errors.Is(err, core.ErrConfigMissing) {
		t.Errorf("expected ErrConfigMissing, got %v", err)
	}
}
