package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func openTestStores(t *testing.T) map[string]Store {
	t.Helper()
	sq, err := OpenSQLite(filepath.Join(t.TempDir(), "artifacts.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { sq.Close() })
	return map[string]Store{
		"sqlite": sq,
		"memory": NewMemory(),
	}
}

func TestPutThenExists(t *testing.T) {
	ctx := context.Background()
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			ok, err := s.Exists(ctx, "aaaaaaaaaaaaaaaaaaaaaaaa.pdf")
			if err != nil {
				t.Fatalf("Exists before put: %v", err)
			}
			if ok {
				t.Fatal("blob should not exist before put")
			}

			if err := s.Put(ctx, "aaaaaaaaaaaaaaaaaaaaaaaa.pdf", []byte("%PDF-"), "application/pdf"); err != nil {
				t.Fatalf("Put: %v", err)
			}

			// put-then-get consistency: readiness is visible immediately.
			ok, err = s.Exists(ctx, "aaaaaaaaaaaaaaaaaaaaaaaa.pdf")
			if err != nil {
				t.Fatalf("Exists after put: %v", err)
			}
			if !ok {
				t.Fatal("blob should exist after put")
			}
		})
	}
}

func TestPutIsWriteOnce(t *testing.T) {
	ctx := context.Background()
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put(ctx, "k.epub", []byte("one"), ""); err != nil {
				t.Fatalf("first Put: %v", err)
			}
			err := s.Put(ctx, "k.epub", []byte("two"), "")
			if !errors.Is(err, ErrDuplicateKey) {
				t.Fatalf("second Put err = %v, want ErrDuplicateKey", err)
			}
		})
	}
}

func TestGetString(t *testing.T) {
	ctx := context.Background()
	for name, s := range openTestStores(t) {
		t.Run(name, func(t *testing.T) {
			report := `{"duration": 1200, "networkPreset": "wifi"}`
			if err := s.Put(ctx, "r.json", []byte(report), "application/json"); err != nil {
				t.Fatalf("Put: %v", err)
			}
			got, err := s.GetString(ctx, "r.json")
			if err != nil {
				t.Fatalf("GetString: %v", err)
			}
			if got != report {
				t.Errorf("GetString = %q, want %q", got, report)
			}

			var se *StorageError
			if _, err := s.GetString(ctx, "missing.json"); !errors.As(err, &se) {
				t.Errorf("GetString for missing key: err = %v, want *StorageError", err)
			}
		})
	}
}

func TestMemoryFailOps(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	m.FailOps = map[string]error{"exists": errors.New("backend down")}

	_, err := m.Exists(ctx, "k")
	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *StorageError", err)
	}
}
