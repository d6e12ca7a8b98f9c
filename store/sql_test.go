package store

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestSQLite(t *testing.T) Backend {
	t.Helper()
	s, err := OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStore_Contract(t *testing.T) {
	runBackendContract(t, openTestSQLite)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite failed: %v", err)
	}
	p := productSnap(t, "Monitor", 3, "249.99")
	if err := s.InsertProduct(ctx, p); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer reopened.Close()
	got, err := reopened.GetProduct(ctx, p.ID)
	if err != nil {
		t.Fatalf("get after reopen failed: %v", err)
	}
	assertSameProduct(t, p, got)
}

func TestSQLStore_Rebind(t *testing.T) {
	cases := []struct {
		name    string
		dialect dialect
		in      string
		want    string
	}{
		{"sqlite untouched", dialectSQLite, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = ? AND b = ?"},
		{"postgres numbered", dialectPostgres, "SELECT * FROM t WHERE a = ? AND b = ?", "SELECT * FROM t WHERE a = $1 AND b = $2"},
		{"postgres no args", dialectPostgres, "SELECT 1", "SELECT 1"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := &SQLStore{dialect: tc.dialect}
			if got := s.rebind(tc.in); got != tc.want {
				t.Fatalf("rebind(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
