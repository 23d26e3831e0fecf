package datasource

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

func createHuntDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hunt.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	stmts := []string{
		`CREATE TABLE hosts (
			hunt_id TEXT, id TEXT, hostname TEXT, fqdn TEXT, ips TEXT,
			os TEXT, users TEXT, datasets TEXT, activity_count INTEGER
		)`,
		`CREATE TABLE connections (
			hunt_id TEXT, source TEXT, target TEXT, target_ip TEXT, count INTEGER
		)`,
		`INSERT INTO hosts VALUES
			('hunt-1', 'h1', 'alpha', 'alpha.corp', '10.0.0.1,10.0.0.2', 'Ubuntu 22.04', 'root, deploy', 'edr', 42),
			('hunt-1', 'h2', 'beta', NULL, NULL, NULL, NULL, NULL, NULL),
			('hunt-2', 'zz', 'other-hunt', NULL, NULL, NULL, NULL, NULL, 1)`,
		`INSERT INTO connections VALUES
			('hunt-1', 'h1', 'h2', NULL, 7),
			('hunt-1', 'h2', 'ext-1', '203.0.113.4', NULL),
			('hunt-2', 'zz', 'ext-9', NULL, 1)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("seeding db: %v", err)
		}
	}
	return path
}

func TestSQLiteFetch(t *testing.T) {
	src, err := NewSQLiteSource(createHuntDB(t))
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	snap, err := src.Fetch(context.Background(), "hunt-1")
	if err != nil {
		t.Fatal(err)
	}

	if snap.HuntID != "hunt-1" {
		t.Errorf("hunt id = %q", snap.HuntID)
	}
	if len(snap.Hosts) != 2 {
		t.Fatalf("got %d hosts, want 2 (hunt filter leaked)", len(snap.Hosts))
	}
	if len(snap.Connections) != 2 {
		t.Fatalf("got %d connections, want 2", len(snap.Connections))
	}

	byID := make(map[string]int)
	for i, h := range snap.Hosts {
		byID[h.ID] = i
	}
	i, ok := byID["h1"]
	if !ok {
		t.Fatal("h1 missing")
	}
	alpha := snap.Hosts[i]
	if len(alpha.IPs) != 2 || alpha.IPs[0] != "10.0.0.1" {
		t.Errorf("ips not split: %v", alpha.IPs)
	}
	if len(alpha.Users) != 2 || alpha.Users[1] != "deploy" {
		t.Errorf("users not split/trimmed: %v", alpha.Users)
	}
	if alpha.ActivityCount != 42 {
		t.Errorf("activity = %d", alpha.ActivityCount)
	}

	// NULL count defaults to 1 so edge weights stay legal.
	for _, c := range snap.Connections {
		if c.Count < 1 {
			t.Errorf("connection count %d < 1", c.Count)
		}
	}
}

func TestSQLiteFetchUnknownHunt(t *testing.T) {
	src, err := NewSQLiteSource(createHuntDB(t))
	if err != nil {
		t.Fatal(err)
	}
	defer src.Close()

	snap, err := src.Fetch(context.Background(), "no-such-hunt")
	if err != nil {
		t.Fatal(err)
	}
	if len(snap.Hosts) != 0 {
		t.Fatalf("unknown hunt returned %d hosts", len(snap.Hosts))
	}
}

func TestSplitList(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"", 0},
		{"a", 1},
		{"a,b", 2},
		{"a, b ,c", 3},
		{" , ,", 0},
	}
	for _, c := range cases {
		if got := splitList(c.in); len(got) != c.want {
			t.Errorf("splitList(%q) = %v, want %d items", c.in, got, c.want)
		}
	}
}
