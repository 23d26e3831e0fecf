package datasource

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/huntmap/pkg/inventory"
	"github.com/vanderheijden86/huntmap/pkg/metrics"

	"golang.org/x/sync/errgroup"
)

// SQLiteSource reads host inventories from a hunt database. The database
// belongs to the dashboard backend; it is opened read-only and never
// written.
type SQLiteSource struct {
	db   *sql.DB
	path string
}

// NewSQLiteSource opens a hunt database for reading.
func NewSQLiteSource(path string) (*SQLiteSource, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro&_busy_timeout=5000", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("datasource: open %s: %w", path, err)
	}
	return &SQLiteSource{db: db, path: path}, nil
}

// Close closes the database connection.
func (s *SQLiteSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Fetch implements inventory.Source. Hosts and connections are queried
// concurrently; either failure cancels the other via the group context.
func (s *SQLiteSource) Fetch(ctx context.Context, huntID string) (*inventory.Snapshot, error) {
	defer metrics.Timer(metrics.InventoryLoad)()

	snap := &inventory.Snapshot{HuntID: huntID}

	grp, gctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		hosts, err := s.queryHosts(gctx, huntID)
		if err != nil {
			return err
		}
		snap.Hosts = hosts
		return nil
	})
	grp.Go(func() error {
		conns, err := s.queryConnections(gctx, huntID)
		if err != nil {
			return err
		}
		snap.Connections = conns
		return nil
	})
	if err := grp.Wait(); err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *SQLiteSource) queryHosts(ctx context.Context, huntID string) ([]inventory.Host, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hostname, COALESCE(fqdn, ''), COALESCE(ips, ''),
		       COALESCE(os, ''), COALESCE(users, ''), COALESCE(datasets, ''),
		       COALESCE(activity_count, 0)
		FROM hosts WHERE hunt_id = ?`, huntID)
	if err != nil {
		return nil, fmt.Errorf("datasource: query hosts: %w", err)
	}
	defer rows.Close()

	var hosts []inventory.Host
	for rows.Next() {
		var h inventory.Host
		var ips, users, datasets string
		if err := rows.Scan(&h.ID, &h.Hostname, &h.FQDN, &ips, &h.OS, &users, &datasets, &h.ActivityCount); err != nil {
			return nil, fmt.Errorf("datasource: scan host: %w", err)
		}
		h.IPs = splitList(ips)
		h.Users = splitList(users)
		h.Datasets = splitList(datasets)
		hosts = append(hosts, h)
	}
	return hosts, rows.Err()
}

func (s *SQLiteSource) queryConnections(ctx context.Context, huntID string) ([]inventory.Connection, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT source, target, COALESCE(target_ip, ''), COALESCE(count, 1)
		FROM connections WHERE hunt_id = ?`, huntID)
	if err != nil {
		return nil, fmt.Errorf("datasource: query connections: %w", err)
	}
	defer rows.Close()

	var conns []inventory.Connection
	for rows.Next() {
		var c inventory.Connection
		if err := rows.Scan(&c.Source, &c.Target, &c.TargetIP, &c.Count); err != nil {
			return nil, fmt.Errorf("datasource: scan connection: %w", err)
		}
		conns = append(conns, c)
	}
	return conns, rows.Err()
}

// splitList decodes the comma-separated list columns the dashboard writes.
func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
