// Package inventory defines the host/connection snapshot consumed by the
// topology visualizer, and loading of snapshots from JSON files.
//
// The snapshot is produced by the surrounding hunt dashboard backend; hm
// treats it as an external collaborator and never writes it.
package inventory

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/huntmap/pkg/metrics"
)

// ErrEmptySnapshot reports a snapshot with no hosts. It is not a failure:
// callers show an empty state instead of an error banner.
var ErrEmptySnapshot = errors.New("inventory: snapshot has no hosts")

// Host is one monitored endpoint in the hunt inventory.
type Host struct {
	ID            string   `json:"id"`
	Hostname      string   `json:"hostname"`
	FQDN          string   `json:"fqdn,omitempty"`
	IPs           []string `json:"ips,omitempty"`
	OS            string   `json:"os,omitempty"`
	Users         []string `json:"users,omitempty"`
	Datasets      []string `json:"datasets,omitempty"`
	ActivityCount int      `json:"activity_count"`
}

// Connection is one observed network interaction between two endpoints.
// Target may name a host id or, for traffic leaving the inventory, a raw
// remote address carried in TargetIP.
type Connection struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	TargetIP string `json:"target_ip,omitempty"`
	Count    int    `json:"count"`
}

// Snapshot is the full inventory for one hunt.
type Snapshot struct {
	HuntID      string       `json:"hunt_id,omitempty"`
	Hosts       []Host       `json:"hosts"`
	Connections []Connection `json:"connections"`
}

// Source fetches the inventory snapshot for a hunt. Implementations must
// honor ctx cancellation: a fetch abandoned by a dataset switch must not
// deliver its result.
type Source interface {
	Fetch(ctx context.Context, huntID string) (*Snapshot, error)
}

// Validate checks structural soundness of a snapshot: unique host ids and
// connection sources that resolve to known hosts. Unknown connection
// targets are legal (they become external endpoints).
func (s *Snapshot) Validate() error {
	seen := make(map[string]bool, len(s.Hosts))
	for _, h := range s.Hosts {
		if h.ID == "" {
			return fmt.Errorf("inventory: host with empty id (hostname %q)", h.Hostname)
		}
		if seen[h.ID] {
			return fmt.Errorf("inventory: duplicate host id %q", h.ID)
		}
		seen[h.ID] = true
	}
	for i, c := range s.Connections {
		if c.Source == "" || c.Target == "" {
			return fmt.Errorf("inventory: connection %d missing source or target", i)
		}
		if !seen[c.Source] {
			return fmt.Errorf("inventory: connection %d source %q is not a known host", i, c.Source)
		}
	}
	return nil
}

// FileSource loads snapshots from a JSON file on disk.
type FileSource struct {
	Path string
}

// Fetch implements Source. The huntID is matched against the snapshot's
// hunt_id when the file declares one; a mismatch is an error rather than a
// silently wrong graph.
func (f FileSource) Fetch(ctx context.Context, huntID string) (*Snapshot, error) {
	defer metrics.Timer(metrics.InventoryLoad)()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("inventory: reading %s: %w", f.Path, err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("inventory: parsing %s: %w", f.Path, err)
	}
	if huntID != "" && snap.HuntID != "" && snap.HuntID != huntID {
		return nil, fmt.Errorf("inventory: snapshot is for hunt %q, want %q", snap.HuntID, huntID)
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &snap, nil
}
