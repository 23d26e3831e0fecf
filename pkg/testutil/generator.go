// Package testutil generates deterministic inventory fixtures for tests and
// benchmarks. Same seed, same snapshot.
package testutil

import (
	"fmt"
	"math/rand"

	"github.com/vanderheijden86/huntmap/pkg/graph"
	"github.com/vanderheijden86/huntmap/pkg/inventory"
)

var (
	osNames  = []string{"Windows Server 2019", "Windows 10", "Ubuntu 22.04", "RHEL 9", "macOS 14"}
	userPool = []string{"svc_backup", "administrator", "jdoe", "asmith", "root", "deploy"}
	datasets = []string{"edr", "netflow", "dns", "auth", "proxy"}
)

// GenOptions controls fixture generation.
type GenOptions struct {
	Seed  int64
	Hosts int
	// ExternalFanout is the mean number of external endpoints per host.
	ExternalFanout int
	// CrossLinks is the number of host-to-host connections.
	CrossLinks int
}

// DefaultGenOptions returns a mid-sized hunt fixture configuration.
func DefaultGenOptions() GenOptions {
	return GenOptions{Seed: 1, Hosts: 12, ExternalFanout: 3, CrossLinks: 8}
}

// GenerateSnapshot builds a deterministic inventory snapshot.
func GenerateSnapshot(opts GenOptions) *inventory.Snapshot {
	rng := rand.New(rand.NewSource(opts.Seed))
	snap := &inventory.Snapshot{HuntID: fmt.Sprintf("hunt-%04d", opts.Seed)}

	for i := 0; i < opts.Hosts; i++ {
		h := inventory.Host{
			ID:            fmt.Sprintf("host-%03d", i),
			Hostname:      fmt.Sprintf("ws-%03d", i),
			FQDN:          fmt.Sprintf("ws-%03d.corp.example", i),
			IPs:           []string{fmt.Sprintf("10.0.%d.%d", rng.Intn(8), 10+rng.Intn(240))},
			OS:            osNames[rng.Intn(len(osNames))],
			ActivityCount: rng.Intn(400),
		}
		for _, u := range pickSome(rng, userPool, 1+rng.Intn(3)) {
			h.Users = append(h.Users, u)
		}
		for _, d := range pickSome(rng, datasets, 1+rng.Intn(3)) {
			h.Datasets = append(h.Datasets, d)
		}
		snap.Hosts = append(snap.Hosts, h)
	}

	for i := 0; i < opts.Hosts; i++ {
		fanout := rng.Intn(opts.ExternalFanout*2 + 1)
		for j := 0; j < fanout; j++ {
			snap.Connections = append(snap.Connections, inventory.Connection{
				Source:   snap.Hosts[i].ID,
				Target:   fmt.Sprintf("ext-%d-%d", rng.Intn(6), rng.Intn(4)),
				TargetIP: fmt.Sprintf("203.0.113.%d", rng.Intn(250)),
				Count:    1 + rng.Intn(40),
			})
		}
	}
	for i := 0; i < opts.CrossLinks && opts.Hosts > 1; i++ {
		a, b := rng.Intn(opts.Hosts), rng.Intn(opts.Hosts)
		if a == b {
			continue
		}
		snap.Connections = append(snap.Connections, inventory.Connection{
			Source: snap.Hosts[a].ID,
			Target: snap.Hosts[b].ID,
			Count:  1 + rng.Intn(20),
		})
	}
	return snap
}

// GenerateGraph builds a deterministic graph straight from a generated
// snapshot, laid out on the given surface.
func GenerateGraph(opts GenOptions, width, height float64) *graph.Graph {
	snap := GenerateSnapshot(opts)
	return graph.Build(snap, graph.BuildOptions{
		Width:  width,
		Height: height,
		Rand:   rand.New(rand.NewSource(opts.Seed)),
	})
}

func pickSome(rng *rand.Rand, pool []string, n int) []string {
	idx := rng.Perm(len(pool))
	if n > len(pool) {
		n = len(pool)
	}
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, pool[i])
	}
	return out
}
