// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover queries research APIs for candidate documents matching
// the run's topics. Each backend implements the Backend interface; the
// fan-out runs backends concurrently and accumulates per-backend failures
// without failing the batch, since a dead API should cost its own results
// and nothing else.
package discover

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/pdiddy/digest-engine/pkg/types"
)

// Backend discovers candidate documents from a single source API.
type Backend interface {
	Name() string
	Discover(ctx context.Context, topics []string, window Window, cfg types.DiscoveryConfig) ([]types.CandidateDocument, error)
}

// Window is the publication date range queried from each backend.
type Window struct {
	From time.Time
	To   time.Time
}

// WindowEndingAt returns the discovery window ending at date and reaching
// backfillDays into the past.
func WindowEndingAt(date time.Time, backfillDays int) Window {
	if backfillDays < 0 {
		backfillDays = 0
	}
	return Window{From: date.AddDate(0, 0, -backfillDays), To: date}
}

// Output holds the raw discovered documents and per-backend failures.
type Output struct {
	Documents     []types.CandidateDocument
	BackendErrors []string
}

// Discover fans the topic query out to all backends concurrently and
// returns the combined raw candidate set, in backend-listing order for a
// deterministic batch. Backend failures are collected, logged, and do not
// abort the run; only an empty backend list is an error.
func Discover(ctx context.Context, topics []string, backends []Backend, window Window, cfg types.DiscoveryConfig, log zerolog.Logger) (Output, error) {
	if len(backends) == 0 {
		return Output{}, fmt.Errorf("no discovery backends configured")
	}

	results := make([][]types.CandidateDocument, len(backends))
	errs := make([]error, len(backends))

	var wg sync.WaitGroup
	for i, b := range backends {
		wg.Add(1)
		go func(i int, b Backend) {
			defer wg.Done()
			results[i], errs[i] = b.Discover(ctx, topics, window, cfg)
		}(i, b)
	}
	wg.Wait()

	var out Output
	for i, b := range backends {
		if errs[i] != nil {
			msg := fmt.Sprintf("%s: %v", b.Name(), errs[i])
			out.BackendErrors = append(out.BackendErrors, msg)
			log.Warn().Str("backend", b.Name()).Err(errs[i]).Msg("discovery backend failed")
			continue
		}
		log.Debug().Str("backend", b.Name()).Int("documents", len(results[i])).Msg("backend discovered")
		out.Documents = append(out.Documents, results[i]...)
	}
	return out, nil
}

// Backends assembles the enabled backend list from configuration.
func Backends(cfg types.DiscoveryConfig, client *http.Client) []Backend {
	var backends []Backend
	if cfg.EnableArxiv {
		backends = append(backends, &ArxivBackend{Client: client})
	}
	if cfg.EnableCrossref {
		backends = append(backends, &CrossrefBackend{Client: client, Email: cfg.CrossrefEmail})
	}
	return backends
}
