package config

import (
	"context"
	"os"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"salonbook/internal/model"
)

// SameCatalog reports whether both seeds list the same services and
// professionals. Clients, appointments and settings are not compared.
func (s *Seed) SameCatalog(other *Seed) bool {
	if s == nil || other == nil {
		return s == other
	}
	return slices.Equal(s.Services, other.Services) &&
		slices.EqualFunc(s.Professionals, other.Professionals, model.Professional.Equal)
}

// SeedWatcher follows a seed file and reports catalog edits.
type SeedWatcher struct {
	path     string
	interval time.Duration
	logger   *zerolog.Logger

	current *Seed
	modTime time.Time
}

// NewSeedWatcher creates a watcher for path. A non-positive interval falls
// back to 30 seconds.
func NewSeedWatcher(path string, interval time.Duration, logger *zerolog.Logger) *SeedWatcher {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &SeedWatcher{path: path, interval: interval, logger: logger}
}

// Load reads the seed file and makes it the current version.
func (w *SeedWatcher) Load() (*Seed, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return nil, err
	}
	seed, err := LoadSeed(w.path)
	if err != nil {
		return nil, err
	}
	w.current, w.modTime = seed, info.ModTime()
	return seed, nil
}

// Poll checks the file once. It returns the new seed when the file was
// modified and its catalog differs from the current one. Files that fail
// to parse are skipped until they are modified again.
func (w *SeedWatcher) Poll() (*Seed, bool) {
	info, err := os.Stat(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("seed file unavailable")
		return nil, false
	}
	if !info.ModTime().After(w.modTime) {
		return nil, false
	}
	w.modTime = info.ModTime()

	seed, err := LoadSeed(w.path)
	if err != nil {
		w.logger.Warn().Err(err).Str("path", w.path).Msg("seed file rejected")
		return nil, false
	}
	if seed.SameCatalog(w.current) {
		w.logger.Debug().Str("path", w.path).Msg("seed touched, catalog unchanged")
		return nil, false
	}
	w.current = seed
	return seed, true
}

// Run polls until ctx is done and hands every changed seed to apply.
func (w *SeedWatcher) Run(ctx context.Context, apply func(*Seed)) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if seed, ok := w.Poll(); ok {
				apply(seed)
			}
		}
	}
}
