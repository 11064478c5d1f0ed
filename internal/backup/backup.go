// Package backup copies the appointment database on a cron schedule and
// prunes old copies.
package backup

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const (
	filePrefix = "salon_"
	fileSuffix = ".db"
	stampFmt   = "20060102_150405"
)

// Source writes a consistent copy of the database to a path.
type Source interface {
	Backup(ctx context.Context, dest string) error
}

// Config controls where and when backups run.
type Config struct {
	Schedule      string
	Dir           string
	RetentionDays int
}

// Service performs scheduled backups.
type Service struct {
	source Source
	cfg    Config
	cron   *cron.Cron
	now    func() time.Time
	logger *zerolog.Logger
}

// NewService validates the schedule and returns an idle service.
func NewService(source Source, cfg Config, logger *zerolog.Logger) (*Service, error) {
	if cfg.Dir == "" {
		return nil, fmt.Errorf("backup directory is required")
	}
	s := &Service{
		source: source,
		cfg:    cfg,
		cron:   cron.New(),
		now:    time.Now,
		logger: logger,
	}
	if _, err := s.cron.AddFunc(cfg.Schedule, s.run); err != nil {
		return nil, fmt.Errorf("parse backup schedule %q: %w", cfg.Schedule, err)
	}
	return s, nil
}

// SetClock overrides the time source.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Start runs one backup immediately and then follows the schedule until
// ctx is done.
func (s *Service) Start(ctx context.Context) {
	s.logger.Info().Str("schedule", s.cfg.Schedule).Str("dir", s.cfg.Dir).Msg("backup service started")
	s.run()
	s.cron.Start()

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.logger.Info().Msg("backup service stopped")
}

func (s *Service) run() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	path, err := s.PerformBackup(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("backup failed")
		return
	}
	s.logger.Info().Str("path", path).Msg("backup completed")

	removed, err := s.CleanupOldBackups()
	if err != nil {
		s.logger.Error().Err(err).Msg("backup cleanup failed")
		return
	}
	if removed > 0 {
		s.logger.Info().Int("removed", removed).Msg("old backups deleted")
	}
}

// PerformBackup writes a timestamped copy into the backup directory.
func (s *Service) PerformBackup(ctx context.Context) (string, error) {
	if err := os.MkdirAll(s.cfg.Dir, 0o755); err != nil {
		return "", fmt.Errorf("create backup directory: %w", err)
	}
	name := filePrefix + s.now().Format(stampFmt) + fileSuffix
	path := filepath.Join(s.cfg.Dir, name)
	if err := s.source.Backup(ctx, path); err != nil {
		return "", fmt.Errorf("backup to %s: %w", path, err)
	}
	return path, nil
}

// CleanupOldBackups removes backups older than the retention window. The
// age comes from the timestamp in the file name; other files are ignored.
func (s *Service) CleanupOldBackups() (int, error) {
	if s.cfg.RetentionDays <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(s.cfg.Dir)
	if err != nil {
		return 0, fmt.Errorf("read backup directory: %w", err)
	}

	now := s.now()
	cutoff := now.AddDate(0, 0, -s.cfg.RetentionDays)
	removed := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		taken, ok := parseStamp(e.Name(), now.Location())
		if !ok || !taken.Before(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.cfg.Dir, e.Name())); err != nil {
			s.logger.Warn().Err(err).Str("file", e.Name()).Msg("delete old backup")
			continue
		}
		removed++
	}
	return removed, nil
}

func parseStamp(name string, loc *time.Location) (time.Time, bool) {
	if !strings.HasPrefix(name, filePrefix) || !strings.HasSuffix(name, fileSuffix) {
		return time.Time{}, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, filePrefix), fileSuffix)
	t, err := time.ParseInLocation(stampFmt, stamp, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
