package janitor

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-co-op/gocron"
)

// Janitor removes text artifacts left behind by preparations that never
// reached the QR step (for example a request cancelled in between).
type Janitor struct {
	textDir   string
	qrDir     string
	grace     time.Duration
	now       func() time.Time
	log       *slog.Logger
	scheduler *gocron.Scheduler
}

func New(textDir, qrDir string, grace time.Duration, log *slog.Logger) *Janitor {
	if log == nil {
		log = slog.Default()
	}
	return &Janitor{
		textDir: textDir,
		qrDir:   qrDir,
		grace:   grace,
		now:     time.Now,
		log:     log.With("svc", "janitor"),
	}
}

// Sweep deletes every <id>.txt without a matching <id>.png whose last
// modification is older than the grace period. In-flight preparations are
// younger than the grace period and are left alone.
func (j *Janitor) Sweep() (int, error) {
	entries, err := os.ReadDir(j.textDir)
	if errors.Is(err, os.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	cutoff := j.now().Add(-j.grace)
	removed := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".txt") {
			continue
		}
		id := strings.TrimSuffix(name, ".txt")
		if _, err := os.Stat(filepath.Join(j.qrDir, id+".png")); err == nil {
			continue
		}
		info, err := entry.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(j.textDir, name)); err != nil && !errors.Is(err, os.ErrNotExist) {
			j.log.Warn("failed to remove orphaned artifact", "file", name, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		j.log.Info("orphaned text artifacts removed", "count", removed)
	}
	return removed, nil
}

// Start runs Sweep every interval in the background
func (j *Janitor) Start(interval time.Duration) error {
	s := gocron.NewScheduler(time.UTC)
	_, err := s.Every(interval).SingletonMode().Do(func() {
		if _, err := j.Sweep(); err != nil {
			j.log.Error("artifact sweep failed", "error", err)
		}
	})
	if err != nil {
		return err
	}
	s.StartAsync()
	j.scheduler = s
	return nil
}

func (j *Janitor) Stop() {
	if j.scheduler != nil {
		j.scheduler.Stop()
	}
}
