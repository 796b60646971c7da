package config

import (
	"time"

	"github.com/raoulx24/backup-warden/internal/watcher"
)

// Defaults applied by Load when a field is left empty.
const (
	DefaultWaitBudget   = 60 * time.Second
	DefaultPollInterval = time.Hour
	DefaultEventBuffer  = 64
	DefaultWatchMode    = watcher.ModePoll
)

// Config is the whole daemon configuration. It is read once at startup and
// never mutated afterwards.
type Config struct {
	WatchFolder     string         `yaml:"watch_folder"`
	BackupLocations []string       `yaml:"backup_locations"`
	RetentionDays   int            `yaml:"retention_days"`
	WaitBudget      time.Duration  `yaml:"wait_budget"`
	LockFile        string         `yaml:"lock_file"`
	Watch           WatchConfig    `yaml:"watch"`
	Snapshot        SnapshotConfig `yaml:"snapshot"`
	Logging         LoggingConfig  `yaml:"logging"`
}

type WatchConfig struct {
	Mode         string        `yaml:"mode"`          // "poll", "fsnotify", "auto"
	PollInterval time.Duration `yaml:"poll_interval"` // e.g. 1h
	// CompareContents is a pointer so an absent key can default to true.
	CompareContents *bool `yaml:"compare_contents"`
	Buffer          int   `yaml:"buffer"`
}

// ContentsCompared reports whether the poller hashes files to filter metadata noise.
func (w WatchConfig) ContentsCompared() bool {
	return w.CompareContents == nil || *w.CompareContents
}

type SnapshotConfig struct {
	// Schedule is a standard five-field cron spec. Empty means the last
	// calendar day of every month.
	Schedule string `yaml:"schedule"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // "info", "debug", etc.
	Format string `yaml:"format"` // "json", "text"
}

func (c *Config) applyDefaults() {
	if c.WaitBudget == 0 {
		c.WaitBudget = DefaultWaitBudget
	}
	if c.Watch.Mode == "" {
		c.Watch.Mode = DefaultWatchMode
	}
	if c.Watch.PollInterval == 0 {
		c.Watch.PollInterval = DefaultPollInterval
	}
	if c.Watch.Buffer == 0 {
		c.Watch.Buffer = DefaultEventBuffer
	}
}
