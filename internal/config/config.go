package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/blackwell-systems/shiftwatch/internal/analyzer"
	"github.com/spf13/viper"
)

// Config is the top-level shiftwatch configuration.
type Config struct {
	Projection Projection `mapstructure:"projection"`
	Output     Output     `mapstructure:"output"`
	Watch      Watch      `mapstructure:"watch"`
}

// Projection holds the projection engine parameters.
type Projection struct {
	Horizons        []int   `mapstructure:"horizons"`
	TargetRate      float64 `mapstructure:"target_rate"`
	ShiftHours      float64 `mapstructure:"shift_hours"`
	RetentionDays   int     `mapstructure:"retention_days"`
	FatigueBase     float64 `mapstructure:"fatigue_base"`
	GreenThreshold  float64 `mapstructure:"green_threshold"`
	YellowThreshold float64 `mapstructure:"yellow_threshold"`
	ShiftStartHour  int     `mapstructure:"shift_start_hour"`
}

// Output defines output preferences.
type Output struct {
	Color bool `mapstructure:"color"`
	// Width caps table lines in terminal cells; 0 disables fitting.
	Width int `mapstructure:"width"`
}

// Watch defines the scheduled reprojection settings.
type Watch struct {
	// Schedule is a five-field cron expression.
	Schedule string `mapstructure:"schedule"`
	// Notify enables desktop notifications for new alerts.
	Notify bool `mapstructure:"notify"`
	// SnapshotMaxAge is how old the live snapshot may be before the
	// watcher stops projecting from it.
	SnapshotMaxAge  string `mapstructure:"snapshot_max_age"`
	SaveProjections bool   `mapstructure:"save_projections"`
}

// MaxAge parses SnapshotMaxAge, falling back to the default on error.
func (w Watch) MaxAge() time.Duration {
	if d, err := time.ParseDuration(w.SnapshotMaxAge); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultWatch.SnapshotMaxAge)
	return d
}

// ToAnalyzer converts the projection section into engine parameters and
// validates them.
func (p Projection) ToAnalyzer() (analyzer.Config, error) {
	cfg := analyzer.Config{
		Horizons:        append([]int(nil), p.Horizons...),
		TargetRate:      p.TargetRate,
		ShiftHours:      p.ShiftHours,
		RetentionDays:   p.RetentionDays,
		FatigueBase:     p.FatigueBase,
		GreenThreshold:  p.GreenThreshold,
		YellowThreshold: p.YellowThreshold,
		ShiftStartHour:  p.ShiftStartHour,
	}
	if err := cfg.Validate(); err != nil {
		return analyzer.Config{}, fmt.Errorf("projection settings: %w", err)
	}
	return cfg, nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Load reads configuration from the given path (or the default location)
// and returns a Config with all defaults applied. Environment variables
// prefixed with SHIFTWATCH_ override file values.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	v.SetDefault("projection.horizons", DefaultProjection.Horizons)
	v.SetDefault("projection.target_rate", DefaultProjection.TargetRate)
	v.SetDefault("projection.shift_hours", DefaultProjection.ShiftHours)
	v.SetDefault("projection.retention_days", DefaultProjection.RetentionDays)
	v.SetDefault("projection.fatigue_base", DefaultProjection.FatigueBase)
	v.SetDefault("projection.green_threshold", DefaultProjection.GreenThreshold)
	v.SetDefault("projection.yellow_threshold", DefaultProjection.YellowThreshold)
	v.SetDefault("projection.shift_start_hour", DefaultProjection.ShiftStartHour)
	v.SetDefault("output.color", DefaultOutput.Color)
	v.SetDefault("output.width", DefaultOutput.Width)
	v.SetDefault("watch.schedule", DefaultWatch.Schedule)
	v.SetDefault("watch.notify", DefaultWatch.Notify)
	v.SetDefault("watch.snapshot_max_age", DefaultWatch.SnapshotMaxAge)
	v.SetDefault("watch.save_projections", DefaultWatch.SaveProjections)

	v.SetEnvPrefix("shiftwatch")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(expandPath(cfgFile))
	} else {
		v.AddConfigPath(expandPath(DefaultConfigDir))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	// Read config file if it exists; missing file is not an error.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			if !os.IsNotExist(err) {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// DBPath returns the full path to the SQLite database.
func DBPath() string {
	return filepath.Join(expandPath(DefaultConfigDir), DefaultDBName)
}

// ConfigDir returns the expanded configuration directory.
func ConfigDir() string {
	return expandPath(DefaultConfigDir)
}

// FilePath returns the default config file location.
func FilePath() string {
	return filepath.Join(ConfigDir(), DefaultConfigFile)
}
