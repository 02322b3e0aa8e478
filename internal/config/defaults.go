// Package config provides configuration loading and defaults for shiftwatch.
package config

import "github.com/blackwell-systems/shiftwatch/internal/analyzer"

// DefaultConfigDir is the default location for shiftwatch configuration.
const DefaultConfigDir = "~/.config/shiftwatch"

// DefaultDBName is the filename for the SQLite database.
const DefaultDBName = "shiftwatch.db"

// DefaultConfigFile is the filename for the YAML config.
const DefaultConfigFile = "config.yaml"

// DefaultProjection mirrors the engine defaults.
var DefaultProjection = Projection{
	Horizons:        analyzer.DefaultHorizons,
	TargetRate:      analyzer.DefaultTargetRate,
	ShiftHours:      analyzer.DefaultShiftHours,
	RetentionDays:   analyzer.DefaultRetentionDays,
	FatigueBase:     analyzer.DefaultFatigueBase,
	GreenThreshold:  analyzer.DefaultGreenThreshold,
	YellowThreshold: analyzer.DefaultYellowThreshold,
	ShiftStartHour:  analyzer.DefaultShiftStartHour,
}

// DefaultOutput holds the default output preferences.
var DefaultOutput = Output{
	Color: true,
	Width: 120,
}

// DefaultWatch holds the default scheduled-reprojection settings.
var DefaultWatch = Watch{
	Schedule:        "*/15 * * * *",
	Notify:          true,
	SnapshotMaxAge:  "12h",
	SaveProjections: true,
}
