// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ExportFormat selects the structured export written next to each text artifact.
type ExportFormat string

const (
	ExportNone ExportFormat = ""
	ExportYAML ExportFormat = "yaml"
	ExportJSON ExportFormat = "json"
)

// RelabelConfig controls the atom renaming pass.
type RelabelConfig struct {
	// Enabled turns relabeling on. When false the identity map is used.
	Enabled bool `json:"enabled" yaml:"enabled"`

	// RenameFile is an optional YAML file mapping raw labels to display names.
	RenameFile string `json:"rename_file,omitempty" yaml:"rename_file,omitempty"`

	// Interactive asks for a display name for every atom of every report.
	Interactive bool `json:"interactive" yaml:"interactive"`
}

// BatchConfig holds settings for processing a directory of reports.
type BatchConfig struct {
	// Dir is the directory scanned for reports (default ".").
	Dir string `json:"dir" yaml:"dir"`

	// Pattern is the glob matched against file names (default "*.nbo").
	Pattern string `json:"pattern" yaml:"pattern"`

	// OutDir receives the artifacts. Empty means next to each input.
	OutDir string `json:"out_dir,omitempty" yaml:"out_dir,omitempty"`

	// Workers bounds how many reports are analyzed at once (default 1).
	Workers int `json:"workers" yaml:"workers"`

	// KeepBlock writes the extracted table as <stem>.sop.
	KeepBlock bool `json:"keep_block" yaml:"keep_block"`

	// Export adds a structured <stem>.yaml or <stem>.json artifact.
	Export ExportFormat `json:"export,omitempty" yaml:"export,omitempty"`

	// MetricsFile is a Prometheus textfile written after the batch.
	MetricsFile string `json:"metrics_file,omitempty" yaml:"metrics_file,omitempty"`
}

// IndexConfig holds settings for the SQLite result index.
type IndexConfig struct {
	// DBPath is the database file (default "nbo-sop.db").
	DBPath string `json:"db_path" yaml:"db_path"`

	// MaxResults is the default query limit (default 50).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// Config groups all settings read by the CLI.
type Config struct {
	Batch    BatchConfig   `json:"batch" yaml:"batch"`
	Relabel  RelabelConfig `json:"relabel" yaml:"relabel"`
	Index    IndexConfig   `json:"index" yaml:"index"`
	LogLevel string        `json:"log_level" yaml:"log_level"`
}
