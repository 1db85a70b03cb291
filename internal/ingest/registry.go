package ingest

import (
	"embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// Registry holds the configuration for all disclosure-data sources.
type Registry struct {
	Sources []SourceConfig `yaml:"sources"`
}

// FetchConfig defines HTTP fetching configuration for a source.
type FetchConfig struct {
	TimeoutSeconds int     `yaml:"timeout_seconds,omitempty"` // Default: 60
	MaxRetries     int     `yaml:"max_retries,omitempty"`     // Default: 3
	RateLimitRPS   float64 `yaml:"rate_limit_rps,omitempty"`  // Requests per second, default: 1.0
}

// ColumnMap names the CSV columns that feed each activity field. Empty
// entries mean the source does not carry that field.
type ColumnMap struct {
	FilingID     string `yaml:"filing_id"`
	FilerID      string `yaml:"filer_id,omitempty"`
	Organization string `yaml:"organization"`
	Lobbyist     string `yaml:"lobbyist,omitempty"`
	FirmName     string `yaml:"firm_name,omitempty"`
	Employer     string `yaml:"employer,omitempty"`
	Category     string `yaml:"category,omitempty"`
	Description  string `yaml:"description,omitempty"`
	Amount       string `yaml:"amount"`
	Date         string `yaml:"date"`
}

// SourceConfig defines one downloadable disclosure export.
type SourceConfig struct {
	ID           string `yaml:"id"`
	Name         string `yaml:"name"`
	IndexURL     string `yaml:"index_url"`
	LinkSelector string `yaml:"link_selector"` // CSS selector for archive links on the index page
	LinkPattern  string `yaml:"link_pattern"`  // Regexp the archive filename must match
	ArchiveFile  string `yaml:"archive_file"`  // CSV file inside the zip; empty means the download is the CSV itself
	Schedule     string `yaml:"schedule,omitempty"`

	Fetch   FetchConfig `yaml:"fetch,omitempty"`
	Columns ColumnMap   `yaml:"columns"`
}

// LoadRegistry reads the source registry, preferring an on-disk path over
// the embedded default.
func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		data, err = sourcesYAML.ReadFile("config/sources.yaml")
		if err != nil {
			return nil, fmt.Errorf("failed to read embedded source registry: %w", err)
		}
	}

	var registry Registry
	if err := yaml.Unmarshal(data, &registry); err != nil {
		return nil, fmt.Errorf("failed to parse source registry: %w", err)
	}
	return &registry, nil
}

// SourceByID finds a configured source.
func (r *Registry) SourceByID(id string) (*SourceConfig, error) {
	for i := range r.Sources {
		if r.Sources[i].ID == id {
			return &r.Sources[i], nil
		}
	}
	return nil, fmt.Errorf("unknown source %q", id)
}
