package domain

import (
	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
)

// SettingsRepository handles the persistence of adoready artifacts in the
// ~/.adoready directory: connection settings, the last scan cache, and
// the audit trail.
type SettingsRepository interface {
	Initialize() error
	IsInitialized() bool
	SaveADOConfig(cfg *ADOConfig) error
	LoadADOConfig() (*ADOConfig, error)
	DeleteADOConfig() error
	HasADOConfig() bool
	SaveGitHubConfig(cfg *GitHubConfig) error
	LoadGitHubConfig() (*GitHubConfig, error)
	SaveScanCache(result *assessment.Result) error
	LoadScanCache() (*assessment.Result, error)
	HasScanCache() bool
	RecordEvent(event Event) error
	LoadEvents() ([]Event, error)
	UpdateUsage(stats UsageStats) error
	LoadUsage() (*UsageStats, error)
}

// ADOConfig is the serialized representation of config.yaml. The PAT is
// a credential: it is stored with restrictive permissions and must never
// be echoed back through the API or logs.
type ADOConfig struct {
	OrganizationURL string `yaml:"organization_url"`
	PAT             string `yaml:"pat"`
	DefaultProject  string `yaml:"default_project,omitempty"`
}

// GitHubConfig is the serialized representation of github.yaml.
type GitHubConfig struct {
	Token string `yaml:"token"`
	Org   string `yaml:"org,omitempty"`
}
