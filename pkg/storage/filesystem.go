package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/felixgeelhaar/fortify/retry"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/felixgeelhaar/adoready/pkg/domain"
	"github.com/felixgeelhaar/adoready/pkg/domain/assessment"
)

const AdoReadyDir = ".adoready"
const ConfigFile = "config.yaml"
const GitHubConfigFile = "github.yaml"
const CacheFile = "last_scan.json"
const EventsFile = "events.jsonl"
const UsageFile = "usage.json"

// cacheSchemaJSON is the shape a cached scan document must satisfy
// before it is trusted. It guards against partial writes and manual
// edits, not against every field-level mistake.
const cacheSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["organization_url", "projects", "summary"],
  "properties": {
    "organization_url": { "type": "string" },
    "scanned_at": { "type": "string" },
    "projects": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name"],
        "properties": {
          "name": { "type": "string" },
          "repositories": { "type": "object" },
          "pipelines": { "type": "object" },
          "work_items": { "type": "object" }
        }
      }
    },
    "summary": { "type": "object" }
  }
}`

var cacheSchemaLoader = gojsonschema.NewStringLoader(cacheSchemaJSON)

// FilesystemRepository persists adoready settings and caches under
// <root>/.adoready. root is normally the user's home directory.
type FilesystemRepository struct {
	root        string
	retryConfig retry.Config
}

// Compile-time check that the repository satisfies the domain contract
var _ domain.SettingsRepository = (*FilesystemRepository)(nil)

func NewFilesystemRepository(root string) *FilesystemRepository {
	return &FilesystemRepository{
		root: root,
		retryConfig: retry.Config{
			MaxAttempts:   3,
			InitialDelay:  10 * time.Millisecond,
			BackoffPolicy: retry.BackoffExponential,
		},
	}
}

// DefaultRoot returns the directory the .adoready data directory lives
// under: $ADOREADY_HOME when set, otherwise the user's home directory.
func DefaultRoot() (string, error) {
	if home := os.Getenv("ADOREADY_HOME"); home != "" {
		return home, nil
	}
	return os.UserHomeDir()
}

// Root returns the directory containing the .adoready directory.
func (r *FilesystemRepository) Root() string {
	return r.root
}

// ResolvePath ensures the path is within the .adoready directory and prevents traversal.
func (r *FilesystemRepository) ResolvePath(filename string) (string, error) {
	if filename == "" {
		return "", fmt.Errorf("filename cannot be empty")
	}

	// Base directory is strictly root/.adoready
	baseDir := filepath.Join(r.root, AdoReadyDir)
	fullPath := filepath.Join(baseDir, filename)
	cleanPath := filepath.Clean(fullPath)

	// Check for traversal and ensure it's a direct child (no nested subdirs in .adoready for now)
	if !strings.HasPrefix(cleanPath, baseDir) || filepath.Dir(cleanPath) != baseDir {
		return "", fmt.Errorf("invalid file path: %s", filename)
	}

	return cleanPath, nil
}

func (r *FilesystemRepository) Initialize() error {
	path := filepath.Join(r.root, AdoReadyDir)
	// G301: Use 0700 for directories; these files carry credentials
	if err := os.MkdirAll(path, 0700); err != nil {
		return fmt.Errorf("failed to create .adoready directory: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) IsInitialized() bool {
	_, err := os.Stat(filepath.Join(r.root, AdoReadyDir))
	return err == nil
}

func (r *FilesystemRepository) SaveADOConfig(cfg *domain.ADOConfig) error {
	path, err := r.ResolvePath(ConfigFile)
	if err != nil {
		return err
	}

	// Normalize once on save so every consumer sees the same URL shape.
	c := *cfg
	c.OrganizationURL = strings.TrimRight(c.OrganizationURL, "/")

	data, err := yaml.Marshal(&c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// G306: Use 0600 for files
	return os.WriteFile(path, data, 0600)
}

func (r *FilesystemRepository) LoadADOConfig() (*domain.ADOConfig, error) {
	retryer := retry.New[*domain.ADOConfig](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*domain.ADOConfig, error) {
		path, err := r.ResolvePath(ConfigFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, ErrConfigNotFound
			}
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		var cfg domain.ADOConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config: %w", err)
		}

		return &cfg, nil
	})
}

func (r *FilesystemRepository) DeleteADOConfig() error {
	path, err := r.ResolvePath(ConfigFile)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete config file: %w", err)
	}
	return nil
}

func (r *FilesystemRepository) HasADOConfig() bool {
	path, err := r.ResolvePath(ConfigFile)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

func (r *FilesystemRepository) SaveGitHubConfig(cfg *domain.GitHubConfig) error {
	path, err := r.ResolvePath(GitHubConfigFile)
	if err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal github config: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

func (r *FilesystemRepository) LoadGitHubConfig() (*domain.GitHubConfig, error) {
	retryer := retry.New[*domain.GitHubConfig](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*domain.GitHubConfig, error) {
		path, err := r.ResolvePath(GitHubConfigFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, ErrConfigNotFound
			}
			return nil, fmt.Errorf("failed to read github config file: %w", err)
		}

		var cfg domain.GitHubConfig
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal github config: %w", err)
		}

		return &cfg, nil
	})
}

func (r *FilesystemRepository) SaveScanCache(result *assessment.Result) error {
	path, err := r.ResolvePath(CacheFile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scan cache: %w", err)
	}

	return os.WriteFile(path, data, 0600)
}

func (r *FilesystemRepository) LoadScanCache() (*assessment.Result, error) {
	retryer := retry.New[*assessment.Result](r.retryConfig)

	return retryer.Do(context.Background(), func(ctx context.Context) (*assessment.Result, error) {
		path, err := r.ResolvePath(CacheFile)
		if err != nil {
			return nil, err
		}

		// #nosec G304 -- Path is resolved and validated via ResolvePath
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				return nil, ErrCacheNotFound
			}
			return nil, fmt.Errorf("failed to read scan cache: %w", err)
		}

		valid, err := gojsonschema.Validate(cacheSchemaLoader, gojsonschema.NewBytesLoader(data))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheInvalid, err)
		}
		if !valid.Valid() {
			return nil, fmt.Errorf("%w: %s", ErrCacheInvalid, valid.Errors()[0])
		}

		var result assessment.Result
		if err := json.Unmarshal(data, &result); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCacheInvalid, err)
		}

		return &result, nil
	})
}

func (r *FilesystemRepository) HasScanCache() bool {
	path, err := r.ResolvePath(CacheFile)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// CachePath returns the absolute path of the scan cache file. The serve
// command watches it for changes.
func (r *FilesystemRepository) CachePath() (string, error) {
	return r.ResolvePath(CacheFile)
}
