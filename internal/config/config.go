package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// DefaultAutoExitDelayMS is how long scripted runs linger on a finished screen.
const DefaultAutoExitDelayMS = 100

// Config represents the configuration of one site project.
type Config struct {
	ProjectRoot     string           `toml:"project_root"`
	BackupDir       string           `toml:"backup_dir"`
	LogDir          string           `toml:"log_dir"`
	AutoExitDelayMS int              `toml:"auto_exit_delay_ms"`
	Upstream        UpstreamConfig   `toml:"upstream"`
	Install         InstallConfig    `toml:"install"`
	Filesystem      FilesystemConfig `toml:"filesystem"`
	Database        DatabaseConfig   `toml:"database"`
	Vault           VaultConfig      `toml:"vault"`
	Encryption      EncryptionConfig `toml:"encryption"`
}

// UpstreamConfig names where template updates and release notes come from.
type UpstreamConfig struct {
	Remote                string `toml:"remote"` // empty: "upstream" if that remote exists, else "origin"
	Branch                string `toml:"branch"`
	ReleaseRepo           string `toml:"release_repo"`           // "owner/name" on GitHub
	APIBaseURL            string `toml:"api_base_url,omitempty"` // defaults to the public GitHub API
	ReleaseNotesTimeoutMS int    `toml:"release_notes_timeout_ms"`
}

// InstallConfig holds the dependency-install command run after an update.
type InstallConfig struct {
	Command []string `toml:"command"`
}

// FilesystemConfig holds filesystem-related settings.
type FilesystemConfig struct {
	Ignore []string `toml:"ignore"`
}

// DatabaseConfig represents configuration for the operation history.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// VaultConfig represents the off-site copy target.
// This uses a tagged union pattern - the Type field determines which other fields are relevant.
// An empty Type disables push and pull.
type VaultConfig struct {
	Type string `toml:"type"` // "", "memory", "filesystem" or "s3"
	Name string `toml:"name"`

	// S3-specific fields (only used when Type == "s3")
	S3Bucket          string `toml:"s3_bucket,omitempty"`
	S3Prefix          string `toml:"s3_prefix,omitempty"`
	S3Region          string `toml:"s3_region,omitempty"`
	S3Endpoint        string `toml:"s3_endpoint,omitempty"` // for S3-compatible services
	S3AccessKeyID     string `toml:"s3_access_key_id,omitempty"`
	S3SecretAccessKey string `toml:"s3_secret_access_key,omitempty"`

	// FileSystem-specific fields (only used when Type == "filesystem")
	FSVaultRoot string `toml:"fs_vault_root,omitempty"`
}

// EncryptionConfig holds paths to the age key pair used for pushed archives.
type EncryptionConfig struct {
	Type           string `toml:"type"` // "none" (default), "age" or "test"
	PublicKeyPath  string `toml:"public_key_path"`
	PrivateKeyPath string `toml:"private_key_path"`
}

// NewConfig creates a Config with defaults for projectRoot. homeDir holds the
// history database, logs and keys.
func NewConfig(projectRoot, homeDir string) *Config {
	cfg := &Config{ProjectRoot: projectRoot}
	cfg.ApplyDefaults(homeDir)
	return cfg
}

// ApplyDefaults fills every unset field.
func (c *Config) ApplyDefaults(homeDir string) {
	if c.BackupDir == "" {
		c.BackupDir = filepath.Join(c.ProjectRoot, "backups")
	}
	if c.LogDir == "" {
		c.LogDir = filepath.Join(homeDir, "log")
	}
	if c.AutoExitDelayMS <= 0 {
		c.AutoExitDelayMS = DefaultAutoExitDelayMS
	}
	if c.Upstream.Branch == "" {
		c.Upstream.Branch = "main"
	}
	if c.Upstream.ReleaseNotesTimeoutMS <= 0 {
		c.Upstream.ReleaseNotesTimeoutMS = 3000
	}
	if len(c.Install.Command) == 0 {
		c.Install.Command = []string{"pnpm", "install"}
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.Type == "sqlite" && c.Database.DataDir == "" {
		c.Database.DataDir = filepath.Join(homeDir, "db")
	}
	if c.Encryption.Type == "" {
		c.Encryption.Type = "none"
	}
	if c.Encryption.PublicKeyPath == "" {
		c.Encryption.PublicKeyPath = filepath.Join(homeDir, "keys", "koharu.pub")
	}
	if c.Encryption.PrivateKeyPath == "" {
		c.Encryption.PrivateKeyPath = filepath.Join(homeDir, "keys", "koharu.key")
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from the provided reader.
func (m *Manager) Read(r io.Reader) (*Config, error) {
	var cfg Config
	if _, err := toml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return &cfg, nil
}

// Write encodes a Config to the provided writer.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from the specified file path.
func ReadFromFile(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads the config at path, falling back to defaults when the file does
// not exist. Relative paths in the file are resolved against projectRoot.
func Load(path, projectRoot, homeDir string) (*Config, error) {
	cfg, err := ReadFromFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return NewConfig(projectRoot, homeDir), nil
	}

	if cfg.ProjectRoot == "" {
		cfg.ProjectRoot = projectRoot
	}
	if cfg.BackupDir != "" && !filepath.IsAbs(cfg.BackupDir) {
		cfg.BackupDir = filepath.Join(cfg.ProjectRoot, cfg.BackupDir)
	}
	cfg.ApplyDefaults(homeDir)
	return cfg, nil
}

// writeToFile writes a Config to the specified file path.
func writeToFile(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init initializes a new config file at the specified path with the provided Config.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
