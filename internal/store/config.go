package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultAPIBase     = "http://localhost:8080"
	DefaultProxyListen = "127.0.0.1:8001"
	DefaultTimeout     = 15 * time.Second
)

// Mode values accepted by the config file and the --mode/--feature flags.
const (
	ModeAPI  = "api"
	ModeMock = "mock"
)

type Config struct {
	// APIBase is prefixed to every /api/... path.
	APIBase string `yaml:"apiBase,omitempty"`

	// Mode is the global data source: "api" or "mock".
	Mode string `yaml:"mode,omitempty"`

	// Features overrides the global mode per feature name.
	Features map[string]string `yaml:"features,omitempty"`

	// DataDir holds the local storage database and optional data/tasks.json.
	DataDir string `yaml:"dataDir,omitempty"`

	// Format is the default output format (json, table, text).
	Format string `yaml:"format,omitempty"`

	// Timeout bounds each HTTP request, e.g. "15s".
	Timeout string `yaml:"timeout,omitempty"`

	// RateLimit caps outgoing requests per second; 0 disables the limiter.
	RateLimit float64 `yaml:"rateLimit,omitempty"`

	Proxy ProxyConfig `yaml:"proxy,omitempty"`
}

type ProxyConfig struct {
	Listen       string   `yaml:"listen,omitempty"`
	Backend      string   `yaml:"backend,omitempty"`
	AllowOrigins []string `yaml:"allowOrigins,omitempty"`
	RateLimit    float64  `yaml:"rateLimit,omitempty"`
	Burst        int      `yaml:"burst,omitempty"`
}

func ConfigDir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.pandora).
	if v := strings.TrimSpace(os.Getenv("PANDORA_CONFIG_DIR")); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".pandora"), nil
}

func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadDotEnv loads .env files into the process environment. Missing files are
// skipped and variables already set win.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// LoadConfig reads config.yaml (a missing file yields defaults) and applies env overrides.
func LoadConfig() (*Config, error) {
	cfg, err := ReadConfigFile()
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ReadConfigFile reads config.yaml as stored, without env overrides.
func ReadConfigFile() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	cfg := &Config{}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, err
	}
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays PANDORA_* environment variables onto cfg.
func (c *Config) ApplyEnv() error {
	if v := strings.TrimSpace(os.Getenv("PANDORA_API_BASE")); v != "" {
		c.APIBase = v
	}
	if v := strings.TrimSpace(os.Getenv("PANDORA_USE_API")); v != "" {
		useAPI, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("PANDORA_USE_API: %w", err)
		}
		c.Mode = ModeMock
		if useAPI {
			c.Mode = ModeAPI
		}
	}
	if v := strings.TrimSpace(os.Getenv("PANDORA_DIR")); v != "" {
		c.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv("PANDORA_FORMAT")); v != "" {
		c.Format = v
	}
	return nil
}

func (c *Config) BaseURL() string {
	if c == nil || strings.TrimSpace(c.APIBase) == "" {
		return DefaultAPIBase
	}
	return strings.TrimRight(strings.TrimSpace(c.APIBase), "/")
}

// UseAPI reports the global mode. Anything other than "mock" means the real backend.
func (c *Config) UseAPI() bool {
	if c == nil {
		return true
	}
	return !strings.EqualFold(strings.TrimSpace(c.Mode), ModeMock)
}

// FeatureModes converts the per-feature overrides into flag values.
func (c *Config) FeatureModes() (map[string]bool, error) {
	out := map[string]bool{}
	if c == nil {
		return out, nil
	}
	for name, mode := range c.Features {
		useAPI, err := ParseMode(mode)
		if err != nil {
			return nil, fmt.Errorf("features.%s: %w", name, err)
		}
		out[name] = useAPI
	}
	return out, nil
}

func (c *Config) RequestTimeout() (time.Duration, error) {
	if c == nil || strings.TrimSpace(c.Timeout) == "" {
		return DefaultTimeout, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(c.Timeout))
	if err != nil {
		return 0, fmt.Errorf("timeout: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("timeout must be positive: %s", c.Timeout)
	}
	return d, nil
}

// ParseMode maps "api"/"mock" (and boolean spellings) onto useAPI.
func ParseMode(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case ModeAPI, "real", "true", "on", "1":
		return true, nil
	case ModeMock, "false", "off", "0":
		return false, nil
	default:
		return false, fmt.Errorf("invalid mode %q (want api|mock)", s)
	}
}

func ModeName(useAPI bool) string {
	if useAPI {
		return ModeAPI
	}
	return ModeMock
}

func atomicWriteFile(dir, tmpPattern, path string, b []byte, perm os.FileMode) error {
	f, err := os.CreateTemp(dir, tmpPattern)
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer func() { _ = os.Remove(tmp) }()
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	_ = os.Chmod(tmp, perm)
	return os.Rename(tmp, path)
}

func SaveConfig(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if prev, err := os.ReadFile(path); err == nil && len(prev) > 0 {
		_ = atomicWriteFile(dir, "config.yaml.bak.*.tmp", path+".bak", prev, 0o644)
	}
	return atomicWriteFile(dir, "config.yaml.*.tmp", path, b, 0o600)
}
