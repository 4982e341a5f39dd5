// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jeranaias/jaml-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete jaml configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	AI      AIConfig      `toml:"ai" json:"ai"`
	Storage StorageConfig `toml:"storage" json:"storage"`
	Limits  LimitsConfig  `toml:"limits" json:"limits"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Log     LogConfig     `toml:"log" json:"log"`
}

// AIConfig selects and configures the model provider.
type AIConfig struct {
	// Provider is "gemini" or "openai".
	Provider string `toml:"provider" json:"provider"`

	GeminiAPIKey  string `toml:"gemini_api_key" json:"gemini_api_key"`
	OpenAIAPIKey  string `toml:"openai_api_key" json:"openai_api_key"`
	OpenAIBaseURL string `toml:"openai_base_url" json:"openai_base_url"`

	// Model overrides. Empty uses the provider default.
	ChatModel      string `toml:"chat_model" json:"chat_model"`
	ImageModel     string `toml:"image_model" json:"image_model"`
	ImageEditModel string `toml:"image_edit_model" json:"image_edit_model"`

	// RequestsPerMinute limits outbound calls. 0 disables the limiter.
	RequestsPerMinute int `toml:"requests_per_minute" json:"requests_per_minute"`

	// TimeoutSecs bounds each call. 0 means no timeout.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
}

// StorageConfig contains persistence settings.
type StorageConfig struct {
	// Backend is "file" or "sqlite".
	Backend string `toml:"backend" json:"backend"`
	// Dir is the data directory. Empty uses the config directory.
	Dir string `toml:"dir" json:"dir"`
}

// LimitsConfig contains the usage limits.
type LimitsConfig struct {
	DailyMessages int `toml:"daily_messages" json:"daily_messages"`
	AbuseWarnings int `toml:"abuse_warnings" json:"abuse_warnings"`
	BanMinutes    int `toml:"ban_minutes" json:"ban_minutes"`
}

// UIConfig contains display preferences.
type UIConfig struct {
	// Theme is the initial theme when none has been chosen in the app.
	Theme    string `toml:"theme" json:"theme"`
	WordWrap bool   `toml:"word_wrap" json:"word_wrap"`
	Language string `toml:"language" json:"language"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level string `toml:"level" json:"level"`
	// File is the log path. Empty uses jaml.log in the config directory.
	File string `toml:"file" json:"file"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Provider names.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Default returns a new Config with default values.
func Default() *Config {
	return &Config{
		Version: "1",
		AI: AIConfig{
			Provider:          ProviderGemini,
			RequestsPerMinute: 30,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		Limits: LimitsConfig{
			DailyMessages: 50,
			AbuseWarnings: 2,
			BanMinutes:    5,
		},
		UI: UIConfig{
			Theme:    "earthy",
			WordWrap: true,
			Language: "ar",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the jaml configuration directory path.
func ConfigDir() (string, error) {
	if dir := os.Getenv("JAML_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".jaml"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// ensureSecurePermissions restricts config files to the owner since they
// hold API keys.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// DataDir returns the resolved data directory.
func (c *Config) DataDir() (string, error) {
	if c.Storage.Dir != "" {
		return expandHome(c.Storage.Dir)
	}
	return ConfigDir()
}

// LogPath returns the resolved log file path.
func (c *Config) LogPath() (string, error) {
	if c.Log.File != "" {
		return expandHome(c.Log.File)
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "jaml.log"), nil
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}

// Timeout returns the per-call timeout. Zero means none.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.AI.TimeoutSecs) * time.Second
}

// BanDuration returns the ban length.
func (c *Config) BanDuration() time.Duration {
	return time.Duration(c.Limits.BanMinutes) * time.Minute
}

// APIKey returns the key for the selected provider.
func (c *Config) APIKey() string {
	if c.AI.Provider == ProviderOpenAI {
		return c.AI.OpenAIAPIKey
	}
	return c.AI.GeminiAPIKey
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	cfg := Default()
	var loadErr error

	loadDotEnv()

	if tomlPath, err := ConfigPathTOML(); err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
				cfg = Default()
			} else {
				return finish(cfg)
			}
		}
	}

	cfg, err := finish(cfg)
	if err != nil {
		return nil, err
	}
	// Defaults are still usable when a file failed to parse.
	return cfg, loadErr
}

func finish(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadDotEnv loads .env from the working directory. Variables already set
// in the environment win.
func loadDotEnv() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("dotenv_load_failed", "error", err)
	}
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		slog.Warn("config_permissions", "path", path, "error", err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		slog.Warn("config_permissions", "path", path, "error", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}
	return finish(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file with owner-only
// permissions.
func SaveTOML(cfg *Config, path string) error {
	var buf strings.Builder
	buf.WriteString("# jaml configuration file\n")
	buf.WriteString("# Generated by jaml - edit with care\n\n")

	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, []byte(buf.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file with owner-only
// permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validProviders = []string{ProviderGemini, ProviderOpenAI}
	validBackends  = []string{"file", "sqlite"}
	validThemes    = []string{"earthy", "purple"}
	validLevels    = []string{"debug", "info", "warn", "error"}
)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if !contains(validProviders, c.AI.Provider) {
		errs = append(errs, ValidationError{
			Field:   "ai.provider",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validProviders, ", ")),
		})
	}
	if c.AI.OpenAIBaseURL != "" {
		u, err := url.Parse(c.AI.OpenAIBaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, ValidationError{Field: "ai.openai_base_url", Message: "must be an http(s) URL"})
		}
	}
	if c.AI.RequestsPerMinute < 0 {
		errs = append(errs, ValidationError{Field: "ai.requests_per_minute", Message: "must not be negative"})
	}
	if c.AI.TimeoutSecs < 0 || c.AI.TimeoutSecs > 3600 {
		errs = append(errs, ValidationError{Field: "ai.timeout_secs", Message: "must be between 0 and 3600"})
	}

	if !contains(validBackends, c.Storage.Backend) {
		errs = append(errs, ValidationError{
			Field:   "storage.backend",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validBackends, ", ")),
		})
	}

	if c.Limits.DailyMessages < 1 || c.Limits.DailyMessages > 10000 {
		errs = append(errs, ValidationError{Field: "limits.daily_messages", Message: "must be between 1 and 10000"})
	}
	if c.Limits.AbuseWarnings < 0 || c.Limits.AbuseWarnings > 10 {
		errs = append(errs, ValidationError{Field: "limits.abuse_warnings", Message: "must be between 0 and 10"})
	}
	if c.Limits.BanMinutes < 1 || c.Limits.BanMinutes > 1440 {
		errs = append(errs, ValidationError{Field: "limits.ban_minutes", Message: "must be between 1 and 1440"})
	}

	if !contains(validThemes, c.UI.Theme) {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validThemes, ", ")),
		})
	}
	if !contains(validLevels, strings.ToLower(c.Log.Level)) {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("must be one of: %s", strings.Join(validLevels, ", ")),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty values with defaults. Numeric limits of zero are
// treated as unset.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.AI.Provider == "" {
		c.AI.Provider = d.AI.Provider
	}
	c.AI.Provider = strings.ToLower(c.AI.Provider)
	if c.Storage.Backend == "" {
		c.Storage.Backend = d.Storage.Backend
	}
	if c.Limits.DailyMessages == 0 {
		c.Limits.DailyMessages = d.Limits.DailyMessages
	}
	if c.Limits.BanMinutes == 0 {
		c.Limits.BanMinutes = d.Limits.BanMinutes
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.UI.Language == "" {
		c.UI.Language = d.UI.Language
	}
	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - JAML_PROVIDER: overrides ai.provider
//   - GEMINI_API_KEY (or API_KEY): overrides ai.gemini_api_key
//   - OPENAI_API_KEY: overrides ai.openai_api_key
//   - OPENAI_BASE_URL: overrides ai.openai_base_url
//   - JAML_MODEL: overrides ai.chat_model
//   - JAML_STORAGE: overrides storage.backend
//   - JAML_DATA_DIR: overrides storage.dir
//   - JAML_THEME: overrides ui.theme
//   - JAML_LOG_LEVEL: overrides log.level
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("JAML_PROVIDER"); v != "" {
		c.AI.Provider = v
	}

	if v := os.Getenv("API_KEY"); v != "" {
		c.AI.GeminiAPIKey = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.AI.GeminiAPIKey = v
	}

	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		c.AI.OpenAIAPIKey = v
	}
	if v := os.Getenv("OPENAI_BASE_URL"); v != "" {
		c.AI.OpenAIBaseURL = v
	}

	if v := os.Getenv("JAML_MODEL"); v != "" {
		c.AI.ChatModel = v
	}

	if v := os.Getenv("JAML_STORAGE"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("JAML_DATA_DIR"); v != "" {
		c.Storage.Dir = v
	}

	if v := os.Getenv("JAML_THEME"); v != "" {
		c.UI.Theme = v
	}
	if v := os.Getenv("JAML_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
}

// =============================================================================
// DOT-NOTATION ACCESS
// =============================================================================

// Keys are the toml tags of the Config fields joined with dots, for example
// "limits.daily_messages".

// Get returns the value at key.
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.field(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set assigns value at key. Strings are parsed into the field's type so
// command-line input can be passed through unchanged.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.field(key)
	if err != nil {
		return err
	}
	if s, ok := value.(string); ok {
		return setFromString(field, key, s)
	}
	v := reflect.ValueOf(value)
	if !v.IsValid() || !v.Type().ConvertibleTo(field.Type()) {
		return fmt.Errorf("%s: cannot use %T as %s", key, value, field.Type())
	}
	field.Set(v.Convert(field.Type()))
	return nil
}

// field walks the struct along key's toml tags.
func (c *Config) field(key string) (reflect.Value, error) {
	v := reflect.ValueOf(c).Elem()
	for _, part := range strings.Split(key, ".") {
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("unknown key: %s", key)
		}
		next, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown key: %s", key)
		}
		v = next
	}
	if v.Kind() == reflect.Struct {
		return reflect.Value{}, fmt.Errorf("%s is a section, not a key", key)
	}
	return v, nil
}

func fieldByTag(v reflect.Value, tag string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tomlName(t.Field(i)) == tag {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

func tomlName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
	return name
}

func setFromString(field reflect.Value, key, s string) error {
	switch field.Kind() {
	case reflect.String:
		field.SetString(s)
	case reflect.Int, reflect.Int64:
		n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
		if err != nil {
			return fmt.Errorf("%s: %q is not a whole number", key, s)
		}
		field.SetInt(n)
	case reflect.Bool:
		b, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("%s: %q is not true or false", key, s)
		}
		field.SetBool(b)
	default:
		return fmt.Errorf("%s: unsupported type %s", key, field.Type())
	}
	return nil
}

// GetAllKeys lists every settable key in declaration order.
func GetAllKeys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			name := prefix + tomlName(f)
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, name+".")
				continue
			}
			keys = append(keys, name)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

// IsSecretKey reports whether a dot-notation key holds a credential.
func IsSecretKey(key string) bool {
	return strings.HasSuffix(key, "_api_key")
}

// String returns the configuration as JSON with API keys redacted.
func (c *Config) String() string {
	safe := *c
	for _, k := range []*string{&safe.AI.GeminiAPIKey, &safe.AI.OpenAIAPIKey} {
		if *k != "" {
			*k = "[REDACTED]"
		}
	}
	data, _ := json.MarshalIndent(&safe, "", "  ")
	return string(data)
}
