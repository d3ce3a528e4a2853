package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	json "github.com/goccy/go-json"
	"github.com/tailscale/hujson"
)

// Parse error policies for [Config.OnParseError].
const (
	ParseSkip  = "skip"  // drop malformed lines and report them
	ParseAbort = "abort" // fail Open on the first malformed line
)

// ConfigFileName is the default project config file name.
const ConfigFileName = ".booklib.json"

// Config holds all configuration options.
type Config struct {
	// From config files (serialized)
	DataFile     string `json:"data_file"`
	Delimiter    string `json:"delimiter"`
	OnParseError string `json:"on_parse_error"`
	Lock         bool   `json:"lock"`
	HistoryFile  string `json:"history_file,omitempty"`

	// Resolved paths (computed, not serialized)
	EffectiveCwd string `json:"-"` // Absolute working directory (from -C flag or os.Getwd)
	DataFileAbs  string `json:"-"` // Absolute path to the data file

	// Sources tracks which config files were loaded (for diagnostics)
	Sources ConfigSources `json:"-"`
}

// ConfigSources tracks which config files were loaded.
type ConfigSources struct {
	Global  string // Path to global config if loaded, empty otherwise
	Project string // Path to project config if loaded, empty otherwise
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		DataFile:     "library_data.txt",
		Delimiter:    ",",
		OnParseError: ParseSkip,
		Lock:         true,
	}
}

// path returns the data file location, preferring the resolved one.
func (c Config) path() string {
	if c.DataFileAbs != "" {
		return c.DataFileAbs
	}

	return c.DataFile
}

// delim returns the delimiter rune. Only valid after validateConfig.
func (c Config) delim() rune {
	r, _ := utf8.DecodeRuneInString(c.Delimiter)

	return r
}

// getGlobalConfigPath returns the path to the global config file.
// Uses $XDG_CONFIG_HOME/booklib/config.json if set, otherwise
// ~/.config/booklib/config.json. Returns empty string if home directory
// cannot be determined.
func getGlobalConfigPath(env map[string]string) string {
	if xdgConfig := env["XDG_CONFIG_HOME"]; xdgConfig != "" {
		return filepath.Join(xdgConfig, "booklib", "config.json")
	}

	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "booklib", "config.json")
	}

	return ""
}

// LoadConfigInput holds the inputs for LoadConfig.
type LoadConfigInput struct {
	WorkDirOverride  string            // -C/--cwd flag value; if empty, os.Getwd() is used
	ConfigPath       string            // -c/--config flag value
	DataFileOverride string            // --data flag value; empty means no override
	Env              map[string]string // environment variables
}

// LoadConfig loads configuration with the following precedence (highest wins):
// 1. Defaults
// 2. Global user config (~/.config/booklib/config.json or $XDG_CONFIG_HOME/booklib/config.json)
// 3. Project config file at default location (.booklib.json, if exists)
// 4. Explicit config file via ConfigPath (if non-empty)
// 5. CLI overrides.
//
// All paths in the returned Config are resolved to absolute paths.
func LoadConfig(input LoadConfigInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	if !filepath.IsAbs(workDir) {
		abs, err := filepath.Abs(workDir)
		if err != nil {
			return Config{}, fmt.Errorf("cannot resolve working directory: %w", err)
		}

		workDir = abs
	}

	cfg := DefaultConfig()

	globalCfg, globalSet, globalPath, err := loadGlobalConfig(input.Env)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Global = globalPath
	cfg = mergeConfig(cfg, globalCfg, globalSet)

	projectCfg, projectSet, projectPath, err := loadProjectConfig(workDir, input.ConfigPath)
	if err != nil {
		return Config{}, err
	}

	cfg.Sources.Project = projectPath
	cfg = mergeConfig(cfg, projectCfg, projectSet)

	if input.DataFileOverride != "" {
		cfg.DataFile = input.DataFileOverride
	}

	validateErr := validateConfig(cfg)
	if validateErr != nil {
		return Config{}, validateErr
	}

	cfg.EffectiveCwd = workDir
	cfg.DataFileAbs = resolve(workDir, cfg.DataFile)

	if cfg.HistoryFile != "" {
		cfg.HistoryFile = resolve(workDir, cfg.HistoryFile)
	}

	return cfg, nil
}

func resolve(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	return filepath.Join(workDir, path)
}

// loadGlobalConfig loads the global user config file if it exists.
// Returns the config, the set of keys present, the path if loaded, and any error.
func loadGlobalConfig(env map[string]string) (Config, map[string]bool, string, error) {
	globalCfgPath := getGlobalConfigPath(env)
	if globalCfgPath == "" {
		return Config{}, nil, "", nil
	}

	globalCfg, set, loaded, err := loadConfigFile(globalCfgPath, false)
	if err != nil {
		return Config{}, nil, "", err
	}

	if !loaded {
		return Config{}, nil, "", nil
	}

	return globalCfg, set, globalCfgPath, nil
}

// loadProjectConfig loads the project config file (.booklib.json) or an
// explicit config file.
func loadProjectConfig(workDir, configPath string) (Config, map[string]bool, string, error) {
	var cfgFile string

	var mustExist bool

	if configPath != "" {
		// Explicit config file - must exist
		cfgFile = resolve(workDir, configPath)
		mustExist = true

		_, statErr := os.Stat(cfgFile)
		if statErr != nil {
			return Config{}, nil, "", fmt.Errorf("%w: %s", ErrConfigFileNotFound, configPath)
		}
	} else {
		cfgFile = filepath.Join(workDir, ConfigFileName)
	}

	fileCfg, set, loaded, err := loadConfigFile(cfgFile, mustExist)
	if err != nil {
		return Config{}, nil, "", err
	}

	if !loaded {
		return Config{}, nil, "", nil
	}

	return fileCfg, set, cfgFile, nil
}

// loadConfigFile loads a config file. If mustExist is false, missing files
// return zero config. Returns the config, the set of keys present in the
// file, whether the file was loaded, and any error.
func loadConfigFile(path string, mustExist bool) (Config, map[string]bool, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return Config{}, nil, false, nil
		}

		if mustExist {
			return Config{}, nil, false, fmt.Errorf("%w: %s", ErrConfigFileRead, path)
		}

		return Config{}, nil, false, nil
	}

	cfg, set, parseErr := parseConfig(data)
	if parseErr != nil {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, parseErr)
	}

	if set["data_file"] && cfg.DataFile == "" {
		return Config{}, nil, false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, ErrDataFileEmpty)
	}

	return cfg, set, true, nil
}

func parseConfig(data []byte) (Config, map[string]bool, error) {
	// Standardize JSONC to JSON
	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, nil, fmt.Errorf("invalid JSONC: %w", err)
	}

	var cfg Config

	unmarshalErr := json.Unmarshal(standardized, &cfg)
	if unmarshalErr != nil {
		return Config{}, nil, fmt.Errorf("invalid JSON: %w", unmarshalErr)
	}

	// Record which keys were present so explicit zero values (lock: false,
	// data_file: "") can be told apart from absent ones.
	var raw map[string]json.RawMessage

	_ = json.Unmarshal(standardized, &raw)

	set := make(map[string]bool, len(raw))
	for key := range raw {
		set[key] = true
	}

	return cfg, set, nil
}

func mergeConfig(base, overlay Config, set map[string]bool) Config {
	if overlay.DataFile != "" {
		base.DataFile = overlay.DataFile
	}

	if overlay.Delimiter != "" {
		base.Delimiter = overlay.Delimiter
	}

	if overlay.OnParseError != "" {
		base.OnParseError = overlay.OnParseError
	}

	if set["lock"] {
		base.Lock = overlay.Lock
	}

	if overlay.HistoryFile != "" {
		base.HistoryFile = overlay.HistoryFile
	}

	return base
}

func validateConfig(cfg Config) error {
	if cfg.DataFile == "" && cfg.DataFileAbs == "" {
		return ErrDataFileEmpty
	}

	if utf8.RuneCountInString(cfg.Delimiter) != 1 {
		return fmt.Errorf("%w: %q", ErrInvalidDelimiter, cfg.Delimiter)
	}

	d := cfg.delim()
	if d == utf8.RuneError || unicode.IsDigit(d) || strings.ContainsRune("-+\r\n", d) {
		return fmt.Errorf("%w: %q", ErrInvalidDelimiter, cfg.Delimiter)
	}

	if cfg.OnParseError != ParseSkip && cfg.OnParseError != ParseAbort {
		return fmt.Errorf("%w: %q", ErrInvalidParsePolicy, cfg.OnParseError)
	}

	return nil
}

// FormatConfig renders the serializable part of cfg as indented JSON.
func FormatConfig(cfg Config) (string, error) {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return "", fmt.Errorf("formatting config: %w", err)
	}

	return string(data), nil
}
