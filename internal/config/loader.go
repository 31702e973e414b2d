package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/gitkeys/internal/errors"
)

const (
	// GlobalConfigDir is the settings directory under the user's home.
	GlobalConfigDir = ".config/gitkeys"
	// GlobalConfigFile is the settings file name.
	GlobalConfigFile = "config.yaml"
)

// Find locates the settings file using the search order:
// 1. Explicit path (from --config flag)
// 2. ~/.config/gitkeys/config.yaml
//
// Returns the path to the settings file, or empty string if not found.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", nil
	}

	global := filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
	if _, err := os.Stat(global); err == nil {
		return global, nil
	}

	return "", nil
}

// DefaultPath returns where the settings file lives when none exists yet.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// Load reads settings from the specified path, merged over defaults.
// GITKEYS_* environment variables override file values.
func Load(path string) (*Settings, error) {
	v := newViper()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		if os.IsNotExist(err) {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Config file not found: "+path,
				"Run any gitkeys command once to create it, or pass --config")
		}
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to read config file: "+path,
			"Check the file exists and is valid YAML")
	}

	return unmarshalSettings(v, path)
}

// LoadOrDefault loads settings from the found path, or returns defaults when
// no settings file exists yet. Environment overrides still apply.
func LoadOrDefault(explicit string) (*Settings, error) {
	path, err := Find(explicit)
	if err != nil {
		return nil, err
	}

	if path == "" {
		v := newViper()
		return unmarshalSettings(v, "")
	}

	return Load(path)
}

// WriteDefault writes a commented default settings file to path, creating
// parent directories as needed. Existing files are left alone.
func WriteDefault(path string) error {
	if path == "" {
		return errors.New(errors.ErrConfig,
			"Cannot determine the settings file location",
			"Set HOME, or pass --config with an explicit path")
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	def := Default()
	data, err := yaml.Marshal(fileSettings{
		KeyDir:         def.KeyDir,
		ProbeTimeout:   def.ProbeTimeout.String(),
		DefaultKeyType: def.DefaultKeyType,
		UseKeychain:    def.UseKeychain,
	})
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate default config",
			"This shouldn't happen - please report this bug")
	}

	header := `# gitkeys configuration
# Defaults shown; edit values or delete lines to fall back to defaults.
# Environment overrides: GITKEYS_KEY_DIR, GITKEYS_PROBE_TIMEOUT, ...

`

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Couldn't create config directory "+filepath.Dir(path),
			"Check directory permissions")
	}
	if err := os.WriteFile(path, []byte(header+string(data)), 0644); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file: "+path,
			"Check directory permissions")
	}
	return nil
}

// fileSettings is the on-disk YAML shape. Durations are written as strings
// ("15s") so the file stays hand-editable.
type fileSettings struct {
	KeyDir         string `yaml:"key_dir"`
	ProbeTimeout   string `yaml:"probe_timeout"`
	DefaultKeyType string `yaml:"default_key_type"`
	UseKeychain    bool   `yaml:"use_keychain"`
}

func newViper() *viper.Viper {
	v := viper.New()
	def := Default()
	v.SetDefault("key_dir", def.KeyDir)
	v.SetDefault("probe_timeout", def.ProbeTimeout.String())
	v.SetDefault("default_key_type", def.DefaultKeyType)
	v.SetDefault("use_keychain", def.UseKeychain)
	v.SetEnvPrefix("GITKEYS")
	v.AutomaticEnv()
	return v
}

func unmarshalSettings(v *viper.Viper, path string) (*Settings, error) {
	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Check the YAML syntax in "+path)
	}
	cfg.KeyDir = ExpandTilde(cfg.KeyDir)
	return cfg, nil
}
