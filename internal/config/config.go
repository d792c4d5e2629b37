// Package config loads coursecat settings from defaults, an optional
// coursecat.toml, an optional .env file and COURSECAT_* environment variables,
// in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	EnvPrefix = "COURSECAT"
	FileName  = "coursecat.toml"
)

type CanvasConfig struct {
	URL            string   `mapstructure:"url" toml:"url" validate:"required,url"`
	Token          string   `mapstructure:"token" toml:"token" validate:"required"`
	PerPage        int      `mapstructure:"per_page" toml:"per_page" validate:"min=1"`
	MaxPages       int      `mapstructure:"max_pages" toml:"max_pages" validate:"min=0"`
	States         []string `mapstructure:"states" toml:"states"`
	Include        []string `mapstructure:"include" toml:"include"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds" toml:"timeout_seconds" validate:"min=0"`
}

type CacheConfig struct {
	Path        string `mapstructure:"path" toml:"path"`
	MappingPath string `mapstructure:"mapping_path" toml:"mapping_path"`
	ExportDir   string `mapstructure:"export_dir" toml:"export_dir"`
}

type LoggingConfig struct {
	Level   string `mapstructure:"level" toml:"level"`
	File    string `mapstructure:"file" toml:"file"`
	Console bool   `mapstructure:"console" toml:"console"`
}

type SFTPConfig struct {
	Host                  string `mapstructure:"host" toml:"host" validate:"required"`
	Port                  int    `mapstructure:"port" toml:"port" validate:"min=1,max=65535"`
	User                  string `mapstructure:"user" toml:"user" validate:"required"`
	Pass                  string `mapstructure:"pass" toml:"pass"`
	Dir                   string `mapstructure:"dir" toml:"dir"`
	KnownHosts            string `mapstructure:"known_hosts" toml:"known_hosts"`
	InsecureIgnoreHostKey bool   `mapstructure:"insecure_ignore_host_key" toml:"insecure_ignore_host_key"`
}

type Config struct {
	Canvas  CanvasConfig  `mapstructure:"canvas" toml:"canvas"`
	Cache   CacheConfig   `mapstructure:"cache" toml:"cache"`
	Logging LoggingConfig `mapstructure:"logging" toml:"logging"`
	SFTP    SFTPConfig    `mapstructure:"sftp" toml:"sftp"`
	Workers int           `mapstructure:"workers" toml:"workers"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-" toml:"-"`
}

// Defaults is what Load returns when nothing is configured.
func Defaults() Config {
	return Config{
		Canvas: CanvasConfig{
			PerPage:        100,
			States:         []string{"available", "completed"},
			Include:        []string{"term"},
			TimeoutSeconds: 60,
		},
		Cache: CacheConfig{
			Path:        "data/courses.json",
			MappingPath: "data/course_mapping.json",
			ExportDir:   "exports",
		},
		Logging: LoggingConfig{Level: "info", Console: true},
		SFTP:    SFTPConfig{Port: 22, Dir: "."},
		Workers: 4,
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("canvas.url", d.Canvas.URL)
	v.SetDefault("canvas.token", d.Canvas.Token)
	v.SetDefault("canvas.per_page", d.Canvas.PerPage)
	v.SetDefault("canvas.max_pages", d.Canvas.MaxPages)
	v.SetDefault("canvas.states", d.Canvas.States)
	v.SetDefault("canvas.include", d.Canvas.Include)
	v.SetDefault("canvas.timeout_seconds", d.Canvas.TimeoutSeconds)
	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.mapping_path", d.Cache.MappingPath)
	v.SetDefault("cache.export_dir", d.Cache.ExportDir)
	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.file", d.Logging.File)
	v.SetDefault("logging.console", d.Logging.Console)
	v.SetDefault("sftp.host", "")
	v.SetDefault("sftp.port", d.SFTP.Port)
	v.SetDefault("sftp.user", "")
	v.SetDefault("sftp.pass", "")
	v.SetDefault("sftp.dir", d.SFTP.Dir)
	v.SetDefault("sftp.known_hosts", "")
	v.SetDefault("sftp.insecure_ignore_host_key", false)
	v.SetDefault("workers", d.Workers)
}

// Options selects explicit files; empty fields mean the usual search.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// New returns a viper instance wired with defaults, env bindings and the
// config file search path. Reading happens in Load.
func New(opts Options) (*viper.Viper, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// Existing variables win over .env entries.
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", envFile, err)
		}
	} else if opts.EnvFile != "" {
		return nil, fmt.Errorf("config: env file: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Names used by the original Canvas scripts.
	_ = v.BindEnv("canvas.url", EnvPrefix+"_CANVAS_URL", "API_URL")
	_ = v.BindEnv("canvas.token", EnvPrefix+"_CANVAS_TOKEN", "API_KEY")

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(strings.TrimSuffix(FileName, ".toml"))
		v.SetConfigType("toml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "coursecat"))
		}
	}
	return v, nil
}

// Load builds the configuration. A missing config file is fine unless it was
// named explicitly.
func Load(opts Options) (Config, error) {
	v, err := New(opts)
	if err != nil {
		return Config{}, err
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	return cfg, nil
}

var validate = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		return fld.Tag.Get("mapstructure")
	})
	return v
}()

func check(section string, s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("config: %s: %w", section, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s.%s (%s)", section, fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("config: invalid %s", strings.Join(msgs, ", "))
}

// ValidateCanvas is required by commands that talk to Canvas.
func (c Config) ValidateCanvas() error { return check("canvas", c.Canvas) }

// ValidateSFTP is required by uploads.
func (c Config) ValidateSFTP() error {
	if err := check("sftp", c.SFTP); err != nil {
		return err
	}
	if c.SFTP.KnownHosts == "" && !c.SFTP.InsecureIgnoreHostKey {
		return errors.New("config: sftp.known_hosts is required unless sftp.insecure_ignore_host_key is set")
	}
	return nil
}

// WriteDefault writes the default configuration as TOML. An existing file is
// only replaced when overwrite is set.
func WriteDefault(path string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config: %s already exists", path)
		}
	}

	data, err := toml.Marshal(Defaults())
	if err != nil {
		return fmt.Errorf("config: encode defaults: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: mkdir %s: %w", dir, err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("config: rename %s: %w", path, err)
	}
	return nil
}
