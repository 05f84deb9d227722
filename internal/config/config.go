// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"inkwell/internal/content"
	ierrors "inkwell/internal/errors"
)

// Source tree layout, relative to the source directory.
const (
	DefaultConfigFile = "config.txt"
	TemplatesDir      = "_templates"
	StaticDir         = "_static"
	PagesDir          = "_pages"
	PostsDir          = "_posts"
	EnvFile           = ".env"
	EnvPrefix         = "INKWELL_"
)

// Config keys.
const (
	KeyName       = "name"
	KeyTagline    = "tagline"
	KeyRootURL    = "root_url"
	KeyPermalinks = "permalinks"
	KeySanitize   = "sanitize"
)

var requiredKeys = []string{KeyName, KeyTagline, KeyRootURL}

// Config is the site configuration. It is loaded once and not modified
// afterwards; every path in it is absolute.
type Config struct {
	Name       string
	Tagline    string
	RootURL    string
	Permalinks string
	Sanitize   bool

	ConfigFile   string
	SourceDir    string
	OutputDir    string
	TemplatesDir string
	StaticDir    string
	PagesDir     string
	PostsDir     string
}

// Load reads the config file for the site in sourceDir, applies overrides
// from <source>/.env and INKWELL_* environment variables, resolves every
// path and creates the output directory. An empty configFile means
// <source>/config.txt.
func Load(sourceDir, outputDir, configFile string) (*Config, error) {
	src, err := filepath.Abs(sourceDir)
	if err != nil {
		return nil, ierrors.Wrap(err, ierrors.CategoryConfig, "cannot resolve source directory").At(sourceDir)
	}
	out, err := filepath.Abs(outputDir)
	if err != nil {
		return nil, ierrors.Wrap(err, ierrors.CategoryConfig, "cannot resolve output directory").At(outputDir)
	}
	if configFile == "" {
		configFile = filepath.Join(src, DefaultConfigFile)
	}
	cfgPath, err := filepath.Abs(configFile)
	if err != nil {
		return nil, ierrors.Wrap(err, ierrors.CategoryConfig, "cannot resolve config file").At(configFile)
	}

	values, err := ReadFile(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := applyOverrides(values, filepath.Join(src, EnvFile)); err != nil {
		return nil, err
	}
	for _, key := range requiredKeys {
		if _, ok := values[key]; !ok {
			return nil, ierrors.ConfigMissingKey(cfgPath, key)
		}
	}

	cfg := &Config{
		Name:         values[KeyName],
		Tagline:      values[KeyTagline],
		RootURL:      values[KeyRootURL],
		Permalinks:   content.DefaultPermalinks,
		ConfigFile:   cfgPath,
		SourceDir:    src,
		OutputDir:    out,
		TemplatesDir: filepath.Join(src, TemplatesDir),
		StaticDir:    filepath.Join(src, StaticDir),
		PagesDir:     filepath.Join(src, PagesDir),
		PostsDir:     filepath.Join(src, PostsDir),
	}
	if p, ok := values[KeyPermalinks]; ok && p != "" {
		cfg.Permalinks = p
	}
	if s, ok := values[KeySanitize]; ok {
		on, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return nil, ierrors.Wrap(err, ierrors.CategoryConfig, "invalid value for "+KeySanitize).At(cfgPath)
		}
		cfg.Sanitize = on
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, ierrors.IO("create output directory", cfg.OutputDir, err)
	}
	return cfg, nil
}

// ReadFile reads a flat key/value config file. Files ending in .yaml or .yml
// are decoded as YAML; anything else uses "key: value" header lines.
func ReadFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ierrors.ConfigUnreadable(path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		raw := map[string]any{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, ierrors.Wrap(err, ierrors.CategoryConfig, "could not parse YAML config").At(path)
		}
		values := make(map[string]string, len(raw))
		for k, v := range raw {
			switch v.(type) {
			case map[string]any, []any:
				return nil, ierrors.New(ierrors.CategoryConfig, "config key "+k+" must be a scalar").At(path)
			case nil:
				values[k] = ""
			default:
				values[k] = fmt.Sprint(v)
			}
		}
		return values, nil
	default:
		meta, err := content.ParseHeaders(strings.ReplaceAll(string(data), "\r\n", "\n"))
		if err != nil {
			var e *ierrors.Error
			if errors.As(err, &e) {
				// A bad config line is a config error, not a content parse error.
				e.Category = ierrors.CategoryConfig
				return nil, e.At(path)
			}
			return nil, err
		}
		return meta, nil
	}
}

// applyOverrides layers the optional .env file and then the process
// environment over the file values.
func applyOverrides(values map[string]string, envFile string) error {
	if _, err := os.Stat(envFile); err == nil {
		env, err := godotenv.Read(envFile)
		if err != nil {
			return ierrors.Wrap(err, ierrors.CategoryConfig, "could not read env file").At(envFile)
		}
		mergePrefixed(values, env)
	}

	procEnv := map[string]string{}
	for _, kv := range os.Environ() {
		if k, v, ok := strings.Cut(kv, "="); ok {
			procEnv[k] = v
		}
	}
	mergePrefixed(values, procEnv)
	return nil
}

func mergePrefixed(values, env map[string]string) {
	for k, v := range env {
		if !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		key := strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
		if key != "" {
			values[key] = v
		}
	}
}
