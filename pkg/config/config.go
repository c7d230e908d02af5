// Package config holds the settings of a taxotree run. They are loaded by
// viper from, in increasing precedence, built-in defaults, a TOML file,
// TAXOTREE_* environment variables and bound command-line flags:
//
//	[report]
//	tax_column = 14
//	score_column = 12
//
//	[tree]
//	rank_tracking = true
//	delta_percent = 5
//
//	[stores]
//	organism = "/data/taxodb/organisms.kv"
//	[stores.accession]
//	silva = "redis://localhost:6379/1"
//
// The environment variable of a key is its dotted path in upper case with
// dots replaced by underscores: TAXOTREE_TREE_DELTA_PERCENT.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	taxerrors "github.com/matzehuels/taxotree/pkg/errors"
	"github.com/matzehuels/taxotree/pkg/fetch"
	"github.com/matzehuels/taxotree/pkg/report"
)

// EnvPrefix prefixes every environment variable.
const EnvPrefix = "TAXOTREE"

// AppName names the config and cache directories.
const AppName = "taxotree"

// ReportConfig describes the layout of search reports. Columns are 1-based.
type ReportConfig struct {
	TaxColumn   int `mapstructure:"tax_column"`
	ScoreColumn int `mapstructure:"score_column"`
}

// TreeConfig controls tree building.
type TreeConfig struct {
	RankTracking   bool `mapstructure:"rank_tracking"`
	IdenticalReads bool `mapstructure:"identical_reads"`
	DeltaPercent   int  `mapstructure:"delta_percent"`
	CleanCellular  bool `mapstructure:"clean_cellular"`
}

// StoresConfig names the lineage stores by URI.
type StoresConfig struct {
	Organism  string            `mapstructure:"organism"`
	Accession map[string]string `mapstructure:"accession"`
}

// FetchConfig configures the record fetcher.
type FetchConfig struct {
	URL      string        `mapstructure:"url"`
	MaxBatch int           `mapstructure:"max_batch"`
	Timeout  time.Duration `mapstructure:"timeout"`

	// Records are local flat files used instead of the remote service.
	Records []string `mapstructure:"records"`
}

// KronaConfig configures Krona output.
type KronaConfig struct {
	Dataset   string `mapstructure:"dataset"`
	ScriptURL string `mapstructure:"script_url"`
}

// CacheConfig configures the fetched-record cache.
type CacheConfig struct {
	Dir      string        `mapstructure:"dir"`
	Disabled bool          `mapstructure:"disabled"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ServerConfig configures taxotree serve.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config is the complete configuration.
type Config struct {
	Report ReportConfig `mapstructure:"report"`
	Tree   TreeConfig   `mapstructure:"tree"`
	Stores StoresConfig `mapstructure:"stores"`
	Fetch  FetchConfig  `mapstructure:"fetch"`
	Krona  KronaConfig  `mapstructure:"krona"`
	Cache  CacheConfig  `mapstructure:"cache"`
	Server ServerConfig `mapstructure:"server"`

	// Aliases is an alias table file replacing the built-in one.
	Aliases string `mapstructure:"aliases"`

	// File is the config file that was read, if any.
	File string `mapstructure:"-"`
}

var defaults = map[string]any{
	"report.tax_column":    report.DefaultTaxColumn,
	"report.score_column":  report.DefaultScoreColumn,
	"tree.rank_tracking":   false,
	"tree.identical_reads": false,
	"tree.delta_percent":   0,
	"tree.clean_cellular":  false,
	"stores.organism":      "",
	"fetch.url":            fetch.DefaultURL,
	"fetch.max_batch":      fetch.DefaultMaxBatch,
	"fetch.timeout":        2 * time.Minute,
	"fetch.records":        []string{},
	"krona.dataset":        "",
	"krona.script_url":     "",
	"cache.dir":            "",
	"cache.disabled":       false,
	"cache.ttl":            30 * 24 * time.Hour,
	"server.addr":          "localhost:8080",
	"aliases":              "",
}

// Loader reads a Config. It wraps its own viper instance so that flags can
// be bound before loading.
type Loader struct {
	v *viper.Viper
}

// NewLoader returns a loader with defaults and environment binding set up.
func NewLoader() *Loader {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return &Loader{v: v}
}

// Viper exposes the instance, e.g. to bind cobra flags:
//
//	l.Viper().BindPFlag("tree.delta_percent", cmd.Flags().Lookup("delta"))
func (l *Loader) Viper() *viper.Viper { return l.v }

// Load reads the config file at path, or searches ./taxotree.toml and
// $HOME/.config/taxotree/taxotree.toml when path is empty. A missing file
// is only an error when path was given.
func (l *Loader) Load(path string) (*Config, error) {
	if path != "" {
		l.v.SetConfigFile(path)
	} else {
		l.v.SetConfigName(AppName)
		l.v.SetConfigType("toml")
		l.v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			l.v.AddConfigPath(filepath.Join(home, ".config", AppName))
		}
	}
	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, taxerrors.Wrap(taxerrors.ErrCodeInvalidInput, err, "read config")
		}
	}

	var c Config
	if err := l.v.Unmarshal(&c); err != nil {
		return nil, taxerrors.Wrap(taxerrors.ErrCodeInvalidFormat, err, "decode config")
	}
	c.File = l.v.ConfigFileUsed()
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Load reads the configuration without flag bindings.
func Load(path string) (*Config, error) {
	return NewLoader().Load(path)
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if err := taxerrors.ValidateColumn("report.tax_column", c.Report.TaxColumn); err != nil {
		return err
	}
	if err := taxerrors.ValidateColumn("report.score_column", c.Report.ScoreColumn); err != nil {
		return err
	}
	if err := taxerrors.ValidateDelta(c.Tree.DeltaPercent); err != nil {
		return err
	}
	if c.Fetch.MaxBatch < 1 {
		return taxerrors.New(taxerrors.ErrCodeInvalidInput, "fetch.max_batch must be >= 1, got %d", c.Fetch.MaxBatch)
	}
	if c.Fetch.URL != "" {
		if err := taxerrors.ValidateURL(c.Fetch.URL); err != nil {
			return err
		}
	}
	return nil
}

// CacheDir returns the record cache directory: the configured one, else
// $XDG_CACHE_HOME/taxotree, else ~/.cache/taxotree.
func (c *Config) CacheDir() (string, error) {
	if c.Cache.Dir != "" {
		return c.Cache.Dir, nil
	}
	if xdg := os.Getenv("XDG_CACHE_HOME"); xdg != "" {
		return filepath.Join(xdg, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
