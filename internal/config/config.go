package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/bioseqlab/kanno/internal/model"
)

// Config holds the full application configuration.
type Config struct {
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Pipeline PipelineConfig `yaml:"pipeline" mapstructure:"pipeline"`
	Search   SearchConfig   `yaml:"search" mapstructure:"search"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run provenance store.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// PipelineConfig configures the annotation cascade.
type PipelineConfig struct {
	OutDir  string           `yaml:"outdir" mapstructure:"outdir"`
	DBDir   string           `yaml:"dbdir" mapstructure:"dbdir"`
	Light   bool             `yaml:"light" mapstructure:"light"`
	Workers int              `yaml:"workers" mapstructure:"workers"`
	Threads int              `yaml:"threads" mapstructure:"threads"`
	Cutoffs model.Thresholds `yaml:"cutoffs" mapstructure:"cutoffs"`
}

// SearchConfig configures the external search tools.
type SearchConfig struct {
	Method string `yaml:"method" mapstructure:"method"`
	BinDir string `yaml:"bin_dir" mapstructure:"bin_dir"`
}

// FetchConfig configures reference-database downloads.
type FetchConfig struct {
	TimeoutSecs     int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec      float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	SwissprotURL    string  `yaml:"swissprot_url" mapstructure:"swissprot_url"`
	TremblURL       string  `yaml:"trembl_url" mapstructure:"trembl_url"`
	RefseqBaseURL   string  `yaml:"refseq_base_url" mapstructure:"refseq_base_url"`
	KofamProfileURL string  `yaml:"kofam_profile_url" mapstructure:"kofam_profile_url"`
	KofamListURL    string  `yaml:"kofam_list_url" mapstructure:"kofam_list_url"`
}

// ServerConfig configures the status server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KANNO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "kanno_runs.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("pipeline.outdir", "kanno_out")
	v.SetDefault("pipeline.workers", 3)
	v.SetDefault("pipeline.threads", 1)
	v.SetDefault("pipeline.cutoffs.identity", 40.0)
	v.SetDefault("pipeline.cutoffs.bitscore", 50.0)
	v.SetDefault("pipeline.cutoffs.evalue", 0.01)
	v.SetDefault("pipeline.cutoffs.coverage", 70.0)
	v.SetDefault("search.method", "diamond")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.rate_per_sec", 2)
	v.SetDefault("fetch.swissprot_url", "ftp://ftp.uniprot.org/pub/databases/uniprot/current_release/knowledgebase/complete/uniprot_sprot.fasta.gz")
	v.SetDefault("fetch.trembl_url", "ftp://ftp.uniprot.org/pub/databases/uniprot/current_release/knowledgebase/complete/uniprot_trembl.fasta.gz")
	v.SetDefault("fetch.refseq_base_url", "ftp://ftp.ncbi.nlm.nih.gov/refseq/release/complete")
	v.SetDefault("fetch.kofam_profile_url", "ftp://ftp.genome.jp/pub/db/kofam/profiles.tar.gz")
	v.SetDefault("fetch.kofam_list_url", "ftp://ftp.genome.jp/pub/db/kofam/ko_list.gz")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate rejects configurations the pipeline must not start with.
// Called before any stage executes.
func (c *Config) Validate() error {
	if m := model.SearchMethod(c.Search.Method); !m.Valid() {
		return eris.Errorf("config: invalid search method %q (want blast, diamond or sword)", c.Search.Method)
	}
	if c.Pipeline.Workers < 1 {
		return eris.Errorf("config: workers must be >= 1, got %d", c.Pipeline.Workers)
	}
	if c.Pipeline.Threads < 1 {
		return eris.Errorf("config: threads must be >= 1, got %d", c.Pipeline.Threads)
	}
	t := c.Pipeline.Cutoffs
	if t.Identity < 0 || t.Identity > 100 {
		return eris.Errorf("config: identity cutoff out of range: %v", t.Identity)
	}
	if t.Coverage < 0 || t.Coverage > 100 {
		return eris.Errorf("config: coverage cutoff out of range: %v", t.Coverage)
	}
	if t.EValue < 0 {
		return eris.Errorf("config: e-value cutoff must be >= 0: %v", t.EValue)
	}
	switch c.Store.Driver {
	case "sqlite", "postgres":
	default:
		return eris.Errorf("config: unknown store driver %q", c.Store.Driver)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
