package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/dgallion1/docoutline/internal/export"
	"github.com/dgallion1/docoutline/internal/parser"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable, e.g. DOCOUTLINE_PORT.
const EnvPrefix = "DOCOUTLINE"

const (
	defaultPort            = "8090"
	defaultWorkerCount     = 4
	defaultMaxQueueSize    = 100
	defaultMaxUploadBytes  = 52428800 // 50MB
	defaultJobTTL          = time.Hour
	defaultDocumentTimeout = 2 * time.Minute
)

type Config struct {
	Port string `mapstructure:"port"`

	// Auth. Empty disables bearer auth.
	APIKey string `mapstructure:"api_key"`

	// Browser origins allowed to call the API. Empty disables CORS.
	CORSOrigins []string `mapstructure:"cors_origins"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count"`
	MaxQueueSize int `mapstructure:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl"`

	// Per-document wall clock budget. Zero disables it.
	DocumentTimeout time.Duration `mapstructure:"document_timeout"`

	// Result cache. Empty disables it.
	CachePath string `mapstructure:"cache_path"`

	// PDF
	PDFPreflight      bool    `mapstructure:"pdf_preflight"`
	PDFRowTolerance   float64 `mapstructure:"pdf_row_tolerance"`
	PDFWordGapRatio   float64 `mapstructure:"pdf_word_gap_ratio"`
	PDFColumnGapRatio float64 `mapstructure:"pdf_column_gap_ratio"`
	PDFBlockGapRatio  float64 `mapstructure:"pdf_block_gap_ratio"`

	// Batch and watch
	InputDir     string `mapstructure:"input_dir"`
	OutputDir    string `mapstructure:"output_dir"`
	OutputFormat string `mapstructure:"output_format"`
}

// Load reads defaults, then the config file, then DOCOUTLINE_* environment
// variables. An empty cfgFile searches ./docoutline.yaml and
// $HOME/.docoutline/docoutline.yaml and tolerates neither existing.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	layout := parser.DefaultLayoutConfig()

	v.SetDefault("port", defaultPort)
	v.SetDefault("api_key", "")
	v.SetDefault("cors_origins", []string{})
	v.SetDefault("worker_count", defaultWorkerCount)
	v.SetDefault("max_queue_size", defaultMaxQueueSize)
	v.SetDefault("max_upload_bytes", defaultMaxUploadBytes)
	v.SetDefault("job_ttl", defaultJobTTL)
	v.SetDefault("document_timeout", defaultDocumentTimeout)
	v.SetDefault("cache_path", "")
	v.SetDefault("pdf_preflight", true)
	v.SetDefault("pdf_row_tolerance", layout.RowTolerance)
	v.SetDefault("pdf_word_gap_ratio", layout.WordGapRatio)
	v.SetDefault("pdf_column_gap_ratio", layout.ColumnGapRatio)
	v.SetDefault("pdf_block_gap_ratio", layout.BlockGapRatio)
	v.SetDefault("input_dir", "input")
	v.SetDefault("output_dir", "output")
	v.SetDefault("output_format", string(export.FormatJSON))

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if cfgFile != "" {
		// An explicit file must exist; only the search is optional.
		if _, err := os.Stat(cfgFile); err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("docoutline")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.docoutline")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.Port == "" {
		cfg.Port = defaultPort
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = defaultWorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = defaultMaxQueueSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = defaultJobTTL
	}
	if cfg.DocumentTimeout < 0 {
		cfg.DocumentTimeout = defaultDocumentTimeout
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if _, err := export.ParseFormat(c.OutputFormat); err != nil {
		return fmt.Errorf("OUTPUT_FORMAT: %w", err)
	}
	if c.InputDir == "" {
		return fmt.Errorf("INPUT_DIR is required")
	}
	if c.OutputDir == "" {
		return fmt.Errorf("OUTPUT_DIR is required")
	}
	return nil
}

// Format returns the configured output format.
func (c Config) Format() export.Format {
	f, err := export.ParseFormat(c.OutputFormat)
	if err != nil {
		return export.FormatJSON
	}
	return f
}

// ParserOptions returns the parser settings carried by c.
func (c Config) ParserOptions() parser.Options {
	return parser.Options{
		PDFPreflight: c.PDFPreflight,
		Layout: parser.LayoutConfig{
			RowTolerance:   c.PDFRowTolerance,
			WordGapRatio:   c.PDFWordGapRatio,
			ColumnGapRatio: c.PDFColumnGapRatio,
			BlockGapRatio:  c.PDFBlockGapRatio,
		},
	}
}
