package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// Processing agents accepted by HEATMAP_PROCESSING_AGENT
const (
	AgentCPU    = "cpu"
	AgentOpenCV = "opencv"
	// AgentGPU is an alias of AgentOpenCV
	AgentGPU = "gpu"
)

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64
	MaxImageBytes      int64
	StreamMaxLineBytes int
	AnalysisWorkers    int
	LogLevel           string

	Heatmap HeatmapConfig
	Azure   AzureConfig
	S3      S3Config
}

// HeatmapConfig selects the interchangeable parts of the pipeline
type HeatmapConfig struct {
	ProcessingAgent string
	NeighborCounter string
	BlurKernel      string
	Lightness       string
}

// AzureConfig enables azblob:// sources when AccountName is set
type AzureConfig struct {
	AccountName string
	AccountKey  string
	ServiceURL  string
}

// Enabled reports whether Azure credentials were supplied
func (a AzureConfig) Enabled() bool {
	return a.AccountName != ""
}

// S3Config enables s3:// sources when Endpoint is set
type S3Config struct {
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
	UseSSL          bool
	Region          string
}

// Enabled reports whether an S3 endpoint was supplied
func (s S3Config) Enabled() bool {
	return s.Endpoint != ""
}

func (c *Config) ServerAddress() string {
	// Trim any whitespace from host and port
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// Default returns the configuration used when no variables are set
func Default() *Config {
	return &Config{
		Host:               "0.0.0.0",
		Port:               "8080",
		RequestTimeout:     30 * time.Second,
		ImageFetchTimeout:  15 * time.Second,
		AnalysisTimeout:    20 * time.Second,
		MaxRequestBodySize: 10 * 1024 * 1024, // 10MB
		MaxImageBytes:      20 * 1024 * 1024,
		StreamMaxLineBytes: 32 * 1024 * 1024,
		AnalysisWorkers:    runtime.NumCPU(),
		LogLevel:           "info",
		Heatmap: HeatmapConfig{
			ProcessingAgent: AgentCPU,
			NeighborCounter: "convolve",
			BlurKernel:      "gaussian",
			Lightness:       "lab",
		},
		S3: S3Config{
			UseSSL: true,
			Region: "us-east-1",
		},
	}
}

// LoadFromEnv reads the process environment
func LoadFromEnv() (*Config, error) {
	return Load(os.Getenv)
}

// Load builds a configuration from getenv. Malformed values are errors
// rather than silently replaced by defaults.
func Load(getenv func(string) string) (*Config, error) {
	cfg := Default()
	p := parser{getenv: getenv}

	cfg.Host = p.str("HOST", cfg.Host)
	cfg.Port = p.str("PORT", cfg.Port)
	cfg.RequestTimeout = p.duration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.ImageFetchTimeout = p.duration("IMAGE_FETCH_TIMEOUT", cfg.ImageFetchTimeout)
	cfg.AnalysisTimeout = p.duration("ANALYSIS_TIMEOUT", cfg.AnalysisTimeout)
	cfg.MaxRequestBodySize = p.int64("MAX_REQUEST_BODY_SIZE", cfg.MaxRequestBodySize)
	cfg.MaxImageBytes = p.int64("MAX_IMAGE_BYTES", cfg.MaxImageBytes)
	cfg.StreamMaxLineBytes = int(p.int64("STREAM_MAX_LINE_BYTES", int64(cfg.StreamMaxLineBytes)))
	cfg.AnalysisWorkers = int(p.int64("ANALYSIS_WORKERS", int64(cfg.AnalysisWorkers)))
	cfg.LogLevel = strings.ToLower(p.str("LOG_LEVEL", cfg.LogLevel))

	cfg.Heatmap.ProcessingAgent = strings.ToLower(p.str("HEATMAP_PROCESSING_AGENT", cfg.Heatmap.ProcessingAgent))
	cfg.Heatmap.NeighborCounter = strings.ToLower(p.str("HEATMAP_NEIGHBOR_COUNTER", cfg.Heatmap.NeighborCounter))
	cfg.Heatmap.BlurKernel = strings.ToLower(p.str("HEATMAP_BLUR_KERNEL", cfg.Heatmap.BlurKernel))
	cfg.Heatmap.Lightness = strings.ToLower(p.str("HEATMAP_LIGHTNESS", cfg.Heatmap.Lightness))

	cfg.Azure.AccountName = p.str("AZURE_STORAGE_ACCOUNT", "")
	cfg.Azure.AccountKey = p.str("AZURE_STORAGE_KEY", "")
	cfg.Azure.ServiceURL = p.str("AZURE_STORAGE_SERVICE_URL", "")

	cfg.S3.Endpoint = p.str("S3_ENDPOINT", "")
	cfg.S3.AccessKeyID = p.str("S3_ACCESS_KEY_ID", "")
	cfg.S3.SecretAccessKey = p.str("S3_SECRET_ACCESS_KEY", "")
	cfg.S3.UseSSL = p.bool("S3_USE_SSL", cfg.S3.UseSSL)
	cfg.S3.Region = p.str("S3_REGION", cfg.S3.Region)

	if err := errors.Join(p.errs...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks ranges and enumerations
func (c *Config) Validate() error {
	var errs []error

	// Validate port is numeric and in range
	port, err := strconv.Atoi(strings.TrimSpace(c.Port))
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, fmt.Errorf("invalid PORT: %q", c.Port))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", c.MaxRequestBodySize))
	}
	if c.MaxImageBytes <= 0 {
		errs = append(errs, fmt.Errorf("MAX_IMAGE_BYTES must be > 0 (got %d)", c.MaxImageBytes))
	}
	if c.StreamMaxLineBytes <= 0 {
		errs = append(errs, fmt.Errorf("STREAM_MAX_LINE_BYTES must be > 0 (got %d)", c.StreamMaxLineBytes))
	}
	if c.AnalysisWorkers <= 0 {
		errs = append(errs, fmt.Errorf("ANALYSIS_WORKERS must be > 0 (got %d)", c.AnalysisWorkers))
	}
	if c.RequestTimeout <= 0 || c.ImageFetchTimeout <= 0 || c.AnalysisTimeout <= 0 {
		errs = append(errs, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			c.RequestTimeout, c.ImageFetchTimeout, c.AnalysisTimeout))
	}

	errs = append(errs,
		oneOf("HEATMAP_PROCESSING_AGENT", c.Heatmap.ProcessingAgent, AgentCPU, AgentOpenCV, AgentGPU),
		oneOf("HEATMAP_NEIGHBOR_COUNTER", c.Heatmap.NeighborCounter, "convolve", "shift"),
		oneOf("HEATMAP_BLUR_KERNEL", c.Heatmap.BlurKernel, "gaussian", "box"),
		oneOf("HEATMAP_LIGHTNESS", c.Heatmap.Lightness, "lab", "hsl"),
		oneOf("LOG_LEVEL", c.LogLevel, "debug", "info", "warn", "error"),
	)

	if c.Azure.Enabled() && c.Azure.AccountKey == "" {
		errs = append(errs, errors.New("AZURE_STORAGE_KEY is required when AZURE_STORAGE_ACCOUNT is set"))
	}
	return errors.Join(errs...)
}

// UsesOpenCV reports whether the OpenCV backend was requested
func (h HeatmapConfig) UsesOpenCV() bool {
	return h.ProcessingAgent == AgentOpenCV || h.ProcessingAgent == AgentGPU
}

func oneOf(key, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s: %q (want one of %s)", key, value, strings.Join(allowed, ", "))
}

// parser collects conversion errors so every bad variable is reported at once
type parser struct {
	getenv func(string) string
	errs   []error
}

func (p *parser) str(key, defaultValue string) string {
	if value := strings.TrimSpace(p.getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func (p *parser) duration(key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(p.getenv(key))
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %q is not a duration", key, value))
		return defaultValue
	}
	return d
}

func (p *parser) int64(key string, defaultValue int64) int64 {
	value := strings.TrimSpace(p.getenv(key))
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %q is not an integer", key, value))
		return defaultValue
	}
	return n
}

func (p *parser) bool(key string, defaultValue bool) bool {
	value := strings.TrimSpace(p.getenv(key))
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		p.errs = append(p.errs, fmt.Errorf("invalid %s: %q is not a boolean", key, value))
		return defaultValue
	}
	return b
}
