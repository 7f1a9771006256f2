package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/a3tai/pdf-report-reader/internal/geometry"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"

	// Default values
	DefaultPort        = 8000
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultDirectory   = "documentos-parsear"

	// EnvPrefix prefixes every environment variable
	EnvPrefix = "PDF_REPORTS"

	// Directory permissions
	DefaultDirPerm = 0o750
)

var (
	// DefaultMunicipalities are the municipalities served out of the box
	DefaultMunicipalities = []string{"collbato", "santboi", "premia"}
	// DefaultReports are the report types served out of the box
	DefaultReports = []string{"a", "bens"}
)

// Config holds all configuration for the report reader
type Config struct {
	// Server configuration
	Mode string // "server" or "stdio"
	Host string
	Port int

	// Report configuration
	PDFDirectory   string
	Municipalities []string
	Reports        []string

	// Line detection thresholds
	LineYTolerance float64
	MinLineLength  float64
	MaxRuleHeight  float64
	MinRuleWidth   float64
	MergeTolerance float64

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	th := geometry.DefaultThresholds()

	return &Config{
		Mode:           ModeStdio, // Default to stdio mode for MCP compatibility
		Host:           DefaultHost,
		Port:           DefaultPort,
		PDFDirectory:   DefaultDirectory,
		Municipalities: append([]string(nil), DefaultMunicipalities...),
		Reports:        append([]string(nil), DefaultReports...),
		LineYTolerance: th.LineYTolerance,
		MinLineLength:  th.MinLineLength,
		MaxRuleHeight:  th.MaxRuleHeight,
		MinRuleWidth:   th.MinRuleWidth,
		MergeTolerance: th.MergeTolerance,
		Version:        "1.0.0",
		ServerName:     "pdf-report-reader",
		LogLevel:       DefaultLogLevel,
		MaxFileSize:    DefaultMaxFileSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix, PDF_REPORTS_MIN_LINE_LENGTH maps to min-line-length
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("municipalities", cfg.Municipalities)
	viper.SetDefault("reports", cfg.Reports)
	viper.SetDefault("line-y-tolerance", cfg.LineYTolerance)
	viper.SetDefault("min-line-length", cfg.MinLineLength)
	viper.SetDefault("max-rule-height", cfg.MaxRuleHeight)
	viper.SetDefault("min-rule-width", cfg.MinRuleWidth)
	viper.SetDefault("merge-tolerance", cfg.MergeTolerance)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Server mode: 'stdio' for MCP standard I/O, 'server' for HTTP server")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing one sub-directory of reports per municipality")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.StringSlice("municipalities", cfg.Municipalities, "Accepted municipality identifiers")
	pflag.StringSlice("reports", cfg.Reports, "Accepted report types")
	pflag.Float64("line-y-tolerance", cfg.LineYTolerance, "Largest vertical drift of a segment counted as horizontal")
	pflag.Float64("min-line-length", cfg.MinLineLength, "Shortest segment counted as a rule")
	pflag.Float64("max-rule-height", cfg.MaxRuleHeight, "Tallest rectangle counted as a rule")
	pflag.Float64("min-rule-width", cfg.MinRuleWidth, "Narrowest rectangle counted as a rule")
	pflag.Float64("merge-tolerance", cfg.MergeTolerance, "Distance under which rules are merged in summaries")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	for _, name := range []string{
		"mode", "host", "port", "dir", "loglevel", "maxfilesize", "municipalities", "reports",
		"line-y-tolerance", "min-line-length", "max-rule-height", "min-rule-width", "merge-tolerance",
	} {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF Report Reader - content and rule line extraction for municipal assessment reports\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# MCP over stdio, ./documentos-parsear (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/srv/reports        # HTTP API\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --municipalities=vic,olot # custom municipalities\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF_REPORTS_MODE             Server mode\n")
		fmt.Fprintf(os.Stderr, "  PDF_REPORTS_HOST             Server host\n")
		fmt.Fprintf(os.Stderr, "  PDF_REPORTS_PORT             Server port\n")
		fmt.Fprintf(os.Stderr, "  PDF_REPORTS_DIR              Documents directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_REPORTS_LOGLEVEL         Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF_REPORTS_MAXFILESIZE      Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  PDF_REPORTS_MUNICIPALITIES   Comma separated municipalities\n")
		fmt.Fprintf(os.Stderr, "  PDF_REPORTS_REPORTS          Comma separated report types\n")
		fmt.Fprintf(os.Stderr, "  PDF_REPORTS_MERGE_TOLERANCE  Rule merge tolerance (and the other threshold flags)\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Municipalities = splitList(viper.GetStringSlice("municipalities"))
	cfg.Reports = splitList(viper.GetStringSlice("reports"))
	cfg.LineYTolerance = viper.GetFloat64("line-y-tolerance")
	cfg.MinLineLength = viper.GetFloat64("min-line-length")
	cfg.MaxRuleHeight = viper.GetFloat64("max-rule-height")
	cfg.MinRuleWidth = viper.GetFloat64("min-rule-width")
	cfg.MergeTolerance = viper.GetFloat64("merge-tolerance")
}

// splitList flattens comma separated entries, as given by environment variables
func splitList(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		for _, item := range strings.Split(v, ",") {
			if item = strings.TrimSpace(item); item != "" {
				out = append(out, item)
			}
		}
	}
	return out
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer {
		return errors.New("mode must be either 'stdio' or 'server'")
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate PDF directory
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	if len(c.Municipalities) == 0 {
		return errors.New("at least one municipality must be configured")
	}
	if len(c.Reports) == 0 {
		return errors.New("at least one report type must be configured")
	}
	for _, name := range append(append([]string(nil), c.Municipalities...), c.Reports...) {
		if strings.ContainsAny(name, `/\_`) || name == "." || name == ".." {
			return fmt.Errorf("invalid municipality or report identifier: %q", name)
		}
	}

	return c.Thresholds().Validate()
}

// Thresholds returns the line detection thresholds
func (c *Config) Thresholds() geometry.Thresholds {
	return geometry.Thresholds{
		LineYTolerance: c.LineYTolerance,
		MinLineLength:  c.MinLineLength,
		MaxRuleHeight:  c.MaxRuleHeight,
		MinRuleWidth:   c.MinRuleWidth,
		MergeTolerance: c.MergeTolerance,
	}
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d, "+
		"Municipalities: %v, Reports: %v}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize, c.Municipalities, c.Reports)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}
