package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/pdf-report-reader/internal/config"
	"github.com/a3tai/pdf-report-reader/internal/httpserver"
	"github.com/a3tai/pdf-report-reader/internal/mcp"
	"github.com/a3tai/pdf-report-reader/internal/pdf"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the server mode
func setupLogging(cfg *config.Config) {
	if cfg.IsStdioMode() {
		// In stdio mode, log to stderr to avoid interfering with the MCP protocol
		log.SetOutput(os.Stderr)
		// Silence logging in stdio mode unless debug is enabled
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
	} else {
		// In server mode, use normal logging with more detail
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// newService builds the report service from the configuration
func newService(cfg *config.Config) (*pdf.Service, error) {
	return pdf.NewService(pdf.Options{
		Directory:      cfg.PDFDirectory,
		MaxFileSize:    cfg.MaxFileSize,
		Municipalities: cfg.Municipalities,
		Reports:        cfg.Reports,
		Thresholds:     cfg.Thresholds(),
		Debug:          cfg.IsDebug(),
	})
}

// run serves the HTTP API in server mode, or MCP over stdio, until ctx is
// cancelled or the transport ends
func run(ctx context.Context, cfg *config.Config, service *pdf.Service) error {
	if cfg.IsServerMode() {
		log.Printf("Starting %s %s on %s, documents in %s", cfg.ServerName, cfg.Version, cfg.Address(), cfg.PDFDirectory)
		return httpserver.New(service).Start(ctx, cfg.Address())
	}

	server, err := mcp.NewServer(cfg, service)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	// In stdio mode, the parent process controls our lifecycle
	return server.Run(ctx)
}

func main() {
	// Check for version flag before parsing other flags
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	// Load configuration from flags first
	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up logging based on mode
	setupLogging(cfg)

	// Set version if it was provided during build
	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && cfg.IsServerMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	service, err := newService(cfg)
	if err != nil {
		log.Fatalf("Failed to create report service: %v", err)
	}

	// Cancelled on SIGINT or SIGTERM for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer stop()

	if err := run(ctx, cfg, service); err != nil {
		log.Printf("Server error: %v", err)
		stop()
		os.Exit(1)
	}
	log.Println("Server stopped successfully")
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF Report Reader\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
