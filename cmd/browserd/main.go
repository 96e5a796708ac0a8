// Package main provides browserd, an MCP server that drives real browsers.
// It speaks the protocol over stdio, so all diagnostics go to the log file
// under ~/.mcp/logs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/entrhq/browserd/pkg/browser"
	"github.com/entrhq/browserd/pkg/browser/driver/pwdriver"
	"github.com/entrhq/browserd/pkg/config"
	"github.com/entrhq/browserd/pkg/logging"
	"github.com/entrhq/browserd/pkg/metrics"
	browsertools "github.com/entrhq/browserd/pkg/tools/browser"
)

const version = "0.1.0"

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigFile  string
	LogLevel    string
	MetricsAddr string
	NoInstall   bool
	ShowVersion bool
}

func main() {
	cli := parseFlags()

	if cli.ShowVersion {
		fmt.Printf("browserd v%s\n", version)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cli); err != nil {
		stop()
		log.Printf("browserd failed: %v", err)
		os.Exit(1)
	}
}

// parseFlags parses command line flags
func parseFlags() *CLIConfig {
	cli := &CLIConfig{}

	flag.StringVar(&cli.ConfigFile, "config", "", "Path to configuration file (YAML), default ~/.mcp/browserd.yaml")
	flag.StringVar(&cli.LogLevel, "log-level", "", "Minimum log level: debug, info, warn or error")
	flag.StringVar(&cli.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. 127.0.0.1:9464")
	flag.BoolVar(&cli.NoInstall, "no-install", false, "Do not download the Playwright driver and browsers on startup")
	flag.BoolVar(&cli.ShowVersion, "version", false, "Show version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "browserd - browser automation over the Model Context Protocol\n\n")
		fmt.Fprintf(os.Stderr, "Usage: browserd [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  # Run with defaults, installing browsers on first use\n")
		fmt.Fprintf(os.Stderr, "  browserd\n\n")
		fmt.Fprintf(os.Stderr, "  # Debug logging and a metrics endpoint\n")
		fmt.Fprintf(os.Stderr, "  browserd -log-level debug -metrics-addr 127.0.0.1:9464\n\n")
	}

	flag.Parse()
	return cli
}

// loadConfig reads the config file and applies flag overrides. An absent
// default file is not an error; an absent explicit file is.
func loadConfig(cli *CLIConfig) (*config.Config, error) {
	path := cli.ConfigFile
	allowMissing := path == ""
	if allowMissing {
		p, err := config.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	cfg, err := config.Load(path, allowMissing)
	if err != nil {
		return nil, err
	}

	if cli.LogLevel != "" {
		cfg.Logging.Level = cli.LogLevel
	}
	if cli.MetricsAddr != "" {
		cfg.Metrics.ListenAddress = cli.MetricsAddr
	}
	if cli.NoInstall {
		cfg.Playwright.Install = false
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

//nolint:gocyclo
func run(ctx context.Context, cli *CLIConfig) error {
	cfg, err := loadConfig(cli)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	level, _ := logging.ParseLevel(cfg.Logging.Level)
	logging.SetLevel(level)

	logger, err := logging.NewLogger("server")
	if err != nil {
		log.Printf("file logging unavailable: %v", err)
	}
	defer logger.Close()

	registryLogger, _ := logging.NewLogger("registry")
	defer registryLogger.Close()
	toolsLogger, _ := logging.NewLogger("tools")
	defer toolsLogger.Close()
	driverLogger, _ := logging.NewLogger("playwright")
	defer driverLogger.Close()

	if cfg.Path != "" {
		logger.Infof("loaded configuration from %s", cfg.Path)
	}

	policy, err := browser.NewNavigationPolicy(cfg.Navigation.AllowedPatterns, cfg.Navigation.DeniedPatterns)
	if err != nil {
		return fmt.Errorf("invalid navigation policy: %w", err)
	}

	launcher := pwdriver.NewLauncher(pwdriver.Options{
		Install:  cfg.Playwright.Install,
		Browsers: cfg.Playwright.Browsers,
		Output:   driverLogger.Writer(),
	})

	registry := browser.NewRegistry(launcher, registryLogger)
	registry.ShutdownConcurrency = cfg.ShutdownConcurrency

	resolver := &browser.Resolver{
		PollInterval:   cfg.PollInterval,
		DefaultTimeout: cfg.ElementTimeout(),
	}

	commands := browser.NewCommands(registry, resolver)
	commands.Policy = policy
	commands.ScreenshotDir = cfg.ScreenshotDir
	commands.ScriptElementTimeout = cfg.ScriptElementTimeout()

	m := metrics.NewMetrics(prometheus.NewRegistry())
	toolset := browsertools.NewToolset(commands, toolsLogger, m)

	server := mcp.NewServer(&mcp.Implementation{Name: "browserd", Version: version}, nil)
	if err := toolset.Register(server); err != nil {
		return fmt.Errorf("failed to register tools: %w", err)
	}

	var metricsServer *http.Server
	if addr := cfg.Metrics.ListenAddress; addr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		metricsServer = &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("metrics server stopped: %v", err)
			}
		}()
		logger.Infof("serving metrics on %s/metrics", addr)
	}

	// Sessions and the driver outlive ctx, so clean up on a fresh context.
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		registry.Shutdown(shutdownCtx)
		if err := launcher.Close(); err != nil {
			logger.Warnf("failed to stop playwright: %v", err)
		}
		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		logger.Infof("browserd stopped")
	}()

	logger.Infof("browserd v%s serving %d tools over stdio (log level %s)", version, len(toolset.Names()), level)
	if err := server.Run(ctx, &mcp.StdioTransport{}); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server stopped: %w", err)
	}
	return nil
}
