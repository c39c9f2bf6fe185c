package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"go.uber.org/zap"

	"github.com/eugenenazirov/devops-api/internal/application"
	"github.com/eugenenazirov/devops-api/internal/component"
	"github.com/eugenenazirov/devops-api/internal/config"
	"github.com/eugenenazirov/devops-api/internal/logging"
)

var signalNotify = signal.Notify

func main() {
	kingpinApp := kingpin.New("devops-api", "DevOps API - informational backend service for software component management")

	serveCmd := kingpinApp.Command("serve", "Run the HTTP server").Default()
	configFile := serveCmd.Flag("config", "Path to YAML configuration file").String()
	host := serveCmd.Flag("host", "Address the HTTP server binds to").String()
	port := serveCmd.Flag("port", "HTTP port exposed by the service").Int()
	logLevel := serveCmd.Flag("log-level", "Log level (DEBUG, INFO, WARNING, ERROR, CRITICAL)").String()
	componentFile := serveCmd.Flag("component", "Path to a software component definition served on /component").String()
	reload := serveCmd.Flag("reload", "Reload the component definition when it changes").Bool()
	rateLimitRPSFlag := serveCmd.Flag("rate-limit-rps", "Requests per second allowed (set 0 to disable)").Default("-1").Float64()
	rateLimitBurstFlag := serveCmd.Flag("rate-limit-burst", "Burst capacity for rate limiter (set 0 to disable)").Default("-1").Int()

	describeCmd := kingpinApp.Command("describe", "Validate a software component definition and print it as JSON")
	describeFile := describeCmd.Arg("file", "Path to a .yaml or .yml definition").Required().String()

	doctorCmd := kingpinApp.Command("doctor", "Report every problem in a software component definition")
	doctorFile := doctorCmd.Arg("file", "Path to a .yaml or .yml definition").Required().String()

	switch kingpin.MustParse(kingpinApp.Parse(os.Args[1:])) {
	case describeCmd.FullCommand():
		if err := describe(os.Stdout, *describeFile); err != nil {
			kingpinApp.Fatalf("%v", err)
		}
		return
	case doctorCmd.FullCommand():
		if err := doctor(os.Stdout, *doctorFile); err != nil {
			kingpinApp.Fatalf("%v", err)
		}
		return
	case serveCmd.FullCommand():
	}

	overrides := &config.CLIOverrides{
		ConfigFile: *configFile,
	}

	if *host != "" {
		overrides.Host = host
	}

	if *port != 0 {
		overrides.Port = port
	}

	if *logLevel != "" {
		overrides.LogLevel = logLevel
	}

	if *componentFile != "" {
		overrides.ComponentFile = componentFile
	}

	if *reload {
		overrides.Reload = reload
	}

	if *rateLimitRPSFlag >= 0 {
		overrides.RateLimitRPS = rateLimitRPSFlag
	}

	if *rateLimitBurstFlag >= 0 {
		overrides.RateLimitBurst = rateLimitBurstFlag
	}

	cfg, err := config.Load(overrides)
	if err != nil {
		panic(fmt.Sprintf("failed to load configuration: %v", err))
	}

	logger, err := logging.New(string(cfg.LogLevel), cfg.Debug)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer func() {
		_ = logger.Sync()
	}()
	logger.Info("environment configuration loaded successfully")

	app, err := application.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to initialize application", zap.Error(err))
	}

	if err := app.Start(); err != nil {
		logger.Fatal("failed to start server", zap.Error(err))
	}

	shutdown(app.Server(), cfg.ShutdownGracePeriod, logger)
	app.Stop()
}

// describe loads the definition at path and writes it to w as indented JSON.
func describe(w io.Writer, path string) error {
	c, err := component.Load(path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(c)
}

// doctor writes a full diagnosis of the definition at path to w and fails
// when any required fix was found.
func doctor(w io.Writer, path string) error {
	report := component.Diagnose(path)

	fmt.Fprintf(w, "Checking %s\n", report.Path)
	for _, c := range report.Checks {
		fmt.Fprintf(w, "%s %s\n", checkMark(c.Severity), checkLine(c))
	}

	if suggestions := report.Suggestions(); len(suggestions) > 0 {
		fmt.Fprintln(w, "\nSuggestions:")
		for _, c := range suggestions {
			fmt.Fprintf(w, "  - %s\n", checkLine(c))
		}
	}

	fixes := report.Fixes()
	if len(fixes) == 0 {
		fmt.Fprintln(w, "\nNo issues found.")
		return nil
	}

	fmt.Fprintln(w, "\nFixes:")
	for _, c := range fixes {
		fmt.Fprintf(w, "  - %s\n", checkLine(c))
	}
	return fmt.Errorf("found %d required fixes", len(fixes))
}

func checkMark(severity component.Severity) string {
	switch severity {
	case component.SeverityFix:
		return "[✘]"
	case component.SeveritySuggestion:
		return "[~]"
	default:
		return "[✔]"
	}
}

func checkLine(c component.Check) string {
	if c.Field == "" {
		return c.Message
	}
	return c.Field + ": " + c.Message
}

func shutdown(server *http.Server, timeout time.Duration, logger *zap.Logger) {
	quit := make(chan os.Signal, 1)
	signalNotify(quit, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Warn("graceful shutdown failed", zap.Error(err))
		if closeErr := server.Close(); closeErr != nil {
			logger.Error("forced close failed", zap.Error(closeErr))
		}
	}
}
