package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"paytak/internal/api"
	"paytak/internal/auth"
	"paytak/internal/chat"
	"paytak/internal/config"
	"paytak/internal/ledger"
	"paytak/internal/tui"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist)
	_ = godotenv.Load()

	cfg, err := config.Load(defaultConfigFile())
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup structured logging. The terminal owns stdout, so logs go to a
	// file when possible and are discarded otherwise.
	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logOut, closeLog := openLogFile()
	defer closeLog()
	logger := slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("client starting",
		"environment", cfg.Environment,
		"api_base_url", cfg.APIBaseURL,
	)

	tokenPath := cfg.TokenPath
	if tokenPath == "" {
		tokenPath, err = auth.DefaultTokenPath()
		if err != nil {
			log.Fatalf("Failed to resolve token path: %v", err)
		}
	}
	authCtx, err := auth.NewContext(tokenPath, logger)
	if err != nil {
		log.Fatalf("Failed to initialize auth context: %v", err)
	}
	if authCtx.Expired() {
		logger.Info("stored token expired, starting logged out")
		authCtx.Clear()
	}

	client := api.NewClient(cfg.APIBaseURL, cfg.RequestTimeout, authCtx, logger)
	led := ledger.New()
	session := chat.NewSession(client, led, logger, nil)

	_, loggedIn := authCtx.Token()
	model := tui.New(client, session, led, loggedIn, logger)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

// defaultConfigFile returns the optional YAML config location, or "" when
// the user config dir is unavailable.
func defaultConfigFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "paytak", "config.yaml")
}

// openLogFile opens the debug log destination. Failures fall back to
// discarding logs rather than fighting the TUI for the terminal.
func openLogFile() (*os.File, func()) {
	dir, err := os.UserCacheDir()
	if err != nil {
		return devNull()
	}
	path := filepath.Join(dir, "paytak")
	if err := os.MkdirAll(path, 0o755); err != nil {
		return devNull()
	}
	f, err := os.OpenFile(filepath.Join(path, "client.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return devNull()
	}
	return f, func() { f.Close() }
}

func devNull() (*os.File, func()) {
	f, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
	if err != nil {
		return os.Stderr, func() {}
	}
	return f, func() { f.Close() }
}
