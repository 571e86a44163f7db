// ABOUTME: Entry point for the parley chat response server
// ABOUTME: Wires store, pipeline, dispatcher, and broadcaster; serve and ask commands

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/redis/go-redis/v9"

	"github.com/2389/parley/internal/auth"
	"github.com/2389/parley/internal/broadcast"
	"github.com/2389/parley/internal/config"
	"github.com/2389/parley/internal/dispatch"
	"github.com/2389/parley/internal/llm"
	"github.com/2389/parley/internal/pipeline"
	"github.com/2389/parley/internal/prompt"
	"github.com/2389/parley/internal/roomstate"
	"github.com/2389/parley/internal/service"
	"github.com/2389/parley/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
                     _
 _ __   __ _ _ __| | ___ _   _
| '_ \ / _' | '__| |/ _ \ | | |
| |_) | (_| | |  | |  __/ |_| |
| .__/ \__,_|_|  |_|\___|\__, |
|_|                      |___/
`

// getConfigPath returns the path to the parley config file.
// Priority: PARLEY_CONFIG env var > XDG_CONFIG_HOME/parley/parley.yaml > ~/.config/parley/parley.yaml
func getConfigPath() string {
	if envPath := os.Getenv("PARLEY_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "parley.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "parley", "parley.yaml")
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: parley <command>")
		fmt.Println()
		fmt.Println("Commands:")
		fmt.Println("  serve            Start the chat response server")
		fmt.Println("  ask <message>    Send one message through the pipeline and print the reply")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var err error
	switch os.Args[1] {
	case "serve":
		err = runServe(ctx)
	case "ask":
		err = runAsk(ctx, os.Args[2:])
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServe(ctx context.Context) error {
	configPath := getConfigPath()

	// Print banner
	cyan := color.New(color.FgCyan)
	cyan.Print(banner)

	// Version info
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n\n", version)

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Setup logger
	logger := setupLogger(cfg.Logging)

	// Startup info
	green := color.New(color.FgGreen)
	green.Print("    ▶ ")
	fmt.Printf("Config:    %s\n", configPath)
	green.Print("    ▶ ")
	fmt.Printf("Database:  %s\n", cfg.Database.Path)
	if cfg.Redis.Addr != "" {
		green.Print("    ▶ ")
		fmt.Printf("Redis:     %s\n", cfg.Redis.Addr)
	}
	fmt.Println()

	logger.Info("starting parley",
		"config", configPath,
		"database", cfg.Database.Path,
	)

	app, err := buildApp(cfg, logger)
	if err != nil {
		return err
	}

	<-ctx.Done()
	logger.Info("shutting down")
	return app.shutdown(cfg.AI.ShutdownTimeout)
}

// app holds the wired components for the lifetime of a serve run.
type app struct {
	Service     *service.Service
	store       *store.SQLiteStore
	dispatcher  *dispatch.Dispatcher
	broadcaster *broadcast.Broadcaster
	logger      *slog.Logger
}

func buildApp(cfg *config.Config, logger *slog.Logger) (*app, error) {
	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	var flags roomstate.State
	if cfg.Redis.Addr != "" {
		flags = roomstate.NewRedis(redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}))
	} else {
		flags = roomstate.NewMemory()
	}

	generator := llm.NewClient(llm.Options{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
	}, logger)

	assembler := prompt.NewAssembler(st, cfg.AI.HistoryWindow, logger)
	broadcaster := broadcast.New(st, logger)
	pipe := pipeline.New(assembler, generator, st, broadcaster, cfg.AI.RequestTimeout, logger)
	dispatcher := dispatch.New(logger)
	verifier := auth.NewJWTVerifier([]byte(cfg.Auth.JWTSecret))

	svc := service.New(st, broadcaster, dispatcher, pipe, flags, verifier, logger)

	return &app{
		Service:     svc,
		store:       st,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
		logger:      logger,
	}, nil
}

// shutdown drains queued AI work, then releases everything else.
func (a *app) shutdown(timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := a.dispatcher.Close(ctx); err != nil {
		a.logger.Warn("dispatcher did not drain in time", "error", err)
	}
	a.broadcaster.Close()
	return a.store.Close()
}

// runAsk sends one message through the full assemble-and-generate path and
// prints the reply. Useful for checking credentials and connectivity.
func runAsk(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: parley ask <message>")
	}
	message := strings.Join(args, " ")

	cfg, err := config.Load(getConfigPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	logger := setupLogger(cfg.Logging)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer st.Close()

	generator := llm.NewClient(llm.Options{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
	}, logger)
	assembler := prompt.NewAssembler(st, cfg.AI.HistoryWindow, logger)

	if cfg.AI.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.AI.RequestTimeout)
		defer cancel()
	}

	settings := store.DefaultSettings()
	key := store.ConversationKey{ConversationID: "console", ParticipantID: 0}
	reply, err := generator.Complete(ctx, assembler.Assemble(ctx, key, message, settings), settings)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	fmt.Println(reply)
	return nil
}

func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = &colorHandler{
			level: level,
		}
	}

	return slog.New(handler)
}

// colorHandler provides colorized log output with thread-safe writes.
type colorHandler struct {
	mu     sync.Mutex
	level  slog.Level
	attrs  []slog.Attr
	groups []string
}

func (h *colorHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level
}

func (h *colorHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	var buf strings.Builder

	// Format timestamp
	buf.WriteString(color.HiBlackString(r.Time.Format("15:04:05") + " "))

	// Colorize level
	switch r.Level {
	case slog.LevelDebug:
		buf.WriteString(color.MagentaString("DBG "))
	case slog.LevelInfo:
		buf.WriteString(color.CyanString("INF "))
	case slog.LevelWarn:
		buf.WriteString(color.YellowString("WRN "))
	case slog.LevelError:
		buf.WriteString(color.New(color.FgRed, color.Bold).Sprint("ERR "))
	default:
		buf.WriteString("??? ")
	}

	// Print message
	buf.WriteString(r.Message)

	// Print handler-level attrs first (from WithAttrs)
	for _, a := range h.attrs {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
	}

	// Print record attrs
	r.Attrs(func(a slog.Attr) bool {
		buf.WriteString(color.HiBlackString(" " + a.Key + "="))
		buf.WriteString(a.Value.String())
		return true
	})

	buf.WriteString("\n")
	fmt.Print(buf.String())
	return nil
}

func (h *colorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	newAttrs := make([]slog.Attr, len(h.attrs), len(h.attrs)+len(attrs))
	copy(newAttrs, h.attrs)
	newAttrs = append(newAttrs, attrs...)
	return &colorHandler{
		level:  h.level,
		attrs:  newAttrs,
		groups: h.groups,
	}
}

func (h *colorHandler) WithGroup(name string) slog.Handler {
	newGroups := make([]string, len(h.groups), len(h.groups)+1)
	copy(newGroups, h.groups)
	newGroups = append(newGroups, name)
	return &colorHandler{
		level:  h.level,
		attrs:  h.attrs,
		groups: newGroups,
	}
}
