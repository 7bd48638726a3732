// screen runs one café screen headlessly: it connects to the backend,
// keeps the order collection live, and prints each rendered view to the
// console. Usage:
//
//	go run ./cmd/screen --config configs/screen.yaml --kind kitchen
//	go run ./cmd/screen --base-url http://localhost:8080 --kind table --table 5
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ekaya/cafelive/internal/config"
	"github.com/ekaya/cafelive/internal/greeting"
	"github.com/ekaya/cafelive/internal/notify"
	"github.com/ekaya/cafelive/internal/screen"
	"github.com/ekaya/cafelive/internal/version"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	baseURL := flag.String("base-url", "", "backend base URL (overrides config)")
	kindFlag := flag.String("kind", "kitchen", "screen kind: table, kitchen, cashier, admin")
	tableID := flag.String("table", "", "table id (required for --kind table)")
	verbose := flag.Bool("verbose", false, "debug logging")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	logger.Info("starting screen",
		"version", version.Version,
		"commit", version.Commit,
		"kind", *kindFlag,
	)

	cfg, err := loadConfig(*configPath, *baseURL)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	kind := screen.Kind(*kindFlag)
	if !kind.Valid() {
		logger.Error("unknown screen kind", "kind", *kindFlag)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	}()

	opts := screen.Options{
		Config:  cfg,
		Kind:    kind,
		TableID: *tableID,
		Sink:    notify.LogSink{Logger: logger},
		Logger:  logger,
	}

	// The table screen greets each table once per TTL, remembered
	// across restarts.
	if kind == screen.KindTable && cfg.Greeting.Path != "" {
		greeter, err := greeting.Open(cfg.Greeting.Path, cfg.Greeting.TTL)
		if err != nil {
			logger.Error("failed to open greeting store", "error", err)
			os.Exit(1)
		}
		defer greeter.Close()
		opts.Greeter = greeter
	}

	session, err := screen.NewSession(opts)
	if err != nil {
		logger.Error("failed to create session", "error", err)
		os.Exit(1)
	}
	if err := session.Start(ctx); err != nil {
		logger.Error("failed to start session", "error", err)
		os.Exit(1)
	}
	defer session.Stop(context.Background())

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return
		case view := <-session.Views():
			render(view)
		}
	}
}

func loadConfig(path, baseURL string) (*config.ScreenConfig, error) {
	if path != "" {
		return config.LoadAndValidate(path)
	}
	if baseURL == "" {
		return nil, fmt.Errorf("either --config or --base-url is required")
	}
	return config.Default(baseURL), nil
}

// render prints one view. A real deployment replaces this with a UI; the
// shape of the output mirrors what a screen would draw.
func render(v screen.ViewState) {
	fmt.Printf("\n[%s] connection=%s", v.UpdatedAt.Format("15:04:05"), v.Conn)
	if v.SessionInvalid {
		fmt.Print("  SESSION INVALID - re-authenticate")
	}
	if v.LastError != "" {
		fmt.Printf("  error=%s", v.LastError)
	}
	if v.ShowGreeting {
		fmt.Print("  [hos geldiniz]")
	}
	fmt.Println()

	for _, row := range v.Orders {
		line := fmt.Sprintf("  #%-5d table=%-4s %-10s %8.2f TL", row.ID, row.TableID, row.Status, float64(row.Total)/100)
		if row.CancelEligible {
			line += fmt.Sprintf("  cancel in %ds", int(row.CancelRemaining.Seconds()))
		}
		fmt.Println(line)
	}
}
