package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leavenlabs/leaven/internal/config"
	"github.com/leavenlabs/leaven/internal/engine"
	"github.com/leavenlabs/leaven/internal/llm"
	"github.com/leavenlabs/leaven/internal/server"
	"github.com/leavenlabs/leaven/internal/store"
	"github.com/leavenlabs/leaven/internal/store/filestore"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfgPath, err := config.DefaultPath()
	if err != nil {
		return fmt.Errorf("resolve config path: %w", err)
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return err
	}

	// Check for ANTHROPIC_API_KEY env override
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
		cfg.LLM.Provider = "anthropic"
		cfg.LLM.AnthropicKey = key
	}

	// Resolve database path — memories always live in SQLite
	dbPath := cfg.Database.Path
	if dbPath == "" {
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			return fmt.Errorf("resolve db path: %w", err)
		}
	}

	db, err := store.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	// Pick the proposal backend: SQLite by default, or the reference JSON
	// document store.
	var proposals store.ProposalStore = db
	if cfg.Proposals.Backend == "file" {
		path := cfg.Proposals.Path
		if path == "" {
			path, err = filestore.DefaultPath()
			if err != nil {
				return fmt.Errorf("resolve proposals path: %w", err)
			}
		}
		proposals = filestore.New(path)
		fmt.Fprintf(os.Stderr, "  proposals: %s\n", path)
	}

	var llmClient llm.Client
	if c, err := llm.NewClient(cfg.LLM); err != nil {
		fmt.Fprintf(os.Stderr, "warning: generation backend not configured (%v), /api/generate disabled\n", err)
	} else {
		llmClient = c
		fmt.Fprintf(os.Stderr, "  llm: %s\n", cfg.LLM.Provider)
	}

	eng := engine.New(proposals, db, llmClient)
	if cfg.Memory.HalfLifeDays > 0 {
		eng.HalfLifeDays = cfg.Memory.HalfLifeDays
	}

	srv := server.New(db, eng, VersionString())
	addr := cfg.ListenAddr()

	httpServer := &http.Server{
		Addr:    addr,
		Handler: srv,
	}

	// Graceful shutdown
	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		fmt.Fprintf(os.Stderr, "leaven serving on %s\n", addr)
		fmt.Fprintf(os.Stderr, "  db: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "  half-life: %.2g days\n", eng.HalfLifeDays)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "server error: %v\n", err)
			os.Exit(1)
		}
	}()

	<-done
	fmt.Fprintln(os.Stderr, "\nshutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	return httpServer.Shutdown(ctx)
}
