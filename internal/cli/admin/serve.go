package admin

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cloo-solutions/dreamcourse/internal/api/handlers"
	"github.com/cloo-solutions/dreamcourse/internal/config"
	"github.com/cloo-solutions/dreamcourse/internal/jobs"
	"github.com/cloo-solutions/dreamcourse/internal/prompt"
	"github.com/cloo-solutions/dreamcourse/internal/repository"
	"github.com/cloo-solutions/dreamcourse/internal/server"
	"github.com/cloo-solutions/dreamcourse/internal/service"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Load the dataset, prepare the semantic index and serve guidance sessions over HTTP",
		RunE:  runServe,
	}

	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().Bool("no-migrate", false, "Skip automatic database migrations on startup")

	return cmd
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if portFlag, _ := cmd.Flags().GetString("port"); portFlag != "" && portFlag != "8080" {
		cfg.Port = portFlag
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	defer initTelemetry(cfg)()

	corpus, err := loadCorpus(ctx, cfg)
	if err != nil {
		return err
	}

	client := newOpenAIClient(cfg)

	noMigrate, _ := cmd.Flags().GetBool("no-migrate")
	builder, closeDB, err := newBuilder(ctx, cfg, client, !noMigrate)
	if err != nil {
		return err
	}
	defer closeDB()

	var indexSource service.IndexSource = &service.BuildPerSession{Builder: builder, Units: corpus.units}
	if cfg.IndexScope == "process" {
		idx, err := builder.Build(ctx, corpus.units)
		if err != nil {
			return fmt.Errorf("failed to build shared index: %w", err)
		}
		defer idx.Close(context.Background())
		indexSource = service.NewSharedIndexSource(idx)
		log.Printf("shared index ready (%d units)", idx.Size())
	}

	sessionSvc := service.NewSessionService(
		repository.NewMemorySessionStore(),
		service.NewAnswerService(client, cfg.TopK()),
		prompt.NewRegistry(),
		indexSource,
		service.SessionOptions{
			Universities: cfg.Universities(),
			Comments:     corpus.comments,
		},
	)

	reaper := jobs.NewWorker("session-reaper", jobs.NewSessionReaper(sessionSvc, cfg.SessionTTL), cfg.SessionSweepInterval)
	go reaper.Start(ctx)

	router := server.NewRouter(server.RouterConfig{
		SessionHandler: handlers.NewSessionHandler(sessionSvc),
		OptionsHandler: handlers.NewOptionsHandler(cfg.Jobs(), cfg.Universities(), cfg.DefaultSchool),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("starting server on port %s (index=%s/%s)", cfg.Port, cfg.IndexBackend, cfg.IndexScope)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")

	reaper.Stop()

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	sessionSvc.Close(shutdownCtx)

	log.Println("server exited")
	return nil
}
