package admin

import (
	"context"
	"fmt"
	"log"

	"github.com/cloo-solutions/dreamcourse/internal/config"
	"github.com/cloo-solutions/dreamcourse/internal/database"
	"github.com/cloo-solutions/dreamcourse/internal/dataset"
	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/cloo-solutions/dreamcourse/internal/index"
	"github.com/cloo-solutions/dreamcourse/internal/openai"
	"github.com/cloo-solutions/dreamcourse/internal/repository"
	"github.com/cloo-solutions/dreamcourse/internal/service"
	"github.com/cloo-solutions/dreamcourse/internal/storage"
	"github.com/cloo-solutions/dreamcourse/internal/telemetry"
)

// corpus is the synthesized dataset shared by every command.
type corpus struct {
	units    []domain.TextUnit
	comments map[string]string
}

func loadCorpus(ctx context.Context, cfg *config.Config) (*corpus, error) {
	source, err := datasetSource(ctx, cfg)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.NewLoader(source).Load(ctx, datasetFiles(cfg))
	if err != nil {
		return nil, err
	}

	units, err := service.Synthesize(ds)
	if err != nil {
		return nil, err
	}
	log.Printf("dataset: synthesized %d text units from %s source", len(units), cfg.DataSource)

	return &corpus{units: units, comments: service.MajorComments(ds.Curricula)}, nil
}

func datasetSource(ctx context.Context, cfg *config.Config) (dataset.Source, error) {
	if cfg.DataSource != "s3" {
		return dataset.FileSource{Dir: cfg.DataDir}, nil
	}

	client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        cfg.S3Endpoint,
		Region:          cfg.S3Region,
		AccessKeyID:     cfg.S3AccessKey,
		SecretAccessKey: cfg.S3SecretKey,
		Bucket:          cfg.S3Bucket,
		UsePathStyle:    true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 client: %w", err)
	}
	return dataset.S3Source{Client: client, Prefix: cfg.S3Prefix}, nil
}

func datasetFiles(cfg *config.Config) dataset.Files {
	return dataset.Files{
		Occupations: dataset.File{Path: cfg.OccupationsPath, Encoding: cfg.OccupationsEncoding},
		Curricula:   dataset.File{Path: cfg.CurriculaPath, Encoding: cfg.CurriculaEncoding},
		Admissions:  dataset.File{Path: cfg.AdmissionsPath, Encoding: cfg.AdmissionsEncoding},
	}
}

func newOpenAIClient(cfg *config.Config) *openai.Client {
	return openai.NewClientWithConfig(openai.Config{
		APIKey:              cfg.OpenAIAPIKey,
		BaseURL:             cfg.OpenAIBaseURL,
		EmbeddingModel:      cfg.EmbeddingModel,
		EmbeddingDimensions: cfg.EmbeddingDimensions,
		ChatModel:           cfg.ChatModel,
		Temperature:         cfg.Temperature,
	})
}

// newBuilder picks the index backend. The returned cleanup releases the
// database pool when one was opened.
func newBuilder(ctx context.Context, cfg *config.Config, embedder index.Embedder, migrate bool) (index.Builder, func(), error) {
	if !cfg.UsesPostgres() {
		return index.NewMemoryBuilder(embedder), func() {}, nil
	}

	pool, err := database.NewPool(ctx, database.Config{URL: cfg.DatabaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	log.Println("connected to database")

	if migrate {
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	return index.NewPostgresBuilder(repository.NewTextUnitRepository(pool), embedder), pool.Close, nil
}

// initTelemetry starts Sentry when a DSN is configured.
func initTelemetry(cfg *config.Config) func() {
	if cfg.SentryDSN == "" {
		return func() {}
	}

	// 10% sampling in production, everything elsewhere
	sampleRate := 0.1
	if cfg.Environment == "development" {
		sampleRate = 1.0
	}

	shutdown, err := telemetry.Init(telemetry.Config{
		DSN:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		TracesSampleRate: sampleRate,
		Debug:            cfg.Debug,
	})
	if err != nil {
		log.Printf("telemetry init failed (continuing without tracing): %v", err)
		return func() {}
	}
	return shutdown
}
