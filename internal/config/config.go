package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const envPrefix = "DREAMCOURSE"

type Config struct {
	Port        string `envconfig:"PORT" default:"8080"`
	Debug       bool   `envconfig:"DEBUG" default:"false"`
	Environment string `envconfig:"ENVIRONMENT" default:"development"`
	SentryDSN   string `envconfig:"SENTRY_DSN"`

	OpenAIAPIKey        string  `envconfig:"OPENAI_API_KEY"`
	OpenAIBaseURL       string  `envconfig:"OPENAI_BASE_URL"`
	EmbeddingModel      string  `envconfig:"EMBEDDING_MODEL" default:"text-embedding-ada-002"`
	EmbeddingDimensions int     `envconfig:"EMBEDDING_DIMENSIONS" default:"1536"`
	ChatModel           string  `envconfig:"CHAT_MODEL" default:"gpt-3.5-turbo"`
	Temperature         float32 `envconfig:"TEMPERATURE" default:"0"`

	TopKMajor      int `envconfig:"TOP_K_MAJOR" default:"4"`
	TopKCurriculum int `envconfig:"TOP_K_CURRICULUM" default:"4"`
	TopKAdmission  int `envconfig:"TOP_K_ADMISSION" default:"4"`

	DataSource          string `envconfig:"DATA_SOURCE" default:"file"`
	DataDir             string `envconfig:"DATA_DIR" default:"."`
	OccupationsPath     string `envconfig:"OCCUPATIONS_PATH" default:"학과정보_수정.csv"`
	OccupationsEncoding string `envconfig:"OCCUPATIONS_ENCODING" default:"cp949"`
	CurriculaPath       string `envconfig:"CURRICULA_PATH" default:"커리큘럼_수정.csv"`
	CurriculaEncoding   string `envconfig:"CURRICULA_ENCODING" default:"utf-8"`
	AdmissionsPath      string `envconfig:"ADMISSIONS_PATH" default:"입결정보_수정.csv"`
	AdmissionsEncoding  string `envconfig:"ADMISSIONS_ENCODING" default:"cp949"`

	IndexBackend string `envconfig:"INDEX_BACKEND" default:"memory"`
	IndexScope   string `envconfig:"INDEX_SCOPE" default:"session"`
	DatabaseURL  string `envconfig:"DATABASE_URL"`

	S3Endpoint  string `envconfig:"S3_ENDPOINT"`
	S3AccessKey string `envconfig:"S3_ACCESS_KEY_ID"`
	S3SecretKey string `envconfig:"S3_SECRET_ACCESS_KEY"`
	S3Bucket    string `envconfig:"S3_BUCKET" default:"dreamcourse-datasets"`
	S3Region    string `envconfig:"S3_REGION" default:"us-east-1"`
	S3Prefix    string `envconfig:"S3_PREFIX"`

	SessionTTL           time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SessionSweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`

	AdmissionUniversities []string `envconfig:"ADMISSION_UNIVERSITIES" default:"서울대,연세대,고려대"`
	JobOptions            []string `envconfig:"JOB_OPTIONS" default:"소프트웨어 개발자,사회복지사,스포츠해설가,데이터 과학자,의사,변호사,교사,디자이너,기계공학자,건축가"`
	DefaultSchool         string   `envconfig:"DEFAULT_SCHOOL" default:"경기고등학교"`
}

// Load reads .env (if present) and the DREAMCOURSE_ environment. Explicitly
// tagged keys also fall back to their unprefixed names, so a plain
// OPENAI_API_KEY works.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

// Validate checks everything needed to answer questions.
func (c *Config) Validate() error {
	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("%s_OPENAI_API_KEY (or OPENAI_API_KEY) is required", envPrefix)
	}
	if c.EmbeddingDimensions <= 0 {
		return fmt.Errorf("EMBEDDING_DIMENSIONS must be positive, got %d", c.EmbeddingDimensions)
	}
	if c.TopKMajor < 1 || c.TopKCurriculum < 1 || c.TopKAdmission < 1 {
		return fmt.Errorf("TOP_K values must be at least 1")
	}
	switch c.IndexBackend {
	case "memory":
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("INDEX_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown INDEX_BACKEND %q (want memory or postgres)", c.IndexBackend)
	}
	switch c.IndexScope {
	case "session", "process":
	default:
		return fmt.Errorf("unknown INDEX_SCOPE %q (want session or process)", c.IndexScope)
	}
	if c.SessionTTL <= 0 || c.SessionSweepInterval <= 0 {
		return fmt.Errorf("SESSION_TTL and SESSION_SWEEP_INTERVAL must be positive")
	}
	return c.ValidateDataset()
}

// ValidateDataset checks only what loading the CSV tables needs.
func (c *Config) ValidateDataset() error {
	switch c.DataSource {
	case "file":
	case "s3":
		if !c.HasS3() {
			return fmt.Errorf("DATA_SOURCE=s3 requires S3_ENDPOINT, S3_ACCESS_KEY_ID and S3_SECRET_ACCESS_KEY")
		}
	default:
		return fmt.Errorf("unknown DATA_SOURCE %q (want file or s3)", c.DataSource)
	}
	return nil
}

func (c *Config) HasS3() bool {
	return c.S3Endpoint != "" && c.S3AccessKey != "" && c.S3SecretKey != ""
}

func (c *Config) UsesPostgres() bool {
	return c.IndexBackend == "postgres"
}

// TopK maps each intent to its retrieval depth.
func (c *Config) TopK() map[domain.Intent]int {
	return map[domain.Intent]int{
		domain.IntentMajorRecommendation: c.TopKMajor,
		domain.IntentCurriculumPlan:      c.TopKCurriculum,
		domain.IntentAdmissionCutoffs:    c.TopKAdmission,
	}
}

// Universities returns the trimmed, non-empty admission universities.
func (c *Config) Universities() []string {
	return trimAll(c.AdmissionUniversities)
}

// Jobs returns the trimmed, non-empty job options.
func (c *Config) Jobs() []string {
	return trimAll(c.JobOptions)
}

func trimAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
