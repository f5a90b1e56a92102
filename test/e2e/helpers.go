//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"hash/fnv"
	"io"
	"math"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cloo-solutions/dreamcourse/internal/api/handlers"
	"github.com/cloo-solutions/dreamcourse/internal/dataset"
	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/cloo-solutions/dreamcourse/internal/index"
	"github.com/cloo-solutions/dreamcourse/internal/openai"
	"github.com/cloo-solutions/dreamcourse/internal/prompt"
	"github.com/cloo-solutions/dreamcourse/internal/repository"
	"github.com/cloo-solutions/dreamcourse/internal/server"
	"github.com/cloo-solutions/dreamcourse/internal/service"
	"github.com/cloo-solutions/dreamcourse/internal/storage"
	"github.com/cloo-solutions/dreamcourse/internal/testutil"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/text/encoding/korean"
)

const (
	embeddingDims = 64
	datasetPrefix = "v1"
)

// Dataset files as operators upload them: occupations and admissions in
// cp949, curricula in UTF-8.
var datasetCSV = map[string]string{
	"occupations.csv": "직업명,영역,추천학과\n" +
		"소프트웨어 개발자,IT,\"컴퓨터공학과, 소프트웨어학과\"\n" +
		"사회복지사,사회,사회복지학과\n" +
		"간호사,의료,간호학과\n",
	"curricula.csv": "학과,학년,학기,공통과목,기본선택과목,일반선택과목,진로선택과목,융합과목,코멘트\n" +
		"컴퓨터공학과,1,1,공통수학1,,,,,코딩을 좋아하는 학생에게 추천\n" +
		"컴퓨터공학과,2,1,,,확률과 통계,정보,,\n" +
		"간호학과,1,1,통합과학1,,,,,\n",
	"admissions.csv": "대학명,학과,전형명,인원,경쟁률,50% 컷,70% 컷\n" +
		"서울대,컴퓨터공학부,지역균형,10,5.2,1.3,1.5\n" +
		"연세대,간호학과,활동우수,20,7.1,2.0,2.4\n",
}

var datasetEncoding = map[string]string{
	"occupations.csv": "cp949",
	"curricula.csv":   "utf-8",
	"admissions.csv":  "cp949",
}

const (
	majorReply = `| 관련 직업명 | 직업 설명 | 추천 학과 |
|---|---|---|
| 소프트웨어 개발자 | 컴퓨터 프로그램을 설계하고 개발하는 직업입니다 | 컴퓨터공학과, 소프트웨어학과 |
`
	curriculumReply = `| 학기정보 | 공통과목 | 기본선택과목 | 일반선택과목 | 진로선택과목 | 융합과목 |
|---|---|---|---|---|---|
| 1학년 1학기 | 공통수학1 | 없음 | 없음 | 없음 | 없음 |
| 2학년 1학기 | 없음 | 없음 | 확률과 통계 | 정보 | 없음 |
`
	admissionReply = `| 대학명 | 학과명 | 전형명 | 모집인원 | 경쟁률 | 50% 컷 | 70% 컷 |
|---|---|---|---|---|---|---|
| 서울대 | 컴퓨터공학부 | 지역균형 | 10 | 5.2 | 1.3 | 1.5 |
`
)

// FakeOpenAI serves the embeddings and chat completions endpoints with
// deterministic answers.
type FakeOpenAI struct {
	Server *httptest.Server

	embedCalls atomic.Int32
	chatCalls  atomic.Int32
	failChat   atomic.Bool

	mu      sync.Mutex
	prompts []string
}

func NewFakeOpenAI(t *testing.T) *FakeOpenAI {
	f := &FakeOpenAI{}
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/embeddings", f.embeddings)
	mux.HandleFunc("/v1/chat/completions", f.chat)
	f.Server = httptest.NewServer(mux)
	t.Cleanup(f.Server.Close)
	return f
}

func (f *FakeOpenAI) BaseURL() string {
	return f.Server.URL + "/v1"
}

// FailChat makes completions return 500 until reset.
func (f *FakeOpenAI) FailChat(fail bool) {
	f.failChat.Store(fail)
}

func (f *FakeOpenAI) EmbedCalls() int {
	return int(f.embedCalls.Load())
}

func (f *FakeOpenAI) ChatCalls() int {
	return int(f.chatCalls.Load())
}

func (f *FakeOpenAI) Prompts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.prompts...)
}

func (f *FakeOpenAI) embeddings(w http.ResponseWriter, r *http.Request) {
	f.embedCalls.Add(1)

	var req struct {
		Input []string `json:"input"`
		Model string   `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	type item struct {
		Object    string    `json:"object"`
		Embedding []float32 `json:"embedding"`
		Index     int       `json:"index"`
	}
	data := make([]item, len(req.Input))
	for i, text := range req.Input {
		data[i] = item{Object: "embedding", Embedding: bigramVector(text), Index: i}
	}

	writeJSON(w, map[string]interface{}{
		"object": "list",
		"data":   data,
		"model":  req.Model,
		"usage":  map[string]int{"prompt_tokens": 0, "total_tokens": 0},
	})
}

func (f *FakeOpenAI) chat(w http.ResponseWriter, r *http.Request) {
	f.chatCalls.Add(1)
	if f.failChat.Load() {
		http.Error(w, `{"error":{"message":"overloaded","type":"server_error"}}`, http.StatusInternalServerError)
		return
	}

	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Messages) == 0 {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	content := req.Messages[len(req.Messages)-1].Content

	f.mu.Lock()
	f.prompts = append(f.prompts, content)
	f.mu.Unlock()

	reply := majorReply
	switch {
	case strings.Contains(content, prompt.CurriculumSchema.HeaderRow()):
		reply = curriculumReply
	case strings.Contains(content, prompt.AdmissionSchema.HeaderRow()):
		reply = admissionReply
	}

	writeJSON(w, map[string]interface{}{
		"id":      "chatcmpl-e2e",
		"object":  "chat.completion",
		"created": time.Now().Unix(),
		"model":   req.Model,
		"choices": []map[string]interface{}{{
			"index":         0,
			"message":       map[string]string{"role": "assistant", "content": reply},
			"finish_reason": "stop",
		}},
	})
}

// bigramVector hashes rune bigrams into a unit vector so texts sharing
// words land close together.
func bigramVector(text string) []float32 {
	vec := make([]float32, embeddingDims)
	runes := []rune(strings.ReplaceAll(text, " ", ""))
	for i := 0; i+1 < len(runes); i++ {
		h := fnv.New32a()
		h.Write([]byte(string(runes[i : i+2])))
		vec[h.Sum32()%embeddingDims]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	n := float32(math.Sqrt(norm))
	for i := range vec {
		vec[i] /= n
	}
	return vec
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

// E2ETestEnv holds all resources needed for E2E tests
type E2ETestEnv struct {
	T            *testing.T
	Ctx          context.Context
	PostgresC    *testutil.PostgresContainer
	RustFSC      *testutil.RustFSContainer
	Pool         *pgxpool.Pool
	S3Client     *storage.S3Client
	OpenAI       *FakeOpenAI
	Sessions     *service.SessionService
	ServerURL    string
	ServerCloser func()
	BinaryDir    string
	HTTPClient   *http.Client
}

// SetupE2EEnv uploads the dataset to RustFS, starts Postgres with the
// pgvector index backend and serves the API in-process.
func SetupE2EEnv(t *testing.T) *E2ETestEnv {
	ctx := context.Background()

	pgC := testutil.NewPostgresContainer(ctx, t)
	s3C := testutil.NewRustFSContainer(ctx, t)
	pool := testutil.NewTestPool(ctx, t, pgC)

	s3Client, err := storage.NewS3Client(ctx, storage.S3ClientConfig{
		Endpoint:        s3C.Endpoint(),
		Region:          "us-east-1",
		AccessKeyID:     "rustfsadmin",
		SecretAccessKey: "rustfsadmin",
		Bucket:          "e2e-datasets",
		UsePathStyle:    true,
	})
	if err != nil {
		t.Fatalf("failed to create S3 client: %v", err)
	}
	if err := s3Client.EnsureBucket(ctx); err != nil {
		t.Fatalf("failed to create bucket: %v", err)
	}
	uploadDataset(t, ctx, s3Client)

	env := &E2ETestEnv{
		T:          t,
		Ctx:        ctx,
		PostgresC:  pgC,
		RustFSC:    s3C,
		Pool:       pool,
		S3Client:   s3Client,
		OpenAI:     NewFakeOpenAI(t),
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
	}

	port, err := getFreePort()
	if err != nil {
		t.Fatalf("failed to get free port: %v", err)
	}
	env.startServer(port)

	return env
}

func uploadDataset(t *testing.T, ctx context.Context, client *storage.S3Client) {
	for name, body := range datasetCSV {
		if datasetEncoding[name] == "cp949" {
			encoded, err := korean.EUCKR.NewEncoder().String(body)
			if err != nil {
				t.Fatalf("failed to encode %s: %v", name, err)
			}
			body = encoded
		}
		key := datasetPrefix + "/" + name
		if err := client.PutObject(ctx, key, bytes.NewBufferString(body), "text/csv"); err != nil {
			t.Fatalf("failed to upload %s: %v", key, err)
		}
	}
}

func datasetFiles() dataset.Files {
	return dataset.Files{
		Occupations: dataset.File{Path: "occupations.csv", Encoding: datasetEncoding["occupations.csv"]},
		Curricula:   dataset.File{Path: "curricula.csv", Encoding: datasetEncoding["curricula.csv"]},
		Admissions:  dataset.File{Path: "admissions.csv", Encoding: datasetEncoding["admissions.csv"]},
	}
}

// Cleanup releases all resources
func (e *E2ETestEnv) Cleanup() {
	if e.ServerCloser != nil {
		e.ServerCloser()
	}
	if e.Pool != nil {
		e.Pool.Close()
	}
	if e.RustFSC != nil {
		e.RustFSC.Terminate(e.Ctx)
	}
	if e.PostgresC != nil {
		e.PostgresC.Terminate(e.Ctx)
	}
	if e.BinaryDir != "" {
		os.RemoveAll(e.BinaryDir)
	}
}

func (e *E2ETestEnv) startServer(port int) {
	t := e.T

	ds, err := dataset.NewLoader(dataset.S3Source{Client: e.S3Client, Prefix: datasetPrefix}).Load(e.Ctx, datasetFiles())
	if err != nil {
		t.Fatalf("failed to load dataset: %v", err)
	}
	units, err := service.Synthesize(ds)
	if err != nil {
		t.Fatalf("failed to synthesize: %v", err)
	}

	client := openai.NewClientWithConfig(openai.Config{
		APIKey:              "sk-e2e",
		BaseURL:             e.OpenAI.BaseURL(),
		EmbeddingDimensions: embeddingDims,
	})

	universities := []string{"서울대", "연세대", "고려대"}
	e.Sessions = service.NewSessionService(
		repository.NewMemorySessionStore(),
		service.NewAnswerService(client, map[domain.Intent]int{
			domain.IntentMajorRecommendation: 2,
			domain.IntentCurriculumPlan:      2,
			domain.IntentAdmissionCutoffs:    2,
		}),
		prompt.NewRegistry(),
		&service.BuildPerSession{
			Builder: index.NewPostgresBuilder(repository.NewTextUnitRepository(e.Pool), client),
			Units:   units,
		},
		service.SessionOptions{
			Universities: universities,
			Comments:     service.MajorComments(ds.Curricula),
		},
	)

	router := server.NewRouter(server.RouterConfig{
		SessionHandler: handlers.NewSessionHandler(e.Sessions),
		OptionsHandler: handlers.NewOptionsHandler([]string{"소프트웨어 개발자", "간호사"}, universities, "경기고등학교"),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: router,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			t.Logf("server error: %v", err)
		}
	}()

	e.ServerURL = fmt.Sprintf("http://localhost:%d", port)
	waitForServer(t, e.ServerURL, 10*time.Second)

	e.ServerCloser = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(ctx)
		e.Sessions.Close(ctx)
	}
}

// CountIndexedUnits returns how many text_units rows are stored.
func (e *E2ETestEnv) CountIndexedUnits() int {
	var n int
	if err := e.Pool.QueryRow(e.Ctx, "SELECT count(*) FROM text_units").Scan(&n); err != nil {
		e.T.Fatalf("failed to count text units: %v", err)
	}
	return n
}

// BuildBinaries builds the dreamcourse and dreamcoursed binaries
func (e *E2ETestEnv) BuildBinaries() {
	tmpDir, err := os.MkdirTemp("", "dreamcourse-e2e-*")
	if err != nil {
		e.T.Fatalf("failed to create temp dir: %v", err)
	}
	e.BinaryDir = tmpDir

	for _, name := range []string{"dreamcoursed", "dreamcourse"} {
		cmd := exec.Command("go", "build", "-o", filepath.Join(tmpDir, name), "./cmd/"+name)
		cmd.Dir = "../.."
		if out, err := cmd.CombinedOutput(); err != nil {
			e.T.Fatalf("failed to build %s: %v\n%s", name, err, out)
		}
	}
}

// RunCLI runs the client CLI against the test server with an isolated config dir.
func (e *E2ETestEnv) RunCLI(configHome string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "dreamcourse"), args...)
	cmd.Env = append(os.Environ(),
		"DREAMCOURSE_API_URL="+e.ServerURL,
		"XDG_CONFIG_HOME="+configHome,
		"HOME="+configHome,
	)
	out, err := cmd.CombinedOutput()
	return string(out), err
}

// RunDaemon runs a dreamcoursed subcommand with extra environment.
func (e *E2ETestEnv) RunDaemon(env []string, args ...string) (string, error) {
	cmd := exec.Command(filepath.Join(e.BinaryDir, "dreamcoursed"), args...)
	cmd.Env = append(os.Environ(), env...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return stdout.String() + stderr.String(), err
	}
	return stdout.String(), nil
}

// APIResponse represents the standard API response format
type APIResponse struct {
	StatusCode int
	Data       json.RawMessage `json:"data,omitempty"`
	Error      string          `json:"error,omitempty"`
	Code       string          `json:"code,omitempty"`
}

func (e *E2ETestEnv) Get(path string) (*APIResponse, error) {
	return e.doRequest(http.MethodGet, path, nil)
}

func (e *E2ETestEnv) Post(path string, body interface{}) (*APIResponse, error) {
	return e.doRequest(http.MethodPost, path, body)
}

func (e *E2ETestEnv) Delete(path string) (*APIResponse, error) {
	return e.doRequest(http.MethodDelete, path, nil)
}

func (e *E2ETestEnv) doRequest(method, path string, body interface{}) (*APIResponse, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(e.Ctx, method, e.ServerURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	apiResp := &APIResponse{StatusCode: resp.StatusCode}
	if len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, apiResp); err != nil {
			return nil, fmt.Errorf("failed to parse response (status %d): %s", resp.StatusCode, respBody)
		}
	}

	if resp.StatusCode >= 400 {
		return apiResp, fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiResp.Error)
	}
	return apiResp, nil
}

func waitForServer(t *testing.T, url string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(url + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(100 * time.Millisecond)
	}
	t.Fatalf("server did not start within %v", timeout)
}

func getFreePort() (int, error) {
	addr, err := net.ResolveTCPAddr("tcp", "localhost:0")
	if err != nil {
		return 0, err
	}

	l, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return 0, err
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port, nil
}
