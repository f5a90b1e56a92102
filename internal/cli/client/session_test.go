package client

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu       sync.Mutex
	requests []string
	profile  map[string]string
}

func (f *fakeAPI) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)
		f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		switch r.Method + " " + r.URL.Path {
		case "GET /options":
			w.Write([]byte(`{"data":{"grades":["고1","고2","고3"],"jobs":["의사"],"default_school":"경기고등학교","universities":["서울대"]}}`))
		case "POST /sessions":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"data":{"id":"s-9","screen":"home"}}`))
		case "POST /sessions/s-9/profile":
			f.mu.Lock()
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&f.profile))
			f.mu.Unlock()
			w.Write([]byte(`{"data":{"id":"s-9","screen":"major_selection","recommended_majors":["의예과"]}}`))
		case "POST /sessions/s-9/curriculum":
			w.WriteHeader(http.StatusConflict)
			w.Write([]byte(`{"error":"no major selected","code":"INVALID_OPERATION"}`))
		case "DELETE /sessions/s-9":
			w.WriteHeader(http.StatusNoContent)
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error":"not found"}`))
		}
	})
}

func runCmd(t *testing.T, cmd *cobra.Command, apiURL string, args ...string) error {
	t.Helper()
	root := &cobra.Command{Use: "dreamcourse", SilenceUsage: true, SilenceErrors: true}
	root.PersistentFlags().Bool("output", false, "")
	root.PersistentFlags().String("api-url", "", "")
	root.AddCommand(cmd)
	root.SetArgs(append(append([]string{cmd.Name()}, args...), "--api-url", apiURL))
	return root.Execute()
}

func TestStartCmd_CreatesSessionAndSubmitsProfile(t *testing.T) {
	useTempConfig(t)
	api := &fakeAPI{}
	srv := httptest.NewServer(api.handler(t))
	defer srv.Close()

	err := runCmd(t, StartCmd(), srv.URL, "--name", "김민수", "--job", "의사", "--grade", "고3")
	require.NoError(t, err)

	assert.Equal(t, []string{"GET /options", "POST /sessions", "POST /sessions/s-9/profile"}, api.requests)
	assert.Equal(t, "경기고등학교", api.profile["school"])
	assert.Equal(t, "고3", api.profile["grade"])

	id, err := CurrentSessionID("")
	require.NoError(t, err)
	assert.Equal(t, "s-9", id)
}

func TestStartCmd_RequiresJob(t *testing.T) {
	useTempConfig(t)

	err := runCmd(t, StartCmd(), "http://unused.test", "--name", "김민수")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "job")
}

func TestCurriculumCmd_SurfacesAPIError(t *testing.T) {
	useTempConfig(t)
	require.NoError(t, SaveSessionID("s-9"))
	srv := httptest.NewServer((&fakeAPI{}).handler(t))
	defer srv.Close()

	err := runCmd(t, CurriculumCmd(), srv.URL)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
}

func TestShowCmd_NoSession(t *testing.T) {
	useTempConfig(t)

	err := runCmd(t, ShowCmd(), "http://unused.test")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no active session")
}

func TestEndCmd_ForgetsSession(t *testing.T) {
	useTempConfig(t)
	require.NoError(t, SaveSessionID("s-9"))
	srv := httptest.NewServer((&fakeAPI{}).handler(t))
	defer srv.Close()

	require.NoError(t, runCmd(t, EndCmd(), srv.URL))

	_, err := CurrentSessionID("")
	assert.Error(t, err)
}

func TestPrintSession_Curriculum(t *testing.T) {
	view := &SessionView{
		ID:            "s-1",
		Screen:        "curriculum",
		Profile:       &ProfileView{Name: "김민수", School: "경기고등학교", Job: "소프트웨어 개발자", Grade: 2},
		SelectedMajor: "컴퓨터공학과",
		MajorComment:  "코딩을 좋아하는 학생에게 추천",
		CurriculumTable: &TableView{
			Columns: []string{"학년", "공통과목"},
			Records: []map[string]string{{"학년": "1", "공통과목": "공통수학1"}},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, printSession(&buf, view))

	out := buf.String()
	assert.Contains(t, out, "Session s-1 [curriculum]")
	assert.Contains(t, out, "김민수 (경기고등학교, 고2)")
	assert.Contains(t, out, "코딩을 좋아하는 학생에게 추천")
	assert.Contains(t, out, "공통수학1")
	assert.Contains(t, out, "(no rows)")
}

func TestPrintSession_Halted(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSession(&buf, &SessionView{ID: "s-1", Screen: "home", Fault: "semantic index build failed"}))

	assert.Contains(t, buf.String(), "Halted: semantic index build failed")
}
