package client

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAPIClientWithCmd_Cascade(t *testing.T) {
	useTempConfig(t)
	t.Setenv(envAPIURL, "")

	api, err := NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, defaultAPIURL, api.baseURL)

	require.NoError(t, SaveGlobalConfig(&GlobalConfig{APIURL: "http://config.test"}))
	api, err = NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://config.test", api.baseURL)

	t.Setenv(envAPIURL, "http://env.test/")
	api, err = NewAPIClientWithCmd(nil)
	require.NoError(t, err)
	assert.Equal(t, "http://env.test", api.baseURL)

	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().String("api-url", "", "")
	require.NoError(t, cmd.Flags().Set("api-url", "http://flag.test"))
	api, err = NewAPIClientWithCmd(cmd)
	require.NoError(t, err)
	assert.Equal(t, "http://flag.test", api.baseURL)
}

func TestAPIClient_Post(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/sessions/s-1/major", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, _ := io.ReadAll(r.Body)
		var req map[string]string
		assert.NoError(t, json.Unmarshal(body, &req))
		assert.Equal(t, "간호학과", req["major"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"id":"s-1"}}`))
	}))
	defer srv.Close()

	resp, err := NewAPIClientWithConfig(srv.URL).Post("/sessions/s-1/major", map[string]string{"major": "간호학과"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"s-1"}`, string(resp.Data))
}

func TestAPIClient_ErrorResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		w.Write([]byte(`{"error":"no major selected","code":"INVALID_OPERATION"}`))
	}))
	defer srv.Close()

	_, err := NewAPIClientWithConfig(srv.URL).Post("/sessions/s-1/curriculum", nil)
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, "INVALID_OPERATION", apiErr.Code)
	assert.Equal(t, "API error (409 INVALID_OPERATION): no major selected", apiErr.Error())
}

func TestAPIClient_NonJSONError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewAPIClientWithConfig(srv.URL).Get("/options")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "upstream down")
}

func TestAPIClient_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	resp, err := NewAPIClientWithConfig(srv.URL).Delete("/sessions/s-1")
	require.NoError(t, err)
	assert.Empty(t, resp.Data)
}
