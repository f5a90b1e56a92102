package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOptionsHandler_Get(t *testing.T) {
	handler := NewOptionsHandler([]string{"소프트웨어 개발자", "의사"}, []string{"서울대"}, "경기고등학교")

	w := httptest.NewRecorder()
	handler.Get(w, httptest.NewRequest(http.MethodGet, "/options", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeView(t, w)
	assert.Equal(t, []interface{}{"고1", "고2", "고3"}, data["grades"])
	assert.Equal(t, []interface{}{"소프트웨어 개발자", "의사"}, data["jobs"])
	assert.Equal(t, "경기고등학교", data["default_school"])
	assert.Equal(t, []interface{}{"서울대"}, data["universities"])
}
