package handlers

import (
	"net/http"

	"github.com/cloo-solutions/dreamcourse/internal/api"
	"github.com/cloo-solutions/dreamcourse/internal/domain"
)

// Options are the choices offered on the home screen.
type Options struct {
	Grades        []string `json:"grades"`
	Jobs          []string `json:"jobs"`
	DefaultSchool string   `json:"default_school"`
	Universities  []string `json:"universities"`
}

type OptionsHandler struct {
	opts Options
}

func NewOptionsHandler(jobs, universities []string, defaultSchool string) *OptionsHandler {
	return &OptionsHandler{opts: Options{
		Grades:        domain.GradeOptions,
		Jobs:          jobs,
		DefaultSchool: defaultSchool,
		Universities:  universities,
	}}
}

func (h *OptionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	api.Success(w, http.StatusOK, h.opts)
}
