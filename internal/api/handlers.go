package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/itstheanurag/codejudge/internal/executor"
	"github.com/itstheanurag/codejudge/internal/jobs"
	"github.com/itstheanurag/codejudge/internal/judge"
	"github.com/itstheanurag/codejudge/internal/judgeerr"
	"github.com/rs/zerolog"
)

// MaxBodyBytes bounds a submission request.
const MaxBodyBytes = 32 << 20

type Jobs interface {
	Submit(sub judge.Submission) (string, error)
	Poll(ctx context.Context, id string) (*jobs.Payload, error)
}

type Images interface {
	ImageStatus(ctx context.Context, langID string) (*executor.ImageStatus, error)
	EnsureLanguageImage(ctx context.Context, langID string) error
}

type SubmitResponse struct {
	JobID string `json:"jobId"`
}

type PullRequest struct {
	Language string `json:"language"`
}

type Handler struct {
	jobs   Jobs
	images Images
	logger *zerolog.Logger
}

func NewHandler(j Jobs, images Images, logger *zerolog.Logger) *Handler {
	return &Handler{
		jobs:   j,
		images: images,
		logger: logger,
	}
}

// Run judges the test cases supplied in the request.
func (h *Handler) Run(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, judge.ModeRun)
}

// Submit judges the next chunk of official tests.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, judge.ModeSubmit)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request, mode judge.Mode) {
	var sub judge.Submission
	if !decode(w, r, &sub) {
		return
	}
	sub.Mode = mode

	id, err := h.jobs.Submit(sub)
	if err != nil {
		h.fail(w, err)
		return
	}
	h.logger.Debug().Str("job_id", id).Str("mode", string(mode)).Msg("job accepted")
	writeJSON(w, http.StatusAccepted, SubmitResponse{JobID: id})
}

func (h *Handler) Poll(w http.ResponseWriter, r *http.Request) {
	p, err := h.jobs.Poll(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) ImageStatus(w http.ResponseWriter, r *http.Request) {
	lang := r.URL.Query().Get("language")
	if lang == "" {
		h.fail(w, judgeerr.New(judgeerr.KindInvalid, "language is required"))
		return
	}
	status, err := h.images.ImageStatus(r.Context(), lang)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

// PullImage provisions the language image and the grading image.
func (h *Handler) PullImage(w http.ResponseWriter, r *http.Request) {
	var req PullRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Language == "" {
		h.fail(w, judgeerr.New(judgeerr.KindInvalid, "language is required"))
		return
	}
	if err := h.images.EnsureLanguageImage(r.Context(), req.Language); err != nil {
		h.fail(w, err)
		return
	}
	status, err := h.images.ImageStatus(r.Context(), req.Language)
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func statusFor(kind judgeerr.Kind) int {
	switch kind {
	case judgeerr.KindInvalid, judgeerr.KindUnsupported:
		return http.StatusBadRequest
	case judgeerr.KindNotFound:
		return http.StatusNotFound
	case judgeerr.KindConfiguration:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) fail(w http.ResponseWriter, err error) {
	code := statusFor(judgeerr.KindOf(err))
	if code == http.StatusInternalServerError {
		h.logger.Error().Err(err).Msg("request failed")
	}
	writeError(w, code, err.Error())
}

func writeError(w http.ResponseWriter, code int, msg string) {
	writeJSON(w, code, map[string]string{"error": msg})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
