package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"aesthetica/internal/knowledge"
	"aesthetica/internal/logger"
	"aesthetica/internal/model"
	"aesthetica/internal/service"
)

// maxBodyBytes leaves room for a data-URL avatar.
const maxBodyBytes = 8 << 20

type Handler struct {
	svc *service.Service
	log *logger.Logger
}

func NewHandler(svc *service.Service, log *logger.Logger) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	return &Handler{svc: svc, log: log.With("component", "httpapi")}
}

type startChallengeRequest struct {
	Type       string   `json:"type"`
	Categories []string `json:"categories,omitempty"`
}

type answerRequest struct {
	Answer string `json:"answer"`
}

type apiKeyRequest struct {
	APIKey string `json:"api_key"`
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats(r.Context()))
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Availability(r.Context()))
}

func (h *Handler) history(w http.ResponseWriter, r *http.Request) {
	filter := strings.TrimSpace(r.URL.Query().Get("filter"))
	items, err := h.svc.History(filter)
	if err != nil {
		h.writeServiceError(w, "history", err, "filter", filter)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filter": filter,
		"items":  items,
	})
}

func (h *Handler) badges(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"badges": h.svc.Badges()})
}

func (h *Handler) levels(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"levels": h.svc.Levels()})
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var req service.ProfileUpdate
	if !h.decode(w, r, "updateProfile", &req) {
		return
	}
	stats, err := h.svc.UpdateProfile(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, "updateProfile", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) setAPIKey(w http.ResponseWriter, r *http.Request) {
	var req apiKeyRequest
	if !h.decode(w, r, "setAPIKey", &req) {
		return
	}
	if err := h.svc.SetAPIKey(r.Context(), req.APIKey); err != nil {
		h.writeServiceError(w, "setAPIKey", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"configured": true})
}

func (h *Handler) startChallenge(w http.ResponseWriter, r *http.Request) {
	var req startChallengeRequest
	if !h.decode(w, r, "startChallenge", &req) {
		return
	}
	pool, err := knowledge.ResolvePool(req.Categories)
	if err != nil {
		h.log.Info("startChallenge bad request", "categories", req.Categories, "error", err)
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	taskType := model.TaskType(strings.ToUpper(strings.TrimSpace(req.Type)))

	task, err := h.svc.StartChallenge(r.Context(), taskType, pool)
	if err != nil {
		h.writeServiceError(w, "startChallenge", err, "task_type", taskType)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) activeChallenge(w http.ResponseWriter, _ *http.Request) {
	task, ok := h.svc.Active()
	if !ok {
		writeError(w, http.StatusNotFound, service.ErrChallengeNotFound.Error())
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) draftAnswer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req answerRequest
	if !h.decode(w, r, "draftAnswer", &req) {
		return
	}
	if err := h.svc.DraftAnswer(id, req.Answer); err != nil {
		h.writeServiceError(w, "draftAnswer", err, "challenge_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req answerRequest
	if !h.decode(w, r, "submit", &req) {
		return
	}
	result, err := h.svc.Submit(r.Context(), id, req.Answer)
	if err != nil {
		h.writeServiceError(w, "submit", err, "challenge_id", id)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	done, err := h.svc.Complete(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, "complete", err, "challenge_id", id)
		return
	}
	writeJSON(w, http.StatusOK, done)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.svc.Cancel(id); err != nil {
		h.writeServiceError(w, "cancel", err, "challenge_id", id)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// decode reads a JSON body; an empty body leaves dst untouched.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, op string, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		h.log.Info(op+" decode error", "error", err)
		writeError(w, http.StatusBadRequest, "request body is not valid JSON")
		return false
	}
	return true
}

func (h *Handler) writeServiceError(w http.ResponseWriter, op string, err error, keysAndValues ...interface{}) {
	status := statusFor(err)
	kv := append([]interface{}{"status", status, "error", err}, keysAndValues...)
	if status >= http.StatusInternalServerError {
		h.log.Warn(op+" failed", kv...)
	} else {
		h.log.Info(op+" rejected", kv...)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrUnsupportedTaskType):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrChallengeNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrQuotaReached),
		errors.Is(err, service.ErrAlreadySubmitted),
		errors.Is(err, service.ErrNotSubmitted),
		errors.Is(err, service.ErrSubmissionInFlight),
		errors.Is(err, service.ErrStaleChallenge):
		return http.StatusConflict
	case errors.Is(err, service.ErrSetupRequired):
		return http.StatusPreconditionRequired
	case errors.Is(err, service.ErrGenerate), errors.Is(err, service.ErrEvaluate):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{
		"error": message,
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
