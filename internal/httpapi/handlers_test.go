package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aesthetica/internal/calendar"
	"aesthetica/internal/logger"
	"aesthetica/internal/model"
	"aesthetica/internal/persist"
	"aesthetica/internal/service"
	"aesthetica/internal/store"
)

type stubProvider struct {
	n   int
	err error
}

func (p *stubProvider) GenerateChallenge(_ context.Context, _ string, taskType model.TaskType, pool []model.Category) (model.Challenge, error) {
	if p.err != nil {
		return model.Challenge{}, p.err
	}
	p.n++
	c := model.Challenge{
		ID:       fmt.Sprintf("ch-%d", p.n),
		Category: model.CategoryColorTheory,
		Type:     taskType,
		Question: "Which palette feels calmest?",
	}
	if len(pool) > 0 {
		c.Category = pool[0]
	}
	if taskType == model.TaskMultipleChoice {
		c.Options = []string{"A", "B", "C", "D"}
		c.OptionScores = []int{100, 50, 20, 0}
		c.CorrectOptionIndex = model.IntPtr(0)
	}
	return c, nil
}

type stubEvaluator struct {
	err error
}

func (e *stubEvaluator) EvaluateSubmission(context.Context, string, model.Challenge, string) (model.AssessmentResult, error) {
	if e.err != nil {
		return model.AssessmentResult{}, e.err
	}
	return model.AssessmentResult{Score: 90, Feedback: "Good eye.", Strengths: []string{}, Improvements: []string{}}, nil
}

func newTestRouter(t *testing.T, apiKey string, provider *stubProvider, evaluator *stubEvaluator) http.Handler {
	t.Helper()
	st, err := store.NewJSONStore(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	svc := service.New(service.Deps{
		Repo:      persist.New(st, logger.Nop()),
		Provider:  provider,
		Evaluator: evaluator,
		Clock:     calendar.NewFakeClock(time.Date(2026, 4, 10, 12, 0, 0, 0, time.UTC)),
		Location:  time.UTC,
		APIKey:    apiKey,
		Tick:      time.Hour,
	})
	svc.Load(context.Background())
	t.Cleanup(svc.Close)
	return NewRouter(NewHandler(svc, logger.Nop()), logger.Nop())
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), "body=%s", rec.Body.String())
	return out
}

func TestChallengeLifecycleOverHTTP(t *testing.T) {
	h := newTestRouter(t, "sk-test-0123456789", &stubProvider{}, &stubEvaluator{})

	rec := do(t, h, http.MethodPost, "/api/v1/challenges", map[string]any{
		"type":       "multiple_choice",
		"categories": []string{"Color Theory"},
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	task := decodeBody[service.ActiveTask](t, rec)
	assert.Equal(t, model.CategoryColorTheory, task.Challenge.Category)
	assert.Nil(t, task.Challenge.OptionScores)
	id := task.Challenge.ID

	rec = do(t, h, http.MethodPut, "/api/v1/challenges/"+id+"/draft", map[string]string{"answer": "B"})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/challenges/active", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "B", decodeBody[service.ActiveTask](t, rec).Draft)

	rec = do(t, h, http.MethodPost, "/api/v1/challenges/"+id+"/complete", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/challenges/"+id+"/submit", map[string]string{"answer": "C"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 20, decodeBody[model.AssessmentResult](t, rec).Score)

	rec = do(t, h, http.MethodPost, "/api/v1/challenges/"+id+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	done := decodeBody[service.Completion](t, rec)
	assert.Equal(t, 70, done.XPGained)
	assert.True(t, done.Continue)

	rec = do(t, h, http.MethodGet, "/api/v1/challenges/active", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/v1/history?filter=errors", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	hist := decodeBody[struct {
		Items []model.HistoryItem `json:"items"`
	}](t, rec)
	assert.Len(t, hist.Items, 1)
}

func TestStartChallengeErrors(t *testing.T) {
	h := newTestRouter(t, "", &stubProvider{}, &stubEvaluator{})

	rec := do(t, h, http.MethodPost, "/api/v1/challenges", map[string]string{"type": "OBSERVATION"})
	assert.Equal(t, http.StatusPreconditionRequired, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/challenges", map[string]any{"type": "OBSERVATION", "categories": []string{"sculpture"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/api/v1/challenges", map[string]string{"type": "ESSAY"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/challenges", bytes.NewBufferString("{not json"))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGenerationFailureReturns502(t *testing.T) {
	h := newTestRouter(t, "sk-test-0123456789", &stubProvider{err: errors.New("boom")}, &stubEvaluator{})

	rec := do(t, h, http.MethodPost, "/api/v1/challenges", map[string]string{"type": "ANALYSIS"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody[map[string]string](t, rec)
	assert.Contains(t, body["error"], service.ErrGenerate.Error())
}

func TestEvaluationFailureReturns502AndKeepsTask(t *testing.T) {
	evaluator := &stubEvaluator{err: errors.New("timeout")}
	h := newTestRouter(t, "sk-test-0123456789", &stubProvider{}, evaluator)

	rec := do(t, h, http.MethodPost, "/api/v1/challenges", map[string]string{"type": "OBSERVATION"})
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decodeBody[service.ActiveTask](t, rec).Challenge.ID

	rec = do(t, h, http.MethodPost, "/api/v1/challenges/"+id+"/submit", map[string]string{"answer": "warm light"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	evaluator.err = nil
	rec = do(t, h, http.MethodPost, "/api/v1/challenges/"+id+"/submit", map[string]string{})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 90, decodeBody[model.AssessmentResult](t, rec).Score)
}

func TestCancelUnknownChallengeReturns404(t *testing.T) {
	h := newTestRouter(t, "sk-test-0123456789", &stubProvider{}, &stubEvaluator{})
	rec := do(t, h, http.MethodDelete, "/api/v1/challenges/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettingsAndProfile(t *testing.T) {
	h := newTestRouter(t, "", &stubProvider{}, &stubEvaluator{})

	rec := do(t, h, http.MethodGet, "/api/v1/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[service.StatsView](t, rec).SetupNeeded)

	rec = do(t, h, http.MethodPut, "/api/v1/settings/api-key", map[string]string{"api_key": "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = do(t, h, http.MethodPut, "/api/v1/settings/api-key", map[string]string{"api_key": "sk-valid-key-123"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodPut, "/api/v1/profile", map[string]string{"username": "Ines"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ines", decodeBody[model.UserStats](t, rec).Username)

	rec = do(t, h, http.MethodGet, "/api/v1/stats", nil)
	view := decodeBody[service.StatsView](t, rec)
	assert.False(t, view.SetupNeeded)
	assert.Equal(t, "Ines", view.Stats.Username)
}

func TestCatalogEndpoints(t *testing.T) {
	h := newTestRouter(t, "", &stubProvider{}, &stubEvaluator{})

	rec := do(t, h, http.MethodGet, "/api/v1/badges", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"first_step"`)

	rec = do(t, h, http.MethodGet, "/api/v1/levels", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"levels"`)

	rec = do(t, h, http.MethodGet, "/api/v1/availability", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"mcq_remaining":10`)

	rec = do(t, h, http.MethodGet, "/api/v1/history?filter=nope", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodGet, "/docs/openapi.json", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	spec := decodeBody[map[string]any](t, rec)
	paths, ok := spec["paths"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, paths, "/api/v1/challenges/{id}/submit")
}
