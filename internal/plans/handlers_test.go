package plans

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fdg312/fitplan/internal/userctx"
)

func newTestMux(t *testing.T) *http.ServeMux {
	t.Helper()
	svc, _ := newTestService(t, testOptions())
	h := NewHandlers(svc, zerolog.Nop())
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/plans", h.HandleSave)
	mux.HandleFunc("POST /v1/plans/screenshot", h.HandleSaveScreenshot)
	mux.HandleFunc("GET /v1/plans", h.HandleList)
	mux.HandleFunc("GET /v1/plans/{id}", h.HandleGet)
	mux.HandleFunc("DELETE /v1/plans/{id}", h.HandleDelete)
	mux.HandleFunc("GET /v1/plans/{id}/image", h.HandleImage)
	mux.HandleFunc("GET /v1/plans/{id}/export.pdf", h.HandleExportPDF)
	return mux
}

func do(mux http.Handler, userID, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req = req.WithContext(userctx.WithIdentity(req.Context(), userctx.Identity{UserID: userID}))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func TestHandlers_SaveGetListDelete(t *testing.T) {
	mux := newTestMux(t)

	w := do(mux, "u1", http.MethodPost, "/v1/plans", `{"planType":"workout","plan":`+workoutJSON+`}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created PlanDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, "structured", created.Format)
	assert.JSONEq(t, workoutJSON, string(created.Plan))

	w = do(mux, "u1", http.MethodGet, "/v1/plans/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = do(mux, "u2", http.MethodGet, "/v1/plans/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(mux, "u1", http.MethodGet, "/v1/plans?limit=10", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list PlansResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&list))
	assert.Len(t, list.Plans, 1)
	assert.Equal(t, 10, list.Limit)

	w = do(mux, "u1", http.MethodGet, "/v1/plans/"+created.ID.String()+"/export.pdf", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))

	w = do(mux, "u1", http.MethodDelete, "/v1/plans/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = do(mux, "u1", http.MethodDelete, "/v1/plans/"+created.ID.String(), "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandlers_Screenshot(t *testing.T) {
	mux := newTestMux(t)

	body, _ := json.Marshal(SaveScreenshotRequest{PlanType: "meal", ImageData: pngDataURL(t)})
	w := do(mux, "u1", http.MethodPost, "/v1/plans/screenshot", string(body))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created PlanDTO
	require.NoError(t, json.NewDecoder(w.Body).Decode(&created))
	assert.Equal(t, "screenshot", created.Format)
	assert.Equal(t, "http://example.com/v1/plans/"+created.ID.String()+"/image", created.ImageURL)

	w = do(mux, "u1", http.MethodGet, "/v1/plans/"+created.ID.String()+"/image", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	w = do(mux, "u1", http.MethodPost, "/v1/plans/screenshot", `{"planType":"meal","imageData":"data:image/gif;base64,R0lGODlh"}`)
	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestHandlers_Errors(t *testing.T) {
	mux := newTestMux(t)

	tests := []struct {
		name   string
		user   string
		method string
		path   string
		body   string
		status int
	}{
		{"anonymous", "", http.MethodGet, "/v1/plans", "", http.StatusUnauthorized},
		{"bad id", "u1", http.MethodGet, "/v1/plans/not-a-uuid", "", http.StatusBadRequest},
		{"bad limit", "u1", http.MethodGet, "/v1/plans?limit=abc", "", http.StatusBadRequest},
		{"negative offset", "u1", http.MethodGet, "/v1/plans?offset=-1", "", http.StatusBadRequest},
		{"bad json", "u1", http.MethodPost, "/v1/plans", "{", http.StatusBadRequest},
		{"bad plan type", "u1", http.MethodPost, "/v1/plans", `{"planType":"x","plan":"text"}`, http.StatusBadRequest},
		{"text plan has no image", "u1", http.MethodGet, "/v1/plans/00000000-0000-0000-0000-000000000001/image", "", http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(mux, tt.user, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.status, w.Code, w.Body.String())
		})
	}
}
