package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newMockOpenAI starts a server that records the last chat request and
// replies with status and body.
func newMockOpenAI(t *testing.T, status int, body any) (*httptest.Server, *map[string]any) {
	t.Helper()
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&captured)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &captured
}

func chatResponse(content string) map[string]any {
	return map[string]any{
		"id":    "chatcmpl-1",
		"model": "gpt-3.5-turbo",
		"choices": []map[string]any{
			{"index": 0, "finish_reason": "stop", "message": map[string]any{"role": "assistant", "content": content}},
		},
		"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30},
	}
}

func TestOpenAIProvider_Complete(t *testing.T) {
	srv, captured := newMockOpenAI(t, http.StatusOK, chatResponse(`  {"mainWorkout":[]}  `))
	p := NewOpenAIProvider(OpenAIOptions{APIKey: "test", BaseURL: srv.URL + "/v1"})

	temperature := 0.7
	req := UserPrompt("meal", "plan my meals")
	req.MaxTokens = 1500
	req.Temperature = &temperature

	got, err := p.Complete(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, `{"mainWorkout":[]}`, got.Text)
	assert.Equal(t, "stop", got.FinishReason)
	assert.Equal(t, 30, got.TotalTokens)

	sent := *captured
	assert.Equal(t, "gpt-3.5-turbo", sent["model"])
	assert.EqualValues(t, 1500, sent["max_tokens"])
	assert.InDelta(t, 0.7, sent["temperature"], 1e-6)
	messages := sent["messages"].([]any)
	require.Len(t, messages, 1)
	assert.Equal(t, "user", messages[0].(map[string]any)["role"])
	assert.Equal(t, "plan my meals", messages[0].(map[string]any)["content"])
	assert.NotContains(t, sent, "response_format")
}

func TestOpenAIProvider_SendsSchema(t *testing.T) {
	srv, captured := newMockOpenAI(t, http.StatusOK, chatResponse(`{}`))
	p := NewOpenAIProvider(OpenAIOptions{APIKey: "test", BaseURL: srv.URL + "/v1", Model: "gpt-4o-mini"})

	req := UserPrompt("workout", "plan")
	req.Schema = &ResponseSchema{Name: "workout_plan", Schema: json.RawMessage(`{"type":"object"}`)}

	_, err := p.Complete(context.Background(), req)
	require.NoError(t, err)

	format := (*captured)["response_format"].(map[string]any)
	assert.Equal(t, "json_schema", format["type"])
	assert.Equal(t, "workout_plan", format["json_schema"].(map[string]any)["name"])
	assert.Equal(t, "gpt-4o-mini", (*captured)["model"])
}

func TestOpenAIProvider_UpstreamErrors(t *testing.T) {
	cases := []struct {
		name       string
		status     int
		body       any
		wantStatus int
	}{
		{
			name:       "server error",
			status:     http.StatusInternalServerError,
			body:       map[string]any{"error": map[string]any{"message": "boom", "type": "server_error"}},
			wantStatus: http.StatusInternalServerError,
		},
		{
			name:       "no choices",
			status:     http.StatusOK,
			body:       map[string]any{"id": "x", "choices": []any{}},
			wantStatus: 0,
		},
		{
			name:       "empty content",
			status:     http.StatusOK,
			body:       chatResponse("   "),
			wantStatus: 0,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newMockOpenAI(t, tc.status, tc.body)
			p := NewOpenAIProvider(OpenAIOptions{APIKey: "test", BaseURL: srv.URL + "/v1"})

			_, err := p.Complete(context.Background(), UserPrompt("workout", "plan"))

			var upstream *UpstreamServiceError
			require.True(t, errors.As(err, &upstream), "expected UpstreamServiceError, got %v", err)
			assert.Equal(t, "openai", upstream.Provider)
			assert.Equal(t, tc.wantStatus, upstream.StatusCode)
		})
	}
}

func TestMockProvider(t *testing.T) {
	p := NewMockProvider()

	workout, err := p.Complete(context.Background(), UserPrompt("workout", "x"))
	require.NoError(t, err)
	assert.Contains(t, workout.Text, `"mainWorkout"`)

	meal, err := p.Complete(context.Background(), UserPrompt("meal", "x"))
	require.NoError(t, err)
	assert.Contains(t, meal.Text, `"Breakfast"`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = p.Complete(ctx, UserPrompt("meal", "x"))
	var upstream *UpstreamServiceError
	assert.ErrorAs(t, err, &upstream)
}
