package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"justdo/internal/llm"
)

func completionJSON(text string) string {
	return fmt.Sprintf(`{
		"id": "chatcmpl-test",
		"object": "chat.completion",
		"model": "gpt-4o-mini",
		"choices": [{"index": 0, "message": {"role": "assistant", "content": %q}, "finish_reason": "stop"}]
	}`, text)
}

func newTestOrchestrator(t *testing.T, handler http.HandlerFunc) *Orchestrator {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	engine := llm.NewEngine("test-key", "gpt-4o-mini", srv.URL, llm.NoopObserver{})
	return New(engine, filepath.Join(t.TempDir(), "profile.json"))
}

func respondWith(text string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionJSON(text))
	}
}

func failWith500(w http.ResponseWriter, r *http.Request) {
	http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusInternalServerError)
}

func addedValues() map[string]string {
	return map[string]string{
		"task_text":        "write weekly report",
		"task_priority":    "high",
		"incomplete_count": "3",
		"total_count":      "5",
	}
}

func TestFeedback_Success(t *testing.T) {
	var prompt string
	o := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		prompt = body["messages"].([]any)[0].(map[string]any)["content"].(string)
		assert.Equal(t, float64(60), body["max_tokens"])

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionJSON("Nice, the report is on the list."))
	})

	text, err := o.Feedback(context.Background(), EventTaskAdded, addedValues())
	require.NoError(t, err)
	assert.Equal(t, "Nice, the report is on the list.", text)

	// Ambient context was injected without the caller supplying it.
	assert.Contains(t, prompt, "write weekly report")
	assert.NotContains(t, prompt, "{time_context}")
	assert.NotContains(t, prompt, "{user_profile}")
}

func TestFeedback_UnknownEvent(t *testing.T) {
	o := newTestOrchestrator(t, respondWith("unused"))
	_, err := o.Feedback(context.Background(), "task_exploded", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "task_exploded")
}

func TestFeedback_MissingPlaceholderIsAnError(t *testing.T) {
	o := newTestOrchestrator(t, respondWith("unused"))
	_, err := o.Feedback(context.Background(), EventTaskAdded, map[string]string{
		"task_text": "only one value",
	})
	assert.ErrorIs(t, err, ErrMissingPlaceholder)
}

func TestFeedback_ProviderFailureDegradesToFallbackText(t *testing.T) {
	o := newTestOrchestrator(t, failWith500)

	text, err := o.Feedback(context.Background(), EventTaskAdded, addedValues())
	require.NoError(t, err)
	assert.Contains(t, text, unavailablePrefix)
}

func TestFeedback_NotConfiguredSurfaces(t *testing.T) {
	engine := llm.NewEngine("", "gpt-4o-mini", "", llm.NoopObserver{})
	o := New(engine, "")

	_, err := o.Feedback(context.Background(), EventTaskAdded, addedValues())
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestEnhance_ReturnsRewrittenText(t *testing.T) {
	o := newTestOrchestrator(t, respondWith("Draft Q3 report outline"))

	text, err := o.Enhance(context.Background(), "do the report thing maybe")
	require.NoError(t, err)
	assert.Equal(t, "Draft Q3 report outline", text)
}

func TestEnhance_SilentlyFallsBackOnFailure(t *testing.T) {
	o := newTestOrchestrator(t, failWith500)

	text, err := o.Enhance(context.Background(), "do the report thing maybe")
	require.NoError(t, err)
	assert.Equal(t, "do the report thing maybe", text)
}

func TestEnhance_NotConfiguredReturnsOriginalAndError(t *testing.T) {
	engine := llm.NewEngine("", "gpt-4o-mini", "", llm.NoopObserver{})
	o := New(engine, "")

	text, err := o.Enhance(context.Background(), "original")
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
	assert.Equal(t, "original", text)
}

func TestSuggest_ZeroPendingShortCircuits(t *testing.T) {
	var calls atomic.Int32
	o := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		failWith500(w, r)
	})

	got, err := o.Suggest(context.Background(), []TaskFact{
		{ID: 1, Text: "done thing", Priority: "low", Done: true},
	})
	require.NoError(t, err)
	assert.Equal(t, celebratoryMessage, got.Message)
	assert.Nil(t, got.Stream)
	assert.Equal(t, int32(0), calls.Load(), "no model call for an empty pending list")
}

func TestSuggest_StreamsOverPendingTasks(t *testing.T) {
	o := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		prompt := body["messages"].([]any)[0].(map[string]any)["content"].(string)
		assert.Contains(t, prompt, "fix login bug")
		assert.NotContains(t, prompt, "done thing", "completed tasks stay out of the prompt")

		w.Header().Set("Content-Type", "text/event-stream")
		flusher := w.(http.Flusher)
		for _, frag := range []string{"Start with ", "the login bug."} {
			chunk := map[string]any{
				"id":     "chatcmpl-test",
				"object": "chat.completion.chunk",
				"model":  "gpt-4o-mini",
				"choices": []map[string]any{
					{"index": 0, "delta": map[string]any{"content": frag}},
				},
			}
			data, _ := json.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", data)
			flusher.Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	got, err := o.Suggest(context.Background(), []TaskFact{
		{ID: 1, Text: "fix login bug", Priority: "high"},
		{ID: 2, Text: "done thing", Priority: "low", Done: true},
	})
	require.NoError(t, err)
	require.NotNil(t, got.Stream)
	defer got.Stream.Close()

	var text string
	for got.Stream.Next() {
		text += got.Stream.Text()
	}
	require.NoError(t, got.Stream.Err())
	assert.Equal(t, "Start with the login bug.", text)
}

func TestChat_IncludesTaskListInSystemPrompt(t *testing.T) {
	o := newTestOrchestrator(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 2)
		system := msgs[0].(map[string]any)
		assert.Equal(t, "system", system["role"])
		assert.Contains(t, system["content"], "buy groceries")

		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionJSON("You have one errand left."))
	})

	text, err := o.Chat(context.Background(), "what's left?", []TaskFact{
		{ID: 1, Text: "buy groceries", Priority: "medium"},
	})
	require.NoError(t, err)
	assert.Equal(t, "You have one errand left.", text)
}

func TestChat_ProviderFailureDegrades(t *testing.T) {
	o := newTestOrchestrator(t, failWith500)

	text, err := o.Chat(context.Background(), "hello?", nil)
	require.NoError(t, err)
	assert.Contains(t, text, unavailablePrefix)
}

func TestWithClock_DrivesTimeContext(t *testing.T) {
	var prompt string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		prompt = body["messages"].([]any)[0].(map[string]any)["content"].(string)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, completionJSON("ok"))
	}))
	t.Cleanup(srv.Close)

	engine := llm.NewEngine("key", "gpt-4o-mini", srv.URL, llm.NoopObserver{})
	night := func() time.Time { return time.Date(2026, 3, 1, 23, 30, 0, 0, time.UTC) }
	o := New(engine, "", WithClock(night))

	_, err := o.Feedback(context.Background(), EventTaskAdded, addedValues())
	require.NoError(t, err)
	assert.Contains(t, prompt, "late-night")
}
