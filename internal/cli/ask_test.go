package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/client"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/stream"
)

func noColor(t *testing.T) {
	t.Helper()
	prev := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = prev })
}

// fakeServer answers the endpoints ask uses and records chat requests.
type fakeServer struct {
	created  int
	chatPath string
	messages int
}

func (f *fakeServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/api/init":
			fmt.Fprint(w, `{"user":{"id":"u1","username":"ada"},"project":{"id":"p1"}}`)
		case r.URL.Path == "/api/conversations" && r.Method == http.MethodPost:
			f.created++
			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "p1", body["projectId"])
			fmt.Fprint(w, `{"id":"c1","slug":"orders-today","title":"Orders today"}`)
		case r.URL.Path == "/api/messages":
			assert.Equal(t, "existing", r.URL.Query().Get("conversationSlug"))
			fmt.Fprint(w, `[{"role":"user","content":"earlier"},{"role":"assistant","parts":[{"type":"text","text":"answer"}]}]`)
		default:
			f.chatPath = r.URL.Path
			var body struct {
				Messages []json.RawMessage `json:"messages"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.messages = len(body.Messages)
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprint(w, "data: {\"type\":\"start\"}\n\n")
			fmt.Fprint(w, "data: {\"type\":\"text-start\",\"id\":\"0\"}\n\n")
			fmt.Fprint(w, "data: {\"type\":\"text-delta\",\"id\":\"0\",\"delta\":\"12 orders\"}\n\n")
			fmt.Fprint(w, "data: {\"type\":\"text-delta\",\"id\":\"0\",\"delta\":\" so far\"}\n\n")
			fmt.Fprint(w, "data: {\"type\":\"finish\"}\n\n")
			fmt.Fprint(w, "data: [DONE]\n\n")
		}
	}
}

func newFakeServer(t *testing.T) (*fakeServer, *client.Client) {
	t.Helper()
	f := &fakeServer{}
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return f, client.New(srv.URL)
}

func TestAsk_NewConversation(t *testing.T) {
	noColor(t)
	f, c := newFakeServer(t)

	var out bytes.Buffer
	slug, err := ask(context.Background(), c, &out, askRequest{prompt: "how many orders today?"})
	require.NoError(t, err)

	assert.Equal(t, "orders-today", slug)
	assert.Equal(t, 1, f.created)
	assert.Equal(t, "/api/chat/orders-today", f.chatPath)
	assert.Equal(t, 1, f.messages)
	assert.Contains(t, out.String(), "12 orders so far\n")
	assert.Contains(t, out.String(), "conversation orders-today")
}

func TestAsk_ExistingConversation(t *testing.T) {
	noColor(t)
	f, c := newFakeServer(t)

	var out bytes.Buffer
	slug, err := ask(context.Background(), c, &out, askRequest{prompt: "and yesterday?", conversation: "existing"})
	require.NoError(t, err)

	assert.Equal(t, "existing", slug)
	assert.Zero(t, f.created)
	assert.Equal(t, 3, f.messages, "history plus the new prompt")
}

func TestAsk_ServerError(t *testing.T) {
	noColor(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"database offline"}`)
	}))
	t.Cleanup(srv.Close)

	var out bytes.Buffer
	_, err := ask(context.Background(), client.New(srv.URL), &out, askRequest{prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database offline")
}

func TestReplyPrinter(t *testing.T) {
	noColor(t)
	var out bytes.Buffer
	p := &replyPrinter{w: &out, tools: map[int]chat.ToolCallStatus{}}

	p.update(stream.Partial{Content: "Checking"})
	p.update(stream.Partial{Content: "Checking the table", ToolCalls: []chat.StreamingToolCall{
		{Name: "runQuery", Status: chat.ToolRunning},
	}})
	p.update(stream.Partial{Content: "Checking the table", ToolCalls: []chat.StreamingToolCall{
		{Name: "runQuery", Status: chat.ToolSuccess},
	}})
	p.finish(chat.ChatMessage{Content: "Checking the table", Model: stream.Model, Duration: "2.0s"})

	want := "Checking the table\n" +
		"• [runQuery] running\n" +
		"• [runQuery] ✓\n" +
		"Qwery · 2.0s\n"
	assert.Equal(t, want, out.String())
}

func TestReplyPrinter_NothingStreamed(t *testing.T) {
	noColor(t)
	var out bytes.Buffer
	p := &replyPrinter{w: &out, tools: map[int]chat.ToolCallStatus{}}

	p.finish(chat.ChatMessage{Content: "done"})

	assert.Equal(t, "done\n", out.String())
}
