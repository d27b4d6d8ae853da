package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/stream"
)

func newServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/")
}

func TestNew_TrimsSlashAndDefaults(t *testing.T) {
	assert.Equal(t, "http://example.test", New("http://example.test/").BaseURL)
	assert.Equal(t, DefaultServerURL, New("").BaseURL)
	assert.Equal(t, DefaultServerURL+"/api", New("").APIBase())
}

func TestHealth(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/health", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	})
	require.NoError(t, c.Health(context.Background()))

	down := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	err := down.Health(context.Background())
	assert.ErrorIs(t, err, ErrServerUnavailable)
}

func TestBasicAuth(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "qwery", user)
		assert.Equal(t, "secret", pass)
		w.WriteHeader(http.StatusOK)
	})
	c.SetBasicAuth("", "secret")
	require.NoError(t, c.Health(context.Background()))
}

func TestInit(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/init", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "desktop", body["runtime"])
		fmt.Fprint(w, `{"user":{"id":"u1","username":""},"project":{"id":"p1"}}`)
	})

	ws, err := c.Init(context.Background())
	require.NoError(t, err)
	assert.Equal(t, chat.Workspace{ProjectID: "p1", UserID: "u1", Username: CreatedBy}, ws)
}

func TestInit_Failure(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"no project"}`)
	})

	_, err := c.Init(context.Background())
	require.Error(t, err)
	assert.Equal(t, "Init failed: no project", err.Error())
	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Equal(t, http.StatusInternalServerError, reqErr.Status)
}

func TestCreateConversation(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "hello", body["title"])
		assert.Equal(t, "hello", body["seedMessage"])
		assert.Equal(t, "p1", body["projectId"])
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"id":"c1","slug":"hello-abc","title":"hello","createdAt":1700000000000,"updatedAt":"2024-01-02T03:04:05Z"}`)
	})

	conv, err := c.CreateConversation(context.Background(), "hello", "hello", CreateConversationOptions{ProjectID: "p1"})
	require.NoError(t, err)
	assert.Equal(t, "c1", conv.ID)
	assert.Equal(t, "hello-abc", conv.Slug)
	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), conv.CreatedAt.Time)
	assert.Equal(t, 2024, conv.UpdatedAt.Year())

	local := conv.Conversation()
	assert.Equal(t, "hello-abc", local.Slug)
	assert.Empty(t, local.Messages)
}

func TestCreateConversation_Failures(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		status      int
		body        string
		wantIs      error
		wantMsg     string
	}{
		{
			name:        "html by content type",
			contentType: "text/html; charset=utf-8",
			status:      http.StatusOK,
			body:        "<!doctype html>",
			wantIs:      ErrServerHTML,
		},
		{
			name:        "html by body",
			contentType: "application/json",
			status:      http.StatusOK,
			body:        "  <html><body>app</body></html>",
			wantIs:      ErrServerHTML,
		},
		{
			name:        "invalid json",
			contentType: "application/json",
			status:      http.StatusOK,
			body:        "{not json",
			wantIs:      ErrInvalidJSON,
		},
		{
			name:        "server error",
			contentType: "application/json",
			status:      http.StatusInternalServerError,
			body:        "boom",
			wantMsg:     "Failed to create conversation: boom",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			})
			_, err := c.CreateConversation(context.Background(), "t", "t", CreateConversationOptions{})
			require.Error(t, err)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			if tt.wantMsg != "" {
				assert.Equal(t, tt.wantMsg, err.Error())
				var reqErr *RequestError
				require.True(t, errors.As(err, &reqErr))
				assert.Equal(t, tt.status, reqErr.Status)
			}
		})
	}
}

func TestCall_ErrorText(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{`{"code":404,"params":{},"details":"Conversation not found"}`, "Failed to get conversation: Conversation not found"},
		{`{"error":"bad request"}`, "Failed to get conversation: bad request"},
		{`plain failure`, "Failed to get conversation: plain failure"},
	}
	for _, tt := range tests {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, tt.body)
		})
		_, err := c.GetConversation(context.Background(), "missing")
		require.Error(t, err)
		assert.Equal(t, tt.want, err.Error())
	}
}

func TestInvalidJSON_PreviewIsCapped(t *testing.T) {
	err := invalidJSON([]byte(strings.Repeat("x", 500)))
	assert.ErrorIs(t, err, ErrInvalidJSON)
	assert.Len(t, err.Error(), len(ErrInvalidJSON.Error())+2+previewLen)
}

func TestListConversations(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/conversations/project/p1", r.URL.Path)
		fmt.Fprint(w, `[{"id":"a","slug":"a-s","title":"A"},{"id":"b","slug":"b-s","title":"B","datasources":["d1"]}]`)
	})
	list, err := c.ListConversations(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Title)
	assert.True(t, list[1].HasDatasource("d1"))
}

func TestUpdateConversationDatasources(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/api/conversations/c1", r.URL.Path)
		data, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"datasources":[],"updatedBy":"tui"}`, string(data))
		fmt.Fprint(w, `{}`)
	})
	require.NoError(t, c.UpdateConversationDatasources(context.Background(), "c1", nil))
}

func TestGetMessages(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/messages", r.URL.Path)
		assert.Equal(t, "conv-slug", r.URL.Query().Get("conversationSlug"))
		fmt.Fprint(w, `[
			{"role":"user","content":"how many rows?","createdAt":1700000000000},
			{"role":"user","content":"   "},
			{"role":"assistant","parts":[
				{"type":"text","text":"There are 3."},
				{"type":"tool-runQuery","toolCallId":"t1","state":"output-available","input":{"sql":"select 1"},"output":"3"},
				{"type":"tool-listTables","toolCallId":"t2","state":"input-available","input":{}}
			]},
			{"role":"assistant","content":{"parts":[{"type":"text","text":"nested"}]}}
		]`)
	})

	msgs, err := c.GetMessages(context.Background(), "conv-slug")
	require.NoError(t, err)
	require.Len(t, msgs, 3)

	assert.Equal(t, chat.RoleUser, msgs[0].Role)
	assert.Equal(t, "how many rows?", msgs[0].Content)

	assert.Equal(t, chat.RoleAssistant, msgs[1].Role)
	assert.Equal(t, "There are 3.", msgs[1].Content)
	assert.Empty(t, msgs[1].Duration)
	require.Len(t, msgs[1].ToolCalls, 1)
	assert.Equal(t, chat.ToolCall{Name: "runQuery", Args: `{"sql":"select 1"}`, Output: "3", Status: chat.ToolSuccess}, msgs[1].ToolCalls[0])

	assert.Equal(t, "nested", msgs[2].Content)
}

func TestStreamChat(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat/conv-slug", r.URL.Path)
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultChatModel, req.Model)
		assert.Equal(t, []string{"d1"}, req.Datasources)
		require.Len(t, req.Messages, 1)
		assert.True(t, strings.HasPrefix(req.Messages[0].ID, "msg-"))
		assert.Equal(t, "hi", req.Messages[0].Parts[0].Text)

		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"type\":\"start\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"text-start\",\"id\":\"0\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"text-delta\",\"id\":\"0\",\"delta\":\"Hello\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"text-delta\",\"id\":\"0\",\"delta\":\" there\"}\n\n")
		fmt.Fprint(w, "data: {\"type\":\"finish\"}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	var last stream.Partial
	msg, err := c.StreamChat(context.Background(), "conv-slug",
		[]chat.ChatMessage{chat.NewUserMessage("hi", time.Now())},
		ChatOptions{Datasources: []string{"d1"}},
		func(p stream.Partial) { last = p })
	require.NoError(t, err)
	assert.Equal(t, "Hello there", last.Content)
	assert.Equal(t, "Hello there", msg.Content)
	assert.Equal(t, stream.Model, msg.Model)
}

func TestChat_ServerError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error":"no model"}`)
	})
	_, err := c.Chat(context.Background(), "s", nil, ChatOptions{})
	require.Error(t, err)
	assert.Equal(t, "Failed to send message: no model", err.Error())
}

func TestRunQuery(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "select 1", body["query"])
		assert.Equal(t, "d1", body["datasourceId"])
		fmt.Fprint(w, `{"success":true,"data":{"rows":[{"n":1}],"headers":[{"name":"n"}]}}`)
	})
	res, err := c.RunQuery(context.Background(), "nb1", "select 1", "d1")
	require.NoError(t, err)
	assert.Equal(t, []string{"n"}, res.HeaderNames())
	assert.Equal(t, float64(1), res.Cell(0, 0))
}

func TestNotebooks(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet:
			assert.Equal(t, "p1", r.URL.Query().Get("projectId"))
			fmt.Fprint(w, `null`)
		case r.Method == http.MethodPost:
			var body struct {
				Title string              `json:"title"`
				Cells []chat.NotebookCell `json:"cells"`
			}
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			require.Len(t, body.Cells, 1)
			assert.Equal(t, chat.CellTypeQuery, body.Cells[0].CellType)
			fmt.Fprintf(w, `{"id":"nb1","title":%q,"cells":[{"cellId":1,"cellType":"query"}]}`, body.Title)
		case r.Method == http.MethodPut:
			assert.Equal(t, "/api/notebooks/nb1", r.URL.Path)
			data, _ := io.ReadAll(r.Body)
			w.Write(data)
		}
	})

	list, err := c.ListNotebooks(context.Background(), "p1")
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)

	nb, err := c.CreateNotebook(context.Background(), "p1", "Sales", CreatedBy)
	require.NoError(t, err)
	assert.Equal(t, "Sales", nb.Title)

	nb.Cells[0].Query = "select 2"
	saved, err := c.UpdateNotebook(context.Background(), nb)
	require.NoError(t, err)
	assert.Equal(t, "select 2", saved.Cells[0].Query)
}

func TestTime_Unmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{`null`, time.Time{}},
		{`""`, time.Time{}},
		{`1700000000000`, time.UnixMilli(1700000000000).UTC()},
		{`"2024-05-06T07:08:09Z"`, time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)},
	}
	for _, tt := range tests {
		var got Time
		require.NoError(t, json.Unmarshal([]byte(tt.in), &got), tt.in)
		assert.True(t, tt.want.Equal(got.Time), tt.in)
	}

	var bad Time
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &bad))
}
