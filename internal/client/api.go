package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
)

// CreatedBy tags records created from the terminal client.
const CreatedBy = "tui"

// Init registers the client with the server and returns the workspace.
func (c *Client) Init(ctx context.Context) (chat.Workspace, error) {
	var data struct {
		User struct {
			ID       string `json:"id"`
			Username string `json:"username"`
		} `json:"user"`
		Project struct {
			ID string `json:"id"`
		} `json:"project"`
	}
	if err := c.call(ctx, OpInit, http.MethodPost, "/init", map[string]string{"runtime": "desktop"}, &data); err != nil {
		return chat.Workspace{}, err
	}
	ws := chat.Workspace{ProjectID: data.Project.ID, UserID: data.User.ID, Username: data.User.Username}
	if ws.Username == "" {
		ws.Username = CreatedBy
	}
	return ws, nil
}

// ServerConversation is the server's view of a conversation.
type ServerConversation struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Title       string   `json:"title"`
	Datasources []string `json:"datasources,omitempty"`
	CreatedAt   Time     `json:"createdAt"`
	UpdatedAt   Time     `json:"updatedAt"`
}

// Conversation converts to the client-side entity without messages.
func (s ServerConversation) Conversation() chat.Conversation {
	return chat.Conversation{
		ID:          s.ID,
		Slug:        s.Slug,
		Title:       s.Title,
		Messages:    []chat.ChatMessage{},
		CreatedAt:   s.CreatedAt.Time,
		UpdatedAt:   s.UpdatedAt.Time,
		Datasources: s.Datasources,
	}
}

// CreateConversationOptions are optional fields for CreateConversation.
type CreateConversationOptions struct {
	ProjectID   string
	Datasources []string
}

// CreateConversation creates a conversation seeded with its first prompt.
// HTML and malformed bodies are reported as ErrServerHTML and ErrInvalidJSON.
func (c *Client) CreateConversation(ctx context.Context, title, seedMessage string, opts CreateConversationOptions) (ServerConversation, error) {
	body := map[string]any{"title": title, "seedMessage": seedMessage}
	if opts.ProjectID != "" {
		body["projectId"] = opts.ProjectID
	}
	if len(opts.Datasources) > 0 {
		body["datasources"] = opts.Datasources
	}

	ctx, cancel := context.WithTimeout(ctx, RequestTimeout)
	defer cancel()
	resp, err := c.do(ctx, http.MethodPost, "/conversations", body)
	if err != nil {
		return ServerConversation{}, fmt.Errorf("create conversation: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ServerConversation{}, fmt.Errorf("create conversation: read body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ServerConversation{}, NewRequestError("create conversation", resp.StatusCode, strings.TrimSpace(string(data)))
	}
	if isHTML(resp.Header.Get("Content-Type"), data) {
		return ServerConversation{}, ErrServerHTML
	}
	var conv ServerConversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return ServerConversation{}, invalidJSON(data)
	}
	return conv, nil
}

// UpdateConversationDatasources replaces the datasources attached to a
// conversation.
func (c *Client) UpdateConversationDatasources(ctx context.Context, id string, datasources []string) error {
	if datasources == nil {
		datasources = []string{}
	}
	body := map[string]any{"datasources": datasources, "updatedBy": CreatedBy}
	return c.call(ctx, "update conversation", http.MethodPut, "/conversations/"+url.PathEscape(id), body, nil)
}

// GetConversation fetches a conversation by slug or id.
func (c *Client) GetConversation(ctx context.Context, slugOrID string) (ServerConversation, error) {
	var conv ServerConversation
	err := c.call(ctx, "get conversation", http.MethodGet, "/conversations/"+url.PathEscape(slugOrID), nil, &conv)
	return conv, err
}

// ListConversations returns the conversations of a project.
func (c *Client) ListConversations(ctx context.Context, projectID string) ([]chat.Conversation, error) {
	var list []ServerConversation
	if err := c.call(ctx, "list conversations", http.MethodGet, "/conversations/project/"+url.PathEscape(projectID), nil, &list); err != nil {
		return nil, err
	}
	out := make([]chat.Conversation, 0, len(list))
	for _, s := range list {
		out = append(out, s.Conversation())
	}
	return out, nil
}

// ListDatasources returns the datasources registered in a project.
func (c *Client) ListDatasources(ctx context.Context, projectID string) ([]chat.ProjectDatasource, error) {
	var list []chat.ProjectDatasource
	err := c.call(ctx, "get datasources", http.MethodGet, "/datasources?projectId="+url.QueryEscape(projectID), nil, &list)
	if list == nil {
		list = []chat.ProjectDatasource{}
	}
	return list, err
}

// CreateDatasourceInput is the body of POST /datasources.
type CreateDatasourceInput struct {
	ProjectID   string         `json:"projectId"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Provider    string         `json:"datasource_provider"`
	Driver      string         `json:"datasource_driver"`
	Kind        string         `json:"datasource_kind"`
	Config      map[string]any `json:"config,omitempty"`
	CreatedBy   string         `json:"createdBy"`
}

// CreateDatasource registers a datasource in a project.
func (c *Client) CreateDatasource(ctx context.Context, in CreateDatasourceInput) (chat.ProjectDatasource, error) {
	var ds chat.ProjectDatasource
	err := c.call(ctx, "create datasource", http.MethodPost, "/datasources", in, &ds)
	return ds, err
}

// ListNotebooks returns the notebooks of a project.
func (c *Client) ListNotebooks(ctx context.Context, projectID string) ([]chat.Notebook, error) {
	var list []chat.Notebook
	err := c.call(ctx, "get notebooks", http.MethodGet, "/notebooks?projectId="+url.QueryEscape(projectID), nil, &list)
	if list == nil {
		list = []chat.Notebook{}
	}
	return list, err
}

// CreateNotebook creates an empty notebook with a single query cell.
func (c *Client) CreateNotebook(ctx context.Context, projectID, title, createdBy string) (chat.Notebook, error) {
	body := map[string]any{
		"projectId":   projectID,
		"title":       title,
		"description": "",
		"datasources": []string{},
		"createdBy":   createdBy,
		"cells": []chat.NotebookCell{{
			CellID:      1,
			CellType:    chat.CellTypeQuery,
			Datasources: []string{},
			IsActive:    true,
			RunMode:     chat.RunModeDefault,
		}},
	}
	var nb chat.Notebook
	err := c.call(ctx, "create notebook", http.MethodPost, "/notebooks", body, &nb)
	return nb, err
}

// UpdateNotebook saves a notebook and returns the stored version.
func (c *Client) UpdateNotebook(ctx context.Context, nb chat.Notebook) (chat.Notebook, error) {
	var out chat.Notebook
	err := c.call(ctx, "update notebook", http.MethodPut, "/notebooks/"+url.PathEscape(nb.ID), nb, &out)
	return out, err
}

// RunQuery executes a notebook cell query against a datasource.
func (c *Client) RunQuery(ctx context.Context, conversationID, query, datasourceID string) (chat.CellResult, error) {
	body := map[string]string{
		"conversationId": conversationID,
		"query":          query,
		"datasourceId":   datasourceID,
	}
	var resp struct {
		Success bool            `json:"success"`
		Data    chat.CellResult `json:"data"`
	}
	if err := c.call(ctx, "run query", http.MethodPost, "/notebook/query", body, &resp); err != nil {
		return chat.CellResult{}, err
	}
	return resp.Data, nil
}

// Time decodes timestamps sent either as RFC 3339 strings or as Unix
// milliseconds.
type Time struct {
	time.Time
}

func (t *Time) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		t.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Time.Format(time.RFC3339Nano))
}
