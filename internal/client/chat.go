package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/stream"
)

// DefaultChatModel is the inference model requested when none is configured.
const DefaultChatModel = "azure/gpt-5-mini"

// ChatOptions tune a chat request.
type ChatOptions struct {
	Model       string
	Datasources []string
}

type messagePart struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

type messagePayload struct {
	ID      string        `json:"id"`
	Role    string        `json:"role"`
	Content string        `json:"content"`
	Parts   []messagePart `json:"parts"`
}

type chatRequest struct {
	Messages    []messagePayload `json:"messages"`
	Model       string           `json:"model"`
	Datasources []string         `json:"datasources,omitempty"`
}

func newChatRequest(messages []chat.ChatMessage, opts ChatOptions) chatRequest {
	req := chatRequest{
		Messages:    make([]messagePayload, 0, len(messages)),
		Model:       opts.Model,
		Datasources: opts.Datasources,
	}
	if req.Model == "" {
		req.Model = DefaultChatModel
	}
	for _, m := range messages {
		req.Messages = append(req.Messages, messagePayload{
			ID:      "msg-" + uuid.New().String(),
			Role:    string(m.Role),
			Content: m.Content,
			Parts:   []messagePart{{Type: stream.PartText, Text: m.Content}},
		})
	}
	return req
}

// Chat posts the conversation to the agent and returns the event stream.
// The caller closes the returned body.
func (c *Client) Chat(ctx context.Context, slug string, messages []chat.ChatMessage, opts ChatOptions) (io.ReadCloser, error) {
	resp, err := c.do(ctx, http.MethodPost, "/chat/"+url.PathEscape(slug), newChatRequest(messages, opts))
	if err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		data, _ := io.ReadAll(resp.Body)
		return nil, NewRequestError("send message", resp.StatusCode, errorText(data))
	}
	if resp.Body == nil || resp.Body == http.NoBody {
		return nil, ErrNoBody
	}
	return resp.Body, nil
}

// StreamChat sends the conversation and assembles the streamed reply,
// calling onUpdate for every snapshot.
func (c *Client) StreamChat(ctx context.Context, slug string, messages []chat.ChatMessage, opts ChatOptions, onUpdate stream.UpdateFunc) (chat.ChatMessage, error) {
	start := time.Now()
	body, err := c.Chat(ctx, slug, messages, opts)
	if err != nil {
		return chat.ChatMessage{}, err
	}
	defer body.Close()
	return stream.Read(ctx, body, start, onUpdate)
}

type serverMessage struct {
	Role      string          `json:"role"`
	Content   json.RawMessage `json:"content"`
	Parts     []stream.Part   `json:"parts"`
	CreatedAt Time            `json:"createdAt"`
}

// ChatMessage converts a stored message. Assistant messages keep their
// completed tool calls.
func (m serverMessage) ChatMessage() chat.ChatMessage {
	parts := m.Parts
	if len(parts) == 0 {
		parts = contentParts(m.Content)
	}
	if chat.Role(m.Role) != chat.RoleAssistant {
		text := stream.Message{Parts: parts}.Text()
		return chat.NewUserMessage(text, m.CreatedAt.Time)
	}
	msg := stream.Finalize(stream.Message{Role: m.Role, Parts: parts}, 0, m.CreatedAt.Time)
	msg.Duration = ""
	return msg
}

// contentParts reads parts out of a content field that holds either plain
// text or an object with its own parts.
func contentParts(raw json.RawMessage) []stream.Part {
	var text string
	if json.Unmarshal(raw, &text) == nil {
		return []stream.Part{{Type: stream.PartText, Text: text}}
	}
	var obj struct {
		Text  string        `json:"text"`
		Parts []stream.Part `json:"parts"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		if len(obj.Parts) > 0 {
			return obj.Parts
		}
		return []stream.Part{{Type: stream.PartText, Text: obj.Text}}
	}
	return nil
}

// GetMessages fetches the stored history of a conversation.
func (c *Client) GetMessages(ctx context.Context, conversationSlug string) ([]chat.ChatMessage, error) {
	var list []serverMessage
	if err := c.call(ctx, "get messages", http.MethodGet, "/messages?conversationSlug="+url.QueryEscape(conversationSlug), nil, &list); err != nil {
		return nil, err
	}
	out := make([]chat.ChatMessage, 0, len(list))
	for _, m := range list {
		msg := m.ChatMessage()
		if msg.Role == chat.RoleUser && strings.TrimSpace(msg.Content) == "" {
			continue
		}
		out = append(out, msg)
	}
	return out, nil
}
