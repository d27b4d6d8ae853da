// Package chat defines the conversation entities shared by the state machine,
// the stream assembler and the HTTP client.
package chat

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolCallStatus is the lifecycle state of a tool invocation.
type ToolCallStatus string

const (
	ToolPending ToolCallStatus = "pending"
	ToolRunning ToolCallStatus = "running"
	ToolSuccess ToolCallStatus = "success"
	ToolError   ToolCallStatus = "error"
)

// ToolCall is one agent-invoked action attached to an assistant message.
// Output is empty while the call is pending or running.
type ToolCall struct {
	Name   string         `json:"name"`
	Args   string         `json:"args"`
	Output string         `json:"output,omitempty"`
	Status ToolCallStatus `json:"status"`
}

// StreamingToolCall is the reduced projection of a tool call shown while a
// response is still streaming.
type StreamingToolCall struct {
	Name   string         `json:"name"`
	Status ToolCallStatus `json:"status"`
}

// ChatMessage is a single turn in a conversation.
// User messages never carry tool calls.
type ChatMessage struct {
	Role      Role       `json:"role"`
	Content   string     `json:"content"`
	ToolCalls []ToolCall `json:"toolCalls"`
	Model     string     `json:"model"`
	Duration  string     `json:"duration"`
	Timestamp time.Time  `json:"timestamp,omitzero"`
	// Reasoning is the model's thinking text, kept for transcript export.
	Reasoning string `json:"reasoning,omitempty"`
}

// NewUserMessage builds a user turn stamped with now.
func NewUserMessage(content string, now time.Time) ChatMessage {
	return ChatMessage{
		Role:      RoleUser,
		Content:   content,
		ToolCalls: []ToolCall{},
		Timestamp: now,
	}
}

// Conversation is a titled sequence of messages. ID is local until the server
// assigns one; Slug is the durable server identifier.
type Conversation struct {
	ID          string        `json:"id"`
	Slug        string        `json:"slug,omitempty"`
	Title       string        `json:"title"`
	Messages    []ChatMessage `json:"messages"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Datasources []string      `json:"datasources,omitempty"`
}

// HasDatasource reports whether id is attached to the conversation.
func (c Conversation) HasDatasource(id string) bool {
	for _, ds := range c.Datasources {
		if ds == id {
			return true
		}
	}
	return false
}

// maxTitleLen is the longest title kept verbatim.
const maxTitleLen = 30

// TitleFromPrompt derives a conversation title from the first prompt:
// prompts longer than 30 characters are cut to 27 and ellipsized.
func TitleFromPrompt(prompt string) string {
	r := []rune(prompt)
	if len(r) > maxTitleLen {
		return string(r[:maxTitleLen-3]) + "..."
	}
	return prompt
}

// Workspace is the identity returned by the server's init endpoint.
type Workspace struct {
	ProjectID string `json:"projectId"`
	UserID    string `json:"userId"`
	Username  string `json:"username"`
}

// ProjectDatasource is a datasource registered in the current project.
type ProjectDatasource struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug,omitempty"`
}

// MeshStatus is informational cluster state reported by the server.
type MeshStatus struct {
	Servers int `json:"servers"`
	Workers int `json:"workers"`
	Jobs    int `json:"jobs"`
}

// Cell types and run modes used by notebooks.
const (
	CellTypeQuery  = "query"
	RunModeDefault = "default"
)

// NotebookCell is one editable cell of a notebook.
type NotebookCell struct {
	CellID      int      `json:"cellId"`
	CellType    string   `json:"cellType"`
	Query       string   `json:"query,omitempty"`
	Datasources []string `json:"datasources"`
	IsActive    bool     `json:"isActive"`
	RunMode     string   `json:"runMode"`
	Title       string   `json:"title,omitempty"`
}

// Notebook is a server-stored SQL notebook.
type Notebook struct {
	ID          string         `json:"id"`
	ProjectID   string         `json:"projectId"`
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Slug        string         `json:"slug"`
	Version     int            `json:"version"`
	CreatedAt   string         `json:"createdAt"`
	UpdatedAt   string         `json:"updatedAt"`
	Datasources []string       `json:"datasources"`
	Cells       []NotebookCell `json:"cells"`
	CreatedBy   string         `json:"createdBy,omitempty"`
	IsPublic    bool           `json:"isPublic,omitempty"`
}

// Clone returns a deep copy so callers can modify cells without aliasing.
func (n Notebook) Clone() Notebook {
	out := n
	out.Datasources = append([]string(nil), n.Datasources...)
	out.Cells = make([]NotebookCell, len(n.Cells))
	for i, c := range n.Cells {
		c.Datasources = append([]string(nil), c.Datasources...)
		out.Cells[i] = c
	}
	return out
}

// MaxCellID returns the largest cell id, or 0 for an empty notebook.
func (n Notebook) MaxCellID() int {
	max := 0
	for _, c := range n.Cells {
		if c.CellID > max {
			max = c.CellID
		}
	}
	return max
}

// ColumnHeader names one column of a query result.
type ColumnHeader struct {
	Name string `json:"name"`
}

// CellResult holds the rows returned by running a notebook cell.
type CellResult struct {
	Rows    []any          `json:"rows"`
	Headers []ColumnHeader `json:"headers"`
}

// Cell returns the value of column col in row i. Rows may be objects keyed
// by column name or positional arrays.
func (r CellResult) Cell(i, col int) any {
	if i < 0 || i >= len(r.Rows) || col < 0 || col >= len(r.Headers) {
		return nil
	}
	switch row := r.Rows[i].(type) {
	case map[string]any:
		return row[r.Headers[col].Name]
	case []any:
		if col < len(row) {
			return row[col]
		}
	}
	return nil
}

// HeaderNames returns the column names in order.
func (r CellResult) HeaderNames() []string {
	names := make([]string, len(r.Headers))
	for i, h := range r.Headers {
		names[i] = h.Name
	}
	return names
}

// ErrorContent formats the assistant text shown when a turn fails.
func ErrorContent(msg string) string {
	return "Error: " + msg
}
