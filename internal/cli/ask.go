package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Guepard-Corp/qwery-core-sub001/internal/chat"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/client"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/logging"
	"github.com/Guepard-Corp/qwery-core-sub001/internal/stream"
)

// Output styles for the non-interactive commands.
var (
	okStyle      = color.New(color.FgGreen)
	errorStyle   = color.New(color.FgRed, color.Bold)
	toolStyle    = color.New(color.FgCyan)
	runningStyle = color.New(color.FgYellow)
	mutedStyle   = color.New(color.FgHiBlack)
)

const (
	checkmark = "✓"
	xmark     = "✗"
	bullet    = "•"
)

var (
	askConversation string
	askDatasources  []string
)

var askCmd = &cobra.Command{
	Use:   "ask <prompt...>",
	Short: "Ask the agent a question and print the reply",
	Long: `Send one prompt to the Qwery agent and stream the reply to stdout.

Without --conversation a new conversation is created for the prompt.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(strings.Join(args, " "))
	if prompt == "" {
		return errors.New("prompt is empty")
	}
	s, err := loadSettings()
	if err != nil {
		return err
	}
	logging.SetupConsole(cmd.ErrOrStderr(), logging.ParseLevel(s.logLevel))

	_, err = ask(cmd.Context(), s.client(), cmd.OutOrStdout(), askRequest{
		prompt:       prompt,
		conversation: askConversation,
		datasources:  askDatasources,
		model:        s.cfg.GetChatModel(),
	})
	return err
}

type askRequest struct {
	prompt       string
	conversation string
	datasources  []string
	model        string
}

// ask runs one prompt against the server, writing the reply to w as it
// streams. It returns the slug of the conversation used.
func ask(ctx context.Context, c *client.Client, w io.Writer, req askRequest) (string, error) {
	ws, err := c.Init(ctx)
	if err != nil {
		return "", err
	}

	slug := req.conversation
	var history []chat.ChatMessage
	if slug == "" {
		sc, err := c.CreateConversation(ctx, chat.TitleFromPrompt(req.prompt), req.prompt, client.CreateConversationOptions{
			ProjectID:   ws.ProjectID,
			Datasources: req.datasources,
		})
		if err != nil {
			return "", err
		}
		slog.Debug("cli.ask: conversation created", "id", sc.ID, "slug", sc.Slug)
		slug = sc.Slug
	} else {
		if history, err = c.GetMessages(ctx, slug); err != nil {
			return "", err
		}
	}

	messages := append(history, chat.NewUserMessage(req.prompt, time.Now()))
	p := &replyPrinter{w: w, tools: map[int]chat.ToolCallStatus{}}
	reply, err := c.StreamChat(ctx, slug, messages, client.ChatOptions{
		Model:       req.model,
		Datasources: req.datasources,
	}, p.update)
	if err != nil {
		p.endLine()
		errorStyle.Fprintf(w, "%s %v\n", xmark, err)
		return slug, err
	}
	p.finish(reply)
	mutedStyle.Fprintf(w, "conversation %s\n", slug)
	return slug, nil
}

// replyPrinter writes streamed snapshots as incremental output: text is
// printed as it grows and each tool call gets a line when its status changes.
type replyPrinter struct {
	w       io.Writer
	printed string
	midLine bool
	tools   map[int]chat.ToolCallStatus
}

func (p *replyPrinter) update(part stream.Partial) {
	if strings.HasPrefix(part.Content, p.printed) {
		p.write(part.Content[len(p.printed):])
	} else {
		// The text was rewritten; print it again on a fresh line.
		p.endLine()
		p.write(part.Content)
	}
	p.printed = part.Content

	for i, tc := range part.ToolCalls {
		if p.tools[i] == tc.Status {
			continue
		}
		p.tools[i] = tc.Status
		p.endLine()
		toolLine(p.w, tc.Name, tc.Status)
	}
}

func (p *replyPrinter) write(s string) {
	if s == "" {
		return
	}
	fmt.Fprint(p.w, s)
	p.midLine = !strings.HasSuffix(s, "\n")
}

func (p *replyPrinter) endLine() {
	if p.midLine {
		fmt.Fprintln(p.w)
		p.midLine = false
	}
}

// finish prints the reply if nothing streamed, then its metadata.
func (p *replyPrinter) finish(reply chat.ChatMessage) {
	if p.printed == "" {
		p.write(reply.Content)
	}
	p.endLine()
	var meta []string
	for _, v := range []string{reply.Model, reply.Duration} {
		if v != "" {
			meta = append(meta, v)
		}
	}
	if len(meta) > 0 {
		mutedStyle.Fprintln(p.w, strings.Join(meta, " · "))
	}
}

func toolLine(w io.Writer, name string, status chat.ToolCallStatus) {
	toolStyle.Fprintf(w, "%s [%s] ", bullet, name)
	switch status {
	case chat.ToolSuccess:
		okStyle.Fprintln(w, checkmark)
	case chat.ToolError:
		errorStyle.Fprintln(w, xmark)
	default:
		runningStyle.Fprintln(w, status)
	}
}

func init() {
	askCmd.Flags().StringVarP(&askConversation, "conversation", "c", "", "continue the conversation with this slug")
	askCmd.Flags().StringSliceVarP(&askDatasources, "datasource", "d", nil, "datasource id to attach (repeatable)")
	rootCmd.AddCommand(askCmd)
}
