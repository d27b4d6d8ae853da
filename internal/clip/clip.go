// Package clip copies text out of and pastes text into the terminal session.
package clip

import (
	"errors"
	"fmt"
	"os"
	"strings"

	atotto "github.com/atotto/clipboard"
	osc52 "github.com/aymanbagabas/go-osc52/v2"
	"golang.org/x/term"
)

// Method is how copied text was made available.
type Method string

const (
	MethodNative Method = "native"
	MethodOSC52  Method = "osc52"
	// MethodFile means no clipboard was reachable and the text was written
	// to a temp file instead.
	MethodFile Method = "file"
)

// Result reports how Copy delivered the text.
type Result struct {
	Method   Method
	FilePath string
}

// Describe renders the result as a status-bar notice.
func (r Result) Describe() string {
	switch r.Method {
	case MethodFile:
		return "Clipboard unavailable, saved to " + r.FilePath
	case MethodOSC52:
		return "Copied (terminal clipboard)"
	default:
		return "Copied to clipboard"
	}
}

// ErrEmpty is returned when there is nothing to copy or paste.
var ErrEmpty = errors.New("clipboard is empty")

// Swapped in tests.
var (
	nativeWrite = atotto.WriteAll
	nativeRead  = atotto.ReadAll
	osc52Write  = writeOSC52
	tempDir     = os.TempDir
)

// Copy puts text on the native clipboard, falling back to an OSC52 escape
// sequence and finally to a temp file.
func Copy(text string) (Result, error) {
	if text == "" {
		return Result{}, ErrEmpty
	}
	if err := nativeWrite(text); err == nil {
		return Result{Method: MethodNative}, nil
	}
	if err := osc52Write(text); err == nil {
		return Result{Method: MethodOSC52}, nil
	}
	path, err := writeTemp(text)
	if err != nil {
		return Result{}, fmt.Errorf("copy: %w", err)
	}
	return Result{Method: MethodFile, FilePath: path}, nil
}

// Paste reads the native clipboard. Line endings are normalised to "\n".
func Paste() (string, error) {
	text, err := nativeRead()
	if err != nil {
		return "", fmt.Errorf("paste: %w", err)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// osc52Limit keeps payloads under what common terminals accept.
const osc52Limit = 100_000

func writeOSC52(text string) error {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return errors.New("stderr is not a terminal")
	}
	if len(text) > osc52Limit {
		return fmt.Errorf("text too large for OSC52 (%d bytes)", len(text))
	}
	seq := osc52.New(text).Limit(osc52Limit)
	switch {
	case os.Getenv("TMUX") != "":
		seq = seq.Tmux()
	case os.Getenv("STY") != "":
		seq = seq.Screen()
	}
	// stderr keeps the sequence out of the renderer's stdout.
	_, err := seq.WriteTo(os.Stderr)
	return err
}

func writeTemp(text string) (path string, err error) {
	f, err := os.CreateTemp(tempDir(), "qwery-clipboard-*.txt")
	if err != nil {
		return "", err
	}
	path = f.Name()
	defer func() {
		if err != nil {
			os.Remove(path)
		}
	}()
	if _, err = f.WriteString(text); err != nil {
		f.Close()
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	return path, nil
}
