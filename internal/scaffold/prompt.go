package scaffold

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Question is one interactive input.
type Question struct {
	Message string
	Default string
	Confirm bool // yes/no question; answers are normalized to "true"/"false"
	// Validate rejects an answer. Returning a validation error re-asks the question.
	Validate func(answer string) error
}

// Prompter collects answers to questions.
type Prompter interface {
	// Prompt shows q and returns the raw answer. An empty answer means the
	// default was accepted.
	Prompt(q Question) (string, error)
}

type cliPrompter struct {
	reader *bufio.Reader
	writer io.Writer
}

// NewPrompter returns a line-based prompter reading answers from r and
// writing prompts to w.
func NewPrompter(r io.Reader, w io.Writer) Prompter {
	return &cliPrompter{reader: bufio.NewReader(r), writer: w}
}

func (c *cliPrompter) Prompt(q Question) (string, error) {
	switch {
	case q.Confirm && q.Default == "true":
		_, _ = fmt.Fprintf(c.writer, "%s (Y/n): ", q.Message)
	case q.Confirm:
		_, _ = fmt.Fprintf(c.writer, "%s (y/N): ", q.Message)
	case q.Default != "":
		_, _ = fmt.Fprintf(c.writer, "%s (%s): ", q.Message, q.Default)
	default:
		_, _ = fmt.Fprintf(c.writer, "%s: ", q.Message)
	}

	line, err := c.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}
