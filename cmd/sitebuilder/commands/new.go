package commands

import (
	"fmt"
	"io"
	"os"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/scaffold"
)

// NewCmd implements the 'new' command.
type NewCmd struct{}

func (n *NewCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root.Config)
	if err != nil {
		return err
	}
	return RunNew(os.Stdin, os.Stdout, cfg.SourceDir(), time.Now())
}

// RunNew asks for a post on in/out and creates it under srcDir.
func RunNew(in io.Reader, out io.Writer, srcDir string, now time.Time) error {
	post, err := scaffold.Ask(scaffold.NewPrompter(in, out), out, srcDir, now)
	if err != nil {
		return err
	}

	dataPath, postPath, err := scaffold.Create(srcDir, post)
	if err != nil {
		_, _ = fmt.Fprintf(out, "ERROR: Failed to create the new post: %v\n", err)
		return err
	}
	_, _ = fmt.Fprintf(out, "All done!\n  %s\n  %s\n", dataPath, postPath)
	return nil
}
