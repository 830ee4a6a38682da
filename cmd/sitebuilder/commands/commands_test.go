package commands

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/kong"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitebuilder/internal/config"
	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		p := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	}
}

func parse(t *testing.T, args ...string) (*kong.Context, *CLI, *Global) {
	t.Helper()
	cli := &CLI{}
	g := &Global{Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	parser, err := kong.New(cli, kong.Vars{"version": "test"}, kong.Bind(g), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	ctx, err := parser.Parse(args)
	require.NoError(t, err)
	return ctx, cli, g
}

func TestLoadConfig_DefaultFileMayBeMissing(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	cfg, err := LoadConfig(config.DefaultFile)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "src"), cfg.SourceDir())
}

func TestLoadConfig_ExplicitMissingFileFails(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "other.yaml"))
	require.Error(t, err)
	assert.True(t, ferrors.HasCategory(err, ferrors.CategoryConfig))
	assert.Equal(t, 7, ferrors.NewCLIErrorAdapter(false, nil).ExitCodeFor(err))
}

func TestBuildCommand_WritesSiteAndReport(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"sitebuilder.yaml":  "site:\n  title: Test\n",
		"layouts/post.html": "<main>{{.contents}}</main>",
		"src/data.json":     `{"title":"Home"}`,
		"src/index.md":      "# Home\n",
		"src/css/site.css":  "body { margin: 0 }\n",
	})
	reportPath := filepath.Join(dir, "report.json")

	ctx, cli, g := parse(t, "--config", filepath.Join(dir, "sitebuilder.yaml"), "build", "--report", reportPath)
	assert.Equal(t, 0, Execute(ctx, cli, g))

	html, err := os.ReadFile(filepath.Join(dir, "build", "index.html"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(html), "<main><h1"))

	raw, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(raw, &report))
	assert.Equal(t, "success", report["outcome"])
}

func TestBuildCommand_FailedBuildExitCode(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"sitebuilder.yaml":  "site:\n  title: Test\n",
		"layouts/post.html": "{{.contents}}",
		"src/data.json":     `{"stylesheets":["css/missing.css"]}`,
		"src/index.md":      "# Home\n",
	})

	ctx, cli, g := parse(t, "--config", filepath.Join(dir, "sitebuilder.yaml"), "build")
	assert.Equal(t, 11, Execute(ctx, cli, g))
	assert.NoDirExists(t, filepath.Join(dir, "build"))
}

func TestRunInit_RefusesOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sitebuilder.yaml")
	require.NoError(t, RunInit(path, false))
	require.Error(t, RunInit(path, false))
	require.NoError(t, RunInit(path, true))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Feed, cfg.Feed)
}

func TestRunNew_CreatesPost(t *testing.T) {
	src := t.TempDir()
	in := strings.NewReader("My First Post\n\nAn excerpt\n\nn\n")
	var out bytes.Buffer

	err := RunNew(in, &out, src, time.Date(2015, 3, 14, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, out.String(), "All done!")
	assert.FileExists(t, filepath.Join(src, "my-first-post", "data.json"))
	assert.FileExists(t, filepath.Join(src, "my-first-post", "index.md"))
}
