package stages

import (
	"bytes"
	"path"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/util"
	"golang.org/x/net/html"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/pathmatch"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// MarkdownOptions configures the Markdown stage.
type MarkdownOptions struct {
	Patterns   []string // nil means **/*.md
	GFM        bool     // GitHub flavored markdown, tables included
	Tables     bool
	LangPrefix string // class prefix for fenced code languages
	Highlight  bool
}

// DefaultMarkdownOptions mirrors the stock site setup.
func DefaultMarkdownOptions() MarkdownOptions {
	return MarkdownOptions{
		Patterns:   []string{"**/*.md"},
		GFM:        true,
		Tables:     true,
		LangPrefix: "hljs lang-",
		Highlight:  true,
	}
}

// Markdown renders Markdown files to HTML and renames them to .html.
type Markdown struct {
	patterns []string
	md       goldmark.Markdown
}

func NewMarkdown(opts MarkdownOptions) (*Markdown, error) {
	patterns := opts.Patterns
	if patterns == nil {
		patterns = []string{"**/*.md"}
	}
	if err := pathmatch.Validate(patterns); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "markdown: invalid pattern").Fatal().Build()
	}

	var exts []goldmark.Extender
	if opts.GFM {
		exts = append(exts, extension.GFM)
	}
	if opts.Tables && !opts.GFM {
		exts = append(exts, extension.Table)
	}
	md := goldmark.New(
		goldmark.WithExtensions(exts...),
		goldmark.WithRendererOptions(
			gmhtml.WithUnsafe(),
			renderer.WithNodeRenderers(util.Prioritized(&codeBlockRenderer{
				langPrefix: opts.LangPrefix,
				highlight:  opts.Highlight,
			}, 100)),
		),
	)
	return &Markdown{patterns: patterns, md: md}, nil
}

func (s *Markdown) Transform(bc *build.Context) error {
	keys, err := matchTree(bc.Files, s.patterns)
	if err != nil {
		return err
	}
	for _, key := range keys {
		f, _ := bc.Files.Get(key)
		var buf bytes.Buffer
		if err := s.md.Convert(f.Contents, &buf); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryBuild, "markdown render failed").
				Fatal().
				WithContext("path", key).
				Build()
		}
		f.Contents = buf.Bytes()

		dest := strings.TrimSuffix(key, path.Ext(key)) + ".html"
		if err := bc.Files.Rename(key, dest); err != nil {
			return ferrors.WrapError(err, ferrors.CategoryBuild, "markdown output collides with an existing file").
				Fatal().
				WithContext("path", key).
				WithContext("target", dest).
				Build()
		}
	}
	bc.Logger.Debug("Rendered markdown", logfields.Files(len(keys)))
	return nil
}

// codeBlockRenderer renders fenced code as <pre><code class="PREFIXlang">,
// syntax highlighted with chroma CSS classes when the language is known and
// HTML-escaped verbatim otherwise.
type codeBlockRenderer struct {
	langPrefix string
	highlight  bool
}

func (r *codeBlockRenderer) RegisterFuncs(reg renderer.NodeRendererFuncRegisterer) {
	reg.Register(gmast.KindFencedCodeBlock, r.renderFencedCode)
}

func (r *codeBlockRenderer) renderFencedCode(w util.BufWriter, source []byte, node gmast.Node, entering bool) (gmast.WalkStatus, error) {
	if !entering {
		return gmast.WalkContinue, nil
	}
	n := node.(*gmast.FencedCodeBlock)

	var code strings.Builder
	lines := n.Lines()
	for i := 0; i < lines.Len(); i++ {
		seg := lines.At(i)
		code.Write(seg.Value(source))
	}
	lang := string(n.Language(source))

	_, _ = w.WriteString("<pre><code")
	if lang != "" {
		_, _ = w.WriteString(` class="` + html.EscapeString(r.langPrefix+lang) + `"`)
	}
	_ = w.WriteByte('>')
	if !r.highlight || !highlightCode(w, lang, code.String()) {
		_, _ = w.WriteString(html.EscapeString(code.String()))
	}
	_, _ = w.WriteString("</code></pre>\n")
	return gmast.WalkSkipChildren, nil
}

// highlightCode writes chroma class-annotated markup for code. It reports
// false, having written nothing, when the language is unknown or
// tokenizing fails.
func highlightCode(w util.BufWriter, lang, code string) bool {
	if lang == "" {
		return false
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return false
	}
	lexer = chroma.Coalesce(lexer)
	it, err := lexer.Tokenise(nil, code)
	if err != nil {
		return false
	}
	var buf bytes.Buffer
	formatter := chromahtml.New(chromahtml.WithClasses(true), chromahtml.PreventSurroundingPre(true))
	if err := formatter.Format(&buf, styles.Fallback, it); err != nil {
		return false
	}
	_, _ = w.Write(buf.Bytes())
	return true
}
