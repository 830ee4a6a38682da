// Package scaffold creates new posts interactively.
package scaffold

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// PostBody is the placeholder content of a new post.
const PostBody = "Your post goes here!\n"

var slugPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Post is the metadata of a new post.
type Post struct {
	Title    string
	Slug     string
	Excerpt  string
	Date     string
	Unlisted bool
}

// Ask collects a post from p. Invalid answers are reported on out and the
// question is asked again. srcDir is used to reject slugs already taken.
func Ask(p Prompter, out io.Writer, srcDir string, now time.Time) (*Post, error) {
	post := &Post{}
	var err error

	if post.Title, err = ask(p, out, Question{Message: "Title", Validate: validateTitle}); err != nil {
		return nil, err
	}
	if post.Slug, err = ask(p, out, Question{
		Message:  "Permalink",
		Default:  Slugify(post.Title),
		Validate: func(s string) error { return validateSlug(srcDir, s) },
	}); err != nil {
		return nil, err
	}
	if post.Excerpt, err = ask(p, out, Question{Message: "Excerpt"}); err != nil {
		return nil, err
	}
	if post.Date, err = ask(p, out, Question{
		Message:  "Date",
		Default:  now.Format(time.DateOnly),
		Validate: validateDate,
	}); err != nil {
		return nil, err
	}
	unlisted, err := ask(p, out, Question{Message: "Unlisted?", Default: "true", Confirm: true})
	if err != nil {
		return nil, err
	}
	post.Unlisted = unlisted == "true"
	return post, nil
}

func ask(p Prompter, out io.Writer, q Question) (string, error) {
	for {
		answer, err := p.Prompt(q)
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = q.Default
		}
		if q.Confirm {
			b, ok := parseConfirm(answer)
			if !ok {
				_, _ = fmt.Fprintln(out, ">> Please answer yes or no")
				continue
			}
			answer = strconv.FormatBool(b)
		}
		if q.Validate != nil {
			if verr := q.Validate(answer); verr != nil {
				if ce, ok := ferrors.AsClassified(verr); ok && ce.Category() == ferrors.CategoryValidation {
					_, _ = fmt.Fprintf(out, ">> %s\n", ce.Message())
					continue
				}
				return "", verr
			}
		}
		return answer, nil
	}
}

func parseConfirm(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "y", "yes", "true":
		return true, true
	case "n", "no", "false":
		return false, true
	}
	return false, false
}

func validateTitle(s string) error {
	if utf8.RuneCountInString(s) <= 3 {
		return ferrors.ValidationError("Title must be more than 3 characters").Build()
	}
	return nil
}

func validateSlug(srcDir, s string) error {
	if !slugPattern.MatchString(s) {
		return ferrors.ValidationError("Invalid: must be lowercase letters, numbers, and dashes").Build()
	}
	_, err := os.Stat(filepath.Join(srcDir, s))
	switch {
	case err == nil:
		return ferrors.ValidationError("Already exists").WithContext("slug", s).Build()
	case errors.Is(err, os.ErrNotExist):
		return nil
	default:
		return ferrors.WrapError(err, ferrors.CategoryFileSystem, "check post directory").Fatal().Build()
	}
}

func validateDate(s string) error {
	if _, err := time.Parse(time.DateOnly, s); err != nil {
		return ferrors.ValidationError("Invalid: date must be YYYY-MM-DD").Build()
	}
	return nil
}

// Slugify turns a title into a URL path segment of lowercase ASCII letters,
// digits and dashes. Accents are stripped; other characters separate words.
func Slugify(title string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	plain, _, err := transform.String(t, title)
	if err != nil {
		plain = title
	}

	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(plain) {
		if r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

type postData struct {
	Date     string `json:"date"`
	Title    string `json:"title"`
	Excerpt  string `json:"excerpt"`
	Unlisted bool   `json:"unlisted,omitempty"`
}

// Create writes srcDir/<slug>/data.json and index.md. A failure part way may
// leave the post directory behind.
func Create(srcDir string, post *Post) (dataPath, postPath string, err error) {
	dir := filepath.Join(srcDir, post.Slug)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "create post directory").
			Fatal().
			WithContext("path", dir).
			Build()
	}

	data, err := json.MarshalIndent(postData{
		Date:     post.Date,
		Title:    post.Title,
		Excerpt:  post.Excerpt,
		Unlisted: post.Unlisted,
	}, "", "  ")
	if err != nil {
		return "", "", ferrors.WrapError(err, ferrors.CategoryInternal, "encode post data").Fatal().Build()
	}

	dataPath = filepath.Join(dir, "data.json")
	if err := os.WriteFile(dataPath, append(data, '\n'), 0o644); err != nil {
		return "", "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "write post data").
			Fatal().
			WithContext("path", dataPath).
			Build()
	}
	postPath = filepath.Join(dir, "index.md")
	if err := os.WriteFile(postPath, []byte(PostBody), 0o644); err != nil {
		return "", "", ferrors.WrapError(err, ferrors.CategoryFileSystem, "write post").
			Fatal().
			WithContext("path", postPath).
			Build()
	}
	return dataPath, postPath, nil
}
