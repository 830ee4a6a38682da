package stages

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
)

// momentTokens maps moment.js format tokens to Go layout fragments.
// Longer tokens are listed first so they win over their prefixes.
var momentTokens = []struct{ token, layout string }{
	{"YYYY", "2006"},
	{"YY", "06"},
	{"MMMM", "January"},
	{"MMM", "Jan"},
	{"MM", "01"},
	{"M", "1"},
	{"dddd", "Monday"},
	{"ddd", "Mon"},
	{"DD", "02"},
	{"D", "2"},
	{"HH", "15"},
	{"hh", "03"},
	{"h", "3"},
	{"mm", "04"},
	{"m", "4"},
	{"ss", "05"},
	{"s", "5"},
	{"A", "PM"},
	{"a", "pm"},
	{"ZZ", "-0700"},
	{"Z", "-07:00"},
}

// formatMoment renders t with a moment.js style format. Text inside [...] is
// literal, as is any run of letters that is not made up entirely of tokens,
// so words like "at" survive.
func formatMoment(t time.Time, format string) string {
	var b strings.Builder
	for len(format) > 0 {
		switch c := format[0]; {
		case c == '[':
			end := strings.IndexByte(format, ']')
			if end < 0 {
				b.WriteString(format[1:])
				return b.String()
			}
			b.WriteString(format[1:end])
			format = format[end+1:]
		case isASCIILetter(c):
			n := 1
			for n < len(format) && isASCIILetter(format[n]) {
				n++
			}
			word := format[:n]
			if layouts, ok := tokenize(word); ok {
				for _, l := range layouts {
					b.WriteString(t.Format(l))
				}
			} else {
				b.WriteString(word)
			}
			format = format[n:]
		default:
			b.WriteByte(c)
			format = format[1:]
		}
	}
	return b.String()
}

// tokenize splits word into format tokens, longest match first.
func tokenize(word string) ([]string, bool) {
	var layouts []string
	for len(word) > 0 {
		found := false
		for _, tok := range momentTokens {
			if strings.HasPrefix(word, tok.token) {
				layouts = append(layouts, tok.layout)
				word = word[len(tok.token):]
				found = true
				break
			}
		}
		if !found {
			return nil, false
		}
	}
	return layouts, true
}

func isASCIILetter(c byte) bool { return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' }

// DefaultFuncs returns the helper registry handed to layout templates.
// The returned map is fresh; callers may add to it.
func DefaultFuncs() template.FuncMap {
	return template.FuncMap{
		"date":   FormatDate,
		"moment": FormatDate,
		"raw":    rawHTML,
		"css":    rawCSS,
		"attr":   attr,
	}
}

// FormatDate renders v, a time or date string, with a moment.js style
// format such as "MMMM D, YYYY". Values that are not dates are printed as is.
func FormatDate(format string, v any) string {
	t, ok := filetree.ParseTime(v)
	if !ok {
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	}
	return formatMoment(t, format)
}

func contentsOf(v any) string {
	switch t := v.(type) {
	case *filetree.File:
		if t == nil {
			return ""
		}
		return string(t.Contents)
	case []byte:
		return string(t)
	case string:
		return t
	case template.HTML:
		return string(t)
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}

func rawHTML(v any) template.HTML { return template.HTML(contentsOf(v)) } //nolint:gosec // embedded site content is trusted
func rawCSS(v any) template.CSS   { return template.CSS(contentsOf(v)) }  //nolint:gosec // embedded site content is trusted

func attr(f *filetree.File, key string) any {
	if f == nil {
		return nil
	}
	v, _ := f.Get(filetree.Key(key))
	return v
}
