package filetree

import (
	"fmt"
	"io/fs"
	"maps"
	"slices"
	"time"
)

// Key names a file attribute. The constants below are the attributes the
// build stages agree on; any other key is carried through untouched.
type Key string

// Well-known attribute keys.
const (
	KeyData        Key = "data"
	KeyPermalink   Key = "permalink"
	KeyTitle       Key = "title"
	KeyDate        Key = "date"
	KeyExcerpt     Key = "excerpt"
	KeyUnlisted    Key = "unlisted"
	KeyStylesheet  Key = "stylesheet"
	KeyStylesheets Key = "stylesheets"
	KeyAppend      Key = "append"
	KeyAppends     Key = "appends"
	KeyAppended    Key = "appended"
	KeyLayout      Key = "layout"
	KeyFingerprint Key = "fingerprint"
	KeyCollection  Key = "collection"
	KeyNext        Key = "next"
	KeyPrevious    Key = "previous"
	// KeyContents is reserved: it aliases File.Contents and is never stored
	// in the attribute map.
	KeyContents Key = "contents"
)

// File is one record of the tree: raw contents plus an attribute map.
type File struct {
	Contents []byte
	Mode     fs.FileMode
	attrs    map[Key]any
}

// NewFile creates a file with the given contents and no attributes.
func NewFile(contents []byte) *File {
	return &File{Contents: contents, Mode: 0o644, attrs: make(map[Key]any)}
}

// Get returns the attribute stored under key.
func (f *File) Get(key Key) (any, bool) {
	if key == KeyContents {
		return f.Contents, f.Contents != nil
	}
	v, ok := f.attrs[key]
	return v, ok
}

// Has reports whether key is set.
func (f *File) Has(key Key) bool {
	_, ok := f.Get(key)
	return ok
}

// Set stores value under key, overwriting any previous value.
// Setting KeyContents replaces Contents and requires []byte or string.
func (f *File) Set(key Key, value any) {
	if key == KeyContents {
		switch v := value.(type) {
		case []byte:
			f.Contents = v
		case string:
			f.Contents = []byte(v)
		default:
			panic(fmt.Sprintf("filetree: contents must be []byte or string, got %T", value))
		}
		return
	}
	if f.attrs == nil {
		f.attrs = make(map[Key]any)
	}
	f.attrs[key] = value
}

// Keys returns the attribute keys in sorted order. KeyContents is not included.
func (f *File) Keys() []Key {
	return slices.Sorted(maps.Keys(f.attrs))
}

// Attrs returns a shallow copy of the attribute map.
func (f *File) Attrs() map[Key]any {
	return maps.Clone(f.attrs)
}

// String returns the attribute as a string, or "" when absent or not a string.
func (f *File) String(key Key) string {
	s, _ := f.attrs[key].(string)
	return s
}

// Bool returns the attribute as a bool, or false when absent or not a bool.
func (f *File) Bool(key Key) bool {
	b, _ := f.attrs[key].(bool)
	return b
}

// Data returns the parsed structured data of a data file.
func (f *File) Data() map[string]any {
	d, _ := f.attrs[KeyData].(map[string]any)
	return d
}

// Strings returns the attribute as a list of strings. A single string
// is returned as a one-element list; nil means absent or empty.
func (f *File) Strings(key Key) ([]string, error) {
	v, ok := f.attrs[key]
	if !ok || v == nil {
		return nil, nil
	}
	return toStrings(v)
}

// Files returns an attribute holding resolved file references.
func (f *File) Files(key Key) []*File {
	files, _ := f.attrs[key].([]*File)
	return files
}

// Time returns the attribute parsed as a date. Strings are accepted in
// RFC 3339 or YYYY-MM-DD form.
func (f *File) Time(key Key) (time.Time, bool) {
	return ParseTime(f.attrs[key])
}

// ParseTime interprets a structured-data value as a point in time.
func ParseTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}

func toStrings(v any) ([]string, error) {
	switch t := v.(type) {
	case string:
		if t == "" {
			return nil, nil
		}
		return []string{t}, nil
	case []string:
		return t, nil
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("element %d is %T, not a string", i, item)
			}
			out = append(out, s)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("value is %T, not a list of strings", v)
	}
}
