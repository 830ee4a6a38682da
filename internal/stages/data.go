package stages

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
	"git.home.luguber.info/inful/sitebuilder/internal/logfields"
	"git.home.luguber.info/inful/sitebuilder/internal/pathmatch"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

// DefaultDataPatterns selects structured-data files anywhere in the tree.
var DefaultDataPatterns = []string{"**/*.json", "**/*.yaml", "**/*.yml", "**/*.toml"}

// Data parses structured-data files into their data attribute. The format
// is chosen by file extension.
type Data struct {
	patterns []string
}

func NewData(patterns []string) (*Data, error) {
	if patterns == nil {
		patterns = DefaultDataPatterns
	}
	if err := pathmatch.Validate(patterns); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "data: invalid pattern").Fatal().Build()
	}
	return &Data{patterns: patterns}, nil
}

func (s *Data) Transform(bc *build.Context) error {
	keys, err := matchTree(bc.Files, s.patterns)
	if err != nil {
		return err
	}
	for _, key := range keys {
		f, _ := bc.Files.Get(key)
		data, err := ParseData(path.Ext(key), f.Contents)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryBuild, "invalid data file").
				Fatal().
				WithContext("path", key).
				Build()
		}
		f.Set(filetree.KeyData, data)
	}
	bc.Logger.Debug("Parsed data files", logfields.Files(len(keys)))
	return nil
}

// ParseData decodes raw as a key/value document in the format named by ext
// (".json", ".yaml", ".yml" or ".toml"). An empty document yields an empty map.
func ParseData(ext string, raw []byte) (map[string]any, error) {
	out := make(map[string]any)
	if len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}

	var err error
	switch strings.ToLower(ext) {
	case ".json":
		err = json.Unmarshal(raw, &out)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &out)
	case ".toml":
		err = toml.Unmarshal(raw, &out)
		if err == nil {
			normalizeTOML(out)
		}
	default:
		return nil, fmt.Errorf("unsupported data format %q", ext)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeTOML replaces TOML local date/time values with plain Go values so
// later stages see the same shapes as for JSON and YAML input.
func normalizeTOML(m map[string]any) {
	for k, v := range m {
		m[k] = normalizeTOMLValue(v)
	}
}

func normalizeTOMLValue(v any) any {
	switch t := v.(type) {
	case toml.LocalDate:
		return t.AsTime(time.UTC)
	case toml.LocalDateTime:
		return t.AsTime(time.UTC)
	case toml.LocalTime:
		return t.String()
	case map[string]any:
		normalizeTOML(t)
		return t
	case []any:
		for i := range t {
			t[i] = normalizeTOMLValue(t[i])
		}
		return t
	}
	return v
}
