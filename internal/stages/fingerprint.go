package stages

import (
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"

	"git.home.luguber.info/inful/sitebuilder/internal/build"
	"git.home.luguber.info/inful/sitebuilder/internal/filetree"
	"git.home.luguber.info/inful/sitebuilder/internal/pathmatch"

	ferrors "git.home.luguber.info/inful/sitebuilder/internal/foundation/errors"
)

var DefaultFingerprintPatterns = []string{"*/index.md", "index.md"}

// Fingerprint stamps content files with a stable hash of their metadata and
// body. Layouts use it for cache busting and change detection.
type Fingerprint struct {
	patterns []string
}

func NewFingerprint(patterns []string) (*Fingerprint, error) {
	if patterns == nil {
		patterns = DefaultFingerprintPatterns
	}
	if err := pathmatch.Validate(patterns); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "fingerprint: invalid pattern").Fatal().Build()
	}
	return &Fingerprint{patterns: patterns}, nil
}

func (s *Fingerprint) Transform(bc *build.Context) error {
	keys, err := matchTree(bc.Files, s.patterns)
	if err != nil {
		return err
	}
	for _, key := range keys {
		f, _ := bc.Files.Get(key)
		fp, err := ComputeFingerprint(f)
		if err != nil {
			return ferrors.WrapError(err, ferrors.CategoryBuild, "fingerprint failed").
				Fatal().
				WithContext("path", key).
				Build()
		}
		f.Set(filetree.KeyFingerprint, fp)
	}
	return nil
}

// ComputeFingerprint hashes the record's plain attributes (serialized as YAML,
// excluding the fingerprint itself and resolved references) together with its
// contents.
func ComputeFingerprint(f *filetree.File) (string, error) {
	fields := make(map[string]any)
	for k, v := range f.Attrs() {
		if string(k) == mdfp.FingerprintField || k == filetree.KeyFingerprint {
			continue
		}
		switch v.(type) {
		case *filetree.File, []*filetree.File:
			continue
		}
		fields[string(k)] = v
	}

	frontmatter := ""
	if len(fields) > 0 {
		serialized, err := yaml.Marshal(fields)
		if err != nil {
			return "", err
		}
		frontmatter = strings.TrimSuffix(string(serialized), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(frontmatter, string(f.Contents)), nil
}
