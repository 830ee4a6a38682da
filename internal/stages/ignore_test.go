package stages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIgnore_DefaultPatterns(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "index.html"},
		entry{path: "data.json"},
		entry{path: "css/site.css"},
		entry{path: "sass/site.scss"},
		entry{path: "post/data.json"},
		entry{path: "post/index.html"},
		entry{path: "post/deep/data.json"},
	)

	st, err := NewIgnore(DefaultIgnorePatterns)
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	assert.Equal(t, []string{"index.html", "post/index.html", "post/deep/data.json"}, bc.Files.Paths())
}

func TestIgnore_NegationKeepsFiles(t *testing.T) {
	bc := newTestContext(t,
		entry{path: "css/site.css"},
		entry{path: "css/print.css"},
	)

	st, err := NewIgnore([]string{"css/*", "!css/print.css"})
	require.NoError(t, err)
	require.NoError(t, st.Transform(bc))

	assert.Equal(t, []string{"css/print.css"}, bc.Files.Paths())
}
