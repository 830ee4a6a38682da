package stages

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	tests := []struct {
		format string
		in     any
		want   string
	}{
		{"MMMM D, YYYY", "2015-03-01", "March 1, 2015"},
		{"YYYY-MM-DD", time.Date(2016, 11, 9, 0, 0, 0, 0, time.UTC), "2016-11-09"},
		{"ddd, DD MMM YY", "2015-03-01", "Sun, 01 Mar 15"},
		{"HH:mm:ss", "2015-03-01T13:04:05Z", "13:04:05"},
		{"D MMM at HH:mm", "2015-03-01T13:04:05Z", "1 Mar at 13:04"},
		{"MMMM D [at] h:mm a", "2015-03-01T13:04:05Z", "March 1 at 1:04 pm"},
		{"[Posted] YYYYMMDD", "2015-03-01", "Posted 20150301"},
		{"YYYY", "not a date", "not a date"},
		{"YYYY", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatDate(tt.format, tt.in))
		})
	}
}
