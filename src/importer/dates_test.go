package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "metatrader dot format",
			raw:  "2023.10.25 09:35",
			want: "2023-10-25 09:35",
		},
		{
			name: "metatrader dot format with seconds truncates to minutes",
			raw:  "2023.10.25 09:35:12",
			want: "2023-10-25 09:35",
		},
		{
			name: "metatrader date without time defaults to midnight",
			raw:  "2023.10.25",
			want: "2023-10-25 00:00",
		},
		{
			name: "ISO 8601 with zone",
			raw:  "2023-10-25T09:35:00Z",
			want: "2023-10-25 09:35",
		},
		{
			name: "ISO 8601 with offset converts to UTC",
			raw:  "2023-10-25T11:35:00+02:00",
			want: "2023-10-25 09:35",
		},
		{
			name: "space separated timestamp",
			raw:  "2023-10-25 09:35:00",
			want: "2023-10-25 09:35",
		},
		{
			name: "date only",
			raw:  "2023-10-25",
			want: "2023-10-25 00:00",
		},
		{
			name: "empty input falls back to current time",
			raw:  "",
			want: "2024-03-15 10:30",
		},
		{
			name: "unparseable input passes through unchanged",
			raw:  "not a date",
			want: "not a date",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeDate(tt.raw, fixedNow))
		})
	}
}
