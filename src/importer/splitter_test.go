package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLine(t *testing.T) {
	tests := []struct {
		name string
		line string
		want []string
	}{
		{
			name: "plain comma separated",
			line: "EURUSD,1.1000,buy",
			want: []string{"EURUSD", "1.1000", "buy"},
		},
		{
			name: "fields with surrounding spaces",
			line: " EURUSD , 1.1000 ,buy",
			want: []string{"EURUSD", "1.1000", "buy"},
		},
		{
			name: "quoted field with embedded comma",
			line: `"E-mini S&P, Dec",1,Long`,
			want: []string{"E-mini S&P, Dec", "1", "Long"},
		},
		{
			name: "quoted field with embedded spaces",
			line: `"Open Time",Type`,
			want: []string{"Open Time", "Type"},
		},
		{
			name: "unquoted field with spaces stays whole",
			line: "Open Time,Close Time",
			want: []string{"Open Time", "Close Time"},
		},
		{
			name: "empty fields preserved",
			line: "a,,b",
			want: []string{"a", "", "b"},
		},
		{
			name: "unbalanced quote falls back to naive split",
			line: `"broken,1,2`,
			want: []string{`"broken`, "1", "2"},
		},
		{
			name: "empty line yields one empty field",
			line: "",
			want: []string{""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitLine(tt.line))
		})
	}
}
