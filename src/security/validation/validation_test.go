package validation

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/tradepulse/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	m.Run()
}

func TestValidateClientContentType(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		wantErr     bool
	}{
		{"text/csv allowed", "text/csv", false},
		{"excel legacy allowed", "application/vnd.ms-excel", false},
		{"case insensitive", "TEXT/CSV", false},
		{"octet-stream allowed", "application/octet-stream", false},
		{"xlsx rejected", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true},
		{"unknown rejected", "application/pdf", true},
		{"empty rejected", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClientContentType(tt.contentType)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidationFailed)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFileContentByMagicBytes(t *testing.T) {
	csvContent := "Ticket,Open Time,Type\n1001,2024.03.15 10:30,buy\n"
	reader := bytes.NewReader([]byte(csvContent))

	detected, err := ValidateFileContentByMagicBytes(reader)
	require.NoError(t, err)
	assert.Contains(t, detected, "text/plain")

	// The reader must be rewound so the parser sees the whole file.
	pos, err := reader.Seek(0, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), pos)
}

func TestValidateFileContentByMagicBytesRejectsBinary(t *testing.T) {
	pdf := append([]byte("%PDF-1.4"), bytes.Repeat([]byte{0x01}, 64)...)
	_, err := ValidateFileContentByMagicBytes(bytes.NewReader(pdf))
	assert.ErrorIs(t, err, ErrValidationFailed)
}

func TestSanitizeForFormulaInjection(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"formula prefix", "=SUM(A1:A9)", "'=SUM(A1:A9)"},
		{"at prefix", "@cmd", "'@cmd"},
		{"plus prefix", "+1+1", "'+1+1"},
		{"leading space before formula", "  =1+1", "'  =1+1"},
		{"plain symbol untouched", "EURUSD", "EURUSD"},
		{"empty untouched", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeForFormulaInjection(tt.in))
		})
	}
}

func TestStripUnprintable(t *testing.T) {
	assert.Equal(t, "EURUSD", StripUnprintable("EUR\x00USD"))
	assert.Equal(t, "line1\nline2", StripUnprintable("line1\nline2"))
	assert.Equal(t, "tab\tok", StripUnprintable("tab\tok\x1b"))
}
