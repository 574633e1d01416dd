package extract

import (
	"os"
	"path/filepath"
	"testing"

	"talentalign/internal/errors"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		filename string
		expected Kind
	}{
		{"resume.pdf", KindPDF},
		{"Resume.PDF", KindPDF},
		{"resume.docx", KindDocx},
		{"resume.txt", KindText},
		{"resume.md", KindText},
		{"resume", KindText},
		{"archive.tar.pdf", KindPDF},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			if got := DetectKind(tt.filename); got != tt.expected {
				t.Errorf("DetectKind(%q) = %v, want %v", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestFromBytesPlainText(t *testing.T) {
	got, err := FromBytes("resume.txt", []byte("Line one\r\nLine two\r\n"))
	if err != nil {
		t.Fatalf("FromBytes returned error: %v", err)
	}
	if got != "Line one\nLine two" {
		t.Errorf("FromBytes = %q, want normalized text", got)
	}
}

func TestFromFileNotFound(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "missing.txt"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}

	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("error type = %T, want *errors.AppError", err)
	}
	if appErr.Code != errors.ErrCodeFileNotFound {
		t.Errorf("error code = %s, want %s", appErr.Code, errors.ErrCodeFileNotFound)
	}
}

func TestFromFileReadsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resume.txt")
	if err := os.WriteFile(path, []byte("Python developer with aws experience."), 0600); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	got, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile returned error: %v", err)
	}
	if got != "Python developer with aws experience." {
		t.Errorf("FromFile = %q", got)
	}
}

func TestFromBytesMalformedPDF(t *testing.T) {
	_, err := FromBytes("resume.pdf", []byte("not a pdf"))
	if err == nil {
		t.Fatal("expected error for malformed pdf bytes")
	}
	appErr, ok := err.(*errors.AppError)
	if !ok {
		t.Fatalf("error type = %T, want *errors.AppError", err)
	}
	if appErr.Code != errors.ErrCodeUnsupportedFormat {
		t.Errorf("error code = %s, want %s", appErr.Code, errors.ErrCodeUnsupportedFormat)
	}
}

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "windows line endings",
			input:    "a\r\nb",
			expected: "a\nb",
		},
		{
			name:     "control characters stripped",
			input:    "a\x00b\x07c",
			expected: "abc",
		},
		{
			name:     "blank line runs collapsed",
			input:    "a\n\n\n\n\nb",
			expected: "a\n\nb",
		},
		{
			name:     "tabs preserved",
			input:    "a\tb",
			expected: "a\tb",
		},
		{
			name:     "surrounding whitespace trimmed",
			input:    "  \n text \n ",
			expected: "text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}
