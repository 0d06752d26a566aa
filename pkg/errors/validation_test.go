package errors

import (
	"testing"
)

func TestValidateColor(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"short hex", "#fff", false},
		{"long hex", "#1d3557", false},
		{"hex with alpha", "#1d3557cc", false},
		{"keyword", "teal", false},

		{"empty", "", true},
		{"missing hash", "1d3557", true},
		{"bad digits", "#12345z", true},
		{"five digits", "#12345", true},
		{"attribute breakout", `red" onload="x`, true},
		{"function", "rgb(0,0,0)", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateColor(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateColor(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidColor) {
				t.Errorf("ValidateColor(%q) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidColor)
			}
		})
	}
}

func TestValidateShapeID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"generated", "shape-248492", false},
		{"with colon", "stamp:1", false},
		{"underscore", "my_shape", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 200)), true},
		{"space", "shape 1", true},
		{"quote", `shape"1`, true},
		{"leading dash", "-shape", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateShapeID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateShapeID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDocumentName(t *testing.T) {
	if err := ValidateDocumentName("Poster, blue variant"); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateDocumentName("bad\nname"); err == nil {
		t.Error("expected error for control characters")
	}
	if err := ValidateDocumentName(string(make([]rune, 201))); err == nil {
		t.Error("expected error for long names")
	}
}

func TestValidatePath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative", "out/poster.svg", false},
		{"absolute", "/tmp/poster.png", false},
		{"dots in name", "poster..v2.svg", false},

		{"empty", "", true},
		{"traversal", "../etc/passwd", true},
		{"nested traversal", "out/../../x", true},
		{"null byte", "out\x00.svg", true},
		{"newline", "out\n.svg", true},
		{"too long", string(make([]byte, 600)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
