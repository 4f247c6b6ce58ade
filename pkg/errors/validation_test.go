package errors

import (
	"math"
	"testing"
)

func TestValidatePositive(t *testing.T) {
	tests := []struct {
		name    string
		input   float64
		wantErr bool
	}{
		{"one", 1, false},
		{"small", 1e-9, false},
		{"large", 1e12, false},

		{"zero", 0, true},
		{"negative", -2, true},
		{"NaN", math.NaN(), true},
		{"+Inf", math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePositive("wavelength", tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePositive(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidConfig) {
				t.Errorf("ValidatePositive(%v) code = %v, want %v", tt.input, GetCode(err), ErrCodeInvalidConfig)
			}
		})
	}
}

func TestValidateFinite(t *testing.T) {
	if err := ValidateFinite("scale", -3); err != nil {
		t.Errorf("negative scale should be accepted: %v", err)
	}
	if err := ValidateFinite("scale", 0); err != nil {
		t.Errorf("zero scale should be accepted: %v", err)
	}
	if err := ValidateFinite("scale", math.Inf(-1)); err == nil {
		t.Error("-Inf scale should be rejected")
	}
}

func TestValidateElementID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "path12", false},
		{"dashes", "layer-1_rect.3", false},

		{"empty", "", true},
		{"too long", string(make([]byte, 300)), true},
		{"space", "path 12", true},
		{"tab", "path\t12", true},
		{"control char", "foo\x01bar", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateElementID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateElementID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFontFamily(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"humor sans", "Humor Sans", false},
		{"quoted", "'xkcd Script'", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"semicolon", "Arial;fill:red", true},
		{"brace", "Arial}", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFontFamily(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFontFamily(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateFontPath(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"ttf", "fonts/Humor-Sans.ttf", false},
		{"otf upper", "HUMOR.OTF", false},

		{"empty", "", true},
		{"woff", "xkcd-script.woff", true},
		{"no extension", "font", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFontPath(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFontPath(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}
