package errors

import (
	"errors"
	"math"
	"net/http"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeNoSVGRoot, "no svg in %s", "input")

	if err.Code != ErrCodeNoSVGRoot {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeNoSVGRoot)
	}

	if err.Message != "no svg in input" {
		t.Errorf("Message = %v, want %v", err.Message, "no svg in input")
	}

	expected := "NO_SVG_ROOT: no svg in input"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeRasterize, cause, "render failed")

	if err.Code != ErrCodeRasterize {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeRasterize)
	}

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	expected := "RASTERIZE_FAILED: render failed: underlying error"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{"matching code", New(ErrCodeNoURI, "test"), ErrCodeNoURI, true},
		{"non-matching code", New(ErrCodeNoURI, "test"), ErrCodeNoSVGRoot, false},
		{"wrapped outer code", Wrap(ErrCodeRasterize, New(ErrCodeNoURI, "inner"), "outer"), ErrCodeRasterize, true},
		{"fmt wrapped", wrapf(New(ErrCodeNoSelection, "none")), ErrCodeNoSelection, true},
		{"plain error", errors.New("plain"), ErrCodeInvalidInput, false},
		{"nil error", nil, ErrCodeInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func wrapf(err error) error {
	return &wrapped{err}
}

type wrapped struct{ err error }

func (w *wrapped) Error() string { return "wrapped: " + w.err.Error() }
func (w *wrapped) Unwrap() error { return w.err }

func TestGetCodeAndUserMessage(t *testing.T) {
	err := New(ErrCodeFileTooLarge, "file exceeds %d bytes", 10)
	if GetCode(err) != ErrCodeFileTooLarge {
		t.Errorf("GetCode() = %v", GetCode(err))
	}
	if UserMessage(err) != "file exceeds 10 bytes" {
		t.Errorf("UserMessage() = %q", UserMessage(err))
	}

	plain := errors.New("plain")
	if GetCode(plain) != "" {
		t.Errorf("GetCode(plain) = %v, want empty", GetCode(plain))
	}
	if UserMessage(plain) != "plain" {
		t.Errorf("UserMessage(plain) = %q", UserMessage(plain))
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeNoSVGRoot, "x"), http.StatusBadRequest},
		{New(ErrCodeNoSelection, "x"), http.StatusBadRequest},
		{New(ErrCodeFileTooLarge, "x"), http.StatusRequestEntityTooLarge},
		{New(ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{New(ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{New(ErrCodeRasterize, "x"), http.StatusInternalServerError},
		{wrapf(New(ErrCodeInvalidFilename, "x")), http.StatusBadRequest},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestValidateFilename(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"simple", "converted-image.png", false},
		{"spaces", "my image.png", false},
		{"empty", "", true},
		{"slash", "dir/out.png", true},
		{"backslash", `dir\out.png`, true},
		{"dotdot", "..", true},
		{"control", "out\x00.png", true},
		{"too long", string(make([]byte, 256)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFilename(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFilename(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidFilename) {
				t.Errorf("expected INVALID_FILENAME, got %v", err)
			}
		})
	}
}

func TestValidateScaleAndQuality(t *testing.T) {
	scales := map[float64]bool{1: false, 2.5: false, 16: false, 0: true, -1: true, 17: true, math.NaN(): true, math.Inf(1): true}
	for s, wantErr := range scales {
		if err := ValidateScale(s); (err != nil) != wantErr {
			t.Errorf("ValidateScale(%v) error = %v, wantErr %v", s, err, wantErr)
		}
	}

	qualities := map[float64]bool{0: false, 0.5: false, 1: false, -0.1: true, 1.1: true, math.NaN(): true}
	for q, wantErr := range qualities {
		if err := ValidateQuality(q); (err != nil) != wantErr {
			t.Errorf("ValidateQuality(%v) error = %v, wantErr %v", q, err, wantErr)
		}
	}
}
