package shared

import (
	"errors"
	"testing"
)

func TestNormalizeQuery(t *testing.T) {
	tc := []struct {
		name  string
		query string
		want  string
	}{
		{name: "basic normalization", query: "Sezen Aksu", want: "sezen aksu"},
		{name: "extra whitespace", query: "  Sezen   Aksu  ", want: "sezen aksu"},
		{name: "mixed case", query: "SeZeN aKsU", want: "sezen aksu"},
		{name: "empty", query: "   ", want: ""},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeQuery(tt.query); got != tt.want {
				t.Errorf("NormalizeQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	seconds := func(n int) *int { return &n }

	tc := []struct {
		name string
		in   *int
		want string
	}{
		{name: "nil", in: nil, want: "--:--"},
		{name: "negative", in: seconds(-1), want: "--:--"},
		{name: "under a minute", in: seconds(9), want: "0:09"},
		{name: "minutes", in: seconds(245), want: "4:05"},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatDuration(tt.in); got != tt.want {
				t.Errorf("FormatDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestErrors(t *testing.T) {
	t.Run("not found family", func(t *testing.T) {
		for _, err := range []error{ErrTrackNotFound, ErrPlaylistNotFound, ErrInteractionNotFound, ErrPreferencesNotFound} {
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("expected %v to wrap ErrNotFound", err)
			}
		}
	})

	t.Run("validation error unwraps to invalid input", func(t *testing.T) {
		err := NewValidationError("Invalid track data", FieldError{Field: "title", Message: "is required"})
		if !errors.Is(err, ErrInvalidInput) {
			t.Error("expected validation error to wrap ErrInvalidInput")
		}
		if got := err.Error(); got != "Invalid track data (title: is required)" {
			t.Errorf("unexpected message %q", got)
		}
	})
}

func TestValidate(t *testing.T) {
	type payload struct {
		Title    string  `json:"title" validate:"required"`
		Name     *string `json:"name" validate:"omitnil,min=1"`
		Duration *int    `json:"duration" validate:"omitnil,gte=0"`
	}

	t.Run("valid payload", func(t *testing.T) {
		if err := Validate(payload{Title: "Gemiler"}, "bad"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("reports json field names", func(t *testing.T) {
		empty, negative := "", -5
		err := Validate(payload{Name: &empty, Duration: &negative}, "bad")

		var verr *ValidationError
		if !errors.As(err, &verr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if verr.Message != "bad" {
			t.Errorf("expected message 'bad', got %q", verr.Message)
		}

		got := map[string]string{}
		for _, f := range verr.Fields {
			got[f.Field] = f.Message
		}
		if got["title"] != "is required" {
			t.Errorf("expected title to be required, got %q", got["title"])
		}
		if got["name"] != "must not be empty" {
			t.Errorf("expected name to be non-empty, got %q", got["name"])
		}
		if got["duration"] != "must be greater than or equal to 0" {
			t.Errorf("unexpected duration message %q", got["duration"])
		}
	})
}
