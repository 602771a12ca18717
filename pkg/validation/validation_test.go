package validation_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/JaimeStill/lostfound/pkg/validation"
)

type report struct {
	Title    string  `json:"title" validate:"notblank,max=20"`
	Kind     string  `json:"kind" validate:"oneof=lost found"`
	Date     string  `json:"date" validate:"required,datetime=2006-01-02"`
	Time     *string `json:"time,omitempty" validate:"omitempty,datetime=15:04"`
	Location *string `json:"location" validate:"omitempty,notblank"`
}

func ptr(s string) *string { return &s }

func TestStructValid(t *testing.T) {
	r := report{Title: "Umbrella", Kind: "lost", Date: "2026-03-14", Time: ptr("09:30")}
	if err := validation.Struct(r); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestStructInvalid(t *testing.T) {
	r := report{
		Title:    "   ",
		Kind:     "stolen",
		Date:     "14/03/2026",
		Time:     ptr("9am"),
		Location: ptr(" "),
	}

	err := validation.Struct(r)
	if !errors.Is(err, validation.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}

	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("err is %T, want *validation.Error", err)
	}

	want := map[string]string{
		"title":    "is required",
		"kind":     "must be one of: lost found",
		"date":     "must match the format 2006-01-02",
		"time":     "must match the format 15:04",
		"location": "is required",
	}
	for field, msg := range want {
		if got := verr.Fields[field]; got != msg {
			t.Errorf("Fields[%q] = %q, want %q", field, got, msg)
		}
	}
}

func TestStructMaxLength(t *testing.T) {
	r := report{Title: strings.Repeat("x", 21), Kind: "found", Date: "2026-03-14"}

	var verr *validation.Error
	if !errors.As(validation.Struct(r), &verr) {
		t.Fatal("expected *validation.Error")
	}
	if verr.Fields["title"] != "must be at most 20 characters" {
		t.Errorf("title = %q", verr.Fields["title"])
	}
	if !strings.HasPrefix(verr.Error(), "validation failed: title:") {
		t.Errorf("Error() = %q", verr.Error())
	}
}
