package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	pkgerrors "github.com/lojinha-labs/storefront-backend/pkg/errors"
)

type samplePayload struct {
	Username string `json:"username" validate:"required,max=64"`
	Quantity int    `json:"quantity" validate:"omitempty,min=1"`
}

func TestDecodeJSONBodyValid(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"username":"ana","quantity":2}`))

	var dest samplePayload
	if err := DecodeJSONBody(r, &dest); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dest.Username != "ana" || dest.Quantity != 2 {
		t.Fatalf("unexpected decode result %+v", dest)
	}
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"username":"ana","extra":true}`))

	var dest samplePayload
	err := DecodeJSONBody(r, &dest)
	if !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecodeJSONBodyReportsFieldsByJSONTag(t *testing.T) {
	r := httptest.NewRequest("POST", "/", strings.NewReader(`{"quantity":0}`))

	var dest samplePayload
	err := DecodeJSONBody(r, &dest)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	details, ok := typed.Details().(map[string]string)
	if !ok {
		t.Fatalf("expected field details, got %v", typed.Details())
	}
	if details["username"] != "is required" {
		t.Fatalf("expected username requirement in details, got %v", details)
	}
}

func TestSanitizeString(t *testing.T) {
	if got := SanitizeString("  ana  ", 0); got != "ana" {
		t.Fatalf("expected trimmed value, got %q", got)
	}
	if got := SanitizeString("abcdef", 3); got != "abc" {
		t.Fatalf("expected truncated value, got %q", got)
	}
}
