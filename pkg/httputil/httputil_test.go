package httputil

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "valid bearer token", header: "Bearer abc123", want: "abc123", ok: true},
		{name: "case insensitive", header: "bearer xyz789", want: "xyz789", ok: true},
		{name: "with extra spaces", header: "Bearer   tok  ", want: "tok", ok: true},
		{name: "no bearer scheme", header: "Basic abc123"},
		{name: "scheme only", header: "Bearer"},
		{name: "empty header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Authorization", tt.header)
			}
			got, ok := BearerToken(h)
			if got != tt.want || ok != tt.ok {
				t.Errorf("BearerToken() = %q, %v; want %q, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestSetBearer(t *testing.T) {
	h := http.Header{}
	SetBearer(h, "tok")
	if got := h.Get("Authorization"); got != "Bearer tok" {
		t.Errorf("Authorization = %q", got)
	}
	SetBearer(h, "")
	if _, ok := h["Authorization"]; ok {
		t.Error("empty token should remove the header")
	}
}

func TestWriteValidationError(t *testing.T) {
	rec := httptest.NewRecorder()
	fields := FieldErrors{}
	fields.Require("name", " ")
	fields.Require("type", "CASH")
	WriteValidationError(rec, "invalid", fields)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	var body ErrorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Message != "invalid" {
		t.Errorf("message = %q", body.Message)
	}
	if len(body.Errors["name"]) != 1 || len(body.Errors["type"]) != 0 {
		t.Errorf("errors = %v", body.Errors)
	}
}

func TestWriteData(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteData(rec, http.StatusCreated, map[string]string{"id": "1"})

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), `"success":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&limit=x&size=500&offset=-2", nil)
	tests := []struct {
		key  string
		want int
	}{
		{"page", 3},
		{"limit", 20},
		{"size", 100},
		{"offset", 1},
		{"missing", 20},
	}
	for _, tt := range tests {
		if got := QueryInt(req, tt.key, 20, 1, 100); got != tt.want {
			t.Errorf("QueryInt(%s) = %d, want %d", tt.key, got, tt.want)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		A int `json:"a"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1,"b":2}`))
	if err := DecodeJSON(req, &v, false); err != nil || v.A != 1 {
		t.Fatalf("lenient decode: %v, a=%d", err, v.A)
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1,"b":2}`))
	if err := DecodeJSON(req, &v, true); err == nil {
		t.Fatal("expected unknown field error")
	}

	req = httptest.NewRequest(http.MethodPost, "/", nil)
	if err := DecodeJSON(req, &v, false); !errors.Is(err, ErrEmptyBody) {
		t.Fatalf("err = %v, want ErrEmptyBody", err)
	}
}
