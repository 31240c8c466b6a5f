package errors

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"testing"
	"time"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name            string
		failure         Failure
		expectedKind    Kind
		expectedStatus  int
		expectedMessage string
	}{
		{
			name:            "no response",
			failure:         FromTransport(errors.New("dial tcp: connection refused")),
			expectedKind:    KindNetwork,
			expectedStatus:  0,
			expectedMessage: MessageNetworkError,
		},
		{
			name:            "empty failure",
			failure:         Failure{},
			expectedKind:    KindNetwork,
			expectedMessage: MessageNetworkError,
		},
		{
			name:            "401 with server message",
			failure:         Failure{Status: 401, Body: []byte(`{"message":"Token expirado"}`)},
			expectedKind:    KindUnauthorized,
			expectedStatus:  401,
			expectedMessage: "Token expirado",
		},
		{
			name:            "403 without body",
			failure:         Failure{Status: 403},
			expectedKind:    KindForbidden,
			expectedStatus:  403,
			expectedMessage: MessageForbidden,
		},
		{
			name:            "404",
			failure:         Failure{Status: 404, Body: []byte(`{}`)},
			expectedKind:    KindNotFound,
			expectedStatus:  404,
			expectedMessage: MessageNotFound,
		},
		{
			name:            "409",
			failure:         Failure{Status: 409, Body: []byte(`{"message":"Email já cadastrado"}`)},
			expectedKind:    KindConflict,
			expectedStatus:  409,
			expectedMessage: "Email já cadastrado",
		},
		{
			name:            "422",
			failure:         Failure{Status: 422, Body: []byte(`{"message":["name is required","amount must be positive"]}`)},
			expectedKind:    KindValidation,
			expectedStatus:  422,
			expectedMessage: "name is required; amount must be positive",
		},
		{
			name:            "429",
			failure:         Failure{Status: 429},
			expectedKind:    KindRateLimited,
			expectedStatus:  429,
			expectedMessage: MessageRateLimit,
		},
		{
			name:            "500",
			failure:         Failure{Status: 500, Body: []byte("internal failure")},
			expectedKind:    KindServerError,
			expectedStatus:  500,
			expectedMessage: MessageServerError,
		},
		{
			name:            "503 keeps status",
			failure:         Failure{Status: 503},
			expectedKind:    KindServerError,
			expectedStatus:  503,
			expectedMessage: MessageServerError,
		},
		{
			name:            "unmapped 4xx",
			failure:         Failure{Status: 418, Body: []byte(`{"message":"teapot"}`)},
			expectedKind:    KindUnknown,
			expectedStatus:  418,
			expectedMessage: "teapot",
		},
		{
			name:            "3xx",
			failure:         Failure{Status: 304},
			expectedKind:    KindUnknown,
			expectedStatus:  304,
			expectedMessage: MessageUnknown,
		},
		{
			name:            "message of wrong type",
			failure:         Failure{Status: 400, Body: []byte(`{"message":42}`)},
			expectedKind:    KindUnknown,
			expectedStatus:  400,
			expectedMessage: MessageUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Normalize(tt.failure)
			if err == nil {
				t.Fatal("Expected non-nil error")
			}
			if err.Kind != tt.expectedKind {
				t.Errorf("Expected kind %v, got %v", tt.expectedKind, err.Kind)
			}
			if err.StatusCode != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, err.StatusCode)
			}
			if err.Message != tt.expectedMessage {
				t.Errorf("Expected message %q, got %q", tt.expectedMessage, err.Message)
			}
		})
	}
}

func TestNormalizeValidationFieldErrors(t *testing.T) {
	body := []byte(`{"message":"Dados inválidos","errors":{"email":["invalid format"],"password":["too short","missing digit"]}}`)
	err := Normalize(Failure{Status: 422, Body: body})

	expected := map[string][]string{
		"email":    {"invalid format"},
		"password": {"too short", "missing digit"},
	}
	if !reflect.DeepEqual(err.FieldErrors, expected) {
		t.Errorf("Expected field errors %v, got %v", expected, err.FieldErrors)
	}
	if _, ok := err.Details.(map[string]any); !ok {
		t.Errorf("Expected decoded body in Details, got %T", err.Details)
	}
	if !IsValidation(err) {
		t.Error("Expected IsValidation to be true")
	}
}

func TestNormalizeMalformedFieldErrorsKeepsMessage(t *testing.T) {
	err := Normalize(Failure{Status: 422, Body: []byte(`{"message":"bad","errors":"oops"}`)})
	if err.Message != "bad" {
		t.Errorf("Expected message %q, got %q", "bad", err.Message)
	}
	if err.FieldErrors != nil {
		t.Errorf("Expected no field errors, got %v", err.FieldErrors)
	}
}

func TestNormalizeRetryAfter(t *testing.T) {
	tests := []struct {
		name     string
		header   string
		expected *time.Duration
	}{
		{name: "integer seconds", header: "30", expected: durationPtr(30 * time.Second)},
		{name: "zero", header: "0", expected: durationPtr(0)},
		{name: "missing", header: "", expected: nil},
		{name: "http date", header: "Wed, 21 Oct 2026 07:28:00 GMT", expected: nil},
		{name: "negative", header: "-5", expected: nil},
		{name: "garbage", header: "soon", expected: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := http.Header{}
			if tt.header != "" {
				h.Set("Retry-After", tt.header)
			}
			err := Normalize(Failure{Status: 429, Header: h})
			if err.Kind != KindRateLimited {
				t.Fatalf("Expected rate limited, got %v", err.Kind)
			}
			switch {
			case tt.expected == nil && err.RetryAfter != nil:
				t.Errorf("Expected no retry-after, got %v", *err.RetryAfter)
			case tt.expected != nil && err.RetryAfter == nil:
				t.Errorf("Expected retry-after %v, got none", *tt.expected)
			case tt.expected != nil && *tt.expected != *err.RetryAfter:
				t.Errorf("Expected retry-after %v, got %v", *tt.expected, *err.RetryAfter)
			}
		})
	}
}

func TestNormalizeNetworkWrapsCause(t *testing.T) {
	err := Normalize(FromTransport(context.DeadlineExceeded))
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Error("Expected network error to wrap the transport cause")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("Expected network error to match ErrNetwork")
	}
}

func TestNormalizeRawTextDetails(t *testing.T) {
	err := Normalize(Failure{Status: 502, Body: []byte("<html>Bad Gateway</html>")})
	if err.Details != "<html>Bad Gateway</html>" {
		t.Errorf("Expected raw body in Details, got %v", err.Details)
	}
}

func TestFromResponse(t *testing.T) {
	resp := &http.Response{StatusCode: 404, Header: http.Header{"X-Test": {"1"}}}
	f := FromResponse(resp, []byte(`{"message":"Conta não encontrada"}`))
	err := Normalize(f)
	if !IsNotFound(err) {
		t.Errorf("Expected not found, got %v", err.Kind)
	}
	if err.Message != "Conta não encontrada" {
		t.Errorf("Expected server message, got %q", err.Message)
	}
}

func durationPtr(d time.Duration) *time.Duration {
	return &d
}
