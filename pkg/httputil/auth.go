package httputil

import (
	"net/http"
	"strings"
)

const (
	headerAuthorization = "Authorization"
	schemeBearer        = "bearer"
)

// BearerToken returns the credential of an "Authorization: Bearer" header.
// The scheme is matched case-insensitively.
func BearerToken(h http.Header) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(h.Get(headerAuthorization)), " ")
	if !ok || !strings.EqualFold(scheme, schemeBearer) {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// SetBearer sets the bearer credential on h. An empty token removes the
// header.
func SetBearer(h http.Header, token string) {
	if token == "" {
		h.Del(headerAuthorization)
		return
	}
	h.Set(headerAuthorization, "Bearer "+token)
}
