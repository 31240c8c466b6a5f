package errors

// Kind identifies one member of the closed client error taxonomy.
// Every error the client returns to a caller carries exactly one Kind.
type Kind int

const (
	// KindUnknown covers any non-2xx response that has no dedicated kind.
	// The raw status code is preserved on the error.
	KindUnknown Kind = iota

	// KindUnauthorized is returned for 401 responses.
	KindUnauthorized

	// KindForbidden is returned for 403 responses.
	KindForbidden

	// KindNotFound is returned for 404 responses.
	KindNotFound

	// KindConflict is returned for 409 responses.
	KindConflict

	// KindValidation is returned for 422 responses.
	KindValidation

	// KindRateLimited is returned for 429 responses.
	KindRateLimited

	// KindServerError is returned for 5xx responses.
	KindServerError

	// KindNetwork is returned when no response was received at all
	// (connection refused, DNS failure, timeout, reset).
	KindNetwork
)

// Error codes are stable, machine-readable identifiers for each kind.
const (
	CodeUnknown      = "API_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeNotFound     = "NOT_FOUND"
	CodeConflict     = "CONFLICT"
	CodeValidation   = "VALIDATION_ERROR"
	CodeRateLimit    = "RATE_LIMIT"
	CodeServerError  = "SERVER_ERROR"
	CodeNetworkError = "NETWORK_ERROR"
)

// Default user-facing messages, used when the server does not send one.
const (
	MessageUnknown      = "Ocorreu um erro."
	MessageUnauthorized = "Não autorizado. Faça login novamente."
	MessageForbidden    = "Acesso negado."
	MessageNotFound     = "Recurso não encontrado."
	MessageConflict     = "Conflito de dados."
	MessageValidation   = "Dados inválidos."
	MessageRateLimit    = "Muitas requisições. Tente novamente em instantes."
	MessageServerError  = "Erro interno do servidor."
	MessageNetworkError = "Erro de conexão. Verifique sua internet."
)

// String returns a short lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation error"
	case KindRateLimited:
		return "rate limited"
	case KindServerError:
		return "server error"
	case KindNetwork:
		return "network error"
	default:
		return "api error"
	}
}

// Code returns the stable error code for the kind.
func (k Kind) Code() string {
	switch k {
	case KindUnauthorized:
		return CodeUnauthorized
	case KindForbidden:
		return CodeForbidden
	case KindNotFound:
		return CodeNotFound
	case KindConflict:
		return CodeConflict
	case KindValidation:
		return CodeValidation
	case KindRateLimited:
		return CodeRateLimit
	case KindServerError:
		return CodeServerError
	case KindNetwork:
		return CodeNetworkError
	default:
		return CodeUnknown
	}
}

// DefaultMessage returns the fixed message used when the server sends none.
func (k Kind) DefaultMessage() string {
	switch k {
	case KindUnauthorized:
		return MessageUnauthorized
	case KindForbidden:
		return MessageForbidden
	case KindNotFound:
		return MessageNotFound
	case KindConflict:
		return MessageConflict
	case KindValidation:
		return MessageValidation
	case KindRateLimited:
		return MessageRateLimit
	case KindServerError:
		return MessageServerError
	case KindNetwork:
		return MessageNetworkError
	default:
		return MessageUnknown
	}
}
