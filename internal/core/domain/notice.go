package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// ErrorKind is the "tipo" tag of a backend error payload.
type ErrorKind string

const (
	// ErrorKindUnset means the payload carried no tag at all.
	ErrorKindUnset ErrorKind = ""

	// ErrorKindUnknown means a tag was present but not recognised.
	ErrorKindUnknown ErrorKind = "UNKNOWN"

	ErrorKindDatabase           ErrorKind = "DATABASE"
	ErrorKindValidationDocument ErrorKind = "VALIDATION_DOCUMENT"
	ErrorKindDocument           ErrorKind = "DOCUMENT"
	ErrorKindFile               ErrorKind = "FILE"
	ErrorKindOCR                ErrorKind = "OCR"
)

// The backend speaks Spanish on the wire; English aliases are accepted too.
var errorKindTags = map[string]ErrorKind{
	"DATABASE":             ErrorKindDatabase,
	"BASE_DE_DATOS":        ErrorKindDatabase,
	"VALIDATION_DOCUMENT":  ErrorKindValidationDocument,
	"VALIDACION_DOCUMENTO": ErrorKindValidationDocument,
	"DOCUMENT":             ErrorKindDocument,
	"DOCUMENTO":            ErrorKindDocument,
	"FILE":                 ErrorKindFile,
	"ARCHIVO":              ErrorKindFile,
	"OCR":                  ErrorKindOCR,
}

// ParseErrorKind maps a wire tag to an ErrorKind.
func ParseErrorKind(tag string) ErrorKind {
	tag = strings.ToUpper(strings.TrimSpace(tag))
	if tag == "" {
		return ErrorKindUnset
	}
	if k, ok := errorKindTags[tag]; ok {
		return k
	}
	return ErrorKindUnknown
}

// ErrorPayload is a decoded backend error. It lives for a single failed
// request and is consumed once by the classifier.
type ErrorPayload struct {
	Kind       ErrorKind `json:"kind"`
	RawKind    string    `json:"raw_kind,omitempty"`
	Subkind    string    `json:"subkind,omitempty"`
	Message    string    `json:"message,omitempty"`
	Details    []string  `json:"details,omitempty"`
	Similarity *float64  `json:"similarity,omitempty"`

	// Status is the transport status; 0 means the request never got a response.
	Status int `json:"status"`

	// TopMessage is the top-level "message" of non-tagged error bodies.
	TopMessage string `json:"top_message,omitempty"`
}

type wireErrorFields struct {
	Tipo      string   `json:"tipo"`
	Subtipo   string   `json:"subtipo"`
	Mensaje   string   `json:"mensaje"`
	Detalles  []string `json:"detalles"`
	Faltantes []string `json:"faltantes"`
	Similitud *float64 `json:"similitud"`
}

type wireErrorEnvelope struct {
	wireErrorFields
	Error   json.RawMessage `json:"error"`
	Status  *int            `json:"status"`
	Message string          `json:"message"`
}

// DecodeErrorPayload decodes a failed response body. It accepts
// {error:{tipo,...}}, a bare {tipo,...}, and {status,message}. Bodies that
// are not JSON yield an untagged payload carrying only the status.
func DecodeErrorPayload(status int, body []byte) ErrorPayload {
	p := ErrorPayload{Status: status}

	var env wireErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return p
	}
	if env.Status != nil && status == 0 {
		p.Status = *env.Status
	}
	p.TopMessage = env.Message

	fields := env.wireErrorFields
	if len(env.Error) > 0 && string(env.Error) != "null" {
		var nested wireErrorFields
		if err := json.Unmarshal(env.Error, &nested); err == nil {
			fields = nested
		} else {
			var s string
			if err := json.Unmarshal(env.Error, &s); err == nil && p.TopMessage == "" {
				p.TopMessage = s
			}
		}
	}

	p.Kind = ParseErrorKind(fields.Tipo)
	if p.Kind == ErrorKindUnknown {
		p.RawKind = fields.Tipo
	}
	p.Subkind = fields.Subtipo
	p.Message = fields.Mensaje
	p.Similarity = fields.Similitud
	p.Details = fields.Detalles
	if len(p.Details) == 0 {
		p.Details = fields.Faltantes
	}
	return p
}

// Severity of a user-facing notice.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Accent returns the border colour used for the severity.
func (s Severity) Accent() string {
	if s == SeverityWarning {
		return "#ff9800"
	}
	return "#f44336"
}

// NoticeTimeout is how long a notice stays on screen.
const NoticeTimeout = 6 * time.Second

// Notice is a transient, auto-dismissing message shown to the user.
type Notice struct {
	Category  string   `json:"category"`
	Title     string   `json:"title"`
	Body      string   `json:"body"`
	Severity  Severity `json:"severity"`
	Accent    string   `json:"accent"`
	Fields    []string `json:"fields,omitempty"`
	TimeoutMs int64    `json:"timeout_ms"`
}

// RemoteError is implemented by errors that carry a decoded backend payload.
type RemoteError interface {
	error
	Payload() ErrorPayload
}
