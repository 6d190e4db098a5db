package notices_test

import (
	"strings"
	"testing"

	"github.com/samirrijal/unirenta/internal/core/domain"
	"github.com/samirrijal/unirenta/internal/core/notices"
)

func decode(t *testing.T, status int, body string) domain.ErrorPayload {
	t.Helper()
	return domain.DecodeErrorPayload(status, []byte(body))
}

func TestClassify_Branches(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		category string
		severity domain.Severity
	}{
		{
			name:     "duplicate email",
			status:   409,
			body:     `{"error":{"tipo":"DATABASE","mensaje":"La llave (correo electronico)=(a@b.mx) Ya existe"}}`,
			category: notices.CategoryDuplicateEmail,
			severity: domain.SeverityWarning,
		},
		{
			name:     "duplicate phone with accents",
			status:   409,
			body:     `{"error":{"tipo":"DATABASE","mensaje":"El Teléfono ya existe"}}`,
			category: notices.CategoryDuplicatePhone,
			severity: domain.SeverityWarning,
		},
		{
			name:     "generic database",
			status:   500,
			body:     `{"error":{"tipo":"DATABASE","mensaje":"connection reset"}}`,
			category: notices.CategoryDatabase,
			severity: domain.SeverityError,
		},
		{
			name:     "validation name mismatch",
			status:   422,
			body:     `{"error":{"tipo":"VALIDACION_DOCUMENTO","subtipo":"NOMBRE_NO_COINCIDE","similitud":0.724}}`,
			category: notices.CategoryNameMismatch,
			severity: domain.SeverityWarning,
		},
		{
			name:     "validation missing fields",
			status:   422,
			body:     `{"error":{"tipo":"VALIDACION_DOCUMENTO","subtipo":"FALTAN CAMPOS AL DOCUMENTO","faltantes":["curp","fecha_de_nacimiento"]}}`,
			category: notices.CategoryMissingFields,
			severity: domain.SeverityWarning,
		},
		{
			name:     "validation missing fields with empty list",
			status:   422,
			body:     `{"error":{"tipo":"VALIDACION_DOCUMENTO","subtipo":"FALTAN CAMPOS AL DOCUMENTO","faltantes":[]}}`,
			category: notices.CategoryInvalidDocument,
			severity: domain.SeverityError,
		},
		{
			name:     "validation invalid",
			status:   422,
			body:     `{"error":{"tipo":"VALIDACION_DOCUMENTO","subtipo":"DOCUMENTO INVALIDO"}}`,
			category: notices.CategoryInvalidDocument,
			severity: domain.SeverityError,
		},
		{
			name:     "validation unknown subkind",
			status:   422,
			body:     `{"error":{"tipo":"VALIDACION_DOCUMENTO","subtipo":"ALGO NUEVO"}}`,
			category: notices.CategoryInvalidDocument,
			severity: domain.SeverityError,
		},
		{
			name:     "file",
			status:   400,
			body:     `{"error":{"tipo":"ARCHIVO","mensaje":"too big"}}`,
			category: notices.CategoryFile,
			severity: domain.SeverityError,
		},
		{
			name:     "ocr",
			status:   500,
			body:     `{"error":{"tipo":"OCR"}}`,
			category: notices.CategoryOCR,
			severity: domain.SeverityError,
		},
		{
			name:     "network down",
			status:   0,
			body:     ``,
			category: notices.CategoryConnectivity,
			severity: domain.SeverityError,
		},
		{
			name:     "server error without tag",
			status:   500,
			body:     `{"message":"boom"}`,
			category: notices.CategoryConnectivity,
			severity: domain.SeverityError,
		},
		{
			name:     "unknown tag skips connectivity",
			status:   500,
			body:     `{"error":{"tipo":"RARO","mensaje":"algo raro"}}`,
			category: notices.CategoryUnclassified,
			severity: domain.SeverityError,
		},
		{
			name:     "fallback",
			status:   404,
			body:     `{"status":404,"message":"no existe"}`,
			category: notices.CategoryUnclassified,
			severity: domain.SeverityError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := notices.Classify(decode(t, tt.status, tt.body))
			if n.Category != tt.category {
				t.Errorf("expected category %s, got %s (%+v)", tt.category, n.Category, n)
			}
			if n.Severity != tt.severity {
				t.Errorf("expected severity %s, got %s", tt.severity, n.Severity)
			}
			if n.Accent != tt.severity.Accent() {
				t.Errorf("expected accent %s, got %s", tt.severity.Accent(), n.Accent)
			}
			if n.TimeoutMs != 6000 {
				t.Errorf("expected 6s timeout, got %d", n.TimeoutMs)
			}
		})
	}
}

func TestClassify_DuplicateEmailBeatsGenericDatabase(t *testing.T) {
	p := domain.ErrorPayload{
		Kind:    domain.ErrorKindDatabase,
		Message: "error: el correo electronico ingresado. Ya existe un registro",
		Status:  500,
	}
	n := notices.Classify(p)
	if n.Category != notices.CategoryDuplicateEmail {
		t.Fatalf("expected duplicate email, got %s", n.Category)
	}
}

func TestClassify_SimilarityPercentage(t *testing.T) {
	sim := 0.724
	n := notices.Classify(domain.ErrorPayload{
		Kind:       domain.ErrorKindValidationDocument,
		Subkind:    "NOMBRE_NO_COINCIDE",
		Similarity: &sim,
	})
	if !strings.Contains(n.Body, "72%") {
		t.Errorf("expected rounded similarity 72%%, got %s", n.Body)
	}
}

func TestClassify_DocumentMissingFields(t *testing.T) {
	n := notices.Classify(decode(t, 422, `{"error":{"tipo":"DOCUMENTO","mensaje":"Faltan 2 campo(s): nombre, fecha"}}`))
	if n.Category != notices.CategoryMissingFields {
		t.Fatalf("expected missing fields, got %s", n.Category)
	}
	if len(n.Fields) != 2 || n.Fields[0] != "Nombre" || n.Fields[1] != "Fecha" {
		t.Errorf("expected [Nombre Fecha], got %v", n.Fields)
	}
	if got := strings.Count(n.Body, `class="campo-faltante"`); got != 2 {
		t.Errorf("expected 2 formatted entries, got %d", got)
	}
}

func TestClassify_DocumentMissingFieldsStopsAtSentenceEnd(t *testing.T) {
	for _, msg := range []string{
		"Faltan 2 campo(s): nombre, fecha. Intenta de nuevo",
		"Faltan 2 campo(s): nombre, fecha\nIntenta de nuevo",
	} {
		n := notices.Classify(domain.ErrorPayload{Kind: domain.ErrorKindDocument, Message: msg, Status: 422})
		if len(n.Fields) != 2 || n.Fields[0] != "Nombre" || n.Fields[1] != "Fecha" {
			t.Errorf("%q: expected [Nombre Fecha], got %v", msg, n.Fields)
		}
	}
}

func TestClassify_DocumentTooManyMissingFields(t *testing.T) {
	n := notices.Classify(decode(t, 422,
		`{"error":{"tipo":"DOCUMENTO","mensaje":"Faltan 5 campo(s): nombre, fecha, curp, domicilio, clave"}}`))
	if n.Category != notices.CategoryInvalidDocument {
		t.Fatalf("expected invalid document for count >= 4, got %s", n.Category)
	}
	if len(n.Fields) != 0 {
		t.Errorf("invalid document lists no fields, got %v", n.Fields)
	}
}

func TestClassify_DocumentNameMismatchFirst(t *testing.T) {
	n := notices.Classify(decode(t, 422,
		`{"error":{"tipo":"DOCUMENTO","mensaje":"El nombre no coincide. Faltan 1 campo(s): curp"}}`))
	if n.Category != notices.CategoryNameMismatch {
		t.Fatalf("expected name mismatch to win, got %s", n.Category)
	}
}

func TestClassify_DocumentWithDatabasePhraseIsNotDatabase(t *testing.T) {
	n := notices.Classify(decode(t, 422,
		`{"error":{"tipo":"DOCUMENTO","mensaje":"correo electronico Ya existe"}}`))
	if n.Category == notices.CategoryDuplicateEmail {
		t.Fatal("document payload must not be routed to the database branch")
	}
	if n.Category != notices.CategoryUnclassified {
		t.Errorf("expected fallback, got %s", n.Category)
	}
	if !strings.Contains(n.Body, "Ya existe") {
		t.Errorf("fallback should surface the raw message, got %s", n.Body)
	}
}

func TestClassify_FallbackEscapesMessage(t *testing.T) {
	n := notices.Classify(domain.ErrorPayload{Status: 400, TopMessage: "<b>bad</b>"})
	if strings.Contains(n.Body, "<b>") {
		t.Errorf("expected escaped body, got %s", n.Body)
	}
}

func TestClassify_FallbackDefault(t *testing.T) {
	n := notices.Classify(domain.ErrorPayload{Status: 418})
	if n.Body != "Error desconocido" {
		t.Errorf("expected default message, got %s", n.Body)
	}
}

func TestCleanFieldName(t *testing.T) {
	if got := notices.CleanFieldName("  fecha_de_NACIMIENTO "); got != "Fecha De Nacimiento" {
		t.Errorf("unexpected clean name %q", got)
	}
}
