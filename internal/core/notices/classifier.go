// Package notices turns backend error payloads into user-facing notices.
package notices

import (
	"fmt"
	"html"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

// Notice categories.
const (
	CategoryDuplicateEmail  = "database_duplicate_email"
	CategoryDuplicatePhone  = "database_duplicate_phone"
	CategoryDatabase        = "database"
	CategoryNameMismatch    = "document_name_mismatch"
	CategoryMissingFields   = "document_missing_fields"
	CategoryInvalidDocument = "document_invalid"
	CategoryFile            = "file"
	CategoryOCR             = "ocr"
	CategoryConnectivity    = "connectivity"
	CategoryUnclassified    = "unclassified"
	CategoryValidation      = "validation"
)

// InvalidDocumentFieldCount is the number of missing fields from which a
// document is treated as the wrong document altogether.
const InvalidDocumentFieldCount = 4

// The field list ends at a closing brace, a period or a line break.
var missingFieldsPattern = regexp.MustCompile(`(?i)faltan?\s+(\d+)\s+campo\(s\):\s*([^}.\n]+)`)

// FromValidation builds the notice for a request rejected locally.
func FromValidation(v *domain.ValidationError) domain.Notice {
	return newNotice(CategoryValidation, v.Title, html.EscapeString(v.Message), domain.SeverityError)
}

// Classify maps a payload to a notice. Branches are checked in a fixed order
// and the first match wins; a payload may satisfy several conditions.
func Classify(p domain.ErrorPayload) domain.Notice {
	switch p.Kind {
	case domain.ErrorKindDatabase:
		return classifyDatabase(p)
	case domain.ErrorKindValidationDocument:
		return classifyValidation(p)
	case domain.ErrorKindDocument:
		if p.Message != "" {
			if n, ok := classifyDocumentMessage(p); ok {
				return n
			}
		}
	case domain.ErrorKindFile:
		return newNotice(CategoryFile, "Error en archivo",
			"Verifica el formato o tamaño del documento", domain.SeverityError)
	case domain.ErrorKindOCR:
		return newNotice(CategoryOCR, "Error al procesar",
			"No se pudo leer el documento, intenta de nuevo", domain.SeverityError)
	}

	if p.Kind == domain.ErrorKindUnset && (p.Status == 0 || p.Status == 500) {
		return newNotice(CategoryConnectivity, "Error de conexión",
			"Verifica tu conexión e intenta de nuevo", domain.SeverityError)
	}

	msg := p.Message
	if msg == "" {
		msg = p.TopMessage
	}
	if msg == "" {
		msg = "Error desconocido"
	}
	return newNotice(CategoryUnclassified, "Error", html.EscapeString(msg), domain.SeverityError)
}

func classifyDatabase(p domain.ErrorPayload) domain.Notice {
	msg := fold(p.Message)
	duplicate := containsAny(msg, "ya existe", "duplicad", "duplicate", "unique")

	switch {
	case duplicate && containsAny(msg, "correo", "email"):
		return newNotice(CategoryDuplicateEmail, "Correo ya registrado",
			"Ya existe una cuenta con ese correo electrónico", domain.SeverityWarning)
	case duplicate && containsAny(msg, "telefono", "phone"):
		return newNotice(CategoryDuplicatePhone, "Teléfono ya registrado",
			"Ya existe una cuenta con ese número de teléfono", domain.SeverityWarning)
	}

	body := "No se pudo guardar la información"
	if p.Message != "" {
		body = "Error en base de datos: " + html.EscapeString(p.Message)
	}
	return newNotice(CategoryDatabase, "Error en base de datos", body, domain.SeverityError)
}

func classifyValidation(p domain.ErrorPayload) domain.Notice {
	sub := strings.ReplaceAll(fold(p.Subkind), "_", " ")
	switch {
	case sub == "nombre no coincide":
		return nameMismatch(p.Similarity)
	case sub == "faltan campos al documento" || sub == "missing fields" || strings.Contains(sub, "faltan campos"):
		if len(p.Details) == 0 {
			return invalidDocument()
		}
		return missingFields(p.Details)
	default:
		return invalidDocument()
	}
}

func classifyDocumentMessage(p domain.ErrorPayload) (domain.Notice, bool) {
	if containsAny(strings.ReplaceAll(fold(p.Message), "_", " "), "nombre no coincide", "no coincide") {
		return nameMismatch(p.Similarity), true
	}

	m := missingFieldsPattern.FindStringSubmatch(p.Message)
	if m == nil {
		return domain.Notice{}, false
	}
	count, err := strconv.Atoi(m[1])
	if err != nil {
		return domain.Notice{}, false
	}
	if count >= InvalidDocumentFieldCount {
		return invalidDocument(), true
	}

	var fields []string
	for _, f := range strings.Split(m[2], ",") {
		f = strings.TrimSpace(f)
		if f != "" {
			fields = append(fields, f)
		}
	}
	return missingFields(fields), true
}

func nameMismatch(similarity *float64) domain.Notice {
	body := "El nombre del documento no coincide con el registrado"
	if similarity != nil {
		body += fmt.Sprintf(" (similitud: %d%%)", int(math.Round(*similarity*100)))
	}
	return newNotice(CategoryNameMismatch, "Nombre no coincide", body, domain.SeverityWarning)
}

func invalidDocument() domain.Notice {
	return newNotice(CategoryInvalidDocument, "Documento inválido",
		"Verifica que sea el documento correcto e intenta de nuevo", domain.SeverityError)
}

func missingFields(raw []string) domain.Notice {
	fields := make([]string, 0, len(raw))
	spans := make([]string, 0, len(raw))
	for _, f := range raw {
		name := CleanFieldName(f)
		if name == "" {
			continue
		}
		fields = append(fields, name)
		spans = append(spans, `<span class="campo-faltante">`+html.EscapeString(name)+`</span>`)
	}
	body := `Toma una foto más clara donde se vean estos campos: <br><div class="campos-contenedor">` +
		strings.Join(spans, ", ") + `</div>`

	n := newNotice(CategoryMissingFields, "Campos no visibles", body, domain.SeverityWarning)
	n.Fields = fields
	return n
}

// CleanFieldName turns "fecha_de_nacimiento" into "Fecha De Nacimiento".
func CleanFieldName(s string) string {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", " ")
	return cases.Title(language.Und).String(s)
}

func newNotice(category, title, body string, sev domain.Severity) domain.Notice {
	return domain.Notice{
		Category:  category,
		Title:     title,
		Body:      body,
		Severity:  sev,
		Accent:    sev.Accent(),
		TimeoutMs: domain.NoticeTimeout.Milliseconds(),
	}
}

// fold lowercases s and strips diacritics so "Teléfono" matches "telefono".
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
