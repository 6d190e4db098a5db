package mapping

import (
	"fmt"
	"html"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/samirrijal/unirenta/internal/core/domain"
)

// MaxPopupEntries is how many entries a multi-item popup lists before
// summarising the rest.
const MaxPopupEntries = 8

var priceLocale = language.MustParse("es-MX")

// FormatMoney renders an amount as Mexican pesos without decimals, e.g. "$12,500".
func FormatMoney(v float64) string {
	p := message.NewPrinter(priceLocale)
	if v < 0 {
		return "-$" + p.Sprint(number.Decimal(-v, number.MaxFractionDigits(0)))
	}
	return "$" + p.Sprint(number.Decimal(v, number.MaxFractionDigits(0)))
}

// MarkerTitle is the hover text of a group marker. Single markers have none.
func MarkerTitle(g domain.MarkerGroup) string {
	if g.Count() <= 1 {
		return ""
	}
	if len(g.Items) > 0 && g.Items[0].PoIKind() == domain.KindUniversity {
		return fmt.Sprintf("%d universidades en esta ubicación", g.Count())
	}
	return fmt.Sprintf("%d propiedades en esta ubicación", g.Count())
}

// PopupHTML renders the popup shown when a marker is opened.
func PopupHTML(g domain.MarkerGroup) string {
	if len(g.Items) == 1 {
		return `<div class="pp-list"><ul>` + popupEntry(g.Items[0], "Departamento") + `</ul></div>`
	}

	var b strings.Builder
	b.WriteString(`<div class="pp-list"><ul>`)
	for i, it := range g.Items {
		if i == MaxPopupEntries {
			break
		}
		b.WriteString(popupEntry(it, "Depto"))
	}
	b.WriteString(`</ul>`)
	if extra := len(g.Items) - MaxPopupEntries; extra > 0 {
		fmt.Fprintf(&b, `<div class="pp-more">+%d más en esta ubicación</div>`, extra)
	}
	b.WriteString(`</div>`)
	return b.String()
}

func popupEntry(it domain.PointOfInterest, fallbackName string) string {
	name := it.DisplayName()
	if name == "" {
		if it.PoIKind() == domain.KindUniversity {
			fallbackName = "Universidad"
		}
		name = fallbackName
	}

	var b strings.Builder
	fmt.Fprintf(&b, `<li class="pp-item"><a href="#" class="pp-item-title pp-nav" data-kind="%s" data-id="%s">%s</a>`,
		it.PoIKind(), html.EscapeString(it.PoIID()), html.EscapeString(name))
	if priced, ok := it.(domain.Priced); ok {
		fmt.Fprintf(&b, `<span class="pp-item-price">%s/mes</span>`, FormatMoney(priced.MonthlyPrice()))
	}
	b.WriteString(`</li>`)
	return b.String()
}
