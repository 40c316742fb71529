package viewer

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/atlekbai/report_engine/internal/query"
	"github.com/atlekbai/report_engine/internal/schema"
)

// DateLayout is how dates are displayed.
const DateLayout = "Jan 2, 2006"

// currencyColumn is the row attribute naming the currency of its amounts.
const currencyColumn = "currency"

// Cell is one formatted value ready for display.
type Cell struct {
	Text string
	// Style is a presentation hint, set for select values.
	Style string
}

// Formatter renders row values per field kind.
type Formatter struct {
	printer         *message.Printer
	defaultCurrency string
}

// NewFormatter returns an English formatter. Amounts on rows without a
// currency attribute use defaultCurrency.
func NewFormatter(defaultCurrency string) *Formatter {
	if _, err := currency.ParseISO(defaultCurrency); err != nil {
		defaultCurrency = "USD"
	}
	return &Formatter{
		printer:         message.NewPrinter(language.English),
		defaultCurrency: strings.ToUpper(defaultCurrency),
	}
}

// Format renders the value of field f on row r.
func (f *Formatter) Format(r schema.Row, field *schema.FieldDef) Cell {
	v := r[field.Key]
	if v == nil {
		return Cell{}
	}
	if list, ok := v.([]any); ok {
		parts := make([]string, 0, len(list))
		for _, e := range list {
			if s := plain(e); s != "" {
				parts = append(parts, s)
			}
		}
		return Cell{Text: strings.Join(parts, ", ")}
	}

	switch field.Kind {
	case schema.KindDate:
		if t, _, ok := query.ParseTime(plain(v)); ok {
			return Cell{Text: t.Format(DateLayout)}
		}
	case schema.KindCurrency:
		if n, ok := toNumber(v); ok {
			return Cell{Text: f.money(n, r[currencyColumn])}
		}
	case schema.KindNumber:
		if n, ok := toNumber(v); ok {
			return Cell{Text: f.printer.Sprint(number.Decimal(n))}
		}
	case schema.KindBoolean:
		switch b := v.(type) {
		case bool:
			return Cell{Text: yesNo(b)}
		case string:
			if parsed, ok := query.ParseBool(b); ok {
				return Cell{Text: yesNo(parsed)}
			}
		}
	case schema.KindSelect:
		s := plain(v)
		if s == "" {
			return Cell{}
		}
		return Cell{Text: label(s), Style: "status-" + strings.ToLower(s)}
	}
	return Cell{Text: plain(v)}
}

// money formats n in the row's currency, e.g. "USD 1,234.50".
func (f *Formatter) money(n float64, code any) string {
	iso := f.defaultCurrency
	if s, ok := code.(string); ok && s != "" {
		iso = strings.ToUpper(strings.TrimSpace(s))
	}
	scale := 2
	if unit, err := currency.ParseISO(iso); err == nil {
		scale, _ = currency.Standard.Rounding(unit)
	}
	return iso + " " + f.printer.Sprint(number.Decimal(n, number.Scale(scale)))
}

func toNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		return query.ParseNumber(n)
	}
	return 0, false
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// label turns a select option value into its display label.
func label(s string) string {
	s = strings.ReplaceAll(s, "_", " ")
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func plain(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return query.FormatNumber(v)
	default:
		return fmt.Sprint(v)
	}
}
