// Package i18n holds the widget strings and locale aware number formatting.
package i18n

import (
	"github.com/dustin/go-humanize"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
	"golang.org/x/text/number"
)

const (
	Celsius    = "celsius"
	Fahrenheit = "fahrenheit"
)

var translations = map[language.Tag]map[string]string{
	language.English: {
		"glances.cpu":      "CPU",
		"glances.load":     "Load",
		"glances.free":     "Free",
		"glances.total":    "Total",
		"glances.temp":     "Temp",
		"glances.warn":     "Warn",
		"glances.uptime":   "Up",
		"glances.days":     "d",
		"glances.hours":    "h",
		"widget.api_error": "API Error",
	},
	language.German: {
		"glances.cpu":      "CPU",
		"glances.load":     "Last",
		"glances.free":     "Frei",
		"glances.total":    "Gesamt",
		"glances.temp":     "Temp",
		"glances.warn":     "Warn",
		"glances.uptime":   "Laufzeit",
		"glances.days":     "T",
		"glances.hours":    "Std",
		"widget.api_error": "API-Fehler",
	},
	language.French: {
		"glances.cpu":      "CPU",
		"glances.load":     "Charge",
		"glances.free":     "Libre",
		"glances.total":    "Total",
		"glances.temp":     "Temp",
		"glances.warn":     "Alerte",
		"glances.uptime":   "Dispo",
		"glances.days":     "j",
		"glances.hours":    "h",
		"widget.api_error": "Erreur d'API",
	},
}

var (
	cat     catalog.Catalog
	matcher language.Matcher
)

func init() {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for tag, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tag, key, msg); err != nil {
				panic(err)
			}
		}
	}
	cat = b
	matcher = language.NewMatcher([]language.Tag{language.English, language.German, language.French})
}

// Translator formats strings and numbers for one language.
type Translator struct {
	tag language.Tag
	p   *message.Printer
}

// New returns a Translator for lang. Unknown or malformed tags fall back to
// English.
func New(lang string) *Translator {
	tag := language.English
	if parsed, err := language.Parse(lang); err == nil {
		tag, _, _ = matcher.Match(parsed)
	}
	base, _ := tag.Base()
	tag = language.Make(base.String())
	return &Translator{tag: tag, p: message.NewPrinter(tag, message.Catalog(cat))}
}

func (t *Translator) Language() language.Tag { return t.tag }

// T returns the translation for key.
func (t *Translator) T(key string) string {
	return t.p.Sprintf(key)
}

// Number formats v with at most maxFraction fraction digits.
func (t *Translator) Number(v float64, maxFraction int) string {
	return t.p.Sprint(number.Decimal(v, number.MaxFractionDigits(maxFraction)))
}

// Percent formats v (already 0-100) as a whole percentage.
func (t *Translator) Percent(v float64) string {
	return t.Number(v, 0) + "%"
}

// Temperature formats v with one fraction digit and the unit symbol.
func (t *Translator) Temperature(v float64, unit string) string {
	symbol := "°C"
	if unit == Fahrenheit {
		symbol = "°F"
	}
	return t.Number(v, 1) + symbol
}

// Bytes formats a byte count, SI scaled unless binary is set.
func (t *Translator) Bytes(v uint64, binary bool) string {
	if binary {
		return humanize.IBytes(v)
	}
	return humanize.Bytes(v)
}
