package pricing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// ErrUnknownCurrency is returned for a code that is not an ISO 4217 currency.
// It describes the request, not the upstream price.
var ErrUnknownCurrency = errors.New("unknown currency")

// ParseCurrency validates an ISO 4217 code and returns it upper-cased.
func ParseCurrency(code string) (string, error) {
	unit, err := currency.ParseISO(strings.TrimSpace(code))
	if err != nil {
		return "", fmt.Errorf("%w %q", ErrUnknownCurrency, code)
	}
	return unit.String(), nil
}

type formatter struct {
	p    *message.Printer
	code string
}

func newFormatter(lang language.Tag, code string) formatter {
	return formatter{p: message.NewPrinter(lang), code: code}
}

// money renders an amount as "ETB 12,750.00".
func (f formatter) money(d decimal.Decimal) string {
	return f.code + " " + f.p.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(2)))
}
