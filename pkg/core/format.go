package core

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// DisplayExponent is the number of decimals between a micro denom (uscrt) and its display unit (SCRT).
const DisplayExponent = 6

// DisplayDenom returns the display unit of a micro denom: "uscrt" -> "SCRT".
// Denoms without the "u" prefix are returned in upper case.
func DisplayDenom(denom string) string {
	return strings.ToUpper(strings.TrimPrefix(denom, "u"))
}

// FormatAmount shifts amount by -exponent and formats it according to the english locale (#,###.######),
// keeping at most six fraction digits.
func FormatAmount(amount decimal.Decimal, exponent int32) string {
	p := message.NewPrinter(language.English)
	x := amount.Shift(-exponent).Truncate(6)
	intPart := p.Sprintf("%v", x.IntPart())
	if x.Equal(decimal.New(x.IntPart(), 0)) {
		return intPart
	}
	parts := strings.Split(x.String(), ".")
	if len(parts) != 2 {
		return intPart
	}
	if x.IsNegative() && x.IntPart() == 0 {
		intPart = "-" + intPart
	}
	return intPart + "." + parts[1]
}
