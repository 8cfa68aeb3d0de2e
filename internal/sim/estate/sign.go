package estate

import (
	"math"
	"strconv"

	"realestate.gg/internal/sim/tuning"
)

// SignLines is the fixed 4-line payload of a marker sign.
type SignLines [4]string

// FormatPrice renders a price for sign display. With use_symbol the symbol is
// prefixed, otherwise the plural currency name is suffixed. With use_decimal
// off the displayed value is rounded to the nearest integer; the charged
// amount is never rounded.
func FormatPrice(price float64, c tuning.Currency) string {
	var amount string
	if c.UseDecimal {
		amount = trimFloat(price)
	} else {
		amount = strconv.Itoa(int(math.Round(price)))
	}
	if c.UseSymbol {
		return c.Symbol + " " + amount
	}
	return amount + " " + c.NamePlural
}

// RenderSign builds the 4 display lines of a listing marker: localized
// header, variant tag, owner name (or SERVER), price.
func RenderSign(header, tag, ownerName string, price float64, c tuning.Currency) SignLines {
	if ownerName == "" {
		ownerName = "SERVER"
	}
	return SignLines{header, tag, ownerName, FormatPrice(price, c)}
}

// trimFloat prints a float without trailing zeros ("12.5", "100").
func trimFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
