package output

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-runewidth"
	"github.com/shopspring/decimal"
)

// FormatAmount renders an amount with thousands separators and two decimals,
// e.g. "-25,000.00".
func FormatAmount(d decimal.Decimal) string {
	d = d.Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	whole := d.Truncate(0)
	cents := d.Sub(whole).Shift(2).IntPart()
	return fmt.Sprintf("%s%s.%02d", sign, humanize.Comma(whole.IntPart()), cents)
}

// PadRight pads s with spaces to the given display width, truncating with an
// ellipsis when it is wider. Wide runes (accents, CJK) are measured by cell width.
func PadRight(s string, width int) string {
	if runewidth.StringWidth(s) > width {
		s = runewidth.Truncate(s, width, "…")
	}
	return runewidth.FillRight(s, width)
}

// PadLeft right-aligns s within the given display width.
func PadLeft(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	return strings.Repeat(" ", width-w) + s
}
