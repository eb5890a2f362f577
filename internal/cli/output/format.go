package output

import (
	"math"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var printer = message.NewPrinter(language.English)

// FormatHeader returns a markdown header of the given level.
func FormatHeader(level int, text string) string {
	if level < 1 {
		level = 1
	}
	return strings.Repeat("#", level) + " " + text
}

// FormatKeyValue returns a markdown list item "- **key**: value".
func FormatKeyValue(key, value string) string {
	return "- **" + key + "**: " + value
}

// FormatCount formats an integer with thousands separators.
func FormatCount(n int) string {
	return printer.Sprintf("%d", n)
}

// FormatMoney formats an amount with thousands separators and no decimals.
func FormatMoney(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// FormatPercent formats a ratio as a percentage with one decimal.
func FormatPercent(v float64) string {
	return printer.Sprintf("%.1f%%", v*100)
}
