package receipt

import "strings"

var onesWords = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensWords = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

// AmountInWords spells an amount in the Indian numbering system
// (hundred, thousand, lakh, crore). Negative amounts never reach here;
// zero reads "Zero".
func AmountInWords(n int) string {
	if n == 0 {
		return "Zero"
	}

	var parts []string
	appendUnit := func(value int, unit string) {
		if value > 0 {
			parts = append(parts, belowThousand(value))
			if unit != "" {
				parts = append(parts, unit)
			}
		}
	}

	appendUnit(n/10000000, "Crore")
	n %= 10000000
	appendUnit(n/100000, "Lakh")
	n %= 100000
	appendUnit(n/1000, "Thousand")
	n %= 1000
	appendUnit(n, "")

	return strings.Join(parts, " ")
}

func belowThousand(n int) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, onesWords[n/100], "Hundred")
		n %= 100
	}
	if n >= 20 {
		parts = append(parts, tensWords[n/10])
		n %= 10
	}
	if n > 0 {
		parts = append(parts, onesWords[n])
	}
	return strings.Join(parts, " ")
}
