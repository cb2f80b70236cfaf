package calculator

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

var ones = [...]string{
	"ZERO", "ONE", "TWO", "THREE", "FOUR", "FIVE", "SIX", "SEVEN", "EIGHT", "NINE",
	"TEN", "ELEVEN", "TWELVE", "THIRTEEN", "FOURTEEN", "FIFTEEN", "SIXTEEN",
	"SEVENTEEN", "EIGHTEEN", "NINETEEN",
}

var tens = [...]string{
	"", "", "TWENTY", "THIRTY", "FORTY", "FIFTY", "SIXTY", "SEVENTY", "EIGHTY", "NINETY",
}

// scales[i] names the group 1000^i.
var scales = [...]string{
	"", "THOUSAND", "MILLION", "BILLION", "TRILLION", "QUADRILLION", "QUINTILLION",
}

// MaxWordsAmount is the largest whole-rupee total AmountToWords spells.
var MaxWordsAmount = decimal.NewFromInt(math.MaxInt64)

// AmountToWords renders a total as "RUPEES <WORDS> ONLY".
//
// The total is first rounded half away from zero to whole rupees, so 1200.50
// reads as one thousand two hundred one. Negative totals and totals above
// MaxWordsAmount are rejected.
func AmountToWords(total decimal.Decimal) (string, error) {
	rounded := total.Round(0)
	if rounded.IsNegative() {
		return "", ErrNegativeAmount
	}
	if rounded.GreaterThan(MaxWordsAmount) {
		return "", ErrAmountTooLarge
	}
	return "RUPEES " + IntegerToWords(rounded.IntPart()) + " ONLY", nil
}

// IntegerToWords spells a non-negative integer in uppercase English using the
// short scale, e.g. 1200 -> "ONE THOUSAND TWO HUNDRED".
func IntegerToWords(n int64) string {
	if n <= 0 {
		return ones[0]
	}

	var groups []string
	for scale := 0; n > 0; scale++ {
		chunk := int(n % 1000)
		n /= 1000
		if chunk == 0 {
			continue
		}
		words := hundredsToWords(chunk)
		if scales[scale] != "" {
			words += " " + scales[scale]
		}
		groups = append(groups, words)
	}

	// Groups were collected least significant first.
	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}
	return strings.Join(groups, " ")
}

// hundredsToWords spells 1..999.
func hundredsToWords(n int) string {
	var parts []string
	if n >= 100 {
		parts = append(parts, ones[n/100]+" HUNDRED")
		n %= 100
	}
	switch {
	case n == 0:
	case n < 20:
		parts = append(parts, ones[n])
	case n%10 == 0:
		parts = append(parts, tens[n/10])
	default:
		parts = append(parts, tens[n/10]+"-"+ones[n%10])
	}
	return strings.Join(parts, " ")
}
