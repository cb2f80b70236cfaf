package calculator

import (
	"strings"
	"testing"
)

func TestIntegerToWords(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "ZERO"},
		{7, "SEVEN"},
		{13, "THIRTEEN"},
		{20, "TWENTY"},
		{21, "TWENTY-ONE"},
		{100, "ONE HUNDRED"},
		{105, "ONE HUNDRED FIVE"},
		{999, "NINE HUNDRED NINETY-NINE"},
		{1000, "ONE THOUSAND"},
		{1200, "ONE THOUSAND TWO HUNDRED"},
		{2501, "TWO THOUSAND FIVE HUNDRED ONE"},
		{1000000, "ONE MILLION"},
		{1000001, "ONE MILLION ONE"},
		{12345678, "TWELVE MILLION THREE HUNDRED FORTY-FIVE THOUSAND SIX HUNDRED SEVENTY-EIGHT"},
		{2000000000, "TWO BILLION"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := IntegerToWords(tt.n); got != tt.want {
				t.Errorf("IntegerToWords(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}

func TestAmountToWords(t *testing.T) {
	t.Run("wraps in rupees and only", func(t *testing.T) {
		got, err := AmountToWords(d("1200"))
		if err != nil {
			t.Fatalf("AmountToWords failed: %v", err)
		}
		if got != "RUPEES ONE THOUSAND TWO HUNDRED ONLY" {
			t.Errorf("got %q", got)
		}
		if !strings.HasSuffix(got, "ONLY") {
			t.Errorf("expected %q to end with ONLY", got)
		}
	})

	t.Run("zero is defined", func(t *testing.T) {
		got, err := AmountToWords(d("0"))
		if err != nil {
			t.Fatalf("AmountToWords failed: %v", err)
		}
		if got != "RUPEES ZERO ONLY" {
			t.Errorf("got %q", got)
		}
	})

	t.Run("fractions round half away from zero", func(t *testing.T) {
		tests := map[string]string{
			"1199.49": "RUPEES ONE THOUSAND ONE HUNDRED NINETY-NINE ONLY",
			"1199.5":  "RUPEES ONE THOUSAND TWO HUNDRED ONLY",
			"0.4":     "RUPEES ZERO ONLY",
		}
		for in, want := range tests {
			got, err := AmountToWords(d(in))
			if err != nil {
				t.Fatalf("AmountToWords(%s) failed: %v", in, err)
			}
			if got != want {
				t.Errorf("AmountToWords(%s) = %q, want %q", in, got, want)
			}
		}
	})

	t.Run("negative is rejected", func(t *testing.T) {
		if _, err := AmountToWords(d("-1")); err != ErrNegativeAmount {
			t.Errorf("expected ErrNegativeAmount, got %v", err)
		}
	})
}

func TestAmountToWords_Limit(t *testing.T) {
	got, err := AmountToWords(d("9223372036854775807"))
	if err != nil {
		t.Fatalf("AmountToWords at the limit failed: %v", err)
	}
	if !strings.HasPrefix(got, "RUPEES NINE QUINTILLION TWO HUNDRED TWENTY-THREE QUADRILLION") ||
		!strings.HasSuffix(got, "SEVEN HUNDRED SEVENTY-FIVE THOUSAND EIGHT HUNDRED SEVEN ONLY") {
		t.Errorf("got %q", got)
	}

	for _, in := range []string{"9223372036854775807.5", "9223372036854775808", "10000000000000000000", "18446744073709551617"} {
		if _, err := AmountToWords(d(in)); err != ErrAmountTooLarge {
			t.Errorf("AmountToWords(%s): expected ErrAmountTooLarge, got %v", in, err)
		}
	}
}
