package valueobject

import (
	"strings"

	"github.com/shopspring/decimal"
)

var (
	rmbDigits   = []string{"零", "壹", "贰", "叁", "肆", "伍", "陆", "柒", "捌", "玖"}
	rmbUnits    = []string{"", "拾", "佰", "仟"}
	rmbBigUnits = []string{"", "万", "亿", "万亿"}
)

// RMBWords renders a decimal RMB amount in traditional capitalized Chinese
// numerals for legal and financial display.
// Example: 1234.56 -> "壹仟贰佰叁拾肆元伍角陆分".
// withPrefix prepends "人民币"; negative amounts are prefixed with "负".
// The function is pure and safe for concurrent use.
func RMBWords(amount decimal.Decimal, withPrefix bool) string {
	prefix := ""
	if withPrefix {
		prefix = "人民币"
	}

	// Total cents, rounded. Amounts that round to zero render as zero.
	cents := amount.Abs().Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if cents == 0 {
		return prefix + "零元整"
	}

	sign := ""
	if amount.IsNegative() {
		sign = "负"
	}

	yuan := cents / 100
	jiao := (cents % 100) / 10
	fen := cents % 10

	var b strings.Builder
	if yuan > 0 {
		b.WriteString(integerRMBWords(yuan))
		b.WriteString("元")
	}
	switch {
	case jiao == 0 && fen == 0:
		b.WriteString("整")
	default:
		if jiao > 0 {
			b.WriteString(rmbDigits[jiao])
			b.WriteString("角")
		}
		if fen > 0 {
			b.WriteString(rmbDigits[fen])
			b.WriteString("分")
		}
	}

	return prefix + sign + b.String()
}

// integerRMBWords converts a positive integer yuan amount in base-10000
// groups, most significant group first.
func integerRMBWords(n int64) string {
	var groups []int64 // least significant first
	for v := n; v > 0; v /= 10000 {
		groups = append(groups, v%10000)
	}

	var b strings.Builder
	for i := len(groups) - 1; i >= 0; i-- {
		g := groups[i]
		if g == 0 {
			// A skipped group leaves a single zero marker before the
			// next non-zero group resumes.
			if b.Len() > 0 && !strings.HasSuffix(b.String(), rmbDigits[0]) {
				b.WriteString(rmbDigits[0])
			}
			continue
		}
		gw := groupRMBWords(g, i != len(groups)-1)
		if strings.HasSuffix(b.String(), rmbDigits[0]) {
			gw = strings.TrimPrefix(gw, rmbDigits[0])
		}
		b.WriteString(gw)
		if i > 0 && i < len(rmbBigUnits) {
			b.WriteString(rmbBigUnits[i])
		}
	}
	return strings.TrimRight(b.String(), rmbDigits[0])
}

// groupRMBWords renders one 4-digit group (0..9999) digit by digit with
// positional units. Runs of zero digits collapse into a single 零 and
// trailing zero markers are stripped. padded groups keep a leading 零 for
// their zero-filled high digits; the most significant group does not.
func groupRMBWords(g int64, padded bool) string {
	digits := [4]int64{g / 1000 % 10, g / 100 % 10, g / 10 % 10, g % 10}

	start := 0
	if !padded {
		for start < 3 && digits[start] == 0 {
			start++
		}
	}

	var b strings.Builder
	for pos := start; pos < 4; pos++ {
		d := digits[pos]
		if d == 0 {
			if !strings.HasSuffix(b.String(), rmbDigits[0]) {
				b.WriteString(rmbDigits[0])
			}
			continue
		}
		b.WriteString(rmbDigits[d])
		b.WriteString(rmbUnits[3-pos])
	}
	return strings.TrimRight(b.String(), rmbDigits[0])
}
