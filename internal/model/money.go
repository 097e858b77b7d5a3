package model

import (
	"strconv"
	"strings"
)

// FormatMoney renders an amount with space-separated thousands, e.g. "100 500 ₽"
func FormatMoney(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	digits := strconv.Itoa(amount)
	var b strings.Builder
	b.WriteString(sign)
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(' ')
		}
		b.WriteRune(d)
	}
	b.WriteString(" ₽")
	return b.String()
}
