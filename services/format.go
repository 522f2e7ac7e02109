package services

import (
	"fmt"
	"math"
	"strings"
)

// FormatINR formats an amount in Indian Rupee notation: after the rightmost
// three digits the integer part is grouped in pairs (₹1,23,45,678.90).
// The result always carries two decimals.
func FormatINR(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	intPart, decPart, _ := strings.Cut(fmt.Sprintf("%.2f", amount), ".")
	return sign + "₹" + applyIndianGrouping(intPart) + "." + decPart
}

// applyIndianGrouping inserts commas into a digit string: one group of three
// on the right, pairs after that.
func applyIndianGrouping(s string) string {
	if len(s) <= 3 {
		return s
	}
	head, tail := s[:len(s)-3], s[len(s)-3:]
	var groups []string
	for len(head) > 2 {
		groups = append([]string{head[len(head)-2:]}, groups...)
		head = head[:len(head)-2]
	}
	if head != "" {
		groups = append([]string{head}, groups...)
	}
	return strings.Join(append(groups, tail), ",")
}

// roundOff is what must be added to amount to reach the nearest rupee.
func roundOff(amount float64) float64 {
	return Round2(math.Round(amount) - amount)
}

var indianScales = []struct {
	value int64
	name  string
}{
	{10000000, "Crore"},
	{100000, "Lakh"},
	{1000, "Thousand"},
	{100, "Hundred"},
}

// AmountToWords spells a rupee amount, rounded to whole rupees, in Indian
// English: 913183 is "Rupees Nine Lakh Thirteen Thousand One Hundred and
// Eighty Three Only".
func AmountToWords(amount float64) string {
	if amount < 0 {
		return "Minus " + AmountToWords(-amount)
	}
	n := int64(math.Round(amount))
	if n == 0 {
		return "Rupees Zero Only"
	}
	return "Rupees " + spellIndian(n) + " Only"
}

func spellIndian(n int64) string {
	var parts []string
	for _, sc := range indianScales {
		if n < sc.value {
			continue
		}
		parts = append(parts, spellIndian(n/sc.value)+" "+sc.name)
		n %= sc.value
	}
	if n > 0 {
		w := wordsUnder100(n)
		if len(parts) > 0 {
			w = "and " + w
		}
		parts = append(parts, w)
	}
	return strings.Join(parts, " ")
}

func wordsUnder100(n int64) string {
	if n < 20 {
		return smallNumbers[n]
	}
	w := tensNames[n/10]
	if n%10 != 0 {
		w += " " + smallNumbers[n%10]
	}
	return w
}

var smallNumbers = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight", "Nine",
	"Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen", "Sixteen",
	"Seventeen", "Eighteen", "Nineteen",
}

var tensNames = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy", "Eighty", "Ninety",
}
