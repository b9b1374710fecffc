// Package cpf validates Brazilian individual taxpayer numbers (CPF).
package cpf

import "strings"

// Digits strips every non-digit rune from s.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Valid reports whether s is a well-formed CPF. Formatting characters
// (dots, dashes, spaces) are ignored. Numbers made of a single repeated
// digit pass the checksum but are not issued, so they are rejected.
func Valid(s string) bool {
	d := Digits(s)
	if len(d) != 11 {
		return false
	}
	if strings.Count(d, d[:1]) == 11 {
		return false
	}

	digits := make([]int, 11)
	for i := range d {
		digits[i] = int(d[i] - '0')
	}
	return checkDigit(digits[:9]) == digits[9] && checkDigit(digits[:10]) == digits[10]
}

// checkDigit computes the verifier for the given prefix: weights run from
// len(prefix)+1 down to 2.
func checkDigit(prefix []int) int {
	sum := 0
	weight := len(prefix) + 1
	for _, d := range prefix {
		sum += d * weight
		weight--
	}
	rest := (sum * 10) % 11
	if rest == 10 {
		return 0
	}
	return rest
}
