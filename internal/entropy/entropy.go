// Package entropy computes Shannon entropy over strings.
package entropy

import (
	"math"
	"unicode/utf8"
)

// Shannon returns the Shannon entropy of s in bits per character. Characters
// are Unicode code points and the probability of each is its count divided
// by the code point length of s. The empty string has entropy 0.
func Shannon(s string) float64 {
	n := utf8.RuneCountInString(s)
	if n == 0 {
		return 0
	}
	// sum in first-occurrence order so the result is bit-for-bit stable
	count := map[rune]int{}
	var order []rune
	for _, r := range s {
		if count[r] == 0 {
			order = append(order, r)
		}
		count[r]++
	}
	H := 0.0
	for _, r := range order {
		p := float64(count[r]) / float64(n)
		H += -p * math.Log2(p)
	}
	return H
}
