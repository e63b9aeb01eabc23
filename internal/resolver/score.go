package resolver

import (
	"strings"

	"mediakeeper/internal/services/douban"
)

// Score counts the whitespace-separated tokens of title that contain query,
// both compared in lower case.
func Score(query, title string) int {
	q := strings.ToLower(query)
	score := 0
	for _, token := range strings.Fields(strings.ToLower(title)) {
		if strings.Contains(token, q) {
			score++
		}
	}
	return score
}

// BestMatch picks the highest scoring candidate released in year. Ties keep the
// earliest candidate; a zero score never wins.
func BestMatch(query, year string, candidates []douban.Subject) (douban.Subject, bool) {
	var (
		best    douban.Subject
		highest int
	)
	for _, c := range candidates {
		if c.Year != year {
			continue
		}
		if s := Score(query, c.Title); s > highest {
			highest = s
			best = c
		}
	}
	return best, highest > 0
}
