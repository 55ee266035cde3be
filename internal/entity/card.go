package entity

import (
	"regexp"
	"strconv"
	"strings"
)

type Sport string

const (
	SportBasketball Sport = "basketball"
	SportSoccer     Sport = "soccer"
	SportNFL        Sport = "nfl"
)

// ValidSport reports whether s is one of the sports the catalog carries.
func ValidSport(s string) bool {
	switch Sport(s) {
	case SportBasketball, SportSoccer, SportNFL:
		return true
	}
	return false
}

var cardIDDigits = regexp.MustCompile(`\d+`)

// ParseCardID canonicalizes the many id spellings that reach the boundary
// ("Card-011", " 11 ", "11") into the bare numeric form stored in the DB.
// Non-numeric ids pass through trimmed so lookups fail loudly downstream.
func ParseCardID(raw string) string {
	s := strings.TrimSpace(raw)
	m := cardIDDigits.FindString(s)
	if m == "" {
		return s
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return s
	}
	return strconv.Itoa(n)
}

type Card struct {
	ID         string `json:"id"`
	Sport      Sport  `json:"sport"`
	Title      string `json:"title"`
	Player     string `json:"player"`
	PriceCents int64  `json:"price_cents"`
	Stock      int    `json:"stock"`
	Image      string `json:"image,omitempty"`
	Image2     string `json:"image2,omitempty"`
	GreatDeal  bool   `json:"great_deal"`
}
