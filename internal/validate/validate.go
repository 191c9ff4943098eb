package validate

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	reEmail   = regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)
	reSlugBad = regexp.MustCompile(`[^a-z0-9_-]`)
	reFileBad = regexp.MustCompile(`[^a-zA-Z0-9_.-]`)
	reWordBad = regexp.MustCompile(`[^a-z0-9]+`)
	reUnder   = regexp.MustCompile(`__+`)
)

func Email(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || len(s) > 254 {
		return "", false
	}
	return s, reEmail.MatchString(s)
}

// Slug lowercases an id and strips everything outside [a-z0-9_-].
func Slug(s string) string {
	return reSlugBad.ReplaceAllString(strings.ToLower(strings.TrimSpace(s)), "")
}

// Filename keeps uploaded names shell- and path-safe.
func Filename(s string) string {
	return reFileBad.ReplaceAllString(s, "_")
}

// ProductID derives the stored id from a title: slug (words joined by
// underscores, capped at 40 chars) plus a millisecond timestamp suffix.
func ProductID(title string, nowMillis int64) string {
	slug := reWordBad.ReplaceAllString(strings.ToLower(title), "_")
	if len(slug) > 40 {
		slug = slug[:40]
	}
	id := slug + "_" + strconv.FormatInt(nowMillis, 10)
	return reUnder.ReplaceAllString(id, "_")
}

// Price parses a form price field; negatives and garbage are rejected.
func Price(s string) (float64, bool) {
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// Section normalizes a category section to exactly "silver" or "stainless".
func Section(s string) string {
	sec := strings.ToLower(strings.TrimSpace(s))
	switch sec {
	case "stainless steel", "steel", "stainless-steel":
		sec = "stainless"
	}
	if sec != "stainless" && sec != "silver" {
		sec = "silver"
	}
	return sec
}

// PaymentType reports whether s is a recognized payment method.
func PaymentType(s string) bool {
	return s == "COD" || s == "Instapay"
}
