// Package voice picks a synthesis voice from whatever a backend currently
// offers, following a ranked list of preferences.
package voice

import (
	"strings"
)

// Voice describes one voice offered by a synthesis backend.
type Voice struct {
	ID     string // Backend identifier passed back on synthesis
	Name   string // Human-readable name, matched against preferences
	Lang   string // BCP 47 style locale such as "en-GB"
	Gender string
}

// String returns the display form of the voice.
func (v Voice) String() string {
	if v.Lang == "" {
		return v.Name
	}
	return v.Name + " (" + v.Lang + ")"
}

// Preferences configures the fallback chain used when no saved voice is
// available.
type Preferences struct {
	// Ideal voice names, tried in order. Matching ignores case and accepts
	// a voice whose name contains the label.
	Ideal []string
	// FallbackLocale is tried after the ideal names, e.g. "en-GB".
	FallbackLocale string
	// SecondaryLocale is tried after FallbackLocale, e.g. "en-US".
	SecondaryLocale string
	// Family is the language prefix tried last, e.g. "en".
	Family string
}

// DefaultPreferences prefers a British English voice, then any English one.
func DefaultPreferences() Preferences {
	return Preferences{
		Ideal:           []string{"Google UK English Female", "Google UK English"},
		FallbackLocale:  "en-GB",
		SecondaryLocale: "en-US",
		Family:          "en",
	}
}

// Resolve picks a voice from available.
//
// The saved name wins when present; then the ideal names, the fallback
// locale, the secondary locale, the language family, and finally the first
// voice listed. The second return value is false only when available is
// empty. The input slice is not reordered.
func Resolve(available []Voice, preferred string, prefs Preferences) (Voice, bool) {
	if len(available) == 0 {
		return Voice{}, false
	}

	if preferred != "" {
		for _, v := range available {
			if v.Name == preferred || (v.ID != "" && v.ID == preferred) {
				return v, true
			}
		}
	}

	for _, label := range prefs.Ideal {
		if label == "" {
			continue
		}
		for _, v := range available {
			if containsFold(v.Name, label) {
				return v, true
			}
		}
	}

	for _, locale := range []string{prefs.FallbackLocale, prefs.SecondaryLocale} {
		if locale == "" {
			continue
		}
		for _, v := range available {
			if sameLocale(v.Lang, locale) {
				return v, true
			}
		}
	}

	if prefs.Family != "" {
		for _, v := range available {
			if InFamily(v.Lang, prefs.Family) {
				return v, true
			}
		}
	}

	return available[0], true
}

// Find returns the voice whose name or ID equals name.
func Find(available []Voice, name string) (Voice, bool) {
	for _, v := range available {
		if v.Name == name || v.ID == name {
			return v, true
		}
	}
	return Voice{}, false
}

// InFamily reports whether lang belongs to the language family, so "en-GB"
// and "en" are both in "en" while "eng" is not.
func InFamily(lang, family string) bool {
	lang = canonicalLocale(lang)
	family = canonicalLocale(family)
	if family == "" {
		return false
	}
	return lang == family || strings.HasPrefix(lang, family+"-")
}

func sameLocale(a, b string) bool {
	return canonicalLocale(a) == canonicalLocale(b)
}

func canonicalLocale(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
