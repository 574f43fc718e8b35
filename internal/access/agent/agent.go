// Package agent turns raw client agent strings into short human-readable
// summaries for access notifications.
package agent

import (
	"strings"

	"github.com/mssola/useragent"
)

const unknownDevice = "Unknown Device"

// Summary describes the client that performed an access.
type Summary struct {
	Browser string
	OS      string
	Mobile  bool
	Bot     bool
}

// Parse extracts browser and OS from a User-Agent header.
func Parse(raw string) Summary {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Summary{}
	}
	ua := useragent.New(raw)
	browser, _ := ua.Browser()
	return Summary{
		Browser: strings.TrimSpace(browser),
		OS:      strings.TrimSpace(ua.OS()),
		Mobile:  ua.Mobile(),
		Bot:     ua.Bot(),
	}
}

// String renders "<browser> on <os>", or "Unknown Device" for an empty agent.
func (s Summary) String() string {
	if s.Browser == "" && s.OS == "" {
		return unknownDevice
	}
	browser := s.Browser
	if browser == "" {
		browser = "Unknown Browser"
	}
	os := s.OS
	if os == "" {
		os = "Unknown OS"
	}
	out := browser + " on " + os
	if s.Bot {
		out += " (bot)"
	}
	return out
}

// Describe is Parse followed by String.
func Describe(raw string) string {
	return Parse(raw).String()
}
