package discord

import (
	"fmt"
	"strings"
	"time"

	"albionbot/pkg/tz"
)

const massUpLayout = "2006-01-02 15:04"

// ParseMassUpTime parses "YYYY-MM-DD HH:MM" in Paris time.
func ParseMassUpTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("date requise (attendu YYYY-MM-DD HH:MM, ex: 2026-02-24 20:30)")
	}
	t, err := time.ParseInLocation(massUpLayout, raw, tz.Paris)
	if err != nil {
		return time.Time{}, fmt.Errorf("format date invalide (attendu YYYY-MM-DD HH:MM, ex: 2026-02-24 20:30)")
	}
	return t, nil
}

// FormatMassUpTime renders t in Paris time, for thread names and summaries.
func FormatMassUpTime(t time.Time) string {
	return t.In(tz.Paris).Format("02/01 15:04")
}
