package ner

import (
	"fmt"
	"strconv"
	"strings"
)

// InvalidDate marks a span that looked like a date to the model but does
// not parse as one; such spans get reclassified downstream.
const InvalidDate = "fecha_invalida"

var spanishMonths = map[string]int{
	"enero": 1, "febrero": 2, "marzo": 3, "abril": 4,
	"mayo": 5, "junio": 6, "julio": 7, "agosto": 8,
	"septiembre": 9, "setiembre": 9, "octubre": 10,
	"noviembre": 11, "diciembre": 12,
}

// ParseSpanishDate normalizes a long-form Spanish date ("15 de marzo de
// 2023") to ISO "2006-01-02". It tolerates sloppy spacing and casing and
// returns InvalidDate when the text cannot be read as a calendar date.
func ParseSpanishDate(raw string) string {
	text := strings.ToLower(strings.TrimSpace(raw))
	if text == "" {
		return InvalidDate
	}

	if iso, ok := parseDateParts(strings.Fields(text)); ok {
		return iso
	}

	// Fallback split on "de" handles missing spaces around the particles.
	parts := strings.Split(text, "de")
	var fields []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			fields = append(fields, p)
		}
	}
	if len(fields) == 3 {
		if iso, ok := assembleDate(fields[0], fields[1], fields[2]); ok {
			return iso
		}
	}
	return InvalidDate
}

// parseDateParts expects the canonical token shape: day "de" month "de" year.
func parseDateParts(fields []string) (string, bool) {
	if len(fields) != 5 || fields[1] != "de" || fields[3] != "de" {
		return "", false
	}
	return assembleDate(fields[0], fields[2], fields[4])
}

func assembleDate(dayStr, monthStr, yearStr string) (string, bool) {
	day, err := strconv.Atoi(strings.TrimSpace(dayStr))
	if err != nil {
		return "", false
	}
	month, ok := spanishMonths[strings.TrimSpace(monthStr)]
	if !ok {
		return "", false
	}
	year, err := strconv.Atoi(strings.TrimSpace(yearStr))
	if err != nil {
		return "", false
	}
	if day < 1 || day > 31 || year < 1000 || year > 9999 {
		return "", false
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), true
}
