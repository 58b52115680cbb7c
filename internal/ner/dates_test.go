package ner

import "testing"

func TestParseSpanishDate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"canonical form", "15 de marzo de 2023", "2023-03-15"},
		{"single digit day", "3 de enero de 2020", "2020-01-03"},
		{"uppercase month", "15 de Marzo de 2023", "2023-03-15"},
		{"extra whitespace", "  15  de  marzo  de  2023 ", "2023-03-15"},
		{"setiembre variant", "1 de setiembre de 2021", "2021-09-01"},
		{"missing spaces around de", "15de marzo de2023", "2023-03-15"},
		{"unknown month", "15 de brumario de 2023", InvalidDate},
		{"day out of range", "32 de marzo de 2023", InvalidDate},
		{"not a date at all", "Art. 123 del Código Civil", InvalidDate},
		{"empty", "", InvalidDate},
		{"partial", "marzo de 2023", InvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseSpanishDate(tt.input); got != tt.want {
				t.Errorf("ParseSpanishDate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
