package domain

import (
	"strconv"
	"strings"
)

// FormatNumber округляет v до precision знаков после запятой для вывода и убирает хвостовые нули.
// Хранимые результаты не округляются.
func FormatNumber(v float64, precision int) string {
	if precision < 0 {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', precision, 64)
	if strings.Contains(s, ".") {
		s = strings.TrimRight(strings.TrimRight(s, "0"), ".")
	}
	if s == "-0" {
		s = "0"
	}
	return s
}
