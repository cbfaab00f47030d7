package utils

import (
	"fmt"
	"strconv"
	"time"
)

// ParseDate aceita YYYY-MM-DD; vazio devolve o tempo zero
func ParseDate(dateStr string) (time.Time, error) {
	if dateStr == "" {
		return time.Time{}, nil
	}

	date, err := time.Parse(time.DateOnly, dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", dateStr)
	}
	return date, nil
}

// ParseLimit lê um inteiro positivo de query string, com padrão e teto
func ParseLimit(value string, fallback, max int) (int, error) {
	if value == "" {
		return fallback, nil
	}

	n, err := strconv.Atoi(value)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid value %q, expected a positive integer", value)
	}
	if n > max {
		n = max
	}
	return n, nil
}
