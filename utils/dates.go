package utils

import (
	"fmt"
	"time"
)

const localDateLayout = "2006-01-02"

// ParseLocalDate -> parse tanggal kalender "YYYY-MM-DD" di zona lokal.
// Sengaja tanpa konversi timezone supaya tanggal pengiriman tidak bergeser.
func ParseLocalDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(localDateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// FormatLocalDate -> format tanggal kalender "YYYY-MM-DD"
func FormatLocalDate(t time.Time) string {
	return t.Format(localDateLayout)
}

// DaySegment / MonthSegment -> segmen dua digit untuk nomor order DD-MM-NN
func DaySegment(t time.Time) string {
	return fmt.Sprintf("%02d", t.Day())
}

func MonthSegment(t time.Time) string {
	return fmt.Sprintf("%02d", int(t.Month()))
}
