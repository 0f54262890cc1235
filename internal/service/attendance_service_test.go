package service

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestOvertimePoints(t *testing.T) {
	tests := []struct {
		name  string
		hours string
		rate  string
		want  string
	}{
		{"whole hours", "8", "1.5", "12"},
		{"fractional hours", "2.5", "2", "5"},
		{"zero rate", "10", "0", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hours, _ := decimal.NewFromString(tt.hours)
			rate, _ := decimal.NewFromString(tt.rate)
			want, _ := decimal.NewFromString(tt.want)

			got := OvertimePoints(hours, rate)
			if !got.Equal(want) {
				t.Errorf("OvertimePoints(%s, %s) = %s, want %s", tt.hours, tt.rate, got, want)
			}
		})
	}
}

func TestAbsencePointsAreNegative(t *testing.T) {
	days, _ := decimal.NewFromString("2")
	rate, _ := decimal.NewFromString("3.5")

	got := AbsencePoints(days, rate)
	want, _ := decimal.NewFromString("-7")
	if !got.Equal(want) {
		t.Errorf("AbsencePoints(2, 3.5) = %s, want %s", got, want)
	}
	if !got.IsNegative() {
		t.Errorf("absence points must be negative, got %s", got)
	}
}

func TestParseDateRange(t *testing.T) {
	from, to, err := parseDateRange("2026-01-01", "2026-01-31")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from.Format("2006-01-02") != "2026-01-01" || to.Format("2006-01-02") != "2026-01-31" {
		t.Errorf("got range %s..%s", from, to)
	}

	if _, _, err := parseDateRange("2026-02-01", "2026-01-01"); err == nil {
		t.Error("expected error for inverted range")
	}

	if _, _, err := parseDateRange("not-a-date", ""); err == nil {
		t.Error("expected error for malformed date")
	}

	// Empty bounds default to the current month.
	from, to, err = parseDateRange("", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if from.Day() != 1 {
		t.Errorf("default from should be first of month, got %s", from)
	}
	if !to.After(from) {
		t.Errorf("default range inverted: %s..%s", from, to)
	}
}
