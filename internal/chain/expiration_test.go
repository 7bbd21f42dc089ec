package chain

import (
	"testing"
	"time"

	"github.com/mhalpert/spreadscout/internal/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestThirdFriday(t *testing.T) {
	tests := []struct {
		name  string
		year  int
		month time.Month
		want  time.Time
	}{
		{name: "january 2026", year: 2026, month: time.January, want: date(2026, time.January, 16)},
		{name: "september 2026", year: 2026, month: time.September, want: date(2026, time.September, 18)},
		{name: "month starting on friday", year: 2026, month: time.May, want: date(2026, time.May, 15)},
		{name: "february leap year", year: 2024, month: time.February, want: date(2024, time.February, 16)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ThirdFriday(tt.year, tt.month)
			if !got.Equal(tt.want) {
				t.Errorf("ThirdFriday(%d, %s) = %s, want %s", tt.year, tt.month, got, tt.want)
			}
			if got.Weekday() != time.Friday {
				t.Errorf("third friday fell on %s", got.Weekday())
			}
		})
	}
}

func TestIsMonthlyExpiration(t *testing.T) {
	third := date(2026, time.September, 18)

	tests := []struct {
		name string
		d    time.Time
		want bool
	}{
		{name: "exact third friday", d: third, want: true},
		{name: "holiday shift thursday", d: third.AddDate(0, 0, -1), want: true},
		{name: "three days after", d: third.AddDate(0, 0, 3), want: true},
		{name: "four days after", d: third.AddDate(0, 0, 4), want: false},
		{name: "first friday weekly", d: date(2026, time.September, 4), want: false},
		{name: "last friday weekly", d: date(2026, time.September, 25), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsMonthlyExpiration(tt.d); got != tt.want {
				t.Errorf("IsMonthlyExpiration(%s) = %v, want %v", tt.d, got, tt.want)
			}
		})
	}
}

func TestClassifyContracts(t *testing.T) {
	now := date(2026, time.September, 1)
	contracts := []models.OptionContract{
		models.NewOptionContract("A", "SPY", 100, date(2026, time.September, 18), models.OptionTypePut, now),
		models.NewOptionContract("B", "SPY", 100, date(2026, time.September, 25), models.OptionTypePut, now),
	}

	classified := ClassifyContracts(contracts)

	if !classified[0].IsMonthly || classified[0].ExpirationType != models.ExpirationMonthly {
		t.Errorf("third friday contract not classified monthly: %+v", classified[0])
	}
	if classified[1].IsMonthly || classified[1].ExpirationType != models.ExpirationWeekly {
		t.Errorf("last friday contract not classified weekly: %+v", classified[1])
	}
	// Input slice must stay untouched.
	if contracts[0].ExpirationType != "" {
		t.Error("input slice was mutated")
	}
}
