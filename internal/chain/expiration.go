package chain

import (
	"time"

	"github.com/mhalpert/spreadscout/internal/models"
)

// monthlyWindowDays is how far a listed expiration may drift from the third
// Friday (exchange holidays shift some monthlies to Thursday) while still
// classifying as a monthly standard.
const monthlyWindowDays = 3

// ThirdFriday returns the third Friday of the given month: the first Friday
// plus fourteen days.
func ThirdFriday(year int, month time.Month) time.Time {
	d := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	for d.Weekday() != time.Friday {
		d = d.AddDate(0, 0, 1)
	}
	return d.AddDate(0, 0, 14)
}

// IsMonthlyExpiration reports whether the date falls within the monthly
// window around its month's third Friday.
func IsMonthlyExpiration(date time.Time) bool {
	date = date.UTC().Truncate(24 * time.Hour)
	third := ThirdFriday(date.Year(), date.Month())
	diff := int(date.Sub(third).Hours() / 24)
	if diff < 0 {
		diff = -diff
	}
	return diff <= monthlyWindowDays
}

// ClassifyExpiration labels a date as a monthly standard or a weekly.
func ClassifyExpiration(date time.Time) models.ExpirationType {
	if IsMonthlyExpiration(date) {
		return models.ExpirationMonthly
	}
	return models.ExpirationWeekly
}

// ClassifyContracts fills IsMonthly and ExpirationType on every contract,
// returning a new slice. Input contracts are not mutated.
func ClassifyContracts(contracts []models.OptionContract) []models.OptionContract {
	out := make([]models.OptionContract, len(contracts))
	for i, c := range contracts {
		c.IsMonthly = IsMonthlyExpiration(c.Expiration)
		if c.IsMonthly {
			c.ExpirationType = models.ExpirationMonthly
		} else {
			c.ExpirationType = models.ExpirationWeekly
		}
		out[i] = c
	}
	return out
}
