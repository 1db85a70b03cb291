package analytics

import (
	"fmt"
	"sort"
	"time"

	"github.com/Ingramml/ca-lobby-mono/internal/models"
)

// Period selects the bucketing granularity for spending trends.
type Period string

const (
	PeriodQuarter Period = "quarter"
	PeriodMonth   Period = "month"
	PeriodYear    Period = "year"
)

// periodKey orders buckets chronologically. Comparing (year, sub) avoids the
// trap of sorting display labels like "Q2 2024" as strings.
type periodKey struct {
	year int
	sub  int
}

// CalculateSpendingTrends buckets spending by period and returns the buckets
// in chronological order. Records with unparsable dates are excluded; they
// must never surface as a garbage bucket label. An unknown period falls back
// to quarters.
func CalculateSpendingTrends(activities []models.Activity, period Period) []models.TrendBucket {
	switch period {
	case PeriodQuarter, PeriodMonth, PeriodYear:
	default:
		period = PeriodQuarter
	}

	buckets := make(map[periodKey]*models.TrendBucket)
	for _, a := range activities {
		t, ok := a.When()
		if !ok {
			continue
		}
		k := keyFor(t, period)
		b, ok := buckets[k]
		if !ok {
			b = &models.TrendBucket{Period: label(k, period), Year: k.year, Sub: k.sub}
			buckets[k] = b
		}
		b.Amount += a.Amount
		b.Count++
	}

	out := make([]models.TrendBucket, 0, len(buckets))
	for _, b := range buckets {
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Sub < out[j].Sub
	})
	return out
}

func keyFor(t time.Time, period Period) periodKey {
	switch period {
	case PeriodMonth:
		return periodKey{year: t.Year(), sub: int(t.Month())}
	case PeriodYear:
		return periodKey{year: t.Year()}
	default:
		return periodKey{year: t.Year(), sub: (int(t.Month())-1)/3 + 1}
	}
}

func label(k periodKey, period Period) string {
	switch period {
	case PeriodMonth:
		return fmt.Sprintf("%s %d", time.Month(k.sub).String()[:3], k.year)
	case PeriodYear:
		return fmt.Sprintf("%d", k.year)
	default:
		return fmt.Sprintf("Q%d %d", k.sub, k.year)
	}
}
