package derive

import (
	"fmt"
	"sort"
	"time"
)

const monthKeyLayout = "Jan 06"

// MonthKey is a (short month, 2-digit year) bucket such as "Jun 24".
type MonthKey string

func MonthKeyOf(t time.Time) MonthKey {
	return MonthKey(t.Format(monthKeyLayout))
}

// Start reconstructs the first day of the bucket's month.
func (k MonthKey) Start() (time.Time, error) {
	t, err := time.Parse(monthKeyLayout, string(k))
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing month key %q: %w", k, err)
	}
	return t, nil
}

// SortMonthKeys orders keys chronologically in place. Keys that do not parse
// sort first, in their original relative order.
func SortMonthKeys(keys []MonthKey) {
	starts := make(map[MonthKey]time.Time, len(keys))
	for _, k := range keys {
		if t, err := k.Start(); err == nil {
			starts[k] = t
		}
	}
	sort.SliceStable(keys, func(i, j int) bool {
		return starts[keys[i]].Before(starts[keys[j]])
	})
}

// ShortMonths lists calendar months in order for seasonal series.
var ShortMonths = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}
