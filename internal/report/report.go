// Package report builds the government rollups. Every builder is a pure
// function of a Snapshot: inputs are never modified, equal snapshots give
// equal output, and rankings with equal counts keep first-seen order.
package report

import (
	"sort"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/derive"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
)

// Ranking sizes used across the reports.
const (
	TopDistricts         = 10
	TopDiagnoses         = 10
	TopDiagnosesPreview  = 5
	TopInstitutesByLoad  = 10
	TopTreatmentPatterns = 8
	TopOutbreakAlerts    = 5
	TrendDiagnoses       = 5
	MonthlyBuckets       = 12

	CoverageWindowMonths = 6
	OutbreakWindowDays   = 30
)

// Snapshot is one consistent read of the three collections plus the clock the
// rollups measure ages and windows against.
type Snapshot struct {
	Citizens   []*citizen.Citizen
	Institutes []*institute.Institute
	Records    []*hr.HealthRecord
	AsOf       time.Time
}

func (s *Snapshot) citizenIndex() map[string]*citizen.Citizen {
	idx := make(map[string]*citizen.Citizen, len(s.Citizens))
	for _, c := range s.Citizens {
		if _, ok := idx[c.NationalID]; !ok {
			idx[c.NationalID] = c
		}
	}
	return idx
}

func (s *Snapshot) instituteIndex() map[int64]*institute.Institute {
	idx := make(map[int64]*institute.Institute, len(s.Institutes))
	for _, inst := range s.Institutes {
		if _, ok := idx[inst.ID]; !ok {
			idx[inst.ID] = inst
		}
	}
	return idx
}

// since returns the records issued on or after the given calendar date.
func (s *Snapshot) since(from time.Time) []*hr.HealthRecord {
	out := make([]*hr.HealthRecord, 0)
	for _, r := range s.Records {
		if !derive.Date(r.IssuedDate).Before(from) {
			out = append(out, r)
		}
	}
	return out
}

func diagnosisCounter(records []*hr.HealthRecord) *derive.Counter {
	c := derive.NewCounter()
	for _, r := range records {
		c.Add(r.Diagnosis)
	}
	return c
}

// MonthCount is the number of records issued in one month bucket.
type MonthCount struct {
	Month   derive.MonthKey `json:"month"`
	Records int             `json:"records"`
}

// monthBuckets groups records by issue month, returning the keys in
// chronological order alongside the per-key records.
func monthBuckets(records []*hr.HealthRecord) ([]derive.MonthKey, map[derive.MonthKey][]*hr.HealthRecord) {
	buckets := make(map[derive.MonthKey][]*hr.HealthRecord)
	keys := make([]derive.MonthKey, 0)
	for _, r := range records {
		k := derive.MonthKeyOf(r.IssuedDate)
		if _, ok := buckets[k]; !ok {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], r)
	}
	derive.SortMonthKeys(keys)
	return keys, buckets
}

func lastN[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[len(items)-n:]
	}
	return items
}

func firstN[T any](items []T, n int) []T {
	if n > 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// rankBy sorts items highest first by key, keeping the input order for equal
// keys. The input slice is not modified.
func rankBy[T any](items []T, key func(T) float64) []T {
	out := make([]T, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return key(out[i]) > key(out[j])
	})
	return out
}
