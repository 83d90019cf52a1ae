package report

import (
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/derive"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
)

type Overview struct {
	TotalCitizens    int `json:"total_citizens"`
	TotalInstitutes  int `json:"total_institutes"`
	ActiveInstitutes int `json:"active_institutes"`
	TotalRecords     int `json:"total_records"`

	Coverage           Coverage           `json:"coverage"`
	ResourceAllocation []DistrictRatio    `json:"resource_allocation"`
	RecordsByMonth     []MonthCount       `json:"records_by_month"`
	PatientTypeTrend   []PatientTypeTrend `json:"patient_type_trend"`
	TopDiagnoses       []derive.Count     `json:"top_diagnoses"`
}

// Coverage counts the distinct registered citizens with a record in the
// coverage window.
type Coverage struct {
	WindowMonths int     `json:"window_months"`
	Citizens     int     `json:"citizens"`
	Rate         float64 `json:"rate"`
}

// DistrictRatio is citizens per institute in a district that has at least one
// institute. A higher ratio means the district is under-served.
type DistrictRatio struct {
	District   string `json:"district"`
	Citizens   int    `json:"citizens"`
	Institutes int    `json:"institutes"`
	Ratio      int    `json:"ratio"`
}

type PatientTypeTrend struct {
	Month derive.MonthKey `json:"month"`
	IPD   int             `json:"ipd"`
	OPD   int             `json:"opd"`
}

func BuildOverview(s *Snapshot) *Overview {
	ov := &Overview{
		TotalCitizens:   len(s.Citizens),
		TotalInstitutes: len(s.Institutes),
		TotalRecords:    len(s.Records),
	}
	for _, inst := range s.Institutes {
		if inst.IsActive {
			ov.ActiveInstitutes++
		}
	}

	ov.Coverage = coverage(s)
	ov.ResourceAllocation = resourceAllocation(s)

	keys, buckets := monthBuckets(s.Records)
	keys = lastN(keys, MonthlyBuckets)
	ov.RecordsByMonth = make([]MonthCount, 0, len(keys))
	ov.PatientTypeTrend = make([]PatientTypeTrend, 0, len(keys))
	for _, k := range keys {
		ov.RecordsByMonth = append(ov.RecordsByMonth, MonthCount{Month: k, Records: len(buckets[k])})

		trend := PatientTypeTrend{Month: k}
		for _, r := range buckets[k] {
			switch r.Kind {
			case hr.KindIPD:
				trend.IPD++
			case hr.KindOPD:
				trend.OPD++
			}
		}
		ov.PatientTypeTrend = append(ov.PatientTypeTrend, trend)
	}

	ov.TopDiagnoses = diagnosisCounter(s.Records).Top(TopDiagnosesPreview)
	return ov
}

func coverage(s *Snapshot) Coverage {
	from := derive.Date(s.AsOf).AddDate(0, -CoverageWindowMonths, 0)
	registered := s.citizenIndex()
	seen := make(map[string]struct{})
	for _, r := range s.since(from) {
		if _, ok := registered[r.NationalID]; ok {
			seen[r.NationalID] = struct{}{}
		}
	}
	return Coverage{
		WindowMonths: CoverageWindowMonths,
		Citizens:     len(seen),
		Rate:         derive.Rate(len(seen), len(s.Citizens)),
	}
}

func resourceAllocation(s *Snapshot) []DistrictRatio {
	institutes := derive.NewCounter()
	for _, inst := range s.Institutes {
		institutes.Add(inst.DistrictName())
	}
	citizens := derive.NewCounter()
	for _, c := range s.Citizens {
		if d := c.DistrictName(); institutes.Has(d) {
			citizens.Add(d)
		}
	}

	rows := make([]DistrictRatio, 0, institutes.Len())
	for _, e := range institutes.Entries() {
		n := citizens.Get(e.Key)
		rows = append(rows, DistrictRatio{
			District:   e.Key,
			Citizens:   n,
			Institutes: e.Value,
			Ratio:      int(derive.Ratio(n, e.Value, 0)),
		})
	}
	rows = rankBy(rows, func(d DistrictRatio) float64 { return float64(d.Ratio) })
	return firstN(rows, TopDistricts)
}
