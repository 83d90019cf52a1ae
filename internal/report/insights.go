package report

import (
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/derive"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
)

type Insights struct {
	TotalRecords int `json:"total_records"`

	TopDiagnoses []derive.Count `json:"top_diagnoses"`
	RecordKinds  []KindCount    `json:"record_kinds"`
	IPDShare     float64        `json:"ipd_share"`
	OPDShare     float64        `json:"opd_share"`

	DistrictBurden    []DistrictBurden   `json:"district_burden"`
	SeasonalTrend     SeasonalTrend      `json:"seasonal_trend"`
	OutbreakAlerts    []OutbreakAlert    `json:"outbreak_alerts"`
	TreatmentPatterns []TreatmentPattern `json:"treatment_patterns"`
	TypePerformance   []TypePerformance  `json:"institute_type_performance"`
}

type KindCount struct {
	Kind  string `json:"kind"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
	Count int    `json:"count"`
}

// DistrictBurden is cases per hundred citizens for districts where at least
// one record's citizen lives.
type DistrictBurden struct {
	District string  `json:"district"`
	Cases    int     `json:"cases"`
	Citizens int     `json:"citizens"`
	Rate     float64 `json:"rate"`
}

// SeasonalTrend tracks the most frequent diagnoses by calendar month across
// all years. Values[i] lines up with Diagnoses[i].
type SeasonalTrend struct {
	Diagnoses []string        `json:"diagnoses"`
	Months    []SeasonalPoint `json:"months"`
}

type SeasonalPoint struct {
	Month  string `json:"month"`
	Values []int  `json:"values"`
}

type OutbreakAlert struct {
	Diagnosis  string  `json:"diagnosis"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
	TotalCases int     `json:"total_cases"`
}

type TreatmentPattern struct {
	Diagnosis string  `json:"diagnosis"`
	IPD       int     `json:"ipd"`
	OPD       int     `json:"opd"`
	Total     int     `json:"total"`
	IPDRate   float64 `json:"ipd_rate"`
}

type TypePerformance struct {
	Type       string  `json:"type"`
	Records    int     `json:"records"`
	Institutes int     `json:"institutes"`
	AvgRecords float64 `json:"avg_records"`
}

func BuildInsights(s *Snapshot) *Insights {
	diagnoses := diagnosisCounter(s.Records)

	in := &Insights{
		TotalRecords:      len(s.Records),
		TopDiagnoses:      diagnoses.Top(TopDiagnoses),
		DistrictBurden:    districtBurden(s),
		SeasonalTrend:     seasonalTrend(s, diagnoses),
		OutbreakAlerts:    outbreakAlerts(s, diagnoses),
		TreatmentPatterns: treatmentPatterns(s),
		TypePerformance:   typePerformance(s),
	}

	kinds := derive.NewCounter()
	for _, r := range s.Records {
		kinds.Add(string(r.Kind))
	}
	in.RecordKinds = make([]KindCount, 0, kinds.Len())
	for _, e := range kinds.Entries() {
		k := hr.Kind(e.Key)
		in.RecordKinds = append(in.RecordKinds, KindCount{
			Kind:  k.Label(),
			Slug:  k.Slug(),
			Color: k.Color(),
			Count: e.Value,
		})
	}
	in.IPDShare = derive.Rate(kinds.Get(string(hr.KindIPD)), len(s.Records))
	in.OPDShare = derive.Rate(kinds.Get(string(hr.KindOPD)), len(s.Records))
	return in
}

func districtBurden(s *Snapshot) []DistrictBurden {
	citizens := s.citizenIndex()

	cases := derive.NewCounter()
	for _, r := range s.Records {
		if c, ok := citizens[r.NationalID]; ok {
			cases.Add(c.DistrictName())
		}
	}
	population := derive.NewCounter()
	for _, c := range s.Citizens {
		if d := c.DistrictName(); cases.Has(d) {
			population.Add(d)
		}
	}

	rows := make([]DistrictBurden, 0, cases.Len())
	for _, e := range cases.Entries() {
		pop := population.Get(e.Key)
		rows = append(rows, DistrictBurden{
			District: e.Key,
			Cases:    e.Value,
			Citizens: pop,
			Rate:     derive.Rate(e.Value, pop),
		})
	}
	rows = rankBy(rows, func(d DistrictBurden) float64 { return d.Rate })
	return firstN(rows, TopDistricts)
}

func seasonalTrend(s *Snapshot, diagnoses *derive.Counter) SeasonalTrend {
	top := diagnoses.Top(TrendDiagnoses)
	trend := SeasonalTrend{
		Diagnoses: make([]string, 0, len(top)),
		Months:    make([]SeasonalPoint, 0, len(derive.ShortMonths)),
	}
	column := make(map[string]int, len(top))
	for i, e := range top {
		trend.Diagnoses = append(trend.Diagnoses, e.Key)
		column[e.Key] = i
	}

	var grid [12][]int
	for m := range grid {
		grid[m] = make([]int, len(top))
	}
	for _, r := range s.Records {
		if i, ok := column[r.Diagnosis]; ok {
			grid[r.IssuedDate.Month()-1][i]++
		}
	}

	for m, values := range grid {
		total := 0
		for _, v := range values {
			total += v
		}
		if total == 0 {
			continue
		}
		trend.Months = append(trend.Months, SeasonalPoint{Month: derive.ShortMonths[m], Values: values})
	}
	return trend
}

func outbreakAlerts(s *Snapshot, diagnoses *derive.Counter) []OutbreakAlert {
	from := derive.Date(s.AsOf).AddDate(0, 0, -OutbreakWindowDays)
	recent := s.since(from)

	counts := diagnosisCounter(recent)
	top := counts.Top(TopOutbreakAlerts)
	alerts := make([]OutbreakAlert, 0, len(top))
	for _, e := range top {
		alerts = append(alerts, OutbreakAlert{
			Diagnosis:  e.Key,
			Count:      e.Value,
			Percentage: derive.Rate(e.Value, len(recent)),
			TotalCases: diagnoses.Get(e.Key),
		})
	}
	return alerts
}

// treatmentPatterns splits each diagnosis into inpatient and outpatient
// records. Diagnoses never seen as IPD or OPD are left out.
func treatmentPatterns(s *Snapshot) []TreatmentPattern {
	ipd := derive.NewCounter()
	opd := derive.NewCounter()
	order := derive.NewCounter()
	for _, r := range s.Records {
		switch r.Kind {
		case hr.KindIPD:
			order.Add(r.Diagnosis)
			ipd.Add(r.Diagnosis)
		case hr.KindOPD:
			order.Add(r.Diagnosis)
			opd.Add(r.Diagnosis)
		}
	}

	rows := make([]TreatmentPattern, 0, order.Len())
	for _, e := range order.Entries() {
		in, out := ipd.Get(e.Key), opd.Get(e.Key)
		rows = append(rows, TreatmentPattern{
			Diagnosis: e.Key,
			IPD:       in,
			OPD:       out,
			Total:     in + out,
			IPDRate:   derive.Round(derive.Rate(in, in+out), 0),
		})
	}
	rows = rankBy(rows, func(t TreatmentPattern) float64 { return float64(t.Total) })
	return firstN(rows, TopTreatmentPatterns)
}

// typePerformance averages record load per institute type, counting only
// records whose institute is known.
func typePerformance(s *Snapshot) []TypePerformance {
	institutes := s.instituteIndex()

	records := derive.NewCounter()
	for _, r := range s.Records {
		if inst, ok := institutes[r.InstituteID]; ok {
			records.Add(inst.Type.Label())
		}
	}
	members := derive.NewCounter()
	for _, inst := range s.Institutes {
		if label := inst.Type.Label(); records.Has(label) {
			members.Add(label)
		}
	}

	rows := make([]TypePerformance, 0, records.Len())
	for _, e := range records.Entries() {
		n := members.Get(e.Key)
		rows = append(rows, TypePerformance{
			Type:       e.Key,
			Records:    e.Value,
			Institutes: n,
			AvgRecords: derive.Ratio(e.Value, n, 1),
		})
	}
	return rankBy(rows, func(t TypePerformance) float64 { return t.AvgRecords })
}
