package report

import (
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/derive"
)

type Demographics struct {
	TotalCitizens int `json:"total_citizens"`

	Sex          []derive.Count    `json:"sex"`
	BloodGroups  []BloodGroupShare `json:"blood_groups"`
	AgeBands     []derive.Count    `json:"age_bands"`
	TopDistricts []derive.Count    `json:"top_districts"`

	CitizensWithRecords int     `json:"citizens_with_records"`
	EngagementRate      float64 `json:"engagement_rate"`
}

// BloodGroupShare doubles as donor availability: how many citizens carry the
// group and their share of the population.
type BloodGroupShare struct {
	Group      string  `json:"group"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

func BuildDemographics(s *Snapshot) *Demographics {
	d := &Demographics{TotalCitizens: len(s.Citizens)}

	sex := derive.NewCounter()
	blood := derive.NewCounter()
	bands := derive.NewCounter()
	for _, band := range derive.AgeBands {
		bands.AddN(band, 0)
	}
	districts := derive.NewCounter()

	for _, c := range s.Citizens {
		sex.Add(orUnknown(string(c.Sex)))
		blood.Add(orUnknown(string(c.BloodGroup)))
		bands.Add(derive.AgeBand(c.Age(s.AsOf)))
		districts.Add(c.DistrictName())
	}

	d.Sex = sex.Entries()
	d.AgeBands = bands.Entries()
	d.TopDistricts = districts.Top(TopDistricts)

	ranked := blood.Top(0)
	d.BloodGroups = make([]BloodGroupShare, 0, len(ranked))
	for _, e := range ranked {
		d.BloodGroups = append(d.BloodGroups, BloodGroupShare{
			Group:      e.Key,
			Count:      e.Value,
			Percentage: derive.Rate(e.Value, len(s.Citizens)),
		})
	}

	registered := s.citizenIndex()
	withRecords := make(map[string]struct{})
	for _, r := range s.Records {
		if _, ok := registered[r.NationalID]; ok {
			withRecords[r.NationalID] = struct{}{}
		}
	}
	d.CitizensWithRecords = len(withRecords)
	d.EngagementRate = derive.Rate(len(withRecords), len(s.Citizens))
	return d
}

func orUnknown(v string) string {
	if v == "" {
		return "Unknown"
	}
	return v
}
