package report

import (
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/derive"
)

type Network struct {
	TotalInstitutes int `json:"total_institutes"`

	ByType       []derive.Count `json:"by_type"`
	ByOwnership  []derive.Count `json:"by_ownership"`
	TopDistricts []derive.Count `json:"top_districts"`

	Active     int     `json:"active"`
	Inactive   int     `json:"inactive"`
	ActiveRate float64 `json:"active_rate"`

	TopByRecordLoad []InstituteLoad `json:"top_by_record_load"`
}

type InstituteLoad struct {
	InstituteID int64  `json:"institute_id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Records     int    `json:"records"`
}

func BuildNetwork(s *Snapshot) *Network {
	n := &Network{TotalInstitutes: len(s.Institutes)}

	types := derive.NewCounter()
	ownership := derive.NewCounter()
	districts := derive.NewCounter()
	for _, inst := range s.Institutes {
		types.Add(inst.Type.Label())
		ownership.Add(inst.Ownership.Label())
		districts.Add(inst.DistrictName())
		if inst.IsActive {
			n.Active++
		}
	}
	n.Inactive = len(s.Institutes) - n.Active
	n.ActiveRate = derive.Rate(n.Active, len(s.Institutes))

	n.ByType = types.Entries()
	n.ByOwnership = ownership.Entries()
	n.TopDistricts = districts.Top(TopDistricts)

	perInstitute := make(map[int64]int)
	for _, r := range s.Records {
		perInstitute[r.InstituteID]++
	}
	loads := make([]InstituteLoad, 0, len(s.Institutes))
	for _, inst := range s.Institutes {
		loads = append(loads, InstituteLoad{
			InstituteID: inst.ID,
			Name:        inst.Name,
			Type:        inst.Type.Label(),
			Records:     perInstitute[inst.ID],
		})
	}
	loads = rankBy(loads, func(l InstituteLoad) float64 { return float64(l.Records) })
	n.TopByRecordLoad = firstN(loads, TopInstitutesByLoad)
	return n
}
