package institute

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/derive"
)

type Type string

const (
	TypeHospital   Type = "hospital"
	TypeClinic     Type = "clinic"
	TypeHealthPost Type = "health_post"
)

func (t Type) IsValid() bool {
	switch t {
	case TypeHospital, TypeClinic, TypeHealthPost:
		return true
	}
	return false
}

// Label capitalises the type for report output, e.g. "Health Post".
func (t Type) Label() string {
	switch t {
	case TypeHospital:
		return "Hospital"
	case TypeClinic:
		return "Clinic"
	case TypeHealthPost:
		return "Health Post"
	default:
		return "Unknown"
	}
}

type Ownership string

const (
	OwnershipGovernment Ownership = "government"
	OwnershipPrivate    Ownership = "private"
)

func (o Ownership) IsValid() bool {
	switch o {
	case OwnershipGovernment, OwnershipPrivate:
		return true
	}
	return false
}

func (o Ownership) Label() string {
	switch o {
	case OwnershipGovernment:
		return "Government"
	case OwnershipPrivate:
		return "Private"
	default:
		return "Unknown"
	}
}

// Institute is a health facility and the write authority for the records it
// issues.
type Institute struct {
	ID        int64     `gorm:"column:institute_id;primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	Name          string    `gorm:"column:name;type:varchar(255);not null"`
	Type          Type      `gorm:"column:type;type:varchar(20);not null;index"`
	Ownership     Ownership `gorm:"column:ownership;type:varchar(20);not null;index"`
	LicenseNumber string    `gorm:"column:license_number;type:varchar(30);uniqueIndex;not null"`
	Address       string    `gorm:"column:address;type:text"`
	District      string    `gorm:"column:district;type:varchar(100);index"`
	Phone         string    `gorm:"column:phone;type:varchar(30)"`
	IsActive      bool      `gorm:"column:is_active;default:true;index"`
}

func (Institute) TableName() string {
	return "health_institutes"
}

func (i *Institute) DistrictName() string {
	return derive.District(i.District, i.Address)
}

// Filter is the government network search. Nil fields match everything.
type Filter struct {
	Search    string // name, license number or address, case-insensitive
	Type      *Type
	Ownership *Ownership
	Active    *bool
}

func (f *Filter) Matches(i *Institute) bool {
	if f == nil {
		return true
	}
	if f.Type != nil && i.Type != *f.Type {
		return false
	}
	if f.Ownership != nil && i.Ownership != *f.Ownership {
		return false
	}
	if f.Active != nil && i.IsActive != *f.Active {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(f.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(i.Name), term) ||
		strings.Contains(strings.ToLower(i.LicenseNumber), term) ||
		strings.Contains(strings.ToLower(i.Address), term)
}
