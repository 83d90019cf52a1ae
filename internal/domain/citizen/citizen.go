package citizen

import (
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/derive"
)

type Sex string

const (
	SexMale   Sex = "Male"
	SexFemale Sex = "Female"
	SexOther  Sex = "Other"
)

func (s Sex) IsValid() bool {
	switch s {
	case SexMale, SexFemale, SexOther:
		return true
	}
	return false
}

type BloodGroup string

const (
	BloodGroupAPos  BloodGroup = "A+"
	BloodGroupANeg  BloodGroup = "A-"
	BloodGroupBPos  BloodGroup = "B+"
	BloodGroupBNeg  BloodGroup = "B-"
	BloodGroupABPos BloodGroup = "AB+"
	BloodGroupABNeg BloodGroup = "AB-"
	BloodGroupOPos  BloodGroup = "O+"
	BloodGroupONeg  BloodGroup = "O-"
)

func (b BloodGroup) IsValid() bool {
	switch b {
	case BloodGroupAPos, BloodGroupANeg, BloodGroupBPos, BloodGroupBNeg,
		BloodGroupABPos, BloodGroupABNeg, BloodGroupOPos, BloodGroupONeg:
		return true
	}
	return false
}

type ContactInfo struct {
	Phone   string `gorm:"column:phone;type:varchar(30)"`
	Email   string `gorm:"column:email;type:varchar(255)"`
	Address string `gorm:"column:address;type:text"`
	// District is the structured location; rows imported from the legacy
	// registry leave it empty and fall back to parsing Address.
	District string `gorm:"column:district;type:varchar(100);index"`
}

// Citizen is a registry entry. Rows are created by the national registration
// process and are read-only here.
type Citizen struct {
	NationalID        string     `gorm:"column:nid_number;type:varchar(20);primaryKey"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	FullName          string     `gorm:"column:full_name;type:varchar(255);not null"`
	CitizenshipNumber string     `gorm:"column:citizenship_number;type:varchar(30);uniqueIndex"`
	DateOfBirth       time.Time  `gorm:"column:date_of_birth;type:date;not null"`
	Sex               Sex        `gorm:"column:sex;type:varchar(10);not null"`
	BloodGroup        BloodGroup `gorm:"column:blood_group;type:varchar(5)"`
	FatherName        string     `gorm:"column:father_name;type:varchar(255)"`
	MotherName        string     `gorm:"column:mother_name;type:varchar(255)"`

	ContactInfo
}

func (Citizen) TableName() string {
	return "citizens"
}

func (c *Citizen) Age(asOf time.Time) int {
	return derive.Age(c.DateOfBirth, asOf)
}

func (c *Citizen) DistrictName() string {
	return derive.District(c.District, c.Address)
}

// NormalizeNationalID trims the surrounding whitespace a search box leaves
// behind. Separators are significant and kept as typed.
func NormalizeNationalID(nid string) string {
	return strings.TrimSpace(nid)
}
