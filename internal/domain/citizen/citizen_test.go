package citizen

import (
	"testing"
	"time"
)

func TestCitizen_Age(t *testing.T) {
	c := &Citizen{
		NationalID:  "277-265-681-8",
		DateOfBirth: time.Date(1990, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	asOf := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	if got := c.Age(asOf); got != 35 {
		t.Errorf("expected age 35, got %d", got)
	}
}

func TestCitizen_DistrictName(t *testing.T) {
	c := &Citizen{ContactInfo: ContactInfo{Address: "Ward No.7-Hetauda Makwanpur, Nepal"}}
	if got := c.DistrictName(); got != "Makwanpur" {
		t.Errorf("expected Makwanpur, got %q", got)
	}
}

func TestNormalizeNationalID(t *testing.T) {
	if got := NormalizeNationalID("  277-265-681-8\t"); got != "277-265-681-8" {
		t.Errorf("unexpected normalized id %q", got)
	}
}

func TestEnums(t *testing.T) {
	if !SexFemale.IsValid() || Sex("female").IsValid() {
		t.Error("unexpected Sex validity")
	}
	if !BloodGroupABNeg.IsValid() || BloodGroup("C+").IsValid() {
		t.Error("unexpected BloodGroup validity")
	}
}
