package v1

import (
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/service"
)

const dateLayout = "2006-01-02"

type LoginRequest struct {
	Portal   string `json:"portal" binding:"required"`
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateRecordRequest has no institute field; the issuing institute is taken
// from the caller's token.
type CreateRecordRequest struct {
	NationalID   string  `json:"national_id"`
	RecordType   string  `json:"record_type"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Diagnosis    string  `json:"diagnosis"`
	Prescription string  `json:"prescription"`
}

type KindDTO struct {
	Label string `json:"label"`
	Slug  string `json:"slug"`
	Color string `json:"color"`
}

type RecordResponse struct {
	ID           int64   `json:"record_id"`
	NationalID   string  `json:"nid_number"`
	InstituteID  int64   `json:"institute_id"`
	Kind         KindDTO `json:"record_type"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Diagnosis    string  `json:"diagnosis"`
	Prescription string  `json:"prescription"`
	IssuedDate   string  `json:"issued_date"`
}

type CitizenResponse struct {
	NationalID        string `json:"nid_number"`
	FullName          string `json:"full_name"`
	CitizenshipNumber string `json:"citizenship_number,omitempty"`
	DateOfBirth       string `json:"date_of_birth"`
	Age               int    `json:"age"`
	Sex               string `json:"sex"`
	BloodGroup        string `json:"blood_group,omitempty"`
	Phone             string `json:"phone,omitempty"`
	Email             string `json:"email,omitempty"`
	Address           string `json:"address,omitempty"`
	District          string `json:"district"`
	FatherName        string `json:"father_name,omitempty"`
	MotherName        string `json:"mother_name,omitempty"`
}

type PatientResponse struct {
	Citizen      CitizenResponse  `json:"citizen"`
	Records      []RecordResponse `json:"records"`
	RecordsError string           `json:"records_error,omitempty"`
}

type AddRecordResponse struct {
	Record       RecordResponse   `json:"record"`
	Records      []RecordResponse `json:"records"`
	RecordsError string           `json:"records_error,omitempty"`
}

type InstituteResponse struct {
	ID            int64  `json:"institute_id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	TypeLabel     string `json:"type_label"`
	Ownership     string `json:"ownership"`
	LicenseNumber string `json:"license_number"`
	Address       string `json:"address"`
	District      string `json:"district"`
	Phone         string `json:"phone,omitempty"`
	IsActive      bool   `json:"is_active"`
}

func toKindDTO(k hr.Kind) KindDTO {
	return KindDTO{Label: k.Label(), Slug: k.Slug(), Color: k.Color()}
}

func toRecordResponse(r *hr.HealthRecord) RecordResponse {
	return RecordResponse{
		ID:           r.ID,
		NationalID:   r.NationalID,
		InstituteID:  r.InstituteID,
		Kind:         toKindDTO(r.Kind),
		Title:        r.Title,
		Description:  r.Description,
		Diagnosis:    r.Diagnosis,
		Prescription: r.Prescription,
		IssuedDate:   r.IssuedDate.Format(dateLayout),
	}
}

func toRecordResponses(records []*hr.HealthRecord) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, r := range records {
		out = append(out, toRecordResponse(r))
	}
	return out
}

func toCitizenResponse(id *service.ResolvedIdentity) CitizenResponse {
	c := id.Citizen
	return CitizenResponse{
		NationalID:        c.NationalID,
		FullName:          c.FullName,
		CitizenshipNumber: c.CitizenshipNumber,
		DateOfBirth:       c.DateOfBirth.Format(dateLayout),
		Age:               id.Age,
		Sex:               string(c.Sex),
		BloodGroup:        string(c.BloodGroup),
		Phone:             c.Phone,
		Email:             c.Email,
		Address:           c.Address,
		District:          id.District,
		FatherName:        c.FatherName,
		MotherName:        c.MotherName,
	}
}

func toInstituteResponse(i *institute.Institute) InstituteResponse {
	return InstituteResponse{
		ID:            i.ID,
		Name:          i.Name,
		Type:          string(i.Type),
		TypeLabel:     i.Type.Label(),
		Ownership:     string(i.Ownership),
		LicenseNumber: i.LicenseNumber,
		Address:       i.Address,
		District:      i.DistrictName(),
		Phone:         i.Phone,
		IsActive:      i.IsActive,
	}
}
