package health_record

import (
	"sort"
	"strings"
	"time"
)

// Kind is the closed set of record kinds an institute may issue. Values are
// stored as their display label.
type Kind string

const (
	KindPrescription Kind = "Prescription"
	KindConsultation Kind = "Consultation"
	KindLabReport    Kind = "Lab Report"
	KindVaccination  Kind = "Vaccination"
	KindIPD          Kind = "IPD"
	KindOPD          Kind = "OPD"

	// KindUnknown is what an unrecognised stored value renders as.
	KindUnknown Kind = "Unknown"
)

// Kinds lists every valid kind in display order.
var Kinds = []Kind{KindPrescription, KindConsultation, KindLabReport, KindVaccination, KindIPD, KindOPD}

func (k Kind) IsValid() bool {
	switch k {
	case KindPrescription, KindConsultation, KindLabReport, KindVaccination, KindIPD, KindOPD:
		return true
	}
	return false
}

// Label is the human-readable name. Unrecognised values render as "Unknown".
func (k Kind) Label() string {
	switch k {
	case KindPrescription, KindConsultation, KindLabReport, KindVaccination, KindIPD, KindOPD:
		return string(k)
	default:
		return string(KindUnknown)
	}
}

// Slug is the URL/query form, e.g. "lab_report".
func (k Kind) Slug() string {
	switch k {
	case KindPrescription:
		return "prescription"
	case KindConsultation:
		return "consultation"
	case KindLabReport:
		return "lab_report"
	case KindVaccination:
		return "vaccination"
	case KindIPD:
		return "ipd"
	case KindOPD:
		return "opd"
	default:
		return "unknown"
	}
}

// Color is the badge colour the portals render for the kind.
func (k Kind) Color() string {
	switch k {
	case KindPrescription:
		return "#8b5cf6"
	case KindConsultation:
		return "#f97316"
	case KindLabReport:
		return "#3b82f6"
	case KindVaccination:
		return "#10b981"
	case KindIPD:
		return "#ec4899"
	case KindOPD:
		return "#6366f1"
	default:
		return "#6b7280"
	}
}

// ParseKind accepts a label ("Lab Report") or a slug ("lab_report"),
// case-insensitively.
func ParseKind(raw string) (Kind, error) {
	v := strings.ToLower(strings.TrimSpace(raw))
	for _, k := range Kinds {
		if v == strings.ToLower(string(k)) || v == k.Slug() {
			return k, nil
		}
	}
	return "", ErrInvalidRecordKind
}

// HealthRecord is an append-only entry in a citizen's history. Once created,
// records are never edited or deleted; IssuedDate is set by the writer.
type HealthRecord struct {
	// ID is monotonic and breaks ties between records issued the same day.
	ID        int64     `gorm:"column:record_id;primaryKey;autoIncrement"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`

	NationalID  string `gorm:"column:nid_number;type:varchar(20);not null;index:idx_health_records_nid_issued,priority:1"`
	InstituteID int64  `gorm:"column:institute_id;not null;index"`

	Kind         Kind    `gorm:"column:record_type;type:varchar(30);not null;index"`
	Title        string  `gorm:"column:title;type:varchar(255);not null"`
	Description  *string `gorm:"column:description;type:text"`
	Diagnosis    string  `gorm:"column:diagnosis;type:text;not null;index"`
	Prescription string  `gorm:"column:prescription;type:text;not null"`

	IssuedDate time.Time `gorm:"column:issued_date;type:date;not null;index:idx_health_records_nid_issued,priority:2,sort:desc"`
}

func (HealthRecord) TableName() string {
	return "health_records"
}

func (r *HealthRecord) DescriptionText() string {
	if r.Description == nil {
		return ""
	}
	return *r.Description
}

type CreateRecordCommand struct {
	NationalID   string
	InstituteID  int64
	Kind         Kind
	Title        string
	Description  *string
	Diagnosis    string
	Prescription string
}

// ListRecordsQuery narrows one citizen's history for the citizen portal.
type ListRecordsQuery struct {
	Search string
	Kind   *Kind
}

// Matches reports whether the record passes the query's search text (title
// or description, case-insensitive) and kind filter.
func (q *ListRecordsQuery) Matches(r *HealthRecord) bool {
	if q == nil {
		return true
	}
	if q.Kind != nil && r.Kind != *q.Kind {
		return false
	}
	term := strings.ToLower(strings.TrimSpace(q.Search))
	if term == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Title), term) ||
		strings.Contains(strings.ToLower(r.DescriptionText()), term)
}

// Filter returns the records matching q, preserving order. The input slice is
// not modified.
func Filter(records []*HealthRecord, q *ListRecordsQuery) []*HealthRecord {
	out := make([]*HealthRecord, 0, len(records))
	for _, r := range records {
		if q.Matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// SortNewestFirst orders records by issue date descending; records issued on
// the same day keep creation order (ascending ID).
func SortNewestFirst(records []*HealthRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if !a.IssuedDate.Equal(b.IssuedDate) {
			return a.IssuedDate.After(b.IssuedDate)
		}
		return a.ID < b.ID
	})
}
