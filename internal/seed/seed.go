// Package seed loads the registry JSON exports (citizens.json,
// health_institutes.json, health_records.json) into a store.
package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/derive"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
	"go.uber.org/zap"
)

const (
	CitizensFile   = "citizens.json"
	InstitutesFile = "health_institutes.json"
	RecordsFile    = "health_records.json"
)

// Importer is satisfied by both the postgres and the in-memory store.
type Importer interface {
	ImportCitizens(ctx context.Context, rows []*citizen.Citizen) (int64, error)
	ImportInstitutes(ctx context.Context, rows []*institute.Institute) (int64, error)
	ImportRecords(ctx context.Context, rows []*hr.HealthRecord) (int64, error)
}

type citizenRow struct {
	NationalID        string `json:"nid_number"`
	FullName          string `json:"full_name"`
	CitizenshipNumber string `json:"citizenship_number"`
	DateOfBirth       string `json:"date_of_birth"`
	Sex               string `json:"sex"`
	BloodGroup        string `json:"blood_group"`
	FatherName        string `json:"father_name"`
	MotherName        string `json:"mother_name"`
	Address           string `json:"address"`
	District          string `json:"district"`
	Phone             string `json:"phone"`
	Email             string `json:"email"`
	CreatedAt         string `json:"created_at"`
}

type instituteRow struct {
	ID            int64  `json:"institute_id"`
	Name          string `json:"name"`
	Type          string `json:"type"`
	Ownership     string `json:"ownership"`
	LicenseNumber string `json:"license_number"`
	Address       string `json:"address"`
	District      string `json:"district"`
	Phone         string `json:"phone"`
	IsActive      *bool  `json:"is_active"`
	CreatedAt     string `json:"created_at"`
}

type recordRow struct {
	ID           int64   `json:"record_id"`
	NationalID   string  `json:"nid_number"`
	InstituteID  int64   `json:"institute_id"`
	RecordType   string  `json:"record_type"`
	Title        string  `json:"title"`
	Description  *string `json:"description"`
	Diagnosis    string  `json:"diagnosis"`
	Prescription string  `json:"prescription"`
	IssuedDate   string  `json:"issued_date"`
}

// Dataset is a parsed export. Rows that could not be mapped onto the domain
// are counted in the Skipped fields and left out. Records of a legacy type
// with no portal kind are kept as KindUnknown and counted separately.
type Dataset struct {
	Citizens   []*citizen.Citizen
	Institutes []*institute.Institute
	Records    []*hr.HealthRecord

	SkippedCitizens     int
	SkippedInstitutes   int
	SkippedRecords      int
	UnclassifiedRecords int
}

type Result struct {
	Citizens   int64
	Institutes int64
	Records    int64
	Skipped    int
}

// legacyKinds maps record types used by the older data generator onto the
// current closed set. Emergency and day-care visits have no portal kind; they
// are imported as KindUnknown so rollup totals still count them.
var legacyKinds = map[string]hr.Kind{
	"lab":         hr.KindLabReport,
	"teleconsult": hr.KindConsultation,
	"pharmacy":    hr.KindPrescription,
	"emergency":   hr.KindUnknown,
	"daycare":     hr.KindUnknown,
	"day care":    hr.KindUnknown,
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// LoadDir reads the three export files from dir.
func LoadDir(dir string, log *zap.Logger) (*Dataset, error) {
	var (
		citizens   []citizenRow
		institutes []instituteRow
		records    []recordRow
	)
	if err := readJSON(filepath.Join(dir, CitizensFile), &citizens); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, InstitutesFile), &institutes); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dir, RecordsFile), &records); err != nil {
		return nil, err
	}
	return build(citizens, institutes, records, log), nil
}

func readJSON(path string, dst any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}
	return nil
}

func build(citizens []citizenRow, institutes []instituteRow, records []recordRow, log *zap.Logger) *Dataset {
	ds := &Dataset{
		Citizens:   make([]*citizen.Citizen, 0, len(citizens)),
		Institutes: make([]*institute.Institute, 0, len(institutes)),
		Records:    make([]*hr.HealthRecord, 0, len(records)),
	}

	for _, row := range citizens {
		c, err := row.toCitizen()
		if err != nil {
			ds.SkippedCitizens++
			log.Debug("skipping citizen row", zap.String("nid", row.NationalID), zap.Error(err))
			continue
		}
		ds.Citizens = append(ds.Citizens, c)
	}

	for _, row := range institutes {
		inst, err := row.toInstitute()
		if err != nil {
			ds.SkippedInstitutes++
			log.Debug("skipping institute row", zap.Int64("institute_id", row.ID), zap.Error(err))
			continue
		}
		ds.Institutes = append(ds.Institutes, inst)
	}

	for _, row := range records {
		rec, err := row.toRecord()
		if err != nil {
			ds.SkippedRecords++
			log.Debug("skipping record row", zap.Int64("record_id", row.ID), zap.Error(err))
			continue
		}
		if rec.Kind == hr.KindUnknown {
			ds.UnclassifiedRecords++
		}
		ds.Records = append(ds.Records, rec)
	}

	if ds.UnclassifiedRecords > 0 {
		log.Info("legacy record types imported as Unknown", zap.Int("records", ds.UnclassifiedRecords))
	}

	if skipped := ds.SkippedCitizens + ds.SkippedInstitutes + ds.SkippedRecords; skipped > 0 {
		log.Warn("export rows skipped",
			zap.Int("citizens", ds.SkippedCitizens),
			zap.Int("institutes", ds.SkippedInstitutes),
			zap.Int("records", ds.SkippedRecords),
		)
	}
	return ds
}

// Run imports institutes, then citizens, then records. Re-running against a
// populated store inserts nothing new.
func Run(ctx context.Context, im Importer, ds *Dataset, log *zap.Logger) (*Result, error) {
	res := &Result{Skipped: ds.SkippedCitizens + ds.SkippedInstitutes + ds.SkippedRecords}

	var err error
	if res.Institutes, err = im.ImportInstitutes(ctx, ds.Institutes); err != nil {
		return res, fmt.Errorf("importing institutes: %w", err)
	}
	if res.Citizens, err = im.ImportCitizens(ctx, ds.Citizens); err != nil {
		return res, fmt.Errorf("importing citizens: %w", err)
	}
	if res.Records, err = im.ImportRecords(ctx, ds.Records); err != nil {
		return res, fmt.Errorf("importing health records: %w", err)
	}

	log.Info("seed completed",
		zap.Int64("citizens", res.Citizens),
		zap.Int64("institutes", res.Institutes),
		zap.Int64("records", res.Records),
		zap.Int("skipped", res.Skipped),
	)
	return res, nil
}

func (r citizenRow) toCitizen() (*citizen.Citizen, error) {
	nid := citizen.NormalizeNationalID(r.NationalID)
	if nid == "" {
		return nil, citizen.ErrNationalIDRequired
	}
	dob, err := parseTime(r.DateOfBirth)
	if err != nil {
		return nil, fmt.Errorf("date_of_birth: %w", err)
	}
	sex := citizen.Sex(strings.TrimSpace(r.Sex))
	if !sex.IsValid() {
		return nil, fmt.Errorf("unknown sex %q", r.Sex)
	}
	blood := citizen.BloodGroup(strings.ToUpper(strings.TrimSpace(r.BloodGroup)))
	if blood != "" && !blood.IsValid() {
		return nil, fmt.Errorf("unknown blood group %q", r.BloodGroup)
	}

	c := &citizen.Citizen{
		NationalID:        nid,
		FullName:          strings.TrimSpace(r.FullName),
		CitizenshipNumber: strings.TrimSpace(r.CitizenshipNumber),
		DateOfBirth:       derive.Date(dob),
		Sex:               sex,
		BloodGroup:        blood,
		FatherName:        r.FatherName,
		MotherName:        r.MotherName,
		ContactInfo: citizen.ContactInfo{
			Phone:    r.Phone,
			Email:    r.Email,
			Address:  r.Address,
			District: strings.TrimSpace(r.District),
		},
	}
	if created, err := parseTime(r.CreatedAt); err == nil {
		c.CreatedAt = created
	}
	return c, nil
}

func (r instituteRow) toInstitute() (*institute.Institute, error) {
	t := institute.Type(strings.ToLower(strings.TrimSpace(r.Type)))
	if !t.IsValid() {
		return nil, institute.ErrInvalidType
	}
	o := institute.Ownership(strings.ToLower(strings.TrimSpace(r.Ownership)))
	if !o.IsValid() {
		return nil, institute.ErrInvalidOwnership
	}
	if strings.TrimSpace(r.LicenseNumber) == "" {
		return nil, fmt.Errorf("license_number is required")
	}

	inst := &institute.Institute{
		ID:            r.ID,
		Name:          strings.TrimSpace(r.Name),
		Type:          t,
		Ownership:     o,
		LicenseNumber: strings.TrimSpace(r.LicenseNumber),
		Address:       r.Address,
		District:      strings.TrimSpace(r.District),
		Phone:         r.Phone,
		IsActive:      r.IsActive == nil || *r.IsActive,
	}
	if created, err := parseTime(r.CreatedAt); err == nil {
		inst.CreatedAt = created
	}
	return inst, nil
}

func (r recordRow) toRecord() (*hr.HealthRecord, error) {
	kind, err := parseRecordKind(r.RecordType)
	if err != nil {
		return nil, err
	}
	issued, err := parseTime(r.IssuedDate)
	if err != nil {
		return nil, fmt.Errorf("issued_date: %w", err)
	}
	nid := citizen.NormalizeNationalID(r.NationalID)
	if nid == "" || r.InstituteID <= 0 {
		return nil, fmt.Errorf("record is missing its citizen or institute")
	}

	var description *string
	if r.Description != nil && strings.TrimSpace(*r.Description) != "" {
		d := *r.Description
		description = &d
	}

	return &hr.HealthRecord{
		ID:           r.ID,
		NationalID:   nid,
		InstituteID:  r.InstituteID,
		Kind:         kind,
		Title:        r.Title,
		Description:  description,
		Diagnosis:    r.Diagnosis,
		Prescription: r.Prescription,
		IssuedDate:   derive.Date(issued),
	}, nil
}

func parseRecordKind(raw string) (hr.Kind, error) {
	if k, err := hr.ParseKind(raw); err == nil {
		return k, nil
	}
	if k, ok := legacyKinds[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return k, nil
	}
	return "", fmt.Errorf("%w: %q", hr.ErrInvalidRecordKind, raw)
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", raw)
}
