package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/repository/memory"
	"go.uber.org/zap"
)

const citizensJSON = `[
  {"nid_number": "277-265-681-8", "full_name": "Sita Sharma", "date_of_birth": "1990-03-14",
   "sex": "Female", "blood_group": "o+", "address": "Ward 4 Rautahat, Nepal",
   "created_at": "2021-05-03T12:34:56.123456"},
  {"nid_number": "912-004-118-2", "full_name": "Ram Thapa", "date_of_birth": "1975-08-02T00:00:00Z",
   "sex": "Male", "blood_group": "AB-", "address": "Lakeside Kaski, Nepal"},
  {"nid_number": "  ", "full_name": "Nobody", "date_of_birth": "1990-01-01", "sex": "Male"},
  {"nid_number": "555-555-555-5", "full_name": "Bad Date", "date_of_birth": "14/03/1990", "sex": "Male"}
]`

const institutesJSON = `[
  {"institute_id": 1, "name": "Bir Hospital", "type": "hospital", "ownership": "government",
   "license_number": "LIC-00000001", "address": "Mahaboudha Kathmandu, Nepal"},
  {"institute_id": 2, "name": "City Clinic", "type": "clinic", "ownership": "private",
   "license_number": "MED-00000002", "is_active": false},
  {"institute_id": 3, "name": "Mystery", "type": "pharmacy", "ownership": "private", "license_number": "X"}
]`

const recordsJSON = `[
  {"record_id": 1, "nid_number": "277-265-681-8", "institute_id": 1, "record_type": "OPD",
   "title": "Fever", "description": "", "diagnosis": "Typhoid", "prescription": "Azithromycin",
   "issued_date": "2024-01-10"},
  {"record_id": 2, "nid_number": "277-265-681-8", "institute_id": 1, "record_type": "Lab",
   "title": "Blood panel", "diagnosis": "Anemia", "prescription": "Iron", "issued_date": "2024-03-05"},
  {"record_id": 3, "nid_number": "912-004-118-2", "institute_id": 2, "record_type": "Teleconsult",
   "title": "Follow up", "diagnosis": "Asthma", "prescription": "Inhaler", "issued_date": "2024-02-01"},
  {"record_id": 4, "nid_number": "912-004-118-2", "institute_id": 2, "record_type": "Emergency",
   "title": "Accident", "diagnosis": "Fracture", "prescription": "Cast", "issued_date": "2024-02-02"},
  {"record_id": 5, "nid_number": "277-265-681-8", "institute_id": 1, "record_type": "Astrology",
   "title": "Reading", "diagnosis": "None", "prescription": "None", "issued_date": "2024-02-03"}
]`

func writeExport(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		CitizensFile:   citizensJSON,
		InstitutesFile: institutesJSON,
		RecordsFile:    recordsJSON,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	return dir
}

func TestLoadDir(t *testing.T) {
	ds, err := LoadDir(writeExport(t), zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(ds.Citizens) != 2 || ds.SkippedCitizens != 2 {
		t.Errorf("citizens = %d, skipped = %d", len(ds.Citizens), ds.SkippedCitizens)
	}
	if len(ds.Institutes) != 2 || ds.SkippedInstitutes != 1 {
		t.Errorf("institutes = %d, skipped = %d", len(ds.Institutes), ds.SkippedInstitutes)
	}
	if len(ds.Records) != 4 || ds.SkippedRecords != 1 || ds.UnclassifiedRecords != 1 {
		t.Errorf("records = %d, skipped = %d, unclassified = %d", len(ds.Records), ds.SkippedRecords, ds.UnclassifiedRecords)
	}

	sita := ds.Citizens[0]
	if sita.BloodGroup != "O+" || !sita.DateOfBirth.Equal(time.Date(1990, 3, 14, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("citizen = %+v", sita)
	}
	if sita.CreatedAt.IsZero() {
		t.Error("created_at with microseconds was not parsed")
	}
	if ds.Citizens[1].DateOfBirth.Hour() != 0 || ds.Citizens[1].DateOfBirth.Day() != 2 {
		t.Errorf("RFC3339 date of birth = %v", ds.Citizens[1].DateOfBirth)
	}

	if ds.Institutes[0].IsActive != true || ds.Institutes[1].IsActive != false {
		t.Errorf("is_active defaults wrong: %+v %+v", ds.Institutes[0], ds.Institutes[1])
	}

	wantKinds := []hr.Kind{hr.KindOPD, hr.KindLabReport, hr.KindConsultation, hr.KindUnknown}
	for i, want := range wantKinds {
		if ds.Records[i].Kind != want {
			t.Errorf("records[%d].Kind = %q, want %q", i, ds.Records[i].Kind, want)
		}
	}
	if ds.Records[0].Description != nil {
		t.Errorf("blank description should load as nil, got %q", *ds.Records[0].Description)
	}
}

func TestLoadDir_MissingFile(t *testing.T) {
	dir := writeExport(t)
	if err := os.Remove(filepath.Join(dir, RecordsFile)); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadDir(dir, zap.NewNop()); err == nil {
		t.Fatal("expected an error for a missing export file")
	}
}

func TestRun_IsIdempotent(t *testing.T) {
	ds, err := LoadDir(writeExport(t), zap.NewNop())
	if err != nil {
		t.Fatalf("loading: %v", err)
	}
	store := memory.NewStore()
	ctx := context.Background()

	res, err := Run(ctx, store.Importer(), ds, zap.NewNop())
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if res.Citizens != 2 || res.Institutes != 2 || res.Records != 4 || res.Skipped != 4 {
		t.Errorf("result = %+v", res)
	}

	again, err := Run(ctx, store.Importer(), ds, zap.NewNop())
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if again.Citizens != 0 || again.Institutes != 0 || again.Records != 0 {
		t.Errorf("re-run inserted rows: %+v", again)
	}

	records, err := store.Records().ListByNationalID(ctx, "277-265-681-8")
	if err != nil {
		t.Fatalf("listing: %v", err)
	}
	if len(records) != 2 || records[0].ID != 2 {
		t.Errorf("records = %+v", records)
	}
}
