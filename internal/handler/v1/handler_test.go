package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/config"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/citizen"
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/service"
	"github.com/dmehra2102/prod-golang-projects/healthportal/pkg/auth"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	patientNID = "277-265-681-8"
	otherNID   = "912-004-118-2"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	store  *memory.Store
	jwt    *auth.JWTManager
	auth   *service.AuthService
}

type serverOption func(*serverOptions)

type serverOptions struct {
	records hr.Repository
}

func withRecordRepo(r hr.Repository) serverOption {
	return func(o *serverOptions) { o.records = r }
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	im := store.Importer()
	if _, err := im.ImportCitizens(ctx, []*citizen.Citizen{
		{
			NationalID:  patientNID,
			FullName:    "Sita Sharma",
			DateOfBirth: date(1990, 3, 14),
			Sex:         citizen.SexFemale,
			BloodGroup:  citizen.BloodGroupOPos,
			ContactInfo: citizen.ContactInfo{Address: "Ward 4 Rautahat, Nepal"},
		},
		{
			NationalID:  otherNID,
			FullName:    "Ram Thapa",
			DateOfBirth: date(1975, 8, 2),
			Sex:         citizen.SexMale,
			ContactInfo: citizen.ContactInfo{Address: "Lakeside Kaski, Nepal"},
		},
	}); err != nil {
		t.Fatalf("importing citizens: %v", err)
	}
	if _, err := im.ImportInstitutes(ctx, []*institute.Institute{
		{ID: 1, Name: "Bir Hospital", Type: institute.TypeHospital, Ownership: institute.OwnershipGovernment, LicenseNumber: "LIC-0001", Address: "Mahaboudha Kathmandu, Nepal", IsActive: true},
		{ID: 2, Name: "City Clinic", Type: institute.TypeClinic, Ownership: institute.OwnershipPrivate, LicenseNumber: "LIC-0002", Address: "Lakeside Kaski, Nepal", IsActive: false},
	}); err != nil {
		t.Fatalf("importing institutes: %v", err)
	}
	if _, err := im.ImportRecords(ctx, []*hr.HealthRecord{
		{ID: 1, NationalID: patientNID, InstituteID: 1, Kind: hr.KindOPD, Title: "Fever", Diagnosis: "Typhoid", Prescription: "Azithromycin", IssuedDate: date(2024, 1, 10)},
		{ID: 2, NationalID: patientNID, InstituteID: 1, Kind: hr.KindLabReport, Title: "Blood panel", Diagnosis: "Anemia", Prescription: "Iron", IssuedDate: date(2024, 3, 5)},
	}); err != nil {
		t.Fatalf("importing records: %v", err)
	}

	o := serverOptions{records: store.Records()}
	for _, opt := range opts {
		opt(&o)
	}

	log := zap.NewNop()
	jwt := auth.NewJWTManager(config.JWTConfig{
		Secret:          "handler-test-secret-handler-test-secret",
		AccessTokenTTL:  time.Minute,
		RefreshTokenTTL: time.Hour,
		Issuer:          "healthportal-test",
	})

	authSvc := service.NewAuthService(store.Accounts(), jwt, nil, log)
	identity := service.NewIdentityService(store.Citizens(), time.Second, log)
	records := service.NewRecordService(o.records, nil, nil, time.Second, log)
	lookup := service.NewLookupService(identity, records, service.NewSearchTracker(), nil, nil, log)
	reports := service.NewReportService(store.Citizens(), store.Institutes(), o.records, nil, time.Second, log)

	cfg := &config.Config{
		CORS: config.CORSConfig{AllowedOrigins: []string{"*"}, AllowedMethods: []string{"GET", "POST"}},
	}

	router := NewRouter(RouterDeps{
		Config:   cfg,
		Log:      log,
		JWT:      jwt,
		Auth:     authSvc,
		Identity: identity,
		Records:  records,
		Lookup:   lookup,
		Reports:  reports,
	})

	return &testServer{router: router, store: store, jwt: jwt, auth: authSvc}
}

func (s *testServer) token(t *testing.T, claims *domain.Claims) string {
	t.Helper()
	if claims.AccountID == uuid.Nil {
		claims.AccountID = uuid.New()
	}
	pair, err := s.jwt.GenerateTokenPair(claims)
	if err != nil {
		t.Fatalf("generating token: %v", err)
	}
	return pair.AccessToken
}

func (s *testServer) hospitalToken(t *testing.T, instituteID int64) string {
	return s.token(t, &domain.Claims{Role: domain.RoleHospital, InstituteID: &instituteID})
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var resp APIResponse[T]
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding %s: %v", w.Body.String(), err)
	}
	return resp.Data
}

func TestGetPatient(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/hospital/patients/"+patientNID, s.hospitalToken(t, 1), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	got := decode[PatientResponse](t, w)
	if got.Citizen.FullName != "Sita Sharma" || got.Citizen.District != "Rautahat" || got.Citizen.DateOfBirth != "1990-03-14" {
		t.Errorf("citizen = %+v", got.Citizen)
	}
	if len(got.Records) != 2 || got.Records[0].ID != 2 || got.Records[1].ID != 1 {
		t.Fatalf("records not newest first: %+v", got.Records)
	}
	if got.Records[0].Kind.Slug != "lab_report" || got.Records[0].IssuedDate != "2024-03-05" {
		t.Errorf("record = %+v", got.Records[0])
	}
	if got.RecordsError != "" {
		t.Errorf("unexpected records error %q", got.RecordsError)
	}
}

func TestGetPatient_Errors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name  string
		path  string
		token string
		want  int
	}{
		{"unregistered", "/api/v1/hospital/patients/000-000-000-0", s.hospitalToken(t, 1), http.StatusNotFound},
		{"blank nid", "/api/v1/hospital/patients/%20", s.hospitalToken(t, 1), http.StatusBadRequest},
		{"no token", "/api/v1/hospital/patients/" + patientNID, "", http.StatusUnauthorized},
		{"citizen portal", "/api/v1/hospital/patients/" + patientNID, s.token(t, &domain.Claims{Role: domain.RoleCitizen}), http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, tt.path, tt.token, nil)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

type failingListRecords struct {
	hr.Repository
}

func (failingListRecords) ListByNationalID(context.Context, string) ([]*hr.HealthRecord, error) {
	return nil, errors.New("connection reset by peer")
}

func TestGetPatient_RecordFailureStillShowsIdentity(t *testing.T) {
	base := memory.NewStore()
	s := newTestServer(t, withRecordRepo(failingListRecords{Repository: base.Records()}))

	w := s.do(t, http.MethodGet, "/api/v1/hospital/patients/"+patientNID, s.hospitalToken(t, 1), nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	got := decode[PatientResponse](t, w)
	if got.Citizen.NationalID != patientNID {
		t.Errorf("identity missing: %+v", got.Citizen)
	}
	if got.Records == nil || len(got.Records) != 0 || got.RecordsError == "" {
		t.Errorf("records = %v, error %q", got.Records, got.RecordsError)
	}
}

func TestListPatientRecords_TransientIs503(t *testing.T) {
	base := memory.NewStore()
	s := newTestServer(t, withRecordRepo(failingListRecords{Repository: base.Records()}))

	w := s.do(t, http.MethodGet, "/api/v1/hospital/patients/"+patientNID+"/records", s.hospitalToken(t, 1), nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestListPatientRecords_ResolvesCitizenFirst(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		nid  string
		want int
	}{
		{"registered", patientNID, http.StatusOK},
		{"unregistered", "000-000-000-0", http.StatusNotFound},
		{"blank nid", "%20", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/v1/hospital/patients/"+tt.nid+"/records", s.hospitalToken(t, 1), nil)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestAddRecord_UsesInstituteFromToken(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/hospital/records", s.hospitalToken(t, 1), map[string]any{
		"national_id":  " " + patientNID + " ",
		"record_type":  "ipd",
		"title":        "Admission",
		"diagnosis":    "Dengue",
		"prescription": "Fluids",
		"institute_id": 2,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	got := decode[AddRecordResponse](t, w)
	if got.Record.InstituteID != 1 {
		t.Errorf("institute_id = %d, want the token's institute 1", got.Record.InstituteID)
	}
	if got.Record.Kind.Label != "IPD" || got.Record.NationalID != patientNID {
		t.Errorf("record = %+v", got.Record)
	}
	if len(got.Records) != 3 {
		t.Fatalf("refreshed history has %d records, want 3", len(got.Records))
	}
	if got.Records[0].ID != got.Record.ID {
		t.Errorf("new record should lead the history: %+v", got.Records)
	}
}

func TestAddRecord_ReportsAllMissingFields(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/hospital/records", s.hospitalToken(t, 1), map[string]any{
		"national_id": patientNID,
		"record_type": "x-ray",
		"title":       "Checkup",
		"diagnosis":   "   ",
	})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var resp ValidationErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding: %v", err)
	}
	want := []string{"diagnosis is required", "prescription is required", "record_type is invalid"}
	if len(resp.Fields) != len(want) {
		t.Fatalf("fields = %v, want %v", resp.Fields, want)
	}
	for i := range want {
		if resp.Fields[i] != want[i] {
			t.Errorf("fields[%d] = %q, want %q", i, resp.Fields[i], want[i])
		}
	}

	records, _ := s.store.Records().ListByNationalID(context.Background(), patientNID)
	if len(records) != 2 {
		t.Errorf("a rejected record was written: %d records", len(records))
	}
}

func TestAddRecord_TokenWithoutInstitute(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodPost, "/api/v1/hospital/records", s.token(t, &domain.Claims{Role: domain.RoleHospital}), map[string]any{
		"national_id": patientNID, "title": "t", "diagnosis": "d", "prescription": "p",
	})
	if w.Code != http.StatusForbidden {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
}

func TestCitizenRecords(t *testing.T) {
	s := newTestServer(t)
	nid := patientNID
	token := s.token(t, &domain.Claims{Role: domain.RoleCitizen, NationalID: &nid})

	w := s.do(t, http.MethodGet, "/api/v1/citizen/records?kind=lab_report", token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	got := decode[[]RecordResponse](t, w)
	if len(got) != 1 || got[0].ID != 2 {
		t.Errorf("kind filter: %+v", got)
	}

	w = s.do(t, http.MethodGet, "/api/v1/citizen/records?search=FEVER", token, nil)
	got = decode[[]RecordResponse](t, w)
	if len(got) != 1 || got[0].ID != 1 {
		t.Errorf("search filter: %+v", got)
	}

	w = s.do(t, http.MethodGet, "/api/v1/citizen/records?kind=surgery", token, nil)
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown kind status = %d", w.Code)
	}

	w = s.do(t, http.MethodGet, "/api/v1/citizen/me", token, nil)
	me := decode[CitizenResponse](t, w)
	if me.NationalID != patientNID || me.BloodGroup != "O+" {
		t.Errorf("me = %+v", me)
	}
}

func TestCitizenEndpoints_NeedLinkedNationalID(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/api/v1/citizen/records", s.token(t, &domain.Claims{Role: domain.RoleCitizen}), nil)
	if w.Code != http.StatusForbidden {
		t.Errorf("status = %d", w.Code)
	}
}

func TestGovInstitutes(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, &domain.Claims{Role: domain.RoleGovernment})

	tests := []struct {
		name    string
		query   string
		want    int
		wantIDs []int64
	}{
		{"all", "", http.StatusOK, []int64{1, 2}},
		{"by type", "?type=clinic", http.StatusOK, []int64{2}},
		{"all sentinel", "?type=all&ownership=all", http.StatusOK, []int64{1, 2}},
		{"active only", "?status=active", http.StatusOK, []int64{1}},
		{"search license", "?search=lic-0002", http.StatusOK, []int64{2}},
		{"bad type", "?type=pharmacy", http.StatusBadRequest, nil},
		{"bad status", "?status=closed", http.StatusBadRequest, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(t, http.MethodGet, "/api/v1/gov/institutes"+tt.query, token, nil)
			if w.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", w.Code, tt.want, w.Body.String())
			}
			if tt.want != http.StatusOK {
				return
			}
			got := decode[[]InstituteResponse](t, w)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("got %d institutes, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %d, want %d", i, got[i].ID, id)
				}
			}
		})
	}
}

type overviewTotals struct {
	TotalCitizens    int `json:"total_citizens"`
	ActiveInstitutes int `json:"active_institutes"`
	TotalRecords     int `json:"total_records"`
}

func TestGovReports(t *testing.T) {
	s := newTestServer(t)
	token := s.token(t, &domain.Claims{Role: domain.RoleGovernment})

	for _, name := range []string{"overview", "demographics", "network", "insights"} {
		w := s.do(t, http.MethodGet, "/api/v1/gov/reports/"+name, token, nil)
		if w.Code != http.StatusOK {
			t.Errorf("%s status = %d, body %s", name, w.Code, w.Body.String())
		}
	}

	w := s.do(t, http.MethodGet, "/api/v1/gov/reports/overview", token, nil)
	ov := decode[overviewTotals](t, w)
	if ov.TotalCitizens != 2 || ov.ActiveInstitutes != 1 || ov.TotalRecords != 2 {
		t.Errorf("overview = %+v", ov)
	}

	hospital := s.hospitalToken(t, 1)
	if w := s.do(t, http.MethodGet, "/api/v1/gov/reports/overview", hospital, nil); w.Code != http.StatusForbidden {
		t.Errorf("hospital token reached gov reports: %d", w.Code)
	}
}

func TestLoginFlow(t *testing.T) {
	s := newTestServer(t)
	instituteID := int64(1)
	if _, err := s.auth.CreateAccount(context.Background(), &service.CreateAccountCommand{
		Role:        domain.RoleHospital,
		Login:       "LIC-0001",
		Password:    "correct horse",
		InstituteID: &instituteID,
	}); err != nil {
		t.Fatalf("creating account: %v", err)
	}

	w := s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Portal: "hospital", Login: "LIC-0001", Password: "correct horse"})
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %s", w.Code, w.Body.String())
	}
	pair := decode[domain.TokenPair](t, w)

	if w := s.do(t, http.MethodGet, "/api/v1/hospital/patients/"+patientNID, pair.AccessToken, nil); w.Code != http.StatusOK {
		t.Errorf("issued token rejected: %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/v1/auth/refresh", "", RefreshRequest{RefreshToken: pair.RefreshToken})
	if w.Code != http.StatusOK {
		t.Errorf("refresh status = %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Portal: "hospital", Login: "LIC-0001", Password: "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d", w.Code)
	}

	w = s.do(t, http.MethodPost, "/api/v1/auth/login", "", LoginRequest{Portal: "admin", Login: "LIC-0001", Password: "x"})
	if w.Code != http.StatusBadRequest {
		t.Errorf("unknown portal status = %d", w.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t)
	if w := s.do(t, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
		t.Errorf("status = %d", w.Code)
	}
	if w := s.do(t, http.MethodGet, "/nowhere", "", nil); w.Code != http.StatusNotFound {
		t.Errorf("unknown route status = %d", w.Code)
	}
}
