package v1

import (
	"strings"

	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/service"
	"github.com/gin-gonic/gin"
)

// HospitalHandler serves the institute portal: patient search and record
// entry.
type HospitalHandler struct {
	lookup   *service.LookupService
	identity *service.IdentityService
	records  *service.RecordService
}

func NewHospitalHandler(lookup *service.LookupService, identity *service.IdentityService, records *service.RecordService) *HospitalHandler {
	return &HospitalHandler{lookup: lookup, identity: identity, records: records}
}

// GetPatient godoc
// GET /api/v1/hospital/patients/:nid
//
// Each signed-in account is one search session, so a second search from the
// same account supersedes one still in flight.
func (h *HospitalHandler) GetPatient(c *gin.Context) {
	claims, actor := actorFrom(c)

	view, err := h.lookup.Lookup(c.Request.Context(), claims.AccountID.String(), c.Param("nid"), actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondOK(c, PatientResponse{
		Citizen:      toCitizenResponse(view.Identity),
		Records:      toRecordResponses(view.Records),
		RecordsError: view.RecordsError,
	})
}

// ListPatientRecords godoc
// GET /api/v1/hospital/patients/:nid/records
//
// The citizen is resolved first, so an unregistered NID is a 404 here too.
func (h *HospitalHandler) ListPatientRecords(c *gin.Context) {
	ctx := c.Request.Context()

	identity, err := h.identity.Resolve(ctx, c.Param("nid"))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	records, err := h.records.ListRecords(ctx, identity.Citizen.NationalID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toRecordResponses(records))
}

// AddRecord godoc
// POST /api/v1/hospital/records
func (h *HospitalHandler) AddRecord(c *gin.Context) {
	var req CreateRecordRequest
	if !bindJSON(c, &req) {
		return
	}

	claims, actor := actorFrom(c)
	if claims.InstituteID == nil {
		respondServiceError(c, service.ErrForbidden)
		return
	}

	res, err := h.lookup.AddAndRefresh(c.Request.Context(), &hr.CreateRecordCommand{
		NationalID:   req.NationalID,
		InstituteID:  *claims.InstituteID,
		Kind:         requestedKind(req.RecordType),
		Title:        req.Title,
		Description:  req.Description,
		Diagnosis:    req.Diagnosis,
		Prescription: req.Prescription,
	}, actor)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	respondCreated(c, AddRecordResponse{
		Record:       toRecordResponse(res.Record),
		Records:      toRecordResponses(res.Records),
		RecordsError: res.RecordsError,
	})
}

// requestedKind accepts a label or a slug. An unparseable value is passed
// through as is so validation reports it with the other missing fields.
func requestedKind(raw string) hr.Kind {
	if strings.TrimSpace(raw) == "" {
		return ""
	}
	k, err := hr.ParseKind(raw)
	if err != nil {
		return hr.Kind(raw)
	}
	return k
}
