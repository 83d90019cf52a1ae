package v1

import (
	hr "github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/health_record"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/service"
	"github.com/gin-gonic/gin"
)

// CitizenHandler serves a citizen's own profile and history. The NID always
// comes from the token.
type CitizenHandler struct {
	identity *service.IdentityService
	records  *service.RecordService
}

func NewCitizenHandler(identity *service.IdentityService, records *service.RecordService) *CitizenHandler {
	return &CitizenHandler{identity: identity, records: records}
}

// Me godoc
// GET /api/v1/citizen/me
func (h *CitizenHandler) Me(c *gin.Context) {
	nid, ok := h.nationalID(c)
	if !ok {
		return
	}

	identity, err := h.identity.Resolve(c.Request.Context(), nid)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toCitizenResponse(identity))
}

// Records godoc
// GET /api/v1/citizen/records?search=&kind=
func (h *CitizenHandler) Records(c *gin.Context) {
	nid, ok := h.nationalID(c)
	if !ok {
		return
	}

	q := &hr.ListRecordsQuery{Search: c.Query("search")}
	if raw := c.Query("kind"); raw != "" && raw != "all" {
		k, err := hr.ParseKind(raw)
		if err != nil {
			respondServiceError(c, err)
			return
		}
		q.Kind = &k
	}

	records, err := h.records.ListOwnRecords(c.Request.Context(), nid, q)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, toRecordResponses(records))
}

func (h *CitizenHandler) nationalID(c *gin.Context) (string, bool) {
	claims, _ := actorFrom(c)
	if claims == nil || claims.NationalID == nil || *claims.NationalID == "" {
		respondServiceError(c, service.ErrForbidden)
		return "", false
	}
	return *claims.NationalID, true
}
