package v1

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/domain/institute"
	"github.com/dmehra2102/prod-golang-projects/healthportal/internal/service"
	"github.com/gin-gonic/gin"
)

// GovHandler serves the read-only government dashboards.
type GovHandler struct {
	reports *service.ReportService
}

func NewGovHandler(reports *service.ReportService) *GovHandler {
	return &GovHandler{reports: reports}
}

// GET /api/v1/gov/reports/overview
func (h *GovHandler) Overview(c *gin.Context) {
	ov, err := h.reports.Overview(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, ov)
}

// GET /api/v1/gov/reports/demographics
func (h *GovHandler) Demographics(c *gin.Context) {
	d, err := h.reports.Demographics(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, d)
}

// GET /api/v1/gov/reports/network
func (h *GovHandler) Network(c *gin.Context) {
	n, err := h.reports.Network(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, n)
}

// GET /api/v1/gov/reports/insights
func (h *GovHandler) Insights(c *gin.Context) {
	in, err := h.reports.Insights(c.Request.Context())
	if err != nil {
		respondServiceError(c, err)
		return
	}
	respondOK(c, in)
}

// Institutes godoc
// GET /api/v1/gov/institutes?search=&type=&ownership=&status=
func (h *GovHandler) Institutes(c *gin.Context) {
	f, err := parseInstituteFilter(c)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	list, err := h.reports.Institutes(c.Request.Context(), f)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	out := make([]InstituteResponse, 0, len(list))
	for _, inst := range list {
		out = append(out, toInstituteResponse(inst))
	}
	respondOK(c, out)
}

// parseInstituteFilter treats an empty value or "all" as no filter.
func parseInstituteFilter(c *gin.Context) (*institute.Filter, error) {
	f := &institute.Filter{Search: c.Query("search")}

	if raw := queryFilter(c, "type"); raw != "" {
		t := institute.Type(raw)
		if !t.IsValid() {
			return nil, institute.ErrInvalidType
		}
		f.Type = &t
	}

	if raw := queryFilter(c, "ownership"); raw != "" {
		o := institute.Ownership(raw)
		if !o.IsValid() {
			return nil, institute.ErrInvalidOwnership
		}
		f.Ownership = &o
	}

	switch queryFilter(c, "status") {
	case "":
	case "active":
		active := true
		f.Active = &active
	case "inactive":
		active := false
		f.Active = &active
	default:
		return nil, &service.ValidationError{Fields: []string{"status must be active or inactive"}}
	}

	return f, nil
}

func queryFilter(c *gin.Context, key string) string {
	v := strings.ToLower(strings.TrimSpace(c.Query(key)))
	if v == "all" {
		return ""
	}
	return v
}

// Health godoc
// GET /healthz
func Health(check func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if check != nil {
			if err := check(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
