package http

import (
	"bytes"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suministros-api/internal/application/report"
)

// ReportHandler exportaciones CSV/XLSX.
type ReportHandler struct {
	svc *report.Service
}

// NewReportHandler construye el handler.
func NewReportHandler(svc *report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Export godoc
// @Summary      Exportar instantánea
// @Tags         reports
// @Security     Bearer
// @Produce      text/csv
// @Param        kind    path   string  true   "balances|movements|orders|invoices|products"
// @Param        format  query  string  false  "csv|xlsx"
// @Success      200
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/reports/{kind} [get]
func (h *ReportHandler) Export(c *fiber.Ctx) error {
	kind, err := report.ParseKind(c.Params("kind"))
	if err != nil {
		return writeError(c, err)
	}
	format, err := report.ParseFormat(c.Query("format"))
	if err != nil {
		return writeError(c, err)
	}
	var buf bytes.Buffer
	if err := h.svc.Export(c.Context(), &buf, kind, format); err != nil {
		return writeError(c, err)
	}
	name := fmt.Sprintf("%s-%s.%s", kind, time.Now().UTC().Format("20060102"), format)
	c.Set(fiber.HeaderContentType, format.ContentType())
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Send(buf.Bytes())
}
