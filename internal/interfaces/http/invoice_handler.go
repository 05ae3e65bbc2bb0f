package http

import (
	"bytes"
	"io"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/reconciliation"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// InvoiceHandler facturas de proveedor (protegido, admin/compras).
type InvoiceHandler struct {
	engine *reconciliation.Engine
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(engine *reconciliation.Engine) *InvoiceHandler {
	return &InvoiceHandler{engine: engine}
}

// Upload godoc
// @Summary      Ingresar factura XML de proveedor
// @Description  Acepta el XML en el cuerpo o como archivo multipart "file".
// @Tags         invoices
// @Security     Bearer
// @Accept       xml
// @Produce      json
// @Success      201   {object}  dto.ReconciliationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/invoices [post]
func (h *InvoiceHandler) Upload(c *fiber.Ctx) error {
	body, err := invoiceBody(c)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.engine.Ingest(c.Context(), body, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	status := fiber.StatusCreated
	if !res.Processed {
		status = fiber.StatusAccepted
	}
	return c.Status(status).JSON(toReconciliationResponse(res))
}

// Process reintenta las entradas pendientes de una factura.
func (h *InvoiceHandler) Process(c *fiber.Ctx) error {
	res, err := h.engine.Process(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toReconciliationResponse(res))
}

// List facturas filtradas por estado y proveedor.
func (h *InvoiceHandler) List(c *fiber.Ctx) error {
	page := parsePage(c)
	list, err := h.engine.List(c.Context(), repository.InvoiceFilter{
		Status:     entity.InvoiceStatus(strings.ToUpper(c.Query("status"))),
		SupplierID: c.Query("supplier_id"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.InvoiceResponse, 0, len(list))
	for _, inv := range list {
		items = append(items, toInvoiceResponse(inv))
	}
	return c.JSON(fiber.Map{"items": items, "page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)}})
}

// GetByID factura por ID.
func (h *InvoiceHandler) GetByID(c *fiber.Ctx) error {
	inv, err := h.engine.Get(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toInvoiceResponse(inv))
}

// Cancel anula una factura pendiente.
func (h *InvoiceHandler) Cancel(c *fiber.Ctx) error {
	inv, err := h.engine.Cancel(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toInvoiceResponse(inv))
}

func invoiceBody(c *fiber.Ctx) (io.Reader, error) {
	if strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return nil, domain.Invalid("file", "archivo XML requerido")
		}
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		defer f.Close()
		b, err := io.ReadAll(f)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(b), nil
	}
	body := c.Body()
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, domain.Invalid("body", "XML de la factura requerido")
	}
	// c.Body se reutiliza al terminar el handler
	return bytes.NewReader(append([]byte(nil), body...)), nil
}
