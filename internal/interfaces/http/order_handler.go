package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/order"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// OrderHandler pedidos de consumibles (protegido). Un solicitante solo ve y cancela sus pedidos.
type OrderHandler struct {
	svc *order.Service
}

// NewOrderHandler construye el handler.
func NewOrderHandler(svc *order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// Create godoc
// @Summary      Registrar pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateOrderRequest  true  "Ítems del pedido"
// @Success      201   {object}  dto.OrderOperationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/orders [post]
func (h *OrderHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateOrderRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	sector := in.Sector
	if sector == "" {
		sector = GetSector(c)
	}
	items := make([]order.ItemInput, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, order.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	res, err := h.svc.Create(c.Context(), order.CreateInput{
		RequesterID:      GetUserID(c),
		RequesterEmail:   GetEmail(c),
		Sector:           sector,
		Type:             in.Type,
		Items:            items,
		DeliveryDeadline: in.DeliveryDeadline,
		Notes:            in.Notes,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toOrderOperation(res))
}

// List godoc
// @Summary      Listar pedidos
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        status  query  string  false  "Estado"
// @Param        sector  query  string  false  "Sector"
// @Success      200     {object}  dto.OrderListResponse
// @Router       /api/orders [get]
func (h *OrderHandler) List(c *fiber.Ctx) error {
	page := parsePage(c)
	filter := repository.OrderFilter{
		Status: entity.OrderStatus(strings.ToUpper(c.Query("status"))),
		Sector: c.Query("sector"),
		Limit:  page.Limit,
		Offset: page.Offset,
	}
	if GetRole(c) == RoleSolicitante {
		filter.RequesterID = GetUserID(c)
	}
	list, err := h.svc.List(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]dto.OrderResponse, 0, len(list))
	for _, o := range list {
		items = append(items, toOrderResponse(o))
	}
	return c.JSON(dto.OrderListResponse{Items: items, Page: dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(items)}})
}

// GetByID pedido por ID.
func (h *OrderHandler) GetByID(c *fiber.Ctx) error {
	o, err := h.owned(c)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderResponse(o))
}

// UpdateStatus godoc
// @Summary      Avanzar estado del pedido
// @Tags         orders
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string  true  "ID del pedido"
// @Param        body  body  dto.UpdateOrderStatusRequest  true  "Nuevo estado"
// @Success      200   {object}  dto.OrderOperationResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/status [patch]
func (h *OrderHandler) UpdateStatus(c *fiber.Ctx) error {
	var in dto.UpdateOrderStatusRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	res, err := h.svc.SetStatus(c.Context(), c.Params("id"), order.StatusInput{
		Status:           entity.OrderStatus(strings.ToUpper(in.Status)),
		Notes:            in.Notes,
		DeliveryDeadline: in.DeliveryDeadline,
		Actor:            GetUserID(c),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderOperation(res))
}

// Cancel cancela el pedido liberando sus reservas.
func (h *OrderHandler) Cancel(c *fiber.Ctx) error {
	var in dto.CancelOrderRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	if _, err := h.owned(c); err != nil {
		return writeError(c, err)
	}
	res, err := h.svc.Cancel(c.Context(), c.Params("id"), in.Reason, GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderOperation(res))
}

// RetryStock godoc
// @Summary      Reintentar la salida de stock de un pedido finalizado
// @Tags         orders
// @Security     Bearer
// @Produce      json
// @Param        id  path  string  true  "ID del pedido"
// @Success      200  {object}  dto.OrderOperationResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/orders/{id}/retry-stock [post]
func (h *OrderHandler) RetryStock(c *fiber.Ctx) error {
	res, err := h.svc.RetryStock(c.Context(), c.Params("id"), GetUserID(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toOrderOperation(res))
}

// PDF hoja imprimible del pedido.
func (h *OrderHandler) PDF(c *fiber.Ctx) error {
	if _, err := h.owned(c); err != nil {
		return writeError(c, err)
	}
	o, b, err := h.svc.PDF(c.Context(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", o.Number+".pdf"))
	return c.Send(b)
}

// owned carga el pedido y rechaza el acceso de un solicitante a pedidos ajenos.
func (h *OrderHandler) owned(c *fiber.Ctx) (*entity.Order, error) {
	o, err := h.svc.Get(c.Context(), c.Params("id"))
	if err != nil {
		return nil, err
	}
	if GetRole(c) == RoleSolicitante && o.RequesterID != GetUserID(c) {
		return nil, fmt.Errorf("%w: pedido de otro solicitante", domain.ErrForbidden)
	}
	return o, nil
}
