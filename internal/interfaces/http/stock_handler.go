package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
)

// StockHandler saldos, movimientos y alertas del libro de stock (protegido).
type StockHandler struct {
	ledger        *inventory.Ledger
	replenishment *inventory.ReplenishmentUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(ledger *inventory.Ledger, replenishment *inventory.ReplenishmentUseCase) *StockHandler {
	return &StockHandler{ledger: ledger, replenishment: replenishment}
}

// Balances saldos de todos los productos con movimientos.
func (h *StockHandler) Balances(c *fiber.Ctx) error {
	list, err := h.ledger.Balances(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockBalanceResponse, 0, len(list))
	for _, b := range list {
		out = append(out, toBalanceResponse(b))
	}
	return c.JSON(dto.NewList(out))
}

// Balance godoc
// @Summary      Saldo de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200  {object}  dto.StockBalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/balances/{productId} [get]
func (h *StockHandler) Balance(c *fiber.Ctx) error {
	b, err := h.ledger.Balance(c.Context(), c.Params("productId"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(toBalanceResponse(b))
}

// Movements historial filtrado por producto, pedido, factura y fechas (YYYY-MM-DD).
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	filter := repository.MovementFilter{
		ProductID: c.Query("product_id"),
		OrderID:   c.Query("order_id"),
		InvoiceID: c.Query("invoice_id"),
		Limit:     c.QueryInt("limit", 0),
	}
	var err error
	if filter.From, err = queryDate(c, "from"); err != nil {
		return writeError(c, err)
	}
	if filter.To, err = queryDate(c, "to"); err != nil {
		return writeError(c, err)
	}
	if filter.To != nil {
		end := filter.To.Add(24*time.Hour - time.Nanosecond)
		filter.To = &end
	}
	list, err := h.ledger.Movements(c.Context(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, toMovementResponse(m))
	}
	return c.JSON(dto.NewList(out))
}

// In godoc
// @Summary      Registrar entrada de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity, unit_cost opcional"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/in [post]
func (h *StockHandler) In(c *fiber.Ctx) error {
	return h.record(c, h.ledger.RecordIn)
}

// Out godoc
// @Summary      Registrar salida de stock
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.StockMovementRequest  true  "product_id, quantity"
// @Success      201   {object}  dto.StockMovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/stock/out [post]
func (h *StockHandler) Out(c *fiber.Ctx) error {
	return h.record(c, h.ledger.RecordOut)
}

type movementOp func(ctx context.Context, in inventory.MovementInput) (*entity.StockMovement, error)

func (h *StockHandler) record(c *fiber.Ctx, op movementOp) error {
	var in dto.StockMovementRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	mov, err := op(c.Context(), inventory.MovementInput{
		Key:       in.IdempotencyKey,
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		Actor:     GetUserID(c),
		Note:      in.Note,
		UnitCost:  in.UnitCost,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// Adjust ajuste por conteo físico (admin/compras).
func (h *StockHandler) Adjust(c *fiber.Ctx) error {
	var in dto.StockAdjustRequest
	if err := parseBody(c, &in); err != nil {
		return writeError(c, err)
	}
	mov, err := h.ledger.Adjust(c.Context(), inventory.AdjustInput{
		Key:       in.IdempotencyKey,
		ProductID: in.ProductID,
		NewOnHand: in.NewOnHand,
		Actor:     GetUserID(c),
		Note:      in.Note,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(mov))
}

// Alerts godoc
// @Summary      Productos en o bajo el punto de reorden
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Router       /api/stock/alerts [get]
func (h *StockHandler) Alerts(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": list,
	})
}

func queryDate(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, domain.Invalid(key, "formato esperado YYYY-MM-DD")
	}
	return &t, nil
}
