// Package order ciclo de vida del pedido de consumibles y su efecto en el stock.
package order

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/application/inventory"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	"github.com/jhoicas/Suministros-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// Config límites de validación y numeración.
type Config struct {
	MaxItems     int
	MaxItemQty   decimal.Decimal
	MaxTotal     decimal.Decimal
	NumberPrefix string
	LockTimeout  time.Duration
}

// Service máquina de estados del pedido. Las transiciones de un pedido se serializan con "order:<id>".
type Service struct {
	orders   repository.OrderRepository
	products repository.ProductRepository
	ledger   StockLedger
	locks    inventory.LockManager
	cfg      Config
	notifier Notifier
	pdf      PDFRenderer
	log      zerolog.Logger
	now      func() time.Time
}

// NewService construye el servicio de pedidos.
func NewService(
	orders repository.OrderRepository,
	products repository.ProductRepository,
	ledger StockLedger,
	locks inventory.LockManager,
	cfg Config,
	log zerolog.Logger,
) *Service {
	if cfg.NumberPrefix == "" {
		cfg.NumberPrefix = "ORD"
	}
	return &Service{
		orders:   orders,
		products: products,
		ledger:   ledger,
		locks:    locks,
		cfg:      cfg,
		log:      log.With().Str("component", "orders").Logger(),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SetNotifier registra el notificador de pedidos (opcional).
func (s *Service) SetNotifier(n Notifier) { s.notifier = n }

// SetPDFRenderer registra el generador de PDF (opcional).
func (s *Service) SetPDFRenderer(r PDFRenderer) { s.pdf = r }

// ItemInput línea solicitada.
type ItemInput struct {
	ProductID string
	Quantity  decimal.Decimal
}

// CreateInput datos para registrar un pedido.
type CreateInput struct {
	RequesterID      string
	RequesterEmail   string
	Sector           string
	Type             string
	Items            []ItemInput
	DeliveryDeadline *time.Time
	Notes            string
}

// StatusInput cambio de estado. Para CANCELLED, Notes es el motivo.
type StatusInput struct {
	Status           entity.OrderStatus
	Notes            string
	DeliveryDeadline *time.Time
	Actor            string
}

// LineOutcome resultado de la operación de stock de una línea.
type LineOutcome struct {
	ProductID string
	Quantity  decimal.Decimal
	OK        bool
	Err       error
}

// Result pedido resultante y detalle por línea. Complete=false indica éxito parcial.
type Result struct {
	Order    *entity.Order
	Lines    []LineOutcome
	Complete bool
}

func newResult(o *entity.Order, lines []LineOutcome) *Result {
	complete := true
	for _, l := range lines {
		if !l.OK {
			complete = false
		}
	}
	return &Result{Order: o, Lines: lines, Complete: complete}
}

// Create valida, numera y persiste el pedido; luego intenta reservar cada línea.
// Si alguna reserva falla el pedido igual queda creado con StockReservationOK=false.
func (s *Service) Create(ctx context.Context, in CreateInput) (*Result, error) {
	if in.RequesterID == "" {
		return nil, domain.Invalid("requester_id", "requerido")
	}
	items, err := s.buildItems(ctx, in.Items)
	if err != nil {
		return nil, err
	}
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.LineTotal)
	}
	if s.cfg.MaxTotal.IsPositive() && total.GreaterThan(s.cfg.MaxTotal) {
		return nil, domain.Invalid("items", fmt.Sprintf("valor total %s supera el máximo %s", total.StringFixed(2), s.cfg.MaxTotal.StringFixed(2)))
	}

	now := s.now()
	o := &entity.Order{
		ID:               uuid.New().String(),
		Type:             in.Type,
		RequesterID:      in.RequesterID,
		RequesterEmail:   in.RequesterEmail,
		Sector:           in.Sector,
		Items:            items,
		TotalValue:       total,
		Status:           entity.OrderRequested,
		RequestedAt:      now,
		StatusChangedAt:  now,
		DeliveryDeadline: in.DeliveryDeadline,
		Notes:            in.Notes,
	}
	// El bloqueo del pedido se toma antes de que sea visible: una cancelación espera a que terminen las reservas.
	release, err := s.locks.Acquire(ctx, "order:"+o.ID, s.cfg.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	if err := s.insertNumbered(ctx, o); err != nil {
		return nil, err
	}

	lines := make([]LineOutcome, 0, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		_, err := s.ledger.Reserve(ctx, inventory.MovementInput{
			Key:       movementKey(o.ID, it.ProductID, "reserve"),
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Actor:     in.RequesterID,
			Note:      "reserva " + o.Number,
			OrderID:   o.ID,
		})
		if err != nil {
			s.log.Warn().Err(err).Str("order_id", o.ID).Str("product_id", it.ProductID).Msg("reserva de stock no realizada")
		} else {
			it.ReservedQty = it.Quantity
		}
		lines = append(lines, LineOutcome{ProductID: it.ProductID, Quantity: it.Quantity, OK: err == nil, Err: err})
	}
	res := newResult(o, lines)
	o.StockReservationOK = res.Complete
	if err := s.orders.Update(ctx, o); err != nil {
		return nil, err
	}

	s.log.Info().Str("order_id", o.ID).Str("number", o.Number).Bool("stock_reservation_ok", o.StockReservationOK).Msg("pedido creado")
	s.notify(ctx, o)
	return res, nil
}

// buildItems agrupa líneas del mismo producto, valida límites y toma el costo unitario vigente.
func (s *Service) buildItems(ctx context.Context, in []ItemInput) ([]entity.OrderItem, error) {
	if len(in) == 0 {
		return nil, domain.Invalid("items", "el pedido debe tener al menos un ítem")
	}
	ids := make([]string, 0, len(in))
	qty := make(map[string]decimal.Decimal, len(in))
	for i, it := range in {
		if it.ProductID == "" {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].product_id", i), "requerido")
		}
		if !it.Quantity.IsPositive() {
			return nil, domain.Invalid(fmt.Sprintf("items[%d].quantity", i), "debe ser mayor que cero")
		}
		if _, seen := qty[it.ProductID]; !seen {
			ids = append(ids, it.ProductID)
		}
		qty[it.ProductID] = qty[it.ProductID].Add(it.Quantity)
	}
	if s.cfg.MaxItems > 0 && len(ids) > s.cfg.MaxItems {
		return nil, domain.Invalid("items", fmt.Sprintf("máximo %d productos distintos por pedido", s.cfg.MaxItems))
	}

	items := make([]entity.OrderItem, 0, len(ids))
	for _, id := range ids {
		q := qty[id]
		if s.cfg.MaxItemQty.IsPositive() && q.GreaterThan(s.cfg.MaxItemQty) {
			return nil, domain.Invalid("items", fmt.Sprintf("cantidad de %s supera el máximo %s", id, s.cfg.MaxItemQty))
		}
		p, err := s.products.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProduct, id)
		}
		if !p.Active {
			return nil, domain.Invalid("items", fmt.Sprintf("producto %s inactivo", p.Code()))
		}
		items = append(items, entity.OrderItem{
			ProductID:   p.ID,
			ProductCode: p.Code(),
			Description: p.DisplayName(),
			Quantity:    q,
			UnitCost:    p.UnitCost,
			LineTotal:   q.Mul(p.UnitCost).Round(2),
			ReservedQty: decimal.Zero,
		})
	}
	return items, nil
}

// SetStatus avanza el pedido en el flujo. FINALIZED y CANCELLED delegan en Finalize/Cancel.
func (s *Service) SetStatus(ctx context.Context, id string, in StatusInput) (*Result, error) {
	switch {
	case !in.Status.Valid():
		return nil, domain.Invalid("status", fmt.Sprintf("estado desconocido %q", in.Status))
	case in.Status == entity.OrderFinalized:
		return s.Finalize(ctx, id, in.Actor)
	case in.Status == entity.OrderCancelled:
		return s.Cancel(ctx, id, in.Notes, in.Actor)
	}

	var o *entity.Order
	err := s.withOrder(ctx, id, func(current *entity.Order) error {
		if in.Status.Rank() <= current.Status.Rank() {
			return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, current.Status, in.Status)
		}
		now := s.now()
		current.Status = in.Status
		current.StatusChangedAt = now
		if in.Status.Rank() >= entity.OrderApproved.Rank() && current.ApprovedAt == nil {
			current.ApprovedAt = &now
		}
		if in.DeliveryDeadline != nil {
			current.DeliveryDeadline = in.DeliveryDeadline
		}
		current.Notes = appendNote(current.Notes, in.Notes)
		o = current
		return s.orders.Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("order_id", o.ID).Str("status", string(o.Status)).Msg("estado de pedido actualizado")
	return newResult(o, nil), nil
}

// Finalize consume el stock de cada línea (Commit si estaba reservada, salida directa si no) y cierra el pedido.
// Los fallos del Ledger no impiden cerrar; se informan línea por línea y se reintentan con RetryStock.
func (s *Service) Finalize(ctx context.Context, id, actor string) (*Result, error) {
	var (
		o     *entity.Order
		lines []LineOutcome
	)
	err := s.withOrder(ctx, id, func(current *entity.Order) error {
		lines = s.deliver(ctx, current, actor)
		now := s.now()
		current.Status = entity.OrderFinalized
		current.StatusChangedAt = now
		current.FinalizedAt = &now
		if current.ApprovedAt == nil {
			current.ApprovedAt = &now
		}
		o = current
		return s.orders.Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	res := newResult(o, lines)
	s.log.Info().Str("order_id", o.ID).Bool("complete", res.Complete).Msg("pedido finalizado")
	s.notify(ctx, o)
	return res, nil
}

// RetryStock reintenta la salida de stock de las líneas que quedaron sin entregar en un pedido FINALIZED.
// Usa las mismas claves de idempotencia que Finalize, así que una línea ya aplicada no se duplica.
func (s *Service) RetryStock(ctx context.Context, id, actor string) (*Result, error) {
	release, err := s.locks.Acquire(ctx, "order:"+id, s.cfg.LockTimeout)
	if err != nil {
		return nil, err
	}
	defer release()

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownOrder, id)
	}
	if o.Status != entity.OrderFinalized {
		return nil, fmt.Errorf("%w: el pedido %s está %s", domain.ErrInvalidTransition, o.Number, o.Status)
	}
	lines := s.deliver(ctx, o, actor)
	if len(lines) > 0 {
		if err := s.orders.Update(ctx, o); err != nil {
			return nil, err
		}
	}
	res := newResult(o, lines)
	s.log.Info().Str("order_id", o.ID).Int("lines", len(lines)).Bool("complete", res.Complete).Msg("reintento de stock del pedido")
	return res, nil
}

// deliver registra la salida de las líneas no entregadas y marca las que se aplicaron.
func (s *Service) deliver(ctx context.Context, o *entity.Order, actor string) []LineOutcome {
	lines := make([]LineOutcome, 0, len(o.Items))
	for i := range o.Items {
		it := &o.Items[i]
		if it.Delivered {
			continue
		}
		in := inventory.MovementInput{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			Actor:     actor,
			Note:      "entrega " + o.Number,
			OrderID:   o.ID,
		}
		var err error
		if it.ReservedQty.IsPositive() {
			in.Key = movementKey(o.ID, it.ProductID, "commit")
			_, err = s.ledger.Commit(ctx, in)
		} else {
			in.Key = movementKey(o.ID, it.ProductID, "out")
			_, err = s.ledger.RecordOut(ctx, in)
		}
		if err != nil {
			s.log.Warn().Err(err).Str("order_id", o.ID).Str("product_id", it.ProductID).Msg("salida de stock no realizada")
		} else {
			it.ReservedQty = decimal.Zero
			it.Delivered = true
		}
		lines = append(lines, LineOutcome{ProductID: it.ProductID, Quantity: it.Quantity, OK: err == nil, Err: err})
	}
	return lines
}

// Cancel libera las reservas del pedido y lo deja en CANCELLED con el motivo en las notas.
func (s *Service) Cancel(ctx context.Context, id, reason, actor string) (*Result, error) {
	if reason == "" {
		return nil, domain.Invalid("reason", "el motivo de cancelación es obligatorio")
	}
	var (
		o     *entity.Order
		lines []LineOutcome
	)
	err := s.withOrder(ctx, id, func(current *entity.Order) error {
		lines = make([]LineOutcome, 0, len(current.Items))
		for i := range current.Items {
			it := &current.Items[i]
			if !it.ReservedQty.IsPositive() {
				continue
			}
			_, err := s.ledger.Release(ctx, inventory.MovementInput{
				Key:       movementKey(current.ID, it.ProductID, "release"),
				ProductID: it.ProductID,
				Quantity:  it.ReservedQty,
				Actor:     actor,
				Note:      "cancelación " + current.Number,
				OrderID:   current.ID,
			})
			if err != nil {
				s.log.Warn().Err(err).Str("order_id", current.ID).Str("product_id", it.ProductID).Msg("reserva no liberada al cancelar")
			} else {
				it.ReservedQty = decimal.Zero
			}
			lines = append(lines, LineOutcome{ProductID: it.ProductID, Quantity: it.Quantity, OK: err == nil, Err: err})
		}
		current.Status = entity.OrderCancelled
		current.StatusChangedAt = s.now()
		current.Notes = appendNote(current.Notes, "Cancelado: "+reason)
		o = current
		return s.orders.Update(ctx, current)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("order_id", o.ID).Msg("pedido cancelado")
	s.notify(ctx, o)
	return newResult(o, lines), nil
}

// Get obtiene un pedido.
func (s *Service) Get(ctx context.Context, id string) (*entity.Order, error) {
	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if o == nil {
		return nil, domain.ErrUnknownOrder
	}
	return o, nil
}

// List pedidos filtrados.
func (s *Service) List(ctx context.Context, filter repository.OrderFilter) ([]*entity.Order, error) {
	return s.orders.List(ctx, filter)
}

// PDF hoja imprimible del pedido.
func (s *Service) PDF(ctx context.Context, id string) (*entity.Order, []byte, error) {
	if s.pdf == nil {
		return nil, nil, fmt.Errorf("generador de PDF no configurado")
	}
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	b, err := s.pdf.RenderOrder(o)
	if err != nil {
		return nil, nil, fmt.Errorf("generar PDF del pedido %s: %w", o.Number, err)
	}
	return o, b, nil
}

// withOrder bloquea el pedido, lo carga y rechaza estados terminales.
func (s *Service) withOrder(ctx context.Context, id string, fn func(o *entity.Order) error) error {
	release, err := s.locks.Acquire(ctx, "order:"+id, s.cfg.LockTimeout)
	if err != nil {
		return err
	}
	defer release()

	o, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if o == nil {
		return fmt.Errorf("%w: %s", domain.ErrUnknownOrder, id)
	}
	if o.Status.Terminal() {
		return fmt.Errorf("%w: el pedido %s está %s", domain.ErrInvalidTransition, o.Number, o.Status)
	}
	return fn(o)
}

func (s *Service) notify(ctx context.Context, o *entity.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.OrderChanged(ctx, o); err != nil {
		s.log.Warn().Err(err).Str("order_id", o.ID).Msg("aviso de pedido no enviado")
	}
}

func movementKey(orderID, productID, op string) string {
	return "order:" + orderID + ":" + productID + ":" + op
}

func appendNote(notes, extra string) string {
	switch {
	case extra == "":
		return notes
	case notes == "":
		return extra
	default:
		return notes + "\n" + extra
	}
}
