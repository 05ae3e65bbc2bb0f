package inventory

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Suministros-api/internal/domain"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
	domaininv "github.com/jhoicas/Suministros-api/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// costScale decimales con los que se almacena el costo promedio.
const costScale = 4

// ReceiveInput entrada de mercadería con costo (ítem de factura).
type ReceiveInput struct {
	Key        string
	ProductID  string
	Quantity   decimal.Decimal
	UnitCost   decimal.Decimal
	SupplierID string
	InvoiceID  string
	Actor      string
	Note       string
}

// ReceiveResult resultado de Receive. History es nil cuando la entrada ya había sido aplicada.
type ReceiveResult struct {
	Movement *entity.StockMovement
	History  *entity.CostHistory
	Replayed bool
}

// CostEngine recalcula el costo promedio ponderado y registra la entrada en el Ledger.
type CostEngine struct {
	ledger *Ledger
}

// NewCostEngine construye el motor de costo sobre el Ledger.
func NewCostEngine(ledger *Ledger) *CostEngine {
	return &CostEngine{ledger: ledger}
}

// Receive bajo el bloqueo del producto y en una sola transacción: toma el saldo antes del
// incremento, calcula el nuevo costo, actualiza el producto, registra el IN y el historial.
func (e *CostEngine) Receive(ctx context.Context, in ReceiveInput) (*ReceiveResult, error) {
	if in.ProductID == "" {
		return nil, domain.Invalid("product_id", "requerido")
	}
	if !in.Quantity.IsPositive() {
		return nil, domain.ErrInvalidQuantity
	}
	if in.UnitCost.IsNegative() {
		return nil, domain.Invalid("unit_cost", "no puede ser negativo")
	}
	if in.Key == "" {
		in.Key = uuid.NewString()
	}
	l := e.ledger
	res := &ReceiveResult{}
	err := l.locked(ctx, in.ProductID, func(repos TxRepos) error {
		prev, err := l.replay(ctx, repos, in.Key, entity.MovementIn, in.ProductID)
		if err != nil {
			return err
		}
		if prev != nil {
			res.Movement, res.Replayed = prev, true
			return nil
		}
		product, bal, err := l.load(ctx, repos, in.ProductID)
		if err != nil {
			return err
		}
		previous := product.UnitCost
		newCost := domaininv.CostCalculator(bal.OnHand, previous, in.Quantity, in.UnitCost).Round(costScale)
		if err := repos.Products.UpdateCost(ctx, product.ID, newCost); err != nil {
			return fmt.Errorf("actualizar costo: %w", err)
		}
		unitCost := in.UnitCost
		res.Movement, err = l.applyIn(ctx, repos, MovementInput{
			Key:       in.Key,
			ProductID: in.ProductID,
			Quantity:  in.Quantity,
			Actor:     in.Actor,
			Note:      in.Note,
			InvoiceID: in.InvoiceID,
			UnitCost:  &unitCost,
		})
		if err != nil {
			return err
		}
		res.History = &entity.CostHistory{
			ID:           uuid.NewString(),
			ProductID:    product.ID,
			SupplierID:   in.SupplierID,
			InvoiceID:    in.InvoiceID,
			PreviousCost: previous,
			NewCost:      newCost,
			Quantity:     in.Quantity,
			IncomingCost: in.UnitCost,
			VariancePct:  domaininv.CostVariancePct(previous, newCost),
			Actor:        in.Actor,
			CreatedAt:    res.Movement.CreatedAt,
		}
		if err := repos.Costs.Create(ctx, res.History); err != nil {
			return fmt.Errorf("registrar historial de costo: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	l.log.Info().
		Str("product_id", in.ProductID).
		Str("invoice_id", in.InvoiceID).
		Bool("replayed", res.Replayed).
		Msg("entrada con costo registrada")
	return res, nil
}
