package http

import (
	"github.com/jhoicas/Suministros-api/internal/application/dto"
	"github.com/jhoicas/Suministros-api/internal/application/order"
	"github.com/jhoicas/Suministros-api/internal/application/reconciliation"
	"github.com/jhoicas/Suministros-api/internal/domain/entity"
)

func toBalanceResponse(b *entity.StockBalance) dto.StockBalanceResponse {
	return dto.StockBalanceResponse{
		ProductID: b.ProductID,
		OnHand:    b.OnHand,
		Reserved:  b.Reserved,
		Available: b.Available(),
		UpdatedAt: b.UpdatedAt,
		UpdatedBy: b.UpdatedBy,
	}
}

func toMovementResponse(m *entity.StockMovement) dto.StockMovementResponse {
	return dto.StockMovementResponse{
		ID:            m.ID,
		Kind:          string(m.Kind),
		ProductID:     m.ProductID,
		Quantity:      m.Quantity,
		Decrease:      m.Decrease,
		BalanceBefore: m.BalanceBefore,
		BalanceAfter:  m.BalanceAfter,
		Actor:         m.Actor,
		Note:          m.Note,
		OrderID:       m.OrderID,
		InvoiceID:     m.InvoiceID,
		UnitCost:      m.UnitCost,
		CreatedAt:     m.CreatedAt,
	}
}

func toOrderResponse(o *entity.Order) dto.OrderResponse {
	items := make([]dto.OrderItemResponse, 0, len(o.Items))
	for _, it := range o.Items {
		items = append(items, dto.OrderItemResponse{
			ProductID:   it.ProductID,
			ProductCode: it.ProductCode,
			Description: it.Description,
			Quantity:    it.Quantity,
			UnitCost:    it.UnitCost,
			LineTotal:   it.LineTotal,
			ReservedQty: it.ReservedQty,
			Delivered:   it.Delivered,
		})
	}
	return dto.OrderResponse{
		ID:                 o.ID,
		Number:             o.Number,
		Type:               o.Type,
		RequesterID:        o.RequesterID,
		Sector:             o.Sector,
		Items:              items,
		TotalValue:         o.TotalValue,
		Status:             string(o.Status),
		StockReservationOK: o.StockReservationOK,
		RequestedAt:        o.RequestedAt,
		ApprovedAt:         o.ApprovedAt,
		FinalizedAt:        o.FinalizedAt,
		StatusChangedAt:    o.StatusChangedAt,
		DeliveryDeadline:   o.DeliveryDeadline,
		Notes:              o.Notes,
	}
}

func toOrderOperation(res *order.Result) dto.OrderOperationResponse {
	out := dto.OrderOperationResponse{Order: toOrderResponse(res.Order), Complete: res.Complete}
	for _, l := range res.Lines {
		line := dto.LineOutcomeDTO{ProductID: l.ProductID, Quantity: l.Quantity, OK: l.OK}
		if l.Err != nil {
			line.Error = l.Err.Error()
		}
		out.Lines = append(out.Lines, line)
	}
	return out
}

func toInvoiceResponse(inv *entity.Invoice) dto.InvoiceResponse {
	items := make([]dto.InvoiceItemResponse, 0, len(inv.Items))
	for _, it := range inv.Items {
		score, _ := it.MatchScore.Float64()
		items = append(items, dto.InvoiceItemResponse{
			Line:          it.Line,
			SupplierCode:  it.SupplierCode,
			Description:   it.Description,
			TaxCode:       it.TaxCode,
			UnitMeasure:   it.UnitMeasure,
			Quantity:      it.Quantity,
			UnitValue:     it.UnitValue,
			TotalValue:    it.TotalValue,
			ProductID:     it.ProductID,
			MatchStrategy: it.MatchStrategy,
			MatchScore:    score,
		})
	}
	return dto.InvoiceResponse{
		ID:            inv.ID,
		Number:        inv.Number,
		Series:        inv.Series,
		SupplierID:    inv.SupplierID,
		SupplierTaxID: inv.SupplierTaxID,
		IssueDate:     inv.IssueDate,
		EntryDate:     inv.EntryDate,
		DeclaredTotal: inv.DeclaredTotal,
		Status:        string(inv.Status),
		ProcessedAt:   inv.ProcessedAt,
		Items:         items,
	}
}

func toReconciliationResponse(res *reconciliation.Result) dto.ReconciliationResponse {
	out := dto.ReconciliationResponse{
		Invoice:     toInvoiceResponse(res.Invoice),
		Matched:     res.Matched,
		Created:     res.Created,
		Review:      make([]dto.ReviewItemDTO, 0, len(res.Review)),
		SupplierNew: res.SupplierCreated,
		Processed:   res.Processed,
	}
	for _, r := range res.Review {
		out.Review = append(out.Review, dto.ReviewItemDTO{
			Line:        r.Line,
			Description: r.Description,
			ProductID:   r.ProductID,
			Candidate:   r.CandidateID,
			Score:       r.Score,
			Reason:      r.Reason,
		})
	}
	for _, f := range res.Failed {
		out.Failed = append(out.Failed, dto.LineOutcomeDTO{
			ProductID: f.ProductID,
			Quantity:  f.Quantity,
			Error:     f.Err.Error(),
		})
	}
	return out
}
