package stock

import (
	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

func toItemResponse(i *entity.StockItem) *dto.ItemResponse {
	return &dto.ItemResponse{
		ID:              i.ID,
		SKU:             i.SKU,
		Name:            i.Name,
		Description:     i.Description,
		Category:        i.Category,
		UnitOfMeasure:   i.UnitOfMeasure,
		UnitCost:        i.UnitCost,
		UnitPrice:       i.UnitPrice,
		Currency:        i.Currency,
		Status:          i.Status,
		MinimumLevel:    i.MinimumLevel,
		ReorderPoint:    i.ReorderPoint,
		ReorderQuantity: i.ReorderQuantity,
		IsService:       i.IsService,
		TrackInventory:  i.TrackInventory,
		CreatedBy:       i.CreatedBy,
		UpdatedBy:       i.UpdatedBy,
		CreatedAt:       i.CreatedAt,
		UpdatedAt:       i.UpdatedAt,
	}
}

func toLocationResponse(l *entity.StockLocation) *dto.LocationResponse {
	return &dto.LocationResponse{
		ID:          l.ID,
		Code:        l.Code,
		Name:        l.Name,
		Description: l.Description,
		IsVirtual:   l.IsVirtual,
		IsActive:    l.IsActive,
		CreatedAt:   l.CreatedAt,
		UpdatedAt:   l.UpdatedAt,
	}
}

func toMovementResponse(m *entity.StockMovement) *dto.MovementResponse {
	return &dto.MovementResponse{
		ID:               m.ID,
		Number:           m.Number,
		Type:             m.Type,
		Status:           m.Status,
		ItemID:           m.ItemID,
		Quantity:         m.Quantity,
		FromLocationID:   m.FromLocationID,
		ToLocationID:     m.ToLocationID,
		Reason:           m.Reason,
		Notes:            m.Notes,
		UnitCost:         m.UnitCost,
		TotalValue:       m.TotalValue(),
		InitiatedBy:      m.InitiatedBy,
		ApprovedBy:       m.ApprovedBy,
		ApprovedAt:       m.ApprovedAt,
		RejectedBy:       m.RejectedBy,
		RejectedAt:       m.RejectedAt,
		RejectionReason:  m.RejectionReason,
		CancelledBy:      m.CancelledBy,
		CancelledAt:      m.CancelledAt,
		RequiresApproval: m.RequiresApproval,
		TenderID:         m.Links.TenderID,
		TaskID:           m.Links.TaskID,
		DocumentID:       m.Links.DocumentID,
		ReservationID:    m.Links.ReservationID,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func toMovementList(list []*entity.StockMovement) *dto.MovementListResponse {
	items := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, *toMovementResponse(m))
	}
	return &dto.MovementListResponse{Items: items}
}

func toReservationResponse(r *entity.StockReservation) *dto.ReservationResponse {
	return &dto.ReservationResponse{
		ID:                r.ID,
		Number:            r.Number,
		ItemID:            r.ItemID,
		LocationID:        r.LocationID,
		QuantityReserved:  r.QuantityReserved,
		QuantityIssued:    r.QuantityIssued,
		QuantityRemaining: r.QuantityRemaining(),
		Status:            r.Status,
		Purpose:           r.Purpose,
		TenderID:          r.TenderID,
		ExpiresAt:         r.ExpiresAt,
		RequestedBy:       r.RequestedBy,
		ReleasedBy:        r.ReleasedBy,
		ReleasedAt:        r.ReleasedAt,
		ReleaseReason:     r.ReleaseReason,
		ExpiredAt:         r.ExpiredAt,
		IssuedAt:          r.IssuedAt,
		CreatedAt:         r.CreatedAt,
		UpdatedAt:         r.UpdatedAt,
	}
}

func toReservationList(list []*entity.StockReservation) *dto.ReservationListResponse {
	items := make([]dto.ReservationResponse, 0, len(list))
	for _, r := range list {
		items = append(items, *toReservationResponse(r))
	}
	return &dto.ReservationListResponse{Items: items}
}
