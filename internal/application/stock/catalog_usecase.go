package stock

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/stock-ledger-api/internal/application/dto"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

// CatalogUseCase registro de artículos y ubicaciones. La unicidad de SKU y de
// código la garantiza el almacenamiento (domain.ErrDuplicate).
type CatalogUseCase struct {
	d Deps
}

// NewCatalogUseCase construye el caso de uso.
func NewCatalogUseCase(d Deps) *CatalogUseCase {
	return &CatalogUseCase{d: d}
}

// CreateItem crea un artículo Active.
func (uc *CatalogUseCase) CreateItem(ctx context.Context, a Actor, in dto.CreateItemRequest) (*dto.ItemResponse, error) {
	if err := requireManage(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	currency := in.Currency
	if currency == "" {
		currency = uc.d.Settings.DefaultCurrency
	}
	track := true
	if in.TrackInventory != nil {
		track = *in.TrackInventory
	}
	now := uc.d.now()
	item, err := entity.NewStockItem(entity.StockItemInput{
		TenantID:       a.TenantID,
		SKU:            in.SKU,
		Name:           in.Name,
		Description:    in.Description,
		Category:       in.Category,
		UnitOfMeasure:  in.UnitOfMeasure,
		UnitCost:       in.UnitCost,
		UnitPrice:      in.UnitPrice,
		Currency:       currency,
		IsService:      in.IsService,
		TrackInventory: track,
		CreatedBy:      a.UserID,
	}, now)
	if err != nil {
		return nil, err
	}
	if err := uc.d.Repos.Items.Create(ctx, item); err != nil {
		return nil, err
	}
	out := toItemResponse(item)
	uc.d.Events.Dispatch(ctx, newEvent(EventItemCreated, a, item.ID, now, out))
	return out, nil
}

// UpdateItem actualiza campos descriptivos.
func (uc *CatalogUseCase) UpdateItem(ctx context.Context, a Actor, id string, in dto.UpdateItemRequest) (*dto.ItemResponse, error) {
	return uc.mutateItem(ctx, a, id, func(item *entity.StockItem) error {
		return item.UpdateDetails(entity.StockItemDetails{
			Name:          in.Name,
			Description:   in.Description,
			Category:      in.Category,
			UnitOfMeasure: in.UnitOfMeasure,
			UnitCost:      in.UnitCost,
			UnitPrice:     in.UnitPrice,
			Currency:      in.Currency,
		}, a.UserID, uc.d.now())
	})
}

// SetStockLevels fija mínimo y reorden.
func (uc *CatalogUseCase) SetStockLevels(ctx context.Context, a Actor, id string, in dto.SetStockLevelsRequest) (*dto.ItemResponse, error) {
	return uc.mutateItem(ctx, a, id, func(item *entity.StockItem) error {
		return item.SetStockLevels(in.MinimumLevel, in.ReorderPoint, in.ReorderQuantity, a.UserID, uc.d.now())
	})
}

// ActivateItem reactiva un artículo.
func (uc *CatalogUseCase) ActivateItem(ctx context.Context, a Actor, id string) (*dto.ItemResponse, error) {
	return uc.mutateItem(ctx, a, id, func(item *entity.StockItem) error {
		return item.Activate(a.UserID, uc.d.now())
	})
}

// DeactivateItem inactiva un artículo.
func (uc *CatalogUseCase) DeactivateItem(ctx context.Context, a Actor, id string) (*dto.ItemResponse, error) {
	return uc.mutateItem(ctx, a, id, func(item *entity.StockItem) error {
		return item.Deactivate(a.UserID, uc.d.now())
	})
}

// DiscontinueItem descontinúa un artículo (definitivo).
func (uc *CatalogUseCase) DiscontinueItem(ctx context.Context, a Actor, id string) (*dto.ItemResponse, error) {
	return uc.mutateItem(ctx, a, id, func(item *entity.StockItem) error {
		return item.Discontinue(a.UserID, uc.d.now())
	})
}

func (uc *CatalogUseCase) mutateItem(ctx context.Context, a Actor, id string, fn func(*entity.StockItem) error) (*dto.ItemResponse, error) {
	if err := requireManage(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	item, err := loadItem(ctx, uc.d.Repos, a.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(item); err != nil {
		return nil, err
	}
	if err := uc.d.Repos.Items.Update(ctx, item); err != nil {
		return nil, err
	}
	out := toItemResponse(item)
	uc.d.Events.Dispatch(ctx, newEvent(EventItemUpdated, a, item.ID, item.UpdatedAt, out))
	return out, nil
}

// GetItem obtiene un artículo por ID.
func (uc *CatalogUseCase) GetItem(ctx context.Context, a Actor, id string) (*dto.ItemResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	item, err := loadItem(ctx, uc.d.Repos, a.TenantID, id)
	if err != nil {
		return nil, err
	}
	return toItemResponse(item), nil
}

// GetItemBySKU obtiene un artículo por SKU dentro del tenant.
func (uc *CatalogUseCase) GetItemBySKU(ctx context.Context, a Actor, sku string) (*dto.ItemResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	sku = strings.TrimSpace(sku)
	item, err := uc.d.Repos.Items.GetBySKU(ctx, a.TenantID, sku)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, fmt.Errorf("%w: sku %s", domain.ErrNotFound, sku)
	}
	return toItemResponse(item), nil
}

// ListItems lista artículos con filtros opcionales y paginación.
func (uc *CatalogUseCase) ListItems(ctx context.Context, a Actor, in dto.ItemFilterRequest) (*dto.ItemListResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	in.Normalize()
	// Una fila extra para saber si hay página siguiente.
	list, err := uc.d.Repos.Items.List(ctx, a.TenantID, repository.ItemFilter{
		Status:   in.Status,
		Category: in.Category,
		Search:   in.Search,
		Limit:    in.Limit + 1,
		Offset:   in.Offset,
	})
	if err != nil {
		return nil, err
	}
	page := dto.NewPage(in.PageRequest, len(list))
	items := make([]dto.ItemResponse, 0, page.Count)
	for _, i := range list[:page.Count] {
		items = append(items, *toItemResponse(i))
	}
	return &dto.ItemListResponse{Items: items, Page: page}, nil
}

// CreateLocation crea una ubicación activa.
func (uc *CatalogUseCase) CreateLocation(ctx context.Context, a Actor, in dto.CreateLocationRequest) (*dto.LocationResponse, error) {
	if err := requireManage(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	now := uc.d.now()
	loc, err := entity.NewStockLocation(a.TenantID, in.Code, in.Name, in.Description, in.IsVirtual, now)
	if err != nil {
		return nil, err
	}
	if err := uc.d.Repos.Locations.Create(ctx, loc); err != nil {
		return nil, err
	}
	out := toLocationResponse(loc)
	uc.d.Events.Dispatch(ctx, newEvent(EventLocationCreated, a, loc.ID, now, out))
	return out, nil
}

// UpdateLocation cambia nombre y descripción.
func (uc *CatalogUseCase) UpdateLocation(ctx context.Context, a Actor, id string, in dto.UpdateLocationRequest) (*dto.LocationResponse, error) {
	return uc.mutateLocation(ctx, a, id, func(l *entity.StockLocation) error {
		return l.Update(in.Name, in.Description, uc.d.now())
	})
}

// ActivateLocation habilita la ubicación.
func (uc *CatalogUseCase) ActivateLocation(ctx context.Context, a Actor, id string) (*dto.LocationResponse, error) {
	return uc.mutateLocation(ctx, a, id, func(l *entity.StockLocation) error {
		l.Activate(uc.d.now())
		return nil
	})
}

// DeactivateLocation deshabilita la ubicación para nuevos movimientos.
func (uc *CatalogUseCase) DeactivateLocation(ctx context.Context, a Actor, id string) (*dto.LocationResponse, error) {
	return uc.mutateLocation(ctx, a, id, func(l *entity.StockLocation) error {
		l.Deactivate(uc.d.now())
		return nil
	})
}

func (uc *CatalogUseCase) mutateLocation(ctx context.Context, a Actor, id string, fn func(*entity.StockLocation) error) (*dto.LocationResponse, error) {
	if err := requireManage(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	loc, err := loadLocation(ctx, uc.d.Repos, a.TenantID, id)
	if err != nil {
		return nil, err
	}
	if err := fn(loc); err != nil {
		return nil, err
	}
	if err := uc.d.Repos.Locations.Update(ctx, loc); err != nil {
		return nil, err
	}
	out := toLocationResponse(loc)
	uc.d.Events.Dispatch(ctx, newEvent(EventLocationUpdated, a, loc.ID, loc.UpdatedAt, out))
	return out, nil
}

// GetLocation obtiene una ubicación por ID.
func (uc *CatalogUseCase) GetLocation(ctx context.Context, a Actor, id string) (*dto.LocationResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	loc, err := loadLocation(ctx, uc.d.Repos, a.TenantID, id)
	if err != nil {
		return nil, err
	}
	return toLocationResponse(loc), nil
}

// ListLocations lista ubicaciones, opcionalmente solo las activas.
func (uc *CatalogUseCase) ListLocations(ctx context.Context, a Actor, activeOnly bool) (*dto.LocationListResponse, error) {
	if err := requireView(ctx, uc.d.Auth, a); err != nil {
		return nil, err
	}
	list, err := uc.d.Repos.Locations.List(ctx, a.TenantID, activeOnly)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LocationResponse, 0, len(list))
	for _, l := range list {
		items = append(items, *toLocationResponse(l))
	}
	return &dto.LocationListResponse{Items: items}, nil
}
