package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var (
	_ repository.StockItemRepository        = (*itemRepo)(nil)
	_ repository.StockLocationRepository    = (*locationRepo)(nil)
	_ repository.StockMovementRepository    = (*movementRepo)(nil)
	_ repository.StockReservationRepository = (*reservationRepo)(nil)
	_ repository.SequenceRepository         = (*sequenceRepo)(nil)
	_ stock.StockLocker                     = (*locker)(nil)
)

// ──────────────────────────────────────────────────────────────────────────────
// Artículos
// ──────────────────────────────────────────────────────────────────────────────

type itemRepo struct{ v *view }

func (r *itemRepo) Create(_ context.Context, item *entity.StockItem) error {
	return r.v.write(func(tx *memTx) error {
		if existing := r.find(item.TenantID, func(i *entity.StockItem) bool { return i.SKU == item.SKU }); existing != nil {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, item.SKU)
		}
		tx.items[item.ID] = cloneItem(item)
		tx.created[item.ID] = true
		return nil
	})
}

func (r *itemRepo) GetByID(_ context.Context, tenantID, id string) (*entity.StockItem, error) {
	return r.find(tenantID, func(i *entity.StockItem) bool { return i.ID == id }), nil
}

func (r *itemRepo) GetBySKU(_ context.Context, tenantID, sku string) (*entity.StockItem, error) {
	return r.find(tenantID, func(i *entity.StockItem) bool { return i.SKU == sku }), nil
}

func (r *itemRepo) Update(_ context.Context, item *entity.StockItem) error {
	if existing := r.find(item.TenantID, func(i *entity.StockItem) bool { return i.ID == item.ID }); existing == nil {
		return fmt.Errorf("%w: artículo %s", domain.ErrNotFound, item.ID)
	}
	return r.v.write(func(tx *memTx) error {
		tx.items[item.ID] = cloneItem(item)
		return nil
	})
}

func (r *itemRepo) List(_ context.Context, tenantID string, f repository.ItemFilter) ([]*entity.StockItem, error) {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	list := r.all(tenantID, func(i *entity.StockItem) bool {
		if f.Status != "" && i.Status != f.Status {
			return false
		}
		if f.Category != "" && i.Category != f.Category {
			return false
		}
		if search != "" && !strings.Contains(strings.ToLower(i.SKU), search) && !strings.Contains(strings.ToLower(i.Name), search) {
			return false
		}
		return true
	})
	sort.Slice(list, func(a, b int) bool { return list[a].SKU < list[b].SKU })
	return page(list, f.Limit, f.Offset), nil
}

func (r *itemRepo) find(tenantID string, match func(*entity.StockItem) bool) *entity.StockItem {
	list := r.all(tenantID, match)
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

func (r *itemRepo) all(tenantID string, match func(*entity.StockItem) bool) []*entity.StockItem {
	r.v.s.mu.RLock()
	defer r.v.s.mu.RUnlock()
	var out []*entity.StockItem
	for id, it := range r.v.s.items {
		if r.v.tx != nil {
			if staged, ok := r.v.tx.items[id]; ok {
				it = staged
			}
		}
		if it.TenantID == tenantID && match(it) {
			out = append(out, cloneItem(it))
		}
	}
	if r.v.tx != nil {
		for id, it := range r.v.tx.items {
			if _, committed := r.v.s.items[id]; !committed && it.TenantID == tenantID && match(it) {
				out = append(out, cloneItem(it))
			}
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Ubicaciones
// ──────────────────────────────────────────────────────────────────────────────

type locationRepo struct{ v *view }

func (r *locationRepo) Create(_ context.Context, loc *entity.StockLocation) error {
	return r.v.write(func(tx *memTx) error {
		if existing := r.find(loc.TenantID, func(l *entity.StockLocation) bool { return l.Code == loc.Code }); existing != nil {
			return fmt.Errorf("%w: código %s", domain.ErrDuplicate, loc.Code)
		}
		tx.locations[loc.ID] = cloneLocation(loc)
		tx.created[loc.ID] = true
		return nil
	})
}

func (r *locationRepo) GetByID(_ context.Context, tenantID, id string) (*entity.StockLocation, error) {
	return r.find(tenantID, func(l *entity.StockLocation) bool { return l.ID == id }), nil
}

func (r *locationRepo) GetByCode(_ context.Context, tenantID, code string) (*entity.StockLocation, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	return r.find(tenantID, func(l *entity.StockLocation) bool { return l.Code == code }), nil
}

func (r *locationRepo) Update(_ context.Context, loc *entity.StockLocation) error {
	if existing := r.find(loc.TenantID, func(l *entity.StockLocation) bool { return l.ID == loc.ID }); existing == nil {
		return fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, loc.ID)
	}
	return r.v.write(func(tx *memTx) error {
		tx.locations[loc.ID] = cloneLocation(loc)
		return nil
	})
}

func (r *locationRepo) List(_ context.Context, tenantID string, activeOnly bool) ([]*entity.StockLocation, error) {
	list := r.all(tenantID, func(l *entity.StockLocation) bool { return !activeOnly || l.IsActive })
	sort.Slice(list, func(a, b int) bool { return list[a].Code < list[b].Code })
	return list, nil
}

func (r *locationRepo) find(tenantID string, match func(*entity.StockLocation) bool) *entity.StockLocation {
	list := r.all(tenantID, match)
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

func (r *locationRepo) all(tenantID string, match func(*entity.StockLocation) bool) []*entity.StockLocation {
	r.v.s.mu.RLock()
	defer r.v.s.mu.RUnlock()
	var out []*entity.StockLocation
	for id, l := range r.v.s.locations {
		if r.v.tx != nil {
			if staged, ok := r.v.tx.locations[id]; ok {
				l = staged
			}
		}
		if l.TenantID == tenantID && match(l) {
			out = append(out, cloneLocation(l))
		}
	}
	if r.v.tx != nil {
		for id, l := range r.v.tx.locations {
			if _, committed := r.v.s.locations[id]; !committed && l.TenantID == tenantID && match(l) {
				out = append(out, cloneLocation(l))
			}
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos
// ──────────────────────────────────────────────────────────────────────────────

type movementRepo struct{ v *view }

func (r *movementRepo) Create(_ context.Context, m *entity.StockMovement) error {
	return r.v.write(func(tx *memTx) error {
		if existing := r.find(m.TenantID, func(x *entity.StockMovement) bool { return x.Number == m.Number }); existing != nil {
			return fmt.Errorf("%w: movimiento %s", domain.ErrDuplicate, m.Number)
		}
		tx.movements[m.ID] = cloneMovement(m)
		tx.created[m.ID] = true
		return nil
	})
}

func (r *movementRepo) GetByID(_ context.Context, tenantID, id string) (*entity.StockMovement, error) {
	return r.find(tenantID, func(m *entity.StockMovement) bool { return m.ID == id }), nil
}

func (r *movementRepo) UpdateTransition(_ context.Context, m *entity.StockMovement, expectedVersion int) error {
	current := r.find(m.TenantID, func(x *entity.StockMovement) bool { return x.ID == m.ID })
	if current == nil {
		return fmt.Errorf("%w: movimiento %s", domain.ErrNotFound, m.ID)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: movimiento %s", domain.ErrConflict, m.Number)
	}
	err := r.v.write(func(tx *memTx) error {
		if _, ok := tx.versions[m.ID]; !ok && !tx.created[m.ID] {
			tx.versions[m.ID] = expectedVersion
		}
		next := cloneMovement(m)
		next.Version = expectedVersion + 1
		tx.movements[m.ID] = next
		return nil
	})
	if err != nil {
		return err
	}
	m.Version = expectedVersion + 1
	return nil
}

func (r *movementRepo) ListApproved(_ context.Context, tenantID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	f.Status = entity.MovementStatusApproved
	return r.all(tenantID, func(m *entity.StockMovement) bool { return matchesMovement(f, m) }), nil
}

func (r *movementRepo) History(_ context.Context, tenantID string, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	list := r.all(tenantID, func(m *entity.StockMovement) bool {
		if !matchesMovement(f, m) {
			return false
		}
		if f.From != nil && m.CreatedAt.Before(*f.From) {
			return false
		}
		if f.To != nil && m.CreatedAt.After(*f.To) {
			return false
		}
		return true
	})
	sort.Slice(list, func(a, b int) bool {
		if !list[a].CreatedAt.Equal(list[b].CreatedAt) {
			return list[a].CreatedAt.After(list[b].CreatedAt)
		}
		return list[a].Number > list[b].Number
	})
	return page(list, f.Limit, 0), nil
}

func (r *movementRepo) ListByReservation(_ context.Context, tenantID, reservationID string) ([]*entity.StockMovement, error) {
	list := r.all(tenantID, func(m *entity.StockMovement) bool { return m.Links.ReservationID == reservationID })
	sort.Slice(list, func(a, b int) bool { return list[a].Number < list[b].Number })
	return list, nil
}

func matchesMovement(f repository.MovementFilter, m *entity.StockMovement) bool {
	if f.ItemID != "" && m.ItemID != f.ItemID {
		return false
	}
	if f.LocationID != "" && !m.Touches(f.LocationID) {
		return false
	}
	if f.Type != "" && m.Type != f.Type {
		return false
	}
	if f.Status != "" && m.Status != f.Status {
		return false
	}
	return true
}

func (r *movementRepo) find(tenantID string, match func(*entity.StockMovement) bool) *entity.StockMovement {
	list := r.all(tenantID, match)
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

func (r *movementRepo) all(tenantID string, match func(*entity.StockMovement) bool) []*entity.StockMovement {
	r.v.s.mu.RLock()
	defer r.v.s.mu.RUnlock()
	var out []*entity.StockMovement
	for id, m := range r.v.s.movements {
		if r.v.tx != nil {
			if staged, ok := r.v.tx.movements[id]; ok {
				m = staged
			}
		}
		if m.TenantID == tenantID && match(m) {
			out = append(out, cloneMovement(m))
		}
	}
	if r.v.tx != nil {
		for id, m := range r.v.tx.movements {
			if _, committed := r.v.s.movements[id]; !committed && m.TenantID == tenantID && match(m) {
				out = append(out, cloneMovement(m))
			}
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Reservas
// ──────────────────────────────────────────────────────────────────────────────

type reservationRepo struct{ v *view }

func (r *reservationRepo) Create(_ context.Context, res *entity.StockReservation) error {
	return r.v.write(func(tx *memTx) error {
		if existing := r.find(res.TenantID, func(x *entity.StockReservation) bool { return x.Number == res.Number }); existing != nil {
			return fmt.Errorf("%w: reserva %s", domain.ErrDuplicate, res.Number)
		}
		tx.reservations[res.ID] = cloneReservation(res)
		tx.created[res.ID] = true
		return nil
	})
}

func (r *reservationRepo) GetByID(_ context.Context, tenantID, id string) (*entity.StockReservation, error) {
	return r.find(tenantID, func(x *entity.StockReservation) bool { return x.ID == id }), nil
}

func (r *reservationRepo) UpdateTransition(_ context.Context, res *entity.StockReservation, expectedVersion int) error {
	current := r.find(res.TenantID, func(x *entity.StockReservation) bool { return x.ID == res.ID })
	if current == nil {
		return fmt.Errorf("%w: reserva %s", domain.ErrNotFound, res.ID)
	}
	if current.Version != expectedVersion {
		return fmt.Errorf("%w: reserva %s", domain.ErrConflict, res.Number)
	}
	err := r.v.write(func(tx *memTx) error {
		if _, ok := tx.versions[res.ID]; !ok && !tx.created[res.ID] {
			tx.versions[res.ID] = expectedVersion
		}
		next := cloneReservation(res)
		next.Version = expectedVersion + 1
		tx.reservations[res.ID] = next
		return nil
	})
	if err != nil {
		return err
	}
	res.Version = expectedVersion + 1
	return nil
}

func (r *reservationRepo) ListActive(_ context.Context, tenantID string, f repository.ReservationFilter) ([]*entity.StockReservation, error) {
	list := r.all(tenantID, func(x *entity.StockReservation) bool {
		return x.IsActive() &&
			(f.ItemID == "" || x.ItemID == f.ItemID) &&
			(f.LocationID == "" || x.LocationID == f.LocationID)
	})
	sortReservations(list)
	return list, nil
}

func (r *reservationRepo) ListByTender(_ context.Context, tenantID, tenderID string) ([]*entity.StockReservation, error) {
	list := r.all(tenantID, func(x *entity.StockReservation) bool { return x.TenderID == tenderID })
	sortReservations(list)
	return list, nil
}

func (r *reservationRepo) ListExpired(_ context.Context, now time.Time, limit int) ([]*entity.StockReservation, error) {
	r.v.s.mu.RLock()
	var out []*entity.StockReservation
	for _, x := range r.v.s.reservations {
		if x.IsActive() && x.ExpiresAt != nil && x.ExpiresAt.Before(now) {
			out = append(out, cloneReservation(x))
		}
	}
	r.v.s.mu.RUnlock()
	sort.Slice(out, func(a, b int) bool { return out[a].ExpiresAt.Before(*out[b].ExpiresAt) })
	return page(out, limit, 0), nil
}

func sortReservations(list []*entity.StockReservation) {
	sort.Slice(list, func(a, b int) bool {
		if !list[a].CreatedAt.Equal(list[b].CreatedAt) {
			return list[a].CreatedAt.Before(list[b].CreatedAt)
		}
		return list[a].Number < list[b].Number
	})
}

func (r *reservationRepo) find(tenantID string, match func(*entity.StockReservation) bool) *entity.StockReservation {
	list := r.all(tenantID, match)
	if len(list) == 0 {
		return nil
	}
	return list[0]
}

func (r *reservationRepo) all(tenantID string, match func(*entity.StockReservation) bool) []*entity.StockReservation {
	r.v.s.mu.RLock()
	defer r.v.s.mu.RUnlock()
	var out []*entity.StockReservation
	for id, x := range r.v.s.reservations {
		if r.v.tx != nil {
			if staged, ok := r.v.tx.reservations[id]; ok {
				x = staged
			}
		}
		if x.TenantID == tenantID && match(x) {
			out = append(out, cloneReservation(x))
		}
	}
	if r.v.tx != nil {
		for id, x := range r.v.tx.reservations {
			if _, committed := r.v.s.reservations[id]; !committed && x.TenantID == tenantID && match(x) {
				out = append(out, cloneReservation(x))
			}
		}
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// Consecutivos y bloqueos
// ──────────────────────────────────────────────────────────────────────────────

// sequenceRepo avanza el contador de inmediato, fuera de la tx: una tx
// descartada deja un hueco en la numeración pero nunca repite un número.
type sequenceRepo struct{ v *view }

func (r *sequenceRepo) Next(_ context.Context, tenantID, prefix string, year int) (int64, error) {
	key := fmt.Sprintf("%s|%s|%d", tenantID, prefix, year)
	r.v.s.mu.Lock()
	defer r.v.s.mu.Unlock()
	r.v.s.sequences[key]++
	return r.v.s.sequences[key], nil
}

type locker struct{ v *view }

// LockStock toma la llave hasta el fin de la tx. Fuera de una tx no hay nada
// que proteger y no bloquea.
func (l *locker) LockStock(ctx context.Context, tenantID, itemID, locationID string) error {
	if l.v.tx == nil {
		return nil
	}
	key := tenantID + "|" + itemID + "|" + locationID
	if _, held := l.v.tx.held[key]; held {
		return nil
	}
	release, err := l.v.s.locks.lock(ctx, key)
	if err != nil {
		return err
	}
	l.v.tx.held[key] = release
	return nil
}

func page[T any](list []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(list) {
			return list[:0]
		}
		list = list[offset:]
	}
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
