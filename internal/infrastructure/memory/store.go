// Package memory implementa los puertos de stock en memoria de proceso.
// Se usa en modo desarrollo (STOCK_STORAGE=memory) y en los tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/jhoicas/stock-ledger-api/internal/application/stock"
	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
)

// Store guarda las cuatro colecciones del ledger. Las escrituras de una
// transacción quedan en un área temporal y se aplican juntas al confirmar,
// revalidando unicidad y versiones bajo el lock exclusivo.
type Store struct {
	mu           sync.RWMutex
	items        map[string]*entity.StockItem
	locations    map[string]*entity.StockLocation
	movements    map[string]*entity.StockMovement
	reservations map[string]*entity.StockReservation
	sequences    map[string]int64
	locks        *keyedMutex
}

// New crea un store vacío.
func New() *Store {
	return &Store{
		items:        make(map[string]*entity.StockItem),
		locations:    make(map[string]*entity.StockLocation),
		movements:    make(map[string]*entity.StockMovement),
		reservations: make(map[string]*entity.StockReservation),
		sequences:    make(map[string]int64),
		locks:        newKeyedMutex(),
	}
}

var _ stock.TxRunner = (*Store)(nil)

// Repos repositorios fuera de transacción: cada escritura se confirma sola.
func (s *Store) Repos() stock.Repos {
	return s.repos(nil)
}

// Run ejecuta fn en una transacción. Los bloqueos tomados con LockStock se
// mantienen hasta después de confirmar o descartar.
func (s *Store) Run(ctx context.Context, fn func(r stock.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newMemTx()
	defer tx.releaseLocks()
	if err := fn(s.repos(tx)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.commit(tx)
}

func (s *Store) repos(tx *memTx) stock.Repos {
	v := &view{s: s, tx: tx}
	return stock.Repos{
		Items:        &itemRepo{v},
		Locations:    &locationRepo{v},
		Movements:    &movementRepo{v},
		Reservations: &reservationRepo{v},
		Sequences:    &sequenceRepo{v},
		Locker:       &locker{v},
	}
}

// memTx escrituras pendientes de una transacción.
type memTx struct {
	items        map[string]*entity.StockItem
	locations    map[string]*entity.StockLocation
	movements    map[string]*entity.StockMovement
	reservations map[string]*entity.StockReservation
	created      map[string]bool // ids creados en esta tx
	versions     map[string]int  // versión esperada por id al confirmar
	held         map[string]func()
}

func newMemTx() *memTx {
	return &memTx{
		items:        make(map[string]*entity.StockItem),
		locations:    make(map[string]*entity.StockLocation),
		movements:    make(map[string]*entity.StockMovement),
		reservations: make(map[string]*entity.StockReservation),
		created:      make(map[string]bool),
		versions:     make(map[string]int),
		held:         make(map[string]func()),
	}
}

func (tx *memTx) releaseLocks() {
	for _, release := range tx.held {
		release()
	}
}

func (s *Store) commit(tx *memTx) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.validateLocked(tx); err != nil {
		return err
	}
	for id, it := range tx.items {
		s.items[id] = it
	}
	for id, l := range tx.locations {
		s.locations[id] = l
	}
	for id, m := range tx.movements {
		s.movements[id] = m
	}
	for id, r := range tx.reservations {
		s.reservations[id] = r
	}
	return nil
}

// validateLocked revisa unicidad de claves de negocio y versiones esperadas
// contra el estado confirmado. Requiere s.mu tomado.
func (s *Store) validateLocked(tx *memTx) error {
	for id, it := range tx.items {
		if tx.created[id] && s.skuTakenLocked(it.TenantID, it.SKU, id) {
			return fmt.Errorf("%w: sku %s", domain.ErrDuplicate, it.SKU)
		}
	}
	for id, l := range tx.locations {
		if tx.created[id] && s.codeTakenLocked(l.TenantID, l.Code, id) {
			return fmt.Errorf("%w: código %s", domain.ErrDuplicate, l.Code)
		}
	}
	for id, m := range tx.movements {
		if tx.created[id] && s.movementNumberTakenLocked(m.TenantID, m.Number, id) {
			return fmt.Errorf("%w: movimiento %s", domain.ErrDuplicate, m.Number)
		}
	}
	for id, r := range tx.reservations {
		if tx.created[id] && s.reservationNumberTakenLocked(r.TenantID, r.Number, id) {
			return fmt.Errorf("%w: reserva %s", domain.ErrDuplicate, r.Number)
		}
	}
	for id, expected := range tx.versions {
		if got, ok := s.versionLocked(id); !ok || got != expected {
			return fmt.Errorf("%w: %s cambió (versión %d, esperada %d)", domain.ErrConflict, id, got, expected)
		}
	}
	return nil
}

func (s *Store) skuTakenLocked(tenantID, sku, exceptID string) bool {
	for id, it := range s.items {
		if id != exceptID && it.TenantID == tenantID && it.SKU == sku {
			return true
		}
	}
	return false
}

func (s *Store) codeTakenLocked(tenantID, code, exceptID string) bool {
	for id, l := range s.locations {
		if id != exceptID && l.TenantID == tenantID && l.Code == code {
			return true
		}
	}
	return false
}

func (s *Store) movementNumberTakenLocked(tenantID, number, exceptID string) bool {
	for id, m := range s.movements {
		if id != exceptID && m.TenantID == tenantID && m.Number == number {
			return true
		}
	}
	return false
}

func (s *Store) reservationNumberTakenLocked(tenantID, number, exceptID string) bool {
	for id, r := range s.reservations {
		if id != exceptID && r.TenantID == tenantID && r.Number == number {
			return true
		}
	}
	return false
}

func (s *Store) versionLocked(id string) (int, bool) {
	if m, ok := s.movements[id]; ok {
		return m.Version, true
	}
	if r, ok := s.reservations[id]; ok {
		return r.Version, true
	}
	return 0, false
}

// view lee el estado confirmado con las escrituras de la tx encima.
// tx nil = modo autocommit.
type view struct {
	s  *Store
	tx *memTx
}

// write aplica fn a la tx actual o, en autocommit, a una tx de una sola operación.
func (v *view) write(fn func(tx *memTx) error) error {
	if v.tx != nil {
		return fn(v.tx)
	}
	tx := newMemTx()
	if err := fn(tx); err != nil {
		return err
	}
	return v.s.commit(tx)
}

func cloneItem(i *entity.StockItem) *entity.StockItem {
	c := *i
	return &c
}

func cloneLocation(l *entity.StockLocation) *entity.StockLocation {
	c := *l
	return &c
}

func cloneMovement(m *entity.StockMovement) *entity.StockMovement {
	c := *m
	return &c
}

func cloneReservation(r *entity.StockReservation) *entity.StockReservation {
	c := *r
	return &c
}
