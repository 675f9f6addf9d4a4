// Package memory implementa todos los puertos de persistencia sobre mapas en
// memoria protegidos por un mutex. Respaldo de los tests unitarios y del modo
// DB_DRIVER=memory para desarrollo; el mutex único cumple el papel que en
// PostgreSQL juegan los bloqueos de fila y el índice único parcial.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tu-usuario/pos-caja/internal/application/inventory"
	"github.com/tu-usuario/pos-caja/internal/application/pos"
	"github.com/tu-usuario/pos-caja/internal/application/register"
	"github.com/tu-usuario/pos-caja/internal/domain"
	"github.com/tu-usuario/pos-caja/internal/domain/entity"
	"github.com/tu-usuario/pos-caja/internal/domain/repository"
)

var (
	_ inventory.TxRunner = (*Store)(nil)
	_ register.TxRunner  = (*Store)(nil)
	_ pos.TxRunner       = (*Store)(nil)
)

type stockKey struct{ outletID, productID string }

type counterKey struct {
	outletID string
	year     int
}

// data es el estado mutable; se clona antes de cada transacción para poder
// restaurarlo si el callback falla (rollback).
type data struct {
	products   map[string]entity.Product
	movements  []entity.InventoryMovement
	stocks     map[stockKey]entity.Stock
	sessions   map[string]entity.RegisterSession
	entries    []entity.RegisterLedgerEntry
	orders     map[string]entity.Order
	orderItems map[string][]entity.OrderItem
	counters   map[counterKey]int64
}

func newData() *data {
	return &data{
		products:   make(map[string]entity.Product),
		stocks:     make(map[stockKey]entity.Stock),
		sessions:   make(map[string]entity.RegisterSession),
		orders:     make(map[string]entity.Order),
		orderItems: make(map[string][]entity.OrderItem),
		counters:   make(map[counterKey]int64),
	}
}

func (d *data) clone() *data {
	c := &data{
		products:   make(map[string]entity.Product, len(d.products)),
		movements:  append([]entity.InventoryMovement(nil), d.movements...),
		stocks:     make(map[stockKey]entity.Stock, len(d.stocks)),
		sessions:   make(map[string]entity.RegisterSession, len(d.sessions)),
		entries:    append([]entity.RegisterLedgerEntry(nil), d.entries...),
		orders:     make(map[string]entity.Order, len(d.orders)),
		orderItems: make(map[string][]entity.OrderItem, len(d.orderItems)),
		counters:   make(map[counterKey]int64, len(d.counters)),
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	for k, v := range d.stocks {
		c.stocks[k] = v
	}
	for k, v := range d.sessions {
		c.sessions[k] = v
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.orderItems {
		c.orderItems[k] = append([]entity.OrderItem(nil), v...)
	}
	for k, v := range d.counters {
		c.counters[k] = v
	}
	return c
}

// Store es el almacén en memoria. Expone un repositorio por puerto (con
// bloqueo por operación) y los tres TxRunner (bloqueo exclusivo durante toda
// la transacción, con rollback por snapshot).
type Store struct {
	mu sync.Mutex
	d  *data
}

// NewStore construye un almacén vacío.
func NewStore() *Store {
	return &Store{d: newData()}
}

// repoBase comparte el acceso al estado: fuera de transacción toma el mutex
// por operación; dentro, el mutex ya lo sostiene el TxRunner.
type repoBase struct {
	s    *Store
	inTx bool
}

func (b repoBase) with(fn func(d *data) error) error {
	if b.inTx {
		return fn(b.s.d)
	}
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	return fn(b.s.d)
}

// Products devuelve el repositorio de catálogo.
func (s *Store) Products() repository.ProductRepository {
	return &productRepo{repoBase{s: s}}
}

// Movements devuelve el repositorio del libro de inventario.
func (s *Store) Movements() repository.InventoryMovementRepository {
	return &movementRepo{repoBase{s: s}}
}

// Stocks devuelve el repositorio del contador de existencias.
func (s *Store) Stocks() repository.StockRepository {
	return &stockRepo{repoBase{s: s}}
}

// Sessions devuelve el repositorio de sesiones de caja.
func (s *Store) Sessions() repository.RegisterSessionRepository {
	return &sessionRepo{repoBase{s: s}}
}

// Ledger devuelve el repositorio del libro de caja.
func (s *Store) Ledger() repository.RegisterLedgerRepository {
	return &ledgerRepo{repoBase{s: s}}
}

// Orders devuelve el repositorio de órdenes.
func (s *Store) Orders() repository.OrderRepository {
	return &orderRepo{repoBase{s: s}}
}

// ──────────────────────────────────────────────────────────────────────────────
// TxRunner
// ──────────────────────────────────────────────────────────────────────────────

func (s *Store) runTx(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.d.clone()
	if err := fn(); err != nil {
		s.d = snapshot
		return err
	}
	return nil
}

// Run implementa inventory.TxRunner.
func (s *Store) Run(_ context.Context, fn func(
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
) error) error {
	return s.runTx(func() error {
		base := repoBase{s: s, inTx: true}
		return fn(&movementRepo{base}, &stockRepo{base})
	})
}

// RunRegister implementa register.TxRunner.
func (s *Store) RunRegister(_ context.Context, fn func(
	sessionRepo repository.RegisterSessionRepository,
	ledgerRepo repository.RegisterLedgerRepository,
) error) error {
	return s.runTx(func() error {
		base := repoBase{s: s, inTx: true}
		return fn(&sessionRepo{base}, &ledgerRepo{base})
	})
}

// RunSale implementa pos.TxRunner.
func (s *Store) RunSale(_ context.Context, fn func(
	sessionRepo repository.RegisterSessionRepository,
	ledgerRepo repository.RegisterLedgerRepository,
	movRepo repository.InventoryMovementRepository,
	stockRepo repository.StockRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
) error) error {
	return s.runTx(func() error {
		base := repoBase{s: s, inTx: true}
		return fn(&sessionRepo{base}, &ledgerRepo{base}, &movementRepo{base}, &stockRepo{base}, &orderRepo{base}, &productRepo{base})
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Productos
// ──────────────────────────────────────────────────────────────────────────────

type productRepo struct{ repoBase }

var _ repository.ProductRepository = (*productRepo)(nil)

func (r *productRepo) Create(product *entity.Product) error {
	return r.with(func(d *data) error {
		if _, ok := d.products[product.ID]; ok {
			return domain.ErrDuplicate
		}
		d.products[product.ID] = *product
		return nil
	})
}

func (r *productRepo) GetByID(id string) (p *entity.Product, err error) {
	err = r.with(func(d *data) error {
		if found, ok := d.products[id]; ok {
			out := found
			p = &out
		}
		return nil
	})
	return
}

func (r *productRepo) List(limit, offset int) (list []*entity.Product, err error) {
	err = r.with(func(d *data) error {
		all := make([]*entity.Product, 0, len(d.products))
		for _, p := range d.products {
			out := p
			all = append(all, &out)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
		list = paginate(all, limit, offset)
		return nil
	})
	return
}

// ──────────────────────────────────────────────────────────────────────────────
// Movimientos de inventario
// ──────────────────────────────────────────────────────────────────────────────

type movementRepo struct{ repoBase }

var _ repository.InventoryMovementRepository = (*movementRepo)(nil)

func (r *movementRepo) Create(movement *entity.InventoryMovement) error {
	return r.with(func(d *data) error {
		d.movements = append(d.movements, *movement)
		return nil
	})
}

func (r *movementRepo) GetByID(id string) (m *entity.InventoryMovement, err error) {
	err = r.with(func(d *data) error {
		for i := range d.movements {
			if d.movements[i].ID == id {
				out := d.movements[i]
				m = &out
				return nil
			}
		}
		return nil
	})
	return
}

func (r *movementRepo) ListByOutlet(outletID string, from, to *time.Time, limit, offset int) (list []*entity.InventoryMovement, err error) {
	err = r.with(func(d *data) error {
		var all []*entity.InventoryMovement
		for i := range d.movements {
			m := d.movements[i]
			if m.OutletID != outletID {
				continue
			}
			if from != nil && m.Date.Before(*from) {
				continue
			}
			if to != nil && m.Date.After(*to) {
				continue
			}
			out := m
			all = append(all, &out)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].Date.After(all[j].Date) })
		list = paginate(all, limit, offset)
		return nil
	})
	return
}

func (r *movementRepo) ListByReference(referenceType, referenceID string) (list []*entity.InventoryMovement, err error) {
	err = r.with(func(d *data) error {
		for i := range d.movements {
			m := d.movements[i]
			if m.ReferenceType == referenceType && m.ReferenceID == referenceID {
				out := m
				list = append(list, &out)
			}
		}
		return nil
	})
	return
}

func (r *movementRepo) SumCompleted(outletID, productID string) (sum int64, err error) {
	err = r.with(func(d *data) error {
		for i := range d.movements {
			m := &d.movements[i]
			if m.OutletID == outletID && m.ProductID == productID && m.Status == entity.MovementStatusCompleted {
				sum += m.Quantity
			}
		}
		return nil
	})
	return
}

// ──────────────────────────────────────────────────────────────────────────────
// Existencias
// ──────────────────────────────────────────────────────────────────────────────

type stockRepo struct{ repoBase }

var _ repository.StockRepository = (*stockRepo)(nil)

func (r *stockRepo) Get(outletID, productID string) (st *entity.Stock, err error) {
	err = r.with(func(d *data) error {
		if found, ok := d.stocks[stockKey{outletID, productID}]; ok {
			out := found
			st = &out
			return nil
		}
		st = &entity.Stock{OutletID: outletID, ProductID: productID}
		return nil
	})
	return
}

// GetForUpdate en memoria equivale a Get: el mutex de la transacción ya
// serializa el acceso.
func (r *stockRepo) GetForUpdate(outletID, productID string) (*entity.Stock, error) {
	return r.Get(outletID, productID)
}

func (r *stockRepo) Upsert(stock *entity.Stock) error {
	return r.with(func(d *data) error {
		d.stocks[stockKey{stock.OutletID, stock.ProductID}] = *stock
		return nil
	})
}

// ──────────────────────────────────────────────────────────────────────────────
// Sesiones de caja
// ──────────────────────────────────────────────────────────────────────────────

type sessionRepo struct{ repoBase }

var _ repository.RegisterSessionRepository = (*sessionRepo)(nil)

func (r *sessionRepo) Create(session *entity.RegisterSession) error {
	return r.with(func(d *data) error {
		for _, s := range d.sessions {
			if s.OutletID == session.OutletID && s.Date.Equal(session.Date) && s.Status == entity.SessionStatusOpen {
				return domain.ErrSessionAlreadyOpen
			}
		}
		d.sessions[session.ID] = *session
		return nil
	})
}

func (r *sessionRepo) GetByID(id string) (ses *entity.RegisterSession, err error) {
	err = r.with(func(d *data) error {
		if found, ok := d.sessions[id]; ok {
			out := found
			ses = &out
		}
		return nil
	})
	return
}

func (r *sessionRepo) GetForUpdate(id string) (*entity.RegisterSession, error) {
	return r.GetByID(id)
}

func (r *sessionRepo) GetOpen(outletID string, date time.Time) (ses *entity.RegisterSession, err error) {
	err = r.with(func(d *data) error {
		for _, s := range d.sessions {
			if s.OutletID == outletID && s.Date.Equal(date) && s.Status == entity.SessionStatusOpen {
				out := s
				ses = &out
				return nil
			}
		}
		return nil
	})
	return
}

func (r *sessionRepo) GetOpenForUpdate(outletID string, date time.Time) (*entity.RegisterSession, error) {
	return r.GetOpen(outletID, date)
}

func (r *sessionRepo) Close(session *entity.RegisterSession) error {
	return r.with(func(d *data) error {
		current, ok := d.sessions[session.ID]
		if !ok {
			return domain.ErrNotFound
		}
		if current.Status != entity.SessionStatusOpen {
			return domain.ErrSessionAlreadyClosed
		}
		d.sessions[session.ID] = *session
		return nil
	})
}

func (r *sessionRepo) ListByOutlet(outletID string, from, to *time.Time, limit, offset int) (list []*entity.RegisterSession, err error) {
	err = r.with(func(d *data) error {
		var all []*entity.RegisterSession
		for _, s := range d.sessions {
			if s.OutletID != outletID {
				continue
			}
			if from != nil && s.Date.Before(*from) {
				continue
			}
			if to != nil && s.Date.After(*to) {
				continue
			}
			out := s
			all = append(all, &out)
		}
		sort.Slice(all, func(i, j int) bool { return all[i].OpenedAt.After(all[j].OpenedAt) })
		list = paginate(all, limit, offset)
		return nil
	})
	return
}

// ──────────────────────────────────────────────────────────────────────────────
// Libro de caja
// ──────────────────────────────────────────────────────────────────────────────

type ledgerRepo struct{ repoBase }

var _ repository.RegisterLedgerRepository = (*ledgerRepo)(nil)

func (r *ledgerRepo) Create(entry *entity.RegisterLedgerEntry) error {
	return r.with(func(d *data) error {
		d.entries = append(d.entries, *entry)
		return nil
	})
}

func (r *ledgerRepo) ListBySession(sessionID string) (list []*entity.RegisterLedgerEntry, err error) {
	err = r.with(func(d *data) error {
		for i := range d.entries {
			if d.entries[i].SessionID == sessionID {
				out := d.entries[i]
				list = append(list, &out)
			}
		}
		sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
		return nil
	})
	return
}

func (r *ledgerRepo) TotalsBySession(sessionID string) (totals *repository.LedgerTotals, err error) {
	err = r.with(func(d *data) error {
		totals = &repository.LedgerTotals{}
		for i := range d.entries {
			e := &d.entries[i]
			if e.SessionID != sessionID {
				continue
			}
			switch e.Type {
			case entity.LedgerEntrySale:
				totals.Sales = totals.Sales.Add(e.Amount)
				totals.SaleCount++
			case entity.LedgerEntryManualIn:
				totals.ManualIn = totals.ManualIn.Add(e.Amount)
			case entity.LedgerEntryManualOut:
				totals.ManualOut = totals.ManualOut.Add(e.Amount)
			}
		}
		return nil
	})
	return
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes
// ──────────────────────────────────────────────────────────────────────────────

type orderRepo struct{ repoBase }

var _ repository.OrderRepository = (*orderRepo)(nil)

func (r *orderRepo) Create(order *entity.Order) error {
	return r.with(func(d *data) error {
		if _, ok := d.orders[order.ID]; ok {
			return domain.ErrDuplicate
		}
		d.orders[order.ID] = *order
		return nil
	})
}

func (r *orderRepo) CreateItem(item *entity.OrderItem) error {
	return r.with(func(d *data) error {
		d.orderItems[item.OrderID] = append(d.orderItems[item.OrderID], *item)
		return nil
	})
}

func (r *orderRepo) GetByID(id string) (o *entity.Order, err error) {
	err = r.with(func(d *data) error {
		if found, ok := d.orders[id]; ok {
			out := found
			o = &out
		}
		return nil
	})
	return
}

func (r *orderRepo) GetItemsByOrderID(orderID string) (list []*entity.OrderItem, err error) {
	err = r.with(func(d *data) error {
		items := d.orderItems[orderID]
		list = make([]*entity.OrderItem, 0, len(items))
		for i := range items {
			out := items[i]
			list = append(list, &out)
		}
		sort.Slice(list, func(i, j int) bool { return list[i].Position < list[j].Position })
		return nil
	})
	return
}

func (r *orderRepo) NextNumber(outletID string, year int) (n int64, err error) {
	err = r.with(func(d *data) error {
		k := counterKey{outletID: outletID, year: year}
		d.counters[k]++
		n = d.counters[k]
		return nil
	})
	return
}

func paginate[T any](list []*T, limit, offset int) []*T {
	if offset >= len(list) {
		return nil
	}
	list = list[offset:]
	if limit > 0 && limit < len(list) {
		list = list[:limit]
	}
	return list
}
