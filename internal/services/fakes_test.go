package services

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"resto_pos_backend/internal/models"
	"resto_pos_backend/internal/repositories"

	"github.com/shopspring/decimal"
)

// memData is everything memStore keeps. Slices and maps are deep-copied by clone
// so a failed unit of work can be rolled back.
type memData struct {
	nextID         int64
	users          map[int64]models.User
	categories     map[int64]models.Category
	products       map[int64]models.Product
	supplements    map[int64]models.Supplement
	accompaniments map[int64]models.Accompaniment
	productSupps   map[int64][]models.ProductSupplement
	productAccs    map[int64][]models.ProductAccompaniment
	tables         map[int64]models.Table
	orders         map[int64]models.Order
	items          map[int64]models.OrderItem
	itemSupps      []models.OrderItemSupplement
	itemAccs       map[int64][]models.OrderItemAccompaniment
	payments       []models.Payment
	registers      map[string]decimal.Decimal
	notifications  map[int64]models.Notification
	events         []models.OutboxEvent
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneSliceMap[K comparable, V any](m map[K][]V) map[K][]V {
	out := make(map[K][]V, len(m))
	for k, v := range m {
		out[k] = append([]V(nil), v...)
	}
	return out
}

func (d memData) clone() memData {
	return memData{
		nextID:         d.nextID,
		users:          cloneMap(d.users),
		categories:     cloneMap(d.categories),
		products:       cloneMap(d.products),
		supplements:    cloneMap(d.supplements),
		accompaniments: cloneMap(d.accompaniments),
		productSupps:   cloneSliceMap(d.productSupps),
		productAccs:    cloneSliceMap(d.productAccs),
		tables:         cloneMap(d.tables),
		orders:         cloneMap(d.orders),
		items:          cloneMap(d.items),
		itemSupps:      append([]models.OrderItemSupplement(nil), d.itemSupps...),
		itemAccs:       cloneSliceMap(d.itemAccs),
		payments:       append([]models.Payment(nil), d.payments...),
		registers:      cloneMap(d.registers),
		notifications:  cloneMap(d.notifications),
		events:         append([]models.OutboxEvent(nil), d.events...),
	}
}

// memStore implements every repository interface plus TxManager over memData.
type memStore struct {
	mu sync.Mutex
	memData

	failEnqueue error // returned by EnqueueEvent when set
}

func newMemStore() *memStore {
	return &memStore{memData: memData{
		nextID:         100,
		users:          map[int64]models.User{},
		categories:     map[int64]models.Category{},
		products:       map[int64]models.Product{},
		supplements:    map[int64]models.Supplement{},
		accompaniments: map[int64]models.Accompaniment{},
		productSupps:   map[int64][]models.ProductSupplement{},
		productAccs:    map[int64][]models.ProductAccompaniment{},
		tables:         map[int64]models.Table{},
		orders:         map[int64]models.Order{},
		items:          map[int64]models.OrderItem{},
		itemAccs:       map[int64][]models.OrderItemAccompaniment{},
		registers:      map[string]decimal.Decimal{},
		notifications:  map[int64]models.Notification{},
	}}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) repos() OrderRepositories {
	return OrderRepositories{Tx: m, Orders: m, Catalog: m, Modifiers: m, Tables: m, Outbox: m, Notifications: m}
}

// WithinTx restores the snapshot taken on entry when fn fails.
func (m *memStore) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	m.mu.Lock()
	snapshot := m.memData.clone()
	m.mu.Unlock()
	if err := fn(nil); err != nil {
		m.mu.Lock()
		m.memData = snapshot
		m.mu.Unlock()
		return err
	}
	return nil
}

// --- seeding helpers ---

func (m *memStore) seedCategory(name, typ string) models.Category {
	c := models.Category{ID: m.id(), Name: name, Type: typ, IsActive: true}
	m.categories[c.ID] = c
	return c
}

func (m *memStore) seedProduct(name, typ string, price string, preparingTime int) models.Product {
	cat := m.seedCategory(name+" category", typ)
	p := models.Product{ID: m.id(), Name: name, Type: typ, Price: decimal.RequireFromString(price),
		CategoryID: cat.ID, CategoryName: cat.Name, PreparingTime: preparingTime, IsActive: true}
	m.products[p.ID] = p
	return p
}

func (m *memStore) seedSupplement(name, price string) models.Supplement {
	s := models.Supplement{ID: m.id(), Name: name, Price: decimal.RequireFromString(price)}
	m.supplements[s.ID] = s
	return s
}

func (m *memStore) seedAccompaniment(name string, maxFree int, price string) models.Accompaniment {
	a := models.Accompaniment{ID: m.id(), Name: name, MaxFree: maxFree, Price: decimal.RequireFromString(price), IsActive: true}
	m.accompaniments[a.ID] = a
	return a
}

func (m *memStore) seedTable(number int) models.Table {
	t := models.Table{ID: m.id(), Number: number, Capacity: 4, Status: models.TableStatusFree}
	m.tables[t.ID] = t
	return t
}

func (m *memStore) eventsOn(channel string) []models.OutboxEvent {
	var out []models.OutboxEvent
	for _, e := range m.events {
		if e.Channel == channel {
			out = append(out, e)
		}
	}
	return out
}

// --- CatalogRepository ---

func (m *memStore) CreateCategory(ctx context.Context, exec repositories.SQLExecutor, c *models.Category) error {
	c.ID = m.id()
	m.categories[c.ID] = *c
	return nil
}

func (m *memStore) GetCategoryByID(ctx context.Context, id int64) (*models.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (m *memStore) ListCategories(ctx context.Context) ([]models.Category, error) {
	out := []models.Category{}
	for _, c := range m.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateCategory(ctx context.Context, exec repositories.SQLExecutor, c *models.Category) error {
	if _, ok := m.categories[c.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.categories[c.ID] = *c
	return nil
}

func (m *memStore) DeleteCategory(ctx context.Context, exec repositories.SQLExecutor, id int64) error {
	if _, ok := m.categories[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.categories, id)
	return nil
}

func (m *memStore) CountProductsInCategory(ctx context.Context, exec repositories.SQLExecutor, id int64) (int, error) {
	n := 0
	for _, p := range m.products {
		if p.CategoryID == id {
			n++
		}
	}
	return n, nil
}

func (m *memStore) CreateProduct(ctx context.Context, exec repositories.SQLExecutor, p *models.Product) error {
	p.ID = m.id()
	m.products[p.ID] = *p
	return nil
}

func (m *memStore) GetProductByID(ctx context.Context, exec repositories.SQLExecutor, id int64) (*models.Product, error) {
	p, ok := m.products[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &p, nil
}

func (m *memStore) ListProducts(ctx context.Context, f models.ProductFilters) ([]models.Product, error) {
	out := []models.Product{}
	for _, p := range m.products {
		if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
			continue
		}
		if f.ActiveOnly && !p.IsActive {
			continue
		}
		if f.Search != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Search)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *memStore) UpdateProduct(ctx context.Context, exec repositories.SQLExecutor, p *models.Product) error {
	if _, ok := m.products[p.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.products[p.ID] = *p
	return nil
}

func (m *memStore) DeleteProduct(ctx context.Context, exec repositories.SQLExecutor, id int64) error {
	if _, ok := m.products[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.products, id)
	return nil
}

func (m *memStore) ReplaceProductSupplements(ctx context.Context, exec repositories.SQLExecutor, id int64, s []models.ProductSupplement) error {
	m.productSupps[id] = append([]models.ProductSupplement(nil), s...)
	return nil
}

func (m *memStore) ReplaceProductAccompaniments(ctx context.Context, exec repositories.SQLExecutor, id int64, a []models.ProductAccompaniment) error {
	m.productAccs[id] = append([]models.ProductAccompaniment(nil), a...)
	return nil
}

func (m *memStore) GetProductSupplements(ctx context.Context, ids []int64) (map[int64][]models.ProductSupplement, error) {
	out := map[int64][]models.ProductSupplement{}
	for _, id := range ids {
		out[id] = m.productSupps[id]
	}
	return out, nil
}

func (m *memStore) GetProductAccompaniments(ctx context.Context, ids []int64) (map[int64][]models.ProductAccompaniment, error) {
	out := map[int64][]models.ProductAccompaniment{}
	for _, id := range ids {
		out[id] = m.productAccs[id]
	}
	return out, nil
}

// --- ModifierRepository ---

func (m *memStore) CreateSupplement(ctx context.Context, exec repositories.SQLExecutor, s *models.Supplement) error {
	s.ID = m.id()
	m.supplements[s.ID] = *s
	return nil
}

func (m *memStore) GetSupplementByID(ctx context.Context, exec repositories.SQLExecutor, id int64) (*models.Supplement, error) {
	s, ok := m.supplements[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &s, nil
}

func (m *memStore) ListSupplements(ctx context.Context) ([]models.Supplement, error) {
	out := []models.Supplement{}
	for _, s := range m.supplements {
		out = append(out, s)
	}
	return out, nil
}

func (m *memStore) UpdateSupplement(ctx context.Context, exec repositories.SQLExecutor, s *models.Supplement) error {
	if _, ok := m.supplements[s.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.supplements[s.ID] = *s
	return nil
}

func (m *memStore) DeleteSupplement(ctx context.Context, exec repositories.SQLExecutor, id int64) error {
	if _, ok := m.supplements[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.supplements, id)
	return nil
}

func (m *memStore) CreateAccompaniment(ctx context.Context, exec repositories.SQLExecutor, a *models.Accompaniment) error {
	a.ID = m.id()
	m.accompaniments[a.ID] = *a
	return nil
}

func (m *memStore) GetAccompanimentByID(ctx context.Context, exec repositories.SQLExecutor, id int64) (*models.Accompaniment, error) {
	a, ok := m.accompaniments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &a, nil
}

func (m *memStore) ListAccompaniments(ctx context.Context, activeOnly bool) ([]models.Accompaniment, error) {
	out := []models.Accompaniment{}
	for _, a := range m.accompaniments {
		if activeOnly && !a.IsActive {
			continue
		}
		out = append(out, a)
	}
	return out, nil
}

func (m *memStore) UpdateAccompaniment(ctx context.Context, exec repositories.SQLExecutor, a *models.Accompaniment) error {
	if _, ok := m.accompaniments[a.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.accompaniments[a.ID] = *a
	return nil
}

func (m *memStore) DeleteAccompaniment(ctx context.Context, exec repositories.SQLExecutor, id int64) error {
	if _, ok := m.accompaniments[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.accompaniments, id)
	return nil
}

// --- TableRepository ---

func (m *memStore) CreateTable(ctx context.Context, exec repositories.SQLExecutor, t *models.Table) error {
	for _, existing := range m.tables {
		if existing.Number == t.Number {
			return repositories.ErrDuplicateKey
		}
	}
	t.ID = m.id()
	m.tables[t.ID] = *t
	return nil
}

func (m *memStore) GetTableByID(ctx context.Context, exec repositories.SQLExecutor, id int64) (*models.Table, error) {
	t, ok := m.tables[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &t, nil
}

func (m *memStore) ListTables(ctx context.Context) ([]models.Table, error) {
	out := []models.Table{}
	for _, t := range m.tables {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out, nil
}

func (m *memStore) UpdateTable(ctx context.Context, exec repositories.SQLExecutor, t *models.Table) error {
	if _, ok := m.tables[t.ID]; !ok {
		return repositories.ErrNotFound
	}
	m.tables[t.ID] = *t
	return nil
}

func (m *memStore) UpdateTableStatus(ctx context.Context, exec repositories.SQLExecutor, id int64, status models.TableStatus) error {
	t, ok := m.tables[id]
	if !ok {
		return repositories.ErrNotFound
	}
	t.Status = status
	m.tables[id] = t
	return nil
}

func (m *memStore) DeleteTable(ctx context.Context, exec repositories.SQLExecutor, id int64) error {
	if _, ok := m.tables[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.tables, id)
	return nil
}

func (m *memStore) CountActiveOrders(ctx context.Context, exec repositories.SQLExecutor, tableID int64) (int, error) {
	n := 0
	for _, o := range m.orders {
		if o.TableID != nil && *o.TableID == tableID && !models.IsTerminalOrderStatus(o.Status) {
			n++
		}
	}
	return n, nil
}

// --- OrderRepository ---

func (m *memStore) CreateOrder(ctx context.Context, exec repositories.SQLExecutor, o *models.Order) error {
	o.ID = m.id()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = time.Now()
	}
	stored := *o
	stored.Items = nil
	m.orders[o.ID] = stored
	return nil
}

func (m *memStore) GetOrderByID(ctx context.Context, exec repositories.SQLExecutor, id int64) (*models.Order, error) {
	o, ok := m.orders[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	if o.TableID != nil {
		if t, ok := m.tables[*o.TableID]; ok {
			n := t.Number
			o.TableNumber = &n
		}
	}
	return &o, nil
}

func (m *memStore) LockOrder(ctx context.Context, exec repositories.SQLExecutor, id int64) (*models.Order, error) {
	return m.GetOrderByID(ctx, exec, id)
}

func (m *memStore) ListOrders(ctx context.Context, f models.OrderFilters) ([]models.Order, int, error) {
	var out []models.Order
	for id := range m.orders {
		o, _ := m.GetOrderByID(ctx, nil, id)
		if len(f.Statuses) > 0 {
			match := false
			for _, s := range f.Statuses {
				match = match || s == o.Status
			}
			if !match {
				continue
			}
		}
		if f.From != nil && o.CreatedAt.Before(*f.From) {
			continue
		}
		if f.To != nil && !o.CreatedAt.Before(*f.To) {
			continue
		}
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool {
		if f.OldestFirst {
			return out[i].ID < out[j].ID
		}
		return out[i].ID > out[j].ID
	})
	total := len(out)
	if f.PageSize > 0 {
		start := (f.Page - 1) * f.PageSize
		if start > len(out) {
			start = len(out)
		}
		end := start + f.PageSize
		if end > len(out) {
			end = len(out)
		}
		out = out[start:end]
	}
	return out, total, nil
}

func (m *memStore) UpdateOrder(ctx context.Context, exec repositories.SQLExecutor, o *models.Order) error {
	if _, ok := m.orders[o.ID]; !ok {
		return repositories.ErrNotFound
	}
	stored := *o
	stored.Items = nil
	stored.TableNumber = nil
	m.orders[o.ID] = stored
	return nil
}

func (m *memStore) UpdateOrderStatus(ctx context.Context, exec repositories.SQLExecutor, id int64, status string) error {
	o, ok := m.orders[id]
	if !ok {
		return repositories.ErrNotFound
	}
	o.Status = status
	m.orders[id] = o
	return nil
}

func (m *memStore) DeleteOrder(ctx context.Context, exec repositories.SQLExecutor, id int64) error {
	if _, ok := m.orders[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.orders, id)
	for itemID, item := range m.items {
		if item.OrderID == id {
			_ = m.DeleteOrderItem(ctx, exec, itemID)
		}
	}
	return nil
}

func (m *memStore) CreateOrderItem(ctx context.Context, exec repositories.SQLExecutor, item *models.OrderItem) error {
	if _, ok := m.orders[item.OrderID]; !ok {
		return repositories.ErrForeignKey
	}
	item.ID = m.id()
	stored := *item
	stored.Product, stored.Supplements, stored.Accompaniments = nil, nil, nil
	m.items[item.ID] = stored
	return nil
}

func (m *memStore) hydrate(item models.OrderItem) models.OrderItem {
	if p, ok := m.products[item.ProductID]; ok {
		item.Product = &p
	}
	item.Supplements = []models.OrderItemSupplement{}
	for _, s := range m.itemSupps {
		if s.OrderItemID == item.ID {
			item.Supplements = append(item.Supplements, s)
		}
	}
	item.Accompaniments = append([]models.OrderItemAccompaniment{}, m.itemAccs[item.ID]...)
	return item
}

func (m *memStore) GetOrderItemByID(ctx context.Context, exec repositories.SQLExecutor, id int64) (*models.OrderItem, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	item = m.hydrate(item)
	return &item, nil
}

func (m *memStore) GetOrderItems(ctx context.Context, exec repositories.SQLExecutor, orderIDs ...int64) ([]models.OrderItem, error) {
	want := map[int64]bool{}
	for _, id := range orderIDs {
		want[id] = true
	}
	out := []models.OrderItem{}
	for _, item := range m.items {
		if want[item.OrderID] {
			out = append(out, m.hydrate(item))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) UpdateOrderItem(ctx context.Context, exec repositories.SQLExecutor, item *models.OrderItem) error {
	stored, ok := m.items[item.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	stored.Quantity, stored.Status, stored.Total = item.Quantity, item.Status, item.Total
	m.items[item.ID] = stored
	return nil
}

func (m *memStore) DeleteOrderItem(ctx context.Context, exec repositories.SQLExecutor, id int64) error {
	if _, ok := m.items[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.items, id)
	delete(m.itemAccs, id)
	kept := m.itemSupps[:0]
	for _, s := range m.itemSupps {
		if s.OrderItemID != id {
			kept = append(kept, s)
		}
	}
	m.itemSupps = kept
	return nil
}

func (m *memStore) AddItemSupplement(ctx context.Context, exec repositories.SQLExecutor, s *models.OrderItemSupplement) error {
	s.ID = m.id()
	m.itemSupps = append(m.itemSupps, *s)
	return nil
}

func (m *memStore) ReplaceItemAccompaniments(ctx context.Context, exec repositories.SQLExecutor, itemID int64, accs []models.OrderItemAccompaniment) error {
	m.itemAccs[itemID] = append([]models.OrderItemAccompaniment(nil), accs...)
	return nil
}

// --- PaymentRepository ---

func (m *memStore) CreatePayment(ctx context.Context, exec repositories.SQLExecutor, p *models.Payment) error {
	p.ID = m.id()
	m.payments = append(m.payments, *p)
	return nil
}

func (m *memStore) SumPayments(ctx context.Context, exec repositories.SQLExecutor, orderID int64) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, p := range m.payments {
		if p.OrderID == orderID {
			total = total.Add(p.Amount)
		}
	}
	return total, nil
}

func groupByMethod(payments []models.Payment) []models.MethodTotal {
	byMethod := map[string]*models.MethodTotal{}
	for _, p := range payments {
		mt, ok := byMethod[p.Method]
		if !ok {
			mt = &models.MethodTotal{Method: p.Method}
			byMethod[p.Method] = mt
		}
		mt.Total = mt.Total.Add(p.Amount)
		mt.Count++
	}
	out := []models.MethodTotal{}
	for _, mt := range byMethod {
		out = append(out, *mt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Method < out[j].Method })
	return out
}

func (m *memStore) SumPaymentsByMethod(ctx context.Context, exec repositories.SQLExecutor, orderID int64) ([]models.MethodTotal, error) {
	var mine []models.Payment
	for _, p := range m.payments {
		if p.OrderID == orderID {
			mine = append(mine, p)
		}
	}
	return groupByMethod(mine), nil
}

func (m *memStore) ListPayments(ctx context.Context, f models.PaymentFilters) ([]models.Payment, int, error) {
	out := []models.Payment{}
	for _, p := range m.payments {
		if f.OrderID != nil && p.OrderID != *f.OrderID {
			continue
		}
		out = append(out, p)
	}
	return out, len(out), nil
}

func (m *memStore) PaymentStats(ctx context.Context, from, to *time.Time) ([]models.MethodTotal, error) {
	var in []models.Payment
	for _, p := range m.payments {
		if from != nil && p.CreatedAt.Before(*from) {
			continue
		}
		if to != nil && !p.CreatedAt.Before(*to) {
			continue
		}
		in = append(in, p)
	}
	return groupByMethod(in), nil
}

func (m *memStore) IncrementCashRegister(ctx context.Context, exec repositories.SQLExecutor, registerType string, amount decimal.Decimal) error {
	m.registers[registerType] = m.registers[registerType].Add(amount)
	return nil
}

func (m *memStore) ListCashRegisters(ctx context.Context) ([]models.CashRegister, error) {
	out := []models.CashRegister{}
	for typ, balance := range m.registers {
		out = append(out, models.CashRegister{Type: typ, Balance: balance})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Type < out[j].Type })
	return out, nil
}

// --- NotificationRepository ---

func (m *memStore) CreateNotification(ctx context.Context, exec repositories.SQLExecutor, n *models.Notification) error {
	n.ID = m.id()
	m.notifications[n.ID] = *n
	return nil
}

func (m *memStore) GetNotificationByID(ctx context.Context, id int64) (*models.Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &n, nil
}

func (m *memStore) ListNotificationsForRecipient(ctx context.Context, recipientID int64, recipientType string) ([]models.Notification, error) {
	out := []models.Notification{}
	for _, n := range m.notifications {
		if n.RecipientID == recipientID && (recipientType == "" || n.RecipientType == recipientType) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (m *memStore) UpdateNotificationStatus(ctx context.Context, exec repositories.SQLExecutor, id int64, status string) error {
	n, ok := m.notifications[id]
	if !ok {
		return repositories.ErrNotFound
	}
	n.Status = status
	m.notifications[id] = n
	return nil
}

func (m *memStore) DeleteNotification(ctx context.Context, exec repositories.SQLExecutor, id int64) error {
	if _, ok := m.notifications[id]; !ok {
		return repositories.ErrNotFound
	}
	delete(m.notifications, id)
	return nil
}

// --- OutboxRepository ---

func (m *memStore) EnqueueEvent(ctx context.Context, exec repositories.SQLExecutor, e *models.OutboxEvent) error {
	if m.failEnqueue != nil {
		return m.failEnqueue
	}
	e.ID = m.id()
	m.events = append(m.events, *e)
	return nil
}

func (m *memStore) ClaimPendingEvents(ctx context.Context, exec repositories.SQLExecutor, limit, maxAttempts int, at time.Time) ([]models.OutboxEvent, error) {
	return nil, errors.New("not used by service tests")
}

func (m *memStore) MarkFailed(ctx context.Context, exec repositories.SQLExecutor, id int64, reason string) error {
	return nil
}

// --- AuthRepository ---

func (m *memStore) CreateUser(ctx context.Context, exec repositories.SQLExecutor, u *models.User) error {
	for _, existing := range m.users {
		if existing.Email == strings.ToLower(u.Email) {
			return repositories.ErrDuplicateKey
		}
	}
	u.ID = m.id()
	m.users[u.ID] = *u
	return nil
}

func (m *memStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, repositories.ErrNotFound
}

func (m *memStore) FindUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &u, nil
}

// --- ReportRepository ---

func (m *memStore) DashboardCounts(ctx context.Context, dayStart, dayEnd time.Time) (*models.DashboardSummary, error) {
	s := &models.DashboardSummary{}
	for _, o := range m.orders {
		if !models.IsTerminalOrderStatus(o.Status) {
			s.ActiveOrdersCount++
		}
		if o.Status == models.OrderStatusPending {
			s.PendingOrdersCount++
		}
		if !o.CreatedAt.Before(dayStart) && o.CreatedAt.Before(dayEnd) {
			s.OrdersToday++
		}
	}
	for _, t := range m.tables {
		switch t.Status {
		case models.TableStatusFree:
			s.FreeTablesCount++
		case models.TableStatusOccupied:
			s.OccupiedTablesCount++
		}
	}
	return s, nil
}

var (
	_ repositories.TxManager              = (*memStore)(nil)
	_ repositories.OrderRepository        = (*memStore)(nil)
	_ repositories.CatalogRepository      = (*memStore)(nil)
	_ repositories.ModifierRepository     = (*memStore)(nil)
	_ repositories.TableRepository        = (*memStore)(nil)
	_ repositories.PaymentRepository      = (*memStore)(nil)
	_ repositories.NotificationRepository = (*memStore)(nil)
	_ repositories.OutboxRepository       = (*memStore)(nil)
	_ repositories.AuthRepository         = (*memStore)(nil)
	_ repositories.ReportRepository       = (*memStore)(nil)
)
