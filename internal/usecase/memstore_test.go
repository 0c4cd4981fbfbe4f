package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"marketplace/internal/domain/model"
	repo "marketplace/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// テスト用のインメモリDB。
// WithinTxはストア全体のロックを持ったまま複製した状態で動き、成功時だけ差し替える。
type memStore struct {
	mu sync.Mutex
	st *memState

	// DecreaseStockの直前に呼ばれる。エラーを返すとそのまま失敗させる。
	beforeDecrease func(productID int64) error
	// CartItems().Createの直前に呼ばれる。ロックは持っていない。
	beforeCartItemCreate func(item model.CartItem)
	txCount              int
}

type memState struct {
	seq         int64
	users       map[int64]model.User
	customers   map[int64]model.CustomerProfile // user_id -> profile
	sellers     map[int64]model.SellerProfile   // user_id -> profile
	products    map[int64]model.Product
	carts       map[int64]model.Cart
	cartItems   map[int64]model.CartItem
	orders      map[int64]model.Order
	orderItems  map[int64]model.OrderItem
	adjustments []model.InventoryAdjustment
	auditLogs   []model.AuditLog
}

var memEpoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func newMemStore() *memStore {
	return &memStore{st: &memState{
		users:      map[int64]model.User{},
		customers:  map[int64]model.CustomerProfile{},
		sellers:    map[int64]model.SellerProfile{},
		products:   map[int64]model.Product{},
		carts:      map[int64]model.Cart{},
		cartItems:  map[int64]model.CartItem{},
		orders:     map[int64]model.Order{},
		orderItems: map[int64]model.OrderItem{},
	}}
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *memState) clone() *memState {
	return &memState{
		seq:         s.seq,
		users:       cloneMap(s.users),
		customers:   cloneMap(s.customers),
		sellers:     cloneMap(s.sellers),
		products:    cloneMap(s.products),
		carts:       cloneMap(s.carts),
		cartItems:   cloneMap(s.cartItems),
		orders:      cloneMap(s.orders),
		orderItems:  cloneMap(s.orderItems),
		adjustments: append([]model.InventoryAdjustment(nil), s.adjustments...),
		auditLogs:   append([]model.AuditLog(nil), s.auditLogs...),
	}
}

// 採番とcreated_atを単調に進める
func (s *memState) next() (int64, time.Time) {
	s.seq++
	return s.seq, memEpoch.Add(time.Duration(s.seq) * time.Second)
}

func (s *memState) liveProduct(id int64) (model.Product, bool) {
	p, ok := s.products[id]
	if !ok || p.DeletedAt.Valid {
		return model.Product{}, false
	}
	return p, true
}

func (m *memStore) WithinTx(ctx context.Context, fn func(r repo.TxRepos) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.txCount++

	work := m.st.clone()
	if err := fn(memRepos{memAccess{s: m, tx: work}}); err != nil {
		return err
	}
	m.st = work
	return nil
}

// トランザクション外のrepo
func (m *memStore) repos() memRepos { return memRepos{memAccess{s: m}} }

// 状態を直接いじるとき用
func (m *memStore) view(fn func(st *memState)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	fn(m.st)
}

type memAccess struct {
	s  *memStore
	tx *memState
}

func (a memAccess) with(fn func(st *memState) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.s.mu.Lock()
	defer a.s.mu.Unlock()
	return fn(a.s.st)
}

type memRepos struct{ a memAccess }

func (r memRepos) Orders() repo.OrderRepository         { return memOrders{r.a} }
func (r memRepos) OrderItems() repo.OrderItemRepository { return memOrderItems{r.a} }
func (r memRepos) Carts() repo.CartRepository           { return memCarts{r.a} }
func (r memRepos) CartItems() repo.CartItemRepository   { return memCartItems{r.a} }
func (r memRepos) Inventory() repo.InventoryRepository  { return memInventory{r.a} }
func (r memRepos) Products() repo.ProductRepository     { return memProducts{r.a} }
func (r memRepos) Users() repo.UserRepository           { return memUsers{r.a} }
func (r memRepos) Profiles() repo.ProfileRepository     { return memProfiles{r.a} }
func (r memRepos) AuditLogs() repo.AuditLogRepository   { return memAuditLogs{r.a} }

// users

type memUsers struct{ memAccess }

func (r memUsers) Create(ctx context.Context, u *model.User) error {
	return r.with(func(st *memState) error {
		for _, x := range st.users {
			if x.Email == u.Email || x.Username == u.Username {
				return repo.ErrDuplicate
			}
		}
		u.ID, u.CreatedAt = st.next()
		u.UpdatedAt = u.CreatedAt
		st.users[u.ID] = *u
		return nil
	})
}

func (r memUsers) FindByID(ctx context.Context, id int64) (*model.User, error) {
	var out *model.User
	err := r.with(func(st *memState) error {
		u, ok := st.users[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (r memUsers) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	var out *model.User
	err := r.with(func(st *memState) error {
		for _, u := range st.users {
			if u.Email == email {
				u := u
				out = &u
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (r memUsers) Update(ctx context.Context, u *model.User) error {
	return r.with(func(st *memState) error {
		if _, ok := st.users[u.ID]; !ok {
			return repo.ErrNotFound
		}
		st.users[u.ID] = *u
		return nil
	})
}

// profiles

type memProfiles struct{ memAccess }

func (r memProfiles) FindCustomerByUserID(ctx context.Context, userID int64) (*model.CustomerProfile, error) {
	var out *model.CustomerProfile
	err := r.with(func(st *memState) error {
		p, ok := st.customers[userID]
		if !ok {
			return repo.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memProfiles) FindSellerByUserID(ctx context.Context, userID int64) (*model.SellerProfile, error) {
	var out *model.SellerProfile
	err := r.with(func(st *memState) error {
		p, ok := st.sellers[userID]
		if !ok {
			return repo.ErrNotFound
		}
		out = &p
		return nil
	})
	return out, err
}

func (r memProfiles) CreateCustomer(ctx context.Context, p *model.CustomerProfile) error {
	return r.with(func(st *memState) error {
		if _, ok := st.customers[p.UserID]; ok {
			return repo.ErrDuplicate
		}
		p.ID, p.CreatedAt = st.next()
		st.customers[p.UserID] = *p
		return nil
	})
}

func (r memProfiles) CreateSeller(ctx context.Context, p *model.SellerProfile) error {
	return r.with(func(st *memState) error {
		if _, ok := st.sellers[p.UserID]; ok {
			return repo.ErrDuplicate
		}
		p.ID, p.CreatedAt = st.next()
		st.sellers[p.UserID] = *p
		return nil
	})
}

func (r memProfiles) UpdateCustomer(ctx context.Context, p *model.CustomerProfile) error {
	return r.with(func(st *memState) error {
		cur, ok := st.customers[p.UserID]
		if !ok {
			return repo.ErrNotFound
		}
		cur.FirstName, cur.LastName = p.FirstName, p.LastName
		cur.ShippingAddress, cur.BillingAddress = p.ShippingAddress, p.BillingAddress
		st.customers[p.UserID] = cur
		return nil
	})
}

func (r memProfiles) UpdateSeller(ctx context.Context, p *model.SellerProfile) error {
	return r.with(func(st *memState) error {
		cur, ok := st.sellers[p.UserID]
		if !ok {
			return repo.ErrNotFound
		}
		cur.StoreName, cur.StoreDescription, cur.BusinessLicense = p.StoreName, p.StoreDescription, p.BusinessLicense
		st.sellers[p.UserID] = cur
		return nil
	})
}

// products

type memProducts struct{ memAccess }

func (r memProducts) ListPublic(ctx context.Context, page int, limit int) ([]model.Product, int64, error) {
	var out []model.Product
	var total int64
	err := r.with(func(st *memState) error {
		all := make([]model.Product, 0, len(st.products))
		for _, p := range st.products {
			if !p.DeletedAt.Valid {
				all = append(all, p)
			}
		}
		sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
		total = int64(len(all))
		out = paginate(all, page, limit)
		return nil
	})
	return out, total, err
}

func (r memProducts) ListBySellerID(ctx context.Context, sellerID int64) ([]model.Product, error) {
	out := []model.Product{}
	err := r.with(func(st *memState) error {
		for _, p := range st.products {
			if p.SellerID == sellerID && !p.DeletedAt.Valid {
				out = append(out, p)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
		return nil
	})
	return out, err
}

func (r memProducts) FindByID(ctx context.Context, id int64) (model.Product, error) {
	var out model.Product
	err := r.with(func(st *memState) error {
		p, ok := st.liveProduct(id)
		if !ok {
			return repo.ErrNotFound
		}
		out = p
		return nil
	})
	return out, err
}

func (r memProducts) FindByIDs(ctx context.Context, ids []int64) ([]model.Product, error) {
	out := []model.Product{}
	err := r.with(func(st *memState) error {
		for _, id := range ids {
			if p, ok := st.liveProduct(id); ok {
				out = append(out, p)
			}
		}
		return nil
	})
	return out, err
}

func (r memProducts) Create(ctx context.Context, p *model.Product) error {
	return r.with(func(st *memState) error {
		p.ID, p.CreatedAt = st.next()
		p.UpdatedAt = p.CreatedAt
		st.products[p.ID] = *p
		return nil
	})
}

func (r memProducts) Update(ctx context.Context, p *model.Product) error {
	return r.with(func(st *memState) error {
		cur, ok := st.liveProduct(p.ID)
		if !ok {
			return repo.ErrNotFound
		}
		cur.Name, cur.Description, cur.Category, cur.ImageURL, cur.Price = p.Name, p.Description, p.Category, p.ImageURL, p.Price
		st.products[p.ID] = cur
		return nil
	})
}

func (r memProducts) SoftDelete(ctx context.Context, id int64) error {
	return r.with(func(st *memState) error {
		cur, ok := st.liveProduct(id)
		if !ok {
			return repo.ErrNotFound
		}
		cur.DeletedAt = gorm.DeletedAt{Time: memEpoch, Valid: true}
		st.products[id] = cur
		return nil
	})
}

// inventory

type memInventory struct{ memAccess }

func (r memInventory) LockForUpdate(ctx context.Context, ids []int64) ([]model.Product, error) {
	out := []model.Product{}
	err := r.with(func(st *memState) error {
		for _, id := range ids {
			if p, ok := st.liveProduct(id); ok {
				out = append(out, p)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r memInventory) DecreaseStock(ctx context.Context, productID int64, qty int64) error {
	if hook := r.s.beforeDecrease; hook != nil {
		if err := hook(productID); err != nil {
			return err
		}
	}
	return r.with(func(st *memState) error {
		p, ok := st.liveProduct(productID)
		if !ok || p.Stock < qty {
			return repo.ErrConflict
		}
		p.Stock -= qty
		if p.Stock < 0 {
			p.Stock = 0
		}
		st.products[productID] = p
		return nil
	})
}

func (r memInventory) IncreaseStock(ctx context.Context, productID int64, qty int64) error {
	return r.with(func(st *memState) error {
		p, ok := st.products[productID]
		if !ok {
			return repo.ErrNotFound
		}
		p.Stock += qty
		st.products[productID] = p
		return nil
	})
}

func (r memInventory) SetStock(ctx context.Context, productID int64, newStock int64) error {
	return r.with(func(st *memState) error {
		p, ok := st.liveProduct(productID)
		if !ok {
			return repo.ErrNotFound
		}
		p.Stock = newStock
		st.products[productID] = p
		return nil
	})
}

func (r memInventory) CreateAdjustment(ctx context.Context, adj model.InventoryAdjustment) error {
	return r.with(func(st *memState) error {
		adj.ID, adj.CreatedAt = st.next()
		st.adjustments = append(st.adjustments, adj)
		return nil
	})
}

// carts

type memCarts struct{ memAccess }

func (r memCarts) FindByID(ctx context.Context, cartID int64) (model.Cart, error) {
	var out model.Cart
	err := r.with(func(st *memState) error {
		c, ok := st.carts[cartID]
		if !ok {
			return repo.ErrNotFound
		}
		out = c
		return nil
	})
	return out, err
}

func findCart(st *memState, customerID int64) (model.Cart, bool) {
	for _, c := range st.carts {
		if c.CustomerID == customerID {
			return c, true
		}
	}
	return model.Cart{}, false
}

func (r memCarts) FindByCustomerID(ctx context.Context, customerID int64) (model.Cart, error) {
	var out model.Cart
	err := r.with(func(st *memState) error {
		c, ok := findCart(st, customerID)
		if !ok {
			return repo.ErrNotFound
		}
		out = c
		return nil
	})
	return out, err
}

// ストア全体のロックで直列化済み
func (r memCarts) LockByCustomerID(ctx context.Context, customerID int64) (model.Cart, error) {
	return r.FindByCustomerID(ctx, customerID)
}

func (r memCarts) GetOrCreateByCustomerID(ctx context.Context, customerID int64) (model.Cart, error) {
	var out model.Cart
	err := r.with(func(st *memState) error {
		if c, ok := findCart(st, customerID); ok {
			out = c
			return nil
		}
		c := model.Cart{CustomerID: customerID}
		c.ID, c.CreatedAt = st.next()
		st.carts[c.ID] = c
		out = c
		return nil
	})
	return out, err
}

func (r memCarts) Delete(ctx context.Context, cartID int64) error {
	return r.with(func(st *memState) error {
		if _, ok := st.carts[cartID]; !ok {
			return repo.ErrNotFound
		}
		for id, it := range st.cartItems {
			if it.CartID == cartID {
				delete(st.cartItems, id)
			}
		}
		delete(st.carts, cartID)
		return nil
	})
}

type memCartItems struct{ memAccess }

func (r memCartItems) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	out := []model.CartItem{}
	err := r.with(func(st *memState) error {
		for _, it := range st.cartItems {
			if it.CartID == cartID {
				out = append(out, it)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

func (r memCartItems) FindByID(ctx context.Context, id int64) (model.CartItem, error) {
	var out model.CartItem
	err := r.with(func(st *memState) error {
		it, ok := st.cartItems[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = it
		return nil
	})
	return out, err
}

func (r memCartItems) FindByCartAndProduct(ctx context.Context, cartID int64, productID int64) (model.CartItem, error) {
	var out model.CartItem
	err := r.with(func(st *memState) error {
		for _, it := range st.cartItems {
			if it.CartID == cartID && it.ProductID == productID {
				out = it
				return nil
			}
		}
		return repo.ErrNotFound
	})
	return out, err
}

func (r memCartItems) Create(ctx context.Context, item *model.CartItem) error {
	if hook := r.s.beforeCartItemCreate; hook != nil {
		hook(*item)
	}
	return r.with(func(st *memState) error {
		for _, it := range st.cartItems {
			if it.CartID == item.CartID && it.ProductID == item.ProductID {
				return repo.ErrDuplicate
			}
		}
		item.ID, item.CreatedAt = st.next()
		st.cartItems[item.ID] = *item
		return nil
	})
}

func (r memCartItems) UpdateQuantity(ctx context.Context, id int64, qty int64, subtotal decimal.Decimal) error {
	return r.with(func(st *memState) error {
		it, ok := st.cartItems[id]
		if !ok {
			return repo.ErrNotFound
		}
		it.Quantity, it.Subtotal = qty, subtotal
		st.cartItems[id] = it
		return nil
	})
}

func (r memCartItems) IncrementQuantity(ctx context.Context, id int64, add int64, unitPrice decimal.Decimal) (model.CartItem, error) {
	var out model.CartItem
	err := r.with(func(st *memState) error {
		it, ok := st.cartItems[id]
		if !ok {
			return repo.ErrNotFound
		}
		it.Quantity += add
		it.Subtotal = unitPrice.Mul(decimal.NewFromInt(it.Quantity))
		st.cartItems[id] = it
		out = it
		return nil
	})
	return out, err
}

func (r memCartItems) DeleteByID(ctx context.Context, id int64) error {
	return r.with(func(st *memState) error {
		if _, ok := st.cartItems[id]; !ok {
			return repo.ErrNotFound
		}
		delete(st.cartItems, id)
		return nil
	})
}

// orders

type memOrders struct{ memAccess }

func (r memOrders) Create(ctx context.Context, o *model.Order) error {
	return r.with(func(st *memState) error {
		if o.IdempotencyKey != nil {
			for _, x := range st.orders {
				if x.CustomerID == o.CustomerID && x.IdempotencyKey != nil && *x.IdempotencyKey == *o.IdempotencyKey {
					return repo.ErrDuplicate
				}
			}
		}
		o.ID, o.CreatedAt = st.next()
		o.UpdatedAt = o.CreatedAt
		st.orders[o.ID] = *o
		return nil
	})
}

func (r memOrders) FindByID(ctx context.Context, id int64) (model.Order, error) {
	var out model.Order
	err := r.with(func(st *memState) error {
		o, ok := st.orders[id]
		if !ok {
			return repo.ErrNotFound
		}
		out = o
		return nil
	})
	return out, err
}

// 全体ロック下で動くのでFindByIDと同じ
func (r memOrders) LockByID(ctx context.Context, id int64) (model.Order, error) {
	return r.FindByID(ctx, id)
}

func (r memOrders) FindByIdempotencyKey(ctx context.Context, customerID int64, key string) (model.Order, bool, error) {
	var out model.Order
	var found bool
	err := r.with(func(st *memState) error {
		for _, o := range st.orders {
			if o.CustomerID == customerID && o.IdempotencyKey != nil && *o.IdempotencyKey == key {
				out, found = o, true
				return nil
			}
		}
		return nil
	})
	return out, found, err
}

func newestFirst(orders []model.Order) {
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
}

func (r memOrders) ListByCustomerID(ctx context.Context, customerID int64, page int, limit int) ([]model.Order, int64, error) {
	var out []model.Order
	var total int64
	err := r.with(func(st *memState) error {
		all := []model.Order{}
		for _, o := range st.orders {
			if o.CustomerID == customerID {
				all = append(all, o)
			}
		}
		newestFirst(all)
		total = int64(len(all))
		out = paginate(all, page, limit)
		return nil
	})
	return out, total, err
}

func (r memOrders) ListBySellerID(ctx context.Context, sellerID int64, page int, limit int) ([]model.Order, int64, error) {
	var out []model.Order
	var total int64
	err := r.with(func(st *memState) error {
		has := map[int64]bool{}
		for _, it := range st.orderItems {
			if it.SellerID == sellerID {
				has[it.OrderID] = true
			}
		}
		all := []model.Order{}
		for id := range has {
			all = append(all, st.orders[id])
		}
		newestFirst(all)
		total = int64(len(all))
		out = paginate(all, page, limit)
		return nil
	})
	return out, total, err
}

func (r memOrders) UpdateStatus(ctx context.Context, id int64, from model.OrderStatus, to model.OrderStatus, billing model.BillingStatus) error {
	return r.with(func(st *memState) error {
		o, ok := st.orders[id]
		if !ok || o.Status != from {
			return repo.ErrConflict
		}
		o.Status, o.BillingStatus = to, billing
		st.orders[id] = o
		return nil
	})
}

type memOrderItems struct{ memAccess }

func (r memOrderItems) CreateBulk(ctx context.Context, orderID int64, items []model.OrderItem) error {
	return r.with(func(st *memState) error {
		for i := range items {
			items[i].OrderID = orderID
			items[i].ID, items[i].CreatedAt = st.next()
			st.orderItems[items[i].ID] = items[i]
		}
		return nil
	})
}

func (r memOrderItems) ListByOrderID(ctx context.Context, orderID int64) ([]model.OrderItem, error) {
	out := []model.OrderItem{}
	err := r.with(func(st *memState) error {
		for _, it := range st.orderItems {
			if it.OrderID == orderID {
				out = append(out, it)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		return nil
	})
	return out, err
}

// audit logs

type memAuditLogs struct{ memAccess }

func (r memAuditLogs) Create(ctx context.Context, l model.AuditLog) error {
	return r.with(func(st *memState) error {
		l.ID, _ = st.next()
		st.auditLogs = append(st.auditLogs, l)
		return nil
	})
}

func (r memAuditLogs) List(ctx context.Context, f repo.AuditLogFilter) ([]model.AuditLog, error) {
	out := []model.AuditLog{}
	err := r.with(func(st *memState) error {
		for i := len(st.auditLogs) - 1; i >= 0; i-- {
			l := st.auditLogs[i]
			if f.Action != nil && l.Action != *f.Action {
				continue
			}
			if f.ResourceType != nil && l.ResourceType != *f.ResourceType {
				continue
			}
			if f.ResourceID != nil && l.ResourceID != *f.ResourceID {
				continue
			}
			if f.ActorUserID != nil && l.ActorUserID != *f.ActorUserID {
				continue
			}
			out = append(out, l)
			if f.Limit > 0 && len(out) == f.Limit {
				break
			}
		}
		return nil
	})
	return out, err
}

func paginate[T any](all []T, page, limit int) []T {
	start := (page - 1) * limit
	if start >= len(all) {
		return []T{}
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end]
}

// fixtures

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// 購入者プロフィールを持つユーザーを作る
func (m *memStore) seedCustomer(username string) ActingCustomer {
	var actor ActingCustomer
	m.view(func(st *memState) {
		u := model.User{Username: username, Email: username + "@example.com", ActiveRole: model.RoleCustomer, IsActive: true}
		u.ID, u.CreatedAt = st.next()
		st.users[u.ID] = u
		cp := model.CustomerProfile{UserID: u.ID, FirstName: username, ShippingAddress: "1 Main St"}
		cp.ID, cp.CreatedAt = st.next()
		st.customers[u.ID] = cp
		actor = ActingCustomer{UserID: u.ID, Role: model.RoleCustomer, CustomerID: cp.ID}
	})
	return actor
}

// 出品者プロフィールを持つユーザーを作る。withCustomerなら購入者プロフィールも。
func (m *memStore) seedSeller(username string, withCustomer bool) ActingCustomer {
	var actor ActingCustomer
	m.view(func(st *memState) {
		u := model.User{Username: username, Email: username + "@example.com", ActiveRole: model.RoleSeller, IsActive: true}
		u.ID, u.CreatedAt = st.next()
		st.users[u.ID] = u
		sp := model.SellerProfile{UserID: u.ID, StoreName: username + " store"}
		sp.ID, sp.CreatedAt = st.next()
		st.sellers[u.ID] = sp
		actor = ActingCustomer{UserID: u.ID, Role: model.RoleSeller, SellerID: sp.ID}
		if withCustomer {
			cp := model.CustomerProfile{UserID: u.ID, FirstName: username}
			cp.ID, cp.CreatedAt = st.next()
			st.customers[u.ID] = cp
			actor.CustomerID = cp.ID
		}
	})
	return actor
}

func (m *memStore) seedProduct(sellerID int64, name, price string, stock int64) model.Product {
	var p model.Product
	m.view(func(st *memState) {
		p = model.Product{SellerID: sellerID, Name: name, Price: dec(price), Stock: stock}
		p.ID, p.CreatedAt = st.next()
		st.products[p.ID] = p
	})
	return p
}

func (m *memStore) stockOf(productID int64) int64 {
	var stock int64
	m.view(func(st *memState) { stock = st.products[productID].Stock })
	return stock
}

func (m *memStore) countOrders() int {
	var n int
	m.view(func(st *memState) { n = len(st.orders) })
	return n
}

func (m *memStore) cartItemCount(customerID int64) int {
	var n int
	m.view(func(st *memState) {
		c, ok := findCart(st, customerID)
		if !ok {
			return
		}
		for _, it := range st.cartItems {
			if it.CartID == c.ID {
				n++
			}
		}
	})
	return n
}

func (m *memStore) hasCart(customerID int64) bool {
	var ok bool
	m.view(func(st *memState) { _, ok = findCart(st, customerID) })
	return ok
}
