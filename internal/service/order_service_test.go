package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"el-diego/internal/model"
	"el-diego/internal/pricing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	// Return a MockTx interface value, not a pointer
	if tx, ok := args.Get(0).(pgx.Tx); ok {
		return tx, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockOrderRepository) CreateOrder(ctx context.Context, tx pgx.Tx, order *model.Order) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) CreateOrderItems(ctx context.Context, tx pgx.Tx, items []model.OrderItem) error {
	args := m.Called(ctx, tx, items)
	return args.Error(0)
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, []model.OrderItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*model.Order), args.Get(1).([]model.OrderItem), args.Error(2)
}

func (m *MockOrderRepository) GetPendingProductSets(ctx context.Context, buyerID uuid.UUID) ([][]uuid.UUID, error) {
	args := m.Called(ctx, buyerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]uuid.UUID), args.Error(1)
}

// MockGuard is a mock implementation of DuplicateGuard.
type MockGuard struct {
	mock.Mock
}

func (m *MockGuard) Check(ctx context.Context, buyerID uuid.UUID, productIDs []uuid.UUID) error {
	args := m.Called(ctx, buyerID, productIDs)
	return args.Error(0)
}

func (m *MockGuard) Release(ctx context.Context, buyerID uuid.UUID, productIDs []uuid.UUID) error {
	args := m.Called(ctx, buyerID, productIDs)
	return args.Error(0)
}

// MockPricer is a mock implementation of Pricer.
type MockPricer struct {
	mock.Mock
}

func (m *MockPricer) Price(ctx context.Context, lines []model.OrderItemRequest) (*pricing.Quote, error) {
	args := m.Called(ctx, lines)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Quote), args.Error(1)
}

// MockNotifier is a mock implementation of Notifier.
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Enqueue(order *model.Order, recipient string) {
	m.Called(order, recipient)
}

// MockTx is a minimal mock implementation of pgx.Tx for testing.
type MockTx struct {
	mock.Mock
	committed  bool
	rolledBack bool
}

func (m *MockTx) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	m.committed = true
	return args.Error(0)
}

func (m *MockTx) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	m.rolledBack = true
	return args.Error(0)
}

// Stub methods to satisfy pgx.Tx interface - these are not used in our tests
func (m *MockTx) Begin(ctx context.Context) (pgx.Tx, error) { return nil, nil }
func (m *MockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (m *MockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (m *MockTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (m *MockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (m *MockTx) Exec(ctx context.Context, sql string, arguments ...any) (commandTag pgconn.CommandTag, err error) {
	return
}
func (m *MockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (m *MockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row { return nil }
func (m *MockTx) Conn() *pgx.Conn                                               { return nil }

// orderFixture bundles the mocks and canned data for placement tests.
type orderFixture struct {
	orderRepo   *MockOrderRepository
	productRepo *MockProductRepository
	userRepo    *MockUserRepository
	guard       *MockGuard
	pricer      *MockPricer
	notifier    *MockNotifier
	tx          *MockTx
	service     OrderService

	buyerID  uuid.UUID
	address  *model.DeliveryAddress
	products []model.Product
	quote    *pricing.Quote
	req      *model.OrderRequest
}

func newOrderFixture(t *testing.T) *orderFixture {
	t.Helper()

	f := &orderFixture{
		orderRepo:   new(MockOrderRepository),
		productRepo: new(MockProductRepository),
		userRepo:    new(MockUserRepository),
		guard:       new(MockGuard),
		pricer:      new(MockPricer),
		notifier:    new(MockNotifier),
		tx:          new(MockTx),
		buyerID:     uuid.New(),
	}

	f.service = NewOrderService(f.orderRepo, f.productRepo, f.userRepo, f.guard, f.pricer, f.notifier, zerolog.Nop())

	f.address = &model.DeliveryAddress{
		ID:     uuid.New(),
		UserID: f.buyerID,
		Active: true,
	}

	f.products = []model.Product{
		{ID: uuid.New(), SKU: "SKU-A", Name: "Product A", Price: decimal.RequireFromString("10.00"), Active: true},
		{ID: uuid.New(), SKU: "SKU-B", Name: "Product B", Price: decimal.RequireFromString("5.00"), Active: true},
	}

	f.req = &model.OrderRequest{
		Items: []model.OrderItemRequest{
			{SKU: "SKU-A", Quantity: 2},
			{SKU: "SKU-B", Quantity: 1},
		},
	}

	f.quote = &pricing.Quote{
		Items: []model.OrderItem{
			{ID: uuid.New(), ProductID: f.products[0].ID, Quantity: 2, UnitPrice: f.products[0].Price, TotalPrice: decimal.RequireFromString("20.00")},
			{ID: uuid.New(), ProductID: f.products[1].ID, Quantity: 1, UnitPrice: f.products[1].Price, TotalPrice: decimal.RequireFromString("5.00")},
		},
		SubTotal:      decimal.RequireFromString("25.00"),
		DiscountTotal: decimal.Zero,
		TaxTotal:      decimal.Zero,
		Total:         decimal.RequireFromString("25.00"),
	}

	return f
}

func (f *orderFixture) productIDs() []uuid.UUID {
	return []uuid.UUID{f.products[0].ID, f.products[1].ID}
}

func TestOrderService_PlaceOrder_Success(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	f.userRepo.On("GetActiveDeliveryAddress", ctx, f.buyerID).Return(f.address, nil)
	f.productRepo.On("GetBySKUs", ctx, []string{"SKU-A", "SKU-B"}).Return(f.products, nil)
	f.guard.On("Check", ctx, f.buyerID, f.productIDs()).Return(nil)
	f.pricer.On("Price", ctx, f.req.Items).Return(f.quote, nil)
	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.orderRepo.On("CreateOrder", ctx, f.tx, mock.AnythingOfType("*model.Order")).Return(nil)
	f.orderRepo.On("CreateOrderItems", ctx, f.tx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	f.tx.On("Commit", ctx).Return(nil)
	f.userRepo.On("GetByID", ctx, f.buyerID).
		Return(&model.User{ID: f.buyerID, Email: "buyer@example.com"}, nil)
	f.notifier.On("Enqueue", mock.AnythingOfType("*model.Order"), "buyer@example.com").Return()

	resp, err := f.service.PlaceOrder(ctx, f.buyerID, f.req)

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.NotEqual(t, uuid.Nil, resp.Order.ID)
	assert.Equal(t, f.buyerID, resp.Order.BuyerID)
	assert.Equal(t, f.address.ID, resp.Order.DeliveryAddressID)
	assert.Equal(t, model.OrderStatusPending, resp.Order.Status)
	assert.Equal(t, model.PaymentStatusUnpaid, resp.Order.PaymentStatus)
	assert.True(t, resp.Order.Total.Equal(decimal.RequireFromString("25.00")))

	// Every persisted item points at the new order
	require.Len(t, resp.Items, 2)
	for _, item := range resp.Items {
		assert.Equal(t, resp.Order.ID, item.OrderID)
	}

	f.orderRepo.AssertExpectations(t)
	f.guard.AssertExpectations(t)
	f.pricer.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
	f.tx.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_NoDeliveryAddress(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	f.userRepo.On("GetActiveDeliveryAddress", ctx, f.buyerID).Return(nil, nil)

	resp, err := f.service.PlaceOrder(ctx, f.buyerID, f.req)

	assert.ErrorIs(t, err, model.ErrNoDeliveryAddress)
	assert.Nil(t, resp)
	f.productRepo.AssertNotCalled(t, "GetBySKUs", mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_PlaceOrder_ProductNotFound(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	f.userRepo.On("GetActiveDeliveryAddress", ctx, f.buyerID).Return(f.address, nil)
	f.productRepo.On("GetBySKUs", ctx, []string{"SKU-A", "SKU-B"}).
		Return(nil, model.ErrProductNotFound)

	resp, err := f.service.PlaceOrder(ctx, f.buyerID, f.req)

	assert.ErrorIs(t, err, model.ErrProductNotFound)
	assert.Nil(t, resp)
	f.guard.AssertNotCalled(t, "Check", mock.Anything, mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
}

func TestOrderService_PlaceOrder_Duplicate(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	f.userRepo.On("GetActiveDeliveryAddress", ctx, f.buyerID).Return(f.address, nil)
	f.productRepo.On("GetBySKUs", ctx, []string{"SKU-A", "SKU-B"}).Return(f.products, nil)
	f.guard.On("Check", ctx, f.buyerID, f.productIDs()).Return(model.ErrDuplicateOrder)

	resp, err := f.service.PlaceOrder(ctx, f.buyerID, f.req)

	// The duplicate error propagates unchanged; nothing is persisted and the
	// marker is not released.
	assert.ErrorIs(t, err, model.ErrDuplicateOrder)
	assert.Nil(t, resp)
	f.pricer.AssertNotCalled(t, "Price", mock.Anything, mock.Anything)
	f.orderRepo.AssertNotCalled(t, "BeginTx", mock.Anything)
	f.guard.AssertNotCalled(t, "Release", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrder_PersistenceFailureReleasesGuard(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	dbErr := errors.New("database error")

	f.userRepo.On("GetActiveDeliveryAddress", ctx, f.buyerID).Return(f.address, nil)
	f.productRepo.On("GetBySKUs", ctx, []string{"SKU-A", "SKU-B"}).Return(f.products, nil)
	f.guard.On("Check", ctx, f.buyerID, f.productIDs()).Return(nil)
	f.pricer.On("Price", ctx, f.req.Items).Return(f.quote, nil)
	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.orderRepo.On("CreateOrder", ctx, f.tx, mock.AnythingOfType("*model.Order")).Return(dbErr)
	f.tx.On("Rollback", ctx).Return(nil)
	f.guard.On("Release", ctx, f.buyerID, f.productIDs()).Return(nil)

	resp, err := f.service.PlaceOrder(ctx, f.buyerID, f.req)

	require.Error(t, err)
	assert.Nil(t, resp)

	// The failure surfaces as an order-creation error carrying the cause
	var creationErr *model.OrderCreationError
	require.ErrorAs(t, err, &creationErr)
	assert.ErrorIs(t, creationErr.Cause, dbErr)

	assert.True(t, f.tx.rolledBack)
	f.guard.AssertExpectations(t)
	f.notifier.AssertNotCalled(t, "Enqueue", mock.Anything, mock.Anything)
}

func TestOrderService_PlaceOrder_CommitFailureReleasesGuard(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	commitErr := errors.New("commit failed")

	f.userRepo.On("GetActiveDeliveryAddress", ctx, f.buyerID).Return(f.address, nil)
	f.productRepo.On("GetBySKUs", ctx, []string{"SKU-A", "SKU-B"}).Return(f.products, nil)
	f.guard.On("Check", ctx, f.buyerID, f.productIDs()).Return(nil)
	f.pricer.On("Price", ctx, f.req.Items).Return(f.quote, nil)
	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.orderRepo.On("CreateOrder", ctx, f.tx, mock.AnythingOfType("*model.Order")).Return(nil)
	f.orderRepo.On("CreateOrderItems", ctx, f.tx, mock.AnythingOfType("[]model.OrderItem")).Return(nil)
	f.tx.On("Commit", ctx).Return(commitErr)
	f.tx.On("Rollback", ctx).Return(pgx.ErrTxClosed)
	f.guard.On("Release", ctx, f.buyerID, f.productIDs()).Return(nil)

	resp, err := f.service.PlaceOrder(ctx, f.buyerID, f.req)

	require.Error(t, err)
	assert.Nil(t, resp)

	var creationErr *model.OrderCreationError
	require.ErrorAs(t, err, &creationErr)
	assert.ErrorIs(t, creationErr.Cause, commitErr)
	f.guard.AssertExpectations(t)
}

func TestOrderService_PlaceOrder_ReleaseFailureDoesNotMaskCause(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	dbErr := errors.New("database error")

	f.userRepo.On("GetActiveDeliveryAddress", ctx, f.buyerID).Return(f.address, nil)
	f.productRepo.On("GetBySKUs", ctx, []string{"SKU-A", "SKU-B"}).Return(f.products, nil)
	f.guard.On("Check", ctx, f.buyerID, f.productIDs()).Return(nil)
	f.pricer.On("Price", ctx, f.req.Items).Return(f.quote, nil)
	f.orderRepo.On("BeginTx", ctx).Return(f.tx, nil)
	f.orderRepo.On("CreateOrder", ctx, f.tx, mock.AnythingOfType("*model.Order")).Return(dbErr)
	f.tx.On("Rollback", ctx).Return(nil)
	f.guard.On("Release", ctx, f.buyerID, f.productIDs()).Return(errors.New("redis down"))

	_, err := f.service.PlaceOrder(ctx, f.buyerID, f.req)

	var creationErr *model.OrderCreationError
	require.ErrorAs(t, err, &creationErr)
	assert.ErrorIs(t, creationErr.Cause, dbErr)
}

func TestOrderService_PlaceOrder_ValidationErrors(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture(t)

	tests := []struct {
		name        string
		req         *model.OrderRequest
		expectedErr error
	}{
		{
			name:        "Nil request",
			req:         nil,
			expectedErr: nil, // Will error with "order request is nil"
		},
		{
			name: "Empty items",
			req: &model.OrderRequest{
				Items: []model.OrderItemRequest{},
			},
			expectedErr: nil, // Will error with "order must contain at least one item"
		},
		{
			name: "Empty SKU",
			req: &model.OrderRequest{
				Items: []model.OrderItemRequest{
					{SKU: "", Quantity: 1},
				},
			},
			expectedErr: nil, // Will error with "SKU is required"
		},
		{
			name: "Zero quantity",
			req: &model.OrderRequest{
				Items: []model.OrderItemRequest{
					{SKU: "SKU-A", Quantity: 0},
				},
			},
			expectedErr: model.ErrInvalidQuantity,
		},
		{
			name: "Negative quantity",
			req: &model.OrderRequest{
				Items: []model.OrderItemRequest{
					{SKU: "SKU-A", Quantity: -5},
				},
			},
			expectedErr: model.ErrInvalidQuantity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.service.PlaceOrder(ctx, f.buyerID, tt.req)

			require.Error(t, err)
			assert.Nil(t, resp)
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
			}
		})
	}

	f.userRepo.AssertNotCalled(t, "GetActiveDeliveryAddress", mock.Anything, mock.Anything)
}

func TestOrderService_GetByID(t *testing.T) {
	ctx := context.Background()

	orderID := uuid.New()
	buyerID := uuid.New()
	addressID := uuid.New()
	productID := uuid.New()

	order := &model.Order{
		ID:                orderID,
		BuyerID:           buyerID,
		DeliveryAddressID: addressID,
		Status:            model.OrderStatusPending,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}

	items := []model.OrderItem{
		{ID: uuid.New(), OrderID: orderID, ProductID: productID, Quantity: 2},
	}

	products := []model.Product{
		{ID: productID, SKU: "SKU-A", Name: "Product A", Price: decimal.RequireFromString("10.00")},
	}

	address := &model.DeliveryAddress{ID: addressID, UserID: buyerID, Active: true}

	t.Run("Success", func(t *testing.T) {
		f := newOrderFixture(t)

		f.orderRepo.On("GetByID", ctx, orderID).Return(order, items, nil)
		f.productRepo.On("GetByIDs", ctx, []uuid.UUID{productID}).Return(products, nil)
		f.userRepo.On("GetDeliveryAddress", ctx, addressID).Return(address, nil)

		resp, err := f.service.GetByID(ctx, orderID)

		require.NoError(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, orderID, resp.Order.ID)
		assert.Equal(t, items, resp.Items)
		assert.Equal(t, products, resp.Products)
		assert.Equal(t, address, resp.DeliveryAddress)
	})

	t.Run("Order not found", func(t *testing.T) {
		f := newOrderFixture(t)

		f.orderRepo.On("GetByID", ctx, orderID).Return(nil, nil, nil)

		resp, err := f.service.GetByID(ctx, orderID)

		assert.ErrorIs(t, err, model.ErrOrderNotFound)
		assert.Nil(t, resp)
	})

	t.Run("Repository error", func(t *testing.T) {
		f := newOrderFixture(t)

		f.orderRepo.On("GetByID", ctx, orderID).Return(nil, nil, errors.New("database error"))

		resp, err := f.service.GetByID(ctx, orderID)

		require.Error(t, err)
		assert.Nil(t, resp)
	})
}
