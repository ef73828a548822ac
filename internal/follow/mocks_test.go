package follow

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/followbot/gofollow/clob/types"
	"github.com/followbot/gofollow/pkg/sdk/api"
)

// mockLister serves canned position listings per wallet.
type mockLister struct {
	mu        sync.Mutex
	positions map[string][]api.OpenPosition
	errs      map[string]error
	calls     int
}

func newMockLister() *mockLister {
	return &mockLister{
		positions: make(map[string][]api.OpenPosition),
		errs:      make(map[string]error),
	}
}

func (m *mockLister) set(wallet string, positions []api.OpenPosition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.positions[wallet] = positions
}

func (m *mockLister) failNext(wallet string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[wallet] = err
}

func (m *mockLister) GetAllOpenPositions(ctx context.Context, user string, pageSize, maxOffset int) ([]api.OpenPosition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err, ok := m.errs[user]; ok {
		delete(m.errs, user)
		return nil, err
	}
	return m.positions[user], nil
}

// placedOrder records one PlaceMarketOrder call.
type placedOrder struct {
	order   types.UserMarketOrder
	options types.CreateOrderOptions
}

// mockOrderClient is an order client with call capture and error injection.
type mockOrderClient struct {
	mu     sync.Mutex
	placed []placedOrder

	tickSize types.TickSize
	negRisk  bool

	placeErr  error
	placeResp *types.OrderResponse
}

func newMockOrderClient() *mockOrderClient {
	return &mockOrderClient{
		tickSize:  types.TickSize001,
		placeResp: &types.OrderResponse{Success: true, OrderID: "order-1", Status: "matched"},
	}
}

func (m *mockOrderClient) GetTickSize(ctx context.Context, tokenID string) (types.TickSize, error) {
	return m.tickSize, nil
}

func (m *mockOrderClient) GetNegRisk(ctx context.Context, tokenID string) (bool, error) {
	return m.negRisk, nil
}

func (m *mockOrderClient) PlaceMarketOrder(ctx context.Context, order *types.UserMarketOrder, options *types.CreateOrderOptions) (*types.OrderResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.placeErr != nil {
		return nil, m.placeErr
	}
	m.placed = append(m.placed, placedOrder{order: *order, options: *options})
	return m.placeResp, nil
}

func (m *mockOrderClient) placedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.placed)
}

func (m *mockOrderClient) lastPlaced() placedOrder {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.placed[len(m.placed)-1]
}

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func num(s string) api.Numeric {
	return api.Numeric{Decimal: dec(s)}
}
