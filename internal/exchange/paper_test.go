package exchange

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"kalshitrader/internal/model"
)

func TestPaperExchangeFillsOrders(t *testing.T) {
	ctx := context.Background()
	p := NewPaperExchange(nil, 10000)

	ack, err := p.PlaceOrder(ctx, model.NewBuyOrder("KXBTC-A", "yes", 5, 91))
	require.NoError(t, err)
	assert.NotEmpty(t, ack.OrderID)
	assert.Equal(t, "executed", ack.Status)

	balance, err := p.GetBalance(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 10000-5*91, balance)

	_, err = p.PlaceOrder(ctx, model.NewBuyOrder("KXBTC-A", "no", 2, 10))
	require.NoError(t, err)

	positions, err := p.GetPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.EqualValues(t, 5*91+2*10, positions[0].MarketExposure)
	assert.EqualValues(t, 3, positions[0].Position)
	assert.Len(t, p.Orders(), 2)
}

func TestPaperExchangeRejectsInvalidOrders(t *testing.T) {
	ctx := context.Background()
	p := NewPaperExchange(nil, 100)

	_, err := p.PlaceOrder(ctx, model.NewBuyOrder("KXBTC-A", "yes", 0, 50))
	assert.Error(t, err)

	_, err = p.PlaceOrder(ctx, model.NewBuyOrder("KXBTC-A", "yes", 1, 100))
	assert.Error(t, err)

	_, err = p.PlaceOrder(ctx, model.NewBuyOrder("KXBTC-A", "yes", 3, 50))
	assert.ErrorContains(t, err, "exceeds balance")

	boom := errors.New("venue down")
	p.SetOrderError(boom)
	_, err = p.PlaceOrder(ctx, model.NewBuyOrder("KXBTC-A", "yes", 1, 50))
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, p.Orders())
}

func TestPaperExchangeMarkets(t *testing.T) {
	ctx := context.Background()
	p := NewPaperExchange(nil, 0)
	p.SetMarket(model.MarketDetail{Market: model.Market{Ticker: "KXBTC-B", Status: "open"}})
	p.SetMarket(model.MarketDetail{Market: model.Market{Ticker: "KXBTC-A", Status: "open"}})
	p.SetMarket(model.MarketDetail{Market: model.Market{Ticker: "KXBTC-C", Status: "settled"}})
	p.SetMarket(model.MarketDetail{Market: model.Market{Ticker: "KXETH-A"}})

	markets, err := p.ListOpenMarkets(ctx, "KXBTC")
	require.NoError(t, err)
	require.Len(t, markets, 2)
	assert.Equal(t, "KXBTC-A", markets[0].Ticker)

	empty, err := p.ListOpenMarkets(ctx, "KXSOL")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	_, err = p.GetMarket(ctx, "missing")
	assert.Error(t, err)

	p.RemoveMarket("KXBTC-A")
	markets, err = p.ListOpenMarkets(ctx, "KXBTC")
	require.NoError(t, err)
	assert.Len(t, markets, 1)
}
