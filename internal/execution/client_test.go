package execution

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nautilus-go/nautilus-core/internal/bus"
	"github.com/nautilus-go/nautilus-core/internal/clock"
	"github.com/nautilus-go/nautilus-core/internal/handler"
	"github.com/nautilus-go/nautilus-core/internal/identifiers"
)

func newTestClient(t *testing.T) (*ExecutionClient, *bus.MessageBus, *handler.Registry, *clock.TestClock) {
	reg := handler.NewRegistry()
	b := bus.New(reg, zaptest.NewLogger(t))
	c := clock.NewTestClock(1_000)

	clientID, err := identifiers.NewClientId("SIM")
	require.NoError(t, err)
	traderID, err := identifiers.NewTraderId("TRADER-001")
	require.NoError(t, err)

	client, err := New(clientID, nil, OmsNetting, "MARGIN", nil, traderID, b, c)
	require.NoError(t, err)

	accountID, err := identifiers.NewAccountId("SIM-001")
	require.NoError(t, err)
	require.NoError(t, client.SetAccountId(accountID))

	return client, b, reg, c
}

func TestNew_RejectsOmsNone(t *testing.T) {
	reg := handler.NewRegistry()
	b := bus.New(reg, zaptest.NewLogger(t))
	c := clock.NewTestClock(0)
	clientID, _ := identifiers.NewClientId("SIM")
	traderID, _ := identifiers.NewTraderId("TRADER-001")

	_, err := New(clientID, nil, OmsNone, "MARGIN", nil, traderID, b, c)
	assert.Error(t, err)
}

func TestSetAccountId_IssuerMismatchErrors(t *testing.T) {
	client, _, _, _ := newTestClient(t)
	wrong, err := identifiers.NewAccountId("OTHER-001")
	require.NoError(t, err)
	assert.Error(t, client.SetAccountId(wrong))
}

// S5: an ExecutionClient with client_id="SIM", account_id="SIM-001" calls
// generate_order_filled with a fresh trade_id. The emitted event reaches
// ExecEngine.process with matching ids and ts_init >= ts_event.
func TestGenerateOrderFilled_S5(t *testing.T) {
	client, b, reg, testClock := newTestClient(t)

	var received OrderEvent
	reg.Register(handler.ID("engine"), handler.Func(func(msg any) {
		received = msg.(OrderEvent)
	}))
	require.NoError(t, b.Register(EndpointExecEngineProcess, handler.ID("engine")))

	strategyID, _ := identifiers.NewStrategyId("S-001")
	instrumentID, _ := identifiers.NewInstrumentId("BTCUSDT.SIM")
	clientOrderID, _ := identifiers.NewClientOrderId("O-1")
	venueOrderID, _ := identifiers.NewVenueOrderId("V-1")
	tradeID, _ := identifiers.NewTradeId("T-1")

	testClock.SetTime(5_000)
	evt, err := client.GenerateOrderFilled(
		strategyID, instrumentID, clientOrderID, venueOrderID, tradeID, nil,
		"BUY", "MARKET",
		decimal.NewFromInt(1), decimal.NewFromInt(100),
		"USDT", decimal.NewFromFloat(0.01), LiquidityTaker,
		4_000,
	)
	require.NoError(t, err)

	assert.Equal(t, evt.EventID, received.EventID)
	assert.Equal(t, clientOrderID.String(), received.ClientOrderId.String())
	assert.Equal(t, tradeID.String(), received.Filled.TradeId.String())
	assert.GreaterOrEqual(t, received.TsInit, received.TsEvent)
	assert.Equal(t, uint64(5_000), received.TsInit)
	assert.Equal(t, uint64(4_000), received.TsEvent)
}

func TestGenerateOrderUpdated_ReconciliationMismatch(t *testing.T) {
	client, _, _, _ := newTestClient(t)

	strategyID, _ := identifiers.NewStrategyId("S-001")
	instrumentID, _ := identifiers.NewInstrumentId("BTCUSDT.SIM")
	clientOrderID, _ := identifiers.NewClientOrderId("O-1")
	venueOrderID, _ := identifiers.NewVenueOrderId("V-1")
	otherVenueOrderID, _ := identifiers.NewVenueOrderId("V-2")

	_, err := client.GenerateOrderAccepted(strategyID, instrumentID, clientOrderID, venueOrderID, 1_000)
	require.NoError(t, err)

	qty := decimal.NewFromInt(2)
	_, err = client.GenerateOrderUpdated(strategyID, instrumentID, clientOrderID, otherVenueOrderID, false, qty, nil, nil, 2_000)
	assert.Error(t, err)

	// venue_order_id_modified=true bypasses the check
	_, err = client.GenerateOrderUpdated(strategyID, instrumentID, clientOrderID, otherVenueOrderID, true, qty, nil, nil, 2_000)
	assert.NoError(t, err)
}

func TestGenerateOrderSubmittedAndRejected_NoVenueOrderId(t *testing.T) {
	client, _, _, _ := newTestClient(t)
	strategyID, _ := identifiers.NewStrategyId("S-001")
	instrumentID, _ := identifiers.NewInstrumentId("BTCUSDT.SIM")
	clientOrderID, _ := identifiers.NewClientOrderId("O-1")

	submitted, err := client.GenerateOrderSubmitted(strategyID, instrumentID, clientOrderID, 1_000)
	require.NoError(t, err)
	assert.False(t, submitted.requiresVenueOrderID())

	rejected, err := client.GenerateOrderRejected(strategyID, instrumentID, clientOrderID, "insufficient margin", 1_500)
	require.NoError(t, err)
	assert.Equal(t, "insufficient margin", rejected.Rejected.Reason)
}

func TestGenerateAccountState_RoutesToPortfolio(t *testing.T) {
	client, b, reg, _ := newTestClient(t)
	var received AccountState
	reg.Register(handler.ID("portfolio"), handler.Func(func(msg any) {
		received = msg.(AccountState)
	}))
	require.NoError(t, b.Register(EndpointPortfolioUpdateAccount, handler.ID("portfolio")))

	state, err := client.GenerateAccountState(true, nil, nil, nil, 1_000)
	require.NoError(t, err)
	assert.Equal(t, state.EventID, received.EventID)
	assert.Equal(t, "SIM-001", received.AccountId.String())
}
