package execution

import (
	"sync"

	"github.com/google/uuid"

	"github.com/nautilus-go/nautilus-core/internal/bus"
	"github.com/nautilus-go/nautilus-core/internal/clock"
	"github.com/nautilus-go/nautilus-core/internal/component"
	"github.com/nautilus-go/nautilus-core/internal/corerrors"
	"github.com/nautilus-go/nautilus-core/internal/identifiers"
)

const errComponent = "ExecutionClient"

// OmsType is the venue's order-management semantics.
type OmsType string

const (
	OmsNone    OmsType = "NONE"
	OmsHedging OmsType = "HEDGING"
	OmsNetting OmsType = "NETTING"
)

// Endpoint names this client routes generated events to, per §6.
const (
	EndpointPortfolioUpdateAccount    = "Portfolio.update_account"
	EndpointExecEngineProcess         = "ExecEngine.process"
	EndpointExecEngineReconcileMass   = "ExecEngine.reconcile_mass_status"
	EndpointExecEngineReconcileReport = "ExecEngine.reconcile_report"
)

// ExecutionClient is a Component specialization that never mutates order
// state itself; it only synthesizes lifecycle events and dispatches them
// through the bus. Idempotence of effects is the engine's concern.
type ExecutionClient struct {
	*component.Component

	clientID     identifiers.ClientId
	venue        *string
	omsType      OmsType
	accountType  string
	baseCurrency *string
	traderID     identifiers.TraderId

	bus   *bus.MessageBus
	clock clock.Clock

	mu              sync.Mutex
	accountID       *identifiers.AccountId
	venueOrderCache map[string]identifiers.VenueOrderId // client_order_id -> current venue_order_id
}

// New constructs an ExecutionClient. omsType must not be NONE.
func New(
	clientID identifiers.ClientId,
	venue *string,
	omsType OmsType,
	accountType string,
	baseCurrency *string,
	traderID identifiers.TraderId,
	b *bus.MessageBus,
	c clock.Clock,
) (*ExecutionClient, error) {
	if omsType == OmsNone {
		return nil, corerrors.Validation(errComponent, "New", "oms_type must not be NONE")
	}
	return &ExecutionClient{
		Component:       component.New(clientID.String(), b),
		clientID:        clientID,
		venue:           venue,
		omsType:         omsType,
		accountType:     accountType,
		baseCurrency:    baseCurrency,
		traderID:        traderID,
		bus:             b,
		clock:           c,
		venueOrderCache: make(map[string]identifiers.VenueOrderId),
	}, nil
}

// SetAccountId assigns the account once. The AccountId's issuer must
// equal this client's ClientId, enforced at set-time; a second call
// after a successful assignment returns a State error.
func (c *ExecutionClient) SetAccountId(id identifiers.AccountId) error {
	if !id.MatchesIssuer(c.clientID) {
		return corerrors.Validationf(errComponent, "SetAccountId", "account issuer %q does not match client id %q", id.Issuer(), c.clientID.String())
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accountID != nil {
		return corerrors.State(errComponent, "SetAccountId", "account_id already assigned")
	}
	c.accountID = &id
	return nil
}

// Clock returns the injected clock, exposed so callers (adapters,
// command handlers) can stamp caller-side ts_event values consistently
// with this client's ts_init source.
func (c *ExecutionClient) Clock() clock.Clock { return c.clock }

func (c *ExecutionClient) AccountId() (identifiers.AccountId, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accountID == nil {
		return identifiers.AccountId{}, false
	}
	return *c.accountID, true
}

func (c *ExecutionClient) newEventID() uuid.UUID { return uuid.New() }

func (c *ExecutionClient) rememberVenueOrderID(clientOrderID identifiers.ClientOrderId, venueOrderID identifiers.VenueOrderId) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.venueOrderCache[clientOrderID.String()] = venueOrderID
}

func (c *ExecutionClient) currentVenueOrderID(clientOrderID identifiers.ClientOrderId) (identifiers.VenueOrderId, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.venueOrderCache[clientOrderID.String()]
	return v, ok
}

// header builds the common event header, stamping ts_init from the
// injected clock. ts_init >= ts_event holds only when the caller's
// ts_event is not later than the clock's current time; the header does
// not check this.
func (c *ExecutionClient) header(strategyID identifiers.StrategyId, instrumentID identifiers.InstrumentId, clientOrderID identifiers.ClientOrderId, tsEvent uint64) (Header, error) {
	accountID, ok := c.AccountId()
	if !ok {
		return Header{}, corerrors.State(errComponent, "header", "account_id not yet assigned")
	}
	return Header{
		TraderId:      c.traderID,
		StrategyId:    strategyID,
		AccountId:     accountID,
		InstrumentId:  instrumentID,
		ClientOrderId: clientOrderID,
		EventID:       c.newEventID(),
		TsEvent:       tsEvent,
		TsInit:        c.clock.TimestampNs(),
	}, nil
}

func (c *ExecutionClient) publish(evt OrderEvent) {
	c.bus.Send(EndpointExecEngineProcess, evt)
}
