// Package identifiers defines the immutable, string-backed value types that
// name every actor and object flowing through the message bus, clock, and
// execution client: traders, clients, strategies, instruments, orders,
// positions, trades, and accounts.
package identifiers

import (
	"fmt"
	"strings"
)

// baseID is embedded by every identifier value type. It holds the raw,
// validated string and is never mutated after construction.
type baseID struct {
	value string
}

func (b baseID) String() string { return b.value }
func (b baseID) IsEmpty() bool  { return b.value == "" }

func newBaseID(kind, value string) (baseID, error) {
	if value == "" {
		return baseID{}, fmt.Errorf("identifiers: %s must not be empty", kind)
	}
	return baseID{value: value}, nil
}

// TraderId identifies the owning trader of a session, e.g. "TRADER-001".
type TraderId struct{ baseID }

// NewTraderId validates and constructs a TraderId.
func NewTraderId(value string) (TraderId, error) {
	b, err := newBaseID("TraderId", value)
	return TraderId{b}, err
}

// ClientId identifies an execution client instance, e.g. "SIM".
type ClientId struct{ baseID }

// NewClientId validates and constructs a ClientId.
func NewClientId(value string) (ClientId, error) {
	b, err := newBaseID("ClientId", value)
	return ClientId{b}, err
}

// StrategyId identifies a strategy instance, e.g. "EMACross-001".
type StrategyId struct{ baseID }

// NewStrategyId validates and constructs a StrategyId.
func NewStrategyId(value string) (StrategyId, error) {
	b, err := newBaseID("StrategyId", value)
	return StrategyId{b}, err
}

// InstrumentId has the form "<SYMBOL>.<VENUE>", e.g. "EURUSD.SIM".
type InstrumentId struct {
	baseID
	Symbol string
	Venue  string
}

// NewInstrumentId parses and validates an InstrumentId of the form
// "<SYMBOL>.<VENUE>". Both components must be non-empty.
func NewInstrumentId(value string) (InstrumentId, error) {
	b, err := newBaseID("InstrumentId", value)
	if err != nil {
		return InstrumentId{}, err
	}
	parts := strings.SplitN(value, ".", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return InstrumentId{}, fmt.Errorf("identifiers: InstrumentId %q must have form <SYMBOL>.<VENUE>", value)
	}
	return InstrumentId{baseID: b, Symbol: parts[0], Venue: parts[1]}, nil
}

// ClientOrderId identifies an order as assigned by the originating client.
type ClientOrderId struct{ baseID }

// NewClientOrderId validates and constructs a ClientOrderId.
func NewClientOrderId(value string) (ClientOrderId, error) {
	b, err := newBaseID("ClientOrderId", value)
	return ClientOrderId{b}, err
}

// VenueOrderId identifies an order as assigned by the venue.
type VenueOrderId struct{ baseID }

// NewVenueOrderId validates and constructs a VenueOrderId.
func NewVenueOrderId(value string) (VenueOrderId, error) {
	b, err := newBaseID("VenueOrderId", value)
	return VenueOrderId{b}, err
}

// PositionId identifies a position, meaningful only under HEDGING OMS type.
type PositionId struct{ baseID }

// NewPositionId validates and constructs a PositionId.
func NewPositionId(value string) (PositionId, error) {
	b, err := newBaseID("PositionId", value)
	return PositionId{b}, err
}

// TradeId identifies an individual execution/fill.
type TradeId struct{ baseID }

// NewTradeId validates and constructs a TradeId.
func NewTradeId(value string) (TradeId, error) {
	b, err := newBaseID("TradeId", value)
	return TradeId{b}, err
}

// AccountId has the form "<ISSUER>-<ID>", e.g. "SIM-001". Issuer must equal
// the owning ExecutionClient's ClientId.
type AccountId struct {
	baseID
	issuer string
}

// NewAccountId parses and validates an AccountId of the form
// "<ISSUER>-<ID>".
func NewAccountId(value string) (AccountId, error) {
	b, err := newBaseID("AccountId", value)
	if err != nil {
		return AccountId{}, err
	}
	idx := strings.Index(value, "-")
	if idx <= 0 || idx == len(value)-1 {
		return AccountId{}, fmt.Errorf("identifiers: AccountId %q must have form <ISSUER>-<ID>", value)
	}
	return AccountId{baseID: b, issuer: value[:idx]}, nil
}

// Issuer returns the issuer prefix of the AccountId.
func (a AccountId) Issuer() string { return a.issuer }

// MatchesIssuer reports whether the AccountId's issuer equals the given
// ClientId, per the invariant that an ExecutionClient's account issuer must
// equal its own ClientId.
func (a AccountId) MatchesIssuer(client ClientId) bool {
	return a.issuer == client.String()
}
