// Package execution implements the ExecutionClient contract: identity,
// command surface stubs, and the order-lifecycle event-generation
// surface that synthesizes events and dispatches them onto the shared
// MessageBus. Grounded on the teacher's order-lifecycle event structs
// (internal/trading/events) and its execution-client wiring, both
// adapted to the header/variant shape this spec defines.
package execution

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/nautilus-go/nautilus-core/internal/identifiers"
)

// Header is common to every order lifecycle event.
type Header struct {
	TraderId      identifiers.TraderId
	StrategyId    identifiers.StrategyId
	AccountId     identifiers.AccountId
	InstrumentId  identifiers.InstrumentId
	ClientOrderId identifiers.ClientOrderId
	EventID       uuid.UUID
	TsEvent       uint64
	TsInit        uint64
}

// LiquiditySide describes whether a fill was passive, aggressive, or
// not reported.
type LiquiditySide string

const (
	LiquidityMaker LiquiditySide = "MAKER"
	LiquidityTaker LiquiditySide = "TAKER"
	LiquidityNone  LiquiditySide = "NONE"
)

// OrderEvent is the tagged union of every order lifecycle variant.
// Rejected, ModifyRejected, CancelRejected, Updated and Filled set the
// one payload field matching Kind; every other kind leaves all payload
// fields nil, so those events carry no venue_order_id.
type OrderEvent struct {
	Header
	Kind OrderEventKind

	Rejected       *RejectedPayload
	ModifyRejected *RejectRejectedPayload
	CancelRejected *RejectRejectedPayload
	Updated        *UpdatedPayload
	Filled         *FilledPayload
}

type OrderEventKind string

const (
	EventSubmitted      OrderEventKind = "SUBMITTED"
	EventAccepted       OrderEventKind = "ACCEPTED"
	EventRejected       OrderEventKind = "REJECTED"
	EventPendingUpdate  OrderEventKind = "PENDING_UPDATE"
	EventPendingCancel  OrderEventKind = "PENDING_CANCEL"
	EventModifyRejected OrderEventKind = "MODIFY_REJECTED"
	EventCancelRejected OrderEventKind = "CANCEL_REJECTED"
	EventUpdated        OrderEventKind = "UPDATED"
	EventCanceled       OrderEventKind = "CANCELED"
	EventTriggered      OrderEventKind = "TRIGGERED"
	EventExpired        OrderEventKind = "EXPIRED"
	EventFilled         OrderEventKind = "FILLED"
)

// VenueOrderId is required on every variant except Submitted/Rejected.
func (e OrderEvent) requiresVenueOrderID() bool {
	return e.Kind != EventSubmitted && e.Kind != EventRejected
}

type RejectedPayload struct {
	Reason string
}

type RejectRejectedPayload struct {
	VenueOrderId identifiers.VenueOrderId
	Reason       string
}

type UpdatedPayload struct {
	VenueOrderId identifiers.VenueOrderId
	Quantity     decimal.Decimal
	Price        *decimal.Decimal
	TriggerPrice *decimal.Decimal
}

type FilledPayload struct {
	VenueOrderId  identifiers.VenueOrderId
	TradeId       identifiers.TradeId
	PositionId    *identifiers.PositionId
	Side          string
	OrderType     string
	LastQty       decimal.Decimal
	LastPx        decimal.Decimal
	QuoteCurrency string
	Commission    decimal.Decimal
	LiquiditySide LiquiditySide
}

// AccountState mirrors §3's AccountState record.
type AccountState struct {
	AccountId    identifiers.AccountId
	AccountType  string
	BaseCurrency *string
	Reported     bool
	Balances     []Balance
	Margins      []Margin
	Info         map[string]any
	EventID      uuid.UUID
	TsEvent      uint64
	TsInit       uint64
}

type Balance struct {
	Currency string
	Total    decimal.Decimal
	Locked   decimal.Decimal
	Free     decimal.Decimal
}

type Margin struct {
	Currency string
	Initial  decimal.Decimal
	Maintain decimal.Decimal
}

// ExecutionMassStatus and report types are opaque payloads at this
// layer; the core only routes them, it never inspects their contents.
type ExecutionMassStatus struct {
	AccountId identifiers.AccountId
	Reports   []any
}

type OrderStatusReport struct {
	VenueOrderId  identifiers.VenueOrderId
	ClientOrderId identifiers.ClientOrderId
	Status        string
}

type TradeReport struct {
	VenueOrderId identifiers.VenueOrderId
	TradeId      identifiers.TradeId
}
