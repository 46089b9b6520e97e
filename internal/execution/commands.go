package execution

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/nautilus-go/nautilus-core/internal/identifiers"
)

// Commands is the abstract command-handler surface implemented by venue
// adapters (out of scope here); ExecutionClient only declares the
// contract adapters must satisfy.
type Commands interface {
	SubmitOrder(ctx context.Context, cmd SubmitOrderCommand) error
	SubmitOrderList(ctx context.Context, cmd SubmitOrderListCommand) error
	ModifyOrder(ctx context.Context, cmd ModifyOrderCommand) error
	CancelOrder(ctx context.Context, cmd CancelOrderCommand) error
	CancelAllOrders(ctx context.Context, cmd CancelAllOrdersCommand) error
	SyncOrderStatus(ctx context.Context, cmd QueryOrderCommand) error
}

type SubmitOrderCommand struct {
	StrategyId    identifiers.StrategyId
	InstrumentId  identifiers.InstrumentId
	ClientOrderId identifiers.ClientOrderId
	Side          string
	OrderType     string
	Quantity      decimal.Decimal
	Price         *decimal.Decimal
}

type SubmitOrderListCommand struct {
	StrategyId identifiers.StrategyId
	Orders     []SubmitOrderCommand
}

type ModifyOrderCommand struct {
	InstrumentId  identifiers.InstrumentId
	ClientOrderId identifiers.ClientOrderId
	VenueOrderId  identifiers.VenueOrderId
	Quantity      *decimal.Decimal
	Price         *decimal.Decimal
	TriggerPrice  *decimal.Decimal
}

type CancelOrderCommand struct {
	InstrumentId  identifiers.InstrumentId
	ClientOrderId identifiers.ClientOrderId
	VenueOrderId  identifiers.VenueOrderId
}

type CancelAllOrdersCommand struct {
	InstrumentId identifiers.InstrumentId
}

// QueryOrderCommand backs SyncOrderStatus. Naming follows the spec's own
// Design Notes §9 resolution: the source's ambiguity around whether
// sync_order_status takes a distinct command type is settled here by
// giving it one, QueryOrderCommand.
type QueryOrderCommand struct {
	InstrumentId  identifiers.InstrumentId
	ClientOrderId *identifiers.ClientOrderId
	VenueOrderId  *identifiers.VenueOrderId
}
