package execution

import (
	"github.com/shopspring/decimal"

	"github.com/nautilus-go/nautilus-core/internal/corerrors"
	"github.com/nautilus-go/nautilus-core/internal/identifiers"
)

// GenerateOrderSubmitted emits Submitted. venue_order_id is never present
// on this variant.
func (c *ExecutionClient) GenerateOrderSubmitted(strategyID identifiers.StrategyId, instrumentID identifiers.InstrumentId, clientOrderID identifiers.ClientOrderId, tsEvent uint64) (OrderEvent, error) {
	h, err := c.header(strategyID, instrumentID, clientOrderID, tsEvent)
	if err != nil {
		return OrderEvent{}, err
	}
	evt := OrderEvent{Header: h, Kind: EventSubmitted}
	c.publish(evt)
	return evt, nil
}

// GenerateOrderRejected emits Rejected with reason. venue_order_id is
// never present on this variant.
func (c *ExecutionClient) GenerateOrderRejected(strategyID identifiers.StrategyId, instrumentID identifiers.InstrumentId, clientOrderID identifiers.ClientOrderId, reason string, tsEvent uint64) (OrderEvent, error) {
	h, err := c.header(strategyID, instrumentID, clientOrderID, tsEvent)
	if err != nil {
		return OrderEvent{}, err
	}
	evt := OrderEvent{Header: h, Kind: EventRejected, Rejected: &RejectedPayload{Reason: reason}}
	c.publish(evt)
	return evt, nil
}

// generateSimpleVariant covers the lifecycle events that carry no payload
// beyond the header: Accepted, PendingUpdate, PendingCancel, Canceled,
// Triggered, Expired. The supplied venue_order_id is recorded in the
// client's venue-order cache; it is not placed on the emitted event.
func (c *ExecutionClient) generateSimpleVariant(kind OrderEventKind, strategyID identifiers.StrategyId, instrumentID identifiers.InstrumentId, clientOrderID identifiers.ClientOrderId, venueOrderID identifiers.VenueOrderId, tsEvent uint64) (OrderEvent, error) {
	h, err := c.header(strategyID, instrumentID, clientOrderID, tsEvent)
	if err != nil {
		return OrderEvent{}, err
	}
	c.rememberVenueOrderID(clientOrderID, venueOrderID)
	evt := OrderEvent{Header: h, Kind: kind}
	c.publish(evt)
	return evt, nil
}

func (c *ExecutionClient) GenerateOrderAccepted(strategyID identifiers.StrategyId, instrumentID identifiers.InstrumentId, clientOrderID identifiers.ClientOrderId, venueOrderID identifiers.VenueOrderId, tsEvent uint64) (OrderEvent, error) {
	return c.generateSimpleVariant(EventAccepted, strategyID, instrumentID, clientOrderID, venueOrderID, tsEvent)
}

func (c *ExecutionClient) GenerateOrderPendingUpdate(strategyID identifiers.StrategyId, instrumentID identifiers.InstrumentId, clientOrderID identifiers.ClientOrderId, venueOrderID identifiers.VenueOrderId, tsEvent uint64) (OrderEvent, error) {
	return c.generateSimpleVariant(EventPendingUpdate, strategyID, instrumentID, clientOrderID, venueOrderID, tsEvent)
}

func (c *ExecutionClient) GenerateOrderPendingCancel(strategyID identifiers.StrategyId, instrumentID identifiers.InstrumentId, clientOrderID identifiers.ClientOrderId, venueOrderID identifiers.VenueOrderId, tsEvent uint64) (OrderEvent, error) {
	return c.generateSimpleVariant(EventPendingCancel, strategyID, instrumentID, clientOrderID, venueOrderID, tsEvent)
}

func (c *ExecutionClient) GenerateOrderCanceled(strategyID identifiers.StrategyId, instrumentID identifiers.InstrumentId, clientOrderID identifiers.ClientOrderId, venueOrderID identifiers.VenueOrderId, tsEvent uint64) (OrderEvent, error) {
	return c.generateSimpleVariant(EventCanceled, strategyID, instrumentID, clientOrderID, venueOrderID, tsEvent)
}

func (c *ExecutionClient) GenerateOrderTriggered(strategyID identifiers.StrategyId, instrumentID identifiers.InstrumentId, clientOrderID identifiers.ClientOrderId, venueOrderID identifiers.VenueOrderId, tsEvent uint64) (OrderEvent, error) {
	return c.generateSimpleVariant(EventTriggered, strategyID, instrumentID, clientOrderID, venueOrderID, tsEvent)
}

func (c *ExecutionClient) GenerateOrderExpired(strategyID identifiers.StrategyId, instrumentID identifiers.InstrumentId, clientOrderID identifiers.ClientOrderId, venueOrderID identifiers.VenueOrderId, tsEvent uint64) (OrderEvent, error) {
	return c.generateSimpleVariant(EventExpired, strategyID, instrumentID, clientOrderID, venueOrderID, tsEvent)
}

// GenerateOrderModifyRejected emits ModifyRejected with reason.
func (c *ExecutionClient) GenerateOrderModifyRejected(strategyID identifiers.StrategyId, instrumentID identifiers.InstrumentId, clientOrderID identifiers.ClientOrderId, venueOrderID identifiers.VenueOrderId, reason string, tsEvent uint64) (OrderEvent, error) {
	h, err := c.header(strategyID, instrumentID, clientOrderID, tsEvent)
	if err != nil {
		return OrderEvent{}, err
	}
	evt := OrderEvent{
		Header: h,
		Kind:   EventModifyRejected,
		ModifyRejected: &RejectRejectedPayload{VenueOrderId: venueOrderID, Reason: reason},
	}
	c.publish(evt)
	return evt, nil
}

// GenerateOrderCancelRejected emits CancelRejected with reason.
func (c *ExecutionClient) GenerateOrderCancelRejected(strategyID identifiers.StrategyId, instrumentID identifiers.InstrumentId, clientOrderID identifiers.ClientOrderId, venueOrderID identifiers.VenueOrderId, reason string, tsEvent uint64) (OrderEvent, error) {
	h, err := c.header(strategyID, instrumentID, clientOrderID, tsEvent)
	if err != nil {
		return OrderEvent{}, err
	}
	evt := OrderEvent{
		Header: h,
		Kind:   EventCancelRejected,
		CancelRejected: &RejectRejectedPayload{VenueOrderId: venueOrderID, Reason: reason},
	}
	c.publish(evt)
	return evt, nil
}

// GenerateOrderUpdated emits Updated. If venueOrderIDModified is false,
// the supplied venueOrderID must match the cache's current mapping for
// clientOrderID; a mismatch is a reconciliation error (§7).
func (c *ExecutionClient) GenerateOrderUpdated(
	strategyID identifiers.StrategyId,
	instrumentID identifiers.InstrumentId,
	clientOrderID identifiers.ClientOrderId,
	venueOrderID identifiers.VenueOrderId,
	venueOrderIDModified bool,
	quantity decimal.Decimal,
	price, triggerPrice *decimal.Decimal,
	tsEvent uint64,
) (OrderEvent, error) {
	if !venueOrderIDModified {
		if cached, ok := c.currentVenueOrderID(clientOrderID); ok && cached.String() != venueOrderID.String() {
			return OrderEvent{}, corerrors.Reconciliation(errComponent, "GenerateOrderUpdated",
				"venue_order_id "+venueOrderID.String()+" does not match cached "+cached.String()+" for "+clientOrderID.String())
		}
	}
	h, err := c.header(strategyID, instrumentID, clientOrderID, tsEvent)
	if err != nil {
		return OrderEvent{}, err
	}
	c.rememberVenueOrderID(clientOrderID, venueOrderID)
	evt := OrderEvent{
		Header: h,
		Kind:   EventUpdated,
		Updated: &UpdatedPayload{
			VenueOrderId: venueOrderID,
			Quantity:     quantity,
			Price:        price,
			TriggerPrice: triggerPrice,
		},
	}
	c.publish(evt)
	return evt, nil
}

// GenerateOrderFilled emits Filled with a fresh trade_id-bearing payload.
func (c *ExecutionClient) GenerateOrderFilled(
	strategyID identifiers.StrategyId,
	instrumentID identifiers.InstrumentId,
	clientOrderID identifiers.ClientOrderId,
	venueOrderID identifiers.VenueOrderId,
	tradeID identifiers.TradeId,
	positionID *identifiers.PositionId,
	side, orderType string,
	lastQty, lastPx decimal.Decimal,
	quoteCurrency string,
	commission decimal.Decimal,
	liquiditySide LiquiditySide,
	tsEvent uint64,
) (OrderEvent, error) {
	h, err := c.header(strategyID, instrumentID, clientOrderID, tsEvent)
	if err != nil {
		return OrderEvent{}, err
	}
	c.rememberVenueOrderID(clientOrderID, venueOrderID)
	evt := OrderEvent{
		Header: h,
		Kind:   EventFilled,
		Filled: &FilledPayload{
			VenueOrderId:  venueOrderID,
			TradeId:       tradeID,
			PositionId:    positionID,
			Side:          side,
			OrderType:     orderType,
			LastQty:       lastQty,
			LastPx:        lastPx,
			QuoteCurrency: quoteCurrency,
			Commission:    commission,
			LiquiditySide: liquiditySide,
		},
	}
	c.publish(evt)
	return evt, nil
}

// GenerateAccountState constructs an AccountState and routes it to
// Portfolio.update_account.
func (c *ExecutionClient) GenerateAccountState(reported bool, balances []Balance, margins []Margin, info map[string]any, tsEvent uint64) (AccountState, error) {
	accountID, ok := c.AccountId()
	if !ok {
		return AccountState{}, corerrors.State(errComponent, "GenerateAccountState", "account_id not yet assigned")
	}
	state := AccountState{
		AccountId:    accountID,
		AccountType:  c.accountType,
		BaseCurrency: c.baseCurrency,
		Reported:     reported,
		Balances:     balances,
		Margins:      margins,
		Info:         info,
		EventID:      c.newEventID(),
		TsEvent:      tsEvent,
		TsInit:       c.clock.TimestampNs(),
	}
	c.bus.Send(EndpointPortfolioUpdateAccount, state)
	return state, nil
}

// ReconcileMassStatus routes an ExecutionMassStatus report to
// ExecEngine.reconcile_mass_status.
func (c *ExecutionClient) ReconcileMassStatus(status ExecutionMassStatus) {
	c.bus.Send(EndpointExecEngineReconcileMass, status)
}

// ReconcileOrderStatusReport routes an OrderStatusReport to
// ExecEngine.reconcile_report.
func (c *ExecutionClient) ReconcileOrderStatusReport(report OrderStatusReport) {
	c.bus.Send(EndpointExecEngineReconcileReport, report)
}

// ReconcileTradeReport routes a TradeReport to
// ExecEngine.reconcile_report.
func (c *ExecutionClient) ReconcileTradeReport(report TradeReport) {
	c.bus.Send(EndpointExecEngineReconcileReport, report)
}
