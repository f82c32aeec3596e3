package events

import (
	"log/slog"
	"sync"
)

// EventType labels what happened.
type EventType string

const (
	EventBlockCommit EventType = "block_commit"
	EventTxExecuted  EventType = "tx_executed"
	EventTxFailed    EventType = "tx_failed"

	EventNativeTransfer EventType = "native_transfer"
	EventTokenTransfer  EventType = "token_transfer"

	EventPoolInitialized   EventType = "pool_initialized"
	EventFacilityPurchased EventType = "facility_purchased"
	EventUnitStaked        EventType = "unit_staked"
	EventUnitUnstaked      EventType = "unit_unstaked"
	EventUnitDiscarded     EventType = "unit_discarded"
	EventFacilityUpgraded  EventType = "facility_upgraded"
	EventRewardsClaimed    EventType = "rewards_claimed"

	EventBoosterRequested EventType = "booster_requested"
	EventBoosterOpened    EventType = "booster_opened"
	EventRecycleRequested EventType = "recycle_requested"
	EventRecycleSettled   EventType = "recycle_settled"
	EventGambleCommitted  EventType = "gamble_committed"
	EventGambleSettled    EventType = "gamble_settled"
	EventActionCancelled  EventType = "action_cancelled"

	EventTokensStaked   EventType = "tokens_staked"
	EventTokensUnstaked EventType = "tokens_unstaked"
	EventStakingClaimed EventType = "staking_claimed"

	EventProductionToggled EventType = "production_toggled"
	EventParameterUpdated  EventType = "parameter_updated"
	EventPoolAdvanced      EventType = "pool_advanced"
	EventPlayerReset       EventType = "player_reset"
	EventSolRewardsSynced  EventType = "sol_rewards_synced"

	EventRandomnessCommitted EventType = "randomness_committed"
	EventRandomnessRevealed  EventType = "randomness_revealed"
)

// Event carries a typed payload emitted after a state change.
type Event struct {
	Type        EventType      `json:"type"`
	TxID        string         `json:"tx_id"`
	BlockHeight int64          `json:"block_height"`
	Data        map[string]any `json:"data"`
}

// Handler is a callback invoked for matching events.
type Handler func(Event)

// Emitter is a simple pub/sub broker. Subscribe before Emit.
type Emitter struct {
	log *slog.Logger

	mu       sync.RWMutex
	handlers map[EventType][]Handler
	all      []Handler
}

// NewEmitter creates an Emitter with no subscribers. A nil logger uses
// slog.Default().
func NewEmitter(log *slog.Logger) *Emitter {
	if log == nil {
		log = slog.Default()
	}
	return &Emitter{log: log, handlers: make(map[EventType][]Handler)}
}

// Subscribe registers h to be called whenever typ is emitted.
func (e *Emitter) Subscribe(typ EventType, h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handlers[typ] = append(e.handlers[typ], h)
}

// SubscribeAll registers h for every event type.
func (e *Emitter) SubscribeAll(h Handler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.all = append(e.all, h)
}

// Emit delivers ev to all subscribers for ev.Type synchronously.
// Each handler is guarded by panic recovery so a misbehaving subscriber
// cannot crash the node or halt block production.
func (e *Emitter) Emit(ev Event) {
	e.mu.RLock()
	handlers := make([]Handler, 0, len(e.handlers[ev.Type])+len(e.all))
	handlers = append(handlers, e.handlers[ev.Type]...)
	handlers = append(handlers, e.all...)
	e.mu.RUnlock()
	for _, h := range handlers {
		e.deliver(ev, h)
	}
}

func (e *Emitter) deliver(ev Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("event handler panicked", "type", ev.Type, "tx", ev.TxID, "panic", r)
		}
	}()
	h(ev)
}
