package shipment

// Status is the shipment lifecycle state. The forward progression is
// pending → processing → shipped → in_transit → out_for_delivery → delivered,
// with failed as an alternate terminal reachable from any non-terminal state.
// delivered and failed are hard terminals: nothing leaves them.
type Status string

const (
	StatusPending        Status = "pending"
	StatusProcessing     Status = "processing"
	StatusShipped        Status = "shipped"
	StatusInTransit      Status = "in_transit"
	StatusOutForDelivery Status = "out_for_delivery"
	StatusDelivered      Status = "delivered"
	StatusFailed         Status = "failed"
)

// rank orders the forward progression; failed sits outside it.
var rank = map[Status]int{
	StatusPending:        0,
	StatusProcessing:     1,
	StatusShipped:        2,
	StatusInTransit:      3,
	StatusOutForDelivery: 4,
	StatusDelivered:      5,
}

// IsValid reports whether s is a recognized status value.
func (s Status) IsValid() bool {
	if s == StatusFailed {
		return true
	}
	_, ok := rank[s]
	return ok
}

// IsTerminal reports whether no further transitions are permitted.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// Next returns the following status in the forward progression and false when
// s is terminal or outside the progression.
func (s Status) Next() (Status, bool) {
	switch s {
	case StatusPending:
		return StatusProcessing, true
	case StatusProcessing:
		return StatusShipped, true
	case StatusShipped:
		return StatusInTransit, true
	case StatusInTransit:
		return StatusOutForDelivery, true
	case StatusOutForDelivery:
		return StatusDelivered, true
	default:
		return "", false
	}
}

// CanTransitionTo validates a transition from s to next. Forward moves may
// skip intermediate states; backward moves, re-entering the current state and
// leaving a terminal state are all rejected.
func (s Status) CanTransitionTo(next Status) error {
	if !next.IsValid() {
		return &InvalidTransitionError{From: s, To: next}
	}
	if s.IsTerminal() {
		return &InvalidTransitionError{From: s, To: next}
	}
	if next == StatusFailed {
		return nil
	}
	if rank[next] <= rank[s] {
		return &InvalidTransitionError{From: s, To: next}
	}
	return nil
}
