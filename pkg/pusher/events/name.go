package events

// Name specifies the kind of event sent to subscribers of draft changes. It is used for accounting.
type Name string

const (
	PingEvent           Name = "ping"
	SlotChangedEvent    Name = "slot_changed"
	OutcomeChangedEvent Name = "outcome_changed"
)
