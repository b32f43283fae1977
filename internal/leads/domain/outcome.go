package domain

import "fmt"

// Connection is the result of one call attempt.
type Connection string

const (
	ConnectionConnected    Connection = "connected"
	ConnectionNotConnected Connection = "not connected"
)

// Medium is the channel a contact attempt went over.
type Medium string

const (
	MediumCall     Medium = "on call"
	MediumWhatsApp Medium = "on whatsapp"
)

// Direction distinguishes who initiated the contact.
type Direction string

const (
	DirectionInbound  Direction = "inbound"
	DirectionOutbound Direction = "outbound"
)

// CallOutcome is the input to recording a call attempt. Medium and Direction
// are optional; Note carries free-text commentary to append alongside.
type CallOutcome struct {
	Connection Connection
	Medium     Medium
	Direction  Direction
	Note       string
}

// WithDefaults applies the optional-field policy: when the call connected and
// medium or direction were omitted, they default to "on call"/"outbound".
// Unconnected attempts keep whatever the caller supplied, including nothing.
// Kept separate from the transition function so the defaulting rule is
// testable on its own.
func (o CallOutcome) WithDefaults() CallOutcome {
	if o.Connection != ConnectionConnected {
		return o
	}
	if o.Medium == "" {
		o.Medium = MediumCall
	}
	if o.Direction == "" {
		o.Direction = DirectionOutbound
	}
	return o
}

// Validate rejects outcomes with an unknown connection, medium, or direction.
func (o CallOutcome) Validate() error {
	switch o.Connection {
	case ConnectionConnected, ConnectionNotConnected:
	default:
		return fmt.Errorf("unknown connection %q", o.Connection)
	}

	switch o.Medium {
	case "", MediumCall, MediumWhatsApp:
	default:
		return fmt.Errorf("unknown connect medium %q", o.Medium)
	}

	switch o.Direction {
	case "", DirectionInbound, DirectionOutbound:
	default:
		return fmt.Errorf("unknown direction %q", o.Direction)
	}

	return nil
}
