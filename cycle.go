package slotdb

import (
	"errors"
	"io"

	"github.com/zerodha/logf"
)

// State is the position of a request cycle in the server state machine.
// Handlers don't visit the states in declaration order: update and find have
// to receive the identifier before they can validate it, so they exchange
// first. Every path, including errors, ends in StateDone.
type State uint8

const (
	StateAwaitCommand State = iota
	StateValidating
	StateExchanging
	StateResponding
	StateDone
)

func (s State) String() string {
	switch s {
	case StateAwaitCommand:
		return "await_command"
	case StateValidating:
		return "validating"
	case StateExchanging:
		return "exchanging"
	case StateResponding:
		return "responding"
	case StateDone:
		return "done"
	}
	return "unknown"
}

// Outcome is the result of one request cycle. Code is the primary outcome;
// Notify holds the failure flags of the best-effort attempt to tell the peer
// about a non-success Code, and is zero when that attempt wasn't needed or
// succeeded. State is the last state the handler entered before the outcome
// was known.
type Outcome struct {
	Command Code
	Code    Code
	Notify  Code
	State   State
	Err     error
}

// Combined returns the primary and notification flags as one code.
func (o Outcome) Combined() Code {
	return o.Code | o.Notify
}

// Fatal reports whether the channel failed, in which case the session can't continue.
func (o Outcome) Fatal() bool {
	return o.Combined().Has(SocketError)
}

// cycle carries the state of one request cycle on a connection.
type cycle struct {
	conn    io.ReadWriter
	cmd     Code
	state   State
	session string
	lo      logf.Logger
}

func (c *cycle) enter(st State) {
	c.lo.Debug("request cycle", "session", c.session, "command", commandName(c.cmd), "from", c.state.String(), "to", st.String())
	c.state = st
}

func commandName(cmd Code) string {
	switch cmd {
	case RequestInsert:
		return "insert"
	case RequestUpdate:
		return "update"
	case RequestFind:
		return "find"
	case RequestQuery:
		return "query"
	}
	return "unknown"
}

// joinErrs joins the cause of the primary outcome with the notification failure.
func joinErrs(primary, notify error) error {
	if notify == nil {
		return primary
	}
	return errors.Join(primary, notify)
}
