package slotdb

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/segmentio/ksuid"
	"github.com/zerodha/logf"
)

type handlerFunc func(c *cycle) error

// Server serves the request protocol for a single store. One connection is
// served at a time and every request cycle runs to completion before the next
// command is read.
type Server struct {
	store    *Store
	lo       logf.Logger
	metrics  *Metrics
	handlers map[Code]handlerFunc
}

// ServerOption configures a Server.
type ServerOption func(*Server)

func WithServerLogger(lo logf.Logger) ServerOption {
	return func(s *Server) {
		s.lo = lo
	}
}

func WithMetrics(m *Metrics) ServerOption {
	return func(s *Server) {
		s.metrics = m
	}
}

// NewServer returns a server for store.
func NewServer(store *Store, opts ...ServerOption) *Server {
	s := &Server{
		store: store,
		lo:    initLogger(false),
	}
	for _, o := range opts {
		o(s)
	}

	s.handlers = map[Code]handlerFunc{
		RequestInsert: s.handleInsert,
		RequestUpdate: s.handleUpdate,
		RequestFind:   s.handleFind,
		RequestQuery:  s.handleQuery,
	}
	return s
}

// Serve runs request cycles on conn until the peer closes it, in which case
// it returns nil, or until the channel fails.
func (s *Server) Serve(conn io.ReadWriter) error {
	session := ksuid.New().String()
	entries := s.store.EntryCount()

	s.metrics.observeSession(entries)
	s.lo.Info("session started", "session", session, "entries", entries)

	for {
		cmd, err := RecvCode(conn)
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.lo.Info("session closed by peer", "session", session)
				return nil
			}
			s.lo.Error("error receiving command", "session", session, "error", err)
			return err
		}

		out := s.handleRequest(conn, cmd, session)
		if out.Fatal() {
			s.lo.Error("channel failed, ending session", "session", session, "code", out.Combined().String(), "error", out.Err)
			return out.Err
		}
	}
}

// HandleRequest runs a single request cycle for cmd, which has already been
// read from conn.
func (s *Server) HandleRequest(conn io.ReadWriter, cmd Code) Outcome {
	return s.handleRequest(conn, cmd, "")
}

func (s *Server) handleRequest(conn io.ReadWriter, cmd Code, session string) Outcome {
	var (
		start = time.Now()
		c     = &cycle{
			conn:    conn,
			cmd:     cmd,
			state:   StateAwaitCommand,
			session: session,
			lo:      s.lo,
		}
		err error
	)

	if h, ok := s.handlers[cmd]; ok {
		err = h(c)
	} else {
		err = fmt.Errorf("%w: unknown command %#04x", RequestDenied, uint16(cmd))
	}

	out := Outcome{
		Command: cmd,
		Code:    CodeOf(err),
		State:   c.state,
		Err:     err,
	}

	// Tell the peer about any failure it hasn't seen yet, unless the channel
	// itself is broken.
	if out.Code != Success && !out.Code.Has(SocketError) {
		c.enter(StateResponding)
		if nerr := SendCode(conn, out.Code); nerr != nil {
			out.Notify = CodeOf(nerr)
			out.Err = joinErrs(err, nerr)
		}
	}
	c.enter(StateDone)

	entries := s.store.EntryCount()
	s.metrics.observeCycle(out, time.Since(start), entries)

	switch {
	case out.Combined() == Success:
		s.lo.Debug("request served", "session", session, "command", commandName(cmd), "entries", entries)
	case out.Combined() == RequestDenied:
		s.lo.Info("request denied", "session", session, "command", commandName(cmd), "error", out.Err)
	default:
		s.lo.Error("request failed", "session", session, "command", commandName(cmd), "state", out.State.String(), "code", out.Combined().String(), "error", out.Err)
	}

	return out
}

func (s *Server) handleInsert(c *cycle) error {
	c.enter(StateValidating)
	if s.store.IsFull() {
		return fmt.Errorf("%w: store is full", RequestDenied)
	}

	c.enter(StateExchanging)
	if err := SendCode(c.conn, Success); err != nil {
		return err
	}
	rec, err := RecvRecord(c.conn, false)
	if err != nil {
		return err
	}

	c.enter(StateResponding)
	stored, err := s.store.Append(rec)
	switch {
	case err != nil && stored.ID == 0:
		return err
	case err != nil:
		// A record that is in the file and counted is acknowledged.
		c.lo.Error("inserted record not flushed to disk", "session", c.session, "id", stored.ID, "error", err)
	default:
		c.lo.Debug("inserted record", "session", c.session, "id", stored.ID)
	}

	return SendCode(c.conn, Success)
}

func (s *Server) handleUpdate(c *cycle) error {
	c.enter(StateExchanging)
	if err := SendCode(c.conn, Success); err != nil {
		return err
	}
	rec, err := RecvRecord(c.conn, true)
	if err != nil {
		return err
	}

	c.enter(StateValidating)
	if err := s.validID(rec.ID); err != nil {
		return err
	}

	c.enter(StateResponding)
	if err := s.store.Overwrite(rec); err != nil {
		return err
	}

	return SendCode(c.conn, Success)
}

func (s *Server) handleFind(c *cycle) error {
	c.enter(StateExchanging)
	if err := SendCode(c.conn, Success); err != nil {
		return err
	}
	id, err := RecvIndex(c.conn)
	if err != nil {
		return err
	}

	c.enter(StateValidating)
	if err := s.validID(id); err != nil {
		return err
	}
	rec, err := s.store.Read(id)
	if err != nil {
		return err
	}

	c.enter(StateResponding)
	if err := SendCode(c.conn, Success); err != nil {
		return err
	}
	if err := SendRecord(c.conn, rec, true); err != nil {
		return err
	}
	return s.recvCourtesy(c)
}

func (s *Server) handleQuery(c *cycle) error {
	c.enter(StateExchanging)
	if err := SendCode(c.conn, Success); err != nil {
		return err
	}

	c.enter(StateResponding)
	if err := SendIndex(c.conn, s.store.EntryCount()); err != nil {
		return err
	}
	return s.recvCourtesy(c)
}

// recvCourtesy receives the status the peer sends to confirm it received the
// response. Its value doesn't change the outcome of the cycle.
func (s *Server) recvCourtesy(c *cycle) error {
	ack, err := RecvCode(c.conn)
	if err != nil {
		return err
	}
	if ack != Success {
		c.lo.Warn("peer reported a non success status", "session", c.session, "command", commandName(c.cmd), "code", ack.String())
	}
	return nil
}

func (s *Server) validID(id uint16) error {
	if n := s.store.EntryCount(); id < MinEntry || id > n {
		return fmt.Errorf("%w: id %d outside [%d, %d]", RequestDenied, id, MinEntry, n)
	}
	return nil
}
