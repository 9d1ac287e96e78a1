package slotdb

import (
	"io"

	"github.com/zerodha/logf"
)

// Client issues requests over an established connection to a Server. Every
// method runs one complete request cycle. A nil error means the server
// reported Success; a Code error is either the status sent by the server or
// the first transport failure seen by the client. Use CodeOf or errors.Is
// with the Code flags to tell them apart.
type Client struct {
	conn io.ReadWriter
	lo   logf.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

func WithClientLogger(lo logf.Logger) ClientOption {
	return func(c *Client) {
		c.lo = lo
	}
}

// NewClient returns a client that talks over conn.
func NewClient(conn io.ReadWriter, opts ...ClientOption) *Client {
	c := &Client{
		conn: conn,
		lo:   initLogger(false),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Insert asks the server to append r. The identifier of r isn't sent: the
// server assigns the next free one.
func (c *Client) Insert(r Record) error {
	if err := c.begin(RequestInsert); err != nil {
		return err
	}
	if err := SendRecord(c.conn, r, false); err != nil {
		return err
	}
	return c.final()
}

// Update asks the server to overwrite the record stored under r.ID.
func (c *Client) Update(r Record) error {
	if err := c.begin(RequestUpdate); err != nil {
		return err
	}
	if err := SendRecord(c.conn, r, true); err != nil {
		return err
	}
	return c.final()
}

// Find fetches the record stored under id.
func (c *Client) Find(id uint16) (Record, error) {
	if err := c.begin(RequestFind); err != nil {
		return Record{}, err
	}
	if err := SendIndex(c.conn, id); err != nil {
		return Record{}, err
	}
	if err := c.final(); err != nil {
		return Record{}, err
	}

	rec, err := RecvRecord(c.conn, true)
	if err != nil {
		return Record{}, err
	}
	if err := SendCode(c.conn, Success); err != nil {
		return Record{}, err
	}

	c.lo.Debug("found record", "id", rec.ID)
	return rec, nil
}

// Query returns the number of records in the store.
func (c *Client) Query() (uint16, error) {
	if err := c.begin(RequestQuery); err != nil {
		return 0, err
	}

	n, err := RecvIndex(c.conn)
	if err != nil {
		return 0, err
	}
	if err := SendCode(c.conn, Success); err != nil {
		return 0, err
	}

	c.lo.Debug("queried entry count", "entries", n)
	return n, nil
}

// begin sends the command and waits for the server to acknowledge it.
func (c *Client) begin(cmd Code) error {
	c.lo.Debug("sending request", "command", commandName(cmd))
	if err := SendCode(c.conn, cmd); err != nil {
		return err
	}
	return c.final()
}

// final receives a status from the server and returns it as an error unless
// it's Success.
func (c *Client) final() error {
	resp, err := RecvCode(c.conn)
	if err != nil {
		return err
	}
	if resp != Success {
		c.lo.Debug("server responded", "code", resp.String())
		return resp
	}
	return nil
}
