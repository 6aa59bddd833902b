// Package notify pushes highlight and repair requests to an external
// listener over a websocket.
//
// Notifications are fire-and-forget: [Client.Highlight] and [Client.Repair]
// queue a message and return at once. A single writer goroutine dials
// lazily, redials after a failed write and logs every failure. Nothing is
// ever reported back to the caller.
//
//	c, err := notify.New("ws://localhost:9000/notify", notify.Options{Logger: logger})
//	defer c.Close()
//	c.Highlight(sessionID, "A ⊑ B")
//
// Each message is one JSON object:
//
//	{"type": "highlight", "session": "…", "axiom": "A ⊑ B"}
package notify

import (
	"context"
	stderrors "errors"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/prooftower/pkg/errors"
	"github.com/matzehuels/prooftower/pkg/observability"
)

// Message types.
const (
	TypeHighlight = "highlight"
	TypeRepair    = "repair"
)

// Defaults for [Options].
const (
	DefaultQueueSize    = 64
	DefaultDialTimeout  = 5 * time.Second
	DefaultWriteTimeout = 5 * time.Second
)

// ErrQueueFull is reported to hooks when a message is dropped.
var ErrQueueFull = stderrors.New("notify queue full")

// Message is one notification.
type Message struct {
	Type    string `json:"type"`
	Session string `json:"session"`
	Axiom   string `json:"axiom"`
}

// Options configures a [Client].
type Options struct {
	Logger       *log.Logger
	QueueSize    int
	DialTimeout  time.Duration
	WriteTimeout time.Duration
	Dialer       *websocket.Dialer
}

// Client sends notifications to one websocket endpoint.
// A nil *Client drops every message.
type Client struct {
	url    string
	opts   Options
	logger *log.Logger

	queue chan Message
	done  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once

	conn *websocket.Conn // owned by the writer goroutine
}

// New validates url and starts the writer goroutine. No connection is made
// until the first message.
func New(url string, opts Options) (*Client, error) {
	if err := errors.ValidateNotifyURL(url); err != nil {
		return nil, err
	}
	if opts.Logger == nil {
		opts.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = DefaultWriteTimeout
	}
	if opts.Dialer == nil {
		opts.Dialer = websocket.DefaultDialer
	}

	c := &Client{
		url:    url,
		opts:   opts,
		logger: opts.Logger.WithPrefix("notify"),
		queue:  make(chan Message, opts.QueueSize),
		done:   make(chan struct{}),
	}
	c.wg.Add(1)
	go c.run()
	return c, nil
}

// Highlight asks the listener to highlight axiom.
func (c *Client) Highlight(session, axiom string) {
	c.Send(Message{Type: TypeHighlight, Session: session, Axiom: axiom})
}

// Repair asks the listener to repair axiom.
func (c *Client) Repair(session, axiom string) {
	c.Send(Message{Type: TypeRepair, Session: session, Axiom: axiom})
}

// Send queues m. Messages sent after Close or while the queue is full are
// dropped.
func (c *Client) Send(m Message) {
	if c == nil {
		return
	}
	select {
	case <-c.done:
		return
	default:
	}
	select {
	case c.queue <- m:
	default:
		c.logger.Warn("dropping notification", "type", m.Type, "session", m.Session, "error", ErrQueueFull)
		observability.Notify().OnNotify(context.Background(), m.Type, ErrQueueFull)
	}
}

// Close stops the writer after it has sent the queued messages and closes
// the connection.
func (c *Client) Close() error {
	if c == nil {
		return nil
	}
	c.once.Do(func() { close(c.done) })
	c.wg.Wait()
	return nil
}

func (c *Client) run() {
	defer c.wg.Done()
	defer c.hangUp()
	for {
		select {
		case m := <-c.queue:
			c.deliver(m)
		case <-c.done:
			for {
				select {
				case m := <-c.queue:
					c.deliver(m)
				default:
					return
				}
			}
		}
	}
}

func (c *Client) deliver(m Message) {
	ctx := context.Background()
	err := c.write(ctx, m)
	if err != nil {
		c.logger.Warn("notification failed", "type", m.Type, "session", m.Session, "error", err)
		c.hangUp()
	} else {
		c.logger.Debug("notification sent", "type", m.Type, "session", m.Session)
	}
	observability.Notify().OnNotify(ctx, m.Type, err)
}

func (c *Client) write(ctx context.Context, m Message) error {
	if c.conn == nil {
		dctx, cancel := context.WithTimeout(ctx, c.opts.DialTimeout)
		defer cancel()
		conn, _, err := c.opts.Dialer.DialContext(dctx, c.url, nil)
		if err != nil {
			return errors.Wrap(errors.ErrCodeNetwork, err, "dial %s", c.url)
		}
		c.conn = conn
	}
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout)); err != nil {
		return err
	}
	return c.conn.WriteJSON(m)
}

func (c *Client) hangUp() {
	if c.conn == nil {
		return
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	_ = c.conn.Close()
	c.conn = nil
}
