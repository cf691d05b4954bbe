package stream

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// Event is one raw server-push payload, delivered in arrival order. A
// transport failure is delivered as the final event with Err set.
type Event struct {
	Data string
	Err  error
}

// Client owns a single long-lived server-push connection. Open may be
// called once per Client; Close is idempotent and safe before Open.
type Client struct {
	HTTP   *http.Client
	Header http.Header

	mu     sync.Mutex
	cancel context.CancelFunc
	closed bool
	events chan Event
}

func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{HTTP: httpClient, events: make(chan Event, 16)}
}

// Events returns the ordered event channel. The reading goroutine closes
// it once the connection ends, right after the terminal event if any.
func (c *Client) Events() <-chan Event {
	return c.events
}

// Open connects to the stream endpoint and starts delivering events.
func (c *Client) Open(ctx context.Context, url string) error {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		cancel()
		return fmt.Errorf("stream client already closed")
	}
	c.cancel = cancel
	c.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		cancel()
		return err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	for key, values := range c.Header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}

	res, err := c.HTTP.Do(req)
	if err != nil {
		cancel()
		return err
	}
	if res.StatusCode != http.StatusOK {
		res.Body.Close()
		cancel()
		return fmt.Errorf("stream endpoint returned %s", res.Status)
	}

	go c.read(ctx, res)

	return nil
}

// read delivers one event per SSE message. Messages are newline-framed:
// "data:" lines accumulate until a blank line dispatches them.
func (c *Client) read(ctx context.Context, res *http.Response) {
	defer res.Body.Close()
	defer close(c.events)

	scanner := bufio.NewScanner(res.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data []string

	dispatch := func() {
		if len(data) == 0 {
			return
		}
		c.deliver(ctx, Event{Data: strings.Join(data, "\n")})
		data = data[:0]
	}

	for scanner.Scan() {
		line := scanner.Text()

		if line == "" {
			dispatch()
			continue
		}

		switch {
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case strings.HasPrefix(line, ":"):
			// comment / keep-alive
		default:
			// servers that skip SSE field framing send bare payloads
			data = append(data, line)
			dispatch()
		}
	}

	dispatch()

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		logrus.Debugf("stream read failed: %v", err)
		c.deliver(ctx, Event{Err: err})
	}
}

func (c *Client) deliver(ctx context.Context, ev Event) {
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}

// Close tears down the connection. Safe to call at any time, any number
// of times.
func (c *Client) Close() {
	c.mu.Lock()
	c.closed = true
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
