// internal/bus/nats.go
package bus

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/tendant/simple-jobmon/pkg/schema"
)

type Client struct{ nc *nats.Conn }

func Connect(url string) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.Timeout(5*time.Second),
	)
	if err != nil {
		return nil, err
	}
	return &Client{nc: nc}, nil
}

func (c *Client) Close() {
	if c.nc != nil {
		_ = c.nc.Drain()
	}
}

func (c *Client) Conn() *nats.Conn { return c.nc }

// PublishStatus emits a status event on the given subject.
func (c *Client) PublishStatus(subject string, evt schema.JobStatusChanged) error {
	b, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	return c.nc.Publish(subject, b)
}

// SubscribeStatus delivers decoded status events to handler. Payloads that
// fail to decode are logged and skipped so one bad publisher cannot stall
// a monitoring session.
func (c *Client) SubscribeStatus(subject string, handler func(schema.JobStatusChanged)) (*nats.Subscription, error) {
	return c.nc.Subscribe(subject, func(msg *nats.Msg) {
		var evt schema.JobStatusChanged
		if err := json.Unmarshal(msg.Data, &evt); err != nil {
			slog.Warn("discarding undecodable status event", "subject", msg.Subject, "err", err)
			return
		}
		handler(evt)
	})
}
