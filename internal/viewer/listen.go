package viewer

import (
	"context"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/HendryAvila/knowgraph/internal/syncproto"
)

const (
	// nudgeInterval is the minimum spacing of event-driven polls.
	nudgeInterval = 250 * time.Millisecond

	minReconnectDelay = 500 * time.Millisecond
	maxReconnectDelay = 30 * time.Second
)

// EventsURL derives the websocket URL of the change channel from the sync
// endpoint's base URL.
func EventsURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	switch {
	case strings.HasPrefix(u, "https://"):
		u = "wss://" + strings.TrimPrefix(u, "https://")
	case strings.HasPrefix(u, "http://"):
		u = "ws://" + strings.TrimPrefix(u, "http://")
	}
	return u + syncproto.EventsPath
}

// Listen subscribes to the endpoint's change events and nudges an early poll
// for each, at most once per nudgeInterval. It reconnects with backoff until
// ctx is done. Events are only hints: polling stays authoritative, so Listen
// failing never affects correctness.
func (p *Poller) Listen(ctx context.Context, eventsURL string) error {
	limiter := rate.NewLimiter(rate.Every(nudgeInterval), 1)
	delay := minReconnectDelay

	for {
		err := p.listenOnce(ctx, eventsURL, limiter, func() { delay = minReconnectDelay })
		if ctx.Err() != nil {
			return nil
		}
		p.logger.Debug("Change channel closed, reconnecting",
			zap.String("url", eventsURL),
			zap.Duration("delay", delay),
			zap.Error(err),
		)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
		delay *= 2
		if delay > maxReconnectDelay {
			delay = maxReconnectDelay
		}
	}
}

func (p *Poller) listenOnce(ctx context.Context, eventsURL string, limiter *rate.Limiter, connected func()) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, eventsURL, nil)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	connected()

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		var ev syncproto.ChangeEvent
		if err := conn.ReadJSON(&ev); err != nil {
			return err
		}
		if ev.Type != syncproto.EventGraphChanged {
			continue
		}
		if limiter.Allow() {
			p.Nudge()
		}
	}
}
