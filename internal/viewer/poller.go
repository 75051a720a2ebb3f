package viewer

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/HendryAvila/knowgraph/internal/syncproto"
)

// DefaultInterval is the time between the end of one poll and the next.
const DefaultInterval = 2 * time.Second

// PollerConfig configures a Poller.
type PollerConfig struct {
	// BaseURL of the sync endpoint, e.g. http://127.0.0.1:8765.
	BaseURL  string
	Interval time.Duration
	Renderer Renderer
	Logger   *zap.Logger
	Options  Options

	// UserAgent is sent with every request when set.
	UserAgent string
}

// Poller keeps a local view in step with the sync endpoint.
//
// Polls run one at a time on the Run goroutine; the next one is scheduled
// only after the previous one resolved, so a slow endpoint stretches the
// cadence instead of piling up requests. Failed polls are logged at debug
// and retried on the next tick; they never clear what was rendered.
type Poller struct {
	url       string
	interval  time.Duration
	renderer  Renderer
	logger    *zap.Logger
	opts      Options
	userAgent string

	// pollMu serializes polls.
	pollMu sync.Mutex

	// mu guards the view state below.
	mu       sync.Mutex
	snapshot syncproto.Snapshot
	layout   Layout
	selected string
	etag     string
	paused   bool
	// applied is set once a response has been rendered.
	applied bool

	wake chan struct{}
}

// NewPoller creates a Poller. Run starts it.
func NewPoller(cfg PollerConfig) *Poller {
	interval := cfg.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	renderer := cfg.Renderer
	if renderer == nil {
		renderer = RendererFunc(func(Frame) {})
	}
	return &Poller{
		url:       strings.TrimRight(cfg.BaseURL, "/") + syncproto.GraphPath,
		interval:  interval,
		renderer:  renderer,
		logger:    logger.Named("viewer"),
		opts:      cfg.Options,
		userAgent: cfg.UserAgent,
		snapshot:  syncproto.Snapshot{Nodes: []syncproto.Node{}, Links: []syncproto.Link{}},
		layout:    Layout{},
		wake:      make(chan struct{}, 1),
	}
}

// Run polls immediately and then every interval until ctx is done.
func (p *Poller) Run(ctx context.Context) error {
	var tick <-chan time.Time
	schedule := func() {
		if p.Paused() {
			tick = nil
			return
		}
		tick = time.After(p.interval)
	}

	if !p.Paused() {
		p.Poll(ctx)
	}
	schedule()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-tick:
			if !p.Paused() {
				p.Poll(ctx)
			}
			schedule()
		case <-p.wake:
			if p.Paused() {
				continue
			}
			p.Poll(ctx)
			schedule()
		}
	}
}

// Poll fetches one snapshot and applies it. It reports whether a frame was
// rendered: the first successful response always renders, later ones only
// when the view changed. Errors are swallowed.
func (p *Poller) Poll(ctx context.Context) bool {
	p.pollMu.Lock()
	defer p.pollMu.Unlock()

	p.mu.Lock()
	etag := p.etag
	p.mu.Unlock()

	res, err := fetchSnapshot(ctx, p.url, etag, p.userAgent)
	if err != nil {
		viewerPolls.WithLabelValues("error").Inc()
		p.logger.Debug("Poll failed", zap.String("url", p.url), zap.Error(err))
		return false
	}
	if res.NotModified {
		viewerPolls.WithLabelValues("not_modified").Inc()
		return false
	}

	p.mu.Lock()
	r := Reconcile(p.snapshot, res.Snapshot, p.layout, p.selected, p.opts)
	p.etag = res.ETag
	if !r.Changed && p.applied {
		p.mu.Unlock()
		viewerPolls.WithLabelValues("unchanged").Inc()
		return false
	}
	p.applied = true
	p.snapshot = r.Snapshot
	p.layout = r.Layout
	p.selected = r.Selected
	frame := Frame{
		Patch:        r.Patch,
		Nodes:        r.Snapshot.Nodes,
		Links:        r.Links,
		Layout:       r.Layout.Clone(),
		Selected:     r.Selected,
		SelectedNode: r.SelectedNode,
	}
	p.mu.Unlock()

	viewerPolls.WithLabelValues("changed").Inc()
	p.renderer.Apply(frame)
	return true
}

// Pause stops scheduling polls. A poll already in flight completes and
// applies.
func (p *Poller) Pause() {
	p.mu.Lock()
	p.paused = true
	p.mu.Unlock()
}

// Resume polls immediately and restarts the interval. Missed ticks are not
// caught up.
func (p *Poller) Resume() {
	p.mu.Lock()
	p.paused = false
	p.mu.Unlock()
	p.Nudge()
}

// Paused reports whether polling is paused.
func (p *Poller) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Nudge asks Run to poll now. Nudges while paused, or while one is already
// pending, are dropped.
func (p *Poller) Nudge() {
	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// SetPosition moves a node, e.g. after a drag or a layout tick. Unknown ids
// are ignored.
func (p *Poller) SetPosition(id string, pos Position) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	st, ok := p.layout[id]
	if !ok {
		return false
	}
	st.Position = pos
	p.layout[id] = st
	return true
}

// Select marks a node as selected. An empty or unknown id clears the
// selection and returns false.
func (p *Poller) Select(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.layout[id]; !ok || id == "" {
		p.selected = ""
		return false
	}
	p.selected = id
	return true
}

// Selected returns the selected node id, or "".
func (p *Poller) Selected() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.selected
}

// Layout returns a copy of the current layout.
func (p *Poller) Layout() Layout {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.layout.Clone()
}

// Snapshot returns the last snapshot applied.
func (p *Poller) Snapshot() syncproto.Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.snapshot
}
