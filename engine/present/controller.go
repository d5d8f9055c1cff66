package present

import (
	"context"
	"errors"
	"sync"

	"github.com/npillmayer/kernstyle/core/font/decoder"
	"github.com/npillmayer/kernstyle/engine/kerning"
	"github.com/npillmayer/kernstyle/engine/kerning/kerncss"
)

// Handle identifies an injected style sheet.
type Handle string

// StyleInjector is a surface which accepts style sheets.
type StyleInjector interface {
	InjectStylesheet(css string) (Handle, error)
	RevokeStylesheet(h Handle) error
}

// FontRegistrar is a surface which is able to render text in a font given
// as binary. The binary is passed on as the client supplied it and may be a
// WOFF or WOFF2 container.
type FontRegistrar interface {
	RegisterRenderableFont(name string, binary []byte) error
}

// Snapshot is the state of a Controller after a transition.
type Snapshot struct {
	Generation uint64         // counts font changes
	HasFont    bool           // false before the first font and after removal
	Table      *kerning.Table // nil while extracting or after failure
	CSS        string
	ClassName  string
	Err        error // extraction failure, if any
}

// Pending is a predicate: is an extraction running for the current font?
func (s Snapshot) Pending() bool {
	return s.HasFont && s.Table == nil && s.Err == nil
}

// ErrNotRunning is returned if events are sent to a controller which is not
// running.
var ErrNotRunning = errors.New("kerning controller is not running")

type event interface{}

type fontChanged struct {
	binary []byte
}

type classNameChanged struct {
	name string
}

type extractionDone struct {
	gen    uint64
	binary []byte
	table  *kerning.Table
	err    error
}

// Controller synchronizes a surface with the kerning of a font.
// Clients send events with FontChanged and ClassNameChanged; all state
// transitions happen on the goroutine executing Run.
type Controller struct {
	config      Config
	styles      StyleInjector
	fonts       FontRegistrar // may be nil
	events      chan event
	done        chan struct{}
	once        sync.Once
	mx          sync.RWMutex // guards snap and subscribers
	snap        Snapshot
	subscribers []func(Snapshot)
	// owned by the Run goroutine
	gen      uint64
	binary   []byte
	table    *kerning.Table
	css      string
	custom   string
	handle   Handle
	injected bool
	cancel   context.CancelFunc
}

// NewController creates a controller for a surface. fonts may be nil if
// the surface renders text without the font.
func NewController(conf Config, styles StyleInjector, fonts FontRegistrar) *Controller {
	return &Controller{
		config: conf,
		styles: styles,
		fonts:  fonts,
		custom: conf.ClassName,
		events: make(chan event, 8),
		done:   make(chan struct{}),
	}
}

// Subscribe registers a function to be called after every transition.
// Subscribers are called on the controller's goroutine and must not call
// back into the controller synchronously.
func (c *Controller) Subscribe(fn func(Snapshot)) {
	c.mx.Lock()
	defer c.mx.Unlock()
	c.subscribers = append(c.subscribers, fn)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mx.RLock()
	defer c.mx.RUnlock()
	return c.snap
}

// FontChanged replaces the current font. A nil binary removes the font.
func (c *Controller) FontChanged(binary []byte) error {
	return c.post(fontChanged{binary: binary})
}

// ClassNameChanged sets a custom scope class. An empty name reverts to the
// class derived from the font's name.
func (c *Controller) ClassNameChanged(name string) error {
	return c.post(classNameChanged{name: name})
}

func (c *Controller) post(ev event) error {
	select {
	case <-c.done:
		return ErrNotRunning
	default:
	}
	select {
	case <-c.done:
		return ErrNotRunning
	case c.events <- ev:
		return nil
	}
}

// Run processes events until ctx is done. On exit, an injected style sheet
// is revoked. Run may be called once only.
func (c *Controller) Run(ctx context.Context) error {
	running := false
	c.once.Do(func() { running = true })
	if !running {
		return errors.New("kerning controller has already been started")
	}
	defer close(c.done)
	tracer().Debugf("kerning controller started")
	for {
		select {
		case <-ctx.Done():
			if c.cancel != nil {
				c.cancel()
			}
			c.revoke()
			tracer().Debugf("kerning controller stopped")
			return ctx.Err()
		case ev := <-c.events:
			c.dispatch(ctx, ev)
		}
	}
}

func (c *Controller) dispatch(ctx context.Context, ev event) {
	switch e := ev.(type) {
	case fontChanged:
		c.onFontChanged(ctx, e)
	case classNameChanged:
		c.onClassNameChanged(e)
	case extractionDone:
		c.onExtractionDone(e)
	default:
		tracer().Errorf("kerning controller: unknown event %T", ev)
	}
}

func (c *Controller) onFontChanged(ctx context.Context, e fontChanged) {
	c.gen++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.revoke()
	c.binary, c.table, c.css = e.binary, nil, ""
	c.publish(nil)
	if e.binary == nil {
		tracer().Infof("font removed")
		return
	}
	tracer().Infof("font changed, starting extraction #%d", c.gen)
	xctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	gen := c.gen
	dopts := decoder.Options{Raw: !c.config.Decompress}
	kopts := kerning.Options{Ranges: c.config.Ranges, Unit: c.config.Unit}
	go func(b []byte) {
		t, err := kerning.ExtractBytes(xctx, b, dopts, kopts)
		_ = c.post(extractionDone{gen: gen, binary: b, table: t, err: err})
	}(e.binary)
}

func (c *Controller) onExtractionDone(e extractionDone) {
	if e.gen != c.gen {
		tracer().Debugf("dropping result of superseded extraction #%d", e.gen)
		return
	}
	c.cancel = nil
	if e.err != nil {
		tracer().Errorf("cannot extract kerning: %v", e.err)
		c.publish(e.err)
		return
	}
	c.table = e.table
	if c.fonts != nil {
		name := e.table.FontName
		if name == "" {
			name = e.table.ClassName()
		}
		if err := c.fonts.RegisterRenderableFont(name, e.binary); err != nil {
			tracer().Errorf("cannot register font %q for rendering: %v", name, err)
		}
	}
	c.publish(c.inject())
}

func (c *Controller) onClassNameChanged(e classNameChanged) {
	c.custom = e.name
	if c.table == nil {
		c.publish(nil)
		return
	}
	c.revoke()
	c.publish(c.inject())
}

func (c *Controller) className() string {
	if c.custom != "" {
		return c.custom
	}
	return c.table.ClassName()
}

func (c *Controller) inject() error {
	c.css = kerncss.Format(c.className(), c.table, kerncss.WithLayout(c.config.Layout))
	h, err := c.styles.InjectStylesheet(c.css)
	if err != nil {
		tracer().Errorf("cannot inject kerning style sheet: %v", err)
		return err
	}
	c.handle, c.injected = h, true
	return nil
}

func (c *Controller) revoke() {
	if !c.injected {
		return
	}
	if err := c.styles.RevokeStylesheet(c.handle); err != nil {
		tracer().Errorf("cannot revoke kerning style sheet: %v", err)
	}
	c.handle, c.injected = "", false
}

func (c *Controller) publish(err error) {
	snap := Snapshot{Generation: c.gen, HasFont: c.binary != nil, Err: err}
	if c.table != nil {
		snap.Table = c.table
		snap.ClassName = c.className()
		snap.CSS = c.css
	}
	c.mx.Lock()
	c.snap = snap
	subscribers := append([]func(Snapshot){}, c.subscribers...)
	c.mx.Unlock()
	for _, fn := range subscribers {
		fn(snap)
	}
}
