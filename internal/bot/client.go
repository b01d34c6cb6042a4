package bot

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	"pigeon/internal/event"
	"pigeon/internal/logger"
	"pigeon/internal/messaging"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout   = 10 * time.Second
	shutdownTimeout     = 5 * time.Second
	defaultDrainTimeout = 10 * time.Second
)

// Client runs the webhook listener, the timer and the dispatch loop. All
// handlers are called from a single goroutine, one event at a time.
type Client struct {
	port         int
	handler      EventHandler
	commands     map[string]CommandFunc
	actions      map[string]ActionFunc
	messenger    *messaging.Client
	bus          *event.Bus
	engine       *gin.Engine
	tickInterval time.Duration
	drainTimeout time.Duration
	now          func() time.Time

	// stopping is set before the bus is closed on shutdown.
	stopping atomic.Bool
}

// Handler returns the gin engine serving the webhook endpoint.
func (c *Client) Handler() *gin.Engine {
	return c.engine
}

// Run binds the configured port and serves until ctx is cancelled or a
// fatal error occurs. Cancellation shuts the server down gracefully, then
// dispatches the events already accepted and returns nil.
func (c *Client) Run(ctx context.Context) error {
	addr := fmt.Sprintf(":%d", c.port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return c.serve(ctx, ln)
}

func (c *Client) serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:           c.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	return c.run(ctx, srv, ln)
}

// RunDispatcher runs the timer and the dispatch loop without the HTTP
// listener, for hosts that serve Handler themselves. It returns nil when ctx
// is cancelled and event.ErrBusClosed if the bus is closed underneath it.
// The bus is closed on return so blocked producers are released.
func (c *Client) RunDispatcher(ctx context.Context) error {
	return c.run(ctx, nil, nil)
}

// run drives the timer, the dispatch loop and, when srv is set, the HTTP
// server. Once ctx ends the server stops accepting requests first, then the
// bus is closed and the events still queued are dispatched. Handlers keep a
// live context until the bus is empty or drainTimeout passes; whatever is
// left after that is logged and dropped.
func (c *Client) run(ctx context.Context, srv *http.Server, ln net.Listener) error {
	log := logger.GetLogger()

	handlerCtx, cancelHandlers := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelHandlers()
	drained := make(chan struct{})

	g, gctx := errgroup.WithContext(ctx)
	if srv != nil {
		g.Go(func() error {
			log.Info("listening for slack requests", zap.String("addr", ln.Addr().String()))
			if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		})
	}
	g.Go(func() error {
		return c.tick(gctx)
	})
	g.Go(func() error {
		defer close(drained)
		return c.dispatch(handlerCtx)
	})
	g.Go(func() error {
		<-gctx.Done()

		var err error
		if srv != nil {
			err = shutdown(ctx, srv)
		}
		c.closeBus()

		timer := time.NewTimer(c.drainTimeout)
		defer timer.Stop()
		select {
		case <-drained:
		case <-timer.C:
			log.Warn("event drain timed out", zap.Duration("timeout", c.drainTimeout), zap.Int("queued", c.bus.Len()))
			cancelHandlers()
		}
		return err
	})
	return g.Wait()
}

func shutdown(ctx context.Context, srv *http.Server) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	logger.GetLogger().Info("http server stopped")
	return nil
}

// closeBus releases blocked producers and lets dispatch finish once the
// queue is empty.
func (c *Client) closeBus() {
	c.stopping.Store(true)
	c.bus.Close()
}

// tick publishes a Tick immediately and then once per interval.
func (c *Client) tick(ctx context.Context) error {
	ticker := time.NewTicker(c.tickInterval)
	defer ticker.Stop()

	for {
		ev := event.Tick{Delivery: event.NewDelivery(), At: c.now()}
		if err := c.bus.Publish(ctx, ev); err != nil {
			if ctx.Err() != nil || errors.Is(err, event.ErrBusClosed) {
				return nil
			}
			return fmt.Errorf("failed to publish tick: %w", err)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// dispatch consumes the bus until it is closed. A bus closed by anything
// but closeBus is reported as event.ErrBusClosed. Once ctx ends, the events
// still queued are logged and dropped.
func (c *Client) dispatch(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			c.discard()
			return nil
		}

		ev, err := c.bus.Receive(ctx)
		switch {
		case err == nil:
			c.handle(ctx, ev)
		case errors.Is(err, event.ErrBusClosed) && c.stopping.Load():
			return nil
		case ctx.Err() != nil:
			continue
		default:
			return err
		}
	}
}

func (c *Client) discard() {
	for _, ev := range c.bus.Drain() {
		logger.GetLogger().Warn("event dropped at shutdown",
			zap.String("kind", ev.Kind()),
			zap.String("delivery_id", ev.DeliveryID()))
	}
}

// handle routes one event. Handler errors and panics are logged and never
// stop the loop.
func (c *Client) handle(ctx context.Context, ev event.Event) {
	log := logger.GetLogger().With(
		zap.String("kind", ev.Kind()),
		zap.String("delivery_id", ev.DeliveryID()))

	defer func() {
		if r := recover(); r != nil {
			log.Error("handler panicked", zap.Any("panic", r))
		}
	}()

	start := time.Now()
	if err := c.route(ctx, ev, log); err != nil {
		log.Error("handler failed", zap.Error(err), zap.Duration("duration", time.Since(start)))
		return
	}
	log.Debug("event handled", zap.Duration("duration", time.Since(start)))
}

func (c *Client) route(ctx context.Context, ev event.Event, log *zap.Logger) error {
	switch ev := ev.(type) {
	case event.MemberJoined:
		return c.handler.MemberJoinedChannel(c.newContext(ctx), ev.Channel, ev.User, ev.Inviter)
	case event.SlashCommandInvoked:
		name := strings.TrimPrefix(ev.Command, "/")
		fn, ok := c.commands[name]
		if !ok {
			log.Warn("no handler for slash command", zap.String("command", ev.Command))
			return nil
		}
		return fn(c.newInteractionContext(ctx, ev.TriggerID), ev.Text, ev.User, ev.Channel)
	case event.BlockInteraction:
		fn, ok := c.actions[ev.Action]
		if !ok {
			log.Warn("no handler for message action", zap.String("action", ev.Action))
			return nil
		}
		return fn(c.newInteractionContext(ctx, ev.TriggerID), ev.User, ev.Username, ev.DisplayName, ev.Channel)
	case event.Tick:
		return c.handler.Callback(c.newContext(ctx), ev.At)
	default:
		log.Warn("unsupported event")
		return nil
	}
}

func (c *Client) newContext(ctx context.Context) Context {
	return Context{Context: ctx, Messenger: c.messenger}
}

func (c *Client) newInteractionContext(ctx context.Context, triggerID string) InteractionContext {
	return InteractionContext{Context: c.newContext(ctx), TriggerID: triggerID}
}
