package relay

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/flemzord/warelay/internal/channel"
	"github.com/flemzord/warelay/internal/conversation"
	"github.com/flemzord/warelay/internal/core"
	"github.com/flemzord/warelay/internal/metrics"
	"github.com/flemzord/warelay/internal/provider"
	"github.com/flemzord/warelay/pkg/message"
)

// ModuleID identifies the relay in the application lifecycle.
const ModuleID core.ModuleID = "relay"

// Reasons a delivery produced no turn.
const (
	ReasonBackfill = "backfill"
	ReasonEmpty    = "empty_batch"
	ReasonFromMe   = "from_me"
	ReasonNoText   = "no_text"
)

// Config holds the dependencies of a Relay.
type Config struct {
	Store     conversation.Store
	Responder provider.Responder
	Sender    channel.Sender
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Tracer    trace.Tracer

	// Now stamps history records. Nil → time.Now.
	Now func() time.Time

	// Replies selects the text sent when a turn fails. Nil → DefaultApology
	// for every kind.
	Replies Replies

	// Serialize runs turns for the same contact one at a time.
	Serialize bool
}

func (c Config) withDefaults() Config {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	if c.Tracer == nil {
		c.Tracer = noop.NewTracerProvider().Tracer("")
	}
	if c.Now == nil {
		c.Now = time.Now
	}
	if c.Replies == nil {
		c.Replies = UniformReplies("")
	}
	return c
}

// Relay turns inbound batches into AI replies. Each accepted message is
// handled on its own goroutine; Stop waits for those still running.
type Relay struct {
	config Config
	logger *slog.Logger
	lanes  *LaneLock

	mu      sync.RWMutex
	stopped bool
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

// Compile-time interface guards.
var (
	_ core.Module  = (*Relay)(nil)
	_ core.Stopper = (*Relay)(nil)
)

// New creates a Relay from cfg.
func New(cfg Config) (*Relay, error) {
	cfg = cfg.withDefaults()
	switch {
	case cfg.Store == nil:
		return nil, ErrNoStore
	case cfg.Responder == nil:
		return nil, ErrNoResponder
	case cfg.Sender == nil:
		return nil, ErrNoSender
	}

	ctx, cancel := context.WithCancel(context.Background())
	r := &Relay{
		config: cfg,
		logger: cfg.Logger,
		ctx:    ctx,
		cancel: cancel,
	}
	if cfg.Serialize {
		r.lanes = NewLaneLock()
	}
	return r, nil
}

// ModuleInfo implements core.Module.
func (r *Relay) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: ModuleID}
}

// Submit handles batch in the background. It never blocks the caller,
// which is normally the transport's event loop.
func (r *Relay) Submit(batch message.Batch) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.stopped {
		r.logger.Warn("relay stopped, delivery dropped", "messages", len(batch.Messages))
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		_ = r.Handle(r.ctx, batch)
	}()
}

// Stop refuses new deliveries and waits for in-flight turns. If ctx ends
// first, running turns are canceled and ctx.Err() is returned.
func (r *Relay) Stop(ctx context.Context) error {
	r.mu.Lock()
	r.stopped = true
	r.mu.Unlock()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.cancel()
		return nil
	case <-ctx.Done():
		r.cancel()
		return ctx.Err()
	}
}

// Handle runs at most one turn for batch. Only the first message of a
// notify batch is considered. It returns the turn's error after the
// contact has been sent the apology, or nil when the batch was ignored
// or the turn succeeded.
func (r *Relay) Handle(ctx context.Context, batch message.Batch) error {
	msg, ok := r.accept(batch)
	if !ok {
		return nil
	}

	r.logger.Info("message received", "contact", msg.ContactID, "message_id", msg.ID)

	if r.lanes != nil {
		r.lanes.Acquire(msg.ContactID)
		defer r.lanes.Release(msg.ContactID)
	}

	ctx, span := r.config.Tracer.Start(ctx, "relay.turn",
		trace.WithAttributes(attribute.String("warelay.message_id", msg.ID)),
	)
	defer span.End()

	start := time.Now()
	r.config.Metrics.TurnStarted()

	if err := r.turn(ctx, msg); err != nil {
		kind := Classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, string(kind))
		r.logger.Error("turn failed", "contact", msg.ContactID, "kind", kind, "error", err)
		r.apologize(ctx, msg.ContactID, kind)
		r.config.Metrics.TurnFinished(metrics.OutcomeFailed, time.Since(start))
		return err
	}

	r.config.Metrics.TurnFinished(metrics.OutcomeReplied, time.Since(start))
	return nil
}

func (r *Relay) accept(batch message.Batch) (message.InboundMessage, bool) {
	if batch.Type != message.BatchNotify {
		r.config.Metrics.Ignored(ReasonBackfill)
		return message.InboundMessage{}, false
	}
	msg, ok := batch.First()
	if !ok {
		r.config.Metrics.Ignored(ReasonEmpty)
		return message.InboundMessage{}, false
	}
	if msg.FromMe {
		r.config.Metrics.Ignored(ReasonFromMe)
		return message.InboundMessage{}, false
	}
	if !msg.HasText() {
		r.config.Metrics.Ignored(ReasonNoText)
		return message.InboundMessage{}, false
	}
	return msg, true
}

func (r *Relay) turn(ctx context.Context, msg message.InboundMessage) error {
	contact := msg.ContactID
	sender := r.config.Sender

	if err := sender.SendPresence(ctx, contact, message.PresenceComposing); err != nil {
		return fmt.Errorf("%w: composing: %w", ErrTransport, err)
	}

	history, err := r.config.Store.Load(ctx, contact)
	if err != nil {
		return fmt.Errorf("%w: load: %w", ErrStore, err)
	}
	history = history.Append(conversation.RoleUser, msg.Text, r.config.Now())

	reply, err := r.config.Responder.Respond(ctx, history)
	if err != nil {
		return err
	}
	history = history.Append(conversation.RoleAssistant, reply, r.config.Now())

	if err := r.config.Store.Save(ctx, contact, history); err != nil {
		return fmt.Errorf("%w: save: %w", ErrStore, err)
	}
	if err := sender.SendText(ctx, contact, reply); err != nil {
		return fmt.Errorf("%w: send reply: %w", ErrTransport, err)
	}
	if err := sender.SendPresence(ctx, contact, message.PresencePaused); err != nil {
		return fmt.Errorf("%w: paused: %w", ErrTransport, err)
	}
	return nil
}

// apologize sends the failure reply and clears the typing indicator.
// Errors are logged only.
func (r *Relay) apologize(ctx context.Context, contact string, kind ErrorKind) {
	sender := r.config.Sender
	if err := sender.SendText(ctx, contact, r.config.Replies.For(kind)); err != nil {
		r.logger.Error("apology not delivered", "contact", contact, "error", err)
	}
	if err := sender.SendPresence(ctx, contact, message.PresencePaused); err != nil {
		r.logger.Warn("paused presence not delivered", "contact", contact, "error", err)
	}
}
