// Package whatsapp implements the WhatsApp multi-device channel on top of
// whatsmeow. It owns the single live session: pairing, credential
// persistence, reconnects, inbound delivery, and outbound text/presence.
package whatsapp

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mdp/qrterminal/v3"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"github.com/flemzord/warelay/internal/channel"
	"github.com/flemzord/warelay/internal/core"
	"github.com/flemzord/warelay/internal/metrics"
	"github.com/flemzord/warelay/pkg/message"
)

// ModuleID identifies the WhatsApp channel.
const ModuleID core.ModuleID = "channel.whatsapp"

const backendName = "whatsapp"

// defaultRetryDelay separates reconnect attempts whose dial failed.
const defaultRetryDelay = 5 * time.Second

// Compile-time interface guards.
var (
	_ channel.Channel = (*WhatsApp)(nil)
	_ core.Starter    = (*WhatsApp)(nil)
	_ core.Stopper    = (*WhatsApp)(nil)
)

// transport is the slice of *whatsmeow.Client the channel drives.
type transport interface {
	Connect() error
	Disconnect()
	IsConnected() bool
	GetQRChannel(ctx context.Context) (<-chan whatsmeow.QRChannelItem, error)
	SendMessage(ctx context.Context, to types.JID, msg *waE2E.Message, extra ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error)
	SendChatPresence(ctx context.Context, jid types.JID, state types.ChatPresence, media types.ChatPresenceMedia) error
}

// WhatsApp is the WhatsApp channel module.
type WhatsApp struct {
	config  Config
	logger  *slog.Logger
	metrics *metrics.Metrics

	db        *sql.DB
	container *sqlstore.Container
	client    transport
	paired    func() bool

	retryDelay time.Duration

	mu        sync.RWMutex
	inbox     func(message.Batch)
	connected atomic.Bool
	stopping  atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures a WhatsApp channel.
type Option func(*WhatsApp)

// WithMetrics records connection state and reconnects on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *WhatsApp) { w.metrics = m }
}

// New creates an unstarted WhatsApp channel.
func New(cfg Config, logger *slog.Logger, opts ...Option) (*WhatsApp, error) {
	cfg.defaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w := &WhatsApp{
		config:     cfg,
		logger:     logger,
		retryDelay: defaultRetryDelay,
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// ModuleInfo implements core.Module.
func (w *WhatsApp) ModuleInfo() core.ModuleInfo {
	return core.ModuleInfo{ID: ModuleID}
}

// SetInbox implements channel.Channel.
func (w *WhatsApp) SetInbox(fn func(batch message.Batch)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.inbox = fn
}

// Connected implements channel.Channel.
func (w *WhatsApp) Connected() bool {
	return w.connected.Load()
}

// Start implements core.Starter. It opens the credential store, loads the
// paired device (or a blank one awaiting pairing) and connects.
func (w *WhatsApp) Start() error {
	w.mu.RLock()
	hasInbox := w.inbox != nil
	w.mu.RUnlock()
	if !hasInbox {
		return fmt.Errorf("whatsapp: %w, call SetInbox before Start", channel.ErrNoInbox)
	}

	if err := os.MkdirAll(w.config.SessionDir, 0o700); err != nil {
		return fmt.Errorf("whatsapp: create session dir: %w", err)
	}
	db, err := sql.Open("sqlite", w.config.dsn())
	if err != nil {
		return fmt.Errorf("whatsapp: open session db: %w", err)
	}

	waLogger := newWALogger(w.logger)
	container := sqlstore.NewWithDB(db, "sqlite3", waLogger.Sub("Database"))
	if err := container.Upgrade(w.ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("whatsapp: migrate session db: %w", err)
	}
	device, err := container.GetFirstDevice(w.ctx)
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("whatsapp: load device: %w", err)
	}

	client := whatsmeow.NewClient(device, waLogger.Sub("Client"))
	client.EnableAutoReconnect = false
	client.AddEventHandler(w.handleEvent)

	w.db = db
	w.container = container
	w.client = client
	w.paired = func() bool { return client.Store.ID != nil }

	if err := w.connect(); err != nil {
		_ = db.Close()
		return err
	}
	return nil
}

// Stop implements core.Stopper.
func (w *WhatsApp) Stop(ctx context.Context) error {
	w.stopping.Store(true)
	w.cancel()
	if w.client != nil {
		w.client.Disconnect()
	}

	done := make(chan struct{})
	go func() {
		w.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

// SendText implements channel.Sender.
func (w *WhatsApp) SendText(ctx context.Context, contactID, text string) error {
	jid, err := w.target(contactID)
	if err != nil {
		return err
	}
	msg := &waE2E.Message{Conversation: proto.String(text)}
	if _, err := w.client.SendMessage(ctx, jid, msg); err != nil {
		return fmt.Errorf("whatsapp: send message: %w", err)
	}
	return nil
}

// SendPresence implements channel.Sender.
func (w *WhatsApp) SendPresence(ctx context.Context, contactID string, p message.Presence) error {
	jid, err := w.target(contactID)
	if err != nil {
		return err
	}
	state := types.ChatPresencePaused
	if p == message.PresenceComposing {
		state = types.ChatPresenceComposing
	}
	if err := w.client.SendChatPresence(ctx, jid, state, types.ChatPresenceMediaText); err != nil {
		return fmt.Errorf("whatsapp: send presence: %w", err)
	}
	return nil
}

func (w *WhatsApp) target(contactID string) (types.JID, error) {
	if w.client == nil || !w.client.IsConnected() {
		return types.JID{}, channel.ErrNotConnected
	}
	jid, err := types.ParseJID(contactID)
	if err != nil || jid.User == "" {
		return types.JID{}, fmt.Errorf("%w: %q", channel.ErrInvalidContact, contactID)
	}
	return jid, nil
}

// connect opens the socket. An unpaired device first requests a QR
// channel so the pairing code can be shown.
func (w *WhatsApp) connect() error {
	if w.paired != nil && !w.paired() {
		qr, err := w.client.GetQRChannel(w.ctx)
		if err != nil {
			return fmt.Errorf("whatsapp: request pairing code: %w", err)
		}
		w.wg.Add(1)
		go w.watchPairing(qr)
	}
	if err := w.client.Connect(); err != nil {
		return fmt.Errorf("whatsapp: connect: %w", err)
	}
	return nil
}

func (w *WhatsApp) watchPairing(qr <-chan whatsmeow.QRChannelItem) {
	defer w.wg.Done()
	for item := range qr {
		switch item.Event {
		case "code":
			w.logger.Info("scan the QR code with WhatsApp to link this device")
			if w.config.PrintQR {
				qrterminal.GenerateHalfBlock(item.Code, qrterminal.L, os.Stdout)
			}
		case "success":
			w.logger.Info("device paired")
		default:
			w.logger.Warn("pairing ended", "event", item.Event, "error", item.Error)
		}
	}
}

func (w *WhatsApp) handleEvent(evt any) {
	if u, ok := connectionUpdate(evt); ok {
		w.onConnectionUpdate(u)
		return
	}
	if batch, ok := inboundBatch(evt); ok {
		w.deliver(batch)
	}
}

func (w *WhatsApp) onConnectionUpdate(u ConnectionUpdate) {
	switch u.State {
	case StateOpen:
		w.connected.Store(true)
		w.metrics.SetBackendUp(backendName, true)
		w.logger.Info("connected to WhatsApp")

	case StateClosed:
		w.connected.Store(false)
		w.metrics.SetBackendUp(backendName, false)
		if w.stopping.Load() {
			return
		}
		reconnect := ShouldReconnect(u.Status)
		w.logger.Warn("connection closed", "status", u.Status, "reconnect", reconnect)
		if !reconnect {
			w.logger.Error("session logged out, pair the device again and restart")
			return
		}
		w.reconnect()
	}
}

// reconnect reopens the socket off the event goroutine; whatsmeow must not
// be reconnected from inside its own handler. A dial that fails emits no
// further events, so failed attempts are retried here until one succeeds
// or the channel stops.
func (w *WhatsApp) reconnect() {
	w.metrics.Reconnect()
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		for attempt := 1; ; attempt++ {
			if w.stopping.Load() {
				return
			}
			w.client.Disconnect()
			err := w.connect()
			if err == nil {
				return
			}
			w.logger.Error("reconnect failed", "attempt", attempt, "retry_in", w.retryDelay, "error", err)

			timer := time.NewTimer(w.retryDelay)
			select {
			case <-w.ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
			w.metrics.Reconnect()
		}
	}()
}

// deliver hands batch to the inbox without blocking the event loop.
func (w *WhatsApp) deliver(batch message.Batch) {
	w.mu.RLock()
	inbox := w.inbox
	w.mu.RUnlock()
	if inbox == nil {
		w.logger.Warn("inbound batch dropped, no inbox", "type", batch.Type)
		return
	}
	if w.stopping.Load() {
		return
	}
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		inbox(batch)
	}()
}
