package whatsapp

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/flemzord/warelay/internal/channel"
	"github.com/flemzord/warelay/pkg/message"
)

type sentPresence struct {
	jid   types.JID
	state types.ChatPresence
	media types.ChatPresenceMedia
}

type fakeTransport struct {
	mu        sync.Mutex
	connected bool
	connects  int
	dialErrs  []error
	messages  []*waE2E.Message
	targets   []types.JID
	presences []sentPresence
	sendErr   error
}

func (f *fakeTransport) Connect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connects++
	if len(f.dialErrs) > 0 {
		err := f.dialErrs[0]
		f.dialErrs = f.dialErrs[1:]
		return err
	}
	f.connected = true
	return nil
}

func (f *fakeTransport) Disconnect() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connected = false
}

func (f *fakeTransport) IsConnected() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.connected
}

func (f *fakeTransport) GetQRChannel(context.Context) (<-chan whatsmeow.QRChannelItem, error) {
	ch := make(chan whatsmeow.QRChannelItem)
	close(ch)
	return ch, nil
}

func (f *fakeTransport) SendMessage(_ context.Context, to types.JID, msg *waE2E.Message, _ ...whatsmeow.SendRequestExtra) (whatsmeow.SendResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return whatsmeow.SendResponse{}, f.sendErr
	}
	f.targets = append(f.targets, to)
	f.messages = append(f.messages, msg)
	return whatsmeow.SendResponse{}, nil
}

func (f *fakeTransport) SendChatPresence(_ context.Context, jid types.JID, state types.ChatPresence, media types.ChatPresenceMedia) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.presences = append(f.presences, sentPresence{jid: jid, state: state, media: media})
	return nil
}

func newTestChannel(t *testing.T, ft *fakeTransport) *WhatsApp {
	t.Helper()
	w, err := New(Config{SessionDir: t.TempDir()}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.client = ft
	w.paired = func() bool { return true }
	return w
}

func TestSendText(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{connected: true}
	w := newTestChannel(t, ft)

	if err := w.SendText(context.Background(), "6281234567890@s.whatsapp.net", "halo"); err != nil {
		t.Fatalf("SendText: %v", err)
	}
	if len(ft.messages) != 1 || ft.messages[0].GetConversation() != "halo" {
		t.Fatalf("messages = %+v", ft.messages)
	}
	if ft.targets[0].User != "6281234567890" || ft.targets[0].Server != types.DefaultUserServer {
		t.Errorf("target = %v", ft.targets[0])
	}
}

func TestSendText_Errors(t *testing.T) {
	t.Parallel()

	t.Run("not connected", func(t *testing.T) {
		t.Parallel()
		w := newTestChannel(t, &fakeTransport{})
		if err := w.SendText(context.Background(), "628@s.whatsapp.net", "x"); !errors.Is(err, channel.ErrNotConnected) {
			t.Errorf("err = %v, want ErrNotConnected", err)
		}
	})

	t.Run("before start", func(t *testing.T) {
		t.Parallel()
		w, err := New(Config{}, nil)
		if err != nil {
			t.Fatalf("New: %v", err)
		}
		if err := w.SendText(context.Background(), "628@s.whatsapp.net", "x"); !errors.Is(err, channel.ErrNotConnected) {
			t.Errorf("err = %v, want ErrNotConnected", err)
		}
	})

	t.Run("invalid contact", func(t *testing.T) {
		t.Parallel()
		w := newTestChannel(t, &fakeTransport{connected: true})
		if err := w.SendText(context.Background(), "", "x"); !errors.Is(err, channel.ErrInvalidContact) {
			t.Errorf("err = %v, want ErrInvalidContact", err)
		}
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("boom")
		w := newTestChannel(t, &fakeTransport{connected: true, sendErr: boom})
		if err := w.SendText(context.Background(), "628@s.whatsapp.net", "x"); !errors.Is(err, boom) {
			t.Errorf("err = %v, want boom", err)
		}
	})
}

func TestSendPresence(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{connected: true}
	w := newTestChannel(t, ft)
	ctx := context.Background()

	_ = w.SendPresence(ctx, "628@s.whatsapp.net", message.PresenceComposing)
	_ = w.SendPresence(ctx, "628@s.whatsapp.net", message.PresencePaused)

	if len(ft.presences) != 2 {
		t.Fatalf("presences = %d, want 2", len(ft.presences))
	}
	if ft.presences[0].state != types.ChatPresenceComposing || ft.presences[1].state != types.ChatPresencePaused {
		t.Errorf("states = %v, %v", ft.presences[0].state, ft.presences[1].state)
	}
	if ft.presences[0].media != types.ChatPresenceMediaText {
		t.Errorf("media = %v, want text", ft.presences[0].media)
	}
}

func TestConnectionEvents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name          string
		evt           any
		wantReconnect bool
	}{
		{"disconnected", &events.Disconnected{}, true},
		{"stream replaced", &events.StreamReplaced{}, true},
		{"temporary ban", &events.TemporaryBan{}, true},
		{"client outdated", &events.ClientOutdated{}, true},
		{"logged out", &events.LoggedOut{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			ft := &fakeTransport{}
			w := newTestChannel(t, ft)

			w.handleEvent(&events.Connected{})
			if !w.Connected() {
				t.Fatal("expected connected after Connected event")
			}

			w.handleEvent(tt.evt)
			w.wg.Wait()

			ft.mu.Lock()
			connects := ft.connects
			ft.mu.Unlock()
			if got := connects == 1; got != tt.wantReconnect {
				t.Errorf("reconnected = %v, want %v", got, tt.wantReconnect)
			}
			if !tt.wantReconnect && w.Connected() {
				t.Error("still marked connected after logout")
			}
		})
	}
}

func TestReconnect_RetriesFailedDial(t *testing.T) {
	t.Parallel()
	dialErr := errors.New("dial tcp: lookup web.whatsapp.com: no such host")
	ft := &fakeTransport{dialErrs: []error{dialErr, dialErr}}
	w := newTestChannel(t, ft)
	w.retryDelay = time.Millisecond

	w.handleEvent(&events.Connected{})
	w.handleEvent(&events.Disconnected{})
	w.wg.Wait()

	ft.mu.Lock()
	connects, connected := ft.connects, ft.connected
	ft.mu.Unlock()
	if connects != 3 {
		t.Errorf("connect attempts = %d, want 3", connects)
	}
	if !connected {
		t.Fatal("transport not reconnected after failed dials")
	}

	w.handleEvent(&events.Connected{})
	if !w.Connected() {
		t.Error("channel not marked connected after recovery")
	}
}

func TestReconnect_StopEndsRetries(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{dialErrs: []error{errors.New("down"), errors.New("down"), errors.New("down")}}
	w := newTestChannel(t, ft)
	w.retryDelay = time.Hour

	w.handleEvent(&events.Disconnected{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.Stop(ctx); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	ft.mu.Lock()
	defer ft.mu.Unlock()
	if ft.connects > 1 {
		t.Errorf("connect attempts = %d, want at most 1", ft.connects)
	}
}

func TestNoReconnectWhileStopping(t *testing.T) {
	t.Parallel()
	ft := &fakeTransport{}
	w := newTestChannel(t, ft)

	if err := w.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	w.handleEvent(&events.Disconnected{})
	w.wg.Wait()
	if ft.connects != 0 {
		t.Errorf("connects = %d, want 0", ft.connects)
	}
}

func TestInboundDelivery(t *testing.T) {
	t.Parallel()
	w := newTestChannel(t, &fakeTransport{connected: true})

	got := make(chan message.Batch, 1)
	w.SetInbox(func(b message.Batch) { got <- b })
	w.handleEvent(&events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{Chat: types.NewJID("628", types.DefaultUserServer)},
			ID:            "M1",
		},
	})

	b := <-got
	if b.Type != message.BatchNotify || len(b.Messages) != 1 || b.Messages[0].ID != "M1" {
		t.Errorf("batch = %+v", b)
	}
}

func TestStart_RequiresInbox(t *testing.T) {
	t.Parallel()
	w, err := New(Config{SessionDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Start(); !errors.Is(err, channel.ErrNoInbox) {
		t.Errorf("Start err = %v, want ErrNoInbox", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	t.Parallel()
	cfg := Config{}
	cfg.defaults()
	if cfg.SessionDir != DefaultSessionDir {
		t.Errorf("SessionDir = %q", cfg.SessionDir)
	}
	if want := "file:auth_info/session.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"; cfg.dsn() != want {
		t.Errorf("dsn = %q, want %q", cfg.dsn(), want)
	}
}
