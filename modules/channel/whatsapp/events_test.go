package whatsapp

import (
	"testing"
	"time"

	"go.mau.fi/whatsmeow/proto/waCommon"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/proto/waHistorySync"
	"go.mau.fi/whatsmeow/proto/waWeb"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"

	"github.com/flemzord/warelay/pkg/message"
)

func TestConnectionUpdate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		evt  any
		want ConnectionUpdate
		ok   bool
	}{
		{"connected", &events.Connected{}, ConnectionUpdate{State: StateOpen}, true},
		{"disconnected", &events.Disconnected{}, ConnectionUpdate{State: StateClosed, Status: StatusUnknown}, true},
		{"stream replaced", &events.StreamReplaced{}, ConnectionUpdate{State: StateClosed, Status: StatusStreamReplaced}, true},
		{"connect failure", &events.ConnectFailure{Reason: events.ConnectFailureReason(503)}, ConnectionUpdate{State: StateClosed, Status: 503}, true},
		{"temporary ban", &events.TemporaryBan{Code: events.TempBanReason(101)}, ConnectionUpdate{State: StateClosed, Status: StatusTemporaryBan}, true},
		{"client outdated", &events.ClientOutdated{}, ConnectionUpdate{State: StateClosed, Status: StatusClientOutdated}, true},
		{"logged out", &events.LoggedOut{}, ConnectionUpdate{State: StateClosed, Status: StatusLoggedOut}, true},
		{"cat refresh error", &events.CATRefreshError{}, ConnectionUpdate{State: StateClosed, Status: StatusUnknown}, true},
		{"message", &events.Message{}, ConnectionUpdate{}, false},
		{"receipt", &events.Receipt{}, ConnectionUpdate{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := connectionUpdate(tt.evt)
			if ok != tt.ok || got != tt.want {
				t.Errorf("connectionUpdate() = %+v, %v; want %+v, %v", got, ok, tt.want, tt.ok)
			}
		})
	}
}

func TestInboundBatch_Message(t *testing.T) {
	t.Parallel()

	ts := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	evt := &events.Message{
		Info: types.MessageInfo{
			MessageSource: types.MessageSource{
				Chat:   types.NewJID("6281234567890", types.DefaultUserServer),
				Sender: types.NewJID("6281234567890", types.DefaultUserServer),
			},
			ID:        "3EB0ABC",
			PushName:  "Budi",
			Timestamp: ts,
		},
		Message: &waE2E.Message{Conversation: proto.String("halo")},
	}

	batch, ok := inboundBatch(evt)
	if !ok {
		t.Fatal("inboundBatch() not ok")
	}
	if batch.Type != message.BatchNotify || len(batch.Messages) != 1 {
		t.Fatalf("batch = %+v", batch)
	}
	want := message.InboundMessage{
		ID:        "3EB0ABC",
		ContactID: "6281234567890@s.whatsapp.net",
		PushName:  "Budi",
		Text:      "halo",
		Timestamp: ts,
	}
	if got := batch.Messages[0]; got != want {
		t.Errorf("message = %+v, want %+v", got, want)
	}
}

func TestInboundBatch_HistorySync(t *testing.T) {
	t.Parallel()

	evt := &events.HistorySync{Data: &waHistorySync.HistorySync{
		Conversations: []*waHistorySync.Conversation{{
			ID: proto.String("6281111@s.whatsapp.net"),
			Messages: []*waHistorySync.HistorySyncMsg{
				{Message: &waWeb.WebMessageInfo{
					Key:              &waCommon.MessageKey{ID: proto.String("H1"), FromMe: proto.Bool(true)},
					Message:          &waE2E.Message{Conversation: proto.String("lama")},
					MessageTimestamp: proto.Uint64(1700000000),
				}},
				{Message: nil},
			},
		}},
	}}

	batch, ok := inboundBatch(evt)
	if !ok {
		t.Fatal("inboundBatch() not ok")
	}
	if batch.Type != message.BatchAppend {
		t.Errorf("type = %s, want append", batch.Type)
	}
	if len(batch.Messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(batch.Messages))
	}
	m := batch.Messages[0]
	if m.ID != "H1" || m.ContactID != "6281111@s.whatsapp.net" || m.Text != "lama" || !m.FromMe {
		t.Errorf("message = %+v", m)
	}
	if m.Timestamp.Unix() != 1700000000 {
		t.Errorf("timestamp = %v", m.Timestamp)
	}
}

func TestInboundBatch_Unrelated(t *testing.T) {
	t.Parallel()
	if _, ok := inboundBatch(&events.Connected{}); ok {
		t.Error("connected event produced a batch")
	}
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  *waE2E.Message
		want string
	}{
		{"nil", nil, ""},
		{"conversation", &waE2E.Message{Conversation: proto.String("hai")}, "hai"},
		{"extended text", &waE2E.Message{ExtendedTextMessage: &waE2E.ExtendedTextMessage{Text: proto.String("lihat https://x.id")}}, "lihat https://x.id"},
		{"image", &waE2E.Message{ImageMessage: &waE2E.ImageMessage{Caption: proto.String("foto")}}, ""},
		{"whitespace kept", &waE2E.Message{Conversation: proto.String("  ")}, "  "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := extractText(tt.msg); got != tt.want {
				t.Errorf("extractText() = %q, want %q", got, tt.want)
			}
		})
	}
}
