package whatsapp

import (
	"time"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types/events"

	"github.com/flemzord/warelay/pkg/message"
)

// ConnectionState is the transport session state.
type ConnectionState string

// Connection states.
const (
	StateOpen   ConnectionState = "open"
	StateClosed ConnectionState = "closed"
)

// ConnectionUpdate is a transition of the transport session.
// Status is only meaningful when State is StateClosed.
type ConnectionUpdate struct {
	State  ConnectionState
	Status int
}

// connectionUpdate maps whatsmeow connection events to a ConnectionUpdate.
func connectionUpdate(evt any) (ConnectionUpdate, bool) {
	switch e := evt.(type) {
	case *events.Connected:
		return ConnectionUpdate{State: StateOpen}, true
	case *events.Disconnected:
		return ConnectionUpdate{State: StateClosed, Status: StatusUnknown}, true
	case *events.StreamReplaced:
		return ConnectionUpdate{State: StateClosed, Status: StatusStreamReplaced}, true
	case *events.ConnectFailure:
		return ConnectionUpdate{State: StateClosed, Status: int(e.Reason)}, true
	case *events.TemporaryBan:
		return ConnectionUpdate{State: StateClosed, Status: StatusTemporaryBan}, true
	case *events.ClientOutdated:
		return ConnectionUpdate{State: StateClosed, Status: StatusClientOutdated}, true
	case *events.LoggedOut:
		return ConnectionUpdate{State: StateClosed, Status: StatusLoggedOut}, true
	case events.PermanentDisconnect:
		return ConnectionUpdate{State: StateClosed, Status: StatusUnknown}, true
	}
	return ConnectionUpdate{}, false
}

// inboundBatch maps whatsmeow message events to a message.Batch.
// Live messages arrive as notify batches of one; history sync becomes
// an append batch.
func inboundBatch(evt any) (message.Batch, bool) {
	switch e := evt.(type) {
	case *events.Message:
		return message.Batch{
			Type:     message.BatchNotify,
			Messages: []message.InboundMessage{fromMessageEvent(e)},
		}, true
	case *events.HistorySync:
		return historyBatch(e), true
	}
	return message.Batch{}, false
}

func fromMessageEvent(e *events.Message) message.InboundMessage {
	return message.InboundMessage{
		ID:        e.Info.ID,
		ContactID: e.Info.Chat.String(),
		PushName:  e.Info.PushName,
		Text:      extractText(e.Message),
		FromMe:    e.Info.IsFromMe,
		Timestamp: e.Info.Timestamp,
	}
}

func historyBatch(e *events.HistorySync) message.Batch {
	batch := message.Batch{Type: message.BatchAppend}
	for _, conv := range e.Data.GetConversations() {
		for _, hm := range conv.GetMessages() {
			web := hm.GetMessage()
			if web == nil {
				continue
			}
			batch.Messages = append(batch.Messages, message.InboundMessage{
				ID:        web.GetKey().GetID(),
				ContactID: conv.GetID(),
				PushName:  web.GetPushName(),
				Text:      extractText(web.GetMessage()),
				FromMe:    web.GetKey().GetFromMe(),
				Timestamp: time.Unix(int64(web.GetMessageTimestamp()), 0),
			})
		}
	}
	return batch
}

// extractText returns the plain text of a message, or "" for anything
// that is not a text message.
func extractText(m *waE2E.Message) string {
	if text := m.GetConversation(); text != "" {
		return text
	}
	return m.GetExtendedTextMessage().GetText()
}
