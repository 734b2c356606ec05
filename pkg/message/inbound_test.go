package message

import "testing"

func TestBatch_First(t *testing.T) {
	t.Parallel()

	b := Batch{Type: BatchNotify, Messages: []InboundMessage{
		{ID: "1", Text: "first"},
		{ID: "2", Text: "second"},
	}}
	msg, ok := b.First()
	if !ok {
		t.Fatal("expected a first message")
	}
	if msg.ID != "1" {
		t.Errorf("First().ID = %q, want %q", msg.ID, "1")
	}

	if _, ok := (Batch{Type: BatchNotify}).First(); ok {
		t.Error("empty batch should have no first message")
	}
}

func TestInboundMessage_HasText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		want bool
	}{
		{"", false},
		{"Hello", true},
		{" ", true},
	}
	for _, tt := range tests {
		if got := (InboundMessage{Text: tt.text}).HasText(); got != tt.want {
			t.Errorf("HasText(%q) = %v, want %v", tt.text, got, tt.want)
		}
	}
}
