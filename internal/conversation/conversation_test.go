package conversation

import (
	"context"
	"errors"
	"testing"
	"time"
)

var fixedNow = time.Date(2026, 10, 16, 8, 30, 0, 123_000_000, time.UTC)

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	got := FormatTimestamp(fixedNow)
	if want := "2026-10-16T08:30:00.123Z"; got != want {
		t.Errorf("FormatTimestamp = %q, want %q", got, want)
	}

	jakarta := time.FixedZone("WIB", 7*3600)
	if got := FormatTimestamp(fixedNow.In(jakarta)); got != "2026-10-16T08:30:00.123Z" {
		t.Errorf("FormatTimestamp should normalize to UTC, got %q", got)
	}
}

func TestHistory_AppendDoesNotMutate(t *testing.T) {
	t.Parallel()

	base := History{NewRecord(RoleUser, "hi", fixedNow)}
	next := base.Append(RoleAssistant, "hello", fixedNow)

	if len(base) != 1 {
		t.Fatalf("base mutated: len = %d", len(base))
	}
	if len(next) != 2 {
		t.Fatalf("len(next) = %d, want 2", len(next))
	}
	if last := next[1]; last.Role != RoleAssistant || last.Content != "hello" {
		t.Errorf("appended record = %+v", last)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	t.Parallel()

	h := History{}.
		Append(RoleUser, "Hello", fixedNow).
		Append(RoleAssistant, "Hi there", fixedNow.Add(time.Second))

	data, err := Encode(h)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(got) != len(h) {
		t.Fatalf("len = %d, want %d", len(got), len(h))
	}
	for i := range h {
		if got[i] != h[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], h[i])
		}
	}
}

func TestCodec_WireFormat(t *testing.T) {
	t.Parallel()

	data, err := Encode(History{NewRecord(RoleUser, "Hello", fixedNow)})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := `[{"role":"user","content":"Hello","timestamp":"2026-10-16T08:30:00.123Z"}]`
	if string(data) != want {
		t.Errorf("Encode = %s, want %s", data, want)
	}

	empty, err := Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil): %v", err)
	}
	if string(empty) != "[]" {
		t.Errorf("Encode(nil) = %s, want []", empty)
	}
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"not json", `{"role":"user"}`, "null", `[{"role":`} {
		_, err := Decode([]byte(raw))
		if err == nil {
			t.Errorf("Decode(%q): expected error", raw)
			continue
		}
		if !errors.Is(err, ErrParse) {
			t.Errorf("Decode(%q): error %v should match ErrParse", raw, err)
		}
		var pe *ParseError
		if !errors.As(err, &pe) {
			t.Errorf("Decode(%q): error %T should be *ParseError", raw, err)
		}
	}
}

func TestMemoryStore_AbsentIsEmpty(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0, func() time.Time { return fixedNow })
	h, err := s.Load(context.Background(), "628111@s.whatsapp.net")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if h == nil || len(h) != 0 {
		t.Errorf("Load = %#v, want empty non-nil history", h)
	}
}

func TestMemoryStore_SaveLoad(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0, func() time.Time { return fixedNow })
	ctx := context.Background()
	h := History{}.Append(RoleUser, "Hello", fixedNow).Append(RoleAssistant, "Hi", fixedNow)

	if err := s.Save(ctx, "c1", h); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := s.Load(ctx, "c1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 || got[0] != h[0] || got[1] != h[1] {
		t.Errorf("Load = %+v, want %+v", got, h)
	}
}

func TestMemoryStore_ExpiryWindowResetsOnSave(t *testing.T) {
	t.Parallel()

	now := fixedNow
	s := NewMemoryStore(DefaultRetention, func() time.Time { return now })
	ctx := context.Background()

	if err := s.Save(ctx, "c1", History{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	now = now.Add(time.Second)
	if got := s.TTL("c1"); got != DefaultRetention-time.Second {
		t.Errorf("TTL after 1s = %v, want %v", got, DefaultRetention-time.Second)
	}

	if err := s.Save(ctx, "c1", History{}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := s.TTL("c1"); got != DefaultRetention {
		t.Errorf("TTL after resave = %v, want fresh %v", got, DefaultRetention)
	}

	now = now.Add(DefaultRetention)
	h, err := s.Load(ctx, "c1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(h) != 0 {
		t.Errorf("expired history should load empty, got %+v", h)
	}
}

func TestMemoryStore_CorruptValue(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(0, nil)
	s.SetRaw("c1", []byte("{oops"))

	_, err := s.Load(context.Background(), "c1")
	var pe *ParseError
	if !errors.As(err, &pe) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if pe.ContactID != "c1" {
		t.Errorf("ContactID = %q, want %q", pe.ContactID, "c1")
	}
}
