package relay

// DefaultApology is sent to the contact when a turn fails.
const DefaultApology = "Maaf, terjadi kesalahan saat memproses permintaan Anda."

// Replies maps failure kinds to the text sent back to the contact.
// Kinds without an entry fall back to DefaultApology.
type Replies map[ErrorKind]string

// UniformReplies returns a table that answers every kind with text.
// An empty text selects DefaultApology.
func UniformReplies(text string) Replies {
	if text == "" {
		text = DefaultApology
	}
	return Replies{
		KindConfiguration: text,
		KindParse:         text,
		KindUpstream:      text,
		KindStore:         text,
		KindTransport:     text,
		KindUnknown:       text,
	}
}

// For returns the reply for kind.
func (r Replies) For(kind ErrorKind) string {
	if text, ok := r[kind]; ok && text != "" {
		return text
	}
	if text, ok := r[KindUnknown]; ok && text != "" {
		return text
	}
	return DefaultApology
}
