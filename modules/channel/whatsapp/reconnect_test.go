package whatsapp

import "testing"

func TestShouldReconnect(t *testing.T) {
	t.Parallel()

	tests := []struct {
		status int
		want   bool
	}{
		{StatusUnknown, true},
		{StatusLoggedOut, false},
		{StatusStreamReplaced, true},
		{403, true},
		{500, true},
	}
	for _, tt := range tests {
		if got := ShouldReconnect(tt.status); got != tt.want {
			t.Errorf("ShouldReconnect(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
