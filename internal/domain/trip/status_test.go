package trip

import "testing"

func TestParseStatus(t *testing.T) {
	for _, code := range []int{7, 8, 9} {
		if _, err := ParseStatus(code); err != nil {
			t.Errorf("ParseStatus(%d): unexpected error %v", code, err)
		}
	}
	for _, code := range []int{0, 1, 3, 6, 10, -7} {
		if _, err := ParseStatus(code); err == nil {
			t.Errorf("ParseStatus(%d): expected error", code)
		}
	}
}

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusInProgress, true},
		{StatusPending, StatusCompleted, false},
		{StatusPending, StatusPending, false},
		{StatusInProgress, StatusCompleted, true},
		{StatusInProgress, StatusPending, false},
		{StatusCompleted, StatusPending, false},
		{StatusCompleted, StatusInProgress, false},
		{StatusCompleted, StatusCompleted, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s: got %v, want %v", c.from.Label(), c.to.Label(), got, c.want)
		}
	}
}

func TestActiveAndTerminal(t *testing.T) {
	if !StatusPending.Active() || !StatusInProgress.Active() {
		t.Error("pending and in_progress must count as active")
	}
	if StatusCompleted.Active() {
		t.Error("completed must not count as active")
	}
	if !StatusCompleted.Terminal() {
		t.Error("completed must be terminal")
	}
	if StatusPending.Terminal() || StatusInProgress.Terminal() {
		t.Error("pending and in_progress must not be terminal")
	}
}

func TestEventTypeFor(t *testing.T) {
	if EventTypeFor(StatusInProgress) != EventStarted {
		t.Error("in_progress must map to VIAJE_INICIADO")
	}
	if EventTypeFor(StatusCompleted) != EventCompleted {
		t.Error("completed must map to VIAJE_COMPLETADO")
	}
	if EventTypeFor(StatusPending) != EventStatusChanged {
		t.Error("pending must map to the generic event")
	}
}
