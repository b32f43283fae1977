package domain

import "testing"

func TestNextConnectedAlwaysWins(t *testing.T) {
	m := StatusMachine{Ceiling: 6}

	states := []ContactStatus{StatusNotContact, StatusConnected, RNR(1), RNR(3), RNR(5), RNR(6)}
	for _, s := range states {
		if got := m.Next(s, ConnectionConnected); got != StatusConnected {
			t.Fatalf("Next(%q, connected) = %q, want %q", s, got, StatusConnected)
		}
	}
}

func TestNextNotConnectedStartsLadder(t *testing.T) {
	m := StatusMachine{Ceiling: 6}

	if got := m.Next(StatusNotContact, ConnectionNotConnected); got != RNR(1) {
		t.Fatalf("Next(not contact, not connected) = %q, want rnr-1", got)
	}
	// Losing contact after a connect restarts the ladder.
	if got := m.Next(StatusConnected, ConnectionNotConnected); got != RNR(1) {
		t.Fatalf("Next(connected, not connected) = %q, want rnr-1", got)
	}
}

func TestNextClimbsLadder(t *testing.T) {
	m := StatusMachine{Ceiling: 6}

	if got := m.Next(RNR(3), ConnectionNotConnected); got != RNR(4) {
		t.Fatalf("Next(rnr-3, not connected) = %q, want rnr-4", got)
	}
	if got := m.Next(RNR(5), ConnectionConnected); got != StatusConnected {
		t.Fatalf("Next(rnr-5, connected) = %q, want connected", got)
	}
}

func TestNextRespectsCeiling(t *testing.T) {
	m := StatusMachine{Ceiling: 6}
	if got := m.Next(RNR(6), ConnectionNotConnected); got != RNR(6) {
		t.Fatalf("Next(rnr-6, not connected) with ceiling = %q, want rnr-6", got)
	}

	uncapped := StatusMachine{}
	if got := uncapped.Next(RNR(6), ConnectionNotConnected); got != RNR(7) {
		t.Fatalf("Next(rnr-6, not connected) uncapped = %q, want rnr-7", got)
	}
}

func TestNextIsTotalOverAllStates(t *testing.T) {
	m := StatusMachine{Ceiling: 6}

	states := []ContactStatus{StatusNotContact, StatusConnected}
	for n := 1; n <= 6; n++ {
		states = append(states, RNR(n))
	}
	outcomes := []Connection{ConnectionConnected, ConnectionNotConnected}

	for _, s := range states {
		for _, o := range outcomes {
			next := m.Next(s, o)
			if _, err := ParseContactStatus(string(next)); err != nil {
				t.Fatalf("Next(%q, %q) produced invalid state %q: %v", s, o, next, err)
			}
		}
	}
}

func TestNextRecoversFromMalformedLegacyState(t *testing.T) {
	m := StatusMachine{Ceiling: 6}
	if got := m.Next(ContactStatus("rnr-banana"), ConnectionNotConnected); got != RNR(1) {
		t.Fatalf("malformed state should restart ladder, got %q", got)
	}
}

func TestRNRLevel(t *testing.T) {
	if n, ok := RNRLevel(RNR(4)); !ok || n != 4 {
		t.Fatalf("RNRLevel(rnr-4) = %d, %v", n, ok)
	}
	if _, ok := RNRLevel(StatusConnected); ok {
		t.Fatal("RNRLevel(connected) should not parse")
	}
	if _, ok := RNRLevel(ContactStatus("rnr-0")); ok {
		t.Fatal("rnr-0 is not a valid rung")
	}
}

func TestParseContactStatus(t *testing.T) {
	for _, valid := range []string{"not contact", "connected", "rnr-1", "rnr-12"} {
		if _, err := ParseContactStatus(valid); err != nil {
			t.Fatalf("ParseContactStatus(%q) unexpected error: %v", valid, err)
		}
	}
	for _, invalid := range []string{"", "rnr-", "rnr-x", "ghosted"} {
		if _, err := ParseContactStatus(invalid); err == nil {
			t.Fatalf("ParseContactStatus(%q) expected error", invalid)
		}
	}
}
