package domain

import "testing"

func TestWithDefaultsFillsConnectedOutcome(t *testing.T) {
	out := CallOutcome{Connection: ConnectionConnected}.WithDefaults()

	if out.Medium != MediumCall {
		t.Fatalf("expected default medium %q, got %q", MediumCall, out.Medium)
	}
	if out.Direction != DirectionOutbound {
		t.Fatalf("expected default direction %q, got %q", DirectionOutbound, out.Direction)
	}
}

func TestWithDefaultsKeepsExplicitValues(t *testing.T) {
	out := CallOutcome{
		Connection: ConnectionConnected,
		Medium:     MediumWhatsApp,
		Direction:  DirectionInbound,
	}.WithDefaults()

	if out.Medium != MediumWhatsApp || out.Direction != DirectionInbound {
		t.Fatalf("explicit values overwritten: %+v", out)
	}
}

func TestWithDefaultsLeavesUnconnectedOutcomeAlone(t *testing.T) {
	out := CallOutcome{Connection: ConnectionNotConnected}.WithDefaults()

	if out.Medium != "" || out.Direction != "" {
		t.Fatalf("unconnected outcome should not be defaulted: %+v", out)
	}
}

func TestValidateRejectsUnknownValues(t *testing.T) {
	bad := []CallOutcome{
		{Connection: "maybe"},
		{Connection: ConnectionConnected, Medium: "telepathy"},
		{Connection: ConnectionNotConnected, Direction: "sideways"},
	}
	for _, o := range bad {
		if err := o.Validate(); err == nil {
			t.Fatalf("expected validation error for %+v", o)
		}
	}

	good := CallOutcome{Connection: ConnectionNotConnected}
	if err := good.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
