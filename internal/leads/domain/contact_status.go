// Package domain provides core business rules for the contact lifecycle:
// the RNR contact-status ladder and the call-outcome policy. The same rules
// drive both leads and agents.
package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// ContactStatus is the reachability state of a lead or agent.
type ContactStatus string

const (
	// StatusNotContact is the initial state: nobody has tried calling yet,
	// or no attempt has ever gone through.
	StatusNotContact ContactStatus = "not contact"
	// StatusConnected means the most recent call attempt got through.
	StatusConnected ContactStatus = "connected"

	rnrPrefix = "rnr-"
)

// RNR returns the ring-no-response status for rung n (1-based).
func RNR(n int) ContactStatus {
	return ContactStatus(rnrPrefix + strconv.Itoa(n))
}

// RNRLevel extracts the rung from an rnr-n status. Returns 0, false for any
// other status, including malformed rnr strings from legacy data.
func RNRLevel(s ContactStatus) (int, bool) {
	raw, ok := strings.CutPrefix(string(s), rnrPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, false
	}
	return n, true
}

// StatusMachine derives the next contact status from the current one and a
// call outcome. Ceiling caps the RNR ladder; zero means uncapped, matching
// the historical behavior where rnr-n grew without bound.
type StatusMachine struct {
	Ceiling int
}

// Next is total: every (status, connection) pair yields a defined state.
// Unknown or legacy-malformed statuses are treated as StatusNotContact so a
// bad record can never wedge the ladder.
func (m StatusMachine) Next(current ContactStatus, conn Connection) ContactStatus {
	if conn == ConnectionConnected {
		return StatusConnected
	}

	switch current {
	case StatusNotContact, StatusConnected:
		return RNR(1)
	}

	level, ok := RNRLevel(current)
	if !ok {
		return RNR(1)
	}

	next := level + 1
	if m.Ceiling > 0 && next > m.Ceiling {
		return RNR(m.Ceiling)
	}
	return RNR(next)
}

// ParseContactStatus validates a stored status string. Accepts the two named
// states and any well-formed rnr-n.
func ParseContactStatus(s string) (ContactStatus, error) {
	status := ContactStatus(s)
	switch status {
	case StatusNotContact, StatusConnected:
		return status, nil
	}
	if _, ok := RNRLevel(status); ok {
		return status, nil
	}
	return "", fmt.Errorf("unknown contact status %q", s)
}
