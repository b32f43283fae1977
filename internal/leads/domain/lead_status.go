package domain

import "fmt"

// LeadStatus is the KAM-assessed interest level, independent of the
// reachability ladder tracked by ContactStatus.
type LeadStatus string

const (
	LeadStatusInterested    LeadStatus = "interested"
	LeadStatusNotInterested LeadStatus = "not interested"
	LeadStatusNotContactYet LeadStatus = "not contact yet"
)

// ParseLeadStatus validates a stored lead status string.
func ParseLeadStatus(s string) (LeadStatus, error) {
	switch status := LeadStatus(s); status {
	case LeadStatusInterested, LeadStatusNotInterested, LeadStatusNotContactYet:
		return status, nil
	}
	return "", fmt.Errorf("unknown lead status %q", s)
}
