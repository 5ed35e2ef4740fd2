package status

import "strings"

// Status is one step in the order lifecycle.
type Status string

const (
	Pending   Status = "PENDING"
	Accepted  Status = "ACCEPTED"
	Assigned  Status = "ASSIGNED"
	Picked    Status = "PICKED"
	Delivered Status = "DELIVERED"
	Completed Status = "COMPLETED"
	Cancelled Status = "CANCELLED"
)

// Entry is the resolved position of a status within the lifecycle.
// CANCELLED shares its rank with COMPLETED: it is a terminal alternate
// branch, not a step past delivery.
type Entry struct {
	Key   Status `json:"key"`
	Rank  int    `json:"rank"`
	Label string `json:"label"`
}

var lifecycle = []Entry{
	{Pending, 1, "Pending"},
	{Accepted, 2, "Accepted"},
	{Assigned, 3, "Assigned"},
	{Picked, 4, "Picked"},
	{Delivered, 5, "Delivered"},
	{Completed, 6, "Completed"},
	{Cancelled, 6, "Cancelled"},
}

// Resolve maps a raw status string to its lifecycle entry. Matching is
// case-insensitive. Empty or unrecognized input resolves to PENDING;
// backends drift, and an unknown status must not break rendering.
func Resolve(raw string) Entry {
	key := Status(strings.ToUpper(strings.TrimSpace(raw)))
	for _, e := range lifecycle {
		if e.Key == key {
			return e
		}
	}
	return lifecycle[0]
}

// IsCancelledOrMissing reports whether progress rendering should be
// suppressed: the order was cancelled, or there is no status at all.
func IsCancelledOrMissing(raw string) bool {
	if strings.TrimSpace(raw) == "" {
		return true
	}
	return Resolve(raw).Key == Cancelled
}

// Segments describes how many progress segments are filled.
type Segments struct {
	Active   int `json:"active"`
	Inactive int `json:"inactive"`
}

// ProgressSegments splits total segments into active/inactive for the
// given status. The rank is clamped to [0, total].
func ProgressSegments(raw string, total int) Segments {
	if total < 0 {
		total = 0
	}
	active := Resolve(raw).Rank
	if active > total {
		active = total
	}
	if active < 0 {
		active = 0
	}
	return Segments{Active: active, Inactive: total - active}
}

// IsTerminal reports whether no further forward transition exists.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Cancelled
}

func (s Status) String() string {
	return string(s)
}

// CanTransition reports whether an order may move from one status to
// another. Transitions only move forward in the lifecycle, except
// CANCELLED which is reachable from any non-terminal state.
func CanTransition(from, to Status) bool {
	if from.IsTerminal() {
		return false
	}
	if to == Cancelled {
		return true
	}
	return Resolve(string(to)).Rank > Resolve(string(from)).Rank && Resolve(string(to)).Key == to
}
