package order

import "fmt"

// Status is the fulfillment state of an order.
//
//	Pending ──> Processing ──> Shipped ──> Delivered
//
// Completed is a separate terminal state that only seeded orders carry.
type Status int32

const (
	Pending Status = iota
	Processing
	Shipped
	Delivered
	Completed
)

var statusNames = map[Status]string{
	Pending:    "PENDING",
	Processing: "PROCESSING",
	Shipped:    "SHIPPED",
	Delivered:  "DELIVERED",
	Completed:  "COMPLETED",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("STATUS(%d)", int32(s))
}

// ParseStatus maps a status name back to its value.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if n == name {
			return s, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown status %q", ErrInvalidArgument, name)
}

// IsTerminal reports whether no further transition is possible.
func (s Status) IsTerminal() bool {
	return s == Delivered || s == Completed
}

// Next returns the status one step further along the delivery path.
// The second result is false when s is terminal or unknown.
func (s Status) Next() (Status, bool) {
	switch s {
	case Pending:
		return Processing, true
	case Processing:
		return Shipped, true
	case Shipped:
		return Delivered, true
	default:
		return s, false
	}
}
