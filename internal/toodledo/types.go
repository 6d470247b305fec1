package toodledo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/teemow/toodledo/internal/codec"
)

// Priority of a task.
type Priority int

const (
	PriorityNegative Priority = -1
	PriorityLow      Priority = 0
	PriorityMedium   Priority = 1
	PriorityHigh     Priority = 2
	PriorityTop      Priority = 3
)

// Status of a task.
type Status int

const (
	StatusNone       Status = 0
	StatusNextAction Status = 1
	StatusActive     Status = 2
	StatusPlanning   Status = 3
	StatusDelegated  Status = 4
	StatusWaiting    Status = 5
	StatusHold       Status = 6
	StatusPostponed  Status = 7
	StatusSomeday    Status = 8
	StatusCanceled   Status = 9
	StatusReference  Status = 10
)

// DueDateModifier qualifies how a task's due date applies.
type DueDateModifier int

const (
	DueBy      DueDateModifier = 0
	DueOn      DueDateModifier = 1
	DueAfter   DueDateModifier = 2
	Optionally DueDateModifier = 3
)

// names maps enum values to their lower case names.
type names[T ~int] map[T]string

func (n names[T]) name(v T) string {
	if s, ok := n[v]; ok {
		return s
	}
	return fmt.Sprintf("%d", int(v))
}

func (n names[T]) parse(kind, s string) (T, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer("-", "_", " ", "_").Replace(s)
	for v, name := range n {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q (valid: %s)", kind, s, strings.Join(n.all(), ", "))
}

func (n names[T]) all() []string {
	all := make([]string, 0, len(n))
	for _, name := range n {
		all = append(all, name)
	}
	sort.Strings(all)
	return all
}

var priorityNames = names[Priority]{
	PriorityNegative: "negative",
	PriorityLow:      "low",
	PriorityMedium:   "medium",
	PriorityHigh:     "high",
	PriorityTop:      "top",
}

var statusNames = names[Status]{
	StatusNone:       "none",
	StatusNextAction: "next_action",
	StatusActive:     "active",
	StatusPlanning:   "planning",
	StatusDelegated:  "delegated",
	StatusWaiting:    "waiting",
	StatusHold:       "hold",
	StatusPostponed:  "postponed",
	StatusSomeday:    "someday",
	StatusCanceled:   "canceled",
	StatusReference:  "reference",
}

var dueDateModifierNames = names[DueDateModifier]{
	DueBy:      "due_by",
	DueOn:      "due_on",
	DueAfter:   "due_after",
	Optionally: "optionally",
}

// Wire codecs of the enums.
var (
	PriorityCodec        = codec.NewEnum("priority", PriorityNegative, PriorityLow, PriorityMedium, PriorityHigh, PriorityTop)
	StatusCodec          = codec.NewEnum("status", StatusNone, StatusNextAction, StatusActive, StatusPlanning, StatusDelegated, StatusWaiting, StatusHold, StatusPostponed, StatusSomeday, StatusCanceled, StatusReference)
	DueDateModifierCodec = codec.NewEnum("due date modifier", DueBy, DueOn, DueAfter, Optionally)
)

func (p Priority) String() string { return priorityNames.name(p) }

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(b []byte) error {
	v, err := ParsePriority(string(b))
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// ParsePriority parses a priority name such as "high".
func ParsePriority(s string) (Priority, error) { return priorityNames.parse("priority", s) }

func (s Status) String() string { return statusNames.name(s) }

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// ParseStatus parses a status name such as "next_action" or "next-action".
func ParseStatus(s string) (Status, error) { return statusNames.parse("status", s) }

func (m DueDateModifier) String() string { return dueDateModifierNames.name(m) }

// MarshalText implements encoding.TextMarshaler.
func (m DueDateModifier) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *DueDateModifier) UnmarshalText(b []byte) error {
	v, err := ParseDueDateModifier(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// ParseDueDateModifier parses a modifier name such as "due_on".
func ParseDueDateModifier(s string) (DueDateModifier, error) {
	return dueDateModifierNames.parse("due date modifier", s)
}
