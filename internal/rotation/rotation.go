// Package rotation decides who is next in line for a chore. The cycle
// is a fixed ordered list of names shared by every chore type.
package rotation

import (
	"errors"
	"strings"
)

// ErrEmptyCycle is returned by NewCycle when no participants are
// configured. This is a startup error; a Cycle is never empty at runtime.
var ErrEmptyCycle = errors.New("rotation: cycle has no participants")

// Cycle is an ordered list of participant names.
type Cycle struct {
	names []string
}

// NewCycle validates and builds a rotation cycle. Blank entries are
// rejected so a stray comma in configuration fails fast instead of
// assigning chores to nobody.
func NewCycle(names []string) (*Cycle, error) {
	if len(names) == 0 {
		return nil, ErrEmptyCycle
	}
	cleaned := make([]string, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, errors.New("rotation: blank participant name")
		}
		cleaned = append(cleaned, n)
	}
	return &Cycle{names: cleaned}, nil
}

// ParseCycle builds a cycle from a comma-separated configuration string.
func ParseCycle(s string) (*Cycle, error) {
	if strings.TrimSpace(s) == "" {
		return nil, ErrEmptyCycle
	}
	return NewCycle(strings.Split(s, ","))
}

// Next returns the participant after current. Matching is
// case-sensitive; an empty or unknown current name yields the first
// participant. Next is total: it always returns a cycle member.
func (c *Cycle) Next(current string) string {
	for i, n := range c.names {
		if n == current {
			return c.names[(i+1)%len(c.names)]
		}
	}
	return c.names[0]
}

// Names returns a copy of the participant list in cycle order.
func (c *Cycle) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of participants.
func (c *Cycle) Len() int {
	return len(c.names)
}
