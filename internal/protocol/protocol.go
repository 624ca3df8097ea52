package protocol

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DeathMarker is the substring that identifies a death line.
const DeathMarker = "died"

// Action is the trailing part of an event line.
type Action string

// Actions printed by the subject.
const (
	ActionFork  Action = "has taken a fork"
	ActionEat   Action = "is eating"
	ActionSleep Action = "is sleeping"
	ActionThink Action = "is thinking"
	ActionDie   Action = "died"
)

var knownActions = []Action{ActionFork, ActionEat, ActionSleep, ActionThink, ActionDie}

// ErrNoTimestamp is returned when a line has no leading token at all.
var ErrNoTimestamp = errors.New("missing timestamp token")

// Lines splits captured output into lines. A trailing newline does not
// produce an empty final line, and a trailing carriage return is trimmed
// from each line.
func Lines(output string) []string {
	if output == "" {
		return nil
	}
	raw := strings.Split(strings.TrimSuffix(output, "\n"), "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// IsDeathLine reports whether line contains DeathMarker.
func IsDeathLine(line string) bool {
	return strings.Contains(line, DeathMarker)
}

// FirstDeathLine returns the first death line in output order.
func FirstDeathLine(lines []string) (string, bool) {
	for _, l := range lines {
		if IsDeathLine(l) {
			return l, true
		}
	}
	return "", false
}

// LeadingTimestamp parses the first whitespace-delimited token of line as a
// millisecond timestamp.
func LeadingTimestamp(line string) (int64, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return 0, ErrNoTimestamp
	}
	ms, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid timestamp %q: %w", fields[0], err)
	}
	return ms, nil
}

// Event is one parsed lifecycle line.
type Event struct {
	TimestampMs int64
	Philosopher int
	Action      Action
	Raw         string
}

// ParseEvent parses a full "<ms> <id> <action>" line. Lines whose action is
// not one of the known actions are rejected.
func ParseEvent(line string) (Event, error) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return Event{}, fmt.Errorf("malformed event %q: want \"<ms> <id> <action>\"", line)
	}

	ms, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return Event{}, fmt.Errorf("malformed event %q: timestamp: %w", line, err)
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return Event{}, fmt.Errorf("malformed event %q: philosopher id: %w", line, err)
	}

	action := Action(strings.Join(fields[2:], " "))
	if !isKnown(action) {
		return Event{}, fmt.Errorf("malformed event %q: unknown action %q", line, action)
	}

	return Event{
		TimestampMs: ms,
		Philosopher: id,
		Action:      action,
		Raw:         line,
	}, nil
}

func isKnown(a Action) bool {
	for _, k := range knownActions {
		if a == k {
			return true
		}
	}
	return false
}

// Stats summarizes an event stream. The zero value is ready to use.
type Stats struct {
	Lines      int
	Events     int
	Malformed  int
	Actions    map[Action]int
	Meals      map[int]int
	FirstDeath *Event
	LastMs     int64

	// NonMonotonic counts events whose timestamp is lower than the
	// previous event's.
	NonMonotonic int
}

// Observe feeds one line into the statistics.
func (s *Stats) Observe(line string) {
	s.Lines++
	ev, err := ParseEvent(line)
	if err != nil {
		s.Malformed++
		return
	}

	if s.Actions == nil {
		s.Actions = make(map[Action]int)
		s.Meals = make(map[int]int)
	}
	if s.Events > 0 && ev.TimestampMs < s.LastMs {
		s.NonMonotonic++
	}
	s.Events++
	s.LastMs = ev.TimestampMs
	s.Actions[ev.Action]++

	switch ev.Action {
	case ActionEat:
		s.Meals[ev.Philosopher]++
	case ActionDie:
		if s.FirstDeath == nil {
			e := ev
			s.FirstDeath = &e
		}
	}
}

// MinMeals returns the smallest meal count over philosophers 1..n.
// Philosophers that never ate count as zero.
func (s *Stats) MinMeals(n int) int {
	if n <= 0 {
		return 0
	}
	lowest := -1
	for id := 1; id <= n; id++ {
		m := s.Meals[id]
		if lowest < 0 || m < lowest {
			lowest = m
		}
	}
	return lowest
}

// Eaters returns the ids of philosophers that ate at least once, sorted.
func (s *Stats) Eaters() []int {
	ids := make([]int, 0, len(s.Meals))
	for id := range s.Meals {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Scan builds Stats for a complete captured output.
func Scan(output string) Stats {
	var s Stats
	for _, l := range Lines(output) {
		s.Observe(l)
	}
	return s
}
