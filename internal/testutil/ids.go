package testutil

import (
	"fmt"
	"sync/atomic"
)

// SequentialIDs hands out run identifiers "<prefix>-0001", "<prefix>-0002"
// and so on, in place of random UUIDs.
type SequentialIDs struct {
	prefix string
	n      atomic.Int64
}

// NewSequentialIDs creates a generator. An empty prefix means "run".
func NewSequentialIDs(prefix string) *SequentialIDs {
	if prefix == "" {
		prefix = "run"
	}
	return &SequentialIDs{prefix: prefix}
}

// Next returns the next identifier.
func (g *SequentialIDs) Next() string {
	return fmt.Sprintf("%s-%04d", g.prefix, g.n.Add(1))
}
