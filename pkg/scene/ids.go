package scene

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"
)

// IDSource issues scene-unique identifiers. Each ID combines a per-session
// salt with a monotonic counter, so IDs are never reused within a session
// and do not collide across sessions.
//
// The zero value is not usable; use NewIDSource.
type IDSource struct {
	salt string
	next atomic.Uint64
}

// NewIDSource creates an IDSource with a random salt.
func NewIDSource() *IDSource {
	return NewIDSourceWithSalt(strings.SplitN(uuid.NewString(), "-", 2)[0])
}

// NewIDSourceWithSalt creates an IDSource with a fixed salt.
// Tests use it to get predictable IDs.
func NewIDSourceWithSalt(salt string) *IDSource {
	return &IDSource{salt: salt}
}

// Next returns a fresh ID of the form "<prefix>-<salt>-<n>".
func (s *IDSource) Next(prefix string) string {
	n := s.next.Add(1)
	if s.salt == "" {
		return fmt.Sprintf("%s-%d", prefix, n)
	}
	return fmt.Sprintf("%s-%s-%d", prefix, s.salt, n)
}

// Salt returns the source's salt.
func (s *IDSource) Salt() string { return s.salt }

// NewNode creates a node with a fresh ID from ids. It is a pure constructor:
// the node is not added to any graph.
func NewNode(ids *IDSource, kind NodeKind, title, description string, pos Position) Node {
	return Node{
		ID:          ids.Next("node"),
		Kind:        kind,
		Title:       title,
		Description: description,
		Position:    pos,
	}
}

// NewEdge creates an edge with a fresh ID from ids. It is a pure constructor
// and does not check the endpoints; [Graph.AddEdge] does.
func NewEdge(ids *IDSource, source, target, label string, kind EdgeKind) Edge {
	return Edge{
		ID:     ids.Next("edge"),
		Source: source,
		Target: target,
		Label:  label,
		Kind:   kind,
	}
}
