package chain

import (
	"sync/atomic"

	"dxf/log"

	"github.com/pkg/errors"
)

var (
	ErrNotIsolated = errors.New("node still has a successor")
	ErrOwnsChain   = errors.New("node still owns a sub-record chain")
	ErrDoubleFree  = errors.New("node has already been released")
	ErrNilNode     = errors.New("nil node")
	ErrCycle       = errors.New("chain contains a cycle")
)

// Node is one element of a singly linked chain of records. Successor must
// return an untyped nil for the last node.
type Node interface {
	Successor() Node
	Detach()
	Release()
	Released() bool
}

// Owner is a node that owns a chain of sub-records, such as the vertices of
// a polyline.
type Owner interface {
	Node
	Owned() Node
	Disown()
}

// Manager allocates, initializes and frees the nodes of one record type.
type Manager struct {
	// accessed atomically; kept first for 64-bit alignment
	allocated uint64
	released  uint64

	Kind string
	New  func() Node
	// Defaults resets a node to its schema defaults.
	Defaults func(Node)
	// Sub manages the chains owned by nodes of this kind.
	Sub *Manager
}

var lgr = log.WithModule("chain")

type Stats struct {
	Allocated uint64
	Released  uint64
}

func (s Stats) Live() uint64 {
	return s.Allocated - s.Released
}

// Allocate returns a zero node.
func (m *Manager) Allocate() Node {
	atomic.AddUint64(&m.allocated, 1)
	return m.New()
}

// Init applies the schema defaults to n. A nil n is allocated first.
func (m *Manager) Init(n Node) Node {
	if n == nil {
		lgr.Debug("allocating node for initialization", "kind", m.Kind)
		n = m.Allocate()
	}
	if m.Defaults != nil {
		m.Defaults(n)
	}
	return n
}

// FreeOne releases a single isolated node. The node is left unmodified when
// it still has a successor or an owned chain.
func (m *Manager) FreeOne(n Node) error {
	if n == nil {
		return ErrNilNode
	}
	if n.Released() {
		return errors.Wrap(ErrDoubleFree, m.Kind)
	}
	if n.Successor() != nil {
		return errors.Wrap(ErrNotIsolated, m.Kind)
	}
	if o, ok := n.(Owner); ok && o.Owned() != nil {
		return errors.Wrap(ErrOwnsChain, m.Kind)
	}
	n.Release()
	atomic.AddUint64(&m.released, 1)
	return nil
}

// FreeChain walks the chain from head to tail, detaching each node from its
// successor and releasing it together with any chain it owns. It returns
// the number of nodes of this kind released. The chain is checked before
// anything is released, so an error leaves every node untouched.
func (m *Manager) FreeChain(head Node) (int, error) {
	if err := m.check(head); err != nil {
		return 0, err
	}

	count := 0
	for n := head; n != nil; {
		next := n.Successor()
		n.Detach()
		if o, ok := n.(Owner); ok && o.Owned() != nil {
			if _, err := m.Sub.FreeChain(o.Owned()); err != nil {
				return count, err
			}
			o.Disown()
		}
		if err := m.FreeOne(n); err != nil {
			return count, err
		}
		count++
		n = next
	}
	lgr.Trace("freed chain", "kind", m.Kind, "count", count)
	return count, nil
}

func (m *Manager) check(head Node) error {
	seen := make(map[Node]bool)
	for n := head; n != nil; n = n.Successor() {
		if seen[n] {
			return errors.Wrap(ErrCycle, m.Kind)
		}
		seen[n] = true
		if n.Released() {
			return errors.Wrap(ErrDoubleFree, m.Kind)
		}
		if o, ok := n.(Owner); ok && o.Owned() != nil {
			if m.Sub == nil {
				return errors.Wrapf(ErrOwnsChain, "%s has no sub-record manager", m.Kind)
			}
			if err := m.Sub.check(o.Owned()); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *Manager) Stats() Stats {
	return Stats{
		Allocated: atomic.LoadUint64(&m.allocated),
		Released:  atomic.LoadUint64(&m.released),
	}
}

// Len returns the number of nodes in the chain starting at head.
func Len(head Node) int {
	n := 0
	for ; head != nil; head = head.Successor() {
		n++
	}
	return n
}

// Walk calls fn for every node from head to tail and stops at the first
// error.
func Walk(head Node, fn func(Node) error) error {
	for n := head; n != nil; n = n.Successor() {
		if err := fn(n); err != nil {
			return err
		}
	}
	return nil
}
