package cache

import (
	"sync"
	"time"
)

// bucket is one slot of the registry's fixed hash table: an intrusive
// singly-linked chain of nodes, exclusively owned and structurally mutated
// under its own reader-writer lock.
type bucket struct {
	mu         sync.RWMutex
	head       *Node
	lastCheck  time.Time
	pruneGuard sync.Mutex // serializes the lastCheck check-and-set across racing readers
}

// find scans the chain for cg. Callers must hold at least the read lock.
func (b *bucket) find(cg string) *Node {
	for n := b.head; n != nil; n = n.next {
		if n.Cg == cg {
			return n
		}
	}
	return nil
}

// insert prepends n to the chain. Callers must hold the write lock.
func (b *bucket) insert(n *Node) {
	n.next = b.head
	b.head = n
}

// removeWhere drops every node for which keep returns false. Callers must
// hold the write lock.
func (b *bucket) removeWhere(keep func(*Node) bool) {
	var prev *Node
	for n := b.head; n != nil; {
		next := n.next
		if keep(n) {
			prev = n
		} else if prev == nil {
			b.head = next
		} else {
			prev.next = next
		}
		n = next
	}
}
