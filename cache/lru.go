package cache

// lruNode is one element of the recency list. It carries its key so an
// eviction can delete the map entry in O(1).
type lruNode[K comparable] struct {
	key  K
	prev *lruNode[K]
	next *lruNode[K]
}

// lruList orders keys by recency: head is the most recently used, tail the
// least. Not safe for concurrent use; the owning shard locks around it.
type lruList[K comparable] struct {
	head *lruNode[K]
	tail *lruNode[K]
	len  int
}

func newLRUList[K comparable]() *lruList[K] {
	return &lruList[K]{}
}

func (l *lruList[K]) Len() int { return l.len }

// PushFront adds a key at the most-recently-used end and returns its node.
func (l *lruList[K]) PushFront(key K) *lruNode[K] {
	node := &lruNode[K]{key: key}
	if l.head == nil {
		l.head = node
		l.tail = node
	} else {
		node.next = l.head
		l.head.prev = node
		l.head = node
	}
	l.len++
	return node
}

// MoveToFront marks an existing node as most recently used.
func (l *lruList[K]) MoveToFront(node *lruNode[K]) {
	if node == nil || node == l.head {
		return
	}
	l.unlink(node)
	node.next = l.head
	if l.head != nil {
		l.head.prev = node
	}
	l.head = node
	if l.tail == nil {
		l.tail = node
	}
	l.len++
}

// Remove unlinks a node from the list.
func (l *lruList[K]) Remove(node *lruNode[K]) {
	if node == nil {
		return
	}
	l.unlink(node)
}

// RemoveOldest removes the least recently used key and returns it.
func (l *lruList[K]) RemoveOldest() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	node := l.tail
	l.unlink(node)
	return node.key, true
}

// Oldest returns the least recently used key without removing it.
func (l *lruList[K]) Oldest() (K, bool) {
	if l.tail == nil {
		var zero K
		return zero, false
	}
	return l.tail.key, true
}

// Clear drops every node.
func (l *lruList[K]) Clear() {
	l.head = nil
	l.tail = nil
	l.len = 0
}

func (l *lruList[K]) unlink(node *lruNode[K]) {
	if node.prev != nil {
		node.prev.next = node.next
	} else {
		l.head = node.next
	}
	if node.next != nil {
		node.next.prev = node.prev
	} else {
		l.tail = node.prev
	}
	node.prev = nil
	node.next = nil
	l.len--
}
