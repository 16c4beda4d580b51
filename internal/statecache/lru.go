package statecache

// lruNode is a node of the recency list. It carries its key so eviction can
// delete the map entry.
type lruNode[K comparable] struct {
	key  K
	prev *lruNode[K]
	next *lruNode[K]
}

// lruList orders keys by last use; head is the most recent. Not safe for
// concurrent use.
type lruList[K comparable] struct {
	head *lruNode[K]
	tail *lruNode[K]
	len  int
}

func (l *lruList[K]) pushFront(key K) *lruNode[K] {
	n := &lruNode[K]{key: key, next: l.head}
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
	return n
}

func (l *lruList[K]) moveToFront(n *lruNode[K]) {
	if n == l.head {
		return
	}
	l.remove(n)
	n.next = l.head
	if l.head != nil {
		l.head.prev = n
	} else {
		l.tail = n
	}
	l.head = n
	l.len++
}

// removeOldest unlinks the least recently used node, or returns nil.
func (l *lruList[K]) removeOldest() *lruNode[K] {
	n := l.tail
	if n != nil {
		l.remove(n)
	}
	return n
}

func (l *lruList[K]) remove(n *lruNode[K]) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		l.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		l.tail = n.prev
	}
	n.prev, n.next = nil, nil
	l.len--
}
