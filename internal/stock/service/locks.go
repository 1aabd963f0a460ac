package service

import "sync"

// productLocks serializes in-process stock mutations per product id. The
// store's row locks already serialize across processes; this keeps two
// goroutines of the same process from queueing up conflicting transactions.
type productLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newProductLocks() *productLocks {
	return &productLocks{locks: make(map[int]*sync.Mutex)}
}

func (p *productLocks) acquire(productID int) func() {
	p.mu.Lock()
	l, ok := p.locks[productID]
	if !ok {
		l = &sync.Mutex{}
		p.locks[productID] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}
