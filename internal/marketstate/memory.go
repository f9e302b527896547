package marketstate

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

const subscriberBuffer = 8

// MemoryStore 进程内存储，读写无锁，订阅者用互斥锁管理
type MemoryStore struct {
	latest atomic.Pointer[Snapshot]
	now    func() time.Time

	mu   sync.Mutex
	subs map[chan Snapshot]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		now:  time.Now,
		subs: make(map[chan Snapshot]struct{}),
	}
}

func (m *MemoryStore) Publish(_ context.Context, o Observation) error {
	s := o.snapshot(m.now())
	m.latest.Store(&s)

	m.mu.Lock()
	defer m.mu.Unlock()
	for ch := range m.subs {
		// 慢订阅者直接丢弃本次更新
		select {
		case ch <- s:
		default:
		}
	}
	return nil
}

func (m *MemoryStore) Latest(context.Context) (Snapshot, error) {
	if s := m.latest.Load(); s != nil {
		return *s, nil
	}
	return Snapshot{}, nil
}

func (m *MemoryStore) Subscribe(ctx context.Context) (<-chan Snapshot, error) {
	ch := make(chan Snapshot, subscriberBuffer)
	m.mu.Lock()
	m.subs[ch] = struct{}{}
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subs, ch)
		close(ch)
		m.mu.Unlock()
	}()
	return ch, nil
}
