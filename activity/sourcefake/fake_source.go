package sourcefake

import (
	"sync"

	"github.com/hkominsky/bullseye-client/activity"
)

var _ activity.Source = (*FakeSource)(nil)

// FakeSource delivers synthetic interaction signals synchronously.
type FakeSource struct {
	mu   sync.Mutex
	subs map[activity.Kind]map[int]func()
	next int
}

func New() *FakeSource {
	return &FakeSource{subs: make(map[activity.Kind]map[int]func())}
}

func (f *FakeSource) Subscribe(kind activity.Kind, fn func()) func() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.subs[kind] == nil {
		f.subs[kind] = make(map[int]func())
	}
	id := f.next
	f.next++
	f.subs[kind][id] = fn
	return func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		delete(f.subs[kind], id)
	}
}

// Fire delivers one signal of the given kind to current subscribers.
func (f *FakeSource) Fire(kind activity.Kind) {
	f.mu.Lock()
	fns := make([]func(), 0, len(f.subs[kind]))
	for _, fn := range f.subs[kind] {
		fns = append(fns, fn)
	}
	f.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// SubscriberCount reports live subscriptions for a kind.
func (f *FakeSource) SubscriberCount(kind activity.Kind) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs[kind])
}
