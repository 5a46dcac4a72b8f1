package memory

import (
	"context"
	"sync"
)

// keyedMutex exclusión mutua por llave que respeta la cancelación del contexto.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]chan struct{})}
}

// lock bloquea la llave y devuelve la función que la libera.
func (k *keyedMutex) lock(ctx context.Context, key string) (func(), error) {
	for {
		k.mu.Lock()
		ch, held := k.locks[key]
		if !held {
			ch = make(chan struct{})
			k.locks[key] = ch
			k.mu.Unlock()
			var once sync.Once
			return func() {
				once.Do(func() {
					k.mu.Lock()
					delete(k.locks, key)
					k.mu.Unlock()
					close(ch)
				})
			}, nil
		}
		k.mu.Unlock()
		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}
