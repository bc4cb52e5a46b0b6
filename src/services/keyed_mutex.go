package services

import (
	"fmt"
	"sync"
)

// keyedMutex hands out one mutex per key. Keys are never evicted; there is one
// per (user, symbol) ever written, which stays small.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*sync.Mutex)}
}

// Lock blocks until key is free and returns its unlock function.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	l, ok := k.locks[key]
	if !ok {
		l = &sync.Mutex{}
		k.locks[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

func ledgerKey(userID int64, symbol string) string {
	return fmt.Sprintf("%d|%s", userID, symbol)
}
