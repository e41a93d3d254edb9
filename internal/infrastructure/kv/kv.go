package kv

import (
	"context"
	"errors"
)

var ErrTampered = errors.New("kv: sealed value failed authentication")

// Backend stores string values under a namespace and key. Namespaces keep
// one visitor's keys apart from another's.
type Backend interface {
	Get(ctx context.Context, namespace, key string) (string, bool, error)
	Set(ctx context.Context, namespace, key, value string) error
	Delete(ctx context.Context, namespace, key string) error
	Ping(ctx context.Context) error
}

// Purger is implemented by backends whose values do not expire on their own.
// Purge removes values not written within the backend's TTL and reports how
// many were removed.
type Purger interface {
	Purge(ctx context.Context) (int64, error)
}

// KV is a Backend bound to a single namespace.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}

type namespaced struct {
	backend   Backend
	namespace string
}

// Namespace binds b to ns.
func Namespace(b Backend, ns string) KV {
	return &namespaced{backend: b, namespace: ns}
}

func (n *namespaced) Get(ctx context.Context, key string) (string, bool, error) {
	return n.backend.Get(ctx, n.namespace, key)
}

func (n *namespaced) Set(ctx context.Context, key, value string) error {
	return n.backend.Set(ctx, n.namespace, key, value)
}

func (n *namespaced) Delete(ctx context.Context, key string) error {
	return n.backend.Delete(ctx, n.namespace, key)
}
