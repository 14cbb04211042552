// Copyright © 2018 One Concern

package storage

import (
	"context"
	"io"
	"time"

	"go.uber.org/zap"
)

// Instrument decorates a store with debug logs on every call
func Instrument(l *zap.Logger, store Store) Store {
	return &instrumentedStore{
		store: store,
		l:     l.With(zap.String("store", store.String())),
	}
}

type instrumentedStore struct {
	store Store
	l     *zap.Logger
}

func (i *instrumentedStore) String() string {
	return i.store.String()
}

func (i *instrumentedStore) Has(ctx context.Context, key string) (bool, error) {
	defer i.trace("Has", time.Now(), zap.String("key", key))
	return i.store.Has(ctx, key)
}

func (i *instrumentedStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	defer i.trace("Get", time.Now(), zap.String("key", key))
	return i.store.Get(ctx, key)
}

func (i *instrumentedStore) Keys(ctx context.Context) ([]string, error) {
	defer i.trace("Keys", time.Now())
	return i.store.Keys(ctx)
}

func (i *instrumentedStore) Move(ctx context.Context, source, key string) error {
	defer i.trace("Move", time.Now(), zap.String("source", source), zap.String("key", key))
	return i.store.Move(ctx, source, key)
}

func (i *instrumentedStore) Path(key string) string {
	return i.store.Path(key)
}

func (i *instrumentedStore) trace(op string, t0 time.Time, fields ...zap.Field) {
	i.l.Debug("storage "+op, append(fields, zap.Duration("elapsed", time.Since(t0)))...)
}
