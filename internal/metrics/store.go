// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package metrics

import (
	"context"
	"errors"
	"time"

	"iptvsite/internal/store"
)

// Result labels for store operations.
const (
	ResultOK          = "ok"
	ResultNotFound    = "not_found"
	ResultConflict    = "conflict"
	ResultUnavailable = "unavailable"
	ResultError       = "error"
)

// StoreResult maps a store error to its result label.
func StoreResult(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, store.ErrNotFound):
		return ResultNotFound
	case errors.Is(err, store.ErrConflict):
		return ResultConflict
	case errors.Is(err, store.ErrUnavailable):
		return ResultUnavailable
	default:
		return ResultError
	}
}

// instrumentedStore counts and times every call to the wrapped store.
type instrumentedStore struct {
	next    store.Store
	backend string
	rec     *Recorder
}

// InstrumentStore wraps s so each Read and Write is recorded under the
// given backend label. A nil recorder returns s unchanged.
func (r *Recorder) InstrumentStore(s store.Store, backend string) store.Store {
	if r == nil {
		return s
	}
	return &instrumentedStore{next: s, backend: backend, rec: r}
}

func (i *instrumentedStore) observe(op string, start time.Time, err error) {
	i.rec.storeOps.WithLabelValues(i.backend, op, StoreResult(err)).Inc()
	i.rec.storeDuration.WithLabelValues(i.backend, op).Observe(time.Since(start).Seconds())
}

func (i *instrumentedStore) Read(ctx context.Context, p string) (*store.Record, error) {
	start := time.Now()
	rec, err := i.next.Read(ctx, p)
	i.observe("read", start, err)
	return rec, err
}

func (i *instrumentedStore) Write(ctx context.Context, p string, content []byte, sha, message string) (string, error) {
	start := time.Now()
	newSHA, err := i.next.Write(ctx, p, content, sha, message)
	i.observe("write", start, err)
	return newSHA, err
}

// Fresh keeps the instrumentation on the wrapped store's uncached view.
func (i *instrumentedStore) Fresh() store.Store {
	return &instrumentedStore{next: store.Fresh(i.next), backend: i.backend, rec: i.rec}
}
