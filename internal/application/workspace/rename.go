package workspace

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"

	"vaultgraph/internal/application"
	"vaultgraph/internal/ports"
)

// errNotIndexed is retried by the backoff rename resolver
var errNotIndexed = fmt.Errorf("rename target: %w", application.ErrNotReady)

// RenameResolver settles a pending rename once the document store has
// caught up with the new path
type RenameResolver interface {
	AwaitIndexed(ctx context.Context, path string) error
}

// SignalResolver waits for the store's explicit index-caught-up signal
type SignalResolver struct {
	Signal  ports.IndexSignal
	Timeout time.Duration
}

func (r SignalResolver) AwaitIndexed(ctx context.Context, path string) error {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}
	select {
	case <-r.Signal.Indexed(path):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// BackoffResolver polls document metadata with bounded exponential backoff,
// for stores that cannot signal indexing
type BackoffResolver struct {
	Docs            ports.DocumentStore
	InitialInterval time.Duration
	MaxInterval     time.Duration
	MaxTries        uint
}

func (r BackoffResolver) AwaitIndexed(ctx context.Context, path string) error {
	b := backoff.NewExponentialBackOff()
	b.RandomizationFactor = 0
	if r.InitialInterval > 0 {
		b.InitialInterval = r.InitialInterval
	}
	if r.MaxInterval > 0 {
		b.MaxInterval = r.MaxInterval
	}
	tries := r.MaxTries
	if tries == 0 {
		tries = 8
	}

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		meta, err := r.Docs.Metadata(ctx, path)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		if meta == nil {
			return struct{}{}, errNotIndexed
		}
		return struct{}{}, nil
	}, backoff.WithBackOff(b), backoff.WithMaxTries(tries))
	return err
}

// immediateResolver assumes the store indexes synchronously
type immediateResolver struct{}

func (immediateResolver) AwaitIndexed(context.Context, string) error {
	return nil
}
