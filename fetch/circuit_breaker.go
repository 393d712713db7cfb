package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"sync"
	"time"

	"github.com/cenk/backoff"
	circuit "github.com/rubyist/circuitbreaker"
)

// DefaultTripThreshold is the number of consecutive failures that opens a host's breaker.
const DefaultTripThreshold = 5

// BreakerFetcher wraps a FetcherInterface with one circuit breaker per upstream host,
// so a dead tarball mirror fails fast instead of burning retries on every call.
type BreakerFetcher struct {
	fetcher   FetcherInterface
	threshold int64
	cooldown  time.Duration

	mu       sync.RWMutex
	breakers map[string]*circuit.Breaker
}

// BreakerOption configures a BreakerFetcher.
type BreakerOption func(*BreakerFetcher)

// WithTripThreshold sets how many consecutive failures open a breaker.
func WithTripThreshold(n int) BreakerOption {
	return func(b *BreakerFetcher) {
		if n > 0 {
			b.threshold = int64(n)
		}
	}
}

// WithCooldown sets the initial wait before a tripped breaker lets a trial request through.
func WithCooldown(d time.Duration) BreakerOption {
	return func(b *BreakerFetcher) {
		if d > 0 {
			b.cooldown = d
		}
	}
}

// NewBreakerFetcher wraps f.
func NewBreakerFetcher(f FetcherInterface, opts ...BreakerOption) *BreakerFetcher {
	b := &BreakerFetcher{
		fetcher:   f,
		threshold: DefaultTripThreshold,
		cooldown:  30 * time.Second,
		breakers:  make(map[string]*circuit.Breaker),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *BreakerFetcher) breaker(host string) *circuit.Breaker {
	b.mu.RLock()
	br, ok := b.breakers[host]
	b.mu.RUnlock()
	if ok {
		return br
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if br, ok := b.breakers[host]; ok {
		return br
	}

	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = b.cooldown
	exp.MaxInterval = 5 * time.Minute
	exp.Multiplier = 2.0
	exp.MaxElapsedTime = 0
	exp.Reset()

	br = circuit.NewBreakerWithOptions(&circuit.Options{
		BackOff:    exp,
		ShouldTrip: circuit.ThresholdTripFunc(b.threshold),
	})
	b.breakers[host] = br
	return br
}

// Fetch runs the wrapped Fetch through the breaker for the URL's host.
// A not-found response is a definitive answer and does not count as a failure.
func (b *BreakerFetcher) Fetch(ctx context.Context, rawURL string) (*Artifact, error) {
	host := hostOf(rawURL)
	br := b.breaker(host)
	if !br.Ready() {
		return nil, fmt.Errorf("circuit open for %s: %w", host, ErrUpstreamDown)
	}

	var (
		artifact *Artifact
		notFound error
	)
	err := br.Call(func() error {
		a, err := b.fetcher.Fetch(ctx, rawURL)
		if errors.Is(err, ErrNotFound) {
			notFound = err
			return nil
		}
		artifact = a
		return err
	}, 0)
	if notFound != nil {
		return nil, notFound
	}
	if err != nil {
		return nil, err
	}
	return artifact, nil
}

// Head runs the wrapped Head through the breaker for the URL's host.
func (b *BreakerFetcher) Head(ctx context.Context, rawURL string) (size int64, contentType string, err error) {
	host := hostOf(rawURL)
	br := b.breaker(host)
	if !br.Ready() {
		return 0, "", fmt.Errorf("circuit open for %s: %w", host, ErrUpstreamDown)
	}

	var notFound error
	err = br.Call(func() error {
		var headErr error
		size, contentType, headErr = b.fetcher.Head(ctx, rawURL)
		if errors.Is(headErr, ErrNotFound) {
			notFound = headErr
			return nil
		}
		return headErr
	}, 0)
	if notFound != nil {
		return 0, "", notFound
	}
	return size, contentType, err
}

// States reports "open" or "closed" for every host seen so far, sorted by host.
func (b *BreakerFetcher) States() []HostState {
	b.mu.RLock()
	defer b.mu.RUnlock()

	states := make([]HostState, 0, len(b.breakers))
	for host, br := range b.breakers {
		state := "closed"
		if br.Tripped() {
			state = "open"
		}
		states = append(states, HostState{Host: host, State: state, Failures: br.ConsecFailures()})
	}
	sort.Slice(states, func(i, j int) bool { return states[i].Host < states[j].Host })
	return states
}

// HostState is a snapshot of one host's breaker.
type HostState struct {
	Host     string
	State    string
	Failures int64
}

func hostOf(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Host == "" {
		if len(rawURL) > 50 {
			return rawURL[:50]
		}
		return rawURL
	}
	return parsed.Host
}
