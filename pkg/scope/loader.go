package scope

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Sanchex-22/flow-console/modules/core/domain/entities/company"
	"github.com/Sanchex-22/flow-console/pkg/metrics"
)

// ListSource produces the company list. Sources: the in-process company
// service, or an HTTP client hitting another console instance.
type ListSource func(ctx context.Context) ([]*company.Snapshot, error)

// ListSink receives list updates from the loader.
type ListSink interface {
	OnListChanged(list []*company.Snapshot)
}

type LoaderOptions struct {
	// Fixed interval between retries while degraded.
	Interval time.Duration
	// Upper bound on timer-driven retries. Resume() is not counted.
	RetryLimit int
}

func DefaultLoaderOptions() LoaderOptions {
	return LoaderOptions{
		Interval:   10 * time.Second,
		RetryLimit: 30,
	}
}

// Loader fetches the company list once at startup and keeps retrying on a
// fixed interval while degraded, up to a bounded count. On the first
// failure it delivers the fallback company downstream immediately so
// consumers always see a non-empty list. Resume() forces an immediate
// refetch regardless of the timer, recovering quickly after the host
// regains foreground focus.
//
// Overlapping fetches are not sequenced: the later-resolving response wins.
type Loader struct {
	source ListSource
	sink   ListSink
	log    *logrus.Logger
	opts   LoaderOptions

	mu       sync.Mutex
	degraded bool
	retries  int

	resume chan struct{}
	cancel context.CancelFunc
	done   chan struct{}
}

func NewLoader(source ListSource, sink ListSink, log *logrus.Logger, opts LoaderOptions) *Loader {
	if opts.Interval <= 0 {
		opts.Interval = DefaultLoaderOptions().Interval
	}
	if opts.RetryLimit <= 0 {
		opts.RetryLimit = DefaultLoaderOptions().RetryLimit
	}
	return &Loader{
		source: source,
		sink:   sink,
		log:    log,
		opts:   opts,
		resume: make(chan struct{}, 1),
	}
}

// Start performs the initial fetch and launches the retry loop. It returns
// after the initial attempt, so callers always have a list (real or
// fallback) delivered by then.
func (l *Loader) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.done = make(chan struct{})

	if !l.fetch(runCtx) {
		l.deliverFallback()
	}
	go l.run(runCtx)
}

// Stop terminates the retry loop and waits for it to exit.
func (l *Loader) Stop() {
	if l.cancel == nil {
		return
	}
	l.cancel()
	<-l.done
}

// Resume re-issues the fetch immediately, regardless of retry-timer state
// or the retry budget. Hosts call this on foreground/resume events.
func (l *Loader) Resume() {
	select {
	case l.resume <- struct{}{}:
	default:
	}
}

// Degraded reports whether consumers are currently seeing fallback data.
func (l *Loader) Degraded() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.degraded
}

func (l *Loader) run(ctx context.Context) {
	defer close(l.done)

	ticker := time.NewTicker(l.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-l.resume:
			l.fetch(ctx)
		case <-ticker.C:
			l.mu.Lock()
			exhausted := !l.degraded || l.retries >= l.opts.RetryLimit
			if !exhausted {
				l.retries++
			}
			l.mu.Unlock()
			if exhausted {
				continue
			}
			metrics.LoaderRetries.Inc()
			l.fetch(ctx)
		}
	}
}

func (l *Loader) fetch(ctx context.Context) bool {
	list, err := l.source(ctx)
	if err != nil {
		l.log.WithError(err).Warn("company list load failed, serving fallback until retry succeeds")
		l.mu.Lock()
		l.degraded = true
		l.mu.Unlock()
		metrics.LoaderDegraded.Set(1)
		return false
	}
	if len(list) == 0 {
		list = []*company.Snapshot{Fallback()}
	}

	l.mu.Lock()
	wasDegraded := l.degraded
	l.degraded = false
	l.retries = 0
	l.mu.Unlock()
	metrics.LoaderDegraded.Set(0)

	if wasDegraded {
		l.log.Info("company list recovered")
	}
	l.sink.OnListChanged(list)
	return true
}

func (l *Loader) deliverFallback() {
	l.sink.OnListChanged([]*company.Snapshot{Fallback()})
}

// ServiceSource adapts anything exposing the company list (normally the
// company service) into a ListSource. Inactive companies are dropped, the
// same projection the list API serves.
func ServiceSource(provider interface {
	GetAll(ctx context.Context) ([]*company.Company, error)
}) ListSource {
	return func(ctx context.Context) ([]*company.Snapshot, error) {
		companies, err := provider.GetAll(ctx)
		if err != nil {
			return nil, err
		}
		out := make([]*company.Snapshot, 0, len(companies))
		for _, c := range companies {
			if !c.IsActive() {
				continue
			}
			out = append(out, c.Snapshot())
		}
		return out, nil
	}
}

// HTTPSource fetches the list from another console instance over HTTP.
func HTTPSource(client *http.Client, baseURL string) ListSource {
	if client == nil {
		client = http.DefaultClient
	}
	return func(ctx context.Context) ([]*company.Snapshot, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/api/companies/all", nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		defer func() {
			_ = resp.Body.Close()
		}()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("company list endpoint returned %d", resp.StatusCode)
		}
		var list []*company.Snapshot
		if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
			return nil, err
		}
		return list, nil
	}
}
