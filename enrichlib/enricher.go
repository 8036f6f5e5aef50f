package enrichlib

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
)

const (
	// DefaultWorkers is a number of lookups which may run in parallel.
	// 1 means that IPs are resolved one by one.
	DefaultWorkers = 1

	workerPoolExpireTime = time.Minute
)

// Enricher is an enrichment pipeline: it deduplicates IP addresses of
// visit records, resolves each valid address exactly once and expands
// results back to visits.
//
// Enricher is safe for concurrent use. A worker pool is shared between
// concurrent runs so workers is a global limit of in-flight lookups.
type Enricher struct {
	logger     Logger
	client     GeoLookupClient
	usageStats *UsageStats
	rwmutex    sync.RWMutex
	closeOnce  sync.Once
	workerPool *ants.PoolWithFunc
	closed     bool
}

// Process enriches given records. It never fails because of a single
// IP: invalid addresses are skipped silently, failed lookups are
// reported to observer and their rows are omitted.
//
// Output is ordered by the first appearance of the IP in records and
// then by the original order of rows within this IP.
//
// If ctx is closed before all lookups are done, Process returns
// whatever was resolved so far with ErrContextIsClosed.
func (e *Enricher) Process(ctx context.Context,
	records []VisitRecord,
	observer Observer) ([]EnrichedRecord, Summary, error) {
	e.rwmutex.RLock()
	defer e.rwmutex.RUnlock()

	summary := Summary{
		Records: len(records),
	}

	if e.closed {
		return nil, summary, ErrEnricherShutdown
	}

	if observer == nil {
		observer = NoopObserver{}
	}

	uniqueIPs, rowsByIP := groupByIP(records)
	requests := make([]lookupRequest, 0, len(uniqueIPs))

	summary.UniqueIPs = len(uniqueIPs)

	for _, v := range uniqueIPs {
		if !IsValidIP(v) {
			summary.InvalidIPs++

			continue
		}

		requests = append(requests, lookupRequest{
			index:  len(requests),
			ip:     v,
			parsed: parseIP(v),
		})
	}

	rv := []EnrichedRecord{}

	if len(requests) == 0 {
		return rv, summary, nil
	}

	e.usageStats.Run()

	results := e.lookupAll(ctx, requests, observer, &summary)

	for i, req := range requests {
		res := results[i]
		if res == nil || res.err != nil {
			continue
		}

		for _, row := range rowsByIP[req.ip] {
			rv = append(rv, EnrichedRecord{
				VisitRecord: records[row],
				GeoRecord:   res.record,
			})
		}
	}

	summary.Enriched = len(rv)

	e.logger.RunInfo(summary)

	if summary.Lookups < len(requests) {
		return rv, summary, fmt.Errorf("%w: %v", ErrContextIsClosed, ctx.Err())
	}

	return rv, summary, nil
}

func (e *Enricher) lookupAll(ctx context.Context,
	requests []lookupRequest,
	observer Observer,
	summary *Summary) []*lookupResult {
	resultChannel := make(chan lookupResult, len(requests))
	wg := &sync.WaitGroup{}
	groupRequest := newPoolGroupRequest(ctx, resultChannel, e.client, wg, e.workerPool)

	defer groupRequest.Close()

	go func() {
		defer func() {
			wg.Wait()
			close(resultChannel)
		}()

		for _, v := range requests {
			if err := groupRequest.Do(ctx, v); err != nil {
				return
			}
		}
	}()

	rv := make([]*lookupResult, len(requests))
	total := len(requests)

	for res := range resultChannel {
		if res.err != nil && ctx.Err() != nil && errors.Is(res.err, ctx.Err()) {
			// aborted by a caller, this is not a failure of the IP
			continue
		}

		summary.Lookups++
		e.usageStats.Used(res.err)

		if res.err != nil {
			summary.Failed++

			e.logger.LookupError(res.ip, e.client.Name(), res.err)
			observer.LookupError(res.ip, res.err)
		} else {
			summary.Succeeded++
		}

		observer.Progress(Progress{
			Completed: summary.Lookups,
			Total:     total,
			IP:        res.ip,
		})

		rv[res.index] = &res
	}

	return rv
}

func (e *Enricher) lookupIP(args interface{}) {
	task := args.(*lookupTask)
	defer task.wg.Done()

	record, err := task.client.Lookup(task.ctx, task.request.parsed)

	task.resultChannel <- lookupResult{
		index:  task.request.index,
		ip:     task.request.ip,
		record: record,
		err:    err,
	}
}

// UsageStats returns statistics of the lookup client.
func (e *Enricher) UsageStats() *UsageStats {
	return e.usageStats
}

// Shutdown releases a worker pool. Any Process call after Shutdown
// returns ErrEnricherShutdown.
func (e *Enricher) Shutdown() {
	e.rwmutex.Lock()
	defer e.rwmutex.Unlock()

	e.closed = true

	e.closeOnce.Do(func() {
		e.workerPool.Release()
	})
}

// NewEnricher creates a new pipeline on top of given client. If workers
// is not positive, DefaultWorkers is used.
func NewEnricher(client GeoLookupClient, logger Logger, workers int) *Enricher {
	if logger == nil {
		logger = noopLogger{}
	}

	rv := &Enricher{
		logger: logger,
		client: client,
		usageStats: &UsageStats{
			Name: client.Name(),
		},
	}

	if workers <= 0 {
		workers = DefaultWorkers
	}

	rv.workerPool, _ = ants.NewPoolWithFunc(workers, rv.lookupIP,
		ants.WithExpiryDuration(workerPoolExpireTime))

	return rv
}
