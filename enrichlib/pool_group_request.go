package enrichlib

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
)

type lookupTask struct {
	ctx           context.Context
	request       lookupRequest
	client        GeoLookupClient
	resultChannel chan<- lookupResult
	wg            *sync.WaitGroup
}

// poolGroupRequest schedules lookups of a single run into a shared
// worker pool. All tasks of the group share a context which is
// cancelled if scheduling fails.
type poolGroupRequest struct {
	ctx           context.Context
	cancel        context.CancelFunc
	resultChannel chan<- lookupResult
	client        GeoLookupClient
	wg            *sync.WaitGroup
	pool          *ants.PoolWithFunc
}

func (p *poolGroupRequest) Do(ctx context.Context, req lookupRequest) error {
	select {
	case <-ctx.Done():
		return ErrContextIsClosed
	case <-p.ctx.Done():
		return ErrContextIsClosed
	default:
	}

	p.wg.Add(1)

	task := &lookupTask{
		ctx:           p.ctx,
		request:       req,
		client:        p.client,
		resultChannel: p.resultChannel,
		wg:            p.wg,
	}

	if err := p.pool.Invoke(task); err != nil {
		p.wg.Done()
		p.cancel()

		return fmt.Errorf("cannot schedule a task: %w", err)
	}

	return nil
}

func (p *poolGroupRequest) Close() {
	p.cancel()
}

func newPoolGroupRequest(ctx context.Context,
	resultChannel chan<- lookupResult,
	client GeoLookupClient,
	wg *sync.WaitGroup,
	pool *ants.PoolWithFunc) *poolGroupRequest {
	ctx, cancel := context.WithCancel(ctx)

	return &poolGroupRequest{
		ctx:           ctx,
		cancel:        cancel,
		wg:            wg,
		resultChannel: resultChannel,
		client:        client,
		pool:          pool,
	}
}
