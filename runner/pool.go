package runner

import (
	"context"
	"fmt"
	"hash"
	"hash/fnv"
	"math/rand"
	"sync"

	"github.com/tryfix/errors"
	"github.com/tryfix/log"
	"github.com/tryfix/metrics"
	"github.com/tryfix/sourceformat/api"
	"github.com/tryfix/sourceformat/cloud"
	"github.com/tryfix/sourceformat/format"
)

type ExecutionOrder int

const (
	OrderRandom ExecutionOrder = iota
	OrderByKey
	OrderPreserved
)

func (eo ExecutionOrder) String() string {
	order := `OrderRandom`

	if eo == OrderByKey {
		return `OrderByKey`
	}

	if eo == OrderPreserved {
		return `OrderPreserved`
	}

	return order
}

// Emitter receives every element read by the pool. It is called from several workers at once.
type Emitter func(ctx context.Context, shard int, element interface{}) error

type task struct {
	ctx      context.Context
	stepName string
	index    int
	shard    *api.SplitShard
	emit     Emitter
	doneClb  func(err error)
}

type PoolConfig struct {
	NumOfWorkers     int
	WorkerBufferSize int
	Order            ExecutionOrder
}

func NewPoolConfig() *PoolConfig {
	return &PoolConfig{
		NumOfWorkers:     4,
		WorkerBufferSize: 10,
		Order:            OrderByKey,
	}
}

func (c *PoolConfig) validate() error {
	if c.Order > OrderPreserved || c.Order < OrderRandom {
		return errors.New(`invalid pool order`)
	}

	if c.WorkerBufferSize < 1 {
		return errors.New(`pool WorkerBufferSize should be greater than 0`)
	}

	if c.NumOfWorkers < 1 {
		return errors.New(`pool NumOfWorkers should be greater than 0`)
	}

	return nil
}

// Pool reads shards concurrently. Each shard is read in its own session by a single worker.
type Pool struct {
	id      string
	format  *format.SourceFormat
	size    int64
	workers []*worker
	logger  log.Logger
	order   ExecutionOrder
	mu      *sync.Mutex
	hasher  hash.Hash32
	state   *sync.RWMutex
	stopped bool
}

var ErrPoolStopped = errors.New(`pool stopped`)

func NewPool(id string, f *format.SourceFormat, metricsReporter metrics.Reporter, logger log.Logger, config *PoolConfig) (*Pool, error) {
	if err := config.validate(); err != nil {
		return nil, err
	}

	p := &Pool{
		id:      id,
		format:  f,
		size:    int64(config.NumOfWorkers),
		order:   config.Order,
		logger:  logger.NewLog(log.Prefixed(`pool`)),
		workers: make([]*worker, config.NumOfWorkers),
		mu:      new(sync.Mutex),
		hasher:  fnv.New32a(),
		state:   new(sync.RWMutex),
	}

	shardsRead := metricsReporter.Counter(metrics.MetricConf{
		Path:   `source_pool_shards_read`,
		Labels: []string{`pool_id`, `status`},
	})

	for i := int64(config.NumOfWorkers) - 1; i >= 0; i-- {
		p.workers[i] = &worker{
			pool:       p,
			logger:     p.logger.NewLog(log.Prefixed(fmt.Sprintf(`worker-%d`, i))),
			tasks:      make(chan task, config.WorkerBufferSize),
			shardsRead: shardsRead,
		}
	}

	for _, w := range p.workers {
		go w.start()
	}

	return p, nil
}

// Run queues one shard. doneClb is invoked once the shard is fully read or failed.
func (p *Pool) Run(ctx context.Context, stepName string, index int, shard *api.SplitShard, emit Emitter, doneClb func(err error)) {
	p.state.RLock()
	if p.stopped {
		p.state.RUnlock()
		doneClb(ErrPoolStopped)
		return
	}
	defer p.state.RUnlock()

	w, err := p.worker(shard)
	if err != nil {
		doneClb(err)
		return
	}

	w.tasks <- task{
		ctx:      ctx,
		stepName: stepName,
		index:    index,
		shard:    shard,
		emit:     emit,
		doneClb:  doneClb,
	}
}

// ReadShards reads all shards and waits for them. The first failure is returned.
func (p *Pool) ReadShards(ctx context.Context, stepName string, shards []*api.SplitShard, emit Emitter) error {
	wg := new(sync.WaitGroup)
	errs := make(chan error, len(shards))

	for i, shard := range shards {
		wg.Add(1)
		p.Run(ctx, stepName, i, shard, emit, func(err error) {
			if err != nil {
				errs <- err
			}
			wg.Done()
		})
	}

	wg.Wait()
	close(errs)

	return <-errs
}

// Stop lets workers finish queued shards and exit. Shards queued afterwards fail with ErrPoolStopped.
func (p *Pool) Stop() {
	p.state.Lock()
	defer p.state.Unlock()

	if p.stopped {
		return
	}
	p.stopped = true

	for _, w := range p.workers {
		w.stop()
	}
}

func (p *Pool) worker(shard *api.SplitShard) (*worker, error) {
	var w int64
	if p.order == OrderRandom && p.size > 1 {
		w = rand.Int63n(p.size)
		return p.workers[w], nil
	}

	if p.order == OrderByKey {
		if shard == nil || shard.Source == nil {
			return nil, errors.New(`shard carries no source`)
		}

		key, err := cloud.GetString(shard.Source.Spec, format.SerializedSourceKey)
		if err != nil {
			return nil, err
		}

		p.mu.Lock()
		p.hasher.Reset()
		_, err = p.hasher.Write([]byte(key))
		sum := p.hasher.Sum32()
		p.mu.Unlock()
		if err != nil {
			return nil, err
		}

		w = int64(sum) % p.size
	}

	return p.workers[w], nil
}

type worker struct {
	tasks      chan task
	pool       *Pool
	logger     log.Logger
	shardsRead metrics.Counter
}

func (w *worker) start() {
	for t := range w.tasks {
		err := w.read(t)
		status := `ok`
		if err != nil {
			status = `failed`
			w.logger.ErrorContext(t.ctx, fmt.Sprintf(`reading shard %d failed due to %s`, t.index, err))
		}
		w.shardsRead.Count(1, map[string]string{`pool_id`: w.pool.id, `status`: status})
		t.doneClb(err)
	}
}

func (w *worker) read(t task) (err error) {
	if t.shard == nil || t.shard.Source == nil {
		return errors.New(`shard carries no source`)
	}

	reader, err := w.pool.format.CreateReader(t.stepName, t.shard.Source.Spec)
	if err != nil {
		return err
	}

	it, err := reader.Iterator(t.ctx)
	if err != nil {
		return err
	}

	defer func() {
		if closeErr := it.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	for {
		if t.ctx.Err() != nil {
			return t.ctx.Err()
		}

		ok, err := it.HasNext()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		v, err := it.Next()
		if err != nil {
			return err
		}

		if err := t.emit(t.ctx, t.index, v); err != nil {
			return err
		}
	}
}

func (w *worker) stop() {
	close(w.tasks)
}
