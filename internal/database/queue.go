package database

import (
	"context"
	"database/sql"
	"fmt"
	"hash/fnv"
	"sync"
	"title-service/internal/constants"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// UnitOfWork runs against a single checked-out connection on a queue worker.
type UnitOfWork func(ctx context.Context, conn *sql.Conn) (any, error)

type task struct {
	id   string
	name string
	work UnitOfWork
	done func(any, error)
}

// Queue serializes all persistence through a bounded worker pool sized to the
// connection pool. Tasks with the same ordering key run on the same worker,
// so operations submitted sequentially for one player observe program order.
// Tasks are not cancellable once accepted; they run to completion or failure.
type Queue struct {
	db      *sql.DB
	logger  zerolog.Logger
	workers []chan task

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(db *sql.DB, logger zerolog.Logger) *Queue {
	q := &Queue{
		db:      db,
		logger:  logger,
		workers: make([]chan task, constants.DBMaxOpenConns),
	}
	for i := range q.workers {
		q.workers[i] = make(chan task, constants.QueueDepth)
		q.wg.Add(1)
		go q.run(i)
	}
	return q
}

// Submit enqueues a unit of work keyed for ordering (typically the player id)
// and delivers the result on done. The queue never propagates a failure to
// the submitting goroutine; panics inside work are recovered and routed to
// done as errors.
func (q *Queue) Submit(name, key string, work UnitOfWork, done func(any, error)) {
	id, err := gonanoid.New(constants.TaskIDSize)
	if err != nil {
		id = name
	}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		if done != nil {
			done(nil, fmt.Errorf("write queue closed, rejecting task %s", name))
		}
		return
	}
	q.workers[q.shard(key)] <- task{id: id, name: name, work: work, done: done}
	q.mu.Unlock()
}

// Close stops accepting tasks and blocks until queued work drains.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	for _, w := range q.workers {
		close(w)
	}
	q.mu.Unlock()
	q.wg.Wait()
	q.logger.Info().Msg("write queue drained")
}

func (q *Queue) shard(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(len(q.workers)))
}

func (q *Queue) run(i int) {
	defer q.wg.Done()
	for t := range q.workers[i] {
		result, err := q.execute(t)
		if err != nil {
			q.logger.Error().
				Err(err).
				Str("task_id", t.id).
				Str("task", t.name).
				Int("worker", i).
				Msg("unit of work failed")
		}
		if t.done != nil {
			t.done(result, err)
		}
	}
}

func (q *Queue) execute(t task) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result = nil
			err = fmt.Errorf("unit of work %s panicked: %v", t.name, r)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	conn, err := q.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to check out connection: %w", err)
	}
	defer conn.Close()

	return t.work(ctx, conn)
}

// Submit is the typed form of Queue.Submit.
func Submit[T any](q *Queue, name, key string, work func(ctx context.Context, conn *sql.Conn) (T, error), done func(T, error)) {
	q.Submit(name, key, func(ctx context.Context, conn *sql.Conn) (any, error) {
		return work(ctx, conn)
	}, func(v any, err error) {
		if done == nil {
			return
		}
		out, _ := v.(T)
		done(out, err)
	})
}
