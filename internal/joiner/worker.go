package joiner

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"corpusview/internal/domain"
)

// ErrWorkerStopped is returned when a load is requested from a worker that is not running.
var ErrWorkerStopped = errors.New("join worker is not running")

// Request is the single message sent to the worker for one load.
type Request struct {
	ID     string
	Bundle domain.Bundle
}

// Response is the single completion message for a Request.
type Response struct {
	ID          string
	Collections domain.Collections
	Elapsed     time.Duration
	Err         error
}

type envelope struct {
	ctx   context.Context
	req   Request
	reply chan Response
}

// Worker runs joins off the caller's goroutine, one request at a time.
type Worker struct {
	logger *slog.Logger

	mu       sync.Mutex
	requests chan envelope
	stop     chan struct{}
	done     chan struct{}
}

// NewWorker builds an idle worker; call Start before Load.
func NewWorker(logger *slog.Logger) *Worker {
	return &Worker{logger: logger}
}

// Start launches the worker goroutine. Calling it while running is a no-op.
// Once the goroutine exits, through Stop or ctx, Start may run it again.
func (w *Worker) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.stop != nil {
		return nil
	}

	w.requests = make(chan envelope)
	w.stop = make(chan struct{})
	w.done = make(chan struct{})

	requests, stop, done := w.requests, w.stop, w.done
	go func() {
		defer close(done)
		defer w.release(done)
		for {
			select {
			case env := <-requests:
				env.reply <- w.handle(env.ctx, env.req)
			case <-ctx.Done():
				return
			case <-stop:
				return
			}
		}
	}()

	return nil
}

// Stop halts the worker goroutine and waits for it to exit.
func (w *Worker) Stop(ctx context.Context) error {
	w.mu.Lock()
	if w.stop == nil {
		w.mu.Unlock()
		return nil
	}
	close(w.stop)
	done := w.done
	w.stop = nil
	w.requests = nil
	w.done = nil
	w.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Load posts the bundle to the worker and waits for its single response.
// The context only bounds the wait; there is no retry.
func (w *Worker) Load(ctx context.Context, b domain.Bundle) (domain.Collections, error) {
	w.mu.Lock()
	requests, done := w.requests, w.done
	w.mu.Unlock()

	if requests == nil {
		return domain.Collections{}, ErrWorkerStopped
	}

	env := envelope{
		ctx:   ctx,
		req:   Request{ID: uuid.NewString(), Bundle: b},
		reply: make(chan Response, 1),
	}

	select {
	case requests <- env:
	case <-done:
		return domain.Collections{}, ErrWorkerStopped
	case <-ctx.Done():
		return domain.Collections{}, ctx.Err()
	}

	select {
	case resp := <-env.reply:
		if resp.Err != nil {
			return domain.Collections{}, resp.Err
		}
		return resp.Collections, nil
	case <-ctx.Done():
		return domain.Collections{}, ctx.Err()
	}
}

// release forgets the channels of an exited goroutine unless Stop already did.
func (w *Worker) release(done chan struct{}) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.done != done {
		return
	}
	w.stop = nil
	w.requests = nil
	w.done = nil
}

func (w *Worker) handle(ctx context.Context, req Request) Response {
	started := time.Now()
	w.debug("join started", "request_id", req.ID,
		"articles", len(req.Bundle.Articles),
		"events", len(req.Bundle.Events),
		"topics", len(req.Bundle.Topics),
		"entities", len(req.Bundle.Entities))

	if err := ctx.Err(); err != nil {
		return Response{ID: req.ID, Err: err, Elapsed: time.Since(started)}
	}

	articles := LinkArticles(req.Bundle)

	var out domain.Collections
	out.Articles = articles
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		out.Events = EmbedEvents(req.Bundle.Events, articles)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		out.Topics = EmbedTopics(req.Bundle.Topics, articles)
		return nil
	})
	g.Go(func() error {
		if err := gctx.Err(); err != nil {
			return err
		}
		out.Entities = EmbedEntities(req.Bundle.Entities, articles)
		return nil
	})

	err := g.Wait()
	elapsed := time.Since(started)
	if err != nil {
		w.debug("join abandoned", "request_id", req.ID, "error", err)
		return Response{ID: req.ID, Err: err, Elapsed: elapsed}
	}

	w.debug("join finished", "request_id", req.ID, "elapsed", elapsed)
	return Response{ID: req.ID, Collections: out, Elapsed: elapsed}
}

func (w *Worker) debug(msg string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Debug(msg, args...)
	}
}
