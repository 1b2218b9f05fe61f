package queue

import (
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"remarket/server/internal/models"
)

var (
	ErrQueueFull   = errors.New("queue is full")
	ErrQueueClosed = errors.New("queue is closed")
)

// ImportQueue buffers listing batches between the feed readers and the
// store writer.
type ImportQueue struct {
	items    chan []*models.Property
	maxSize  int
	closed   bool
	mu       sync.RWMutex
	wg       sync.WaitGroup
	logger   *logrus.Logger
	handlers []func([]*models.Property) error
}

// NewImportQueue creates a queue buffering up to bufferSize batches.
func NewImportQueue(bufferSize int, logger *logrus.Logger) *ImportQueue {
	return &ImportQueue{
		items:    make(chan []*models.Property, bufferSize),
		maxSize:  bufferSize,
		logger:   logger,
		handlers: make([]func([]*models.Property) error, 0),
	}
}

// Push adds a batch to the queue without blocking. A full buffer is the
// caller's signal to back off and retry.
func (q *ImportQueue) Push(batch []*models.Property) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.items <- batch:
		q.logger.WithField("batch_size", len(batch)).Debug("Queued import batch")
		return nil
	default:
		return ErrQueueFull
	}
}

// Subscribe adds a handler function that will be called for each batch.
func (q *ImportQueue) Subscribe(handler func([]*models.Property) error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers = append(q.handlers, handler)
}

// Start begins processing queued batches. Call it once, after the
// subscribers are registered.
func (q *ImportQueue) Start() {
	q.wg.Add(1)
	go q.process()
}

// process drains the queue until it is closed and empty, so batches queued
// before Close are still written.
func (q *ImportQueue) process() {
	defer q.wg.Done()
	for batch := range q.items {
		q.processBatch(batch)
	}
}

func (q *ImportQueue) processBatch(batch []*models.Property) {
	q.mu.RLock()
	handlers := q.handlers
	q.mu.RUnlock()

	for _, handler := range handlers {
		if err := handler(batch); err != nil {
			q.logger.WithError(err).Error("Handler failed to process batch")
		}
	}
}

// Close stops the queue and prevents new items from being added. Already
// queued batches are still processed; use Wait to block until they are.
func (q *ImportQueue) Close() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return nil
	}

	q.closed = true
	close(q.items)
	return nil
}

// Wait blocks until the processing goroutine has drained the queue.
func (q *ImportQueue) Wait() {
	q.wg.Wait()
}

// Len returns the current number of batches in the queue.
func (q *ImportQueue) Len() int {
	return len(q.items)
}

// IsClosed returns whether the queue has been closed.
func (q *ImportQueue) IsClosed() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.closed
}
