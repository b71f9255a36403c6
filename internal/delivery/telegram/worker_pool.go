package telegram

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// updateRequest one update waiting for a worker
type updateRequest struct {
	ctx    context.Context
	chatID int64
	update tgbotapi.Update
}

// workerPool processes updates in parallel. Every chat is bound to one
// worker queue, so a chat's updates are handled in arrival order.
type workerPool struct {
	queues      []chan *updateRequest
	workerCount int
	handler     *BotHandler
	wg          sync.WaitGroup

	// Rate limiting per chat
	rateLimiter   map[int64]*chatRateLimit
	rateLimiterMu sync.Mutex
}

type chatRateLimit struct {
	lastRequest  time.Time
	requestCount int
}

const (
	maxRequestsPerSecond   = 3
	requestQueueSize       = 100
	rateLimiterCleanupTime = 5 * time.Minute
	rateLimiterMaxIdleTime = 10 * time.Minute
)

func newWorkerPool(handler *BotHandler, workerCount int) *workerPool {
	if workerCount <= 0 {
		workerCount = 1
	}
	queues := make([]chan *updateRequest, workerCount)
	for i := range queues {
		queues[i] = make(chan *updateRequest, requestQueueSize)
	}
	return &workerPool{
		queues:      queues,
		workerCount: workerCount,
		handler:     handler,
		rateLimiter: make(map[int64]*chatRateLimit),
	}
}

// start starts all workers
func (wp *workerPool) start(ctx context.Context) {
	wp.handler.log.Info("starting workers", zap.Int("count", wp.workerCount))
	for i := 0; i < wp.workerCount; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
	go wp.cleanupRateLimits(ctx)
}

func (wp *workerPool) worker(id int) {
	defer wp.wg.Done()
	for req := range wp.queues[id] {
		if req == nil {
			continue
		}
		if !wp.checkRateLimit(req.chatID, time.Now()) {
			wp.handler.sendMessage(req.chatID, "Too many requests. Please wait a moment.")
			continue
		}
		wp.process(id, req)
	}
}

func (wp *workerPool) process(id int, req *updateRequest) {
	defer func() {
		if r := recover(); r != nil {
			wp.handler.log.Error("panic while handling update",
				zap.Int("worker", id),
				zap.Int64("chat_id", req.chatID),
				zap.Any("panic", r))
			wp.handler.sendMessage(req.chatID, "Internal error. Please try again.")
		}
	}()
	if req.ctx.Err() != nil {
		return
	}
	wp.handler.processUpdate(req.ctx, req.update)
}

// checkRateLimit allows maxRequestsPerSecond updates per chat per second.
func (wp *workerPool) checkRateLimit(chatID int64, now time.Time) bool {
	wp.rateLimiterMu.Lock()
	defer wp.rateLimiterMu.Unlock()

	limiter, ok := wp.rateLimiter[chatID]
	if !ok || now.Sub(limiter.lastRequest) >= time.Second {
		wp.rateLimiter[chatID] = &chatRateLimit{lastRequest: now, requestCount: 1}
		return true
	}
	if limiter.requestCount >= maxRequestsPerSecond {
		wp.handler.log.Warn("rate limit exceeded", zap.Int64("chat_id", chatID))
		return false
	}
	limiter.requestCount++
	return true
}

func (wp *workerPool) cleanupRateLimits(ctx context.Context) {
	ticker := time.NewTicker(rateLimiterCleanupTime)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			wp.rateLimiterMu.Lock()
			for chatID, limiter := range wp.rateLimiter {
				if now.Sub(limiter.lastRequest) > rateLimiterMaxIdleTime {
					delete(wp.rateLimiter, chatID)
				}
			}
			wp.rateLimiterMu.Unlock()
		}
	}
}

// queueFor the worker a chat is bound to
func (wp *workerPool) queueFor(chatID int64) int {
	return int(uint64(chatID) % uint64(len(wp.queues)))
}

// submit queues an update on its chat's worker; a full queue rejects it.
func (wp *workerPool) submit(req *updateRequest) bool {
	queue := wp.queues[wp.queueFor(req.chatID)]
	select {
	case queue <- req:
		return true
	default:
		wp.handler.log.Warn("worker pool queue is full",
			zap.Int("queued", len(queue)),
			zap.Int64("chat_id", req.chatID))
		wp.handler.sendMessage(req.chatID, "The bot is busy. Please try again shortly.")
		return false
	}
}

// shutdown waits for queued updates to finish.
func (wp *workerPool) shutdown() {
	queued := 0
	for _, q := range wp.queues {
		queued += len(q)
		close(q)
	}
	wp.handler.log.Info("shutting down worker pool", zap.Int("queued", queued))
	wp.wg.Wait()
}
