package services

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/hibiken/asynq"
	"github.com/laporwarga/backend/internal/config"
	"github.com/laporwarga/backend/pkg/logger"
)

const (
	TaskTypeOTPDeliver      = "otp:deliver"
	TaskTypeComplaintNotify = "complaint:notify"
)

// OTPDeliveryTask mails a registration code.
type OTPDeliveryTask struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Code  string `json:"code"`
}

// ComplaintNotifyTask alerts officers about a complaint event.
type ComplaintNotifyTask struct {
	ComplaintID uint   `json:"complaint_id"`
	Event       string `json:"event"` // created, status
	From        string `json:"from,omitempty"`
}

// TaskProcessorFunc handles one task payload of the given type.
type TaskProcessorFunc func(ctx context.Context, taskType string, payload []byte) error

// TaskQueue defines the interface for background task processing
type TaskQueue interface {
	// Enqueue marshals payload and schedules it under taskType
	Enqueue(taskType string, payload interface{}) error
	// IsAsync returns true if queue processes tasks asynchronously
	IsAsync() bool
	// Close gracefully shuts down the queue
	Close() error
}

var (
	globalTaskQueue TaskQueue
	taskQueueOnce   sync.Once
)

// InitTaskQueue initializes the global task queue based on config
func InitTaskQueue(cfg *config.Config) TaskQueue {
	taskQueueOnce.Do(func() {
		if cfg.Redis.Enabled {
			queue, err := NewAsyncQueue(&cfg.Redis)
			if err != nil {
				logger.Warnf("[TaskQueue] Redis unavailable, falling back to sync mode: %v", err)
				globalTaskQueue = NewSyncQueue()
			} else {
				logger.Infof("[TaskQueue] Async queue initialized with Redis at %s", cfg.Redis.Addr)
				globalTaskQueue = queue
			}
		} else {
			logger.Infof("[TaskQueue] Sync queue initialized (Redis disabled)")
			globalTaskQueue = NewSyncQueue()
		}
	})
	return globalTaskQueue
}

func GetTaskQueue() TaskQueue {
	return globalTaskQueue
}

// AsyncQueue implements TaskQueue using asynq (Redis-based)
type AsyncQueue struct {
	client *asynq.Client
}

func NewAsyncQueue(cfg *config.RedisConfig) (*AsyncQueue, error) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}

	client := asynq.NewClient(redisOpt)

	inspector := asynq.NewInspector(redisOpt)
	defer inspector.Close()

	if _, err := inspector.Queues(); err != nil {
		client.Close()
		return nil, err
	}

	return &AsyncQueue{client: client}, nil
}

func (q *AsyncQueue) Enqueue(taskType string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	info, err := q.client.Enqueue(asynq.NewTask(taskType, data),
		asynq.Queue("default"),
		asynq.MaxRetry(3),
	)
	if err != nil {
		return err
	}

	logger.Debug().Str("id", info.ID).Str("type", taskType).Msg("[AsyncQueue] Task enqueued")
	return nil
}

func (q *AsyncQueue) IsAsync() bool {
	return true
}

func (q *AsyncQueue) Close() error {
	return q.client.Close()
}

// SyncQueue runs tasks in-process when Redis is not available.
type SyncQueue struct {
	mu        sync.RWMutex
	processor TaskProcessorFunc
	wg        sync.WaitGroup
}

func NewSyncQueue() *SyncQueue {
	return &SyncQueue{}
}

func (q *SyncQueue) SetProcessor(processor TaskProcessorFunc) {
	q.mu.Lock()
	q.processor = processor
	q.mu.Unlock()
}

// Enqueue processes the task in a goroutine so the request is not blocked.
func (q *SyncQueue) Enqueue(taskType string, payload interface{}) error {
	q.mu.RLock()
	processor := q.processor
	q.mu.RUnlock()

	if processor == nil {
		logger.Warnf("[SyncQueue] No processor set, %s task dropped", taskType)
		return nil
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := processor(context.Background(), taskType, data); err != nil {
			logger.Warnf("[SyncQueue] Task %s failed: %v", taskType, err)
		}
	}()
	return nil
}

func (q *SyncQueue) IsAsync() bool {
	return false
}

// Close waits for in-flight tasks.
func (q *SyncQueue) Close() error {
	q.wg.Wait()
	return nil
}
