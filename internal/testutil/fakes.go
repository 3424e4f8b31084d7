package testutil

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/javaniecampbell/storymap/internal/lib/llm"
)

// Completer answers every prompt with Reply, or fails with Err.
type Completer struct {
	mu      sync.Mutex
	Reply   string
	Err     error
	Prompts []llm.Prompt
}

func (c *Completer) Complete(_ context.Context, prompt llm.Prompt) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Prompts = append(c.Prompts, prompt)
	return c.Reply, c.Err
}

// Calls reports how many prompts reached the completer.
func (c *Completer) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Prompts)
}

// Jobs records enqueued tasks instead of sending them to Redis.
type Jobs struct {
	mu    sync.Mutex
	Tasks []*asynq.Task
}

func (j *Jobs) Enqueue(task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Tasks = append(j.Tasks, task)
	return &asynq.TaskInfo{Type: task.Type(), Queue: "default"}, nil
}

func (j *Jobs) Types() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	types := make([]string, len(j.Tasks))
	for i, t := range j.Tasks {
		types[i] = t.Type()
	}
	return types
}

// RedisStore is an in-memory cache.Store.
type RedisStore struct {
	mu     sync.Mutex
	values map[string]string
}

func NewRedisStore() *RedisStore {
	return &RedisStore{values: map[string]string{}}
}

func (r *RedisStore) Get(_ context.Context, key string) *redis.StringCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (r *RedisStore) Set(_ context.Context, key string, value any, _ time.Duration) *redis.StatusCmd {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.values[key] = fmt.Sprint(value)
	return redis.NewStatusResult("OK", nil)
}
