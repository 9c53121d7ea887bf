package agent

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/redis/go-redis/v9"
)

// QueueClient feeds the agent from an external message queue. GetNext
// returns nil when the queue is empty.
type QueueClient interface {
	GetNext(ctx context.Context) (map[string]interface{}, error)
	PostResult(ctx context.Context, item, result map[string]interface{}) error
}

// RedisQueue is a QueueClient over two redis lists: inbound payloads are
// popped from the inbox key, decision payloads pushed to the results key.
type RedisQueue struct {
	rdb        *redis.Client
	inboxKey   string
	resultsKey string
}

func NewRedisQueue(rdb *redis.Client, inboxKey, resultsKey string) *RedisQueue {
	return &RedisQueue{rdb: rdb, inboxKey: inboxKey, resultsKey: resultsKey}
}

func (q *RedisQueue) GetNext(ctx context.Context) (map[string]interface{}, error) {
	raw, err := q.rdb.LPop(ctx, q.inboxKey).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var item map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &item); err != nil {
		return nil, err
	}
	return item, nil
}

func (q *RedisQueue) PostResult(ctx context.Context, item, result map[string]interface{}) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return q.rdb.RPush(ctx, q.resultsKey, payload).Err()
}

// ProcessQueueItem classifies a single queue item into a structured decision
// payload.
func (a *Agent) ProcessQueueItem(item map[string]interface{}) map[string]interface{} {
	decision := a.PredictAction(item)
	return map[string]interface{}{
		"input": NormalizeInput(item),
		"decision": map[string]interface{}{
			"action":      decision.Action,
			"confidence":  decision.Confidence,
			"explanation": decision.Explanation,
			"state":       decision.State,
		},
	}
}

// RunQueueOnce pulls one item from the queue, classifies it, and posts the
// result back. Post failures are tolerated so a broken results channel never
// stalls consumption.
func (a *Agent) RunQueueOnce(ctx context.Context, queue QueueClient) (map[string]interface{}, error) {
	if queue == nil {
		return nil, nil
	}
	item, err := queue.GetNext(ctx)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}
	result := a.ProcessQueueItem(item)
	if err := queue.PostResult(ctx, item, result); err != nil {
		log.Printf("[Agent] WARNING: failed to post queue result: %v", err)
	}
	return result, nil
}
