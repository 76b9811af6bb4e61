package queue

import (
	"encoding/json"

	"github.com/storefront-next/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderPlaced 下单成功通知任务
	TaskOrderPlaced = constants.TaskOrderPlaced
)

// OrderPlacedPayload 下单成功通知载荷
type OrderPlacedPayload struct {
	OrderID   uint   `json:"order_id"`
	OrderNo   string `json:"order_no"`
	SessionID string `json:"session_id,omitempty"`
	Total     string `json:"total"`
}

// NewOrderPlacedTask 创建下单成功通知任务
func NewOrderPlacedTask(payload OrderPlacedPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderPlaced, body), nil
}

// ParseOrderPlacedPayload 解析下单成功通知载荷
func ParseOrderPlacedPayload(task *asynq.Task) (OrderPlacedPayload, error) {
	var payload OrderPlacedPayload
	if task == nil {
		return payload, nil
	}
	err := json.Unmarshal(task.Payload(), &payload)
	return payload, err
}
