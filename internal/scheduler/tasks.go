package scheduler

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TaskConversionReconcile = "leads.conversion.reconcile"

type ConversionReconcilePayload struct {
	RequestedAt int64 `json:"requestedAt"`
}

func NewConversionReconcileTask() (*asynq.Task, error) {
	data, err := json.Marshal(ConversionReconcilePayload{
		RequestedAt: time.Now().UnixMilli(),
	})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskConversionReconcile, data), nil
}

func ParseConversionReconcilePayload(task *asynq.Task) (ConversionReconcilePayload, error) {
	var payload ConversionReconcilePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return ConversionReconcilePayload{}, err
	}
	return payload, nil
}
