package scheduler

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskQualifyBatch = "leads.qualify_batch"

// QualifyBatchPayload carries the optional tenant scope and batch size of
// a queued qualification run. Zero values mean all tenants and the
// configured default size.
type QualifyBatchPayload struct {
	TenantID string `json:"tenantId,omitempty"`
	Limit    int    `json:"limit,omitempty"`
}

func NewQualifyBatchTask(payload QualifyBatchPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskQualifyBatch, data), nil
}

func ParseQualifyBatchPayload(task *asynq.Task) (QualifyBatchPayload, error) {
	var payload QualifyBatchPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return QualifyBatchPayload{}, err
	}
	return payload, nil
}
