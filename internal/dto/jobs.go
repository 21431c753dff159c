package dto

import "time"

type ScheduleDTO struct {
	Cron     string `json:"cron" validate:"required"`
	Timezone string `json:"timezone"`
}

type JobRecordDTO struct {
	Name           string     `json:"name"`
	Status         string     `json:"status"`
	CronExpression string     `json:"cron_expression,omitempty"`
	Timezone       string     `json:"timezone,omitempty"`
	LastRunAt      *time.Time `json:"last_run_at,omitempty"`
	NextRunAt      *time.Time `json:"next_run_at,omitempty"`
	LastResult     string     `json:"last_result,omitempty"`
}

type SyncTriggerDTO struct {
	TriggeredBy string `json:"triggered_by"`
}
