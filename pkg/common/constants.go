package common

const (
	RedisStreamSchedulerTaskExecution = "schedule.task.execution"
	RedisStreamBackfillContinuation   = "disclosure.backfill.continuation"

	RedisStreamGroup    = "executor-group"
	RedisStreamConsumer = "executor-consumer"
)
