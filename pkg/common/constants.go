package common

const (
	RedisStreamTradeExecuted = "ledger.trade.executed"
	RedisStreamAuditAlert    = "ledger.audit.alert"

	RedisStreamGroup    = "notifier-group"
	RedisStreamConsumer = "notifier-consumer"

	RedisStreamPayloadField = "payload"
)
