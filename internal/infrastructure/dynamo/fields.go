package dynamo

// DynamoDB attribute names used in key and update expressions.
// Using constants prevents silent runtime bugs caused by key typos.
const (
	fieldRecordKey = "record_key"
	fieldValue     = "value"
	fieldExpiresAt = "expires_at"
)
