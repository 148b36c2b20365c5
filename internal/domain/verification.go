package domain

// ValidityRecord is the persisted form of a saved (phone, code) pair in
// table-oriented backends. Key is already prefixed and hashed; the phone
// number and code are never stored in the clear.
// ExpiresAt is a Unix timestamp used as DynamoDB TTL; zero means no expiry.
type ValidityRecord struct {
	Key       string `json:"record_key" dynamodbav:"record_key"`
	Value     string `json:"value" dynamodbav:"value"`
	ExpiresAt int64  `json:"expires_at,omitempty" dynamodbav:"expires_at,omitempty"`
}

// ExpiredAt reports whether the record is past its expiry at the given Unix second.
func (r *ValidityRecord) ExpiredAt(unix int64) bool {
	return r.ExpiresAt != 0 && unix >= r.ExpiresAt
}
