package dynamo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/go-mobile-verification/internal/domain"
)

// KV stores validity records in a DynamoDB table.
// PK: record_key. expires_at is the table's TTL attribute.
//
// DynamoDB deletes expired items lazily, so reads treat any item whose
// expires_at has passed as missing.
type KV struct {
	client    API
	tableName string
	now       func() time.Time
}

func NewKV(client API, tableName string) *KV {
	return &KV{client: client, tableName: tableName, now: time.Now}
}

func (k *KV) Set(ctx context.Context, key, value string) error {
	return k.put(ctx, &domain.ValidityRecord{Key: key, Value: value})
}

// SetWithTTL writes the value and its expiry in one PutItem.
func (k *KV) SetWithTTL(ctx context.Context, key, value string, ttl time.Duration) error {
	return k.put(ctx, &domain.ValidityRecord{Key: key, Value: value, ExpiresAt: expiresAt(k.now(), ttl)})
}

func (k *KV) Get(ctx context.Context, key string) (string, bool, error) {
	out, err := k.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(k.tableName),
		Key:            strKey(fieldRecordKey, key),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, err
	}
	if out.Item == nil {
		return "", false, nil
	}
	var rec domain.ValidityRecord
	if err := attributevalue.UnmarshalMap(out.Item, &rec); err != nil {
		return "", false, fmt.Errorf("unmarshal validity record: %w", err)
	}
	if rec.ExpiredAt(k.now().Unix()) {
		return "", false, nil
	}
	return rec.Value, true, nil
}

// Expire sets expires_at on an existing item. Like Redis EXPIRE, a missing
// key is not an error.
func (k *KV) Expire(ctx context.Context, key string, ttl time.Duration) error {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldExpiresAt: expiresAt(k.now(), ttl)})
	if err != nil {
		return err
	}
	_, err = k.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName:                 aws.String(k.tableName),
		Key:                       strKey(fieldRecordKey, key),
		UpdateExpression:          aws.String(ue.Expr),
		ConditionExpression:       aws.String("attribute_exists(" + fieldRecordKey + ")"),
		ExpressionAttributeNames:  ue.Names,
		ExpressionAttributeValues: ue.Values,
	})
	var ccf *types.ConditionalCheckFailedException
	if errors.As(err, &ccf) {
		return nil
	}
	return err
}

func (k *KV) put(ctx context.Context, rec *domain.ValidityRecord) error {
	item, err := attributevalue.MarshalMap(rec)
	if err != nil {
		return fmt.Errorf("marshal validity record: %w", err)
	}
	_, err = k.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(k.tableName),
		Item:      item,
	})
	return err
}

// expiresAt rounds up to the next whole second so a record never lives
// shorter than ttl.
func expiresAt(now time.Time, ttl time.Duration) int64 {
	t := now.Add(ttl)
	sec := t.Unix()
	if t.Nanosecond() > 0 {
		sec++
	}
	return sec
}
