package dynamo

import (
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateExpr_SingleField(t *testing.T) {
	ue, err := buildUpdateExpr(map[string]interface{}{fieldExpiresAt: int64(1700000000)})
	require.NoError(t, err)
	assert.Equal(t, "SET #f0 = :v0", ue.Expr)
	assert.Equal(t, map[string]string{"#f0": fieldExpiresAt}, ue.Names)
	av, ok := ue.Values[":v0"].(*types.AttributeValueMemberN)
	require.True(t, ok)
	assert.Equal(t, "1700000000", av.Value)
}

func TestBuildUpdateExpr_MultipleFields_Deterministic(t *testing.T) {
	updates := map[string]interface{}{
		fieldValue:     "1",
		fieldExpiresAt: int64(1),
	}
	// Call twice to verify determinism.
	ue1, err := buildUpdateExpr(updates)
	require.NoError(t, err)
	ue2, err := buildUpdateExpr(updates)
	require.NoError(t, err)

	assert.Equal(t, ue1.Expr, ue2.Expr)

	// Keys must be sorted: expires_at < value
	assert.Equal(t, fieldExpiresAt, ue1.Names["#f0"])
	assert.Equal(t, fieldValue, ue1.Names["#f1"])
	assert.Equal(t, "SET #f0 = :v0, #f1 = :v1", ue1.Expr)
}

func TestBuildUpdateExpr_EmptyMap_ReturnsError(t *testing.T) {
	_, err := buildUpdateExpr(map[string]interface{}{})
	assert.ErrorContains(t, err, "no fields to update")
}

func TestStrKey(t *testing.T) {
	k := strKey(fieldRecordKey, "abc")
	s, ok := k[fieldRecordKey].(*types.AttributeValueMemberS)
	require.True(t, ok)
	assert.Equal(t, "abc", s.Value)
}
