package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashRecordIgnoresKeyOrder(t *testing.T) {
	a, err := HashRecord(map[string]interface{}{"kind": "RoyaltyPaid", "subject_id": 7})
	require.NoError(t, err)
	b, err := HashRecord(map[string]interface{}{"subject_id": 7, "kind": "RoyaltyPaid"})
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	c, err := HashRecord(map[string]interface{}{"kind": "RoyaltyPaid", "subject_id": 8})
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
}

func TestHashRecordRejectsUnencodable(t *testing.T) {
	_, err := HashRecord(map[string]interface{}{"ch": make(chan int)})
	assert.Error(t, err)
}
