// internal/utils/hash.go
package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// HashRecord returns the hex sha256 of the JSON encoding of record. Map keys
// encode in sorted order, so equal records hash equally.
func HashRecord(record interface{}) (string, error) {
	data, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
