package redis

import (
	"fmt"

	"github.com/mcoot/dominotrain/internal/model"
)

// Key prefix for all domino train data
const keyPrefix = "dtrain"

// sessionKey returns the Redis key for a Session snapshot
func sessionKey(id model.SessionID) string {
	return fmt.Sprintf("%s:session:%s", keyPrefix, id)
}

// sessionIndexKey returns the Redis key for the SET of live session ids
func sessionIndexKey() string {
	return fmt.Sprintf("%s:idx:sessions", keyPrefix)
}

// recordKey returns the Redis key for a GameRecord
func recordKey(id model.SessionID) string {
	return fmt.Sprintf("%s:record:%s", keyPrefix, id)
}

// recordIndexKey returns the Redis key for the SET of record keys
func recordIndexKey() string {
	return fmt.Sprintf("%s:idx:records", keyPrefix)
}
