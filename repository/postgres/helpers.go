package postgres

import (
	"encoding/json"
	"time"
)

func marshalMap(data map[string]string) []byte {
	if len(data) == 0 {
		return nil
	}
	b, err := json.Marshal(data)
	if err != nil {
		return nil
	}
	return b
}

func nullTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}

func clampLimit(limit int) int {
	if limit <= 0 || limit > 500 {
		return 500
	}
	return limit
}
