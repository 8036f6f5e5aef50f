package enrichlib

import (
	"encoding/json"
	"errors"
	"sync"
	"time"
)

// UsageStats tracks how a lookup client was used over the lifetime of
// Enricher. Failures are additionally grouped by LookupErrorKind.
type UsageStats struct {
	Name string

	mutex         sync.Mutex
	lastUsed      time.Time
	runsCount     uint64
	successCount  uint64
	failureCount  uint64
	failureByKind map[string]uint64
}

func (u *UsageStats) Used(err error) {
	now := time.Now()

	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.lastUsed = now

	if err == nil {
		u.successCount++

		return
	}

	u.failureCount++

	if u.failureByKind == nil {
		u.failureByKind = map[string]uint64{}
	}

	kind := "unknown"

	var lookupErr *LookupError
	if errors.As(err, &lookupErr) {
		kind = lookupErr.Kind.String()
	}

	u.failureByKind[kind]++
}

func (u *UsageStats) Run() {
	u.mutex.Lock()
	defer u.mutex.Unlock()

	u.runsCount++
}

func (u *UsageStats) MarshalJSON() ([]byte, error) {
	var lastUsedTime int64

	u.mutex.Lock()

	if !u.lastUsed.IsZero() {
		lastUsedTime = u.lastUsed.Unix()
	}

	failures := make(map[string]uint64, len(u.failureByKind))

	for k, v := range u.failureByKind {
		failures[k] = v
	}

	rawStruct := struct {
		Name          string            `json:"name"`
		LastUsed      int64             `json:"last_used"`
		RunsCount     uint64            `json:"runs_count"`
		SuccessCount  uint64            `json:"success_count"`
		FailureCount  uint64            `json:"failure_count"`
		FailureByKind map[string]uint64 `json:"failure_by_kind"`
	}{
		Name:          u.Name,
		LastUsed:      lastUsedTime,
		RunsCount:     u.runsCount,
		SuccessCount:  u.successCount,
		FailureCount:  u.failureCount,
		FailureByKind: failures,
	}

	u.mutex.Unlock()

	return json.Marshal(&rawStruct)
}
