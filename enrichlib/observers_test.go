package enrichlib_test

import (
	"errors"
	"testing"

	"github.com/9seconds/geovisits/enrichlib"
	"github.com/stretchr/testify/assert"
)

func TestMultiObserver(t *testing.T) {
	first := &RecordingObserver{}
	second := &RecordingObserver{}
	failures := []string{}

	observer := enrichlib.MultiObserver(first, nil, second, enrichlib.ObserverFuncs{
		OnLookupError: func(ip string, _ error) {
			failures = append(failures, ip)
		},
	})

	observer.Progress(enrichlib.Progress{Completed: 1, Total: 2, IP: "1.1.1.1"})
	observer.LookupError("2.2.2.2", errors.New("failure"))

	assert.Len(t, first.progress, 1)
	assert.Len(t, second.progress, 1)
	assert.Contains(t, first.failures, "2.2.2.2")
	assert.Contains(t, second.failures, "2.2.2.2")
	assert.Equal(t, []string{"2.2.2.2"}, failures)
}
