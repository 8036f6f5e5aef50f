package enrichlib_test

import (
	"context"
	"net"
	"sync"

	"github.com/9seconds/geovisits/enrichlib"
	"github.com/stretchr/testify/mock"
)

type GeoLookupClientMock struct {
	mock.Mock
}

func (m *GeoLookupClientMock) Lookup(ctx context.Context, ip net.IP) (enrichlib.GeoRecord, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(enrichlib.GeoRecord), args.Error(1)
}

func (m *GeoLookupClientMock) Name() string {
	return m.Called().String(0)
}

type LoggerMock struct {
	mock.Mock
}

func (m *LoggerMock) LookupError(ip, name string, err error) {
	m.Called(ip, name, err)
}

func (m *LoggerMock) RunInfo(summary enrichlib.Summary) {
	m.Called(summary)
}

// RecordingObserver keeps all events it has seen.
type RecordingObserver struct {
	mutex    sync.Mutex
	progress []enrichlib.Progress
	failures map[string]error
}

func (r *RecordingObserver) Progress(p enrichlib.Progress) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.progress = append(r.progress, p)
}

func (r *RecordingObserver) LookupError(ip string, err error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.failures == nil {
		r.failures = map[string]error{}
	}

	r.failures[ip] = err
}

func ipIs(value string) interface{} {
	expected := net.ParseIP(value)

	return mock.MatchedBy(func(ip net.IP) bool {
		return expected.Equal(ip)
	})
}
