package enrichlib

import (
	"context"
	"net"

	"github.com/stretchr/testify/mock"
)

type clientMock struct {
	mock.Mock
}

func (m *clientMock) Lookup(ctx context.Context, ip net.IP) (GeoRecord, error) {
	args := m.Called(ctx, ip)

	return args.Get(0).(GeoRecord), args.Error(1)
}

func (m *clientMock) Name() string {
	return m.Called().String(0)
}
