package enrichlib

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"

	"github.com/panjf2000/ants/v2"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type poolFuncMock struct {
	mock.Mock
}

func (m *poolFuncMock) Do(arg interface{}) {
	m.Called(arg)
}

type PoolGroupRequestTestSuite struct {
	suite.Suite

	ctx           context.Context
	cancel        context.CancelFunc
	resultChannel chan lookupResult
	pool          *ants.PoolWithFunc
	wg            *sync.WaitGroup
	poolFunc      *poolFuncMock
	client        *clientMock
	pgr           *poolGroupRequest
	request       lookupRequest
}

func (suite *PoolGroupRequestTestSuite) SetupTest() {
	suite.ctx, suite.cancel = context.WithCancel(context.Background())
	suite.resultChannel = make(chan lookupResult, 1)
	suite.wg = &sync.WaitGroup{}
	suite.client = &clientMock{}
	suite.poolFunc = &poolFuncMock{}
	suite.pool, _ = ants.NewPoolWithFunc(2, suite.poolFunc.Do)
	suite.request = lookupRequest{
		index:  3,
		ip:     "127.0.0.1",
		parsed: net.ParseIP("127.0.0.1").To4(),
	}

	suite.pgr = newPoolGroupRequest(suite.ctx,
		suite.resultChannel,
		suite.client,
		suite.wg,
		suite.pool)
}

func (suite *PoolGroupRequestTestSuite) TearDownTest() {
	suite.wg.Wait()
	suite.cancel()
	suite.pool.Release()

	suite.poolFunc.AssertExpectations(suite.T())
	suite.client.AssertExpectations(suite.T())
}

func (suite *PoolGroupRequestTestSuite) TestParentClosed() {
	suite.cancel()

	suite.True(errors.Is(suite.pgr.Do(context.Background(), suite.request), ErrContextIsClosed))
}

func (suite *PoolGroupRequestTestSuite) TestGroupClosed() {
	suite.pgr.Close()

	suite.True(errors.Is(suite.pgr.Do(context.Background(), suite.request), ErrContextIsClosed))
}

func (suite *PoolGroupRequestTestSuite) TestSelfClosed() {
	ctx, cancel := context.WithCancel(context.Background())

	cancel()

	suite.True(errors.Is(suite.pgr.Do(ctx, suite.request), ErrContextIsClosed))
}

func (suite *PoolGroupRequestTestSuite) TestPoolReleased() {
	suite.pool.Release()

	suite.Error(suite.pgr.Do(context.Background(), suite.request))
	suite.Error(suite.pgr.ctx.Err())
}

func (suite *PoolGroupRequestTestSuite) TestHappyPath() {
	suite.poolFunc.On("Do", mock.Anything).Once().Run(func(args mock.Arguments) {
		task := args.Get(0).(*lookupTask)

		defer task.wg.Done()

		suite.Equal("127.0.0.1", task.request.ip)
		suite.Equal(suite.client, task.client)

		task.resultChannel <- lookupResult{
			index: task.request.index,
			ip:    task.request.ip,
		}
	})

	suite.NoError(suite.pgr.Do(context.Background(), suite.request))

	res := <-suite.resultChannel

	suite.Equal(3, res.index)
	suite.Equal("127.0.0.1", res.ip)
}

func TestPoolGroupRequest(t *testing.T) {
	suite.Run(t, &PoolGroupRequestTestSuite{})
}

type LookupIPTestSuite struct {
	suite.Suite

	e      *Enricher
	client *clientMock
}

func (suite *LookupIPTestSuite) SetupTest() {
	suite.client = &clientMock{}
	suite.client.On("Name").Return("mock")

	suite.e = NewEnricher(suite.client, nil, 1)
}

func (suite *LookupIPTestSuite) TearDownTest() {
	suite.e.Shutdown()
	suite.client.AssertExpectations(suite.T())
}

func (suite *LookupIPTestSuite) TestResultIsSent() {
	ip := net.ParseIP("10.0.0.1").To4()
	lookupErr := errors.New("failure")
	resultChannel := make(chan lookupResult, 1)
	wg := &sync.WaitGroup{}

	suite.client.On("Lookup", mock.Anything, ip).Return(GeoRecord{}, lookupErr)

	wg.Add(1)

	suite.e.lookupIP(&lookupTask{
		ctx: context.Background(),
		request: lookupRequest{
			index:  7,
			ip:     "10.0.0.1",
			parsed: ip,
		},
		client:        suite.client,
		resultChannel: resultChannel,
		wg:            wg,
	})

	wg.Wait()

	res := <-resultChannel

	suite.Equal(7, res.index)
	suite.Equal("10.0.0.1", res.ip)
	suite.Equal(lookupErr, res.err)
}

func TestLookupIP(t *testing.T) {
	suite.Run(t, &LookupIPTestSuite{})
}
