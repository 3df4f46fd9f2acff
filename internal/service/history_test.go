package service

import (
	"context"
	"errors"
	"fmt"
	"lp-tracker/internal/api"
	"lp-tracker/internal/domain"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePages struct {
	mu     sync.Mutex
	total  int
	fail   map[int]error
	delay  time.Duration
	events []string
	calls  map[int]int
}

func newFakePages(total int) *fakePages {
	return &fakePages{total: total, fail: map[int]error{}, calls: map[int]int{}}
}

func (f *fakePages) record(event string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakePages) GetLPHistoryPage(ctx context.Context, riotID domain.RiotID, region domain.Region, pageIndex int) (*domain.RawPage, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("page request without deadline")
	}

	f.mu.Lock()
	f.calls[pageIndex]++
	f.mu.Unlock()

	f.record(fmt.Sprintf("start:%d", pageIndex))
	defer f.record(fmt.Sprintf("end:%d", pageIndex))

	time.Sleep(f.delay)
	if err := f.fail[pageIndex]; err != nil {
		return nil, err
	}
	return &domain.RawPage{
		Index:      pageIndex,
		TotalPages: f.total,
		Items:      []domain.HistoryItem{{StartedAt: int64(1000 - pageIndex)}},
	}, nil
}

func (f *fakePages) called(page int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[page]
}

func (f *fakePages) position(event string) int {
	for i, e := range f.events {
		if e == event {
			return i
		}
	}
	return -1
}

var testRiotID = domain.RiotID{GameName: "Faker", TagLine: "KR1"}

func TestBatchPages(t *testing.T) {
	assert.Equal(t, [][]int{{2, 3, 4, 5}, {6, 7, 8, 9}, {10}}, BatchPages(10, 4))
	assert.Equal(t, [][]int{{2, 3}}, BatchPages(3, 4))
	assert.Equal(t, [][]int{{2}, {3}}, BatchPages(3, 1))
	assert.Empty(t, BatchPages(1, 4))
	assert.Empty(t, BatchPages(0, 4))
}

func TestFetchHistoryReturnsPagesInOrder(t *testing.T) {
	src := newFakePages(10)
	svc := NewHistoryService(src, zerolog.Nop())

	pages, err := svc.FetchHistory(context.Background(), testRiotID, domain.RegionKR, 0, 4)
	require.NoError(t, err)

	require.Len(t, pages, 10)
	for i, p := range pages {
		assert.Equal(t, i+1, p.Index)
		assert.Equal(t, 1, src.called(i+1))
	}
}

func TestFetchHistoryBatchBarrier(t *testing.T) {
	src := newFakePages(10)
	src.delay = 5 * time.Millisecond
	svc := NewHistoryService(src, zerolog.Nop())

	_, err := svc.FetchHistory(context.Background(), testRiotID, domain.RegionKR, 0, 4)
	require.NoError(t, err)

	batches := append([][]int{{1}}, BatchPages(10, 4)...)
	for i := 1; i < len(batches); i++ {
		for _, done := range batches[i-1] {
			for _, next := range batches[i] {
				assert.Less(t, src.position(fmt.Sprintf("end:%d", done)), src.position(fmt.Sprintf("start:%d", next)),
					"page %d started before page %d finished", next, done)
			}
		}
	}
}

func TestFetchHistoryAbortsOnFailedPage(t *testing.T) {
	src := newFakePages(10)
	src.fail[7] = &api.ServiceError{StatusCode: 502, Message: "bad gateway"}
	svc := NewHistoryService(src, zerolog.Nop())

	pages, err := svc.FetchHistory(context.Background(), testRiotID, domain.RegionKR, 0, 4)
	require.Error(t, err)
	assert.Nil(t, pages)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 7, fetchErr.Page)
	assert.Equal(t, "service", fetchErr.Class)

	var serviceErr *api.ServiceError
	assert.ErrorAs(t, err, &serviceErr)

	for _, sibling := range []int{6, 8, 9} {
		assert.Equal(t, 1, src.called(sibling), "sibling page %d", sibling)
	}
	assert.Zero(t, src.called(10), "next batch must not start")
}

func TestFetchHistoryFirstPageFailure(t *testing.T) {
	src := newFakePages(10)
	src.fail[1] = &api.TransportError{URL: "http://history", Timeout: true, Err: context.DeadlineExceeded}
	svc := NewHistoryService(src, zerolog.Nop())

	_, err := svc.FetchHistory(context.Background(), testRiotID, domain.RegionKR, 0, 4)

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 1, fetchErr.Page)
	assert.Equal(t, "timeout", fetchErr.Class)
	assert.Zero(t, src.called(2))
}

func TestFetchHistoryNoPages(t *testing.T) {
	src := newFakePages(0)
	svc := NewHistoryService(src, zerolog.Nop())

	pages, err := svc.FetchHistory(context.Background(), testRiotID, domain.RegionKR, 0, 4)
	require.NoError(t, err)
	assert.NotNil(t, pages)
	assert.Empty(t, pages)
	assert.Equal(t, 1, src.called(1))
}

func TestFetchHistoryPageLimit(t *testing.T) {
	src := newFakePages(10)
	svc := NewHistoryService(src, zerolog.Nop())

	pages, err := svc.FetchHistory(context.Background(), testRiotID, domain.RegionKR, 3, 4)
	require.NoError(t, err)

	require.Len(t, pages, 3)
	assert.Equal(t, 1, src.called(3))
	assert.Zero(t, src.called(4))
}

func TestFetchHistoryDefaultBatchSize(t *testing.T) {
	src := newFakePages(6)
	svc := NewHistoryService(src, zerolog.Nop())

	pages, err := svc.FetchHistory(context.Background(), testRiotID, domain.RegionKR, 0, 0)
	require.NoError(t, err)
	assert.Len(t, pages, 6)
}
