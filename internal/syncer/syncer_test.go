package syncer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/openjuris/docketsync/internal/config"
	"github.com/openjuris/docketsync/internal/courtapi"
	"github.com/openjuris/docketsync/internal/dto"
	"github.com/openjuris/docketsync/internal/queue"
)

type mockCourtClient struct {
	mock.Mock
}

func (m *mockCourtClient) FetchOpinions(ctx context.Context, q courtapi.OpinionQuery) ([]courtapi.Opinion, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]courtapi.Opinion), args.Error(1)
}

func (m *mockCourtClient) FetchJudges(ctx context.Context, q courtapi.JudgeQuery) ([]courtapi.Judge, error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]courtapi.Judge), args.Error(1)
}

func (m *mockCourtClient) FetchDocket(ctx context.Context, id int) (*courtapi.Docket, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*courtapi.Docket), args.Error(1)
}

type mockRecordSink struct {
	mock.Mock
}

func (m *mockRecordSink) SaveOpinions(ctx context.Context, opinions []courtapi.Opinion) (int, error) {
	args := m.Called(ctx, opinions)
	return args.Int(0), args.Error(1)
}

func (m *mockRecordSink) SaveJudges(ctx context.Context, judges []courtapi.Judge, skipFresherThan time.Time) (int, error) {
	args := m.Called(ctx, judges, skipFresherThan)
	return args.Int(0), args.Error(1)
}

func TestSyncDecisions_DefaultLookback(t *testing.T) {
	client := new(mockCourtClient)
	sink := new(mockRecordSink)

	client.On("FetchOpinions", mock.Anything, mock.MatchedBy(func(q courtapi.OpinionQuery) bool {
		wantAfter := time.Now().UTC().AddDate(0, 0, -2)
		return q.Jurisdiction == "" && q.FiledAfter.Sub(wantAfter).Abs() < time.Minute
	})).Return([]courtapi.Opinion{}, nil)
	sink.On("SaveOpinions", mock.Anything, mock.Anything).Return(0, nil)

	err := NewSyncer(client, sink).SyncDecisions(context.Background(), dto.DecisionSyncOptions{})
	require.NoError(t, err)
	client.AssertExpectations(t)
	sink.AssertExpectations(t)
}

func TestSyncDecisions_PassesOptionsThrough(t *testing.T) {
	client := new(mockCourtClient)
	sink := new(mockRecordSink)

	client.On("FetchOpinions", mock.Anything, mock.MatchedBy(func(q courtapi.OpinionQuery) bool {
		return q.Jurisdiction == "scotus" && q.PageSize == 25 && q.MaxRecords == 100
	})).Return([]courtapi.Opinion{{ExternalID: 1, DocketNumber: "21-1"}}, nil)
	sink.On("SaveOpinions", mock.Anything, mock.Anything).Return(1, nil)

	err := NewSyncer(client, sink).SyncDecisions(context.Background(), dto.DecisionSyncOptions{
		Jurisdiction: "scotus",
		LookbackDays: 7,
		BatchSize:    25,
		MaxRecords:   100,
	})
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSyncDecisions_DocketFallback(t *testing.T) {
	client := new(mockCourtClient)
	sink := new(mockRecordSink)

	// One opinion missing its docket number, one already complete. Only the
	// incomplete one triggers a docket fetch.
	opinions := []courtapi.Opinion{
		{ExternalID: 1, Court: "unknown", DocketID: 55},
		{ExternalID: 2, DocketID: 66, DocketNumber: "22-999"},
	}
	client.On("FetchOpinions", mock.Anything, mock.Anything).Return(opinions, nil)
	client.On("FetchDocket", mock.Anything, 55).Return(&courtapi.Docket{
		ExternalID:   55,
		Court:        "ca9",
		DocketNumber: "21-55555",
	}, nil).Once()
	sink.On("SaveOpinions", mock.Anything, mock.MatchedBy(func(ops []courtapi.Opinion) bool {
		return ops[0].DocketNumber == "21-55555" && ops[0].Court == "ca9" && ops[1].DocketNumber == "22-999"
	})).Return(2, nil)

	err := NewSyncer(client, sink).SyncDecisions(context.Background(), dto.DecisionSyncOptions{})
	require.NoError(t, err)
	client.AssertExpectations(t)
	sink.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "FetchDocket", 1)
}

func TestSyncDecisions_FetchErrorAbortsBatch(t *testing.T) {
	client := new(mockCourtClient)
	sink := new(mockRecordSink)

	client.On("FetchOpinions", mock.Anything, mock.Anything).Return(nil, errors.New("court api returned status 502"))

	err := NewSyncer(client, sink).SyncDecisions(context.Background(), dto.DecisionSyncOptions{})
	require.Error(t, err)
	sink.AssertNotCalled(t, "SaveOpinions", mock.Anything, mock.Anything)
}

func TestSyncDecisions_DocketErrorAbortsBatch(t *testing.T) {
	client := new(mockCourtClient)
	sink := new(mockRecordSink)

	client.On("FetchOpinions", mock.Anything, mock.Anything).Return([]courtapi.Opinion{{ExternalID: 1, DocketID: 5}}, nil)
	client.On("FetchDocket", mock.Anything, 5).Return(nil, errors.New("court api returned status 404"))

	err := NewSyncer(client, sink).SyncDecisions(context.Background(), dto.DecisionSyncOptions{})
	require.Error(t, err)
	sink.AssertNotCalled(t, "SaveOpinions", mock.Anything, mock.Anything)
}

func TestSyncJudges_StaleWindow(t *testing.T) {
	tests := []struct {
		name     string
		opts     dto.JudgeSyncOptions
		wantSkip func(time.Time) bool
	}{
		{
			name: "stale only uses default window",
			opts: dto.JudgeSyncOptions{StaleOnly: true},
			wantSkip: func(skip time.Time) bool {
				want := time.Now().UTC().AddDate(0, 0, -30)
				return skip.Sub(want).Abs() < time.Minute
			},
		},
		{
			name: "stale only with explicit window",
			opts: dto.JudgeSyncOptions{StaleOnly: true, StaleAfterDays: 7},
			wantSkip: func(skip time.Time) bool {
				want := time.Now().UTC().AddDate(0, 0, -7)
				return skip.Sub(want).Abs() < time.Minute
			},
		},
		{
			name:     "force refresh disables skipping",
			opts:     dto.JudgeSyncOptions{StaleOnly: true, ForceRefresh: true},
			wantSkip: func(skip time.Time) bool { return skip.IsZero() },
		},
		{
			name:     "full sync disables skipping",
			opts:     dto.JudgeSyncOptions{},
			wantSkip: func(skip time.Time) bool { return skip.IsZero() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := new(mockCourtClient)
			sink := new(mockRecordSink)

			client.On("FetchJudges", mock.Anything, mock.Anything).Return([]courtapi.Judge{{ExternalID: 1}}, nil)
			sink.On("SaveJudges", mock.Anything, mock.Anything, mock.MatchedBy(tt.wantSkip)).Return(1, nil)

			err := NewSyncer(client, sink).SyncJudges(context.Background(), tt.opts)
			require.NoError(t, err)
			sink.AssertExpectations(t)
		})
	}
}

func TestSyncJudges_MaxPerJudgeCapsFetch(t *testing.T) {
	client := new(mockCourtClient)
	sink := new(mockRecordSink)

	client.On("FetchJudges", mock.Anything, mock.MatchedBy(func(q courtapi.JudgeQuery) bool {
		return q.Jurisdiction == "ca9" && q.MaxRecords == 500
	})).Return([]courtapi.Judge{}, nil)
	sink.On("SaveJudges", mock.Anything, mock.Anything, mock.Anything).Return(0, nil)

	err := NewSyncer(client, sink).SyncJudges(context.Background(), dto.JudgeSyncOptions{Jurisdiction: "ca9", MaxPerJudge: 500})
	require.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSyncJudges_SinkErrorPropagates(t *testing.T) {
	client := new(mockCourtClient)
	sink := new(mockRecordSink)

	client.On("FetchJudges", mock.Anything, mock.Anything).Return([]courtapi.Judge{{ExternalID: 1}}, nil)
	sink.On("SaveJudges", mock.Anything, mock.Anything, mock.Anything).Return(0, errors.New("pq: deadlock detected"))

	err := NewSyncer(client, sink).SyncJudges(context.Background(), dto.JudgeSyncOptions{})
	require.Error(t, err)
}

func TestRegisterHandlers(t *testing.T) {
	reg := queue.NewRegistry()
	RegisterHandlers(reg, NewSyncer(new(mockCourtClient), new(mockRecordSink)))

	assert.True(t, reg.Known(config.SyncTypeDecision))
	assert.True(t, reg.Known(config.SyncTypeJudge))
	assert.Len(t, reg.Types(), 2)
}
