// Package syncer holds the synchronization routines the queue dispatches
// to: decision sync pulls recent opinions, judge sync refreshes judicial
// profiles. Both drive the rate-limited court API client and write through
// the record sink.
package syncer

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/openjuris/docketsync/internal/courtapi"
	"github.com/openjuris/docketsync/internal/dto"
)

const (
	defaultLookbackDays   = 2
	defaultStaleAfterDays = 30
)

// CourtClient is the slice of the court API client the routines need.
type CourtClient interface {
	FetchOpinions(ctx context.Context, q courtapi.OpinionQuery) ([]courtapi.Opinion, error)
	FetchJudges(ctx context.Context, q courtapi.JudgeQuery) ([]courtapi.Judge, error)
	FetchDocket(ctx context.Context, id int) (*courtapi.Docket, error)
}

// RecordSink is the boundary to the directory datastore.
type RecordSink interface {
	SaveOpinions(ctx context.Context, opinions []courtapi.Opinion) (int, error)
	SaveJudges(ctx context.Context, judges []courtapi.Judge, skipFresherThan time.Time) (int, error)
}

type Syncer struct {
	client CourtClient
	sink   RecordSink
}

func NewSyncer(client CourtClient, sink RecordSink) *Syncer {
	return &Syncer{client: client, sink: sink}
}

// SyncDecisions fetches opinions filed within the lookback window and
// upserts them. Any fetch failure discards the batch; the queue's retry
// policy replays from scratch.
func (s *Syncer) SyncDecisions(ctx context.Context, opts dto.DecisionSyncOptions) error {
	lookback := opts.LookbackDays
	if lookback <= 0 {
		lookback = defaultLookbackDays
	}

	opinions, err := s.client.FetchOpinions(ctx, courtapi.OpinionQuery{
		Jurisdiction: opts.Jurisdiction,
		FiledAfter:   time.Now().UTC().AddDate(0, 0, -lookback),
		PageSize:     opts.BatchSize,
		MaxRecords:   opts.MaxRecords,
	})
	if err != nil {
		return err
	}

	for i := range opinions {
		if err := s.resolveDocket(ctx, &opinions[i]); err != nil {
			return err
		}
	}

	saved, err := s.sink.SaveOpinions(ctx, opinions)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"fetched":       len(opinions),
		"saved":         saved,
		"lookback_days": lookback,
		"jurisdiction":  opts.Jurisdiction,
	}).Info("decision sync finished")
	return nil
}

// resolveDocket fills in docket details: the docket number embedded in the
// opinion record is the primary source; when the provider omitted it, the
// docket resource is fetched as the secondary source.
func (s *Syncer) resolveDocket(ctx context.Context, op *courtapi.Opinion) error {
	if op.DocketNumber != "" || op.DocketID == 0 {
		return nil
	}

	docket, err := s.client.FetchDocket(ctx, op.DocketID)
	if err != nil {
		return err
	}
	op.DocketNumber = docket.DocketNumber
	if op.Court == "unknown" && docket.Court != "" {
		op.Court = docket.Court
	}
	return nil
}

// SyncJudges refreshes judge profiles. With StaleOnly set, profiles updated
// within the staleness window are skipped; ForceRefresh rewrites everything.
func (s *Syncer) SyncJudges(ctx context.Context, opts dto.JudgeSyncOptions) error {
	judges, err := s.client.FetchJudges(ctx, courtapi.JudgeQuery{
		Jurisdiction: opts.Jurisdiction,
		PageSize:     opts.BatchSize,
		MaxRecords:   opts.MaxPerJudge,
	})
	if err != nil {
		return err
	}

	var skipFresherThan time.Time
	if opts.StaleOnly && !opts.ForceRefresh {
		staleAfter := opts.StaleAfterDays
		if staleAfter <= 0 {
			staleAfter = defaultStaleAfterDays
		}
		skipFresherThan = time.Now().UTC().AddDate(0, 0, -staleAfter)
	}

	saved, err := s.sink.SaveJudges(ctx, judges, skipFresherThan)
	if err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"fetched":      len(judges),
		"saved":        saved,
		"stale_only":   opts.StaleOnly,
		"jurisdiction": opts.Jurisdiction,
	}).Info("judge sync finished")
	return nil
}
