package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/fantasy-sync/internal/domain/club"
	"github.com/riskibarqy/fantasy-sync/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-sync/internal/domain/season"
	idgen "github.com/riskibarqy/fantasy-sync/internal/platform/id"
	"github.com/riskibarqy/fantasy-sync/internal/platform/logging"
	"go.opentelemetry.io/otel/attribute"
)

const (
	syncStatusSuccess = "success"
	syncStatusSkipped = "skipped"
	syncStatusDryRun  = "dry_run"

	maxSeasonWeek = 18
)

type SyncInput struct {
	LeagueID string `validate:"required"`
	// Week 0 syncs the provider's current week.
	Week   int `validate:"min=0,max=18"`
	DryRun bool
}

type SyncResult struct {
	RunID    string
	LeagueID string
	SeasonID string
	Week     int
	Status   string
	Message  string
	Matchups []matchup.Resolved
	Persist  PersistResult
}

type BackfillInput struct {
	LeagueID   string `validate:"required"`
	FromWeek   int    `validate:"min=1,max=18"`
	ToWeek     int    `validate:"gtefield=FromWeek,max=18"`
	MaxWorkers int    `validate:"min=0,max=32"`
	DryRun     bool
}

type BackfillResult struct {
	RunID        string
	LeagueID     string
	SeasonID     string
	Status       string
	WorkerCount  int
	Weeks        []int
	SkippedWeeks []int
	Matchups     []matchup.Resolved
	Persist      PersistResult
}

// PersistResult reports the outcome of writing resolved matchups. OK is true
// only when every submitted row was stored.
type PersistResult struct {
	OK        bool
	SeasonID  string
	Submitted int
	Stored    int
	Err       error
}

type MatchupSyncService struct {
	provider   LeagueProvider
	seasons    season.Repository
	clubs      club.Repository
	matchups   matchup.Repository
	matcher    matchup.Matcher
	ids        idgen.Generator
	maxWorkers int
	logger     *logging.Logger
}

func NewMatchupSyncService(
	provider LeagueProvider,
	seasonRepo season.Repository,
	clubRepo club.Repository,
	matchupRepo matchup.Repository,
	matcher matchup.Matcher,
	ids idgen.Generator,
	maxWorkers int,
	logger *logging.Logger,
) *MatchupSyncService {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxWorkers <= 0 {
		maxWorkers = 1
	}
	if matcher.Threshold <= 0 {
		matcher = matchup.DefaultMatcher()
	}

	return &MatchupSyncService{
		provider:   provider,
		seasons:    seasonRepo,
		clubs:      clubRepo,
		matchups:   matchupRepo,
		matcher:    matcher,
		ids:        ids,
		maxWorkers: maxWorkers,
		logger:     logger.Named("matchup_sync"),
	}
}

// Sync resolves one week of matchups and writes them. Matching finishes in
// memory before anything is written.
func (s *MatchupSyncService) Sync(ctx context.Context, input SyncInput) (result SyncResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchupSyncService.Sync",
		attribute.String("league_id", input.LeagueID),
		attribute.Int("week", input.Week),
		attribute.Bool("dry_run", input.DryRun),
	)
	defer func() { endSpan(span, err) }()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if err := validateInput(input); err != nil {
		return SyncResult{}, err
	}

	result = SyncResult{
		RunID:    newRunID(s.ids),
		LeagueID: input.LeagueID,
		Week:     input.Week,
	}
	span.SetAttributes(attribute.String("run_id", result.RunID))
	logger := s.logger.With("run_id", result.RunID, "league_id", input.LeagueID)

	week, err := s.resolveWeek(ctx, input.Week)
	if err != nil {
		return result, err
	}
	result.Week = week
	if week <= 0 {
		return skipSync(ctx, logger, result, "no active week")
	}

	participants, err := s.provider.FetchMatchups(ctx, input.LeagueID, week)
	if err != nil {
		return result, fmt.Errorf("fetch matchups week %d: %w", week, err)
	}
	if len(participants) == 0 {
		return skipSync(ctx, logger, result, "no matchups returned")
	}

	rosters, err := s.provider.FetchRosters(ctx, input.LeagueID)
	if err != nil {
		return result, fmt.Errorf("fetch rosters: %w", err)
	}
	if len(rosters) == 0 {
		return skipSync(ctx, logger, result, "no rosters returned")
	}

	resolved, err := s.matcher.Match(participants, rostersForMatching(rosters), week)
	if err != nil {
		return result, fmt.Errorf("match week %d: %w", week, err)
	}
	result.Matchups = resolved

	if input.DryRun {
		records, seasonID, err := s.buildRecords(ctx, input.LeagueID, resolved)
		if err != nil {
			return result, err
		}
		result.SeasonID = seasonID
		result.Status = syncStatusDryRun
		logger.InfoContext(ctx, "matchup sync dry run", "week", week, "matchups", len(records))
		return result, nil
	}

	result.Persist = s.Persist(ctx, input.LeagueID, resolved)
	result.SeasonID = result.Persist.SeasonID
	if !result.Persist.OK {
		return result, result.Persist.Err
	}

	result.Status = syncStatusSuccess
	logger.InfoContext(ctx, "matchup sync completed",
		"week", week,
		"season_id", result.SeasonID,
		"stored", result.Persist.Stored,
	)
	return result, nil
}

// Backfill syncs a range of weeks. Weeks are fetched concurrently, matched in
// order, and written together only if every week matched.
func (s *MatchupSyncService) Backfill(ctx context.Context, input BackfillInput) (result BackfillResult, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchupSyncService.Backfill",
		attribute.String("league_id", input.LeagueID),
		attribute.Int("from_week", input.FromWeek),
		attribute.Int("to_week", input.ToWeek),
		attribute.Bool("dry_run", input.DryRun),
	)
	defer func() { endSpan(span, err) }()

	input.LeagueID = strings.TrimSpace(input.LeagueID)
	if err := validateInput(input); err != nil {
		return BackfillResult{}, err
	}

	workerCount := input.MaxWorkers
	if workerCount <= 0 {
		workerCount = s.maxWorkers
	}
	workerCount = min(workerCount, input.ToWeek-input.FromWeek+1)

	result = BackfillResult{
		RunID:       newRunID(s.ids),
		LeagueID:    input.LeagueID,
		WorkerCount: workerCount,
	}
	span.SetAttributes(attribute.String("run_id", result.RunID))
	logger := s.logger.With("run_id", result.RunID, "league_id", input.LeagueID)

	rosters, err := s.provider.FetchRosters(ctx, input.LeagueID)
	if err != nil {
		return result, fmt.Errorf("fetch rosters: %w", err)
	}
	if len(rosters) == 0 {
		result.Status = syncStatusSkipped
		logger.InfoContext(ctx, "matchup backfill skipped", "reason", "no rosters returned")
		return result, nil
	}
	candidates := rostersForMatching(rosters)

	weekly, err := s.fetchWeeks(ctx, input.LeagueID, input.FromWeek, input.ToWeek, workerCount)
	if err != nil {
		return result, err
	}

	for idx, participants := range weekly {
		week := input.FromWeek + idx
		if len(participants) == 0 {
			result.SkippedWeeks = append(result.SkippedWeeks, week)
			continue
		}
		resolved, err := s.matcher.Match(participants, candidates, week)
		if err != nil {
			return result, fmt.Errorf("match week %d: %w", week, err)
		}
		result.Weeks = append(result.Weeks, week)
		result.Matchups = append(result.Matchups, resolved...)
	}

	if len(result.Matchups) == 0 {
		result.Status = syncStatusSkipped
		logger.InfoContext(ctx, "matchup backfill skipped", "reason", "no matchups returned")
		return result, nil
	}

	if input.DryRun {
		_, seasonID, err := s.buildRecords(ctx, input.LeagueID, result.Matchups)
		if err != nil {
			return result, err
		}
		result.SeasonID = seasonID
		result.Status = syncStatusDryRun
		logger.InfoContext(ctx, "matchup backfill dry run", "weeks", len(result.Weeks), "matchups", len(result.Matchups))
		return result, nil
	}

	result.Persist = s.Persist(ctx, input.LeagueID, result.Matchups)
	result.SeasonID = result.Persist.SeasonID
	if !result.Persist.OK {
		return result, result.Persist.Err
	}

	result.Status = syncStatusSuccess
	logger.InfoContext(ctx, "matchup backfill completed",
		"weeks", len(result.Weeks),
		"skipped_weeks", len(result.SkippedWeeks),
		"stored", result.Persist.Stored,
		"workers", workerCount,
	)
	return result, nil
}

// Persist maps owners to clubs and writes one row per resolved matchup. It
// reports failure through the result and does not panic.
func (s *MatchupSyncService) Persist(ctx context.Context, sleeperLeagueID string, resolved []matchup.Resolved) (result PersistResult) {
	result.Submitted = len(resolved)
	defer func() {
		if recovered := recover(); recovered != nil {
			result.OK = false
			result.Err = fmt.Errorf("persist matchups: panic: %v", recovered)
		}
		if result.Err != nil {
			s.logger.ErrorContext(ctx, "persist matchups failed",
				"league_id", sleeperLeagueID,
				"submitted", result.Submitted,
				"stored", result.Stored,
				"error", result.Err,
			)
		}
	}()

	records, seasonID, err := s.buildRecords(ctx, sleeperLeagueID, resolved)
	result.SeasonID = seasonID
	if err != nil {
		result.Err = err
		return result
	}

	stored, err := s.matchups.Insert(ctx, records)
	result.Stored = stored
	if err != nil {
		result.Err = fmt.Errorf("insert matchups: %w", err)
		return result
	}
	if stored != len(records) {
		result.Err = fmt.Errorf("%w: stored %d of %d matchups", ErrIncompleteWrite, stored, len(records))
		return result
	}

	result.OK = true
	return result
}

func (s *MatchupSyncService) buildRecords(ctx context.Context, sleeperLeagueID string, resolved []matchup.Resolved) ([]matchup.Record, string, error) {
	item, err := resolveSeason(ctx, s.seasons, sleeperLeagueID)
	if err != nil {
		return nil, "", err
	}

	clubs, err := s.clubs.ListActiveByLeague(ctx, item.LeagueID)
	if err != nil {
		return nil, item.ID, fmt.Errorf("list clubs league_id=%s: %w", item.LeagueID, err)
	}
	lookup := club.NewLookup(clubs)

	records := make([]matchup.Record, 0, len(resolved))
	var missing []string
	for _, r := range resolved {
		clubX, okX := lookup[r.OwnerX]
		clubY, okY := lookup[r.OwnerY]
		if !okX {
			missing = append(missing, r.OwnerX)
		}
		if !okY {
			missing = append(missing, r.OwnerY)
		}
		if !okX || !okY {
			continue
		}

		record := matchup.Record{
			SeasonID: item.ID,
			ClubXID:  clubX,
			ScoreX:   r.ScoreX,
			ClubYID:  clubY,
			ScoreY:   r.ScoreY,
			Week:     r.Week,
		}.Canonical()
		record.WinnerID = record.Winner()
		records = append(records, record)
	}

	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, item.ID, fmt.Errorf("%w: no active club for owner ids %s", ErrNotFound, strings.Join(missing, ", "))
	}
	return records, item.ID, nil
}

func (s *MatchupSyncService) resolveWeek(ctx context.Context, week int) (int, error) {
	if week > 0 {
		return week, nil
	}

	state, err := s.provider.FetchState(ctx)
	if err != nil {
		return 0, fmt.Errorf("resolve current week: %w", err)
	}
	if state.Week > maxSeasonWeek {
		return 0, nil
	}
	return state.Week, nil
}

func (s *MatchupSyncService) fetchWeeks(ctx context.Context, leagueID string, fromWeek, toWeek, workerCount int) ([][]matchup.Participant, error) {
	weekly := make([][]matchup.Participant, toWeek-fromWeek+1)
	errs := make([]error, len(weekly))

	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return nil, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var workers sync.WaitGroup
	for week := fromWeek; week <= toWeek; week++ {
		idx := week - fromWeek
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			weekly[idx], errs[idx] = s.provider.FetchMatchups(ctx, leagueID, week)
		}); err != nil {
			workers.Done()
			workers.Wait()
			return nil, fmt.Errorf("submit week %d to worker pool: %w", week, err)
		}
	}
	workers.Wait()

	for idx, err := range errs {
		if err != nil {
			return nil, fmt.Errorf("fetch matchups week %d: %w", fromWeek+idx, err)
		}
	}
	return weekly, nil
}

func skipSync(ctx context.Context, logger *logging.Logger, result SyncResult, reason string) (SyncResult, error) {
	result.Status = syncStatusSkipped
	result.Message = reason
	logger.InfoContext(ctx, "matchup sync skipped", "week", result.Week, "reason", reason)
	return result, nil
}
