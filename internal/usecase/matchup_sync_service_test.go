package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/riskibarqy/fantasy-sync/internal/domain/club"
	"github.com/riskibarqy/fantasy-sync/internal/domain/matchup"
	"github.com/riskibarqy/fantasy-sync/internal/domain/season"
	clubmock "github.com/riskibarqy/fantasy-sync/internal/mocks/domain/club"
	matchupmock "github.com/riskibarqy/fantasy-sync/internal/mocks/domain/matchup"
	seasonmock "github.com/riskibarqy/fantasy-sync/internal/mocks/domain/season"
	idgen "github.com/riskibarqy/fantasy-sync/internal/platform/id"
	"github.com/stretchr/testify/mock"
)

const testLeagueID = "1180"

type stubProvider struct {
	mu          sync.Mutex
	matchups    map[int][]matchup.Participant
	matchupErrs map[int]error
	rosters     []ExternalRoster
	rostersErr  error
	state       ExternalState
	stateErr    error
	weekCalls   []int
}

func (s *stubProvider) FetchMatchups(_ context.Context, _ string, week int) ([]matchup.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weekCalls = append(s.weekCalls, week)
	if err := s.matchupErrs[week]; err != nil {
		return nil, err
	}
	return s.matchups[week], nil
}

func (s *stubProvider) FetchRosters(context.Context, string) ([]ExternalRoster, error) {
	return s.rosters, s.rostersErr
}

func (s *stubProvider) FetchState(context.Context) (ExternalState, error) {
	return s.state, s.stateErr
}

func lineup(prefix string, n int) []string {
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("%s%d", prefix, i))
	}
	return out
}

// testRosters returns four owners with disjoint ten-player rosters.
func testRosters() []ExternalRoster {
	return []ExternalRoster{
		{RosterID: 1, OwnerID: "owner-a", Players: lineup("a", 10)},
		{RosterID: 2, OwnerID: "owner-b", Players: lineup("b", 10)},
		{RosterID: 3, OwnerID: "owner-c", Players: lineup("c", 10)},
		{RosterID: 4, OwnerID: "owner-d", Players: lineup("d", 10)},
	}
}

func testWeek(scoreA, scoreB float64) []matchup.Participant {
	return []matchup.Participant{
		{MatchupID: 1, RosterID: 1, Players: lineup("a", 9), Points: scoreA},
		{MatchupID: 2, RosterID: 3, Players: lineup("c", 9), Points: 80},
		{MatchupID: 1, RosterID: 2, Players: lineup("b", 9), Points: scoreB},
		{MatchupID: 2, RosterID: 4, Players: lineup("d", 9), Points: 70.5},
	}
}

func testClubs() []club.Club {
	return []club.Club{
		{ID: "club-a", LeagueID: "l-1", ExternalID: "owner-a", Active: true},
		{ID: "club-b", LeagueID: "l-1", ExternalID: "owner-b", Active: true},
		{ID: "club-c", LeagueID: "l-1", ExternalID: "owner-c", Active: true},
		{ID: "club-d", LeagueID: "l-1", ExternalID: "owner-d", Active: true},
	}
}

type matchupFixture struct {
	provider    *stubProvider
	seasonRepo  *seasonmock.Repository
	clubRepo    *clubmock.Repository
	matchupRepo *matchupmock.Repository
	service     *MatchupSyncService
}

func newMatchupFixture(t *testing.T, provider *stubProvider) matchupFixture {
	t.Helper()

	f := matchupFixture{
		provider:    provider,
		seasonRepo:  seasonmock.NewRepository(t),
		clubRepo:    clubmock.NewRepository(t),
		matchupRepo: matchupmock.NewRepository(t),
	}
	f.service = NewMatchupSyncService(
		provider,
		f.seasonRepo,
		f.clubRepo,
		f.matchupRepo,
		matchup.DefaultMatcher(),
		idgen.Static("run-1"),
		2,
		nil,
	)
	return f
}

func (f matchupFixture) expectLookups() {
	f.seasonRepo.
		On("GetByExternalID", mock.Anything, testLeagueID).
		Return(season.Season{ID: "season-1", LeagueID: "l-1", ExternalID: testLeagueID}, true, nil).
		Once()
	f.clubRepo.
		On("ListActiveByLeague", mock.Anything, "l-1").
		Return(testClubs(), nil).
		Once()
}

func TestMatchupSyncService_SyncWritesResolvedWeek(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		matchups: map[int][]matchup.Participant{3: testWeek(100, 90)},
		rosters:  testRosters(),
	}
	f := newMatchupFixture(t, provider)
	f.expectLookups()

	var written []matchup.Record
	f.matchupRepo.
		On("Insert", mock.Anything, mock.AnythingOfType("[]matchup.Record")).
		Run(func(args mock.Arguments) { written = args.Get(1).([]matchup.Record) }).
		Return(2, nil).
		Once()

	got, err := f.service.Sync(context.Background(), SyncInput{LeagueID: testLeagueID, Week: 3})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if got.Status != syncStatusSuccess || got.RunID != "run-1" || got.SeasonID != "season-1" {
		t.Fatalf("unexpected result: %+v", got)
	}
	if !got.Persist.OK || got.Persist.Submitted != 2 || got.Persist.Stored != 2 {
		t.Fatalf("unexpected persist result: %+v", got.Persist)
	}
	if len(got.Matchups) != 2 {
		t.Fatalf("expected 2 resolved matchups, got %d", len(got.Matchups))
	}

	first := written[0]
	if first.SeasonID != "season-1" || first.ClubXID != "club-a" || first.ClubYID != "club-b" || first.Week != 3 {
		t.Fatalf("unexpected first record: %+v", first)
	}
	if first.WinnerID == nil || *first.WinnerID != "club-a" {
		t.Fatalf("expected club-a to win, got %v", first.WinnerID)
	}
	if written[1].WinnerID == nil || *written[1].WinnerID != "club-c" {
		t.Fatalf("expected club-c to win, got %v", written[1].WinnerID)
	}
}

func TestMatchupSyncService_SyncStoresSameKeyWhenSidesSwap(t *testing.T) {
	t.Parallel()

	swapped := []matchup.Participant{
		{MatchupID: 1, RosterID: 2, Players: lineup("b", 9), Points: 90},
		{MatchupID: 1, RosterID: 1, Players: lineup("a", 9), Points: 100},
	}
	provider := &stubProvider{
		matchups: map[int][]matchup.Participant{3: swapped},
		rosters:  testRosters(),
	}
	f := newMatchupFixture(t, provider)
	f.expectLookups()

	var written []matchup.Record
	f.matchupRepo.
		On("Insert", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { written = args.Get(1).([]matchup.Record) }).
		Return(1, nil).
		Once()

	got, err := f.service.Sync(context.Background(), SyncInput{LeagueID: testLeagueID, Week: 3})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if got.Matchups[0].OwnerX != "owner-b" {
		t.Fatalf("resolved matchup should keep input order, got %+v", got.Matchups[0])
	}
	if len(written) != 1 {
		t.Fatalf("expected 1 record, got %d", len(written))
	}
	record := written[0]
	if record.ClubXID != "club-a" || record.ScoreX != 100 || record.ClubYID != "club-b" || record.ScoreY != 90 {
		t.Fatalf("expected clubs in id order with their scores, got %+v", record)
	}
	if record.WinnerID == nil || *record.WinnerID != "club-a" {
		t.Fatalf("expected club-a to win, got %v", record.WinnerID)
	}
}

func TestMatchupSyncService_SyncTieHasNoWinner(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		matchups: map[int][]matchup.Participant{5: testWeek(101.25, 101.25)},
		rosters:  testRosters(),
	}
	f := newMatchupFixture(t, provider)
	f.expectLookups()
	f.matchupRepo.
		On("Insert", mock.Anything, mock.MatchedBy(func(records []matchup.Record) bool {
			return len(records) == 2 && records[0].WinnerID == nil && records[1].WinnerID != nil
		})).
		Return(2, nil).
		Once()

	if _, err := f.service.Sync(context.Background(), SyncInput{LeagueID: testLeagueID, Week: 5}); err != nil {
		t.Fatalf("sync: %v", err)
	}
}

func TestMatchupSyncService_SyncResolvesCurrentWeek(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		matchups: map[int][]matchup.Participant{7: testWeek(100, 90)},
		rosters:  testRosters(),
		state:    ExternalState{Season: "2025", SeasonType: "regular", Week: 7},
	}
	f := newMatchupFixture(t, provider)
	f.expectLookups()
	f.matchupRepo.On("Insert", mock.Anything, mock.Anything).Return(2, nil).Once()

	got, err := f.service.Sync(context.Background(), SyncInput{LeagueID: testLeagueID})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if got.Week != 7 {
		t.Fatalf("expected week 7, got %d", got.Week)
	}
	if len(provider.weekCalls) != 1 || provider.weekCalls[0] != 7 {
		t.Fatalf("unexpected week calls: %v", provider.weekCalls)
	}
}

func TestMatchupSyncService_SyncSkipsWithoutData(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		provider *stubProvider
		week     int
		reason   string
	}{
		{
			name:     "offseason state",
			provider: &stubProvider{state: ExternalState{Week: 0}},
			reason:   "no active week",
		},
		{
			name:     "postseason state",
			provider: &stubProvider{state: ExternalState{Week: 19}},
			reason:   "no active week",
		},
		{
			name:     "no matchups",
			provider: &stubProvider{rosters: testRosters()},
			week:     2,
			reason:   "no matchups returned",
		},
		{
			name:     "no rosters",
			provider: &stubProvider{matchups: map[int][]matchup.Participant{2: testWeek(1, 2)}},
			week:     2,
			reason:   "no rosters returned",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			f := newMatchupFixture(t, tc.provider)
			got, err := f.service.Sync(context.Background(), SyncInput{LeagueID: testLeagueID, Week: tc.week})
			if err != nil {
				t.Fatalf("sync: %v", err)
			}
			if got.Status != syncStatusSkipped || got.Message != tc.reason {
				t.Fatalf("unexpected result: %+v", got)
			}
		})
	}
}

func TestMatchupSyncService_SyncMatchFailureWritesNothing(t *testing.T) {
	t.Parallel()

	participants := testWeek(100, 90)
	participants[2].Players = lineup("z", 9)
	provider := &stubProvider{
		matchups: map[int][]matchup.Participant{3: participants},
		rosters:  testRosters(),
	}
	f := newMatchupFixture(t, provider)

	_, err := f.service.Sync(context.Background(), SyncInput{LeagueID: testLeagueID, Week: 3})
	if !errors.Is(err, matchup.ErrUnresolvedParticipant) {
		t.Fatalf("expected ErrUnresolvedParticipant, got %v", err)
	}
	f.matchupRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestMatchupSyncService_SyncPropagatesProviderError(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		matchupErrs: map[int]error{3: fmt.Errorf("%w: sleeper down", ErrDependencyUnavailable)},
	}
	f := newMatchupFixture(t, provider)

	_, err := f.service.Sync(context.Background(), SyncInput{LeagueID: testLeagueID, Week: 3})
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestMatchupSyncService_SyncDryRunSkipsWrite(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		matchups: map[int][]matchup.Participant{3: testWeek(100, 90)},
		rosters:  testRosters(),
	}
	f := newMatchupFixture(t, provider)
	f.expectLookups()

	got, err := f.service.Sync(context.Background(), SyncInput{LeagueID: testLeagueID, Week: 3, DryRun: true})
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if got.Status != syncStatusDryRun || len(got.Matchups) != 2 || got.SeasonID != "season-1" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestMatchupSyncService_SyncRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	tests := []SyncInput{
		{LeagueID: "  ", Week: 1},
		{LeagueID: testLeagueID, Week: -1},
		{LeagueID: testLeagueID, Week: 19},
	}
	for _, input := range tests {
		f := newMatchupFixture(t, &stubProvider{})
		if _, err := f.service.Sync(context.Background(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("expected ErrInvalidInput for %+v, got %v", input, err)
		}
	}
}

func TestMatchupSyncService_PersistReportsIncompleteWrite(t *testing.T) {
	t.Parallel()

	f := newMatchupFixture(t, &stubProvider{})
	f.expectLookups()
	f.matchupRepo.On("Insert", mock.Anything, mock.Anything).Return(1, nil).Once()

	resolved := []matchup.Resolved{
		{MatchupID: 1, OwnerX: "owner-a", ScoreX: 1, OwnerY: "owner-b", ScoreY: 2, Week: 1},
		{MatchupID: 2, OwnerX: "owner-c", ScoreX: 3, OwnerY: "owner-d", ScoreY: 4, Week: 1},
	}
	got := f.service.Persist(context.Background(), testLeagueID, resolved)
	if got.OK {
		t.Fatalf("expected failed persist")
	}
	if !errors.Is(got.Err, ErrIncompleteWrite) {
		t.Fatalf("expected ErrIncompleteWrite, got %v", got.Err)
	}
	if got.Submitted != 2 || got.Stored != 1 {
		t.Fatalf("unexpected counts: %+v", got)
	}
}

func TestMatchupSyncService_PersistUnknownOwner(t *testing.T) {
	t.Parallel()

	f := newMatchupFixture(t, &stubProvider{})
	f.expectLookups()

	got := f.service.Persist(context.Background(), testLeagueID, []matchup.Resolved{
		{MatchupID: 1, OwnerX: "owner-a", OwnerY: "owner-z", Week: 1},
	})
	if got.OK || !errors.Is(got.Err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %+v", got)
	}
	f.matchupRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestMatchupSyncService_PersistMissingSeason(t *testing.T) {
	t.Parallel()

	f := newMatchupFixture(t, &stubProvider{})
	f.seasonRepo.
		On("GetByExternalID", mock.Anything, testLeagueID).
		Return(season.Season{}, false, nil).
		Once()

	got := f.service.Persist(context.Background(), testLeagueID, []matchup.Resolved{
		{MatchupID: 1, OwnerX: "owner-a", OwnerY: "owner-b", Week: 1},
	})
	if got.OK || !errors.Is(got.Err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %+v", got)
	}
}

func TestMatchupSyncService_PersistRecoversPanic(t *testing.T) {
	t.Parallel()

	f := newMatchupFixture(t, &stubProvider{})
	f.expectLookups()
	f.matchupRepo.
		On("Insert", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { panic("connection reset") }).
		Return(0, nil).
		Once()

	got := f.service.Persist(context.Background(), testLeagueID, []matchup.Resolved{
		{MatchupID: 1, OwnerX: "owner-a", OwnerY: "owner-b", Week: 1},
	})
	if got.OK || got.Err == nil {
		t.Fatalf("expected recovered failure, got %+v", got)
	}
}

func TestMatchupSyncService_BackfillWritesAllWeeksOnce(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		matchups: map[int][]matchup.Participant{
			1: testWeek(100, 90),
			3: testWeek(80, 95),
		},
		rosters: testRosters(),
	}
	f := newMatchupFixture(t, provider)
	f.expectLookups()
	f.matchupRepo.
		On("Insert", mock.Anything, mock.MatchedBy(func(records []matchup.Record) bool {
			return len(records) == 4 && records[0].Week == 1 && records[3].Week == 3
		})).
		Return(4, nil).
		Once()

	got, err := f.service.Backfill(context.Background(), BackfillInput{LeagueID: testLeagueID, FromWeek: 1, ToWeek: 3})
	if err != nil {
		t.Fatalf("backfill: %v", err)
	}
	if got.Status != syncStatusSuccess || got.WorkerCount != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}
	if len(got.Weeks) != 2 || got.Weeks[0] != 1 || got.Weeks[1] != 3 {
		t.Fatalf("unexpected weeks: %v", got.Weeks)
	}
	if len(got.SkippedWeeks) != 1 || got.SkippedWeeks[0] != 2 {
		t.Fatalf("unexpected skipped weeks: %v", got.SkippedWeeks)
	}
	if len(provider.weekCalls) != 3 {
		t.Fatalf("expected 3 week fetches, got %v", provider.weekCalls)
	}
}

func TestMatchupSyncService_BackfillIsAllOrNothing(t *testing.T) {
	t.Parallel()

	broken := testWeek(100, 90)
	broken[1].Players = nil
	provider := &stubProvider{
		matchups: map[int][]matchup.Participant{
			1: testWeek(100, 90),
			2: broken,
		},
		rosters: testRosters(),
	}
	f := newMatchupFixture(t, provider)

	_, err := f.service.Backfill(context.Background(), BackfillInput{LeagueID: testLeagueID, FromWeek: 1, ToWeek: 2, MaxWorkers: 1})
	if !errors.Is(err, matchup.ErrUnresolvedParticipant) {
		t.Fatalf("expected ErrUnresolvedParticipant, got %v", err)
	}
	f.matchupRepo.AssertNotCalled(t, "Insert", mock.Anything, mock.Anything)
}

func TestMatchupSyncService_BackfillFetchError(t *testing.T) {
	t.Parallel()

	provider := &stubProvider{
		matchups:    map[int][]matchup.Participant{1: testWeek(100, 90)},
		matchupErrs: map[int]error{2: ErrNotFound},
		rosters:     testRosters(),
	}
	f := newMatchupFixture(t, provider)

	_, err := f.service.Backfill(context.Background(), BackfillInput{LeagueID: testLeagueID, FromWeek: 1, ToWeek: 2})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMatchupSyncService_BackfillValidatesRange(t *testing.T) {
	t.Parallel()

	f := newMatchupFixture(t, &stubProvider{})
	_, err := f.service.Backfill(context.Background(), BackfillInput{LeagueID: testLeagueID, FromWeek: 5, ToWeek: 4})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
