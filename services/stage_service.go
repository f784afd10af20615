package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"

	"golang.org/x/sync/singleflight"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/repositories"
)

// StageService агрегирует заблокированные результаты матчей этапа в
// ранжированный лидерборд и проставляет флаги квалификации.
type StageService struct {
	txr          repositories.TxRunner
	rooms        repositories.MatchRoomRepository
	results      repositories.ResultRepository
	stageResults repositories.StageResultRepository
	lobbies      repositories.LobbyRepository
	hub          LeaderboardBroadcaster
	logger       *slog.Logger

	// Пересчёты одного и того же (турнир, этап) схлопываются в один:
	// операция идемпотентна, полный пересчёт последнего писателя побеждает.
	group singleflight.Group
}

func NewStageService(
	txr repositories.TxRunner,
	rooms repositories.MatchRoomRepository,
	results repositories.ResultRepository,
	stageResults repositories.StageResultRepository,
	lobbies repositories.LobbyRepository,
	hub LeaderboardBroadcaster,
	logger *slog.Logger,
) *StageService {
	return &StageService{
		txr:          txr,
		rooms:        rooms,
		results:      results,
		stageResults: stageResults,
		lobbies:      lobbies,
		hub:          hub,
		logger:       logger,
	}
}

// GenerateStageLeaderboard folds the locked results of the given matches
// into one StageResult row per team and rewrites the stage standings in
// full, so teams absent from a rerun drop out instead of lingering with
// stale totals. Qualified flags of surviving teams are carried over. Only
// locked results are eligible input.
func (s *StageService) GenerateStageLeaderboard(ctx context.Context, tournamentID, stageNumber int, matchRoomIDs []int, actor models.Actor) ([]*models.StageResult, error) {
	if !actor.Can(models.CapManageResults) {
		return nil, ErrForbiddenOperation
	}
	if tournamentID < 1 || stageNumber < 1 || len(matchRoomIDs) == 0 {
		return nil, ErrValidationFailed
	}

	key := strconv.Itoa(tournamentID) + ":" + strconv.Itoa(stageNumber)
	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		return s.generate(ctx, tournamentID, stageNumber, matchRoomIDs, actor)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*models.StageResult), nil
}

func (s *StageService) generate(ctx context.Context, tournamentID, stageNumber int, matchRoomIDs []int, actor models.Actor) ([]*models.StageResult, error) {
	rooms, err := s.rooms.ListByIDs(ctx, actor.TenantFilter(), tournamentID, matchRoomIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve match rooms: %w", err)
	}
	// Каждый переданный id обязан разрешиться; частичная агрегация запрещена.
	if len(rooms) != len(uniqueInts(matchRoomIDs)) {
		return nil, ErrValidationFailed
	}
	for _, room := range rooms {
		if room.StageNumber != stageNumber {
			return nil, ErrValidationFailed
		}
	}

	lockedResults, err := s.results.ListLockedByMatchRooms(ctx, matchRoomIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load locked results: %w", err)
	}
	if len(lockedResults) == 0 {
		return nil, ErrNoStageData
	}

	teamNames, err := s.teamNamesByID(ctx, tournamentID)
	if err != nil {
		return nil, err
	}

	totals := make(map[int]*models.StageResult)
	order := make([]int, 0)
	for _, res := range lockedResults {
		agg, ok := totals[res.TeamID]
		if !ok {
			agg = &models.StageResult{
				TournamentID: tournamentID,
				StageNumber:  stageNumber,
				TeamID:       res.TeamID,
				TeamName:     teamNames[res.TeamID],
			}
			totals[res.TeamID] = agg
			order = append(order, res.TeamID)
		}
		agg.MatchesPlayed++
		agg.TotalKills += res.Kills
		agg.TotalPoints += res.Points
	}

	standings := make([]*models.StageResult, 0, len(totals))
	for _, teamID := range order {
		standings = append(standings, totals[teamID])
	}
	// points DESC, kills DESC; полные ничьи получают различные
	// последовательные ранги в порядке обхода (ранги не делятся).
	sort.SliceStable(standings, func(i, j int) bool {
		if standings[i].TotalPoints != standings[j].TotalPoints {
			return standings[i].TotalPoints > standings[j].TotalPoints
		}
		return standings[i].TotalKills > standings[j].TotalKills
	})
	for i, sr := range standings {
		sr.Rank = i + 1
	}

	// Полная перезапись этапа: строки команд, выпавших из пересчёта, не
	// должны переживать его. Флаги квалификации уцелевших команд переносим.
	previous, err := s.stageResults.ListByStage(ctx, tournamentID, stageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous stage results: %w", err)
	}
	wasQualified := make(map[int]bool, len(previous))
	for _, sr := range previous {
		wasQualified[sr.TeamID] = sr.Qualified
	}
	requalify := make([]int, 0)
	for _, sr := range standings {
		if wasQualified[sr.TeamID] {
			requalify = append(requalify, sr.TeamID)
		}
	}

	err = s.txr.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		if delErr := s.stageResults.DeleteByStage(ctx, exec, tournamentID, stageNumber); delErr != nil {
			return delErr
		}
		for _, sr := range standings {
			if upErr := s.stageResults.Upsert(ctx, exec, sr); upErr != nil {
				return upErr
			}
		}
		return s.stageResults.SetQualified(ctx, exec, tournamentID, stageNumber, requalify)
	})
	if err != nil {
		return nil, err
	}
	for _, sr := range standings {
		sr.Qualified = wasQualified[sr.TeamID]
	}

	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(tournamentID), map[string]interface{}{
			"type":         "STAGE_LEADERBOARD_UPDATED",
			"stage_number": stageNumber,
			"standings":    StageResultsToValues(standings),
		})
	}
	return standings, nil
}

// MarkQualified marks exactly the top-N ranked teams of the stage as
// qualified. Implemented as clear-all-then-set-selected so a rerun with a
// different count correctly demotes previously qualified teams.
func (s *StageService) MarkQualified(ctx context.Context, tournamentID, stageNumber, qualifyCount int, actor models.Actor) ([]*models.StageResult, error) {
	if !actor.Can(models.CapManageResults) {
		return nil, ErrForbiddenOperation
	}
	if qualifyCount < 1 {
		return nil, ErrInvalidQualifyCount
	}
	if err := s.checkStageTenant(ctx, tournamentID, stageNumber, actor); err != nil {
		return nil, err
	}

	rows, err := s.stageResults.ListByStage(ctx, tournamentID, stageNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to load stage results: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrNoStageData
	}

	if qualifyCount > len(rows) {
		qualifyCount = len(rows)
	}
	qualifiedIDs := make([]int, 0, qualifyCount)
	for _, sr := range rows[:qualifyCount] {
		qualifiedIDs = append(qualifiedIDs, sr.TeamID)
	}

	err = s.txr.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		if clrErr := s.stageResults.ClearQualified(ctx, exec, tournamentID, stageNumber); clrErr != nil {
			return clrErr
		}
		return s.stageResults.SetQualified(ctx, exec, tournamentID, stageNumber, qualifiedIDs)
	})
	if err != nil {
		return nil, err
	}

	for i, sr := range rows {
		sr.Qualified = i < qualifyCount
	}
	return rows, nil
}

// StageLeaderboard returns the persisted stage standings ordered by rank.
func (s *StageService) StageLeaderboard(ctx context.Context, tournamentID, stageNumber int) ([]*models.StageResult, error) {
	return s.stageResults.ListByStage(ctx, tournamentID, stageNumber)
}

// checkStageTenant ensures the stage belongs to the actor's tenant without
// confirming foreign data: any mismatch reads as not found.
func (s *StageService) checkStageTenant(ctx context.Context, tournamentID, stageNumber int, actor models.Actor) error {
	rooms, err := s.rooms.ListByTournament(ctx, actor.TenantFilter(), tournamentID, &stageNumber)
	if err != nil {
		return fmt.Errorf("failed to load stage match rooms: %w", err)
	}
	if len(rooms) == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *StageService) teamNamesByID(ctx context.Context, tournamentID int) (map[int]string, error) {
	entries, err := s.lobbies.ListByTournament(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrLobbyEntryNotFound) {
			return map[int]string{}, nil
		}
		return nil, fmt.Errorf("failed to load lobby snapshots: %w", err)
	}
	names := make(map[int]string, len(entries))
	for _, e := range entries {
		names[e.TeamID] = e.TeamName
	}
	return names, nil
}

func uniqueInts(ids []int) []int {
	seen := make(map[int]struct{}, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
