package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/repositories"
)

// LeaderboardBroadcaster рассылает обновления лидербордов подписчикам
// (реализуется websocket-хабом). Доставка best-effort.
type LeaderboardBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// ResultService — журнал результатов: единственная точка мутации строк
// результатов, что и обеспечивает необратимость блокировки.
type ResultService struct {
	rooms   repositories.MatchRoomRepository
	results repositories.ResultRepository
	scoring repositories.ScoringRepository
	hub     LeaderboardBroadcaster
	logger  *slog.Logger
}

func NewResultService(
	rooms repositories.MatchRoomRepository,
	results repositories.ResultRepository,
	scoring repositories.ScoringRepository,
	hub LeaderboardBroadcaster,
	logger *slog.Logger,
) *ResultService {
	return &ResultService{
		rooms:   rooms,
		results: results,
		scoring: scoring,
		hub:     hub,
		logger:  logger,
	}
}

type UpsertResultInput struct {
	MatchRoomID int `json:"match_room_id"`
	TeamID      int `json:"team_id"`
	Position    int `json:"position"`
	Kills       int `json:"kills"`
	Points      int `json:"points"`
}

// UpsertResult creates or replaces the result for one team in one match.
// When the tournament carries a scoring config, points are computed from
// position and kills and the caller-supplied value is ignored; otherwise the
// supplied points pass through unchanged.
func (s *ResultService) UpsertResult(ctx context.Context, input UpsertResultInput, actor models.Actor) (*models.Result, error) {
	if !actor.Can(models.CapManageResults) {
		return nil, ErrForbiddenOperation
	}
	if input.Position < 1 || input.Kills < 0 || input.Points < 0 {
		return nil, ErrValidationFailed
	}

	room, err := s.roomForActor(ctx, input.MatchRoomID, actor)
	if err != nil {
		return nil, err
	}

	points := input.Points
	scoring, err := s.scoring.GetByTournament(ctx, room.TournamentID)
	switch {
	case err == nil:
		points = scoring.PointsFor(input.Position, input.Kills)
	case errors.Is(err, repositories.ErrScoringNotFound):
		// Без конфига очки вводятся оператором как есть.
	default:
		return nil, fmt.Errorf("failed to load scoring config: %w", err)
	}

	result := &models.Result{
		MatchRoomID: input.MatchRoomID,
		TeamID:      input.TeamID,
		Position:    input.Position,
		Kills:       input.Kills,
		Points:      points,
	}
	if err := s.results.Upsert(ctx, result); err != nil {
		switch {
		case errors.Is(err, repositories.ErrResultLocked):
			return nil, ErrResultLocked
		case errors.Is(err, repositories.ErrResultTeamInvalid):
			return nil, ErrTeamNotFound
		default:
			return nil, err
		}
	}
	return result, nil
}

// LockMatch freezes every result row of the match in one batch update and
// returns how many rows were newly locked. Locking is one-way.
func (s *ResultService) LockMatch(ctx context.Context, matchRoomID int, actor models.Actor) (int, error) {
	if !actor.Can(models.CapManageResults) {
		return 0, ErrForbiddenOperation
	}
	room, err := s.roomForActor(ctx, matchRoomID, actor)
	if err != nil {
		return 0, err
	}

	locked, err := s.results.LockByMatchRoom(ctx, nil, matchRoomID)
	if err != nil {
		return 0, err
	}

	if locked > 0 && s.hub != nil {
		leaderboard, lbErr := s.results.ListByMatchRoom(ctx, matchRoomID)
		if lbErr != nil {
			s.logger.WarnContext(ctx, "failed to load leaderboard for broadcast",
				slog.Int("match_room_id", matchRoomID), slog.Any("error", lbErr))
		} else {
			s.hub.BroadcastToRoom(strconv.Itoa(room.TournamentID), map[string]interface{}{
				"type":          "MATCH_LOCKED",
				"match_room_id": matchRoomID,
				"leaderboard":   leaderboard,
			})
		}
	}
	return locked, nil
}

// DeleteResult removes an unlocked result row.
func (s *ResultService) DeleteResult(ctx context.Context, resultID int, actor models.Actor) error {
	if !actor.Can(models.CapManageResults) {
		return ErrForbiddenOperation
	}
	result, err := s.results.GetByID(ctx, resultID)
	if err != nil {
		if errors.Is(err, repositories.ErrResultNotFound) {
			return ErrResultNotFound
		}
		return err
	}
	if _, err := s.roomForActor(ctx, result.MatchRoomID, actor); err != nil {
		return err
	}

	if err := s.results.DeleteUnlocked(ctx, resultID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrResultLocked):
			return ErrResultLocked
		case errors.Is(err, repositories.ErrResultNotFound):
			return ErrResultNotFound
		default:
			return err
		}
	}
	return nil
}

// MatchLeaderboard returns all results of a match in canonical order:
// points descending, ties broken by kills descending.
func (s *ResultService) MatchLeaderboard(ctx context.Context, matchRoomID int) ([]*models.Result, error) {
	if _, err := s.rooms.GetByID(ctx, nil, matchRoomID); err != nil {
		if errors.Is(err, repositories.ErrMatchRoomNotFound) {
			return nil, ErrMatchRoomNotFound
		}
		return nil, err
	}
	return s.results.ListByMatchRoom(ctx, matchRoomID)
}

// roomForActor loads a match room scoped to the actor's tenant. A room of a
// foreign tenant is reported as not found, never as forbidden.
func (s *ResultService) roomForActor(ctx context.Context, matchRoomID int, actor models.Actor) (*models.MatchRoom, error) {
	room, err := s.rooms.GetByID(ctx, actor.TenantFilter(), matchRoomID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchRoomNotFound) {
			return nil, ErrMatchRoomNotFound
		}
		return nil, fmt.Errorf("failed to load match room: %w", err)
	}
	return room, nil
}
