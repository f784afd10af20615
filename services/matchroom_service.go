package services

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/repositories"
)

// MatchRoomService управляет комнатами матчей и выдачей их учётных данных.
// Код и пароль комнаты до публикации видят только менеджеры тенанта; после
// публикации — ещё и капитаны команд, занимающих слот в турнире.
type MatchRoomService struct {
	txr         repositories.TxRunner
	rooms       repositories.MatchRoomRepository
	tournaments repositories.TournamentRepository
	lobbies     repositories.LobbyRepository
	teams       repositories.TeamRepository
	results     repositories.ResultRepository
	hub         LeaderboardBroadcaster
}

func NewMatchRoomService(
	txr repositories.TxRunner,
	rooms repositories.MatchRoomRepository,
	tournaments repositories.TournamentRepository,
	lobbies repositories.LobbyRepository,
	teams repositories.TeamRepository,
	results repositories.ResultRepository,
	hub LeaderboardBroadcaster,
) *MatchRoomService {
	return &MatchRoomService{
		txr:         txr,
		rooms:       rooms,
		tournaments: tournaments,
		lobbies:     lobbies,
		teams:       teams,
		results:     results,
		hub:         hub,
	}
}

type CreateMatchRoomInput struct {
	TournamentID int
	StageNumber  int
	MatchNumber  int
	MapName      *string
	ScheduledAt  *time.Time
	RoomCode     string
	RoomPassword string
}

// CreateRoom создаёт непубличную комнату матча в рамках турнира тенанта.
func (s *MatchRoomService) CreateRoom(ctx context.Context, actor models.Actor, in CreateMatchRoomInput) (*models.MatchRoom, error) {
	if !actor.Can(models.CapManageRooms) {
		return nil, ErrForbiddenOperation
	}
	if in.StageNumber < 1 || in.MatchNumber < 1 || in.RoomCode == "" {
		return nil, ErrValidationFailed
	}

	tournament, err := s.tournaments.GetByID(ctx, actor.TenantFilter(), in.TournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}

	room := &models.MatchRoom{
		TenantID:     tournament.TenantID,
		TournamentID: tournament.ID,
		StageNumber:  in.StageNumber,
		MatchNumber:  in.MatchNumber,
		MapName:      in.MapName,
		ScheduledAt:  in.ScheduledAt,
		RoomCode:     in.RoomCode,
		RoomPassword: in.RoomPassword,
	}
	if err := s.rooms.Create(ctx, room); err != nil {
		if errors.Is(err, repositories.ErrMatchRoomConflict) {
			return nil, ErrValidationFailed
		}
		return nil, err
	}
	return room, nil
}

// PublishRoom делает комнату видимой участникам. Публикация однократна:
// повторный вызов получает ErrAlreadyPublished.
func (s *MatchRoomService) PublishRoom(ctx context.Context, actor models.Actor, roomID int) (*models.MatchRoom, error) {
	if !actor.Can(models.CapManageRooms) {
		return nil, ErrForbiddenOperation
	}

	if err := s.rooms.Publish(ctx, actor.TenantFilter(), roomID); err != nil {
		switch {
		case errors.Is(err, repositories.ErrMatchRoomNotFound):
			return nil, ErrMatchRoomNotFound
		case errors.Is(err, repositories.ErrMatchRoomAlreadyPublished):
			return nil, ErrAlreadyPublished
		default:
			return nil, err
		}
	}

	room, err := s.rooms.GetByID(ctx, actor.TenantFilter(), roomID)
	if err != nil {
		return nil, err
	}
	if s.hub != nil {
		s.hub.BroadcastToRoom(strconv.Itoa(room.TournamentID), map[string]interface{}{
			"type":          "ROOM_PUBLISHED",
			"match_room_id": room.ID,
			"stage_number":  room.StageNumber,
			"match_number":  room.MatchNumber,
		})
	}
	return room, nil
}

// GetRoom возвращает комнату без учётных данных.
func (s *MatchRoomService) GetRoom(ctx context.Context, actor models.Actor, roomID int) (*models.MatchRoom, error) {
	room, err := s.rooms.GetByID(ctx, actor.TenantFilter(), roomID)
	if err != nil {
		if errors.Is(err, repositories.ErrMatchRoomNotFound) {
			return nil, ErrMatchRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// ListRooms возвращает комнаты турнира, при stageNumber != nil — только
// указанного этапа.
func (s *MatchRoomService) ListRooms(ctx context.Context, actor models.Actor, tournamentID int, stageNumber *int) ([]*models.MatchRoom, error) {
	return s.rooms.ListByTournament(ctx, actor.TenantFilter(), tournamentID, stageNumber)
}

// RoomCredentials выдаёт код и пароль комнаты. Менеджеры тенанта получают
// их всегда; остальные — только после публикации и только если актор
// является капитаном команды, занимающей слот в турнире.
func (s *MatchRoomService) RoomCredentials(ctx context.Context, actor models.Actor, roomID int) (*models.RoomCredentials, error) {
	room, err := s.GetRoom(ctx, actor, roomID)
	if err != nil {
		return nil, err
	}

	isManager := actor.Can(models.CapManageRooms) && actor.OwnsTenant(room.TenantID)
	if !isManager {
		if !room.IsPublished {
			return nil, ErrRoomNotPublished
		}
		ok, err := s.actorIsParticipant(ctx, actor, room.TournamentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbiddenOperation
		}
	}

	return s.rooms.GetCredentials(ctx, roomID)
}

// DeleteRoom удаляет комнату вместе с её незалоченными результатами.
// Комнату с залоченными результатами удалить нельзя: реестр результатов
// необратим, и каскад его не обходит.
func (s *MatchRoomService) DeleteRoom(ctx context.Context, actor models.Actor, roomID int) error {
	if !actor.Can(models.CapManageRooms) {
		return ErrForbiddenOperation
	}
	// Сначала видимость: чужой тенант получает not found, а не конфликт.
	if _, err := s.rooms.GetByID(ctx, actor.TenantFilter(), roomID); err != nil {
		if errors.Is(err, repositories.ErrMatchRoomNotFound) {
			return ErrMatchRoomNotFound
		}
		return err
	}
	err := s.txr.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		locked, err := s.results.CountLockedByMatchRoom(ctx, exec, roomID)
		if err != nil {
			return err
		}
		if locked > 0 {
			return ErrResultLocked
		}
		if err := s.results.DeleteUnlockedByMatchRoom(ctx, exec, roomID); err != nil {
			return err
		}
		return s.rooms.Delete(ctx, exec, actor.TenantFilter(), roomID)
	})
	if err != nil {
		if errors.Is(err, repositories.ErrMatchRoomNotFound) {
			return ErrMatchRoomNotFound
		}
		return err
	}
	return nil
}

// actorIsParticipant reports whether the actor captains a non-eliminated
// team holding a slot in the tournament.
func (s *MatchRoomService) actorIsParticipant(ctx context.Context, actor models.Actor, tournamentID int) (bool, error) {
	entries, err := s.lobbies.ListByTournament(ctx, tournamentID)
	if err != nil {
		return false, err
	}
	for _, entry := range entries {
		if entry.Status == models.LobbyEliminated {
			continue
		}
		team, err := s.teams.GetByID(ctx, entry.TeamID)
		if err != nil {
			if errors.Is(err, repositories.ErrTeamNotFound) {
				continue
			}
			return false, err
		}
		if team.CaptainEmail == actor.Email {
			return true, nil
		}
	}
	return false, nil
}
