package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/repositories"
)

// SlotService инкапсулирует выделение слотов турнира: единственная точка,
// через которую команды занимают и освобождают слоты.
type SlotService struct {
	txr         repositories.TxRunner
	tournaments repositories.TournamentRepository
	lobbies     repositories.LobbyRepository
	teams       repositories.TeamRepository
}

func NewSlotService(
	txr repositories.TxRunner,
	tournaments repositories.TournamentRepository,
	lobbies repositories.LobbyRepository,
	teams repositories.TeamRepository,
) *SlotService {
	return &SlotService{
		txr:         txr,
		tournaments: tournaments,
		lobbies:     lobbies,
		teams:       teams,
	}
}

// JoinSlot reserves the next free slot for the team. The capacity check and
// the counter increment are one conditional update inside the same
// transaction as the lobby insert, so the pair either fully applies or
// fully rolls back.
func (s *SlotService) JoinSlot(ctx context.Context, tournamentID, teamID int, actor models.Actor) (*models.LobbyEntry, error) {
	tournament, err := s.tournaments.GetByID(ctx, nil, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}
	if tournament.Status != models.StatusUpcoming {
		return nil, ErrTournamentNotOpen
	}
	if tournament.FilledSlots >= tournament.Slots {
		// Ранняя проверка; настоящую гонку отсекает условный инкремент.
		return nil, ErrTournamentFull
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team: %w", err)
	}

	if !s.actorMayActForTeam(actor, team, tournament) {
		return nil, ErrForbiddenOperation
	}

	if _, err := s.lobbies.FindByTeamAndTournament(ctx, teamID, tournamentID); err == nil {
		return nil, ErrAlreadyJoined
	} else if !errors.Is(err, repositories.ErrLobbyEntryNotFound) {
		return nil, fmt.Errorf("failed to check existing lobby entry: %w", err)
	}

	entry := &models.LobbyEntry{
		TournamentID: tournamentID,
		TeamID:       teamID,
		TeamName:     team.Name,
		CaptainName:  team.CaptainName,
		Status:       models.LobbyAssigned,
	}

	err = s.txr.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		slotNumber, fillErr := s.tournaments.FillSlot(ctx, exec, tournamentID)
		if fillErr != nil {
			return fillErr
		}
		entry.SlotNumber = slotNumber
		return s.lobbies.Create(ctx, exec, entry)
	})
	if err != nil {
		return nil, s.translateJoinError(err)
	}
	return entry, nil
}

// AssignSlot is the manual admin path: the caller supplies the slot number,
// capacity is still enforced by the conditional increment and collisions by
// the (tournament, slot_number) uniqueness constraint.
func (s *SlotService) AssignSlot(ctx context.Context, tournamentID, teamID, slotNumber int, actor models.Actor) (*models.LobbyEntry, error) {
	if !actor.Can(models.CapManageSlots) {
		return nil, ErrForbiddenOperation
	}

	tournament, err := s.tournaments.GetByID(ctx, actor.TenantFilter(), tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}
	if tournament.Status != models.StatusUpcoming {
		return nil, ErrTournamentNotOpen
	}
	if slotNumber < 1 || slotNumber > tournament.Slots {
		return nil, ErrInvalidSlotNumber
	}

	team, err := s.teams.GetByID(ctx, teamID)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, fmt.Errorf("failed to load team: %w", err)
	}

	entry := &models.LobbyEntry{
		TournamentID: tournamentID,
		TeamID:       teamID,
		SlotNumber:   slotNumber,
		TeamName:     team.Name,
		CaptainName:  team.CaptainName,
		Status:       models.LobbyAssigned,
	}

	err = s.txr.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		if _, fillErr := s.tournaments.FillSlot(ctx, exec, tournamentID); fillErr != nil {
			return fillErr
		}
		return s.lobbies.Create(ctx, exec, entry)
	})
	if err != nil {
		return nil, s.translateJoinError(err)
	}
	return entry, nil
}

// RemoveSlot deletes the lobby entry and releases the capacity slot in one
// transaction, so filled_slots never drifts from the entry count.
func (s *SlotService) RemoveSlot(ctx context.Context, lobbyID int, actor models.Actor) error {
	entry, err := s.lobbies.GetByID(ctx, lobbyID)
	if err != nil {
		if errors.Is(err, repositories.ErrLobbyEntryNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load lobby entry: %w", err)
	}

	tournament, err := s.tournaments.GetByID(ctx, nil, entry.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to load tournament: %w", err)
	}

	if !s.actorMayRemove(ctx, actor, entry, tournament) {
		// Чужой тенант не должен узнать, что запись существует.
		if actor.TenantFilter() != nil && !actor.OwnsTenant(tournament.TenantID) && actor.Role != models.RoleUser {
			return ErrNotFound
		}
		return ErrForbiddenOperation
	}

	return s.txr.WithTx(ctx, func(exec repositories.SQLExecutor) error {
		if delErr := s.lobbies.Delete(ctx, exec, lobbyID); delErr != nil {
			if errors.Is(delErr, repositories.ErrLobbyEntryNotFound) {
				return ErrNotFound
			}
			return delErr
		}
		return s.tournaments.ReleaseSlot(ctx, exec, entry.TournamentID)
	})
}

// ListLobby returns the lobby of a tournament ordered by slot number.
func (s *SlotService) ListLobby(ctx context.Context, tournamentID int) ([]*models.LobbyEntry, error) {
	if _, err := s.tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, fmt.Errorf("failed to load tournament: %w", err)
	}
	return s.lobbies.ListByTournament(ctx, tournamentID)
}

// UpdateSlotStatus переводит запись лобби в checked_in / eliminated / qualified.
func (s *SlotService) UpdateSlotStatus(ctx context.Context, lobbyID int, status models.LobbyStatus, actor models.Actor) error {
	switch status {
	case models.LobbyAssigned, models.LobbyCheckedIn, models.LobbyEliminated, models.LobbyQualified:
	default:
		return ErrValidationFailed
	}

	entry, err := s.lobbies.GetByID(ctx, lobbyID)
	if err != nil {
		if errors.Is(err, repositories.ErrLobbyEntryNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load lobby entry: %w", err)
	}
	tournament, err := s.tournaments.GetByID(ctx, nil, entry.TournamentID)
	if err != nil {
		return fmt.Errorf("failed to load tournament: %w", err)
	}
	// Чужой тенант не узнаёт о существовании записи; свой сотрудник без
	// нужного права получает явный отказ.
	if !actor.OwnsTenant(tournament.TenantID) {
		return ErrNotFound
	}
	if !actor.Can(models.CapManageSlots) {
		return ErrForbiddenOperation
	}
	return s.lobbies.UpdateStatus(ctx, lobbyID, status)
}

func (s *SlotService) actorMayActForTeam(actor models.Actor, team *models.Team, tournament *models.Tournament) bool {
	if actor.Role == models.RoleUser {
		return actor.Email == team.CaptainEmail
	}
	// Админ и staff действуют только в своём тенанте.
	return actor.Can(models.CapManageSlots) && actor.OwnsTenant(tournament.TenantID)
}

func (s *SlotService) actorMayRemove(ctx context.Context, actor models.Actor, entry *models.LobbyEntry, tournament *models.Tournament) bool {
	if actor.Can(models.CapManageSlots) && actor.OwnsTenant(tournament.TenantID) {
		return true
	}
	// Капитан может сняться сам, пока турнир не стартовал.
	if actor.Role == models.RoleUser && tournament.Status == models.StatusUpcoming {
		team, err := s.teams.GetByID(ctx, entry.TeamID)
		return err == nil && team.CaptainEmail == actor.Email
	}
	return false
}

// translateJoinError maps storage-level join failures onto the business
// taxonomy. A unique violation that slips past the conditional update still
// surfaces as the same already-joined conflict.
func (s *SlotService) translateJoinError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrTournamentNotOpen):
		return ErrTournamentNotOpen
	case errors.Is(err, repositories.ErrTournamentFull):
		return ErrTournamentFull
	case errors.Is(err, repositories.ErrLobbyTeamConflict):
		return ErrAlreadyJoined
	case errors.Is(err, repositories.ErrLobbySlotTaken):
		return ErrSlotTaken
	case errors.Is(err, repositories.ErrLobbyTeamInvalid):
		return ErrTeamNotFound
	default:
		return err
	}
}
