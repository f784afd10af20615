package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/repositories"
)

// TournamentService — CRUD турниров и управление их жизненным циклом.
// Вместимость (slots/filled_slots) сюда не относится: её меняет только
// SlotService через условные обновления.
type TournamentService struct {
	tournaments repositories.TournamentRepository
	scoring     repositories.ScoringRepository
	lobbies     repositories.LobbyRepository
}

func NewTournamentService(
	tournaments repositories.TournamentRepository,
	scoring repositories.ScoringRepository,
	lobbies repositories.LobbyRepository,
) *TournamentService {
	return &TournamentService{tournaments: tournaments, scoring: scoring, lobbies: lobbies}
}

type CreateTournamentInput struct {
	Name        string
	Game        string
	Description *string
	Slots       int
	PrizePool   decimal.Decimal
	EntryFee    decimal.Decimal
	EntryTerms  *string
	StartAt     time.Time
}

func (in CreateTournamentInput) validate() error {
	if in.Name == "" || in.Game == "" {
		return ErrValidationFailed
	}
	if in.Slots < 1 {
		return ErrValidationFailed
	}
	if in.PrizePool.Sign() < 0 || in.EntryFee.Sign() < 0 {
		return ErrValidationFailed
	}
	if in.StartAt.IsZero() {
		return ErrValidationFailed
	}
	return nil
}

// Create создаёт турнир в статусе upcoming с нулём занятых слотов.
func (s *TournamentService) Create(ctx context.Context, actor models.Actor, tenantID int, in CreateTournamentInput) (*models.Tournament, error) {
	if !actor.OwnsTenant(tenantID) || actor.Role == models.RoleUser {
		return nil, ErrForbiddenOperation
	}
	if err := in.validate(); err != nil {
		return nil, err
	}

	t := &models.Tournament{
		TenantID:    tenantID,
		Name:        in.Name,
		Game:        in.Game,
		Description: in.Description,
		Slots:       in.Slots,
		Status:      models.StatusUpcoming,
		PrizePool:   in.PrizePool,
		EntryFee:    in.EntryFee,
		EntryTerms:  in.EntryTerms,
		StartAt:     in.StartAt,
	}
	if err := s.tournaments.Create(ctx, t); err != nil {
		if errors.Is(err, repositories.ErrTournamentNameConflict) {
			return nil, ErrValidationFailed
		}
		return nil, fmt.Errorf("failed to create tournament: %w", err)
	}
	return t, nil
}

func (s *TournamentService) GetByID(ctx context.Context, actor models.Actor, id int) (*models.Tournament, error) {
	t, err := s.tournaments.GetByID(ctx, actor.TenantFilter(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	return t, nil
}

func (s *TournamentService) List(ctx context.Context, actor models.Actor, status *models.TournamentStatus, limit, offset int) ([]models.Tournament, error) {
	return s.tournaments.List(ctx, repositories.ListTournamentsFilter{
		TenantID: actor.TenantFilter(),
		Status:   status,
		Limit:    limit,
		Offset:   offset,
	})
}

type UpdateTournamentInput struct {
	Name        *string
	Game        *string
	Description *string
	PrizePool   *decimal.Decimal
	EntryFee    *decimal.Decimal
	EntryTerms  *string
	StartAt     *time.Time
}

// Update меняет описательные поля турнира. Slots, filled_slots и status
// через Update не меняются.
func (s *TournamentService) Update(ctx context.Context, actor models.Actor, id int, in UpdateTournamentInput) (*models.Tournament, error) {
	if actor.Role == models.RoleUser {
		return nil, ErrForbiddenOperation
	}

	t, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if *in.Name == "" {
			return nil, ErrValidationFailed
		}
		t.Name = *in.Name
	}
	if in.Game != nil {
		if *in.Game == "" {
			return nil, ErrValidationFailed
		}
		t.Game = *in.Game
	}
	if in.Description != nil {
		t.Description = in.Description
	}
	if in.PrizePool != nil {
		if in.PrizePool.Sign() < 0 {
			return nil, ErrValidationFailed
		}
		t.PrizePool = *in.PrizePool
	}
	if in.EntryFee != nil {
		if in.EntryFee.Sign() < 0 {
			return nil, ErrValidationFailed
		}
		t.EntryFee = *in.EntryFee
	}
	if in.EntryTerms != nil {
		t.EntryTerms = in.EntryTerms
	}
	if in.StartAt != nil {
		t.StartAt = *in.StartAt
	}

	if err := s.tournaments.Update(ctx, t); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return nil, ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentNameConflict):
			return nil, ErrValidationFailed
		default:
			return nil, fmt.Errorf("failed to update tournament: %w", err)
		}
	}
	return t, nil
}

// ChangeStatus переводит турнир по жизненному циклу
// upcoming -> ongoing -> past. Пропуск ступеней и движение назад запрещены.
func (s *TournamentService) ChangeStatus(ctx context.Context, actor models.Actor, id int, next models.TournamentStatus) (*models.Tournament, error) {
	if actor.Role == models.RoleUser {
		return nil, ErrForbiddenOperation
	}

	t, err := s.GetByID(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !isValidStatusTransition(t.Status, next) {
		return nil, ErrInvalidStatusChange
	}

	if err := s.tournaments.UpdateStatus(ctx, nil, id, next); err != nil {
		if errors.Is(err, repositories.ErrTournamentNotFound) {
			return nil, ErrTournamentNotFound
		}
		return nil, err
	}
	t.Status = next
	return t, nil
}

// Delete удаляет турнир. Турниры с занятыми слотами или созданными
// комнатами удалить нельзя.
func (s *TournamentService) Delete(ctx context.Context, actor models.Actor, id int) error {
	if actor.Role == models.RoleUser {
		return ErrForbiddenOperation
	}

	// Сначала проверка видимости для тенанта актора.
	if _, err := s.GetByID(ctx, actor, id); err != nil {
		return err
	}

	// Явная проверка занятости раньше внешнего ключа: турнир с командами
	// в лобби не удаляется.
	occupied, err := s.lobbies.CountByTournament(ctx, nil, id)
	if err != nil {
		return fmt.Errorf("failed to count lobby entries: %w", err)
	}
	if occupied > 0 {
		return ErrValidationFailed
	}

	if err := s.tournaments.Delete(ctx, id); err != nil {
		switch {
		case errors.Is(err, repositories.ErrTournamentNotFound):
			return ErrTournamentNotFound
		case errors.Is(err, repositories.ErrTournamentInUse):
			return ErrValidationFailed
		default:
			return err
		}
	}
	return nil
}

// SetScoring задаёт (или заменяет) конфигурацию начисления очков турнира.
func (s *TournamentService) SetScoring(ctx context.Context, actor models.Actor, tournamentID, killPoints int, placementPoints map[int]int) (*models.TournamentScoring, error) {
	if !actor.Can(models.CapManageResults) {
		return nil, ErrForbiddenOperation
	}
	if killPoints < 0 || len(placementPoints) == 0 {
		return nil, ErrValidationFailed
	}
	for position, points := range placementPoints {
		if position < 1 || points < 0 {
			return nil, ErrValidationFailed
		}
	}

	t, err := s.GetByID(ctx, actor, tournamentID)
	if err != nil {
		return nil, err
	}

	scoring := &models.TournamentScoring{
		TenantID:        t.TenantID,
		TournamentID:    t.ID,
		KillPoints:      killPoints,
		PlacementPoints: placementPoints,
	}
	if err := s.scoring.Upsert(ctx, scoring); err != nil {
		return nil, fmt.Errorf("failed to set scoring config: %w", err)
	}
	return scoring, nil
}

// GetScoring возвращает конфигурацию очков турнира, nil — если её нет
// (очки тогда вводятся вручную вместе с результатом).
func (s *TournamentService) GetScoring(ctx context.Context, actor models.Actor, tournamentID int) (*models.TournamentScoring, error) {
	if _, err := s.GetByID(ctx, actor, tournamentID); err != nil {
		return nil, err
	}
	scoring, err := s.scoring.GetByTournament(ctx, tournamentID)
	if err != nil {
		if errors.Is(err, repositories.ErrScoringNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return scoring, nil
}
