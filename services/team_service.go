package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/repositories"
)

// TeamService — регистрация и просмотр команд. Команды глобальны (не
// принадлежат тенанту): одна команда может играть в турнирах разных
// организаторов.
type TeamService struct {
	teams repositories.TeamRepository
}

func NewTeamService(teams repositories.TeamRepository) *TeamService {
	return &TeamService{teams: teams}
}

type CreateTeamInput struct {
	Name         string
	CaptainName  string
	CaptainEmail string
	LogoKey      *string
}

func (s *TeamService) Create(ctx context.Context, in CreateTeamInput) (*models.Team, error) {
	if in.Name == "" || in.CaptainName == "" {
		return nil, ErrValidationFailed
	}
	if _, err := mail.ParseAddress(in.CaptainEmail); err != nil {
		return nil, ErrValidationFailed
	}

	team := &models.Team{
		Name:         in.Name,
		CaptainName:  in.CaptainName,
		CaptainEmail: in.CaptainEmail,
		LogoKey:      in.LogoKey,
	}
	if err := s.teams.Create(ctx, team); err != nil {
		if errors.Is(err, repositories.ErrTeamNameConflict) {
			return nil, ErrValidationFailed
		}
		return nil, fmt.Errorf("failed to create team: %w", err)
	}
	return team, nil
}

func (s *TeamService) GetByID(ctx context.Context, id int) (*models.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrTeamNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, err
	}
	return team, nil
}

func (s *TeamService) List(ctx context.Context, limit, offset int) ([]models.Team, error) {
	return s.teams.List(ctx, limit, offset)
}
