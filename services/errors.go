package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (или невидим для тенанта актора — намеренно не
	// различается, чтобы не подтверждать существование чужих данных).
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed    = errors.New("validation failed")
	ErrNoStageData         = errors.New("no locked results found for the given matches")
	ErrInvalidQualifyCount = errors.New("qualify count must be at least 1")
	ErrAmountInvalid       = errors.New("amount must be positive")
	ErrInvalidSlotNumber   = errors.New("slot number is out of range")
	ErrInvalidStatusChange = errors.New("invalid tournament status transition")

	// Ошибки конфликтов
	ErrTournamentNotOpen = errors.New("tournament is not open for registration")
	ErrTournamentFull    = errors.New("tournament is full")
	ErrAlreadyJoined     = errors.New("team already occupies a slot in this tournament")
	ErrSlotTaken         = errors.New("slot number already taken")
	ErrResultLocked      = errors.New("match results are locked")
	ErrAlreadyPublished  = errors.New("match room is already published")
	ErrAlreadyReviewed   = errors.New("payment proof already reviewed")
	ErrRoomNotPublished  = errors.New("match room is not published yet")

	// Кошелёк
	ErrInsufficientFunds = errors.New("insufficient wallet balance")

	// Авторизация
	ErrForbiddenOperation = errors.New("operation not allowed for the current actor")

	// Ошибки, специфичные для сущностей (дают больше контекста, чем ErrNotFound)
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrTeamNotFound       = errors.New("team not found")
	ErrMatchRoomNotFound  = errors.New("match room not found")
	ErrResultNotFound     = errors.New("result not found")
	ErrLobbyEntryNotFound = errors.New("lobby entry not found")
	ErrProofNotFound      = errors.New("payment proof not found")
)
