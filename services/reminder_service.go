package services

import (
	"context"
	"fmt"
	"log/slog"
	"net/mail"
	"time"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/notifications"
	"github.com/usercreator005/ff-india-tournaments-sub000/repositories"
)

// ReminderService планирует одноразовые напоминания и рассылает их фоновым
// тикером. Ошибка доставки одного письма не мешает остальным в пакете.
type ReminderService struct {
	reminders repositories.ReminderRepository
	notifier  notifications.Notifier
	logger    *slog.Logger
	batchSize int
}

func NewReminderService(
	reminders repositories.ReminderRepository,
	notifier notifications.Notifier,
	logger *slog.Logger,
	batchSize int,
) *ReminderService {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &ReminderService{
		reminders: reminders,
		notifier:  notifier,
		logger:    logger,
		batchSize: batchSize,
	}
}

type ScheduleReminderInput struct {
	TournamentID *int
	MatchRoomID  *int
	Recipient    string
	Subject      string
	Message      string
	RemindAt     time.Time
}

// Schedule создаёт напоминание в статусе pending. Время в прошлом не
// ошибка: планировщик подхватит такое напоминание на ближайшем тике.
func (s *ReminderService) Schedule(ctx context.Context, actor models.Actor, tenantID int, in ScheduleReminderInput) (*models.Reminder, error) {
	if !actor.Can(models.CapManageRooms) || !actor.OwnsTenant(tenantID) {
		return nil, ErrForbiddenOperation
	}
	if in.Subject == "" || in.Message == "" || in.RemindAt.IsZero() {
		return nil, ErrValidationFailed
	}
	if _, err := mail.ParseAddress(in.Recipient); err != nil {
		return nil, ErrValidationFailed
	}

	reminder := &models.Reminder{
		TenantID:     tenantID,
		TournamentID: in.TournamentID,
		MatchRoomID:  in.MatchRoomID,
		Recipient:    in.Recipient,
		Subject:      in.Subject,
		Message:      in.Message,
		RemindAt:     in.RemindAt.UTC(),
		Status:       models.ReminderPending,
	}
	if err := s.reminders.Create(ctx, reminder); err != nil {
		return nil, fmt.Errorf("failed to schedule reminder: %w", err)
	}
	return reminder, nil
}

// ProcessDueReminders обрабатывает один пакет просроченных напоминаний и
// возвращает количество отправленных. Статус меняется на sent либо failed;
// оба терминальны, автоматических повторов нет.
func (s *ReminderService) ProcessDueReminders(ctx context.Context, now time.Time) (int, error) {
	due, err := s.reminders.ListDue(ctx, now, s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("failed to list due reminders: %w", err)
	}

	sent := 0
	for _, reminder := range due {
		if ctx.Err() != nil {
			return sent, ctx.Err()
		}

		if sendErr := s.notifier.Send(ctx, reminder.Recipient, reminder.Subject, reminder.Message); sendErr != nil {
			s.logger.Warn("reminder delivery failed",
				slog.Int("reminder_id", reminder.ID),
				slog.Int("tenant_id", reminder.TenantID),
				slog.Any("error", sendErr))
			if markErr := s.reminders.MarkStatus(ctx, reminder.ID, models.ReminderFailed); markErr != nil {
				s.logger.Error("failed to mark reminder failed",
					slog.Int("reminder_id", reminder.ID), slog.Any("error", markErr))
			}
			continue
		}

		if markErr := s.reminders.MarkStatus(ctx, reminder.ID, models.ReminderSent); markErr != nil {
			// Письмо ушло, а статус не записался: на следующем тике будет
			// повторная отправка. Дубликат напоминания допустим.
			s.logger.Error("failed to mark reminder sent",
				slog.Int("reminder_id", reminder.ID), slog.Any("error", markErr))
			continue
		}
		sent++
	}
	return sent, nil
}

// ListByTenant возвращает напоминания тенанта, ближайшие первыми.
func (s *ReminderService) ListByTenant(ctx context.Context, actor models.Actor, tenantID int) ([]*models.Reminder, error) {
	if !actor.OwnsTenant(tenantID) {
		return nil, ErrNotFound
	}
	return s.reminders.ListByTenant(ctx, tenantID)
}
