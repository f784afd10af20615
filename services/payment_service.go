package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
	"github.com/usercreator005/ff-india-tournaments-sub000/repositories"
	"github.com/usercreator005/ff-india-tournaments-sub000/storage"
)

// Срок жизни presigned-ссылок на скриншоты чеков.
const proofURLExpiry = 15 * time.Minute

var allowedProofExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

// PaymentService обрабатывает чеки об оплате взносов: команда загружает
// скриншот, администратор тенанта подтверждает или отклоняет. Подтверждение
// ровно один раз зачисляет сумму на кошелёк тенанта.
type PaymentService struct {
	proofs   repositories.PaymentProofRepository
	uploader storage.FileUploader
	wallet   *WalletService
	logger   *slog.Logger
}

func NewPaymentService(
	proofs repositories.PaymentProofRepository,
	uploader storage.FileUploader,
	wallet *WalletService,
	logger *slog.Logger,
) *PaymentService {
	return &PaymentService{proofs: proofs, uploader: uploader, wallet: wallet, logger: logger}
}

type SubmitProofInput struct {
	TenantID     int
	TournamentID int
	TeamID       int
	Amount       decimal.Decimal
	FileName     string
	ContentType  string
	File         io.Reader
}

// SubmitProof сохраняет скриншот в объектное хранилище и создаёт заявку
// в статусе pending.
func (s *PaymentService) SubmitProof(ctx context.Context, in SubmitProofInput) (*models.PaymentProof, error) {
	if in.TenantID <= 0 || in.TournamentID <= 0 || in.TeamID <= 0 || in.File == nil {
		return nil, ErrValidationFailed
	}
	if in.Amount.Sign() <= 0 {
		return nil, ErrAmountInvalid
	}
	ext := strings.ToLower(path.Ext(in.FileName))
	if !allowedProofExtensions[ext] {
		return nil, ErrValidationFailed
	}

	key := fmt.Sprintf("payment-proofs/%d/%d/%d-%d%s",
		in.TenantID, in.TournamentID, in.TeamID, time.Now().UnixNano(), ext)

	uploaded, err := s.uploader.Upload(ctx, key, in.ContentType, in.File)
	if err != nil {
		return nil, fmt.Errorf("failed to store proof screenshot: %w", err)
	}

	proof := &models.PaymentProof{
		TenantID:      in.TenantID,
		TournamentID:  in.TournamentID,
		TeamID:        in.TeamID,
		Amount:        in.Amount,
		ScreenshotKey: &uploaded.Key,
		Status:        models.ProofPending,
	}
	if err := s.proofs.Create(ctx, proof); err != nil {
		// Осиротевший объект в бакете хуже, чем лишний запрос на удаление.
		if delErr := s.uploader.Delete(ctx, uploaded.Key); delErr != nil {
			s.logger.Warn("failed to delete orphaned proof screenshot",
				slog.String("key", uploaded.Key), slog.Any("error", delErr))
		}
		return nil, err
	}
	return proof, nil
}

// Approve переводит заявку из pending в approved и зачисляет сумму на
// кошелёк тенанта. Повторное подтверждение получает ErrAlreadyReviewed,
// поэтому двойного зачисления не бывает.
func (s *PaymentService) Approve(ctx context.Context, actor models.Actor, proofID int) (*models.PaymentProof, error) {
	if !actor.Can(models.CapManagePayments) {
		return nil, ErrForbiddenOperation
	}

	proof, err := s.proofs.GetByID(ctx, actor.TenantFilter(), proofID)
	if err != nil {
		return nil, translateProofError(err)
	}

	if err := s.proofs.TransitionStatus(ctx, actor.TenantFilter(), proofID, models.ProofApproved); err != nil {
		return nil, translateProofError(err)
	}

	note := fmt.Sprintf("entry fee, tournament %d, team %d", proof.TournamentID, proof.TeamID)
	if _, err := s.wallet.Credit(ctx, proof.TenantID, proof.Amount, models.TxnEntryFeeCredit, note, &proof.ID); err != nil {
		// Заявка уже approved, а зачисления не случилось. Откатить статус
		// нельзя (переход однократный), поэтому фиксируем расхождение в
		// логе для ручного разбирательства.
		s.logger.Error("proof approved but wallet credit failed",
			slog.Int("proof_id", proof.ID),
			slog.Int("tenant_id", proof.TenantID),
			slog.Any("error", err))
		return nil, fmt.Errorf("proof approved but wallet credit failed: %w", err)
	}

	return s.proofs.GetByID(ctx, actor.TenantFilter(), proofID)
}

// Reject отклоняет заявку. Кошелёк не затрагивается.
func (s *PaymentService) Reject(ctx context.Context, actor models.Actor, proofID int) (*models.PaymentProof, error) {
	if !actor.Can(models.CapManagePayments) {
		return nil, ErrForbiddenOperation
	}
	if err := s.proofs.TransitionStatus(ctx, actor.TenantFilter(), proofID, models.ProofRejected); err != nil {
		return nil, translateProofError(err)
	}
	return s.proofs.GetByID(ctx, actor.TenantFilter(), proofID)
}

// GetProof возвращает заявку со свежей presigned-ссылкой на скриншот.
func (s *PaymentService) GetProof(ctx context.Context, actor models.Actor, proofID int) (*models.PaymentProof, error) {
	proof, err := s.proofs.GetByID(ctx, actor.TenantFilter(), proofID)
	if err != nil {
		return nil, translateProofError(err)
	}
	s.attachScreenshotURL(ctx, proof)
	return proof, nil
}

// ListProofs возвращает заявки тенанта, при status != nil — только в
// указанном статусе.
func (s *PaymentService) ListProofs(ctx context.Context, actor models.Actor, tenantID int, status *models.PaymentProofStatus) ([]*models.PaymentProof, error) {
	if !actor.OwnsTenant(tenantID) {
		return nil, ErrNotFound
	}
	proofs, err := s.proofs.ListByTenant(ctx, tenantID, status)
	if err != nil {
		return nil, err
	}
	for _, p := range proofs {
		s.attachScreenshotURL(ctx, p)
	}
	return proofs, nil
}

func (s *PaymentService) attachScreenshotURL(ctx context.Context, proof *models.PaymentProof) {
	if proof.ScreenshotKey == nil || *proof.ScreenshotKey == "" {
		return
	}
	url, err := s.uploader.PresignGet(ctx, *proof.ScreenshotKey, proofURLExpiry)
	if err != nil {
		s.logger.Warn("failed to presign proof screenshot",
			slog.Int("proof_id", proof.ID), slog.Any("error", err))
		return
	}
	proof.ScreenshotURL = &url
}

func translateProofError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPaymentProofNotFound):
		return ErrProofNotFound
	case errors.Is(err, repositories.ErrPaymentProofReviewed):
		return ErrAlreadyReviewed
	default:
		return err
	}
}
