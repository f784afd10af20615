package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/usercreator005/ff-india-tournaments-sub000/models"
)

type paymentFixture struct {
	svc      *PaymentService
	proofs   *fakePaymentRepo
	uploader *fakeUploader
	wallet   *WalletService
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		proofs:   newFakePaymentRepo(),
		uploader: newFakeUploader(),
		wallet:   NewWalletService(&fakeTxRunner{}, newFakeWalletRepo()),
	}
	f.svc = NewPaymentService(f.proofs, f.uploader, f.wallet, discardLogger())
	return f
}

func (f *paymentFixture) submit(t *testing.T, tenantID int, amount int64) *models.PaymentProof {
	t.Helper()
	proof, err := f.svc.SubmitProof(context.Background(), SubmitProofInput{
		TenantID:     tenantID,
		TournamentID: 10,
		TeamID:       3,
		Amount:       decimal.NewFromInt(amount),
		FileName:     "receipt.png",
		ContentType:  "image/png",
		File:         strings.NewReader("png bytes"),
	})
	assert.Nil(t, err)
	return proof
}

func TestSubmitProof_StoresScreenshotAndPendingProof(t *testing.T) {
	f := newPaymentFixture()

	proof := f.submit(t, 1, 250)

	assert.Equal(t, models.ProofPending, proof.Status)
	assert.NotNil(t, proof.ScreenshotKey)
	assert.Contains(t, *proof.ScreenshotKey, "payment-proofs/1/10/")
	assert.Len(t, f.uploader.objects, 1)
}

func TestSubmitProof_RejectsBadExtension(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.SubmitProof(context.Background(), SubmitProofInput{
		TenantID:     1,
		TournamentID: 10,
		TeamID:       3,
		Amount:       decimal.NewFromInt(250),
		FileName:     "receipt.pdf",
		ContentType:  "application/pdf",
		File:         strings.NewReader("pdf bytes"),
	})
	assert.True(t, errors.Is(err, ErrValidationFailed))
	assert.Empty(t, f.uploader.objects)
}

func TestSubmitProof_RejectsNonPositiveAmount(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.svc.SubmitProof(context.Background(), SubmitProofInput{
		TenantID:     1,
		TournamentID: 10,
		TeamID:       3,
		Amount:       decimal.Zero,
		FileName:     "receipt.png",
		ContentType:  "image/png",
		File:         strings.NewReader("png bytes"),
	})
	assert.True(t, errors.Is(err, ErrAmountInvalid))
}

func TestApprove_CreditsWalletExactlyOnce(t *testing.T) {
	f := newPaymentFixture()
	proof := f.submit(t, 1, 250)
	admin := adminActor(1)

	approved, err := f.svc.Approve(context.Background(), admin, proof.ID)
	assert.Nil(t, err)
	assert.Equal(t, models.ProofApproved, approved.Status)

	wallet, err := f.wallet.Balance(context.Background(), 1)
	assert.Nil(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(250)))

	txns, err := f.wallet.Transactions(context.Background(), 1, 10, 0)
	assert.Nil(t, err)
	assert.Len(t, txns, 1)
	assert.Equal(t, models.TxnEntryFeeCredit, txns[0].Type)
	assert.NotNil(t, txns[0].ReferenceID)
	assert.Equal(t, proof.ID, *txns[0].ReferenceID)

	// Повторное подтверждение не проходит и не дублирует зачисление.
	_, err = f.svc.Approve(context.Background(), admin, proof.ID)
	assert.True(t, errors.Is(err, ErrAlreadyReviewed))

	wallet, err = f.wallet.Balance(context.Background(), 1)
	assert.Nil(t, err)
	assert.True(t, wallet.Balance.Equal(decimal.NewFromInt(250)))
}

func TestReject_DoesNotTouchWallet(t *testing.T) {
	f := newPaymentFixture()
	proof := f.submit(t, 1, 250)

	rejected, err := f.svc.Reject(context.Background(), adminActor(1), proof.ID)
	assert.Nil(t, err)
	assert.Equal(t, models.ProofRejected, rejected.Status)

	wallet, err := f.wallet.Balance(context.Background(), 1)
	assert.Nil(t, err)
	assert.True(t, wallet.Balance.IsZero())

	// После отклонения подтвердить уже нельзя.
	_, err = f.svc.Approve(context.Background(), adminActor(1), proof.ID)
	assert.True(t, errors.Is(err, ErrAlreadyReviewed))
}

func TestApprove_RequiresPaymentCapability(t *testing.T) {
	f := newPaymentFixture()
	proof := f.submit(t, 1, 250)

	_, err := f.svc.Approve(context.Background(), staffActor(1, models.CapManageRooms), proof.ID)
	assert.True(t, errors.Is(err, ErrForbiddenOperation))
}

func TestApprove_ForeignTenantReadsAsNotFound(t *testing.T) {
	f := newPaymentFixture()
	proof := f.submit(t, 1, 250)

	_, err := f.svc.Approve(context.Background(), adminActor(2), proof.ID)
	assert.True(t, errors.Is(err, ErrProofNotFound))
}

func TestGetProof_AttachesPresignedURL(t *testing.T) {
	f := newPaymentFixture()
	proof := f.submit(t, 1, 250)

	loaded, err := f.svc.GetProof(context.Background(), adminActor(1), proof.ID)
	assert.Nil(t, err)
	assert.NotNil(t, loaded.ScreenshotURL)
	assert.Contains(t, *loaded.ScreenshotURL, *proof.ScreenshotKey)
}

func TestListProofs_FiltersByStatus(t *testing.T) {
	f := newPaymentFixture()
	first := f.submit(t, 1, 250)
	f.submit(t, 1, 300)

	_, err := f.svc.Approve(context.Background(), adminActor(1), first.ID)
	assert.Nil(t, err)

	pending := models.ProofPending
	proofs, err := f.svc.ListProofs(context.Background(), adminActor(1), 1, &pending)
	assert.Nil(t, err)
	assert.Len(t, proofs, 1)
	assert.NotEqual(t, first.ID, proofs[0].ID)

	// Чужой тенант списка не видит.
	_, err = f.svc.ListProofs(context.Background(), adminActor(2), 1, nil)
	assert.True(t, errors.Is(err, ErrNotFound))
}
