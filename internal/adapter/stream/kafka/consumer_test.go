package kafka

import (
	"context"
	"testing"

	"vault-ledger/internal/core/domain"
	"vault-ledger/internal/core/ports"
	"vault-ledger/internal/core/ports/mocks"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.uber.org/mock/gomock"
)

func newTestConsumer(t *testing.T) (*CreditConsumer, *mocks.MockVaultService, *gomock.Controller) {
	t.Helper()
	ctrl := gomock.NewController(t)
	vaultSvc := mocks.NewMockVaultService(ctrl)
	c := &CreditConsumer{vaultSvc: vaultSvc, log: zerolog.Nop()}
	return c, vaultSvc, ctrl
}

func TestCreditConsumer_ValidAccountDeposits(t *testing.T) {
	c, vaultSvc, ctrl := newTestConsumer(t)
	defer ctrl.Finish()

	ctx := context.Background()
	account := uuid.New()

	vaultSvc.EXPECT().
		Deposit(ctx, ports.DepositRequest{Account: account, Amount: 75}).
		Return(&domain.Event{Type: domain.EventDeposited}, nil)

	c.handleMessage(ctx, []byte(`{"account":"`+account.String()+`","amount":75}`))
}

func TestCreditConsumer_UnattributableAccount(t *testing.T) {
	c, vaultSvc, ctrl := newTestConsumer(t)
	defer ctrl.Finish()

	ctx := context.Background()
	vaultSvc.EXPECT().CreditUnattributed(ctx, uint64(30)).Return(nil)

	c.handleMessage(ctx, []byte(`{"account":"not-a-uuid","amount":30}`))
}

func TestCreditConsumer_RejectedDepositHeldForRescue(t *testing.T) {
	c, vaultSvc, ctrl := newTestConsumer(t)
	defer ctrl.Finish()

	ctx := context.Background()
	account := uuid.New()

	vaultSvc.EXPECT().
		Deposit(ctx, ports.DepositRequest{Account: account, Amount: 500}).
		Return(nil, &domain.BankCapExceededError{Remaining: 100, Attempted: 500})
	vaultSvc.EXPECT().CreditUnattributed(ctx, uint64(500)).Return(nil)

	c.handleMessage(ctx, []byte(`{"account":"`+account.String()+`","amount":500}`))
}

func TestCreditConsumer_MalformedAndZeroAmountDropped(t *testing.T) {
	c, _, ctrl := newTestConsumer(t)
	defer ctrl.Finish()

	ctx := context.Background()

	// No expectations: both messages must be dropped without touching the vault.
	c.handleMessage(ctx, []byte(`{not json`))
	c.handleMessage(ctx, []byte(`{"account":"`+uuid.New().String()+`","amount":0}`))
}
