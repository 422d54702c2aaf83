package integration

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vault-ledger/internal/core/domain"
	"vault-ledger/internal/core/ports"
	"vault-ledger/internal/service"
	"vault-ledger/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newConcurrencyStack(t *testing.T, transferer domain.Transferer) (*service.VaultServiceImpl, *domain.Ledger, uuid.UUID) {
	t.Helper()
	owner := uuid.New()
	ledger, err := domain.NewLedger(owner, domain.Config{
		BankCap:            1_000_000,
		PerTxWithdrawLimit: 1_000,
	}, transferer)
	require.NoError(t, err)

	svc := service.NewVaultService(ledger, newInMemoryEntryRepo(), &recordingPublisher{}, logger.New("error", false))
	return svc, ledger, owner
}

func TestConcurrency_ParallelDepositsConserveAggregate(t *testing.T) {
	svc, ledger, _ := newConcurrencyStack(t, &recordingTransferer{})
	ctx := context.Background()

	const workers = 16
	const depositsPerWorker = 50
	const amount = uint64(7)

	accounts := make([]uuid.UUID, workers)
	for i := range accounts {
		accounts[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(account uuid.UUID) {
			defer wg.Done()
			for j := 0; j < depositsPerWorker; j++ {
				_, err := svc.Deposit(ctx, ports.DepositRequest{Account: account, Amount: amount})
				assert.NoError(t, err)
			}
		}(accounts[i])
	}
	wg.Wait()

	want := uint64(workers * depositsPerWorker * amount)
	assert.Equal(t, want, ledger.AggregateTotal())
	assert.Equal(t, want, ledger.HeldFunds())
	assert.Equal(t, uint64(workers*depositsPerWorker), ledger.GlobalDepositCount())

	var sum uint64
	for _, account := range accounts {
		sum += ledger.Balance(account)
	}
	assert.Equal(t, want, sum, "per-account balances must sum to the aggregate")
}

func TestConcurrency_ConcurrentWithdrawalsNeverOverdraw(t *testing.T) {
	// A slow transferer widens the window in which a second withdrawal could
	// sneak in; the in-progress marker must reject it instead.
	slow := &slowTransferer{delay: 2 * time.Millisecond}
	svc, ledger, _ := newConcurrencyStack(t, slow)
	ctx := context.Background()

	account := uuid.New()
	_, err := svc.Deposit(ctx, ports.DepositRequest{Account: account, Amount: 1000})
	require.NoError(t, err)

	const attempts = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	var succeeded, rejected int

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Withdraw(ctx, ports.WithdrawRequest{Account: account, Amount: 100})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, domain.ErrReentrancy):
				rejected++
			default:
				t.Errorf("unexpected withdrawal error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, attempts, succeeded+rejected)
	assert.Greater(t, rejected, 0, "overlapping withdrawals must be rejected")

	// Whatever succeeded is exactly what left the vault.
	assert.Equal(t, uint64(1000-succeeded*100), ledger.Balance(account))
	assert.Equal(t, uint64(succeeded), ledger.GlobalWithdrawCount())
}

func TestConcurrency_CallbackCannotReenter(t *testing.T) {
	// The transferer calls back into the ledger the way a malicious
	// destination would; every nested call must fail with the
	// operation-in-progress error and leave state untouched.
	reentrant := &reentrantTransferer{}
	svc, ledger, owner := newConcurrencyStack(t, reentrant)
	reentrant.ledger = ledger
	reentrant.owner = owner
	ctx := context.Background()

	account := uuid.New()
	_, err := svc.Deposit(ctx, ports.DepositRequest{Account: account, Amount: 500})
	require.NoError(t, err)

	_, err = svc.Withdraw(ctx, ports.WithdrawRequest{Account: account, Amount: 100})
	require.NoError(t, err, "outer withdrawal itself must succeed")

	require.Len(t, reentrant.nestedErrs, 2)
	for _, nested := range reentrant.nestedErrs {
		assert.ErrorIs(t, nested, domain.ErrReentrancy)
	}
	assert.Equal(t, uint64(400), ledger.Balance(account))
}

// slowTransferer succeeds after a fixed delay.
type slowTransferer struct {
	delay time.Duration
}

func (s *slowTransferer) Transfer(ctx context.Context, destination uuid.UUID, amount uint64) error {
	time.Sleep(s.delay)
	return nil
}

// reentrantTransferer attempts nested ledger calls from inside the transfer.
type reentrantTransferer struct {
	ledger     *domain.Ledger
	owner      uuid.UUID
	nestedErrs []error
}

func (r *reentrantTransferer) Transfer(ctx context.Context, destination uuid.UUID, amount uint64) error {
	_, err := r.ledger.Withdraw(ctx, destination, 1)
	r.nestedErrs = append(r.nestedErrs, err)
	_, err = r.ledger.Rescue(ctx, r.owner, destination, 1)
	r.nestedErrs = append(r.nestedErrs, err)
	return nil
}
