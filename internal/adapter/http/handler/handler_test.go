package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"vault-ledger/internal/core/domain"
	"vault-ledger/internal/core/ports"
	"vault-ledger/internal/core/ports/mocks"
	"vault-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type routerTestDeps struct {
	router   *gin.Engine
	authSvc  *mocks.MockAuthService
	vaultSvc *mocks.MockVaultService
	tokenSvc *mocks.MockTokenService
	ctrl     *gomock.Controller
}

func setupTestRouter(t *testing.T) *routerTestDeps {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	d := &routerTestDeps{
		authSvc:  mocks.NewMockAuthService(ctrl),
		vaultSvc: mocks.NewMockVaultService(ctrl),
		tokenSvc: mocks.NewMockTokenService(ctrl),
		ctrl:     ctrl,
	}
	d.router = SetupRouter(RouterDeps{
		AuthSvc:  d.authSvc,
		VaultSvc: d.vaultSvc,
		TokenSvc: d.tokenSvc,
		Logger:   zerolog.Nop(),
	})
	return d
}

func (d *routerTestDeps) authorize(accountID uuid.UUID, isOwner bool) {
	d.tokenSvc.EXPECT().Validate("valid-token").Return(&ports.TokenClaims{
		AccountID: accountID,
		IsOwner:   isOwner,
	}, nil)
}

func doJSON(router *gin.Engine, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRegisterEndpoint(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	accountID := uuid.New()
	d.authSvc.EXPECT().
		Register(gomock.Any(), ports.RegisterRequest{Username: "alice", Password: "password123"}).
		Return(&ports.RegisterResult{AccountID: accountID}, nil)

	w := doJSON(d.router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice",
		"password": "password123",
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), accountID.String())
}

func TestRegisterEndpoint_ValidationFailure(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	// Password too short; service must not be called.
	w := doJSON(d.router, http.MethodPost, "/api/v1/auth/register", "", gin.H{
		"username": "alice",
		"password": "short",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "VLT_000")
}

func TestLoginEndpoint(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	d.authSvc.EXPECT().
		Login(gomock.Any(), "alice", "password123").
		Return("jwt-token", time.Now().Add(time.Hour), nil)

	w := doJSON(d.router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "alice",
		"password": "password123",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jwt-token")
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	d.authSvc.EXPECT().
		Login(gomock.Any(), "alice", "wrong").
		Return("", time.Time{}, apperror.ErrInvalidCredentials())

	w := doJSON(d.router, http.MethodPost, "/api/v1/auth/login", "", gin.H{
		"username": "alice",
		"password": "wrong",
	})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_001")
}

func TestDepositEndpoint(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	caller := uuid.New()
	d.authorize(caller, false)
	d.vaultSvc.EXPECT().
		Deposit(gomock.Any(), ports.DepositRequest{Account: caller, Amount: 100}).
		Return(&domain.Event{
			Type:       domain.EventDeposited,
			Account:    caller,
			Amount:     100,
			NewBalance: 100,
			Timestamp:  time.Now().UTC(),
		}, nil)

	w := doJSON(d.router, http.MethodPost, "/api/v1/vault/deposit", "valid-token", gin.H{"amount": 100})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "DEPOSITED")
}

func TestDepositEndpoint_Unauthenticated(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	w := doJSON(d.router, http.MethodPost, "/api/v1/vault/deposit", "", gin.H{"amount": 100})

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_003")
}

func TestDepositEndpoint_BankCapExceeded(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	caller := uuid.New()
	d.authorize(caller, false)
	d.vaultSvc.EXPECT().
		Deposit(gomock.Any(), gomock.Any()).
		Return(nil, &domain.BankCapExceededError{Remaining: 5, Attempted: 6})

	w := doJSON(d.router, http.MethodPost, "/api/v1/vault/deposit", "valid-token", gin.H{"amount": 6})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "VLT_002")
	assert.Contains(t, w.Body.String(), `"remaining_capacity":5`)
}

func TestWithdrawEndpoint(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	caller := uuid.New()
	d.authorize(caller, false)
	d.vaultSvc.EXPECT().
		Withdraw(gomock.Any(), ports.WithdrawRequest{Account: caller, Amount: 40}).
		Return(&domain.Event{
			Type:       domain.EventWithdrawn,
			Account:    caller,
			Amount:     40,
			NewBalance: 60,
			Timestamp:  time.Now().UTC(),
		}, nil)

	w := doJSON(d.router, http.MethodPost, "/api/v1/vault/withdraw", "valid-token", gin.H{"amount": 40})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "WITHDRAWN")
}

func TestWithdrawEndpoint_ReentrancyConflict(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	caller := uuid.New()
	d.authorize(caller, false)
	d.vaultSvc.EXPECT().
		Withdraw(gomock.Any(), gomock.Any()).
		Return(nil, domain.ErrReentrancy)

	w := doJSON(d.router, http.MethodPost, "/api/v1/vault/withdraw", "valid-token", gin.H{"amount": 40})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "VLT_006")
}

func TestBalanceEndpoint(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	caller := uuid.New()
	d.authorize(caller, false)
	d.vaultSvc.EXPECT().Balance(caller).Return(uint64(123))

	w := doJSON(d.router, http.MethodGet, "/api/v1/vault/balance", "valid-token", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":123`)
}

func TestBalanceOfEndpoint_OwnerReadsAnyAccount(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	owner := uuid.New()
	other := uuid.New()
	d.authorize(owner, true)
	d.vaultSvc.EXPECT().Balance(other).Return(uint64(77))

	w := doJSON(d.router, http.MethodGet, "/api/v1/vault/balance/"+other.String(), "valid-token", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"balance":77`)
}

func TestBalanceOfEndpoint_NonOwnerForbidden(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	caller := uuid.New()
	other := uuid.New()
	d.authorize(caller, false)

	w := doJSON(d.router, http.MethodGet, "/api/v1/vault/balance/"+other.String(), "valid-token", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "AUTH_004")
}

func TestConfigEndpoint(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	caller := uuid.New()
	owner := uuid.New()
	d.authorize(caller, false)
	d.vaultSvc.EXPECT().Overview().Return(ports.VaultOverview{
		Owner:              owner,
		BankCap:            1000,
		PerTxWithdrawLimit: 100,
		AggregateTotal:     300,
		RemainingCapacity:  700,
		HeldFunds:          320,
	})

	w := doJSON(d.router, http.MethodGet, "/api/v1/vault/config", "valid-token", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), owner.String())
	assert.Contains(t, w.Body.String(), `"per_tx_withdraw_limit":100`)
	assert.Contains(t, w.Body.String(), `"held_funds":320`)
}

func TestEntriesEndpoint_NonOwnerScopedToSelf(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	caller := uuid.New()
	other := uuid.New()
	d.authorize(caller, false)
	d.vaultSvc.EXPECT().
		ListEntries(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ any, params ports.EntryListParams) ([]domain.Entry, int64, error) {
			// A non-owner's account filter is always forced to the caller.
			require.NotNil(t, params.Account)
			assert.Equal(t, caller, *params.Account)
			return nil, 0, nil
		})

	// Attempt to read someone else's entries.
	w := doJSON(d.router, http.MethodGet, "/api/v1/vault/entries?account="+other.String(), "valid-token", nil)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRescueEndpoint(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	owner := uuid.New()
	destination := uuid.New()
	d.authorize(owner, true)
	d.vaultSvc.EXPECT().
		Rescue(gomock.Any(), ports.RescueRequest{Caller: owner, Destination: destination, Amount: 50}).
		Return(&domain.Event{
			Type:       domain.EventRescued,
			Account:    destination,
			Amount:     50,
			NewBalance: 0,
			Timestamp:  time.Now().UTC(),
		}, nil)

	w := doJSON(d.router, http.MethodPost, "/api/v1/admin/rescue", "valid-token", gin.H{
		"destination": destination.String(),
		"amount":      50,
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "RESCUED")
}

func TestRescueEndpoint_NotOwner(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	caller := uuid.New()
	owner := uuid.New()
	d.authorize(caller, false)
	d.vaultSvc.EXPECT().
		Rescue(gomock.Any(), gomock.Any()).
		Return(nil, &domain.NotOwnerError{Caller: caller, Owner: owner})

	w := doJSON(d.router, http.MethodPost, "/api/v1/admin/rescue", "valid-token", gin.H{
		"destination": uuid.New().String(),
		"amount":      50,
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "VLT_007")
}

func TestHealthEndpoint(t *testing.T) {
	d := setupTestRouter(t)
	defer d.ctrl.Finish()

	w := doJSON(d.router, http.MethodGet, "/health", "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}
