package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
	portssvc "github.com/hazina-bank/core_ledger/internal/core/ports/services"
	"github.com/hazina-bank/core_ledger/internal/dto"
)

type accountService struct {
	BaseService
	accountRepo portsrepo.AccountRepository
	glRepo      portsrepo.GLAccountRepository
}

// NewAccountService creates the customer account lifecycle facade.
func NewAccountService(accountRepo portsrepo.AccountRepository, glRepo portsrepo.GLAccountRepository) portssvc.AccountSvcFacade {
	return &accountService{accountRepo: accountRepo, glRepo: glRepo}
}

func (s *accountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	// The customer control GL must exist as an active leaf before any
	// posting can reference it.
	gl, err := s.glRepo.FindGLAccountByCode(ctx, req.CustomerGLCode)
	if err != nil {
		return nil, fmt.Errorf("resolving customer GL %s: %w", req.CustomerGLCode, err)
	}
	if !gl.IsLeaf || gl.Status != domain.GLActive || gl.CurrencyCode != req.CurrencyCode {
		return nil, fmt.Errorf("%w: GL %s unusable as customer control account",
			apperrors.ErrMissingGLConfiguration, req.CustomerGLCode)
	}

	now := time.Now().UTC()
	account := domain.Account{
		AccountID:      uuid.NewString(),
		AccountNumber:  req.AccountNumber,
		CustomerID:     req.CustomerID,
		Balance:        domain.ZeroMoney(req.CurrencyCode),
		OverdraftLimit: domain.NewMoney(req.OverdraftLimit, req.CurrencyCode),
		Status:         domain.AccountActive,
		CustomerGLCode: req.CustomerGLCode,
		AuditFields:    domain.NewAuditFields(creatorUserID, now),
	}
	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		s.LogError(ctx, err, "Account creation failed", "account_number", req.AccountNumber)
		return nil, err
	}
	s.LogInfo(ctx, "Account created", "account_id", account.AccountID, "account_number", account.AccountNumber)
	return &account, nil
}

func (s *accountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByID(ctx, accountID)
}

func (s *accountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	return s.accountRepo.FindAccountByNumber(ctx, accountNumber)
}

func (s *accountService) FreezeAccount(ctx context.Context, accountID string, requestingUserID string) error {
	return s.transition(ctx, accountID, requestingUserID, "Account frozen", (*domain.Account).Freeze)
}

func (s *accountService) UnfreezeAccount(ctx context.Context, accountID string, requestingUserID string) error {
	return s.transition(ctx, accountID, requestingUserID, "Account unfrozen", (*domain.Account).Unfreeze)
}

func (s *accountService) CloseAccount(ctx context.Context, accountID string, requestingUserID string) error {
	return s.transition(ctx, accountID, requestingUserID, "Account closed", (*domain.Account).Close)
}

func (s *accountService) transition(ctx context.Context, accountID, requestingUserID, logMsg string, fn func(*domain.Account) error) error {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return fmt.Errorf("finding account %s: %w", accountID, err)
	}
	if err := fn(account); err != nil {
		return err
	}
	account.Touch(requestingUserID, time.Now().UTC())
	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		return err
	}
	s.LogInfo(ctx, logMsg, "account_id", accountID)
	return nil
}
