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

type glAccountService struct {
	BaseService
	glRepo portsrepo.GLAccountRepository
}

// NewGLAccountService creates the chart-of-accounts facade.
func NewGLAccountService(glRepo portsrepo.GLAccountRepository) portssvc.GLAccountSvcFacade {
	return &glAccountService{glRepo: glRepo}
}

func (s *glAccountService) CreateGLAccount(ctx context.Context, req dto.CreateGLAccountRequest, creatorUserID string) (*domain.GLAccount, error) {
	glType, ok := domain.GLTypeForCode(req.GLCode)
	if !ok {
		return nil, fmt.Errorf("%w: GL code %s does not denote a known account type", apperrors.ErrValidation, req.GLCode)
	}
	if req.ParentGLCode != "" {
		parent, err := s.glRepo.FindGLAccountByCode(ctx, req.ParentGLCode)
		if err != nil {
			return nil, fmt.Errorf("resolving parent GL %s: %w", req.ParentGLCode, err)
		}
		if parent.Type != glType {
			return nil, fmt.Errorf("%w: parent GL %s is %s, child %s is %s",
				apperrors.ErrValidation, parent.GLCode, parent.Type, req.GLCode, glType)
		}
	}

	now := time.Now().UTC()
	gl := domain.GLAccount{
		GLAccountID:  uuid.NewString(),
		GLCode:       req.GLCode,
		Name:         req.Name,
		Type:         glType,
		Category:     req.Category,
		Status:       domain.GLActive,
		ParentGLCode: req.ParentGLCode,
		Level:        req.Level,
		IsLeaf:       req.IsLeaf,
		CurrencyCode: req.CurrencyCode,
		AuditFields:  domain.NewAuditFields(creatorUserID, now),
	}
	if err := s.glRepo.SaveGLAccount(ctx, gl); err != nil {
		s.LogError(ctx, err, "GL account creation failed", "gl_code", req.GLCode)
		return nil, err
	}
	s.LogInfo(ctx, "GL account created", "gl_code", gl.GLCode, "type", string(gl.Type))
	return &gl, nil
}

func (s *glAccountService) GetGLAccountByCode(ctx context.Context, glCode string) (*domain.GLAccount, error) {
	return s.glRepo.FindGLAccountByCode(ctx, glCode)
}

func (s *glAccountService) ListGLAccounts(ctx context.Context) ([]domain.GLAccount, error) {
	return s.glRepo.ListGLAccounts(ctx)
}
