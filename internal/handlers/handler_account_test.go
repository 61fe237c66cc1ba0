package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	"github.com/hazina-bank/core_ledger/internal/dto"
	"github.com/hazina-bank/core_ledger/internal/middleware"
)

const testJWTSecret = "test-secret"

// MockAccountService is a mock type for the AccountSvcFacade interface.
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	args := m.Called(ctx, req, creatorUserID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) GetAccountByNumber(ctx context.Context, accountNumber string) (*domain.Account, error) {
	args := m.Called(ctx, accountNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) FreezeAccount(ctx context.Context, accountID string, requestingUserID string) error {
	args := m.Called(ctx, accountID, requestingUserID)
	return args.Error(0)
}

func (m *MockAccountService) UnfreezeAccount(ctx context.Context, accountID string, requestingUserID string) error {
	args := m.Called(ctx, accountID, requestingUserID)
	return args.Error(0)
}

func (m *MockAccountService) CloseAccount(ctx context.Context, accountID string, requestingUserID string) error {
	args := m.Called(ctx, accountID, requestingUserID)
	return args.Error(0)
}

type AccountHandlerTestSuite struct {
	suite.Suite
	router      *gin.Engine
	mockService *MockAccountService
	token       string
}

func (s *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.mockService = new(MockAccountService)

	s.router = gin.New()
	v1 := s.router.Group("/api/v1", middleware.AuthMiddleware(testJWTSecret))
	registerAccountRoutes(v1, s.mockService)

	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	s.Require().NoError(err)
	s.token = token
}

func (s *AccountHandlerTestSuite) request(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.token)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func testDomainAccount() *domain.Account {
	return &domain.Account{
		AccountID:      "acc-1",
		AccountNumber:  "1000000001",
		CustomerID:     "cust-1",
		Balance:        domain.NewMoney(decimal.NewFromInt(100), "KES"),
		OverdraftLimit: domain.NewMoney(decimal.Zero, "KES"),
		Status:         domain.AccountActive,
		CustomerGLCode: "2001",
	}
}

func (s *AccountHandlerTestSuite) TestCreateAccount_Success() {
	req := dto.CreateAccountRequest{
		AccountNumber:  "1000000001",
		CustomerID:     "cust-1",
		CurrencyCode:   "KES",
		CustomerGLCode: "2001",
	}
	// Decimal fields do not compare reliably with ObjectsAreEqual after a
	// JSON round trip, so match the request field by field.
	matchReq := mock.MatchedBy(func(got dto.CreateAccountRequest) bool {
		return got.AccountNumber == req.AccountNumber &&
			got.CustomerID == req.CustomerID &&
			got.CurrencyCode == req.CurrencyCode &&
			got.CustomerGLCode == req.CustomerGLCode &&
			got.OverdraftLimit.Equal(req.OverdraftLimit)
	})
	s.mockService.On("CreateAccount", mock.Anything, matchReq, "user-1").Return(testDomainAccount(), nil)

	w := s.request(http.MethodPost, "/api/v1/accounts", req)

	s.Equal(http.StatusCreated, w.Code)
	var resp dto.AccountResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("acc-1", resp.AccountID)
	s.Equal("KES", resp.CurrencyCode)
	s.mockService.AssertExpectations(s.T())
}

func (s *AccountHandlerTestSuite) TestCreateAccount_MissingFields() {
	w := s.request(http.MethodPost, "/api/v1/accounts", map[string]string{"customerID": "cust-1"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.mockService.AssertNotCalled(s.T(), "CreateAccount")
}

func (s *AccountHandlerTestSuite) TestCreateAccount_UnusableGL() {
	s.mockService.On("CreateAccount", mock.Anything, mock.Anything, "user-1").
		Return(nil, fmt.Errorf("%w: GL 2001", apperrors.ErrMissingGLConfiguration))

	w := s.request(http.MethodPost, "/api/v1/accounts", dto.CreateAccountRequest{
		AccountNumber:  "1000000001",
		CustomerID:     "cust-1",
		CurrencyCode:   "KES",
		CustomerGLCode: "2001",
	})
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func (s *AccountHandlerTestSuite) TestCreateAccount_Unauthorized() {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/accounts", bytes.NewBufferString("{}"))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *AccountHandlerTestSuite) TestGetAccount_Success() {
	s.mockService.On("GetAccountByID", mock.Anything, "acc-1").Return(testDomainAccount(), nil)

	w := s.request(http.MethodGet, "/api/v1/accounts/acc-1", nil)

	s.Equal(http.StatusOK, w.Code)
	var resp dto.AccountResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	s.Equal("1000000001", resp.AccountNumber)
}

func (s *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	s.mockService.On("GetAccountByID", mock.Anything, "missing").
		Return(nil, fmt.Errorf("%w: account missing", apperrors.ErrNotFound))

	w := s.request(http.MethodGet, "/api/v1/accounts/missing", nil)
	s.Equal(http.StatusNotFound, w.Code)
}

func (s *AccountHandlerTestSuite) TestFreezeAccount() {
	s.mockService.On("FreezeAccount", mock.Anything, "acc-1", "user-1").Return(nil)

	w := s.request(http.MethodPost, "/api/v1/accounts/acc-1/freeze", nil)
	s.Equal(http.StatusNoContent, w.Code)
	s.mockService.AssertExpectations(s.T())
}

func (s *AccountHandlerTestSuite) TestCloseAccount_NonZeroBalance() {
	s.mockService.On("CloseAccount", mock.Anything, "acc-1", "user-1").
		Return(fmt.Errorf("%w: account has balance", apperrors.ErrValidation))

	w := s.request(http.MethodPost, "/api/v1/accounts/acc-1/close", nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}
