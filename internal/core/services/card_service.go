package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
	portssvc "github.com/hazina-bank/core_ledger/internal/core/ports/services"
	"github.com/hazina-bank/core_ledger/internal/dto"
	"github.com/hazina-bank/core_ledger/internal/platform/metrics"
)

// interchangeRates maps merchant category codes to the interchange rate
// applied on off-network traffic.
var interchangeRates = map[string]decimal.Decimal{
	"5411": decimal.NewFromFloat(0.0175), // grocery
	"5812": decimal.NewFromFloat(0.0225), // restaurants
	"5541": decimal.NewFromFloat(0.0250), // fuel
	"5999": decimal.NewFromFloat(0.0200), // retail
}

var defaultInterchangeRate = decimal.NewFromFloat(0.0125)

// restrictedCategories are merchant categories card purchases always decline
// with code 57.
var restrictedCategories = map[string]bool{
	"7995": true, // gambling
	"6010": true, // manual cash disbursement
	"6011": true, // automated cash disbursement
}

func interchangeRateFor(merchantCategory string) decimal.Decimal {
	if rate, ok := interchangeRates[merchantCategory]; ok {
		return rate
	}
	return defaultInterchangeRate
}

type cardService struct {
	BaseService
	engine      *postingEngine
	cardRepo    portsrepo.CardRepository
	accountRepo portsrepo.AccountRepository
	authRepo    portsrepo.AuthorizationRepository
	ledgerRepo  portsrepo.LedgerRepository
	inquiryFee  decimal.Decimal
	issuanceFee decimal.Decimal
}

// NewCardService creates the card issuance and ATM/POS authorization facade.
// inquiryFee is the flat fee charged for off-network balance inquiries;
// issuanceFee is charged against the linked account when a card is issued.
func NewCardService(engine *postingEngine, cardRepo portsrepo.CardRepository, accountRepo portsrepo.AccountRepository,
	authRepo portsrepo.AuthorizationRepository, ledgerRepo portsrepo.LedgerRepository, inquiryFee, issuanceFee decimal.Decimal) portssvc.CardSvcFacade {
	return &cardService{
		engine:      engine,
		cardRepo:    cardRepo,
		accountRepo: accountRepo,
		authRepo:    authRepo,
		ledgerRepo:  ledgerRepo,
		inquiryFee:  inquiryFee,
		issuanceFee: issuanceFee,
	}
}

func (s *cardService) IssueCard(ctx context.Context, req dto.IssueCardRequest, creatorUserID string) (*domain.Card, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, req.AccountID)
	if err != nil {
		return nil, fmt.Errorf("finding account %s: %w", req.AccountID, err)
	}
	if !account.IsActive() {
		return nil, fmt.Errorf("%w: cannot issue a card on account %s", apperrors.ErrAccountNotActive, account.AccountNumber)
	}

	now := time.Now().UTC()
	currency := account.CurrencyCode()
	card := domain.Card{
		CardID:               uuid.NewString(),
		AccountID:            account.AccountID,
		CustomerID:           req.CustomerID,
		CardNumber:           req.CardNumber,
		NameOnCard:           req.NameOnCard,
		Status:               domain.CardActive,
		ExpiresAt:            now.AddDate(4, 0, 0),
		DailyWithdrawalLimit: domain.NewMoney(req.DailyWithdrawalLimit, currency),
		DailyPurchaseLimit:   domain.NewMoney(req.DailyPurchaseLimit, currency),
		WithdrawnToday:       domain.ZeroMoney(currency),
		PurchasedToday:       domain.ZeroMoney(currency),
		UsageDate:            now.Truncate(24 * time.Hour),
		AuditFields:          domain.NewAuditFields(creatorUserID, now),
	}
	if err := card.SetPIN(req.PIN); err != nil {
		return nil, err
	}

	if !s.issuanceFee.IsPositive() {
		if err := s.cardRepo.SaveCard(ctx, card); err != nil {
			s.LogError(ctx, err, "Card issuance failed", "account_id", req.AccountID)
			return nil, err
		}
		s.LogInfo(ctx, "Card issued", "card_id", card.CardID, "account_id", account.AccountID)
		return &card, nil
	}

	// The issuance fee debits the linked account and lands in fee income.
	// Card and fee entry commit together.
	fee := domain.NewMoney(s.issuanceFee, currency)
	if err := account.Debit(fee); err != nil {
		return nil, err
	}
	entry, err := s.engine.buildEntry(ctx, postingInput{
		Kind:         KindFeeCollection,
		SourceType:   sourceCard,
		SourceID:     card.CardID,
		Reference:    fmt.Sprintf("CARD-ISS-%s", card.MaskedNumber()),
		Description:  "Card issuance fee",
		CurrencyCode: currency,
		Amounts:      map[amountRole]decimal.Decimal{amtPrimary: fee.Amount},
		GLCodes:      map[glRole]string{roleCustomer: account.CustomerGLCode},
		By:           creatorUserID,
		At:           now,
	})
	if err != nil {
		return nil, err
	}
	posting := portsrepo.Posting{
		Entry:         entry,
		AccountDeltas: map[string]decimal.Decimal{account.AccountID: fee.Amount.Neg()},
		Card:          &card,
	}
	if err := s.ledgerRepo.CommitPosting(ctx, posting); err != nil {
		s.LogError(ctx, err, "Card issuance failed", "account_id", req.AccountID)
		return nil, err
	}
	metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
	s.LogInfo(ctx, "Card issued", "card_id", card.CardID, "account_id", account.AccountID, "journal_number", entry.JournalNumber)
	return &card, nil
}

func (s *cardService) ListCardAuthorizations(ctx context.Context, cardID string, limit int) ([]domain.Authorization, error) {
	return s.authRepo.ListAuthorizationsByCard(ctx, cardID, limit)
}

func newAuthCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
}

func newAuthReference(prefix string) string {
	return prefix + "-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:12])
}

func maskPAN(cardNumber string) string {
	if len(cardNumber) < 8 {
		return "****"
	}
	return cardNumber[:4] + "****" + cardNumber[len(cardNumber)-4:]
}

// decline terminates the attempt, records it and returns the decline
// response. A decline is never a Go error.
func (s *cardService) decline(ctx context.Context, auth *domain.Authorization, code domain.DeclineCode, reason string) (*dto.AuthorizationResponse, error) {
	if err := auth.Decline(code, reason); err != nil {
		return nil, err
	}
	// Every attempt persists, approved or declined. Losing the decline
	// record silently would break the audit trail, so the save failure is
	// the caller's error.
	if err := s.authRepo.SaveAuthorization(ctx, *auth); err != nil {
		s.LogError(ctx, err, "Failed to record declined authorization", "authorization_id", auth.AuthorizationID)
		return nil, fmt.Errorf("recording declined authorization %s: %w", auth.AuthorizationID, err)
	}
	metrics.AuthorizationDeclines.WithLabelValues(strconv.Itoa(int(code))).Inc()
	s.LogWarn(ctx, "Authorization declined",
		"authorization_id", auth.AuthorizationID,
		"decline_code", int(code),
		"reason", reason,
	)
	resp := dto.ToAuthorizationResponse(auth, "")
	return &resp, nil
}

// lookupCard runs the shared card validation steps: existence, usability and,
// when pin is non-empty, PIN verification. It returns a decline response when
// a step fails; card is non-nil only on success.
func (s *cardService) lookupCard(ctx context.Context, auth *domain.Authorization, cardNumber, pin string, at time.Time) (*domain.Card, *dto.AuthorizationResponse, error) {
	card, err := s.cardRepo.FindCardByNumber(ctx, cardNumber)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			resp, derr := s.decline(ctx, auth, domain.DeclineInvalidCard, "card not found")
			return nil, resp, derr
		}
		return nil, nil, fmt.Errorf("finding card: %w", err)
	}
	auth.CardID = card.CardID
	auth.AccountID = card.AccountID
	auth.MaskedCardNumber = card.MaskedNumber()

	if !card.IsUsable(at) {
		resp, derr := s.decline(ctx, auth, domain.DeclineInvalidCard, fmt.Sprintf("card is %s", card.Status))
		return nil, resp, derr
	}
	if pin != "" {
		if !card.VerifyPIN(pin) {
			resp, derr := s.decline(ctx, auth, domain.DeclineIncorrectPIN, "incorrect PIN")
			return nil, resp, derr
		}
		if err := auth.MarkPINVerified(); err != nil {
			return nil, nil, err
		}
	}
	return card, nil, nil
}

func availableBalance(account *domain.Account) domain.Money {
	available, err := account.Balance.Add(account.OverdraftLimit)
	if err != nil {
		return account.Balance
	}
	return available
}

// ATMWithdrawal runs the authorization state machine for an ATM cash
// withdrawal. When every check passes the debit, the journal entry, the card
// usage counters and the completed authorization commit atomically; if the
// posting fails after authorization, a system decline (96) is recorded and
// nothing else persists.
func (s *cardService) ATMWithdrawal(ctx context.Context, req dto.ATMWithdrawalRequest) (*dto.AuthorizationResponse, error) {
	var resp *dto.AuthorizationResponse
	err := s.withConflictRetry(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		auth := &domain.Authorization{
			AuthorizationID:  uuid.NewString(),
			Channel:          domain.ChannelATM,
			Kind:             domain.AuthKindWithdrawal,
			Status:           domain.AuthInitiated,
			MaskedCardNumber: maskPAN(req.CardNumber),
			ATMID:            req.ATMID,
			ATMLocation:      req.ATMLocation,
			IsOnUs:           req.IsOnUs,
			Reference:        newAuthReference("ATM"),
			AuditFields:      domain.NewAuditFields("atm:"+req.ATMID, now),
		}

		card, declined, err := s.lookupCard(ctx, auth, req.CardNumber, req.PIN, now)
		if err != nil {
			return err
		}
		if declined != nil {
			resp = declined
			return nil
		}

		amount := domain.NewMoney(req.Amount, card.DailyWithdrawalLimit.Currency.Code)
		if !amount.IsPositive() {
			return fmt.Errorf("%w: withdrawal of %s", apperrors.ErrInvalidAmount, amount)
		}
		auth.Amount = amount
		auth.Tip = domain.ZeroMoney(amount.Currency.Code)

		within, err := card.WithinLimit(amount, domain.CardATMWithdrawal, now)
		if err != nil {
			return err
		}
		if !within {
			resp, err = s.decline(ctx, auth, domain.DeclineLimitExceeded, "daily withdrawal limit exceeded")
			return err
		}

		account, err := s.accountRepo.FindAccountByID(ctx, card.AccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				resp, err = s.decline(ctx, auth, domain.DeclineInvalidCard, "linked account not found")
				return err
			}
			return fmt.Errorf("finding account %s: %w", card.AccountID, err)
		}
		if err := account.Debit(amount); err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInsufficientFunds):
				resp, err = s.decline(ctx, auth, domain.DeclineInsufficientFunds, "insufficient funds")
				return err
			case errors.Is(err, apperrors.ErrAccountNotActive):
				resp, err = s.decline(ctx, auth, domain.DeclineRestrictedAccount, "account is not active")
				return err
			default:
				return err
			}
		}

		if err := auth.Authorize(newAuthCode(), availableBalance(account)); err != nil {
			return err
		}
		if err := card.RecordUsage(amount, domain.CardATMWithdrawal, now); err != nil {
			return err
		}

		entry, err := s.engine.buildEntry(ctx, postingInput{
			Kind:         KindATMWithdrawal,
			SourceType:   sourceCardAuthorization,
			SourceID:     auth.AuthorizationID,
			Reference:    auth.Reference,
			Description:  fmt.Sprintf("ATM withdrawal at %s", req.ATMID),
			CurrencyCode: amount.Currency.Code,
			Amounts:      map[amountRole]decimal.Decimal{amtPrimary: amount.Amount},
			GLCodes:      map[glRole]string{roleCustomer: account.CustomerGLCode},
			By:           "atm:" + req.ATMID,
			At:           now,
		})
		if err != nil {
			resp, err = s.systemDecline(ctx, auth, err)
			return err
		}

		// Off-network withdrawals pay the acquiring network. The fee posts
		// as its own entry in the same commit.
		var supplemental []*domain.JournalEntry
		if !req.IsOnUs {
			interchange := amount.MulRate(defaultInterchangeRate)
			if interchange.IsPositive() {
				feeEntry, err := s.engine.buildEntry(ctx, postingInput{
					Kind:         KindInterchangeFee,
					SourceType:   sourceCardAuthorization,
					SourceID:     auth.AuthorizationID,
					Reference:    auth.Reference,
					Description:  fmt.Sprintf("Interchange fee for ATM withdrawal at %s", req.ATMID),
					CurrencyCode: amount.Currency.Code,
					Amounts:      map[amountRole]decimal.Decimal{amtPrimary: interchange.Amount},
					GLCodes:      map[glRole]string{roleCustomer: account.CustomerGLCode},
					By:           "atm:" + req.ATMID,
					At:           now,
				})
				if err != nil {
					resp, err = s.systemDecline(ctx, auth, err)
					return err
				}
				supplemental = append(supplemental, feeEntry)
			}
		}

		completed := *auth
		if err := completed.Complete(now); err != nil {
			return err
		}
		posting := portsrepo.Posting{
			Entry:               entry,
			SupplementalEntries: supplemental,
			AccountDeltas:       map[string]decimal.Decimal{account.AccountID: amount.Amount.Neg()},
			Card:                card,
			Authorization:       &completed,
		}
		if err := s.ledgerRepo.CommitPosting(ctx, posting); err != nil {
			if errors.Is(err, apperrors.ErrConcurrencyConflict) {
				return err
			}
			resp, err = s.systemDecline(ctx, auth, err)
			return err
		}
		metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
		metrics.AuthorizationsCompleted.WithLabelValues(string(auth.Kind)).Inc()
		s.LogInfo(ctx, "ATM withdrawal completed", "authorization_id", auth.AuthorizationID, "journal_number", entry.JournalNumber)
		r := dto.ToAuthorizationResponse(&completed, entry.JournalNumber)
		resp = &r
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "ATM withdrawal failed")
		return nil, err
	}
	return resp, nil
}

// systemDecline records a code-96 decline after the posting failed. The
// failed unit of work was rolled back; only the decline record persists.
func (s *cardService) systemDecline(ctx context.Context, auth *domain.Authorization, cause error) (*dto.AuthorizationResponse, error) {
	s.LogError(ctx, cause, "Posting failed after authorization", "authorization_id", auth.AuthorizationID)
	return s.decline(ctx, auth, domain.DeclineSystemError, "posting failed")
}

// BalanceInquiry reports the available balance. Off-network inquiries attract
// a flat fee posted against the account.
func (s *cardService) BalanceInquiry(ctx context.Context, req dto.BalanceInquiryRequest) (*dto.AuthorizationResponse, error) {
	var resp *dto.AuthorizationResponse
	err := s.withConflictRetry(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		auth := &domain.Authorization{
			AuthorizationID:  uuid.NewString(),
			Channel:          domain.ChannelATM,
			Kind:             domain.AuthKindBalanceInquiry,
			Status:           domain.AuthInitiated,
			MaskedCardNumber: maskPAN(req.CardNumber),
			ATMID:            req.ATMID,
			ATMLocation:      req.ATMLocation,
			IsOnUs:           req.IsOnUs,
			Reference:        newAuthReference("INQ"),
			AuditFields:      domain.NewAuditFields("atm:"+req.ATMID, now),
		}

		card, declined, err := s.lookupCard(ctx, auth, req.CardNumber, req.PIN, now)
		if err != nil {
			return err
		}
		if declined != nil {
			resp = declined
			return nil
		}

		account, err := s.accountRepo.FindAccountByID(ctx, card.AccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				resp, err = s.decline(ctx, auth, domain.DeclineInvalidCard, "linked account not found")
				return err
			}
			return fmt.Errorf("finding account %s: %w", card.AccountID, err)
		}
		if !account.IsActive() {
			resp, err = s.decline(ctx, auth, domain.DeclineRestrictedAccount, "account is not active")
			return err
		}

		currency := account.CurrencyCode()
		auth.Amount = domain.ZeroMoney(currency)
		auth.Tip = domain.ZeroMoney(currency)

		var entry *domain.JournalEntry
		posting := portsrepo.Posting{}
		if !req.IsOnUs && s.inquiryFee.IsPositive() {
			fee := domain.NewMoney(s.inquiryFee, currency)
			if err := account.Debit(fee); err != nil {
				if errors.Is(err, apperrors.ErrInsufficientFunds) {
					resp, err = s.decline(ctx, auth, domain.DeclineInsufficientFunds, "insufficient funds for inquiry fee")
					return err
				}
				return err
			}
			entry, err = s.engine.buildEntry(ctx, postingInput{
				Kind:         KindFeeCollection,
				SourceType:   sourceCardAuthorization,
				SourceID:     auth.AuthorizationID,
				Reference:    auth.Reference,
				Description:  "Off-network balance inquiry fee",
				CurrencyCode: currency,
				Amounts:      map[amountRole]decimal.Decimal{amtPrimary: fee.Amount},
				GLCodes:      map[glRole]string{roleCustomer: account.CustomerGLCode},
				By:           "atm:" + req.ATMID,
				At:           now,
			})
			if err != nil {
				resp, err = s.systemDecline(ctx, auth, err)
				return err
			}
			posting.Entry = entry
			posting.AccountDeltas = map[string]decimal.Decimal{account.AccountID: fee.Amount.Neg()}
		}

		if err := auth.Authorize(newAuthCode(), availableBalance(account)); err != nil {
			return err
		}
		completed := *auth
		if err := completed.Complete(now); err != nil {
			return err
		}

		if posting.Entry != nil {
			posting.Authorization = &completed
			if err := s.ledgerRepo.CommitPosting(ctx, posting); err != nil {
				if errors.Is(err, apperrors.ErrConcurrencyConflict) {
					return err
				}
				resp, err = s.systemDecline(ctx, auth, err)
				return err
			}
			metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
		} else if err := s.authRepo.SaveAuthorization(ctx, completed); err != nil {
			return err
		}
		metrics.AuthorizationsCompleted.WithLabelValues(string(auth.Kind)).Inc()

		journalNumber := ""
		if entry != nil {
			journalNumber = entry.JournalNumber
		}
		r := dto.ToAuthorizationResponse(&completed, journalNumber)
		resp = &r
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Balance inquiry failed")
		return nil, err
	}
	return resp, nil
}

// POSPurchase authorizes a card purchase with optional tip. Off-network
// purchases earn interchange withheld from the merchant settlement.
func (s *cardService) POSPurchase(ctx context.Context, req dto.POSPurchaseRequest) (*dto.AuthorizationResponse, error) {
	var resp *dto.AuthorizationResponse
	err := s.withConflictRetry(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		auth := &domain.Authorization{
			AuthorizationID:  uuid.NewString(),
			Channel:          domain.ChannelPOS,
			Kind:             domain.AuthKindPurchase,
			Status:           domain.AuthInitiated,
			MaskedCardNumber: maskPAN(req.CardNumber),
			MerchantID:       req.MerchantID,
			MerchantName:     req.MerchantName,
			MerchantCategory: req.MerchantCategory,
			TerminalID:       req.TerminalID,
			IsOnUs:           req.IsOnUs,
			Reference:        newAuthReference("POS"),
			AuditFields:      domain.NewAuditFields("pos:"+req.TerminalID, now),
		}

		card, declined, err := s.lookupCard(ctx, auth, req.CardNumber, req.PIN, now)
		if err != nil {
			return err
		}
		if declined != nil {
			resp = declined
			return nil
		}

		if restrictedCategories[req.MerchantCategory] {
			resp, err = s.decline(ctx, auth, domain.DeclineNotPermitted,
				fmt.Sprintf("merchant category %s not permitted", req.MerchantCategory))
			return err
		}

		currency := card.DailyPurchaseLimit.Currency.Code
		amount := domain.NewMoney(req.Amount, currency)
		if !amount.IsPositive() {
			return fmt.Errorf("%w: purchase of %s", apperrors.ErrInvalidAmount, amount)
		}
		if req.Tip.IsNegative() {
			return fmt.Errorf("%w: negative tip", apperrors.ErrInvalidAmount)
		}
		tip := domain.NewMoney(req.Tip, currency)
		auth.Amount = amount
		auth.Tip = tip
		total, err := amount.Add(tip)
		if err != nil {
			return err
		}

		within, err := card.WithinLimit(total, domain.CardPOSPurchase, now)
		if err != nil {
			return err
		}
		if !within {
			resp, err = s.decline(ctx, auth, domain.DeclineLimitExceeded, "daily purchase limit exceeded")
			return err
		}

		account, err := s.accountRepo.FindAccountByID(ctx, card.AccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				resp, err = s.decline(ctx, auth, domain.DeclineInvalidCard, "linked account not found")
				return err
			}
			return fmt.Errorf("finding account %s: %w", card.AccountID, err)
		}
		if err := account.Debit(total); err != nil {
			switch {
			case errors.Is(err, apperrors.ErrInsufficientFunds):
				resp, err = s.decline(ctx, auth, domain.DeclineInsufficientFunds, "insufficient funds")
				return err
			case errors.Is(err, apperrors.ErrAccountNotActive):
				resp, err = s.decline(ctx, auth, domain.DeclineRestrictedAccount, "account is not active")
				return err
			default:
				return err
			}
		}

		if err := auth.Authorize(newAuthCode(), availableBalance(account)); err != nil {
			return err
		}
		if err := card.RecordUsage(total, domain.CardPOSPurchase, now); err != nil {
			return err
		}

		entry, err := s.engine.buildEntry(ctx, postingInput{
			Kind:         KindPOSPurchase,
			SourceType:   sourceCardAuthorization,
			SourceID:     auth.AuthorizationID,
			Reference:    auth.Reference,
			Description:  fmt.Sprintf("Purchase at %s", req.MerchantName),
			CurrencyCode: currency,
			Amounts:      map[amountRole]decimal.Decimal{amtTotal: total.Amount},
			GLCodes:      map[glRole]string{roleCustomer: account.CustomerGLCode},
			By:           "pos:" + req.TerminalID,
			At:           now,
		})
		if err != nil {
			resp, err = s.systemDecline(ctx, auth, err)
			return err
		}

		// Off-network purchases earn interchange withheld from the merchant
		// settlement, posted as its own entry in the same commit.
		var supplemental []*domain.JournalEntry
		if !req.IsOnUs {
			interchange := total.MulRate(interchangeRateFor(req.MerchantCategory))
			if interchange.IsPositive() {
				incomeEntry, err := s.engine.buildEntry(ctx, postingInput{
					Kind:         KindInterchangeIncome,
					SourceType:   sourceCardAuthorization,
					SourceID:     auth.AuthorizationID,
					Reference:    auth.Reference,
					Description:  fmt.Sprintf("Interchange income for purchase at %s", req.MerchantName),
					CurrencyCode: currency,
					Amounts:      map[amountRole]decimal.Decimal{amtPrimary: interchange.Amount},
					By:           "pos:" + req.TerminalID,
					At:           now,
				})
				if err != nil {
					resp, err = s.systemDecline(ctx, auth, err)
					return err
				}
				supplemental = append(supplemental, incomeEntry)
			}
		}

		completed := *auth
		if err := completed.Complete(now); err != nil {
			return err
		}
		posting := portsrepo.Posting{
			Entry:               entry,
			SupplementalEntries: supplemental,
			AccountDeltas:       map[string]decimal.Decimal{account.AccountID: total.Amount.Neg()},
			Card:                card,
			Authorization:       &completed,
		}
		if err := s.ledgerRepo.CommitPosting(ctx, posting); err != nil {
			if errors.Is(err, apperrors.ErrConcurrencyConflict) {
				return err
			}
			resp, err = s.systemDecline(ctx, auth, err)
			return err
		}
		metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
		metrics.AuthorizationsCompleted.WithLabelValues(string(auth.Kind)).Inc()
		s.LogInfo(ctx, "POS purchase completed", "authorization_id", auth.AuthorizationID, "journal_number", entry.JournalNumber)
		r := dto.ToAuthorizationResponse(&completed, entry.JournalNumber)
		resp = &r
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "POS purchase failed")
		return nil, err
	}
	return resp, nil
}

// POSRefund credits the cardholder back from the merchant settlement. No PIN
// is required; the original purchase reference travels for traceability.
func (s *cardService) POSRefund(ctx context.Context, req dto.POSRefundRequest) (*dto.AuthorizationResponse, error) {
	var resp *dto.AuthorizationResponse
	err := s.withConflictRetry(ctx, func(ctx context.Context) error {
		now := time.Now().UTC()
		auth := &domain.Authorization{
			AuthorizationID:  uuid.NewString(),
			Channel:          domain.ChannelPOS,
			Kind:             domain.AuthKindRefund,
			Status:           domain.AuthInitiated,
			MaskedCardNumber: maskPAN(req.CardNumber),
			MerchantID:       req.MerchantID,
			MerchantName:     req.MerchantName,
			MerchantCategory: req.MerchantCategory,
			TerminalID:       req.TerminalID,
			Reference:        newAuthReference("REF"),
			AuditFields:      domain.NewAuditFields("pos:"+req.TerminalID, now),
		}

		card, declined, err := s.lookupCard(ctx, auth, req.CardNumber, "", now)
		if err != nil {
			return err
		}
		if declined != nil {
			resp = declined
			return nil
		}

		account, err := s.accountRepo.FindAccountByID(ctx, card.AccountID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				resp, err = s.decline(ctx, auth, domain.DeclineInvalidCard, "linked account not found")
				return err
			}
			return fmt.Errorf("finding account %s: %w", card.AccountID, err)
		}

		currency := account.CurrencyCode()
		amount := domain.NewMoney(req.Amount, currency)
		auth.Amount = amount
		auth.Tip = domain.ZeroMoney(currency)

		description := fmt.Sprintf("Refund from %s for %s", req.MerchantName, req.OriginalReference)
		if err := account.Credit(amount); err != nil {
			if errors.Is(err, apperrors.ErrAccountNotActive) {
				resp, err = s.decline(ctx, auth, domain.DeclineRestrictedAccount, "account is not active")
				return err
			}
			return err
		}

		if err := auth.Authorize(newAuthCode(), availableBalance(account)); err != nil {
			return err
		}

		entry, err := s.engine.buildEntry(ctx, postingInput{
			Kind:         KindPOSRefund,
			SourceType:   sourceCardAuthorization,
			SourceID:     auth.AuthorizationID,
			Reference:    auth.Reference,
			Description:  description,
			CurrencyCode: currency,
			Amounts:      map[amountRole]decimal.Decimal{amtPrimary: amount.Amount},
			GLCodes:      map[glRole]string{roleCustomer: account.CustomerGLCode},
			By:           "pos:" + req.TerminalID,
			At:           now,
		})
		if err != nil {
			resp, err = s.systemDecline(ctx, auth, err)
			return err
		}

		completed := *auth
		if err := completed.Complete(now); err != nil {
			return err
		}
		posting := portsrepo.Posting{
			Entry:         entry,
			AccountDeltas: map[string]decimal.Decimal{account.AccountID: amount.Amount},
			Authorization: &completed,
		}
		if err := s.ledgerRepo.CommitPosting(ctx, posting); err != nil {
			if errors.Is(err, apperrors.ErrConcurrencyConflict) {
				return err
			}
			resp, err = s.systemDecline(ctx, auth, err)
			return err
		}
		metrics.JournalsPosted.WithLabelValues(string(entry.Type)).Inc()
		metrics.AuthorizationsCompleted.WithLabelValues(string(auth.Kind)).Inc()
		s.LogInfo(ctx, "POS refund completed", "authorization_id", auth.AuthorizationID, "journal_number", entry.JournalNumber)
		r := dto.ToAuthorizationResponse(&completed, entry.JournalNumber)
		resp = &r
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "POS refund failed")
		return nil, err
	}
	return resp, nil
}
