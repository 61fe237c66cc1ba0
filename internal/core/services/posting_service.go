package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/hazina-bank/core_ledger/internal/apperrors"
	"github.com/hazina-bank/core_ledger/internal/core/domain"
	portsrepo "github.com/hazina-bank/core_ledger/internal/core/ports/repositories"
)

// TransactionKind identifies one row of the posting-rule catalog. Every
// monetary operation in the system maps to exactly one kind; the catalog
// fully determines which GL accounts the entry debits and credits.
type TransactionKind string

const (
	KindCashDeposit            TransactionKind = "CASH_DEPOSIT"
	KindCashWithdrawal         TransactionKind = "CASH_WITHDRAWAL"
	KindAccountTransfer        TransactionKind = "ACCOUNT_TRANSFER"
	KindFeeCollection          TransactionKind = "FEE_COLLECTION"
	KindLoanDisbursement       TransactionKind = "LOAN_DISBURSEMENT"
	KindLoanRepayment          TransactionKind = "LOAN_REPAYMENT"
	KindLoanInterestAccrual    TransactionKind = "LOAN_INTEREST_ACCRUAL"
	KindDepositInterestAccrual TransactionKind = "DEPOSIT_INTEREST_ACCRUAL"
	KindProvisionIncrease      TransactionKind = "PROVISION_INCREASE"
	KindProvisionRelease       TransactionKind = "PROVISION_RELEASE"
	KindATMWithdrawal          TransactionKind = "ATM_WITHDRAWAL"
	KindPOSPurchase            TransactionKind = "POS_PURCHASE"
	KindPOSRefund              TransactionKind = "POS_REFUND"
	KindInterchangeFee         TransactionKind = "INTERCHANGE_FEE"
	KindInterchangeIncome      TransactionKind = "INTERCHANGE_INCOME"
)

// glRole is a named slot in a posting rule, bound to a concrete GL code at
// posting time: context-supplied codes (customer account, loan) first, then
// the configured well-known codes.
type glRole string

const (
	roleCustomer           glRole = "customer"
	roleCustomerDest       glRole = "customerDest"
	roleCash               glRole = "cash"
	roleATMCash            glRole = "atmCash"
	roleLoan               glRole = "loan"
	roleInterestReceivable glRole = "interestReceivable"
	roleInterestIncome     glRole = "interestIncome"
	roleInterestExpense    glRole = "interestExpense"
	roleInterestPayable    glRole = "interestPayable"
	roleFeeIncome          glRole = "feeIncome"
	roleMerchantSettlement glRole = "merchantSettlement"
	roleInterchangeIncome  glRole = "interchangeIncome"
	roleInterchangeExpense glRole = "interchangeExpense"
	roleProvisionExpense   glRole = "provisionExpense"
	roleLossProvision      glRole = "lossProvision"
)

// amountRole is a named amount slot in a posting rule, supplied by the
// calling service per attempt.
type amountRole string

const (
	amtPrimary   amountRole = "primary"
	amtInterest  amountRole = "interest"
	amtPrincipal amountRole = "principal"
	amtTotal     amountRole = "total" // primary plus tip
)

type legSide int

const (
	debitLeg legSide = iota
	creditLeg
)

// postingLeg is one debit or credit slot of a rule. Optional legs are
// dropped when their amount is zero (tips, interchange on on-us traffic).
type postingLeg struct {
	Side        legSide
	GL          glRole
	Amount      amountRole
	Optional    bool
	Description string
}

// postingRule is one row of the catalog: the journal type plus the ordered
// debit and credit legs. Every rule is balanced by construction of its
// amount roles; the journal entry still verifies exact balance on Post.
type postingRule struct {
	JournalType domain.JournalType
	Legs        []postingLeg
}

// postingCatalog is the full posting-rule table. Changing how an operation
// hits the ledger means changing a row here, not service code.
var postingCatalog = map[TransactionKind]postingRule{
	KindCashDeposit: {
		JournalType: domain.JournalStandard,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleCash, Amount: amtPrimary, Description: "Cash received"},
			{Side: creditLeg, GL: roleCustomer, Amount: amtPrimary, Description: "Customer deposit"},
		},
	},
	KindCashWithdrawal: {
		JournalType: domain.JournalStandard,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleCustomer, Amount: amtPrimary, Description: "Customer withdrawal"},
			{Side: creditLeg, GL: roleCash, Amount: amtPrimary, Description: "Cash paid out"},
		},
	},
	KindAccountTransfer: {
		JournalType: domain.JournalStandard,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleCustomer, Amount: amtPrimary, Description: "Transfer out"},
			{Side: creditLeg, GL: roleCustomerDest, Amount: amtPrimary, Description: "Transfer in"},
		},
	},
	KindFeeCollection: {
		JournalType: domain.JournalStandard,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleCustomer, Amount: amtPrimary, Description: "Fee charged"},
			{Side: creditLeg, GL: roleFeeIncome, Amount: amtPrimary, Description: "Fee income"},
		},
	},
	KindLoanDisbursement: {
		JournalType: domain.JournalStandard,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleLoan, Amount: amtPrimary, Description: "Loan principal disbursed"},
			{Side: creditLeg, GL: roleCustomer, Amount: amtPrimary, Description: "Disbursement to account"},
		},
	},
	KindLoanRepayment: {
		JournalType: domain.JournalStandard,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleCustomer, Amount: amtPrimary, Description: "Loan repayment"},
			{Side: creditLeg, GL: roleInterestIncome, Amount: amtInterest, Optional: true, Description: "Interest settled"},
			{Side: creditLeg, GL: roleLoan, Amount: amtPrincipal, Optional: true, Description: "Principal repaid"},
		},
	},
	KindLoanInterestAccrual: {
		JournalType: domain.JournalAccrual,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleInterestReceivable, Amount: amtPrimary, Description: "Interest accrued"},
			{Side: creditLeg, GL: roleInterestIncome, Amount: amtPrimary, Description: "Interest income"},
		},
	},
	KindDepositInterestAccrual: {
		JournalType: domain.JournalAccrual,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleInterestExpense, Amount: amtPrimary, Description: "Deposit interest expense"},
			{Side: creditLeg, GL: roleInterestPayable, Amount: amtPrimary, Description: "Interest owed to depositors"},
		},
	},
	KindProvisionIncrease: {
		JournalType: domain.JournalProvision,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleProvisionExpense, Amount: amtPrimary, Description: "Provision charge"},
			{Side: creditLeg, GL: roleLossProvision, Amount: amtPrimary, Description: "Loan loss provision"},
		},
	},
	KindProvisionRelease: {
		JournalType: domain.JournalProvision,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleLossProvision, Amount: amtPrimary, Description: "Provision released"},
			{Side: creditLeg, GL: roleProvisionExpense, Amount: amtPrimary, Description: "Provision charge released"},
		},
	},
	KindATMWithdrawal: {
		JournalType: domain.JournalStandard,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleATMCash, Amount: amtPrimary, Description: "ATM cash dispensed"},
			{Side: creditLeg, GL: roleCustomer, Amount: amtPrimary, Description: "ATM cash withdrawal"},
		},
	},
	KindPOSPurchase: {
		JournalType: domain.JournalStandard,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleMerchantSettlement, Amount: amtTotal, Description: "Due to merchant"},
			{Side: creditLeg, GL: roleCustomer, Amount: amtTotal, Description: "Card purchase"},
		},
	},
	KindPOSRefund: {
		JournalType: domain.JournalStandard,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleCustomer, Amount: amtPrimary, Description: "Refund to cardholder"},
			{Side: creditLeg, GL: roleMerchantSettlement, Amount: amtPrimary, Description: "Refund from merchant"},
		},
	},
	KindInterchangeFee: {
		JournalType: domain.JournalStandard,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleInterchangeExpense, Amount: amtPrimary, Description: "Interchange paid to network"},
			{Side: creditLeg, GL: roleCustomer, Amount: amtPrimary, Description: "Interchange fee recovery"},
		},
	},
	KindInterchangeIncome: {
		JournalType: domain.JournalStandard,
		Legs: []postingLeg{
			{Side: debitLeg, GL: roleMerchantSettlement, Amount: amtPrimary, Description: "Interchange withheld from settlement"},
			{Side: creditLeg, GL: roleInterchangeIncome, Amount: amtPrimary, Description: "Interchange income"},
		},
	},
}

// GLConfig holds the well-known GL codes the catalog resolves against.
// Customer and loan codes are never configured here: they travel with the
// account and loan aggregates.
type GLConfig struct {
	Cash               string
	ATMCash            string
	InterestReceivable string
	LossProvision      string
	MerchantSettlement string
	InterestPayable    string
	InterestIncome     string
	FeeIncome          string
	InterchangeIncome  string
	InterestExpense    string
	ProvisionExpense   string
	InterchangeExpense string
}

// DefaultGLConfig returns the standard chart-of-accounts bindings.
func DefaultGLConfig() GLConfig {
	return GLConfig{
		Cash:               "1010",
		ATMCash:            "1050",
		InterestReceivable: "1850",
		LossProvision:      "1901",
		MerchantSettlement: "2100",
		InterestPayable:    "2200",
		InterestIncome:     "4101",
		FeeIncome:          "4210",
		InterchangeIncome:  "4300",
		InterestExpense:    "5100",
		ProvisionExpense:   "5201",
		InterchangeExpense: "5300",
	}
}

// roleDefaults maps config-backed roles to their GLConfig field. Roles
// absent here must be supplied by the caller per attempt.
var roleDefaults = map[glRole]func(GLConfig) string{
	roleCash:               func(c GLConfig) string { return c.Cash },
	roleATMCash:            func(c GLConfig) string { return c.ATMCash },
	roleInterestReceivable: func(c GLConfig) string { return c.InterestReceivable },
	roleInterestIncome:     func(c GLConfig) string { return c.InterestIncome },
	roleInterestExpense:    func(c GLConfig) string { return c.InterestExpense },
	roleInterestPayable:    func(c GLConfig) string { return c.InterestPayable },
	roleFeeIncome:          func(c GLConfig) string { return c.FeeIncome },
	roleMerchantSettlement: func(c GLConfig) string { return c.MerchantSettlement },
	roleInterchangeIncome:  func(c GLConfig) string { return c.InterchangeIncome },
	roleInterchangeExpense: func(c GLConfig) string { return c.InterchangeExpense },
	roleProvisionExpense:   func(c GLConfig) string { return c.ProvisionExpense },
	roleLossProvision:      func(c GLConfig) string { return c.LossProvision },
}

// postingInput carries everything a catalog rule needs to become a posted
// journal entry: the amounts per role and the context-bound GL codes.
type postingInput struct {
	Kind         TransactionKind
	SourceType   string
	SourceID     string
	Reference    string
	Description  string
	CurrencyCode string
	Amounts      map[amountRole]decimal.Decimal
	GLCodes      map[glRole]string
	By           string
	At           time.Time
}

// postingEngine turns catalog rules into posted journal entries. It resolves
// every GL role to an active leaf account before building the entry; any
// resolution failure aborts the whole operation with
// ErrMissingGLConfiguration before anything was written.
type postingEngine struct {
	BaseService
	glRepo      portsrepo.GLAccountRepository
	journalRepo portsrepo.JournalRepository
	cfg         GLConfig
}

func newPostingEngine(glRepo portsrepo.GLAccountRepository, journalRepo portsrepo.JournalRepository, cfg GLConfig) *postingEngine {
	return &postingEngine{glRepo: glRepo, journalRepo: journalRepo, cfg: cfg}
}

func (e *postingEngine) resolveCode(role glRole, in postingInput) (string, error) {
	if code, ok := in.GLCodes[role]; ok && code != "" {
		return code, nil
	}
	if def, ok := roleDefaults[role]; ok {
		if code := def(e.cfg); code != "" {
			return code, nil
		}
	}
	return "", fmt.Errorf("%w: no GL code bound for role %q in %s", apperrors.ErrMissingGLConfiguration, role, in.Kind)
}

// buildEntry resolves the rule for in.Kind, validates every referenced GL
// account and returns a Posted journal entry ready for an atomic commit.
func (e *postingEngine) buildEntry(ctx context.Context, in postingInput) (*domain.JournalEntry, error) {
	rule, ok := postingCatalog[in.Kind]
	if !ok {
		return nil, fmt.Errorf("%w: unknown transaction kind %q", apperrors.ErrValidation, in.Kind)
	}

	type resolvedLeg struct {
		leg    postingLeg
		code   string
		amount decimal.Decimal
	}
	var legs []resolvedLeg
	for _, leg := range rule.Legs {
		amount := in.Amounts[leg.Amount]
		if leg.Optional && amount.IsZero() {
			continue
		}
		if !amount.IsPositive() {
			return nil, fmt.Errorf("%w: %s amount %s for %s", apperrors.ErrInvalidAmount, leg.Amount, amount, in.Kind)
		}
		code, err := e.resolveCode(leg.GL, in)
		if err != nil {
			return nil, err
		}
		legs = append(legs, resolvedLeg{leg: leg, code: code, amount: amount})
	}

	codes := make([]string, 0, len(legs))
	seen := make(map[string]bool, len(legs))
	for _, l := range legs {
		if !seen[l.code] {
			seen[l.code] = true
			codes = append(codes, l.code)
		}
	}
	found, err := e.glRepo.FindGLAccountsByCodes(ctx, codes)
	if err != nil {
		return nil, fmt.Errorf("resolving GL accounts for %s: %w", in.Kind, err)
	}
	for _, code := range codes {
		gl, ok := found[code]
		if !ok {
			return nil, fmt.Errorf("%w: GL %s does not exist", apperrors.ErrMissingGLConfiguration, code)
		}
		if !gl.IsLeaf || gl.Status != domain.GLActive {
			return nil, fmt.Errorf("%w: GL %s is not an active leaf account", apperrors.ErrMissingGLConfiguration, code)
		}
		if gl.CurrencyCode != in.CurrencyCode {
			return nil, fmt.Errorf("%w: GL %s is %s, entry is %s",
				apperrors.ErrMissingGLConfiguration, code, gl.CurrencyCode, in.CurrencyCode)
		}
	}

	number, err := e.journalRepo.NextJournalNumber(ctx, rule.JournalType)
	if err != nil {
		return nil, fmt.Errorf("issuing journal number: %w", err)
	}

	entry := domain.NewJournalEntry(uuid.NewString(), number, in.At, in.At, rule.JournalType,
		in.SourceType, in.SourceID, in.Reference, in.CurrencyCode, in.By, in.Description)
	for _, l := range legs {
		desc := l.leg.Description
		if l.leg.Side == debitLeg {
			err = entry.AddDebitLine(l.code, l.amount, desc)
		} else {
			err = entry.AddCreditLine(l.code, l.amount, desc)
		}
		if err != nil {
			return nil, err
		}
	}
	if err := entry.Post(in.By, in.At); err != nil {
		return nil, err
	}
	return entry, nil
}
