package config

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL  string
	Port         string
	IsProduction bool
	JWTSecret    string

	// RateLimit is the ulule/limiter formatted rate for transaction routes,
	// e.g. "100-M" for 100 requests per minute.
	RateLimit string

	// BalanceInquiryFee is the flat fee for off-network ATM balance inquiries.
	BalanceInquiryFee decimal.Decimal

	// CardIssuanceFee is charged against the linked account when a card is
	// issued. Zero disables the charge.
	CardIssuanceFee decimal.Decimal

	// Well-known GL code bindings for the posting catalog.
	GLCash               string
	GLATMCash            string
	GLInterestReceivable string
	GLLossProvision      string
	GLMerchantSettlement string
	GLInterestPayable    string
	GLInterestIncome     string
	GLFeeIncome          string
	GLInterchangeIncome  string
	GLInterestExpense    string
	GLProvisionExpense   string
	GLInterchangeExpense string
}

// LoadConfig loads configuration from environment variables and a .env file
// if present. GL code defaults follow the standard chart of accounts.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("RATE_LIMIT", "100-M")
	viper.SetDefault("BALANCE_INQUIRY_FEE", "1.00")
	viper.SetDefault("CARD_ISSUANCE_FEE", "0.00")
	viper.SetDefault("GL_CASH", "1010")
	viper.SetDefault("GL_ATM_CASH", "1050")
	viper.SetDefault("GL_INTEREST_RECEIVABLE", "1850")
	viper.SetDefault("GL_LOSS_PROVISION", "1901")
	viper.SetDefault("GL_MERCHANT_SETTLEMENT", "2100")
	viper.SetDefault("GL_INTEREST_PAYABLE", "2200")
	viper.SetDefault("GL_INTEREST_INCOME", "4101")
	viper.SetDefault("GL_FEE_INCOME", "4210")
	viper.SetDefault("GL_INTERCHANGE_INCOME", "4300")
	viper.SetDefault("GL_INTEREST_EXPENSE", "5100")
	viper.SetDefault("GL_PROVISION_EXPENSE", "5201")
	viper.SetDefault("GL_INTERCHANGE_EXPENSE", "5300")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}
	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if !cfg.IsProduction && cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET not set. Using default insecure key.")
	}
	cfg.RateLimit = viper.GetString("RATE_LIMIT")

	fee, err := decimal.NewFromString(viper.GetString("BALANCE_INQUIRY_FEE"))
	if err != nil {
		log.Printf("Warning: Invalid value for BALANCE_INQUIRY_FEE ('%s'). Defaulting to 1.00.\n", viper.GetString("BALANCE_INQUIRY_FEE"))
		fee = decimal.NewFromInt(1)
	}
	cfg.BalanceInquiryFee = fee

	issuanceFee, err := decimal.NewFromString(viper.GetString("CARD_ISSUANCE_FEE"))
	if err != nil {
		log.Printf("Warning: Invalid value for CARD_ISSUANCE_FEE ('%s'). Defaulting to 0.00.\n", viper.GetString("CARD_ISSUANCE_FEE"))
		issuanceFee = decimal.Zero
	}
	cfg.CardIssuanceFee = issuanceFee

	cfg.GLCash = viper.GetString("GL_CASH")
	cfg.GLATMCash = viper.GetString("GL_ATM_CASH")
	cfg.GLInterestReceivable = viper.GetString("GL_INTEREST_RECEIVABLE")
	cfg.GLLossProvision = viper.GetString("GL_LOSS_PROVISION")
	cfg.GLMerchantSettlement = viper.GetString("GL_MERCHANT_SETTLEMENT")
	cfg.GLInterestPayable = viper.GetString("GL_INTEREST_PAYABLE")
	cfg.GLInterestIncome = viper.GetString("GL_INTEREST_INCOME")
	cfg.GLFeeIncome = viper.GetString("GL_FEE_INCOME")
	cfg.GLInterchangeIncome = viper.GetString("GL_INTERCHANGE_INCOME")
	cfg.GLInterestExpense = viper.GetString("GL_INTEREST_EXPENSE")
	cfg.GLProvisionExpense = viper.GetString("GL_PROVISION_EXPENSE")
	cfg.GLInterchangeExpense = viper.GetString("GL_INTERCHANGE_EXPENSE")

	return cfg, nil
}
