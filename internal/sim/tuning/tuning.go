package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	TickRateHz       int `yaml:"tick_rate_hz"`
	ListingTickEvery int `yaml:"listing_tick_every"`

	Currency Currency `yaml:"currency"`
	Policy   Policy   `yaml:"policy"`

	RateLimits RateLimits `yaml:"rate_limits"`
}

// Currency controls how prices are displayed on marker signs. The charged
// amount always uses the exact stored price regardless of display rounding.
type Currency struct {
	UseSymbol  bool   `yaml:"use_symbol"`
	UseDecimal bool   `yaml:"use_decimal"`
	Symbol     string `yaml:"symbol"`
	NamePlural string `yaml:"name_plural"`
}

type Policy struct {
	// When true, the seller's claim allowance moves with the claim and the
	// buyer's remaining allowance is not checked.
	TransferClaimAllowance bool `yaml:"transfer_claim_allowance"`
	AllowNegativeBalance   bool `yaml:"allow_negative_balance"`
	MessageOwner           bool `yaml:"message_owner"`
	MailOffline            bool `yaml:"mail_offline"`

	SignHeader string `yaml:"sign_header"`
	SellTag    string `yaml:"sell_tag"`
	RentTag    string `yaml:"rent_tag"`
}

type RateLimits struct {
	ListWindowTicks int `yaml:"list_window_ticks"`
	ListMax         int `yaml:"list_max"`
}

func Default() Tuning {
	return Tuning{
		TickRateHz:       5,
		ListingTickEvery: 25,
		Currency: Currency{
			UseSymbol:  true,
			UseDecimal: true,
			Symbol:     "$",
			NamePlural: "coins",
		},
		Policy: Policy{
			TransferClaimAllowance: false,
			AllowNegativeBalance:   false,
			MessageOwner:           true,
			MailOffline:            true,
			SignHeader:             "[RealEstate]",
			SellTag:                "FOR SALE",
			RentTag:                "FOR RENT",
		},
		RateLimits: RateLimits{
			ListWindowTicks: 100,
			ListMax:         5,
		},
	}
}

func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, nil
}
