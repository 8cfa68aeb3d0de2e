package estate

// Messages holds the plain-text notice templates the engine emits. Callers
// that localize do so by swapping this table; the engine itself never formats
// colors or locale.
type Messages struct {
	ErrClaimDoesNotExist string
	ErrAlreadyOwner      string // tier
	ErrNotSoldByOwner    string // tier
	ErrNoBuyPermission   string // tier
	ErrNoRentPermission  string // tier
	ErrNoInfoPermission  string
	ErrNoClaimAllowance  string // area, remaining, missing
	ErrAlreadyRented     string // tier
	ErrUnexpected        string

	InfoBought    string // tier, formatted price
	InfoSold      string // buyer name, tier, location, formatted price
	InfoRented    string // tier, days, formatted price
	InfoRentedOut string // renter name, tier, location, formatted price
	InfoRentEnded string // tier, location

	PreviewSellHeader  string
	PreviewRentHeader  string
	PreviewSellGeneral string // tier, formatted price
	PreviewRentGeneral string // tier, formatted price, days
	PreviewOwner       string // owner name
	PreviewMainOwner   string // parent owner name
	PreviewSubNote     string

	OnelineSell string // area, location, formatted price
	OnelineRent string // area, location, formatted price, status

	KeywordClaim    string
	KeywordSubclaim string
}

func DefaultMessages() *Messages {
	return &Messages{
		ErrClaimDoesNotExist: "This claim does not exist.",
		ErrAlreadyOwner:      "You already own this %s.",
		ErrNotSoldByOwner:    "This %s is not owned by the seller anymore.",
		ErrNoBuyPermission:   "You do not have the permission to buy a %s.",
		ErrNoRentPermission:  "You do not have the permission to rent a %s.",
		ErrNoInfoPermission:  "You do not have the permission to view transaction details.",
		ErrNoClaimAllowance:  "This claim requires %d allowance blocks, you only have %d remaining (%d missing).",
		ErrAlreadyRented:     "This %s is already rented out.",
		ErrUnexpected:        "An unexpected error occurred, please contact an administrator.",

		InfoBought:    "You have successfully purchased this %s for %s.",
		InfoSold:      "%s has purchased your %s at %s for %s.",
		InfoRented:    "You are now renting this %s for %d day(s) at %s.",
		InfoRentedOut: "%s is now renting your %s at %s for %s.",
		InfoRentEnded: "The rent of your %s at %s has ended.",

		PreviewSellHeader:  "This sign sells a property:",
		PreviewRentHeader:  "This sign rents a property:",
		PreviewSellGeneral: "A %s is for sale for %s.",
		PreviewRentGeneral: "A %s is for rent for %s per %d day(s).",
		PreviewOwner:       "The current owner is %s.",
		PreviewMainOwner:   "The main claim owner is %s.",
		PreviewSubNote:     "Buying a subclaim grants access, the main claim keeps its owner.",

		OnelineSell: "SELL: %d blocks at %s for %s",
		OnelineRent: "RENT: %d blocks at %s for %s (%s)",

		KeywordClaim:    "claim",
		KeywordSubclaim: "subclaim",
	}
}

func (m *Messages) keyword(tier string) string {
	if tier == "claim" {
		return m.KeywordClaim
	}
	return m.KeywordSubclaim
}
