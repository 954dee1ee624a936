package domain

// Account is the ledger's view of an externally managed account.
// The ledger never mutates accounts; it only resolves a number to an ID.
type Account struct {
	ID     string
	Number string
}
