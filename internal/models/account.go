package models

// Account represents one person.
//
// Accounts come from the chat platform that fronts the ledger, so the ID is
// the platform's user id and Name is its display name.
type Account struct {
	// ID is the platform user id.
	ID string

	// Name is the display name.
	Name string

	// LinkedTo is the master account id for joint budgeting.
	// Empty means the account is its own master. A master is never itself
	// linked to someone else.
	LinkedTo string

	// CreatedAt is the Unix timestamp when the account was first seen.
	CreatedAt int64
}

// IsLinked reports whether the account belongs to another account's budget.
func (a Account) IsLinked() bool {
	return a.LinkedTo != ""
}
