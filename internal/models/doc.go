// Package models defines the core domain records for Splitopus.
//
// # Records
//
//   - Account: one person, optionally linked to a master account (joint budget)
//   - Trip: a shared expense pool with members, expenses and notes
//   - Expense: one payment with an explicit split map
//   - Note: free text pinned to a trip, no effect on balances
//   - Draft: an expense under interactive construction, not part of the ledger
//
// # Design Principles
//
// 1. **Typed records**: categories are a closed enumeration, money is decimal.Decimal
// 2. **IDs, not pointers**: relationships are expressed with string IDs
// 3. **Trip owns its children**: deleting a trip removes its expenses, notes and drafts
// 4. **Accounts are shared**: membership is many-to-many through Trip.Members
package models
