// Package models defines the persisted domain records for splitledger.
//
// Records reference each other by ID strings rather than pointers:
//   - User: a registered account
//   - Group: a set of users sharing expenses, joined by invite code
//   - Expense: a shared cost with its funding and split breakdown
//   - Settlement: a direct payment between two group members
//
// Amounts are decimal.Decimal values with cent precision. The balance engine
// in internal/ledger consumes these records after ID normalization.
package models
