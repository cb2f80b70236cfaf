// Package models defines the core domain models for billdesk.
//
// # Ownership
//
// Every owned record (Bill, BusinessProfile, Customer) carries the OwnerID of
// the User that created it. OwnerID is the tenant boundary: stores and
// services always filter by it and treat records of another owner as absent.
//
// # Derived fields
//
// LineItem.Amount, Bill.GrandTotal and Bill.AmountInWords are derived when a
// bill is issued and are never taken from callers. Money values use
// decimal.Decimal so that qty × rate sums stay exact.
//
// # Relationships
//
// Models reference each other by ID strings rather than pointers:
//   - User 1 -> 0..n Bill
//   - User 1 -> 0..1 BusinessProfile
//   - User 1 -> 0..n Customer
package models
