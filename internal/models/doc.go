// Package models defines the core domain model for fairsplit.
//
// # Models
//
//   - Receipt: one transaction document with its line items and participants
//   - LineItem: a priced entry on a receipt, with its person assignments
//   - Assignment: links one Person to one LineItem (shared responsibility)
//   - Person: a participant in the split
//
// # Design Principles
//
//  1. **Immutability**: a Receipt is constructed once from an external
//     source (REST API or sync layer) and consumed read-only. Edits produce
//     a new Receipt; the calculation engine never mutates its input.
//  2. **Decimal money everywhere**: all monetary fields are
//     decimal.Decimal (or *decimal.Decimal when the source may omit them).
//     No float64 money exists past the adapter boundary.
//  3. **Soft deletion**: items and assignments carry a nullable deleted-at
//     timestamp. Deleted records are excluded from every calculation but
//     preserved for the collaborating sync layer.
//  4. **Two kinds of people**: a Person is identified by a stable account ID
//     when linked, or by a free-text display name when anonymous. Two
//     anonymous people with different names are distinct; no name-similarity
//     deduplication happens here.
package models
