// Package models defines the core domain records for CoachERP.
//
// # Persistence
//
// The entire application state is persisted as one JSON document in the
// admin's own cloud storage (see internal/sync). AppState is that document:
// there is no partial sync, every write replaces the whole blob.
//
// # Design Principles
//
//  1. **Value semantics**: records are plain structs with no behavior beyond
//     derived read-only computations (fee balances).
//  2. **One balance formula**: every fee summary in the application goes
//     through Student.BalanceDue so the dashboard, the ledger and the detail
//     view can never drift apart.
//  3. **Loose batch references**: Student.Batch is a label into the batch
//     list, not a foreign key. Removing a batch does not cascade; a student
//     may keep a dangling label.
//  4. **Append-only payments**: a Payment belongs to exactly one Student and
//     is never edited or removed once recorded.
package models
