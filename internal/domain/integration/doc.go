// Package integration contains the marketplace integration bounded context.
// It describes what the import engine needs from a marketplace and what a
// run produces.
//
// Key concepts:
//   - Marketplace: port for reading orders, item details and token status
//   - Order, Item: marketplace payloads, prices kept as raw strings
//   - ImportResult: outcome of one import run over a time window
//   - OrderSyncRecord: per-order import log used to re-drive failures
//   - RunLock: guards a channel against overlapping import runs
//   - EventPublisher: port announcing imported sales and finished runs
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
