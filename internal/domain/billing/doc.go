// Package billing provides the domain model for condominium charge generation and settlement.
//
// This package implements the billing bounded context, which is responsible for:
//   - Cataloguing recurring charge types and how each is priced (per area or flat)
//   - Materialising obligations as ledger entries, one per payer, charge kind and period
//   - Vehicle parking tickets (monthly recurring and daily one-off) and their renewal
//   - Settling entries and rolling collection statistics up per period
//
// Key Aggregates:
//   - ChargeType: A maintenance or service fee with its pricing mode
//   - LedgerEntry: One obligation for one payer in one period, UNPAID or PAID
//
// Value Objects:
//   - ChargeKind: Closed variant identifying what a ledger entry charges for
//   - VehicleFeeConfig: Ticket price for a vehicle class and ticket kind
//   - StatsSummary / GroupStats: Read-only collection rollups
//
// Households and vehicles are owned by the master data subsystem; this package
// only reads their identity and pricing attributes through PayerRoster.
package billing
