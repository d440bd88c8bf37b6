// Package billing orchestrates quotations, invoices and receipts: it assigns
// document numbers, runs each mutation as one transaction (child change,
// parent recalculation, parent save) and publishes domain events after commit.
package billing
