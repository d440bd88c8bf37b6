// Package models contains the GORM persistence models for quotations,
// invoices, their line items and receipts. Domain types stay free of ORM
// tags; each model converts to and from its aggregate with ToDomain and
// FromDomain, and repositories only ever touch models.
package models
