// Package billing holds the business document domain: quotations, invoices
// and payment receipts, together with the rules that derive their totals,
// document numbers and payment status.
//
// Flow of data:
//
//	QuotationItems -> Quotation totals -> (optional) Invoice snapshot
//	Receipts -> Invoice outstanding balance -> Invoice payment status
//
// All amounts are fixed-point decimals. Tax and grand totals are rounded
// half-up to two places; subtotals and labour cost are kept exact.
package billing
