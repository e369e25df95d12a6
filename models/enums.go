package models

import (
	"errors"
	"strings"
)

// DatasetKind identifies one of the five record collections the dashboard works with.
type DatasetKind string

const (
	DatasetSales     DatasetKind = "sales"
	DatasetPurchases DatasetKind = "purchases"
	DatasetExpenses  DatasetKind = "expenses"
	DatasetHR        DatasetKind = "hr"
	DatasetStock     DatasetKind = "stock"
)

var AllDatasetKinds = []DatasetKind{
	DatasetSales,
	DatasetPurchases,
	DatasetExpenses,
	DatasetHR,
	DatasetStock,
}

func ParseDatasetKind(s string) (DatasetKind, error) {
	switch DatasetKind(strings.ToLower(strings.TrimSpace(s))) {
	case DatasetSales:
		return DatasetSales, nil
	case DatasetPurchases:
		return DatasetPurchases, nil
	case DatasetExpenses:
		return DatasetExpenses, nil
	case DatasetHR:
		return DatasetHR, nil
	case DatasetStock:
		return DatasetStock, nil
	}
	return "", errors.New("invalid dataset kind")
}

// VoucherKind is the classification of a sales voucher. It is assigned once at
// ingestion so the aggregators can switch on it instead of re-deriving the
// source system's sentinel conventions.
type VoucherKind string

const (
	VoucherInvoice    VoucherKind = "Invoice"
	VoucherCreditNote VoucherKind = "CreditNote"
	VoucherDebitNote  VoucherKind = "DebitNote"
)

// debitVoucherTypes are the adjustment voucher codes of the source system.
// They represent accounting corrections, not sales activity.
var debitVoucherTypes = map[string]bool{
	"ND A": true,
	"ND B": true,
}

// creditNoteQty is the source system's sentinel: a voucher quantity of exactly
// -1 marks a credit note. Any other negative quantity is not one.
const creditNoteQty = -1

// ClassifyVoucher derives the voucher kind from the raw voucher type code and
// voucher quantity. Debit-note detection wins over the credit-note sentinel.
func ClassifyVoucher(voucherType string, voucherQty int) VoucherKind {
	if debitVoucherTypes[strings.ToUpper(strings.TrimSpace(voucherType))] {
		return VoucherDebitNote
	}
	if voucherQty == creditNoteQty {
		return VoucherCreditNote
	}
	return VoucherInvoice
}

// Channel is the sale/purchase modality: declared ("Blanco") or undeclared
// ("Negro"). The string values match the source spreadsheets.
type Channel string

const (
	ChannelDeclared   Channel = "Blanco"
	ChannelUndeclared Channel = "Negro"
)

func ParseChannel(s string) Channel {
	if strings.EqualFold(strings.TrimSpace(s), string(ChannelDeclared)) {
		return ChannelDeclared
	}
	return ChannelUndeclared
}
