package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/domain/shared"
	"github.com/ledgercore/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// AdapterAccounts holds the chart codes the source document adapters post
// against. Defaults follow the Romanian chart of accounts.
type AdapterAccounts struct {
	Customers     string // 411  - clients
	Suppliers     string // 401  - furnizori
	VATCollected  string // 4427 - TVA colectata
	VATDeductible string // 4426 - TVA deductibila
	SalesRevenue  string // 707  - venituri din vanzarea marfurilor
	Bank          string // 5121 - conturi la banci in lei
	Cash          string // 5311 - casa in lei
}

// DefaultAdapterAccounts returns the standard adapter account codes
func DefaultAdapterAccounts() AdapterAccounts {
	return AdapterAccounts{
		Customers:     "411",
		Suppliers:     "401",
		VATCollected:  "4427",
		VATDeductible: "4426",
		SalesRevenue:  "707",
		Bank:          "5121",
		Cash:          "5311",
	}
}

// DocumentService translates source documents into balanced ledger entries.
// It owns no bookkeeping rules of its own: every document becomes a
// CreateEntryRequest and goes through the same validation as a manual entry.
type DocumentService struct {
	entries  *EntryService
	accounts AdapterAccounts
	currency valueobject.Currency
}

// DocumentServiceOption configures a DocumentService
type DocumentServiceOption func(*DocumentService)

// WithDocumentCurrency sets the bookkeeping currency documents are checked
// against. Defaults to valueobject.DefaultCurrency.
func WithDocumentCurrency(currency valueobject.Currency) DocumentServiceOption {
	return func(s *DocumentService) {
		if currency != "" {
			s.currency = currency
		}
	}
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(entries *EntryService, accounts AdapterAccounts, opts ...DocumentServiceOption) *DocumentService {
	s := &DocumentService{
		entries:  entries,
		accounts: accounts,
		currency: valueobject.DefaultCurrency,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// money validates a document amount against the bookkeeping currency.
// Documents may omit the currency; a mismatching one is rejected because the
// ledger carries no revaluation logic.
func (s *DocumentService) money(amount decimal.Decimal, docCurrency string) (valueobject.Money, error) {
	if docCurrency != "" && valueobject.Currency(docCurrency) != s.currency {
		return valueobject.Money{}, shared.NewDomainError("INVALID_INPUT",
			fmt.Sprintf("Amounts must be in %s, got %s", s.currency, docCurrency))
	}
	return valueobject.NewMoney(amount, s.currency)
}

// SalesInvoiceDocument is a sales invoice to be recorded in the ledger
type SalesInvoiceDocument struct {
	InvoiceNumber string          `json:"invoice_number" binding:"required"`
	CustomerName  string          `json:"customer_name" binding:"required"`
	IssueDate     time.Time       `json:"issue_date" binding:"required"`
	NetAmount     decimal.Decimal `json:"net_amount" binding:"required"`
	VATAmount     decimal.Decimal `json:"vat_amount"`
	Currency      string          `json:"currency"`
	// CustomerAccount overrides the default customers account, e.g. an
	// analytic account per customer
	CustomerAccount string     `json:"customer_account"`
	RevenueAccount  string     `json:"revenue_account"`
	ActorID         uuid.UUID  `json:"-"`
	FranchiseID     *uuid.UUID `json:"-"`
}

// PurchaseInvoiceDocument is a supplier invoice to be recorded in the ledger
type PurchaseInvoiceDocument struct {
	InvoiceNumber  string          `json:"invoice_number" binding:"required"`
	SupplierName   string          `json:"supplier_name" binding:"required"`
	IssueDate      time.Time       `json:"issue_date" binding:"required"`
	NetAmount      decimal.Decimal `json:"net_amount" binding:"required"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	Currency       string          `json:"currency"`
	ExpenseAccount string          `json:"expense_account" binding:"required,account_code"`
	// SupplierAccount overrides the default suppliers account
	SupplierAccount string     `json:"supplier_account"`
	ActorID         uuid.UUID  `json:"-"`
	FranchiseID     *uuid.UUID `json:"-"`
}

// BankDirection tags the direction of a bank or cash movement
type BankDirection string

const (
	DirectionIn  BankDirection = "IN"  // money arriving
	DirectionOut BankDirection = "OUT" // money leaving
)

// BankTransactionDocument is one bank statement line to be recorded
type BankTransactionDocument struct {
	StatementRef   string          `json:"statement_ref" binding:"required"`
	Direction      BankDirection   `json:"direction" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Currency       string          `json:"currency"`
	ValueDate      time.Time       `json:"value_date" binding:"required"`
	CounterAccount string          `json:"counter_account" binding:"required,account_code"`
	Memo           string          `json:"memo"`
	ActorID        uuid.UUID       `json:"-"`
	FranchiseID    *uuid.UUID      `json:"-"`
}

// CashOperationDocument is one cash register movement to be recorded
type CashOperationDocument struct {
	ReceiptNumber  string          `json:"receipt_number" binding:"required"`
	Direction      BankDirection   `json:"direction" binding:"required"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Currency       string          `json:"currency"`
	OperationDate  time.Time       `json:"operation_date" binding:"required"`
	CounterAccount string          `json:"counter_account" binding:"required,account_code"`
	Memo           string          `json:"memo"`
	ActorID        uuid.UUID       `json:"-"`
	FranchiseID    *uuid.UUID      `json:"-"`
}

// RecordSalesInvoice books a sales invoice: gross on the customer account,
// net revenue and collected VAT on the credit side.
func (s *DocumentService) RecordSalesInvoice(ctx context.Context, companyID uuid.UUID, doc SalesInvoiceDocument) (*EntryResponse, error) {
	net, err := s.money(doc.NetAmount, doc.Currency)
	if err != nil {
		return nil, err
	}
	vat, err := s.money(doc.VATAmount, doc.Currency)
	if err != nil {
		return nil, err
	}
	if !net.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Net amount must be positive")
	}
	if vat.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "VAT amount cannot be negative")
	}

	customer := orDefault(doc.CustomerAccount, s.accounts.Customers)
	revenue := orDefault(doc.RevenueAccount, s.accounts.SalesRevenue)
	gross := net.MustAdd(vat)

	lines := []EntryLineRequest{
		{Account: ledger.ByCode(customer), Debit: gross.Amount(), Description: doc.CustomerName},
		{Account: ledger.ByCode(revenue), Credit: net.Amount()},
	}
	if vat.IsPositive() {
		lines = append(lines, EntryLineRequest{Account: ledger.ByCode(s.accounts.VATCollected), Credit: vat.Amount()})
	}

	return s.entries.CreateEntry(ctx, companyID, CreateEntryRequest{
		Type:          ledger.EntryTypeSales.String(),
		Description:   fmt.Sprintf("Sales invoice %s - %s", doc.InvoiceNumber, doc.CustomerName),
		EffectiveDate: doc.IssueDate,
		Lines:         lines,
		FranchiseID:   doc.FranchiseID,
		ActorID:       doc.ActorID,
	})
}

// RecordPurchaseInvoice books a supplier invoice: net expense and deductible
// VAT on the debit side, gross on the supplier account.
func (s *DocumentService) RecordPurchaseInvoice(ctx context.Context, companyID uuid.UUID, doc PurchaseInvoiceDocument) (*EntryResponse, error) {
	net, err := s.money(doc.NetAmount, doc.Currency)
	if err != nil {
		return nil, err
	}
	vat, err := s.money(doc.VATAmount, doc.Currency)
	if err != nil {
		return nil, err
	}
	if !net.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Net amount must be positive")
	}
	if vat.IsNegative() {
		return nil, shared.NewDomainError("INVALID_INPUT", "VAT amount cannot be negative")
	}

	supplier := orDefault(doc.SupplierAccount, s.accounts.Suppliers)
	gross := net.MustAdd(vat)

	lines := []EntryLineRequest{
		{Account: ledger.ByCode(doc.ExpenseAccount), Debit: net.Amount()},
	}
	if vat.IsPositive() {
		lines = append(lines, EntryLineRequest{Account: ledger.ByCode(s.accounts.VATDeductible), Debit: vat.Amount()})
	}
	lines = append(lines, EntryLineRequest{Account: ledger.ByCode(supplier), Credit: gross.Amount(), Description: doc.SupplierName})

	return s.entries.CreateEntry(ctx, companyID, CreateEntryRequest{
		Type:          ledger.EntryTypePurchase.String(),
		Description:   fmt.Sprintf("Purchase invoice %s - %s", doc.InvoiceNumber, doc.SupplierName),
		EffectiveDate: doc.IssueDate,
		Lines:         lines,
		FranchiseID:   doc.FranchiseID,
		ActorID:       doc.ActorID,
	})
}

// RecordBankTransaction books one bank statement line against a counter account
func (s *DocumentService) RecordBankTransaction(ctx context.Context, companyID uuid.UUID, doc BankTransactionDocument) (*EntryResponse, error) {
	amount, err := s.money(doc.Amount, doc.Currency)
	if err != nil {
		return nil, err
	}
	lines, err := movementLines(s.accounts.Bank, doc.CounterAccount, doc.Direction, amount, doc.Memo)
	if err != nil {
		return nil, err
	}

	return s.entries.CreateEntry(ctx, companyID, CreateEntryRequest{
		Type:          ledger.EntryTypeBank.String(),
		Description:   fmt.Sprintf("Bank statement %s", doc.StatementRef),
		EffectiveDate: doc.ValueDate,
		Lines:         lines,
		FranchiseID:   doc.FranchiseID,
		ActorID:       doc.ActorID,
	})
}

// RecordCashOperation books one cash register movement against a counter account
func (s *DocumentService) RecordCashOperation(ctx context.Context, companyID uuid.UUID, doc CashOperationDocument) (*EntryResponse, error) {
	amount, err := s.money(doc.Amount, doc.Currency)
	if err != nil {
		return nil, err
	}
	lines, err := movementLines(s.accounts.Cash, doc.CounterAccount, doc.Direction, amount, doc.Memo)
	if err != nil {
		return nil, err
	}

	return s.entries.CreateEntry(ctx, companyID, CreateEntryRequest{
		Type:          ledger.EntryTypeCash.String(),
		Description:   fmt.Sprintf("Cash receipt %s", doc.ReceiptNumber),
		EffectiveDate: doc.OperationDate,
		Lines:         lines,
		FranchiseID:   doc.FranchiseID,
		ActorID:       doc.ActorID,
	})
}

// movementLines builds the two lines of a money movement: the holding
// account on one side, the counter account on the other.
func movementLines(holdingAccount, counterAccount string, direction BankDirection, amount valueobject.Money, memo string) ([]EntryLineRequest, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_INPUT", "Amount must be positive")
	}

	switch direction {
	case DirectionIn:
		return []EntryLineRequest{
			{Account: ledger.ByCode(holdingAccount), Debit: amount.Amount(), Description: memo},
			{Account: ledger.ByCode(counterAccount), Credit: amount.Amount(), Description: memo},
		}, nil
	case DirectionOut:
		return []EntryLineRequest{
			{Account: ledger.ByCode(counterAccount), Debit: amount.Amount(), Description: memo},
			{Account: ledger.ByCode(holdingAccount), Credit: amount.Amount(), Description: memo},
		}, nil
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", fmt.Sprintf("Unknown direction %q", direction))
	}
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}
