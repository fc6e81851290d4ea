package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	ledgerapp "github.com/ledgercore/backend/internal/application/ledger"
	"github.com/ledgercore/backend/internal/domain/ledger"
)

// documentHandler builds a DocumentHandler whose entry engine auto-posts
// source document origins, mirroring the production wiring.
func documentHandler(f *entryHandlerFixture) *DocumentHandler {
	txScope := ledgerapp.NewNoOpTransactionScope(f.accountRepo, f.entryRepo, f.periodRepo)
	entries := ledgerapp.NewEntryService(txScope, f.accountRepo, f.entryRepo,
		ledger.NewReversalService(), f.eventBus,
		ledgerapp.WithAutoPostTypes(ledger.EntryTypeSales, ledger.EntryTypePurchase,
			ledger.EntryTypeBank, ledger.EntryTypeCash))
	return NewDocumentHandler(ledgerapp.NewDocumentService(entries, ledgerapp.DefaultAdapterAccounts()))
}

func (f *entryHandlerFixture) stubAccounts(t *testing.T, codes ...string) {
	t.Helper()
	for _, code := range codes {
		account := mustTestAccount(t, ledger.TierSynthetic, code, "Account "+code, nil)
		f.accountRepo.On("FindByCode", mock.Anything, testCompanyID, code).Return(account, nil)
	}
}

func (f *entryHandlerFixture) stubEntryCreation(t *testing.T, reference string) {
	t.Helper()
	f.periodRepo.On("FindByMonthForUpdate", mock.Anything, testCompanyID, mock.Anything).
		Return(openPeriod(t, 2024, 3), nil)
	f.entryRepo.On("GenerateReferenceNumber", mock.Anything, testCompanyID, mock.Anything).
		Return(reference, nil)
	f.entryRepo.On("Create", mock.Anything, mock.AnythingOfType("*ledger.LedgerEntry")).Return(nil)
	f.entryRepo.On("SaveWithLock", mock.Anything, mock.AnythingOfType("*ledger.LedgerEntry")).Return(nil)
	f.eventBus.On("Publish", mock.Anything, mock.Anything).Return(nil)
}

func TestDocumentHandler_RecordSalesInvoice(t *testing.T) {
	issueDate := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)

	t.Run("books gross against revenue and VAT", func(t *testing.T) {
		f := newEntryFixture()
		r := newTestRouter(documentHandler(f))

		f.stubAccounts(t, "411", "707", "4427")
		f.stubEntryCreation(t, "LE-202403-000007")

		w := performJSON(t, r, http.MethodPost, "/api/v1/documents/sales-invoices", SalesInvoiceRequest{
			InvoiceNumber: "2024-0042",
			CustomerName:  "Acme SRL",
			IssueDate:     issueDate,
			NetAmount:     decimal.RequireFromString("100.00"),
			VATAmount:     decimal.RequireFromString("19.00"),
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := decodeResponse(t, w)["data"].(map[string]any)
		assert.Equal(t, "SALES", data["type"])
		assert.Equal(t, "POSTED", data["status"])
		assert.Equal(t, "LE-202403-000007", data["reference_number"])

		lines := data["lines"].([]any)
		require.Len(t, lines, 3)
		debit := lines[0].(map[string]any)
		assert.Equal(t, "411", debit["account_code"])
		assert.Equal(t, "119", debit["debit_amount"])
	})

	t.Run("zero VAT books two lines", func(t *testing.T) {
		f := newEntryFixture()
		r := newTestRouter(documentHandler(f))

		f.stubAccounts(t, "411", "707")
		f.stubEntryCreation(t, "LE-202403-000008")

		w := performJSON(t, r, http.MethodPost, "/api/v1/documents/sales-invoices", SalesInvoiceRequest{
			InvoiceNumber: "2024-0043",
			CustomerName:  "Beta SRL",
			IssueDate:     issueDate,
			NetAmount:     decimal.RequireFromString("50.00"),
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := decodeResponse(t, w)["data"].(map[string]any)
		assert.Len(t, data["lines"].([]any), 2)
	})

	t.Run("analytic customer account override", func(t *testing.T) {
		f := newEntryFixture()
		r := newTestRouter(documentHandler(f))

		f.stubAccounts(t, "707", "4427")
		analytic := mustTestAccount(t, ledger.TierAnalytic, "411.01", "Acme SRL", nil)
		f.accountRepo.On("FindByCode", mock.Anything, testCompanyID, "411.01").Return(analytic, nil)
		f.stubEntryCreation(t, "LE-202403-000009")

		w := performJSON(t, r, http.MethodPost, "/api/v1/documents/sales-invoices", SalesInvoiceRequest{
			InvoiceNumber:   "2024-0044",
			CustomerName:    "Acme SRL",
			IssueDate:       issueDate,
			NetAmount:       decimal.RequireFromString("100.00"),
			VATAmount:       decimal.RequireFromString("19.00"),
			CustomerAccount: "411.01",
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := decodeResponse(t, w)["data"].(map[string]any)
		first := data["lines"].([]any)[0].(map[string]any)
		assert.Equal(t, "411.01", first["account_code"])
	})

	t.Run("foreign currency rejected", func(t *testing.T) {
		f := newEntryFixture()
		r := newTestRouter(documentHandler(f))

		w := performJSON(t, r, http.MethodPost, "/api/v1/documents/sales-invoices", SalesInvoiceRequest{
			InvoiceNumber: "2024-0046",
			CustomerName:  "Acme SRL",
			IssueDate:     issueDate,
			NetAmount:     decimal.RequireFromString("100.00"),
			Currency:      "EUR",
		})

		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Equal(t, "INVALID_INPUT", errorCode(t, w))
	})

	t.Run("non-positive net amount rejected", func(t *testing.T) {
		f := newEntryFixture()
		r := newTestRouter(documentHandler(f))

		w := performJSON(t, r, http.MethodPost, "/api/v1/documents/sales-invoices", SalesInvoiceRequest{
			InvoiceNumber: "2024-0045",
			CustomerName:  "Acme SRL",
			IssueDate:     issueDate,
			NetAmount:     decimal.RequireFromString("-5.00"),
		})

		require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		assert.Equal(t, "INVALID_INPUT", errorCode(t, w))
	})
}

func TestDocumentHandler_RecordPurchaseInvoice(t *testing.T) {
	f := newEntryFixture()
	r := newTestRouter(documentHandler(f))

	f.stubAccounts(t, "604", "4426", "401")
	f.stubEntryCreation(t, "LE-202403-000010")

	w := performJSON(t, r, http.MethodPost, "/api/v1/documents/purchase-invoices", PurchaseInvoiceRequest{
		InvoiceNumber:  "F-1001",
		SupplierName:   "Gamma SRL",
		IssueDate:      time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC),
		NetAmount:      decimal.RequireFromString("200.00"),
		VATAmount:      decimal.RequireFromString("38.00"),
		ExpenseAccount: "604",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "PURCHASE", data["type"])
	lines := data["lines"].([]any)
	require.Len(t, lines, 3)
	supplier := lines[2].(map[string]any)
	assert.Equal(t, "401", supplier["account_code"])
	assert.Equal(t, "238", supplier["credit_amount"])
}

func TestDocumentHandler_RecordBankTransaction(t *testing.T) {
	t.Run("incoming payment debits the bank", func(t *testing.T) {
		f := newEntryFixture()
		r := newTestRouter(documentHandler(f))

		f.stubAccounts(t, "5121", "411")
		f.stubEntryCreation(t, "LE-202403-000011")

		w := performJSON(t, r, http.MethodPost, "/api/v1/documents/bank-transactions", BankTransactionRequest{
			StatementRef:   "EXT-2024-88",
			Direction:      "IN",
			Amount:         decimal.RequireFromString("119.00"),
			ValueDate:      time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			CounterAccount: "411",
			Memo:           "Invoice 2024-0042 settled",
		})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		data := decodeResponse(t, w)["data"].(map[string]any)
		assert.Equal(t, "BANK", data["type"])
		lines := data["lines"].([]any)
		require.Len(t, lines, 2)
		assert.Equal(t, "5121", lines[0].(map[string]any)["account_code"])
		assert.Equal(t, "119", lines[0].(map[string]any)["debit_amount"])
	})

	t.Run("unknown direction rejected by binding", func(t *testing.T) {
		f := newEntryFixture()
		r := newTestRouter(documentHandler(f))

		w := performJSON(t, r, http.MethodPost, "/api/v1/documents/bank-transactions", BankTransactionRequest{
			StatementRef:   "EXT-2024-89",
			Direction:      "SIDEWAYS",
			Amount:         decimal.RequireFromString("10.00"),
			ValueDate:      time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			CounterAccount: "411",
		})

		require.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDocumentHandler_RecordCashOperation(t *testing.T) {
	f := newEntryFixture()
	r := newTestRouter(documentHandler(f))

	f.stubAccounts(t, "5311", "707")
	f.stubEntryCreation(t, "LE-202403-000012")

	w := performJSON(t, r, http.MethodPost, "/api/v1/documents/cash-operations", CashOperationRequest{
		ReceiptNumber:  "BON-555",
		Direction:      "IN",
		Amount:         decimal.RequireFromString("45.50"),
		OperationDate:  time.Date(2024, 3, 21, 0, 0, 0, 0, time.UTC),
		CounterAccount: "707",
	})

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := decodeResponse(t, w)["data"].(map[string]any)
	assert.Equal(t, "CASH", data["type"])
	assert.Equal(t, "POSTED", data["status"])
	lines := data["lines"].([]any)
	require.Len(t, lines, 2)
	assert.Equal(t, "5311", lines[0].(map[string]any)["account_code"])
}
