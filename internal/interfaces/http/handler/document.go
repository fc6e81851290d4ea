package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ledgerapp "github.com/ledgercore/backend/internal/application/ledger"
	"github.com/ledgercore/backend/internal/interfaces/http/middleware"
)

// DocumentHandler handles source document API endpoints. Each endpoint
// translates one business document into a balanced ledger entry.
type DocumentHandler struct {
	BaseHandler
	documents *ledgerapp.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler
func NewDocumentHandler(documents *ledgerapp.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// RegisterRoutes registers the source document routes
func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group("/documents")
	group.POST("/sales-invoices", h.RecordSalesInvoice)
	group.POST("/purchase-invoices", h.RecordPurchaseInvoice)
	group.POST("/bank-transactions", h.RecordBankTransaction)
	group.POST("/cash-operations", h.RecordCashOperation)
}

func (h *DocumentHandler) identity(c *gin.Context) (companyID, actorID uuid.UUID, ok bool) {
	companyID, err := getCompanyID(c)
	if err != nil {
		h.Unauthorized(c, "Company identity is required")
		return uuid.Nil, uuid.Nil, false
	}
	actorID, err = getActorID(c)
	if err != nil {
		h.Unauthorized(c, "Actor identity is required")
		return uuid.Nil, uuid.Nil, false
	}
	return companyID, actorID, true
}

// SalesInvoiceRequest represents a sales invoice to be booked
type SalesInvoiceRequest struct {
	InvoiceNumber   string          `json:"invoice_number" binding:"required,max=50"`
	CustomerName    string          `json:"customer_name" binding:"required,max=200"`
	IssueDate       time.Time       `json:"issue_date" binding:"required"`
	NetAmount       decimal.Decimal `json:"net_amount" binding:"required"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	Currency        string          `json:"currency" binding:"omitempty,max=3"`
	CustomerAccount string          `json:"customer_account" binding:"omitempty,account_code"`
	RevenueAccount  string          `json:"revenue_account" binding:"omitempty,account_code"`
	FranchiseID     *uuid.UUID      `json:"franchise_id"`
}

// RecordSalesInvoice books a sales invoice into the ledger
func (h *DocumentHandler) RecordSalesInvoice(c *gin.Context) {
	companyID, actorID, ok := h.identity(c)
	if !ok {
		return
	}

	var req SalesInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entry, err := h.documents.RecordSalesInvoice(c.Request.Context(), companyID, ledgerapp.SalesInvoiceDocument{
		InvoiceNumber:   req.InvoiceNumber,
		CustomerName:    req.CustomerName,
		IssueDate:       req.IssueDate,
		NetAmount:       req.NetAmount,
		VATAmount:       req.VATAmount,
		Currency:        req.Currency,
		CustomerAccount: req.CustomerAccount,
		RevenueAccount:  req.RevenueAccount,
		ActorID:         actorID,
		FranchiseID:     req.FranchiseID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, entry)
}

// PurchaseInvoiceRequest represents a supplier invoice to be booked
type PurchaseInvoiceRequest struct {
	InvoiceNumber   string          `json:"invoice_number" binding:"required,max=50"`
	SupplierName    string          `json:"supplier_name" binding:"required,max=200"`
	IssueDate       time.Time       `json:"issue_date" binding:"required"`
	NetAmount       decimal.Decimal `json:"net_amount" binding:"required"`
	VATAmount       decimal.Decimal `json:"vat_amount"`
	Currency        string          `json:"currency" binding:"omitempty,max=3"`
	ExpenseAccount  string          `json:"expense_account" binding:"required,account_code"`
	SupplierAccount string          `json:"supplier_account" binding:"omitempty,account_code"`
	FranchiseID     *uuid.UUID      `json:"franchise_id"`
}

// RecordPurchaseInvoice books a supplier invoice into the ledger
func (h *DocumentHandler) RecordPurchaseInvoice(c *gin.Context) {
	companyID, actorID, ok := h.identity(c)
	if !ok {
		return
	}

	var req PurchaseInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entry, err := h.documents.RecordPurchaseInvoice(c.Request.Context(), companyID, ledgerapp.PurchaseInvoiceDocument{
		InvoiceNumber:   req.InvoiceNumber,
		SupplierName:    req.SupplierName,
		IssueDate:       req.IssueDate,
		NetAmount:       req.NetAmount,
		VATAmount:       req.VATAmount,
		Currency:        req.Currency,
		ExpenseAccount:  req.ExpenseAccount,
		SupplierAccount: req.SupplierAccount,
		ActorID:         actorID,
		FranchiseID:     req.FranchiseID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, entry)
}

// BankTransactionRequest represents one bank statement line to be booked
type BankTransactionRequest struct {
	StatementRef   string          `json:"statement_ref" binding:"required,max=50"`
	Direction      string          `json:"direction" binding:"required,oneof=IN OUT"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Currency       string          `json:"currency" binding:"omitempty,max=3"`
	ValueDate      time.Time       `json:"value_date" binding:"required"`
	CounterAccount string          `json:"counter_account" binding:"required,account_code"`
	Memo           string          `json:"memo" binding:"max=500"`
	FranchiseID    *uuid.UUID      `json:"franchise_id"`
}

// RecordBankTransaction books one bank statement line into the ledger
func (h *DocumentHandler) RecordBankTransaction(c *gin.Context) {
	companyID, actorID, ok := h.identity(c)
	if !ok {
		return
	}

	var req BankTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entry, err := h.documents.RecordBankTransaction(c.Request.Context(), companyID, ledgerapp.BankTransactionDocument{
		StatementRef:   req.StatementRef,
		Direction:      ledgerapp.BankDirection(req.Direction),
		Amount:         req.Amount,
		Currency:       req.Currency,
		ValueDate:      req.ValueDate,
		CounterAccount: req.CounterAccount,
		Memo:           req.Memo,
		ActorID:        actorID,
		FranchiseID:    req.FranchiseID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, entry)
}

// CashOperationRequest represents one cash register movement to be booked
type CashOperationRequest struct {
	ReceiptNumber  string          `json:"receipt_number" binding:"required,max=50"`
	Direction      string          `json:"direction" binding:"required,oneof=IN OUT"`
	Amount         decimal.Decimal `json:"amount" binding:"required"`
	Currency       string          `json:"currency" binding:"omitempty,max=3"`
	OperationDate  time.Time       `json:"operation_date" binding:"required"`
	CounterAccount string          `json:"counter_account" binding:"required,account_code"`
	Memo           string          `json:"memo" binding:"max=500"`
	FranchiseID    *uuid.UUID      `json:"franchise_id"`
}

// RecordCashOperation books one cash register movement into the ledger
func (h *DocumentHandler) RecordCashOperation(c *gin.Context) {
	companyID, actorID, ok := h.identity(c)
	if !ok {
		return
	}

	var req CashOperationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	entry, err := h.documents.RecordCashOperation(c.Request.Context(), companyID, ledgerapp.CashOperationDocument{
		ReceiptNumber:  req.ReceiptNumber,
		Direction:      ledgerapp.BankDirection(req.Direction),
		Amount:         req.Amount,
		Currency:       req.Currency,
		OperationDate:  req.OperationDate,
		CounterAccount: req.CounterAccount,
		Memo:           req.Memo,
		ActorID:        actorID,
		FranchiseID:    req.FranchiseID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, entry)
}
