package ledger

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ledgercore/backend/internal/domain/ledger"
	"github.com/ledgercore/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type entryServiceFixture struct {
	accountRepo *MockAccountRepository
	entryRepo   *MockLedgerEntryRepository
	periodRepo  *MockFiscalPeriodRepository
	service     *EntryService
}

func newEntryServiceFixture(opts ...EntryServiceOption) *entryServiceFixture {
	f := &entryServiceFixture{
		accountRepo: new(MockAccountRepository),
		entryRepo:   new(MockLedgerEntryRepository),
		periodRepo:  new(MockFiscalPeriodRepository),
	}
	txScope := NewNoOpTransactionScope(f.accountRepo, f.entryRepo, f.periodRepo)
	f.service = NewEntryService(txScope, f.accountRepo, f.entryRepo, ledger.NewReversalService(), nil, opts...)
	return f
}

func testAccount(t *testing.T, companyID uuid.UUID, tier ledger.AccountTier, code, name string) *ledger.Account {
	t.Helper()
	var parentID *uuid.UUID
	if tier != ledger.TierClass {
		id := uuid.New()
		parentID = &id
	}
	a, err := ledger.NewAccount(companyID, tier, code, name, parentID)
	require.NoError(t, err)
	return a
}

func openPeriod(t *testing.T, companyID uuid.UUID, year, month int) *ledger.FiscalPeriod {
	t.Helper()
	p, err := ledger.NewFiscalPeriod(companyID, year, month)
	require.NoError(t, err)
	return p
}

func closedPeriod(t *testing.T, companyID uuid.UUID, year, month int) *ledger.FiscalPeriod {
	t.Helper()
	p := openPeriod(t, companyID, year, month)
	require.NoError(t, p.Close(uuid.New()))
	p.ClearDomainEvents()
	return p
}

func saleRequest(actorID uuid.UUID) CreateEntryRequest {
	return CreateEntryRequest{
		Type:          ledger.EntryTypeManual.String(),
		Description:   "customer invoice",
		EffectiveDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		Lines: []EntryLineRequest{
			{Account: ledger.ByCode("411"), Debit: decimal.RequireFromString("1190.00")},
			{Account: ledger.ByCode("4427"), Credit: decimal.RequireFromString("190.00")},
			{Account: ledger.ByCode("707"), Credit: decimal.RequireFromString("1000.00")},
		},
		ActorID: actorID,
	}
}

func TestEntryServiceCreateEntry(t *testing.T) {
	companyID := uuid.New()
	actorID := uuid.New()
	march := ledger.YearMonth{Year: 2024, Month: 3}

	expectSaleAccounts := func(f *entryServiceFixture) {
		f.accountRepo.On("FindByCode", mock.Anything, companyID, "411").
			Return(testAccount(t, companyID, ledger.TierSynthetic, "411", "Clienti"), nil)
		f.accountRepo.On("FindByCode", mock.Anything, companyID, "4427").
			Return(testAccount(t, companyID, ledger.TierAnalytic, "4427", "TVA colectata"), nil)
		f.accountRepo.On("FindByCode", mock.Anything, companyID, "707").
			Return(testAccount(t, companyID, ledger.TierSynthetic, "707", "Venituri"), nil)
	}

	t.Run("creates draft with generated reference", func(t *testing.T) {
		f := newEntryServiceFixture()
		expectSaleAccounts(f)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).
			Return(openPeriod(t, companyID, 2024, 3), nil)
		f.entryRepo.On("GenerateReferenceNumber", mock.Anything, companyID, march).
			Return("LE-202403-000001", nil)
		f.entryRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.CreateEntry(context.Background(), companyID, saleRequest(actorID))
		require.NoError(t, err)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.Equal(t, "LE-202403-000001", resp.ReferenceNumber)
		assert.True(t, resp.TotalDebit.Equal(decimal.RequireFromString("1190.00")))
		assert.Len(t, resp.Lines, 3)
		f.entryRepo.AssertExpectations(t)
	})

	t.Run("creates the period row on first activity of the month", func(t *testing.T) {
		f := newEntryServiceFixture()
		expectSaleAccounts(f)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).Return(nil, nil)
		f.periodRepo.On("FindLatestClosed", mock.Anything, companyID).Return(nil, nil)
		f.periodRepo.On("Save", mock.Anything, mock.MatchedBy(func(p *ledger.FiscalPeriod) bool {
			return p.Year == 2024 && p.Month == 3 && p.IsOpen()
		})).Return(nil)
		f.entryRepo.On("GenerateReferenceNumber", mock.Anything, companyID, march).
			Return("LE-202403-000001", nil)
		f.entryRepo.On("Create", mock.Anything, mock.Anything).Return(nil)

		_, err := f.service.CreateEntry(context.Background(), companyID, saleRequest(actorID))
		require.NoError(t, err)
		f.periodRepo.AssertExpectations(t)
	})

	t.Run("rejects first activity behind the closed frontier", func(t *testing.T) {
		f := newEntryServiceFixture()
		expectSaleAccounts(f)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).Return(nil, nil)
		f.periodRepo.On("FindLatestClosed", mock.Anything, companyID).
			Return(closedPeriod(t, companyID, 2024, 5), nil)

		_, err := f.service.CreateEntry(context.Background(), companyID, saleRequest(actorID))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ledger.ErrCodePeriodClosed, domainErr.Code)
		f.periodRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		f.entryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("auto-posts entries from trusted origins", func(t *testing.T) {
		f := newEntryServiceFixture(WithAutoPostTypes(ledger.EntryTypeSales))
		expectSaleAccounts(f)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).
			Return(openPeriod(t, companyID, 2024, 3), nil)
		f.entryRepo.On("GenerateReferenceNumber", mock.Anything, companyID, march).
			Return("LE-202403-000002", nil)
		f.entryRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.entryRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		req := saleRequest(actorID)
		req.Type = ledger.EntryTypeSales.String()
		resp, err := f.service.CreateEntry(context.Background(), companyID, req)
		require.NoError(t, err)
		assert.Equal(t, "POSTED", resp.Status)
		require.NotNil(t, resp.PostedBy)
		assert.Equal(t, actorID, *resp.PostedBy)
		f.entryRepo.AssertExpectations(t)
	})

	t.Run("rejects closed period", func(t *testing.T) {
		f := newEntryServiceFixture()
		expectSaleAccounts(f)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).
			Return(closedPeriod(t, companyID, 2024, 3), nil)

		_, err := f.service.CreateEntry(context.Background(), companyID, saleRequest(actorID))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ledger.ErrCodePeriodClosed, domainErr.Code)
		f.entryRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects inactive account", func(t *testing.T) {
		f := newEntryServiceFixture()
		inactive := testAccount(t, companyID, ledger.TierSynthetic, "411", "Clienti")
		require.NoError(t, inactive.Deactivate())
		f.accountRepo.On("FindByCode", mock.Anything, companyID, "411").Return(inactive, nil)

		_, err := f.service.CreateEntry(context.Background(), companyID, saleRequest(actorID))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ledger.ErrCodeInactiveAccount, domainErr.Code)
	})

	t.Run("rejects lines against classification nodes", func(t *testing.T) {
		f := newEntryServiceFixture()
		f.accountRepo.On("FindByCode", mock.Anything, companyID, "411").
			Return(testAccount(t, companyID, ledger.TierGroup, "41", "Clienti si asimilate"), nil)

		_, err := f.service.CreateEntry(context.Background(), companyID, saleRequest(actorID))
		require.Error(t, err)
	})

	t.Run("rejects unknown account", func(t *testing.T) {
		f := newEntryServiceFixture()
		f.accountRepo.On("FindByCode", mock.Anything, companyID, "411").Return(nil, nil)

		_, err := f.service.CreateEntry(context.Background(), companyID, saleRequest(actorID))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ledger.ErrCodeAccountNotFound, domainErr.Code)
	})

	t.Run("rejects direct creation of reversal entries", func(t *testing.T) {
		f := newEntryServiceFixture()
		req := saleRequest(actorID)
		req.Type = ledger.EntryTypeReversal.String()

		_, err := f.service.CreateEntry(context.Background(), companyID, req)
		require.Error(t, err)
	})
}

func draftEntryFor(t *testing.T, companyID uuid.UUID) *ledger.LedgerEntry {
	t.Helper()
	e, err := ledger.NewLedgerEntry(companyID, nil, ledger.EntryTypeManual, "customer invoice",
		time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), uuid.New(), []ledger.LineInput{
			{AccountID: uuid.New(), AccountCode: "411", Debit: decimal.RequireFromString("1190.00")},
			{AccountID: uuid.New(), AccountCode: "4427", Credit: decimal.RequireFromString("190.00")},
			{AccountID: uuid.New(), AccountCode: "707", Credit: decimal.RequireFromString("1000.00")},
		})
	require.NoError(t, err)
	require.NoError(t, e.SetReferenceNumber("LE-202403-000007"))
	e.ClearDomainEvents()
	return e
}

func TestEntryServiceUpdateEntry(t *testing.T) {
	companyID := uuid.New()
	march := ledger.YearMonth{Year: 2024, Month: 3}

	t.Run("rewrites the stored lines with the header", func(t *testing.T) {
		f := newEntryServiceFixture()
		entry := draftEntryFor(t, companyID)
		f.entryRepo.On("FindByID", mock.Anything, companyID, entry.ID).Return(entry, nil)
		f.accountRepo.On("FindByCode", mock.Anything, companyID, "411").
			Return(testAccount(t, companyID, ledger.TierSynthetic, "411", "Clienti"), nil)
		f.accountRepo.On("FindByCode", mock.Anything, companyID, "707").
			Return(testAccount(t, companyID, ledger.TierSynthetic, "707", "Venituri"), nil)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).
			Return(openPeriod(t, companyID, 2024, 3), nil)
		f.entryRepo.On("SaveWithLock", mock.Anything, entry).Return(nil)
		f.entryRepo.On("ReplaceLines", mock.Anything, entry).Return(nil)

		resp, err := f.service.UpdateEntry(context.Background(), companyID, entry.ID, UpdateEntryRequest{
			Description:   "customer invoice, corrected",
			EffectiveDate: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			Lines: []EntryLineRequest{
				{Account: ledger.ByCode("411"), Debit: decimal.RequireFromString("500.00")},
				{Account: ledger.ByCode("707"), Credit: decimal.RequireFromString("500.00")},
			},
			Version: entry.Version,
		})
		require.NoError(t, err)
		assert.Len(t, resp.Lines, 2)
		assert.True(t, resp.TotalDebit.Equal(decimal.RequireFromString("500.00")))
		f.entryRepo.AssertCalled(t, "ReplaceLines", mock.Anything, entry)
	})

	t.Run("version conflict skips the line rewrite", func(t *testing.T) {
		f := newEntryServiceFixture()
		entry := draftEntryFor(t, companyID)
		f.entryRepo.On("FindByID", mock.Anything, companyID, entry.ID).Return(entry, nil)

		_, err := f.service.UpdateEntry(context.Background(), companyID, entry.ID, UpdateEntryRequest{
			Description:   "stale",
			EffectiveDate: time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
			Lines: []EntryLineRequest{
				{Account: ledger.ByCode("411"), Debit: decimal.RequireFromString("500.00")},
				{Account: ledger.ByCode("707"), Credit: decimal.RequireFromString("500.00")},
			},
			Version: entry.Version + 1,
		})
		require.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		f.entryRepo.AssertNotCalled(t, "ReplaceLines", mock.Anything, mock.Anything)
	})
}

func TestEntryServicePostEntry(t *testing.T) {
	companyID := uuid.New()
	actorID := uuid.New()
	march := ledger.YearMonth{Year: 2024, Month: 3}

	t.Run("posts a draft", func(t *testing.T) {
		f := newEntryServiceFixture()
		entry := draftEntryFor(t, companyID)
		f.entryRepo.On("FindByID", mock.Anything, companyID, entry.ID).Return(entry, nil)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).
			Return(openPeriod(t, companyID, 2024, 3), nil)
		f.entryRepo.On("SaveWithLock", mock.Anything, entry).Return(nil)

		resp, err := f.service.PostEntry(context.Background(), companyID, entry.ID, actorID, entry.Version)
		require.NoError(t, err)
		assert.Equal(t, "POSTED", resp.Status)
		f.entryRepo.AssertExpectations(t)
	})

	t.Run("stale version conflicts", func(t *testing.T) {
		f := newEntryServiceFixture()
		entry := draftEntryFor(t, companyID)
		f.entryRepo.On("FindByID", mock.Anything, companyID, entry.ID).Return(entry, nil)

		_, err := f.service.PostEntry(context.Background(), companyID, entry.ID, actorID, entry.Version+1)
		require.ErrorIs(t, err, shared.ErrConcurrencyConflict)
		f.entryRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("posting into a closed period rejected", func(t *testing.T) {
		f := newEntryServiceFixture()
		entry := draftEntryFor(t, companyID)
		f.entryRepo.On("FindByID", mock.Anything, companyID, entry.ID).Return(entry, nil)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).
			Return(closedPeriod(t, companyID, 2024, 3), nil)

		_, err := f.service.PostEntry(context.Background(), companyID, entry.ID, actorID, 0)
		require.Error(t, err)
		assert.Equal(t, ledger.EntryStatusDraft, entry.Status)
	})

	t.Run("unknown entry", func(t *testing.T) {
		f := newEntryServiceFixture()
		id := uuid.New()
		f.entryRepo.On("FindByID", mock.Anything, companyID, id).Return(nil, nil)

		_, err := f.service.PostEntry(context.Background(), companyID, id, actorID, 0)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "NOT_FOUND", domainErr.Code)
	})
}

func TestEntryServiceUnpostEntry(t *testing.T) {
	companyID := uuid.New()
	actorID := uuid.New()
	march := ledger.YearMonth{Year: 2024, Month: 3}

	t.Run("demotes a posted entry", func(t *testing.T) {
		f := newEntryServiceFixture()
		entry := draftEntryFor(t, companyID)
		require.NoError(t, entry.Post(uuid.New()))
		entry.ClearDomainEvents()
		f.entryRepo.On("FindByID", mock.Anything, companyID, entry.ID).Return(entry, nil)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).
			Return(openPeriod(t, companyID, 2024, 3), nil)
		f.entryRepo.On("SaveWithLock", mock.Anything, entry).Return(nil)

		resp, err := f.service.UnpostEntry(context.Background(), companyID, entry.ID, actorID, 0)
		require.NoError(t, err)
		assert.Equal(t, "DRAFT", resp.Status)
		assert.Nil(t, resp.PostedAt)
	})

	t.Run("closed period blocks unposting", func(t *testing.T) {
		f := newEntryServiceFixture()
		entry := draftEntryFor(t, companyID)
		require.NoError(t, entry.Post(uuid.New()))
		entry.ClearDomainEvents()
		f.entryRepo.On("FindByID", mock.Anything, companyID, entry.ID).Return(entry, nil)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).
			Return(closedPeriod(t, companyID, 2024, 3), nil)

		_, err := f.service.UnpostEntry(context.Background(), companyID, entry.ID, actorID, 0)
		require.Error(t, err)
		assert.Equal(t, ledger.EntryStatusPosted, entry.Status)
	})

	t.Run("disabled by configuration", func(t *testing.T) {
		f := newEntryServiceFixture(WithUnpostDisabled())
		entry := draftEntryFor(t, companyID)
		require.NoError(t, entry.Post(uuid.New()))
		entry.ClearDomainEvents()

		_, err := f.service.UnpostEntry(context.Background(), companyID, entry.ID, actorID, 0)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "UNPOST_DISABLED", domainErr.Code)
		f.entryRepo.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestEntryServiceReverseEntry(t *testing.T) {
	companyID := uuid.New()
	actorID := uuid.New()
	march := ledger.YearMonth{Year: 2024, Month: 3}

	postedEntry := func() *ledger.LedgerEntry {
		e := draftEntryFor(t, companyID)
		require.NoError(t, e.Post(uuid.New()))
		e.ClearDomainEvents()
		return e
	}

	t.Run("creates and posts the compensating entry", func(t *testing.T) {
		f := newEntryServiceFixture()
		original := postedEntry()
		f.entryRepo.On("FindByID", mock.Anything, companyID, original.ID).Return(original, nil)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).
			Return(openPeriod(t, companyID, 2024, 3), nil)
		f.entryRepo.On("GenerateReferenceNumber", mock.Anything, companyID, march).
			Return("LE-202403-000008", nil)
		f.entryRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.entryRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.ReverseEntry(context.Background(), companyID, original.ID, ReverseEntryRequest{
			Reason:  "duplicate invoice",
			ActorID: actorID,
		})
		require.NoError(t, err)
		assert.Equal(t, ledger.EntryTypeReversal.String(), resp.Type)
		assert.Equal(t, "POSTED", resp.Status)
		require.NotNil(t, resp.ReversalOfEntryID)
		assert.Equal(t, original.ID, *resp.ReversalOfEntryID)
		assert.Equal(t, ledger.EntryStatusReversed, original.Status)
		require.Len(t, resp.Lines, 3)
		assert.True(t, resp.Lines[0].CreditAmount.Equal(decimal.RequireFromString("1190.00")))
		assert.True(t, resp.Lines[1].DebitAmount.Equal(decimal.RequireFromString("190.00")))
		f.entryRepo.AssertExpectations(t)
	})

	t.Run("second reversal rejected", func(t *testing.T) {
		f := newEntryServiceFixture()
		original := postedEntry()
		require.NoError(t, original.MarkReversed(uuid.New(), "first"))
		original.ClearDomainEvents()
		f.entryRepo.On("FindByID", mock.Anything, companyID, original.ID).Return(original, nil)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).
			Return(openPeriod(t, companyID, 2024, 3), nil)

		_, err := f.service.ReverseEntry(context.Background(), companyID, original.ID, ReverseEntryRequest{
			Reason:  "second",
			ActorID: actorID,
		})
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, ledger.ErrCodeNotPosted, domainErr.Code)
	})

	t.Run("closed period blocks the reversal", func(t *testing.T) {
		f := newEntryServiceFixture()
		original := postedEntry()
		f.entryRepo.On("FindByID", mock.Anything, companyID, original.ID).Return(original, nil)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, march).
			Return(closedPeriod(t, companyID, 2024, 3), nil)

		_, err := f.service.ReverseEntry(context.Background(), companyID, original.ID, ReverseEntryRequest{
			Reason:  "late",
			ActorID: actorID,
		})
		require.Error(t, err)
		assert.Equal(t, ledger.EntryStatusPosted, original.Status)
	})

	t.Run("today dating reverses into the current month", func(t *testing.T) {
		f := &entryServiceFixture{
			accountRepo: new(MockAccountRepository),
			entryRepo:   new(MockLedgerEntryRepository),
			periodRepo:  new(MockFiscalPeriodRepository),
		}
		today := time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)
		reversals := ledger.NewReversalService(
			ledger.WithReversalDating(ledger.ReversalDatingToday),
			ledger.WithClock(func() time.Time { return today }),
		)
		txScope := NewNoOpTransactionScope(f.accountRepo, f.entryRepo, f.periodRepo)
		f.service = NewEntryService(txScope, f.accountRepo, f.entryRepo, reversals, nil)

		may := ledger.YearMonth{Year: 2024, Month: 5}
		original := postedEntry()
		f.entryRepo.On("FindByID", mock.Anything, companyID, original.ID).Return(original, nil)
		f.periodRepo.On("FindByMonthForUpdate", mock.Anything, companyID, may).
			Return(openPeriod(t, companyID, 2024, 5), nil)
		f.entryRepo.On("GenerateReferenceNumber", mock.Anything, companyID, may).
			Return("LE-202405-000001", nil)
		f.entryRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		f.entryRepo.On("SaveWithLock", mock.Anything, mock.Anything).Return(nil)

		resp, err := f.service.ReverseEntry(context.Background(), companyID, original.ID, ReverseEntryRequest{
			Reason:  "found in may",
			ActorID: actorID,
		})
		require.NoError(t, err)
		assert.Equal(t, today, resp.EffectiveDate)
		f.periodRepo.AssertExpectations(t)
	})
}
