package ledger

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestYearMonth(t *testing.T) {
	t.Run("of a date", func(t *testing.T) {
		ym := YearMonthOf(time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC))
		assert.Equal(t, YearMonth{Year: 2024, Month: 3}, ym)
	})

	t.Run("ordering", func(t *testing.T) {
		assert.True(t, YearMonth{2024, 2}.Before(YearMonth{2024, 3}))
		assert.True(t, YearMonth{2023, 12}.Before(YearMonth{2024, 1}))
		assert.False(t, YearMonth{2024, 3}.Before(YearMonth{2024, 3}))
		assert.False(t, YearMonth{2024, 4}.Before(YearMonth{2024, 3}))
	})

	t.Run("string form", func(t *testing.T) {
		assert.Equal(t, "2024-03", YearMonth{2024, 3}.String())
	})

	t.Run("month bounds", func(t *testing.T) {
		ym := YearMonth{2024, 12}
		assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, time.UTC), ym.Start())
		assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), ym.End())
	})
}

func TestNewFiscalPeriod(t *testing.T) {
	companyID := uuid.New()

	t.Run("created open", func(t *testing.T) {
		p, err := NewFiscalPeriod(companyID, 2024, 3)
		require.NoError(t, err)
		assert.Equal(t, PeriodStatusOpen, p.Status)
		assert.True(t, p.IsOpen())
		assert.Equal(t, YearMonth{2024, 3}, p.YearMonth())
	})

	t.Run("month out of range rejected", func(t *testing.T) {
		_, err := NewFiscalPeriod(companyID, 2024, 13)
		require.Error(t, err)
		_, err = NewFiscalPeriod(companyID, 2024, 0)
		require.Error(t, err)
	})

	t.Run("year out of range rejected", func(t *testing.T) {
		_, err := NewFiscalPeriod(companyID, 189, 6)
		require.Error(t, err)
	})
}

func TestFiscalPeriodClose(t *testing.T) {
	t.Run("close stamps actor and time", func(t *testing.T) {
		p, err := NewFiscalPeriod(uuid.New(), 2024, 3)
		require.NoError(t, err)
		actor := uuid.New()

		require.NoError(t, p.Close(actor))
		assert.Equal(t, PeriodStatusClosed, p.Status)
		assert.False(t, p.IsOpen())
		require.NotNil(t, p.ClosedBy)
		assert.Equal(t, actor, *p.ClosedBy)
		assert.NotNil(t, p.ClosedAt)
		assert.Equal(t, 2, p.Version)
		assert.Len(t, p.GetDomainEvents(), 1)
	})

	t.Run("closing twice rejected", func(t *testing.T) {
		p, err := NewFiscalPeriod(uuid.New(), 2024, 3)
		require.NoError(t, err)
		require.NoError(t, p.Close(uuid.New()))

		err = p.Close(uuid.New())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "already closed")
	})
}

func TestFiscalPeriodReopen(t *testing.T) {
	t.Run("reopen clears closing stamps", func(t *testing.T) {
		p, err := NewFiscalPeriod(uuid.New(), 2024, 3)
		require.NoError(t, err)
		require.NoError(t, p.Close(uuid.New()))

		require.NoError(t, p.Reopen(uuid.New()))
		assert.Equal(t, PeriodStatusOpen, p.Status)
		assert.Nil(t, p.ClosedAt)
		assert.Nil(t, p.ClosedBy)
	})

	t.Run("reopening an open period rejected", func(t *testing.T) {
		p, err := NewFiscalPeriod(uuid.New(), 2024, 3)
		require.NoError(t, err)

		err = p.Reopen(uuid.New())
		require.Error(t, err)
	})
}
