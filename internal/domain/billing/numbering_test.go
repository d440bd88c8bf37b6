package billing

import (
	"errors"
	"testing"

	"github.com/bizdocs/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "QUOTE-2024-001", FormatNumber(PrefixQuotation, 2024, 1))
	assert.Equal(t, "INV-2025-042", FormatNumber(PrefixInvoice, 2025, 42))
	assert.Equal(t, "RCT-2024-999", FormatNumber(PrefixReceipt, 2024, 999))
	assert.Equal(t, "RCT-2024-1000", FormatNumber(PrefixReceipt, 2024, 1000), "wider sequences are not truncated")
	assert.Equal(t, "INV-2024-", YearPrefix(PrefixInvoice, 2024))
}

func TestParseNumber(t *testing.T) {
	t.Run("valid numbers", func(t *testing.T) {
		n, err := ParseNumber("QUOTE-2024-007")
		require.NoError(t, err)
		assert.Equal(t, DocumentNumber{Prefix: PrefixQuotation, Year: 2024, Sequence: 7}, n)
		assert.Equal(t, "QUOTE-2024-007", n.String())

		n, err = ParseNumber("INV-2024-1234")
		require.NoError(t, err)
		assert.Equal(t, 1234, n.Sequence)
	})

	corrupt := []string{
		"",
		"QUOTE-2024",
		"QUOTE-2024-abc",
		"QUOTE-2024-01",
		"QUOTE-2024-+12",
		"QUOTE-24-001",
		"BILL-2024-001",
		"QUOTE-2024-000",
		"QUOTE-2024-001-x",
	}
	for _, number := range corrupt {
		t.Run("corrupt "+number, func(t *testing.T) {
			_, err := ParseNumber(number)
			require.Error(t, err)
			var integrity *shared.IntegrityError
			assert.True(t, errors.As(err, &integrity), "expected IntegrityError, got %T", err)
		})
	}
}

func TestParseSequence(t *testing.T) {
	seq, err := ParseSequence("INV-2024-", "INV-2024-015")
	require.NoError(t, err)
	assert.Equal(t, 15, seq)

	_, err = ParseSequence("INV-2024-", "INV-2023-015")
	var integrity *shared.IntegrityError
	assert.ErrorAs(t, err, &integrity)

	_, err = ParseSequence("INV-2024-", "INV-2024-XYZ")
	assert.ErrorAs(t, err, &integrity)
}

func TestPrefix_IsValid(t *testing.T) {
	assert.True(t, PrefixQuotation.IsValid())
	assert.True(t, PrefixInvoice.IsValid())
	assert.True(t, PrefixReceipt.IsValid())
	assert.False(t, Prefix("PO").IsValid())
}
