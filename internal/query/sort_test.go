package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategorySort(t *testing.T) {
	tests := []struct {
		in   string
		want CategorySortField
	}{
		{"", CategorySortID},
		{"id", CategorySortID},
		{"ID", CategorySortID},
		{"Name", CategorySortName},
		{"  name ", CategorySortName},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			s, err := ParseCategorySort(tt.in, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s.Field)
			assert.True(t, s.Descending)
		})
	}

	_, err := ParseCategorySort("amount", false)
	assert.ErrorIs(t, err, ErrUnknownSortField)
}

func TestParseTransactionSort(t *testing.T) {
	for _, name := range AcceptedTransactionSortFields() {
		s, err := ParseTransactionSort(name, false)
		require.NoError(t, err, name)
		assert.Equal(t, name, s.Field.String())
	}

	s, err := ParseTransactionSort("DATE", false)
	require.NoError(t, err)
	assert.Equal(t, TransactionSortDate, s.Field)

	_, err = ParseTransactionSort("name", false)
	assert.ErrorIs(t, err, ErrUnknownSortField)
}

func TestAcceptedCategorySortFieldsRoundTrip(t *testing.T) {
	for _, name := range AcceptedCategorySortFields() {
		s, err := ParseCategorySort(name, false)
		require.NoError(t, err)
		assert.Equal(t, name, s.Field.String())
	}
}

func TestAcceptedSortFieldsFollowTheLookupTables(t *testing.T) {
	assert.Equal(t, []string{"id", "name"}, AcceptedCategorySortFields())
	assert.Equal(t, []string{"id", "category", "amount", "date"}, AcceptedTransactionSortFields())
	assert.Len(t, AcceptedCategorySortFields(), len(categorySortNames))
	assert.Len(t, AcceptedTransactionSortFields(), len(transactionSortNames))
}
