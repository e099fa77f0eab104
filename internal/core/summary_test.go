package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func breakdownMap(rows []CategoryAmount) map[Category]string {
	out := make(map[Category]string, len(rows))
	for _, r := range rows {
		out[r.Category] = r.Amount.String()
	}
	return out
}

func TestSummarizeLifecycle(t *testing.T) {
	expenses := []Expense{
		{Category: Food, Amount: MoneyFromInt(120), Date: NewDate(2024, 1, 5)},
		{Category: Travel, Amount: MoneyFromInt(80), Date: NewDate(2024, 1, 6), Note: "taxi"},
	}
	s := Summarize(expenses)
	assert.Equal(t, 2, s.Count)
	assert.Equal(t, "200", s.Total.String())
	assert.Equal(t, map[Category]string{Food: "120", Travel: "80"}, breakdownMap(s.ByCategory))
}

func TestBreakdownSumsToTotal(t *testing.T) {
	amounts := []string{"10.10", "0.20", "3", "99.99", "1.01", "7"}
	cats := []Category{Food, Food, Bills, Other, Food, Bills}
	var expenses []Expense
	for i, a := range amounts {
		m, err := ParseMoney(a)
		require.NoError(t, err)
		expenses = append(expenses, Expense{Category: cats[i], Amount: m, Date: NewDate(2024, 3, i+1)})
	}

	rows := Breakdown(expenses)
	var sum Money
	for _, r := range rows {
		sum = sum.Plus(r.Amount)
	}
	assert.True(t, sum.Equal(Total(expenses).Decimal), "breakdown %s != total %s", sum, Total(expenses))
	assert.Equal(t, "121.3", Total(expenses).String())

	require.Len(t, rows, 3)
	assert.Equal(t, []Category{Food, Bills, Other}, []Category{rows[0].Category, rows[1].Category, rows[2].Category})
	assert.Equal(t, "11.31", rows[0].Amount.String())
}

func TestSummarizeEmpty(t *testing.T) {
	s := Summarize(nil)
	assert.Zero(t, s.Count)
	assert.Equal(t, "0", s.Total.String())
	assert.Empty(t, s.ByCategory)
	assert.NotNil(t, s.ByCategory)
}
