package core

// CategoryAmount represents an amount aggregated by category.
type CategoryAmount struct {
	Category Category `json:"category"`
	Amount   Money    `json:"amount"`
}

// Summary is the derived view of one user's expense log.
type Summary struct {
	Count      int              `json:"count"`
	Total      Money            `json:"total"`
	ByCategory []CategoryAmount `json:"by_category"`
}

// Total sums every amount in the sequence.
func Total(expenses []Expense) Money {
	var total Money
	for _, e := range expenses {
		total = total.Plus(e.Amount)
	}
	return total
}

// Breakdown sums amounts per category. Only categories present in the
// sequence appear, ordered by first appearance.
func Breakdown(expenses []Expense) []CategoryAmount {
	index := make(map[Category]int)
	out := make([]CategoryAmount, 0)
	for _, e := range expenses {
		i, ok := index[e.Category]
		if !ok {
			index[e.Category] = len(out)
			out = append(out, CategoryAmount{Category: e.Category, Amount: e.Amount})
			continue
		}
		out[i].Amount = out[i].Amount.Plus(e.Amount)
	}
	return out
}

// Summarize computes the total and category breakdown in one pass over the data.
func Summarize(expenses []Expense) Summary {
	return Summary{
		Count:      len(expenses),
		Total:      Total(expenses),
		ByCategory: Breakdown(expenses),
	}
}
