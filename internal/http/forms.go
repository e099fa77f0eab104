package http

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator"

	"expensetracker/internal/core"
)

// expenseFormValues holds the add-expense form exactly as submitted so it
// can be echoed back after a validation failure.
type expenseFormValues struct {
	Category string `validate:"required,oneof=Food Travel Shopping Bills Other"`
	Amount   string `validate:"required,amount"`
	Date     string `validate:"required,isodate"`
	Note     string
}

var fieldMessages = map[string]string{
	"Category": "Choose one of the listed categories.",
	"Amount":   "Enter an amount of at least 1.",
	"Date":     "Enter a date as YYYY-MM-DD.",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("amount", func(fl validator.FieldLevel) bool {
		m, err := core.ParseMoney(fl.Field().String())
		return err == nil && m.Validate() == nil
	})
	_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
		_, err := core.ParseDate(fl.Field().String())
		return err == nil
	})
	return v
}

func readExpenseForm(r *http.Request) expenseFormValues {
	return expenseFormValues{
		Category: r.PostFormValue("category"),
		Amount:   strings.TrimSpace(r.PostFormValue("amount")),
		Date:     strings.TrimSpace(r.PostFormValue("date")),
		Note:     r.PostFormValue("note"),
	}
}

// check validates the form and returns one message per invalid field.
func (f expenseFormValues) check() map[string]string {
	err := validate.Struct(f)
	if err == nil {
		return nil
	}
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return map[string]string{"Form": err.Error()}
	}
	out := make(map[string]string, len(errs))
	for _, fe := range errs {
		out[fe.Field()] = fieldMessages[fe.Field()]
	}
	return out
}

// expense converts a form that passed check.
func (f expenseFormValues) expense() (core.Expense, error) {
	amount, err := core.ParseMoney(f.Amount)
	if err != nil {
		return core.Expense{}, err
	}
	date, err := core.ParseDate(f.Date)
	if err != nil {
		return core.Expense{}, err
	}
	return core.Expense{
		Category: core.Category(f.Category),
		Amount:   amount,
		Date:     date,
		Note:     f.Note,
	}, nil
}

func newExpenseForm() expenseFormValues {
	return expenseFormValues{
		Category: core.Food.String(),
		Date:     core.Today().String(),
	}
}
