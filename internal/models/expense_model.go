package models

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// Category is one of the fixed expense categories offered by the entry form.
type Category string

const (
	CategoryFood          Category = "Food"
	CategoryPetrol        Category = "Petrol"
	CategorySalary        Category = "Salary"
	CategoryEntertainment Category = "Entertainment"
	CategoryGroceries     Category = "Groceries"
	CategoryOther         Category = "Other"
)

// Categories lists the accepted categories in the order the form shows them.
var Categories = []Category{
	CategoryFood,
	CategoryPetrol,
	CategorySalary,
	CategoryEntertainment,
	CategoryGroceries,
	CategoryOther,
}

// Valid reports whether c is one of Categories.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// Expense is a single confirmed expense record.
// ID is assigned by the realtime database on create and is never guessed locally.
type Expense struct {
	ID          string          `json:"id"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	Category    Category        `json:"category"`
	Timestamp   int64           `json:"timestamp"` // creation time, unix milliseconds
}

// ExpenseDraft carries the fields of an expense before the store has assigned an ID.
type ExpenseDraft struct {
	Amount      decimal.Decimal
	Description string
	Category    Category
	Timestamp   int64
}

// WithID turns a draft into a record carrying the given store key.
func (d ExpenseDraft) WithID(id string) Expense {
	return Expense{
		ID:          id,
		Amount:      d.Amount,
		Description: d.Description,
		Category:    d.Category,
		Timestamp:   d.Timestamp,
	}
}

// FormattedAmount renders the amount the way the expense list shows it.
func (e Expense) FormattedAmount() string {
	return "₹ " + e.Amount.StringFixed(2)
}

// CreatedAt converts the millisecond timestamp to a time.Time.
func (e Expense) CreatedAt() time.Time {
	return time.UnixMilli(e.Timestamp)
}

// NowMillis returns the current time in unix milliseconds, the unit used for
// expense timestamps and profile updatedAt values.
func NowMillis() int64 {
	return time.Now().UnixMilli()
}

// SortNewestFirst orders expenses by descending timestamp. Equal timestamps
// fall back to ascending ID so the order is total and stable across reloads.
func SortNewestFirst(list []Expense) {
	sort.SliceStable(list, func(i, j int) bool {
		if list[i].Timestamp != list[j].Timestamp {
			return list[i].Timestamp > list[j].Timestamp
		}
		return list[i].ID < list[j].ID
	})
}

// TotalAmount sums the amounts of list.
func TotalAmount(list []Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range list {
		total = total.Add(e.Amount)
	}
	return total
}
