package domain

import (
	"math"    // Float checks
	"strings" // Trimming
	"time"    // Timestamps

	"gorm.io/datatypes" // JSON columns
)

// DefaultCategories seeds every new budget
var DefaultCategories = []string{"Sound", "Lighting", "Image"}

// Attachment references a file kept in the object store
type Attachment struct {
	Path string `json:"path" validate:"required"` // Object store path
	Name string `json:"name" validate:"required"` // Original file name
	URL  string `json:"url" validate:"required"`  // Retrievable URL
}

// BudgetItem is one categorized expense, embedded in Budget.Items
type BudgetItem struct {
	ID          string      `json:"id" validate:"required"`
	Category    string      `json:"category" validate:"required"`
	Description string      `json:"description" validate:"required"`
	Amount      float64     `json:"amount" validate:"gte=0"`
	Attachment  *Attachment `json:"attachment,omitempty"`
	CreatedAt   time.Time   `json:"created_at" validate:"required"`
	UpdatedAt   *time.Time  `json:"updated_at,omitempty"`
}

// NewBudgetItem is the caller-supplied part of a budget item
type NewBudgetItem struct {
	Category    string
	Description string
	Amount      float64
	Attachment  *Attachment
}

// Budget Model, one per (event, user)
type Budget struct {
	ID          string                         `gorm:"primaryKey;size:36" json:"id" validate:"required"`
	EventID     string                         `gorm:"uniqueIndex:idx_budgets_event_user,priority:1;size:36;not null" json:"event_id" validate:"required"`
	UserID      string                         `gorm:"uniqueIndex:idx_budgets_event_user,priority:2;size:36;not null" json:"user_id" validate:"required"`
	Items       datatypes.JSONSlice[BudgetItem] `json:"items" validate:"dive"`
	Categories  datatypes.JSONSlice[string]     `json:"categories" validate:"min=1,dive,required"`
	TotalAmount float64                        `gorm:"not null;default:0" json:"total_amount" validate:"gte=0"`
	Version     uint                           `gorm:"not null;default:0" json:"version"` // Bumped on every write
	CreatedAt   time.Time                      `json:"created_at" validate:"required"`
	UpdatedAt   *time.Time                     `gorm:"autoUpdateTime:false" json:"updated_at,omitempty"`
}

// NewBudget returns an empty budget for the event with the default categories
func NewBudget(id, userID, eventID string, now time.Time) *Budget {
	categories := make(datatypes.JSONSlice[string], len(DefaultCategories))
	copy(categories, DefaultCategories)
	return &Budget{
		ID:         id,
		EventID:    eventID,
		UserID:     userID,
		Items:      datatypes.JSONSlice[BudgetItem]{},
		Categories: categories,
		CreatedAt:  StoreTime(now),
	}
}

// HasCategory reports whether category belongs to the budget
func (b *Budget) HasCategory(category string) bool {
	for _, c := range b.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// FindItem returns the index of the item with the given id, or -1
func (b *Budget) FindItem(itemID string) int {
	for i := range b.Items {
		if b.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// ValidateItem checks a new item against the budget
func (b *Budget) ValidateItem(item *NewBudgetItem) error {
	item.Description = strings.TrimSpace(item.Description)
	if item.Description == "" {
		return Validationf("item description is required")
	}
	if math.IsNaN(item.Amount) || math.IsInf(item.Amount, 0) || item.Amount < 0 {
		return Validationf("item amount must be a number >= 0")
	}
	if !b.HasCategory(item.Category) {
		return Validationf("unknown category %q", item.Category)
	}
	return nil
}

// AppendItem adds the item and its amount to the running total
func (b *Budget) AppendItem(item BudgetItem, now time.Time) {
	b.Items = append(b.Items, item)
	b.TotalAmount += item.Amount // Running total
	updated := StoreTime(now)
	b.UpdatedAt = &updated
}

// ItemsTotal recomputes the total from the items
func (b *Budget) ItemsTotal() float64 {
	var sum float64
	for _, item := range b.Items {
		sum += item.Amount
	}
	return sum
}

// TotalDrift is the difference between the stored total and the recomputed one
func (b *Budget) TotalDrift() float64 {
	return b.TotalAmount - b.ItemsTotal()
}

// CategoryTotal is the display-side aggregate for one category
type CategoryTotal struct {
	Category string  `json:"category"`
	Count    int     `json:"count"`
	Total    float64 `json:"total"`
}

// CategoryItems returns the items filed under category, in budget order
func CategoryItems(items []BudgetItem, category string) []BudgetItem {
	var out []BudgetItem
	for _, item := range items {
		if item.Category == category {
			out = append(out, item)
		}
	}
	return out
}

// SumCategory sums the amounts of the items filed under category
func SumCategory(items []BudgetItem, category string) float64 {
	var sum float64
	for _, item := range items {
		if item.Category == category {
			sum += item.Amount
		}
	}
	return sum
}

// CategoryTotals returns one aggregate per budget category, in category order.
// Items whose category is not listed on the budget are ignored.
func (b *Budget) CategoryTotals() []CategoryTotal {
	totals := make([]CategoryTotal, 0, len(b.Categories))
	for _, category := range b.Categories {
		totals = append(totals, CategoryTotal{
			Category: category,
			Count:    len(CategoryItems(b.Items, category)),
			Total:    SumCategory(b.Items, category),
		})
	}
	return totals
}
