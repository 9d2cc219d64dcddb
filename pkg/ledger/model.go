package ledger

import (
	"slices"
	"strings"
	"time"
)

// DateLayout is the only calendar format accepted for transaction dates and report bounds.
const DateLayout = "2006-01-02"

// DefaultLowStockThreshold applies to items that do not configure their own band.
const DefaultLowStockThreshold = 10

// AllItems is the item filter value that disables item filtering.
const AllItems = "all"

// Date is a calendar day normalized to YYYY-MM-DD, which keeps string comparison chronological.
type Date string

// ParseDate normalizes user input; an empty string means "no date" and is not an error.
func ParseDate(raw string) (Date, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	t, err := time.Parse(DateLayout, raw)
	if err != nil {
		return "", newValidationError("invalid date " + raw + ", expected YYYY-MM-DD")
	}
	return DateOf(t), nil
}

// DateOf takes the calendar day of t in its own location.
func DateOf(t time.Time) Date {
	return Date(t.Format(DateLayout))
}

// Time returns midnight UTC of the day, or the zero time for an empty date.
func (d Date) Time() time.Time {
	t, err := time.Parse(DateLayout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

func (d Date) String() string { return string(d) }

// Item is a catalog entry; it never changes during a session.
type Item struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	LowStockThreshold int    `json:"lowStockThreshold,omitempty"`
}

// Threshold resolves the low-stock band for the item.
func (i Item) Threshold() int {
	if i.LowStockThreshold <= 0 {
		return DefaultLowStockThreshold
	}
	return i.LowStockThreshold
}

// Transaction is a single stock movement against one item.
// Balance is the running balance after this movement and is always rewritten from the fold.
type Transaction struct {
	ID         string    `json:"id"`
	Date       Date      `json:"date"`
	ItemID     string    `json:"itemId"`
	ItemName   string    `json:"itemName"`
	Deposit    int       `json:"deposit"`
	Withdrawal int       `json:"withdrawal"`
	Balance    int       `json:"balance"`
	Unit       Unit      `json:"unit,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Unit labels the organizational unit that requested a withdrawal.
type Unit string

const (
	UnitAdmin          Unit = "ADMIN"
	UnitICT            Unit = "ICT"
	UnitFinance        Unit = "FINANCE"
	UnitOperations     Unit = "OPERATIONS"
	UnitPublicRelation Unit = "PUBLIC RELATION"
	UnitCleaners       Unit = "CLEANERS"
	UnitDrivers        Unit = "DRIVERS"
)

var units = []Unit{
	UnitAdmin,
	UnitICT,
	UnitFinance,
	UnitOperations,
	UnitPublicRelation,
	UnitCleaners,
	UnitDrivers,
}

// Units lists the requesting units in display order.
func Units() []Unit {
	return slices.Clone(units)
}

// ParseUnit matches a label case-insensitively against the fixed unit set.
func ParseUnit(raw string) (Unit, bool) {
	u := Unit(strings.ToUpper(strings.TrimSpace(raw)))
	return u, slices.Contains(units, u)
}

// StockStatus classifies a balance against a threshold.
type StockStatus string

const (
	InStock     StockStatus = "In Stock"
	LowStock    StockStatus = "Low Stock"
	Unavailable StockStatus = "Unavailable"
)

// Catalog indexes the session's items by id while keeping their display order.
type Catalog struct {
	items []Item
	index map[string]int
}

// NewCatalog copies items; later duplicates of an id are ignored.
func NewCatalog(items []Item) *Catalog {
	c := &Catalog{index: make(map[string]int, len(items))}
	for _, item := range items {
		if _, exists := c.index[item.ID]; exists {
			continue
		}
		c.index[item.ID] = len(c.items)
		c.items = append(c.items, item)
	}
	return c
}

// Items returns the catalog in display order.
func (c *Catalog) Items() []Item {
	return slices.Clone(c.items)
}

// Lookup finds an item by id.
func (c *Catalog) Lookup(id string) (Item, bool) {
	i, ok := c.index[id]
	if !ok {
		return Item{}, false
	}
	return c.items[i], true
}
