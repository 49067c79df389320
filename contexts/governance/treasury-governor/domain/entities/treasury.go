package entities

type Category string

const (
	CategoryGeneral    Category = "general"
	CategoryGrants     Category = "grants"
	CategoryOperations Category = "operations"
)

// DefaultCategory receives inflows and is drawn first on transfers.
const DefaultCategory = CategoryGeneral

// DrawdownOrder is the fixed order in which outgoing transfers consume
// category balances.
var DrawdownOrder = []Category{CategoryGeneral, CategoryGrants, CategoryOperations}

func (c Category) Valid() bool {
	switch c {
	case CategoryGeneral, CategoryGrants, CategoryOperations:
		return true
	default:
		return false
	}
}

type CategoryBalance struct {
	Category Category
	Balance  uint64
	Limit    uint64
}

type TreasurySnapshot struct {
	Total      uint64
	Paused     bool
	Categories []CategoryBalance
}

type Draw struct {
	Category Category
	Amount   uint64
}
