package core

// ItemID identifies a store item.
type ItemID string

const (
	ItemStreakFreeze ItemID = "streak_freeze"
	ItemHeartRefill  ItemID = "heart_refill"
)

// StoreItem is a purchasable power-up. Effects are applied by the service
// when the debit succeeds.
type StoreItem struct {
	ID          ItemID `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
}

// Catalog is the fixed set of purchasable items.
var Catalog = map[ItemID]StoreItem{
	ItemStreakFreeze: {
		ID:          ItemStreakFreeze,
		Name:        "Streak Freeze",
		Description: "Prevents your streak from breaking if you miss a day",
		Price:       30,
	},
	ItemHeartRefill: {
		ID:          ItemHeartRefill,
		Name:        "Heart Refill",
		Description: "Refill all your hearts immediately",
		Price:       20,
	},
}

// CatalogItems returns the catalog in a stable order for API listings.
func CatalogItems() []StoreItem {
	return []StoreItem{Catalog[ItemStreakFreeze], Catalog[ItemHeartRefill]}
}
