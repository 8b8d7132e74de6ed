package domain

// Currency is created lazily on first use and deactivated, never deleted,
// once no owner references it.
type Currency struct {
	ID     int64
	Name   string
	Active bool
}

// CurrencyOwner links a user to a currency. At most one row per owner is Current.
type CurrencyOwner struct {
	ID         int64
	CurrencyID int64
	OwnerID    string
	Current    bool
}
