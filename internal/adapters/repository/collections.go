package repository

import (
	"github.com/lunchdesk/core/internal/infrastructure/csvstore"
)

// Collection names, also used as the data and backup subdirectory names
const (
	CollectionLunches  = "lunches"
	CollectionOrders   = "orders"
	CollectionExpenses = "expenses"
)

// Collections returns the descriptors of every collection, in a fixed order
func Collections(store *csvstore.Store) []csvstore.Collection {
	return []csvstore.Collection{
		store.Collection(CollectionLunches, LunchHeader),
		store.Collection(CollectionOrders, OrderHeader),
		store.Collection(CollectionExpenses, ExpenseHeader),
	}
}

// InitCollections creates every collection file that does not exist yet
func InitCollections(store *csvstore.Store) error {
	return store.Init(Collections(store)...)
}

// strictDecoders checks a row with the collection's strict decoder
var strictDecoders = map[string]func(csvstore.Row) error{
	CollectionLunches: func(r csvstore.Row) error {
		_, err := DecodeLunchStrict(r)
		return err
	},
	CollectionOrders: func(r csvstore.Row) error {
		_, err := DecodeOrderStrict(r)
		return err
	},
	CollectionExpenses: func(r csvstore.Row) error {
		_, err := DecodeExpenseStrict(r)
		return err
	},
}
