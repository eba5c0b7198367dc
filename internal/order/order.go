// Package order defines the order intake domain: the per-chat draft that a
// conversation fills in and the finalized order kept in the ledger.
package order

// Order is a finalized request. Only AdminNotification.Touched ever changes
// after the order is appended to the ledger.
//
// JSON names match the orders.json records written by earlier releases.
type Order struct {
	ID                int64             `json:"OrderId"`
	ChatID            int64             `json:"ChatId"`
	Domains           []string          `json:"Domains"`
	Answer            string            `json:"Answer"`
	AdminNotification AdminNotification `json:"AdminsMessage"`
}

// AdminNotification points at the admin-side message that carries the done button.
type AdminNotification struct {
	ChatID      int64  `json:"ChatId"`
	MessageID   int    `json:"MessageId"`
	ButtonLabel string `json:"ButtonText"`
	Touched     bool   `json:"ButtonTouched"`
}
