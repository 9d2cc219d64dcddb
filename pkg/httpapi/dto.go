package httpapi

import (
	"time"

	"github.com/jinzhu/copier"

	"storeroom/pkg/account"
	"storeroom/pkg/ledger"
)

type userResponse struct {
	Email   string       `json:"email"`
	Name    string       `json:"name"`
	Role    account.Role `json:"role"`
	IsAdmin bool         `json:"isAdmin"`
}

func toUserResponse(u account.User) userResponse {
	var out userResponse
	copier.Copy(&out, &u)
	out.IsAdmin = u.IsAdmin()
	return out
}

func toUserResponses(users []account.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expiresAt"`
	User      userResponse `json:"user"`
}

// transactionResponse is the row shown in the records table.
type transactionResponse struct {
	ID         string      `json:"id"`
	Date       ledger.Date `json:"date"`
	ItemID     string      `json:"itemId"`
	ItemName   string      `json:"itemName"`
	Deposit    int         `json:"deposit"`
	Withdrawal int         `json:"withdrawal"`
	Balance    int         `json:"balance"`
	Unit       ledger.Unit `json:"requestingUnit,omitempty"`
	Type       string      `json:"type"`
	CreatedAt  time.Time   `json:"createdAt"`
}

func toTransactionResponse(tx ledger.Transaction) transactionResponse {
	var out transactionResponse
	copier.Copy(&out, &tx)
	out.Type = "withdrawal"
	if tx.Deposit > 0 {
		out.Type = "deposit"
	}
	return out
}

func toTransactionResponses(txs []ledger.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

type dayGroupResponse struct {
	Date         ledger.Date           `json:"date"`
	Transactions []transactionResponse `json:"transactions"`
}

func toDayGroupResponses(groups []ledger.DayGroup) []dayGroupResponse {
	out := make([]dayGroupResponse, 0, len(groups))
	for _, g := range groups {
		out = append(out, dayGroupResponse{Date: g.Date, Transactions: toTransactionResponses(g.Transactions)})
	}
	return out
}

type itemResponse struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	Description       string `json:"description,omitempty"`
	LowStockThreshold int    `json:"lowStockThreshold"`
}

func toItemResponses(items []ledger.Item) []itemResponse {
	out := make([]itemResponse, 0, len(items))
	for _, item := range items {
		var r itemResponse
		copier.Copy(&r, &item)
		r.LowStockThreshold = item.Threshold()
		out = append(out, r)
	}
	return out
}
