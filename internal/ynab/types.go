package ynab

// Types follow https://api.ynab.com/v1#/Transactions/createTransaction.

// TransactionPayload is the body of a create-transaction request.
type TransactionPayload struct {
	Transaction SaveTransaction `json:"transaction"`
}

// SaveTransaction is a single transaction to create. Nil pointers encode as
// JSON null.
type SaveTransaction struct {
	AccountID       string           `json:"account_id"`
	Date            string           `json:"date"`
	Amount          int64            `json:"amount"`
	PayeeID         *string          `json:"payee_id"`
	PayeeName       string           `json:"payee_name"`
	CategoryID      *string          `json:"category_id"`
	CategoryName    string           `json:"category_name"`
	Memo            string           `json:"memo"`
	Cleared         string           `json:"cleared"`
	Approved        bool             `json:"approved"`
	FlagColor       *string          `json:"flag_color"`
	ImportID        string           `json:"import_id"`
	SubTransactions []SubTransaction `json:"subtransactions"`
}

// SubTransaction is a split line. Always sent empty.
type SubTransaction struct {
	Amount     int64   `json:"amount"`
	PayeeID    *string `json:"payee_id"`
	PayeeName  string  `json:"payee_name"`
	CategoryID *string `json:"category_id"`
	Memo       string  `json:"memo"`
}

// createResponse is the subset of the 201 body we read.
type createResponse struct {
	Data struct {
		TransactionIDs []string `json:"transaction_ids"`
		Transaction    struct {
			ID string `json:"id"`
		} `json:"transaction"`
	} `json:"data"`
}

const clearedUncleared = "uncleared"
