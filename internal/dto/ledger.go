package dto

// ListTransactionsParams defines query parameters for listing one account's
// ledger lines with token-based pagination.
type ListTransactionsParams struct {
	Limit     int     `form:"limit,default=50" binding:"omitempty,min=1,max=500"`
	NextToken *string `form:"nextToken"`
}

// AccountLedgerResponse wraps one page of an account's ledger lines.
type AccountLedgerResponse struct {
	AccountCode  string                `json:"accountCode"`
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// RepairMisclassifiedRequest defines the input to the ledger repair tool,
// which re-points posted lines from one account code to another.
type RepairMisclassifiedRequest struct {
	FromCode   string `json:"fromCode" binding:"required,account_code"`
	ToCode     string `json:"toCode" binding:"required,account_code"`
	SourceType string `json:"sourceType" binding:"required"`
	DryRun     *bool  `json:"dryRun"`
}

// RepairMisclassifiedResponse reports how many lines were (or would be) moved.
type RepairMisclassifiedResponse struct {
	FromCode   string `json:"fromCode"`
	ToCode     string `json:"toCode"`
	SourceType string `json:"sourceType"`
	DryRun     bool   `json:"dryRun"`
	LinesMoved int64  `json:"linesMoved"`
}
