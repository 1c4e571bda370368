package dto

// InitiateRequest starts a bulk resync
type InitiateRequest struct {
	ErrorsOnly bool `json:"errors_only"`
}

// InitiateResponse is the eligible-count snapshot after clearing statuses
type InitiateResponse struct {
	Total    int64  `json:"total"`
	Complete int64  `json:"complete"`
	Done     bool   `json:"done"`
	Message  string `json:"message,omitempty"`
}

// ProcessRequest asks for the next batch page
type ProcessRequest struct {
	PageSize int `json:"page_size"`
}

// RecordResult is one record's outcome within a batch page
type RecordResult struct {
	Title    string `json:"title"`
	RecordID uint   `json:"record_id"`
	Error    bool   `json:"error,omitempty"`
	Message  string `json:"message,omitempty"`
	Response string `json:"response,omitempty"`
}

// ProcessResponse reports cumulative progress plus this page's results
type ProcessResponse struct {
	Done     bool           `json:"done"`
	Total    int64          `json:"total"`
	Complete int64          `json:"complete"`
	Results  []RecordResult `json:"results"`
}

// ValidateResponse partitions local records against the remote index
type ValidateResponse struct {
	UpToDate       int `json:"up_to_date"`
	MismatchedDate int `json:"mismatched_date"`
	MissingFromES  int `json:"missing_from_es"`
	MissingFromWP  int `json:"missing_from_wp"`
}
