package domain

// Response standardizes API responses.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Meta    interface{} `json:"meta,omitempty"`
}

// ViewInfo describes a mounted product list view.
type ViewInfo struct {
	ID      string      `json:"id"`
	Filter  FilterState `json:"filter"`
	Loading bool        `json:"loading"`
	Result  ListResult  `json:"result"`
}
