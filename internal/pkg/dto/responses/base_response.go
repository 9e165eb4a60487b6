package responses

// ResponseDTO wraps every JSON body of the dashboard API. RequestID echoes
// the X-Request-ID header so exported logs can be matched to a response.
type ResponseDTO struct {
	Success    bool        `json:"success"`
	RequestID  string      `json:"request_id,omitempty"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type Pagination struct {
	Total      int    `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
	NextURL    string `json:"next_url,omitempty"`
	PrevURL    string `json:"prev_url,omitempty"`
}
