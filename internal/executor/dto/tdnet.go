package dto

// TDnetListResponse is the listing payload of the TDnet web API.
type TDnetListResponse struct {
	Items []TDnetListItem `json:"items"`
}

// TDnetListItem wraps one disclosure entry.
type TDnetListItem struct {
	TDnet TDnetDocument `json:"Tdnet"`
}

// TDnetDocument is one disclosure as the TDnet web API reports it.
type TDnetDocument struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	DocumentURL string `json:"document_url"`
	CompanyCode string `json:"company_code"`
	PubDate     string `json:"pubdate"`
}
