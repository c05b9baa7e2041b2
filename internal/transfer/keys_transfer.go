package transfer

type APIKeyResponse struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	HasKey   bool   `json:"has_key"`
}

type APIKeyRequest struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
}
