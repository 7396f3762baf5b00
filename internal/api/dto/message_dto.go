package dto

// InboundMessageRequest is the payload posted by the chat gateway for
// each received message.
type InboundMessageRequest struct {
	Text    string `json:"text"`
	Sender  string `json:"sender"`
	IsGroup bool   `json:"is_group"`
}

// TokenRequest exchanges the gateway secret for an admin token.
type TokenRequest struct {
	Secret string `json:"secret"`
}

// TokenResponse carries an issued admin token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
}

// StateCountResponse is one row of the status aggregation.
type StateCountResponse struct {
	State    string `json:"state"`
	Priority string `json:"priority"`
	Count    int    `json:"count"`
}
