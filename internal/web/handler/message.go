package handler

// Message is the envelope of data returned by the admin routes.
type Message struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
