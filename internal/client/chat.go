package client

import (
	"context"
	"net/http"

	"cartable/internal/domain/models/pedagogy"
)

// Chat sends a user message with the prior conversation to the assistant.
func (c *Client) Chat(ctx context.Context, message string, history []pedagogy.ChatMessage, token string) (*pedagogy.ChatResponse, error) {
	if history == nil {
		history = []pedagogy.ChatMessage{}
	}

	var resp pedagogy.ChatResponse
	req := &pedagogy.ChatRequest{Message: message, History: history}
	if err := c.doJSON(ctx, "ai.chat", http.MethodPost, "/ai/chat", token, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
