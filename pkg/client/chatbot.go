package client

import (
	"context"
	"fmt"
	"net/http"
)

func (c *Client) ChatbotTopics(ctx context.Context) ([]ChatTopic, error) {
	var out []ChatTopic
	if err := c.getJSON(ctx, "/chatbot/topics", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SendChatbot(ctx context.Context, req ChatbotRequest) (*ChatbotResponse, error) {
	var out ChatbotResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chatbot", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyChatbotResponses(ctx context.Context, opts ListOptions) (*Page[ChatbotResponse], error) {
	var out Page[ChatbotResponse]
	if err := c.getJSON(ctx, "/chatbot/me", opts.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AddSuggestion(ctx context.Context, complaintID uint, message string) (*ChatbotSuggestion, error) {
	var out ChatbotSuggestion
	in := map[string]interface{}{"complaint_id": complaintID, "message": message}
	if err := c.doJSON(ctx, http.MethodPost, "/chatbot/suggestions", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListSuggestions(ctx context.Context, complaintID uint) ([]ChatbotSuggestion, error) {
	var out []ChatbotSuggestion
	if err := c.getJSON(ctx, fmt.Sprintf("/chatbot/suggestions/%d", complaintID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListChatHistory(ctx context.Context, complaintID uint) ([]ChatbotHistory, error) {
	var out []ChatbotHistory
	if err := c.getJSON(ctx, fmt.Sprintf("/chatbot/history/%d", complaintID), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
