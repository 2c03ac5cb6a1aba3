package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/laporwarga/backend/pkg/lifecycle"
)

func (c *Client) CreateComplaint(ctx context.Context, req CreateComplaintRequest) (*Complaint, error) {
	var out Complaint
	if err := c.doJSON(ctx, http.MethodPost, "/complaints", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (f ComplaintFilter) values() url.Values {
	q := f.ListOptions.values()
	if f.CategoryID > 0 {
		q.Set("category_id", fmt.Sprint(f.CategoryID))
	}
	if f.Status != "" {
		q.Set("status", string(f.Status))
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

// ListComplaints returns all complaints to admins and the caller's own otherwise.
func (c *Client) ListComplaints(ctx context.Context, filter ComplaintFilter) (*Page[Complaint], error) {
	var out Page[Complaint]
	if err := c.getJSON(ctx, "/complaints", filter.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyComplaints(ctx context.Context, filter ComplaintFilter) (*Page[Complaint], error) {
	var out Page[Complaint]
	if err := c.getJSON(ctx, "/complaints/me", filter.values(), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetComplaint(ctx context.Context, id uint) (*Complaint, error) {
	var out Complaint
	if err := c.getJSON(ctx, fmt.Sprintf("/complaints/%d", id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteComplaints removes the given complaints and reports how many were deleted.
func (c *Client) DeleteComplaints(ctx context.Context, ids []uint) (int64, error) {
	return c.bulkDelete(ctx, "/complaints", ids)
}

func (c *Client) CreateFeedback(ctx context.Context, complaintID uint, content string) (*Feedback, error) {
	var out Feedback
	path := fmt.Sprintf("/complaints/%d/feedback", complaintID)
	if err := c.doJSON(ctx, http.MethodPost, path, map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateFeedback(ctx context.Context, complaintID, feedbackID uint, content string) (*Feedback, error) {
	var out Feedback
	path := fmt.Sprintf("/complaints/%d/feedback/%d", complaintID, feedbackID)
	if err := c.doJSON(ctx, http.MethodPut, path, map[string]string{"content": content}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateComplaintStatus closes (selesai) or cancels (batal) a complaint.
func (c *Client) UpdateComplaintStatus(ctx context.Context, id uint, status lifecycle.Status, reason string) (*Complaint, error) {
	var out Complaint
	in := map[string]string{"status": string(status), "reason": reason}
	if err := c.doJSON(ctx, http.MethodPut, fmt.Sprintf("/complaints/%d/status", id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListComplaintCategories(ctx context.Context) ([]Category, error) {
	var out []Category
	if err := c.getJSON(ctx, "/complaint-categories", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) bulkDelete(ctx context.Context, path string, ids []uint) (int64, error) {
	var out struct {
		Deleted int64 `json:"deleted"`
	}
	if err := c.doJSON(ctx, http.MethodDelete, path, map[string][]uint{"ids": ids}, &out); err != nil {
		return 0, err
	}
	return out.Deleted, nil
}
