package workflow

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/laporwarga/backend/pkg/client"
	"github.com/laporwarga/backend/pkg/lifecycle"
	"github.com/laporwarga/backend/pkg/validation"
)

// ErrActionNotAllowed is returned when the complaint's status has no
// feedback form.
var ErrActionNotAllowed = errors.New("action not allowed for complaint status")

// Moderation drives the admin detail screen of one complaint.
type Moderation struct {
	api    ComplaintAPI
	notify Notifier
	nav    Navigator

	mu        sync.Mutex
	complaint *client.Complaint
	loading   bool
}

func NewModeration(api ComplaintAPI, notify Notifier, nav Navigator) *Moderation {
	return &Moderation{api: api, notify: notify, nav: nav}
}

// Load fetches the complaint. On failure the user is told and sent back.
func (m *Moderation) Load(ctx context.Context, id uint) error {
	m.setLoading(true)
	defer m.setLoading(false)

	complaint, err := m.api.GetComplaint(ctx, id)
	if err != nil {
		m.notify.Error(client.MessageOf(err, MsgLoadFailed))
		if m.nav != nil {
			m.nav.Back()
		}
		return err
	}
	m.mu.Lock()
	m.complaint = complaint
	m.mu.Unlock()
	return nil
}

func (m *Moderation) Complaint() *client.Complaint {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.complaint
}

func (m *Moderation) Loading() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loading
}

func (m *Moderation) setLoading(v bool) {
	m.mu.Lock()
	m.loading = v
	m.mu.Unlock()
}

// View describes what to render for the loaded complaint.
func (m *Moderation) View() lifecycle.View {
	c := m.Complaint()
	if c == nil {
		return lifecycle.View{}
	}
	return lifecycle.ViewFor(c.Status, c.FeedbackRefs(), c.CancelReason)
}

// Photos returns a carousel over the loaded complaint's photos.
func (m *Moderation) Photos() *Carousel {
	c := m.Complaint()
	if c == nil {
		return NewCarousel(0)
	}
	return NewCarousel(len(c.PhotoURLs))
}

// SubmitFeedback creates the first feedback on proses and updates the first
// feedback on tanggapi. The detail is refetched after success; the status
// itself is never set here.
func (m *Moderation) SubmitFeedback(ctx context.Context, content string) (validation.FieldErrors, error) {
	form := validation.FeedbackForm{Content: content}
	if fields := validation.Validate(&form); fields != nil {
		return fields, nil
	}

	c := m.Complaint()
	if c == nil {
		return nil, ErrActionNotAllowed
	}
	view := m.View()
	if !view.ShowForm || !lifecycle.Allows(c.Status, view.Action) {
		return nil, ErrActionNotAllowed
	}

	m.setLoading(true)
	var err error
	switch view.Action {
	case lifecycle.CreateFeedback:
		_, err = m.api.CreateFeedback(ctx, c.ID, form.Content)
	case lifecycle.UpdateFeedback:
		_, err = m.api.UpdateFeedback(ctx, c.ID, view.FeedbackID, form.Content)
	}
	m.setLoading(false)
	if err != nil {
		m.notify.Error(client.MessageOf(err, MsgGenericError))
		return nil, err
	}

	m.notify.Success(MsgFeedbackSaved)
	return nil, m.Load(ctx, c.ID)
}

// BulkSelection is the set of ids checked in a list.
type BulkSelection struct {
	mu  sync.Mutex
	ids map[uint]struct{}
}

func NewBulkSelection() *BulkSelection {
	return &BulkSelection{ids: make(map[uint]struct{})}
}

func (s *BulkSelection) Toggle(id uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ids[id]; ok {
		delete(s.ids, id)
	} else {
		s.ids[id] = struct{}{}
	}
}

// SelectAll selects every id, or clears the selection when every id is
// already selected.
func (s *BulkSelection) SelectAll(ids []uint) {
	s.mu.Lock()
	defer s.mu.Unlock()
	all := len(ids) > 0 && len(s.ids) == len(ids)
	if all {
		for _, id := range ids {
			if _, ok := s.ids[id]; !ok {
				all = false
				break
			}
		}
	}
	s.ids = make(map[uint]struct{}, len(ids))
	if all {
		return
	}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
}

func (s *BulkSelection) Clear() {
	s.mu.Lock()
	s.ids = make(map[uint]struct{})
	s.mu.Unlock()
}

func (s *BulkSelection) Has(id uint) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.ids[id]
	return ok
}

// IDs returns the selection sorted ascending.
func (s *BulkSelection) IDs() []uint {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]uint, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func (s *BulkSelection) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ids)
}

// DeleteFunc deletes a set of ids in one call.
type DeleteFunc func(ctx context.Context, ids []uint) (int64, error)

// BulkDeleter issues one delete call for a selection.
type BulkDeleter struct {
	del    DeleteFunc
	notify Notifier
}

func NewBulkDeleter(del DeleteFunc, notify Notifier) *BulkDeleter {
	return &BulkDeleter{del: del, notify: notify}
}

// Delete clears sel on success and keeps it on failure.
func (d *BulkDeleter) Delete(ctx context.Context, sel *BulkSelection) (int64, error) {
	ids := sel.IDs()
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := d.del(ctx, ids)
	if err != nil {
		d.notify.Error(client.MessageOf(err, MsgDeleteFailed))
		return 0, err
	}
	sel.Clear()
	d.notify.Success(MsgDeleteSuccess)
	return n, nil
}

// Carousel shows one photo at a time and wraps at both ends.
type Carousel struct {
	n, i int
}

func NewCarousel(n int) *Carousel { return &Carousel{n: n} }

func (c *Carousel) Next() int {
	if c.n > 0 {
		c.i = (c.i + 1 + c.n) % c.n
	}
	return c.i
}

func (c *Carousel) Prev() int {
	if c.n > 0 {
		c.i = (c.i - 1 + c.n) % c.n
	}
	return c.i
}

func (c *Carousel) Index() int { return c.i }
func (c *Carousel) Len() int   { return c.n }
