package workflow

import (
	"context"
	"sort"
	"strings"

	"github.com/laporwarga/backend/pkg/client"
	"github.com/laporwarga/backend/pkg/lifecycle"
)

// UserDirectory is the admin user list.
type UserDirectory struct {
	api    DirectoryAPI
	notify Notifier
}

func NewUserDirectory(api DirectoryAPI, notify Notifier) *UserDirectory {
	return &UserDirectory{api: api, notify: notify}
}

// FilterUsers keeps users whose name, email or phone contains q, ignoring case.
func FilterUsers(items []client.User, q string) []client.User {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return items
	}
	out := make([]client.User, 0, len(items))
	for _, u := range items {
		if strings.Contains(strings.ToLower(u.Name), q) ||
			strings.Contains(strings.ToLower(u.Email), q) ||
			strings.Contains(u.Phone, q) {
			out = append(out, u)
		}
	}
	return out
}

// Page fetches one page of users and filters it locally.
func (d *UserDirectory) Page(ctx context.Context, page, size int, search string) (*client.Page[client.User], error) {
	res, err := d.api.ListUsers(ctx, client.UserFilter{ListOptions: client.ListOptions{Page: page, PageSize: size}})
	if err != nil {
		d.notify.Error(client.MessageOf(err, MsgLoadFailed))
		return nil, err
	}
	res.Items = FilterUsers(res.Items, search)
	return res, nil
}

type ComplaintFilters struct {
	CategoryID uint
	Status     lifecycle.Status
}

// ComplaintDirectory is the admin complaint list. Filtering is done by the
// server.
type ComplaintDirectory struct {
	api    ComplaintAPI
	notify Notifier
}

func NewComplaintDirectory(api ComplaintAPI, notify Notifier) *ComplaintDirectory {
	return &ComplaintDirectory{api: api, notify: notify}
}

func (d *ComplaintDirectory) Page(ctx context.Context, page, size int, filters ComplaintFilters) (*client.Page[client.Complaint], error) {
	res, err := d.api.ListComplaints(ctx, client.ComplaintFilter{
		ListOptions: client.ListOptions{Page: page, PageSize: size},
		CategoryID:  filters.CategoryID,
		Status:      filters.Status,
	})
	if err != nil {
		d.notify.Error(client.MessageOf(err, MsgLoadFailed))
		return nil, err
	}
	return res, nil
}

const (
	metricsPageSize = 100
	recentCount     = 3
)

// Summary is what the admin dashboard shows.
type Summary struct {
	TotalComplaints int
	TotalNews       int
	StatusCounts    map[lifecycle.Status]int
	Recent          []client.Complaint
}

// Metrics derives the dashboard summary from the full complaint and news
// lists. The admin list is cached in its own store, apart from the citizen
// one.
type Metrics struct {
	complaints ComplaintAPI
	news       NewsAPI
	store      *ComplaintStore
	notify     Notifier
}

func NewMetrics(complaints ComplaintAPI, news NewsAPI, notify Notifier) *Metrics {
	return &Metrics{complaints: complaints, news: news, store: NewComplaintStore(), notify: notify}
}

func (m *Metrics) Load(ctx context.Context) (*Summary, error) {
	complaints, err := m.store.Load(ctx, func(ctx context.Context) ([]client.Complaint, error) {
		return fetchAll(ctx, metricsPageSize, func(ctx context.Context, opts client.ListOptions) (*client.Page[client.Complaint], error) {
			return m.complaints.ListComplaints(ctx, client.ComplaintFilter{ListOptions: opts})
		})
	})
	if err != nil {
		m.notify.Error(client.MessageOf(err, MsgLoadFailed))
		return nil, err
	}
	news, err := fetchAll(ctx, metricsPageSize, func(ctx context.Context, opts client.ListOptions) (*client.Page[client.News], error) {
		return m.news.ListNews(ctx, client.NewsFilter{ListOptions: opts})
	})
	if err != nil {
		m.notify.Error(client.MessageOf(err, MsgLoadFailed))
		return nil, err
	}
	return summarize(complaints, len(news)), nil
}

// Refresh drops the cached complaints and loads again.
func (m *Metrics) Refresh(ctx context.Context) (*Summary, error) {
	m.store.Clear()
	return m.Load(ctx)
}

func summarize(complaints []client.Complaint, newsCount int) *Summary {
	s := &Summary{
		TotalComplaints: len(complaints),
		TotalNews:       newsCount,
		StatusCounts:    make(map[lifecycle.Status]int),
	}
	for _, st := range lifecycle.All() {
		s.StatusCounts[st] = 0
	}
	for _, c := range complaints {
		s.StatusCounts[c.Status]++
	}

	sorted := append([]client.Complaint(nil), complaints...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })
	if len(sorted) > recentCount {
		sorted = sorted[:recentCount]
	}
	s.Recent = sorted
	return s
}

// fetchAll walks every page of a listing.
func fetchAll[T any](ctx context.Context, size int, list func(context.Context, client.ListOptions) (*client.Page[T], error)) ([]T, error) {
	var out []T
	for page := 1; ; page++ {
		res, err := list(ctx, client.ListOptions{Page: page, PageSize: size})
		if err != nil {
			return nil, err
		}
		out = append(out, res.Items...)
		if len(res.Items) == 0 || int64(len(out)) >= res.Total {
			return out, nil
		}
	}
}
