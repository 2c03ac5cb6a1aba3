package workflow

import (
	"context"

	"github.com/laporwarga/backend/pkg/client"
	"github.com/laporwarga/backend/pkg/lifecycle"
)

const statusListPageSize = 50

// StatusList is the citizen's "status pengaduan" screen: every complaint the
// signed-in user filed. The list is read through the session store, so
// coming back to the screen does not refetch until Refresh.
type StatusList struct {
	api    ComplaintAPI
	store  *ComplaintStore
	notify Notifier
}

func NewStatusList(api ComplaintAPI, store *ComplaintStore, notify Notifier) *StatusList {
	return &StatusList{api: api, store: store, notify: notify}
}

// Load returns the cached list, fetching every page of the user's own
// complaints when the store is empty.
func (l *StatusList) Load(ctx context.Context) ([]client.Complaint, error) {
	items, err := l.store.Load(ctx, func(ctx context.Context) ([]client.Complaint, error) {
		return fetchAll(ctx, statusListPageSize, func(ctx context.Context, opts client.ListOptions) (*client.Page[client.Complaint], error) {
			return l.api.MyComplaints(ctx, client.ComplaintFilter{ListOptions: opts})
		})
	})
	if err != nil {
		l.notify.Error(client.MessageOf(err, MsgLoadFailed))
		return nil, err
	}
	return items, nil
}

// Refresh empties the store and loads again.
func (l *StatusList) Refresh(ctx context.Context) ([]client.Complaint, error) {
	l.store.Clear()
	return l.Load(ctx)
}

// ByStatus narrows a loaded list to one status. An empty status keeps all.
func ByStatus(items []client.Complaint, status lifecycle.Status) []client.Complaint {
	if status == "" {
		return items
	}
	out := make([]client.Complaint, 0, len(items))
	for _, c := range items {
		if c.Status == status {
			out = append(out, c)
		}
	}
	return out
}
