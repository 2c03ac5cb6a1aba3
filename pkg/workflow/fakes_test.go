package workflow

import (
	"context"
	"sync"

	"github.com/laporwarga/backend/pkg/client"
	"github.com/laporwarga/backend/pkg/validation"
	"github.com/stretchr/testify/mock"
)

// fakeAPI implements every API interface. Unset funcs return zero values.
type fakeAPI struct {
	mu    sync.Mutex
	calls []string

	createComplaint func(client.CreateComplaintRequest) (*client.Complaint, error)
	getComplaint    func(uint) (*client.Complaint, error)
	listComplaints  func(client.ComplaintFilter) (*client.Page[client.Complaint], error)
	myComplaints    func(client.ComplaintFilter) (*client.Page[client.Complaint], error)
	deleteIDs       func([]uint) (int64, error)
	createFeedback  func(uint, string) (*client.Feedback, error)
	updateFeedback  func(uint, uint, string) (*client.Feedback, error)

	listNews      func(client.NewsFilter) (*client.Page[client.News], error)
	updateNews    func(uint, validation.NewsForm, *client.File) (*client.News, error)
	listComments  func(uint, client.ListOptions) (*client.Page[client.Comment], error)
	createComment func(uint, string) (*client.Comment, error)

	addSuggestion   func(uint, string) (*client.ChatbotSuggestion, error)
	listSuggestions func(uint) ([]client.ChatbotSuggestion, error)
	listHistory     func(uint) ([]client.ChatbotHistory, error)
	sendChatbot     func(client.ChatbotRequest) (*client.ChatbotResponse, error)
	myResponses     func(client.ListOptions) (*client.Page[client.ChatbotResponse], error)

	listUsers func(client.UserFilter) (*client.Page[client.User], error)
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.calls = append(f.calls, name)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) count(name string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == name {
			n++
		}
	}
	return n
}

func (f *fakeAPI) CreateComplaint(_ context.Context, req client.CreateComplaintRequest) (*client.Complaint, error) {
	f.record("CreateComplaint")
	if f.createComplaint == nil {
		return &client.Complaint{ID: 1}, nil
	}
	return f.createComplaint(req)
}

func (f *fakeAPI) GetComplaint(_ context.Context, id uint) (*client.Complaint, error) {
	f.record("GetComplaint")
	if f.getComplaint == nil {
		return &client.Complaint{ID: id}, nil
	}
	return f.getComplaint(id)
}

func (f *fakeAPI) ListComplaints(_ context.Context, filter client.ComplaintFilter) (*client.Page[client.Complaint], error) {
	f.record("ListComplaints")
	if f.listComplaints == nil {
		return &client.Page[client.Complaint]{}, nil
	}
	return f.listComplaints(filter)
}

func (f *fakeAPI) MyComplaints(_ context.Context, filter client.ComplaintFilter) (*client.Page[client.Complaint], error) {
	f.record("MyComplaints")
	if f.myComplaints == nil {
		return &client.Page[client.Complaint]{}, nil
	}
	return f.myComplaints(filter)
}

func (f *fakeAPI) DeleteComplaints(_ context.Context, ids []uint) (int64, error) {
	f.record("DeleteComplaints")
	return f.deleteResult(ids)
}

func (f *fakeAPI) deleteResult(ids []uint) (int64, error) {
	if f.deleteIDs == nil {
		return int64(len(ids)), nil
	}
	return f.deleteIDs(ids)
}

func (f *fakeAPI) CreateFeedback(_ context.Context, complaintID uint, content string) (*client.Feedback, error) {
	f.record("CreateFeedback")
	if f.createFeedback == nil {
		return &client.Feedback{ComplaintID: complaintID, Content: content}, nil
	}
	return f.createFeedback(complaintID, content)
}

func (f *fakeAPI) UpdateFeedback(_ context.Context, complaintID, feedbackID uint, content string) (*client.Feedback, error) {
	f.record("UpdateFeedback")
	if f.updateFeedback == nil {
		return &client.Feedback{ID: feedbackID, ComplaintID: complaintID, Content: content}, nil
	}
	return f.updateFeedback(complaintID, feedbackID, content)
}

func (f *fakeAPI) ListNews(_ context.Context, filter client.NewsFilter) (*client.Page[client.News], error) {
	f.record("ListNews")
	if f.listNews == nil {
		return &client.Page[client.News]{}, nil
	}
	return f.listNews(filter)
}

func (f *fakeAPI) CreateNews(_ context.Context, form validation.NewsForm, _ *client.File) (*client.News, error) {
	f.record("CreateNews")
	return &client.News{ID: 1, Title: form.Title}, nil
}

func (f *fakeAPI) UpdateNews(_ context.Context, id uint, form validation.NewsForm, image *client.File) (*client.News, error) {
	f.record("UpdateNews")
	if f.updateNews == nil {
		return &client.News{ID: id, Title: form.Title}, nil
	}
	return f.updateNews(id, form, image)
}

func (f *fakeAPI) DeleteNews(_ context.Context, ids []uint) (int64, error) {
	f.record("DeleteNews")
	return f.deleteResult(ids)
}

func (f *fakeAPI) ListComments(_ context.Context, newsID uint, opts client.ListOptions) (*client.Page[client.Comment], error) {
	f.record("ListComments")
	if f.listComments == nil {
		return &client.Page[client.Comment]{}, nil
	}
	return f.listComments(newsID, opts)
}

func (f *fakeAPI) CreateComment(_ context.Context, newsID uint, content string) (*client.Comment, error) {
	f.record("CreateComment")
	if f.createComment == nil {
		return &client.Comment{NewsID: newsID, Content: content}, nil
	}
	return f.createComment(newsID, content)
}

func (f *fakeAPI) DeleteComments(_ context.Context, ids []uint) (int64, error) {
	f.record("DeleteComments")
	return f.deleteResult(ids)
}

func (f *fakeAPI) AddSuggestion(_ context.Context, complaintID uint, message string) (*client.ChatbotSuggestion, error) {
	f.record("AddSuggestion")
	if f.addSuggestion == nil {
		return &client.ChatbotSuggestion{}, nil
	}
	return f.addSuggestion(complaintID, message)
}

func (f *fakeAPI) ListSuggestions(_ context.Context, complaintID uint) ([]client.ChatbotSuggestion, error) {
	f.record("ListSuggestions")
	if f.listSuggestions == nil {
		return nil, nil
	}
	return f.listSuggestions(complaintID)
}

func (f *fakeAPI) ListChatHistory(_ context.Context, complaintID uint) ([]client.ChatbotHistory, error) {
	f.record("ListChatHistory")
	if f.listHistory == nil {
		return nil, nil
	}
	return f.listHistory(complaintID)
}

func (f *fakeAPI) SendChatbot(_ context.Context, req client.ChatbotRequest) (*client.ChatbotResponse, error) {
	f.record("SendChatbot")
	if f.sendChatbot == nil {
		return &client.ChatbotResponse{}, nil
	}
	return f.sendChatbot(req)
}

func (f *fakeAPI) MyChatbotResponses(_ context.Context, opts client.ListOptions) (*client.Page[client.ChatbotResponse], error) {
	f.record("MyChatbotResponses")
	if f.myResponses == nil {
		return &client.Page[client.ChatbotResponse]{}, nil
	}
	return f.myResponses(opts)
}

func (f *fakeAPI) ListUsers(_ context.Context, filter client.UserFilter) (*client.Page[client.User], error) {
	f.record("ListUsers")
	if f.listUsers == nil {
		return &client.Page[client.User]{}, nil
	}
	return f.listUsers(filter)
}

type notice struct {
	kind, msg string
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notice
	actions []Action
}

func (n *recordingNotifier) add(kind, msg string) {
	n.mu.Lock()
	n.notices = append(n.notices, notice{kind, msg})
	n.mu.Unlock()
}

func (n *recordingNotifier) Success(msg string, actions ...Action) {
	n.add("success", msg)
	n.mu.Lock()
	n.actions = actions
	n.mu.Unlock()
}

func (n *recordingNotifier) Error(msg string) { n.add("error", msg) }

// lastActions returns the actions offered with the latest success toast.
func (n *recordingNotifier) lastActions() []Action {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.actions
}

func (n *recordingNotifier) last() notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.notices) == 0 {
		return notice{}
	}
	return n.notices[len(n.notices)-1]
}

type recordingNav struct {
	toStatusList, back int
}

func (n *recordingNav) ToStatusList() { n.toStatusList++ }
func (n *recordingNav) Back()         { n.back++ }

type mockUploader struct {
	mock.Mock
}

func (m *mockUploader) Upload(ctx context.Context, name string, data []byte) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}
