// Package workflow holds the client-side flows of the Lapor app: complaint
// submission, moderation, news and comments, the two chatbots and the admin
// directory. Flows talk to the API through the narrow interfaces below and
// report outcomes through a Notifier; they never return transport errors to
// the UI layer.
package workflow

import (
	"context"

	"github.com/laporwarga/backend/pkg/client"
	"github.com/laporwarga/backend/pkg/validation"
)

const (
	MsgGenericError   = "Terjadi kesalahan, silakan coba lagi."
	MsgSubmitSuccess  = "Pengaduan berhasil dikirim."
	MsgSubmitFailed   = "Gagal mengirim pengaduan, silakan coba lagi."
	MsgFeedbackSaved  = "Tanggapan berhasil disimpan."
	MsgDeleteSuccess  = "Data berhasil dihapus."
	MsgDeleteFailed   = "Gagal menghapus data."
	MsgLoadFailed     = "Gagal memuat data."
	MsgNewsSaved      = "Berita berhasil disimpan."
	MsgCommentSaved   = "Komentar berhasil dikirim."
	MsgChatError      = "Terjadi kesalahan, silakan coba lagi nanti."
	MsgBotNoResponse  = "Maaf, tidak ada respons dari bot."
	MsgViewStatusList = "Lihat status pengaduan"
)

type ComplaintAPI interface {
	CreateComplaint(ctx context.Context, req client.CreateComplaintRequest) (*client.Complaint, error)
	GetComplaint(ctx context.Context, id uint) (*client.Complaint, error)
	ListComplaints(ctx context.Context, filter client.ComplaintFilter) (*client.Page[client.Complaint], error)
	MyComplaints(ctx context.Context, filter client.ComplaintFilter) (*client.Page[client.Complaint], error)
	DeleteComplaints(ctx context.Context, ids []uint) (int64, error)
	CreateFeedback(ctx context.Context, complaintID uint, content string) (*client.Feedback, error)
	UpdateFeedback(ctx context.Context, complaintID, feedbackID uint, content string) (*client.Feedback, error)
}

type NewsAPI interface {
	ListNews(ctx context.Context, filter client.NewsFilter) (*client.Page[client.News], error)
	CreateNews(ctx context.Context, form validation.NewsForm, image *client.File) (*client.News, error)
	UpdateNews(ctx context.Context, id uint, form validation.NewsForm, image *client.File) (*client.News, error)
	DeleteNews(ctx context.Context, ids []uint) (int64, error)
	ListComments(ctx context.Context, newsID uint, opts client.ListOptions) (*client.Page[client.Comment], error)
	CreateComment(ctx context.Context, newsID uint, content string) (*client.Comment, error)
	DeleteComments(ctx context.Context, ids []uint) (int64, error)
}

type ChatbotAPI interface {
	AddSuggestion(ctx context.Context, complaintID uint, message string) (*client.ChatbotSuggestion, error)
	ListSuggestions(ctx context.Context, complaintID uint) ([]client.ChatbotSuggestion, error)
	ListChatHistory(ctx context.Context, complaintID uint) ([]client.ChatbotHistory, error)
	SendChatbot(ctx context.Context, req client.ChatbotRequest) (*client.ChatbotResponse, error)
	MyChatbotResponses(ctx context.Context, opts client.ListOptions) (*client.Page[client.ChatbotResponse], error)
}

type DirectoryAPI interface {
	ListUsers(ctx context.Context, filter client.UserFilter) (*client.Page[client.User], error)
}

// ImageUploader stores one image and returns its public URL.
type ImageUploader interface {
	Upload(ctx context.Context, name string, data []byte) (string, error)
}

// Action is a follow-up a toast can offer, such as a link to another screen.
type Action struct {
	Label string
	Run   func()
}

// Notifier shows transient messages (toasts) to the user.
type Notifier interface {
	Success(msg string, actions ...Action)
	Error(msg string)
}

type Navigator interface {
	ToStatusList()
	Back()
}

var (
	_ ComplaintAPI  = (*client.Client)(nil)
	_ NewsAPI       = (*client.Client)(nil)
	_ ChatbotAPI    = (*client.Client)(nil)
	_ DirectoryAPI  = (*client.Client)(nil)
	_ ImageUploader = client.ImageHost{}
)
