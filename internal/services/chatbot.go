package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/laporwarga/backend/internal/config"
	"github.com/laporwarga/backend/internal/models"
	"github.com/laporwarga/backend/pkg/logger"
	"github.com/laporwarga/backend/pkg/response"
	"gorm.io/gorm"
)

// ChatTopic is a canned menu entry of the help bot.
type ChatTopic struct {
	Key      string   `json:"key"`
	Label    string   `json:"label"`
	Answer   string   `json:"-"`
	Keywords []string `json:"-"`
}

var chatTopics = []ChatTopic{
	{
		Key:   "cara_lapor",
		Label: "Cara membuat pengaduan",
		Answer: "**Cara membuat pengaduan**\n\n1. Masuk ke akun Anda.\n2. Buka menu *Pengaduan* lalu pilih kategori.\n" +
			"3. Isi judul, lokasi, dan uraian kejadian.\n4. Lampirkan hingga 3 foto (maks. 10 MB per foto).\n5. Tekan *Kirim*.",
		Keywords: []string{"cara", "lapor", "buat pengaduan", "mengadu"},
	},
	{
		Key:   "status",
		Label: "Arti status pengaduan",
		Answer: "**Status pengaduan**\n\n- *Diproses*: pengaduan diterima dan menunggu tanggapan petugas.\n" +
			"- *Ditanggapi*: petugas sudah memberi tanggapan.\n- *Selesai*: penanganan tuntas.\n" +
			"- *Dibatalkan*: pengaduan tidak dilanjutkan, alasan tercantum pada detail.",
		Keywords: []string{"status", "diproses", "ditanggapi", "selesai", "batal"},
	},
	{
		Key:      "kategori",
		Label:    "Kategori pengaduan",
		Answer:   "**Kategori pengaduan**\n\n" + "- " + strings.Join(models.ComplaintCategoryNames, "\n- "),
		Keywords: []string{"kategori", "jenis"},
	},
	{
		Key:      "foto",
		Label:    "Ketentuan foto",
		Answer:   "Setiap pengaduan dapat dilampiri **maksimal 3 foto**, masing-masing **maksimal 10 MB**. Foto profil dan berita dibatasi 5 MB.",
		Keywords: []string{"foto", "gambar", "lampiran"},
	},
	{
		Key:      "akun",
		Label:    "Pendaftaran dan verifikasi akun",
		Answer:   "Daftar dengan email aktif, lalu masukkan **kode OTP 6 digit** yang dikirim ke email Anda. Kode berlaku beberapa menit dan dapat dikirim ulang setelah jeda singkat.",
		Keywords: []string{"daftar", "otp", "verifikasi", "akun"},
	},
}

type ChatbotService struct {
	db        *gorm.DB
	model     ChatModel
	cfg       *config.ChatbotConfig
	configSvc *SystemConfigService
}

func NewChatbotService(db *gorm.DB, model ChatModel, cfg *config.ChatbotConfig) *ChatbotService {
	return &ChatbotService{db: db, model: model, cfg: cfg, configSvc: NewSystemConfigService(db)}
}

type ChatbotAskRequest struct {
	Message string `json:"message" binding:"max=2000"`
	Topic   string `json:"topic" binding:"max=50"`
}

type SuggestionRequest struct {
	ComplaintID uint   `json:"complaint_id" binding:"required,min=1"`
	Message     string `json:"message" binding:"required,max=2000"`
}

type ChatbotListRequest struct {
	PageRequest
}

func (s *ChatbotService) Topics() []ChatTopic {
	return chatTopics
}

func findTopic(key string) (ChatTopic, bool) {
	for _, t := range chatTopics {
		if t.Key == key {
			return t, true
		}
	}
	return ChatTopic{}, false
}

// matchTopic is the rule-based answer used when no model is reachable.
func matchTopic(message string) (ChatTopic, bool) {
	lower := strings.ToLower(message)
	for _, t := range chatTopics {
		for _, kw := range t.Keywords {
			if strings.Contains(lower, kw) {
				return t, true
			}
		}
	}
	return ChatTopic{}, false
}

func (s *ChatbotService) fallback() string {
	if s.cfg != nil && s.cfg.Fallback != "" {
		return s.cfg.Fallback
	}
	return "Maaf, tidak ada respons dari bot."
}

func (s *ChatbotService) systemPrompt() string {
	if s.cfg != nil {
		return s.cfg.SystemPrompt
	}
	return ""
}

// answer asks the model and falls back to keyword topics, then the fallback text.
func (s *ChatbotService) answer(ctx context.Context, system, message string) string {
	if s.model != nil && s.configSvc.GetBool("chatbot_enabled", true) {
		reply, err := s.model.Chat(ctx, system, message)
		if err == nil && strings.TrimSpace(reply) != "" {
			return reply
		}
		logger.Warnf("[Chatbot] Model unavailable: %v", err)
	}
	if topic, ok := matchTopic(message); ok {
		return topic.Answer
	}
	return s.fallback()
}

// Ask answers a citizen's free text or menu topic and records the exchange.
func (s *ChatbotService) Ask(ctx context.Context, userID uint, req *ChatbotAskRequest) (*models.ChatbotResponse, error) {
	message := strings.TrimSpace(req.Message)
	record := models.ChatbotResponse{UserID: userID}

	switch {
	case req.Topic != "":
		topic, ok := findTopic(req.Topic)
		if !ok {
			return nil, response.NewBadRequest("topik tidak dikenal")
		}
		record.Topic = topic.Key
		record.Request = topic.Label
		record.Response = topic.Answer
	case message != "":
		record.Request = message
		record.Response = s.answer(ctx, s.systemPrompt(), message)
	default:
		return nil, response.NewUnprocessable("data tidak valid", map[string]string{"message": "tidak boleh kosong"})
	}

	if err := s.db.Create(&record).Error; err != nil {
		return nil, response.Wrap(err, "gagal menyimpan percakapan")
	}
	return &record, nil
}

// MyResponses pages through a citizen's history, oldest first.
func (s *ChatbotService) MyResponses(userID uint, req *ChatbotListRequest) (*ListResponse[models.ChatbotResponse], error) {
	req.normalize()
	query := s.db.Model(&models.ChatbotResponse{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	var items []models.ChatbotResponse
	if err := query.Order("created_at ASC, id ASC").Offset(req.offset()).Limit(req.PageSize).Find(&items).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	return newList(items, total, req.PageRequest), nil
}

func suggestionPrompt(c *models.Complaint, message string) string {
	category := ""
	if c.Category != nil {
		category = c.Category.Name
	}
	return fmt.Sprintf(
		"Pengaduan %s\nKategori: %s\nJudul: %s\nLokasi: %s\nStatus: %s\nUraian:\n%s\n\nPermintaan petugas:\n%s",
		c.ComplaintNumber, category, c.Title, c.Location, c.Status.Label(), c.Description, message)
}

const suggestionSystemPrompt = "Anda membantu petugas menyusun tanggapan resmi atas pengaduan warga. " +
	"Tulis dalam Bahasa Indonesia yang sopan dan ringkas, gunakan Markdown bila perlu."

// AddSuggestion drafts an answer for an officer about one complaint. The
// officer's message is the suggestion row; the bot's reply is the matching
// transcript line, so suggestions and history merge into one conversation.
func (s *ChatbotService) AddSuggestion(ctx context.Context, adminID uint, req *SuggestionRequest) (*models.ChatbotSuggestion, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, response.NewUnprocessable("data tidak valid", map[string]string{"message": "tidak boleh kosong"})
	}

	var complaint models.Complaint
	if err := s.db.Preload("Category").First(&complaint, req.ComplaintID).Error; err != nil {
		return nil, notFoundOr(err, ErrComplaintNotFound)
	}

	reply := s.answer(ctx, suggestionSystemPrompt, suggestionPrompt(&complaint, message))

	now := time.Now()
	suggestion := models.ChatbotSuggestion{
		ComplaintID: complaint.ID,
		AdminID:     adminID,
		Message:     message,
		Response:    reply,
		CreatedAt:   now,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&suggestion).Error; err != nil {
			return err
		}
		history := models.ChatbotHistory{
			ComplaintID: complaint.ID,
			Sender:      "bot",
			Message:     reply,
			CreatedAt:   now.Add(time.Millisecond),
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, response.Wrap(err, "gagal menyimpan saran")
	}
	return &suggestion, nil
}

func (s *ChatbotService) ListSuggestions(complaintID uint) ([]models.ChatbotSuggestion, error) {
	var items []models.ChatbotSuggestion
	if err := s.db.Where("complaint_id = ?", complaintID).Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	return items, nil
}

func (s *ChatbotService) ListHistory(complaintID uint) ([]models.ChatbotHistory, error) {
	var items []models.ChatbotHistory
	if err := s.db.Where("complaint_id = ?", complaintID).Order("created_at ASC, id ASC").Find(&items).Error; err != nil {
		return nil, response.Wrap(err, "database error")
	}
	return items, nil
}
