package workflow

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/laporwarga/backend/pkg/client"
	"github.com/laporwarga/backend/pkg/logger"
)

type Sender string

const (
	SenderUser   Sender = "user"
	SenderAdmin  Sender = "admin"
	SenderBot    Sender = "bot"
	SenderSystem Sender = "system"
)

// ChatMessage is one line of an in-memory chat transcript.
type ChatMessage struct {
	Sender Sender
	Text   string
	Time   time.Time
}

var suggestionReplacer = strings.NewReplacer(`\u0026`, "&", `\n`, "\n")

// NormalizeSuggestionText strips surrounding quotes and unescapes the
// sequences the suggestion endpoint leaves in stored text.
func NormalizeSuggestionText(s string) string {
	s = strings.Trim(s, `"`)
	return suggestionReplacer.Replace(s)
}

var botReplacer = strings.NewReplacer(`\n`, "\n", `\"`, `"`, `\\`, `\`)

// DecodeBotResponse undoes the JSON string encoding some bot replies carry.
// When s is not a JSON string the common escapes are replaced by hand.
func DecodeBotResponse(s string) string {
	if strings.HasPrefix(s, `"`) {
		var decoded string
		if err := json.Unmarshal([]byte(s), &decoded); err == nil {
			return decoded
		}
	}
	return botReplacer.Replace(s)
}

// MergeTranscript interleaves suggestions and history into one transcript
// ordered by time. Suggestions are admin lines; history lines keep their
// sender, defaulting to admin.
func MergeTranscript(suggestions []client.ChatbotSuggestion, history []client.ChatbotHistory) []ChatMessage {
	out := make([]ChatMessage, 0, len(suggestions)+len(history))
	for _, s := range suggestions {
		out = append(out, ChatMessage{Sender: SenderAdmin, Text: NormalizeSuggestionText(s.Message), Time: s.CreatedAt})
	}
	for _, h := range history {
		sender := Sender(h.Sender)
		if sender == "" {
			sender = SenderAdmin
		}
		out = append(out, ChatMessage{Sender: sender, Text: NormalizeSuggestionText(h.Message), Time: h.CreatedAt})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time) })
	return out
}

// RenderMarkdown returns the Markdown source shown for msg. Bot and system
// lines get a blank line between paragraphs.
func RenderMarkdown(msg ChatMessage) string {
	text := NormalizeSuggestionText(msg.Text)
	if msg.Sender != SenderBot && msg.Sender != SenderSystem {
		return text
	}
	var paras []string
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			paras = append(paras, line)
		}
	}
	return strings.Join(paras, "\n\n")
}

// transcript is the state shared by both chat variants.
type transcript struct {
	mu       sync.Mutex
	messages []ChatMessage
	loading  bool
	now      func() time.Time
}

func (t *transcript) append(sender Sender, text string) {
	t.mu.Lock()
	t.messages = append(t.messages, ChatMessage{Sender: sender, Text: text, Time: t.now()})
	t.mu.Unlock()
}

func (t *transcript) replace(msgs []ChatMessage) {
	t.mu.Lock()
	t.messages = msgs
	t.mu.Unlock()
}

func (t *transcript) setLoading(v bool) {
	t.mu.Lock()
	t.loading = v
	t.mu.Unlock()
}

func (t *transcript) Messages() []ChatMessage {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]ChatMessage(nil), t.messages...)
}

func (t *transcript) Loading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// SuggestionChat is the admin chat attached to one complaint.
type SuggestionChat struct {
	transcript
	api         ChatbotAPI
	complaintID uint
}

func NewSuggestionChat(api ChatbotAPI, complaintID uint) *SuggestionChat {
	return &SuggestionChat{transcript: transcript{now: time.Now}, api: api, complaintID: complaintID}
}

// Open loads prior suggestions and history. A failed fetch leaves a single
// error line in the transcript.
func (c *SuggestionChat) Open(ctx context.Context) {
	c.setLoading(true)
	defer c.setLoading(false)

	suggestions, err := c.api.ListSuggestions(ctx, c.complaintID)
	if err != nil {
		c.fail(err)
		return
	}
	history, err := c.api.ListChatHistory(ctx, c.complaintID)
	if err != nil {
		c.fail(err)
		return
	}
	c.replace(MergeTranscript(suggestions, history))
}

func (c *SuggestionChat) fail(err error) {
	logger.Warnf("[Chatbot] Suggestion chat for complaint %d: %v", c.complaintID, err)
	c.replace([]ChatMessage{{Sender: SenderBot, Text: MsgChatError, Time: c.now()}})
}

// Send appends text as an admin line, then the bot's reply.
func (c *SuggestionChat) Send(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.append(SenderAdmin, text)

	c.setLoading(true)
	defer c.setLoading(false)

	res, err := c.api.AddSuggestion(ctx, c.complaintID, text)
	if err != nil {
		logger.Warnf("[Chatbot] Add suggestion for complaint %d: %v", c.complaintID, err)
		c.append(SenderBot, MsgChatError)
		return
	}
	reply := ""
	if res != nil {
		reply = strings.TrimSpace(res.Response)
	}
	if reply == "" {
		reply = MsgBotNoResponse
	}
	c.append(SenderBot, reply)
}

// HelpTopics is the canned menu of the help bot. Keys match the server's.
var HelpTopics = []client.ChatTopic{
	{Key: "cara_lapor", Label: "Cara membuat pengaduan"},
	{Key: "status", Label: "Arti status pengaduan"},
	{Key: "kategori", Label: "Kategori pengaduan"},
	{Key: "foto", Label: "Ketentuan foto"},
	{Key: "akun", Label: "Pendaftaran dan verifikasi akun"},
}

const helpHistoryPageSize = 50

// HelpChat is the end-user help bot.
type HelpChat struct {
	transcript
	api ChatbotAPI
}

func NewHelpChat(api ChatbotAPI) *HelpChat {
	return &HelpChat{transcript: transcript{now: time.Now}, api: api}
}

func (c *HelpChat) Topics() []client.ChatTopic {
	return append([]client.ChatTopic(nil), HelpTopics...)
}

// Open rebuilds the transcript from every page of the user's past
// exchanges, each one as a user line followed by a bot line.
func (c *HelpChat) Open(ctx context.Context) {
	c.setLoading(true)
	defer c.setLoading(false)

	var msgs []ChatMessage
	for page := 1; ; page++ {
		res, err := c.api.MyChatbotResponses(ctx, client.ListOptions{Page: page, PageSize: helpHistoryPageSize})
		if err != nil {
			logger.Warnf("[Chatbot] Help history: %v", err)
			c.replace([]ChatMessage{{Sender: SenderBot, Text: MsgChatError, Time: c.now()}})
			return
		}
		for _, r := range res.Items {
			msgs = append(msgs,
				ChatMessage{Sender: SenderUser, Text: r.Request, Time: r.CreatedAt},
				ChatMessage{Sender: SenderBot, Text: DecodeBotResponse(r.Response), Time: r.CreatedAt},
			)
		}
		if len(res.Items) == 0 || int64(page*helpHistoryPageSize) >= res.Total {
			break
		}
	}
	c.replace(msgs)
}

// Send asks the bot a free-text question.
func (c *HelpChat) Send(ctx context.Context, text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	c.ask(ctx, text, client.ChatbotRequest{Message: text})
}

// SelectTopic asks the canned question behind key. Unknown keys are ignored.
func (c *HelpChat) SelectTopic(ctx context.Context, key string) {
	for _, t := range HelpTopics {
		if t.Key == key {
			c.ask(ctx, t.Label, client.ChatbotRequest{Topic: t.Key})
			return
		}
	}
}

func (c *HelpChat) ask(ctx context.Context, shown string, req client.ChatbotRequest) {
	c.append(SenderUser, shown)

	c.setLoading(true)
	defer c.setLoading(false)

	res, err := c.api.SendChatbot(ctx, req)
	if err != nil {
		logger.Warnf("[Chatbot] Help request: %v", err)
		c.append(SenderBot, MsgChatError)
		return
	}
	reply := ""
	if res != nil {
		reply = strings.TrimSpace(DecodeBotResponse(res.Response))
	}
	if reply == "" {
		reply = MsgBotNoResponse
	}
	c.append(SenderBot, reply)
}
