package workflow

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/laporwarga/backend/pkg/client"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSuggestionText(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"quotes stripped", `"Segera ditangani"`, "Segera ditangani"},
		{"ampersand escape", `Jalan \u0026 jembatan`, "Jalan & jembatan"},
		{"literal newline", `Baris satu\nBaris dua`, "Baris satu\nBaris dua"},
		{"all together", `"A \u0026 B\nC"`, "A & B\nC"},
		{"plain", "tanpa perubahan", "tanpa perubahan"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeSuggestionText(tt.in))
		})
	}
}

func TestDecodeBotResponse(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"json string", `"Halo\nApa kabar? \"ok\""`, "Halo\nApa kabar? \"ok\""},
		{"raw newline escape", `Halo\nDunia`, "Halo\nDunia"},
		{"raw quote escape", `Dia bilang \"ya\"`, `Dia bilang "ya"`},
		{"raw backslash escape", `C:\\data`, `C:\data`},
		{"not json object", `{"a":1}`, `{"a":1}`},
		{"json null literal", "null", "null"},
		{"json number literal", "42", "42"},
		{"json boolean literal", "true", "true"},
		{"unterminated quote", `"Halo`, `"Halo`},
		{"plain text", "Terima kasih", "Terima kasih"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DecodeBotResponse(tt.in))
		})
	}
}

func TestMergeTranscript(t *testing.T) {
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	suggestions := []client.ChatbotSuggestion{
		{Message: `"Tolong cek lokasi"`, CreatedAt: base},
		{Message: "Sudah diperbaiki?", CreatedAt: base.Add(2 * time.Minute)},
	}
	history := []client.ChatbotHistory{
		{Sender: "bot", Message: `Lokasi sudah dicek\nHasil: aman`, CreatedAt: base.Add(time.Minute)},
		{Message: "tanpa pengirim", CreatedAt: base.Add(3 * time.Minute)},
	}

	got := MergeTranscript(suggestions, history)
	require.Len(t, got, 4)
	assert.Equal(t, []Sender{SenderAdmin, SenderBot, SenderAdmin, SenderAdmin},
		[]Sender{got[0].Sender, got[1].Sender, got[2].Sender, got[3].Sender})
	assert.Equal(t, "Tolong cek lokasi", got[0].Text)
	assert.Equal(t, "Lokasi sudah dicek\nHasil: aman", got[1].Text)
	for i := 1; i < len(got); i++ {
		assert.False(t, got[i].Time.Before(got[i-1].Time))
	}
}

func TestRenderMarkdown(t *testing.T) {
	assert.Equal(t, "Satu\n\nDua", RenderMarkdown(ChatMessage{Sender: SenderBot, Text: `Satu\nDua`}))
	assert.Equal(t, "Satu\n\nDua", RenderMarkdown(ChatMessage{Sender: SenderSystem, Text: "Satu\n\n\nDua"}))
	assert.Equal(t, "Satu\nDua", RenderMarkdown(ChatMessage{Sender: SenderAdmin, Text: `"Satu\nDua"`}))
}

func TestSuggestionChat_Send(t *testing.T) {
	api := &fakeAPI{addSuggestion: func(id uint, msg string) (*client.ChatbotSuggestion, error) {
		return &client.ChatbotSuggestion{ComplaintID: id, Message: msg, Response: "Prioritaskan perbaikan."}, nil
	}}
	chat := NewSuggestionChat(api, 12)
	chat.Send(context.Background(), "Apa langkah berikutnya?")

	msgs := chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, ChatMessage{Sender: SenderAdmin, Text: "Apa langkah berikutnya?", Time: msgs[0].Time}, msgs[0])
	assert.Equal(t, SenderBot, msgs[1].Sender)
	assert.Equal(t, "Prioritaskan perbaikan.", msgs[1].Text)
	assert.False(t, chat.Loading())
}

func TestSuggestionChat_EmptyReplyFallsBack(t *testing.T) {
	chat := NewSuggestionChat(&fakeAPI{}, 12)
	chat.Send(context.Background(), "halo")
	msgs := chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, MsgBotNoResponse, msgs[1].Text)
}

func TestSuggestionChat_FailureAddsOneErrorLine(t *testing.T) {
	api := &fakeAPI{addSuggestion: func(uint, string) (*client.ChatbotSuggestion, error) {
		return nil, errors.New("timeout")
	}}
	chat := NewSuggestionChat(api, 12)
	chat.Send(context.Background(), "halo")
	msgs := chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, SenderBot, msgs[1].Sender)
	assert.Equal(t, MsgChatError, msgs[1].Text)
	assert.False(t, chat.Loading())
}

func TestSuggestionChat_Open(t *testing.T) {
	base := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	api := &fakeAPI{
		listSuggestions: func(uint) ([]client.ChatbotSuggestion, error) {
			return []client.ChatbotSuggestion{{Message: "Saran", CreatedAt: base}}, nil
		},
		listHistory: func(uint) ([]client.ChatbotHistory, error) {
			return []client.ChatbotHistory{{Sender: "bot", Message: "Jawaban", CreatedAt: base.Add(time.Second)}}, nil
		},
	}
	chat := NewSuggestionChat(api, 12)
	chat.Open(context.Background())
	msgs := chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Saran", msgs[0].Text)
	assert.Equal(t, "Jawaban", msgs[1].Text)
}

func TestChat_BlankInputMakesNoCall(t *testing.T) {
	api := &fakeAPI{}
	suggestion := NewSuggestionChat(api, 1)
	help := NewHelpChat(api)

	for _, in := range []string{"", "   ", "\n\t"} {
		suggestion.Send(context.Background(), in)
		help.Send(context.Background(), in)
	}
	assert.Empty(t, api.Calls())
	assert.Empty(t, suggestion.Messages())
	assert.Empty(t, help.Messages())
}

func TestHelpChat_OpenFlattensAllPages(t *testing.T) {
	t0 := time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)
	var pages []int
	api := &fakeAPI{myResponses: func(opts client.ListOptions) (*client.Page[client.ChatbotResponse], error) {
		pages = append(pages, opts.Page)
		items := make([]client.ChatbotResponse, 0, helpHistoryPageSize)
		if opts.Page == 1 {
			for i := 0; i < helpHistoryPageSize; i++ {
				items = append(items, client.ChatbotResponse{Request: "q", Response: "a", CreatedAt: t0})
			}
		} else {
			items = append(items, client.ChatbotResponse{Request: "terakhir", Response: `"Baris\nbaru"`, CreatedAt: t0.Add(time.Hour)})
		}
		return &client.Page[client.ChatbotResponse]{Items: items, Total: helpHistoryPageSize + 1, Page: opts.Page}, nil
	}}

	chat := NewHelpChat(api)
	chat.Open(context.Background())

	assert.Equal(t, []int{1, 2}, pages)
	msgs := chat.Messages()
	require.Len(t, msgs, 2*(helpHistoryPageSize+1))
	assert.Equal(t, SenderUser, msgs[0].Sender)
	assert.Equal(t, SenderBot, msgs[1].Sender)
	last := msgs[len(msgs)-2:]
	assert.Equal(t, ChatMessage{Sender: SenderUser, Text: "terakhir", Time: t0.Add(time.Hour)}, last[0])
	assert.Equal(t, "Baris\nbaru", last[1].Text)
}

func TestHelpChat_SelectTopic(t *testing.T) {
	var got client.ChatbotRequest
	api := &fakeAPI{sendChatbot: func(req client.ChatbotRequest) (*client.ChatbotResponse, error) {
		got = req
		return &client.ChatbotResponse{Response: `"**Status pengaduan**\n\n- *Diproses*"`}, nil
	}}
	chat := NewHelpChat(api)
	assert.Len(t, chat.Topics(), len(HelpTopics))

	chat.SelectTopic(context.Background(), "status")
	assert.Equal(t, "status", got.Topic)
	assert.Empty(t, got.Message)

	msgs := chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, "Arti status pengaduan", msgs[0].Text)
	assert.Equal(t, "**Status pengaduan**\n\n- *Diproses*", msgs[1].Text)

	chat.SelectTopic(context.Background(), "tidak-ada")
	assert.Equal(t, 1, api.count("SendChatbot"))
}

func TestHelpChat_SendFailure(t *testing.T) {
	api := &fakeAPI{sendChatbot: func(client.ChatbotRequest) (*client.ChatbotResponse, error) {
		return nil, errors.New("offline")
	}}
	chat := NewHelpChat(api)
	chat.Send(context.Background(), "Bagaimana cara lapor?")
	msgs := chat.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, MsgChatError, msgs[1].Text)
	assert.False(t, chat.Loading())
}
