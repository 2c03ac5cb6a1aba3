package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/laporwarga/backend/pkg/lifecycle"
	"github.com/laporwarga/backend/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	code := 0
	if status >= 400 {
		code = status
	}
	json.NewEncoder(w).Encode(map[string]interface{}{"code": code, "message": message, "data": data})
}

func newServer(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api")
}

func TestLogin_RemembersToken(t *testing.T) {
	var authHeader string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "warga@example.com", in["email"])
			_, hasType := in["auth_type"]
			assert.False(t, hasType)
			writeEnvelope(w, http.StatusOK, "ok", map[string]interface{}{
				"access_token":  "access-1",
				"refresh_token": "refresh-1",
				"user":          map[string]interface{}{"id": 3, "role": "user"},
			})
		case "/api/auth/me":
			authHeader = r.Header.Get("Authorization")
			writeEnvelope(w, http.StatusOK, "ok", map[string]interface{}{"id": 3})
		}
	})

	session, err := c.Login(context.Background(), "warga@example.com", "rahasia123", "")
	require.NoError(t, err)
	assert.Equal(t, "refresh-1", session.RefreshToken)
	assert.Equal(t, uint(3), session.User.ID)

	_, err = c.Me(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer access-1", authHeader)
}

func TestTokenSourceOverrides(t *testing.T) {
	var authHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		writeEnvelope(w, http.StatusOK, "ok", []interface{}{})
	}))
	defer srv.Close()

	c := New(srv.URL, WithToken("ignored"), WithTokenSource(TokenFunc(func() string { return "from-source" })))
	_, err := c.ListComplaintCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer from-source", authHeader)
}

func TestNew_NoDefaultTimeout(t *testing.T) {
	c := New("http://lapor.test/api")
	assert.Zero(t, c.httpClient.Timeout)

	custom := &http.Client{Timeout: time.Second}
	assert.Same(t, custom, New("http://lapor.test/api", WithHTTPClient(custom)).httpClient)
}

func TestAPIError(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"code":    422,
			"message": "data tidak valid",
			"errors":  map[string]string{"title": "minimal 5 karakter"},
		})
	})

	_, err := c.CreateComplaint(context.Background(), CreateComplaintRequest{ComplaintNumber: "#KES000001"})
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.Status)
	assert.Equal(t, "minimal 5 karakter", apiErr.Fields["title"])
	assert.Equal(t, "data tidak valid", MessageOf(err, "gagal"))
}

func TestAPIError_NonJSONBody(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.GetNews(context.Background(), 1)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusText(http.StatusBadGateway), apiErr.Message)
}

func TestMessageOf_Fallback(t *testing.T) {
	assert.Equal(t, "gagal", MessageOf(errors.New("dial tcp: refused"), "gagal"))
	assert.Equal(t, "gagal", MessageOf(&APIError{Status: 500}, "gagal"))
	assert.Equal(t, "gagal", MessageOf(nil, "gagal"))
}

func TestCreateComplaint_Body(t *testing.T) {
	var got map[string]interface{}
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/complaints", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		writeEnvelope(w, http.StatusCreated, "created", map[string]interface{}{"id": 9, "status": "proses"})
	})

	req := CreateComplaintRequest{
		ComplaintForm: validation.ComplaintForm{
			CategoryID:  2,
			Title:       "Jalan Rusak Parah",
			Location:    "Jl. Merdeka",
			Description: "Lubang besar di tengah jalan",
		},
		ComplaintNumber: "#KES123456",
		PhotoURLs:       []string{"https://img/a.png", "https://img/b.png"},
	}
	out, err := c.CreateComplaint(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, lifecycle.Proses, out.Status)

	assert.Equal(t, float64(2), got["category_id"])
	assert.Equal(t, "#KES123456", got["complaint_number"])
	assert.Equal(t, "Jalan Rusak Parah", got["title"])
	assert.Equal(t, []interface{}{"https://img/a.png", "https://img/b.png"}, got["photo_urls"])
}

func TestListComplaints_Query(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "2", q.Get("page"))
		assert.Equal(t, "5", q.Get("page_size"))
		assert.Equal(t, "3", q.Get("category_id"))
		assert.Equal(t, "tanggapi", q.Get("status"))
		writeEnvelope(w, http.StatusOK, "ok", map[string]interface{}{
			"items": []map[string]interface{}{{"id": 1}}, "total": 6, "page": 2, "page_size": 5,
		})
	})

	page, err := c.ListComplaints(context.Background(), ComplaintFilter{
		ListOptions: ListOptions{Page: 2, PageSize: 5},
		CategoryID:  3,
		Status:      lifecycle.Tanggapi,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.Total)
	assert.Len(t, page.Items, 1)
}

func TestDeleteComplaints(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		var in map[string][]uint
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, []uint{4, 7}, in["ids"])
		writeEnvelope(w, http.StatusOK, "ok", map[string]int{"deleted": 2})
	})

	n, err := c.DeleteComplaints(context.Background(), []uint{4, 7})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestFeedbackEndpoints(t *testing.T) {
	var paths []string
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		paths = append(paths, r.Method+" "+r.URL.Path)
		writeEnvelope(w, http.StatusOK, "ok", map[string]interface{}{"id": 7})
	})

	_, err := c.CreateFeedback(context.Background(), 5, "Segera ditindaklanjuti")
	require.NoError(t, err)
	_, err = c.UpdateFeedback(context.Background(), 5, 7, "Sudah ditindaklanjuti")
	require.NoError(t, err)
	_, err = c.UpdateComplaintStatus(context.Background(), 5, lifecycle.Batal, "duplikat")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"POST /api/complaints/5/feedback",
		"PUT /api/complaints/5/feedback/7",
		"PUT /api/complaints/5/status",
	}, paths)
}

func TestUpdateNews_Multipart(t *testing.T) {
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	form := validation.NewsForm{Title: "Banjir di Jakarta", Content: "Isi berita yang cukup panjang.", CategoryID: 1, Date: date}

	t.Run("without image keeps photo", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "2024-01-15", r.FormValue("date"))
			_, _, err := r.FormFile("image")
			assert.ErrorIs(t, err, http.ErrMissingFile)
			writeEnvelope(w, http.StatusOK, "ok", map[string]interface{}{"id": 1, "photo_url": "https://img/old.png"})
		})
		news, err := c.UpdateNews(context.Background(), 1, form, nil)
		require.NoError(t, err)
		assert.Equal(t, "https://img/old.png", news.PhotoURL)
	})

	t.Run("with image sends file only", func(t *testing.T) {
		c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Empty(t, r.FormValue("old_url"))
			f, hdr, err := r.FormFile("image")
			require.NoError(t, err)
			defer f.Close()
			data, _ := io.ReadAll(f)
			assert.Equal(t, "baru.png", hdr.Filename)
			assert.Equal(t, []byte("png-bytes"), data)
			writeEnvelope(w, http.StatusOK, "ok", map[string]interface{}{"id": 1, "photo_url": "https://img/new.png"})
		})
		news, err := c.UpdateNews(context.Background(), 1, form, &File{Name: "baru.png", Data: []byte("png-bytes")})
		require.NoError(t, err)
		assert.Equal(t, "https://img/new.png", news.PhotoURL)
	})
}

func TestImageHost_Upload(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "complaint", r.FormValue("kind"))
		writeEnvelope(w, http.StatusCreated, "created", map[string]string{"url": "https://img/x.png"})
	})

	url, err := ImageHost{Client: c, Kind: "complaint"}.Upload(context.Background(), "x.png", []byte("data"))
	require.NoError(t, err)
	assert.Equal(t, "https://img/x.png", url)
}

func TestChatbotEndpoints(t *testing.T) {
	c := newServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/chatbot":
			var in map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, "foto", in["topic"])
			_, hasMessage := in["message"]
			assert.False(t, hasMessage)
			writeEnvelope(w, http.StatusCreated, "created", map[string]interface{}{"id": 1, "response": "jawab"})
		case "/api/chatbot/history/4":
			writeEnvelope(w, http.StatusOK, "ok", []map[string]interface{}{{"id": 1, "sender": "admin", "message": "hai"}})
		}
	})

	resp, err := c.SendChatbot(context.Background(), ChatbotRequest{Topic: "foto"})
	require.NoError(t, err)
	assert.Equal(t, "jawab", resp.Response)

	history, err := c.ListChatHistory(context.Background(), 4)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "admin", history[0].Sender)
}
