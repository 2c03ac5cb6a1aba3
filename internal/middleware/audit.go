package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/laporwarga/backend/internal/services"
)

const maxAuditBody = 2000

var sensitiveKeys = []string{"password", "api_key", "secret", "token", "code"}

// AuditLog records write operations (POST/PUT/DELETE) to system_logs.
// Multipart bodies are not captured.
func AuditLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		method := c.Request.Method
		if method != http.MethodPost && method != http.MethodPut && method != http.MethodDelete {
			c.Next()
			return
		}

		var body interface{}
		if c.Request.Body != nil && strings.HasPrefix(c.ContentType(), "application/json") {
			raw, _ := io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(raw))
			body = maskBody(raw)
		}

		c.Next()

		status := c.Writer.Status()
		module, action := parseRouteInfo(c.FullPath(), method)
		message := formatAuditMessage(GetUsername(c), method, c.Request.URL.Path, status)

		var uid *uint
		if id := GetUserID(c); id > 0 {
			uid = &id
		}

		entry := services.LogEntry{
			UserID:     uid,
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			HTTPStatus: status,
			Extra: map[string]interface{}{
				"method": method,
				"path":   c.Request.URL.Path,
				"body":   body,
				"audit":  true,
			},
		}
		switch {
		case status >= 500:
			services.LogError(module, action, message, entry)
		case status >= 400:
			services.LogWarning(module, action, message, entry)
		default:
			services.LogInfo(module, action, message, entry)
		}
	}
}

// parseRouteInfo extracts module and action from a Gin route pattern.
// e.g. "/api/complaints/:id/status" + "PUT" → module="Complaints", action="Update"
func parseRouteInfo(fullPath, method string) (module, action string) {
	path := strings.TrimPrefix(fullPath, "/api/")

	module = strings.SplitN(path, "/", 2)[0]
	if module == "" {
		module = "unknown"
	}
	words := strings.Fields(strings.ReplaceAll(module, "-", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	module = strings.Join(words, "-")

	switch method {
	case http.MethodPost:
		action = "Create"
	case http.MethodPut:
		action = "Update"
	case http.MethodDelete:
		action = "Delete"
	default:
		action = method
	}
	return module, action
}

// formatAuditMessage creates a human-readable audit message.
func formatAuditMessage(username, method, path string, status int) string {
	var b strings.Builder
	b.WriteString("[Audit] ")
	if username != "" {
		b.WriteString(username)
		b.WriteString(" ")
	}
	b.WriteString(method)
	b.WriteString(" ")
	b.WriteString(path)
	b.WriteString(" → ")
	if status >= 200 && status < 300 {
		b.WriteString("OK")
	} else {
		b.WriteString("Failed")
	}
	return b.String()
}

// maskBody decodes a JSON body and hides sensitive values. Non-object bodies
// are kept as truncated text.
func maskBody(raw []byte) interface{} {
	if len(raw) == 0 {
		return nil
	}
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		text := string(raw)
		if len(text) > maxAuditBody {
			text = text[:maxAuditBody] + "...[truncated]"
		}
		return text
	}
	maskMap(obj)
	return obj
}

func maskMap(obj map[string]interface{}) {
	for key, value := range obj {
		if isSensitive(key) {
			obj[key] = "***"
			continue
		}
		if nested, ok := value.(map[string]interface{}); ok {
			maskMap(nested)
		}
	}
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
