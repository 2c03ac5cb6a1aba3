package workflow

import (
	"sync"

	"github.com/google/uuid"
)

// PreviewRegistry tracks local preview handles for selected images. Every
// handle must be revoked when its image is removed or the form is reset.
type PreviewRegistry struct {
	mu   sync.Mutex
	live map[string]string // handle -> file name
}

func NewPreviewRegistry() *PreviewRegistry {
	return &PreviewRegistry{live: make(map[string]string)}
}

func (r *PreviewRegistry) Create(name string) string {
	handle := "preview:" + uuid.NewString()
	r.mu.Lock()
	r.live[handle] = name
	r.mu.Unlock()
	return handle
}

// Revoke releases handle. Unknown handles are ignored.
func (r *PreviewRegistry) Revoke(handle string) {
	r.mu.Lock()
	delete(r.live, handle)
	r.mu.Unlock()
}

func (r *PreviewRegistry) RevokeAll() {
	r.mu.Lock()
	r.live = make(map[string]string)
	r.mu.Unlock()
}

// Live reports how many handles have not been revoked.
func (r *PreviewRegistry) Live() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.live)
}
