package workflow

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/laporwarga/backend/pkg/client"
	"github.com/laporwarga/backend/pkg/logger"
	"github.com/laporwarga/backend/pkg/validation"
	"golang.org/x/sync/errgroup"
)

// Image is a file picked for upload together with its preview handle.
type Image struct {
	Name    string
	Size    int64
	Data    []byte
	Preview string
}

// SubmissionForm is the state of the complaint form.
type SubmissionForm struct {
	Fields validation.ComplaintForm

	images   []Image
	previews *PreviewRegistry
}

func NewSubmissionForm(previews *PreviewRegistry) *SubmissionForm {
	if previews == nil {
		previews = NewPreviewRegistry()
	}
	return &SubmissionForm{previews: previews}
}

// AddImage selects a file, rejecting a fourth image or one over 10 MB.
func (f *SubmissionForm) AddImage(name string, data []byte) (Image, error) {
	rule := validation.ComplaintImages
	if err := rule.CheckCount(len(f.images) + 1); err != nil {
		return Image{}, err
	}
	if err := rule.CheckSize(int64(len(data))); err != nil {
		return Image{}, err
	}
	img := Image{Name: name, Size: int64(len(data)), Data: data, Preview: f.previews.Create(name)}
	f.images = append(f.images, img)
	return img, nil
}

// RemoveImage drops the i-th image and revokes its preview.
func (f *SubmissionForm) RemoveImage(i int) {
	if i < 0 || i >= len(f.images) {
		return
	}
	f.previews.Revoke(f.images[i].Preview)
	f.images = append(f.images[:i], f.images[i+1:]...)
}

func (f *SubmissionForm) Images() []Image {
	return append([]Image(nil), f.images...)
}

// Reset clears every field and revokes all previews.
func (f *SubmissionForm) Reset() {
	for _, img := range f.images {
		f.previews.Revoke(img.Preview)
	}
	f.images = nil
	f.Fields = validation.ComplaintForm{}
}

// GenerateComplaintNumber derives the public number from the clock. Two
// submissions in the same millisecond modulo one million collide; the server
// rejects the second with 409.
func GenerateComplaintNumber(now time.Time) string {
	ms := now.UnixMilli() % 1_000_000
	if ms < 0 {
		ms += 1_000_000
	}
	return fmt.Sprintf("#KES%06d", ms)
}

// Result is the outcome of a submission. Exactly one of Complaint, Fields
// or Err is set.
type Result struct {
	Complaint *client.Complaint
	Fields    validation.FieldErrors
	Err       error
}

func (r Result) OK() bool { return r.Complaint != nil }

type Submitter struct {
	api      ComplaintAPI
	uploader ImageUploader
	notify   Notifier
	nav      Navigator
	now      func() time.Time

	mu      sync.Mutex
	loading bool
}

func NewSubmitter(api ComplaintAPI, uploader ImageUploader, notify Notifier, nav Navigator) *Submitter {
	return &Submitter{api: api, uploader: uploader, notify: notify, nav: nav, now: time.Now}
}

func (s *Submitter) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Submitter) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

// Submit validates the form, uploads every image, then creates the
// complaint in one call. The form is reset only on success.
func (s *Submitter) Submit(ctx context.Context, form *SubmissionForm) Result {
	if fields := validation.Validate(&form.Fields); fields != nil {
		return Result{Fields: fields}
	}

	s.setLoading(true)
	defer s.setLoading(false)

	urls, err := s.uploadAll(ctx, form.images)
	if err != nil {
		logger.Warnf("[Workflow] Complaint upload aborted: %v", err)
		s.notify.Error(MsgSubmitFailed)
		return Result{Err: err}
	}

	req := client.CreateComplaintRequest{
		ComplaintForm:   form.Fields,
		ComplaintNumber: GenerateComplaintNumber(s.now()),
		PhotoURLs:       urls,
	}
	complaint, err := s.api.CreateComplaint(ctx, req)
	if err != nil {
		s.notify.Error(client.MessageOf(err, MsgSubmitFailed))
		return Result{Err: err}
	}

	form.Reset()
	if s.nav != nil {
		s.notify.Success(MsgSubmitSuccess, Action{Label: MsgViewStatusList, Run: s.nav.ToStatusList})
	} else {
		s.notify.Success(MsgSubmitSuccess)
	}
	return Result{Complaint: complaint}
}

// uploadAll uploads concurrently and keeps input order. The first failure
// cancels the rest.
func (s *Submitter) uploadAll(ctx context.Context, images []Image) ([]string, error) {
	urls := make([]string, len(images))
	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		g.Go(func() error {
			url, err := s.uploader.Upload(gctx, img.Name, img.Data)
			if err != nil {
				return fmt.Errorf("upload %s: %w", img.Name, err)
			}
			urls[i] = url
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return urls, nil
}
