package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/laporwarga/backend/pkg/client"
	"github.com/laporwarga/backend/pkg/validation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func validNews() validation.NewsForm {
	return validation.NewsForm{
		Title:      "Banjir di Kampung Melayu",
		Content:    "Air setinggi satu meter merendam permukiman warga.",
		CategoryID: 1,
		Date:       time.Now().AddDate(0, 0, -1),
	}
}

func TestFilterByTitle(t *testing.T) {
	items := []client.News{
		{ID: 1, Title: "Banjir di Jakarta"},
		{ID: 2, Title: "Perbaikan jalan"},
		{ID: 3, Title: "Festival kuliner"},
	}
	got := FilterByTitle(items, "banjir")
	require.Len(t, got, 1)
	assert.Equal(t, "Banjir di Jakarta", got[0].Title)

	got = FilterByTitle(append(items, client.News{ID: 4, Title: "Tanggap BANJIR RT 05"}), "Banjir")
	assert.Len(t, got, 2)

	assert.Len(t, FilterByTitle(items, "  "), 3)
	assert.Empty(t, FilterByTitle(items, "gempa"))
}

func TestNewsBrowser_FiltersFetchedPage(t *testing.T) {
	var gotFilter client.NewsFilter
	api := &fakeAPI{listNews: func(f client.NewsFilter) (*client.Page[client.News], error) {
		gotFilter = f
		return &client.Page[client.News]{
			Items: []client.News{{Title: "Banjir bandang"}, {Title: "Festival budaya"}},
			Total: 2, Page: 2, PageSize: 10,
		}, nil
	}}
	res, err := NewNewsBrowser(api, &recordingNotifier{}).Page(context.Background(), 2, 10, "banjir")
	require.NoError(t, err)
	assert.Equal(t, 2, gotFilter.Page)
	assert.Empty(t, gotFilter.Search, "search is applied locally")
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Banjir bandang", res.Items[0].Title)
}

func TestNewsEditor_UpdateKeepsPhotoWithoutImage(t *testing.T) {
	var gotImage *client.File
	api := &fakeAPI{updateNews: func(id uint, form validation.NewsForm, image *client.File) (*client.News, error) {
		gotImage = image
		photo := "https://img/lama.png"
		if image != nil {
			photo = "https://img/baru.png"
		}
		return &client.News{ID: id, PhotoURL: photo}, nil
	}}
	editor := NewNewsEditor(api, &recordingNotifier{})
	current := &client.News{ID: 5, PhotoURL: "https://img/lama.png"}

	news, fields, err := editor.Update(context.Background(), current, validNews(), nil)
	require.NoError(t, err)
	assert.Nil(t, fields)
	assert.Nil(t, gotImage)
	assert.Equal(t, "https://img/lama.png", news.PhotoURL)

	img := &client.File{Name: "baru.png", Data: pngBytes}
	news, _, err = editor.Update(context.Background(), current, validNews(), img)
	require.NoError(t, err)
	assert.Same(t, img, gotImage)
	assert.Equal(t, "https://img/baru.png", news.PhotoURL)
}

func TestNewsEditor_RejectsBadImage(t *testing.T) {
	api := &fakeAPI{}
	editor := NewNewsEditor(api, &recordingNotifier{})

	_, fields, err := editor.Create(context.Background(), validNews(), &client.File{Name: "x.pdf", Data: []byte("%PDF-1.4\n")})
	require.NoError(t, err)
	assert.Equal(t, "format gambar harus jpeg, png, atau gif", fields["image"])

	big := append(append([]byte(nil), pngBytes...), make([]byte, 5<<20)...)
	_, fields, _ = editor.Create(context.Background(), validNews(), &client.File{Name: "big.png", Data: big})
	assert.Equal(t, "ukuran gambar maksimal 5 MB", fields["image"])
	assert.Empty(t, api.Calls())
}

func TestNewsEditor_DeleteSingleAndBulk(t *testing.T) {
	var batches [][]uint
	api := &fakeAPI{deleteIDs: func(ids []uint) (int64, error) {
		batches = append(batches, ids)
		return int64(len(ids)), nil
	}}
	editor := NewNewsEditor(api, &recordingNotifier{})
	require.NoError(t, editor.Delete(context.Background(), 4))
	require.NoError(t, editor.Delete(context.Background(), 1, 2, 3))
	require.NoError(t, editor.Delete(context.Background()))
	assert.Equal(t, [][]uint{{4}, {1, 2, 3}}, batches)
}

func TestComments_AppendRejectsBlank(t *testing.T) {
	api := &fakeAPI{}
	c := NewComments(api, &recordingNotifier{}, 3)

	fields, err := c.Append(context.Background(), "  \n ")
	require.NoError(t, err)
	assert.Equal(t, "tidak boleh kosong", fields["content"])
	assert.Empty(t, api.Calls())

	fields, err = c.Append(context.Background(), "  Semoga cepat surut  ")
	require.NoError(t, err)
	assert.Nil(t, fields)
	require.Len(t, c.Items(), 1)
	assert.Equal(t, "Semoga cepat surut", c.Items()[0].Content)
}

func TestComments_LoadAndDelete(t *testing.T) {
	api := &fakeAPI{listComments: func(newsID uint, _ client.ListOptions) (*client.Page[client.Comment], error) {
		return &client.Page[client.Comment]{Items: []client.Comment{{ID: 1, NewsID: newsID}, {ID: 2, NewsID: newsID}}, Total: 2}, nil
	}}
	c := NewComments(api, &recordingNotifier{}, 8)
	require.NoError(t, c.Load(context.Background(), client.ListOptions{Page: 1, PageSize: 10}))
	assert.Len(t, c.Items(), 2)

	sel := NewBulkSelection()
	sel.SelectAll([]uint{1, 2})
	n, err := c.Deleter().Delete(context.Background(), sel)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	assert.Equal(t, 1, api.count("DeleteComments"))
}
