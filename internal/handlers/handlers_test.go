package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AnshRaj112/emotional-diary-backend/internal/handlers"
	"github.com/AnshRaj112/emotional-diary-backend/internal/metrics"
	"github.com/AnshRaj112/emotional-diary-backend/internal/models"
	"github.com/AnshRaj112/emotional-diary-backend/internal/routes"
	"github.com/AnshRaj112/emotional-diary-backend/internal/services"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const adminSecret = "987412374123"

type fakeUploader struct {
	got []byte
	err error
}

func (f *fakeUploader) Upload(ctx context.Context, file io.Reader) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.got, _ = io.ReadAll(file)
	return "https://res.cloudinary.example/diary/abc.jpg", nil
}

type testServer struct {
	router  http.Handler
	store   *services.InMemoryPostStore
	metrics *metrics.Collector
}

type serverOption func(*serverConfig)

type serverConfig struct {
	imageKey string
	imageURL string
	uploader services.ImageUploader
}

func withImages(key, url string) serverOption {
	return func(c *serverConfig) { c.imageKey, c.imageURL = key, url }
}

func withUploader(u services.ImageUploader) serverOption {
	return func(c *serverConfig) { c.uploader = u }
}

func newTestServer(t *testing.T, opts ...serverOption) *testServer {
	t.Helper()
	var cfg serverConfig
	for _, o := range opts {
		o(&cfg)
	}

	store := services.NewInMemoryPostStore()
	images := services.NewBackgroundImageService(func() string { return cfg.imageKey }, nil, time.Hour, zap.NewNop())
	if cfg.imageURL != "" {
		images.WithBaseURL(cfg.imageURL)
	}
	collector := metrics.NewCollector("test")
	h := handlers.New(
		services.NewPostService(store, services.NewAdminGate(adminSecret, "")),
		images,
		cfg.uploader,
		collector,
		zap.NewNop(),
	)

	r := chi.NewRouter()
	routes.SetupRoutes(r, h, collector.Handler())
	return &testServer{router: r, store: store, metrics: collector}
}

func (s *testServer) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[handlers.ErrorResponse](t, rec).Error
}

func (s *testServer) createPost(t *testing.T, title string) models.Post {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/posts",
		`{"title":"`+title+`","content":"rainy but calm","author":"mira"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[models.Post](t, rec)
}

func TestListPosts_EmptyIsArray(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodGet, "/posts", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestCreatePost(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/posts",
		`{"title":"Day 1","content":"felt good","author":"sam","imageUrl":"https://img.example/a.jpg"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var raw map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &raw))
	assert.Equal(t, "Day 1", raw["title"])
	assert.Equal(t, "https://img.example/a.jpg", raw["imageUrl"])
	assert.Equal(t, float64(0), raw["likes"])
	assert.Equal(t, []interface{}{}, raw["comments"])
	assert.NotEmpty(t, raw["_id"])
	assert.NotEmpty(t, raw["createdAt"])
	assert.Equal(t, float64(1), testutil.ToFloat64(s.metrics.PostsCreated))
}

func TestCreatePost_MissingFields(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{"title":"","content":"x","author":"y"}`,
		`{"title":"t","author":"y"}`,
		`{}`,
		"",
	} {
		rec := s.do(t, http.MethodPost, "/posts", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Missing required fields", errorMessage(t, rec), body)
	}

	posts, err := s.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func TestCreatePost_MalformedBody(t *testing.T) {
	s := newTestServer(t)

	for _, body := range []string{
		`{"title":`,
		`{"title":"t","content":"c","author":"a"} trailing`,
		`{"title":"t","content":"c","author":"a"}{}`,
	} {
		rec := s.do(t, http.MethodPost, "/posts", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
		assert.Equal(t, "Invalid request body", errorMessage(t, rec), body)
	}

	posts, err := s.store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, posts)

	rec := s.do(t, http.MethodPost, "/posts", "{\"title\":\"t\",\"content\":\"c\",\"author\":\"a\"}\n")
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestListPosts_NewestFirst(t *testing.T) {
	s := newTestServer(t)
	first := s.createPost(t, "first")
	time.Sleep(2 * time.Millisecond)
	second := s.createPost(t, "second")

	posts := decode[[]models.Post](t, s.do(t, http.MethodGet, "/posts", ""))

	require.Len(t, posts, 2)
	assert.Equal(t, second.ID, posts[0].ID)
	assert.Equal(t, first.ID, posts[1].ID)
}

func TestGetPost(t *testing.T) {
	s := newTestServer(t)
	post := s.createPost(t, "hello")

	rec := s.do(t, http.MethodGet, "/posts/"+post.ID.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, post.ID, decode[models.Post](t, rec).ID)

	rec = s.do(t, http.MethodGet, "/posts/"+primitive.NewObjectID().Hex(), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", errorMessage(t, rec))

	rec = s.do(t, http.MethodGet, "/posts/not-an-id", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid post ID", errorMessage(t, rec))
}

func TestLikePost(t *testing.T) {
	s := newTestServer(t)
	post := s.createPost(t, "likeable")

	for i := 0; i < 3; i++ {
		rec := s.do(t, http.MethodPost, "/posts/"+post.ID.Hex()+"/like", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, decode[handlers.SuccessResponse](t, rec).Success)
	}

	got := decode[models.Post](t, s.do(t, http.MethodGet, "/posts/"+post.ID.Hex(), ""))
	assert.Equal(t, int64(3), got.Likes)

	rec := s.do(t, http.MethodPost, "/posts/"+primitive.NewObjectID().Hex()+"/like", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodPost, "/posts/zzz/like", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddComment(t *testing.T) {
	s := newTestServer(t)
	post := s.createPost(t, "talk to me")

	rec := s.do(t, http.MethodPost, "/posts/"+post.ID.Hex()+"/comment", `{"author":"lee","content":"hugs"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	comment := decode[models.Comment](t, rec)
	assert.NotEmpty(t, comment.ID)
	assert.Equal(t, "lee", comment.Author)
	assert.Equal(t, "hugs", comment.Content)
	assert.False(t, comment.CreatedAt.IsZero())

	got := decode[models.Post](t, s.do(t, http.MethodGet, "/posts/"+post.ID.Hex(), ""))
	require.Len(t, got.Comments, 1)
	assert.Equal(t, comment.ID, got.Comments[0].ID)
}

func TestAddComment_Errors(t *testing.T) {
	s := newTestServer(t)
	post := s.createPost(t, "quiet")

	rec := s.do(t, http.MethodPost, "/posts/"+post.ID.Hex()+"/comment", `{"author":"lee"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Author and content are required", errorMessage(t, rec))

	rec = s.do(t, http.MethodPost, "/posts/bad/comment", `{"author":"lee","content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid post ID", errorMessage(t, rec))

	rec = s.do(t, http.MethodPost, "/posts/"+primitive.NewObjectID().Hex()+"/comment", `{"author":"lee","content":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", errorMessage(t, rec))
}

func TestDeletePost_Lifecycle(t *testing.T) {
	s := newTestServer(t)
	post := s.createPost(t, "to remove")
	path := "/posts/" + post.ID.Hex()

	s.do(t, http.MethodPost, path+"/like", "")
	s.do(t, http.MethodPost, path+"/comment", `{"author":"a","content":"b"}`)

	rec := s.do(t, http.MethodDelete, "/admin"+path, `{"password":"`+adminSecret+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[handlers.SuccessResponse](t, rec).Success)

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, path, "").Code)
	assert.JSONEq(t, `[]`, s.do(t, http.MethodGet, "/posts", "").Body.String())

	rec = s.do(t, http.MethodDelete, "/admin"+path, `{"password":"`+adminSecret+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", errorMessage(t, rec))
}

func TestDeletePost_WrongSecretLeavesPost(t *testing.T) {
	s := newTestServer(t)
	post := s.createPost(t, "keep me")

	for _, body := range []string{`{"password":"nope"}`, `{}`, ""} {
		rec := s.do(t, http.MethodDelete, "/admin/posts/"+post.ID.Hex(), body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, body)
		assert.Equal(t, "Unauthorized", errorMessage(t, rec))
	}

	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/posts/"+post.ID.Hex(), "").Code)
}

func TestDeletePost_SecretCheckedBeforeID(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodDelete, "/admin/posts/garbage", `{"password":"nope"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodDelete, "/admin/posts/garbage", `{"password":"`+adminSecret+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid post ID", errorMessage(t, rec))
}

func TestDeleteComment(t *testing.T) {
	s := newTestServer(t)
	post := s.createPost(t, "comments")
	path := "/posts/" + post.ID.Hex()

	keep := decode[models.Comment](t, s.do(t, http.MethodPost, path+"/comment", `{"author":"a","content":"keep"}`))
	drop := decode[models.Comment](t, s.do(t, http.MethodPost, path+"/comment", `{"author":"b","content":"drop"}`))

	rec := s.do(t, http.MethodDelete, "/admin"+path+"/comments/"+drop.ID, `{"password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, http.MethodDelete, "/admin"+path+"/comments/"+drop.ID, `{"password":"`+adminSecret+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[handlers.SuccessResponse](t, rec).Success)

	got := decode[models.Post](t, s.do(t, http.MethodGet, path, ""))
	require.Len(t, got.Comments, 1)
	assert.Equal(t, keep.ID, got.Comments[0].ID)

	rec = s.do(t, http.MethodDelete, "/admin"+path+"/comments/"+drop.ID, `{"password":"`+adminSecret+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Comment not found or already deleted", errorMessage(t, rec))

	rec = s.do(t, http.MethodDelete, "/admin/posts/"+primitive.NewObjectID().Hex()+"/comments/"+keep.ID, `{"password":"`+adminSecret+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Post not found", errorMessage(t, rec))
}

func TestAPIPrefixServesSameRoutes(t *testing.T) {
	s := newTestServer(t)
	post := s.createPost(t, "prefixed")

	rec := s.do(t, http.MethodGet, "/api/posts/"+post.ID.Hex(), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, post.ID, decode[models.Post](t, rec).ID)
}

func TestGetBackgrounds(t *testing.T) {
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "k-1", r.URL.Query().Get("key"))
		w.Write([]byte(`{"hits":[{"largeImageURL":"https://cdn.example/1.jpg","pageURL":"https://pixabay.com/p/1/","user":"anna","user_id":42}]}`))
	}))
	defer upstream.Close()
	s := newTestServer(t, withImages("k-1", upstream.URL))

	rec := s.do(t, http.MethodGet, "/images/backgrounds", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{
		"imageUrl": "https://cdn.example/1.jpg",
		"photographer": "anna",
		"photographerUrl": "https://pixabay.com/users/anna-42/",
		"sourceUrl": "https://pixabay.com/p/1/"
	}]`, rec.Body.String())
}

func TestGetBackgrounds_Errors(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/images/backgrounds", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "API key is not configured", errorMessage(t, rec))

	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer upstream.Close()
	s = newTestServer(t, withImages("k-1", upstream.URL))
	rec = s.do(t, http.MethodGet, "/images/backgrounds", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Failed to fetch background images", errorMessage(t, rec))
}

func multipartUpload(t *testing.T, field string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "photo.jpg")
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	up := &fakeUploader{}
	s := newTestServer(t, withUploader(up))

	body, contentType := multipartUpload(t, "file", []byte("jpeg-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/uploads", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[handlers.UploadResponse](t, rec)
	assert.True(t, resp.Success)
	assert.Equal(t, "https://res.cloudinary.example/diary/abc.jpg", resp.URL)
	assert.Equal(t, []byte("jpeg-bytes"), up.got)
}

func TestUploadImage_Errors(t *testing.T) {
	t.Run("not configured", func(t *testing.T) {
		s := newTestServer(t)
		rec := s.do(t, http.MethodPost, "/uploads", "")
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("missing file field", func(t *testing.T) {
		s := newTestServer(t, withUploader(&fakeUploader{}))
		body, contentType := multipartUpload(t, "other", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/uploads", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "No file provided", errorMessage(t, rec))
	})

	t.Run("upstream failure", func(t *testing.T) {
		s := newTestServer(t, withUploader(&fakeUploader{err: errors.New("cloudinary down")}))
		body, contentType := multipartUpload(t, "file", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/uploads", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		s.router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "Failed to upload file", errorMessage(t, rec))
	})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}
