package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomas/iqdb/internal/config"
	"github.com/tomas/iqdb/internal/constants"
	"github.com/tomas/iqdb/internal/core"
	"github.com/tomas/iqdb/internal/haar"
	"github.com/tomas/iqdb/internal/wireformat"
)

func newTestHandler(t *testing.T) *Handler {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := core.Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{Query: config.QueryConfig{DefaultLimit: 16}}
	return New(db, cfg)
}

func channelsBody(v byte) []byte {
	channel := make([]int, constants.ChannelLen)
	for i := range channel {
		channel[i] = int(v)
	}
	body, _ := json.Marshal(map[string]any{
		"channels": map[string]any{"r": channel, "g": channel, "b": channel},
	})
	return body
}

func withPostID(r *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("post_id", id)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestAddImage_ValidBodyReturnsHash(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/images/1", bytes.NewReader(channelsBody(120)))
	req = withPostID(req, "1")
	rec := httptest.NewRecorder()

	h.AddImage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, float64(1), out["post_id"])
	assert.Len(t, out["hash"], wireformat.HashLen)
}

func TestAddImage_BadPostIDReturns500(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/images/nope", bytes.NewReader(channelsBody(1)))
	req = withPostID(req, "nope")
	rec := httptest.NewRecorder()

	h.AddImage(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestAddImage_WrongChannelLengthReturns500(t *testing.T) {
	h := newTestHandler(t)

	body, _ := json.Marshal(map[string]any{
		"channels": map[string]any{"r": []int{1, 2, 3}, "g": []int{}, "b": []int{}},
	})
	req := httptest.NewRequest(http.MethodPost, "/images/1", bytes.NewReader(body))
	req = withPostID(req, "1")
	rec := httptest.NewRecorder()

	h.AddImage(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestGetImage_UnknownPostIDReturns404(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/images/42", nil)
	req = withPostID(req, "42")
	rec := httptest.NewRecorder()

	h.GetImage(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetImage_AfterAddReturnsMatchingHash(t *testing.T) {
	h := newTestHandler(t)

	addReq := withPostID(httptest.NewRequest(http.MethodPost, "/images/9", bytes.NewReader(channelsBody(200))), "9")
	addRec := httptest.NewRecorder()
	h.AddImage(addRec, addReq)
	var added map[string]any
	require.NoError(t, json.Unmarshal(addRec.Body.Bytes(), &added))

	getReq := withPostID(httptest.NewRequest(http.MethodGet, "/images/9", nil), "9")
	rec := httptest.NewRecorder()
	h.GetImage(rec, getReq)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, float64(9), out["post_id"])
	assert.Equal(t, added["hash"], out["hash"])
}

func TestDeleteImage_ThenGetReturns404(t *testing.T) {
	h := newTestHandler(t)

	addReq := withPostID(httptest.NewRequest(http.MethodPost, "/images/3", bytes.NewReader(channelsBody(50))), "3")
	h.AddImage(httptest.NewRecorder(), addReq)

	delReq := withPostID(httptest.NewRequest(http.MethodDelete, "/images/3", nil), "3")
	delRec := httptest.NewRecorder()
	h.DeleteImage(delRec, delReq)
	assert.Equal(t, http.StatusOK, delRec.Code)

	getReq := withPostID(httptest.NewRequest(http.MethodGet, "/images/3", nil), "3")
	getRec := httptest.NewRecorder()
	h.GetImage(getRec, getReq)
	assert.Equal(t, http.StatusNotFound, getRec.Code)
}

func TestDeleteImage_UnknownPostIDStillReturns200(t *testing.T) {
	h := newTestHandler(t)

	req := withPostID(httptest.NewRequest(http.MethodDelete, "/images/999", nil), "999")
	rec := httptest.NewRecorder()
	h.DeleteImage(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestQuery_ByHashFindsAddedImage(t *testing.T) {
	h := newTestHandler(t)

	addReq := withPostID(httptest.NewRequest(http.MethodPost, "/images/5", bytes.NewReader(channelsBody(90))), "5")
	h.AddImage(httptest.NewRecorder(), addReq)

	plane := make([]byte, constants.ChannelLen)
	for i := range plane {
		plane[i] = 90
	}
	sig := haar.FromRGB(plane, plane, plane)
	hash := wireformat.EncodeHash(sig)

	req := httptest.NewRequest(http.MethodPost, "/query?hash="+hash, nil)
	rec := httptest.NewRecorder()
	h.Query(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out []queryResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, int64(5), out[0].PostID)
}

func TestQuery_MissingHashAndBodyReturns500(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/query", nil)
	rec := httptest.NewRecorder()
	h.Query(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestQuery_InvalidHashLengthReturns500(t *testing.T) {
	h := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/query?hash=deadbeef", nil)
	rec := httptest.NewRecorder()
	h.Query(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStatus_ReflectsImageCount(t *testing.T) {
	h := newTestHandler(t)

	for i := 1; i <= 3; i++ {
		req := withPostID(httptest.NewRequest(http.MethodPost, "/images/"+strconv.Itoa(i), bytes.NewReader(channelsBody(byte(i*10)))), strconv.Itoa(i))
		h.AddImage(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	h.Status(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var out map[string]int
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 3, out["images"])
}
