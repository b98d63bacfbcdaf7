package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tomas/iqdb/internal/constants"
	"github.com/tomas/iqdb/internal/core"
	"github.com/tomas/iqdb/internal/haar"
	"github.com/tomas/iqdb/internal/wireformat"
)

// channelsRequest is the direct-upload body: three flat 128x128 pixel
// arrays, one per RGB channel.
type channelsRequest struct {
	Channels struct {
		R []int `json:"r"`
		G []int `json:"g"`
		B []int `json:"b"`
	} `json:"channels"`
}

// toPlanes validates and converts the JSON int arrays into byte planes.
func (c channelsRequest) toPlanes() (r, g, b []byte, err error) {
	if len(c.Channels.R) != constants.ChannelLen || len(c.Channels.G) != constants.ChannelLen || len(c.Channels.B) != constants.ChannelLen {
		return nil, nil, nil, &core.ParamError{Message: "channel arrays must each have length " + strconv.Itoa(constants.ChannelLen)}
	}
	r = make([]byte, constants.ChannelLen)
	g = make([]byte, constants.ChannelLen)
	b = make([]byte, constants.ChannelLen)
	for i := 0; i < constants.ChannelLen; i++ {
		r[i] = byte(c.Channels.R[i])
		g[i] = byte(c.Channels.G[i])
		b[i] = byte(c.Channels.B[i])
	}
	return r, g, b, nil
}

func postIDFromPath(r *http.Request) (int64, error) {
	s := chi.URLParam(r, "post_id")
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, &core.ParamError{Message: "post_id must be an integer, got " + sanitizeForLog(s)}
	}
	return id, nil
}

func sanitizeForLog(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == '\n' || r == '\r' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}

// AddImage handles POST /images/{post_id}.
func (h *Handler) AddImage(w http.ResponseWriter, r *http.Request) {
	postID, err := postIDFromPath(r)
	if err != nil {
		handleCoreError(w, r, err)
		return
	}

	var req channelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		handleCoreError(w, r, &core.ParamError{Message: "invalid request body"})
		return
	}

	rp, gp, bp, err := req.toPlanes()
	if err != nil {
		handleCoreError(w, r, err)
		return
	}

	sig := haar.FromRGB(rp, gp, bp)
	if err := h.db.Add(r.Context(), postID, sig); err != nil {
		handleCoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"post_id": postID,
		"hash":    wireformat.EncodeHash(sig),
	})
}

// DeleteImage handles DELETE /images/{post_id}.
func (h *Handler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	postID, err := postIDFromPath(r)
	if err != nil {
		handleCoreError(w, r, err)
		return
	}

	if err := h.db.Remove(r.Context(), postID); err != nil {
		handleCoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{"post_id": postID})
}

// GetImage handles GET /images/{post_id}.
func (h *Handler) GetImage(w http.ResponseWriter, r *http.Request) {
	postID, err := postIDFromPath(r)
	if err != nil {
		handleCoreError(w, r, err)
		return
	}

	sig, err := h.db.Get(r.Context(), postID)
	if err != nil {
		handleCoreError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"post_id": postID,
		"hash":    wireformat.EncodeHash(sig),
	})
}
