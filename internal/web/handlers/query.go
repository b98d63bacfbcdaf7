package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tomas/iqdb/internal/core"
	"github.com/tomas/iqdb/internal/haar"
	"github.com/tomas/iqdb/internal/wireformat"
)

// queryRequest is the JSON body accepted when the query is not passed as
// a hash query-string parameter.
type queryRequest struct {
	Channels *struct {
		R []int `json:"r"`
		G []int `json:"g"`
		B []int `json:"b"`
	} `json:"channels"`
	Limit int `json:"limit"`
}

// queryResult is one ranked match on the wire.
type queryResult struct {
	PostID int64   `json:"post_id"`
	Score  float64 `json:"score"`
	Hash   string  `json:"hash"`
}

// Query handles POST /query. The signature to match against comes either
// from a `hash` query-string parameter or from a `channels` object in the
// JSON body; limit comes from whichever side carries it, falling back to
// the configured default.
func (h *Handler) Query(w http.ResponseWriter, r *http.Request) {
	sig, limit, err := h.parseQuery(r)
	if err != nil {
		handleCoreError(w, r, err)
		return
	}
	if limit <= 0 {
		limit = h.cfg.Query.DefaultLimit
	}

	results := h.db.Query(sig, limit)

	out := make([]queryResult, len(results))
	for i, res := range results {
		hash := ""
		if matched, err := h.db.Get(r.Context(), res.PostID); err == nil {
			hash = wireformat.EncodeHash(matched)
		}
		out[i] = queryResult{PostID: res.PostID, Score: res.Score, Hash: hash}
	}

	respondJSON(w, http.StatusOK, out)
}

func (h *Handler) parseQuery(r *http.Request) (haar.Signature, int, error) {
	q := r.URL.Query()
	limit := 0
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return haar.Signature{}, 0, &core.ParamError{Message: "limit must be an integer"}
		}
		limit = n
	}

	if hash := q.Get("hash"); hash != "" {
		sig, err := wireformat.DecodeHash(hash)
		if err != nil {
			return haar.Signature{}, 0, &core.ParamError{Message: "invalid hash: " + err.Error()}
		}
		return sig, limit, nil
	}

	var req queryRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return haar.Signature{}, 0, &core.ParamError{Message: "invalid request body"}
		}
	}
	if req.Channels == nil {
		return haar.Signature{}, 0, &core.ParamError{Message: "query requires a hash parameter or a channels body"}
	}
	if limit == 0 {
		limit = req.Limit
	}

	cr := channelsRequest{}
	cr.Channels.R, cr.Channels.G, cr.Channels.B = req.Channels.R, req.Channels.G, req.Channels.B
	rp, gp, bp, err := cr.toPlanes()
	if err != nil {
		return haar.Signature{}, 0, err
	}
	return haar.FromRGB(rp, gp, bp), limit, nil
}
