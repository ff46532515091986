package v1handler

import (
	"densitymap/internal/towndensity"
	"densitymap/pkg/domain"
	"net/http"

	"github.com/go-faster/jx"
)

// GetTownDensity serves GET /v1/town-density.
func (h *Handler) GetTownDensity(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	tier, err := parseTier(q)
	if err != nil {
		h.NewError(ctx, w, err)

		return
	}
	vp, err := parseViewport(q)
	if err != nil {
		h.NewError(ctx, w, err)

		return
	}
	limit, err := parseInt(q, "limit")
	if err != nil {
		h.NewError(ctx, w, err)

		return
	}

	res, err := h.deps.TownDensity.GetTownDensity(ctx, q.Get("profession"), towndensity.Filters{
		Tier:     tier,
		Viewport: vp,
		Limit:    limit,
	})
	if err != nil {
		h.NewError(ctx, w, err)

		return
	}
	h.writeResult(w, r, res)
}

// GetStatistics serves GET /v1/town-density/statistics.
func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	stats, err := h.deps.TownDensity.GetStatistics(ctx, r.URL.Query().Get("profession"))
	if err != nil {
		h.NewError(ctx, w, err)

		return
	}

	var e jx.Encoder
	encodeStatistics(&e, stats)
	writeJSON(w, http.StatusOK, &e)
}

// GetByTier serves GET /v1/town-density/tiers/{tier}.
func (h *Handler) GetByTier(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	tier, err := domain.ParseTier(r.PathValue("tier"))
	if err != nil {
		h.NewError(ctx, w, err)

		return
	}
	limit, err := parseInt(q, "limit")
	if err != nil {
		h.NewError(ctx, w, err)

		return
	}

	res, err := h.deps.TownDensity.GetByTier(ctx, q.Get("profession"), tier, limit)
	if err != nil {
		h.NewError(ctx, w, err)

		return
	}
	h.writeResult(w, r, res)
}

// GetBoundaries serves GET /v1/commune-boundaries.
func (h *Handler) GetBoundaries(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	offset, err := parseInt(q, "offset")
	if err != nil {
		h.NewError(ctx, w, err)

		return
	}
	limit, err := parseInt(q, "limit")
	if err != nil {
		h.NewError(ctx, w, err)

		return
	}

	res, err := h.deps.TownDensity.GetBoundaries(ctx, towndensity.BoundaryQuery{
		Codes:  parseCodes(q),
		Offset: offset,
		Limit:  limit,
	})
	if err != nil {
		h.NewError(ctx, w, err)

		return
	}

	var e jx.Encoder
	if err := encodeBoundaries(&e, res); err != nil {
		h.NewError(ctx, w, err)

		return
	}
	writeJSON(w, http.StatusOK, &e)
}

// GetLegend serves GET /v1/legend.
func (h *Handler) GetLegend(w http.ResponseWriter, _ *http.Request) {
	var e jx.Encoder
	encodeLegend(&e, h.deps.TownDensity.Legend())
	writeJSON(w, http.StatusOK, &e)
}

func (h *Handler) writeResult(w http.ResponseWriter, r *http.Request, res *towndensity.Result) {
	var e jx.Encoder
	if err := encodeResult(&e, res); err != nil {
		h.NewError(r.Context(), w, err)

		return
	}
	writeJSON(w, http.StatusOK, &e)
}
