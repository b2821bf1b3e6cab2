package http

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/quadmap/codec"
	"github.com/aukilabs/quadmap/geometry"
	"github.com/aukilabs/quadmap/quadtree"
)

const ErrTypeBadRequest = "bad_request"

// PointMap is the read side of a shared point map.
type PointMap interface {
	Region() geometry.Region
	Query(r geometry.Region) []geometry.Point
	Snapshot() *quadtree.Quadtree
	DebugInfo() quadtree.DebugInfo
}

// RegionResponse is the body returned by the region endpoint.
type RegionResponse struct {
	Region geometry.Region  `json:"region"`
	Points []geometry.Point `json:"points"`
}

// ParseRegion reads the x, y, w and h query parameters. Missing parameters
// are taken from fallback.
func ParseRegion(values url.Values, fallback geometry.Region) (geometry.Region, error) {
	r := fallback

	params := []struct {
		name  string
		value *uint32
	}{
		{name: "x", value: &r.TopLeft.X},
		{name: "y", value: &r.TopLeft.Y},
		{name: "w", value: &r.Size.Width},
		{name: "h", value: &r.Size.Height},
	}

	for _, p := range params {
		s := values.Get(p.name)
		if s == "" {
			continue
		}

		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return geometry.Region{}, errors.New("invalid region parameter").
				WithType(ErrTypeBadRequest).
				WithTag("param", p.name).
				WithTag("value", s).
				Wrap(err)
		}
		*p.value = uint32(v)
	}

	return r, nil
}

// HandleRegion serves the points of m that fall within the requested region.
func HandleRegion(m PointMap) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		region, err := ParseRegion(r.URL.Query(), m.Region())
		if err != nil {
			writeError(w, r, http.StatusBadRequest, err)
			return
		}

		points := m.Query(region)
		if points == nil {
			points = []geometry.Point{}
		}

		writeJSON(w, http.StatusOK, RegionResponse{
			Region: region,
			Points: points,
		})
	}
}

// HandleSnapshot serves the whole map encoded with e.
func HandleSnapshot(m PointMap, e codec.Encoder) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := e.EncodeRaster(m.Snapshot())
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, err)
			return
		}

		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set("X-Quadmap-Compressor", e.Compressor.String())
		w.WriteHeader(http.StatusOK)
		w.Write(b)
	}
}

func HandleTreeDebugInfo(m PointMap) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, m.DebugInfo())
	}
}
