// Package web exposes the operator tuning surface over HTTP: six integer
// controls bound to the threshold store and a PNG preview of the latest
// half-resolution mask. Handlers only touch the store and the latest-mask
// pointer, so tuning never blocks the frame pipeline.
package web

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/disintegration/imaging"
	"github.com/edaniels/golog"
	"go.uber.org/atomic"
	"goji.io"
	"goji.io/pat"

	"github.com/slazery/kinect2-HSV-thresholder/rimage"
	"github.com/slazery/kinect2-HSV-thresholder/threshold"
)

// Server is the tuning and preview surface.
type Server struct {
	store  *threshold.Store
	logger golog.Logger
	latest atomic.Pointer[rimage.Mask]
}

// NewServer returns a server bound to the given store.
func NewServer(store *threshold.Store, logger golog.Logger) *Server {
	return &Server{store: store, logger: logger}
}

// Present implements pipeline.MaskSink; it publishes the latest downscaled
// mask for the preview endpoint.
func (s *Server) Present(m *rimage.Mask) {
	s.latest.Store(m)
}

// Handler returns the HTTP mux for the surface.
func (s *Server) Handler() http.Handler {
	mux := goji.NewMux()
	mux.HandleFunc(pat.Get("/api/thresholds"), s.getThresholds)
	mux.HandleFunc(pat.Post("/api/thresholds/:channel/:bound"), s.setThreshold)
	mux.HandleFunc(pat.Get("/preview.png"), s.preview)
	return mux
}

type channelBounds struct {
	Lower int `json:"lower"`
	Upper int `json:"upper"`
	Max   int `json:"max"`
}

func (s *Server) getThresholds(w http.ResponseWriter, r *http.Request) {
	resp := map[string]channelBounds{}
	for name, ch := range channels {
		resp[name] = channelBounds{
			Lower: s.store.Lower(ch),
			Upper: s.store.Upper(ch),
			Max:   int(ch.Max()),
		}
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.Errorw("failed to write thresholds", "error", err)
	}
}

var channels = map[string]threshold.Channel{
	"hue":        threshold.Hue,
	"saturation": threshold.Saturation,
	"value":      threshold.Value,
}

func (s *Server) setThreshold(w http.ResponseWriter, r *http.Request) {
	ch, ok := channels[pat.Param(r, "channel")]
	if !ok {
		http.Error(w, "unknown channel", http.StatusNotFound)
		return
	}
	bound := pat.Param(r, "bound")
	if bound != "lower" && bound != "upper" {
		http.Error(w, "bound must be lower or upper", http.StatusNotFound)
		return
	}
	value, err := strconv.Atoi(r.FormValue("value"))
	if err != nil {
		http.Error(w, "value must be an integer", http.StatusBadRequest)
		return
	}

	var accepted bool
	if bound == "lower" {
		accepted = s.store.SetLower(ch, value)
	} else {
		accepted = s.store.SetUpper(ch, value)
	}
	if !accepted {
		// The store keeps its previous value; report the rejection only here
		// at the HTTP edge.
		http.Error(w, "update rejected", http.StatusUnprocessableEntity)
		return
	}
	s.logger.Debugw("threshold updated", "channel", ch.String(), "bound", bound, "value", value)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) preview(w http.ResponseWriter, r *http.Request) {
	m := s.latest.Load()
	if m == nil {
		http.Error(w, "no mask yet", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := imaging.Encode(w, m.ToGray(), imaging.PNG); err != nil {
		s.logger.Errorw("failed to encode preview", "error", err)
	}
}
