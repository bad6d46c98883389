package app

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"immich-slideshow/internal/slideshow"
)

// server exposes the shared session over HTTP. All image and metadata routes
// are read-only; only /slideshow/next mutates session state, and it does so
// through the session's own serialization.
type server struct {
	session     *slideshow.Session
	resolutions slideshow.ResolutionList
}

func newServer(session *slideshow.Session, resolutions slideshow.ResolutionList) http.Handler {
	s := &server{session: session, resolutions: resolutions}
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/slideshow", s.handlePrimaryImage)
	r.Get("/slideshow/metadata", s.handleMetadata)
	r.Post("/slideshow/next", s.handleNext)
	r.Get("/slideshow/{resolution}", s.handleImage)
	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// handlePrimaryImage serves the first configured resolution.
func (s *server) handlePrimaryImage(w http.ResponseWriter, r *http.Request) {
	s.serveImage(w, s.resolutions[0])
}

// handleImage serves any configured resolution, addressed as "WxH".
func (s *server) handleImage(w http.ResponseWriter, r *http.Request) {
	res, err := slideshow.ParseResolution(chi.URLParam(r, "resolution"))
	if err != nil || !s.resolutions.Contains(res) {
		http.Error(w, "unknown resolution", http.StatusNotFound)
		return
	}
	s.serveImage(w, res)
}

func (s *server) serveImage(w http.ResponseWriter, res slideshow.Resolution) {
	data := s.session.Render(res.Width, res.Height)
	if data == nil {
		http.Error(w, "no image loaded", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(data)
}

// metadataResponse mirrors the attributes the slideshow exposes per loaded
// asset; asset_2 is present only for dual-portrait frames.
type metadataResponse struct {
	Available      bool                       `json:"available"`
	IsDualPortrait bool                       `json:"is_dual_portrait"`
	Asset1         *slideshow.AssetAttributes `json:"asset_1,omitempty"`
	Asset2         *slideshow.AssetAttributes `json:"asset_2,omitempty"`
}

func (s *server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	resp := metadataResponse{
		Available:      s.session.IsAvailable(),
		IsDualPortrait: s.session.IsDual(),
	}
	if rec := s.session.Primary(); rec != nil {
		attrs := s.session.Attributes(rec)
		resp.Asset1 = &attrs
	}
	if rec := s.session.Secondary(); rec != nil {
		attrs := s.session.Attributes(rec)
		resp.Asset2 = &attrs
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleNext advances the slideshow on demand, outside the regular tick.
func (s *server) handleNext(w http.ResponseWriter, r *http.Request) {
	refreshed := s.session.Refresh(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]bool{"refreshed": refreshed})
}
