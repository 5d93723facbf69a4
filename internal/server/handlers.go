package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/kaldeqca/sex-sim-ai/internal/card"
	"github.com/kaldeqca/sex-sim-ai/internal/locale"
	"github.com/kaldeqca/sex-sim-ai/internal/parsing"
	"github.com/kaldeqca/sex-sim-ai/internal/types"
	"github.com/kaldeqca/sex-sim-ai/internal/validation"
)

// ParseRequest is the body of POST /parse. Mode and Locale fall back to the
// server defaults.
type ParseRequest struct {
	Text   string `json:"text"`
	Mode   string `json:"mode,omitempty"`
	Locale string `json:"locale,omitempty"`
}

// ParseResponse is returned by POST /parse.
type ParseResponse struct {
	RequestID string              `json:"request_id"`
	Record    *types.ParsedRecord `json:"record"`
	Narrative string              `json:"narrative"`
	Status    parsing.Status      `json:"status"`
	Strategy  string              `json:"strategy"`
}

// TooShortResponse is the 422 body for content below a profile minimum.
type TooShortResponse struct {
	Error     string                  `json:"error"`
	Code      string                  `json:"code"`
	RequestID string                  `json:"request_id"`
	Mode      types.Mode              `json:"mode"`
	Field     string                  `json:"field"`
	Min       int                     `json:"min"`
	Got       int                     `json:"got"`
	Counting  locale.CountingStrategy `json:"counting"`
}

// ProfileListResponse is returned by GET /profiles.
type ProfileListResponse struct {
	Profiles []string `json:"profiles"`
	Default  string   `json:"default"`
}

// EmbedCardRequest is the body of POST /cards/embed.
type EmbedCardRequest struct {
	ImageBase64 string         `json:"image_base64"`
	Profile     map[string]any `json:"profile"`
}

// CardResponse is returned by POST /cards/extract.
type CardResponse struct {
	ImageBase64 string         `json:"image_base64"`
	Profile     map[string]any `json:"profile"`
}

// handleParse runs the engine over one model response.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBodyBytes)

	var req ParseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, err)
			return
		}
		writeError(w, r, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}

	mode := s.defaultMode
	if req.Mode != "" {
		m, err := types.ParseMode(req.Mode)
		if err != nil {
			writeError(w, r, &ErrValidation{Field: "mode", Message: err.Error()})
			return
		}
		mode = m
	}

	profile := s.defaultProfile
	if req.Locale != "" {
		p, err := locale.Preset(req.Locale)
		if err != nil {
			writeError(w, r, &ErrValidation{Field: "locale", Message: err.Error()})
			return
		}
		profile = p
	}

	res, err := s.engine.Parse(req.Text, mode, profile)
	if err != nil {
		var short *validation.ContentTooShortError
		if errors.As(err, &short) {
			writeJSON(w, r, http.StatusUnprocessableEntity, TooShortResponse{
				Error:     short.Error(),
				Code:      errorCode(err),
				RequestID: RequestID(r),
				Mode:      short.Mode,
				Field:     short.Field,
				Min:       short.Min,
				Got:       short.Got,
				Counting:  short.Counting,
			})
			return
		}
		writeError(w, r, err)
		return
	}

	writeJSON(w, r, http.StatusOK, ParseResponse{
		RequestID: RequestID(r),
		Record:    res.Record,
		Narrative: res.Narrative,
		Status:    res.Status,
		Strategy:  res.Strategy,
	})
}

// handleListProfiles lists the built-in locale presets.
func (s *Server) handleListProfiles(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, ProfileListResponse{
		Profiles: locale.Presets(),
		Default:  s.defaultProfile.Name,
	})
}

// handleGetProfile returns one preset, or the server default for "default".
func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if name == "default" {
		writeJSON(w, r, http.StatusOK, s.defaultProfile)
		return
	}
	profile, err := locale.Preset(name)
	if err != nil {
		writeError(w, r, &ErrProfileNotFound{Name: name})
		return
	}
	writeJSON(w, r, http.StatusOK, profile)
}

// handleExtractCard reads a raw card file from the body.
func (s *Server) handleExtractCard(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxCardBodyBytes))
	if err != nil {
		writeError(w, r, err)
		return
	}

	c, err := card.Extract(data)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, CardResponse{
		ImageBase64: c.ImageBase64(),
		Profile:     c.Profile,
	})
}

// handleEmbedCard returns the card file as image/png.
func (s *Server) handleEmbedCard(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxCardBodyBytes)

	var req EmbedCardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, r, err)
			return
		}
		writeError(w, r, &ErrValidation{Field: "body", Message: "invalid JSON"})
		return
	}
	if req.Profile == nil {
		writeError(w, r, &ErrValidation{Field: "profile", Message: "required"})
		return
	}

	// Accept data URLs as produced by browsers.
	encoded := req.ImageBase64
	if i := strings.Index(encoded, ";base64,"); i >= 0 && strings.HasPrefix(encoded, "data:") {
		encoded = encoded[i+len(";base64,"):]
	}
	image, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(image) == 0 {
		writeError(w, r, &ErrValidation{Field: "image_base64", Message: "not valid base64 image data"})
		return
	}

	file, err := card.Embed(image, req.Profile)
	if err != nil {
		writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `attachment; filename="card.png"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(file)
}
