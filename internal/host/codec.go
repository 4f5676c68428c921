package host

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/corbenferris/figjam-plantuml/internal/plantuml"
)

// maxSourceBytes bounds diagram sources posted to /api/encode.
const maxSourceBytes = 1 << 20

type encodeResponse struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

type decodeResponse struct {
	Text string `json:"text"`
}

func registerCodecRoutes(r chi.Router, renderServer string) {
	r.Get("/api/encode", encodeHandler(renderServer, func(r *http.Request) (string, error) {
		return r.URL.Query().Get("text"), nil
	}))
	r.Post("/api/encode", encodeHandler(renderServer, func(r *http.Request) (string, error) {
		body, err := io.ReadAll(r.Body)
		return string(body), err
	}))
	r.Get("/api/decode/{token}", decodeHandler())
}

func encodeHandler(renderServer string, source func(*http.Request) (string, error)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxSourceBytes)
		text, err := source(r)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			http.Error(w, fmt.Sprintf("diagram source exceeds %d bytes", maxSourceBytes), http.StatusRequestEntityTooLarge)
			return
		}
		if err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}

		format := plantuml.FormatSVG
		if f := r.URL.Query().Get("format"); f != "" {
			format, err = plantuml.ParseFormat(f)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}

		token, err := plantuml.Encode(text)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, encodeResponse{
			Token: token,
			URL:   plantuml.TokenURL(token, renderServer, format),
		})
	}
}

func decodeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		text, err := plantuml.Decode(chi.URLParam(r, "token"))
		switch {
		case errors.Is(err, plantuml.ErrInvalidTokenCharacter):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, plantuml.ErrDecompression):
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		case err != nil:
			http.Error(w, err.Error(), http.StatusInternalServerError)
		default:
			writeJSON(w, http.StatusOK, decodeResponse{Text: text})
		}
	}
}
