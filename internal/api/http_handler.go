package api

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"materials-quote-service/internal/structural"

	"github.com/go-chi/chi/v5"
)

// HTTPHandler serves the quoting API over HTTP.
type HTTPHandler struct {
	engine *Engine
}

// NewHTTPHandler creates a new HTTPHandler.
func NewHTTPHandler(engine *Engine) *HTTPHandler {
	return &HTTPHandler{engine: engine}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
		}
	}
}

// respondWithEngineError maps an engine error to a status code. Caller faults
// are 400 with the error text; anything else is logged and hidden.
func respondWithEngineError(w http.ResponseWriter, op string, err error) {
	if isCallerError(err) {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	log.Printf("ERROR: %s failed: %v", op, err)
	respondWithError(w, http.StatusInternalServerError, "Failed to "+op)
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return false
	}
	return true
}

// --- Handlers ---

func (h *HTTPHandler) ExtractAttributes(w http.ResponseWriter, r *http.Request) {
	var input ExtractInput
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.engine.ExtractAttributes(input)
	if err != nil {
		respondWithEngineError(w, "extract attributes", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil {
		limit = defaultSearchLimit
	}
	resp, err := h.engine.Search(r.URL.Query().Get("q"), limit)
	if err != nil {
		respondWithEngineError(w, "search catalog", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) GetRecord(w http.ResponseWriter, r *http.Request) {
	id, err := url.PathUnescape(chi.URLParam(r, "recordId"))
	if err != nil || id == "" {
		respondWithError(w, http.StatusBadRequest, "Invalid record ID")
		return
	}
	rec, ok := h.engine.Record(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, "Catalog record not found")
		return
	}
	respondWithJSON(w, http.StatusOK, rec)
}

func (h *HTTPHandler) ResolveItems(w http.ResponseWriter, r *http.Request) {
	var input ResolveInput
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.engine.ResolveItems(input)
	if err != nil {
		respondWithEngineError(w, "resolve items", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) ValidateQuote(w http.ResponseWriter, r *http.Request) {
	var input ValidateInput
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.engine.ValidateQuote(input)
	if err != nil {
		respondWithEngineError(w, "validate quote", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

func (h *HTTPHandler) BuildQuote(w http.ResponseWriter, r *http.Request) {
	var input QuoteInput
	if !decodeBody(w, r, &input) {
		return
	}
	q, err := h.engine.BuildQuote(r.Context(), input)
	if err != nil {
		respondWithEngineError(w, "build quote", err)
		return
	}
	respondWithJSON(w, http.StatusCreated, q)
}

func (h *HTTPHandler) SizeDeck(w http.ResponseWriter, r *http.Request) {
	var input structural.Geometry
	if !decodeBody(w, r, &input) {
		return
	}
	resp, err := h.engine.SizeDeck(input)
	if err != nil {
		respondWithEngineError(w, "size deck", err)
		return
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// RegisterRoutes registers all quoting routes with the given chi router.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/attributes/extract", h.ExtractAttributes)

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/search", h.SearchCatalog)
			r.Get("/records/{recordId}", h.GetRecord)
		})

		r.Route("/quotes", func(r chi.Router) {
			r.Post("/", h.BuildQuote)
			r.Post("/resolve", h.ResolveItems)
			r.Post("/validate", h.ValidateQuote)
		})

		r.Post("/structural/deck", h.SizeDeck)
	})
	log.Println("INFO: Quoting HTTP routes registered under /api/v1")
}
