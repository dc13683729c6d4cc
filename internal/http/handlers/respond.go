package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/inhome/registry/internal/netaddr"
	"github.com/inhome/registry/internal/registry"
	"github.com/inhome/registry/internal/store"
)

// respondWithError sends a JSON error response
func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	response := map[string]string{"error": message}
	_ = json.NewEncoder(w).Encode(response)
}

// respondWithJSON sends a JSON success response
func respondWithJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// respondServiceError maps service-layer errors to HTTP outcomes.
// Validation and format problems are the client's fault; storage failures
// are logged in full but reported only as a generic server error.
func respondServiceError(w http.ResponseWriter, op string, err error) {
	var ve *registry.ValidationError
	if errors.As(err, &ve) {
		respondWithError(w, http.StatusBadRequest, ve.Error())
		return
	}
	var fe *netaddr.FormatError
	if errors.As(err, &fe) {
		respondWithError(w, http.StatusBadRequest, fe.Error())
		return
	}
	var se *store.StorageError
	if errors.As(err, &se) {
		log.Printf("%s: %v", op, se)
		respondWithError(w, http.StatusInternalServerError, "internal error")
		return
	}
	log.Printf("%s: %v", op, err)
	respondWithError(w, http.StatusInternalServerError, "internal error")
}
