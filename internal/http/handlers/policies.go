package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/inhome/registry/internal/registry"
)

// PolicyHandler handles access-policy endpoints.
type PolicyHandler struct {
	service *registry.Service
}

// NewPolicyHandler creates a new policy handler
func NewPolicyHandler(service *registry.Service) *PolicyHandler {
	return &PolicyHandler{service: service}
}

// policyResponse is the policy object in list responses
type policyResponse struct {
	PolicyID int64  `json:"policy_id"`
	From     string `json:"from"`
	To       string `json:"to"`
}

// policyPeerResponse is one peer entry in per-device policy lookups
type policyPeerResponse struct {
	Name string `json:"name"`
	MAC  string `json:"mac"`
	IPv4 string `json:"ipv4"`
}

// addPolicyRequest is the request body for POST /policies
type addPolicyRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// HandleList handles GET /policies
func (h *PolicyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	policies, err := h.service.ListPolicies(r.Context())
	if err != nil {
		respondServiceError(w, "list policies", err)
		return
	}

	response := make([]policyResponse, 0, len(policies))
	for _, p := range policies {
		response = append(response, policyResponse{
			PolicyID: p.ID,
			From:     p.NameFrom,
			To:       p.NameTo,
		})
	}
	respondWithJSON(w, http.StatusOK, response)
}

// HandleListForDevice handles GET /policies/device/{name}
func (h *PolicyHandler) HandleListForDevice(w http.ResponseWriter, r *http.Request) {
	peers, found, err := h.service.ListPoliciesForDevice(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		respondServiceError(w, "list policies for device", err)
		return
	}
	if !found {
		respondWithError(w, http.StatusNotFound, "device not found")
		return
	}

	response := make([]policyPeerResponse, 0, len(peers))
	for _, p := range peers {
		response = append(response, policyPeerResponse{
			Name: p.Name,
			MAC:  p.MAC.String(),
			IPv4: p.IPv4.String(),
		})
	}
	respondWithJSON(w, http.StatusOK, response)
}

// HandleAdd handles POST /policies
func (h *PolicyHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req addPolicyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.service.AddPolicy(r.Context(), req.From, req.To)
	if err != nil {
		respondServiceError(w, "add policy", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "device name did not resolve to exactly one device")
		return
	}
	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "policy added"})
}

// HandleRemove handles DELETE /policies/{id}
func (h *PolicyHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid policy id")
		return
	}

	ok, err := h.service.RemovePolicy(r.Context(), id)
	if err != nil {
		respondServiceError(w, "remove policy", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "policy not found")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "policy removed"})
}
