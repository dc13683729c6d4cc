package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/inhome/registry/internal/model"
	"github.com/inhome/registry/internal/registry"
)

// DeviceHandler handles device endpoints.
type DeviceHandler struct {
	service *registry.Service
}

// NewDeviceHandler creates a new device handler
func NewDeviceHandler(service *registry.Service) *DeviceHandler {
	return &DeviceHandler{service: service}
}

// deviceResponse is the device object in API responses
type deviceResponse struct {
	Name      string `json:"name"`
	MAC       string `json:"mac"`
	IPv4      string `json:"ipv4"`
	IPv6      string `json:"ipv6,omitempty"`
	DateAdded int64  `json:"date_added"`
	IsTrusted bool   `json:"is_trusted"`
}

func toDeviceResponse(d model.Device) deviceResponse {
	resp := deviceResponse{
		Name:      d.Name,
		MAC:       d.MAC.String(),
		IPv4:      d.IPv4.String(),
		DateAdded: d.DateAdded,
		IsTrusted: d.IsTrusted,
	}
	if !d.IPv6.IsZero() {
		resp.IPv6 = d.IPv6.String()
	}
	return resp
}

// addDeviceRequest is the request body for POST /devices
type addDeviceRequest struct {
	Name string `json:"name"`
	MAC  string `json:"mac"`
	IP   string `json:"ip"`
}

// renameDeviceRequest is the request body for PUT /devices/name
type renameDeviceRequest struct {
	Old string `json:"old"`
	New string `json:"new"`
}

// HandleList handles GET /devices
func (h *DeviceHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	devices, err := h.service.ListDevices(r.Context())
	if err != nil {
		respondServiceError(w, "list devices", err)
		return
	}

	response := make([]deviceResponse, 0, len(devices))
	for _, d := range devices {
		response = append(response, toDeviceResponse(d))
	}
	respondWithJSON(w, http.StatusOK, response)
}

// HandleGet handles GET /devices/{mac}
func (h *DeviceHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	device, found, err := h.service.GetDevice(r.Context(), chi.URLParam(r, "mac"))
	if err != nil {
		respondServiceError(w, "get device", err)
		return
	}
	if !found {
		respondWithError(w, http.StatusNotFound, "device not found")
		return
	}
	respondWithJSON(w, http.StatusOK, toDeviceResponse(device))
}

// HandleAdd handles POST /devices
func (h *DeviceHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req addDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.service.AddDevice(r.Context(), req.Name, req.MAC, req.IP)
	if err != nil {
		respondServiceError(w, "add device", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusConflict, "device not stored")
		return
	}

	log.Printf("new device was added mac=%s, ip=%s", req.MAC, req.IP)
	respondWithJSON(w, http.StatusCreated, map[string]string{"message": "device added"})
}

// HandleRemove handles DELETE /devices/{mac}
func (h *DeviceHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	mac := chi.URLParam(r, "mac")
	ok, err := h.service.RemoveDevice(r.Context(), mac)
	if err != nil {
		respondServiceError(w, "remove device", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "device not found")
		return
	}

	log.Printf("device was removed mac=%s", mac)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "device removed"})
}

// HandleRename handles PUT /devices/name
func (h *DeviceHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req renameDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ok, err := h.service.RenameDevice(r.Context(), req.Old, req.New)
	if err != nil {
		respondServiceError(w, "rename device", err)
		return
	}
	if !ok {
		respondWithError(w, http.StatusNotFound, "device not found")
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "device renamed"})
}
