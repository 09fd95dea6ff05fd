package api

import (
	"encoding/json"
	"net/http"

	"github.com/artpar/notekeeper/internal/core/auth"
	"github.com/artpar/notekeeper/internal/core/domain"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Client Handlers
// =============================================================================

func (h *Handler) handleCreateClient(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req CreateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	client := domain.NewClient(domain.ClientFields{
		Name:  req.Name,
		Email: req.Email,
		Phone: req.Phone,
	})

	if err := h.hooks.BeforeSave(r.Context(), actor, client, true); err != nil {
		h.writeHookError(w, err, "client not found", "failed to create client")
		return
	}

	if err := h.store.CreateClient(r.Context(), client); err != nil {
		h.writeHookError(w, err, "client not found", "failed to create client")
		return
	}

	h.writeJSON(w, http.StatusCreated, clientToResponse(client))
}

func (h *Handler) handleGetClient(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	client, err := h.store.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeHookError(w, err, "client not found", "failed to get client")
		return
	}
	// Records outside the actor's ACL are reported as missing.
	if !auth.CanViewRecord(actor, client) {
		h.writeError(w, http.StatusNotFound, "client not found", "not_found")
		return
	}

	h.writeJSON(w, http.StatusOK, clientToResponse(client))
}

func (h *Handler) handleListClients(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	opts := h.listOptions(r)

	clients, err := h.store.ListClientsByOwner(r.Context(), actor.UserID, opts)
	if err != nil {
		h.logger.Error("failed to list clients", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list clients", "internal_error")
		return
	}
	total, err := h.store.CountClientsByOwner(r.Context(), actor.UserID)
	if err != nil {
		h.logger.Error("failed to count clients", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list clients", "internal_error")
		return
	}

	resp := ListClientsResponse{
		Clients: make([]ClientResponse, 0, len(clients)),
		Total:   total,
		Limit:   opts.Limit,
		Offset:  opts.Offset,
	}
	for i := range clients {
		resp.Clients = append(resp.Clients, clientToResponse(&clients[i]))
	}

	h.writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleUpdateClient(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req UpdateClientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	client, err := h.store.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeHookError(w, err, "client not found", "failed to get client")
		return
	}

	// Apply updates
	fields := client.Fields()
	if req.Name != nil {
		fields.Name = *req.Name
	}
	if req.Email != nil {
		fields.Email = *req.Email
	}
	if req.Phone != nil {
		fields.Phone = *req.Phone
	}
	client.SetFields(fields)

	if err := h.hooks.BeforeSave(r.Context(), actor, client, false); err != nil {
		h.writeHookError(w, err, "client not found", "failed to update client")
		return
	}

	if err := h.store.UpdateClient(r.Context(), client); err != nil {
		h.writeHookError(w, err, "client not found", "failed to update client")
		return
	}

	h.writeJSON(w, http.StatusOK, clientToResponse(client))
}

func (h *Handler) handleDeleteClient(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	client, err := h.store.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeHookError(w, err, "client not found", "failed to get client")
		return
	}

	if err := h.hooks.BeforeDelete(r.Context(), actor, client); err != nil {
		h.writeHookError(w, err, "client not found", "failed to delete client")
		return
	}

	if err := h.store.DeleteClient(r.Context(), client.ID); err != nil {
		h.writeHookError(w, err, "client not found", "failed to delete client")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListClientNotes(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	client, err := h.store.GetClient(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeHookError(w, err, "client not found", "failed to get client")
		return
	}
	if !auth.CanViewRecord(actor, client) {
		h.writeError(w, http.StatusNotFound, "client not found", "not_found")
		return
	}

	opts := h.listOptions(r)
	notes, err := h.store.ListNotesByClient(r.Context(), actor.UserID, client.ID, opts)
	if err != nil {
		h.logger.Error("failed to list notes", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list notes", "internal_error")
		return
	}
	total, err := h.store.CountNotesByClient(r.Context(), actor.UserID, client.ID)
	if err != nil {
		h.logger.Error("failed to count notes", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list notes", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, notesResponse(notes, total, opts))
}
