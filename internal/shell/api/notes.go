package api

import (
	"encoding/json"
	"net/http"

	"github.com/artpar/notekeeper/internal/core/auth"
	"github.com/artpar/notekeeper/internal/core/domain"
	"github.com/artpar/notekeeper/internal/shell/store"
	"github.com/go-chi/chi/v5"
)

// =============================================================================
// Note Handlers
// =============================================================================

func (h *Handler) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	note := domain.NewNote(domain.NoteFields{
		Title:    req.Title,
		Content:  req.Content,
		ClientID: req.ClientID,
	})

	if err := h.hooks.BeforeSave(r.Context(), actor, note, true); err != nil {
		h.writeHookError(w, err, "note not found", "failed to create note")
		return
	}

	if err := h.store.CreateNote(r.Context(), note); err != nil {
		h.writeHookError(w, err, "note not found", "failed to create note")
		return
	}

	h.writeJSON(w, http.StatusCreated, noteToResponse(note))
}

func (h *Handler) handleGetNote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	note, err := h.store.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeHookError(w, err, "note not found", "failed to get note")
		return
	}
	if !auth.CanViewRecord(actor, note) {
		h.writeError(w, http.StatusNotFound, "note not found", "not_found")
		return
	}

	h.writeJSON(w, http.StatusOK, noteToResponse(note))
}

func (h *Handler) handleListNotes(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}
	opts := h.listOptions(r)

	notes, err := h.store.ListNotesByOwner(r.Context(), actor.UserID, opts)
	if err != nil {
		h.logger.Error("failed to list notes", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list notes", "internal_error")
		return
	}
	total, err := h.store.CountNotesByOwner(r.Context(), actor.UserID)
	if err != nil {
		h.logger.Error("failed to count notes", "error", err)
		h.writeError(w, http.StatusInternalServerError, "failed to list notes", "internal_error")
		return
	}

	h.writeJSON(w, http.StatusOK, notesResponse(notes, total, opts))
}

func (h *Handler) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON", "validation_error")
		return
	}

	note, err := h.store.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeHookError(w, err, "note not found", "failed to get note")
		return
	}

	// Apply updates
	fields := note.Fields()
	if req.Title != nil {
		fields.Title = *req.Title
	}
	if req.Content != nil {
		fields.Content = *req.Content
	}
	if req.ClientID != nil {
		fields.ClientID = *req.ClientID
	}
	note.SetFields(fields)

	if err := h.hooks.BeforeSave(r.Context(), actor, note, false); err != nil {
		h.writeHookError(w, err, "note not found", "failed to update note")
		return
	}

	if err := h.store.UpdateNote(r.Context(), note); err != nil {
		h.writeHookError(w, err, "note not found", "failed to update note")
		return
	}

	h.writeJSON(w, http.StatusOK, noteToResponse(note))
}

func (h *Handler) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	actor, ok := h.actor(w, r)
	if !ok {
		return
	}

	note, err := h.store.GetNote(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeHookError(w, err, "note not found", "failed to get note")
		return
	}

	if err := h.hooks.BeforeDelete(r.Context(), actor, note); err != nil {
		h.writeHookError(w, err, "note not found", "failed to delete note")
		return
	}

	if err := h.store.DeleteNote(r.Context(), note.ID); err != nil {
		h.writeHookError(w, err, "note not found", "failed to delete note")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func notesResponse(notes []domain.Note, total int, opts store.ListOptions) ListNotesResponse {
	resp := ListNotesResponse{
		Notes:  make([]NoteResponse, 0, len(notes)),
		Total:  total,
		Limit:  opts.Limit,
		Offset: opts.Offset,
	}
	for i := range notes {
		resp.Notes = append(resp.Notes, noteToResponse(&notes[i]))
	}
	return resp
}
