package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/google/uuid"

	"github.com/jwebster45206/npc-forge/internal/logger"
	"github.com/jwebster45206/npc-forge/internal/storage"
	"github.com/jwebster45206/npc-forge/pkg/archive"
	"github.com/jwebster45206/npc-forge/pkg/editor"
	"github.com/jwebster45206/npc-forge/pkg/npcdoc"
)

// SessionResponse is returned by every session endpoint except export.
type SessionResponse struct {
	ID    uuid.UUID       `json:"id"`
	State editor.Snapshot `json:"state"`
	// Index is the position of an element added by a POST.
	Index *int `json:"index,omitempty"`
}

type CreateSessionRequest struct {
	NpcID string `json:"npcId,omitempty"`
}

type SetNpcIDRequest struct {
	NpcID string `json:"npcId"`
}

type SetTypeRequest struct {
	InteractionType npcdoc.InteractionType `json:"interactionType"`
}

type DialogueRequest struct {
	Title         string `json:"title"`
	GreetingText  string `json:"greetingText"`
	CompletedText string `json:"completedText"`
}

type UpdateOptionRequest struct {
	Field editor.OptionField `json:"field"`
	Value string             `json:"value"`
}

type QuestInfoRequest struct {
	Title             string `json:"title"`
	Description       string `json:"description"`
	CompletionMessage string `json:"completionMessage"`
	RequiredQuestID   string `json:"requiredQuestId"`
}

type ShopInfoRequest struct {
	Title     string           `json:"title"`
	Direction npcdoc.Direction `json:"direction"`
}

type PriceRequest struct {
	Price int `json:"price"`
}

// SessionHandler serves the editing API. Each request restores the session's
// editor, applies one operation and saves it back.
//
// Routes:
// POST   /v1/sessions                               - start a session
// GET    /v1/sessions/{id}                          - read state
// DELETE /v1/sessions/{id}                          - discard
// PUT    /v1/sessions/{id}/npc                      - set NPC id
// PUT    /v1/sessions/{id}/type                     - set interaction type (confirm)
// PUT    /v1/sessions/{id}/role                     - replace role
// PUT    /v1/sessions/{id}/dialogue                 - dialogue texts
// POST   /v1/sessions/{id}/options                  - add option
// PATCH  /v1/sessions/{id}/options/{index}          - edit one option field
// DELETE /v1/sessions/{id}/options/{index}          - remove option (confirm)
// PUT    /v1/sessions/{id}/quest                    - quest texts
// POST|PUT|DELETE .../quest/objectives[/{index}]    - objectives
// POST|PUT|DELETE .../quest/rewards[/{index}]       - rewards
// PUT    /v1/sessions/{id}/shop                     - shop title and direction
// POST|PUT|DELETE .../shop/items[/{index}]          - shop items
// PUT    /v1/sessions/{id}/shop/items/{index}/price - active-direction price
// POST   /v1/sessions/{id}/import/{kind}            - import role|interaction|content
// GET    /v1/sessions/{id}/export                   - download the pack
type SessionHandler struct {
	store          storage.SessionStore
	packager       archive.Packager
	logger         *slog.Logger
	maxImportBytes int64
	mux            *http.ServeMux
}

func NewSessionHandler(store storage.SessionStore, packager archive.Packager, logger *slog.Logger, maxImportBytes int64) *SessionHandler {
	if maxImportBytes <= 0 {
		maxImportBytes = 1 << 20
	}
	h := &SessionHandler{
		store:          store,
		packager:       packager,
		logger:         logger,
		maxImportBytes: maxImportBytes,
		mux:            http.NewServeMux(),
	}
	h.routes()
	return h
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *SessionHandler) routes() {
	const s = "/v1/sessions/{id}"
	h.mux.HandleFunc("POST /v1/sessions", h.handleCreate)
	h.mux.HandleFunc("GET "+s, h.handleRead)
	h.mux.HandleFunc("DELETE "+s, h.handleDelete)
	h.mux.HandleFunc("GET "+s+"/export", h.handleExport)

	h.mux.HandleFunc("PUT "+s+"/npc", h.mutate(func(r *http.Request, e *editor.Editor, _ *int) error {
		var req SetNpcIDRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		e.SetNpcID(req.NpcID)
		return nil
	}))
	h.mux.HandleFunc("PUT "+s+"/type", h.mutate(func(r *http.Request, e *editor.Editor, _ *int) error {
		var req SetTypeRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		return e.SetInteractionType(r.Context(), req.InteractionType)
	}))
	h.mux.HandleFunc("PUT "+s+"/role", h.mutate(func(r *http.Request, e *editor.Editor, _ *int) error {
		var role npcdoc.RoleDocument
		if err := decode(r, &role); err != nil {
			return err
		}
		return e.SetRole(role)
	}))
	h.mux.HandleFunc("PUT "+s+"/dialogue", h.mutate(func(r *http.Request, e *editor.Editor, _ *int) error {
		var req DialogueRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		e.SetDialogueText(req.Title, req.GreetingText, req.CompletedText)
		return nil
	}))

	// Options
	h.mux.HandleFunc("POST "+s+"/options", h.mutate(func(r *http.Request, e *editor.Editor, added *int) error {
		*added = e.AddOption()
		return nil
	}))
	h.mux.HandleFunc("PATCH "+s+"/options/{index}", h.mutate(func(r *http.Request, e *editor.Editor, _ *int) error {
		i, err := pathIndex(r)
		if err != nil {
			return err
		}
		var req UpdateOptionRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		return e.UpdateOption(i, req.Field, req.Value)
	}))
	h.mux.HandleFunc("DELETE "+s+"/options/{index}", h.mutate(withIndex(func(r *http.Request, e *editor.Editor, i int) error {
		return e.RemoveOption(r.Context(), i)
	})))

	// Quest
	h.mux.HandleFunc("PUT "+s+"/quest", h.mutate(func(r *http.Request, e *editor.Editor, _ *int) error {
		var req QuestInfoRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		e.SetQuestInfo(req.Title, req.Description, req.CompletionMessage, req.RequiredQuestID)
		return nil
	}))
	h.mux.HandleFunc("POST "+s+"/quest/objectives", h.mutate(func(r *http.Request, e *editor.Editor, added *int) error {
		*added = e.AddObjective()
		return nil
	}))
	h.mux.HandleFunc("PUT "+s+"/quest/objectives/{index}", h.mutate(withIndex(func(r *http.Request, e *editor.Editor, i int) error {
		var obj npcdoc.Objective
		if err := decode(r, &obj); err != nil {
			return err
		}
		return e.SetObjective(i, obj)
	})))
	h.mux.HandleFunc("DELETE "+s+"/quest/objectives/{index}", h.mutate(withIndex(func(r *http.Request, e *editor.Editor, i int) error {
		return e.RemoveObjective(r.Context(), i)
	})))
	h.mux.HandleFunc("POST "+s+"/quest/rewards", h.mutate(func(r *http.Request, e *editor.Editor, added *int) error {
		*added = e.AddReward()
		return nil
	}))
	h.mux.HandleFunc("PUT "+s+"/quest/rewards/{index}", h.mutate(withIndex(func(r *http.Request, e *editor.Editor, i int) error {
		var reward npcdoc.Reward
		if err := decode(r, &reward); err != nil {
			return err
		}
		return e.SetReward(i, reward)
	})))
	h.mux.HandleFunc("DELETE "+s+"/quest/rewards/{index}", h.mutate(withIndex(func(r *http.Request, e *editor.Editor, i int) error {
		return e.RemoveReward(r.Context(), i)
	})))

	// Shop
	h.mux.HandleFunc("PUT "+s+"/shop", h.mutate(func(r *http.Request, e *editor.Editor, _ *int) error {
		var req ShopInfoRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		return e.SetShopInfo(req.Title, req.Direction)
	}))
	h.mux.HandleFunc("POST "+s+"/shop/items", h.mutate(func(r *http.Request, e *editor.Editor, added *int) error {
		*added = e.AddShopItem()
		return nil
	}))
	h.mux.HandleFunc("PUT "+s+"/shop/items/{index}", h.mutate(withIndex(func(r *http.Request, e *editor.Editor, i int) error {
		var item npcdoc.ShopItem
		if err := decode(r, &item); err != nil {
			return err
		}
		return e.SetShopItem(i, item)
	})))
	h.mux.HandleFunc("PUT "+s+"/shop/items/{index}/price", h.mutate(withIndex(func(r *http.Request, e *editor.Editor, i int) error {
		var req PriceRequest
		if err := decode(r, &req); err != nil {
			return err
		}
		return e.SetShopItemPrice(i, req.Price)
	})))
	h.mux.HandleFunc("DELETE "+s+"/shop/items/{index}", h.mutate(withIndex(func(r *http.Request, e *editor.Editor, i int) error {
		return e.RemoveShopItem(r.Context(), i)
	})))

	h.mux.HandleFunc("POST "+s+"/import/{kind}", h.handleImport)
}

// requestConfirmer approves destructive changes only when the request
// carries ?confirm=true, and remembers the question it was asked.
type requestConfirmer struct {
	approved bool
	asked    string
}

func (c *requestConfirmer) Confirm(_ context.Context, message string) (bool, error) {
	c.asked = message
	return c.approved, nil
}

type mutation func(r *http.Request, e *editor.Editor, added *int) error

func withIndex(fn func(r *http.Request, e *editor.Editor, i int) error) mutation {
	return func(r *http.Request, e *editor.Editor, _ *int) error {
		i, err := pathIndex(r)
		if err != nil {
			return err
		}
		return fn(r, e, i)
	}
}

// mutate wraps an editor operation in a session update.
func (h *SessionHandler) mutate(fn mutation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := h.sessionID(w, r)
		if !ok {
			return
		}
		log := logger.WithSession(h.logger, id.String())

		confirmer := &requestConfirmer{approved: r.URL.Query().Get("confirm") == "true"}
		added := -1
		snap, err := h.store.Update(r.Context(), id, func(e *editor.Editor) error {
			return fn(r, e, &added)
		}, editor.WithConfirmer(confirmer), editor.WithLogger(log))
		if err != nil {
			h.writeFailure(w, log, err, confirmer.asked)
			return
		}

		resp := SessionResponse{ID: id, State: snap}
		if added >= 0 {
			resp.Index = &added
		}
		writeJSON(w, h.logger, http.StatusOK, resp)
	}
}

func (h *SessionHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateSessionRequest
	if r.ContentLength != 0 {
		if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
			h.writeFailure(w, h.logger, err, "")
			return
		}
	}

	e := editor.New()
	if req.NpcID != "" {
		e.SetNpcID(req.NpcID)
	}
	id, err := h.store.Create(r.Context(), e.Snapshot())
	if err != nil {
		h.writeFailure(w, h.logger, err, "")
		return
	}
	h.logger.Info("Session created", "session_id", id, "npc_id", e.NpcID())
	writeJSON(w, h.logger, http.StatusCreated, SessionResponse{ID: id, State: e.Snapshot()})
}

func (h *SessionHandler) handleRead(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.store.Load(r.Context(), id)
	if err != nil {
		h.writeFailure(w, h.logger, err, "")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, SessionResponse{ID: id, State: snap})
}

func (h *SessionHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeFailure(w, h.logger, err, "")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) handleImport(w http.ResponseWriter, r *http.Request) {
	kind := r.PathValue("kind")
	if kind != "role" && kind != "interaction" && kind != "content" {
		writeError(w, h.logger, http.StatusNotFound, fmt.Sprintf("unknown import kind %q", kind))
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxImportBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, h.logger, http.StatusRequestEntityTooLarge, fmt.Sprintf("import exceeds %d bytes", h.maxImportBytes))
			return
		}
		writeError(w, h.logger, http.StatusBadRequest, "failed to read request body")
		return
	}

	name := r.URL.Query().Get("name")
	h.mutate(func(r *http.Request, e *editor.Editor, _ *int) error {
		switch kind {
		case "role":
			return e.ImportRole(data, name)
		case "interaction":
			return e.ImportInteraction(data)
		default:
			return e.ImportContent(data)
		}
	})(w, r)
}

func (h *SessionHandler) handleExport(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.store.Load(r.Context(), id)
	if err != nil {
		h.writeFailure(w, h.logger, err, "")
		return
	}
	e, err := editor.Restore(snap)
	if err != nil {
		h.writeFailure(w, h.logger, err, "")
		return
	}
	docs, err := e.Export()
	if err != nil {
		h.writeFailure(w, h.logger, err, "")
		return
	}
	files, err := archive.FromDocuments(docs)
	if err != nil {
		h.writeFailure(w, h.logger, err, "")
		return
	}
	data, err := archive.Bytes(r.Context(), h.packager, files)
	if err != nil {
		h.writeFailure(w, h.logger, err, "")
		return
	}

	h.logger.Info("Pack exported", "session_id", id, "npc_id", e.NpcID(), "files", len(files), "bytes", len(data))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", e.ArchiveName()))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(data); err != nil {
		h.logger.Error("Failed to write export", "session_id", id, "error", err)
	}
}

func (h *SessionHandler) sessionID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	raw := r.PathValue("id")
	id, err := uuid.Parse(raw)
	if err != nil {
		h.logger.Warn("Invalid session ID", "id", raw, "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid session ID format")
		return uuid.Nil, false
	}
	return id, true
}

func (h *SessionHandler) writeFailure(w http.ResponseWriter, log *slog.Logger, err error, confirm string) {
	status := statusFor(err)
	switch {
	case status >= http.StatusInternalServerError:
		logger.WithError(log, err).Error("Session request failed")
		writeError(w, log, status, "Internal server error")
		return
	case errors.Is(err, editor.ErrCancelled):
		writeJSON(w, log, status, ErrorResponse{Error: err.Error(), Confirm: confirm})
		return
	}
	log.Debug("Session request rejected", "status", status, "error", err)
	writeError(w, log, status, err.Error())
}

func pathIndex(r *http.Request) (int, error) {
	raw := r.PathValue("index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: index %q is not a number", editor.ErrInvalidFormat, raw)
	}
	return i, nil
}

// decode reads a JSON request body; malformed bodies are invalid-format errors.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: request body: %w", editor.ErrInvalidFormat, err)
	}
	return nil
}
