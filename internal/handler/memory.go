package handler

import (
	"net/http"
	"strconv"

	"github.com/kairoshq/kairos/internal/ctxkeys"
	"github.com/kairoshq/kairos/internal/service"
)

type MemoryHandler struct {
	memories *service.MemoryService
}

func NewMemoryHandler(memories *service.MemoryService) *MemoryHandler {
	return &MemoryHandler{memories: memories}
}

type createMemoryRequest struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

func (h *MemoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createMemoryRequest
	if !decodeBody(w, r, &req) {
		return
	}

	memory, err := h.memories.Add(ctxkeys.UserID(r.Context()), req.Text, req.Type)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, memory)
}

func (h *MemoryHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil && n > 0 {
			limit = n
		}
	}

	memories, err := h.memories.Recent(ctxkeys.UserID(r.Context()), limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, memories)
}
