package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/adroit-club/assistant/internal/chat"
	"github.com/adroit-club/assistant/internal/log"
	"github.com/adroit-club/assistant/internal/rag"
)

// maxChatBodyBytes bounds one chat request body.
const maxChatBodyBytes = 1 << 20

type chatHandler struct {
	service *chat.Service
	logger  log.Logger
}

type chatRequest struct {
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type chatResponse struct {
	Response string `json:"response"`
	Mode     string `json:"mode"`
}

// send answers one chat message.
func (h *chatHandler) send(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxChatBodyBytes)

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	answer, err := h.service.Ask(r.Context(), req.Message, req.UserID)
	if err != nil {
		h.logger.Error("chat request failed",
			"user", req.UserID, "error", err)
		writeError(w, http.StatusBadGateway, "failed to generate an answer")
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Response: answer.Text,
		Mode:     wireMode(answer.Provenance),
	})
}

// wireMode maps internal provenance tags to the modes clients know.
func wireMode(p rag.Provenance) string {
	switch p {
	case rag.UserRAG:
		return "personalized_rag"
	case rag.EmptyUserRAG:
		return "system_msg"
	case rag.ProvenanceError:
		return "error"
	default:
		return "rag"
	}
}
