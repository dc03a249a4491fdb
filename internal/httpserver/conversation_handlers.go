package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"runhub/internal/domain"
	"runhub/internal/service"
)

type participantRef struct {
	ID       string `json:"_id"`
	Username string `json:"username" validate:"required"`
}

type addConversationRequest struct {
	Users []participantRef `json:"users" validate:"required,min=2,dive"`
}

// @Summary      Create a conversation
// @Description  Create a conversation for a participant set that has none yet
// @Tags         conversation
// @Accept       json
// @Produce      json
// @Param        input body addConversationRequest true "Participants"
// @Success      200  {object}  domain.PopulatedConversation
// @Failure      400  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /conversation/addConversation [post]
func handleAddConversation(convSvc *service.ConversationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "addConversation"
		var req addConversationRequest
		if err := decodeJSON(r, op, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		if c, ok := domain.CallerFrom(r.Context()); ok && !includesUsername(req.Users, c.Username) {
			writeError(w, r, logger, impersonation(op))
			return
		}

		refs := make([]service.ParticipantRef, len(req.Users))
		for i, u := range req.Users {
			refs[i] = service.ParticipantRef{ID: u.ID, Username: u.Username}
		}
		conv, err := convSvc.CreateConversation(r.Context(), refs)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

// @Summary      Get a conversation
// @Tags         conversation
// @Produce      json
// @Param        cid path string true "Conversation id"
// @Success      200  {object}  domain.PopulatedConversation
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /conversation/getConversation/{cid} [get]
func handleGetConversation(convSvc *service.ConversationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conv, err := convSvc.GetConversation(r.Context(), chi.URLParam(r, "cid"))
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, conv)
	}
}

// @Summary      List a user's conversations
// @Description  Conversations the user takes part in, most recently updated first
// @Tags         conversation
// @Produce      json
// @Param        uid path string true "User id"
// @Success      200  {array}   domain.PopulatedConversation
// @Failure      400  {object}  errorResponse
// @Router       /conversation/getConversations/{uid} [get]
func handleGetConversations(convSvc *service.ConversationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		convs, err := convSvc.ListForUser(r.Context(), chi.URLParam(r, "uid"))
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, convs)
	}
}

func includesUsername(refs []participantRef, username string) bool {
	for _, u := range refs {
		if u.Username == username {
			return true
		}
	}
	return false
}
