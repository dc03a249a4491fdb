package httpserver

import (
	"net/http"

	"go.uber.org/zap"

	"runhub/internal/service"
)

type sendMessageRequest struct {
	SentBy         string `json:"sentBy" validate:"required"`
	MessageContent string `json:"messageContent" validate:"required"`
	CID            string `json:"cid" validate:"required"`
}

type sendBlastMessageRequest struct {
	UID            string `json:"uid" validate:"required"`
	MessageContent string `json:"messageContent" validate:"required"`
}

type markAsReadRequest struct {
	MID string `json:"mid" validate:"required"`
	UID string `json:"uid" validate:"required"`
}

// @Summary      Send a message
// @Description  Append a message to a conversation the sender takes part in
// @Tags         message
// @Accept       json
// @Produce      json
// @Param        input body sendMessageRequest true "Message"
// @Success      200  {object}  domain.PopulatedMessage
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /message/sendMessage [post]
func handleSendMessage(msgSvc *service.MessageService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "sendMessage"
		var req sendMessageRequest
		if err := decodeJSON(r, op, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		if err := requireCallerUsername(r, op, req.SentBy); err != nil {
			writeError(w, r, logger, err)
			return
		}

		msg, err := msgSvc.SendMessage(r.Context(), req.SentBy, req.MessageContent, req.CID)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}

// @Summary      Send a blast message
// @Description  Send a message to every follower in their 1:1 conversation and notify them.
// @Description  Followers that fail are listed in the result; 500 only when all of them failed.
// @Tags         message
// @Accept       json
// @Produce      json
// @Param        input body sendBlastMessageRequest true "Blast"
// @Success      200  {object}  service.BlastResult
// @Failure      400  {object}  errorResponse
// @Failure      500  {object}  service.BlastResult
// @Router       /message/sendBlastMessage [post]
func handleSendBlastMessage(blastSvc *service.BlastService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "sendBlastMessage"
		var req sendBlastMessageRequest
		if err := decodeJSON(r, op, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		if err := requireCallerID(r, op, req.UID); err != nil {
			writeError(w, r, logger, err)
			return
		}

		res, err := blastSvc.SendBlastMessage(r.Context(), req.UID, req.MessageContent)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		status := http.StatusOK
		if res.AllFailed() {
			status = http.StatusInternalServerError
		}
		writeJSON(w, status, res)
	}
}

// @Summary      Mark a message as read
// @Tags         message
// @Accept       json
// @Produce      json
// @Param        input body markAsReadRequest true "Reader"
// @Success      200  {object}  domain.PopulatedMessage
// @Failure      400  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /message/markAsRead [post]
func handleMarkAsRead(msgSvc *service.MessageService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "markAsRead"
		var req markAsReadRequest
		if err := decodeJSON(r, op, &req); err != nil {
			writeError(w, r, logger, err)
			return
		}
		if err := requireCallerID(r, op, req.UID); err != nil {
			writeError(w, r, logger, err)
			return
		}

		msg, err := msgSvc.MarkAsRead(r.Context(), req.MID, req.UID)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, msg)
	}
}
