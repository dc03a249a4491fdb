package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"runhub/internal/service"
)

// @Summary      List notifications
// @Description  Notifications addressed to a user, newest message first
// @Tags         notification
// @Produce      json
// @Param        username path string true "Recipient username"
// @Success      200  {array}   domain.PopulatedNotification
// @Failure      500  {object}  errorResponse
// @Router       /notification/getNotifications/{username} [get]
func handleGetNotifications(notifSvc *service.NotificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := chi.URLParam(r, "username")
		if err := requireCallerUsername(r, "getNotifications", username); err != nil {
			writeError(w, r, logger, err)
			return
		}
		ns, err := notifSvc.ListNotifications(r.Context(), username)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, ns)
	}
}

// @Summary      Delete a notification
// @Description  Dismiss one notification; the message it points to is kept
// @Tags         notification
// @Produce      json
// @Param        nid path string true "Notification id"
// @Success      200  {boolean}  bool
// @Failure      400  {object}  errorResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /notification/deleteNotification/{nid} [delete]
func handleDeleteNotification(notifSvc *service.NotificationService, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		nid := chi.URLParam(r, "nid")
		n, err := notifSvc.GetNotification(r.Context(), nid)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		if n != nil {
			if err := requireCallerUsername(r, "deleteNotification", n.User); err != nil {
				writeError(w, r, logger, err)
				return
			}
		}

		removed, err := notifSvc.DeleteNotification(r.Context(), nid)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, removed)
	}
}
