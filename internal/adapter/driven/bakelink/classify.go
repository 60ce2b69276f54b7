package bakelink

import (
	"net/http"

	"github.com/ericfisherdev/bakelink/internal/domain/model"
)

const (
	msgNoData           = "no data"
	msgBadRequest       = "400 error"
	msgUnauthorized     = "authorization failed, please log in again (401)"
	msgForbidden        = "insufficient permission (403)"
	msgNotFound         = "not found (404)"
	msgConflict         = "duplicate data, please re-enter"
	msgServerError      = "something went wrong (500)"
	msgUnavailable      = "503 service unavailable"
	suffixContactServer = "; if this persists, contact the backend engineer"

	unreachableTitle   = "CORS"
	unreachableMessage = "系統更新或維護中，若持續出現此訊息請先聯絡「網路管理員」或「後端工程師」\n" +
		"The system is being updated or maintained. If this message persists, contact the network administrator or the backend engineer."
)

// Classify maps a failed response to the notification the operator sees.
// ok is false for statuses that are only logged.
func Classify(status int, body Body) (n model.Notification, ok bool) {
	messageOr := func(fallback string) string {
		if body.Kind == BodyText {
			return body.Message
		}
		return fallback
	}

	switch status {
	case http.StatusBadRequest:
		if body.Kind == BodyBinary {
			return errorNotification(status, msgNoData), true
		}
		return errorNotification(status, messageOr(msgBadRequest)), true
	case http.StatusUnauthorized:
		return errorNotification(status, messageOr(msgUnauthorized)), true
	case http.StatusForbidden:
		return errorNotification(status, messageOr(msgForbidden)), true
	case http.StatusNotFound:
		return errorNotification(status, messageOr(msgNotFound)), true
	case http.StatusConflict:
		return model.Notification{Severity: model.SeverityWarning, Message: msgConflict, Status: status}, true
	case http.StatusInternalServerError:
		if body.Kind == BodyText {
			return errorNotification(status, body.Message+suffixContactServer+" (500)"), true
		}
		return errorNotification(status, msgServerError), true
	case http.StatusServiceUnavailable:
		if body.Kind == BodyText {
			return errorNotification(status, body.Message+suffixContactServer), true
		}
		return errorNotification(status, msgUnavailable), true
	}
	return model.Notification{}, false
}

// UnreachableNotification is the blocking notice shown when the backend
// produced no response at all.
func UnreachableNotification() model.Notification {
	return model.Notification{
		Severity: model.SeverityWarning,
		Title:    unreachableTitle,
		Message:  unreachableMessage,
		Blocking: true,
	}
}

func errorNotification(status int, message string) model.Notification {
	return model.Notification{Severity: model.SeverityError, Message: message, Status: status}
}
