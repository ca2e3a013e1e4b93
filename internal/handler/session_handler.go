/*
Package handler provides the HTTP handlers of the widget API.

This file exposes the session: its snapshot, message sending and the payment gate actions.
Every action answers with the snapshot taken right after it, so a client can render from
one response.
*/
package handler

import (
	"context"
	"net/http"

	"anonchat/internal/pkg/logx"
	"anonchat/internal/pkg/req"
	"anonchat/internal/pkg/resp"
)

type SendMessageInput struct {
	// Text is the message body. Surrounding whitespace is trimmed.
	Text string `json:"text"`
}

// HandleGetSession returns the current session snapshot.
func HandleGetSession(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, deps.Session.Snapshot())
	}
}

// HandleSendMessage sends a message from the local identity.
func HandleSendMessage(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input SendMessageInput

		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		msg, err := deps.Session.Send(r.Context(), input.Text)
		if err != nil {
			logx.Debug("Message rejected", "error", err.Error())
			resp.RespondError(w, r, toCustomError(err))
			return
		}

		data := map[string]any{
			"message":  msg,
			"snapshot": deps.Session.Snapshot(),
		}
		resp.RespondSuccess(w, r, data)
	}
}

// HandleRefreshMessages polls the shared feed immediately.
func HandleRefreshMessages(deps *AppDeps) http.HandlerFunc {
	return sessionAction(deps, deps.Session.Refresh)
}

// HandleOpenPayment shows the payment modal.
func HandleOpenPayment(deps *AppDeps) http.HandlerFunc {
	return sessionAction(deps, deps.Session.OpenPayment)
}

// HandleSubmitPayment starts a payment. The result appears in later snapshots.
func HandleSubmitPayment(deps *AppDeps) http.HandlerFunc {
	return sessionAction(deps, deps.Session.SubmitPayment)
}

// HandleCancelPayment closes the payment modal.
func HandleCancelPayment(deps *AppDeps) http.HandlerFunc {
	return sessionAction(deps, deps.Session.CancelPayment)
}

func sessionAction(deps *AppDeps, action func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := action(r.Context()); err != nil {
			resp.RespondError(w, r, toCustomError(err))
			return
		}

		resp.RespondSuccess(w, r, deps.Session.Snapshot())
	}
}
