package handler

import (
	"context"

	"anonchat/internal/app/feed"
	"anonchat/internal/app/session"
	"anonchat/internal/configs"
)

// ChatSession is the widget state the API exposes. *session.Session implements it.
type ChatSession interface {
	Snapshot() session.Snapshot
	Send(ctx context.Context, text string) (feed.Message, error)
	Refresh(ctx context.Context) error
	OpenPayment(ctx context.Context) error
	SubmitPayment(ctx context.Context) error
	CancelPayment(ctx context.Context) error
}

// AppDeps holds everything the handlers need.
type AppDeps struct {
	Session ChatSession
	Config  *configs.AppConfig
}
