package controllers

import (
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/alexvaldes/gigworks-backend/api/responses"
	"github.com/alexvaldes/gigworks-backend/internal/realtime"
	"github.com/alexvaldes/gigworks-backend/pkg/config"
	pkgerrors "github.com/alexvaldes/gigworks-backend/pkg/errors"
	"github.com/alexvaldes/gigworks-backend/pkg/logger"
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// RealtimeWS upgrades an authenticated request into a realtime connection and
// runs it until the peer disconnects.
func RealtimeWS(gateway *realtime.Gateway, cfg config.RealtimeConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if gateway == nil {
			responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeInternal, "realtime gateway unavailable"))
			return
		}

		ws, err := wsUpgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote its own error response.
			if logg != nil {
				logg.Warn(logg.WithField(ctx, "error", err.Error()), "websocket upgrade failed")
			}
			return
		}

		conn := realtime.NewConn(ws, cfg)
		conn.Serve(ctx, gateway)
	}
}
