package controllers

import (
	"net/http"

	"github.com/lojinha-labs/storefront-backend/api/responses"
	"github.com/lojinha-labs/storefront-backend/internal/peersync"
)

type channelStats interface {
	Stats() peersync.Stats
}

// SyncStatus reports the peer channel state and its message counters.
func SyncStatus(channel channelStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if channel == nil {
			responses.WriteSuccess(w, peersync.Stats{State: "Uninitialized"})
			return
		}
		responses.WriteSuccess(w, channel.Stats())
	}
}
