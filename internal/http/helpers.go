package http

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// queryTimeout bounds every store round trip made while serving a request.
const queryTimeout = 7 * time.Second

// writeJSON writes v as a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}

// writeMessage writes the {"message": ...} error shape every endpoint uses.
func writeMessage(w http.ResponseWriter, status int, message string) {
	MessageResponse(status, message).Write(w)
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

func withQueryTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, queryTimeout)
}
