package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/blockfall/internal/api/apierr"
	"github.com/mcoot/blockfall/internal/model"
	"github.com/mcoot/blockfall/internal/services/auth"
)

type contextKey string

const gameContextKey contextKey = "game"

// ControlTokenHeader carries a session's control token when the
// Authorization header is not used
const ControlTokenHeader = "X-Control-Token"

// Control creates middleware that admits only holders of the control token
// of the game named by the {id} route variable
func Control(authService auth.ServiceInterface) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := ExtractToken(r)
			if token == "" {
				apierr.WriteError(w, apierr.NewUnauthorizedError())
				return
			}

			id := model.GameID(mux.Vars(r)["id"])
			if err := authService.Verify(r.Context(), id, token); err != nil {
				apierr.WriteError(w, err)
				return
			}

			ctx := context.WithValue(r.Context(), gameContextKey, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ExtractToken extracts the control token from the request
func ExtractToken(r *http.Request) string {
	// Check Authorization header first
	authHeader := r.Header.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return r.Header.Get(ControlTokenHeader)
}

// GetGameID returns the game whose token the request presented
func GetGameID(ctx context.Context) (model.GameID, bool) {
	id, ok := ctx.Value(gameContextKey).(model.GameID)
	return id, ok
}

// MustGetGameID returns the controlled game or panics
func MustGetGameID(ctx context.Context) model.GameID {
	id, ok := GetGameID(ctx)
	if !ok {
		panic("no game in context - control middleware not applied?")
	}
	return id
}
