package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/luisvillanueva/driveshare-backend/api/responses"
	"github.com/luisvillanueva/driveshare-backend/pkg/enums"
	pkgerrors "github.com/luisvillanueva/driveshare-backend/pkg/errors"
	"github.com/luisvillanueva/driveshare-backend/pkg/logger"
)

const (
	actorRoleHeader    = "X-Actor-Role"
	actorAccountHeader = "X-Actor-Account"
)

type actorContextKey struct{}

// Actor is the identity attached to a request. It travels as explicit
// headers, not ambient session state; AccountID is Nil for admin and system
// callers that act outside a participant account.
type Actor struct {
	Role      enums.ActorRole
	AccountID uuid.UUID
}

// ActorContext parses the actor headers into the request context. Requests
// without an actor role pass through untouched; handlers that need an actor
// reject them downstream.
func ActorContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rawRole := strings.TrimSpace(r.Header.Get(actorRoleHeader))
			if rawRole == "" {
				next.ServeHTTP(w, r)
				return
			}

			role, err := enums.ParseActorRole(rawRole)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}

			actor := Actor{Role: role}
			if rawAccount := strings.TrimSpace(r.Header.Get(actorAccountHeader)); rawAccount != "" {
				accountID, err := uuid.Parse(rawAccount)
				if err != nil {
					responses.WriteError(r.Context(), logg, w,
						pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid actor account id"))
					return
				}
				actor.AccountID = accountID
			}

			if logg != nil {
				r = r.WithContext(logg.WithActorRole(r.Context(), role.String()))
			}
			ctx := context.WithValue(r.Context(), actorContextKey{}, actor)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ActorFromContext returns the parsed actor, if any.
func ActorFromContext(ctx context.Context) (Actor, bool) {
	actor, ok := ctx.Value(actorContextKey{}).(Actor)
	return actor, ok
}
