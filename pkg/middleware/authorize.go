package middleware

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/Sanchex-22/flow-console/modules/core/services"
	"github.com/Sanchex-22/flow-console/pkg/application"
	"github.com/Sanchex-22/flow-console/pkg/composables"
	"github.com/Sanchex-22/flow-console/pkg/configuration"
	"github.com/Sanchex-22/flow-console/pkg/scope"
)

// Authorize resolves the sid cookie into an authenticated user plus that
// session's company-scope state. Requests without a valid session pass
// through anonymous; the guards downstream decide what that means.
func Authorize(app application.Application, manager *scope.Manager) mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(conf.SidCookieKey)
			if err != nil || cookie.Value == "" {
				next.ServeHTTP(w, r)
				return
			}

			authService := app.Service(services.AuthService{}).(*services.AuthService)
			u, sess, err := authService.Authorize(r.Context(), cookie.Value)
			if err != nil {
				// Stale cookie: expire it and continue anonymous.
				http.SetCookie(w, &http.Cookie{
					Name:   conf.SidCookieKey,
					Value:  "",
					MaxAge: -1,
					Path:   "/",
				})
				next.ServeHTTP(w, r)
				return
			}

			ctx := composables.WithUser(r.Context(), u)
			ctx = composables.WithSession(ctx, sess)
			ctx = composables.WithScope(ctx, manager.For(sess.Token))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
