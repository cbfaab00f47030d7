package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/bennettsui/5ml-agenticai-v1-sub007/internal/domain"
	"github.com/bennettsui/5ml-agenticai-v1-sub007/pkg/apiErrors"
)

// RoleMiddleware restringe o acesso aos papéis informados. Precisa rodar depois do AuthMiddleware.
func RoleMiddleware(allowedRoles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFrom(r.Context())
			if !ok {
				logrus.Warning("Tentativa de acesso sem autenticação")
				apiErrors.WriteError(w, apiErrors.ErrInvalidToken, "Usuário não autenticado", nil)
				return
			}

			if !claims.HasRole(allowedRoles...) {
				logrus.WithFields(logrus.Fields{
					"subject": claims.Subject,
					"roles":   claims.Roles,
				}).Warning("Acesso negado")
				apiErrors.WriteError(w, apiErrors.ErrInsufficientPrivilege, "Você não tem permissão para acessar este recurso", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// OperatorOnly permite apenas operadores
func OperatorOnly() func(http.Handler) http.Handler {
	return RoleMiddleware(domain.RoleOperator)
}

// AllRoles permite qualquer papel conhecido: leitura para dashboards e operadores
func AllRoles() func(http.Handler) http.Handler {
	return RoleMiddleware(domain.RoleViewer, domain.RoleOperator)
}
