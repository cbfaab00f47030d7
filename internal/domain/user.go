package domain

import (
	"github.com/golang-jwt/jwt/v5"
)

// Papéis aceitos nos tokens de operador
const (
	RoleOperator = "operator"
	RoleViewer   = "viewer"
)

// Claims representa o token emitido para operadores e dashboards.
// A emissão acontece fora deste serviço; aqui apenas validamos.
type Claims struct {
	Subject string   `json:"sub_name"`
	Roles   []string `json:"roles"`
	jwt.RegisteredClaims
}

// HasRole verifica se o token carrega algum dos papéis informados
func (c *Claims) HasRole(roles ...string) bool {
	for _, have := range c.Roles {
		for _, want := range roles {
			if have == want {
				return true
			}
		}
	}
	return false
}
