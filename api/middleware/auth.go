/*
Copyright 2024 Daftar Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/polica/daftar"
	"github.com/polica/daftar/model"
)

// UserKey is the gin context key the authenticated user is stored under.
const UserKey = "user"

// AuthMiddleware resolves the bearer token on every request and attaches the
// user to the context. The token is parsed and looked up exactly once here;
// handlers read the resolved user instead of re-parsing headers.
type AuthMiddleware struct {
	service *daftar.Daftar
}

func NewAuthMiddleware(d *daftar.Daftar) *AuthMiddleware {
	return &AuthMiddleware{service: d}
}

// openPaths can be reached without a token.
var openPaths = map[string]bool{
	"/":      true,
	"/login": true,
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// Authenticate validates the bearer token and, for DELETE requests, requires
// a role allowed to remove ledger records.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if openPaths[c.Request.URL.Path] {
			c.Next()
			return
		}

		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing bearer token"})
			return
		}

		user, err := m.service.ResolveToken(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		if c.Request.Method == http.MethodDelete && !user.CanDelete() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Insufficient permissions to delete records"})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}

// CurrentUser returns the user the auth middleware resolved, if any.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	value, ok := c.Get(UserKey)
	if !ok {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}
