package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-autoplayer/service/i"
	"github.com/gin-gonic/gin"
)

const (
	// ContextOperatorClaims is the key used to store operator claims in the Gin context.
	ContextOperatorClaims = "operatorClaims"

	// ClaimLobby names the lobby an operator may control.
	ClaimLobby = "lobby"
)

// OperatorLobby returns the lobby claim of the authorized operator.
func OperatorLobby(c *gin.Context) (string, bool) {
	value, ok := c.Get(ContextOperatorClaims)
	if !ok {
		return "", false
	}
	claims, ok := value.(map[string]any)
	if !ok {
		return "", false
	}
	lobby, ok := claims[ClaimLobby].(string)
	return lobby, ok && lobby != ""
}

// Authorize rejects requests without a valid bearer token.
func Authorize(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Retrieve the access token from the Authorization header.
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Status(http.StatusUnauthorized) // No token found in the header.
			c.Abort()
			return
		}

		// Split the "Bearer" prefix from the token.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Status(http.StatusUnauthorized) // Malformed Authorization header.
			c.Abort()
			return
		}

		// Extract the token part.
		token := parts[1]

		// Validate the token.
		claims, err := ts.Decode(token)
		if err != nil {
			c.Status(http.StatusUnauthorized)
			c.Abort()
			return
		}

		// Attach operator claims to the request context for further use.
		c.Set(ContextOperatorClaims, claims)
		c.Next()
	}
}
