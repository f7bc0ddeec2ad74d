package i

import "github.com/gin-gonic/gin"

// Controller mounts its routes on the router's public and bearer-protected groups.
type Controller interface {
	RegisterPublic(*gin.RouterGroup)
	RegisterProtected(*gin.RouterGroup)
}
