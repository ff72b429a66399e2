package handlers

import (
	"net/http"

	"buslines/internal/domain/models"
	"buslines/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/routes?active=true
func GetRoutes(c *gin.Context) {
	repo := repositories.RouteRepo{}
	routes, err := repo.List(c.Query("active") == "true")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"routes": routes})
}

// GET /api/routes/:id
func GetRouteByID(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	repo := repositories.RouteRepo{}
	route, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, route)
}

// POST /api/routes
func CreateRoute(c *gin.Context) {
	var route models.Route
	if !BindJSONOrError(c, &route) {
		return
	}
	repo := repositories.RouteRepo{}
	id, err := repo.Create(route)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	route.ID = id
	c.JSON(http.StatusCreated, route)
}

// PUT /api/routes/:id
func UpdateRoute(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var route models.Route
	if !BindJSONOrError(c, &route) {
		return
	}
	repo := repositories.RouteRepo{}
	if err := repo.Update(id, route); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "route updated"})
}

// DELETE /api/routes/:id
func DeleteRoute(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	repo := repositories.RouteRepo{}
	if err := repo.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "route deleted"})
}
