package handlers

import (
	"net/http"

	"buslines/internal/domain/models"
	"buslines/internal/repositories"

	"github.com/gin-gonic/gin"
)

// GET /api/buses?active=true
func GetBuses(c *gin.Context) {
	repo := repositories.BusRepo{}
	buses, err := repo.List(c.Query("active") == "true")
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"buses": buses})
}

// GET /api/buses/:id
func GetBusByID(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	repo := repositories.BusRepo{}
	bus, err := repo.GetByID(id)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, bus)
}

// POST /api/buses
func CreateBus(c *gin.Context) {
	var bus models.Bus
	if !BindJSONOrError(c, &bus) {
		return
	}
	repo := repositories.BusRepo{}
	id, err := repo.Create(bus)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	bus.ID = id
	c.JSON(http.StatusCreated, bus)
}

// PUT /api/buses/:id
func UpdateBus(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	var bus models.Bus
	if !BindJSONOrError(c, &bus) {
		return
	}
	repo := repositories.BusRepo{}
	if err := repo.Update(id, bus); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bus updated"})
}

// DELETE /api/buses/:id
func DeleteBus(c *gin.Context) {
	id, ok := PathID(c)
	if !ok {
		return
	}
	repo := repositories.BusRepo{}
	if err := repo.Delete(id); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "bus deleted"})
}
