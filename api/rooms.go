package api

import (
	"net/http"
	"strconv"

	"github.com/dvalenz/roomreserve/internal/service/reservation"
	"github.com/dvalenz/roomreserve/internal/service/rooms"
	"github.com/gin-gonic/gin"
)

type RoomHandler struct {
	service      rooms.RoomUseCase
	reservations reservation.ReservationUseCase
}

func NewRoomHandler(service rooms.RoomUseCase, reservations reservation.ReservationUseCase) *RoomHandler {
	return &RoomHandler{service: service, reservations: reservations}
}

func (h *RoomHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.list)
	router.GET("/:id", h.get)
	router.GET("/:id/reservations", h.listReservations)
	router.GET("/:id/availability", h.availability)
}

func (h *RoomHandler) list(c *gin.Context) {
	rooms, err := h.service.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rooms)
}

func (h *RoomHandler) get(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	room, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, room)
}

func (h *RoomHandler) listReservations(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	reservations, err := h.reservations.ListForRoom(c.Request.Context(), id, c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

func (h *RoomHandler) availability(c *gin.Context) {
	id, ok := roomID(c)
	if !ok {
		return
	}
	grid, err := h.reservations.Availability(c.Request.Context(), id, c.Query("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, grid)
}

func roomID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
