package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/dvalenz/roomreserve/internal/repository"
	"github.com/dvalenz/roomreserve/internal/service/reservation"
	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service reservation.ReservationUseCase
}

type createReservationRequest struct {
	RoomID     int64     `json:"room_id"`
	Date       string    `json:"reservation_date"`
	StartTime  time.Time `json:"start_time"`
	EndTime    time.Time `json:"end_time"`
	Purpose    string    `json:"purpose"`
	GuestName  string    `json:"guest_name"`
	GuestEmail string    `json:"guest_email"`
}

type cancelReservationRequest struct {
	Email string `json:"email"`
}

func NewReservationHandler(service reservation.ReservationUseCase) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) Register(router *gin.RouterGroup) {
	router.GET("/", h.listByDate)
	router.GET("/by-date/:date", h.listByDateParam)
	router.POST("/", h.create)
	router.POST("/:id/cancel", h.cancel)
	router.POST("/confirm/:code", h.confirmPayment)
}

func (h *ReservationHandler) listByDate(c *gin.Context) {
	date := c.Query("date")
	reservations, err := h.service.ListByDate(c.Request.Context(), date)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

func (h *ReservationHandler) listByDateParam(c *gin.Context) {
	reservations, err := h.service.ListByDate(c.Request.Context(), c.Param("date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, reservations)
}

func (h *ReservationHandler) create(c *gin.Context) {
	var req createReservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	created, err := h.service.CreateReservation(c.Request.Context(), reservation.CreateReservationInput{
		RoomID:     req.RoomID,
		Date:       req.Date,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Purpose:    req.Purpose,
		UserID:     userIDFromRequest(c),
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *ReservationHandler) cancel(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req cancelReservationRequest
	_ = c.ShouldBindJSON(&req)

	actor := reservation.Actor{
		UserID: userIDFromRequest(c),
		Email:  req.Email,
		Admin:  c.GetHeader("X-Admin") == "true",
	}

	cancelled, err := h.service.CancelReservation(c.Request.Context(), id, actor)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, cancelled)
}

func (h *ReservationHandler) confirmPayment(c *gin.Context) {
	confirmed, err := h.service.ConfirmPayment(c.Request.Context(), c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, confirmed)
}

// userIDFromRequest reads the identity the auth middleware upstream attaches.
// Auth itself is outside this service.
func userIDFromRequest(c *gin.Context) *int64 {
	raw := c.GetHeader("X-User-ID")
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &id
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, reservation.ErrSlotUnavailable):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, reservation.ErrNotAllowed):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, repository.ErrRoomNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
