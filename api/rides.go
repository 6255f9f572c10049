package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wenyfour/rideshare/internal/auth"
	"github.com/wenyfour/rideshare/internal/service/rides"
)

type RideHandler struct {
	service rides.RideUseCase
}

func NewRideHandler(service rides.RideUseCase) *RideHandler {
	return &RideHandler{service: service}
}

// Register mounts the ride routes. Every route requires a session.
func (h *RideHandler) Register(router *gin.RouterGroup) {
	router.POST("/", h.create)
	router.GET("/", h.listOpen)
	router.GET("/:id", h.getOrQuery)
	router.PUT("/:id/book", h.book)
	router.GET("/:id/ordered", h.ordered)
	router.DELETE("/:id", h.remove)
}

// getOrQuery dispatches the reserved path segments search and
// published; gin's router cannot hold them as static siblings of the
// id wildcard. Ride ids are UUIDs, so the names never collide.
func (h *RideHandler) getOrQuery(c *gin.Context) {
	switch c.Param("id") {
	case "search":
		h.search(c)
	case "published":
		h.published(c)
	default:
		h.get(c)
	}
}

func (h *RideHandler) create(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	var req rides.CreateRideInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	ride, err := h.service.Create(c.Request.Context(), req, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRideResponse(*ride))
}

func (h *RideHandler) book(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	var req rides.BookRideInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	passenger, err := h.service.Book(c.Request.Context(), c.Param("id"), req, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   "ride booked successfully",
		"passenger": passengerResponse{ID: passenger.ID, RideID: passenger.RideID, UserID: passenger.UserID, NoSeats: passenger.NoSeats, Price: passenger.Price},
	})
}

func (h *RideHandler) get(c *gin.Context) {
	ride, passengers, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := struct {
		rideResponse
		Passengers []passengerResponse `json:"passengers"`
	}{toRideResponse(*ride), toPassengerResponses(passengers)}
	c.JSON(http.StatusOK, resp)
}

func (h *RideHandler) search(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	minSeats := 1
	if raw := c.Query("seats"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid seats"})
			return
		}
		minSeats = parsed
	}

	results, err := h.service.Search(c.Request.Context(), rides.SearchInput{
		FromLocation: c.Query("from"),
		ToLocation:   c.Query("to"),
		MinSeats:     minSeats,
	}, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideSummaryResponses(results))
}

func (h *RideHandler) published(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	owned, err := h.service.Published(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponses(owned))
}

func (h *RideHandler) ordered(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	booked, err := h.service.Ordered(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideSummaryResponses(booked))
}

func (h *RideHandler) listOpen(c *gin.Context) {
	open, err := h.service.ListOpen(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRideResponses(open))
}

func (h *RideHandler) remove(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "ride deleted"})
}
