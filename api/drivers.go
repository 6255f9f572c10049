package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/wenyfour/rideshare/internal/auth"
	"github.com/wenyfour/rideshare/internal/domain"
	"github.com/wenyfour/rideshare/internal/service/drivers"
)

type DriverHandler struct {
	service drivers.DriverUseCase
}

type driverResponse struct {
	ID            string `json:"id"`
	UserID        string `json:"user_id"`
	NIN           string `json:"nin"`
	DriverLicense string `json:"driver_license"`
	IsVerified    bool   `json:"is_verified"`
	CreatedAt     string `json:"created_at"`
}

type carResponse struct {
	ID       string `json:"id"`
	Brand    string `json:"brand"`
	Color    string `json:"color"`
	CType    string `json:"c_type"`
	CLicense string `json:"c_license"`
	UserID   string `json:"user_id"`
}

func NewDriverHandler(service drivers.DriverUseCase) *DriverHandler {
	return &DriverHandler{service: service}
}

func (h *DriverHandler) RegisterDrivers(router *gin.RouterGroup) {
	router.POST("/create", h.createProfile)
	router.GET("/me", h.getProfile)
	router.PUT("/verify/:id", h.verify)
}

func (h *DriverHandler) RegisterCars(router *gin.RouterGroup) {
	router.POST("/create", h.registerCar)
	router.GET("/", h.listCars)
	router.GET("/:id", h.getCar)
}

func (h *DriverHandler) createProfile(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	var req drivers.CreateProfileInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	driver, err := h.service.CreateProfile(c.Request.Context(), req, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toDriverResponse(driver))
}

func (h *DriverHandler) getProfile(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	driver, err := h.service.GetProfile(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverResponse(driver))
}

// verify flips a driver profile to verified after document review.
func (h *DriverHandler) verify(c *gin.Context) {
	driver, err := h.service.Verify(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDriverResponse(driver))
}

func (h *DriverHandler) registerCar(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	var req drivers.RegisterCarInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	car, err := h.service.RegisterCar(c.Request.Context(), req, claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toCarResponse(car))
}

func (h *DriverHandler) getCar(c *gin.Context) {
	car, err := h.service.GetCar(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCarResponse(car))
}

func (h *DriverHandler) listCars(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing session"})
		return
	}

	cars, err := h.service.ListCars(c.Request.Context(), claims.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]carResponse, 0, len(cars))
	for i := range cars {
		out = append(out, toCarResponse(&cars[i]))
	}
	c.JSON(http.StatusOK, out)
}

func toDriverResponse(driver *domain.Driver) driverResponse {
	return driverResponse{
		ID:            driver.ID,
		UserID:        driver.UserID,
		NIN:           driver.NIN,
		DriverLicense: driver.DriverLicense,
		IsVerified:    driver.IsVerified,
		CreatedAt:     driver.CreatedAt.Format(time.RFC3339),
	}
}

func toCarResponse(car *domain.Car) carResponse {
	return carResponse{
		ID:       car.ID,
		Brand:    car.Brand,
		Color:    car.Color,
		CType:    car.CType,
		CLicense: car.CLicense,
		UserID:   car.UserID,
	}
}
