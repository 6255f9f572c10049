package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wenyfour/rideshare/internal/domain"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

// respondError maps domain errors onto one uniform JSON error shape.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNoSeats), errors.Is(err, domain.ErrRideExpired):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrOwnershipMismatch):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrInvalidCredentials):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrInactiveUser), errors.Is(err, domain.ErrNotVerified), errors.Is(err, domain.ErrEmailTaken):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
}

type rideResponse struct {
	ID              string  `json:"id"`
	Date            string  `json:"date"`
	Time            string  `json:"time"`
	FromLocation    string  `json:"from_location"`
	ToLocation      string  `json:"to_location"`
	PickupLocation  string  `json:"pickup_location"`
	DropoffLocation string  `json:"dropoff_location"`
	Gender          string  `json:"gender"`
	Seats           int     `json:"seats"`
	SeatPrice       float64 `json:"seat_price"`
	CarID           string  `json:"car_id"`
	DriverID        string  `json:"driver_id"`
	Expired         bool    `json:"expired"`
	AvailableSeats  int     `json:"available_seats"`
}

type rideSummaryResponse struct {
	rideResponse
	CarModel    string `json:"car_model,omitempty"`
	CarColor    string `json:"car_color,omitempty"`
	CarType     string `json:"car_type,omitempty"`
	DriverName  string `json:"driver_name,omitempty"`
	DriverPhone string `json:"driver_phone,omitempty"`
}

type passengerResponse struct {
	ID      string  `json:"id"`
	RideID  string  `json:"ride_id"`
	UserID  string  `json:"user_id"`
	NoSeats int     `json:"no_seats"`
	Price   float64 `json:"price"`
}

func toRideResponse(ride domain.Ride) rideResponse {
	return rideResponse{
		ID:              ride.ID,
		Date:            ride.DepartureAt.Format(dateLayout),
		Time:            ride.DepartureAt.Format(timeLayout),
		FromLocation:    ride.FromLocation,
		ToLocation:      ride.ToLocation,
		PickupLocation:  ride.PickupLocation,
		DropoffLocation: ride.DropoffLocation,
		Gender:          ride.Gender,
		Seats:           ride.Seats,
		SeatPrice:       ride.SeatPrice,
		CarID:           ride.CarID,
		DriverID:        ride.DriverID,
		Expired:         ride.Expired,
		AvailableSeats:  ride.AvailableSeats,
	}
}

func toRideResponses(rides []domain.Ride) []rideResponse {
	out := make([]rideResponse, 0, len(rides))
	for _, ride := range rides {
		out = append(out, toRideResponse(ride))
	}
	return out
}

func toRideSummaryResponses(summaries []domain.RideSummary) []rideSummaryResponse {
	out := make([]rideSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, rideSummaryResponse{
			rideResponse: toRideResponse(s.Ride),
			CarModel:     s.CarModel,
			CarColor:     s.CarColor,
			CarType:      s.CarType,
			DriverName:   s.DriverName,
			DriverPhone:  s.DriverPhone,
		})
	}
	return out
}

func toPassengerResponses(passengers []domain.Passenger) []passengerResponse {
	out := make([]passengerResponse, 0, len(passengers))
	for _, p := range passengers {
		out = append(out, passengerResponse{ID: p.ID, RideID: p.RideID, UserID: p.UserID, NoSeats: p.NoSeats, Price: p.Price})
	}
	return out
}
