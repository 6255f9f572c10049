package drivers

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/wenyfour/rideshare/internal/domain"
	"github.com/wenyfour/rideshare/internal/repository"
)

type DriverUseCase interface {
	CreateProfile(ctx context.Context, input CreateProfileInput, userID string) (*domain.Driver, error)
	GetProfile(ctx context.Context, userID string) (*domain.Driver, error)
	IsVerified(ctx context.Context, userID string) (bool, error)
	Verify(ctx context.Context, driverID string) (*domain.Driver, error)
	RegisterCar(ctx context.Context, input RegisterCarInput, userID string) (*domain.Car, error)
	GetCar(ctx context.Context, carID string) (*domain.Car, error)
	ListCars(ctx context.Context, userID string) ([]domain.Car, error)
}

type CreateProfileInput struct {
	NIN           string `json:"nin"`
	DriverLicense string `json:"driver_license"`
}

type RegisterCarInput struct {
	Brand    string `json:"brand"`
	Color    string `json:"color"`
	CType    string `json:"c_type"`
	CLicense string `json:"c_license"`
}

type DriverService struct {
	drivers repository.DriverRepository
	cars    repository.CarRepository
}

func NewDriverService(drivers repository.DriverRepository, cars repository.CarRepository) *DriverService {
	return &DriverService{drivers: drivers, cars: cars}
}

// CreateProfile registers the document URLs for review. The profile
// starts unverified; staff flip the flag through Verify after review.
func (s *DriverService) CreateProfile(ctx context.Context, input CreateProfileInput, userID string) (*domain.Driver, error) {
	if input.NIN == "" || input.DriverLicense == "" {
		return nil, errors.New("nin and driver_license are required")
	}

	driver := &domain.Driver{
		ID:            uuid.NewString(),
		UserID:        userID,
		NIN:           input.NIN,
		DriverLicense: input.DriverLicense,
		IsVerified:    false,
	}
	if err := s.drivers.Create(ctx, driver); err != nil {
		return nil, err
	}
	return driver, nil
}

func (s *DriverService) GetProfile(ctx context.Context, userID string) (*domain.Driver, error) {
	return s.drivers.GetByUserID(ctx, userID)
}

func (s *DriverService) IsVerified(ctx context.Context, userID string) (bool, error) {
	return s.drivers.IsVerified(ctx, userID)
}

// Verify marks a reviewed driver profile as verified. Idempotent: a
// second call on an already verified profile changes nothing.
func (s *DriverService) Verify(ctx context.Context, driverID string) (*domain.Driver, error) {
	driver, err := s.drivers.GetByID(ctx, driverID)
	if err != nil {
		return nil, err
	}
	if !driver.IsVerified {
		if err := s.drivers.SetVerified(ctx, driver.ID, true); err != nil {
			return nil, err
		}
		driver.IsVerified = true
	}
	return driver, nil
}

func (s *DriverService) RegisterCar(ctx context.Context, input RegisterCarInput, userID string) (*domain.Car, error) {
	if input.Brand == "" || input.CLicense == "" {
		return nil, errors.New("brand and c_license are required")
	}

	car := &domain.Car{
		ID:       uuid.NewString(),
		Brand:    input.Brand,
		Color:    input.Color,
		CType:    input.CType,
		CLicense: input.CLicense,
		UserID:   userID,
	}
	if err := s.cars.Create(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

func (s *DriverService) GetCar(ctx context.Context, carID string) (*domain.Car, error) {
	return s.cars.GetByID(ctx, carID)
}

func (s *DriverService) ListCars(ctx context.Context, userID string) ([]domain.Car, error) {
	return s.cars.ListByUser(ctx, userID)
}

var _ DriverUseCase = (*DriverService)(nil)
