package rides

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/wenyfour/rideshare/internal/domain"
	"github.com/wenyfour/rideshare/internal/repository"
)

type MockRideRepository struct {
	mock.Mock
}

func (m *MockRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	args := m.Called(ctx, ride)
	return args.Error(0)
}

func (m *MockRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Ride), args.Error(1)
}

func (m *MockRideRepository) Book(ctx context.Context, passenger *domain.Passenger) error {
	args := m.Called(ctx, passenger)
	return args.Error(0)
}

func (m *MockRideRepository) Search(ctx context.Context, filter repository.SearchFilter) ([]domain.Ride, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideRepository) ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error) {
	args := m.Called(ctx, driverID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideRepository) ListBookedByUser(ctx context.Context, userID string) ([]domain.Ride, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideRepository) ListOpen(ctx context.Context) ([]domain.Ride, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockRideRepository) ListPassengers(ctx context.Context, rideID string) ([]domain.Passenger, error) {
	args := m.Called(ctx, rideID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Passenger), args.Error(1)
}

func (m *MockRideRepository) SweepExpired(ctx context.Context, ids []string) (int64, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRideRepository) ExpireDeparted(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRideRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) GetDisplay(ctx context.Context, id string) (*domain.UserDisplay, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.UserDisplay), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) SetPassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) SetPasswordByEmail(ctx context.Context, email, passwordHash string) error {
	args := m.Called(ctx, email, passwordHash)
	return args.Error(0)
}

func (m *MockUserRepository) SetPicture(ctx context.Context, id, url string) error {
	args := m.Called(ctx, id, url)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockDriverRepository struct {
	mock.Mock
}

func (m *MockDriverRepository) Create(ctx context.Context, driver *domain.Driver) error {
	args := m.Called(ctx, driver)
	return args.Error(0)
}

func (m *MockDriverRepository) GetByID(ctx context.Context, id string) (*domain.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

func (m *MockDriverRepository) GetByUserID(ctx context.Context, userID string) (*domain.Driver, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Driver), args.Error(1)
}

func (m *MockDriverRepository) IsVerified(ctx context.Context, userID string) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDriverRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	args := m.Called(ctx, id, verified)
	return args.Error(0)
}

type MockCarRepository struct {
	mock.Mock
}

func (m *MockCarRepository) Create(ctx context.Context, car *domain.Car) error {
	args := m.Called(ctx, car)
	return args.Error(0)
}

func (m *MockCarRepository) GetByID(ctx context.Context, id string) (*domain.Car, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Car), args.Error(1)
}

func (m *MockCarRepository) ListByUser(ctx context.Context, userID string) ([]domain.Car, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Car), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetOpenRides(ctx context.Context) ([]domain.Ride, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Ride), args.Error(1)
}

func (m *MockCache) SetOpenRides(ctx context.Context, rides []domain.Ride) error {
	args := m.Called(ctx, rides)
	return args.Error(0)
}

func (m *MockCache) InvalidateOpenRides(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockCache) AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, rideID, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *MockCache) ReleaseRideLock(ctx context.Context, rideID string) error {
	args := m.Called(ctx, rideID)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

func newTestService(rideRepo *MockRideRepository, userRepo *MockUserRepository, driverRepo *MockDriverRepository, carRepo *MockCarRepository, cache *MockCache, opts ...RideServiceOption) *RideService {
	var c Cache
	if cache != nil {
		c = cache
	}
	return NewRideService(rideRepo, userRepo, driverRepo, carRepo, c, nil, slog.Default(), time.Minute, opts...)
}

func activeUser(id string) *domain.User {
	return &domain.User{ID: id, Name: "Ada", Email: "ada@example.com", IsActive: true}
}

func TestRideService_Create_Success(t *testing.T) {
	rideRepo := &MockRideRepository{}
	userRepo := &MockUserRepository{}
	driverRepo := &MockDriverRepository{}
	carRepo := &MockCarRepository{}

	service := newTestService(rideRepo, userRepo, driverRepo, carRepo, nil)

	ctx := context.Background()
	input := CreateRideInput{
		Date:            "2026-10-01",
		Time:            "08:30:00",
		FromLocation:    "  Lagos ",
		ToLocation:      "IBADAN",
		PickupLocation:  "Ojota Park",
		DropoffLocation: "Iwo Road",
		Gender:          "any",
		Seats:           3,
		SeatPrice:       1500,
		CarID:           "car-1",
	}

	userRepo.On("GetByID", ctx, "user-1").Return(activeUser("user-1"), nil).Once()
	rideRepo.On("Create", ctx, mock.AnythingOfType("*domain.Ride")).Return(nil).Once()

	ride, err := service.Create(ctx, input, "user-1")

	assert.NoError(t, err)
	assert.NotNil(t, ride)
	assert.Equal(t, "lagos", ride.FromLocation)
	assert.Equal(t, "ibadan", ride.ToLocation)
	assert.Equal(t, "ojota park", ride.PickupLocation)
	assert.Equal(t, "iwo road", ride.DropoffLocation)
	assert.Equal(t, 3, ride.Seats)
	assert.Equal(t, 3, ride.AvailableSeats)
	assert.Equal(t, "user-1", ride.DriverID)
	assert.Equal(t, 2026, ride.DepartureAt.Year())

	userRepo.AssertExpectations(t)
	rideRepo.AssertExpectations(t)
	driverRepo.AssertNotCalled(t, "IsVerified")
}

func TestRideService_Create_ValidationErrors(t *testing.T) {
	service := newTestService(&MockRideRepository{}, &MockUserRepository{}, &MockDriverRepository{}, &MockCarRepository{}, nil)
	ctx := context.Background()

	testCases := []struct {
		name        string
		input       CreateRideInput
		expectedErr string
	}{
		{
			name:        "Zero seats",
			input:       CreateRideInput{Seats: 0, SeatPrice: 100},
			expectedErr: "seats must be positive",
		},
		{
			name:        "Negative seats",
			input:       CreateRideInput{Seats: -2, SeatPrice: 100},
			expectedErr: "seats must be positive",
		},
		{
			name:        "Negative price",
			input:       CreateRideInput{Seats: 2, SeatPrice: -1},
			expectedErr: "seat price must not be negative",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ride, err := service.Create(ctx, tc.input, "user-1")
			assert.Error(t, err)
			assert.Nil(t, ride)
			assert.Contains(t, err.Error(), tc.expectedErr)
		})
	}
}

func TestRideService_Create_BadDeparture(t *testing.T) {
	rideRepo := &MockRideRepository{}
	userRepo := &MockUserRepository{}

	service := newTestService(rideRepo, userRepo, &MockDriverRepository{}, &MockCarRepository{}, nil)
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "user-1").Return(activeUser("user-1"), nil).Once()

	ride, err := service.Create(ctx, CreateRideInput{
		Date:      "01/10/2026",
		Time:      "08:30:00",
		Seats:     2,
		SeatPrice: 100,
	}, "user-1")

	assert.Error(t, err)
	assert.Nil(t, ride)
	assert.Contains(t, err.Error(), "invalid departure")
	rideRepo.AssertNotCalled(t, "Create")
}

func TestRideService_Create_InactiveUser(t *testing.T) {
	rideRepo := &MockRideRepository{}
	userRepo := &MockUserRepository{}

	service := newTestService(rideRepo, userRepo, &MockDriverRepository{}, &MockCarRepository{}, nil)
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "user-1").Return(&domain.User{ID: "user-1", IsActive: false}, nil).Once()

	ride, err := service.Create(ctx, CreateRideInput{Date: "2026-10-01", Time: "08:30:00", Seats: 2, SeatPrice: 100}, "user-1")

	assert.ErrorIs(t, err, domain.ErrInactiveUser)
	assert.Nil(t, ride)
	rideRepo.AssertNotCalled(t, "Create")
}

func TestRideService_Create_UnverifiedDriverGate(t *testing.T) {
	rideRepo := &MockRideRepository{}
	userRepo := &MockUserRepository{}
	driverRepo := &MockDriverRepository{}

	service := newTestService(rideRepo, userRepo, driverRepo, &MockCarRepository{}, nil, WithVerifiedDriverGate(true))
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "user-1").Return(activeUser("user-1"), nil).Once()
	driverRepo.On("IsVerified", ctx, "user-1").Return(false, nil).Once()

	ride, err := service.Create(ctx, CreateRideInput{Date: "2026-10-01", Time: "08:30:00", Seats: 2, SeatPrice: 100}, "user-1")

	assert.ErrorIs(t, err, domain.ErrNotVerified)
	assert.Nil(t, ride)
	rideRepo.AssertNotCalled(t, "Create")
	driverRepo.AssertExpectations(t)
}

func TestRideService_Create_VerifiedDriverPassesGate(t *testing.T) {
	rideRepo := &MockRideRepository{}
	userRepo := &MockUserRepository{}
	driverRepo := &MockDriverRepository{}

	service := newTestService(rideRepo, userRepo, driverRepo, &MockCarRepository{}, nil, WithVerifiedDriverGate(true))
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "user-1").Return(activeUser("user-1"), nil).Once()
	driverRepo.On("IsVerified", ctx, "user-1").Return(true, nil).Once()
	rideRepo.On("Create", ctx, mock.AnythingOfType("*domain.Ride")).Return(nil).Once()

	ride, err := service.Create(ctx, CreateRideInput{Date: "2026-10-01", Time: "08:30:00", Seats: 2, SeatPrice: 100}, "user-1")

	assert.NoError(t, err)
	assert.NotNil(t, ride)
	rideRepo.AssertExpectations(t)
}

func TestRideService_Book_Success(t *testing.T) {
	rideRepo := &MockRideRepository{}
	userRepo := &MockUserRepository{}
	cache := &MockCache{}

	service := newTestService(rideRepo, userRepo, &MockDriverRepository{}, &MockCarRepository{}, cache)
	ctx := context.Background()

	ride := &domain.Ride{ID: "ride-1", SeatPrice: 500, AvailableSeats: 3, FromLocation: "lagos", ToLocation: "ibadan"}

	userRepo.On("GetByID", ctx, "user-2").Return(activeUser("user-2"), nil).Once()
	rideRepo.On("GetByID", ctx, "ride-1").Return(ride, nil).Once()
	cache.On("AcquireRideLock", ctx, "ride-1", time.Minute).Return(true, nil).Once()
	cache.On("ReleaseRideLock", ctx, "ride-1").Return(nil).Once()
	rideRepo.On("Book", ctx, mock.AnythingOfType("*domain.Passenger")).Return(nil).Once()
	cache.On("InvalidateOpenRides", ctx).Return(nil).Once()

	passenger, err := service.Book(ctx, "ride-1", BookRideInput{NoSeats: 2}, "user-2")

	assert.NoError(t, err)
	assert.NotNil(t, passenger)
	assert.Equal(t, "ride-1", passenger.RideID)
	assert.Equal(t, "user-2", passenger.UserID)
	assert.Equal(t, 2, passenger.NoSeats)
	assert.Equal(t, float64(1000), passenger.Price)

	rideRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRideService_Book_NoSeatsLeft(t *testing.T) {
	rideRepo := &MockRideRepository{}
	userRepo := &MockUserRepository{}

	service := newTestService(rideRepo, userRepo, &MockDriverRepository{}, &MockCarRepository{}, nil)
	ctx := context.Background()

	ride := &domain.Ride{ID: "ride-1", SeatPrice: 500, AvailableSeats: 1}

	userRepo.On("GetByID", ctx, "user-2").Return(activeUser("user-2"), nil).Once()
	rideRepo.On("GetByID", ctx, "ride-1").Return(ride, nil).Once()
	rideRepo.On("Book", ctx, mock.AnythingOfType("*domain.Passenger")).Return(domain.ErrNoSeats).Once()

	passenger, err := service.Book(ctx, "ride-1", BookRideInput{NoSeats: 2}, "user-2")

	assert.ErrorIs(t, err, domain.ErrNoSeats)
	assert.Nil(t, passenger)
	rideRepo.AssertExpectations(t)
}

func TestRideService_Book_ExpiredRide(t *testing.T) {
	rideRepo := &MockRideRepository{}
	userRepo := &MockUserRepository{}

	service := newTestService(rideRepo, userRepo, &MockDriverRepository{}, &MockCarRepository{}, nil)
	ctx := context.Background()

	userRepo.On("GetByID", ctx, "user-2").Return(activeUser("user-2"), nil).Once()
	rideRepo.On("GetByID", ctx, "ride-1").Return(&domain.Ride{ID: "ride-1", Expired: true}, nil).Once()

	passenger, err := service.Book(ctx, "ride-1", BookRideInput{NoSeats: 1}, "user-2")

	assert.ErrorIs(t, err, domain.ErrRideExpired)
	assert.Nil(t, passenger)
	rideRepo.AssertNotCalled(t, "Book")
}

func TestRideService_Book_ValidationError(t *testing.T) {
	service := newTestService(&MockRideRepository{}, &MockUserRepository{}, &MockDriverRepository{}, &MockCarRepository{}, nil)

	passenger, err := service.Book(context.Background(), "ride-1", BookRideInput{NoSeats: 0}, "user-2")

	assert.Error(t, err)
	assert.Nil(t, passenger)
	assert.Contains(t, err.Error(), "no_seats must be positive")
}

func TestRideService_Book_LockUnavailableStillBooks(t *testing.T) {
	rideRepo := &MockRideRepository{}
	userRepo := &MockUserRepository{}
	cache := &MockCache{}

	service := newTestService(rideRepo, userRepo, &MockDriverRepository{}, &MockCarRepository{}, cache)
	ctx := context.Background()

	ride := &domain.Ride{ID: "ride-1", SeatPrice: 500, AvailableSeats: 3}

	userRepo.On("GetByID", ctx, "user-2").Return(activeUser("user-2"), nil).Once()
	rideRepo.On("GetByID", ctx, "ride-1").Return(ride, nil).Once()
	cache.On("AcquireRideLock", ctx, "ride-1", time.Minute).Return(false, nil).Once()
	rideRepo.On("Book", ctx, mock.AnythingOfType("*domain.Passenger")).Return(nil).Once()
	cache.On("InvalidateOpenRides", ctx).Return(nil).Once()

	passenger, err := service.Book(ctx, "ride-1", BookRideInput{NoSeats: 1}, "user-2")

	assert.NoError(t, err)
	assert.NotNil(t, passenger)
	cache.AssertNotCalled(t, "ReleaseRideLock")
}

func TestRideService_Search_FiltersDepartedRides(t *testing.T) {
	rideRepo := &MockRideRepository{}
	userRepo := &MockUserRepository{}
	carRepo := &MockCarRepository{}

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	service := newTestService(rideRepo, userRepo, &MockDriverRepository{}, carRepo, nil, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	upcoming := domain.Ride{ID: "ride-up", DepartureAt: now.Add(2 * time.Hour), CarID: "car-1", DriverID: "driver-1"}
	departed := domain.Ride{ID: "ride-gone", DepartureAt: now.Add(-2 * time.Hour)}

	rideRepo.On("Search", ctx, repository.SearchFilter{
		FromLocation:  "lagos",
		ToLocation:    "ibadan",
		MinSeats:      1,
		ExcludeUserID: "user-2",
	}).Return([]domain.Ride{upcoming, departed}, nil).Once()
	rideRepo.On("SweepExpired", mock.Anything, []string{"ride-gone"}).Return(int64(1), nil).Maybe()
	carRepo.On("GetByID", ctx, "car-1").Return(&domain.Car{ID: "car-1", Brand: "Toyota Corolla", Color: "grey", CType: "sedan"}, nil).Once()
	userRepo.On("GetDisplay", ctx, "driver-1").Return(&domain.UserDisplay{Name: "Ada", Phone: "0800"}, nil).Once()

	results, err := service.Search(ctx, SearchInput{FromLocation: " Lagos", ToLocation: "Ibadan ", MinSeats: 1}, "user-2")

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "ride-up", results[0].ID)
	assert.Equal(t, "Toyota Corolla", results[0].CarModel)
	assert.Equal(t, "Ada", results[0].DriverName)

	rideRepo.AssertExpectations(t)
}

func TestRideService_Search_SweepsDepartedInBackground(t *testing.T) {
	rideRepo := &MockRideRepository{}

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	service := newTestService(rideRepo, &MockUserRepository{}, &MockDriverRepository{}, &MockCarRepository{}, nil, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	departedA := domain.Ride{ID: "ride-gone-a", DepartureAt: now.Add(-time.Hour)}
	departedB := domain.Ride{ID: "ride-gone-b", DepartureAt: now.Add(-time.Minute)}

	rideRepo.On("Search", ctx, repository.SearchFilter{
		FromLocation:  "lagos",
		ToLocation:    "ibadan",
		MinSeats:      1,
		ExcludeUserID: "user-2",
	}).Return([]domain.Ride{departedA, departedB}, nil).Once()

	swept := make(chan []string, 1)
	rideRepo.On("SweepExpired", mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		swept <- args.Get(1).([]string)
	}).Return(int64(2), nil).Once()

	results, err := service.Search(ctx, SearchInput{FromLocation: "Lagos", ToLocation: "Ibadan", MinSeats: 1}, "user-2")

	assert.NoError(t, err)
	assert.Empty(t, results)

	select {
	case ids := <-swept:
		assert.ElementsMatch(t, []string{"ride-gone-a", "ride-gone-b"}, ids)
	case <-time.After(time.Second):
		t.Fatal("background sweep did not run")
	}

	rideRepo.AssertExpectations(t)
}

func TestRideService_Published_SweepFailureDoesNotFailRequest(t *testing.T) {
	rideRepo := &MockRideRepository{}

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	service := newTestService(rideRepo, &MockUserRepository{}, &MockDriverRepository{}, &MockCarRepository{}, nil, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	owned := []domain.Ride{
		{ID: "ride-open", DepartureAt: now.Add(time.Hour)},
		{ID: "ride-departed", DepartureAt: now.Add(-time.Hour)},
	}

	rideRepo.On("ListByDriver", ctx, "user-1").Return(owned, nil).Once()

	sweepDone := make(chan struct{})
	rideRepo.On("SweepExpired", mock.Anything, []string{"ride-departed"}).Run(func(mock.Arguments) {
		close(sweepDone)
	}).Return(int64(0), errors.New("sweep failed")).Once()

	published, err := service.Published(ctx, "user-1")

	assert.NoError(t, err)
	assert.Len(t, published, 2)

	select {
	case <-sweepDone:
	case <-time.After(time.Second):
		t.Fatal("background sweep did not run")
	}

	rideRepo.AssertExpectations(t)
}

func TestRideService_Search_MissingCarKeepsRide(t *testing.T) {
	rideRepo := &MockRideRepository{}
	userRepo := &MockUserRepository{}
	carRepo := &MockCarRepository{}

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	service := newTestService(rideRepo, userRepo, &MockDriverRepository{}, carRepo, nil, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	ride := domain.Ride{ID: "ride-up", DepartureAt: now.Add(time.Hour), CarID: "car-gone", DriverID: "driver-1"}

	rideRepo.On("Search", ctx, mock.AnythingOfType("repository.SearchFilter")).Return([]domain.Ride{ride}, nil).Once()
	carRepo.On("GetByID", ctx, "car-gone").Return(nil, domain.ErrNotFound).Once()
	userRepo.On("GetDisplay", ctx, "driver-1").Return(&domain.UserDisplay{Name: "Ada"}, nil).Once()

	results, err := service.Search(ctx, SearchInput{FromLocation: "lagos", ToLocation: "ibadan"}, "user-2")

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Empty(t, results[0].CarModel)
	assert.Equal(t, "Ada", results[0].DriverName)
}

func TestRideService_Published_SkipsExpiredFlags(t *testing.T) {
	rideRepo := &MockRideRepository{}

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	service := newTestService(rideRepo, &MockUserRepository{}, &MockDriverRepository{}, &MockCarRepository{}, nil, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	owned := []domain.Ride{
		{ID: "ride-open", DepartureAt: now.Add(time.Hour)},
		{ID: "ride-flagged", DepartureAt: now.Add(-time.Hour), Expired: true},
		{ID: "ride-departed", DepartureAt: now.Add(-time.Hour)},
	}

	rideRepo.On("ListByDriver", ctx, "user-1").Return(owned, nil).Once()
	rideRepo.On("SweepExpired", mock.Anything, []string{"ride-departed"}).Return(int64(1), nil).Maybe()

	published, err := service.Published(ctx, "user-1")

	assert.NoError(t, err)
	assert.Len(t, published, 2)
	assert.Equal(t, "ride-open", published[0].ID)
	assert.Equal(t, "ride-departed", published[1].ID)
}

func TestRideService_Ordered_OwnershipMismatch(t *testing.T) {
	service := newTestService(&MockRideRepository{}, &MockUserRepository{}, &MockDriverRepository{}, &MockCarRepository{}, nil)

	results, err := service.Ordered(context.Background(), "user-other", "user-1")

	assert.ErrorIs(t, err, domain.ErrOwnershipMismatch)
	assert.Nil(t, results)
}

func TestRideService_Ordered_Success(t *testing.T) {
	rideRepo := &MockRideRepository{}
	userRepo := &MockUserRepository{}
	carRepo := &MockCarRepository{}

	service := newTestService(rideRepo, userRepo, &MockDriverRepository{}, carRepo, nil)
	ctx := context.Background()

	booked := []domain.Ride{{ID: "ride-1", CarID: "car-1", DriverID: "driver-1"}}

	rideRepo.On("ListBookedByUser", ctx, "user-1").Return(booked, nil).Once()
	carRepo.On("GetByID", ctx, "car-1").Return(&domain.Car{ID: "car-1", Brand: "Honda"}, nil).Once()
	userRepo.On("GetDisplay", ctx, "driver-1").Return(&domain.UserDisplay{Name: "Bisi", Phone: "0700"}, nil).Once()

	results, err := service.Ordered(ctx, "user-1", "user-1")

	assert.NoError(t, err)
	assert.Len(t, results, 1)
	assert.Equal(t, "Honda", results[0].CarModel)
	assert.Equal(t, "Bisi", results[0].DriverName)
}

func TestRideService_ListOpen_CacheHit(t *testing.T) {
	rideRepo := &MockRideRepository{}
	cache := &MockCache{}

	service := newTestService(rideRepo, &MockUserRepository{}, &MockDriverRepository{}, &MockCarRepository{}, cache)
	ctx := context.Background()

	cached := []domain.Ride{{ID: "ride-1"}}
	cache.On("GetOpenRides", ctx).Return(cached, nil).Once()

	rides, err := service.ListOpen(ctx)

	assert.NoError(t, err)
	assert.Equal(t, cached, rides)
	rideRepo.AssertNotCalled(t, "ListOpen")
}

func TestRideService_ListOpen_CacheMiss(t *testing.T) {
	rideRepo := &MockRideRepository{}
	cache := &MockCache{}

	service := newTestService(rideRepo, &MockUserRepository{}, &MockDriverRepository{}, &MockCarRepository{}, cache)
	ctx := context.Background()

	stored := []domain.Ride{{ID: "ride-1"}, {ID: "ride-2"}}
	cache.On("GetOpenRides", ctx).Return(nil, errors.New("cache miss")).Once()
	rideRepo.On("ListOpen", ctx).Return(stored, nil).Once()
	cache.On("SetOpenRides", ctx, stored).Return(nil).Once()

	rides, err := service.ListOpen(ctx)

	assert.NoError(t, err)
	assert.Equal(t, stored, rides)
	cache.AssertExpectations(t)
}

func TestRideService_ExpireDeparted(t *testing.T) {
	rideRepo := &MockRideRepository{}
	cache := &MockCache{}

	now := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	service := newTestService(rideRepo, &MockUserRepository{}, &MockDriverRepository{}, &MockCarRepository{}, cache, WithClock(func() time.Time { return now }))
	ctx := context.Background()

	rideRepo.On("ExpireDeparted", ctx, now).Return(int64(3), nil).Once()
	cache.On("InvalidateOpenRides", ctx).Return(nil).Once()

	count, err := service.ExpireDeparted(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	rideRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRideService_ExpireDeparted_NothingToDo(t *testing.T) {
	rideRepo := &MockRideRepository{}
	cache := &MockCache{}

	service := newTestService(rideRepo, &MockUserRepository{}, &MockDriverRepository{}, &MockCarRepository{}, cache)
	ctx := context.Background()

	rideRepo.On("ExpireDeparted", ctx, mock.AnythingOfType("time.Time")).Return(int64(0), nil).Once()

	count, err := service.ExpireDeparted(ctx)

	assert.NoError(t, err)
	assert.Equal(t, int64(0), count)
	cache.AssertNotCalled(t, "InvalidateOpenRides")
}

func TestRideService_Delete(t *testing.T) {
	rideRepo := &MockRideRepository{}
	cache := &MockCache{}

	service := newTestService(rideRepo, &MockUserRepository{}, &MockDriverRepository{}, &MockCarRepository{}, cache)
	ctx := context.Background()

	rideRepo.On("Delete", ctx, "ride-1").Return(nil).Once()
	cache.On("InvalidateOpenRides", ctx).Return(nil).Once()

	err := service.Delete(ctx, "ride-1")

	assert.NoError(t, err)
	rideRepo.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestParseDeparture(t *testing.T) {
	departure, err := ParseDeparture("2026-10-01", "08:30:00")
	assert.NoError(t, err)
	assert.Equal(t, 2026, departure.Year())
	assert.Equal(t, time.October, departure.Month())
	assert.Equal(t, 8, departure.Hour())
	assert.Equal(t, 30, departure.Minute())

	_, err = ParseDeparture("2026-10-01", "8am")
	assert.Error(t, err)
}
