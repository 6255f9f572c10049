package rides

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wenyfour/rideshare/internal/domain"
	"github.com/wenyfour/rideshare/internal/kafka"
	"github.com/wenyfour/rideshare/internal/observability"
	"github.com/wenyfour/rideshare/internal/repository"
)

const (
	dateLayout = "2006-01-02"
	timeLayout = "15:04:05"
)

type RideUseCase interface {
	Create(ctx context.Context, input CreateRideInput, userID string) (*domain.Ride, error)
	Book(ctx context.Context, rideID string, input BookRideInput, userID string) (*domain.Passenger, error)
	Get(ctx context.Context, rideID string) (*domain.Ride, []domain.Passenger, error)
	Search(ctx context.Context, input SearchInput, userID string) ([]domain.RideSummary, error)
	Published(ctx context.Context, userID string) ([]domain.Ride, error)
	Ordered(ctx context.Context, targetUserID, userID string) ([]domain.RideSummary, error)
	ListOpen(ctx context.Context) ([]domain.Ride, error)
	Delete(ctx context.Context, rideID string) error
	ExpireDeparted(ctx context.Context) (int64, error)
}

type Cache interface {
	GetOpenRides(ctx context.Context) ([]domain.Ride, error)
	SetOpenRides(ctx context.Context, rides []domain.Ride) error
	InvalidateOpenRides(ctx context.Context) error
	AcquireRideLock(ctx context.Context, rideID string, ttl time.Duration) (bool, error)
	ReleaseRideLock(ctx context.Context, rideID string) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type CreateRideInput struct {
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
}

type BookRideInput struct {
	NoSeats int `json:"no_seats"`
}

type SearchInput struct {
	FromLocation string
	ToLocation   string
	MinSeats     int
}

type RideService struct {
	rides              repository.RideRepository
	users              repository.UserRepository
	drivers            repository.DriverRepository
	cars               repository.CarRepository
	cache              Cache
	producer           Producer
	logger             *slog.Logger
	notificationsTopic string
	requireVerified    bool
	holdTTL            time.Duration
	sweepTimeout       time.Duration
	now                func() time.Time
}

type RideServiceOption func(*RideService)

func WithNotificationsTopic(topic string) RideServiceOption {
	return func(s *RideService) {
		s.notificationsTopic = topic
	}
}

// WithVerifiedDriverGate toggles the driver-verification check on
// ride creation.
func WithVerifiedDriverGate(required bool) RideServiceOption {
	return func(s *RideService) {
		s.requireVerified = required
	}
}

func WithClock(now func() time.Time) RideServiceOption {
	return func(s *RideService) {
		s.now = now
	}
}

func NewRideService(
	rides repository.RideRepository,
	users repository.UserRepository,
	drivers repository.DriverRepository,
	cars repository.CarRepository,
	cache Cache,
	producer Producer,
	logger *slog.Logger,
	holdTTL time.Duration,
	opts ...RideServiceOption,
) *RideService {
	service := &RideService{
		rides:        rides,
		users:        users,
		drivers:      drivers,
		cars:         cars,
		cache:        cache,
		producer:     producer,
		logger:       logger,
		holdTTL:      holdTTL,
		sweepTimeout: 30 * time.Second,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *RideService) Create(ctx context.Context, input CreateRideInput, userID string) (*domain.Ride, error) {
	if input.Seats <= 0 {
		return nil, fmt.Errorf("seats must be positive")
	}
	if input.SeatPrice < 0 {
		return nil, fmt.Errorf("seat price must not be negative")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}

	if s.requireVerified {
		verified, err := s.drivers.IsVerified(ctx, userID)
		if err != nil {
			return nil, err
		}
		if !verified {
			return nil, domain.ErrNotVerified
		}
	}

	departureAt, err := ParseDeparture(input.Date, input.Time)
	if err != nil {
		return nil, err
	}

	ride := &domain.Ride{
		ID:              uuid.NewString(),
		DepartureAt:     departureAt,
		FromLocation:    domain.NormalizeLocation(input.FromLocation),
		ToLocation:      domain.NormalizeLocation(input.ToLocation),
		PickupLocation:  domain.NormalizeLocation(input.PickupLocation),
		DropoffLocation: domain.NormalizeLocation(input.DropoffLocation),
		Gender:          input.Gender,
		Seats:           input.Seats,
		SeatPrice:       input.SeatPrice,
		CarID:           input.CarID,
		DriverID:        userID,
		AvailableSeats:  input.Seats,
	}

	if err := s.rides.Create(ctx, ride); err != nil {
		return nil, err
	}

	s.invalidateListing(ctx)
	s.notify(ctx, kafka.NotificationEvent{
		Kind:      kafka.KindRideCreated,
		Recipient: user.Email,
		Payload: map[string]string{
			"from":      ride.FromLocation,
			"to":        ride.ToLocation,
			"departure": ride.DepartureAt.Format(time.RFC3339),
		},
		At: s.now(),
	}, ride.ID)
	return ride, nil
}

func (s *RideService) Book(ctx context.Context, rideID string, input BookRideInput, userID string) (*domain.Passenger, error) {
	if input.NoSeats <= 0 {
		return nil, fmt.Errorf("no_seats must be positive")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, domain.ErrInactiveUser
	}

	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if ride.Expired {
		return nil, domain.ErrRideExpired
	}

	// The ride lock only smooths out contention; the conditional
	// decrement in the store is what keeps the seat count correct.
	if s.cache != nil {
		if ok, err := s.cache.AcquireRideLock(ctx, rideID, s.holdTTL); err == nil && ok {
			defer func() {
				_ = s.cache.ReleaseRideLock(ctx, rideID)
			}()
		}
	}

	passenger := &domain.Passenger{
		ID:      uuid.NewString(),
		RideID:  rideID,
		UserID:  userID,
		NoSeats: input.NoSeats,
		Price:   ride.SeatPrice * float64(input.NoSeats),
	}

	if err := s.rides.Book(ctx, passenger); err != nil {
		if errors.Is(err, domain.ErrNoSeats) {
			observability.BookingConflictsTotal.Inc()
		}
		return nil, err
	}

	observability.BookingsTotal.Inc()
	s.invalidateListing(ctx)
	s.notify(ctx, kafka.NotificationEvent{
		Kind:      kafka.KindRideBooked,
		Recipient: user.Email,
		Payload: map[string]string{
			"from":  ride.FromLocation,
			"to":    ride.ToLocation,
			"seats": fmt.Sprintf("%d", passenger.NoSeats),
			"price": fmt.Sprintf("%.2f", passenger.Price),
		},
		At: s.now(),
	}, rideID)
	return passenger, nil
}

func (s *RideService) Get(ctx context.Context, rideID string) (*domain.Ride, []domain.Passenger, error) {
	ride, err := s.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, nil, err
	}
	passengers, err := s.rides.ListPassengers(ctx, rideID)
	if err != nil {
		return nil, nil, err
	}
	return ride, passengers, nil
}

// Search returns upcoming rides matching the route. Past-dated rides
// found along the way are handed to the expiry sweeper in the
// background; the response never waits on that.
func (s *RideService) Search(ctx context.Context, input SearchInput, userID string) ([]domain.RideSummary, error) {
	matches, err := s.rides.Search(ctx, repository.SearchFilter{
		FromLocation:  domain.NormalizeLocation(input.FromLocation),
		ToLocation:    domain.NormalizeLocation(input.ToLocation),
		MinSeats:      input.MinSeats,
		ExcludeUserID: userID,
	})
	if err != nil {
		return nil, err
	}

	now := s.now()
	upcoming := make([]domain.Ride, 0, len(matches))
	var departed []string
	for _, ride := range matches {
		if ride.Departed(now) {
			departed = append(departed, ride.ID)
			continue
		}
		upcoming = append(upcoming, ride)
	}
	s.scheduleSweep(departed)

	return s.enrich(ctx, upcoming), nil
}

func (s *RideService) Published(ctx context.Context, userID string) ([]domain.Ride, error) {
	owned, err := s.rides.ListByDriver(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	published := make([]domain.Ride, 0, len(owned))
	var departed []string
	for _, ride := range owned {
		if ride.Expired {
			continue
		}
		if ride.Departed(now) {
			departed = append(departed, ride.ID)
		}
		published = append(published, ride)
	}
	s.scheduleSweep(departed)

	return published, nil
}

func (s *RideService) Ordered(ctx context.Context, targetUserID, userID string) ([]domain.RideSummary, error) {
	if targetUserID != userID {
		return nil, domain.ErrOwnershipMismatch
	}

	booked, err := s.rides.ListBookedByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.enrich(ctx, booked), nil
}

func (s *RideService) ListOpen(ctx context.Context) ([]domain.Ride, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetOpenRides(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	rides, err := s.rides.ListOpen(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetOpenRides(ctx, rides)
	}
	return rides, nil
}

func (s *RideService) Delete(ctx context.Context, rideID string) error {
	if err := s.rides.Delete(ctx, rideID); err != nil {
		return err
	}
	s.invalidateListing(ctx)
	return nil
}

// enrich attaches car and driver display fields. A ride whose car or
// driver record is missing keeps blank display fields rather than
// dropping out of the result set.
func (s *RideService) enrich(ctx context.Context, rides []domain.Ride) []domain.RideSummary {
	summaries := make([]domain.RideSummary, 0, len(rides))
	for _, ride := range rides {
		summary := domain.RideSummary{Ride: ride}
		if car, err := s.cars.GetByID(ctx, ride.CarID); err == nil {
			summary.CarModel = car.Brand
			summary.CarColor = car.Color
			summary.CarType = car.CType
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("car lookup failed", "ride_id", ride.ID, "car_id", ride.CarID, "error", err)
		}
		if display, err := s.users.GetDisplay(ctx, ride.DriverID); err == nil {
			summary.DriverName = display.Name
			summary.DriverPhone = display.Phone
		} else if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn("driver lookup failed", "ride_id", ride.ID, "driver_id", ride.DriverID, "error", err)
		}
		summaries = append(summaries, summary)
	}
	return summaries
}

// ExpireDeparted flips every open ride whose departure has passed to
// its terminal expired state. The worker runs it on a timer; requests
// that stumble over departed rides sweep opportunistically instead.
func (s *RideService) ExpireDeparted(ctx context.Context) (int64, error) {
	count, err := s.rides.ExpireDeparted(ctx, s.now())
	if err != nil {
		return 0, err
	}
	if count > 0 {
		observability.RidesExpiredTotal.Add(float64(count))
		s.invalidateListing(ctx)
	}
	return count, nil
}

// scheduleSweep flips the given rides to expired in a detached
// goroutine. Sweep failures are logged and swallowed; they never
// reach the request that discovered the candidates.
func (s *RideService) scheduleSweep(ids []string) {
	if len(ids) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.sweepTimeout)
		defer cancel()

		count, err := s.rides.SweepExpired(ctx, ids)
		if err != nil {
			s.logger.Error("expiry sweep failed", "ride_ids", ids, "error", err)
			return
		}
		if count > 0 {
			observability.RidesExpiredTotal.Add(float64(count))
			s.invalidateListing(ctx)
			s.logger.Info("expiry sweep completed", "expired", count)
		}
	}()
}

func (s *RideService) notify(ctx context.Context, event kafka.NotificationEvent, key string) {
	if s.producer == nil || s.notificationsTopic == "" {
		return
	}
	if err := s.producer.Publish(ctx, s.notificationsTopic, key, event); err != nil {
		s.logger.Warn("failed to publish notification", "kind", event.Kind, "error", err)
	}
}

func (s *RideService) invalidateListing(ctx context.Context) {
	if s.cache != nil {
		_ = s.cache.InvalidateOpenRides(ctx)
	}
}

// ParseDeparture combines the wire-format date and time fields into a
// single instant.
func ParseDeparture(date, clock string) (time.Time, error) {
	departure, err := time.ParseInLocation(dateLayout+" "+timeLayout, date+" "+clock, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid departure date/time: %w", err)
	}
	return departure, nil
}

var _ RideUseCase = (*RideService)(nil)
