package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wenyfour/rideshare/internal/domain"
)

// SearchFilter narrows the ride search. Locations must already be in
// canonical form. ExcludeUserID removes rides owned by that user and
// rides the user has already booked.
type SearchFilter struct {
	FromLocation  string
	ToLocation    string
	MinSeats      int
	ExcludeUserID string
}

type RideRepository interface {
	Create(ctx context.Context, ride *domain.Ride) error
	GetByID(ctx context.Context, id string) (*domain.Ride, error)
	Book(ctx context.Context, passenger *domain.Passenger) error
	Search(ctx context.Context, filter SearchFilter) ([]domain.Ride, error)
	ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error)
	ListBookedByUser(ctx context.Context, userID string) ([]domain.Ride, error)
	ListOpen(ctx context.Context) ([]domain.Ride, error)
	ListPassengers(ctx context.Context, rideID string) ([]domain.Passenger, error)
	SweepExpired(ctx context.Context, ids []string) (int64, error)
	ExpireDeparted(ctx context.Context, now time.Time) (int64, error)
	Delete(ctx context.Context, id string) error
}

type PGRideRepository struct {
	db *pgxpool.Pool
}

func NewRideRepository(db *pgxpool.Pool) RideRepository {
	return &PGRideRepository{db: db}
}

const rideColumns = `id, departure_at, from_location, to_location, pickup_location, dropoff_location, gender, seats, seat_price, car_id, driver_id, expired, available_seats, created_at, updated_at`

func (r *PGRideRepository) Create(ctx context.Context, ride *domain.Ride) error {
	return r.db.QueryRow(ctx, `INSERT INTO rides (id, departure_at, from_location, to_location, pickup_location, dropoff_location, gender, seats, seat_price, car_id, driver_id, expired, available_seats)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, false, $8)
		RETURNING created_at, updated_at`,
		ride.ID, ride.DepartureAt, ride.FromLocation, ride.ToLocation, ride.PickupLocation, ride.DropoffLocation,
		ride.Gender, ride.Seats, ride.SeatPrice, ride.CarID, ride.DriverID).
		Scan(&ride.CreatedAt, &ride.UpdatedAt)
}

func (r *PGRideRepository) GetByID(ctx context.Context, id string) (*domain.Ride, error) {
	row := r.db.QueryRow(ctx, `SELECT `+rideColumns+` FROM rides WHERE id=$1`, id)
	ride, err := scanRide(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return ride, nil
}

// Book decrements the ride's seat counter and records the passenger in
// one transaction. The decrement is conditional on the current counter,
// so two concurrent bookings can never drive available_seats negative:
// the loser's UPDATE matches no row and the booking is rejected.
func (r *PGRideRepository) Book(ctx context.Context, passenger *domain.Passenger) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	var available int
	err = tx.QueryRow(ctx, `UPDATE rides SET available_seats = available_seats - $2, updated_at = now()
		WHERE id=$1 AND NOT expired AND available_seats >= $2
		RETURNING available_seats`, passenger.RideID, passenger.NoSeats).Scan(&available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.classifyBookFailure(ctx, passenger.RideID)
		}
		return err
	}

	if err := tx.QueryRow(ctx, `INSERT INTO passengers (id, ride_id, user_id, no_seats, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		passenger.ID, passenger.RideID, passenger.UserID, passenger.NoSeats, passenger.Price).
		Scan(&passenger.CreatedAt); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// classifyBookFailure tells an unknown ride, an expired ride, and a
// seat shortage apart after the conditional update matched nothing.
func (r *PGRideRepository) classifyBookFailure(ctx context.Context, rideID string) error {
	var expired bool
	var available int
	err := r.db.QueryRow(ctx, `SELECT expired, available_seats FROM rides WHERE id=$1`, rideID).Scan(&expired, &available)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrNotFound
		}
		return err
	}
	if expired {
		return domain.ErrRideExpired
	}
	return domain.ErrNoSeats
}

// Search returns non-expired rides matching both locations with enough
// seats, excluding rides the user owns or has already booked. Departure
// filtering is left to the caller so it can collect past-dated rides
// for the expiry sweep.
func (r *PGRideRepository) Search(ctx context.Context, filter SearchFilter) ([]domain.Ride, error) {
	rows, err := r.db.Query(ctx, `SELECT `+rideColumns+` FROM rides
		WHERE from_location=$1 AND to_location=$2 AND NOT expired
		  AND available_seats >= $3
		  AND driver_id <> $4
		  AND NOT EXISTS (SELECT 1 FROM passengers p WHERE p.ride_id = rides.id AND p.user_id = $4)
		ORDER BY departure_at`,
		filter.FromLocation, filter.ToLocation, filter.MinSeats, filter.ExcludeUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

func (r *PGRideRepository) ListByDriver(ctx context.Context, driverID string) ([]domain.Ride, error) {
	rows, err := r.db.Query(ctx, `SELECT `+rideColumns+` FROM rides WHERE driver_id=$1 ORDER BY departure_at`, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

func (r *PGRideRepository) ListBookedByUser(ctx context.Context, userID string) ([]domain.Ride, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT `+rideColumns+` FROM rides
		JOIN passengers p ON p.ride_id = rides.id
		WHERE p.user_id=$1
		ORDER BY departure_at`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

func (r *PGRideRepository) ListOpen(ctx context.Context) ([]domain.Ride, error) {
	rows, err := r.db.Query(ctx, `SELECT `+rideColumns+` FROM rides WHERE NOT expired ORDER BY departure_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectRides(rows)
}

func (r *PGRideRepository) ListPassengers(ctx context.Context, rideID string) ([]domain.Passenger, error) {
	rows, err := r.db.Query(ctx, `SELECT id, ride_id, user_id, no_seats, price, created_at FROM passengers WHERE ride_id=$1 ORDER BY created_at`, rideID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	passengers := make([]domain.Passenger, 0)
	for rows.Next() {
		var p domain.Passenger
		if err := rows.Scan(&p.ID, &p.RideID, &p.UserID, &p.NoSeats, &p.Price, &p.CreatedAt); err != nil {
			return nil, err
		}
		passengers = append(passengers, p)
	}
	return passengers, rows.Err()
}

// SweepExpired flips the given rides to their terminal expired state.
// Already-expired rides are skipped, so running the same set twice
// modifies zero rows the second time.
func (r *PGRideRepository) SweepExpired(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	res, err := r.db.Exec(ctx, `UPDATE rides SET expired = true, updated_at = now() WHERE id = ANY($1) AND NOT expired`, ids)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *PGRideRepository) ExpireDeparted(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.Exec(ctx, `UPDATE rides SET expired = true, updated_at = now() WHERE NOT expired AND departure_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}

func (r *PGRideRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.Exec(ctx, `DELETE FROM rides WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanRide(row pgx.Row) (*domain.Ride, error) {
	var ride domain.Ride
	if err := row.Scan(&ride.ID, &ride.DepartureAt, &ride.FromLocation, &ride.ToLocation, &ride.PickupLocation,
		&ride.DropoffLocation, &ride.Gender, &ride.Seats, &ride.SeatPrice, &ride.CarID, &ride.DriverID,
		&ride.Expired, &ride.AvailableSeats, &ride.CreatedAt, &ride.UpdatedAt); err != nil {
		return nil, err
	}
	return &ride, nil
}

func collectRides(rows pgx.Rows) ([]domain.Ride, error) {
	rides := make([]domain.Ride, 0)
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, err
		}
		rides = append(rides, *ride)
	}
	return rides, rows.Err()
}

var _ RideRepository = (*PGRideRepository)(nil)
