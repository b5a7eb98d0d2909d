package repository

import (
	"context"
	"errors"

	"github.com/cineseat/cineseat/internal/domain"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresBookingRepository struct {
	db *pgxpool.Pool
}

func NewPostgresBookingRepository(db *pgxpool.Pool) *PostgresBookingRepository {
	return &PostgresBookingRepository{
		db: db,
	}
}

// CreateWithSeats writes the booking row and its seat-ledger rows in a single
// transaction. The show_seats primary key makes the seat grant an atomic
// conditional update: if any requested seat was taken by a concurrent
// transaction, the unique violation rolls back everything, so a booking can
// never exist without its seats or vice versa.
func (p *PostgresBookingRepository) CreateWithSeats(ctx context.Context, booking *domain.Booking) error {
	err := runInTx(ctx, p.db, func(tx pgx.Tx) error {
		query := `
			INSERT INTO bookings
				(id, user_id, show_id, seats, amount, is_paid, payment_method,
				 payment_status, gateway_order_id, gateway_payment_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			RETURNING created_at
		`

		err := tx.QueryRow(
			ctx,
			query,
			booking.ID,
			booking.UserID,
			booking.ShowID,
			booking.Seats,
			booking.Amount,
			booking.IsPaid,
			booking.PaymentMethod,
			booking.PaymentStatus,
			booking.GatewayOrderID,
			booking.GatewayPaymentID).Scan(&booking.CreatedAt)

		if err != nil {
			return err
		}

		rows := make([][]any, 0, len(booking.Seats))
		for _, label := range booking.Seats {
			rows = append(rows, []any{booking.ShowID, label, booking.UserID})
		}

		_, err = tx.CopyFrom(
			ctx,
			pgx.Identifier{"show_seats"},
			[]string{"show_id", "seat_label", "user_id"},
			pgx.CopyFromRows(rows),
		)

		return err
	})

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			switch pgErr.ConstraintName {
			case "bookings_pkey":
				return domain.ErrDuplicateBookingID
			case "show_seats_pkey":
				return domain.ErrSeatConflict
			}
		}

		return err
	}

	return nil
}

func (p *PostgresBookingRepository) GetByBookingIdAndUserId(
	ctx context.Context,
	bookingID,
	userID string) (*domain.Booking, error) {

	query := `
		SELECT id, user_id, show_id, seats, amount, is_paid, payment_method,
			payment_status, COALESCE(gateway_order_id, ''),
			COALESCE(gateway_payment_id, ''), created_at
		FROM bookings
		WHERE id = $1 AND user_id = $2
	`

	var booking domain.Booking

	err := p.db.QueryRow(ctx, query, bookingID, userID).Scan(
		&booking.ID,
		&booking.UserID,
		&booking.ShowID,
		&booking.Seats,
		&booking.Amount,
		&booking.IsPaid,
		&booking.PaymentMethod,
		&booking.PaymentStatus,
		&booking.GatewayOrderID,
		&booking.GatewayPaymentID,
		&booking.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBookingNotFound
		}

		return nil, err
	}

	return &booking, nil
}

func (p *PostgresBookingRepository) GetAllByUserId(ctx context.Context, userID string) ([]domain.Booking, error) {
	query := `
		SELECT id, user_id, show_id, seats, amount, is_paid, payment_method,
			payment_status, COALESCE(gateway_order_id, ''),
			COALESCE(gateway_payment_id, ''), created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := p.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)

	for rows.Next() {
		var booking domain.Booking

		err = rows.Scan(
			&booking.ID,
			&booking.UserID,
			&booking.ShowID,
			&booking.Seats,
			&booking.Amount,
			&booking.IsPaid,
			&booking.PaymentMethod,
			&booking.PaymentStatus,
			&booking.GatewayOrderID,
			&booking.GatewayPaymentID,
			&booking.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		bookings = append(bookings, booking)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return bookings, nil
}

// DeleteAllByUserId removes booking rows only. show_seats is untouched on
// purpose: clearing history does not resurrect seat availability.
func (p *PostgresBookingRepository) DeleteAllByUserId(ctx context.Context, userID string) (int64, error) {
	tag, err := p.db.Exec(ctx, `DELETE FROM bookings WHERE user_id = $1`, userID)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func runInTx(ctx context.Context, db *pgxpool.Pool, fn func(tx pgx.Tx) error) error {
	var txOptions pgx.TxOptions

	tx, err := db.BeginTx(ctx, txOptions)
	if err != nil {
		return err
	}

	err = fn(tx)
	if err == nil {
		return tx.Commit(ctx)
	}

	rollbackErr := tx.Rollback(ctx)
	if rollbackErr != nil {
		return errors.Join(err, rollbackErr)
	}

	return err
}
