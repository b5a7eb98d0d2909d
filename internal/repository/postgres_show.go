package repository

import (
	"context"
	"errors"
	"time"

	"github.com/cineseat/cineseat/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresShowRepository struct {
	db *pgxpool.Pool
}

func NewPostgresShowRepository(db *pgxpool.Pool) *PostgresShowRepository {
	return &PostgresShowRepository{
		db: db,
	}
}

func (p *PostgresShowRepository) Create(ctx context.Context, show *domain.Show) error {
	query := `
		INSERT INTO shows (id, movie_title, theater_id, start_time, price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`

	return p.db.QueryRow(
		ctx,
		query,
		show.ID,
		show.MovieTitle,
		show.TheaterID,
		show.StartTime,
		show.Price).Scan(&show.CreatedAt)
}

func (p *PostgresShowRepository) GetById(ctx context.Context, id string) (*domain.Show, error) {
	query := `
		SELECT id, movie_title, theater_id, start_time, price, created_at
		FROM shows
		WHERE id = $1
	`

	var show domain.Show

	err := p.db.QueryRow(ctx, query, id).Scan(
		&show.ID,
		&show.MovieTitle,
		&show.TheaterID,
		&show.StartTime,
		&show.Price,
		&show.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShowNotFound
		}

		return nil, err
	}

	show.OccupiedSeats, err = p.occupiedSeats(ctx, id)
	if err != nil {
		return nil, err
	}

	return &show, nil
}

func (p *PostgresShowRepository) GetAll(ctx context.Context) ([]domain.Show, error) {
	query := `
		SELECT id, movie_title, theater_id, start_time, price, created_at
		FROM shows
		ORDER BY start_time
	`

	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	shows := make([]domain.Show, 0)
	index := make(map[string]int)

	for rows.Next() {
		var show domain.Show

		err = rows.Scan(
			&show.ID,
			&show.MovieTitle,
			&show.TheaterID,
			&show.StartTime,
			&show.Price,
			&show.CreatedAt,
		)
		if err != nil {
			return nil, err
		}

		show.OccupiedSeats = make(map[string]string)
		index[show.ID] = len(shows)
		shows = append(shows, show)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	seatRows, err := p.db.Query(ctx, `SELECT show_id, seat_label, user_id FROM show_seats`)
	if err != nil {
		return nil, err
	}
	defer seatRows.Close()

	for seatRows.Next() {
		var showID, label, userID string

		err = seatRows.Scan(&showID, &label, &userID)
		if err != nil {
			return nil, err
		}

		if i, ok := index[showID]; ok {
			shows[i].OccupiedSeats[label] = userID
		}
	}

	if err = seatRows.Err(); err != nil {
		return nil, err
	}

	return shows, nil
}

func (p *PostgresShowRepository) SeatsTaken(
	ctx context.Context,
	showID string,
	labels []string) ([]string, error) {

	query := `
		SELECT seat_label
		FROM show_seats
		WHERE show_id = $1 AND seat_label = ANY($2)
		ORDER BY seat_label
	`

	rows, err := p.db.Query(ctx, query, showID, labels)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	taken := make([]string, 0)

	for rows.Next() {
		var label string

		if err = rows.Scan(&label); err != nil {
			return nil, err
		}

		taken = append(taken, label)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return taken, nil
}

func (p *PostgresShowRepository) DeleteExpiredWithoutBookings(
	ctx context.Context,
	now time.Time) (int64, error) {

	// The anti-join guards ledger state: a past show with booking history is
	// never deleted. Seat rows go with the show via ON DELETE CASCADE.
	query := `
		DELETE FROM shows s
		WHERE s.start_time < $1
		AND NOT EXISTS (
			SELECT 1 FROM bookings b WHERE b.show_id = s.id
		)
	`

	tag, err := p.db.Exec(ctx, query, now)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}

func (p *PostgresShowRepository) occupiedSeats(ctx context.Context, showID string) (map[string]string, error) {
	query := `
		SELECT seat_label, user_id
		FROM show_seats
		WHERE show_id = $1
	`

	rows, err := p.db.Query(ctx, query, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	occupied := make(map[string]string)

	for rows.Next() {
		var label, userID string

		if err = rows.Scan(&label, &userID); err != nil {
			return nil, err
		}

		occupied[label] = userID
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return occupied, nil
}
