package subscribers

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Subscriber is one digest recipient. Resorts holds the slugs the subscriber
// follows; StartDate/EndDate bound the delivery window (inclusive).
type Subscriber struct {
	Email     string    `json:"email"`
	Resorts   []string  `json:"resorts"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	SendHour  int       `json:"sendHour"`
}

// Config holds the database connection settings.
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// Store persists subscribers in MySQL.
type Store struct {
	db *sql.DB
}

// Open connects to the database and verifies the connection.
func Open(cfg Config) (*Store, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
	)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the connection pool.
func (s *Store) Close() {
	if s.db != nil {
		s.db.Close()
		log.Println("subscribers: database connection closed")
	}
}

// EnsureSchema creates the subscribers table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS subscribers (
			email      VARCHAR(255) NOT NULL PRIMARY KEY,
			resorts    JSON         NOT NULL,
			start_date DATE         NOT NULL,
			end_date   DATE         NOT NULL,
			send_hour  TINYINT      NOT NULL DEFAULT 7,
			created_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP    NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
		)`)
	if err != nil {
		return fmt.Errorf("failed to ensure subscribers schema: %w", err)
	}
	return nil
}

// Upsert inserts a subscriber or refreshes an existing one keyed by email.
func (s *Store) Upsert(ctx context.Context, sub Subscriber) error {
	resorts, err := json.Marshal(sub.Resorts)
	if err != nil {
		return fmt.Errorf("failed to marshal resorts for %s: %w", sub.Email, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO subscribers (email, resorts, start_date, end_date, send_hour)
		VALUES (?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			resorts = VALUES(resorts),
			start_date = VALUES(start_date),
			end_date = VALUES(end_date),
			send_hour = VALUES(send_hour)`,
		sub.Email,
		string(resorts),
		sub.StartDate.Format("2006-01-02"),
		sub.EndDate.Format("2006-01-02"),
		sub.SendHour,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert subscriber %s: %w", sub.Email, err)
	}
	return nil
}

// ActiveOn returns subscribers whose delivery window contains the given day.
func (s *Store) ActiveOn(ctx context.Context, day time.Time) ([]Subscriber, error) {
	date := day.Format("2006-01-02")

	rows, err := s.db.QueryContext(ctx, `
		SELECT email, resorts, start_date, end_date, send_hour
		FROM subscribers
		WHERE start_date <= ? AND end_date >= ?`,
		date, date,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query active subscribers: %w", err)
	}
	defer rows.Close()

	var subs []Subscriber
	for rows.Next() {
		var (
			sub     Subscriber
			resorts []byte
		)
		if err := rows.Scan(&sub.Email, &resorts, &sub.StartDate, &sub.EndDate, &sub.SendHour); err != nil {
			return nil, fmt.Errorf("failed to scan subscriber row: %w", err)
		}
		if err := json.Unmarshal(resorts, &sub.Resorts); err != nil {
			log.Printf("subscribers: malformed resorts for %s: %v", sub.Email, err)
			sub.Resorts = nil
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed reading subscriber rows: %w", err)
	}
	return subs, nil
}

// Remove deletes a subscriber by email. Removing an unknown email is not an
// error.
func (s *Store) Remove(ctx context.Context, email string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM subscribers WHERE email = ?`, email)
	if err != nil {
		return fmt.Errorf("failed to remove subscriber %s: %w", email, err)
	}
	return nil
}
