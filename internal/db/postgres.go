package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"calorigram/internal/models"
)

type Config struct {
	Host         string
	Port         string
	User         string
	Password     string
	DBName       string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	ConnLifetime time.Duration
}

type PostgresDB struct {
	pool *pgxpool.Pool
}

func NewPostgresDB(cfg Config) (*PostgresDB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s pool_max_conns=%d",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode, cfg.MaxOpenConns,
	)

	poolConfig, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DB connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnLifetime
	poolConfig.MaxConnIdleTime = 15 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db := &PostgresDB{pool: pool}
	if err := db.createTables(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return db, nil
}

func (db *PostgresDB) createTables(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			telegram_id BIGINT UNIQUE NOT NULL,
			name VARCHAR(255) NOT NULL,
			gender VARCHAR(50) NOT NULL,
			age INTEGER NOT NULL,
			height DECIMAL(5,2) NOT NULL,
			weight DECIMAL(5,2) NOT NULL,
			activity_level VARCHAR(100) NOT NULL,
			daily_calories INTEGER NOT NULL,
			subscription_type VARCHAR(50) DEFAULT 'trial',
			subscription_expires_at TIMESTAMPTZ NULL,
			is_premium BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS meals (
			id BIGSERIAL PRIMARY KEY,
			telegram_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
			meal_type VARCHAR(100) NOT NULL,
			meal_name VARCHAR(255) NOT NULL,
			dish_name VARCHAR(255) NOT NULL,
			calories INTEGER NOT NULL,
			analysis_type VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS calorie_checks (
			id BIGSERIAL PRIMARY KEY,
			telegram_id BIGINT NOT NULL REFERENCES users(telegram_id) ON DELETE CASCADE,
			check_type VARCHAR(100) NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_telegram_id ON users(telegram_id)`,
		`CREATE INDEX IF NOT EXISTS idx_meals_telegram_id ON meals(telegram_id)`,
		`CREATE INDEX IF NOT EXISTS idx_meals_date ON meals(created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_meals_type ON meals(meal_type)`,
		`CREATE INDEX IF NOT EXISTS idx_checks_telegram_id ON calorie_checks(telegram_id)`,
	}

	for _, stmt := range statements {
		if _, err := db.pool.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (db *PostgresDB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// GetProfile returns the user's profile, or nil when the user is not
// registered.
func (db *PostgresDB) GetProfile(ctx context.Context, telegramID int64) (*models.UserProfile, error) {
	query := `
        SELECT id, telegram_id, name, gender, age, height, weight, activity_level,
               daily_calories, subscription_type, subscription_expires_at, is_premium, created_at
        FROM users
        WHERE telegram_id = $1
    `

	var profile models.UserProfile
	err := db.pool.QueryRow(ctx, query, telegramID).Scan(
		&profile.ID, &profile.TelegramID, &profile.Name, &profile.Gender,
		&profile.Age, &profile.Height, &profile.Weight, &profile.ActivityLevel,
		&profile.DailyCalories, &profile.Tier, &profile.ExpiresAt,
		&profile.IsPremium, &profile.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

func (db *PostgresDB) CreateProfile(ctx context.Context, p *models.UserProfile) error {
	query := `
        INSERT INTO users (telegram_id, name, gender, age, height, weight, activity_level, daily_calories)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING id
    `

	err := db.pool.QueryRow(ctx, query,
		p.TelegramID, p.Name, p.Gender, p.Age, p.Height, p.Weight,
		p.ActivityLevel, p.DailyCalories,
	).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("failed to create profile: %w", err)
	}
	return nil
}

// DeleteProfile removes the user row; meals and usage events cascade.
func (db *PostgresDB) DeleteProfile(ctx context.Context, telegramID int64) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM users WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return false, fmt.Errorf("failed to delete profile: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (db *PostgresDB) SetSubscription(ctx context.Context, telegramID int64, tier string, expiresAt *time.Time, premium bool) error {
	query := `
        UPDATE users
        SET subscription_type = $2, subscription_expires_at = $3, is_premium = $4
        WHERE telegram_id = $1
    `

	tag, err := db.pool.Exec(ctx, query, telegramID, tier, expiresAt, premium)
	if err != nil {
		return fmt.Errorf("failed to set subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %d not found", telegramID)
	}
	return nil
}

func (db *PostgresDB) InsertMeal(ctx context.Context, meal *models.MealEntry) error {
	query := `
        INSERT INTO meals (telegram_id, meal_type, meal_name, dish_name, calories, analysis_type)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id
    `

	err := db.pool.QueryRow(ctx, query,
		meal.TelegramID, meal.Slot, meal.MealName, meal.DishName,
		meal.Calories, meal.Channel,
	).Scan(&meal.ID)
	if err != nil {
		return fmt.Errorf("failed to insert meal: %w", err)
	}
	return nil
}

func (db *PostgresDB) MealsForDay(ctx context.Context, telegramID int64, day time.Time) ([]models.MealEntry, error) {
	query := `
        SELECT id, telegram_id, meal_type, meal_name, dish_name, calories, analysis_type, created_at
        FROM meals
        WHERE telegram_id = $1 AND created_at::date = $2::date
        ORDER BY created_at
    `

	rows, err := db.pool.Query(ctx, query, telegramID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get meals: %w", err)
	}
	defer rows.Close()

	var meals []models.MealEntry
	for rows.Next() {
		var m models.MealEntry
		if err := rows.Scan(&m.ID, &m.TelegramID, &m.Slot, &m.MealName,
			&m.DishName, &m.Calories, &m.Channel, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan meal: %w", err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

// MealSlotLogged reports whether the slot already has an entry for the
// given calendar day.
func (db *PostgresDB) MealSlotLogged(ctx context.Context, telegramID int64, slot models.MealSlot, day time.Time) (bool, error) {
	query := `
        SELECT COUNT(*) FROM meals
        WHERE telegram_id = $1 AND meal_type = $2 AND created_at::date = $3::date
    `

	var count int
	if err := db.pool.QueryRow(ctx, query, telegramID, slot, day).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check meal slot: %w", err)
	}
	return count > 0, nil
}

func (db *PostgresDB) DeleteMealsForDay(ctx context.Context, telegramID int64, day time.Time) (bool, error) {
	query := `DELETE FROM meals WHERE telegram_id = $1 AND created_at::date = $2::date`

	tag, err := db.pool.Exec(ctx, query, telegramID, day)
	if err != nil {
		return false, fmt.Errorf("failed to delete day meals: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (db *PostgresDB) DeleteAllMeals(ctx context.Context, telegramID int64) (bool, error) {
	tag, err := db.pool.Exec(ctx, `DELETE FROM meals WHERE telegram_id = $1`, telegramID)
	if err != nil {
		return false, fmt.Errorf("failed to delete meals: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (db *PostgresDB) CountUsageToday(ctx context.Context, telegramID int64) (int, error) {
	query := `
        SELECT COUNT(*) FROM calorie_checks
        WHERE telegram_id = $1 AND created_at::date = NOW()::date
    `

	var count int
	if err := db.pool.QueryRow(ctx, query, telegramID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count usage: %w", err)
	}
	return count, nil
}

func (db *PostgresDB) InsertUsage(ctx context.Context, telegramID int64, channel models.Channel) error {
	query := `INSERT INTO calorie_checks (telegram_id, check_type) VALUES ($1, $2)`

	if _, err := db.pool.Exec(ctx, query, telegramID, channel); err != nil {
		return fmt.Errorf("failed to insert usage: %w", err)
	}
	return nil
}
