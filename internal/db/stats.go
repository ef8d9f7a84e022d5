package db

import (
	"context"
	"fmt"
	"time"

	"calorigram/internal/models"
)

func (db *PostgresDB) DailyTotal(ctx context.Context, telegramID int64, day time.Time) (*models.DayTotal, error) {
	meals, err := db.MealsForDay(ctx, telegramID, day)
	if err != nil {
		return nil, err
	}

	total := &models.DayTotal{Meals: len(meals)}
	for _, m := range meals {
		total.Calories += m.Calories
	}
	return total, nil
}

// DailyMealsBySlot groups the day's calories by meal slot, summing
// duplicates within a slot.
func (db *PostgresDB) DailyMealsBySlot(ctx context.Context, telegramID int64, day time.Time) (map[models.MealSlot]int, error) {
	query := `
        SELECT meal_type, COALESCE(SUM(calories), 0)
        FROM meals
        WHERE telegram_id = $1 AND created_at::date = $2::date
        GROUP BY meal_type
    `

	rows, err := db.pool.Query(ctx, query, telegramID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get meals by slot: %w", err)
	}
	defer rows.Close()

	result := make(map[models.MealSlot]int)
	for rows.Next() {
		var slot models.MealSlot
		var calories int
		if err := rows.Scan(&slot, &calories); err != nil {
			return nil, fmt.Errorf("failed to scan slot total: %w", err)
		}
		result[slot] = calories
	}
	return result, rows.Err()
}

// WeeklyCalories returns per-day totals for the 7 days ending at day,
// keyed by calendar date. Days without meals are absent.
func (db *PostgresDB) WeeklyCalories(ctx context.Context, telegramID int64, day time.Time) (map[string]int, error) {
	query := `
        SELECT created_at::date, COALESCE(SUM(calories), 0)
        FROM meals
        WHERE telegram_id = $1
          AND created_at::date > $2::date - INTERVAL '7 days'
          AND created_at::date <= $2::date
        GROUP BY created_at::date
        ORDER BY created_at::date
    `

	rows, err := db.pool.Query(ctx, query, telegramID, day)
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly calories: %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var date time.Time
		var calories int
		if err := rows.Scan(&date, &calories); err != nil {
			return nil, fmt.Errorf("failed to scan weekly total: %w", err)
		}
		result[date.Format("2006-01-02")] = calories
	}
	return result, rows.Err()
}

func (db *PostgresDB) UserCount(ctx context.Context) (int, error) {
	var count int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (db *PostgresDB) MealCount(ctx context.Context) (int, error) {
	var count int
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM meals`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count meals: %w", err)
	}
	return count, nil
}

func (db *PostgresDB) DailyStats(ctx context.Context) (*models.DailyStats, error) {
	query := `
        SELECT
            (SELECT COUNT(DISTINCT telegram_id) FROM meals WHERE created_at::date = NOW()::date),
            (SELECT COUNT(*) FROM meals WHERE created_at::date = NOW()::date),
            (SELECT COALESCE(SUM(calories), 0) FROM meals WHERE created_at::date = NOW()::date)
    `

	var stats models.DailyStats
	err := db.pool.QueryRow(ctx, query).Scan(&stats.ActiveUsers, &stats.MealsToday, &stats.TotalCalories)
	if err != nil {
		return nil, fmt.Errorf("failed to get daily stats: %w", err)
	}
	return &stats, nil
}

func (db *PostgresDB) RecentMeals(ctx context.Context, limit int) ([]models.RecentMeal, error) {
	query := `
        SELECT m.telegram_id, u.name, m.meal_name, m.dish_name, m.calories, m.created_at
        FROM meals m
        JOIN users u ON u.telegram_id = m.telegram_id
        ORDER BY m.created_at DESC
        LIMIT $1
    `

	rows, err := db.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get recent meals: %w", err)
	}
	defer rows.Close()

	var meals []models.RecentMeal
	for rows.Next() {
		var m models.RecentMeal
		if err := rows.Scan(&m.TelegramID, &m.UserName, &m.MealName, &m.DishName, &m.Calories, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan recent meal: %w", err)
		}
		meals = append(meals, m)
	}
	return meals, rows.Err()
}

func (db *PostgresDB) AllUsers(ctx context.Context) ([]models.UserProfile, error) {
	query := `
        SELECT id, telegram_id, name, gender, age, height, weight, activity_level,
               daily_calories, subscription_type, subscription_expires_at, is_premium, created_at
        FROM users
        ORDER BY created_at DESC
    `

	rows, err := db.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to get users: %w", err)
	}
	defer rows.Close()

	var users []models.UserProfile
	for rows.Next() {
		var p models.UserProfile
		if err := rows.Scan(&p.ID, &p.TelegramID, &p.Name, &p.Gender, &p.Age,
			&p.Height, &p.Weight, &p.ActivityLevel, &p.DailyCalories,
			&p.Tier, &p.ExpiresAt, &p.IsPremium, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, p)
	}
	return users, rows.Err()
}
