package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"dinely/internal/offers"
	"dinely/internal/restaurants"
	"dinely/internal/shared/config"
	"dinely/internal/shared/database"
	"dinely/internal/slots"
	"dinely/internal/users"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Seeder struct {
	db *database.DB
}

func main() {
	fmt.Println("🌱 Starting Dinely Database Seeder...")

	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	db, err := database.InitDB(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	seeder := &Seeder{db: db}

	fmt.Println("\n🧹 Cleaning database...")
	if err := seeder.CleanDatabase(); err != nil {
		log.Fatalf("Failed to clean database: %v", err)
	}
	fmt.Println("✅ Database cleaned successfully")

	fmt.Println("\n🌱 Seeding database...")
	if err := seeder.SeedAll(); err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}
	fmt.Println("✅ Database seeded successfully")

	fmt.Println("\n🎉 Seeding completed! Database is ready for testing.")
}

// CleanDatabase truncates all tables in the correct order (respecting
// foreign key constraints).
func (s *Seeder) CleanDatabase() error {
	tables := []string{
		"notifications",
		"reservations",
		"offers",
		"seat_slots",
		"seat_schedules",
		"payment_settings",
		"restaurants",
		"users",
	}

	for _, table := range tables {
		if err := s.db.PostgreSQL.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)).Error; err != nil {
			return fmt.Errorf("failed to truncate %s: %w", table, err)
		}
		fmt.Printf("  ✓ Truncated %s\n", table)
	}
	return nil
}

func (s *Seeder) SeedAll() error {
	ctx := context.Background()

	owner, customer, err := s.seedUsers()
	if err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}
	fmt.Printf("  ✓ Created owner %s and customer %s\n", owner.Email, customer.Email)

	restaurantService := restaurants.NewService(restaurants.NewRepository(s.db.PostgreSQL))
	slotService := slots.NewService(slots.NewRepository(s.db.PostgreSQL))
	offerService := offers.NewService(offers.NewRepository(s.db.PostgreSQL))

	restaurant, err := restaurantService.CreateRestaurant(ctx, owner.ID, restaurants.CreateRestaurantRequest{
		Name:    "The Blue Door",
		Address: "14 Harbour Lane",
		Phone:   "+91-9876500001",
	})
	if err != nil {
		return fmt.Errorf("failed to create restaurant: %w", err)
	}
	fmt.Printf("  ✓ Created restaurant %s (%s)\n", restaurant.Name, restaurant.ID)

	if _, err := restaurantService.SetPaymentSettings(ctx, restaurant.ID, restaurants.PaymentSettingsRequest{
		MinAdvanceAmount: decimal.RequireFromString("200.00"),
		UpiID:            "bluedoor@upi",
	}); err != nil {
		return fmt.Errorf("failed to set payment settings: %w", err)
	}
	fmt.Println("  ✓ Configured payment settings (₹200 per guest)")

	if _, err := slotService.SetSchedule(ctx, restaurant.ID, slots.ScheduleRequest{
		TotalSeats:      20,
		StartTime:       "18:00",
		EndTime:         "22:00",
		IntervalMinutes: 30,
	}); err != nil {
		return fmt.Errorf("failed to set schedule: %w", err)
	}

	tomorrow := time.Now().UTC().AddDate(0, 0, 1)
	generated, err := slotService.GenerateSlots(ctx, restaurant.ID, tomorrow)
	if err != nil {
		return fmt.Errorf("failed to generate slots: %w", err)
	}
	fmt.Printf("  ✓ Generated %d slots for %s\n", len(generated), tomorrow.Format("2006-01-02"))

	active := true
	if _, err := offerService.CreateOffer(ctx, restaurant.ID, offers.OfferRequest{
		Title:              "Early Bird",
		Description:        "10% off on advance for early dinner slots",
		DiscountPercentage: decimal.RequireFromString("10"),
		ValidFrom:          time.Now().UTC().AddDate(0, 0, -1),
		ValidUntil:         time.Now().UTC().AddDate(0, 1, 0),
		StartTime:          "18:00",
		EndTime:            "19:30",
		IsActive:           &active,
	}); err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	fmt.Println("  ✓ Created Early Bird offer (10% off)")

	return nil
}

func (s *Seeder) seedUsers() (*users.User, *users.User, error) {
	owner := &users.User{
		ID:       uuid.New(),
		FullName: "Asha Menon",
		Email:    "owner@dinely.dev",
		Role:     users.RoleOwner,
	}
	customer := &users.User{
		ID:       uuid.New(),
		FullName: "Ravi Kumar",
		Email:    "customer@dinely.dev",
		Role:     users.RoleCustomer,
	}

	if err := s.db.PostgreSQL.Create(owner).Error; err != nil {
		return nil, nil, err
	}
	if err := s.db.PostgreSQL.Create(customer).Error; err != nil {
		return nil, nil, err
	}
	return owner, customer, nil
}
