package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		log.Fatalf("Failed to open DB: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping DB: %v", err)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	seedHalls(db)
	seedBookings(db, today)
	seedCharges(db)
	seedPayments(db, today)
	seedExpenses(db, today)

	log.Println("Seeding completed successfully!")
}

func seedHalls(db *sql.DB) {
	halls := []struct {
		ID       string
		Name     string
		Floor    string
		Capacity int
		BaseRent string
	}{
		{"hall-ground", "Ground Floor Hall", "GROUND", 250, "25000.00"},
		{"hall-first", "First Floor Hall", "FIRST", 150, "18000.00"},
		{"hall-both", "Full Venue", "BOTH", 400, "40000.00"},
	}

	fmt.Println("Seeding Halls...")
	for _, h := range halls {
		_, err := db.Exec(`
			INSERT INTO halls (id, name, floor, capacity, base_rent)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, base_rent = EXCLUDED.base_rent;
		`, h.ID, h.Name, h.Floor, h.Capacity, h.BaseRent)
		if err != nil {
			log.Printf("Failed to upsert hall %s: %v", h.Name, err)
		}
	}
}

func seedBookings(db *sql.DB, today time.Time) {
	bookings := []struct {
		ID        string
		HallID    string
		Customer  string
		Phone     string
		Email     string
		EventType string
		DayOffset int
		Start     string
		End       string
		Status    string
		BaseRent  string
		Discount  string
		TaxRate   string
	}{
		{"bk-001", "hall-ground", "Priya Sharma", "9810000001", "priya@example.com", "Wedding", -12, "10:00", "23:00", "COMPLETED", "25000.00", "2000.00", "0.18"},
		{"bk-002", "hall-first", "Rahul Verma", "9810000002", "", "Birthday", -5, "18:00", "22:00", "COMPLETED", "18000.00", "0", "0.18"},
		{"bk-003", "hall-both", "Anita Desai", "9810000003", "anita@example.com", "Reception", 3, "19:00", "23:30", "CONFIRMED", "40000.00", "5000.00", "0.18"},
		{"bk-004", "hall-ground", "Vikram Singh", "9810000004", "", "Engagement", 9, "11:00", "16:00", "TENTATIVE", "25000.00", "0", "0.18"},
		{"bk-005", "hall-first", "Meera Nair", "9810000005", "meera@example.com", "Corporate", 15, "09:00", "18:00", "INQUIRY", "18000.00", "0", "0.18"},
		{"bk-006", "hall-ground", "Arjun Mehta", "9810000006", "", "Wedding", 21, "10:00", "23:00", "CANCELLED", "25000.00", "0", "0.18"},
	}

	fmt.Println("Seeding Bookings...")
	for _, b := range bookings {
		var email any
		if b.Email != "" {
			email = b.Email
		}
		_, err := db.Exec(`
			INSERT INTO bookings (id, hall_id, customer_name, customer_phone, customer_email, event_type,
				event_date, start_time, end_time, status, base_rent, discount_amount, tax_rate)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (id) DO NOTHING;
		`, b.ID, b.HallID, b.Customer, b.Phone, email, b.EventType,
			today.AddDate(0, 0, b.DayOffset).Format(time.DateOnly), b.Start, b.End,
			b.Status, b.BaseRent, b.Discount, b.TaxRate)
		if err != nil {
			log.Printf("Failed to seed booking %s: %v", b.ID, err)
		}
	}
}

func seedCharges(db *sql.DB) {
	charges := []struct {
		ID          string
		BookingID   string
		Type        string
		Description string
		Amount      string
	}{
		{"ch-001", "bk-001", "DECORATION", "Stage and floral decoration", "12000.00"},
		{"ch-002", "bk-001", "AC", "Air conditioning, 12 hours", "4500.00"},
		{"ch-003", "bk-001", "GENERATOR", "Generator backup", "3000.00"},
		{"ch-004", "bk-002", "SOUND", "DJ and sound system", "6000.00"},
		{"ch-005", "bk-003", "CATERING", "Catering service coordination", "8000.00"},
		{"ch-006", "bk-003", "CLEANING", "Post event cleaning", "1500.00"},
	}

	fmt.Println("Seeding Booking Charges...")
	for _, c := range charges {
		_, err := db.Exec(`
			INSERT INTO booking_charges (id, booking_id, type, description, amount)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (id) DO NOTHING;
		`, c.ID, c.BookingID, c.Type, c.Description, c.Amount)
		if err != nil {
			log.Printf("Failed to seed charge %s: %v", c.ID, err)
		}
	}
}

func seedPayments(db *sql.DB, today time.Time) {
	payments := []struct {
		ID        string
		BookingID string
		Amount    string
		Kind      string
		Method    string
		DayOffset int
		Reference string
	}{
		{"pay-001", "bk-001", "20000.00", "ADVANCE", "BANK_TRANSFER", -40, "NEFT-88121"},
		{"pay-002", "bk-001", "29470.00", "FINAL", "UPI", -12, "UPI-55102"},
		{"pay-003", "bk-002", "10000.00", "ADVANCE", "CASH", -20, ""},
		{"pay-004", "bk-002", "18320.00", "FINAL", "CARD", -5, "CARD-4471"},
		{"pay-005", "bk-002", "500.00", "REFUND", "CASH", -4, ""},
		{"pay-006", "bk-003", "15000.00", "ADVANCE", "UPI", -10, "UPI-77310"},
	}

	fmt.Println("Seeding Payments...")
	for _, p := range payments {
		var ref any
		if p.Reference != "" {
			ref = p.Reference
		}
		_, err := db.Exec(`
			INSERT INTO payments (id, booking_id, amount, type, payment_method, payment_date, reference)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (id) DO NOTHING;
		`, p.ID, p.BookingID, p.Amount, p.Kind, p.Method, today.AddDate(0, 0, p.DayOffset).Format(time.DateOnly), ref)
		if err != nil {
			log.Printf("Failed to seed payment %s: %v", p.ID, err)
		}
	}
}

func seedExpenses(db *sql.DB, today time.Time) {
	expenses := []struct {
		ID          string
		Category    string
		BookingID   string
		Description string
		Amount      string
		DayOffset   int
	}{
		{"exp-001", "ELECTRICITY", "", "Monthly electricity bill", "18500.00", -8},
		{"exp-002", "SALARY", "", "Staff salaries", "45000.00", -2},
		{"exp-003", "GENERATOR_FUEL", "bk-001", "Diesel for generator", "2200.00", -12},
		{"exp-004", "CLEANING", "bk-002", "Cleaning crew", "1800.00", -5},
		{"exp-005", "REPAIR_MAINTENANCE", "", "AC servicing", "6000.00", -15},
	}

	fmt.Println("Seeding Expenses...")
	for _, e := range expenses {
		var related any
		if e.BookingID != "" {
			related = e.BookingID
		}
		_, err := db.Exec(`
			INSERT INTO expenses (id, category, related_booking_id, description, amount, expense_date)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (id) DO NOTHING;
		`, e.ID, e.Category, related, e.Description, e.Amount, today.AddDate(0, 0, e.DayOffset).Format(time.DateOnly))
		if err != nil {
			log.Printf("Failed to seed expense %s: %v", e.ID, err)
		}
	}
}
