package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinicdesk/appointment-scheduling/internal/db"
	"github.com/clinicdesk/appointment-scheduling/internal/schedule"
)

const (
	doctorCount  = 4
	calendarDays = 14
	dayStartHour = 9
	dayEndHour   = 17
)

var locations = []string{
	"Chennai Main",
	"Velachery",
	"Tambaram",
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	dsn := os.Getenv("POSTGRES_DSN")
	if dsn == "" {
		log.Fatal("POSTGRES_DSN is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	gofakeit.Seed(time.Now().UnixNano())

	if err := seedCalendar(context.Background(), pool); err != nil {
		log.Fatalf("seed calendar: %v", err)
	}
	if err := seedPatients(context.Background(), pool, 200); err != nil {
		log.Fatalf("seed patients: %v", err)
	}

	log.Println("seed complete")
}

// seedCalendar pre-provisions the atomic slot grid: every doctor, every
// location day, 30-minute slots between opening and closing hours.
func seedCalendar(ctx context.Context, pool *pgxpool.Pool) error {
	log.Printf("seeding calendar for %d doctors over %d days", doctorCount, calendarDays)

	tx, err := pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	today := time.Now()

	for d := 1; d <= doctorCount; d++ {
		doctorID := fmt.Sprintf("D%03d", d)
		doctorName := "Dr. " + gofakeit.Name()
		location := locations[(d-1)%len(locations)]

		for day := 0; day < calendarDays; day++ {
			date := today.AddDate(0, 0, day).Format("2006-01-02")

			for hour := dayStartHour; hour < dayEndHour; hour++ {
				for _, half := range []int{0, 30} {
					start := time.Date(2000, 1, 1, hour, half, 0, 0, time.UTC)
					end := start.Add(schedule.SlotWidth)

					_, err := tx.Exec(ctx, `
						INSERT INTO appointment_slots (doctor_id, doctor_name, location, date, start_time, end_time, status, created_at, updated_at)
						VALUES ($1, $2, $3, $4, $5, $6, 'free', now(), now())
						ON CONFLICT (doctor_id, date, start_time) DO NOTHING
					`, doctorID, doctorName, location, date, start.Format("15:04"), end.Format("15:04"))
					if err != nil {
						return err
					}
				}
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}

	log.Println("calendar seeded")
	return nil
}

func seedPatients(ctx context.Context, pool *pgxpool.Pool, count int) error {
	log.Printf("seeding %d patients", count)

	const batchSize = 50

	for offset := 0; offset < count; offset += batchSize {
		end := offset + batchSize
		if end > count {
			end = count
		}

		tx, err := pool.Begin(ctx)
		if err != nil {
			return err
		}

		for i := offset; i < end; i++ {
			name := gofakeit.Name()
			dob := gofakeit.DateRange(
				time.Date(1940, 1, 1, 0, 0, 0, 0, time.UTC),
				time.Date(2010, 12, 31, 0, 0, 0, 0, time.UTC),
			).Format("2006-01-02")
			doctorID := fmt.Sprintf("D%03d", gofakeit.Number(1, doctorCount))

			_, err := tx.Exec(ctx, `
				INSERT INTO patients (patient_id, name, dob, email, phone, preferred_doctor_id, is_returning, created_at, updated_at)
				VALUES ('P' || lpad(nextval('patient_id_seq')::text, 3, '0'), $1, $2, $3, $4, $5, $6, now(), now())
				ON CONFLICT DO NOTHING
			`, name, dob, gofakeit.Email(), gofakeit.Phone(), doctorID, gofakeit.Bool())
			if err != nil {
				_ = tx.Rollback(ctx)
				return err
			}
		}

		if err := tx.Commit(ctx); err != nil {
			return err
		}

		log.Printf("patients seeded: %d/%d", end, count)
	}

	log.Println("patients seeded")
	return nil
}
