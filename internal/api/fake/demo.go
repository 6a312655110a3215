package fake

import (
	"fmt"
	"time"

	"github.com/Veraticus/frontdesk/internal/model"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
)

// Ids of the demo data.
const (
	DemoBusinessID = 1
	DemoDowntown   = 10
	DemoRiverside  = 11
)

// SeedDemo fills store with a small two-location studio and a month of
// bookings around now.
func SeedDemo(store *Store, now time.Time) {
	store.AddBusiness(DemoBusinessID, "Studio Aurora")
	store.AddLocation(model.Location{ID: DemoDowntown, BusinessID: DemoBusinessID, Name: "Downtown", Address: "12 Main Street"})
	store.AddLocation(model.Location{ID: DemoRiverside, BusinessID: DemoBusinessID, Name: "Riverside", Address: "3 Quay Lane"})

	store.AddStaff(Staff{ID: 100, LocationID: DemoDowntown, Name: "Mira"})
	store.AddStaff(Staff{ID: 101, LocationID: DemoDowntown, Name: "Ivo"})
	store.AddStaff(Staff{ID: 102, LocationID: DemoRiverside, Name: "Lena"})

	services := []struct {
		name     string
		category string
		price    string
	}{
		{"Haircut", "Hair", "30"},
		{"Colour", "Hair", "75"},
		{"Blow dry", "Hair", "20"},
		{"Manicure", "Nails", "25"},
	}
	var nextService int64 = 1
	for _, loc := range []int64{DemoDowntown, DemoRiverside} {
		for _, s := range services {
			store.AddService(model.ServiceCatalogEntry{
				ID:         nextService,
				LocationID: loc,
				Name:       s.name,
				Category:   s.category,
				BasePrice:  decimal.RequireFromString(s.price),
			})
			nextService++
		}
	}

	week := []model.WorkingDay{}
	for wd := 0; wd < 5; wd++ {
		week = append(week, model.WorkingDay{Weekday: wd, Opens: model.NewTimeOfDay(9, 0), Closes: model.NewTimeOfDay(18, 0)})
	}
	week = append(week,
		model.WorkingDay{Weekday: 5, Opens: model.NewTimeOfDay(10, 0), Closes: model.NewTimeOfDay(15, 0)},
		model.WorkingDay{Weekday: 6, Closed: true},
	)
	store.SetHours(DemoDowntown, week)
	store.SetHours(DemoRiverside, week)

	clients := []string{"Ana Petrovic", "Bea Novak", "Cleo Marin", "Dora Kovac", "Eva Horvat", "Fay Ilic"}
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	for day := first; day.Month() == now.Month(); day = day.AddDate(0, 0, 1) {
		if day.Weekday() == time.Sunday {
			continue
		}
		n := day.Day() % 4
		for i := 0; i < n; i++ {
			staff := int64(100 + i%2)
			loc := int64(DemoDowntown)
			serviceID := int64(1 + i%3)
			if (day.Day()+i)%3 == 0 {
				staff, loc, serviceID = 102, DemoRiverside, int64(5+i%3)
			}
			store.AddAppointment(model.NewAppointment{
				BusinessID:   DemoBusinessID,
				LocationID:   loc,
				ServiceID:    serviceID,
				StaffID:      staff,
				Start:        model.NewTimeOfDay(10+2*i, 0).On(day),
				Price:        decimal.RequireFromString(services[(serviceID-1)%int64(len(services))].price),
				CustomerName: clients[(day.Day()+i)%len(clients)],
			})
		}
		if day.Day()%7 == 1 {
			store.AddExpense(model.NewExpense{
				Date:        day,
				Amount:      decimal.RequireFromString("42.50"),
				Description: "Hair products",
				Category:    model.ExpenseSupplies,
				BusinessID:  DemoBusinessID,
				LocationID:  DemoDowntown,
			})
		}
	}
}

// Token signs a session credential for the demo backend.
func Token(secret []byte, role model.Role, name string, locationID int64, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"sub":        name,
		"name":       name,
		"role":       string(role),
		"businessId": DemoBusinessID,
		"locationId": locationID,
		"exp":        jwt.NewNumericDate(time.Now().Add(ttl)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign demo token: %w", err)
	}
	return token, nil
}
