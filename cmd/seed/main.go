package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/vavepl/marketplace-backend/internal/domain"
	"github.com/vavepl/marketplace-backend/internal/repository"
	"github.com/vavepl/marketplace-backend/pkg/config"
	"github.com/vavepl/marketplace-backend/pkg/database"
	"github.com/vavepl/marketplace-backend/pkg/logger"
)

const (
	userQuantity  = 10
	eventQuantity = 10
)

// categoryTree is a root title with up to three levels of children
type categoryTree struct {
	root     string
	elements []interface{}
}

// The beauty-service category catalog the marketplace launched with.
var categoryTrees = []categoryTree{
	{
		root: "Medycyna estetyczna",
		elements: []interface{}{
			"Toksyna botulinowa",
			"Kwas hialuronowy",
			"Mezoterapia",
			"Osocze bogatopłytkowe",
			"Lipoliza iniekcyjna",
			"Leczenie nadpotliwości",
			"Terapia laserem CO2",
			"Radiofrekwencja mikroigłowa",
			"HIFU - Nieoperacyjny lifting skóry",
			"Karboksyterapia",
			"Nici PDO",
			map[string][]string{
				"Nici haczykowe": {"Dekolt", "Policzki"},
			},
		},
	},
	{
		root: "Tatuaż",
		elements: []interface{}{
			"Cover up",
			"Tatuaż",
			"Kosmetyki do tatuażu",
		},
	},
	{
		root: "Fryzjerstwo",
		elements: []interface{}{
			"Strzyżenie damskie",
			"Strzyżenie męskie",
			"Farbowanie włosów (koloryzacja)",
			"Farbowanie włosów z refleksami",
			"Pasemka na włosach (balayage)",
			"Dekoloryzacja włosów",
			"Koloryzacja flash",
			"Modelowanie włosów",
			"Przedłużanie włosów",
			"Zagęszczanie włosów",
			"Doczepianie włosów",
		},
	},
	{
		root: "Inne",
		elements: []interface{}{
			"Manicure paznokci",
			"Pedicure paznokci",
			"Makijaż",
		},
	},
}

var (
	localities  = []string{"Warszawa", "Kraków", "Wrocław", "Gdańsk", "Poznań", "Łódź"}
	voivodships = []string{"małopolskie", "mazowieckie", "śląskie", "dolnośląskie", "pomorskie", "wielkopolskie", "łódzkie"}
	firstNames  = []string{"Anna", "Piotr", "Katarzyna", "Marek", "Agnieszka", "Tomasz", "Magdalena", "Paweł"}
	lastNames   = []string{"Nowak", "Kowalska", "Wiśniewski", "Wójcik", "Kamińska", "Lewandowski", "Zielińska", "Szymański"}
	tierTitles  = []string{"Dekolt", "Policzki", "Uszy", "Dłonie"}
	tierPrices  = []int{5000, 10000, 15000, 20000, 25000, 30000, 35000, 40000, 45000, 50000}
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.Init(&logger.Config{Level: "info", ServiceName: "seed", Development: true}); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	appLog := logger.Get()
	ctx := context.Background()

	db, err := database.NewPostgres(ctx, &database.PostgresConfig{
		Host:          cfg.Database.Host,
		Port:          cfg.Database.Port,
		User:          cfg.Database.User,
		Password:      cfg.Database.Password,
		Database:      cfg.Database.DBName,
		SSLMode:       cfg.Database.SSLMode,
		MaxConns:      5,
		MinConns:      1,
		MaxRetries:    3,
		RetryInterval: 2 * time.Second,
	})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	s := &seeder{
		rng:        rng,
		categories: repository.NewPostgresCategoryRepository(db.Pool()),
		companies:  repository.NewPostgresCompanyRepository(db.Pool()),
		users:      repository.NewPostgresUserRepository(db.Pool()),
		events:     repository.NewPostgresEventRepository(db.Pool()),
		bookings:   repository.NewPostgresBookingRepository(db.Pool()),
		db:         db,
	}

	leafIDs, err := s.seedCategories(ctx)
	if err != nil {
		appLog.Fatal(fmt.Sprintf("Seeding categories failed: %v", err))
	}
	appLog.Info(fmt.Sprintf("Seeded %d category leaves", len(leafIDs)))

	for i := 0; i < userQuantity; i++ {
		user, err := s.seedUser(ctx)
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Seeding user failed: %v", err))
		}

		company, err := s.seedCompany(ctx)
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Seeding company failed: %v", err))
		}
		if err := s.seedEmployee(ctx, company.ID); err != nil {
			appLog.Fatal(fmt.Sprintf("Seeding employee failed: %v", err))
		}

		event, err := s.seedEvent(ctx, company.ID, leafIDs[s.rng.Intn(len(leafIDs))])
		if err != nil {
			appLog.Fatal(fmt.Sprintf("Seeding event failed: %v", err))
		}

		if err := s.seedBooking(ctx, user.ID, event); err != nil {
			appLog.Fatal(fmt.Sprintf("Seeding booking failed: %v", err))
		}
	}

	appLog.Info(fmt.Sprintf("Seeded %d users, companies, events and bookings", userQuantity))
}

type seeder struct {
	rng        *rand.Rand
	categories *repository.PostgresCategoryRepository
	companies  *repository.PostgresCompanyRepository
	users      *repository.PostgresUserRepository
	events     *repository.PostgresEventRepository
	bookings   *repository.PostgresBookingRepository
	db         *database.PostgresDB
}

// seedCategories creates the category forest and returns the leaf ids
func (s *seeder) seedCategories(ctx context.Context) ([]string, error) {
	var leaves []string

	for _, tree := range categoryTrees {
		root := &domain.EventCategory{ID: uuid.New().String(), Title: tree.root}
		if err := s.categories.Create(ctx, root); err != nil {
			return nil, err
		}

		for _, element := range tree.elements {
			switch node := element.(type) {
			case string:
				child := &domain.EventCategory{
					ID:       uuid.New().String(),
					Title:    node,
					ParentID: &root.ID,
				}
				if err := s.categories.Create(ctx, child); err != nil {
					return nil, err
				}
				leaves = append(leaves, child.ID)
			case map[string][]string:
				for title, siblings := range node {
					child := &domain.EventCategory{
						ID:       uuid.New().String(),
						Title:    title,
						ParentID: &root.ID,
					}
					if err := s.categories.Create(ctx, child); err != nil {
						return nil, err
					}
					for _, sibling := range siblings {
						leaf := &domain.EventCategory{
							ID:       uuid.New().String(),
							Title:    sibling,
							ParentID: &child.ID,
						}
						if err := s.categories.Create(ctx, leaf); err != nil {
							return nil, err
						}
						leaves = append(leaves, leaf.ID)
					}
				}
			}
		}
	}

	return leaves, nil
}

func (s *seeder) seedUser(ctx context.Context) (*domain.User, error) {
	first := firstNames[s.rng.Intn(len(firstNames))]
	last := lastNames[s.rng.Intn(len(lastNames))]
	birth := time.Now().AddDate(-18-s.rng.Intn(42), 0, -s.rng.Intn(365))
	user := &domain.User{
		ID:        uuid.New().String(),
		FirstName: first,
		LastName:  last,
		Email:     fmt.Sprintf("%s.%s.%d@example.pl", first, last, s.rng.Intn(10000)),
		Phone:     s.randomPhone(),
		Gender:    []string{"female", "male"}[s.rng.Intn(2)],
		BirthDate: &birth,
		CreatedAt: time.Now(),
	}
	return user, s.users.Create(ctx, user)
}

func (s *seeder) seedCompany(ctx context.Context) (*domain.Company, error) {
	company := &domain.Company{
		ID:    uuid.New().String(),
		Name:  fmt.Sprintf("Studio %s %d", lastNames[s.rng.Intn(len(lastNames))], s.rng.Intn(1000)),
		NIP:   s.randomNIP(),
		Phone: s.randomPhone(),
	}
	return company, s.companies.Create(ctx, company)
}

func (s *seeder) seedEmployee(ctx context.Context, companyID string) error {
	return s.db.Exec(ctx,
		`INSERT INTO employees (id, company_id, user_id, active_events, created_at) VALUES ($1, $2, $3, 0, $4)`,
		uuid.New().String(), companyID, uuid.New().String(), time.Now(),
	)
}

func (s *seeder) seedEvent(ctx context.Context, companyID, categoryID string) (*domain.Event, error) {
	start := time.Now().AddDate(0, 0, 7+s.rng.Intn(60))
	event := &domain.Event{
		ID:             uuid.New().String(),
		CompanyID:      companyID,
		CategoryID:     categoryID,
		Description:    "Zabieg w profesjonalnym studiu, pełna konsultacja w cenie.",
		StartDate:      start,
		EndDate:        start.AddDate(0, 0, 1+s.rng.Intn(5)),
		Status:         domain.EventStatusActive,
		Latitude:       49 + s.rng.Float64()*6,
		Longitude:      14 + s.rng.Float64()*10,
		Street:         fmt.Sprintf("ul. Kwiatowa %d", 1+s.rng.Intn(120)),
		Locality:       localities[s.rng.Intn(len(localities))],
		Voivodship:     voivodships[s.rng.Intn(len(voivodships))],
		Country:        "Polska",
		Phone:          s.randomPhone(),
		Deposit:        true,
		DepositAmount:  (1 + s.rng.Intn(5)) * 1000,
		CalendarDetail: json.RawMessage(`{}`),
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	for i := 0; i < 3; i++ {
		event.Details = append(event.Details, domain.EventDetail{
			ID:      uuid.New().String(),
			EventID: event.ID,
			Title:   tierTitles[s.rng.Intn(len(tierTitles))],
			Price:   tierPrices[s.rng.Intn(len(tierPrices))],
		})
	}
	return event, s.events.Create(ctx, event)
}

func (s *seeder) seedBooking(ctx context.Context, userID string, event *domain.Event) error {
	booking := &domain.UserEvent{
		ID:           uuid.New().String(),
		UserID:       userID,
		EventID:      event.ID,
		Status:       domain.UserEventStatusInit,
		SelectedDate: event.StartDate,
		Commission:   event.Details[0].Price / 10,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	return s.bookings.Create(ctx, booking)
}

func (s *seeder) randomPhone() string {
	return fmt.Sprintf("48%09d", s.rng.Intn(1_000_000_000))
}

// randomNIP generates a tax id with a valid checksum
func (s *seeder) randomNIP() string {
	weights := [9]int{6, 5, 7, 2, 3, 4, 5, 6, 7}
	for {
		digits := make([]int, 9)
		sum := 0
		for i := range digits {
			digits[i] = s.rng.Intn(10)
			sum += digits[i] * weights[i]
		}
		check := sum % 11
		if check == 10 {
			continue
		}
		out := ""
		for _, d := range digits {
			out += fmt.Sprintf("%d", d)
		}
		return out + fmt.Sprintf("%d", check)
	}
}
