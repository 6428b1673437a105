// Command mockserver stands in for the external customer source. It serves
// a static JSON-backed customer list with the same paginated API the real
// source exposes.
package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

var cli = struct {
	Port     int    `name:"port" env:"MOCK_PORT" default:"5000"`
	DataFile string `name:"data-file" env:"MOCK_DATA_FILE" default:"data/customers.json"`

	// GenerateCount is used when the data file is absent.
	GenerateCount int `name:"generate-count" env:"MOCK_GENERATE_COUNT" default:"25"`
}{}

type mockCustomer struct {
	CustomerID     string   `json:"customer_id"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Email          string   `json:"email"`
	Phone          *string  `json:"phone,omitempty"`
	Address        *string  `json:"address,omitempty"`
	DateOfBirth    *string  `json:"date_of_birth,omitempty"`
	AccountBalance *float64 `json:"account_balance,omitempty"`
	CreatedAt      *string  `json:"created_at,omitempty"`
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("unexpected error: %v", err)
	}
}

func run() error {
	_ = godotenv.Load()
	kong.Parse(&cli)

	customers, err := loadCustomers(cli.DataFile)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("data file %s not found, generating %d customers", cli.DataFile, cli.GenerateCount)
		customers = generateCustomers(cli.GenerateCount)
	} else if err != nil {
		return err
	}

	r := gin.Default()

	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":          "healthy",
			"service":         "mock-server",
			"total_customers": len(customers),
		})
	})

	r.GET("/api/customers", func(c *gin.Context) {
		page, limit := paginationParams(c)

		total := len(customers)
		start := (page - 1) * limit
		end := start + limit
		if start > total {
			start = total
		}
		if end > total {
			end = total
		}

		c.JSON(200, gin.H{
			"data":        customers[start:end],
			"total":       total,
			"page":        page,
			"limit":       limit,
			"total_pages": (total + limit - 1) / limit,
		})
	})

	r.GET("/api/customers/:id", func(c *gin.Context) {
		id := c.Param("id")
		for _, cust := range customers {
			if cust.CustomerID == id {
				c.JSON(200, gin.H{"data": cust})
				return
			}
		}
		c.JSON(404, gin.H{"error": "Customer not found", "customer_id": id})
	})

	return r.Run(fmt.Sprintf(":%d", cli.Port))
}

func loadCustomers(path string) ([]mockCustomer, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var customers []mockCustomer
	if err := json.Unmarshal(raw, &customers); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return customers, nil
}

func paginationParams(c *gin.Context) (int, int) {
	page := 1
	limit := 10
	if v, err := parsePositive(c.Query("page")); err == nil {
		page = v
	}
	if v, err := parsePositive(c.Query("limit")); err == nil {
		limit = v
	}
	if limit > 100 {
		limit = 100
	}
	return page, limit
}

func parsePositive(s string) (int, error) {
	var v int
	if _, err := fmt.Sscanf(s, "%d", &v); err != nil {
		return 0, err
	}
	if v < 1 {
		return 0, fmt.Errorf("not positive: %d", v)
	}
	return v, nil
}

func generateCustomers(n int) []mockCustomer {
	firstNames := []string{"Alice", "Bob", "Carol", "David", "Emma", "Frank", "Grace", "Henry"}
	lastNames := []string{"Smith", "Jones", "Taylor", "Brown", "Wilson", "Evans", "Walker", "Wright"}

	customers := make([]mockCustomer, 0, n)
	for i := 0; i < n; i++ {
		first := firstNames[i%len(firstNames)]
		last := lastNames[(i/len(firstNames))%len(lastNames)]
		phone := fmt.Sprintf("+1-555-%04d", 1000+i)
		dob := time.Date(1960+i%40, time.Month(1+i%12), 1+i%28, 0, 0, 0, 0, time.UTC).Format("2006-01-02")
		balance := float64(100*(i+1)) + 0.50
		created := time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC).Add(time.Duration(i) * time.Hour).Format(time.RFC3339)

		customers = append(customers, mockCustomer{
			CustomerID:     fmt.Sprintf("CUST%03d", i+1),
			FirstName:      first,
			LastName:       last,
			Email:          fmt.Sprintf("%s.%s.%s@example.com", first, last, uuid.NewString()[:8]),
			Phone:          &phone,
			DateOfBirth:    &dob,
			AccountBalance: &balance,
			CreatedAt:      &created,
		})
	}
	return customers
}
