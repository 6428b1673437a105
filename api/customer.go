package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/semanticallynull/pipeline-backend/customer"
	"github.com/semanticallynull/pipeline-backend/internal/middleware"
)

const (
	defaultPage  = 1
	defaultLimit = 10
	maxLimit     = 100
)

type customerResponse struct {
	CustomerID     string     `json:"customer_id"`
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	Email          string     `json:"email"`
	Phone          *string    `json:"phone,omitempty"`
	Address        *string    `json:"address,omitempty"`
	DateOfBirth    *string    `json:"date_of_birth,omitempty"`
	AccountBalance *float64   `json:"account_balance,omitempty"`
	CreatedAt      *time.Time `json:"created_at,omitempty"`
}

type customerListResponse struct {
	Data       []customerResponse `json:"data"`
	Total      int                `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

func toCustomerResponse(c customer.Customer) customerResponse {
	resp := customerResponse{
		CustomerID:     c.CustomerID,
		FirstName:      c.FirstName,
		LastName:       c.LastName,
		Email:          c.Email,
		Phone:          c.Phone,
		Address:        c.Address,
		AccountBalance: c.AccountBalance,
		CreatedAt:      c.CreatedAt,
	}
	if c.DateOfBirth != nil {
		dob := c.DateOfBirth.Format("2006-01-02")
		resp.DateOfBirth = &dob
	}
	return resp
}

func (a *API) listCustomersHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	page, limit := pageParams(c.Query("page"), c.Query("limit"))

	p, err := a.cr.GetPage(c.Request.Context(), page, limit)
	if err != nil {
		logger.ErrorContext(c, "failed to get customer page", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	data := make([]customerResponse, 0, len(p.Items))
	for _, item := range p.Items {
		data = append(data, toCustomerResponse(item))
	}

	c.JSON(http.StatusOK, customerListResponse{
		Data:       data,
		Total:      p.Total,
		Page:       page,
		Limit:      limit,
		TotalPages: p.TotalPages,
	})
}

func (a *API) getCustomerHandler(c *gin.Context) {
	logger := middleware.GetLogger(c)

	id := c.Param("id")
	cust, err := a.cr.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, customer.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"code": "CUSTOMER_NOT_FOUND", "message": "Customer not found", "customer_id": id})
			return
		}
		logger.ErrorContext(c, "failed to get customer", "customer_id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": toCustomerResponse(cust)})
}

// pageParams applies the listing defaults: page >= 1 (default 1), limit in
// [1,100] (default 10). Unparseable values fall back to the defaults.
func pageParams(pageStr, limitStr string) (int, int) {
	page := defaultPage
	if v, err := strconv.Atoi(pageStr); err == nil && v >= 1 {
		page = v
	}

	limit := defaultLimit
	if v, err := strconv.Atoi(limitStr); err == nil && v >= 1 {
		limit = v
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return page, limit
}
