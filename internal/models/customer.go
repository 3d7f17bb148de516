package models

import (
	"encoding/json"
	"strconv"
	"strings"
)

// CustomerStatus is the project pipeline stage of a customer.
type CustomerStatus string

const (
	CustomerDesign     CustomerStatus = "design"
	CustomerProduction CustomerStatus = "production"
	CustomerDelivery   CustomerStatus = "delivery"
	CustomerDelivered  CustomerStatus = "delivered"
	CustomerCancelled  CustomerStatus = "cancelled"
)

// CustomerStatuses lists the pipeline in display order.
var CustomerStatuses = []CustomerStatus{
	CustomerDesign, CustomerProduction, CustomerDelivery, CustomerDelivered, CustomerCancelled,
}

// Valid reports whether s is a known stage.
func (s CustomerStatus) Valid() bool {
	for _, known := range CustomerStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// RequiresConfirmation reports whether moving into s needs its own prompt.
// Any stage may be selected from any other; only the prompt differs.
func (s CustomerStatus) RequiresConfirmation() bool {
	return s == CustomerDelivery || s == CustomerDelivered
}

// Number is a float that also decodes from numeric strings. User-entered
// amounts were historically stored as text.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	var f float64
	if err := json.Unmarshal(data, &f); err == nil {
		*n = Number(f)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		*n = 0
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		// Unparseable text counts as zero, like an empty form field.
		*n = 0
		return nil
	}
	*n = Number(f)
	return nil
}

// Customer is a client project. Balance is the running profit/loss of the
// project: payments received minus expenses charged to it.
type Customer struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Phone       string         `json:"phone"`
	Address     string         `json:"address"`
	Email       string         `json:"email"`
	Balance     float64        `json:"balance"`
	ProjectType string         `json:"projectType"`
	ProjectCost Number         `json:"projectCost"`
	Status      CustomerStatus `json:"status"`
	Notes       string         `json:"notes,omitempty"`
	CreatedAt   string         `json:"createdAt,omitempty"`
}

func (c Customer) GetID() string { return c.ID }

// Remaining is what is still owed against the project cost.
func (c Customer) Remaining() float64 {
	return float64(c.ProjectCost) - c.Balance
}
