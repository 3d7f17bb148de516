package models

// Purchase is a material or service line. Lines created together share a
// SerialNumber of the form PO-<unix millis>.
type Purchase struct {
	ID             string  `json:"id"`
	MaterialName   string  `json:"materialName"`
	Quantity       float64 `json:"quantity"`
	Unit           string  `json:"unit,omitempty"`
	UnitPrice      float64 `json:"unitPrice"`
	Total          float64 `json:"total"`
	Date           string  `json:"date"`
	Supplier       string  `json:"supplier"`
	Account        string  `json:"account"`
	CustomerName   string  `json:"customerName,omitempty"`
	CustomerID     string  `json:"customerId,omitempty"`
	SerialNumber   string  `json:"serialNumber"`
	SkipInventory  bool    `json:"skipInventory,omitempty"`
	SkipFinancials bool    `json:"skipFinancials,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

func (p Purchase) GetID() string { return p.ID }

// LineTotal is quantity times unit price.
func (p Purchase) LineTotal() float64 {
	return p.Quantity * p.UnitPrice
}

// ChargeTarget is the name the purchase expense is booked against.
func (p Purchase) ChargeTarget() string {
	if p.CustomerName != "" {
		return p.CustomerName
	}
	return p.Account
}

// InventoryItem is a stocked material. Stock never goes below zero.
type InventoryItem struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Unit      string  `json:"unit"`
	Stock     float64 `json:"stock"`
	MinStock  float64 `json:"minStock"`
	Category  string  `json:"category"`
	LastPrice float64 `json:"lastPrice"`
}

func (i InventoryItem) GetID() string { return i.ID }

// IsLow reports whether stock is at or under the reorder threshold.
func (i InventoryItem) IsLow() bool {
	return i.Stock <= i.MinStock
}

// MovementType classifies an inventory movement.
type MovementType string

const (
	MovementIn     MovementType = "IN"
	MovementOut    MovementType = "OUT"
	MovementAdjust MovementType = "ADJUST"
)

// InventoryMovement is an append-only audit row.
type InventoryMovement struct {
	ID       string       `json:"id"`
	ItemID   string       `json:"itemId"`
	ItemName string       `json:"itemName"`
	Type     MovementType `json:"type"`
	Quantity float64      `json:"quantity"`
	Reason   string       `json:"reason"`
	Date     string       `json:"date"`
	Value    float64      `json:"value,omitempty"`
}

func (m InventoryMovement) GetID() string { return m.ID }

// ServiceItem is a catalogue entry with a default price, used to prefill
// service purchase lines.
type ServiceItem struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	DefaultPrice float64 `json:"defaultPrice"`
}

func (s ServiceItem) GetID() string { return s.ID }
