package models

// InspectionStatus tracks a site visit.
type InspectionStatus string

const (
	InspectionPlanned   InspectionStatus = "planned"
	InspectionDone      InspectionStatus = "completed"
	InspectionCancelled InspectionStatus = "cancelled"
)

// Inspection is a scheduled site visit for a customer. It never touches the ledger.
type Inspection struct {
	ID             string           `json:"id"`
	CustomerID     string           `json:"customerId"`
	Type           string           `json:"type"`
	Date           string           `json:"date"`
	ScheduledDate  string           `json:"scheduledDate"`
	Status         InspectionStatus `json:"status"`
	Representative string           `json:"representative"`
	Attachment     string           `json:"attachment,omitempty"`
	Notes          string           `json:"notes,omitempty"`
}

func (i Inspection) GetID() string { return i.ID }
