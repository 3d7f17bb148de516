package models

// Employee is a workshop staff member.
type Employee struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Position string  `json:"position"`
	Phone    string  `json:"phone"`
	Salary   float64 `json:"salary"`
	JoinDate string  `json:"joinDate,omitempty"`
}

func (e Employee) GetID() string { return e.ID }

// RecurringExpense is a template for a periodic payment such as rent.
type RecurringExpense struct {
	ID         string  `json:"id"`
	Label      string  `json:"label"`
	Amount     float64 `json:"amount"`
	Category   string  `json:"category"`
	Account    string  `json:"account"`
	DayOfMonth int     `json:"dayOfMonth,omitempty"`
}

func (r RecurringExpense) GetID() string { return r.ID }
