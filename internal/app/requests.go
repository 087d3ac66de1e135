package app

// NewClientRequest is a registration form submission.
type NewClientRequest struct {
	Name          string  `json:"name" form:"name"`
	Address       string  `json:"address" form:"address"`
	Contact       string  `json:"contact" form:"contact"`
	Email         string  `json:"email" form:"email"`
	PackageType   string  `json:"package_type" form:"package_type"`
	StartDate     string  `json:"start_date" form:"start_date"`
	EndDate       string  `json:"end_date" form:"end_date"`
	AmountPaid    float64 `json:"amount_paid" form:"amount_paid"`
	PaymentMethod string  `json:"payment_method" form:"payment_method"`
	Notes         string  `json:"notes" form:"notes"`
}

type RegistrationResult struct {
	Status         string `json:"status"`
	ClientID       string `json:"client_id"`
	ClientName     string `json:"client_name"`
	ClientEmail    string `json:"client_email"`
	ContractNumber string `json:"contract_number"`
	InvoiceNumber  string `json:"invoice_number"`
	Message        string `json:"message"`
	EmailSent      bool   `json:"email_sent"`
}

// SessionRequest is a session form submission for an existing client.
type SessionRequest struct {
	ClientName       string  `json:"client_name" form:"client_name"`
	CoachingType     string  `json:"coaching_type" form:"coaching_type"`
	ParticipantCount int     `json:"participant_count" form:"participant_count"`
	CoachingHours    float64 `json:"coaching_hours" form:"coaching_hours"`
	AmountCollected  float64 `json:"amount_collected" form:"amount_collected"`
	SessionDate      string  `json:"session_date" form:"session_date"`
	NewEndDate       string  `json:"new_end_date" form:"new_end_date"`
	Notes            string  `json:"notes" form:"notes"`
}

type SessionResult struct {
	Status           string  `json:"status"`
	ClientName       string  `json:"client_name"`
	SessionDate      string  `json:"session_date"`
	AmountCollected  float64 `json:"amount_collected"`
	RemainingBalance float64 `json:"remaining_balance"`
	InvoiceNumber    string  `json:"invoice_number"`
	Message          string  `json:"message"`
	EmailSent        bool    `json:"email_sent"`
}

// ClientItem is one entry of the client picker.
type ClientItem struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	PackageType string `json:"package_type"`
	Active      bool   `json:"active"`
}

// SessionItem is one entry of a client's history.
type SessionItem struct {
	SessionDate      string  `json:"session_date"`
	CoachingType     string  `json:"coaching_type"`
	CoachingHours    float64 `json:"coaching_hours"`
	AmountCollected  float64 `json:"amount_collected"`
	RemainingBalance float64 `json:"remaining_balance"`
	PaymentMethod    string  `json:"payment_method"`
	InvoiceNumber    string  `json:"invoice_number"`
	Notes            string  `json:"notes,omitempty"`
}
