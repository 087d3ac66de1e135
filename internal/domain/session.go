package domain

// Session is one row of the Sessions collection. Sessions are append-only.
type Session struct {
	ClientID         string
	ClientName       string
	CoachingType     string
	CoachingHours    float64
	PackageAmount    float64
	AmountCollected  float64
	RemainingBalance float64
	SessionDate      string
	PaymentMethod    PaymentMethod
	ContractNumber   string
	InvoiceNumber    string
	CreatedAt        string
	Notes            string

	Row int
}

// NewSession is the input for recording a session. Client details are
// resolved by name.
type NewSession struct {
	ClientName      string
	CoachingType    string
	CoachingHours   float64
	AmountCollected float64
	SessionDate     string
	Notes           string
}
