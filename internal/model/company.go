package model

// Company holds the static attributes of a borrower (dealer). Attributes are
// point-in-time constants: the warehouse keeps no history for the credit
// limit, and owner age and company age are measured at build time, not at
// loan creation. Known approximations carried over from the source system.
type Company struct {
	BorrowerID         string
	CompanyName        string
	RegistrationNumber string
	CountryCode        string
	CommercialPartner  string
	CreditLimit        int
	OwnerAgeYears      int
	DaysSinceFounded   int
}

// Car holds the static loan and collateral attributes joined per loan.
type Car struct {
	CarloanID           string
	BorrowerID          string
	CollateralID        string
	Currency            string
	CarMake             string
	CarModel            string
	CarTransmissionType string
	LoanAmount          float64
	CarSource           int
}
