package domain

// Status is the lifecycle label of a Submission.
type Status string

const (
	StatusNew       Status = "new"
	StatusContacted Status = "contacted"
	StatusQualified Status = "qualified"
	StatusConverted Status = "converted"
	StatusClosed    Status = "closed"
)

// Statuses lists the vocabulary in display order.
var Statuses = []Status{StatusNew, StatusContacted, StatusQualified, StatusConverted, StatusClosed}

var statusLabels = map[Status]string{
	StatusNew:       "New",
	StatusContacted: "Contacted",
	StatusQualified: "Qualified Lead",
	StatusConverted: "Converted",
	StatusClosed:    "Closed",
}

// ParseStatus returns the Status for s and whether it belongs to the vocabulary.
func ParseStatus(s string) (Status, bool) {
	st := Status(s)
	return st, st.Valid()
}

// Valid reports whether s is part of the status vocabulary.
func (s Status) Valid() bool {
	_, ok := statusLabels[s]
	return ok
}

// Label is the English display label; templates translate it.
func (s Status) Label() string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

// InvestmentType is the kind of unit a lead is asking about.
type InvestmentType string

const (
	InvestmentMedical    InvestmentType = "medical"
	InvestmentCommercial InvestmentType = "commercial"
	InvestmentPharmacy   InvestmentType = "pharmacy"
	InvestmentRestaurant InvestmentType = "restaurant"
	InvestmentOther      InvestmentType = "other"
)

// InvestmentTypes lists the vocabulary in display order.
var InvestmentTypes = []InvestmentType{
	InvestmentMedical,
	InvestmentCommercial,
	InvestmentPharmacy,
	InvestmentRestaurant,
	InvestmentOther,
}

var investmentLabels = map[InvestmentType]string{
	InvestmentMedical:    "Medical Unit",
	InvestmentCommercial: "Commercial Unit",
	InvestmentPharmacy:   "Pharmacy",
	InvestmentRestaurant: "Restaurant/Cafe",
	InvestmentOther:      "Other",
}

// ParseInvestmentType returns the InvestmentType for s and whether it is known.
func ParseInvestmentType(s string) (InvestmentType, bool) {
	it := InvestmentType(s)
	return it, it.Valid()
}

// Valid reports whether t is part of the investment vocabulary.
func (t InvestmentType) Valid() bool {
	_, ok := investmentLabels[t]
	return ok
}

// Label is the English display label; templates translate it.
func (t InvestmentType) Label() string {
	if l, ok := investmentLabels[t]; ok {
		return l
	}
	return string(t)
}
