package models

// SingletonID is the fixed id of the settings and contract options rows.
const SingletonID = "global"

// Settings holds company-wide configuration.
type Settings struct {
	ID                       string  `json:"id"`
	CompanyName              string  `json:"companyName"`
	Currency                 string  `json:"currency"`
	CurrencySymbol           string  `json:"currencySymbol,omitempty"`
	TaxRate                  float64 `json:"taxRate"`
	Address                  string  `json:"address"`
	Phone                    string  `json:"phone"`
	InspectionFee            float64 `json:"inspectionFee"`
	RepresentativeName       string  `json:"representativeName"`
	RepresentativeNationalID string  `json:"representativeNationalId"`
}

// ContractOptions holds the pick lists offered when drafting a contract.
type ContractOptions struct {
	ID              string   `json:"id"`
	ProjectTypes    []string `json:"projectTypes"`
	WoodTypes       []string `json:"woodTypes"`
	InnerShellTypes []string `json:"innerShellTypes"`
	HingeTypes      []string `json:"hingeTypes"`
	SlideTypes      []string `json:"slideTypes"`
	HandleTypes     []string `json:"handleTypes"`
	AccessoryNames  []string `json:"accessoryNames"`
	HangingTypes    []string `json:"hangingTypes"`
	FlipUpTypes     []string `json:"flipUpTypes"`
	LegTypes        []string `json:"legTypes"`
	ToeKickTypes    []string `json:"toeKickTypes"`
	Units           []string `json:"units"`
}
