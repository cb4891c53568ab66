package dto

import "time"

// ConversionResponse represents the JSON structure returned by
// POST /api/v1/conversions and GET /api/v1/conversions/{id}.
//
// Amounts are decimal strings with two fractional digits so clients never
// round-trip money through floating point.
type ConversionResponse struct {
	ID                  string               `json:"id" example:"3f0c5a6e-7f1e-4a53-9e0c-2c1e0f7b9a10"`
	SourceFilename      string               `json:"source_filename" example:"from_2024-01-01_to_2024-12-31.csv"`
	TaxYear             string               `json:"tax_year" example:"2024"`
	CreatedAt           time.Time            `json:"created_at"`
	ExpiresAt           time.Time            `json:"expires_at"`
	TransactionCount    int                  `json:"transaction_count" example:"2"`
	UniqueSecurityCount int                  `json:"unique_security_count" example:"1"`
	Totals              TotalsResponse       `json:"totals"`
	Preview             []PreviewRowResponse `json:"preview"`
	Artifacts           []ArtifactLink       `json:"artifacts"`
}

// TotalsResponse holds the K4 box totals.
type TotalsResponse struct {
	Gains                string `json:"gains" example:"52.25"`           // Box 3.3
	Losses               string `json:"losses" example:"0.00"`           // Box 3.4
	Net                  string `json:"net" example:"52.25"`             // Box 3.5
	TotalProceeds        string `json:"total_proceeds" example:"550.00"` // Sum of sale totals in SEK
	TotalAcquisitionCost string `json:"total_acquisition_cost" example:"55.00"`
	EstimatedTax         string `json:"estimated_tax" example:"15.68"` // 30% of net
}

// PreviewRowResponse is one row of the transaction preview. Separator rows only
// carry Label.
type PreviewRowResponse struct {
	Separator  bool   `json:"separator,omitempty"`
	Label      string `json:"label,omitempty" example:"... 25 more transactions ..."`
	Date       string `json:"date,omitempty" example:"15.03.2024"`
	Instrument string `json:"instrument,omitempty" example:"AAPL"`
	ISIN       string `json:"isin,omitempty" example:"US0378331005"`
	Quantity   string `json:"quantity,omitempty" example:"1.000000"`
	TotalSEK   string `json:"total_sek,omitempty" example:"150,00 kr"`
	ProfitLoss string `json:"profit_loss,omitempty" example:"14,25 kr"`
}

// ArtifactLink points at a downloadable artifact of a conversion.
type ArtifactLink struct {
	Kind     string `json:"kind" example:"k4"`
	Format   string `json:"format" example:"xlsx"`
	Filename string `json:"filename" example:"2024_K4_Statement.xlsx"`
	URL      string `json:"url" example:"/api/v1/conversions/3f0c5a6e-7f1e-4a53-9e0c-2c1e0f7b9a10/artifacts/k4/xlsx"`
}
