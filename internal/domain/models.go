package domain

import "strconv"

// CustomerRecord is one row of the customer profile table. Fields mirror the
// raw Telco dataset; MonthlyCharges and TotalCharges stay as raw strings
// because the profile table is deliberately less transformed than the feature
// table (TotalCharges can be blank for short-tenure customers).
type CustomerRecord struct {
	CustomerID      string `json:"customer_id"`
	Gender          string `json:"gender"`
	SeniorCitizen   int    `json:"senior_citizen"`
	Partner         string `json:"partner"`
	Dependents      string `json:"dependents"`
	Tenure          int    `json:"tenure"`
	PhoneService    string `json:"phone_service"`
	MultipleLines   string `json:"multiple_lines"`
	InternetService string `json:"internet_service"`
	Contract        string `json:"contract"`
	MonthlyCharges  string `json:"monthly_charges"`
	TotalCharges    string `json:"total_charges"`
	PaymentMethod   string `json:"payment_method"`
}

// Field is a name/value pair used when rendering a profile for prompts.
type Field struct {
	Name  string
	Value string
}

// Fields returns the record's fields in a fixed presentation order.
func (r CustomerRecord) Fields() []Field {
	return []Field{
		{"customerID", r.CustomerID},
		{"gender", r.Gender},
		{"SeniorCitizen", strconv.Itoa(r.SeniorCitizen)},
		{"Partner", r.Partner},
		{"Dependents", r.Dependents},
		{"tenure", strconv.Itoa(r.Tenure)},
		{"PhoneService", r.PhoneService},
		{"MultipleLines", r.MultipleLines},
		{"InternetService", r.InternetService},
		{"Contract", r.Contract},
		{"MonthlyCharges", r.MonthlyCharges},
		{"TotalCharges", r.TotalCharges},
		{"PaymentMethod", r.PaymentMethod},
	}
}

// AnalystResult is stage 1 output: scored risk plus the narrative analysis.
type AnalystResult struct {
	CustomerID       string  `json:"customer_id"`
	ChurnProbability float64 `json:"churn_probability"`
	Analysis         string  `json:"analysis"`
}

// ReasoningResult is stage 2 output: the churn-cause narrative.
type ReasoningResult struct {
	CustomerID string `json:"customer_id"`
	Reasoning  string `json:"reasoning"`
}

// CampaignResult is stage 3 output: retention offer plan plus the value tier
// it was scaled to.
type CampaignResult struct {
	CustomerID   string       `json:"customer_id"`
	ValueSegment ValueSegment `json:"value_segment"`
	CampaignPlan string       `json:"campaign_plan"`
}

// CommunicationResult is stage 4 output: customer-facing email/SMS/call copy.
type CommunicationResult struct {
	CustomerID     string `json:"customer_id"`
	Communications string `json:"communications"`
}

// PipelineResult aggregates the four stage outputs for one run.
type PipelineResult struct {
	RunID          string              `json:"run_id"`
	CustomerID     string              `json:"customer_id"`
	Analyst        AnalystResult       `json:"analyst"`
	Reasoning      ReasoningResult     `json:"reasoning"`
	Campaign       CampaignResult      `json:"campaign"`
	Communications CommunicationResult `json:"communications"`
}
