// Package agents holds the four narrative stage functions of the retention
// pipeline. Each stage looks the customer profile up fresh, builds a request
// from the previous stage's typed output, and delegates the narrative to the
// text-generation collaborator.
package agents

import (
	"fmt"
	"strings"

	"github.com/gunter0128/CRM-AI-retention-agents/internal/domain"
)

// CustomerData is the slice of the data store the stages need.
type CustomerData interface {
	GetCustomerProfile(customerID string) (domain.CustomerRecord, error)
	PredictChurnProbability(customerID string) (float64, error)
}

// renderProfile formats a profile as "field = value" lines for prompts.
func renderProfile(p domain.CustomerRecord) string {
	var b strings.Builder
	for _, f := range p.Fields() {
		fmt.Fprintf(&b, "- %s = %s\n", f.Name, f.Value)
	}
	return b.String()
}
