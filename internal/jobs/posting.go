package jobs

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// SourceCompany is the display name of the board every live posting comes from.
const SourceCompany = "Somewhere.com"

type Postings struct {
	Items []*Posting
}

// Posting is one normalized job listing extracted from a single source URL.
type Posting struct {
	Title         string `json:"title"`
	Company       string `json:"company"`
	Salary        int    `json:"salary"`
	SalaryDisplay string `json:"salary_display,omitempty"`
	Contract      string `json:"contract,omitempty"`
	Description   string `json:"description,omitempty"`
	// ApplyURL is copied verbatim from the source URL. It is never derived,
	// reformatted or rewritten at any stage.
	ApplyURL string `json:"apply_url"`
	// SearchText is the lowercased title+description used only for filtering.
	SearchText string `json:"-"`
	// Synthetic marks fallback demo postings so they stay distinguishable
	// from scraped data.
	Synthetic bool `json:"-"`
}

func (p *Postings) Len() int {
	return len(p.Items)
}

func (p *Postings) Titles() []string {
	titles := make([]string, 0, len(p.Items))
	for _, posting := range p.Items {
		titles = append(titles, posting.Title)
	}
	return titles
}

func (p *Postings) FindByApplyURL(url string) *Posting {
	for _, posting := range p.Items {
		if posting.ApplyURL == url {
			return posting
		}
	}
	return nil
}

type Matches struct {
	Items []*Match
}

// Match is the terminal artifact returned to the caller: one posting scored
// and explained by the ranking oracle.
type Match struct {
	Title      string `json:"title"`
	Company    string `json:"company"`
	Salary     string `json:"salary"`
	Contract   string `json:"contract"`
	MatchScore int    `json:"match_score"`
	Reason     string `json:"reason"`
	ApplyURL   string `json:"apply_url"`
}

func (m *Matches) Len() int {
	return len(m.Items)
}

func (m *Matches) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "matches_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return "", err
	}
	return file.Name(), nil
}

// Report by company.
func (m *Matches) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	for _, match := range m.Items {
		key := match.Company
		if key == "" {
			key = "unknown"
		}
		report[key] = append(report[key], map[string]string{
			"title":       match.Title,
			"salary":      match.Salary,
			"contract":    match.Contract,
			"match_score": fmt.Sprintf("%d", match.MatchScore),
			"reason":      match.Reason,
			"apply_url":   match.ApplyURL,
		})
	}
	return report
}

// Fallback returns the deterministic demo set substituted when live
// aggregation yields nothing. Every entry is tagged Synthetic.
func Fallback() *Postings {
	postings := []*Posting{
		{
			Title:         "Senior UX Designer",
			Salary:        5000,
			SalaryDisplay: "$5,000",
			Contract:      "6 Months",
			Description:   "Looking for a designer with fintech experience and high-fidelity prototyping skills.",
			ApplyURL:      "https://somewhere.com/jobs/apply?slug=demo-senior-ux-designer",
		},
		{
			Title:         "Frontend Developer",
			Salary:        4500,
			SalaryDisplay: "$4,500",
			Contract:      "12 Months",
			Description:   "React specialist to build complex dashboards for financial data.",
			ApplyURL:      "https://somewhere.com/jobs/apply?slug=demo-frontend-developer",
		},
		{
			Title:         "Project Manager",
			Salary:        3800,
			SalaryDisplay: "$3,800",
			Contract:      "6 Months",
			Description:   "Lead a team of developers and designers in Cape Town and remote.",
			ApplyURL:      "https://somewhere.com/jobs/apply?slug=demo-project-manager",
		},
		{
			Title:         "Data Scientist",
			Salary:        6000,
			SalaryDisplay: "$6,000",
			Contract:      "Freelance",
			Description:   "Machine learning expert needed for a short-term risk analysis project.",
			ApplyURL:      "https://somewhere.com/jobs/apply?slug=demo-data-scientist",
		},
	}

	for _, p := range postings {
		p.Company = SourceCompany
		p.Synthetic = true
		p.SearchText = strings.ToLower(p.Title + " " + p.Description)
	}

	return &Postings{Items: postings}
}
