package domain

import "time"

// Survey is a question sent to a list of recipients by email. Response
// counters are mutated only through the store's conditional update once the
// survey has been sent; the owning user never edits a sent survey.
type Survey struct {
	ID              string
	UserID          string
	Title           string
	Subject         string
	Body            string
	DateSent        time.Time
	YesCount        int
	NoCount         int
	LastRespondedAt *time.Time
	Recipients      []Recipient
}

// Recipient is a survey addressee. It exists only inside its parent survey
// and its Responded flag flips false to true at most once.
type Recipient struct {
	Email     string
	Responded bool
}

// User owns surveys and pays for sends with credits.
type User struct {
	ID      string
	Credits int
}

// Response choices embedded in the tracked survey links.
const (
	ChoiceYes = "yes"
	ChoiceNo  = "no"
)

// ValidChoice reports whether choice is one of the two answer literals.
func ValidChoice(choice string) bool {
	return choice == ChoiceYes || choice == ChoiceNo
}
