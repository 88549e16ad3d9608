package intent

import (
	"regexp"
	"strconv"
	"strings"
)

// Scenario labels the router's best-effort classification of a query.
type Scenario string

const (
	ScenarioPremiumReport      Scenario = "premium_report"
	ScenarioActiveOpen         Scenario = "active_open"
	ScenarioUpdateEmailHistory Scenario = "update_email_history"
	ScenarioBillingEscalation  Scenario = "billing_escalation"
	ScenarioUpgrade            Scenario = "upgrade"
	ScenarioAccountHelp        Scenario = "account_help"
	ScenarioSimpleLookup       Scenario = "simple_lookup"
	ScenarioMultiIntent        Scenario = "multi_intent"
	ScenarioGeneric            Scenario = "generic"
)

type rule struct {
	match    func(q string) bool
	scenario Scenario
}

func anyOf(substrs ...string) func(string) bool {
	return func(q string) bool {
		for _, s := range substrs {
			if strings.Contains(q, s) {
				return true
			}
		}
		return false
	}
}

func allOf(substrs ...string) func(string) bool {
	return func(q string) bool {
		for _, s := range substrs {
			if !strings.Contains(q, s) {
				return false
			}
		}
		return true
	}
}

// rules is evaluated in order and the first match wins. The order is
// load-bearing: premium/high-priority phrasing must shadow billing phrasing,
// compound update+history must shadow bare ticket+update, and so on.
// Reordering entries changes which branch ambiguous queries land in.
var rules = []rule{
	{anyOf("high-priority", "premium"), ScenarioPremiumReport},
	{allOf("active customers", "open tickets"), ScenarioActiveOpen},
	{allOf("update my email", "ticket history"), ScenarioUpdateEmailHistory},
	{func(q string) bool {
		return anyOf("cancel", "refund", "charged twice", "billing")(q) &&
			strings.Contains(q, "customer id")
	}, ScenarioBillingEscalation},
	{anyOf("charged twice", "refund"), ScenarioBillingEscalation},
	{anyOf("upgrade"), ScenarioUpgrade},
	{anyOf("help with my account", "check my details"), ScenarioAccountHelp},
	{anyOf("customer information"), ScenarioSimpleLookup},
	{allOf("ticket history", "update"), ScenarioMultiIntent},
}

// Classify maps a query to exactly one scenario, defaulting to generic.
func Classify(query string) Scenario {
	q := strings.ToLower(query)
	for _, r := range rules {
		if r.match(q) {
			return r.scenario
		}
	}
	return ScenarioGeneric
}

var (
	customerIDPattern = regexp.MustCompile(`(?i)(?:customer\s*(?:id)?|id)\s*(?:is|:)?\s*(\d+)`)
	emailPattern      = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
)

// idKeywordHints maps recognizable phrasings to a known demo account when
// the customer omits their id. Billing complaints never infer an id; those
// queries must go through the clarification path.
var idKeywordHints = []struct {
	phrases    []string
	customerID int64
}{
	{[]string{"upgrade my account", "upgrade assistance"}, 3},
}

// ExtractCustomerID parses "customer id 5" / "id: 5" style phrases, falling
// back to keyword hints. Absence is a normal outcome, never an error.
func ExtractCustomerID(query string) (int64, bool) {
	if m := customerIDPattern.FindStringSubmatch(query); m != nil {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err == nil {
			return id, true
		}
	}
	q := strings.ToLower(query)
	for _, hint := range idKeywordHints {
		for _, phrase := range hint.phrases {
			if strings.Contains(q, phrase) {
				return hint.customerID, true
			}
		}
	}
	return 0, false
}

// ExtractEmail returns the first email-shaped token in the query.
func ExtractEmail(query string) (string, bool) {
	m := emailPattern.FindString(query)
	return m, m != ""
}
