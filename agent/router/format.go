package router

import (
	"encoding/json"
	"fmt"

	contractx "supportmesh/agent/contract"
)

func formatSupportResponse(res *contractx.SupportResult) string {
	if res == nil {
		return "Support agent returned no data."
	}
	if res.RequiresContext {
		if res.NotesForRouter != "" {
			return res.NotesForRouter
		}
		missing := res.ContextType
		if missing == "" {
			missing = "additional information"
		}
		return fmt.Sprintf("Support requires more %s before responding.", missing)
	}

	final := fmt.Sprintf("Final customer message:\n%s", res.CustomerResponse)
	if res.NotesForRouter != "" {
		final += fmt.Sprintf("\n\n[Router note: %s]", res.NotesForRouter)
	}
	return final
}

func formatDataResponse(res *contractx.DataResult) string {
	if res == nil {
		return "Data agent returned no data."
	}

	detail := res.HandoffSummary
	if res.ContextPayload != nil {
		if encoded, err := json.MarshalIndent(res.ContextPayload, "", "  "); err == nil {
			detail = fmt.Sprintf("%s\n%s", res.HandoffSummary, encoded)
		}
	}
	return fmt.Sprintf("Data Retrieval Complete: %s", detail)
}
