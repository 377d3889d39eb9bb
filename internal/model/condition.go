package model

// ConditionMatch is one normalized hit from the classification search.
// CleanTitle is Title with any markup removed.
type ConditionMatch struct {
	Code       string `json:"code"`
	Title      string `json:"title"`
	Definition string `json:"definition"`
	EntityID   string `json:"entity_id"`
	CleanTitle string `json:"clean_title"`
}
