package models

// GroupCount is one bucket of a grouped bug count.
type GroupCount struct {
	Value string `json:"value"`
	Count int64  `json:"count"`
}
