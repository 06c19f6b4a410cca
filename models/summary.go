package models

// SummarizeRequest is the input of a single review summarization call.
type SummarizeRequest struct {
	MangaTitle string   `json:"mangaTitle"`
	Reviews    []string `json:"reviews"`
}

// SummarizeResult holds the pros and cons produced for a title. Both lists
// are non-nil on success; an empty list means there was no clear consensus.
type SummarizeResult struct {
	Pros []string `json:"pros"`
	Cons []string `json:"cons"`
}
