package models

// CorpusArticle is one line of a reading-comprehension corpus file.
type CorpusArticle struct {
	Title     string  `json:"title"`
	Text      string  `json:"text"`
	Domain    string  `json:"domain"`
	FKGrade   float64 `json:"fk_grade"`
	Words     uint64  `json:"words"`
	Sentences uint64  `json:"sentences"`
}

// CorpusTierInfo reports whether a family/tier corpus was found.
type CorpusTierInfo struct {
	Available     bool `json:"available"`
	TotalArticles int  `json:"totalArticles"`
}
