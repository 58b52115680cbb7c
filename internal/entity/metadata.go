package entity

// Metadata is the normalized document metadata shared between the extractor
// and the sync engine. Created/Modified are "YYYY-MM-DD HH:MM:SS" strings,
// empty when no timestamp could be recovered even from the filesystem.
type Metadata struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	Created     string  `json:"created"`
	Modified    string  `json:"modified"`
	Description string  `json:"description"`
	SizeMB      float64 `json:"size_mb"`
}
