package domain

// Domain contains core models shared by discovery, extraction and dispatch.

// Article is one extracted news article. Published carries the normalized
// timestamp string (see crawler.NormalizePublished); PublishedRaw keeps the
// text exactly as found on the page for diagnostics.
type Article struct {
	URL          string
	Title        string
	Body         string
	Published    string
	PublishedRaw string
}

// RunSummary counts the outcomes of one harvesting run. Tracked is the
// store size after the final prune.
type RunSummary struct {
	Date       string
	Discovered int
	Sent       int
	Skipped    int
	Errored    int
	Tracked    int
}
