package entity

// PortfolioData is the result of one load cycle. Replaced wholesale by the next load.
type PortfolioData struct {
	Tokens         []Token         `json:"tokens"`
	NFTCollections []NFTCollection `json:"nftCollections"`
}

// IsEmpty reports whether the wallet holds nothing we can show.
func (d PortfolioData) IsEmpty() bool {
	return len(d.Tokens) == 0 && len(d.NFTCollections) == 0
}

// LoadStatus is the coarse state of the portfolio as seen by a listener.
type LoadStatus string

const (
	StatusIdle    LoadStatus = "idle"
	StatusLoading LoadStatus = "loading"
	StatusLoaded  LoadStatus = "loaded"
	StatusEmpty   LoadStatus = "empty"
	StatusError   LoadStatus = "error"
)

// PortfolioState is what the coordinator publishes after each load transition.
type PortfolioState struct {
	Status  LoadStatus     `json:"status"`
	Address string         `json:"address,omitempty"`
	Data    *PortfolioData `json:"data,omitempty"`
	Message string         `json:"message,omitempty"`
}
