package port

import "wallet_portfolio/internal/domain/entity"

// PriceStreamer streams live prices for a set of held tokens.
type PriceStreamer interface {
	// Start replaces any running session with one subscribed to tokens.
	// The channel yields one full snapshot per accepted update and is closed when the session ends.
	Start(tokens []entity.Token) <-chan entity.PriceSnapshot

	// Disconnect ends the current session, if any, and waits for it to finish.
	Disconnect()
}
