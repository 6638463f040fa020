package server

// MessageType represents a WebSocket message type with type safety
type MessageType string

// WebSocket message type constants
// These are used for client-server communication protocol
const (
	// Client to server messages
	MessageTypeCreateGame MessageType = "create_game"
	MessageTypeJoinGame   MessageType = "join_game"
	MessageTypeClaimSeat  MessageType = "claim_seat"
	MessageTypeStartGame  MessageType = "start_game"
	MessageTypeNextDeal   MessageType = "next_deal"
	MessageTypeSubmitBid  MessageType = "submit_bid"
	MessageTypeSubmitPlay MessageType = "submit_play"

	// Server to client messages
	MessageTypeError       MessageType = "error"
	MessageTypeGameCreated MessageType = "game_created"
	MessageTypeGameJoined  MessageType = "game_joined"
	MessageTypeLobbyState  MessageType = "lobby_state"
	MessageTypeSeatClaimed MessageType = "seat_claimed"

	// Deal events forwarded to clients
	MessageTypeDealStarted    MessageType = "deal_started"
	MessageTypeHandDealt      MessageType = "hand_dealt"
	MessageTypeBidMade        MessageType = "bid_made"
	MessageTypeAuctionSettled MessageType = "auction_settled"
	MessageTypePassedOut      MessageType = "passed_out"
	MessageTypeCardPlayed     MessageType = "card_played"
	MessageTypeDummyRevealed  MessageType = "dummy_revealed"
	MessageTypeTrickCompleted MessageType = "trick_completed"
	MessageTypeTrickCleared   MessageType = "trick_cleared"
	MessageTypeDealScored     MessageType = "deal_scored"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}
