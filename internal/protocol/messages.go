// Package protocol defines the JSON websocket protocol spoken between Red
// Tens clients and the server.
package protocol

import (
	"encoding/json"
	"time"
)

// MessageType identifies the type of message
type MessageType string

const (
	// Client -> Server
	TypeCreateRoom  MessageType = "create_room"
	TypeJoinRoom    MessageType = "join_room"
	TypeLeaveRoom   MessageType = "leave_room"
	TypeTakeSeat    MessageType = "take_seat"
	TypeSetReady    MessageType = "set_ready"
	TypeStartGame   MessageType = "start_game"
	TypeRestartGame MessageType = "restart_game"
	TypeEndGame     MessageType = "end_game"
	TypeResetScores MessageType = "reset_scores"
	TypePlayAction  MessageType = "play_action"
	TypeWindChoice  MessageType = "wind_choice"

	// Pass-through relays, both directions
	TypeChatMessage MessageType = "chat_message"
	TypeVoiceStatus MessageType = "voice_status"
	TypeVoiceChunk  MessageType = "voice_chunk"

	// Server -> Client
	TypeWelcome      MessageType = "welcome"
	TypeRoomState    MessageType = "room_state"
	TypeTurnUpdate   MessageType = "turn_update"
	TypeYourHand     MessageType = "your_hand"
	TypeGameStart    MessageType = "game_start"
	TypePlayMade     MessageType = "play_made"
	TypeActionPlayed MessageType = "action_played"
	TypeWindState    MessageType = "wind_state"
	TypeRoundResult  MessageType = "round_result"
	TypeGameEnded    MessageType = "game_ended"
	TypeError        MessageType = "error_message"
)

// String returns the string representation of the message type
func (mt MessageType) String() string {
	return string(mt)
}

// Message is the envelope for every websocket frame.
type Message struct {
	Type      MessageType     `json:"type"`
	Data      json.RawMessage `json:"data,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// NewMessage creates a new message with the current timestamp
func NewMessage(messageType MessageType, data any) (*Message, error) {
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	return &Message{
		Type:      messageType,
		Data:      dataBytes,
		Timestamp: time.Now(),
	}, nil
}
