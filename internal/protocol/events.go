package protocol

import (
	"encoding/json"

	"github.com/lox/redtens/internal/deck"
)

// TurnDurationMs is the fixed per-turn allowance advertised to clients.
const TurnDurationMs = 20000

// Camps
const (
	TeamRed   = "RED"
	TeamBlack = "BLACK"
	Draw      = "DRAW"
)

// Server -> Client payloads

type Welcome struct {
	PlayerID     string `json:"playerId"`
	TurnDuration int    `json:"turnDuration"`
}

// PlayerView is the public face of a member: never hands or camp.
type PlayerView struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Seat  *int   `json:"seat"`
	Ready bool   `json:"ready"`
}

type ChatEntry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// WindView is the public part of an active give-way sequence.
type WindView struct {
	FinisherID  string      `json:"finisherId"`
	SkipSeat    int         `json:"skipSeat"`
	CurrentSeat *int        `json:"currentSeat"`
	QueueSeats  []int       `json:"queueSeats"`
	BaseCards   []deck.Card `json:"baseCards"`
}

type RoomState struct {
	Code       string             `json:"code"`
	HostID     string             `json:"hostId"`
	Started    bool               `json:"started"`
	Players    []PlayerView       `json:"players"`
	TurnSeat   *int               `json:"turnSeat"`
	TurnEndsAt *int64             `json:"turnEndsAt"`
	Scores     map[string]float64 `json:"scores"`
	TeamScores map[string]float64 `json:"teamScores"`
	ChatLog    []ChatEntry        `json:"chatLog"`
	WindState  *WindView          `json:"windState"`
}

type TurnUpdate struct {
	TurnSeat     *int   `json:"turnSeat"`
	TurnEndsAt   *int64 `json:"turnEndsAt"`
	ServerNow    int64  `json:"serverNow"`
	TurnDuration int    `json:"turnDuration"`
}

type YourHand struct {
	Code string      `json:"code"`
	Hand []deck.Card `json:"hand"`
}

type GameStart struct {
	Code string `json:"code"`
}

type PlayMade struct {
	PlayerID string      `json:"playerId"`
	Cards    []deck.Card `json:"cards"`
}

type ActionPlayed struct {
	PlayerID string `json:"playerId"`
	Action   string `json:"action"`
	Timeout  bool   `json:"timeout,omitempty"`
}

type RoundResult struct {
	Result             string             `json:"result"`
	Message            string             `json:"message"`
	RemainingOpponents int                `json:"remainingOpponents"`
	Scores             map[string]float64 `json:"scores"`
	TeamScores         map[string]float64 `json:"teamScores"`
}

type GameEnded struct {
	Code   string `json:"code"`
	Reason string `json:"reason,omitempty"`
}

type Notice struct {
	Message string `json:"message"`
}

type VoiceStatusEvent struct {
	ID       string `json:"id"`
	Speaking bool   `json:"speaking"`
}

type VoiceChunkEvent struct {
	From     string          `json:"from"`
	Chunk    json.RawMessage `json:"chunk"`
	MimeType string          `json:"mimeType,omitempty"`
}

// RoomSummary is the admin listing served over HTTP.
type RoomSummary struct {
	Code    string `json:"code"`
	Members int    `json:"members"`
	Seated  int    `json:"seated"`
	Started bool   `json:"started"`
}
