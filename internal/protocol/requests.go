package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/lox/redtens/internal/deck"
)

const (
	// Seats is the number of seats at a table.
	Seats = 7

	MaxCodeLength = 32
	MaxNameLength = 24
	// MaxCardsPerPlay bounds a play to the largest possible hand.
	MaxCardsPerPlay = deck.PlayingSetSize
)

var (
	ErrUnknownType    = errors.New("unknown message type")
	ErrInvalidPayload = errors.New("invalid payload")
)

// Request is a decoded, validated client intent. The concrete types below
// form a closed set; Decode is the only way to obtain one from the wire.
type Request interface {
	Kind() MessageType
	Room() string
	validate() error
}

type roomRef struct {
	Code string `json:"code"`
}

func (r roomRef) Room() string { return r.Code }

func (r roomRef) validateCode() error {
	if strings.TrimSpace(r.Code) == "" {
		return fmt.Errorf("%w: room code required", ErrInvalidPayload)
	}
	if len(r.Code) > MaxCodeLength {
		return fmt.Errorf("%w: room code too long", ErrInvalidPayload)
	}
	return nil
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: name required", ErrInvalidPayload)
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return fmt.Errorf("%w: name longer than %d characters", ErrInvalidPayload, MaxNameLength)
	}
	return nil
}

func validateCards(cards []deck.Card, required bool) error {
	if required && len(cards) == 0 {
		return fmt.Errorf("%w: select cards to play", ErrInvalidPayload)
	}
	if len(cards) > MaxCardsPerPlay {
		return fmt.Errorf("%w: too many cards", ErrInvalidPayload)
	}
	return nil
}

// CreateRoom opens a room. An empty code asks the server to mint one.
type CreateRoom struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

func (CreateRoom) Kind() MessageType { return TypeCreateRoom }
func (r CreateRoom) Room() string    { return r.Code }
func (r CreateRoom) validate() error {
	if len(r.Code) > MaxCodeLength {
		return fmt.Errorf("%w: room code too long", ErrInvalidPayload)
	}
	return validateName(r.Name)
}

type JoinRoom struct {
	roomRef
	Name string `json:"name"`
}

func (JoinRoom) Kind() MessageType { return TypeJoinRoom }
func (r JoinRoom) validate() error {
	if err := r.validateCode(); err != nil {
		return err
	}
	return validateName(r.Name)
}

type LeaveRoom struct{ roomRef }

func (LeaveRoom) Kind() MessageType  { return TypeLeaveRoom }
func (r LeaveRoom) validate() error { return r.validateCode() }

type TakeSeat struct {
	roomRef
	Seat int `json:"seat"`
}

func (TakeSeat) Kind() MessageType { return TypeTakeSeat }
func (r TakeSeat) validate() error {
	if err := r.validateCode(); err != nil {
		return err
	}
	if r.Seat < 0 || r.Seat >= Seats {
		return fmt.Errorf("%w: seat must be between 0 and %d", ErrInvalidPayload, Seats-1)
	}
	return nil
}

type SetReady struct {
	roomRef
	Ready bool `json:"ready"`
}

func (SetReady) Kind() MessageType  { return TypeSetReady }
func (r SetReady) validate() error { return r.validateCode() }

type StartGame struct{ roomRef }

func (StartGame) Kind() MessageType  { return TypeStartGame }
func (r StartGame) validate() error { return r.validateCode() }

type RestartGame struct{ roomRef }

func (RestartGame) Kind() MessageType  { return TypeRestartGame }
func (r RestartGame) validate() error { return r.validateCode() }

type EndGame struct{ roomRef }

func (EndGame) Kind() MessageType  { return TypeEndGame }
func (r EndGame) validate() error { return r.validateCode() }

type ResetScores struct{ roomRef }

func (ResetScores) Kind() MessageType  { return TypeResetScores }
func (r ResetScores) validate() error { return r.validateCode() }

// Play actions
const (
	ActionPlay = "play"
	ActionPass = "pass"
)

type PlayAction struct {
	roomRef
	Action string      `json:"action"`
	Cards  []deck.Card `json:"cards,omitempty"`
}

func (PlayAction) Kind() MessageType { return TypePlayAction }
func (r PlayAction) validate() error {
	if err := r.validateCode(); err != nil {
		return err
	}
	switch r.Action {
	case ActionPlay:
		return validateCards(r.Cards, true)
	case ActionPass:
		return nil
	}
	return fmt.Errorf("%w: unknown action %q", ErrInvalidPayload, r.Action)
}

// Wind choices
const (
	WindGive = "give"
	WindStop = "stop"
)

type WindChoice struct {
	roomRef
	Choice string      `json:"choice"`
	Cards  []deck.Card `json:"cards,omitempty"`
}

func (WindChoice) Kind() MessageType { return TypeWindChoice }
func (r WindChoice) validate() error {
	if err := r.validateCode(); err != nil {
		return err
	}
	switch r.Choice {
	case WindStop:
		return validateCards(r.Cards, true)
	case WindGive:
		return nil
	}
	return fmt.Errorf("%w: unknown wind choice %q", ErrInvalidPayload, r.Choice)
}

type ChatMessage struct {
	roomRef
	Text string `json:"text"`
}

func (ChatMessage) Kind() MessageType { return TypeChatMessage }
func (r ChatMessage) validate() error {
	if err := r.validateCode(); err != nil {
		return err
	}
	if strings.TrimSpace(r.Text) == "" {
		return fmt.Errorf("%w: empty chat message", ErrInvalidPayload)
	}
	return nil
}

type VoiceStatus struct {
	roomRef
	Speaking bool `json:"speaking"`
}

func (VoiceStatus) Kind() MessageType  { return TypeVoiceStatus }
func (r VoiceStatus) validate() error { return r.validateCode() }

// VoiceChunk carries an opaque audio payload that is relayed untouched.
type VoiceChunk struct {
	roomRef
	Chunk    json.RawMessage `json:"chunk"`
	MimeType string          `json:"mimeType,omitempty"`
}

func (VoiceChunk) Kind() MessageType { return TypeVoiceChunk }
func (r VoiceChunk) validate() error {
	if err := r.validateCode(); err != nil {
		return err
	}
	if len(r.Chunk) == 0 || string(r.Chunk) == "null" {
		return fmt.Errorf("%w: empty voice chunk", ErrInvalidPayload)
	}
	return nil
}

// Decode turns an envelope into a validated Request.
func Decode(msg *Message) (Request, error) {
	var req Request
	switch msg.Type {
	case TypeCreateRoom:
		req = &CreateRoom{}
	case TypeJoinRoom:
		req = &JoinRoom{}
	case TypeLeaveRoom:
		req = &LeaveRoom{}
	case TypeTakeSeat:
		req = &TakeSeat{}
	case TypeSetReady:
		req = &SetReady{}
	case TypeStartGame:
		req = &StartGame{}
	case TypeRestartGame:
		req = &RestartGame{}
	case TypeEndGame:
		req = &EndGame{}
	case TypeResetScores:
		req = &ResetScores{}
	case TypePlayAction:
		req = &PlayAction{}
	case TypeWindChoice:
		req = &WindChoice{}
	case TypeChatMessage:
		req = &ChatMessage{}
	case TypeVoiceStatus:
		req = &VoiceStatus{}
	case TypeVoiceChunk:
		req = &VoiceChunk{}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownType, msg.Type)
	}

	if len(msg.Data) == 0 {
		return nil, fmt.Errorf("%w: missing data for %s", ErrInvalidPayload, msg.Type)
	}
	if err := json.Unmarshal(msg.Data, req); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, msg.Type, err)
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	return req, nil
}
