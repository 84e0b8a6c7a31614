package room

import "errors"

// Structural errors mean the caller's view of the world is stale. The
// transport drops them without telling the client.
var (
	ErrRoomNotFound = errors.New("room not found")
	ErrNotMember    = errors.New("not a member of this room")
)

// Precondition errors are reported back to the acting client; the room is
// left untouched.
var (
	ErrRoomExists        = errors.New("room already exists")
	ErrNotHost           = errors.New("only the host can do that")
	ErrHostReady         = errors.New("the host does not need to ready up")
	ErrNotSeated         = errors.New("take a seat before readying up")
	ErrGameInProgress    = errors.New("a round is already in progress")
	ErrGameNotStarted    = errors.New("no round in progress")
	ErrTableNotFull      = errors.New("seven seated players are required to start")
	ErrNotAllReady       = errors.New("not every seated player is ready")
	ErrNotYourTurn       = errors.New("it is not your turn")
	ErrCardsNotHeld      = errors.New("those cards are not in your hand")
	ErrInvalidPattern    = errors.New("invalid combination: play a single, pair, straight or bomb")
	ErrCannotBeat        = errors.New("that play does not beat the standing combination")
	ErrMustLead          = errors.New("you must lead this trick and cannot pass")
	ErrNothingToPass     = errors.New("nothing is standing; lead a combination")
	ErrWindActive        = errors.New("give-way in progress; wait for your wind decision")
	ErrNoWind            = errors.New("no give-way in progress")
	ErrNotWindTurn       = errors.New("it is not your turn to decide the give-way")
	ErrUnknownWindChoice = errors.New("wind choice must be give or stop")
)

// IsStructural reports whether err should be dropped silently.
func IsStructural(err error) bool {
	return errors.Is(err, ErrRoomNotFound) || errors.Is(err, ErrNotMember)
}
