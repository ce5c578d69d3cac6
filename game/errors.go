// game/errors.go
package game

import "errors"

var (
	ErrGameNotFound      = errors.New("game not found")
	ErrGameFull          = errors.New("game already has two players")
	ErrCannotJoinOwnGame = errors.New("cannot join your own game")
	ErrQuotaExceeded     = errors.New("too many pending games")
	ErrNotParticipant    = errors.New("not a player in this game")
	ErrNotCreator        = errors.New("only the creator can cancel a game")
	ErrAlreadyStarted    = errors.New("game already started")
	ErrNotInProgress     = errors.New("game is not in progress")
	ErrNotYourTurn       = errors.New("not your turn")
	ErrCardNotInHand     = errors.New("card not in hand")
	ErrTrickNotReady     = errors.New("trick is not ready to resolve")
	ErrTrickPending      = errors.New("trick is awaiting resolution")
	ErrNoNextGame        = errors.New("cannot start next game")
	ErrInvalidVariant    = errors.New("variant must be 3 or 9")
	ErrInvalidType       = errors.New("type must be standalone or match")
	ErrInvalidStake      = errors.New("stake out of range")
)
