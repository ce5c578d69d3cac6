// game/view.go
package game

// PlayerView is the per-player projection pushed over the transport. The
// opponent's hand is exposed as a count only.
type PlayerView struct {
	ID            int64  `json:"id"`
	Variant       int    `json:"variant"`
	Type          string `json:"type"`
	Status        Status `json:"status"`
	Creator       int64  `json:"creator"`
	Stake         int64  `json:"stake,omitempty"`
	CurrentPlayer int64  `json:"current_player"`
	IsMyTurn      bool   `json:"is_my_turn"`

	DeckCount         int    `json:"deck_count"`
	MyHand            []Card `json:"my_hand"`
	OpponentHandCount int    `json:"opponent_hand_count"`
	Trump             *Card  `json:"trump"`
	MyPlayed          *Card  `json:"my_played"`
	OpponentPlayed    *Card  `json:"opponent_played"`
	MySpoils          []Card `json:"my_spoils"`
	OpponentSpoils    []Card `json:"opponent_spoils"`

	Player1      int64  `json:"player1"`
	Player1Name  string `json:"player1_name"`
	Player2      int64  `json:"player2"`
	Player2Name  string `json:"player2_name"`
	OpponentName string `json:"opponent_name"`

	Winner   int64 `json:"winner"`
	Draw     bool  `json:"draw"`
	Complete bool  `json:"complete"`
	Moves    int   `json:"moves"`

	IsMatch       bool  `json:"is_match"`
	GameNumber    int   `json:"game_number"`
	MyMarks       int   `json:"my_marks"`
	OpponentMarks int   `json:"opponent_marks"`
	MatchWinner   int64 `json:"match_winner"`
	MatchOver     bool  `json:"match_over"`

	TimeRemaining int `json:"time_remaining"`
}

// StateFor builds the filtered view for one participant. It never includes
// the opponent's hand contents.
func (g *Game) StateFor(playerID int64) *PlayerView {
	g.mu.Lock()
	defer g.mu.Unlock()

	mine := playerID == g.Player1

	myHand, oppHand := g.player1Hand, g.player2Hand
	myPlayed, oppPlayed := g.player1Played, g.player2Played
	mySpoils, oppSpoils := g.player1Spoils, g.player2Spoils
	myMarks, oppMarks := g.player1Marks, g.player2Marks
	oppName := g.player2Name
	if !mine {
		myHand, oppHand = oppHand, myHand
		myPlayed, oppPlayed = oppPlayed, myPlayed
		mySpoils, oppSpoils = oppSpoils, mySpoils
		myMarks, oppMarks = oppMarks, myMarks
		oppName = g.Player1Name
	}

	v := &PlayerView{
		ID:                g.ID,
		Variant:           g.Variant,
		Type:              g.Type,
		Status:            g.status,
		Creator:           g.Creator,
		Stake:             g.Stake,
		CurrentPlayer:     g.currentPlayer,
		IsMyTurn:          g.currentPlayer == playerID && !g.complete,
		DeckCount:         len(g.deck),
		MyHand:            append([]Card(nil), myHand...),
		OpponentHandCount: len(oppHand),
		Trump:             g.trump,
		MyPlayed:          myPlayed,
		OpponentPlayed:    oppPlayed,
		MySpoils:          append([]Card(nil), mySpoils...),
		OpponentSpoils:    append([]Card(nil), oppSpoils...),
		Player1:           g.Player1,
		Player1Name:       g.Player1Name,
		Player2:           g.player2,
		Player2Name:       g.player2Name,
		OpponentName:      oppName,
		Winner:            g.winner,
		Draw:              g.drawn,
		Complete:          g.complete,
		Moves:             g.moves,
		IsMatch:           g.IsMatch,
		GameNumber:        g.currentGameNumber,
		MyMarks:           myMarks,
		OpponentMarks:     oppMarks,
		MatchWinner:       g.matchWinner,
		MatchOver:         g.matchOver,
		TimeRemaining:     g.timeRemaining,
	}
	return v
}

// Summary is the lobby listing entry for a waiting game.
type Summary struct {
	ID          int64  `json:"id"`
	Variant     int    `json:"variant"`
	Type        string `json:"type"`
	Stake       int64  `json:"stake,omitempty"`
	Creator     int64  `json:"creator"`
	CreatorName string `json:"creator_name"`
}

func (g *Game) Summarize() Summary {
	g.mu.Lock()
	defer g.mu.Unlock()
	return Summary{
		ID:          g.ID,
		Variant:     g.Variant,
		Type:        g.Type,
		Stake:       g.Stake,
		Creator:     g.Creator,
		CreatorName: g.CreatorName,
	}
}
