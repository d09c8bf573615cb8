// Package game implements the round and betting state machine of a poker
// derby: players back one or more competing two-card hands over four timed
// rounds, the board is revealed as the rounds advance, and the pots are
// settled once the final round closes.
//
// The main type is Session, which owns the authoritative state of one room
// and exposes the action API used by the presentation layers.
//
// # Basic Usage
//
//	rng := randutil.New(42)
//	s, err := game.NewSession(game.DefaultConfig(), func() (game.Table, error) {
//	    return game.DealTable(rng, game.TableSpec{
//	        PlayerNames: []string{"Alex", "Sarah"},
//	        StartChips:  1000,
//	        Hands:       4,
//	        DarkHorse:   true,
//	    })
//	})
//	if err != nil {
//	    return err
//	}
//	_ = s.Initialize("TXHS42")
//	_ = s.SelectHand("hand1")
//	_ = s.SetBetAmount(50)
//	if err := s.PlaceBet(); err != nil {
//	    // ErrBelowMinimum, ErrInsufficientChips, ...
//	}
//
// # Architecture
//
// Session delegates to pure helpers that never mutate or notify:
//   - ValidateBet: checks a proposed bet against the config and chip stack
//   - Round: linear round order, progress and board size per round
//   - Scorer: pluggable hand strength, HighCardScore by default
//   - Settle: picks the winning hands and their backers
//
// Time never advances inside a Session on its own. An external driver calls
// Tick once per second and AutoAdvance when the countdown or readiness says
// the round is over; see the driver package.
package game
