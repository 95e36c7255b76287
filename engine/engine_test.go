package engine

import (
	"errors"
	"testing"
	"time"
)

// TestWakeQueenTwoPlayers: P1 wakes an unowned 5-point queen, the pool
// shrinks, P1 refills to 5 and the turn passes to P2.
func TestWakeQueenTwoPlayers(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	rigHand(t, g, 0, "wake-1")

	next, out := mustApply(t, e, g, onQueen(mv(MoveWakeQueen, "p1", "wake-1"), "queen-rainbow"))

	if owner := next.QueenOwner("queen-rainbow"); owner != 0 {
		t.Errorf("queen-rainbow owner: want 0, got %d", owner)
	}
	if n := len(next.SleepingQueens); n != 11 {
		t.Errorf("sleeping queens: want 11, got %d", n)
	}
	if n := len(next.Players[0].Hand); n != 5 {
		t.Errorf("p1 hand: want 5, got %d", n)
	}
	if next.Players[0].Score != 5 {
		t.Errorf("p1 score: want 5, got %d", next.Players[0].Score)
	}
	if id := next.CurrentPlayerID(); id != "p2" {
		t.Errorf("current player: want p2, got %s", id)
	}
	if next.Version != g.Version+1 {
		t.Errorf("Version: want %d, got %d", g.Version+1, next.Version)
	}
	if len(out.QueenMoves) != 1 || out.QueenMoves[0].To != "p1" {
		t.Errorf("QueenMoves: got %+v", out.QueenMoves)
	}
	// The input snapshot is untouched.
	if len(g.SleepingQueens) != 12 || g.CurrentPlayer != 0 {
		t.Error("ApplyMove modified its input snapshot")
	}
}

// TestStealBlocked: the target holds a block card, so the steal waits; the
// block cancels it and the queen stays.
func TestStealBlocked(t *testing.T) {
	e, clock := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	seatQueen(t, g, 1, "queen-moon")
	rigHand(t, g, 0, "steal-1")
	rigHand(t, g, 1, "block_steal-1")

	next, out := mustApply(t, e, g, onQueen(mv(MoveStealQueen, "p1", "steal-1"), "queen-moon"))

	a := next.Attack()
	if a == nil {
		t.Fatal("expected a pending attack")
	}
	if a.Kind != AttackSteal || a.AttackerID != "p1" || a.TargetID != "p2" || a.QueenID != "queen-moon" {
		t.Errorf("attack: got %+v", a)
	}
	if !a.Deadline.After(clock.Now()) {
		t.Errorf("deadline %v is not in the future", a.Deadline)
	}
	if owner := next.QueenOwner("queen-moon"); owner != 1 {
		t.Errorf("queen-moon moved before the attack resolved (owner %d)", owner)
	}
	if n := len(next.Players[0].Hand); n != 4 {
		t.Errorf("attacker hand: want 4 while attack pending, got %d", n)
	}
	if next.CurrentPlayer != 0 {
		t.Errorf("turn advanced while attack pending")
	}
	if out.Attack == nil {
		t.Error("outcome should carry the attack")
	}
	if !CanAct(next, "p2") {
		t.Error("target should be able to act")
	}

	// The attacker cannot play on while the attack is open.
	rigHand(t, next, 0, "wake-1")
	expectReject(t, e, next, onQueen(mv(MoveWakeQueen, "p1", "wake-1"), "queen-heart"), CodeSuspended)

	clock.Advance(2 * time.Second)
	after, out := mustApply(t, e, next, mv(MoveBlock, "p2", "block_steal-1"))

	if after.Attack() != nil {
		t.Error("attack should be cleared")
	}
	if !out.Blocked {
		t.Error("outcome should report the block")
	}
	if owner := after.QueenOwner("queen-moon"); owner != 1 {
		t.Errorf("queen-moon owner: want 1, got %d", owner)
	}
	if top := after.Discard[len(after.Discard)-1]; top.ID != "block_steal-1" {
		t.Errorf("top of discard: want block_steal-1, got %s", top.ID)
	}
	for i := range after.Players {
		if n := len(after.Players[i].Hand); n != 5 {
			t.Errorf("seat %d hand: want 5, got %d", i, n)
		}
	}
	if id := after.CurrentPlayerID(); id != "p2" {
		t.Errorf("current player after block: want p2, got %s", id)
	}
}

func TestStealWithoutBlockTransfersImmediately(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	seatQueen(t, g, 1, "queen-moon")
	rigHand(t, g, 0, "steal-1")
	rigHand(t, g, 1, "number-1-1", "number-1-2", "number-1-3", "number-1-4", "number-2-1")

	next, out := mustApply(t, e, g, onQueen(mv(MoveStealQueen, "p1", "steal-1"), "queen-moon"))

	if next.Attack() != nil {
		t.Error("unexpected pending attack")
	}
	if owner := next.QueenOwner("queen-moon"); owner != 0 {
		t.Errorf("queen-moon owner: want 0, got %d", owner)
	}
	if next.Players[0].Score != 10 || next.Players[1].Score != 0 {
		t.Errorf("scores: got %d/%d", next.Players[0].Score, next.Players[1].Score)
	}
	if len(out.QueenMoves) != 1 || out.QueenMoves[0].From != "p2" || out.QueenMoves[0].To != "p1" {
		t.Errorf("QueenMoves: got %+v", out.QueenMoves)
	}
}

func TestStealOwnQueenRejected(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	seatQueen(t, g, 0, "queen-moon")
	rigHand(t, g, 0, "steal-1")
	expectReject(t, e, g, onQueen(mv(MoveStealQueen, "p1", "steal-1"), "queen-moon"), CodeBadTarget)
	expectReject(t, e, g, onQueen(mv(MoveStealQueen, "p1", "steal-1"), "queen-heart"), CodeBadTarget)
}

// TestDefenseWindow covers the deadline rules with a bystander seat.
func TestDefenseWindow(t *testing.T) {
	e, clock := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2", "p3")
	seatQueen(t, g, 1, "queen-moon")
	rigHand(t, g, 0, "steal-1")
	rigHand(t, g, 1, "block_steal-1")

	g, _ = mustApply(t, e, g, onQueen(mv(MoveStealQueen, "p1", "steal-1"), "queen-moon"))

	expectReject(t, e, g, mv(MoveAllow, "p3"), CodeWindowOpen)
	expectReject(t, e, g, mv(MoveBlock, "p3", "block_steal-1"), CodeNotYourTurn)

	clock.Advance(time.Duration(g.Rules.DefenseWindow)*time.Millisecond + time.Millisecond)
	expectReject(t, e, g, mv(MoveBlock, "p2", "block_steal-1"), CodeWindowClosed)

	next, _ := mustApply(t, e, g, mv(MoveAllow, "p3"))
	if owner := next.QueenOwner("queen-moon"); owner != 0 {
		t.Errorf("queen-moon owner after allow: want 0, got %d", owner)
	}
	if id := next.CurrentPlayerID(); id != "p2" {
		t.Errorf("current player: want p2, got %s", id)
	}
	expectReject(t, e, next, mv(MoveAllow, "p3"), CodeNoAttack)
}

func TestTargetMayAllowImmediately(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	seatQueen(t, g, 1, "queen-heart")
	rigHand(t, g, 0, "sleep-1")
	rigHand(t, g, 1, "block_sleep-1")

	g, _ = mustApply(t, e, g, onQueen(mv(MoveSleepQueen, "p1", "sleep-1"), "queen-heart"))
	if a := g.Attack(); a == nil || a.Kind != AttackSleep {
		t.Fatalf("expected a pending sleep attack, got %+v", g.Suspension)
	}

	next, _ := mustApply(t, e, g, mv(MoveAllow, "p2"))
	if next.QueenOwner("queen-heart") != -1 || next.sleepingIndex("queen-heart") < 0 {
		t.Error("queen-heart should be back asleep")
	}
	if next.Players[1].Score != 0 {
		t.Errorf("p2 score: want 0, got %d", next.Players[1].Score)
	}
}

func TestSleepOwnQueenIsNotBlockable(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	seatQueen(t, g, 0, "queen-cake")
	rigHand(t, g, 0, "sleep-1", "block_sleep-1")

	next, _ := mustApply(t, e, g, onQueen(mv(MoveSleepQueen, "p1", "sleep-1"), "queen-cake"))
	if next.Attack() != nil {
		t.Error("sleeping your own queen should not open a defense window")
	}
	if next.sleepingIndex("queen-cake") < 0 {
		t.Error("queen-cake should be asleep")
	}
}

// TestRevealRoutesToOpponent: a revealed even number in a two-player game
// routes the pick to P2; P1 refills once the pick is made.
func TestRevealRoutesToOpponent(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	rigHand(t, g, 0, "reveal-1")
	stackDeck(t, g, "number-2-1")

	next, out := mustApply(t, e, g, mv(MoveReveal, "p1", "reveal-1"))

	r := next.Reveal()
	if r == nil {
		t.Fatal("expected a reveal in progress")
	}
	if r.TargetID != "p2" || r.RevealerID != "p1" || r.Revealed.ID != "number-2-1" {
		t.Errorf("reveal: got %+v", r)
	}
	if out.Revealed == nil || out.Revealed.ID != "number-2-1" {
		t.Errorf("outcome revealed: got %+v", out.Revealed)
	}
	if n := len(next.Players[0].Hand); n != 4 {
		t.Errorf("revealer hand: want 4 during reveal, got %d", n)
	}
	if next.CurrentPlayer != 0 {
		t.Error("turn advanced during reveal")
	}

	expectReject(t, e, next, onQueen(mv(MoveRevealPick, "p1"), "queen-heart"), CodeNotYourTurn)

	after, _ := mustApply(t, e, next, onQueen(mv(MoveRevealPick, "p2"), "queen-heart"))
	if owner := after.QueenOwner("queen-heart"); owner != 1 {
		t.Errorf("queen-heart owner: want 1, got %d", owner)
	}
	if after.Reveal() != nil {
		t.Error("reveal marker should be cleared")
	}
	if n := len(after.Players[0].Hand); n != 5 {
		t.Errorf("revealer hand: want 5, got %d", n)
	}
	if id := after.CurrentPlayerID(); id != "p2" {
		t.Errorf("current player: want p2, got %s", id)
	}
}

func TestRevealActionCardKeepsTurn(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	rigHand(t, g, 0, "reveal-1")
	stackDeck(t, g, "sleep-2")

	next, out := mustApply(t, e, g, mv(MoveReveal, "p1", "reveal-1"))

	if !out.KeepTurn {
		t.Error("revealing an action card should keep the turn")
	}
	if next.Suspension != nil {
		t.Errorf("unexpected suspension %s", next.SuspensionKind())
	}
	if next.Players[0].handIndex("sleep-2") < 0 {
		t.Error("revealed action card should be in the revealer's hand")
	}
	if n := len(next.Players[0].Hand); n != 5 {
		t.Errorf("hand: want 5, got %d", n)
	}
	if next.CurrentPlayer != 0 {
		t.Error("turn should not advance")
	}
}

func TestRoseGrantsBonusPick(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	rigHand(t, g, 0, "wake-1", "wake-2")

	next, out := mustApply(t, e, g, onQueen(mv(MoveWakeQueen, "p1", "wake-1"), QueenRose))
	if !out.Bonus || next.Bonus() == nil || next.Bonus().PlayerID != "p1" {
		t.Fatalf("expected a bonus pick for p1, got %+v", next.Suspension)
	}
	if next.CurrentPlayer != 0 {
		t.Error("turn advanced before the bonus pick")
	}

	expectReject(t, e, next, onQueen(mv(MoveBonusPick, "p2"), "queen-heart"), CodeNotYourTurn)
	expectReject(t, e, next, onQueen(mv(MoveWakeQueen, "p1", "wake-2"), "queen-heart"), CodeSuspended)

	after, _ := mustApply(t, e, next, onQueen(mv(MoveBonusPick, "p1"), "queen-heart"))
	if n := len(after.Players[0].Queens); n != 2 {
		t.Errorf("p1 queens: want 2, got %d", n)
	}
	if after.Players[0].Score != 25 {
		t.Errorf("p1 score: want 25, got %d", after.Players[0].Score)
	}
	if id := after.CurrentPlayerID(); id != "p2" {
		t.Errorf("current player: want p2, got %s", id)
	}
	if n := len(after.Players[0].Hand); n != 5 {
		t.Errorf("p1 hand: want 5, got %d", n)
	}
}

func TestStolenRoseGrantsNoBonus(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	seatQueen(t, g, 1, QueenRose)
	rigHand(t, g, 0, "steal-1")
	rigHand(t, g, 1, "number-1-1", "number-1-2", "number-1-3", "number-1-4", "number-2-1")

	next, _ := mustApply(t, e, g, onQueen(mv(MoveStealQueen, "p1", "steal-1"), QueenRose))
	if next.Suspension != nil {
		t.Errorf("unexpected suspension %s", next.SuspensionKind())
	}
}

func TestExclusiveQueensOnWake(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	seatQueen(t, g, 0, QueenCat)
	rigHand(t, g, 0, "wake-1")

	next, out := mustApply(t, e, g, onQueen(mv(MoveWakeQueen, "p1", "wake-1"), QueenDog))

	if out.Excluded != QueenDog {
		t.Errorf("Excluded: want %s, got %q", QueenDog, out.Excluded)
	}
	if next.sleepingIndex(QueenDog) < 0 {
		t.Error("dog queen should be back asleep")
	}
	if next.QueenOwner(QueenCat) != 0 {
		t.Error("cat queen should stay with p1")
	}
	if next.Players[0].Score != 15 {
		t.Errorf("p1 score: want 15, got %d", next.Players[0].Score)
	}
	if id := next.CurrentPlayerID(); id != "p2" {
		t.Errorf("current player: want p2, got %s", id)
	}
}

func TestExclusiveQueensOnSteal(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	seatQueen(t, g, 0, QueenDog)
	seatQueen(t, g, 1, QueenCat)
	rigHand(t, g, 0, "steal-1")
	rigHand(t, g, 1, "number-1-1", "number-1-2", "number-1-3", "number-1-4", "number-2-1")

	next, _ := mustApply(t, e, g, onQueen(mv(MoveStealQueen, "p1", "steal-1"), QueenCat))

	if next.sleepingIndex(QueenCat) < 0 {
		t.Error("stolen cat queen should fall asleep")
	}
	if next.QueenOwner(QueenDog) != 0 {
		t.Error("dog queen should stay with p1")
	}
	if len(next.Players[1].Queens) != 0 {
		t.Error("p2 should have lost the cat queen")
	}
}

func TestEquationWakesQueen(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	rigHand(t, g, 0, "number-2-1", "number-3-1", "number-5-1")

	next, _ := mustApply(t, e, g, onQueen(mv(MoveEquation, "p1", "number-2-1", "number-3-1", "number-5-1"), "queen-heart"))

	if owner := next.QueenOwner("queen-heart"); owner != 0 {
		t.Errorf("queen-heart owner: want 0, got %d", owner)
	}
	if n := len(next.Players[0].Hand); n != 5 {
		t.Errorf("hand: want 5, got %d", n)
	}
	for _, id := range []string{"number-2-1", "number-3-1", "number-5-1"} {
		if next.Players[0].handIndex(id) >= 0 {
			t.Errorf("%s still in hand", id)
		}
	}
	if id := next.CurrentPlayerID(); id != "p2" {
		t.Errorf("current player: want p2, got %s", id)
	}
}

// TestEquationWithSpareCard: 2+3=5 is enough; the 9 rides along and is
// discarded with the rest.
func TestEquationWithSpareCard(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	played := []string{"number-2-1", "number-3-1", "number-5-1", "number-9-1"}
	rigHand(t, g, 0, played...)

	m := onQueen(mv(MoveEquation, "p1", played...), "queen-moon")
	if err := e.ValidateMove(g, m); err != nil {
		t.Fatalf("ValidateMove: %v", err)
	}
	next, _ := mustApply(t, e, g, m)

	if owner := next.QueenOwner("queen-moon"); owner != 0 {
		t.Errorf("queen-moon owner: want 0, got %d", owner)
	}
	for _, id := range played {
		if next.Players[0].handIndex(id) >= 0 {
			t.Errorf("%s still in hand", id)
		}
	}
}

func TestEquationRejected(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	rigHand(t, g, 0, "number-2-1", "number-3-1", "number-6-1", "number-4-1", "wake-1")

	expectReject(t, e, g, mv(MoveEquation, "p1", "number-2-1", "number-3-1", "number-6-1"), CodeInvalidEquation)
	expectReject(t, e, g, mv(MoveEquation, "p1", "number-2-1", "number-4-1"), CodeCardCount)
	expectReject(t, e, g, mv(MoveEquation, "p1", "number-2-1", "number-4-1", "wake-1"), CodeWrongCardKind)
	expectReject(t, e, g, mv(MoveEquation, "p1", "number-2-1", "number-2-1", "number-4-1"), CodeCardCount)
}

func TestDiscard(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	rigHand(t, g, 0, "number-7-1", "number-7-2", "number-8-1", "wake-1", "steal-1")

	expectReject(t, e, g, mv(MoveDiscard, "p1", "number-7-1", "number-8-1"), CodeWrongCardKind)
	expectReject(t, e, g, mv(MoveDiscard, "p1", "number-7-1", "number-7-2", "number-8-1"), CodeCardCount)
	expectReject(t, e, g, mv(MoveDiscard, "p1"), CodeCardCount)
	expectReject(t, e, g, mv(MoveDiscard, "p1", "number-9-1"), CodeCardNotInHand)

	next, _ := mustApply(t, e, g, mv(MoveDiscard, "p1", "number-7-1", "number-7-2"))
	if n := len(next.Players[0].Hand); n != 5 {
		t.Errorf("hand: want 5, got %d", n)
	}
	if id := next.CurrentPlayerID(); id != "p2" {
		t.Errorf("current player: want p2, got %s", id)
	}

	next, _ = mustApply(t, e, next, mv(MoveDiscard, "p2", next.Players[1].Hand[0].ID))
	if id := next.CurrentPlayerID(); id != "p1" {
		t.Errorf("current player: want p1, got %s", id)
	}
}

func TestStageIsBookkeeping(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	rigHand(t, g, 0, "wake-1", "number-4-1")

	expectReject(t, e, g, mv(MoveClearStage, "p1"), CodeNoSequence)

	staged, out := mustApply(t, e, g, mv(MoveStage, "p1", "wake-1", "number-4-1"))
	if s := staged.Staged(); s == nil || len(s.CardIDs) != 2 {
		t.Fatalf("expected two staged cards, got %+v", staged.Suspension)
	}
	if !out.KeepTurn || staged.CurrentPlayer != 0 {
		t.Error("staging should not end the turn")
	}
	if staged.Players[0].handIndex("wake-1") < 0 {
		t.Error("staging must not move cards")
	}

	cleared, _ := mustApply(t, e, staged, mv(MoveClearStage, "p1"))
	if cleared.Suspension != nil {
		t.Error("clear_stage should drop the selection")
	}

	restaged, _ := mustApply(t, e, cleared, mv(MoveStage, "p1", "wake-1"))
	played, _ := mustApply(t, e, restaged, onQueen(mv(MoveWakeQueen, "p1", "wake-1"), "queen-moon"))
	if played.Staged() != nil {
		t.Error("playing a card should drop the staged selection")
	}
}

func TestTurnOwnership(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	rigHand(t, g, 1, "wake-1")

	expectReject(t, e, g, onQueen(mv(MoveWakeQueen, "p2", "wake-1"), "queen-moon"), CodeNotYourTurn)
	expectReject(t, e, g, onQueen(mv(MoveWakeQueen, "ghost", "wake-1"), "queen-moon"), CodeUnknownPlayer)
	expectReject(t, e, g, mv("juggle", "p1"), CodeUnknownMove)
	expectReject(t, e, g, onQueen(mv(MoveWakeQueen, "p1", "wake-1"), "queen-moon"), CodeCardNotInHand)

	waiting := e.NewGame("game-2", "ROOM02")
	expectReject(t, e, waiting, mv(MoveDiscard, "p1", "number-1-1"), CodeNotPlaying)
}

func TestIdempotentReplay(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	rigHand(t, g, 0, "wake-1")
	m := onQueen(mv(MoveWakeQueen, "p1", "wake-1"), "queen-moon")

	next, _ := mustApply(t, e, g, m)
	sum := next.Checksum()

	again, out, err := e.ApplyMove(next, m)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if again != next {
		t.Error("replay should return the same snapshot")
	}
	if !out.Replayed {
		t.Error("outcome should be marked as replayed")
	}
	if again.Checksum() != sum || again.Version != next.Version {
		t.Error("replay changed the snapshot")
	}
}

type explodingShuffler struct{}

func (explodingShuffler) Shuffle([]Card) { panic("shuffler exploded") }

// TestInternalErrorIsRecovered forces a panic mid-transition: an empty deck
// makes reveal reshuffle through a shuffler that panics.
func TestInternalErrorIsRecovered(t *testing.T) {
	e, clock := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	rigHand(t, g, 0, "reveal-1")
	g.Discard = append(g.Discard, g.Deck...)
	g.Deck = nil
	sum := g.Checksum()

	broken := New(WithShuffler(explodingShuffler{}), WithClock(clock))
	next, _, err := broken.ApplyMove(g, mv(MoveReveal, "p1", "reveal-1"))

	if err == nil {
		t.Fatal("expected an internal error")
	}
	if !errors.Is(err, ErrInternal) || !IsInternal(err) {
		t.Errorf("want ErrInternal, got %v", err)
	}
	if IsValidationError(err) {
		t.Error("internal error must not look like a rejected move")
	}
	var ie *InternalError
	if !errors.As(err, &ie) || ie.Move != MoveReveal || len(ie.Stack) == 0 {
		t.Errorf("InternalError: got %+v", ie)
	}
	if next != g || g.Checksum() != sum {
		t.Error("failed transition must leave the snapshot unchanged")
	}
}

func TestWinByQueensEndsGame(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	for _, q := range []string{"queen-cake", "queen-rainbow", "queen-starfish", "queen-moon"} {
		seatQueen(t, g, 0, q)
	}
	rigHand(t, g, 0, "wake-1")

	next, out := mustApply(t, e, g, onQueen(mv(MoveWakeQueen, "p1", "wake-1"), "queen-sunflower"))

	if next.Phase != PhaseEnded || next.WinnerID != "p1" {
		t.Fatalf("phase/winner: got %s/%s", next.Phase, next.WinnerID)
	}
	if out.Win == nil || out.Win.Reason != WinByQueens {
		t.Errorf("outcome win: got %+v", out.Win)
	}
	expectReject(t, e, next, mv(MoveDiscard, "p2", next.Players[1].Hand[0].ID), CodeNotPlaying)
}

func TestNoWinWhileAttackPending(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	for _, q := range []string{"queen-cake", "queen-rainbow", "queen-starfish", "queen-moon"} {
		seatQueen(t, g, 0, q)
	}
	seatQueen(t, g, 1, "queen-heart")
	rigHand(t, g, 0, "steal-1")
	rigHand(t, g, 1, "block_steal-1")

	next, _ := mustApply(t, e, g, onQueen(mv(MoveStealQueen, "p1", "steal-1"), "queen-heart"))
	if next.Phase != PhasePlaying {
		t.Fatal("game ended while an attack was pending")
	}

	won, out := mustApply(t, e, next, mv(MoveAllow, "p2"))
	if won.Phase != PhaseEnded || won.WinnerID != "p1" || out.Win == nil {
		t.Errorf("allowed steal should decide the game, got %s/%s", won.Phase, won.WinnerID)
	}
}

func TestLifecycle(t *testing.T) {
	e, _ := newTestEngine(t)
	g := e.NewGame("game-1", "ROOM01")

	if n := len(g.SleepingQueens); n != NumQueens {
		t.Errorf("sleeping queens: want %d, got %d", NumQueens, n)
	}
	if n := len(g.Deck); n != DeckSize() {
		t.Errorf("deck: want %d, got %d", DeckSize(), n)
	}
	if _, err := e.Start(g); err == nil {
		t.Error("Start with no players should fail")
	}

	g, _ = e.AddPlayer(g, "p1", "Ann")
	if _, err := e.AddPlayer(g, "p1", "Ann"); err == nil {
		t.Error("duplicate AddPlayer should fail")
	}
	g, _ = e.AddPlayer(g, "p2", "Bo")
	g, _ = e.AddPlayer(g, "p3", "Cy")
	g, err := e.RemovePlayer(g, "p2")
	if err != nil {
		t.Fatalf("RemovePlayer: %v", err)
	}
	if g.Players[1].ID != "p3" || g.Players[1].Position != 1 {
		t.Errorf("seat 1 after removal: got %+v", g.Players[1])
	}

	started, err := e.Start(g)
	if err != nil {
		t.Fatalf("Start: %v", err)
	}
	if started.Phase != PhasePlaying || started.CurrentPlayerID() != "p1" {
		t.Errorf("after Start: phase %s, current %s", started.Phase, started.CurrentPlayerID())
	}
	for i, p := range started.Players {
		if len(p.Hand) != started.Rules.HandSize {
			t.Errorf("seat %d hand: want %d, got %d", i, started.Rules.HandSize, len(p.Hand))
		}
	}
	checkInvariants(t, started)

	if _, err := e.AddPlayer(started, "p4", "Di"); err == nil {
		t.Error("AddPlayer after Start should fail")
	}
	off := e.SetConnected(started, "p3", false)
	if off.Players[1].Connected || !started.Players[1].Connected {
		t.Error("SetConnected should only change the new snapshot")
	}
}

func TestStartRejectsOversizedDeal(t *testing.T) {
	rules := DefaultRules()
	rules.HandSize = 14
	e := New(WithRules(rules), WithShuffler(NewShuffler(1)), WithClock(&FixedClock{T: t0}))
	g := e.NewGame("game-big", "ROOM02")
	for _, id := range []string{"p1", "p2", "p3", "p4", "p5"} {
		var err error
		if g, err = e.AddPlayer(g, id, id); err != nil {
			t.Fatalf("AddPlayer %s: %v", id, err)
		}
	}

	_, err := e.Start(g)
	var ve *ValidationError
	if !errors.As(err, &ve) || ve.Code != CodeCardCount {
		t.Fatalf("want %s rejection, got %v", CodeCardCount, err)
	}
	if g.Phase != PhaseWaiting || len(g.Deck) != DeckSize() {
		t.Error("rejected Start changed the snapshot")
	}

	// Four players fit: 56 of 67 cards.
	g, _ = e.RemovePlayer(g, "p5")
	started, err := e.Start(g)
	if err != nil {
		t.Fatalf("Start with four: %v", err)
	}
	checkInvariants(t, started)
}

func TestAbandon(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	seatQueen(t, g, 1, "queen-moon")
	rigHand(t, g, 0, "steal-1")
	rigHand(t, g, 1, "block_steal-1")
	g, _ = mustApply(t, e, g, onQueen(mv(MoveStealQueen, "p1", "steal-1"), "queen-moon"))
	if g.Attack() == nil {
		t.Fatal("expected a pending attack")
	}

	ended := e.Abandon(g)
	if ended.Phase != PhaseEnded || ended.Suspension != nil || ended.WinnerID != "" {
		t.Errorf("after Abandon: phase %s, suspension %v, winner %q", ended.Phase, ended.Suspension, ended.WinnerID)
	}
	if ended.Version != g.Version+1 || g.Phase != PhasePlaying {
		t.Error("Abandon should produce a new snapshot")
	}
	if again := e.Abandon(ended); again != ended {
		t.Error("Abandon of an ended game should be a no-op")
	}
	expectReject(t, e, ended, mv(MoveDiscard, "p2", ended.Players[1].Hand[0].ID), CodeNotPlaying)
}

func TestSeededDealIsReproducible(t *testing.T) {
	deal := func() *GameState {
		e := New(WithShuffler(NewShuffler(7)), WithClock(&FixedClock{T: t0}))
		return newStartedGame(t, e, "p1", "p2", "p3")
	}
	a, b := deal(), deal()
	if a.Checksum() != b.Checksum() {
		t.Error("same seed produced different deals")
	}
}

func TestValidateMoveAndActingPlayers(t *testing.T) {
	e, _ := newTestEngine(t)
	g := newStartedGame(t, e, "p1", "p2")
	seatQueen(t, g, 1, "queen-moon")
	rigHand(t, g, 0, "steal-1")
	rigHand(t, g, 1, "block_steal-1")

	if got := ActingPlayers(g); len(got) != 1 || got[0] != "p1" {
		t.Errorf("ActingPlayers before attack: got %v", got)
	}
	steal := onQueen(mv(MoveStealQueen, "p1", "steal-1"), "queen-moon")
	if err := e.ValidateMove(g, steal); err != nil {
		t.Fatalf("ValidateMove(steal): %v", err)
	}
	if err := e.ValidateMove(g, mv(MoveBlock, "p2", "block_steal-1")); err == nil {
		t.Error("block with no attack pending should not validate")
	}
	if err := e.ValidateMove(g, mv(MoveKind("juggle"), "p1")); err == nil {
		t.Error("unknown move kind should not validate")
	}

	next, _ := mustApply(t, e, g, steal)
	if got := ActingPlayers(next); len(got) != 2 || got[0] != "p1" || got[1] != "p2" {
		t.Errorf("ActingPlayers during attack: got %v", got)
	}
	if AwaitedPlayer(next) != "p2" {
		t.Errorf("AwaitedPlayer: want p2, got %s", AwaitedPlayer(next))
	}
	version := next.Version
	if err := e.ValidateMove(next, mv(MoveBlock, "p2", "block_steal-1")); err != nil {
		t.Errorf("ValidateMove(block): %v", err)
	}
	if next.Version != version || next.Attack() == nil {
		t.Error("ValidateMove changed the snapshot")
	}
}
