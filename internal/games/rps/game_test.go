package rps

import (
	"testing"
	"time"

	"github.com/vovakirdan/minigame-arena/internal/core"
	"github.com/vovakirdan/minigame-arena/internal/core/coretest"
)

const (
	alice core.PlayerID = "alice"
	bob   core.PlayerID = "bob"
)

func newGame(rounds int) (*Game, *coretest.Scheduler, *coretest.Recorder) {
	env, sched, rec := coretest.NewEnv(alice, bob)
	g := New(env, Options{Rounds: rounds, RoundDelay: 2 * time.Second})
	g.Start()
	return g, sched, rec
}

func opposite(o Outcome) Outcome {
	switch o {
	case FirstWins:
		return SecondWins
	case SecondWins:
		return FirstWins
	}
	return Draw
}

func TestResolveAntiSymmetric(t *testing.T) {
	for _, a := range Choices {
		for _, b := range Choices {
			ab, ba := Resolve(a, b), Resolve(b, a)
			if a == b {
				if ab != Draw {
					t.Errorf("Resolve(%s,%s) should be a draw, got %v", a, b, ab)
				}
				continue
			}
			if ab == Draw || ab != opposite(ba) {
				t.Errorf("Resolve(%s,%s)=%v but Resolve(%s,%s)=%v", a, b, ab, b, a, ba)
			}
		}
	}
}

func TestBeatsRelation(t *testing.T) {
	if Resolve(Rock, Scissors) != FirstWins {
		t.Error("rock should beat scissors")
	}
	if Resolve(Scissors, Paper) != FirstWins {
		t.Error("scissors should beat paper")
	}
	if Resolve(Paper, Rock) != FirstWins {
		t.Error("paper should beat rock")
	}
}

func TestRoundResultPersonalized(t *testing.T) {
	g, _, rec := newGame(2)

	g.HandleAction(alice, core.Choose("rock"))
	g.HandleAction(bob, core.Choose("scissors"))

	forAlice := rec.For(alice, "round-result")
	forBob := rec.For(bob, "round-result")
	if len(forAlice) != 1 || len(forBob) != 1 {
		t.Fatalf("Expected one round-result each, got %d/%d", len(forAlice), len(forBob))
	}

	a := forAlice[0].(RoundResult)
	b := forBob[0].(RoundResult)
	if a.Winner != "you" || b.Winner != "opponent" {
		t.Errorf("Expected you/opponent, got %q/%q", a.Winner, b.Winner)
	}
	if a.Scores != [2]int{1, 0} || b.Scores != [2]int{1, 0} {
		t.Errorf("Expected scores [1 0], got %v and %v", a.Scores, b.Scores)
	}
	if a.YourChoice != Rock || a.OpponentChoice != Scissors {
		t.Errorf("Unexpected choices for alice: %+v", a)
	}
	if b.YourScore != 0 || b.OpponentScore != 1 {
		t.Errorf("Unexpected personalized scores for bob: %+v", b)
	}
}

func TestSecondChoiceIgnored(t *testing.T) {
	g, _, rec := newGame(3)

	g.HandleAction(alice, core.Choose("rock"))
	g.HandleAction(alice, core.Choose("paper"))
	if g.choices[alice] != Rock {
		t.Errorf("Second submission replaced the first: %s", g.choices[alice])
	}
	if got := len(rec.For(bob, "game-update")); got != 1 {
		t.Errorf("Expected a single opponentReady update, got %d", got)
	}
}

func TestInvalidChoiceIgnored(t *testing.T) {
	g, _, rec := newGame(3)
	g.HandleAction(alice, core.Choose("lizard"))
	g.HandleAction(alice, core.Place(1))

	if len(g.choices) != 0 || len(rec.Events) != 0 {
		t.Error("Invalid actions should not change state or emit events")
	}
}

func TestNextRoundAfterDelay(t *testing.T) {
	g, sched, rec := newGame(3)

	g.HandleAction(alice, core.Choose("paper"))
	g.HandleAction(bob, core.Choose("paper"))

	// Locked between rounds.
	g.HandleAction(alice, core.Choose("rock"))
	if len(g.choices) != 2 || g.choices[alice] != Paper {
		t.Error("Choices between rounds should be ignored")
	}

	sched.Advance(2 * time.Second)
	if got := rec.For(alice, "next-round"); len(got) != 1 || got[0].(NextRound).Round != 2 {
		t.Fatalf("Expected next-round 2, got %v", got)
	}
	if len(g.choices) != 0 {
		t.Error("Choices should be cleared for the new round")
	}
}

func TestBestOfThree(t *testing.T) {
	g, sched, _ := newGame(3)

	rounds := [][2]string{{"rock", "scissors"}, {"rock", "paper"}, {"scissors", "paper"}}
	for i, r := range rounds {
		g.HandleAction(alice, core.Choose(r[0]))
		g.HandleAction(bob, core.Choose(r[1]))
		if i < len(rounds)-1 {
			if g.CheckEnd() != nil {
				t.Fatalf("Game ended early after round %d", i+1)
			}
			sched.Advance(2 * time.Second)
		}
	}

	res := g.CheckEnd()
	if res == nil {
		t.Fatal("Expected game over after 3 rounds")
	}
	if res.WinnerID != alice || res.Scores[alice] != 2 || res.Scores[bob] != 1 {
		t.Errorf("Expected alice 2-1, got %+v", res)
	}
	if sched.Pending() != 0 {
		t.Errorf("No timer should be pending after the last round, got %d", sched.Pending())
	}
}

func TestFinalizeTiedIsDraw(t *testing.T) {
	g, sched, _ := newGame(3)
	g.HandleAction(alice, core.Choose("rock"))
	g.HandleAction(bob, core.Choose("rock"))

	res := g.Finalize()
	if !res.IsDraw {
		t.Errorf("Expected tied timeout to be a draw, got %+v", res)
	}
	if sched.Pending() != 0 {
		t.Error("Finalize should cancel the next-round timer")
	}
}
