package stats

import (
	"reflect"
	"testing"
	"time"

	"github.com/hyeon-dev/regichess/internal/domain"
)

func entry(user string, team domain.Team, captured string) domain.MoveLogEntry {
	return domain.MoveLogEntry{
		Username:     user,
		Team:         team,
		CapturedKind: captured,
		Timestamp:    time.Unix(0, 0),
	}
}

func fixture() ([]domain.MoveLogEntry, []domain.Player, domain.Team) {
	roster := []domain.Player{
		{Username: "alice", Team: domain.TeamWhite},
		{Username: "carol", Team: domain.TeamWhite},
		{Username: "dave", Team: domain.TeamWhite},
		{Username: "bob", Team: domain.TeamBlack},
		{Username: "erin", Team: domain.TeamBlack},
	}
	var log []domain.MoveLogEntry
	log = append(log, entry("alice", domain.TeamWhite, "queen"))
	log = append(log, entry("carol", domain.TeamWhite, "rook"))
	log = append(log, entry("carol", domain.TeamWhite, "pawn"))
	log = append(log, entry("dave", domain.TeamWhite, ""))
	for i := 0; i < 10; i++ {
		log = append(log, entry("bob", domain.TeamBlack, ""))
	}
	log = append(log, entry("erin", domain.TeamBlack, "queen"))
	log = append(log, entry("alice", domain.TeamWhite, domain.CapturedKing))
	return log, roster, domain.TeamWhite
}

func TestAggregateRanksAndTotals(t *testing.T) {
	log, roster, winner := fixture()
	sum := New().Aggregate(log, roster, winner)

	if sum.Winner != domain.TeamWhite || sum.Kingslayer != "alice" {
		t.Fatalf("winner/kingslayer wrong: %+v", sum)
	}
	if sum.White.Total != 65 || sum.Black.Total != 9 {
		t.Fatalf("totals wrong: white=%d black=%d", sum.White.Total, sum.Black.Total)
	}

	wantWhite := []struct {
		user  string
		rank  int
		score int
		moves int
	}{
		{"alice", 1, 59, 2},
		{"carol", 2, 6, 2},
		{"dave", 3, 0, 1},
	}
	if len(sum.White.Lines) != len(wantWhite) {
		t.Fatalf("white board size %d", len(sum.White.Lines))
	}
	for i, w := range wantWhite {
		ln := sum.White.Lines[i]
		if ln.Username != w.user || ln.Rank != w.rank || ln.Score != w.score || ln.Moves != w.moves {
			t.Fatalf("white row %d: want %+v, got %+v", i, w, ln)
		}
	}

	// The quiet queen capture outranks ten scoreless moves.
	if sum.Black.Lines[0].Username != "erin" || sum.Black.Lines[0].Rank != 1 {
		t.Fatalf("black board order wrong: %+v", sum.Black.Lines)
	}
	if sum.Black.Lines[1].Username != "bob" || sum.Black.Lines[1].Rank != 2 {
		t.Fatalf("black board order wrong: %+v", sum.Black.Lines)
	}
}

func TestAggregateDenseRanksOnTies(t *testing.T) {
	roster := []domain.Player{
		{Username: "x", Team: domain.TeamWhite},
		{Username: "y", Team: domain.TeamWhite},
		{Username: "z", Team: domain.TeamWhite},
	}
	log := []domain.MoveLogEntry{
		entry("x", domain.TeamWhite, "pawn"),
		entry("y", domain.TeamWhite, "pawn"),
		entry("z", domain.TeamWhite, ""),
	}
	sum := New().Aggregate(log, roster, "")
	ranks := []int{sum.White.Lines[0].Rank, sum.White.Lines[1].Rank, sum.White.Lines[2].Rank}
	if ranks[0] != 1 || ranks[1] != 1 || ranks[2] != 2 {
		t.Fatalf("expected dense ranks 1,1,2, got %v", ranks)
	}
}

func TestBadges(t *testing.T) {
	log, roster, winner := fixture()
	sum := New().Aggregate(log, roster, winner)

	byUser := map[string][]string{}
	for _, b := range []Board{sum.White, sum.Black} {
		for _, ln := range b.Lines {
			byUser[ln.Username] = ln.Badges
		}
	}

	want := map[string][]string{
		"alice": {BadgeKingslayer, BadgeMVP},
		"carol": {BadgeSniper},
		"dave":  {BadgeGhost},
		"bob":   {BadgeSprinter, BadgePacifist},
		"erin":  {BadgeHeartbreak, BadgeGhost},
	}
	for user, badges := range want {
		if !reflect.DeepEqual(byUser[user], badges) {
			t.Fatalf("%s: want badges %v, got %v", user, badges, byUser[user])
		}
	}
}

func TestAggregateIsDeterministic(t *testing.T) {
	log, roster, winner := fixture()
	a := New()
	first := a.Aggregate(log, roster, winner)
	second := a.Aggregate(log, roster, winner)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same inputs must produce the same summary")
	}
}

func TestLuckyCharmIsInjectable(t *testing.T) {
	log, roster, winner := fixture()

	// nil chance source: badge disabled.
	for _, b := range []Board{New().Aggregate(log, roster, winner).White} {
		for _, ln := range b.Lines {
			for _, badge := range ln.Badges {
				if badge == BadgeLuckyCharm {
					t.Fatalf("lucky charm must be off without a chance source")
				}
			}
		}
	}

	always := &Aggregator{Chance: func() float64 { return 0 }}
	sum := always.Aggregate(log, roster, winner)
	for _, ln := range sum.White.Lines {
		found := false
		for _, badge := range ln.Badges {
			if badge == BadgeLuckyCharm {
				found = true
			}
		}
		if !found {
			t.Fatalf("chance 0 should grant the charm to everyone")
		}
	}
}
