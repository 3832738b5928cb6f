package client

import (
	"encoding/json"
	"testing"

	"github.com/GonzaloGRomero/Una-nota/internal/domain"
	"github.com/GonzaloGRomero/Una-nota/internal/protocol"
)

func envelope(t *testing.T, env protocol.Envelope) protocol.RawEnvelope {
	t.Helper()
	data, err := env.Encode()
	if err != nil {
		t.Fatal(err)
	}
	raw, err := protocol.DecodeEnvelope(data)
	if err != nil {
		t.Fatal(err)
	}
	return raw
}

func baseState(t *testing.T) *protocol.Snapshot {
	track := domain.TrackID("t1")
	state, err := Apply(nil, envelope(t, protocol.State(protocol.Snapshot{
		Tracks: []domain.Track{
			{ID: "t1", Title: "Despacito - Luis Fonsi"},
			{ID: "t2", Title: "La Camisa Negra - Juanes"},
		},
		TrackOrder:     []domain.TrackID{"t2", "t1"},
		CurrentTrackID: &track,
		Status:         domain.StatusPlaying,
		BuzzQueue:      []domain.PlayerID{"p1"},
		Players: map[domain.PlayerID]domain.Player{
			"p1": {ID: "p1", Name: "Ana", Role: domain.RolePlayer, Score: 2},
			"p2": {ID: "p2", Name: "Berta", Role: domain.RolePlayer},
		},
	})))
	if err != nil {
		t.Fatal(err)
	}
	return state
}

func TestApplyStateReplacesMirror(t *testing.T) {
	state := baseState(t)
	if state.Status != domain.StatusPlaying || len(state.Players) != 2 {
		t.Fatalf("state = %+v", state)
	}

	next, err := Apply(state, envelope(t, protocol.State(protocol.Snapshot{
		Status:    domain.StatusStopped,
		BuzzQueue: []domain.PlayerID{},
	})))
	if err != nil {
		t.Fatal(err)
	}
	if next.Status != domain.StatusStopped || len(next.Players) != 0 || next.CurrentTrackID != nil {
		t.Fatalf("snapshot must replace wholesale, got %+v", next)
	}
}

func TestApplyDeltasBeforeStateAreDropped(t *testing.T) {
	next, err := Apply(nil, envelope(t, protocol.Buzzer([]domain.PlayerID{"p1"})))
	if err != nil {
		t.Fatal(err)
	}
	if next != nil {
		t.Fatalf("delta before snapshot produced state %+v", next)
	}
}

func TestApplyPlayerJoinUpserts(t *testing.T) {
	state := baseState(t)
	next, err := Apply(state, envelope(t, protocol.PlayerJoin(
		domain.Player{ID: "p3", Name: "Clara", Role: domain.RolePlayer},
	)))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := next.Players["p3"]; !ok {
		t.Fatal("join delta not applied")
	}

	// A rejoin for a known player overwrites in place.
	next, err = Apply(next, envelope(t, protocol.PlayerRejoin(
		domain.Player{ID: "p1", Name: "Ana", Role: domain.RolePlayer, Score: 5},
	)))
	if err != nil {
		t.Fatal(err)
	}
	if next.Players["p1"].Score != 5 {
		t.Fatalf("rejoin delta not applied: %+v", next.Players["p1"])
	}
	if len(next.Players) != 3 {
		t.Fatalf("players = %d, want 3", len(next.Players))
	}
}

func TestApplyPlayerLeaveFiltersQueue(t *testing.T) {
	state := baseState(t)
	next, err := Apply(state, envelope(t, protocol.PlayerLeave("p1")))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := next.Players["p1"]; ok {
		t.Fatal("leave delta kept the player")
	}
	if len(next.BuzzQueue) != 0 {
		t.Fatalf("queue = %v, want empty", next.BuzzQueue)
	}
	// The input state is untouched.
	if _, ok := state.Players["p1"]; !ok || len(state.BuzzQueue) != 1 {
		t.Fatal("Apply mutated its input")
	}
}

func TestApplyPlayerBanned(t *testing.T) {
	state := baseState(t)
	next, err := Apply(state, envelope(t, protocol.PlayerBanned("p1", "Ana")))
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := next.Players["p1"]; ok || len(next.BuzzQueue) != 0 {
		t.Fatalf("ban delta not applied: %+v", next)
	}
}

func TestApplyBuzzerReplacesQueue(t *testing.T) {
	state := baseState(t)
	next, err := Apply(state, envelope(t, protocol.Buzzer([]domain.PlayerID{"p2", "p1"})))
	if err != nil {
		t.Fatal(err)
	}
	if len(next.BuzzQueue) != 2 || next.BuzzQueue[0] != "p2" {
		t.Fatalf("queue = %v", next.BuzzQueue)
	}
}

func TestApplyControlReplacesStatus(t *testing.T) {
	state := baseState(t)
	next, err := Apply(state, envelope(t, protocol.ControlStatus(domain.StatusPreview5)))
	if err != nil {
		t.Fatal(err)
	}
	if next.Status != domain.StatusPreview5 {
		t.Fatalf("status = %s", next.Status)
	}
}

func TestApplyScoresReplacesPlayers(t *testing.T) {
	state := baseState(t)
	next, err := Apply(state, envelope(t, protocol.Scores(map[domain.PlayerID]domain.Player{
		"p1": {ID: "p1", Name: "Ana", Role: domain.RolePlayer, Score: 3},
	})))
	if err != nil {
		t.Fatal(err)
	}
	if len(next.Players) != 1 || next.Players["p1"].Score != 3 {
		t.Fatalf("players = %+v", next.Players)
	}
}

func TestApplyTrackChanged(t *testing.T) {
	state := baseState(t)
	id := domain.TrackID("t2")
	next, err := Apply(state, envelope(t, protocol.TrackChanged(&id)))
	if err != nil {
		t.Fatal(err)
	}
	if next.CurrentTrackID == nil || *next.CurrentTrackID != "t2" {
		t.Fatalf("current = %v", next.CurrentTrackID)
	}

	next, err = Apply(next, envelope(t, protocol.TrackChanged(nil)))
	if err != nil {
		t.Fatal(err)
	}
	if next.CurrentTrackID != nil {
		t.Fatalf("current = %v, want nil", next.CurrentTrackID)
	}
}

func TestApplyPresentationKindsLeaveStateAlone(t *testing.T) {
	state := baseState(t)
	for _, env := range []protocol.Envelope{
		protocol.PointAwarded("p1", "Ana", 1, protocol.TrackInfo{Title: "Despacito", Artist: "Luis Fonsi"}),
		protocol.ErrorMessage("no"),
		protocol.JoinAck("p1", false),
	} {
		next, err := Apply(state, envelope(t, env))
		if err != nil {
			t.Fatal(err)
		}
		if next.Status != state.Status || len(next.Players) != len(state.Players) {
			t.Fatalf("%s changed room state", env.Type)
		}
	}
}

func TestApplyMalformedPayloadKeepsState(t *testing.T) {
	state := baseState(t)
	raw := protocol.RawEnvelope{Type: protocol.KindBuzzer, Payload: json.RawMessage(`"nope"`)}
	next, err := Apply(state, raw)
	if err == nil {
		t.Fatal("want error for malformed payload")
	}
	if next != state {
		t.Fatal("on error Apply must return the prior state")
	}
}
