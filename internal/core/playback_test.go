package core

import (
	"errors"
	"testing"
	"time"

	"github.com/GonzaloGRomero/Una-nota/internal/domain"
	"github.com/GonzaloGRomero/Una-nota/internal/protocol"
)

const testTick = time.Millisecond

func waitTicks(n int) { time.Sleep(time.Duration(n) * testTick) }

func TestControlTransitions(t *testing.T) {
	tests := []struct {
		action domain.ControlAction
		want   domain.Status
	}{
		{domain.ActionPlay, domain.StatusPlaying},
		{domain.ActionPause, domain.StatusPaused},
		{domain.ActionStop, domain.StatusStopped},
		{domain.ActionPreview2, domain.StatusPreview2},
		{domain.ActionPreview5, domain.StatusPreview5},
	}
	for _, tt := range tests {
		t.Run(string(tt.action), func(t *testing.T) {
			h := NewHub("sala")
			h.PreviewShort = time.Minute
			h.PreviewLong = time.Minute
			mustJoin(t, h, "org", "Orga", domain.RoleOrganizer)

			if err := h.SetControl("org", tt.action); err != nil {
				t.Fatal(err)
			}
			if got := h.Snapshot().Status; got != tt.want {
				t.Fatalf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestControlRequiresOrganizer(t *testing.T) {
	h := NewHub("sala")
	p, _ := mustJoin(t, h, "sa", "Ana", domain.RolePlayer)
	_ = p

	if err := h.SetControl("sa", domain.ActionPlay); !errors.Is(err, ErrNotOrganizer) {
		t.Fatalf("err = %v, want ErrNotOrganizer", err)
	}
	if err := h.SetControl("ghost", domain.ActionPlay); !errors.Is(err, ErrNotJoined) {
		t.Fatalf("err = %v, want ErrNotJoined", err)
	}
}

func TestControlRejectsUnknownAction(t *testing.T) {
	h := NewHub("sala")
	mustJoin(t, h, "org", "Orga", domain.RoleOrganizer)

	if err := h.SetControl("org", "rewind"); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("err = %v, want ErrUnknownAction", err)
	}
}

func TestStopClearsBuzzQueue(t *testing.T) {
	h := NewHub("sala")
	mustJoin(t, h, "org", "Orga", domain.RoleOrganizer)
	a, aConn := mustJoin(t, h, "sa", "Ana", domain.RolePlayer)

	if _, err := h.Buzz("sa", a.ID); err != nil {
		t.Fatal(err)
	}
	if err := h.SetControl("org", domain.ActionStop); err != nil {
		t.Fatal(err)
	}

	snap := h.Snapshot()
	if snap.Status != domain.StatusStopped || len(snap.BuzzQueue) != 0 {
		t.Fatalf("after stop: status %s, queue %v", snap.Status, snap.BuzzQueue)
	}

	var bp protocol.BuzzerPayload
	mustUnmarshal(t, aConn.lastPayload(t, protocol.KindBuzzer), &bp)
	if len(bp.Queue) != 0 {
		t.Fatalf("stop must broadcast the cleared queue, got %v", bp.Queue)
	}
}

func TestPreviewAutoReverts(t *testing.T) {
	h := NewHub("sala")
	h.PreviewShort = 5 * testTick
	mustJoin(t, h, "org", "Orga", domain.RoleOrganizer)
	_, conn := mustJoin(t, h, "sa", "Ana", domain.RolePlayer)

	if err := h.SetControl("org", domain.ActionPreview2); err != nil {
		t.Fatal(err)
	}
	if got := h.Snapshot().Status; got != domain.StatusPreview2 {
		t.Fatalf("status = %s, want preview2", got)
	}

	deadline := time.Now().Add(2 * time.Second)
	for h.Snapshot().Status != domain.StatusStopped {
		if time.Now().After(deadline) {
			t.Fatalf("preview never reverted, status = %s", h.Snapshot().Status)
		}
		waitTicks(1)
	}

	var cp protocol.ControlPayload
	mustUnmarshal(t, conn.lastPayload(t, protocol.KindControl), &cp)
	if cp.Status != domain.StatusStopped {
		t.Fatalf("revert must broadcast stopped, got %s", cp.Status)
	}
}

func TestPreviewSupersededByLaterControl(t *testing.T) {
	h := NewHub("sala")
	h.PreviewShort = 5 * testTick
	mustJoin(t, h, "org", "Orga", domain.RoleOrganizer)

	if err := h.SetControl("org", domain.ActionPreview2); err != nil {
		t.Fatal(err)
	}
	if err := h.SetControl("org", domain.ActionPlay); err != nil {
		t.Fatal(err)
	}

	waitTicks(30)
	if got := h.Snapshot().Status; got != domain.StatusPlaying {
		t.Fatalf("status = %s, want playing (stale timer must not fire)", got)
	}
}

func TestPreviewRearmedRestartsClock(t *testing.T) {
	h := NewHub("sala")
	h.PreviewShort = 5 * testTick
	h.PreviewLong = time.Minute
	mustJoin(t, h, "org", "Orga", domain.RoleOrganizer)

	if err := h.SetControl("org", domain.ActionPreview2); err != nil {
		t.Fatal(err)
	}
	if err := h.SetControl("org", domain.ActionPreview5); err != nil {
		t.Fatal(err)
	}

	waitTicks(30)
	if got := h.Snapshot().Status; got != domain.StatusPreview5 {
		t.Fatalf("status = %s, want preview5 (short timer was cancelled)", got)
	}
}

func TestNextTrackWrapsAround(t *testing.T) {
	h := NewHub("sala")
	mustJoin(t, h, "org", "Orga", domain.RoleOrganizer)
	h.SetTracks(testTracks())

	order := h.Snapshot().TrackOrder
	for i := 1; i <= len(order); i++ {
		if err := h.NextTrack("org"); err != nil {
			t.Fatal(err)
		}
		want := order[i%len(order)]
		snap := h.Snapshot()
		if snap.CurrentTrackID == nil || *snap.CurrentTrackID != want {
			t.Fatalf("step %d: current = %v, want %s", i, snap.CurrentTrackID, want)
		}
	}
}

func TestNextTrackWithoutTracksIsNoOp(t *testing.T) {
	h := NewHub("sala")
	mustJoin(t, h, "org", "Orga", domain.RoleOrganizer)

	if err := h.NextTrack("org"); err != nil {
		t.Fatalf("next on empty room: %v", err)
	}
	if snap := h.Snapshot(); snap.CurrentTrackID != nil {
		t.Fatalf("current = %v, want nil", snap.CurrentTrackID)
	}
}

func TestTrackChangeResetsAttempt(t *testing.T) {
	h := NewHub("sala")
	h.PreviewLong = time.Minute
	mustJoin(t, h, "org", "Orga", domain.RoleOrganizer)
	a, aConn := mustJoin(t, h, "sa", "Ana", domain.RolePlayer)
	h.SetTracks(testTracks())

	if err := h.SetControl("org", domain.ActionPreview5); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Buzz("sa", a.ID); err != nil {
		t.Fatal(err)
	}

	if err := h.SelectTrack("org", "t2"); err != nil {
		t.Fatal(err)
	}
	snap := h.Snapshot()
	if snap.CurrentTrackID == nil || *snap.CurrentTrackID != "t2" {
		t.Fatalf("current = %v, want t2", snap.CurrentTrackID)
	}
	if snap.Status != domain.StatusStopped || len(snap.BuzzQueue) != 0 {
		t.Fatalf("track change must reset: status %s, queue %v", snap.Status, snap.BuzzQueue)
	}

	var tp protocol.TrackChangedPayload
	mustUnmarshal(t, aConn.lastPayload(t, protocol.KindTrackChanged), &tp)
	if tp.CurrentTrackID == nil || *tp.CurrentTrackID != "t2" {
		t.Fatalf("track_changed payload = %v, want t2", tp.CurrentTrackID)
	}
}

func TestSelectTrackUnknown(t *testing.T) {
	h := NewHub("sala")
	mustJoin(t, h, "org", "Orga", domain.RoleOrganizer)
	h.SetTracks(testTracks())

	if err := h.SelectTrack("org", "missing"); !errors.Is(err, ErrUnknownTrack) {
		t.Fatalf("err = %v, want ErrUnknownTrack", err)
	}
}
