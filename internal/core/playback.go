package core

import (
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GonzaloGRomero/Una-nota/internal/domain"
	"github.com/GonzaloGRomero/Una-nota/internal/protocol"
)

// Playback controller: the status state machine. Every transition runs
// under the hub mutex, so a control action and a firing preview timer can
// never interleave; whichever acquires the lock last wins.

// SetControl applies an organizer control action. stop clears the buzz
// queue; preview2/preview5 arm a timer that reverts to stopped unless a
// later mutation supersedes it first.
func (h *Hub) SetControl(sid SessionID, action domain.ControlAction) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.organizerLocked(sid); err != nil {
		return err
	}
	status, ok := domain.StatusFor(action)
	if !ok {
		return ErrUnknownAction
	}

	h.cancelPreviewLocked()
	h.status = status
	cleared := false
	if status == domain.StatusStopped && len(h.buzzQueue) > 0 {
		h.buzzQueue = []domain.PlayerID{}
		cleared = true
	}
	switch status {
	case domain.StatusPreview2:
		h.armPreviewLocked(h.PreviewShort)
	case domain.StatusPreview5:
		h.armPreviewLocked(h.PreviewLong)
	}

	h.broadcastLocked(protocol.ControlStatus(h.status))
	if cleared {
		h.broadcastLocked(protocol.Buzzer(h.buzzQueue))
	}
	log.Debug().Str("module", "core.playback").Str("room", string(h.name)).
		Str("status", string(h.status)).Msg("control applied")
	return nil
}

// NextTrack advances along the shuffled order with wraparound. A fresh
// track attempt always starts stopped with an empty buzz queue.
func (h *Hub) NextTrack(sid SessionID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.organizerLocked(sid); err != nil {
		return err
	}
	if len(h.trackOrder) == 0 {
		return nil
	}
	idx := -1
	for i, id := range h.trackOrder {
		if id == h.currentTrack {
			idx = i
			break
		}
	}
	h.currentTrack = h.trackOrder[(idx+1)%len(h.trackOrder)]
	h.resetAttemptLocked()
	return nil
}

// SelectTrack jumps straight to a track by id.
func (h *Hub) SelectTrack(sid SessionID, trackID domain.TrackID) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err := h.organizerLocked(sid); err != nil {
		return err
	}
	if _, ok := h.trackByIDLocked(trackID); !ok {
		return ErrUnknownTrack
	}
	h.currentTrack = trackID
	h.resetAttemptLocked()
	return nil
}

// resetAttemptLocked applies the unconditional reset every track change
// carries: stopped status, empty buzz queue, no pending preview revert.
func (h *Hub) resetAttemptLocked() {
	h.cancelPreviewLocked()
	h.status = domain.StatusStopped
	h.buzzQueue = []domain.PlayerID{}
	h.broadcastLocked(protocol.TrackChanged(h.currentTrackPtrLocked()))
	h.broadcastLocked(protocol.ControlStatus(h.status))
	h.broadcastLocked(protocol.Buzzer(h.buzzQueue))
}

// armPreviewLocked schedules the auto-revert. The generation counter makes
// a stale timer harmless: every later mutation that touches playback bumps
// the generation, and the callback re-checks it under the mutex.
func (h *Hub) armPreviewLocked(d time.Duration) {
	gen := h.previewGen
	h.previewTimer = time.AfterFunc(d, func() {
		h.previewExpired(gen)
	})
}

func (h *Hub) cancelPreviewLocked() {
	h.previewGen++
	if h.previewTimer != nil {
		h.previewTimer.Stop()
		h.previewTimer = nil
	}
}

func (h *Hub) previewExpired(gen uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if gen != h.previewGen || !h.status.IsPreview() {
		return
	}
	h.previewTimer = nil
	h.status = domain.StatusStopped
	h.buzzQueue = []domain.PlayerID{}
	h.broadcastLocked(protocol.ControlStatus(h.status))
	h.broadcastLocked(protocol.Buzzer(h.buzzQueue))
	log.Debug().Str("module", "core.playback").Str("room", string(h.name)).Msg("preview reverted")
}
