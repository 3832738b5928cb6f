package domain

const MaxRoomNameLen = 50

type RoomName string

type Status string

const (
	StatusStopped  Status = "stopped"
	StatusPlaying  Status = "playing"
	StatusPaused   Status = "paused"
	StatusPreview2 Status = "preview2"
	StatusPreview5 Status = "preview5"
)

// Preview statuses auto-revert to stopped unless superseded first.
func (s Status) IsPreview() bool {
	return s == StatusPreview2 || s == StatusPreview5
}

type ControlAction string

const (
	ActionPlay     ControlAction = "play"
	ActionPause    ControlAction = "pause"
	ActionStop     ControlAction = "stop"
	ActionPreview2 ControlAction = "preview2"
	ActionPreview5 ControlAction = "preview5"
)

// StatusFor maps a control action to the status it requests.
func StatusFor(a ControlAction) (Status, bool) {
	switch a {
	case ActionPlay:
		return StatusPlaying, true
	case ActionPause:
		return StatusPaused, true
	case ActionStop:
		return StatusStopped, true
	case ActionPreview2:
		return StatusPreview2, true
	case ActionPreview5:
		return StatusPreview5, true
	}
	return "", false
}
