package models

// Player is one connection's seat in a room. ConnID is the opaque identity
// handed to us by the transport layer; IsHost never changes after creation.
type Player struct {
	ConnID  string
	Wallet  string
	Name    string
	IsHost  bool
	IsReady bool
	Extras  map[string]any // payment proof and other client-supplied extras
}

// PlayerView is the broadcast-safe snapshot of a Player.
type PlayerView struct {
	ConnID  string         `json:"connectionId"`
	Wallet  string         `json:"wallet"`
	Name    string         `json:"name"`
	IsHost  bool           `json:"isHost"`
	IsReady bool           `json:"isReady"`
	Extras  map[string]any `json:"extras,omitempty"`
}

func (p *Player) view() PlayerView {
	var extras map[string]any
	if len(p.Extras) > 0 {
		extras = make(map[string]any, len(p.Extras))
		for k, v := range p.Extras {
			extras[k] = v
		}
	}
	return PlayerView{
		ConnID:  p.ConnID,
		Wallet:  p.Wallet,
		Name:    p.Name,
		IsHost:  p.IsHost,
		IsReady: p.IsReady,
		Extras:  extras,
	}
}
