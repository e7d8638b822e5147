package demostats

// Player is one per-player record extracted from a demo by the
// csgo-demo-stats service. Only the fields the scoreboard and the
// persisted rows consume are mapped; the service reports many more.
type Player struct {
	SteamID    string  `json:"steamid"`
	SteamID64  int64   `json:"steamid64"`
	Name       string  `json:"name"`
	Team       string  `json:"team"`
	IsBot      bool    `json:"isbot"`
	Kills      int     `json:"kills"`
	Assists    int     `json:"assists"`
	Deaths     int     `json:"deaths"`
	ADR        float64 `json:"adr"`
	HSPercent  float64 `json:"hsprecent"`
	EffFlashes int     `json:"effFlashes"`
	EFPR       float64 `json:"efpr"`
	Rating     float64 `json:"rating"`
	RWS        float64 `json:"rws"`
}

type statsResponse struct {
	Players []Player `json:"players"`
}
