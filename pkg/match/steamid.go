package match

import (
	"regexp"
	"strings"
)

var steamIDPattern = regexp.MustCompile(`(?i)^STEAM_[0-5]:[01]:\d+$`)

// NormalizeSteamID canonicalizes a steam identifier into the stable join
// key shared by match events, demo stats, and persisted rows. The
// universe digit is forced to 1, since the game server reports universe
// 0 while every other source reports 1.
//
// ok is false for anything that doesn't look like a steam ID at all:
// bots, spectators, and other non-player entries. Callers skip those
// silently rather than treating them as errors.
func NormalizeSteamID(raw string) (id string, ok bool) {
	id = strings.TrimSpace(raw)
	if !steamIDPattern.MatchString(id) {
		return "", false
	}
	id = strings.ToUpper(id[:6]) + id[6:]
	return id[:6] + "1" + id[7:], true
}
