package redis

import "fmt"

func matchProcessedKey(matchID string) string {
	return fmt.Sprintf("pugstats:match:%s:processed", matchID)
}

func matchLockKey(matchID string) string {
	return fmt.Sprintf("pugstats:match:%s:lock", matchID)
}

func pipelineEventKey(eventType string) string {
	return fmt.Sprintf("pugstats:events:%s", eventType)
}
