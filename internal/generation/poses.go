package generation

import (
	"encoding/json"
	"log"
	"strings"
)

// ParsePoses extracts an ordered pose list from raw planner output.
//
// The planner is asked for a JSON array of {"pose": "..."} objects, but
// remote models are not reliable about it: output may be wrapped in
// markdown fences, be an array of bare strings, or not parse at all.
// Unparseable output degrades to zero poses rather than failing the
// stream; the orchestrator then proceeds straight to completion.
func ParsePoses(raw string) []string {
	trimmed := stripCodeFences(raw)
	if trimmed == "" {
		return nil
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		log.Printf("⚠️  Planner output is not a JSON list (%d chars), treating as zero poses: %v", len(raw), err)
		return nil
	}

	poses := make([]string, 0, len(items))
	for _, item := range items {
		if pose := parsePoseItem(item); pose != "" {
			poses = append(poses, pose)
		}
	}
	return poses
}

// parsePoseItem accepts both {"pose": "..."} objects and bare strings
func parsePoseItem(item json.RawMessage) string {
	var obj struct {
		Pose string `json:"pose"`
	}
	if err := json.Unmarshal(item, &obj); err == nil && strings.TrimSpace(obj.Pose) != "" {
		return strings.TrimSpace(obj.Pose)
	}

	var s string
	if err := json.Unmarshal(item, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return ""
}

// stripCodeFences removes a surrounding markdown code fence if present
func stripCodeFences(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json")
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
