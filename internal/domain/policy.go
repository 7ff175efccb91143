package domain

// TempOfflinePolicy decides how a node that an operator took offline is reported.
type TempOfflinePolicy string

const (
	TempOfflineOK   TempOfflinePolicy = "OK"
	TempOfflineWarn TempOfflinePolicy = "WARN"
	TempOfflineCrit TempOfflinePolicy = "CRIT"

	DefaultTempOfflinePolicy = TempOfflineWarn
)

// ParseTempOfflinePolicy never fails: unrecognised values resolve to WARN.
// Matching is case-sensitive.
func ParseTempOfflinePolicy(raw string) (TempOfflinePolicy, bool) {
	switch p := TempOfflinePolicy(raw); p {
	case TempOfflineOK, TempOfflineWarn, TempOfflineCrit:
		return p, true
	}

	return DefaultTempOfflinePolicy, false
}
