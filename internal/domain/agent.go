package domain

// AgentRecord is one entry of the controller's computer list.
type AgentRecord struct {
	DisplayName        string `json:"displayName"`
	Offline            bool   `json:"offline"`
	TemporarilyOffline bool   `json:"temporarilyOffline"`
	OfflineCauseReason string `json:"offlineCauseReason"`
}

// Roster is the document served by /manage/computer/api/json.
// Computer is nil when the key is absent or null.
type Roster struct {
	Computer *[]AgentRecord `json:"computer"`
}

// Agents returns the computer list and whether the document carried one.
func (r *Roster) Agents() ([]AgentRecord, bool) {
	if r == nil || r.Computer == nil {
		return nil, false
	}

	return *r.Computer, true
}
