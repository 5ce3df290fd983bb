package messagequeue

// Change kinds carried on the change feed.
const (
	ChangeCreated = "created"
	ChangeUpdated = "updated"
	ChangeDeleted = "deleted"
)

// CardChangedPayload is the schema for cards.<collection>.changed messages.
// It names the changed document only; subscribers re-read the collection
// rather than patching local state from the payload.
type CardChangedPayload struct {
	Collection string `json:"collection"`
	CardID     string `json:"card_id"`
	Kind       string `json:"kind"`
}

// AnnouncementChangedPayload is the schema for announcements.changed messages.
type AnnouncementChangedPayload struct {
	AnnouncementID string `json:"announcement_id"`
}
