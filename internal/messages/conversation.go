package messages

import (
	"github.com/google/uuid"
)

// ConversationKey derives the order-independent conversation id for a pair of
// users. Both directions of a chat map to the same key.
func ConversationKey(a, b uuid.UUID) string {
	first, second := a.String(), b.String()
	if second < first {
		first, second = second, first
	}
	return first + "_" + second
}
