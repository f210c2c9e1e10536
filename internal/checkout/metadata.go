package checkout

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Session metadata keys shared between checkout and the Stripe webhook
// reconciler. The hosted flow creates no order up front; everything the
// reconciler needs to build one lives in the session metadata.
const (
	MetadataKeyUserID = "user_id"
	MetadataKeyShopID = "shop_id"
	MetadataKeyNote   = "note"
	MetadataKeyItems  = "items"
)

// ItemRef identifies one ordered product inside session metadata.
type ItemRef struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int       `json:"quantity"`
}

// EncodeItems serializes item refs for storage in session metadata.
func EncodeItems(items []ItemRef) (string, error) {
	raw, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode checkout items: %w", err)
	}
	return string(raw), nil
}

// DecodeItems parses the item refs a checkout session was created with.
func DecodeItems(raw string) ([]ItemRef, error) {
	var items []ItemRef
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode checkout items: %w", err)
	}
	return items, nil
}
