package resolve

import (
	"fmt"

	"golang.org/x/crypto/sha3"

	"github.com/repcard/engine/internal/core/domain"
)

// transferTopic is the canonical ERC-721 Transfer(address,address,uint256)
// topic. Proxy and registry contracts emit it on the card contract's
// behalf, which is what the secondary tier tolerates.
const transferTopic = "0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"

// Completion events emitted by the card contract itself, one per intent
// kind. The card id is the second indexed argument.
var completionEvents = map[domain.IntentKind]string{
	domain.IntentIssue:  "CardIssued(address,uint256)",
	domain.IntentClaim:  "CardClaimed(address,uint256)",
	domain.IntentRevoke: "CardRevoked(address,uint256)",
}

var completionTopics = func() map[domain.IntentKind]string {
	topics := make(map[domain.IntentKind]string, len(completionEvents))
	for kind, sig := range completionEvents {
		topics[kind] = eventTopic(sig)
	}
	return topics
}()

// eventTopic returns the 0x-prefixed Keccak-256 hash of an event
// signature.
func eventTopic(signature string) string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return fmt.Sprintf("0x%x", h.Sum(nil))
}
