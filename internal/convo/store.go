package convo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/storage"
)

// historyPrefix namespaces conversation blobs in the shared store.
const historyPrefix = "history/"

// Store persists conversation records as JSON blobs. JSON keeps the Arabic
// conversation content byte-for-byte across the round trip.
type Store struct {
	blobs storage.BlobStore
}

// NewStore creates a conversation store over the given blob storage.
func NewStore(blobs storage.BlobStore) (*Store, error) {
	if blobs == nil {
		return nil, fmt.Errorf("blob store cannot be nil")
	}
	return &Store{blobs: blobs}, nil
}

// historyKey builds the storage key for a (user, character) pair.
func historyKey(userID, character string) string {
	return fmt.Sprintf("%s%s_%s", historyPrefix, userID, character)
}

// Load returns the persisted record for the pair. A missing blob yields an
// empty record. A corrupt blob also yields an empty record: the damage is
// logged and the next Save overwrites it, but a broken history file must
// never make the character unreachable.
func (s *Store) Load(ctx context.Context, userID, character string) (*Record, error) {
	data, err := s.blobs.ReadAll(ctx, historyKey(userID, character))
	if errors.Is(err, storage.ErrNotFound) {
		return NewRecord(userID, character), nil
	}
	if err != nil {
		return nil, fmt.Errorf("loading conversation %s/%s: %w", userID, character, err)
	}

	var record Record
	if err := json.Unmarshal(data, &record); err != nil {
		log.Printf("[Conversation Store] corrupt history for %s/%s, starting fresh: %v", userID, character, err)
		return NewRecord(userID, character), nil
	}

	// Key fields win over whatever the blob claims.
	record.UserID = userID
	record.Character = character
	return &record, nil
}

// Save overwrites the persisted record atomically.
func (s *Store) Save(ctx context.Context, record *Record) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding conversation %s/%s: %w", record.UserID, record.Character, err)
	}
	if err := s.blobs.WriteAll(ctx, historyKey(record.UserID, record.Character), data); err != nil {
		return fmt.Errorf("saving conversation %s/%s: %w", record.UserID, record.Character, err)
	}
	return nil
}
