// Package journal records an audit trail of reward mutations for Questline.
package journal

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/fentz26/questline/internal/store"
)

// Writer appends entries to the reward journal. Every XP or gem mutation
// goes through here so progression history can be reconstructed.
type Writer struct {
	store *store.Store
}

// NewWriter creates a new journal writer.
func NewWriter(s *store.Store) *Writer {
	return &Writer{store: s}
}

// Record writes a journal entry for a state-mutating action.
func (w *Writer) Record(action string, inputs interface{}, outcome, userID, details string) error {
	return w.store.WriteJournal(action, hashInputs(inputs), outcome, userID, details)
}

// hashInputs creates a SHA256 hash of the inputs for reproducibility.
func hashInputs(inputs interface{}) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
