// Package report implements the report identity and persistence semantics:
// deterministic id derivation, a TTL'd key-value record store with
// one-record-per-identity merge behavior, and password-gated profile edits.
package report

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rinevard/BIT-Annual-Eat/internal/kv"
)

type Store struct {
	kv   kv.Store
	salt string
	ttl  time.Duration
}

func NewStore(store kv.Store, salt string, ttl time.Duration) *Store {
	return &Store{kv: store, salt: salt, ttl: ttl}
}

func reportKey(id string) string {
	return fmt.Sprintf("report:%s", id)
}

func missingRaw(m json.RawMessage) bool {
	return len(m) == 0 || string(m) == "null"
}

type uploadPayload struct {
	DailyStats json.RawMessage `json:"daily_stats"`
	AchState   json.RawMessage `json:"ach_state"`
	EditPw     string          `json:"edit_pw"`
}

// UploadJSON stores a structured report upload under the identifier derived
// from clientKey, carrying forward any previously stored profile. Returns
// the identifier.
func (s *Store) UploadJSON(ctx context.Context, body []byte, clientKey string) (string, error) {
	if len(body) > MaxJSONBytes {
		return "", ErrPayloadTooLarge
	}
	var payload uploadPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", ErrInvalidInput
	}
	if missingRaw(payload.DailyStats) || missingRaw(payload.AchState) {
		return "", ErrMissingFields
	}
	if payload.EditPw == "" {
		payload.EditPw = defaultEditPassword
	}

	id := DeriveID(clientKey, s.salt)
	key := reportKey(id)

	// Carry the old profile forward so a stats re-upload never erases the
	// user's avatar, title or badge selection. A failed read or parse of the
	// old value means no old profile, never an upload error.
	var oldProfile Profile
	if existing, ok, err := s.kv.Get(ctx, key); err == nil && ok {
		var old Record
		if json.Unmarshal([]byte(existing), &old) == nil {
			oldProfile = old.Profile
		}
	}

	record := Record{
		DailyStats: payload.DailyStats,
		AchState:   payload.AchState,
		EditPw:     payload.EditPw,
		Profile:    oldProfile,
	}
	encoded, err := json.Marshal(record)
	if err != nil {
		return "", err
	}
	if err := s.kv.Set(ctx, key, string(encoded), s.ttl); err != nil {
		return "", err
	}
	return id, nil
}

// UploadHTML stores a whole-document report upload under the identifier
// derived from clientKey, splicing the previously stored avatar block and
// user-title text into the new document when both sides carry the markers.
func (s *Store) UploadHTML(ctx context.Context, body []byte, clientKey string) (string, error) {
	if len(body) == 0 {
		return "", ErrInvalidInput
	}
	if len(body) > MaxHTMLBytes {
		return "", ErrPayloadTooLarge
	}

	id := DeriveID(clientKey, s.salt)
	key := reportKey(id)

	final := string(body)
	if old, ok, err := s.kv.Get(ctx, key); err == nil && ok {
		final = MergeAvatarAndTitle(old, final)
	}
	if err := s.kv.Set(ctx, key, final, s.ttl); err != nil {
		return "", err
	}
	return id, nil
}

// Overwrite unconditionally replaces the document at id. The identifier is
// the only capability required; see DESIGN.md on this trust model.
func (s *Store) Overwrite(ctx context.Context, id string, body []byte) error {
	if id == "" || len(body) == 0 {
		return ErrInvalidInput
	}
	if len(body) > MaxHTMLBytes {
		return ErrPayloadTooLarge
	}
	return s.kv.Set(ctx, reportKey(id), string(body), s.ttl)
}

// PatchProfile applies a partial profile edit to the record at id, gated by
// the record's edit password. Untouched fields keep their stored values.
func (s *Store) PatchProfile(ctx context.Context, id, password string, update ProfileUpdate) error {
	key := reportKey(id)
	stored, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	var record Record
	if err := json.Unmarshal([]byte(stored), &record); err != nil {
		return ErrCorruptedData
	}
	if password == "" || password != record.EditPw {
		return ErrForbidden
	}
	if err := update.Validate(); err != nil {
		return err
	}
	record.Profile.apply(update)
	encoded, err := json.Marshal(record)
	if err != nil {
		return err
	}
	return s.kv.Set(ctx, key, string(encoded), s.ttl)
}

// Document is the result of a read: either a raw HTML page stored verbatim,
// or a JSON record for the caller to render.
type Document struct {
	HTML   string
	Record *Record
}

// Load fetches the value at id and classifies its shape.
func (s *Store) Load(ctx context.Context, id string) (Document, error) {
	if id == "" {
		return Document{}, ErrNotFound
	}
	stored, ok, err := s.kv.Get(ctx, reportKey(id))
	if err != nil {
		return Document{}, err
	}
	if !ok {
		return Document{}, ErrNotFound
	}
	if looksLikeRecord(stored) {
		var record Record
		if err := json.Unmarshal([]byte(stored), &record); err != nil {
			return Document{}, ErrCorruptedData
		}
		return Document{Record: &record}, nil
	}
	return Document{HTML: stored}, nil
}
