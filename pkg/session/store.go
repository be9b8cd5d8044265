package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/hashgraph-online/multisig-sdk-go/pkg/envelope"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrClosed   = errors.New("session store not open")

	bucketName = []byte("sessions")
)

// Status is the lifecycle of a stored session.
type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
)

// Record is one stored session.
type Record struct {
	Envelope   envelope.Envelope `json:"envelope"`
	Status     Status            `json:"status"`
	LastResult string            `json:"lastResult,omitempty"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

// TransactionID returns the ID the session is keyed by.
func (r Record) TransactionID() string {
	return r.Envelope.TransactionID
}

// Store keeps sessions in a bbolt file. It is safe for concurrent use.
type Store struct {
	db  *bolt.DB
	now func() time.Time
}

// Open opens or creates the session database at path.
func Open(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open session store %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize session store: %w", err)
	}
	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database. Later calls return ErrClosed.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Put stores env as a pending session, replacing any existing record.
func (s *Store) Put(env envelope.Envelope) (Record, error) {
	record := Record{Envelope: env, Status: StatusPending}
	err := s.update(func(bucket *bolt.Bucket) error {
		return s.write(bucket, &record)
	})
	return record, err
}

// Get returns the session for transactionID or ErrNotFound.
func (s *Store) Get(transactionID string) (Record, error) {
	var record Record
	err := s.view(func(bucket *bolt.Bucket) error {
		found, err := read(bucket, transactionID)
		record = found
		return err
	})
	return record, err
}

// List returns every record ordered by transaction ID.
func (s *Store) List() ([]Record, error) {
	var records []Record
	err := s.view(func(bucket *bolt.Bucket) error {
		return bucket.ForEach(func(_ []byte, value []byte) error {
			var record Record
			if err := json.Unmarshal(value, &record); err != nil {
				return fmt.Errorf("failed to decode session record: %w", err)
			}
			records = append(records, record)
			return nil
		})
	})
	return records, err
}

// Delete removes the session for transactionID.
func (s *Store) Delete(transactionID string) error {
	return s.update(func(bucket *bolt.Bucket) error {
		if bucket.Get([]byte(transactionID)) == nil {
			return ErrNotFound
		}
		return bucket.Delete([]byte(transactionID))
	})
}

// Merge adds the signatures of env to the stored session in one transaction
// and returns the updated record with the number of signatures added.
func (s *Store) Merge(env envelope.Envelope) (Record, int, error) {
	var (
		record Record
		added  int
	)
	err := s.update(func(bucket *bolt.Bucket) error {
		existing, err := read(bucket, env.TransactionID)
		if err != nil {
			return err
		}
		before := len(existing.Envelope.Signatures)
		merged, err := existing.Envelope.Merge(env)
		if err != nil {
			return err
		}
		existing.Envelope = merged
		added = len(merged.Signatures) - before
		record = existing
		return s.write(bucket, &record)
	})
	return record, added, err
}

// SetResult records the outcome of a submission.
func (s *Store) SetResult(transactionID string, status Status, result string) (Record, error) {
	var record Record
	err := s.update(func(bucket *bolt.Bucket) error {
		existing, err := read(bucket, transactionID)
		if err != nil {
			return err
		}
		existing.Status = status
		existing.LastResult = result
		record = existing
		return s.write(bucket, &record)
	})
	return record, err
}

func (s *Store) view(fn func(*bolt.Bucket) error) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	return s.db.View(func(tx *bolt.Tx) error {
		return fn(tx.Bucket(bucketName))
	})
}

func (s *Store) update(fn func(*bolt.Bucket) error) error {
	if s == nil || s.db == nil {
		return ErrClosed
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return fn(tx.Bucket(bucketName))
	})
}

func (s *Store) write(bucket *bolt.Bucket, record *Record) error {
	if record.TransactionID() == "" {
		return fmt.Errorf("session record requires a transaction ID")
	}
	record.UpdatedAt = s.now().UTC()
	value, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode session record: %w", err)
	}
	return bucket.Put([]byte(record.TransactionID()), value)
}

func read(bucket *bolt.Bucket, transactionID string) (Record, error) {
	value := bucket.Get([]byte(transactionID))
	if value == nil {
		return Record{}, fmt.Errorf("%w: %s", ErrNotFound, transactionID)
	}
	var record Record
	if err := json.Unmarshal(value, &record); err != nil {
		return Record{}, fmt.Errorf("failed to decode session %s: %w", transactionID, err)
	}
	return record, nil
}
