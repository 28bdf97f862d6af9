// Package bbolt provides a BBolt-backed implementation of users.Store.
package bbolt

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"strings"

	"go.etcd.io/bbolt"

	"github.com/Erkan3034/yurtgate/users"
)

var (
	bucketUsers      = []byte("users")
	bucketUserEmails = []byte("user_emails")
	bucketDorms      = []byte("dorms")
	bucketDormNames  = []byte("dorm_names")
)

// userRecord is the persisted shape of a user. Unlike users.User it
// serializes the password hash.
type userRecord struct {
	users.Profile
	PasswordHash string `json:"password_hash"`
}

// Store implements users.Store backed by a BBolt database.
type Store struct {
	db *bbolt.DB
}

var _ users.Store = (*Store)(nil)

// NewStore returns a Store backed by the given BBolt database. The
// required buckets are created if missing.
func NewStore(db *bbolt.DB) (*Store, error) {
	err := db.Update(func(tx *bbolt.Tx) error {
		for _, name := range [][]byte{bucketUsers, bucketUserEmails, bucketDorms, bucketDormNames} {
			if _, err := tx.CreateBucketIfNotExists(name); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("initializing user buckets: %w", err)
	}
	return &Store{db: db}, nil
}

// NewStoreFromFile opens a BBolt database at the given path and returns a new Store.
func NewStoreFromFile(path string, options *bbolt.Options) (*Store, error) {
	db, err := bbolt.Open(path, 0600, options)
	if err != nil {
		return nil, fmt.Errorf("opening bbolt db: %w", err)
	}
	return NewStore(db)
}

// Close closes the underlying BBolt database.
func (s *Store) Close() error {
	return s.db.Close()
}

func itob(id int64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(id))
	return b
}

func (s *Store) CreateUser(_ context.Context, u *users.User) (*users.User, error) {
	created := u.Clone()
	err := s.db.Update(func(tx *bbolt.Tx) error {
		emails := tx.Bucket(bucketUserEmails)
		if emails.Get([]byte(u.Email)) != nil {
			return fmt.Errorf("%s: %w", u.Email, users.ErrEmailTaken)
		}
		b := tx.Bucket(bucketUsers)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		created.ID = int64(seq)
		data, err := json.Marshal(userRecord{Profile: created.Profile, PasswordHash: created.PasswordHash})
		if err != nil {
			return err
		}
		if err := b.Put(itob(created.ID), data); err != nil {
			return err
		}
		return emails.Put([]byte(created.Email), itob(created.ID))
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*users.User, error) {
	var id int64
	err := s.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(bucketUserEmails).Get([]byte(email))
		if v == nil {
			return fmt.Errorf("user %s: %w", email, users.ErrNotFound)
		}
		id = int64(binary.BigEndian.Uint64(v))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetUserByID(ctx, id)
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*users.User, error) {
	var rec userRecord
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketUsers).Get(itob(id))
		if data == nil {
			return fmt.Errorf("user %d: %w", id, users.ErrNotFound)
		}
		return json.Unmarshal(data, &rec)
	})
	if err != nil {
		return nil, err
	}
	return &users.User{Profile: rec.Profile, PasswordHash: rec.PasswordHash}, nil
}

func (s *Store) UpdateUser(_ context.Context, u *users.User) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketUsers)
		old := b.Get(itob(u.ID))
		if old == nil {
			return fmt.Errorf("user %d: %w", u.ID, users.ErrNotFound)
		}
		var oldRec userRecord
		if err := json.Unmarshal(old, &oldRec); err != nil {
			return err
		}
		data, err := json.Marshal(userRecord{Profile: u.Profile, PasswordHash: u.PasswordHash})
		if err != nil {
			return err
		}
		if err := b.Put(itob(u.ID), data); err != nil {
			return err
		}
		if oldRec.Email != u.Email {
			emails := tx.Bucket(bucketUserEmails)
			if err := emails.Delete([]byte(oldRec.Email)); err != nil {
				return err
			}
			return emails.Put([]byte(u.Email), itob(u.ID))
		}
		return nil
	})
}

func (s *Store) EnsureDorm(_ context.Context, name, address string) (*users.Dorm, error) {
	key := []byte(strings.ToLower(strings.TrimSpace(name)))
	var dorm users.Dorm
	err := s.db.Update(func(tx *bbolt.Tx) error {
		names := tx.Bucket(bucketDormNames)
		dorms := tx.Bucket(bucketDorms)
		if v := names.Get(key); v != nil {
			data := dorms.Get(v)
			if data == nil {
				return fmt.Errorf("dorm index for %q is dangling: %w", name, users.ErrNotFound)
			}
			return json.Unmarshal(data, &dorm)
		}
		seq, err := dorms.NextSequence()
		if err != nil {
			return err
		}
		dorm = users.Dorm{
			ID:      int64(seq),
			Name:    strings.TrimSpace(name),
			Code:    users.DormCode(name),
			Address: address,
		}
		data, err := json.Marshal(dorm)
		if err != nil {
			return err
		}
		if err := dorms.Put(itob(dorm.ID), data); err != nil {
			return err
		}
		return names.Put(key, itob(dorm.ID))
	})
	if err != nil {
		return nil, err
	}
	return &dorm, nil
}

func (s *Store) GetDorm(_ context.Context, id int64) (*users.Dorm, error) {
	var dorm users.Dorm
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(bucketDorms).Get(itob(id))
		if data == nil {
			return fmt.Errorf("dorm %d: %w", id, users.ErrNotFound)
		}
		return json.Unmarshal(data, &dorm)
	})
	if err != nil {
		return nil, err
	}
	return &dorm, nil
}
