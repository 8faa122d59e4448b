package users

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrNotFound          = errors.New("user not found")
	ErrNoPassword        = errors.New("user has no local password")
	QueryTimeoutDuration = time.Second * 5
)

// User is an identity known to the service. UID is the stable identity key
// used for review authorship, votes and karma.
type User struct {
	UID         string    `json:"id"`
	Username    string    `json:"username,omitempty"`
	DisplayName string    `json:"displayName"`
	Password    password  `json:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Store interface {
	GetByUID(ctx context.Context, uid string) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	// Upsert records an identity seen on a verified credential.
	Upsert(ctx context.Context, user *User) error
	// EnsureLocal creates or refreshes a username/password account.
	EnsureLocal(ctx context.Context, user *User) error
}

// LocalUID derives the identity key of a local account from its username.
func LocalUID(username string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("luggo:local:"+username)).String()
}

type password struct {
	text *string
	hash []byte
}

func (p *password) Set(text string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(text), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	p.text = &text
	p.hash = hash

	return nil
}

func (p *password) Compare(text string) error {
	if len(p.hash) == 0 {
		return ErrNoPassword
	}
	return bcrypt.CompareHashAndPassword(p.hash, []byte(text))
}

// Hash exposes the stored hash for persistence.
func (p *password) Hash() []byte {
	return p.hash
}

func (p *password) SetHash(hash []byte) {
	p.hash = hash
}
