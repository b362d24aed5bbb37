package model

import (
	"strings"
	"time"

	"promptmarket/internal/domain"

	"github.com/google/uuid"
)

// SystemRequesterHandle is the default requester identity used when a job is
// posted without an explicit requester handle.
const SystemRequesterHandle = "system-requester"

const maxHandleLen = 64

// User is a marketplace participant: a requester posting jobs or a worker
// submitting work. Users are created lazily on first reference by handle.
type User struct {
	ID        string
	Handle    string
	CreatedAt time.Time
}

func NewUser(id, handle string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	handle = strings.TrimSpace(handle)
	if handle == "" || len(handle) > maxHandleLen {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:        id,
		Handle:    handle,
		CreatedAt: time.Now(),
	}, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }
