package wish

import (
	"time"

	"github.com/google/uuid"
)

type Wish struct {
	UUID      uuid.UUID `json:"uuid" db:"uuid"`
	Title     string    `json:"title" db:"title"`
	Status    Status    `json:"status" db:"status"`
	Category  string    `json:"category" db:"category"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Remarks   []Remark  `json:"remarks" db:"-"`
}

type Remark struct {
	UUID      uuid.UUID `json:"uuid" db:"uuid"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type Status string

const StatusWish Status = "wish"
const StatusInProgress Status = "in-progress"
const StatusAchieved Status = "achieved"

// Statuses lists the buckets in the order the tabs are shown.
var Statuses = []Status{StatusWish, StatusInProgress, StatusAchieved}

func (s Status) Valid() bool {
	for _, known := range Statuses {
		if s == known {
			return true
		}
	}
	return false
}

// Clone returns a deep copy; the remarks slice is never shared.
func (w *Wish) Clone() *Wish {
	if w == nil {
		return nil
	}
	cp := *w
	cp.Remarks = make([]Remark, len(w.Remarks))
	copy(cp.Remarks, w.Remarks)
	return &cp
}
