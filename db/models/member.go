package models

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// Member : Member Model
type Member struct {
	ID        int64        `json:"id" bun:",pk,autoincrement"`
	FirstName string       `json:"first_name" bun:",notnull"`
	LastName  string       `json:"last_name" bun:",notnull"`
	Document  string       `json:"document" bun:",nullzero,unique"`
	Email     string       `json:"email" bun:",nullzero"`
	Phone     string       `json:"phone" bun:",nullzero"`
	JoinedAt  time.Time    `json:"joined_at" bun:",nullzero,notnull,default:current_timestamp"`
	IsActive  bool         `json:"is_active" bun:",notnull,default:true"`
	CreatedAt time.Time    `json:"created_at" bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt bun.NullTime `json:"updated_at"`
}

func (m *Member) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.UpdateQuery:
		m.UpdatedAt = bun.NullTime{Time: time.Now()}
	}
	return nil
}

var _ bun.BeforeAppendModelHook = (*Member)(nil)
