package queue

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Publisher interface {
	Publish(ctx context.Context, exchange, key string, event any, reqID string) error
	Close() error
}

// NoopPub is used when no broker is configured (local dev, tests).
type NoopPub struct{}

func NewNoop() Publisher { return NoopPub{} }

func (NoopPub) Publish(ctx context.Context, exchange, key string, event any, reqID string) error {
	return nil
}
func (NoopPub) Close() error { return nil }

// Routing keys on the auth events exchange.
const (
	KeyUserRegistered = "user.registered"
	KeyUserLoggedIn   = "user.loggedin"
)

type UserRegistered struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Email    string             `json:"email"`
	Name     string             `json:"name"`
	Provider string             `json:"provider"`
}

type UserLoggedIn struct {
	UserID   primitive.ObjectID `json:"user_id"`
	Email    string             `json:"email"`
	Provider string             `json:"provider"`
}
