package control

import "context"

// Input dispatches mouse and keyboard gestures to the game.
type Input interface {
	Click(ctx context.Context, x, y float64) error
	MoveTo(ctx context.Context, x, y float64) error
	SendKey(ctx context.Context, key string) error
	KeyDown(ctx context.Context, key string) error
	KeyUp(ctx context.Context, key string) error
}
