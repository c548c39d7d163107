package xscope

import (
	"context"
	"reflect"

	"github.com/trickstertwo/xscope/logx"
)

// For returns the logger named after T from the Concern for ctx.
func For[T any](ctx context.Context) *logx.Logger {
	return Logger(ctx, reflect.TypeFor[T]())
}

// Logged gives T one-line access to its own logger when embedded:
//
//	type Service struct {
//		xscope.Logged[Service]
//	}
//
//	func (s *Service) Handle(ctx context.Context) {
//		s.Logger(ctx).Info().Msg("handling")
//	}
type Logged[T any] struct{}

// Logger returns the logger named after T for ctx.
func (Logged[T]) Logger(ctx context.Context) *logx.Logger { return For[T](ctx) }
