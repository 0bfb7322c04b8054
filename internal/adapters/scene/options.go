package scene

import "github.com/okian/avatarpaint/pkg/logger"

// Option applies a configuration option to the Scene.
type Option func(*Scene)

// WithLogger sets the scene logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scene) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithChatHistory bounds how many chat lines are kept per avatar.
func WithChatHistory(n int) Option {
	return func(s *Scene) {
		if n > 0 {
			s.chatHistory = n
		}
	}
}
