package api

import "log/slog"

// Option represents api service option
type Option func(s *Service)

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
