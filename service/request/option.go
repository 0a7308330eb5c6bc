package request

// Option represents a repository option
type Option func(s *Service)

// WithIDGenerator sets the request identifier generator
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) {
		s.newID = fn
	}
}
