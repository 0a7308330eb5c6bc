package metadata

// Option represents a metadata service option
type Option func(s *Service)

// WithQueues sets the per principal queue factory
func WithQueues(newQueue NewQueue) Option {
	return func(s *Service) {
		s.newQueue = newQueue
	}
}

// WithAgent sets the privileged agent
func WithAgent(agent *Agent) Option {
	return func(s *Service) {
		s.agent = agent
	}
}
