package event

import (
	"log/slog"
	"path"
	"strings"

	"github.com/viant/datarequest/service/messaging/fs"
	"github.com/viant/datarequest/service/messaging/memory"
)

// Option represents an event service option
type Option func(s *Service)

// WithNewFsQueueConfig sets the file system queue configuration of a topic
func WithNewFsQueueConfig(newConfig func(topic string) fs.QueueConfig) Option {
	return func(s *Service) {
		s.fsConfig = newConfig
	}
}

// WithFsBasePath stores every topic under basePath/<topic>
func WithFsBasePath(basePath string) Option {
	return WithNewFsQueueConfig(func(topic string) fs.QueueConfig {
		config := fs.DefaultConfig()
		config.BasePath = path.Join(basePath, strings.ReplaceAll(topic, "/", "_"))
		return config
	})
}

// WithNewMemoryQueueConfig sets the memory queue configuration of a topic
func WithNewMemoryQueueConfig(newConfig func(topic string) memory.Config) Option {
	return func(s *Service) {
		s.memoryConfig = newConfig
	}
}

// WithLogger sets listener logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}
