package metadata

import (
	"fmt"
	"net/url"
	"path"

	"github.com/viant/afs"
	"github.com/viant/datarequest/service/messaging"
	"github.com/viant/datarequest/service/messaging/fs"
	"github.com/viant/datarequest/service/messaging/memory"
)

// Queue carries changes enqueued by a single principal
type Queue interface {
	messaging.Queue[Change]
	messaging.Poller[Change]
}

// NewQueue creates the queue of a principal
type NewQueue func(principal string) (Queue, error)

// Queue vendors
const (
	VendorMemory = messaging.VendorMemory
	VendorFS     = messaging.VendorFS
)

// MemoryQueues returns in-process per principal queues
func MemoryQueues(config memory.Config) NewQueue {
	return func(principal string) (Queue, error) {
		return memory.NewQueue[Change](config), nil
	}
}

// FSQueues returns durable per principal queues under basePath
func FSQueues(basePath string) NewQueue {
	fileSystem := afs.New()
	return func(principal string) (Queue, error) {
		config := fs.DefaultConfig()
		config.BasePath = path.Join(basePath, url.PathEscape(principal))
		return fs.NewQueue[Change](fileSystem, config)
	}
}

// QueuesOf returns the queue factory of a vendor
func QueuesOf(vendor messaging.Vendor, basePath string) (NewQueue, error) {
	switch vendor {
	case "", VendorMemory:
		return MemoryQueues(memory.DefaultConfig()), nil
	case VendorFS:
		if basePath == "" {
			return nil, fmt.Errorf("fs queue vendor requires base path")
		}
		return FSQueues(basePath), nil
	}
	return nil, fmt.Errorf("unsupported queue vendor: %s", vendor)
}
