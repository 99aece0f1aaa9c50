package probe

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Func represents a health check that returns an error when the resource is unavailable.
type Func func(ctx context.Context) error

// StorePinger is implemented by todo stores that can report whether their
// backend is reachable.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// Prober is implemented by stores that build their own readiness probe,
// such as the MongoDB store.
type Prober interface {
	Probe() Func
}

// NewPingProbe names fn so failures read "<name> probe failed: ...".
func NewPingProbe(name string, fn Func) Func {
	return func(ctx context.Context) error {
		if fn == nil {
			return fmt.Errorf("%s probe: ping function is nil", name)
		}
		if err := fn(orBackground(ctx)); err != nil {
			return fmt.Errorf("%s probe failed: %w", name, err)
		}
		return nil
	}
}

// NewStoreProbe checks a todo store through its Ping method.
func NewStoreProbe(name string, store StorePinger) Func {
	if store == nil {
		return func(context.Context) error {
			return fmt.Errorf("%s probe: store is nil", name)
		}
	}
	return NewPingProbe(name, store.Ping)
}

// MongoPinger captures the subset of the MongoDB client used for readiness checks.
type MongoPinger interface {
	Ping(ctx context.Context, rp *readpref.ReadPref) error
}

// NewMongoPingProbe creates a Func that pings MongoDB using the provided client.
// If readPref is nil it defaults to readpref.Primary.
func NewMongoPingProbe(client MongoPinger, readPref *readpref.ReadPref) Func {
	if readPref == nil {
		readPref = readpref.Primary()
	}
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("mongo probe: client is nil")
		}
		if err := client.Ping(orBackground(ctx), readPref); err != nil {
			return fmt.Errorf("mongo probe failed: %w", err)
		}
		return nil
	}
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
