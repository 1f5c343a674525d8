package serializer

import (
	"encoding"
	"encoding/gob"
	"fmt"
	"reflect"
	"sync"
)

// --------------------------------------------------------------------------
// Custom Type Registry
// --------------------------------------------------------------------------

// The registry maps stable type names to factories, similar to gob.Register.
// A custom type must implement both encoding.BinaryMarshaler and
// encoding.BinaryUnmarshaler; the factory returns a fresh (pointer) instance
// that Deserialize unmarshals into.

var (
	registryMu sync.RWMutex
	factories  = map[string]func() any{}
	typeNames  = map[reflect.Type]string{}
)

// Register makes a custom type known to all serializers under a stable name.
// The factory must return a pointer to a zero value of the type. Register
// panics if the name is already taken or the type does not implement the
// binary marshalling contract. It is typically called from an init function.
func Register(name string, factory func() any) {
	inst := factory()
	if _, ok := inst.(encoding.BinaryMarshaler); !ok {
		panic(fmt.Sprintf("serializer: type %T does not implement encoding.BinaryMarshaler", inst))
	}
	if _, ok := inst.(encoding.BinaryUnmarshaler); !ok {
		panic(fmt.Sprintf("serializer: type %T does not implement encoding.BinaryUnmarshaler", inst))
	}

	registryMu.Lock()
	defer registryMu.Unlock()

	if _, dup := factories[name]; dup {
		panic(fmt.Sprintf("serializer: type name %q already registered", name))
	}
	factories[name] = factory
	typeNames[reflect.TypeOf(inst)] = name

	// make the type usable by the gob serializer as well
	gob.Register(inst)
}

// lookupName returns the registered name for a value's concrete type.
func lookupName(v any) (string, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	name, ok := typeNames[reflect.TypeOf(v)]
	return name, ok
}

// lookupFactory returns the factory for a registered type name.
func lookupFactory(name string) (func() any, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	factory, ok := factories[name]
	return factory, ok
}
