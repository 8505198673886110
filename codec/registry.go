package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/zspatial/space"
)

var (
	// ErrBufferTooSmall is returned when a frame is truncated.
	ErrBufferTooSmall = errors.New("codec: buffer too small")

	// ErrUnknownType is returned for a type id without a registered factory.
	ErrUnknownType = errors.New("codec: unknown type")

	// ErrDuplicateType is returned when a type id is registered twice.
	ErrDuplicateType = errors.New("codec: duplicate type")

	// ErrNotSerializable is returned for objects that do not implement
	// Serializable.
	ErrNotSerializable = errors.New("codec: object is not serializable")
)

// Serializable is a spatial object that can be written to and read from a
// snapshot.
type Serializable interface {
	space.Object

	// TypeID is the stable tag the object is registered under.
	TypeID() uint16

	// SetID assigns the id read from the frame header.
	SetID(id int64)

	// AppendBinary appends the object's encoding, without its id, to dst.
	AppendBinary(dst []byte) ([]byte, error)

	// UnmarshalBinary decodes what AppendBinary wrote.
	UnmarshalBinary(data []byte) error
}

// Factory returns a zero object of one type.
type Factory func() Serializable

// frame header: type id (2), object id (8), payload length (4).
const headerSize = 2 + 8 + 4

// Registry maps type ids to factories. It is safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	factories map[uint16]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[uint16]Factory)}
}

// Register binds typeID to factory.
func (r *Registry) Register(typeID uint16, factory Factory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.factories[typeID]; ok {
		return fmt.Errorf("%w: %d", ErrDuplicateType, typeID)
	}
	r.factories[typeID] = factory
	return nil
}

// Registered reports whether typeID has a factory.
func (r *Registry) Registered(typeID uint16) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.factories[typeID]
	return ok
}

// Encode appends a frame holding obj to dst.
func (r *Registry) Encode(dst []byte, obj space.Object) ([]byte, error) {
	s, ok := obj.(Serializable)
	if !ok {
		return dst, fmt.Errorf("%w: object %d (%T)", ErrNotSerializable, obj.ID(), obj)
	}
	if !r.Registered(s.TypeID()) {
		return dst, fmt.Errorf("%w: %d", ErrUnknownType, s.TypeID())
	}

	start := len(dst)
	dst = binary.LittleEndian.AppendUint16(dst, s.TypeID())
	dst = binary.LittleEndian.AppendUint64(dst, uint64(s.ID()))
	dst = binary.LittleEndian.AppendUint32(dst, 0)

	dst, err := s.AppendBinary(dst)
	if err != nil {
		return dst[:start], fmt.Errorf("codec: encode object %d: %w", s.ID(), err)
	}
	binary.LittleEndian.PutUint32(dst[start+10:], uint32(len(dst)-start-headerSize))
	return dst, nil
}

// Decode reads one frame from src. It returns the object and the number of
// bytes consumed.
func (r *Registry) Decode(src []byte) (Serializable, int, error) {
	if len(src) < headerSize {
		return nil, 0, ErrBufferTooSmall
	}
	typeID := binary.LittleEndian.Uint16(src)
	id := int64(binary.LittleEndian.Uint64(src[2:]))
	n := int(binary.LittleEndian.Uint32(src[10:]))
	if len(src)-headerSize < n {
		return nil, 0, ErrBufferTooSmall
	}

	r.mu.RLock()
	factory, ok := r.factories[typeID]
	r.mu.RUnlock()
	if !ok {
		return nil, 0, fmt.Errorf("%w: %d", ErrUnknownType, typeID)
	}

	obj := factory()
	if err := obj.UnmarshalBinary(src[headerSize : headerSize+n]); err != nil {
		return nil, 0, fmt.Errorf("codec: decode object %d: %w", id, err)
	}
	obj.SetID(id)
	return obj, headerSize + n, nil
}
