package strategy

import (
	"fmt"

	"okx-trading-core/pkg/types"
)

// OrderIDAllocator issues monotonically increasing OrderIDs for one
// strategy instance, all sharing the instance's tag in their low 16 bits.
// Construction rejects tags that don't fit in 16 bits, per the spec's
// OrderId-split invariant.
type OrderIDAllocator struct {
	tag     uint16
	counter uint64
}

// NewOrderIDAllocator validates tag < 2^16 and returns an allocator seeded
// at counter 0.
func NewOrderIDAllocator(tag uint32) (*OrderIDAllocator, error) {
	if tag >= 1<<16 {
		return nil, fmt.Errorf("strategy: order id tag %d does not fit in 16 bits", tag)
	}
	return &OrderIDAllocator{tag: uint16(tag)}, nil
}

// Next returns the next OrderID for this instance.
func (a *OrderIDAllocator) Next() types.OrderID {
	id := types.NewOrderID(a.counter, a.tag)
	a.counter++
	return id
}
