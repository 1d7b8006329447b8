package models

// CartLine is one item-quantity pair in a client cart. Quantity is always
// positive; a line that reaches zero is removed from the cart.
type CartLine struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"qty"`
}

// Cart is a client-session-scoped aggregate of cart lines. It preserves the
// order in which items were first added. The zero value is an empty cart.
//
// A cart belongs to exactly one session and is passed in by the caller;
// concurrent tabs racing on the same session cart may lose updates, which is
// an accepted limitation of the session model.
type Cart struct {
	lines []CartLine
}

// NewCart builds a cart from existing lines, dropping non-positive quantities.
func NewCart(lines []CartLine) *Cart {
	c := &Cart{}
	for _, line := range lines {
		if line.Quantity > 0 {
			c.lines = append(c.lines, line)
		}
	}
	return c
}

// Add increments the quantity for an item, appending a new line for items not
// yet in the cart.
func (c *Cart) Add(itemID int64) {
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines[i].Quantity++
			return
		}
	}
	c.lines = append(c.lines, CartLine{ItemID: itemID, Quantity: 1})
}

// Remove decrements the quantity for an item and prunes the line when it
// reaches zero. Removing an absent item is a no-op.
func (c *Cart) Remove(itemID int64) {
	for i := range c.lines {
		if c.lines[i].ItemID != itemID {
			continue
		}
		c.lines[i].Quantity--
		if c.lines[i].Quantity <= 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		}
		return
	}
}

// Clear empties the cart.
func (c *Cart) Clear() {
	c.lines = nil
}

// Lines returns the cart contents in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}
